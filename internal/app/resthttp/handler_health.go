package resthttp

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"path/filepath"
)

// healthStats — payload ответа /health.
type healthStats struct {
	OK             bool  `json:"ok"`
	PendingUploads int   `json:"pending_uploads"`
	PendingBytes   int64 `json:"pending_bytes"`
}

// health возвращает статистику по незавершённым загрузкам в каталоге слотов.
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	root := s.Reassembler.Options().TempDir

	var stats healthStats
	// Каталоги первого уровня — загрузки, файлы внутри — слоты.
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != root && filepath.Dir(path) == root {
				stats.PendingUploads++
			}
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		stats.PendingBytes += info.Size()

		return nil
	})

	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.fail(w, r, err)
		return
	}

	stats.OK = true
	w.Header().Set("Content-Type", "application/json")
	if err = json.NewEncoder(w).Encode(stats); err != nil {
		s.fail(w, r, err)
	}
}
