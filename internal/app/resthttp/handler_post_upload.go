package resthttp

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"time"

	"github.com/sir_venger/chunkload/internal/models"
	"github.com/sir_venger/chunkload/internal/usecase/chunksvc"
)

// postUpload — прикладной обработчик после Chunked: отвечает номером части и флагом
// последнего чанка, а на последнем чанке регистрирует собранный файл.
func (s *Server) postUpload(w http.ResponseWriter, r *http.Request) {
	res, ok := chunksvc.ResultFrom(r.Context())
	if !ok {
		s.fail(w, r, models.ErrNoFilePart)
		return
	}

	if res.IsLastPart {
		file := models.File{
			ID:          res.UploadID,
			Name:        filepath.Base(res.FilePath),
			Path:        res.FilePath,
			Size:        res.Size,
			TotalParts:  int(res.TotalParts),
			CompletedAt: time.Now().UTC(),
		}
		if err := s.Files.Save(r.Context(), file); err != nil {
			s.fail(w, r, err)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(models.UploadResult{
		UploadID:   res.UploadID,
		FilePart:   res.FilePart,
		IsLastPart: res.IsLastPart,
		Size:       res.Size,
	})
}
