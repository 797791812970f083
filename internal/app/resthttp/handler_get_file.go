package resthttp

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sir_venger/chunkload/internal/models"
)

const defaultListLimit = 100

// listFiles возвращает последние собранные файлы; ?limit= ограничивает выдачу.
func (s *Server) listFiles(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, fmt.Sprintf("invalid limit %q", v), http.StatusBadRequest)
			return
		}
		limit = n
	}

	files, err := s.Files.List(r.Context(), limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if files == nil {
		files = []models.File{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(files)
}

// getFile возвращает запись о собранном файле.
func (s *Server) getFile(w http.ResponseWriter, r *http.Request) {
	file, err := s.Files.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(file)
}

// getFileContent отдаёт собранный файл; Range-запросы обслуживает http.ServeContent.
func (s *Server) getFileContent(w http.ResponseWriter, r *http.Request) {
	file, err := s.Files.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	f, err := os.Open(file.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			err = fmt.Errorf("%w: %s", models.ErrNotFound, file.Path)
		}
		s.fail(w, r, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	http.ServeContent(w, r, file.Name, info.ModTime(), f)
}
