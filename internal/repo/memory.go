package meta

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sir_venger/chunkload/internal/models"
)

// MemoryStore хранит метаданные только в оперативной памяти; удобно для тестов.
type MemoryStore struct {
	mu    sync.RWMutex
	files map[string]models.File
}

// NewMemoryStore создаёт пустое in-memory хранилище.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{files: map[string]models.File{}}
}

// Get возвращает метаданные файла по id или ошибку, если файл не найден.
func (s *MemoryStore) Get(_ context.Context, id string) (models.File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.files[id]
	if !ok {
		return models.File{}, models.ErrNotFound
	}
	return f, nil
}

// Save записывает (или обновляет) метаданные файла целиком.
func (s *MemoryStore) Save(_ context.Context, f models.File) error {
	if strings.TrimSpace(f.ID) == "" {
		return fmt.Errorf("file id is empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[f.ID] = f
	return nil
}

func (s *MemoryStore) List(_ context.Context, limit int) ([]models.File, error) {
	s.mu.RLock()
	out := make([]models.File, 0, len(s.files))
	for _, f := range s.files {
		out = append(out, f)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CompletedAt.Equal(out[j].CompletedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CompletedAt.After(out[j].CompletedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Close ничего не делает; нужен для общего интерфейса с PGStore.
func (s *MemoryStore) Close() {}
