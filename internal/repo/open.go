package meta

import (
	"context"
	"strings"

	"github.com/sir_venger/chunkload/internal/models"
)

const memoryScheme = "memory://"

// Store — хранилище записей о собранных файлах.
type Store interface {
	Get(ctx context.Context, id string) (models.File, error)
	Save(ctx context.Context, file models.File) error
	// List возвращает до limit последних собранных файлов, новые первыми.
	List(ctx context.Context, limit int) ([]models.File, error)
	Close()
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*PGStore)(nil)
)

// IsMemory сообщает, что DSN выбирает in-memory хранилище.
func IsMemory(dsn string) bool {
	dsn = strings.TrimSpace(dsn)
	return dsn == "" || strings.HasPrefix(dsn, memoryScheme)
}

// Open выбирает хранилище по DSN: memory:// (или пусто) — память, иначе Postgres.
func Open(ctx context.Context, dsn string) (Store, error) {
	if IsMemory(dsn) {
		return NewMemoryStore(), nil
	}
	return NewPGStore(ctx, dsn)
}
