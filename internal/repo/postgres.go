package meta

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sir_venger/chunkload/internal/models"
)

const filesMetaTable = "files_meta"

// PGStore сохраняет метаданные в Postgres.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore создаёт пул подключений к Postgres. Таблицу создают миграции (cmd/migrate).
func NewPGStore(ctx context.Context, dsn string) (*PGStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("meta dsn is empty")
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}

	return &PGStore{
		pool: pool,
	}, nil
}

func psql() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

// Get возвращает описание собранного файла по идентификатору загрузки.
func (s *PGStore) Get(ctx context.Context, id string) (models.File, error) {
	if strings.TrimSpace(id) == "" {
		return models.File{}, fmt.Errorf("file id is empty")
	}

	sqlStr, args, err := psql().
		Select("file_name", "path", "size", "total_parts", "completed_at").
		From(filesMetaTable).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return models.File{}, fmt.Errorf("build select: %w", err)
	}

	file := models.File{ID: id}
	var completedAt time.Time
	err = s.pool.QueryRow(ctx, sqlStr, args...).Scan(&file.Name, &file.Path, &file.Size, &file.TotalParts, &completedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.File{}, models.ErrNotFound
		}
		return models.File{}, fmt.Errorf("scan file row: %w", err)
	}
	file.CompletedAt = completedAt.UTC()

	return file, nil
}

// Save записывает (или обновляет) описание файла. Повторная загрузка с тем же id перезаписывает запись.
func (s *PGStore) Save(ctx context.Context, file models.File) error {
	if strings.TrimSpace(file.ID) == "" {
		return fmt.Errorf("file id is empty")
	}
	if file.CompletedAt.IsZero() {
		file.CompletedAt = time.Now().UTC()
	}

	sqlStr, args, err := psql().
		Insert(filesMetaTable).
		Columns("id", "file_name", "path", "size", "total_parts", "completed_at").
		Values(file.ID, file.Name, file.Path, file.Size, file.TotalParts, file.CompletedAt).
		Suffix(`
					ON CONFLICT (id) DO UPDATE
					SET file_name    = EXCLUDED.file_name,
						path         = EXCLUDED.path,
						size         = EXCLUDED.size,
						total_parts  = EXCLUDED.total_parts,
						completed_at = EXCLUDED.completed_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert sql: %w", err)
	}

	if _, err := s.pool.Exec(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("exec upsert: %w", err)
	}

	return nil
}

// List возвращает последние собранные файлы; limit <= 0 — без ограничения.
func (s *PGStore) List(ctx context.Context, limit int) ([]models.File, error) {
	q := psql().
		Select("id", "file_name", "path", "size", "total_parts", "completed_at").
		From(filesMetaTable).
		OrderBy("completed_at DESC", "id")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}

	rows, err := s.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("query files: %w", err)
	}
	defer rows.Close()

	var out []models.File
	for rows.Next() {
		var f models.File
		if err := rows.Scan(&f.ID, &f.Name, &f.Path, &f.Size, &f.TotalParts, &f.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan file row: %w", err)
		}
		f.CompletedAt = f.CompletedAt.UTC()
		out = append(out, f)
	}

	return out, rows.Err()
}

// Close освобождает подключения пула.
func (s *PGStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}
