package chunksvc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/sir_venger/chunkload/internal/models"
)

type mergeOutput struct {
	path  string
	size  int64
	parts uint64
}

// merge склеивает слоты 0..TotalParts-1 во временный файл рядом с целевым,
// переименовывает его в FilePath/filename и удаляет слоты.
// Слоты открываются по одному; на первом отсутствующем сборка останавливается.
// При ошибке до переименования временный файл удаляется, слоты остаются.
func (r *Reassembler) merge(ctx context.Context, desc models.ChunkDescriptor, filename string) (mergeOutput, error) {
	total := TotalParts(desc.Range.Size, desc.ChunkSize)
	slot := func(i uint64) string { return r.SlotPath(desc.UploadID, i) }

	dst := filepath.Join(r.opts.FilePath, filename)
	fail := func(stage string, part uint64, path string, err error) error {
		return &models.MergeError{UploadID: desc.UploadID, Stage: stage, Part: part, Path: path, Err: err}
	}

	if err := os.MkdirAll(r.opts.FilePath, 0o750); err != nil {
		return mergeOutput{}, fail(models.MergeStageWrite, 0, r.opts.FilePath, err)
	}

	staging := filepath.Join(r.opts.FilePath, fmt.Sprintf(".%s.%s.partial", filename, uuid.NewString()))
	size, err := concat(ctx, staging, total, slot, fail)
	if err == nil && size != int64(desc.Range.Size) {
		err = fail(models.MergeStageVerify, 0, staging,
			fmt.Errorf("merged %d bytes, Content-Range declared %d", size, desc.Range.Size))
	}
	if err == nil {
		if renameErr := os.Rename(staging, dst); renameErr != nil {
			err = fail(models.MergeStageWrite, 0, dst, renameErr)
		}
	}
	if err != nil {
		_ = os.Remove(staging)
		return mergeOutput{}, err
	}

	var cleanupErr error
	for i := uint64(0); i < total; i++ {
		if rmErr := os.Remove(slot(i)); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			cleanupErr = errors.Join(cleanupErr, rmErr)
		}
	}
	if cleanupErr != nil {
		return mergeOutput{}, fail(models.MergeStageCleanup, 0, r.uploadDir(desc.UploadID), cleanupErr)
	}
	// Каталог может быть непуст, если клиент прислал лишние чанки — их заберёт уборщик.
	_ = os.Remove(r.uploadDir(desc.UploadID))

	return mergeOutput{path: dst, size: size, parts: total}, nil
}

type failFunc func(stage string, part uint64, path string, err error) error

func concat(ctx context.Context, dst string, total uint64, slot func(uint64) string, fail failFunc) (int64, error) {
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, fail(models.MergeStageWrite, 0, dst, err)
	}

	var written int64
	for i := uint64(0); i < total; i++ {
		if err = ctx.Err(); err != nil {
			_ = out.Close()
			return written, fail(models.MergeStageWrite, i, dst, err)
		}

		n, err := appendSlot(out, slot(i))
		written += n
		if err != nil {
			_ = out.Close()
			return written, fail(models.MergeStageRead, i, slot(i), err)
		}
	}

	if err = out.Sync(); err != nil {
		_ = out.Close()
		return written, fail(models.MergeStageWrite, 0, dst, err)
	}
	if err = out.Close(); err != nil {
		return written, fail(models.MergeStageWrite, 0, dst, err)
	}

	return written, nil
}

func appendSlot(dst io.Writer, path string) (int64, error) {
	src, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer src.Close()

	return io.Copy(dst, src)
}
