package chunksvc

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sir_venger/chunkload/internal/models"
)

const (
	slotFilenameFormat = "%d.part"
	slotSuffix         = ".part"
)

func (r *Reassembler) uploadDir(uploadID string) string {
	return filepath.Join(r.opts.TempDir, uploadID)
}

// SlotPath возвращает путь слота (uploadID, part).
func (r *Reassembler) SlotPath(uploadID string, part uint64) string {
	return filepath.Join(r.uploadDir(uploadID), fmt.Sprintf(slotFilenameFormat, part))
}

// persist потоково пишет тело чанка в слот и делает fsync до возврата.
// Повторная запись того же слота перезаписывает его.
func (r *Reassembler) persist(desc models.ChunkDescriptor, body io.Reader) (int64, error) {
	path := r.SlotPath(desc.UploadID, desc.PartIndex)
	fail := func(err error) error {
		return &models.PersistError{UploadID: desc.UploadID, Part: desc.PartIndex, Path: path, Err: err}
	}

	if err := os.MkdirAll(r.uploadDir(desc.UploadID), 0o750); err != nil {
		return 0, fail(err)
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fail(err)
	}

	n, err := io.Copy(f, body)
	if err == nil {
		err = f.Sync()
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		// недописанный слот не оставляем
		_ = os.Remove(path)
		return n, fail(err)
	}

	return n, nil
}
