package models

import (
	"errors"
	"fmt"
	"io/fs"
)

var (
	ErrNotFound        = errors.New("file not found")
	ErrNotMultipart    = errors.New("request is not multipart/form-data")
	ErrInvalidFilename = errors.New("invalid file name")
	ErrNoFilePart      = errors.New("no file part in a recognized field")
)

// InvalidRangeError — заголовки чанка отсутствуют или не разбираются.
// Возвращается до того, как хоть один байт попадёт на диск.
type InvalidRangeError struct {
	Header string
	Value  string
	Reason string
}

func (e *InvalidRangeError) Error() string {
	if e.Header == "" || e.Header == "Content-Range" {
		return fmt.Sprintf("Invalid Content-Range header: %s (%s)", e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid %s header: %q (%s)", e.Header, e.Value, e.Reason)
}

// PersistError — не удалось записать чанк в его слот.
type PersistError struct {
	UploadID string
	Part     uint64
	Path     string
	Err      error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist part %d of %s to %s: %v", e.Part, e.UploadID, e.Path, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// Стадии сборки файла, на которых может упасть MergeError.
const (
	MergeStageRead    = "read"
	MergeStageWrite   = "write"
	MergeStageVerify  = "verify"
	MergeStageCleanup = "cleanup"
)

// MergeError — финальная сборка не удалась. Слоты при этом не удаляются,
// поэтому повторная отправка последнего чанка может завершить загрузку.
type MergeError struct {
	UploadID string
	Stage    string
	Part     uint64
	Path     string
	Err      error
}

func (e *MergeError) Error() string {
	if e.Stage == MergeStageRead {
		return fmt.Sprintf("Failed merging parts: %s part %d (%s): %v", e.UploadID, e.Part, e.Path, e.Err)
	}
	return fmt.Sprintf("Failed merging parts: %s %s %s: %v", e.UploadID, e.Stage, e.Path, e.Err)
}

func (e *MergeError) Unwrap() error { return e.Err }

// MissingPart сообщает, что сборка упала из-за отсутствующего слота.
func (e *MergeError) MissingPart() bool {
	return e.Stage == MergeStageRead && errors.Is(e.Err, fs.ErrNotExist)
}
