package chunksvc

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/sir_venger/chunkload/pkg/chunkproto"
)

// Mode определяет, что делать с отсутствующими заголовками чанка.
type Mode string

const (
	// ModePermissive подставляет DefaultChunkSize и DefaultChunkID, если заголовков нет.
	// Все загрузки без File-Chunk-Id попадают в один и тот же слот и портят друг друга.
	ModePermissive Mode = "permissive"
	// ModeStrict требует оба заголовка и отвечает InvalidRangeError, если их нет.
	ModeStrict Mode = "strict"
)

// Options — настраиваемая поверхность реассемблера.
type Options struct {
	FileFields       []string
	ChunkIDHeader    string
	ChunkSizeHeader  string
	FilePath         string
	TempDir          string
	Mode             Mode
	DefaultChunkSize uint64
	DefaultChunkID   string
}

// DefaultTempDir — корень слотов по умолчанию. Отдельный подкаталог нужен,
// чтобы уборщик не трогал чужие директории в os.TempDir().
func DefaultTempDir() string {
	return filepath.Join(os.TempDir(), "chunkload")
}

// withDefaults заполняет пустые поля и проверяет комбинацию.
func (o Options) withDefaults() (Options, error) {
	fields := make([]string, 0, len(o.FileFields))
	for _, f := range o.FileFields {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	if len(fields) == 0 {
		fields = []string{chunkproto.DefaultFileField}
	}
	o.FileFields = fields

	if o.ChunkIDHeader == "" {
		o.ChunkIDHeader = chunkproto.HeaderChunkID
	}
	if o.ChunkSizeHeader == "" {
		o.ChunkSizeHeader = chunkproto.HeaderChunkSize
	}
	o.ChunkIDHeader = http.CanonicalHeaderKey(o.ChunkIDHeader)
	o.ChunkSizeHeader = http.CanonicalHeaderKey(o.ChunkSizeHeader)

	if o.FilePath == "" {
		o.FilePath = "."
	}
	if o.TempDir == "" {
		o.TempDir = DefaultTempDir()
	}

	switch o.Mode {
	case "":
		o.Mode = ModePermissive
	case ModePermissive, ModeStrict:
	default:
		return Options{}, fmt.Errorf("unknown upload mode %q", o.Mode)
	}

	if o.Mode == ModePermissive {
		if o.DefaultChunkSize == 0 {
			o.DefaultChunkSize = chunkproto.DefaultChunkSize
		}
		if o.DefaultChunkID == "" {
			o.DefaultChunkID = chunkproto.DefaultChunkID
		}
		if !validUploadID(o.DefaultChunkID) {
			return Options{}, fmt.Errorf("default chunk id %q is not a valid path element", o.DefaultChunkID)
		}
	}

	return o, nil
}
