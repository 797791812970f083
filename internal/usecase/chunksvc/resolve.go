package chunksvc

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/sir_venger/chunkload/internal/models"
	"github.com/sir_venger/chunkload/pkg/chunkproto"
	"github.com/sir_venger/chunkload/pkg/contentrange"
)

// Resolve вычисляет ChunkDescriptor по заголовкам запроса. На диск ничего не пишет.
func (r *Reassembler) Resolve(h http.Header) (models.ChunkDescriptor, error) {
	raw := h.Get(chunkproto.HeaderContentRange)
	rng, err := contentrange.Parse(raw)
	if err != nil {
		return models.ChunkDescriptor{}, &models.InvalidRangeError{
			Header: chunkproto.HeaderContentRange,
			Value:  raw,
			Reason: err.Error(),
		}
	}

	chunkSize, err := r.chunkSize(h)
	if err != nil {
		return models.ChunkDescriptor{}, err
	}

	if reason := chunkRangeViolation(rng, chunkSize); reason != "" {
		return models.ChunkDescriptor{}, &models.InvalidRangeError{
			Header: chunkproto.HeaderContentRange,
			Value:  raw,
			Reason: reason,
		}
	}

	uploadID, err := r.uploadID(h)
	if err != nil {
		return models.ChunkDescriptor{}, err
	}

	return models.ChunkDescriptor{
		UploadID:  uploadID,
		ChunkSize: chunkSize,
		Range:     rng,
		PartIndex: rng.Start / chunkSize,
	}, nil
}

// chunkRangeViolation проверяет, что диапазон описывает ровно один чанк сетки chunkSize.
// Пустая строка — диапазон годится.
func chunkRangeViolation(rng models.ContentRange, chunkSize uint64) string {
	switch {
	case rng.Start%chunkSize != 0:
		return fmt.Sprintf("start is not a multiple of chunk size %d", chunkSize)
	case rng.End-rng.Start > chunkSize:
		return fmt.Sprintf("range is longer than chunk size %d", chunkSize)
	case rng.Start > 0 && rng.Start >= rng.Size:
		return "start is beyond the declared size"
	}
	return ""
}

func (r *Reassembler) chunkSize(h http.Header) (uint64, error) {
	name := r.opts.ChunkSizeHeader
	values, present := h[name]
	if !present || len(values) == 0 || strings.TrimSpace(values[0]) == "" {
		if r.opts.Mode == ModeStrict {
			return 0, &models.InvalidRangeError{Header: name, Reason: "header is required"}
		}
		return r.opts.DefaultChunkSize, nil
	}

	raw := values[0]
	n, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, &models.InvalidRangeError{Header: name, Value: raw, Reason: "not an unsigned integer"}
	}
	if n == 0 {
		return 0, &models.InvalidRangeError{Header: name, Value: raw, Reason: "must be > 0"}
	}
	return n, nil
}

func (r *Reassembler) uploadID(h http.Header) (string, error) {
	name := r.opts.ChunkIDHeader
	raw := h.Get(name)
	id := strings.TrimSpace(raw)
	if id == "" {
		if r.opts.Mode == ModeStrict {
			return "", &models.InvalidRangeError{Header: name, Reason: "header is required"}
		}
		return r.opts.DefaultChunkID, nil
	}
	if !validUploadID(id) {
		return "", &models.InvalidRangeError{Header: name, Value: raw, Reason: "must be a single path element"}
	}
	return id, nil
}

// validUploadID — id становится именем каталога слотов.
func validUploadID(id string) bool {
	if id == "" || id == "." || id == ".." {
		return false
	}
	return !strings.ContainsAny(id, "/\\\x00")
}

// IsLastPart — диапазон дошёл до объявленного размера.
func IsLastPart(rng models.ContentRange) bool {
	return rng.End >= rng.Size
}

// TotalParts считает число слотов, согласованное с IsLastPart: последний чанк
// имеет индекс TotalParts-1 при любом остатке size % chunkSize, включая ноль.
// Пустой файл всё равно состоит из одного (пустого) чанка.
func TotalParts(size, chunkSize uint64) uint64 {
	if chunkSize == 0 {
		return 0
	}
	n := size / chunkSize
	if size%chunkSize != 0 {
		n++
	}
	if n == 0 {
		n = 1
	}
	return n
}
