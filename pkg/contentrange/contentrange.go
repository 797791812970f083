// Package contentrange разбирает и формирует заголовок Content-Range вида
// "bytes start-end/size". Размер "*" и форма "bytes */size" не поддерживаются:
// для сборки файла нужен известный общий размер и конкретный диапазон.
package contentrange

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sir_venger/chunkload/internal/models"
)

const unitBytes = "bytes"

var (
	ErrEmpty       = errors.New("empty header")
	ErrUnit        = errors.New("unsupported unit")
	ErrSyntax      = errors.New("malformed range")
	ErrUnknownSize = errors.New("unknown total size")
	ErrBounds      = errors.New("start is greater than end")
)

// Parse разбирает значение заголовка.
func Parse(value string) (models.ContentRange, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return models.ContentRange{}, ErrEmpty
	}

	unit, rest, ok := strings.Cut(v, " ")
	if !ok {
		return models.ContentRange{}, ErrSyntax
	}
	if unit != unitBytes {
		return models.ContentRange{}, fmt.Errorf("%w: %s", ErrUnit, unit)
	}

	rng, size, ok := strings.Cut(strings.TrimSpace(rest), "/")
	if !ok {
		return models.ContentRange{}, ErrSyntax
	}
	if size == "*" {
		return models.ContentRange{}, ErrUnknownSize
	}

	startStr, endStr, ok := strings.Cut(rng, "-")
	if !ok {
		return models.ContentRange{}, ErrSyntax
	}

	start, err := parseUint(startStr)
	if err != nil {
		return models.ContentRange{}, err
	}
	end, err := parseUint(endStr)
	if err != nil {
		return models.ContentRange{}, err
	}
	total, err := parseUint(size)
	if err != nil {
		return models.ContentRange{}, err
	}
	if start > end {
		return models.ContentRange{}, ErrBounds
	}

	return models.ContentRange{Start: start, End: end, Size: total}, nil
}

// Format собирает значение заголовка из диапазона.
func Format(r models.ContentRange) string {
	return fmt.Sprintf("%s %d-%d/%d", unitBytes, r.Start, r.End, r.Size)
}

func parseUint(s string) (uint64, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrSyntax, s)
	}
	return n, nil
}
