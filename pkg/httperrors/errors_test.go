package httperrors

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sir_venger/chunkload/internal/models"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "not found", err: fmt.Errorf("get: %w", models.ErrNotFound), want: http.StatusNotFound},
		{name: "invalid range", err: &models.InvalidRangeError{Header: "Content-Range", Value: "x"}, want: http.StatusBadRequest},
		{name: "invalid filename", err: fmt.Errorf("%w: %q", models.ErrInvalidFilename, ".."), want: http.StatusBadRequest},
		{name: "not multipart", err: models.ErrNotMultipart, want: http.StatusBadRequest},
		{name: "missing part", err: &models.MergeError{Stage: models.MergeStageRead, Err: fs.ErrNotExist}, want: http.StatusConflict},
		{name: "size mismatch", err: &models.MergeError{Stage: models.MergeStageVerify, Err: errors.New("short")}, want: http.StatusConflict},
		{name: "merge write", err: &models.MergeError{Stage: models.MergeStageWrite, Err: fs.ErrPermission}, want: http.StatusInternalServerError},
		{name: "persist", err: &models.PersistError{Err: fs.ErrPermission}, want: http.StatusInternalServerError},
		{name: "other", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.err))
		})
	}
}

func TestWrite(t *testing.T) {
	rec := httptest.NewRecorder()
	Write(rec, &models.InvalidRangeError{Header: "Content-Range", Value: "junk", Reason: "malformed range"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid Content-Range header: junk")
}
