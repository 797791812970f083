package httperrors

import (
	"errors"
	"net/http"

	"github.com/sir_venger/chunkload/internal/models"
)

// Status переводит типизированную ошибку загрузки в HTTP-статус.
func Status(err error) int {
	var (
		rangeErr   *models.InvalidRangeError
		mergeErr   *models.MergeError
		persistErr *models.PersistError
	)

	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &rangeErr),
		errors.Is(err, models.ErrInvalidFilename),
		errors.Is(err, models.ErrNotMultipart),
		errors.Is(err, models.ErrNoFilePart):
		return http.StatusBadRequest
	case errors.As(err, &mergeErr):
		if mergeErr.MissingPart() || mergeErr.Stage == models.MergeStageVerify {
			return http.StatusConflict
		}
		return http.StatusInternalServerError
	case errors.As(err, &persistErr):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Write отвечает текстом ошибки со статусом из Status.
func Write(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), Status(err))
}
