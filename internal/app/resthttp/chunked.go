package resthttp

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/sir_venger/chunkload/internal/models"
	"github.com/sir_venger/chunkload/internal/usecase/chunksvc"
	"github.com/sir_venger/chunkload/pkg/httperrors"
)

// Chunked разбирает multipart-тело потоком и отдаёт каждую файловую часть реассемблеру.
// next вызывается один раз, после того как все части записаны (и, для последнего чанка,
// файл собран); результат лежит в контексте запроса, см. chunksvc.ResultFrom.
func (s *Server) Chunked(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mr, err := r.MultipartReader()
		if err != nil {
			s.fail(w, r, fmt.Errorf("%w: %v", models.ErrNotMultipart, err))
			return
		}

		var (
			res     chunksvc.Result
			handled bool
		)
		for {
			part, err := mr.NextPart()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				s.fail(w, r, fmt.Errorf("%w: %v", models.ErrNotMultipart, err))
				return
			}

			// обычные поля формы реассемблер не интересуют
			if part.FileName() == "" {
				_ = part.Close()
				continue
			}

			out, err := s.Reassembler.HandlePart(r.Context(), chunksvc.Part{
				FieldName: part.FormName(),
				Filename:  part.FileName(),
				Header:    r.Header,
				Body:      part,
			})
			_ = part.Close()
			if err != nil {
				s.fail(w, r, err)
				return
			}
			if out.Handled {
				res, handled = out, true
			}
		}

		ctx := r.Context()
		if handled {
			ctx = chunksvc.WithResult(ctx, res)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// fail логирует ошибку один раз на границе HTTP и отвечает статусом по её типу.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := httperrors.Status(err)
	fields := []zap.Field{
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", fields...)
	} else {
		s.logger.Warn("request rejected", fields...)
	}

	httperrors.Write(w, err)
}
