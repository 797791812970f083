package uploadclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/sir_venger/chunkload/internal/models"
	"github.com/sir_venger/chunkload/pkg/chunkproto"
	"github.com/sir_venger/chunkload/pkg/contentrange"
)

// UploadRequest описывает один файл, который нужно отправить чанками.
type UploadRequest struct {
	// UploadID — идентификатор загрузки; пустой заменяется на случайный UUID.
	UploadID  string
	Filename  string
	Reader    io.ReaderAt
	Size      int64
	ChunkSize int64
	// Field — имя поля формы; по умолчанию "file".
	Field string
}

type Client interface {
	// Upload отправляет файл чанками строго по порядку и возвращает ответы сервера.
	Upload(ctx context.Context, baseURL string, req UploadRequest) ([]models.UploadResult, error)
	// UploadAll отправляет несколько файлов параллельно, не больше parallel одновременно.
	UploadAll(ctx context.Context, baseURL string, reqs []UploadRequest, parallel int) ([][]models.UploadResult, error)
}

type httpClient struct {
	c        *http.Client
	progress io.Writer
}

// Option настраивает клиента.
type Option func(*httpClient)

// WithHTTPClient подменяет http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(h *httpClient) { h.c = c }
}

// WithProgress включает ASCII-прогресс в w.
func WithProgress(w io.Writer) Option {
	return func(h *httpClient) { h.progress = w }
}

// New создаёт HTTP-клиент по умолчанию.
func New(opts ...Option) Client {
	h := &httpClient{
		c: &http.Client{},
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Upload делит файл на чанки по ChunkSize и отправляет их по одному.
func (h *httpClient) Upload(ctx context.Context, baseURL string, req UploadRequest) ([]models.UploadResult, error) {
	if req.ChunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be > 0")
	}
	if req.Size < 0 {
		return nil, fmt.Errorf("size must be >= 0")
	}
	if strings.TrimSpace(req.UploadID) == "" {
		req.UploadID = uuid.NewString()
	}
	if req.Field == "" {
		req.Field = chunkproto.DefaultFileField
	}

	total := (req.Size + req.ChunkSize - 1) / req.ChunkSize
	if total == 0 {
		total = 1
	}

	var bar *progressBar
	if h.progress != nil {
		bar = newProgressBar(h.progress, fmt.Sprintf("Uploading %s (%s)", req.Filename, req.UploadID), req.Size)
		bar.render(true, "")
	}

	results := make([]models.UploadResult, 0, total)
	for part := int64(0); part < total; part++ {
		if err := ctx.Err(); err != nil {
			bar.Fail(err)
			return results, err
		}

		res, err := h.postChunk(ctx, baseURL, req, part, bar)
		if err != nil {
			bar.Fail(err)
			return results, err
		}
		results = append(results, res)
	}

	bar.Finish()
	return results, nil
}

// postChunk отправляет один чанк. Конец диапазона — (part+1)*ChunkSize,
// для последнего чанка он может выходить за размер файла.
func (h *httpClient) postChunk(ctx context.Context, baseURL string, req UploadRequest, part int64, bar *progressBar) (models.UploadResult, error) {
	start := part * req.ChunkSize
	end := start + req.ChunkSize
	body := io.NewSectionReader(req.Reader, start, min(end, req.Size)-start)

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		fw, err := mw.CreateFormFile(req.Field, req.Filename)
		if err != nil {
			_ = pw.CloseWithError(err)
			return
		}
		var src io.Reader = body
		if bar != nil {
			src = io.TeeReader(body, progressWriter{bar: bar})
		}
		if _, err = io.Copy(fw, src); err != nil {
			_ = pw.CloseWithError(err)
			return
		}
		_ = pw.CloseWithError(mw.Close())
	}()

	u := strings.TrimRight(baseURL, "/") + chunkproto.UploadPath
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, pr)
	if err != nil {
		_ = pr.CloseWithError(err)
		return models.UploadResult{}, err
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	httpReq.Header.Set(chunkproto.HeaderContentRange, contentrange.Format(models.ContentRange{
		Start: uint64(start),
		End:   uint64(end),
		Size:  uint64(req.Size),
	}))
	httpReq.Header.Set(chunkproto.HeaderChunkID, req.UploadID)
	httpReq.Header.Set(chunkproto.HeaderChunkSize, strconv.FormatInt(req.ChunkSize, 10))

	resp, err := h.c.Do(httpReq)
	if err != nil {
		_ = pr.CloseWithError(err)
		return models.UploadResult{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return models.UploadResult{}, &StatusError{
			Code:    resp.StatusCode,
			Part:    part,
			Message: strings.TrimSpace(string(msg)),
		}
	}

	var out models.UploadResult
	if err = json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return models.UploadResult{}, fmt.Errorf("decode response for part %d: %w", part, err)
	}
	return out, nil
}

// UploadAll отправляет независимые загрузки параллельно; чанки каждой идут по порядку.
func (h *httpClient) UploadAll(ctx context.Context, baseURL string, reqs []UploadRequest, parallel int) ([][]models.UploadResult, error) {
	if parallel <= 0 {
		parallel = 1
	}

	out := make([][]models.UploadResult, len(reqs))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(parallel)

	for i, req := range reqs {
		i, req := i, req
		eg.Go(func() error {
			res, err := h.Upload(egCtx, baseURL, req)
			if err != nil {
				return fmt.Errorf("upload %s: %w", req.Filename, err)
			}
			out[i] = res
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return out, err
	}
	return out, nil
}

// StatusError — сервер ответил не 200.
type StatusError struct {
	Code    int
	Part    int64
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("part %d: server responded %d: %s", e.Part, e.Code, e.Message)
}
