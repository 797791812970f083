package chunksvc

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/sir_venger/chunkload/internal/metrics"
	"github.com/sir_venger/chunkload/internal/models"
)

type (
	// Part — одна файловая часть multipart-тела вместе с заголовками запроса.
	Part struct {
		FieldName string
		Filename  string
		Header    http.Header
		Body      io.Reader
	}

	// PartHandler — звено цепочки обработчиков файловых частей.
	PartHandler interface {
		// Claims сообщает, обрабатывает ли звено поле с таким именем.
		Claims(field string) bool
		HandlePart(ctx context.Context, p Part) (Result, error)
	}

	// Result — сигнал завершения для следующей стадии.
	Result struct {
		Handled    bool
		UploadID   string
		FilePart   uint64
		IsLastPart bool
		Written    int64
		// FilePath и Size заполняются только для последнего чанка после сборки.
		FilePath   string
		Size       int64
		TotalParts uint64
	}
)

// PassThrough — пустое звено: поток не читает, Handled=false.
type PassThrough struct{}

func (PassThrough) Claims(string) bool { return true }

func (PassThrough) HandlePart(context.Context, Part) (Result, error) {
	return Result{}, nil
}

type Deps struct {
	Options Options
	Logger  *zap.Logger
	Metrics *metrics.Metrics
	// Next получает части, которые реассемблер не забирает. По умолчанию PassThrough.
	Next PartHandler
}

// Reassembler собирает файл из чанков, пришедших отдельными запросами.
// Общего состояния в памяти нет: чанки одной загрузки находят друг друга
// через каталог <TempDir>/<uploadID>.
type Reassembler struct {
	opts    Options
	fields  map[string]struct{}
	logger  *zap.Logger
	metrics *metrics.Metrics
	next    PartHandler
}

var _ PartHandler = (*Reassembler)(nil)

// New конструирует реассемблер, подставляя значения по умолчанию.
func New(deps Deps) (*Reassembler, error) {
	opts, err := deps.Options.withDefaults()
	if err != nil {
		return nil, err
	}

	r := &Reassembler{
		opts:    opts,
		fields:  make(map[string]struct{}, len(opts.FileFields)),
		logger:  deps.Logger,
		metrics: deps.Metrics,
		next:    deps.Next,
	}
	for _, f := range opts.FileFields {
		r.fields[f] = struct{}{}
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	if r.next == nil {
		r.next = PassThrough{}
	}

	return r, nil
}

// Options возвращает итоговую конфигурацию.
func (r *Reassembler) Options() Options {
	return r.opts
}

func (r *Reassembler) Claims(field string) bool {
	_, ok := r.fields[field]
	return ok
}

// HandlePart сохраняет чанк в слот и, если он последний, собирает файл.
// Управление возвращается только после того, как байты чанка записаны на диск,
// а для последнего чанка — после успешной сборки.
func (r *Reassembler) HandlePart(ctx context.Context, p Part) (Result, error) {
	if !r.Claims(p.FieldName) {
		return r.next.HandlePart(ctx, p)
	}

	desc, err := r.Resolve(p.Header)
	if err != nil {
		r.metrics.Reject("invalid_range")
		return Result{}, err
	}

	filename, err := cleanFilename(p.Filename)
	if err != nil {
		r.metrics.Reject("invalid_filename")
		return Result{}, err
	}

	written, err := r.persist(desc, p.Body)
	if err != nil {
		r.metrics.Reject("persist")
		return Result{}, err
	}
	r.metrics.ChunkStored(written)

	r.logger.Debug("chunk stored",
		zap.String("upload_id", desc.UploadID),
		zap.Uint64("part", desc.PartIndex),
		zap.Int64("bytes", written),
		zap.String("range", fmt.Sprintf("%d-%d/%d", desc.Range.Start, desc.Range.End, desc.Range.Size)))

	res := Result{
		Handled:  true,
		UploadID: desc.UploadID,
		FilePart: desc.PartIndex,
		Written:  written,
	}
	if !IsLastPart(desc.Range) {
		if looksInclusive(desc) {
			r.logger.Warn("final chunk range looks inclusive, upload will not be reassembled",
				zap.String("upload_id", desc.UploadID),
				zap.String("range", fmt.Sprintf("%d-%d/%d", desc.Range.Start, desc.Range.End, desc.Range.Size)),
				zap.Uint64("chunk_size", desc.ChunkSize))
		}
		return res, nil
	}

	started := time.Now()
	out, err := r.merge(ctx, desc, filename)
	r.metrics.Merged(time.Since(started), err)
	if err != nil {
		return Result{}, err
	}

	r.logger.Info("upload reassembled",
		zap.String("upload_id", desc.UploadID),
		zap.String("path", out.path),
		zap.Uint64("parts", out.parts),
		zap.Int64("size", out.size),
		zap.Duration("took", time.Since(started)))

	res.IsLastPart = true
	res.FilePath = out.path
	res.Size = out.size
	res.TotalParts = out.parts
	return res, nil
}

// looksInclusive — конец диапазона указывает на последний байт файла, а чанк короче
// chunkSize. Клиент с исключающим концом так не шлёт: у непоследних чанков End-Start == chunkSize.
func looksInclusive(desc models.ChunkDescriptor) bool {
	rng := desc.Range
	return rng.Size > 0 && rng.End+1 == rng.Size && rng.End-rng.Start < desc.ChunkSize
}

func cleanFilename(name string) (string, error) {
	base := filepath.Base(filepath.Clean(name))
	if name == "" || base == "." || base == ".." || base == string(filepath.Separator) {
		return "", fmt.Errorf("%w: %q", models.ErrInvalidFilename, name)
	}
	return base, nil
}

type resultKey struct{}

// WithResult кладёт результат в контекст запроса для следующих обработчиков.
func WithResult(ctx context.Context, res Result) context.Context {
	return context.WithValue(ctx, resultKey{}, res)
}

// ResultFrom достаёт результат, положенный WithResult.
func ResultFrom(ctx context.Context) (Result, bool) {
	res, ok := ctx.Value(resultKey{}).(Result)
	return res, ok
}
