package resthttp

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/sir_venger/chunkload/internal/config"
	"github.com/sir_venger/chunkload/internal/metrics"
	meta "github.com/sir_venger/chunkload/internal/repo"
	"github.com/sir_venger/chunkload/internal/usecase/chunksvc"
	"github.com/sir_venger/chunkload/pkg/chunkproto"
)

type Server struct {
	Reassembler *chunksvc.Reassembler
	Files       meta.Store
	Metrics     *metrics.Metrics
	Cfg         *config.Config
	logger      *zap.Logger
}

// NewServer собирает реассемблер, хранилище метаданных и роутер.
func NewServer(cfg *config.Config, logger *zap.Logger) (http.Handler, *Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	files, err := meta.Open(context.Background(), cfg.MetaDSN)
	if err != nil {
		return nil, nil, err
	}

	m := metrics.New()
	reassembler, err := chunksvc.New(chunksvc.Deps{
		Options: cfg.ReassemblerOptions(),
		Logger:  logger.Named("chunksvc"),
		Metrics: m,
	})
	if err != nil {
		files.Close()
		return nil, nil, err
	}

	srv := &Server{
		Reassembler: reassembler,
		Files:       files,
		Metrics:     m,
		Cfg:         cfg,
		logger:      logger,
	}

	return srv.routes(), srv, nil
}

// routes регистрирует обработчики загрузки, файлов, здоровья и GC.
func (s *Server) routes() http.Handler {
	rtr := chi.NewRouter()
	rtr.Use(middleware.RequestID)
	rtr.Use(middleware.Recoverer)

	rtr.With(s.Chunked).Post(chunkproto.UploadPath, s.postUpload)
	rtr.Get("/files", s.listFiles)
	rtr.Get("/files/{id}", s.getFile)
	rtr.Get("/files/{id}/content", s.getFileContent)
	rtr.Get("/health", s.health)
	rtr.Handle("/metrics", s.Metrics.Handler())
	rtr.Post("/admin/gc", s.gcOnce)
	rtr.Get("/admin/config", s.adminConfig)

	return rtr
}

// adminConfig отдаёт действующую конфигурацию без секретов.
func (s *Server) adminConfig(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.Cfg.Redacted())
}

// Close освобождает хранилище метаданных.
func (s *Server) Close() {
	if s.Files != nil {
		s.Files.Close()
	}
}
