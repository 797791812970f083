package resthttp

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/sir_venger/chunkload/internal/usecase/chunksvc"
)

const manualGCTTL = 24 * time.Hour

type gcResp struct {
	Removed []string `json:"removed"`
}

// gcOnce вручную запускает уборку брошенных загрузок.
func (s *Server) gcOnce(w http.ResponseWriter, r *http.Request) {
	ttl := s.Cfg.GC.TTL
	if ttl <= 0 {
		ttl = manualGCTTL
	}

	removed, err := chunksvc.Sweep(s.Reassembler.Options().TempDir, ttl, time.Now())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if len(removed) > 0 {
		s.logger.Info("manual gc removed stale uploads", zap.Strings("upload_ids", removed))
	}

	if removed == nil {
		removed = []string{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(gcResp{Removed: removed})
}
