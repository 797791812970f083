package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	m := New()

	m.ChunkStored(2000)
	m.ChunkStored(330)
	m.Merged(10*time.Millisecond, nil)
	m.Merged(time.Millisecond, errors.New("boom"))
	m.Reject("invalid_range")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.ChunksStored))
	assert.Equal(t, float64(2330), testutil.ToFloat64(m.BytesStored))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Merges.WithLabelValues("ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Merges.WithLabelValues("error")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Rejected.WithLabelValues("invalid_range")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.MergeDuration))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ChunkStored(1)
		m.Merged(time.Second, nil)
		m.Reject("persist")
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.Reject("persist")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `chunkload_rejected_parts_total{kind="persist"} 1`)
}
