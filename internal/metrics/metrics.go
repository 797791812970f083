package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics — Prometheus-коллекторы сервиса загрузки.
// Нулевой *Metrics допустим и ничего не записывает.
type Metrics struct {
	ChunksStored  prometheus.Counter
	BytesStored   prometheus.Counter
	Merges        *prometheus.CounterVec
	MergeDuration prometheus.Histogram
	Rejected      *prometheus.CounterVec
	registry      *prometheus.Registry
}

// New создаёт собственный реестр и регистрирует в нём все коллекторы.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		ChunksStored: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chunkload_chunks_stored_total",
			Help: "Total number of chunks persisted to their slots",
		}),
		BytesStored: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chunkload_chunk_bytes_total",
			Help: "Total number of chunk bytes persisted",
		}),
		Merges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chunkload_merges_total",
				Help: "Total number of finalization attempts by result",
			},
			[]string{"result"},
		),
		MergeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "chunkload_merge_duration_seconds",
			Help:    "Time spent concatenating chunk slots",
			Buckets: prometheus.DefBuckets,
		}),
		Rejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chunkload_rejected_parts_total",
				Help: "Total number of parts rejected before or during persistence",
			},
			[]string{"kind"},
		),
		registry: registry,
	}

	registry.MustRegister(m.ChunksStored)
	registry.MustRegister(m.BytesStored)
	registry.MustRegister(m.Merges)
	registry.MustRegister(m.MergeDuration)
	registry.MustRegister(m.Rejected)

	return m
}

// ChunkStored учитывает записанный слот.
func (m *Metrics) ChunkStored(n int64) {
	if m == nil {
		return
	}
	m.ChunksStored.Inc()
	m.BytesStored.Add(float64(n))
}

// Merged учитывает попытку сборки файла.
func (m *Metrics) Merged(d time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Merges.WithLabelValues(result).Inc()
	m.MergeDuration.Observe(d.Seconds())
}

// Reject учитывает отклонённую часть с видом ошибки kind.
func (m *Metrics) Reject(kind string) {
	if m == nil {
		return
	}
	m.Rejected.WithLabelValues(kind).Inc()
}

// Handler отдаёт /metrics по собственному реестру.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry нужен тестам.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
