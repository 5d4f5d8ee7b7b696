// Package metrics implements the observability hooks with Prometheus
// collectors.
//
//	m := metrics.New(prometheus.DefaultRegisterer)
//	m.Install()
//	http.Handle("/metrics", promhttp.Handler())
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/observability"
)

const namespace = "kintree"

// Metrics holds the collectors. It implements every hook interface of the
// observability package.
type Metrics struct {
	builds        prometheus.Counter
	buildDuration prometheus.Histogram
	buildPeople   prometheus.Gauge
	diagnostics   prometheus.Counter
	conflicts     prometheus.Counter

	resolves        *prometheus.CounterVec
	resolveDuration prometheus.Histogram

	codecOps   *prometheus.CounterVec
	codecBytes *prometheus.CounterVec

	storageOps      *prometheus.CounterVec
	storageDuration *prometheus.HistogramVec
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		builds: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forest_builds_total",
			Help:      "Forest builds including generation assignment.",
		}),
		buildDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "forest_build_duration_seconds",
			Help:      "Time to build a forest and assign generations.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		buildPeople: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "forest_people",
			Help:      "People in the most recently built forest.",
		}),
		diagnostics: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forest_diagnostics_total",
			Help:      "Recovered data defects reported by builds.",
		}),
		conflicts: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_conflicts_total",
			Help:      "Generation conflicts recorded by builds.",
		}),
		resolves: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relationship_queries_total",
			Help:      "Relationship queries by result kind or error code.",
		}, []string{"kind"}),
		resolveDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "relationship_query_duration_seconds",
			Help:      "Relationship query latency.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8),
		}),
		codecOps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "codec_operations_total",
			Help:      "Encode and decode calls by format and outcome.",
		}, []string{"op", "format", "result"}),
		codecBytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "codec_bytes_total",
			Help:      "Bytes produced by encode and consumed by decode.",
		}, []string{"op", "format"}),
		storageOps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_operations_total",
			Help:      "Dataset loads and saves by backend and outcome.",
		}, []string{"op", "backend", "result"}),
		storageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "storage_operation_duration_seconds",
			Help:      "Dataset load and save latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op", "backend"}),
	}
}

// Install registers m as the engine, codec and storage hooks.
func (m *Metrics) Install() {
	observability.SetEngineHooks(m)
	observability.SetCodecHooks(m)
	observability.SetStorageHooks(m)
}

func (m *Metrics) OnBuild(_ context.Context, _ string, people, diagnostics, conflicts int, d time.Duration) {
	m.builds.Inc()
	m.buildDuration.Observe(d.Seconds())
	m.buildPeople.Set(float64(people))
	m.diagnostics.Add(float64(diagnostics))
	m.conflicts.Add(float64(conflicts))
}

func (m *Metrics) OnResolve(_ context.Context, kind string, d time.Duration, _ error) {
	m.resolves.WithLabelValues(kind).Inc()
	m.resolveDuration.Observe(d.Seconds())
}

func (m *Metrics) OnEncode(_ context.Context, format string, _, size int, err error) {
	m.codecOps.WithLabelValues("encode", format, result(err)).Inc()
	m.codecBytes.WithLabelValues("encode", format).Add(float64(size))
}

func (m *Metrics) OnDecode(_ context.Context, format string, size, _ int, err error) {
	m.codecOps.WithLabelValues("decode", format, result(err)).Inc()
	m.codecBytes.WithLabelValues("decode", format).Add(float64(size))
}

func (m *Metrics) OnLoad(_ context.Context, backend, _ string, _ int, d time.Duration, err error) {
	m.storageOps.WithLabelValues("load", backend, result(err)).Inc()
	m.storageDuration.WithLabelValues("load", backend).Observe(d.Seconds())
}

func (m *Metrics) OnSave(_ context.Context, backend, _ string, _ int, d time.Duration, err error) {
	m.storageOps.WithLabelValues("save", backend, result(err)).Inc()
	m.storageDuration.WithLabelValues("save", backend).Observe(d.Seconds())
}

// result maps an error to a low-cardinality label.
func result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, errors.ErrCodeNotFound):
		return "not_found"
	default:
		if code := errors.GetCode(err); code != "" {
			return string(code)
		}
		return "error"
	}
}

var (
	_ observability.EngineHooks  = (*Metrics)(nil)
	_ observability.CodecHooks   = (*Metrics)(nil)
	_ observability.StorageHooks = (*Metrics)(nil)
)
