// Package metrics defines the Prometheus collectors describing an indexing
// run and exports them in the node-exporter textfile format.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"jassjr/internal/domain"
)

const namespace = "jassjr"

// Metrics holds all Prometheus collectors for one indexing run.
type Metrics struct {
	registry *prometheus.Registry

	DocumentsTotal  prometheus.Counter
	TokensTotal     *prometheus.CounterVec
	VocabularySize  prometheus.Gauge
	PostingsTotal   prometheus.Gauge
	ArtifactBytes   *prometheus.GaugeVec
	StemCacheTotal  *prometheus.CounterVec
	BuildDuration   prometheus.Gauge
	LastBuildUnixTS prometheus.Gauge
}

// New creates the collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		DocumentsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "documents_indexed_total",
				Help:      "Total documents indexed.",
			},
		),
		TokensTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tokens_total",
				Help:      "Lexer tokens by outcome (admitted, stopword, truncated, orphan, tag).",
			},
			[]string{"outcome"},
		),
		VocabularySize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "vocabulary_terms",
				Help:      "Distinct terms in the vocabulary.",
			},
		),
		PostingsTotal: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "postings",
				Help:      "Postings records written.",
			},
		),
		ArtifactBytes: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "artifact_bytes",
				Help:      "Size of each written artifact in bytes.",
			},
			[]string{"file"},
		),
		StemCacheTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stem_cache_lookups_total",
				Help:      "Stem cache lookups by result (hit, miss).",
			},
			[]string{"result"},
		),
		BuildDuration: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "build_duration_seconds",
				Help:      "Wall time of the last indexing run.",
			},
		),
		LastBuildUnixTS: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_build_timestamp_seconds",
				Help:      "Unix time the last indexing run finished.",
			},
		),
	}

	m.registry.MustRegister(
		m.DocumentsTotal,
		m.TokensTotal,
		m.VocabularySize,
		m.PostingsTotal,
		m.ArtifactBytes,
		m.StemCacheTotal,
		m.BuildDuration,
		m.LastBuildUnixTS,
	)

	return m
}

// Registry returns the private registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveBuild records the counters of a finished build.
func (m *Metrics) ObserveBuild(stats domain.BuildStats, elapsed time.Duration, finished time.Time) {
	m.DocumentsTotal.Add(float64(stats.Documents))
	m.TokensTotal.WithLabelValues("admitted").Add(float64(stats.Admitted))
	m.TokensTotal.WithLabelValues("stopword").Add(float64(stats.Stopwords))
	m.TokensTotal.WithLabelValues("truncated").Add(float64(stats.Truncated))
	m.TokensTotal.WithLabelValues("orphan").Add(float64(stats.Orphans))
	m.TokensTotal.WithLabelValues("tag").Add(float64(stats.Tags))
	m.VocabularySize.Set(float64(stats.Terms))
	m.PostingsTotal.Set(float64(stats.Postings))
	m.BuildDuration.Set(elapsed.Seconds())
	m.LastBuildUnixTS.Set(float64(finished.Unix()))
}

// ObserveArtifact records the size of one written file.
func (m *Metrics) ObserveArtifact(file string, size int64) {
	m.ArtifactBytes.WithLabelValues(file).Set(float64(size))
}

// ObserveStemCache records stem cache hit and miss counts.
func (m *Metrics) ObserveStemCache(hits, misses int) {
	m.StemCacheTotal.WithLabelValues("hit").Add(float64(hits))
	m.StemCacheTotal.WithLabelValues("miss").Add(float64(misses))
}

// WriteTextfile writes every collector to path in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
