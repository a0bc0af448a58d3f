package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"jassjr/internal/adapter/analyzer"
	"jassjr/internal/adapter/cache"
	"jassjr/internal/adapter/memstore"
	"jassjr/internal/adapter/metrics"
	"jassjr/internal/adapter/store"
	"jassjr/internal/domain"
	"jassjr/internal/port"
)

// IndexOptions describes the run for logging and the build manifest.
type IndexOptions struct {
	// LogEvery emits a progress line each time this many more documents
	// have been seen. Zero disables progress lines.
	LogEvery   int
	ByteOrder  store.ByteOrder
	VocabOrder memstore.VocabOrder
	ConfigHash string
}

// IndexUseCase runs one indexing session: a single pass over the input
// followed by serialization of the artifacts.
type IndexUseCase struct {
	builder   *memstore.Builder
	writer    *store.Writer
	manifest  port.ManifestStore
	metrics   *metrics.Metrics
	stemCache *cache.StemCache
	opts      IndexOptions
	log       *logrus.Entry
}

// NewIndexUseCase creates a new index use case.
func NewIndexUseCase(
	builder *memstore.Builder,
	writer *store.Writer,
	opts IndexOptions,
	log *logrus.Entry,
) *IndexUseCase {
	return &IndexUseCase{
		builder: builder,
		writer:  writer,
		opts:    opts,
		log:     log,
	}
}

// WithManifest records a build manifest in ms after a successful write.
func (u *IndexUseCase) WithManifest(ms port.ManifestStore) *IndexUseCase {
	u.manifest = ms
	return u
}

// WithMetrics records build metrics in m.
func (u *IndexUseCase) WithMetrics(m *metrics.Metrics) *IndexUseCase {
	u.metrics = m
	return u
}

// WithStemCache reports the hit rate of c when the run finishes.
func (u *IndexUseCase) WithStemCache(c *cache.StemCache) *IndexUseCase {
	u.stemCache = c
	return u
}

// IndexResult contains the results of an indexing operation.
type IndexResult struct {
	Stats    domain.BuildStats
	Write    *store.WriteResult
	Duration time.Duration
}

// Index reads src to the end, then writes the index. input names the source
// in the manifest.
func (u *IndexUseCase) Index(ctx context.Context, src port.LineSource, input string) (*IndexResult, error) {
	start := time.Now()
	reported := 0

	err := src.Each(ctx, func(line string) error {
		for tok := range analyzer.Tokens(line) {
			u.builder.Consume(tok)
		}
		if u.opts.LogEvery > 0 {
			if docs := u.builder.DocumentCount(); docs-reported >= u.opts.LogEvery {
				reported = docs - docs%u.opts.LogEvery
				u.log.WithField("documents", reported).Debug("indexing progress")
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	u.builder.EndOfStream()

	stats := u.builder.Stats()
	if stats.Orphans > 0 {
		u.log.WithField("terms", stats.Orphans).Warn("terms before the first document tag were ignored")
	}
	if stats.PrimaryKeys != stats.Documents {
		u.log.WithFields(logrus.Fields{
			"documents":    stats.Documents,
			"primary_keys": stats.PrimaryKeys,
		}).Warn("primary key count differs from document count")
	}
	u.log.WithFields(logrus.Fields{
		"documents": stats.Documents,
		"terms":     stats.Terms,
		"postings":  stats.Postings,
	}).Info("input indexed")

	written, err := u.writer.Write(u.builder)
	if err != nil {
		return nil, fmt.Errorf("failed to write index: %w", err)
	}

	result := &IndexResult{
		Stats:    stats,
		Write:    written,
		Duration: time.Since(start),
	}
	u.log.WithFields(logrus.Fields{
		"dir":      written.Dir,
		"duration": result.Duration.Round(time.Millisecond).String(),
	}).Info("index written")

	if u.metrics != nil {
		u.recordMetrics(result)
	}

	if u.manifest != nil {
		m := domain.Manifest{
			SchemaVersion: store.CurrentSchemaVersion,
			ConfigHash:    u.opts.ConfigHash,
			ByteOrder:     u.opts.ByteOrder.String(),
			VocabOrder:    string(u.opts.VocabOrder),
			Input:         input,
			BuiltAt:       start.UTC().Truncate(time.Second),
			Duration:      result.Duration.String(),
			Stats:         stats,
		}
		if err := u.manifest.PutManifest(m); err != nil {
			return nil, fmt.Errorf("failed to store manifest: %w", err)
		}
	}

	return result, nil
}

func (u *IndexUseCase) recordMetrics(result *IndexResult) {
	u.metrics.ObserveBuild(result.Stats, result.Duration, time.Now())
	u.metrics.ObserveArtifact(store.DocIDsFile, result.Write.DocIDsBytes)
	u.metrics.ObserveArtifact(store.LengthsFile, result.Write.LengthsBytes)
	u.metrics.ObserveArtifact(store.PostingsFile, result.Write.PostingsBytes)
	u.metrics.ObserveArtifact(store.VocabFile, result.Write.VocabBytes)
	if u.stemCache != nil {
		hits, misses := u.stemCache.Stats()
		u.metrics.ObserveStemCache(hits, misses)
	}
}
