package usecase

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"jassjr/internal/adapter/analyzer"
	"jassjr/internal/adapter/cache"
	"jassjr/internal/adapter/fs"
	"jassjr/internal/adapter/memstore"
	"jassjr/internal/adapter/metrics"
	"jassjr/internal/adapter/store"
	"jassjr/internal/domain"
)

const twoDocInput = "<DOC><DOCNO>D1</DOCNO>the cat sat</DOC><DOC><DOCNO>D2</DOCNO>the dog ran</DOC>"

type harness struct {
	dir     string
	uc      *IndexUseCase
	hook    *test.Hook
	cache   *cache.StemCache
	metrics *metrics.Metrics
}

func newHarness(t *testing.T, order store.ByteOrder, logEvery int) *harness {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	stems := cache.NewStemCache(analyzer.NewPorterStemmer(), 0)
	tok := analyzer.NewTokenizer(analyzer.NewStopList("the"), stems, 0)
	dir := filepath.Join(t.TempDir(), "index")
	m := metrics.New()

	uc := NewIndexUseCase(
		memstore.NewBuilder(tok, memstore.DefaultOptions()),
		store.NewWriter(dir, order),
		IndexOptions{LogEvery: logEvery, ByteOrder: order, VocabOrder: memstore.FirstSeen, ConfigHash: "abc123"},
		logger.WithField("component", "index"),
	).WithMetrics(m).WithStemCache(stems)

	return &harness{dir: dir, uc: uc, hook: hook, cache: stems, metrics: m}
}

func source(text string) *fs.LineReader {
	return fs.NewLineReader("test", strings.NewReader(text), 1<<20)
}

func messages(hook *test.Hook, level logrus.Level) []string {
	var msgs []string
	for _, e := range hook.AllEntries() {
		if e.Level == level {
			msgs = append(msgs, e.Message)
		}
	}
	return msgs
}

func TestIndex_TwoDocuments(t *testing.T) {
	h := newHarness(t, store.Compat, 0)

	result, err := h.uc.Index(context.Background(), source(twoDocInput), "test")
	require.NoError(t, err)

	assert.Equal(t, 2, result.Stats.Documents)
	assert.Equal(t, 4, result.Stats.Admitted)
	assert.Equal(t, 8, result.Stats.Tags)
	assert.Equal(t, 4, result.Write.VocabEntries)
	assert.Equal(t, int64(32), result.Write.PostingsBytes)

	r, err := store.Open(h.dir, store.Compat)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, []string{"D1", "D2"}, r.DocIDs())
	assert.Equal(t, []uint32{2, 2}, r.Lengths())

	want := map[string]domain.PostingsList{
		"cat": {{Doc: 0, TF: 1}},
		"sat": {{Doc: 0, TF: 1}},
		"dog": {{Doc: 1, TF: 1}},
		"ran": {{Doc: 1, TF: 1}},
	}
	for term, list := range want {
		got, err := r.Postings(term)
		require.NoError(t, err)
		assert.Equal(t, list, got, term)
	}
	_, err = r.Postings("the")
	assert.ErrorIs(t, err, domain.ErrTermNotFound)

	assert.Empty(t, messages(h.hook, logrus.WarnLevel))
}

func TestIndex_LengthsSumToAdmitted(t *testing.T) {
	h := newHarness(t, store.Native, 0)
	input := strings.Join([]string{
		"<DOC>",
		"<DOCNO> A-1 </DOCNO>",
		"Running runners ran; the runner runs running.",
		"</DOC>",
		"<DOC>",
		"<DOCNO> B-2 </DOCNO>",
		"Generalizations of connected connections",
		"</DOC>",
	}, "\r\n")

	result, err := h.uc.Index(context.Background(), source(input), "test")
	require.NoError(t, err)

	r, err := store.Open(h.dir, store.Native)
	require.NoError(t, err)
	defer r.Close()

	var sum uint64
	for _, n := range r.Lengths() {
		sum += uint64(n)
	}
	assert.Equal(t, uint64(result.Stats.Admitted), sum)
	assert.Equal(t, []string{"A-1", "B-2"}, r.DocIDs())

	for _, entry := range r.Vocab() {
		list, err := r.ReadPostings(entry)
		require.NoError(t, err)
		for i, p := range list {
			assert.GreaterOrEqual(t, p.TF, uint32(1))
			if i > 0 {
				assert.Greater(t, p.Doc, list[i-1].Doc, entry.Term)
			}
		}
	}

	hits, misses := h.cache.Stats()
	assert.Equal(t, result.Stats.Admitted, hits+misses)
	assert.Positive(t, hits, "repeated words hit the stem cache")
}

func TestIndex_OrphanTermsWarnOnce(t *testing.T) {
	h := newHarness(t, store.Compat, 0)

	result, err := h.uc.Index(context.Background(), source("stray words here\n<DOC><DOCNO>D1</DOCNO>cat</DOC>"), "test")
	require.NoError(t, err)

	assert.Equal(t, 3, result.Stats.Orphans)
	warnings := messages(h.hook, logrus.WarnLevel)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "before the first document tag")
}

func TestIndex_NoDocuments(t *testing.T) {
	h := newHarness(t, store.Compat, 0)

	result, err := h.uc.Index(context.Background(), source("no markup at all"), "test")
	require.NoError(t, err)

	assert.Zero(t, result.Stats.Documents)
	assert.Zero(t, result.Write.LengthsBytes)
	assert.Zero(t, result.Write.VocabEntries)
}

func TestIndex_MissingPrimaryKeyWarns(t *testing.T) {
	h := newHarness(t, store.Compat, 0)

	_, err := h.uc.Index(context.Background(), source("<DOC><DOCNO>D1</DOCNO>cat</DOC><DOC>dog</DOC>"), "test")
	require.NoError(t, err)

	assert.Contains(t, messages(h.hook, logrus.WarnLevel), "primary key count differs from document count")
}

func TestIndex_ProgressEveryN(t *testing.T) {
	h := newHarness(t, store.Compat, 2)
	input := strings.Repeat("<DOC><DOCNO>X</DOCNO>word</DOC>\n", 5)

	_, err := h.uc.Index(context.Background(), source(input), "test")
	require.NoError(t, err)

	var reported []any
	for _, e := range h.hook.AllEntries() {
		if e.Message == "indexing progress" {
			reported = append(reported, e.Data["documents"])
		}
	}
	assert.Equal(t, []any{2, 4}, reported)
}

func TestIndex_Cancelled(t *testing.T) {
	h := newHarness(t, store.Compat, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.uc.Index(ctx, source(twoDocInput), "test")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIndex_WritesManifest(t *testing.T) {
	h := newHarness(t, store.Big, 0)
	manifestPath := filepath.Join(t.TempDir(), "manifest.db")
	ms, err := store.OpenManifest(manifestPath, false)
	require.NoError(t, err)
	defer ms.Close()
	h.uc.WithManifest(ms)

	result, err := h.uc.Index(context.Background(), source(twoDocInput), "collection.txt")
	require.NoError(t, err)

	m, err := ms.GetManifest()
	require.NoError(t, err)
	assert.Equal(t, store.CurrentSchemaVersion, m.SchemaVersion)
	assert.Equal(t, "abc123", m.ConfigHash)
	assert.Equal(t, "big", m.ByteOrder)
	assert.Equal(t, "first_seen", m.VocabOrder)
	assert.Equal(t, "collection.txt", m.Input)
	assert.Equal(t, result.Stats, m.Stats)
	assert.False(t, m.BuiltAt.IsZero())
}

func TestIndex_RecordsMetrics(t *testing.T) {
	h := newHarness(t, store.Compat, 0)

	_, err := h.uc.Index(context.Background(), source(twoDocInput), "test")
	require.NoError(t, err)

	families, err := h.metrics.Registry().Gather()
	require.NoError(t, err)

	found := map[string]bool{}
	for _, mf := range families {
		found[mf.GetName()] = true
		if mf.GetName() == "jassjr_documents_indexed_total" {
			assert.Equal(t, 2.0, mf.GetMetric()[0].GetCounter().GetValue())
		}
	}
	assert.True(t, found["jassjr_artifact_bytes"])
	assert.True(t, found["jassjr_stem_cache_lookups_total"])
}
