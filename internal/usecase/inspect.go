package usecase

import (
	"errors"
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
	"jassjr/internal/adapter/store"
	"jassjr/internal/domain"
	"jassjr/internal/port"
)

// InspectUseCase answers questions about an index on disk.
type InspectUseCase struct {
	reader   *store.Reader
	manifest port.ManifestStore
}

// NewInspectUseCase creates a new inspect use case. manifest may be nil.
func NewInspectUseCase(reader *store.Reader, manifest port.ManifestStore) *InspectUseCase {
	return &InspectUseCase{reader: reader, manifest: manifest}
}

// Summary describes an index at a glance.
type Summary struct {
	Dir         string
	Documents   int
	DocIDs      int
	Terms       int
	Postings    int
	TotalLength uint64
	Manifest    *domain.Manifest
}

// Summary counts the artifacts and loads the manifest when one exists.
func (u *InspectUseCase) Summary() (*Summary, error) {
	s := &Summary{
		Dir:       u.reader.Dir(),
		Documents: len(u.reader.Lengths()),
		DocIDs:    len(u.reader.DocIDs()),
		Terms:     len(u.reader.Vocab()),
	}
	for _, n := range u.reader.Lengths() {
		s.TotalLength += uint64(n)
	}
	for _, e := range u.reader.Vocab() {
		s.Postings += e.Count()
	}

	if u.manifest != nil {
		m, err := u.manifest.GetManifest()
		switch {
		case err == nil:
			s.Manifest = &m
		case !errors.Is(err, domain.ErrNoManifest):
			return nil, fmt.Errorf("failed to read manifest: %w", err)
		}
	}
	return s, nil
}

// TermPostings is one vocabulary entry with its decoded postings.
type TermPostings struct {
	Entry    domain.VocabEntry
	Postings domain.PostingsList
}

// MatchTerms returns every term matching at least one glob pattern, in
// vocabulary order.
func (u *InspectUseCase) MatchTerms(patterns []string) ([]TermPostings, error) {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("%w: bad term pattern %q", domain.ErrUsage, p)
		}
	}

	var matches []TermPostings
	for _, entry := range u.reader.Vocab() {
		if !matchAny(patterns, entry.Term) {
			continue
		}
		list, err := u.reader.ReadPostings(entry)
		if err != nil {
			return nil, err
		}
		matches = append(matches, TermPostings{Entry: entry, Postings: list})
	}
	return matches, nil
}

func matchAny(patterns []string, term string) bool {
	for _, pattern := range patterns {
		matched, err := doublestar.Match(pattern, term)
		if err == nil && matched {
			return true
		}
	}
	return false
}

// DocumentRow is one row of the document table.
type DocumentRow struct {
	Ordinal int
	ID      string
	Length  uint32
}

// Documents joins docids.bin and lengths.bin by ordinal. A missing key or
// length is left zero.
func (u *InspectUseCase) Documents() []DocumentRow {
	ids, lengths := u.reader.DocIDs(), u.reader.Lengths()
	n := max(len(ids), len(lengths))
	rows := make([]DocumentRow, n)
	for i := range rows {
		rows[i].Ordinal = i
		if i < len(ids) {
			rows[i].ID = ids[i]
		}
		if i < len(lengths) {
			rows[i].Length = lengths[i]
		}
	}
	return rows
}
