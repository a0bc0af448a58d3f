package memstore

import (
	"slices"

	"jassjr/internal/domain"
	"jassjr/internal/port"
)

// VocabOrder selects the order in which Terms reports the vocabulary.
type VocabOrder string

const (
	FirstSeen VocabOrder = "first_seen"
	Sorted    VocabOrder = "sorted"
)

type Options struct {
	DocumentTag   string
	PrimaryKeyTag string
	// IndexPrimaryKeys also admits the primary key token as a term of its
	// document.
	IndexPrimaryKeys bool
	VocabOrder       VocabOrder
}

func DefaultOptions() Options {
	return Options{
		DocumentTag:   "<DOC>",
		PrimaryKeyTag: "<DOCNO>",
		VocabOrder:    FirstSeen,
	}
}

// Builder accumulates postings lists and the document table over a single
// forward pass of the token stream. It is owned by one indexing session and
// is not safe for concurrent use.
type Builder struct {
	opts     Options
	analyzer port.TermAnalyzer

	postings map[string]domain.PostingsList
	terms    []string
	docIDs   []string
	lengths  []uint32

	doc         uint32
	inDocument  bool
	docLength   uint32
	awaitingKey bool
	finished    bool

	stats domain.BuildStats
}

func NewBuilder(analyzer port.TermAnalyzer, opts Options) *Builder {
	defaults := DefaultOptions()
	if opts.DocumentTag == "" {
		opts.DocumentTag = defaults.DocumentTag
	}
	if opts.PrimaryKeyTag == "" {
		opts.PrimaryKeyTag = defaults.PrimaryKeyTag
	}
	if opts.VocabOrder == "" {
		opts.VocabOrder = defaults.VocabOrder
	}
	return &Builder{
		opts:     opts,
		analyzer: analyzer,
		postings: make(map[string]domain.PostingsList),
	}
}

// Consume routes one lexer token: boundary and primary key detection first,
// then term admission for anything that is not a tag.
func (b *Builder) Consume(token string) {
	b.stats.Tokens++

	isKey := false
	if b.awaitingKey {
		b.ObservePrimaryKey(token)
		isKey = true
	}

	if domain.IsTag(token) {
		b.ObserveTag(token)
		return
	}
	if isKey && !b.opts.IndexPrimaryKeys {
		return
	}
	b.IndexTerm(token)
}

// ObserveTag handles an opening tag. The document tag starts a new document
// and the primary key tag arms the one-token key lookahead. Other tags are
// inert.
func (b *Builder) ObserveTag(tag string) {
	b.stats.Tags++
	switch tag {
	case b.opts.DocumentTag:
		b.BeginDocument()
	case b.opts.PrimaryKeyTag:
		b.awaitingKey = true
	}
}

// BeginDocument finalizes the length of the previous document, if any, and
// moves to the next document ordinal.
func (b *Builder) BeginDocument() {
	if b.inDocument {
		b.lengths = append(b.lengths, b.docLength)
		b.doc++
	}
	b.inDocument = true
	b.docLength = 0
	b.stats.Documents++
}

// ObservePrimaryKey records token as the external identifier of the current
// document and clears the lookahead.
func (b *Builder) ObservePrimaryKey(token string) {
	b.docIDs = append(b.docIDs, token)
	b.awaitingKey = false
	b.stats.PrimaryKeys++
}

// IndexTerm analyzes a raw term token and, unless it is a stop word, adds
// it to the current document's postings.
func (b *Builder) IndexTerm(token string) {
	if !b.inDocument {
		b.stats.Orphans++
		return
	}

	term := b.analyzer.Analyze(token)
	if term.Stopword {
		b.stats.Stopwords++
		return
	}
	if term.Truncated {
		b.stats.Truncated++
	}
	b.add(term.Text)
}

func (b *Builder) add(term string) {
	list, ok := b.postings[term]
	switch {
	case !ok:
		b.postings[term] = domain.PostingsList{{Doc: b.doc, TF: 1}}
		b.terms = append(b.terms, term)
	case list.Last().Doc != b.doc:
		b.postings[term] = append(list, domain.Posting{Doc: b.doc, TF: 1})
	default:
		list.Last().TF++
	}
	b.docLength++
	b.stats.Admitted++
}

// EndOfStream finalizes the last document. Calling it more than once has no
// further effect.
func (b *Builder) EndOfStream() {
	if b.finished {
		return
	}
	b.finished = true
	if b.inDocument {
		b.lengths = append(b.lengths, b.docLength)
	}
}

// DocumentCount returns the number of documents started so far.
func (b *Builder) DocumentCount() int {
	return b.stats.Documents
}

// Terms returns the vocabulary in the configured order.
func (b *Builder) Terms() []string {
	terms := slices.Clone(b.terms)
	if b.opts.VocabOrder == Sorted {
		slices.Sort(terms)
	}
	return terms
}

func (b *Builder) Postings(term string) domain.PostingsList {
	return b.postings[term]
}

func (b *Builder) DocIDs() []string {
	return b.docIDs
}

func (b *Builder) Lengths() []uint32 {
	return b.lengths
}

func (b *Builder) Table() domain.DocumentTable {
	return domain.DocumentTable{DocIDs: b.docIDs, Lengths: b.lengths}
}

func (b *Builder) Stats() domain.BuildStats {
	stats := b.stats
	stats.Terms = len(b.terms)
	for _, list := range b.postings {
		stats.Postings += len(list)
	}
	return stats
}
