package port

import "jassjr/internal/domain"

// Stemmer conflates an already lowercased word to its root form.
type Stemmer interface {
	Stem(word string) string
}

// StopList reports whether a lowercased token is excluded from the index.
type StopList interface {
	IsStopWord(token string) bool
}

// TermAnalyzer turns a raw (non-tag) lexer token into an index term.
type TermAnalyzer interface {
	Analyze(token string) domain.Term
}
