package analyzer

import (
	"strings"

	"jassjr/internal/domain"
	"jassjr/internal/port"
)

// Tokenizer turns lexer tokens into index terms: lowercase, drop stop
// words, stem, then truncate to the stored term ceiling.
type Tokenizer struct {
	stemmer   port.Stemmer
	stopwords port.StopList
	maxBytes  int
}

// NewTokenizer creates a new Tokenizer. A nil stemmer disables stemming.
// maxBytes is clamped to domain.MaxTermBytes.
func NewTokenizer(stopwords port.StopList, stemmer port.Stemmer, maxBytes int) *Tokenizer {
	if maxBytes <= 0 || maxBytes > domain.MaxTermBytes {
		maxBytes = domain.MaxTermBytes
	}
	if stopwords == nil {
		stopwords = NewStopList()
	}
	return &Tokenizer{
		stemmer:   stemmer,
		stopwords: stopwords,
		maxBytes:  maxBytes,
	}
}

// Analyze runs one non-tag token through the chain.
func (t *Tokenizer) Analyze(token string) domain.Term {
	word := strings.ToLower(token)
	if t.stopwords.IsStopWord(word) {
		return domain.Term{Text: word, Stopword: true}
	}
	if t.stemmer != nil {
		word = t.stemmer.Stem(word)
	}
	term := domain.Term{Text: word}
	if len(word) > t.maxBytes {
		term.Text = word[:t.maxBytes]
		term.Truncated = true
	}
	return term
}

// Tokenize returns the admitted terms of text in order. Tags are skipped.
func (t *Tokenizer) Tokenize(text string) []string {
	var terms []string
	for tok := range Tokens(text) {
		if domain.IsTag(tok) {
			continue
		}
		if term := t.Analyze(tok); !term.Stopword {
			terms = append(terms, term.Text)
		}
	}
	return terms
}
