package analyzer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"jassjr/internal/domain"
)

func TestTokenizer_Tokenize_WithStemming(t *testing.T) {
	tok := NewTokenizer(DefaultStopList(), NewPorterStemmer(), 0)

	tokens := tok.Tokenize("running dogs are playing")
	assert.Equal(t, []string{"run", "dog", "plai"}, tokens)
}

func TestTokenizer_Tokenize_WithoutStemming(t *testing.T) {
	tok := NewTokenizer(DefaultStopList(), nil, 0)

	tokens := tok.Tokenize("Running dogs are playing")
	assert.Equal(t, []string{"running", "dogs", "playing"}, tokens)
}

func TestTokenizer_SkipsTags(t *testing.T) {
	tok := NewTokenizer(NewStopList("the"), NewPorterStemmer(), 0)

	tokens := tok.Tokenize("<DOC><TEXT>the cat sat</TEXT></DOC>")
	assert.Equal(t, []string{"cat", "sat"}, tokens)
}

func TestTokenizer_StopwordRemoval(t *testing.T) {
	tok := NewTokenizer(NewStopList("the"), nil, 0)

	term := tok.Analyze("The")
	assert.True(t, term.Stopword)
	assert.Equal(t, "the", term.Text)

	term = tok.Analyze("Quick")
	assert.False(t, term.Stopword)
	assert.Equal(t, "quick", term.Text)
}

func TestTokenizer_Truncation(t *testing.T) {
	tok := NewTokenizer(NewStopList(), nil, 0)

	exact := strings.Repeat("x", 255)
	term := tok.Analyze(exact)
	assert.Equal(t, exact, term.Text)
	assert.False(t, term.Truncated)

	term = tok.Analyze(strings.Repeat("x", 256))
	assert.Len(t, term.Text, 255)
	assert.True(t, term.Truncated)
}

func TestTokenizer_TruncatesAfterStemming(t *testing.T) {
	tok := NewTokenizer(NewStopList(), NewPorterStemmer(), 0)

	// 256 bytes before stemming, 255 after the plural is stripped.
	word := strings.Repeat("b", 255) + "s"
	term := tok.Analyze(word)
	assert.Len(t, term.Text, 255)
	assert.False(t, term.Truncated)
}

func TestTokenizer_MaxBytesClamp(t *testing.T) {
	tok := NewTokenizer(nil, nil, 4)
	assert.Equal(t, domain.Term{Text: "abcd", Truncated: true}, tok.Analyze("abcdef"))

	tok = NewTokenizer(nil, nil, 1000)
	assert.Len(t, tok.Analyze(strings.Repeat("z", 300)).Text, 255)
}

func TestTokenizer_EmptyInput(t *testing.T) {
	tok := NewTokenizer(DefaultStopList(), NewPorterStemmer(), 0)
	assert.Empty(t, tok.Tokenize(""))
}
