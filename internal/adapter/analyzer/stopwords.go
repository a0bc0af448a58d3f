package analyzer

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
)

//go:embed stopwords.txt
var defaultStopwords string

// StopList is a fixed set of lowercase words excluded from the index.
type StopList struct {
	words map[string]struct{}
}

// NewStopList builds a stop list from the given words.
func NewStopList(words ...string) *StopList {
	s := &StopList{words: make(map[string]struct{}, len(words))}
	for _, w := range words {
		s.words[strings.ToLower(w)] = struct{}{}
	}
	return s
}

// DefaultStopList returns the built-in English stop list.
func DefaultStopList() *StopList {
	s, err := ParseStopList(strings.NewReader(defaultStopwords))
	if err != nil {
		panic(err)
	}
	return s
}

// ParseStopList reads one word per line. Blank lines and lines starting
// with '#' are ignored.
func ParseStopList(r io.Reader) (*StopList, error) {
	s := NewStopList()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		s.words[strings.ToLower(line)] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadStopList loads a stop list from a file, or the built-in list when
// path is empty.
func LoadStopList(path string) (*StopList, error) {
	if path == "" {
		return DefaultStopList(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open stop list: %w", err)
	}
	defer f.Close()

	s, err := ParseStopList(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read stop list %s: %w", path, err)
	}
	return s, nil
}

// IsStopWord reports whether the lowercased token is in the list.
func (s *StopList) IsStopWord(token string) bool {
	_, ok := s.words[token]
	return ok
}

// Len returns the number of words in the list.
func (s *StopList) Len() int {
	return len(s.words)
}
