package domain

import (
	"strings"
	"time"
)

// MaxTermBytes is the hard ceiling on a stored term. The vocabulary file
// records the term length in a single byte.
const MaxTermBytes = 0xFF

type Posting struct {
	Doc uint32
	TF  uint32
}

type PostingsList []Posting

// Last returns a pointer to the most recent posting, or nil for an empty list.
func (l PostingsList) Last() *Posting {
	if len(l) == 0 {
		return nil
	}
	return &l[len(l)-1]
}

type DocumentTable struct {
	DocIDs  []string
	Lengths []uint32
}

type VocabEntry struct {
	Term   string
	Offset uint32
	Length uint32
}

// Count returns the number of postings in the term's run.
func (e VocabEntry) Count() int {
	return int(e.Length / 8)
}

// Term is the outcome of running one lexer token through the analysis chain.
type Term struct {
	Text      string
	Stopword  bool
	Truncated bool
}

type BuildStats struct {
	Documents   int `json:"documents"`
	PrimaryKeys int `json:"primary_keys"`
	Tokens      int `json:"tokens"`
	Tags        int `json:"tags"`
	Admitted    int `json:"admitted"`
	Stopwords   int `json:"stopwords"`
	Truncated   int `json:"truncated"`
	Orphans     int `json:"orphans"`
	Terms       int `json:"terms"`
	Postings    int `json:"postings"`
}

type Manifest struct {
	SchemaVersion int        `json:"schema_version"`
	ConfigHash    string     `json:"config_hash"`
	ByteOrder     string     `json:"byte_order"`
	VocabOrder    string     `json:"vocab_order"`
	Input         string     `json:"input"`
	BuiltAt       time.Time  `json:"built_at"`
	Duration      string     `json:"duration"`
	Stats         BuildStats `json:"stats"`
}

// IsTag reports whether a lexer token is a markup tag.
func IsTag(token string) bool {
	return strings.HasPrefix(token, "<")
}
