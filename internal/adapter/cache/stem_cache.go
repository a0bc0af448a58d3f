package cache

import (
	"jassjr/internal/port"
)

// StemCache memoizes a Stemmer. Stemming is a pure function of the word,
// so a hit returns exactly what the wrapped stemmer would. Entries are
// evicted oldest first once maxSize is reached.
//
// A StemCache belongs to one indexing session and is not safe for
// concurrent use.
type StemCache struct {
	stemmer port.Stemmer
	entries map[string]string
	order   []string
	maxSize int

	hits   int
	misses int
}

func NewStemCache(stemmer port.Stemmer, maxSize int) *StemCache {
	if maxSize <= 0 {
		maxSize = 1 << 16
	}
	return &StemCache{
		stemmer: stemmer,
		entries: make(map[string]string, maxSize),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
	}
}

func (c *StemCache) Stem(word string) string {
	if stem, ok := c.entries[word]; ok {
		c.hits++
		return stem
	}
	c.misses++

	stem := c.stemmer.Stem(word)
	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}
	c.entries[word] = stem
	c.order = append(c.order, word)
	return stem
}

func (c *StemCache) Size() int {
	return len(c.entries)
}

// Stats returns the hit and miss counts since creation.
func (c *StemCache) Stats() (hits, misses int) {
	return c.hits, c.misses
}

func (c *StemCache) evictOldest() {
	if len(c.order) == 0 {
		return
	}
	oldest := c.order[0]
	c.order[0] = ""
	c.order = c.order[1:]
	delete(c.entries, oldest)
}
