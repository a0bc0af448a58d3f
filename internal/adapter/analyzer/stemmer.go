package analyzer

import (
	"strings"
)

// PorterStemmer implements the Porter stemming algorithm, including the
// bli→ble and logi→log departures from the published rule set.
type PorterStemmer struct{}

// NewPorterStemmer creates a new Porter stemmer.
func NewPorterStemmer() *PorterStemmer {
	return &PorterStemmer{}
}

// Stem returns the stem of a lowercased word. Words shorter than three bytes
// are returned unchanged.
func (p *PorterStemmer) Stem(word string) string {
	if len(word) < 3 {
		return word
	}

	word = step1a(word)
	word = step1b(word)
	word = step1c(word)
	word = step2(word)
	word = step3(word)
	word = step4(word)
	word = step5a(word)
	word = step5b(word)

	return word
}

// StemWord lowercases word and returns its stem.
func (p *PorterStemmer) StemWord(word string) string {
	return p.Stem(strings.ToLower(word))
}

// rule rewrites suffix to replacement when the remaining stem has a measure
// of at least minMeasure and guard (if any) accepts the stem.
type rule struct {
	suffix      string
	replacement string
	minMeasure  int
	guard       func(stem string) bool
}

// ruleTable is evaluated first match wins: the first rule whose suffix
// matches decides the outcome, even when its conditions reject the stem.
type ruleTable []rule

func (t ruleTable) apply(word string) string {
	for _, r := range t {
		if !strings.HasSuffix(word, r.suffix) {
			continue
		}
		stem := word[:len(word)-len(r.suffix)]
		if measure(stem) >= r.minMeasure && (r.guard == nil || r.guard(stem)) {
			return stem + r.replacement
		}
		return word
	}
	return word
}

var step2Rules = ruleTable{
	{suffix: "ational", replacement: "ate", minMeasure: 1},
	{suffix: "tional", replacement: "tion", minMeasure: 1},
	{suffix: "enci", replacement: "ence", minMeasure: 1},
	{suffix: "anci", replacement: "ance", minMeasure: 1},
	{suffix: "izer", replacement: "ize", minMeasure: 1},
	{suffix: "bli", replacement: "ble", minMeasure: 1},
	{suffix: "alli", replacement: "al", minMeasure: 1},
	{suffix: "entli", replacement: "ent", minMeasure: 1},
	{suffix: "eli", replacement: "e", minMeasure: 1},
	{suffix: "ousli", replacement: "ous", minMeasure: 1},
	{suffix: "ization", replacement: "ize", minMeasure: 1},
	{suffix: "ation", replacement: "ate", minMeasure: 1},
	{suffix: "ator", replacement: "ate", minMeasure: 1},
	{suffix: "alism", replacement: "al", minMeasure: 1},
	{suffix: "iveness", replacement: "ive", minMeasure: 1},
	{suffix: "fulness", replacement: "ful", minMeasure: 1},
	{suffix: "ousness", replacement: "ous", minMeasure: 1},
	{suffix: "aliti", replacement: "al", minMeasure: 1},
	{suffix: "iviti", replacement: "ive", minMeasure: 1},
	{suffix: "biliti", replacement: "ble", minMeasure: 1},
	{suffix: "logi", replacement: "log", minMeasure: 1},
}

var step3Rules = ruleTable{
	{suffix: "icate", replacement: "ic", minMeasure: 1},
	{suffix: "ative", replacement: "", minMeasure: 1},
	{suffix: "alize", replacement: "al", minMeasure: 1},
	{suffix: "iciti", replacement: "ic", minMeasure: 1},
	{suffix: "ical", replacement: "ic", minMeasure: 1},
	{suffix: "ful", replacement: "", minMeasure: 1},
	{suffix: "ness", replacement: "", minMeasure: 1},
}

var step4Rules = ruleTable{
	{suffix: "al", minMeasure: 2},
	{suffix: "ance", minMeasure: 2},
	{suffix: "ence", minMeasure: 2},
	{suffix: "er", minMeasure: 2},
	{suffix: "ic", minMeasure: 2},
	{suffix: "able", minMeasure: 2},
	{suffix: "ible", minMeasure: 2},
	{suffix: "ant", minMeasure: 2},
	{suffix: "ement", minMeasure: 2},
	{suffix: "ment", minMeasure: 2},
	{suffix: "ent", minMeasure: 2},
	{suffix: "ion", minMeasure: 2, guard: endsInSOrT},
	{suffix: "ou", minMeasure: 2},
	{suffix: "ism", minMeasure: 2},
	{suffix: "ate", minMeasure: 2},
	{suffix: "iti", minMeasure: 2},
	{suffix: "ous", minMeasure: 2},
	{suffix: "ive", minMeasure: 2},
	{suffix: "ize", minMeasure: 2},
}

func endsInSOrT(stem string) bool {
	n := len(stem)
	return n > 0 && (stem[n-1] == 's' || stem[n-1] == 't')
}

// letterType classifies letter as 'c' or 'v'. y is a consonant at the start
// of a word or after a vowel, and a vowel otherwise. prev is 0 at the start.
func letterType(prev, letter byte) byte {
	switch letter {
	case 'a', 'e', 'i', 'o', 'u':
		return 'v'
	case 'y':
		if prev == 0 || letterType(0, prev) == 'v' {
			return 'c'
		}
		return 'v'
	}
	return 'c'
}

// letterTypes returns the run-length reduced consonant/vowel sequence of word,
// e.g. "tree" → "cv", "trouble" → "cvcv".
func letterTypes(word string) string {
	var b strings.Builder
	b.Grow(len(word))
	var last byte
	for i := 0; i < len(word); i++ {
		var prev byte
		if i > 0 {
			prev = word[i-1]
		}
		t := letterType(prev, word[i])
		if t != last {
			b.WriteByte(t)
			last = t
		}
	}
	return b.String()
}

// measure computes m, the number of vowel-consonant alternations in word.
// The type sequence is derived afresh on every call.
func measure(word string) int {
	types := letterTypes(word)
	if len(types) < 2 {
		return 0
	}
	if types[0] == 'c' {
		return (len(types) - 1) / 2
	}
	return len(types) / 2
}

func hasVowel(word string) bool {
	return strings.IndexByte(letterTypes(word), 'v') >= 0
}

// endsDoubleConsonant returns the doubled final consonant of word, or 0.
func endsDoubleConsonant(word string) byte {
	n := len(word)
	if n < 2 {
		return 0
	}
	last := word[n-1]
	if last == word[n-2] && letterType(0, last) == 'c' {
		return last
	}
	return 0
}

// endsCVC reports whether word ends consonant-vowel-consonant with the final
// consonant not w, x or y (e.g. -wil, -hop).
func endsCVC(word string) bool {
	n := len(word)
	if n < 3 {
		return false
	}
	last := word[n-1]
	if last == 'w' || last == 'x' || last == 'y' {
		return false
	}
	var fourth byte
	if n > 3 {
		fourth = word[n-4]
	}
	return letterType(word[n-2], last) == 'c' &&
		letterType(word[n-3], word[n-2]) == 'v' &&
		letterType(fourth, word[n-3]) == 'c'
}

func step1a(word string) string {
	switch {
	case strings.HasSuffix(word, "sses"):
		return word[:len(word)-2]
	case strings.HasSuffix(word, "ies"):
		return word[:len(word)-2]
	case strings.HasSuffix(word, "ss"):
		return word
	case strings.HasSuffix(word, "s"):
		return word[:len(word)-1]
	}
	return word
}

func step1b(word string) string {
	if strings.HasSuffix(word, "eed") {
		stem := word[:len(word)-1]
		if measure(stem) > 0 {
			return stem
		}
		return word
	}

	for _, suffix := range []string{"ed", "ing"} {
		if !strings.HasSuffix(word, suffix) {
			continue
		}
		stem := word[:len(word)-len(suffix)]
		if hasVowel(stem) {
			return step1bRepair(stem)
		}
		return word
	}
	return word
}

func step1bRepair(stem string) string {
	if strings.HasSuffix(stem, "at") || strings.HasSuffix(stem, "bl") || strings.HasSuffix(stem, "iz") {
		return stem + "e"
	}
	if c := endsDoubleConsonant(stem); c != 0 {
		if c != 'l' && c != 's' && c != 'z' {
			return stem[:len(stem)-1]
		}
		return stem
	}
	if measure(stem) == 1 && endsCVC(stem) {
		return stem + "e"
	}
	return stem
}

func step1c(word string) string {
	if strings.HasSuffix(word, "y") {
		stem := word[:len(word)-1]
		if hasVowel(stem) {
			return stem + "i"
		}
	}
	return word
}

func step2(word string) string {
	return step2Rules.apply(word)
}

func step3(word string) string {
	return step3Rules.apply(word)
}

func step4(word string) string {
	return step4Rules.apply(word)
}

func step5a(word string) string {
	if strings.HasSuffix(word, "e") {
		stem := word[:len(word)-1]
		m := measure(stem)
		if m > 1 || (m == 1 && !endsCVC(stem)) {
			return stem
		}
	}
	return word
}

func step5b(word string) string {
	if measure(word) > 1 && strings.HasSuffix(word, "ll") {
		return word[:len(word)-1]
	}
	return word
}
