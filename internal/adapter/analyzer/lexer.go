package analyzer

import "iter"

// Cursor is a scan position over an immutable text span. Advancing a cursor
// returns a new value, so a cursor can be copied and replayed freely.
type Cursor struct {
	text string
	pos  int
}

// First starts a scan over text and returns the first token.
func First(text string) (string, Cursor, bool) {
	return Cursor{text: text}.Next()
}

// Next returns the token at or after the cursor and the cursor positioned
// just past it. ok is false once the text is exhausted.
//
// A token is either a tag, '<' through the next '>' (or the end of the text
// when the tag is unterminated), or a run of ASCII alphanumerics which may
// contain hyphens after its first character. Everything else separates tokens.
func (c Cursor) Next() (token string, next Cursor, ok bool) {
	text, pos := c.text, c.pos
	for pos < len(text) && !isAlnum(text[pos]) && text[pos] != '<' {
		pos++
	}
	if pos >= len(text) {
		return "", Cursor{text: text, pos: pos}, false
	}

	start := pos
	if text[pos] == '<' {
		for pos++; pos < len(text) && text[pos-1] != '>'; pos++ {
		}
	} else {
		for pos < len(text) && (isAlnum(text[pos]) || text[pos] == '-') {
			pos++
		}
	}
	return text[start:pos], Cursor{text: text, pos: pos}, true
}

// Tokens returns the finite token sequence of text. The sequence can be
// ranged over any number of times.
func Tokens(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for tok, cur, ok := First(text); ok; tok, cur, ok = cur.Next() {
			if !yield(tok) {
				return
			}
		}
	}
}

func isAlnum(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}
