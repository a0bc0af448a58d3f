package fs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// StdinName is the input path that reads from standard input.
const StdinName = "-"

// LineReader yields an input stream one line at a time with the trailing
// LF or CRLF removed.
type LineReader struct {
	name    string
	r       io.Reader
	closer  io.Closer
	size    int64
	maxLine int
}

// NewLineReader wraps r. Lines longer than maxLineBytes fail the scan.
func NewLineReader(name string, r io.Reader, maxLineBytes int) *LineReader {
	return &LineReader{name: name, r: r, size: -1, maxLine: maxLineBytes}
}

// OpenFile opens path for line reading; "-" reads standard input.
func OpenFile(path string, maxLineBytes int) (*LineReader, error) {
	if path == StdinName {
		return NewLineReader("stdin", os.Stdin, maxLineBytes), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, fmt.Errorf("%s is a directory", path)
	}

	lr := NewLineReader(path, f, maxLineBytes)
	lr.closer = f
	lr.size = info.Size()
	return lr, nil
}

func (l *LineReader) Name() string {
	return l.name
}

// Size returns the input size in bytes, or -1 when unknown.
func (l *LineReader) Size() int64 {
	return l.size
}

// Track copies every byte read from the input to w.
func (l *LineReader) Track(w io.Writer) {
	l.r = io.TeeReader(l.r, w)
}

// Each calls fn for every line in order, stopping at the first error or when
// ctx is cancelled.
func (l *LineReader) Each(ctx context.Context, fn func(line string) error) error {
	scanner := bufio.NewScanner(l.r)
	initial := 64 * 1024
	if l.maxLine+2 < initial {
		initial = l.maxLine + 2
	}
	scanner.Buffer(make([]byte, 0, initial), l.maxLine+2)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(scanner.Bytes()) > l.maxLine {
			return fmt.Errorf("reading %s: line %d exceeds %d bytes: %w", l.name, lineNo, l.maxLine, bufio.ErrTooLong)
		}
		if err := fn(scanner.Text()); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return fmt.Errorf("reading %s: line %d exceeds %d bytes: %w", l.name, lineNo+1, l.maxLine, err)
		}
		return fmt.Errorf("reading %s: %w", l.name, err)
	}
	return nil
}

func (l *LineReader) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
