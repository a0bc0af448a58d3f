package store

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"jassjr/internal/domain"
	"jassjr/internal/port"
)

// Artifact file names inside the output directory.
const (
	DocIDsFile   = "docids.bin"
	LengthsFile  = "lengths.bin"
	PostingsFile = "postings.bin"
	VocabFile    = "vocab.bin"
)

// postingSize is the on-disk size of one (doc, tf) record.
const postingSize = 8

// WriteResult describes the artifacts produced by a Writer.
type WriteResult struct {
	Dir           string
	DocIDsBytes   int64
	LengthsBytes  int64
	PostingsBytes int64
	VocabBytes    int64
	VocabEntries  int
}

// Writer serializes a completed index into the four binary artifacts.
type Writer struct {
	dir   string
	order ByteOrder
}

func NewWriter(dir string, order ByteOrder) *Writer {
	return &Writer{dir: dir, order: order}
}

// Write emits docids.bin, lengths.bin, postings.bin and vocab.bin. A failure
// leaves the output directory in an undefined state.
func (w *Writer) Write(snap port.IndexSnapshot) (*WriteResult, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	result := &WriteResult{Dir: w.dir}
	var err error

	result.DocIDsBytes, err = w.writeFile(DocIDsFile, func(bw *bufio.Writer) error {
		for _, id := range snap.DocIDs() {
			if _, err := bw.WriteString(id); err != nil {
				return err
			}
			if err := bw.WriteByte('\n'); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	payload, vocabOrder := w.order.Orders()

	result.LengthsBytes, err = w.writeFile(LengthsFile, func(bw *bufio.Writer) error {
		var buf [4]byte
		for _, n := range snap.Lengths() {
			payload.PutUint32(buf[:], n)
			if _, err := bw.Write(buf[:]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// postings.bin and vocab.bin are written in lockstep, one term at a time.
	vocabFile, err := w.create(VocabFile)
	if err != nil {
		return nil, err
	}
	defer vocabFile.Close()
	vocab := &countingWriter{w: vocabFile}
	vw := bufio.NewWriter(vocab)

	result.PostingsBytes, err = w.writeFile(PostingsFile, func(pw *bufio.Writer) error {
		var offset uint64
		var rec [postingSize]byte
		var field [4]byte
		for _, term := range snap.Terms() {
			list := snap.Postings(term)
			length := uint64(len(list)) * postingSize
			if offset+length > math.MaxUint32 {
				return fmt.Errorf("%w: postings for %q end at byte %d", domain.ErrIndexTooLarge, term, offset+length)
			}
			if len(term) > domain.MaxTermBytes {
				return fmt.Errorf("term %q exceeds %d bytes", term, domain.MaxTermBytes)
			}

			for _, p := range list {
				payload.PutUint32(rec[0:4], p.Doc)
				payload.PutUint32(rec[4:8], p.TF)
				if _, err := pw.Write(rec[:]); err != nil {
					return err
				}
			}

			if err := vw.WriteByte(byte(len(term))); err != nil {
				return err
			}
			if _, err := vw.WriteString(term); err != nil {
				return err
			}
			if err := vw.WriteByte(0); err != nil {
				return err
			}
			vocabOrder.PutUint32(field[:], uint32(offset))
			if _, err := vw.Write(field[:]); err != nil {
				return err
			}
			vocabOrder.PutUint32(field[:], uint32(length))
			if _, err := vw.Write(field[:]); err != nil {
				return err
			}

			offset += length
			result.VocabEntries++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := vw.Flush(); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", VocabFile, err)
	}
	if err := vocabFile.Close(); err != nil {
		return nil, fmt.Errorf("failed to close %s: %w", VocabFile, err)
	}
	result.VocabBytes = vocab.n

	return result, nil
}

func (w *Writer) create(name string) (*os.File, error) {
	f, err := os.Create(filepath.Join(w.dir, name))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", name, err)
	}
	return f, nil
}

// writeFile creates name, runs fill over a buffered writer and returns the
// number of bytes that reached the file.
func (w *Writer) writeFile(name string, fill func(*bufio.Writer) error) (int64, error) {
	f, err := w.create(name)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	cw := &countingWriter{w: f}
	bw := bufio.NewWriter(cw)
	if err := fill(bw); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := bw.Flush(); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("failed to close %s: %w", name, err)
	}
	return cw.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
