package store

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"jassjr/internal/domain"
)

// Reader loads an index written by Writer. The document table and the
// vocabulary are held in memory; postings are read on demand.
type Reader struct {
	dir          string
	payload      binary.ByteOrder
	docIDs       []string
	lengths      []uint32
	vocab        []domain.VocabEntry
	byTerm       map[string]int
	postings     *os.File
	postingsSize int64
}

// Open reads the artifacts in dir using the given byte order.
func Open(dir string, order ByteOrder) (*Reader, error) {
	payload, vocabOrder := order.Orders()
	r := &Reader{dir: dir, payload: payload, byTerm: make(map[string]int)}

	data, err := os.ReadFile(filepath.Join(dir, DocIDsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", DocIDsFile, err)
	}
	r.docIDs = parseDocIDs(data)

	data, err = os.ReadFile(filepath.Join(dir, LengthsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", LengthsFile, err)
	}
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("%w: %s is %d bytes, not a multiple of 4", domain.ErrCorruptIndex, LengthsFile, len(data))
	}
	r.lengths = make([]uint32, len(data)/4)
	for i := range r.lengths {
		r.lengths[i] = payload.Uint32(data[i*4:])
	}

	f, err := os.Open(filepath.Join(dir, PostingsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", PostingsFile, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat %s: %w", PostingsFile, err)
	}
	r.postings = f
	r.postingsSize = info.Size()

	data, err = os.ReadFile(filepath.Join(dir, VocabFile))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read %s: %w", VocabFile, err)
	}
	if err := r.parseVocab(data, vocabOrder); err != nil {
		f.Close()
		return nil, err
	}

	return r, nil
}

func parseDocIDs(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	lines := bytes.Split(bytes.TrimSuffix(data, []byte{'\n'}), []byte{'\n'})
	ids := make([]string, len(lines))
	for i, line := range lines {
		ids[i] = string(line)
	}
	return ids
}

func (r *Reader) parseVocab(data []byte, order binary.ByteOrder) error {
	for pos := 0; pos < len(data); {
		n := int(data[pos])
		end := pos + 1 + n + 1 + 8
		if end > len(data) {
			return fmt.Errorf("%w: truncated vocab entry at byte %d", domain.ErrCorruptIndex, pos)
		}
		term := string(data[pos+1 : pos+1+n])
		if data[pos+1+n] != 0 {
			return fmt.Errorf("%w: vocab entry %q is not NUL terminated", domain.ErrCorruptIndex, term)
		}
		entry := domain.VocabEntry{
			Term:   term,
			Offset: order.Uint32(data[pos+2+n:]),
			Length: order.Uint32(data[pos+6+n:]),
		}
		if entry.Length%postingSize != 0 {
			return fmt.Errorf("%w: postings length %d for %q is not a multiple of %d", domain.ErrCorruptIndex, entry.Length, term, postingSize)
		}
		if int64(entry.Offset)+int64(entry.Length) > r.postingsSize {
			return fmt.Errorf("%w: postings for %q run past end of %s", domain.ErrCorruptIndex, term, PostingsFile)
		}
		if _, dup := r.byTerm[term]; dup {
			return fmt.Errorf("%w: duplicate vocab entry %q", domain.ErrCorruptIndex, term)
		}
		r.byTerm[term] = len(r.vocab)
		r.vocab = append(r.vocab, entry)
		pos = end
	}
	return nil
}

func (r *Reader) Dir() string {
	return r.dir
}

func (r *Reader) DocIDs() []string {
	return r.docIDs
}

func (r *Reader) Lengths() []uint32 {
	return r.lengths
}

// Vocab returns the vocabulary entries in file order.
func (r *Reader) Vocab() []domain.VocabEntry {
	return r.vocab
}

// Terms returns the vocabulary terms in file order.
func (r *Reader) Terms() []string {
	terms := make([]string, len(r.vocab))
	for i, e := range r.vocab {
		terms[i] = e.Term
	}
	return terms
}

// Lookup returns the vocabulary entry for term.
func (r *Reader) Lookup(term string) (domain.VocabEntry, error) {
	i, ok := r.byTerm[term]
	if !ok {
		return domain.VocabEntry{}, fmt.Errorf("%w: %q", domain.ErrTermNotFound, term)
	}
	return r.vocab[i], nil
}

// Postings reads the postings run for term from postings.bin.
func (r *Reader) Postings(term string) (domain.PostingsList, error) {
	entry, err := r.Lookup(term)
	if err != nil {
		return nil, err
	}
	return r.ReadPostings(entry)
}

// ReadPostings reads the run described by a vocabulary entry.
func (r *Reader) ReadPostings(entry domain.VocabEntry) (domain.PostingsList, error) {
	buf := make([]byte, entry.Length)
	if _, err := r.postings.ReadAt(buf, int64(entry.Offset)); err != nil {
		return nil, fmt.Errorf("failed to read postings for %q: %w", entry.Term, err)
	}
	list := make(domain.PostingsList, entry.Count())
	for i := range list {
		rec := buf[i*postingSize:]
		list[i] = domain.Posting{
			Doc: r.payload.Uint32(rec[0:4]),
			TF:  r.payload.Uint32(rec[4:8]),
		}
	}
	return list, nil
}

func (r *Reader) Close() error {
	return r.postings.Close()
}
