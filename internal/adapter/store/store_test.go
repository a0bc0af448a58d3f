package store

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"jassjr/internal/domain"
)

type fakeSnapshot struct {
	terms    []string
	postings map[string]domain.PostingsList
	docIDs   []string
	lengths  []uint32
}

func (f *fakeSnapshot) Terms() []string                          { return f.terms }
func (f *fakeSnapshot) Postings(term string) domain.PostingsList { return f.postings[term] }
func (f *fakeSnapshot) DocIDs() []string                         { return f.docIDs }
func (f *fakeSnapshot) Lengths() []uint32                        { return f.lengths }

// twoDocs is the index of
// "<DOC><DOCNO>D1</DOCNO>the cat sat</DOC><DOC><DOCNO>D2</DOCNO>the dog ran</DOC>".
func twoDocs() *fakeSnapshot {
	return &fakeSnapshot{
		terms: []string{"cat", "sat", "dog", "ran"},
		postings: map[string]domain.PostingsList{
			"cat": {{Doc: 0, TF: 1}},
			"sat": {{Doc: 0, TF: 1}},
			"dog": {{Doc: 1, TF: 1}},
			"ran": {{Doc: 1, TF: 1}},
		},
		docIDs:  []string{"D1", "D2"},
		lengths: []uint32{2, 2},
	}
}

func readFile(t *testing.T, dir, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	return data
}

func vocabEntry(order binary.ByteOrder, term string, offset, length uint32) []byte {
	var buf bytes.Buffer
	buf.WriteByte(byte(len(term)))
	buf.WriteString(term)
	buf.WriteByte(0)
	_ = binary.Write(&buf, order, offset)
	_ = binary.Write(&buf, order, length)
	return buf.Bytes()
}

func TestParseByteOrder(t *testing.T) {
	for _, s := range []string{"compat", "native", "little", "big"} {
		o, err := ParseByteOrder(s)
		require.NoError(t, err)
		assert.Equal(t, s, o.String())
	}

	o, err := ParseByteOrder("")
	require.NoError(t, err)
	assert.Equal(t, Compat, o)

	_, err = ParseByteOrder("middle")
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestWriter_ExactBytesBigEndian(t *testing.T) {
	dir := t.TempDir()
	result, err := NewWriter(dir, Big).Write(twoDocs())
	require.NoError(t, err)

	assert.Equal(t, "D1\nD2\n", string(readFile(t, dir, DocIDsFile)))
	assert.Equal(t, []byte{0, 0, 0, 2, 0, 0, 0, 2}, readFile(t, dir, LengthsFile))
	assert.Equal(t, []byte{
		0, 0, 0, 0, 0, 0, 0, 1,
		0, 0, 0, 0, 0, 0, 0, 1,
		0, 0, 0, 1, 0, 0, 0, 1,
		0, 0, 0, 1, 0, 0, 0, 1,
	}, readFile(t, dir, PostingsFile))

	var vocab []byte
	for i, term := range []string{"cat", "sat", "dog", "ran"} {
		vocab = append(vocab, vocabEntry(binary.BigEndian, term, uint32(i*8), 8)...)
	}
	assert.Equal(t, vocab, readFile(t, dir, VocabFile))

	assert.Equal(t, int64(6), result.DocIDsBytes)
	assert.Equal(t, int64(8), result.LengthsBytes)
	assert.Equal(t, int64(32), result.PostingsBytes)
	assert.Equal(t, int64(len(vocab)), result.VocabBytes)
	assert.Equal(t, 4, result.VocabEntries)
}

func TestWriter_CompatMixesOrders(t *testing.T) {
	dir := t.TempDir()
	snap := &fakeSnapshot{
		terms:    []string{"alpha", "beta"},
		postings: map[string]domain.PostingsList{"alpha": {{Doc: 0, TF: 2}, {Doc: 1, TF: 1}}, "beta": {{Doc: 1, TF: 3}}},
		docIDs:   []string{"A", "B"},
		lengths:  []uint32{2, 4},
	}
	_, err := NewWriter(dir, Compat).Write(snap)
	require.NoError(t, err)

	lengths := readFile(t, dir, LengthsFile)
	assert.Equal(t, uint32(4), binary.NativeEndian.Uint32(lengths[4:]))

	postings := readFile(t, dir, PostingsFile)
	require.Len(t, postings, 24)
	assert.Equal(t, uint32(3), binary.NativeEndian.Uint32(postings[20:]))

	want := append(vocabEntry(binary.BigEndian, "alpha", 0, 16), vocabEntry(binary.BigEndian, "beta", 16, 8)...)
	assert.Equal(t, want, readFile(t, dir, VocabFile))
}

func TestWriter_Reproducible(t *testing.T) {
	first, second := t.TempDir(), t.TempDir()
	_, err := NewWriter(first, Compat).Write(twoDocs())
	require.NoError(t, err)
	_, err = NewWriter(second, Compat).Write(twoDocs())
	require.NoError(t, err)

	for _, name := range []string{DocIDsFile, LengthsFile, PostingsFile, VocabFile} {
		assert.Equal(t, readFile(t, first, name), readFile(t, second, name), name)
	}
}

func TestWriter_EmptyIndex(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	result, err := NewWriter(dir, Native).Write(&fakeSnapshot{})
	require.NoError(t, err)
	assert.Zero(t, result.VocabEntries)

	for _, name := range []string{DocIDsFile, LengthsFile, PostingsFile, VocabFile} {
		assert.Empty(t, readFile(t, dir, name), name)
	}

	r, err := Open(dir, Native)
	require.NoError(t, err)
	defer r.Close()
	assert.Empty(t, r.DocIDs())
	assert.Empty(t, r.Vocab())
}

func TestWriter_RejectsOverlongTerm(t *testing.T) {
	term := strings.Repeat("a", domain.MaxTermBytes+1)
	snap := &fakeSnapshot{
		terms:    []string{term},
		postings: map[string]domain.PostingsList{term: {{Doc: 0, TF: 1}}},
	}
	_, err := NewWriter(t.TempDir(), Compat).Write(snap)
	assert.Error(t, err)
}

func TestReader_RoundTripAllOrders(t *testing.T) {
	longest := strings.Repeat("z", domain.MaxTermBytes)
	snap := twoDocs()
	snap.terms = append(snap.terms, longest)
	snap.postings[longest] = domain.PostingsList{{Doc: 0, TF: 7}, {Doc: 1, TF: 1 << 20}}

	for _, order := range []ByteOrder{Compat, Native, Little, Big} {
		t.Run(order.String(), func(t *testing.T) {
			dir := t.TempDir()
			_, err := NewWriter(dir, order).Write(snap)
			require.NoError(t, err)

			r, err := Open(dir, order)
			require.NoError(t, err)
			defer r.Close()

			assert.Equal(t, snap.docIDs, r.DocIDs())
			assert.Equal(t, snap.lengths, r.Lengths())
			assert.Equal(t, snap.terms, r.Terms())

			for _, term := range snap.terms {
				list, err := r.Postings(term)
				require.NoError(t, err)
				assert.Equal(t, snap.postings[term], list, term)
			}

			entry, err := r.Lookup(longest)
			require.NoError(t, err)
			assert.Equal(t, 2, entry.Count())
			assert.Equal(t, uint32(32), entry.Offset)
		})
	}
}

func TestReader_TermNotFound(t *testing.T) {
	dir := t.TempDir()
	_, err := NewWriter(dir, Compat).Write(twoDocs())
	require.NoError(t, err)

	r, err := Open(dir, Compat)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Postings("the")
	assert.ErrorIs(t, err, domain.ErrTermNotFound)
}

func TestReader_DetectsCorruption(t *testing.T) {
	tests := []struct {
		name    string
		corrupt func(t *testing.T, dir string)
	}{
		{"lengths not multiple of 4", func(t *testing.T, dir string) {
			require.NoError(t, os.WriteFile(filepath.Join(dir, LengthsFile), []byte{1, 2, 3}, 0644))
		}},
		{"truncated vocab", func(t *testing.T, dir string) {
			data := readFile(t, dir, VocabFile)
			require.NoError(t, os.WriteFile(filepath.Join(dir, VocabFile), data[:len(data)-3], 0644))
		}},
		{"missing terminator", func(t *testing.T, dir string) {
			data := readFile(t, dir, VocabFile)
			data[4] = 'x'
			require.NoError(t, os.WriteFile(filepath.Join(dir, VocabFile), data, 0644))
		}},
		{"postings truncated", func(t *testing.T, dir string) {
			data := readFile(t, dir, PostingsFile)
			require.NoError(t, os.WriteFile(filepath.Join(dir, PostingsFile), data[:16], 0644))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			_, err := NewWriter(dir, Big).Write(twoDocs())
			require.NoError(t, err)
			tt.corrupt(t, dir)

			_, err = Open(dir, Big)
			assert.ErrorIs(t, err, domain.ErrCorruptIndex)
		})
	}
}

func TestReader_MissingArtifacts(t *testing.T) {
	_, err := Open(t.TempDir(), Compat)
	assert.Error(t, err)
}
