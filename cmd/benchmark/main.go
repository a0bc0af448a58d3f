package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"jassjr/internal/adapter/analyzer"
	"jassjr/internal/adapter/cache"
	"jassjr/internal/adapter/fs"
	"jassjr/internal/adapter/memstore"
	"jassjr/internal/adapter/store"
	"jassjr/internal/port"
	"jassjr/internal/usecase"
)

func main() {
	numDocs := flag.Int("docs", 10000, "Number of synthetic documents")
	docLen := flag.Int("len", 300, "Words per document")
	vocabSize := flag.Int("vocab", 50000, "Distinct words in the synthetic vocabulary")
	seed := flag.Int64("seed", 1, "Random seed")
	outDir := flag.String("out", "", "Output directory (default is a temporary directory)")
	noStem := flag.Bool("no-stem", false, "Disable stemming")
	cacheSize := flag.Int("cache", 1<<16, "Stem cache entries (0 disables the cache)")
	flag.Parse()

	if *numDocs <= 0 || *docLen <= 0 || *vocabSize <= 0 {
		fmt.Println("Usage: go run cmd/benchmark/main.go -docs 10000 -len 300 -vocab 50000")
		os.Exit(1)
	}

	dir := *outDir
	if dir == "" {
		tmp, err := os.MkdirTemp("", "jassjr-bench")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating temp dir: %v\n", err)
			os.Exit(1)
		}
		defer os.RemoveAll(tmp)
		dir = tmp
	}

	fmt.Println("INDEXING BENCHMARK")
	fmt.Println(strings.Repeat("=", 70))

	genStart := time.Now()
	input := generateCollection(rand.New(rand.NewSource(*seed)), *numDocs, *docLen, *vocabSize)
	fmt.Printf("Collection: %d docs x %d words, vocab %d, %.1f MB (generated in %s)\n",
		*numDocs, *docLen, *vocabSize, float64(len(input))/(1<<20), time.Since(genStart).Round(time.Millisecond))

	var stemmer port.Stemmer
	var stems *cache.StemCache
	if !*noStem {
		stemmer = analyzer.NewPorterStemmer()
		if *cacheSize > 0 {
			stems = cache.NewStemCache(stemmer, *cacheSize)
			stemmer = stems
		}
	}
	tokenizer := analyzer.NewTokenizer(analyzer.DefaultStopList(), stemmer, 0)

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	indexUC := usecase.NewIndexUseCase(
		memstore.NewBuilder(tokenizer, memstore.DefaultOptions()),
		store.NewWriter(dir, store.Compat),
		usecase.IndexOptions{ByteOrder: store.Compat, VocabOrder: memstore.FirstSeen},
		logger.WithField("component", "benchmark"),
	)

	src := fs.NewLineReader("synthetic", bytes.NewReader(input), 16<<20)
	result, err := indexUC.Index(context.Background(), src, "synthetic")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Indexing error: %v\n", err)
		os.Exit(1)
	}

	secs := result.Duration.Seconds()
	fmt.Println(strings.Repeat("-", 70))
	fmt.Printf("Time:        %s\n", result.Duration.Round(time.Millisecond))
	fmt.Printf("Throughput:  %.0f docs/s, %.1f MB/s\n", float64(result.Stats.Documents)/secs, float64(len(input))/(1<<20)/secs)
	fmt.Printf("Admitted:    %d terms (%d stop words)\n", result.Stats.Admitted, result.Stats.Stopwords)
	fmt.Printf("Vocabulary:  %d terms, %d postings\n", result.Stats.Terms, result.Stats.Postings)
	fmt.Printf("postings.bin %10d bytes\n", result.Write.PostingsBytes)
	fmt.Printf("vocab.bin    %10d bytes\n", result.Write.VocabBytes)
	fmt.Printf("lengths.bin  %10d bytes\n", result.Write.LengthsBytes)
	fmt.Printf("docids.bin   %10d bytes\n", result.Write.DocIDsBytes)

	if stems != nil {
		hits, misses := stems.Stats()
		fmt.Printf("Stem cache:  %.1f%% hit rate (%d hits, %d misses)\n",
			100*float64(hits)/float64(max(hits+misses, 1)), hits, misses)
	}
}

var suffixes = []string{"", "s", "ing", "ed", "ation", "ness", "ly", "er"}

// generateCollection writes a TREC collection whose word frequencies roughly
// follow Zipf's law.
func generateCollection(r *rand.Rand, numDocs, docLen, vocabSize int) []byte {
	words := make([]string, vocabSize)
	for i := range words {
		words[i] = syntheticWord(r) + suffixes[r.Intn(len(suffixes))]
	}
	zipf := rand.NewZipf(r, 1.1, 1, uint64(vocabSize-1))

	var buf bytes.Buffer
	for d := 0; d < numDocs; d++ {
		fmt.Fprintf(&buf, "<DOC>\n<DOCNO> SYN-%07d </DOCNO>\n<TEXT>\n", d)
		for w := 0; w < docLen; w++ {
			buf.WriteString(words[zipf.Uint64()])
			if w%12 == 11 {
				buf.WriteByte('\n')
			} else {
				buf.WriteByte(' ')
			}
		}
		buf.WriteString("\n</TEXT>\n</DOC>\n")
	}
	return buf.Bytes()
}

func syntheticWord(r *rand.Rand) string {
	const consonants = "bcdfghjklmnprstvwz"
	const vowels = "aeiou"
	n := 2 + r.Intn(4)
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteByte(consonants[r.Intn(len(consonants))])
		b.WriteByte(vowels[r.Intn(len(vowels))])
	}
	return b.String()
}
