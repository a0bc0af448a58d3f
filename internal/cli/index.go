package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"jassjr/config"
	"jassjr/internal/adapter/analyzer"
	"jassjr/internal/adapter/cache"
	"jassjr/internal/adapter/fs"
	"jassjr/internal/adapter/memstore"
	"jassjr/internal/adapter/metrics"
	"jassjr/internal/adapter/store"
	"jassjr/internal/domain"
	"jassjr/internal/port"
	"jassjr/internal/usecase"
)

type indexFlags struct {
	out       string
	stopwords string
	byteOrder string
	noStem    bool
	progress  bool
}

func newIndexCmd(a *app) *cobra.Command {
	var flags indexFlags

	cmd := &cobra.Command{
		Use:   "index <infile>",
		Short: "Index a TREC-tagged collection",
		Long: `Index a collection of <DOC> blocks. Each document's primary key is the token
following its <DOCNO> tag. Use "-" to read the collection from standard input.

The index is written to the output directory as docids.bin, lengths.bin,
postings.bin and vocab.bin, with a manifest.db recording how it was built.

Examples:
  jassjr index wsj.xml
  jassjr index --out idx --byte-order little wsj.xml
  zcat wsj.xml.gz | jassjr index --progress -`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 1 {
				return fmt.Errorf("%w: index takes one input file, got %d", domain.ErrUsage, len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// A missing input file prints usage and succeeds.
			if len(args) == 0 {
				fmt.Fprint(cmd.OutOrStdout(), cmd.UsageString())
				return nil
			}
			cmd.SilenceUsage = true
			return runIndex(cmd, a, flags, args[0])
		},
	}

	cmd.Flags().StringVarP(&flags.out, "out", "o", "", "output directory (default from config, \".\")")
	cmd.Flags().StringVar(&flags.stopwords, "stopwords", "", "stop word file, one word per line (default built-in list)")
	cmd.Flags().StringVar(&flags.byteOrder, "byte-order", "", "integer layout: compat, native, little, big")
	cmd.Flags().BoolVar(&flags.noStem, "no-stem", false, "disable Porter stemming")
	cmd.Flags().BoolVar(&flags.progress, "progress", false, "show a progress bar over input bytes")

	return cmd
}

// applyIndexFlags overrides the loaded configuration with explicitly set flags.
func applyIndexFlags(cmd *cobra.Command, cfg *config.Config, flags indexFlags) {
	if cmd.Flags().Changed("out") {
		cfg.Index.OutputDir = flags.out
	}
	if cmd.Flags().Changed("stopwords") {
		cfg.Index.StopwordsFile = flags.stopwords
	}
	if cmd.Flags().Changed("byte-order") {
		cfg.Index.ByteOrder = flags.byteOrder
	}
	if cmd.Flags().Changed("no-stem") {
		cfg.Index.Stemming = !flags.noStem
	}
	if cmd.Flags().Changed("progress") {
		cfg.Progress.Enabled = flags.progress
	}
}

func runIndex(cmd *cobra.Command, a *app, flags indexFlags, input string) error {
	cfg := a.cfg
	applyIndexFlags(cmd, cfg, flags)
	if err := cfg.Validate(); err != nil {
		return err
	}
	log := a.log.WithField("component", "index")

	order, err := store.ParseByteOrder(cfg.Index.ByteOrder)
	if err != nil {
		return err
	}

	stopwords, err := analyzer.LoadStopList(cfg.Index.StopwordsFile)
	if err != nil {
		return fmt.Errorf("failed to load stop words: %w", err)
	}
	log.WithField("stopwords", stopwords.Len()).Debug("stop list loaded")

	// Stemming disabled leaves stemmer a nil interface.
	var stemmer port.Stemmer
	var stems *cache.StemCache
	if cfg.Index.Stemming {
		stemmer = analyzer.NewPorterStemmer()
		if cfg.Index.StemCacheSize > 0 {
			stems = cache.NewStemCache(stemmer, cfg.Index.StemCacheSize)
			stemmer = stems
		}
	}
	tokenizer := analyzer.NewTokenizer(stopwords, stemmer, cfg.Index.MaxTermBytes)

	builder := memstore.NewBuilder(tokenizer, memstore.Options{
		DocumentTag:      cfg.Index.DocumentTag,
		PrimaryKeyTag:    cfg.Index.PrimaryKeyTag,
		IndexPrimaryKeys: cfg.Index.IndexPrimaryKeys,
		VocabOrder:       memstore.VocabOrder(cfg.Index.VocabOrder),
	})

	src, err := fs.OpenFile(input, cfg.Index.MaxLineBytes)
	if err != nil {
		return fmt.Errorf("failed to open input: %w", err)
	}
	defer src.Close()

	outDir := cfg.Index.OutputDir
	if err := config.EnsureOutputDir(outDir); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	indexUC := usecase.NewIndexUseCase(builder, store.NewWriter(outDir, order), usecase.IndexOptions{
		LogEvery:   cfg.Progress.LogEvery,
		ByteOrder:  order,
		VocabOrder: memstore.VocabOrder(cfg.Index.VocabOrder),
		ConfigHash: store.ComputeConfigHash(cfg),
	}, log)

	if stems != nil {
		indexUC.WithStemCache(stems)
	}

	if cfg.Manifest.Enabled {
		ms, err := store.OpenManifest(cfg.ManifestPath(outDir), false)
		if err != nil {
			return fmt.Errorf("failed to open manifest: %w", err)
		}
		defer ms.Close()
		indexUC.WithManifest(ms)
	}

	var m *metrics.Metrics
	if cfg.Metrics.Textfile != "" {
		m = metrics.New()
		indexUC.WithMetrics(m)
	}

	var bar *progressbar.ProgressBar
	if cfg.Progress.Enabled {
		bar = newProgressBar(src.Size(), cmd.ErrOrStderr())
		src.Track(bar)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	log.WithField("input", src.Name()).Info("indexing")
	result, err := indexUC.Index(ctx, src, src.Name())
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	if m != nil {
		if err := m.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			return err
		}
	}

	printIndexResult(cmd.OutOrStdout(), result)
	return nil
}

func newProgressBar(size int64, w io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions64(size,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionSetDescription("[cyan]Indexing[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(w)
		}),
	)
}

func printIndexResult(w io.Writer, result *usecase.IndexResult) {
	s := result.Stats
	fmt.Fprintf(w, "Indexing complete:\n")
	fmt.Fprintf(w, "  Documents:      %d\n", s.Documents)
	fmt.Fprintf(w, "  Terms admitted: %d\n", s.Admitted)
	fmt.Fprintf(w, "  Stop words:     %d\n", s.Stopwords)
	if s.Truncated > 0 {
		fmt.Fprintf(w, "  Truncated:      %d\n", s.Truncated)
	}
	if s.Orphans > 0 {
		fmt.Fprintf(w, "  Ignored:        %d (before first document)\n", s.Orphans)
	}
	fmt.Fprintf(w, "  Vocabulary:     %d terms\n", s.Terms)
	fmt.Fprintf(w, "  Postings:       %d\n", s.Postings)
	fmt.Fprintf(w, "  Time:           %s\n", formatDuration(result.Duration))
	fmt.Fprintf(w, "\nIndex stored at: %s\n", result.Write.Dir)
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "<1s"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", h, m)
}
