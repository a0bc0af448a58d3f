package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"jassjr/internal/adapter/store"
	"jassjr/internal/domain"
	"jassjr/internal/port"
	"jassjr/internal/usecase"
)

func newInspectCmd(a *app) *cobra.Command {
	var (
		terms     []string
		docs      bool
		byteOrder string
	)

	cmd := &cobra.Command{
		Use:   "inspect [dir]",
		Short: "Show what an index contains",
		Long: `Print the build manifest and artifact counts of an index directory.

Term patterns are globs: * and ? match within a term, {a,b} alternates and
[a-z] matches a class.

Examples:
  jassjr inspect idx
  jassjr inspect idx --term 'run*' --term '{cat,dog}'
  jassjr inspect idx --docs`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			dir := a.cfg.Index.OutputDir
			if len(args) > 0 {
				dir = args[0]
			}
			log := a.log.WithField("component", "inspect")

			var ms port.ManifestStore
			var manifest *domain.Manifest
			bm, err := store.OpenManifest(a.cfg.ManifestPath(dir), true)
			switch {
			case err == nil:
				defer bm.Close()
				ms = bm
				m, err := bm.GetManifest()
				if err == nil {
					manifest = &m
				} else if !errors.Is(err, domain.ErrNoManifest) {
					return err
				}
			case errors.Is(err, domain.ErrNoManifest):
				log.Debug("no manifest, reading with configured byte order")
			default:
				return err
			}

			// The manifest knows how the index was laid out; an explicit flag wins.
			orderName := a.cfg.Index.ByteOrder
			if manifest != nil {
				orderName = manifest.ByteOrder
				if reason := store.StaleReason(*manifest, a.cfg); reason != "" {
					log.WithField("reason", reason).Warn("index was built with different settings")
				}
			}
			if cmd.Flags().Changed("byte-order") {
				orderName = byteOrder
			}
			order, err := store.ParseByteOrder(orderName)
			if err != nil {
				return err
			}

			reader, err := store.Open(dir, order)
			if err != nil {
				return fmt.Errorf("failed to open index: %w", err)
			}
			defer reader.Close()

			inspectUC := usecase.NewInspectUseCase(reader, ms)
			out := cmd.OutOrStdout()

			summary, err := inspectUC.Summary()
			if err != nil {
				return err
			}
			printSummary(out, summary)

			if len(terms) > 0 {
				matches, err := inspectUC.MatchTerms(terms)
				if err != nil {
					return err
				}
				printTerms(out, matches)
			}

			if docs {
				printDocuments(out, inspectUC.Documents())
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&terms, "term", "t", nil, "term glob pattern to show postings for (repeatable)")
	cmd.Flags().BoolVar(&docs, "docs", false, "print the document table")
	cmd.Flags().StringVar(&byteOrder, "byte-order", "", "override the byte order recorded in the manifest")

	return cmd
}

func printSummary(w io.Writer, s *usecase.Summary) {
	fmt.Fprintf(w, "Index: %s\n", s.Dir)
	if m := s.Manifest; m != nil {
		fmt.Fprintf(w, "  Built:          %s from %s (%s)\n", m.BuiltAt.Format("2006-01-02 15:04:05 MST"), m.Input, m.Duration)
		fmt.Fprintf(w, "  Byte order:     %s\n", m.ByteOrder)
		fmt.Fprintf(w, "  Vocab order:    %s\n", m.VocabOrder)
		fmt.Fprintf(w, "  Config hash:    %s\n", m.ConfigHash)
	}
	fmt.Fprintf(w, "  Documents:      %d\n", s.Documents)
	if s.DocIDs != s.Documents {
		fmt.Fprintf(w, "  Primary keys:   %d\n", s.DocIDs)
	}
	fmt.Fprintf(w, "  Total length:   %d\n", s.TotalLength)
	fmt.Fprintf(w, "  Vocabulary:     %d terms\n", s.Terms)
	fmt.Fprintf(w, "  Postings:       %d\n", s.Postings)
}

func printTerms(w io.Writer, matches []usecase.TermPostings) {
	fmt.Fprintf(w, "\nTerms (%d):\n", len(matches))
	for _, m := range matches {
		pairs := make([]string, len(m.Postings))
		for i, p := range m.Postings {
			pairs[i] = fmt.Sprintf("(%d,%d)", p.Doc, p.TF)
		}
		fmt.Fprintf(w, "  %s\tdf=%d\t%s\n", m.Entry.Term, len(m.Postings), strings.Join(pairs, " "))
	}
}

func printDocuments(w io.Writer, rows []usecase.DocumentRow) {
	fmt.Fprintf(w, "\nDocuments (%d):\n", len(rows))
	for _, r := range rows {
		fmt.Fprintf(w, "  %d\t%s\t%d\n", r.Ordinal, r.ID, r.Length)
	}
}
