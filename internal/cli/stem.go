package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"jassjr/internal/adapter/analyzer"
)

func newStemCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stem <word>...",
		Short: "Print the Porter stem of each word",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stemmer := analyzer.NewPorterStemmer()
			for _, word := range args {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", word, stemmer.StemWord(word))
			}
			return nil
		},
	}
}
