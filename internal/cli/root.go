package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"jassjr/config"
)

// app carries what every subcommand needs once the root command has loaded
// the configuration.
type app struct {
	cfgFile  string
	logLevel string
	cfg      *config.Config
	log      *logrus.Logger
}

// logger returns the configured logger, or a default one when configuration
// failed before a logger could be built.
func (a *app) logger() *logrus.Logger {
	if a.log == nil {
		a.log = logrus.New()
	}
	return a.log
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "jassjr",
		Short: "Build an on-disk inverted index from TREC-tagged documents",
		Long: `jassjr reads a TREC-style collection (<DOC> blocks with a <DOCNO> primary key),
stems and filters its terms, and writes a compact inverted index: docids.bin,
lengths.bin, postings.bin and vocab.bin.

Example usage:
  jassjr index collection.xml        # Index into the current directory
  jassjr index -o idx collection.xml # Index into ./idx
  jassjr inspect idx --term 'run*'   # Show postings for matching terms
  jassjr stem caresses relational    # Print Porter stems`,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error

			if a.cfgFile != "" {
				a.cfg, err = config.Load(a.cfgFile)
			} else {
				var dir string
				dir, err = os.Getwd()
				if err != nil {
					return fmt.Errorf("failed to get working directory: %w", err)
				}
				a.cfg, err = config.LoadFromDir(dir)
			}
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if a.logLevel != "" {
				a.cfg.Logging.Level = a.logLevel
			}
			a.log, err = newLogger(a.cfg.Logging, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ./jassjr.yaml)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(newIndexCmd(a), newInspectCmd(a), newStemCmd(a))
	return rootCmd, a
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	rootCmd, a := newRootCmd()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		a.logger().WithError(err).Error("command failed")
		os.Exit(1)
	}
}
