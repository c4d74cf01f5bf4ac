package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mikey/llm-style-responder/internal/adapters/console"
	"github.com/mikey/llm-style-responder/internal/core"
	"github.com/mikey/llm-style-responder/internal/corpus"
	"github.com/mikey/llm-style-responder/internal/utils"
)

// withStoredCorpus loads the persisted corpus and hands it to fn with a printer
// bound to the command output
func withStoredCorpus(cmd *cobra.Command, opts *globalOptions, fn func(core.Corpus, *console.Printer) error) error {
	container, err := opts.container()
	if err != nil {
		return err
	}
	return invoke(container, func(repo core.CorpusRepository, tp *utils.TextProcessor, logger *zap.Logger) error {
		defer logger.Sync()
		defer closeIfCloser(repo, logger)

		stored, err := repo.Load(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to load corpus: %w", err)
		}
		return fn(stored, console.NewPrinter(cmd.OutOrStdout(), opts.verbose, tp))
	})
}

func newStatsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show statistics for the stored corpus",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStoredCorpus(cmd, opts, func(c core.Corpus, p *console.Printer) error {
				p.PrintStats(corpus.Summarize(c))
				return nil
			})
		},
	}
}
