package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mikey/llm-style-responder/internal/adapters/console"
	"github.com/mikey/llm-style-responder/internal/core"
	"github.com/mikey/llm-style-responder/internal/corpus"
	"github.com/mikey/llm-style-responder/internal/utils"
)

func newIngestCmd(opts *globalOptions) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "ingest <path>...",
		Short: "Build the knowledge base from .eml files, directories or zip archives",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := opts.container()
			if err != nil {
				return err
			}

			return invoke(container, func(
				builder *corpus.Builder,
				session *core.Session,
				repo core.CorpusRepository,
				tp *utils.TextProcessor,
				logger *zap.Logger,
			) error {
				defer logger.Sync()
				defer closeIfCloser(repo, logger)

				inputs, err := corpus.LoadPaths(args)
				if err != nil {
					return err
				}
				if len(inputs) == 0 {
					return fmt.Errorf("no .eml files found in %v", args)
				}

				start := time.Now()
				var progress corpus.ProgressFunc
				if !quiet {
					progress = func(done, total int, filename string) {
						fmt.Fprintf(cmd.ErrOrStderr(), "Processing %d/%d: %s\n", done, total, filename)
					}
				}

				report, err := builder.Build(cmd.Context(), inputs, progress)
				if err != nil {
					return err
				}
				if err := session.Load(cmd.Context(), report.Corpus); err != nil {
					return err
				}
				if err := repo.Save(cmd.Context(), report.Corpus); err != nil {
					return fmt.Errorf("failed to save corpus: %w", err)
				}

				console.NewPrinter(cmd.OutOrStdout(), opts.verbose, tp).
					PrintIngestReport(report, session.Mode(), time.Since(start))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&quiet, "quiet", false, "Suppress per-file progress")

	return cmd
}
