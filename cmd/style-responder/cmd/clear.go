package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mikey/llm-style-responder/internal/core"
)

func newClearCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the stored corpus and reset the knowledge store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := opts.container()
			if err != nil {
				return err
			}
			return invoke(container, func(session *core.Session, repo core.CorpusRepository, logger *zap.Logger) error {
				defer logger.Sync()
				defer closeIfCloser(repo, logger)

				if err := session.Clear(cmd.Context()); err != nil {
					return err
				}
				if err := repo.Clear(cmd.Context()); err != nil {
					return fmt.Errorf("failed to clear corpus: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Knowledge base cleared")
				return nil
			})
		},
	}
}
