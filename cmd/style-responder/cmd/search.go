package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mikey/llm-style-responder/internal/adapters/console"
	"github.com/mikey/llm-style-responder/internal/core"
)

func newSearchCmd(opts *globalOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Find stored messages whose headers or body contain a term",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStoredCorpus(cmd, opts, func(c core.Corpus, p *console.Printer) error {
				hits := core.SearchCorpus(c, args[0])
				if limit > 0 && len(hits) > limit {
					hits = hits[:limit]
				}
				p.PrintSearch(args[0], hits)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of matches to list (0 for all)")

	return cmd
}
