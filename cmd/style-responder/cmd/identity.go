package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mikey/llm-style-responder/internal/adapters/console"
	"github.com/mikey/llm-style-responder/internal/core"
)

func newIdentityCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "identity",
		Short: "Show the detected owner of the stored corpus",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStoredCorpus(cmd, opts, func(c core.Corpus, p *console.Printer) error {
				p.PrintIdentity(core.DetectUser(c))
				return nil
			})
		},
	}
}
