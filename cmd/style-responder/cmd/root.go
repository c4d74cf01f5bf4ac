package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/llm-style-responder/internal/di"
)

// globalOptions holds the persistent flags shared by every command
type globalOptions struct {
	configFile string
	verbose    bool
	jsonLog    bool
	provider   string
	mode       string
}

// container builds the DI container with flag overrides applied on top of the
// file and environment configuration
func (o *globalOptions) container() (*dig.Container, error) {
	overrides := map[string]interface{}{}
	if o.provider != "" {
		overrides["llm.provider"] = o.provider
		overrides["embedding.provider"] = o.provider
	}
	if o.mode != "" {
		overrides["knowledge.mode"] = o.mode
	}
	return di.BuildContainer(di.Options{
		ConfigFile: o.configFile,
		Verbose:    o.verbose,
		JSONLog:    o.jsonLog,
		Overrides:  overrides,
	})
}

// NewRootCmd builds the style-responder command tree with its persistent flags
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:          "style-responder",
		Short:        "Draft email replies in the voice of an ingested mailbox",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "Path to config file")
	cmd.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")
	cmd.PersistentFlags().BoolVar(&opts.jsonLog, "json-log", false, "Output logs in JSON format")
	cmd.PersistentFlags().StringVar(&opts.provider, "provider", "", "LLM provider (openai, gemini, bedrock)")
	cmd.PersistentFlags().StringVar(&opts.mode, "mode", "", "Knowledge mode (direct, indexed)")

	cmd.AddCommand(newIngestCmd(opts))
	cmd.AddCommand(newRespondCmd(opts))
	cmd.AddCommand(newStatsCmd(opts))
	cmd.AddCommand(newSearchCmd(opts))
	cmd.AddCommand(newIdentityCmd(opts))
	cmd.AddCommand(newClearCmd(opts))

	cmd.SetErr(os.Stderr)
	cmd.SetOut(os.Stdout)

	return cmd
}

// Execute runs the root command and exits non-zero on error
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// invoke runs fn against the container and strips dig's wrapping so callers
// can match on the errors the providers returned
func invoke(container *dig.Container, fn interface{}) error {
	return dig.RootCause(container.Invoke(fn))
}

// closeIfCloser releases resources held by adapters that own a connection
func closeIfCloser(v interface{}, logger *zap.Logger) {
	if c, ok := v.(io.Closer); ok {
		if err := c.Close(); err != nil {
			logger.Error("Failed to close resource", zap.Error(err), zap.String("type", fmt.Sprintf("%T", v)))
		}
	}
}
