package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mikey/llm-style-responder/internal/adapters/console"
	"github.com/mikey/llm-style-responder/internal/config"
	"github.com/mikey/llm-style-responder/internal/core"
	"github.com/mikey/llm-style-responder/internal/utils"
)

var (
	knownStyles = []core.ResponseStyle{
		core.StyleProfessional, core.StyleFriendly, core.StyleBrief, core.StyleDetailed,
	}
	knownMessageTypes = []core.MessageType{
		core.MessageGeneral, core.MessageExternalClient, core.MessageInternalColleague,
		core.MessageDiscussion, core.MessageRequest, core.MessageUpdate,
	}
)

func parseStyle(value string) (core.ResponseStyle, error) {
	for _, s := range knownStyles {
		if string(s) == strings.ToLower(value) {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown style %q", value)
}

func parseMessageType(value string) (core.MessageType, error) {
	for _, t := range knownMessageTypes {
		if string(t) == strings.ToLower(value) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown message type %q", value)
}

// readIncoming reads the message to answer from a file or the command input
func readIncoming(cmd *cobra.Command, file string) (string, error) {
	var r io.Reader = cmd.InOrStdin()
	if file != "" {
		f, err := os.Open(file)
		if err != nil {
			return "", fmt.Errorf("failed to open input file: %w", err)
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read incoming message: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("incoming message is empty")
	}
	return text, nil
}

func newRespondCmd(opts *globalOptions) *cobra.Command {
	var (
		file      string
		sender    string
		style     string
		msgType   string
		internal  bool
		external  bool
		noContext bool
		timeout   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "respond",
		Short: "Generate a reply to an incoming message in the mailbox owner's style",
		RunE: func(cmd *cobra.Command, args []string) error {
			if internal && external {
				return fmt.Errorf("--internal and --external are mutually exclusive")
			}
			text, err := readIncoming(cmd, file)
			if err != nil {
				return err
			}

			container, err := opts.container()
			if err != nil {
				return err
			}

			var defaults config.ResponderConfig
			if err := invoke(container, func(cfg *config.Config) {
				defaults = cfg.GetResponder()
			}); err != nil {
				return err
			}
			if style == "" {
				style = defaults.DefaultStyle
			}
			if msgType == "" {
				msgType = defaults.DefaultMessageType
			}
			parsedStyle, err := parseStyle(style)
			if err != nil {
				return err
			}
			parsedType, err := parseMessageType(msgType)
			if err != nil {
				return err
			}

			req := core.ResponseRequest{
				IncomingText:   text,
				SenderAddress:  sender,
				Style:          parsedStyle,
				MessageType:    parsedType,
				IncludeContext: !noContext,
			}
			if internal || external {
				req.IsInternal = &internal
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			if req.IncludeContext {
				err := invoke(container, func(session *core.Session, repo core.CorpusRepository, logger *zap.Logger) error {
					defer closeIfCloser(repo, logger)

					stored, err := repo.Load(ctx)
					if err != nil {
						return fmt.Errorf("failed to load corpus: %w", err)
					}
					if len(stored) == 0 {
						return fmt.Errorf("%w: run ingest first", core.ErrCorpusNotLoaded)
					}
					return session.Attach(ctx, stored)
				})
				if err != nil {
					return err
				}
			}

			return invoke(container, func(svc *core.ResponderService, tp *utils.TextProcessor, logger *zap.Logger) error {
				defer logger.Sync()

				start := time.Now()
				result, err := svc.Respond(ctx, req)
				if result != nil {
					console.NewPrinter(cmd.OutOrStdout(), opts.verbose, tp).
						PrintResult(result, time.Since(start))
				}
				return err
			})
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "File holding the incoming message (stdin if not set)")
	cmd.Flags().StringVar(&sender, "sender", "", "Sender address of the incoming message")
	cmd.Flags().StringVar(&style, "style", "", "Response style (professional, friendly, brief, detailed)")
	cmd.Flags().StringVar(&msgType, "type", "", "Message type (general, external_client, internal_colleague, discussion, request, update)")
	cmd.Flags().BoolVar(&internal, "internal", false, "Treat the sender as internal")
	cmd.Flags().BoolVar(&external, "external", false, "Treat the sender as external")
	cmd.Flags().BoolVar(&noContext, "no-context", false, "Generate a baseline reply without corpus examples")
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "Timeout for retrieval and generation")

	return cmd
}
