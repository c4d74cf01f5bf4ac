package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/mikey/llm-style-responder/internal/domains"
	"go.uber.org/zap"
)

// Retrieval modes reported in results
const (
	ModeIndexed  = "indexed"
	ModeDirect   = "direct"
	ModeBaseline = "baseline"
)

// ResponseRequest is a caller's request for a generated reply
type ResponseRequest struct {
	IncomingText  string
	SenderAddress string
	Style         ResponseStyle
	MessageType   MessageType
	// IsInternal overrides internal-domain detection when set
	IsInternal     *bool
	IncludeContext bool
}

// ResponderService is the core service for style-mimicking responses
type ResponderService struct {
	session    *Session
	completion CompletionService
	domains    *domains.Checker
	logger     *zap.Logger
}

// NewResponderService creates a new responder service
func NewResponderService(
	session *Session,
	completion CompletionService,
	checker *domains.Checker,
	logger *zap.Logger,
) *ResponderService {
	return &ResponderService{
		session:    session,
		completion: completion,
		domains:    checker,
		logger:     logger,
	}
}

// isInternal resolves the internal flag, consulting the configured internal
// domains when the caller left it unset
func (s *ResponderService) isInternal(req ResponseRequest) bool {
	if req.IsInternal != nil {
		return *req.IsInternal
	}
	if s.domains == nil {
		return false
	}
	return s.domains.IsInternal(req.SenderAddress)
}

// promptLimit returns the completion service's prompt size limit, or zero
// when it declares none
func (s *ResponderService) promptLimit() int {
	if l, ok := s.completion.(PromptLimit); ok {
		return l.MaxPromptSize()
	}
	return 0
}

// generationFailure records a failure that happened before or during the
// completion call
func (s *ResponderService) generationFailure(mode, msg string, err error) (*GenerationResult, error) {
	gerr := &GenerationError{Err: err}
	s.logger.Error(msg, zap.Error(err), zap.String("mode", mode))
	return &GenerationResult{Success: false, Mode: mode, Error: gerr.Error()}, gerr
}

// Respond generates a reply. Retrieval and generation failures are reported
// both in the returned result and as the error; configuration failures return
// a nil result.
func (s *ResponderService) Respond(ctx context.Context, req ResponseRequest) (*GenerationResult, error) {
	if !req.IncludeContext {
		return s.Baseline(ctx, req)
	}

	if s.completion == nil {
		return nil, fmt.Errorf("completion service: %w", ErrNotConfigured)
	}
	if s.session == nil || s.session.store == nil {
		return nil, fmt.Errorf("knowledge store: %w", ErrNotConfigured)
	}

	mode := s.session.Mode()
	internal := s.isInternal(req)
	s.logger.Info("Generating context response",
		zap.String("sender", req.SenderAddress),
		zap.String("mode", mode),
		zap.String("message_type", string(req.MessageType)),
		zap.Bool("internal", internal))

	examples, err := s.session.Retrieve(ctx, req.SenderAddress, req.IncomingText, 0)
	if err != nil {
		if errors.Is(err, ErrCorpusNotLoaded) || errors.Is(err, ErrNotConfigured) {
			return nil, err
		}
		rerr := &RetrievalError{Mode: mode, Err: err}
		s.logger.Error("Failed to retrieve examples", zap.Error(err), zap.String("mode", mode))
		return &GenerationResult{Success: false, Mode: mode, Error: rerr.Error()}, rerr
	}

	var userIdentity string
	if identity, ok := s.session.UserIdentity(); ok {
		userIdentity = identity.Address
	}

	limit := s.promptLimit()
	prompt, fitted, err := FitPrompt(GenerationRequest{
		IncomingText:  req.IncomingText,
		SenderAddress: req.SenderAddress,
		Style:         req.Style,
		MessageType:   req.MessageType,
		IsInternal:    internal,
		UserIdentity:  userIdentity,
		Examples:      examples,
	}, limit)
	if err != nil {
		return s.generationFailure(mode, "Prompt does not fit the completion service", err)
	}
	if dropped := len(examples) - len(fitted.Examples); dropped > 0 {
		s.logger.Warn("Dropped lowest-ranked examples to fit prompt limit",
			zap.Int("dropped", dropped),
			zap.Int("kept", len(fitted.Examples)),
			zap.Int("limit", limit))
	}
	s.logger.Debug("Assembled prompt",
		zap.Int("prompt_length", len(prompt)),
		zap.Int("examples", len(fitted.Examples)))

	text, err := s.completion.Complete(ctx, prompt)
	if err != nil {
		return s.generationFailure(mode, "Failed to generate response", err)
	}

	confidence := "medium"
	if mode == ModeIndexed {
		confidence = "high"
	}

	return &GenerationResult{
		Success:    true,
		Response:   text,
		Sources:    fitted.Examples,
		Mode:       mode,
		Confidence: confidence,
	}, nil
}

// Baseline generates a control reply with no corpus context
func (s *ResponderService) Baseline(ctx context.Context, req ResponseRequest) (*GenerationResult, error) {
	if s.completion == nil {
		return nil, fmt.Errorf("completion service: %w", ErrNotConfigured)
	}

	s.logger.Info("Generating baseline response",
		zap.String("sender", req.SenderAddress),
		zap.String("message_type", string(req.MessageType)))

	prompt := AssembleBaselinePrompt(GenerationRequest{
		IncomingText:  req.IncomingText,
		SenderAddress: req.SenderAddress,
		Style:         req.Style,
		MessageType:   req.MessageType,
		IsInternal:    s.isInternal(req),
	})

	if limit := s.promptLimit(); limit > 0 && len(prompt) > limit {
		err := fmt.Errorf("%w: %d bytes, limit is %d", ErrPromptTooLong, len(prompt), limit)
		return s.generationFailure(ModeBaseline, "Prompt does not fit the completion service", err)
	}

	text, err := s.completion.Complete(ctx, prompt)
	if err != nil {
		return s.generationFailure(ModeBaseline, "Failed to generate baseline response", err)
	}

	return &GenerationResult{
		Success:    true,
		Response:   text,
		Mode:       ModeBaseline,
		Confidence: "baseline",
	}, nil
}
