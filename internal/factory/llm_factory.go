package factory

import (
	"fmt"

	"github.com/mikey/llm-style-responder/internal/adapters/bedrock"
	"github.com/mikey/llm-style-responder/internal/adapters/gemini"
	"github.com/mikey/llm-style-responder/internal/adapters/openai"
	"github.com/mikey/llm-style-responder/internal/config"
	"github.com/mikey/llm-style-responder/internal/core"
	"go.uber.org/zap"
)

// LLMFactory creates completion services and embedders for the configured providers
type LLMFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewLLMFactory creates a new LLM factory
func NewLLMFactory(cfg *config.Config, logger *zap.Logger) *LLMFactory {
	return &LLMFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// requireAPIKey rejects providers that need a key when none is configured
func (f *LLMFactory) requireAPIKey(provider string) error {
	var key string
	switch provider {
	case "openai":
		key = f.cfg.GetOpenAI().APIKey
	case "gemini":
		key = f.cfg.GetGemini().APIKey
	default:
		// Bedrock resolves credentials through the AWS default chain.
		return nil
	}
	if key == "" {
		return fmt.Errorf("%s API key is required: %w", provider, core.ErrNotConfigured)
	}
	return nil
}

// CreateCompletionService creates a new completion service based on the configuration
func (f *LLMFactory) CreateCompletionService() (core.CompletionService, error) {
	provider := f.cfg.GetLLM().Provider
	if err := f.requireAPIKey(provider); err != nil {
		return nil, err
	}

	f.logger.Debug("Creating completion service", zap.String("provider", provider))

	switch provider {
	case "bedrock":
		client, err := bedrock.NewFactory(f.cfg, f.logger).CreateCompletionService()
		if err != nil {
			return nil, err
		}
		return client, nil
	case "gemini":
		client, err := gemini.NewFactory(f.cfg, f.logger).CreateCompletionService()
		if err != nil {
			return nil, err
		}
		return client, nil
	case "openai":
		client, err := openai.NewFactory(f.cfg, f.logger).CreateCompletionService()
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}

// CreateEmbedder creates a new embedder based on the configuration
func (f *LLMFactory) CreateEmbedder() (core.Embedder, error) {
	provider := f.cfg.GetLLM().EmbeddingProvider
	if err := f.requireAPIKey(provider); err != nil {
		return nil, err
	}

	f.logger.Debug("Creating embedder", zap.String("provider", provider))

	switch provider {
	case "bedrock":
		embedder, err := bedrock.NewFactory(f.cfg, f.logger).CreateEmbedder()
		if err != nil {
			return nil, err
		}
		return embedder, nil
	case "gemini":
		embedder, err := gemini.NewFactory(f.cfg, f.logger).CreateEmbedder()
		if err != nil {
			return nil, err
		}
		return embedder, nil
	case "openai":
		embedder, err := openai.NewFactory(f.cfg, f.logger).CreateEmbedder()
		if err != nil {
			return nil, err
		}
		return embedder, nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", provider)
	}
}
