package openai

import (
	"github.com/mikey/llm-style-responder/internal/config"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Factory creates OpenAI completion and embedding clients
type Factory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewFactory creates a new factory for OpenAI clients
func NewFactory(cfg *config.Config, logger *zap.Logger) *Factory {
	return &Factory{
		cfg:    cfg,
		logger: logger,
	}
}

// newAPIClient builds the SDK client, honoring a custom base URL
func (f *Factory) newAPIClient() *openai.Client {
	openaiCfg := f.cfg.GetOpenAI()
	clientCfg := openai.DefaultConfig(openaiCfg.APIKey)
	if openaiCfg.BaseURL != "" {
		clientCfg.BaseURL = openaiCfg.BaseURL
	}
	return openai.NewClientWithConfig(clientCfg)
}

// CreateCompletionService creates a new OpenAIClient
func (f *Factory) CreateCompletionService() (*OpenAIClient, error) {
	openaiCfg := f.cfg.GetOpenAI()

	return NewOpenAIClient(
		f.newAPIClient(),
		openaiCfg.ModelName,
		openaiCfg.MaxTokens,
		openaiCfg.Temperature,
		openaiCfg.TopP,
		openaiCfg.MaxPromptSize,
		f.logger,
	), nil
}

// CreateEmbedder creates a new OpenAIEmbedder
func (f *Factory) CreateEmbedder() (*OpenAIEmbedder, error) {
	return NewOpenAIEmbedder(f.newAPIClient(), f.cfg.GetOpenAI().EmbeddingModel, f.logger), nil
}
