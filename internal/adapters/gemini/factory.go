package gemini

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/mikey/llm-style-responder/internal/config"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Factory creates Gemini completion and embedding clients
type Factory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewFactory creates a new factory for Gemini clients
func NewFactory(cfg *config.Config, logger *zap.Logger) *Factory {
	return &Factory{
		cfg:    cfg,
		logger: logger,
	}
}

func (f *Factory) newAPIClient() (*genai.Client, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(f.cfg.GetGemini().APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return client, nil
}

// CreateCompletionService creates a new GeminiClient
func (f *Factory) CreateCompletionService() (*GeminiClient, error) {
	geminiCfg := f.cfg.GetGemini()

	client, err := f.newAPIClient()
	if err != nil {
		return nil, err
	}

	model := client.GenerativeModel(geminiCfg.ModelName)
	model.SetTemperature(geminiCfg.Temperature)
	model.SetTopP(geminiCfg.TopP)
	model.SetMaxOutputTokens(int32(geminiCfg.MaxTokens))

	return NewGeminiClient(client, model, geminiCfg.ModelName, geminiCfg.MaxPromptSize, f.logger), nil
}

// CreateEmbedder creates a new GeminiEmbedder
func (f *Factory) CreateEmbedder() (*GeminiEmbedder, error) {
	geminiCfg := f.cfg.GetGemini()

	client, err := f.newAPIClient()
	if err != nil {
		return nil, err
	}

	return NewGeminiEmbedder(client, modelEmbedder{model: client.EmbeddingModel(geminiCfg.EmbeddingModel)}, geminiCfg.EmbeddingModel, f.logger), nil
}
