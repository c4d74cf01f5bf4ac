package bedrock

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/mikey/llm-style-responder/internal/config"
	"go.uber.org/zap"
)

// Factory creates Bedrock completion and embedding clients
type Factory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewFactory creates a new Bedrock factory
func NewFactory(cfg *config.Config, logger *zap.Logger) *Factory {
	return &Factory{
		cfg:    cfg,
		logger: logger,
	}
}

func (f *Factory) newRuntimeClient() (*bedrockruntime.Client, error) {
	// Load AWS configuration
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(f.cfg.GetBedrock().Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return bedrockruntime.NewFromConfig(awsCfg), nil
}

// CreateCompletionService creates a new BedrockClient
func (f *Factory) CreateCompletionService() (*BedrockClient, error) {
	bedrockCfg := f.cfg.GetBedrock()

	client, err := f.newRuntimeClient()
	if err != nil {
		return nil, err
	}

	return NewBedrockClient(
		client,
		bedrockCfg.ModelID,
		bedrockCfg.MaxTokens,
		bedrockCfg.Temperature,
		bedrockCfg.TopP,
		bedrockCfg.MaxPromptSize,
		f.logger,
	), nil
}

// CreateEmbedder creates a new BedrockEmbedder
func (f *Factory) CreateEmbedder() (*BedrockEmbedder, error) {
	client, err := f.newRuntimeClient()
	if err != nil {
		return nil, err
	}

	return NewBedrockEmbedder(client, f.cfg.GetBedrock().EmbeddingModelID, f.logger), nil
}
