package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/mikey/llm-style-responder/internal/core"
	"go.uber.org/zap"
)

// contentGenerator is the subset of genai.GenerativeModel used for completions
type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// batchEmbedder embeds a batch of texts in one call
type batchEmbedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([]*genai.ContentEmbedding, error)
}

// modelEmbedder adapts genai.EmbeddingModel to batchEmbedder
type modelEmbedder struct {
	model *genai.EmbeddingModel
}

func (m modelEmbedder) EmbedTexts(ctx context.Context, texts []string) ([]*genai.ContentEmbedding, error) {
	batch := m.model.NewBatch()
	for _, text := range texts {
		batch.AddContent(genai.Text(text))
	}
	resp, err := m.model.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, err
	}
	return resp.Embeddings, nil
}

// GeminiClient is an implementation of the CompletionService interface using Google Gemini
type GeminiClient struct {
	client        *genai.Client
	model         contentGenerator
	modelName     string
	maxPromptSize int
	logger        *zap.Logger
}

// NewGeminiClient creates a new Gemini client around a configured model
func NewGeminiClient(
	client *genai.Client,
	model contentGenerator,
	modelName string,
	maxPromptSize int,
	logger *zap.Logger,
) *GeminiClient {
	return &GeminiClient{
		client:        client,
		model:         model,
		modelName:     modelName,
		maxPromptSize: maxPromptSize,
		logger:        logger,
	}
}

// Close closes the Gemini client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// MaxPromptSize returns the largest prompt, in bytes, that Complete accepts
func (c *GeminiClient) MaxPromptSize() int {
	return c.maxPromptSize
}

// Complete sends the prompt and joins the text parts of the first candidate
func (c *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	if c.maxPromptSize > 0 && len(prompt) > c.maxPromptSize {
		return "", fmt.Errorf("Gemini prompt of %d bytes: %w", len(prompt), core.ErrPromptTooLong)
	}

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content with Gemini: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil ||
		len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from Gemini")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	c.logger.Debug("Gemini completion finished",
		zap.String("model", c.modelName),
		zap.Int("response_length", sb.Len()))

	return sb.String(), nil
}

// GeminiEmbedder is an implementation of the Embedder interface using Google Gemini
type GeminiEmbedder struct {
	client    *genai.Client
	model     batchEmbedder
	modelName string
	logger    *zap.Logger
}

// NewGeminiEmbedder creates a new Gemini embedder
func NewGeminiEmbedder(client *genai.Client, model batchEmbedder, modelName string, logger *zap.Logger) *GeminiEmbedder {
	return &GeminiEmbedder{
		client:    client,
		model:     model,
		modelName: modelName,
		logger:    logger,
	}
}

// Close closes the Gemini client
func (e *GeminiEmbedder) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

// Embed returns one vector per text, in input order
func (e *GeminiEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	embeddings, err := e.model.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed contents with Gemini: %w", err)
	}
	if len(embeddings) != len(texts) {
		return nil, fmt.Errorf("Gemini returned %d embeddings for %d inputs", len(embeddings), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for i, emb := range embeddings {
		if emb == nil {
			return nil, fmt.Errorf("Gemini returned no embedding for input %d", i)
		}
		vectors[i] = emb.Values
	}

	e.logger.Debug("Gemini embeddings created",
		zap.String("model", e.modelName),
		zap.Int("count", len(vectors)))

	return vectors, nil
}
