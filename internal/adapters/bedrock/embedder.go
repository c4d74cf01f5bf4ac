package bedrock

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"go.uber.org/zap"
)

// cohereBatchLimit is the maximum number of texts per Cohere embed call
const cohereBatchLimit = 96

// BedrockEmbedder is an implementation of the Embedder interface using
// Titan or Cohere embedding models on Amazon Bedrock
type BedrockEmbedder struct {
	client  modelInvoker
	modelID string
	logger  *zap.Logger
}

// NewBedrockEmbedder creates a new Bedrock embedder
func NewBedrockEmbedder(client modelInvoker, modelID string, logger *zap.Logger) *BedrockEmbedder {
	return &BedrockEmbedder{
		client:  client,
		modelID: modelID,
		logger:  logger,
	}
}

// Embed returns one vector per text, in input order. Titan models take one
// text per call; Cohere models are batched.
func (e *BedrockEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var vectors [][]float32
	if isCohereModel(e.modelID) {
		for start := 0; start < len(texts); start += cohereBatchLimit {
			end := min(start+cohereBatchLimit, len(texts))
			batch, err := e.embedCohere(ctx, texts[start:end])
			if err != nil {
				return nil, err
			}
			vectors = append(vectors, batch...)
		}
	} else {
		vectors = make([][]float32, 0, len(texts))
		for _, text := range texts {
			vec, err := e.embedTitan(ctx, text)
			if err != nil {
				return nil, err
			}
			vectors = append(vectors, vec)
		}
	}

	e.logger.Debug("Bedrock embeddings created",
		zap.String("model", e.modelID),
		zap.Int("count", len(vectors)))

	return vectors, nil
}

func (e *BedrockEmbedder) embedTitan(ctx context.Context, text string) ([]float32, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"inputText": text,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embedding payload: %w", err)
	}

	body, err := e.invoke(ctx, payload)
	if err != nil {
		return nil, err
	}

	var titanResp struct {
		Embedding []float32 `json:"embedding"`
	}
	if err := json.Unmarshal(body, &titanResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal Titan embedding response: %w", err)
	}
	if len(titanResp.Embedding) == 0 {
		return nil, fmt.Errorf("empty embedding from Titan model")
	}
	return titanResp.Embedding, nil
}

func (e *BedrockEmbedder) embedCohere(ctx context.Context, texts []string) ([][]float32, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"texts":      texts,
		"input_type": "search_document",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embedding payload: %w", err)
	}

	body, err := e.invoke(ctx, payload)
	if err != nil {
		return nil, err
	}

	var cohereResp struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	if err := json.Unmarshal(body, &cohereResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal Cohere embedding response: %w", err)
	}
	if len(cohereResp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("Cohere returned %d embeddings for %d inputs", len(cohereResp.Embeddings), len(texts))
	}
	return cohereResp.Embeddings, nil
}

func (e *BedrockEmbedder) invoke(ctx context.Context, payload []byte) ([]byte, error) {
	resp, err := e.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(e.modelID),
		Body:        payload,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke Bedrock embedding model: %w", err)
	}
	return resp.Body, nil
}
