package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sgtdali/mcp-RAGON/helper"
	"github.com/sgtdali/mcp-RAGON/model"
)

const defaultRequestTimeout = 30 * time.Second

// OpenAIEmbedder generates embeddings through the OpenAI embeddings API.
// The default model is text-embedding-3-small (1536 dimensions).
type OpenAIEmbedder struct {
	client  *openai.Client
	model   openai.EmbeddingModel
	timeout time.Duration
}

// OpenAIOption configures an OpenAIEmbedder
type OpenAIOption func(*OpenAIEmbedder)

// WithModel sets the embedding model
func WithModel(embeddingModel openai.EmbeddingModel) OpenAIOption {
	return func(e *OpenAIEmbedder) {
		e.model = embeddingModel
	}
}

// WithTimeout sets the per-request timeout.
// Default is 30 seconds.
func WithTimeout(timeout time.Duration) OpenAIOption {
	return func(e *OpenAIEmbedder) {
		if timeout > 0 {
			e.timeout = timeout
		}
	}
}

// NewOpenAIEmbedder creates an embedder backed by the OpenAI API
func NewOpenAIEmbedder(apiKey string, opts ...OpenAIOption) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		return nil, helper.NewError("create openai embedder", fmt.Errorf("missing OPENAI_API_KEY"))
	}

	embedder := &OpenAIEmbedder{
		client:  openai.NewClient(apiKey),
		model:   openai.SmallEmbedding3,
		timeout: defaultRequestTimeout,
	}

	for _, opt := range opts {
		opt(embedder)
	}

	return embedder, nil
}

// Embed generates the embedding for a single text. Text must be non-empty
// and already bounded in length; this method does not chunk oversized input.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, helper.NewError("embed", fmt.Errorf("text must not be empty"))
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	text = strings.ReplaceAll(text, "\n", " ")

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: e.model,
	})
	if err != nil {
		return nil, helper.NewError("embed", errors.Join(model.ErrEmbeddingUnavailable, err))
	}

	if len(resp.Data) == 0 {
		return nil, helper.NewError("embed", errors.Join(model.ErrEmbeddingUnavailable, fmt.Errorf("provider returned no embedding")))
	}

	return resp.Data[0].Embedding, nil
}
