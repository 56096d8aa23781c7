package memory

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/theapemachine/partmem/pkg/errors"
)

const (
	// DefaultEmbeddingModel is the local model used to embed feature
	// descriptions.  nomic-embed-text outputs 768-d vectors.
	DefaultEmbeddingModel     = "nomic-embed-text"
	DefaultEmbeddingDimension = 768
	DefaultEmbedTimeout       = 30 * time.Second
)

// OllamaEmbedder generates embeddings through a local Ollama instance.
type OllamaEmbedder struct {
	client     *api.Client
	model      string
	dimensions int
	timeout    time.Duration
}

type OllamaEmbedderOption func(*OllamaEmbedder)

// WithOllamaModel overrides the embedding model and its vector dimension.
func WithOllamaModel(model string, dimensions int) OllamaEmbedderOption {
	return func(e *OllamaEmbedder) {
		e.model = model
		e.dimensions = dimensions
	}
}

// WithOllamaTimeout overrides the per-request timeout.
func WithOllamaTimeout(d time.Duration) OllamaEmbedderOption {
	return func(e *OllamaEmbedder) {
		e.timeout = d
	}
}

// NewOllamaEmbedder builds an embedder against the given Ollama endpoint,
// e.g. http://localhost:11434.
func NewOllamaEmbedder(endpoint string, options ...OllamaEmbedderOption) (*OllamaEmbedder, error) {
	base, err := url.Parse(endpoint)
	if err != nil {
		return nil, errors.Embeddingf("invalid ollama endpoint %q: %v", endpoint, err)
	}

	embedder := &OllamaEmbedder{
		model:      DefaultEmbeddingModel,
		dimensions: DefaultEmbeddingDimension,
		timeout:    DefaultEmbedTimeout,
	}

	for _, option := range options {
		option(embedder)
	}

	embedder.client = api.NewClient(base, &http.Client{Timeout: embedder.timeout})
	return embedder, nil
}

// Embed returns the first embedding vector for the given text.  No retry
// happens here; retries are the caller's responsibility.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.Embed(ctx, &api.EmbedRequest{
		Model: e.model,
		Input: text,
	})
	if err != nil {
		return nil, errors.Embedding(err)
	}

	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0]) == 0 {
		return nil, errors.Embeddingf("model %s returned no embedding", e.model)
	}

	return resp.Embeddings[0], nil
}

// Dimensions returns the embedding vector size.
func (e *OllamaEmbedder) Dimensions() int {
	return e.dimensions
}
