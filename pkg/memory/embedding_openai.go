package memory

import (
	"context"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/theapemachine/partmem/pkg/errors"
	"github.com/theapemachine/partmem/pkg/utils"
)

// OpenAIEmbedder is the hosted alternative to the local Ollama embedder.
type OpenAIEmbedder struct {
	api        openai.Client
	model      string
	dimensions int
}

type OpenAIEmbedderOption func(*OpenAIEmbedder)

func WithOpenAIModel(model string, dimensions int) OpenAIEmbedderOption {
	return func(e *OpenAIEmbedder) {
		e.model = model
		e.dimensions = dimensions
	}
}

func WithOpenAIClient(client *openai.Client) OpenAIEmbedderOption {
	return func(e *OpenAIEmbedder) {
		e.api = *client
	}
}

func NewOpenAIEmbedder(options ...OpenAIEmbedderOption) *OpenAIEmbedder {
	embedder := &OpenAIEmbedder{
		api:        openai.NewClient(option.WithAPIKey(os.Getenv("OPENAI_API_KEY"))),
		model:      "text-embedding-3-small",
		dimensions: 1536,
	}

	for _, option := range options {
		option(embedder)
	}

	return embedder
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.api.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(e.model),
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: []string{text}},
	})
	if err != nil {
		return nil, errors.Embedding(err)
	}

	if len(resp.Data) == 0 {
		return nil, errors.Embeddingf("model %s returned no embedding", e.model)
	}

	return utils.ConvertToFloat32(resp.Data[0].Embedding), nil
}

func (e *OpenAIEmbedder) Dimensions() int {
	return e.dimensions
}
