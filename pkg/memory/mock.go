package memory

import (
	"context"
	"math"
)

// MockEmbedder generates deterministic embeddings without any external
// service.  It backs tests and the offline demo mode; the vectors carry a
// rough bag-of-bytes signal so that similar texts score as similar.
type MockEmbedder struct {
	dimensions int
}

func NewMockEmbedder(dimensions int) *MockEmbedder {
	if dimensions <= 0 {
		dimensions = 8
	}
	return &MockEmbedder{dimensions: dimensions}
}

func (e *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	embedding := make([]float32, e.dimensions)
	if len(text) == 0 {
		return embedding, nil
	}

	for i := 0; i < len(text); i++ {
		embedding[int(text[i])%e.dimensions] += 1.0
	}

	// Normalize so that cosine comparisons are about direction, not length.
	var norm float64
	for _, v := range embedding {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		inv := float32(1.0 / math.Sqrt(norm))
		for i := range embedding {
			embedding[i] *= inv
		}
	}

	return embedding, nil
}

func (e *MockEmbedder) Dimensions() int {
	return e.dimensions
}
