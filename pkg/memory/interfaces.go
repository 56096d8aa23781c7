package memory

import "context"

// Embedder represents a service capable of generating embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// Point is one stored vector plus its flattened payload.
type Point struct {
	ID      string
	Vector  []float32
	Payload map[string]any
}

// VectorIndex is the external vector store the memory delegates to.  The
// index performs the similarity computation; the memory only supplies
// vectors, payloads and limits.
type VectorIndex interface {
	ListCollections(ctx context.Context) ([]string, error)
	CreateCollection(ctx context.Context, name string, size int, distance string) error
	Upsert(ctx context.Context, collection string, points []Point) error
	Query(ctx context.Context, collection string, vector []float32, limit int) ([]map[string]any, error)

	// Scroll returns one page of payloads plus a continuation token.  A nil
	// token from the index means the collection is exhausted.
	Scroll(ctx context.Context, collection string, limit int, offset any) ([]map[string]any, any, error)
}
