// Package partmem gives every tracked CAD part an episodic memory: feature
// operations are embedded and stored in a per-part vector collection, then
// recalled by similarity or replayed chronologically and rendered into a
// context summary for prompt injection.
//
// The heavy lifting lives in pkg/memory; this package is the assembly
// surface callers are expected to use.
package partmem

import (
	"context"
	"time"

	"github.com/theapemachine/partmem/pkg/memory"
	"github.com/theapemachine/partmem/pkg/stores/qdrant"
)

// Backend bundles the two external services a part memory depends on.
type Backend struct {
	Embedder memory.Embedder
	Index    memory.VectorIndex
}

// NewQdrantBackend wires a local Ollama embedder to a Qdrant index, the
// default production pairing.
func NewQdrantBackend(qdrantURL, ollamaURL string, timeout time.Duration, options ...memory.OllamaEmbedderOption) (*Backend, error) {
	embedder, err := memory.NewOllamaEmbedder(ollamaURL, options...)
	if err != nil {
		return nil, err
	}

	return &Backend{
		Embedder: embedder,
		Index:    memory.NewQdrantIndex(qdrant.New(qdrantURL, qdrant.WithTimeout(timeout))),
	}, nil
}

// NewLocalBackend runs entirely in process: deterministic mock embeddings
// and a naive cosine index.  Useful for demos, tests and the MCP stdio
// mode when no services are available.
func NewLocalBackend() *Backend {
	return &Backend{
		Embedder: memory.NewMockEmbedder(8),
		Index:    memory.NewInMemoryIndex(),
	}
}

// Open returns the episodic memory for the named part, creating its
// collection on first access.
func (b *Backend) Open(ctx context.Context, name string, options ...memory.PartMemoryOption) (*memory.PartMemory, error) {
	return memory.NewPartMemory(ctx, name, b.Embedder, b.Index, options...)
}
