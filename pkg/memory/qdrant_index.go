package memory

import (
	"context"

	"github.com/theapemachine/partmem/pkg/stores/qdrant"
)

// QdrantIndex adapts the REST client to the VectorIndex interface.
type QdrantIndex struct {
	client *qdrant.Client
}

func NewQdrantIndex(client *qdrant.Client) *QdrantIndex {
	return &QdrantIndex{client: client}
}

func (idx *QdrantIndex) ListCollections(ctx context.Context) ([]string, error) {
	return idx.client.ListCollections(ctx)
}

func (idx *QdrantIndex) CreateCollection(ctx context.Context, name string, size int, distance string) error {
	return idx.client.CreateCollection(ctx, name, size, distance)
}

func (idx *QdrantIndex) Upsert(ctx context.Context, collection string, points []Point) error {
	converted := make([]qdrant.Point, 0, len(points))
	for _, point := range points {
		converted = append(converted, qdrant.Point{
			ID:      point.ID,
			Vector:  point.Vector,
			Payload: point.Payload,
		})
	}
	return idx.client.Upsert(ctx, collection, converted)
}

func (idx *QdrantIndex) Query(ctx context.Context, collection string, vector []float32, limit int) ([]map[string]any, error) {
	return idx.client.Query(ctx, collection, vector, limit)
}

func (idx *QdrantIndex) Scroll(ctx context.Context, collection string, limit int, offset any) ([]map[string]any, any, error) {
	return idx.client.Scroll(ctx, collection, limit, offset)
}
