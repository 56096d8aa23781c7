package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// InMemoryIndex is an in-process VectorIndex so the MCP stdio mode, demos
// and unit tests run without a Qdrant instance.  Scoring is a naive cosine
// pass over every point, which is fine at the scale of a single part's
// feature history.
type InMemoryIndex struct {
	mu          sync.RWMutex
	collections map[string]*inMemoryCollection
}

type inMemoryCollection struct {
	size     int
	distance string
	points   []Point
}

func NewInMemoryIndex() *InMemoryIndex {
	return &InMemoryIndex{collections: make(map[string]*inMemoryCollection)}
}

func (idx *InMemoryIndex) ListCollections(ctx context.Context) ([]string, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	names := make([]string, 0, len(idx.collections))
	for name := range idx.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (idx *InMemoryIndex) CreateCollection(ctx context.Context, name string, size int, distance string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, exists := idx.collections[name]; exists {
		return fmt.Errorf("collection %q already exists", name)
	}

	idx.collections[name] = &inMemoryCollection{size: size, distance: distance}
	return nil
}

func (idx *InMemoryIndex) Upsert(ctx context.Context, collection string, points []Point) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	col, exists := idx.collections[collection]
	if !exists {
		return fmt.Errorf("collection %q not found", collection)
	}

	for _, point := range points {
		if len(point.Vector) != col.size {
			return fmt.Errorf("vector dimension %d does not match collection size %d", len(point.Vector), col.size)
		}

		replaced := false
		for i, existing := range col.points {
			if existing.ID == point.ID {
				col.points[i] = point
				replaced = true
				break
			}
		}
		if !replaced {
			col.points = append(col.points, point)
		}
	}

	return nil
}

func (idx *InMemoryIndex) Query(ctx context.Context, collection string, vector []float32, limit int) ([]map[string]any, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	col, exists := idx.collections[collection]
	if !exists {
		return nil, fmt.Errorf("collection %q not found", collection)
	}

	type scored struct {
		payload map[string]any
		score   float64
	}

	hits := make([]scored, 0, len(col.points))
	for _, point := range col.points {
		hits = append(hits, scored{payload: point.Payload, score: cosine(vector, point.Vector)})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].score > hits[j].score
	})

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}

	payloads := make([]map[string]any, 0, len(hits))
	for _, hit := range hits {
		payloads = append(payloads, hit.payload)
	}
	return payloads, nil
}

func (idx *InMemoryIndex) Scroll(ctx context.Context, collection string, limit int, offset any) ([]map[string]any, any, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	col, exists := idx.collections[collection]
	if !exists {
		return nil, nil, fmt.Errorf("collection %q not found", collection)
	}

	start := 0
	if offset != nil {
		i, ok := offset.(int)
		if !ok {
			return nil, nil, fmt.Errorf("invalid scroll offset %v", offset)
		}
		start = i
	}
	if start > len(col.points) {
		start = len(col.points)
	}

	end := len(col.points)
	if limit > 0 && start+limit < end {
		end = start + limit
	}

	payloads := make([]map[string]any, 0, end-start)
	for _, point := range col.points[start:end] {
		payloads = append(payloads, point.Payload)
	}

	var next any
	if end < len(col.points) {
		next = end
	}
	return payloads, next, nil
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
