package memory

import (
	"context"
	"testing"
)

func TestInMemoryIndex(t *testing.T) {
	ctx := context.Background()

	t.Run("CreateCollectionTwiceFails", func(t *testing.T) {
		index := NewInMemoryIndex()

		if err := index.CreateCollection(ctx, "c", 2, CollectionDistance); err != nil {
			t.Fatalf("Failed to create collection: %v", err)
		}
		if err := index.CreateCollection(ctx, "c", 2, CollectionDistance); err == nil {
			t.Fatalf("Expected duplicate create to fail")
		}
	})

	t.Run("UpsertReplacesSameID", func(t *testing.T) {
		index := NewInMemoryIndex()
		if err := index.CreateCollection(ctx, "c", 2, CollectionDistance); err != nil {
			t.Fatalf("Failed to create collection: %v", err)
		}

		if err := index.Upsert(ctx, "c", []Point{{ID: "p", Vector: []float32{1, 0}, Payload: map[string]any{"v": 1}}}); err != nil {
			t.Fatalf("Failed first upsert: %v", err)
		}
		if err := index.Upsert(ctx, "c", []Point{{ID: "p", Vector: []float32{0, 1}, Payload: map[string]any{"v": 2}}}); err != nil {
			t.Fatalf("Failed second upsert: %v", err)
		}

		payloads, _, err := index.Scroll(ctx, "c", 10, nil)
		if err != nil {
			t.Fatalf("Failed to scroll: %v", err)
		}
		if len(payloads) != 1 {
			t.Fatalf("Expected upsert to replace, got %d points", len(payloads))
		}
		if payloads[0]["v"] != 2 {
			t.Fatalf("Expected the newer payload, got %v", payloads[0]["v"])
		}
	})

	t.Run("DimensionMismatchRejected", func(t *testing.T) {
		index := NewInMemoryIndex()
		if err := index.CreateCollection(ctx, "c", 2, CollectionDistance); err != nil {
			t.Fatalf("Failed to create collection: %v", err)
		}

		err := index.Upsert(ctx, "c", []Point{{ID: "p", Vector: []float32{1, 0, 0}}})
		if err == nil {
			t.Fatalf("Expected dimension mismatch to be rejected")
		}
	})

	t.Run("QueryRanksByCosine", func(t *testing.T) {
		index := NewInMemoryIndex()
		if err := index.CreateCollection(ctx, "c", 2, CollectionDistance); err != nil {
			t.Fatalf("Failed to create collection: %v", err)
		}

		points := []Point{
			{ID: "far", Vector: []float32{0, 1}, Payload: map[string]any{"label": "far"}},
			{ID: "near", Vector: []float32{1, 0.1}, Payload: map[string]any{"label": "near"}},
			{ID: "exact", Vector: []float32{1, 0}, Payload: map[string]any{"label": "exact"}},
		}
		if err := index.Upsert(ctx, "c", points); err != nil {
			t.Fatalf("Failed to upsert: %v", err)
		}

		hits, err := index.Query(ctx, "c", []float32{1, 0}, 2)
		if err != nil {
			t.Fatalf("Failed to query: %v", err)
		}
		if len(hits) != 2 {
			t.Fatalf("Expected the limit to apply, got %d hits", len(hits))
		}
		if hits[0]["label"] != "exact" || hits[1]["label"] != "near" {
			t.Fatalf("Unexpected ranking: %v then %v", hits[0]["label"], hits[1]["label"])
		}
	})

	t.Run("ScrollPaginates", func(t *testing.T) {
		index := NewInMemoryIndex()
		if err := index.CreateCollection(ctx, "c", 1, CollectionDistance); err != nil {
			t.Fatalf("Failed to create collection: %v", err)
		}

		for _, id := range []string{"a", "b", "c"} {
			if err := index.Upsert(ctx, "c", []Point{{ID: id, Vector: []float32{1}, Payload: map[string]any{"id": id}}}); err != nil {
				t.Fatalf("Failed to upsert: %v", err)
			}
		}

		var seen []string
		var offset any
		for {
			page, next, err := index.Scroll(ctx, "c", 2, offset)
			if err != nil {
				t.Fatalf("Failed to scroll: %v", err)
			}
			for _, p := range page {
				seen = append(seen, p["id"].(string))
			}
			if next == nil {
				break
			}
			offset = next
		}

		if len(seen) != 3 {
			t.Fatalf("Expected all points across pages, got %v", seen)
		}
	})

	t.Run("UnknownCollection", func(t *testing.T) {
		index := NewInMemoryIndex()

		if err := index.Upsert(ctx, "missing", nil); err == nil {
			t.Fatalf("Expected upsert into missing collection to fail")
		}
		if _, err := index.Query(ctx, "missing", []float32{1}, 1); err == nil {
			t.Fatalf("Expected query against missing collection to fail")
		}
	})
}
