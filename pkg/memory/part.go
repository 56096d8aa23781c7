package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/theapemachine/partmem/pkg/errors"
)

const (
	// CollectionDistance is the metric every part collection is created
	// with.  It is fixed for the collection's lifetime.
	CollectionDistance = "Cosine"

	// historyPageSize is the scroll page size for full history reads.
	historyPageSize = 1000

	// summaryRecallLimit caps how many relevant events a query-driven
	// summary includes.
	summaryRecallLimit = 10
)

// PartMemory is the episodic memory of a single tracked part.  Points are
// append-only: nothing in here updates or deletes them.
type PartMemory struct {
	name       string
	collection string
	embedder   Embedder
	index      VectorIndex
	retry      *errors.RetryConfig
}

type PartMemoryOption func(*PartMemory)

// WithRetry enables bounded exponential backoff around the outbound embed
// and store calls.  Record keeps the generated point id across attempts,
// so a retried write lands on the same point instead of duplicating it.
func WithRetry(config *errors.RetryConfig) PartMemoryOption {
	return func(pm *PartMemory) {
		pm.retry = config
	}
}

// NewPartMemory opens the memory for the named part, creating its
// collection if this is the first time the part is seen.  An unreachable
// or rejecting store surfaces as a ConfigurationError.
func NewPartMemory(ctx context.Context, name string, embedder Embedder, index VectorIndex, options ...PartMemoryOption) (*PartMemory, error) {
	pm := &PartMemory{
		name:       name,
		collection: SafeCollectionName(name),
		embedder:   embedder,
		index:      index,
	}

	for _, option := range options {
		option(pm)
	}

	if err := pm.ensureCollection(ctx); err != nil {
		return nil, errors.Configuration(err)
	}

	return pm, nil
}

// Name returns the part name as supplied by the caller.
func (pm *PartMemory) Name() string { return pm.name }

// Collection returns the sanitized collection identifier.
func (pm *PartMemory) Collection() string { return pm.collection }

// ensureCollection is idempotent: it lists the existing collections and
// creates this part's collection only when absent.
func (pm *PartMemory) ensureCollection(ctx context.Context) error {
	var names []string
	err := pm.withRetry(ctx, func() error {
		var listErr error
		names, listErr = pm.index.ListCollections(ctx)
		return listErr
	})
	if err != nil {
		return errors.Store(err)
	}

	if slices.Contains(names, pm.collection) {
		return nil
	}

	err = pm.withRetry(ctx, func() error {
		return pm.index.CreateCollection(ctx, pm.collection, pm.embedder.Dimensions(), CollectionDistance)
	})
	if err != nil {
		return errors.Store(err)
	}

	return nil
}

// Record stores one feature event and returns the id of the new point.
// The canonical description is built from feature type, label, intent and
// parameters in that fixed order, then embedded and written.  Repeated
// calls with identical arguments create distinct points; no deduplication
// is attempted.  A failed embedding aborts before anything is written.
func (pm *PartMemory) Record(ctx context.Context, featureType, label, userIntent string, parameters map[string]any, extra map[string]any) (string, error) {
	description := fmt.Sprintf(
		"%s: %s. Intent: %s. Params: %s",
		featureType, label, userIntent, renderParams(parameters),
	)

	var vector []float32
	err := pm.withRetry(ctx, func() error {
		var embedErr error
		vector, embedErr = pm.embedder.Embed(ctx, description)
		return embedErr
	})
	if err != nil {
		return "", errors.Embedding(err)
	}

	payload := Payload{
		FeatureType: featureType,
		Label:       label,
		UserIntent:  userIntent,
		Parameters:  parameters,
		Timestamp:   time.Now().UTC().Format(timestampLayout),
		Description: description,
		Extra:       extra,
	}

	// The id is fixed before any write attempt so retries upsert the same
	// point rather than minting duplicates.
	pointID := uuid.NewString()

	err = pm.withRetry(ctx, func() error {
		return pm.index.Upsert(ctx, pm.collection, []Point{{
			ID:      pointID,
			Vector:  vector,
			Payload: payload.Map(),
		}})
	})
	if err != nil {
		return "", errors.Store(err)
	}

	return pointID, nil
}

// Recall embeds the query and returns the payloads of the topK nearest
// points in the order the index ranked them.  Fewer than topK entries come
// back when the collection holds fewer points; an empty result is a valid
// success, not an error.
func (pm *PartMemory) Recall(ctx context.Context, query string, topK int) ([]Payload, error) {
	var vector []float32
	err := pm.withRetry(ctx, func() error {
		var embedErr error
		vector, embedErr = pm.embedder.Embed(ctx, query)
		return embedErr
	})
	if err != nil {
		return nil, errors.Embedding(err)
	}

	var raw []map[string]any
	err = pm.withRetry(ctx, func() error {
		var queryErr error
		raw, queryErr = pm.index.Query(ctx, pm.collection, vector, topK)
		return queryErr
	})
	if err != nil {
		return nil, errors.Store(err)
	}

	payloads := make([]Payload, 0, len(raw))
	for _, m := range raw {
		payloads = append(payloads, payloadFromMap(m))
	}
	return payloads, nil
}

// FullHistory scrolls the whole collection, following continuation tokens
// until the index reports exhaustion, and returns the payloads sorted
// ascending by timestamp as a plain string comparison.  Payloads missing a
// timestamp sort first.
func (pm *PartMemory) FullHistory(ctx context.Context) ([]Payload, error) {
	var payloads []Payload
	var offset any

	for {
		var page []map[string]any
		var next any

		err := pm.withRetry(ctx, func() error {
			var scrollErr error
			page, next, scrollErr = pm.index.Scroll(ctx, pm.collection, historyPageSize, offset)
			return scrollErr
		})
		if err != nil {
			return nil, errors.Store(err)
		}

		for _, m := range page {
			payloads = append(payloads, payloadFromMap(m))
		}

		if next == nil {
			break
		}
		offset = next
	}

	sort.SliceStable(payloads, func(i, j int) bool {
		return payloads[i].Timestamp < payloads[j].Timestamp
	})

	return payloads, nil
}

func (pm *PartMemory) withRetry(ctx context.Context, fn func() error) error {
	if pm.retry == nil {
		return fn()
	}
	return errors.RetryWithBackoff(ctx, pm.retry, fn)
}
