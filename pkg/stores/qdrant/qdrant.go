// Package qdrant is a thin REST client for the subset of the Qdrant API the
// part memory needs: collection lifecycle, point upsert, vector search and
// payload scrolling.  It deliberately avoids the heavyweight gRPC SDK; the
// five endpoints below are stable and easy to exercise against httptest.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client wraps a Qdrant endpoint.  Collections are passed per call because
// the part memory maintains one collection per tracked part.
type Client struct {
	Endpoint   string // e.g. http://localhost:6333
	httpClient *http.Client
}

type ClientOption func(*Client)

// WithTimeout overrides the default request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(client *Client) {
		client.httpClient.Timeout = d
	}
}

// WithHTTPClient swaps the underlying HTTP client, mostly for tests.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(client *Client) {
		client.httpClient = httpClient
	}
}

// New returns a Client with sane defaults.
func New(endpoint string, options ...ClientOption) *Client {
	client := &Client{
		Endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}

	for _, option := range options {
		option(client)
	}

	return client
}

// Point is one stored vector plus its payload.
type Point struct {
	ID      string         `json:"id"`
	Vector  []float32      `json:"vector"`
	Payload map[string]any `json:"payload"`
}

// ListCollections returns the names of all collections on the server.
func (client *Client) ListCollections(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		fmt.Sprintf("%s/collections", client.Endpoint),
		nil,
	)
	if err != nil {
		return nil, err
	}

	resp, err := client.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("qdrant: list collections status %s", resp.Status)
	}

	var out struct {
		Result struct {
			Collections []struct {
				Name string `json:"name"`
			} `json:"collections"`
		} `json:"result"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(out.Result.Collections))
	for _, c := range out.Result.Collections {
		names = append(names, c.Name)
	}

	return names, nil
}

// CreateCollection creates a collection with the given vector size and
// distance metric (e.g. "Cosine").
func (client *Client) CreateCollection(ctx context.Context, name string, size int, distance string) error {
	body := map[string]any{
		"vectors": map[string]any{
			"size":     size,
			"distance": distance,
		},
	}

	b, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPut,
		fmt.Sprintf("%s/collections/%s", client.Endpoint, name),
		bytes.NewReader(b),
	)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant: create collection status %s", resp.Status)
	}

	return nil
}

// Upsert writes a batch of points into the collection.  The request waits
// for the write to be applied so a subsequent read observes it.
func (client *Client) Upsert(ctx context.Context, collection string, points []Point) error {
	body := map[string]any{"points": points}

	b, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPut,
		fmt.Sprintf("%s/collections/%s/points?wait=true", client.Endpoint, collection),
		bytes.NewReader(b),
	)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant: upsert status %s", resp.Status)
	}

	return nil
}

// Query performs a vector search and returns the payloads of the nearest
// points in the order the index ranked them.
func (client *Client) Query(ctx context.Context, collection string, vector []float32, limit int) ([]map[string]any, error) {
	body := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
	}

	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		fmt.Sprintf("%s/collections/%s/points/search", client.Endpoint, collection),
		bytes.NewReader(b),
	)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("qdrant: search status %s", resp.Status)
	}

	var out struct {
		Result []struct {
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}

	payloads := make([]map[string]any, 0, len(out.Result))
	for _, r := range out.Result {
		payloads = append(payloads, r.Payload)
	}

	return payloads, nil
}

// Scroll fetches one page of payloads.  A nil offset starts at the
// beginning; the returned offset is nil once the collection is exhausted.
func (client *Client) Scroll(ctx context.Context, collection string, limit int, offset any) ([]map[string]any, any, error) {
	body := map[string]any{
		"limit":        limit,
		"with_payload": true,
		"with_vector":  false,
	}
	if offset != nil {
		body["offset"] = offset
	}

	b, err := json.Marshal(body)
	if err != nil {
		return nil, nil, err
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		fmt.Sprintf("%s/collections/%s/points/scroll", client.Endpoint, collection),
		bytes.NewReader(b),
	)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, nil, fmt.Errorf("qdrant: scroll status %s", resp.Status)
	}

	var out struct {
		Result struct {
			Points []struct {
				Payload map[string]any `json:"payload"`
			} `json:"points"`
			NextPageOffset any `json:"next_page_offset"`
		} `json:"result"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, nil, err
	}

	payloads := make([]map[string]any, 0, len(out.Result.Points))
	for _, p := range out.Result.Points {
		payloads = append(payloads, p.Payload)
	}

	return payloads, out.Result.NextPageOffset, nil
}
