package partmem

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func callRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("expected 1 content block, got %d", len(res.Content))
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	return text.Text
}

func TestMemoryRecordToolSchema(t *testing.T) {
	tool := buildMemoryRecordTool()

	if tool.Name != "memory_record" {
		t.Fatalf("tool name mismatch: got %s", tool.Name)
	}
	for _, prop := range []string{"part", "feature_type", "label", "user_intent", "parameters", "extra"} {
		if _, ok := tool.InputSchema.Properties[prop]; !ok {
			t.Fatalf("property %q missing", prop)
		}
	}
	if len(tool.InputSchema.Required) != 2 {
		t.Fatalf("expected 2 required properties, got %d", len(tool.InputSchema.Required))
	}
}

func TestMemoryRecordHandler(t *testing.T) {
	backend := NewLocalBackend()
	handler := handleMemoryRecord(backend)

	res, err := handler(context.Background(), callRequest(map[string]any{
		"part":         "Bracket-01",
		"feature_type": "extrude",
		"label":        "Base plate",
		"user_intent":  "extrude the base 10mm",
		"parameters":   map[string]any{"depth": 0.01},
	}))
	if err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if resultText(t, res) == "" {
		t.Fatalf("expected a point id")
	}

	// Missing required arguments must not write anything.
	if _, err := handler(context.Background(), callRequest(map[string]any{"part": "Bracket-01"})); err == nil {
		t.Fatalf("expected error for missing feature_type")
	}
}

func TestMemoryHistoryHandler(t *testing.T) {
	backend := NewLocalBackend()
	ctx := context.Background()

	record := handleMemoryRecord(backend)
	for _, args := range []map[string]any{
		{"part": "Bracket-01", "feature_type": "sketch_rectangle", "label": "Base profile"},
		{"part": "Bracket-01", "feature_type": "extrude", "label": "Base plate"},
	} {
		if _, err := record(ctx, callRequest(args)); err != nil {
			t.Fatalf("record failed: %v", err)
		}
	}

	res, err := handleMemoryHistory(backend)(ctx, callRequest(map[string]any{"part": "Bracket-01"}))
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}

	var events []map[string]any
	if err := json.Unmarshal([]byte(resultText(t, res)), &events); err != nil {
		t.Fatalf("history result is not json: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0]["feature_type"] != "sketch_rectangle" {
		t.Fatalf("history out of order: %v", events[0])
	}
}

func TestMemorySummaryHandlerEmpty(t *testing.T) {
	backend := NewLocalBackend()

	res, err := handleMemorySummary(backend)(context.Background(), callRequest(map[string]any{"part": "Fresh-Part"}))
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if got := resultText(t, res); got != "No prior features recorded for this part." {
		t.Fatalf("unexpected empty summary: %q", got)
	}
}

func TestMemoryRecallHandler(t *testing.T) {
	backend := NewLocalBackend()
	ctx := context.Background()

	record := handleMemoryRecord(backend)
	if _, err := record(ctx, callRequest(map[string]any{
		"part": "Bracket-01", "feature_type": "fillet", "label": "Corner rounds",
	})); err != nil {
		t.Fatalf("record failed: %v", err)
	}

	res, err := handleMemoryRecall(backend)(ctx, callRequest(map[string]any{
		"part":  "Bracket-01",
		"query": "fillet",
		"top_k": float64(1),
	}))
	if err != nil {
		t.Fatalf("recall failed: %v", err)
	}
	if !strings.Contains(resultText(t, res), "fillet") {
		t.Fatalf("recall result missing event: %s", resultText(t, res))
	}
}
