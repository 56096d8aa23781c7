package partmem

// This file wires four memory_* MCP tools so a reasoning model can record
// and recall part history directly over stdio.  Tool handlers share one
// Backend; part memories are opened lazily per call.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/theapemachine/partmem/pkg/memory"
)

// RegisterMemoryTools attaches the memory tools to the supplied MCP server
// instance.
func RegisterMemoryTools(srv *server.MCPServer, backend *Backend) {
	srv.AddTool(buildMemoryRecordTool(), handleMemoryRecord(backend))
	srv.AddTool(buildMemoryRecallTool(), handleMemoryRecall(backend))
	srv.AddTool(buildMemoryHistoryTool(), handleMemoryHistory(backend))
	srv.AddTool(buildMemorySummaryTool(), handleMemorySummary(backend))
}

// ---------------------------------------------------------------------------
// Tool builders (schema only, no execution logic)
// ---------------------------------------------------------------------------

func buildMemoryRecordTool() mcp.Tool {
	return mcp.NewTool(
		"memory_record",
		mcp.WithDescription("Records one feature operation into a part's memory and returns the id of the stored point."),
		mcp.WithString("part",
			mcp.Description("Name of the part the feature belongs to"),
			mcp.Required(),
		),
		mcp.WithString("feature_type",
			mcp.Description("Operation tag, e.g. 'sketch_rectangle', 'extrude', 'fillet'"),
			mcp.Required(),
		),
		mcp.WithString("label",
			mcp.Description("Human-readable label assigned to this feature"),
		),
		mcp.WithString("user_intent",
			mcp.Description("The raw command or text that triggered this feature"),
		),
		mcp.WithObject("parameters",
			mcp.Description("Numeric or string parameters used by the operation"),
		),
		mcp.WithObject("extra",
			mcp.Description("Additional metadata merged into the payload (overrides standard fields on name clash)"),
		),
	)
}

func buildMemoryRecallTool() mcp.Tool {
	return mcp.NewTool(
		"memory_recall",
		mcp.WithDescription("Returns the most relevant prior feature events for a query, best match first."),
		mcp.WithString("part",
			mcp.Description("Name of the part to search"),
			mcp.Required(),
		),
		mcp.WithString("query",
			mcp.Description("Natural-language description of what the user wants"),
			mcp.Required(),
		),
		mcp.WithNumber("top_k",
			mcp.Description("Maximum number of results (default 5)"),
		),
	)
}

func buildMemoryHistoryTool() mcp.Tool {
	return mcp.NewTool(
		"memory_history",
		mcp.WithDescription("Returns every feature event recorded for a part in chronological order."),
		mcp.WithString("part",
			mcp.Description("Name of the part"),
			mcp.Required(),
		),
	)
}

func buildMemorySummaryTool() mcp.Tool {
	return mcp.NewTool(
		"memory_summary",
		mcp.WithDescription("Renders a part's history into a text digest suitable for prompt injection.  With a query the most relevant events come first; without one the full chronological history is used."),
		mcp.WithString("part",
			mcp.Description("Name of the part"),
			mcp.Required(),
		),
		mcp.WithString("query",
			mcp.Description("Optional query to bias the summary toward relevant events"),
		),
	)
}

// ---------------------------------------------------------------------------
// Tool handlers
// ---------------------------------------------------------------------------

func handleMemoryRecord(backend *Backend) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()

		part, _ := args["part"].(string)
		featureType, _ := args["feature_type"].(string)
		if part == "" || featureType == "" {
			return nil, fmt.Errorf("part and feature_type parameters are required")
		}

		label, _ := args["label"].(string)
		userIntent, _ := args["user_intent"].(string)

		pm, err := backend.Open(ctx, part)
		if err != nil {
			return nil, err
		}

		id, err := pm.Record(ctx, featureType, label, userIntent, objectArg(args, "parameters"), objectArg(args, "extra"))
		if err != nil {
			return nil, err
		}

		return mcp.NewToolResultText(id), nil
	}
}

func handleMemoryRecall(backend *Backend) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()

		part, _ := args["part"].(string)
		query, _ := args["query"].(string)
		if part == "" || query == "" {
			return nil, fmt.Errorf("part and query parameters are required")
		}

		topK := 5
		if n, ok := args["top_k"].(float64); ok && n > 0 { // JSON numbers are float64
			topK = int(n)
		}

		pm, err := backend.Open(ctx, part)
		if err != nil {
			return nil, err
		}

		events, err := pm.Recall(ctx, query, topK)
		if err != nil {
			return nil, err
		}

		return eventsResult(events)
	}
}

func handleMemoryHistory(backend *Backend) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		part, _ := req.GetArguments()["part"].(string)
		if part == "" {
			return nil, fmt.Errorf("part parameter is required")
		}

		pm, err := backend.Open(ctx, part)
		if err != nil {
			return nil, err
		}

		events, err := pm.FullHistory(ctx)
		if err != nil {
			return nil, err
		}

		return eventsResult(events)
	}
}

func handleMemorySummary(backend *Backend) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()

		part, _ := args["part"].(string)
		if part == "" {
			return nil, fmt.Errorf("part parameter is required")
		}
		query, _ := args["query"].(string)

		pm, err := backend.Open(ctx, part)
		if err != nil {
			return nil, err
		}

		summary, err := pm.BuildSummary(ctx, query)
		if err != nil {
			return nil, err
		}

		return mcp.NewToolResultText(summary), nil
	}
}

// objectArg tolerates both a map and a JSON-encoded string, depending on
// how the caller constructed the argument object.
func objectArg(args map[string]any, key string) map[string]any {
	raw, ok := args[key]
	if !ok {
		return nil
	}

	switch v := raw.(type) {
	case map[string]any:
		return v
	case string:
		var m map[string]any
		_ = json.Unmarshal([]byte(v), &m) // m stays nil on failure
		return m
	default:
		return nil
	}
}

func eventsResult(events []memory.Payload) (*mcp.CallToolResult, error) {
	flattened := make([]map[string]any, 0, len(events))
	for _, ev := range events {
		flattened = append(flattened, ev.Map())
	}

	b, err := json.Marshal(flattened)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(b)), nil
}
