// Package service exposes the part memory over HTTP so the voice-command
// router and the modeling automation can share one memory process.
package service

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/theapemachine/partmem/pkg/errors"
	"github.com/theapemachine/partmem/pkg/memory"
)

// MemoryServer serves one memory per part, opened lazily on first use and
// cached for the lifetime of the process.
type MemoryServer struct {
	app      *fiber.App
	embedder memory.Embedder
	index    memory.VectorIndex
	retry    *errors.RetryConfig

	mu    sync.Mutex
	parts map[string]*memory.PartMemory
}

type MemoryServerOption func(*MemoryServer)

// WithRetry applies a retry policy to every part memory the server opens.
func WithRetry(config *errors.RetryConfig) MemoryServerOption {
	return func(srv *MemoryServer) {
		srv.retry = config
	}
}

func NewMemoryServer(embedder memory.Embedder, index memory.VectorIndex, options ...MemoryServerOption) *MemoryServer {
	srv := &MemoryServer{
		app: fiber.New(fiber.Config{
			AppName:      "partmem",
			ServerHeader: "Part-Memory-Server",
		}),
		embedder: embedder,
		index:    index,
		parts:    make(map[string]*memory.PartMemory),
	}

	for _, option := range options {
		option(srv)
	}

	srv.app.Use(logger.New(), healthcheck.NewHealthChecker())
	srv.app.Get("/", srv.handleRoot)
	srv.app.Post("/parts/:name/features", srv.handleRecord)
	srv.app.Post("/parts/:name/recall", srv.handleRecall)
	srv.app.Get("/parts/:name/history", srv.handleHistory)
	srv.app.Get("/parts/:name/summary", srv.handleSummary)

	return srv
}

// Start blocks serving on addr, e.g. ":6030".
func (srv *MemoryServer) Start(addr string) error {
	return srv.app.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true})
}

// App exposes the underlying fiber app, mostly for tests.
func (srv *MemoryServer) App() *fiber.App {
	return srv.app
}

// open returns the cached memory for the part, creating it (and its
// collection) on first access.
func (srv *MemoryServer) open(ctx context.Context, name string) (*memory.PartMemory, error) {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	if pm, ok := srv.parts[name]; ok {
		return pm, nil
	}

	var options []memory.PartMemoryOption
	if srv.retry != nil {
		options = append(options, memory.WithRetry(srv.retry))
	}

	pm, err := memory.NewPartMemory(ctx, name, srv.embedder, srv.index, options...)
	if err != nil {
		return nil, err
	}

	srv.parts[name] = pm
	return pm, nil
}

func (srv *MemoryServer) handleRoot(ctx fiber.Ctx) error {
	return ctx.SendString("OK")
}

type recordRequest struct {
	FeatureType string         `json:"feature_type"`
	Label       string         `json:"label"`
	UserIntent  string         `json:"user_intent"`
	Parameters  map[string]any `json:"parameters"`
	Extra       map[string]any `json:"extra"`
}

func (srv *MemoryServer) handleRecord(ctx fiber.Ctx) error {
	var request recordRequest
	if err := ctx.Bind().Body(&request); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if request.FeatureType == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "feature_type is required",
		})
	}

	pm, err := srv.open(ctx.Context(), ctx.Params("name"))
	if err != nil {
		return srv.fail(ctx, err)
	}

	id, err := pm.Record(
		ctx.Context(),
		request.FeatureType,
		request.Label,
		request.UserIntent,
		request.Parameters,
		request.Extra,
	)
	if err != nil {
		return srv.fail(ctx, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

type recallRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

func (srv *MemoryServer) handleRecall(ctx fiber.Ctx) error {
	var request recallRequest
	if err := ctx.Bind().Body(&request); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if request.Query == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "query is required",
		})
	}
	if request.TopK <= 0 {
		request.TopK = 5
	}

	pm, err := srv.open(ctx.Context(), ctx.Params("name"))
	if err != nil {
		return srv.fail(ctx, err)
	}

	events, err := pm.Recall(ctx.Context(), request.Query, request.TopK)
	if err != nil {
		return srv.fail(ctx, err)
	}

	return ctx.JSON(fiber.Map{"events": flatten(events)})
}

func (srv *MemoryServer) handleHistory(ctx fiber.Ctx) error {
	pm, err := srv.open(ctx.Context(), ctx.Params("name"))
	if err != nil {
		return srv.fail(ctx, err)
	}

	events, err := pm.FullHistory(ctx.Context())
	if err != nil {
		return srv.fail(ctx, err)
	}

	return ctx.JSON(fiber.Map{"events": flatten(events)})
}

func (srv *MemoryServer) handleSummary(ctx fiber.Ctx) error {
	pm, err := srv.open(ctx.Context(), ctx.Params("name"))
	if err != nil {
		return srv.fail(ctx, err)
	}

	summary, err := pm.BuildSummary(ctx.Context(), ctx.Query("query"))
	if err != nil {
		return srv.fail(ctx, err)
	}

	return ctx.JSON(fiber.Map{"summary": summary})
}

// fail maps the memory error taxonomy onto HTTP statuses.  The core never
// logs; this is the layer that reports.
func (srv *MemoryServer) fail(ctx fiber.Ctx, err error) error {
	log.Error("memory operation failed", "part", ctx.Params("name"), "error", err)

	status := fiber.StatusInternalServerError
	switch {
	case errors.IsConfiguration(err):
		status = fiber.StatusServiceUnavailable
	case errors.IsEmbedding(err), errors.IsStore(err):
		status = fiber.StatusBadGateway
	}

	return ctx.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func flatten(events []memory.Payload) []map[string]any {
	out := make([]map[string]any, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Map())
	}
	return out
}
