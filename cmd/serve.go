package cmd

import (
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/theapemachine/partmem"
	"github.com/theapemachine/partmem/pkg/errors"
	"github.com/theapemachine/partmem/pkg/memory"
	"github.com/theapemachine/partmem/pkg/service"
	"github.com/theapemachine/partmem/pkg/stores/qdrant"
)

var (
	portFlag  int
	hostFlag  string
	localFlag bool

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the part memory services",
		Long:  longServe,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	httpCmd = &cobra.Command{
		Use:   "http",
		Short: "Serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := backendFromConfig()
			if err != nil {
				return err
			}

			srv := service.NewMemoryServer(
				backend.Embedder,
				backend.Index,
				service.WithRetry(retryFromConfig()),
			)

			return srv.Start(fmt.Sprintf("%s:%d", hostFlag, portFlag))
		},
	}

	mcpCmd = &cobra.Command{
		Use:   "mcp",
		Short: "Serve the memory tools over MCP stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := backendFromConfig()
			if err != nil {
				return err
			}

			s := server.NewMCPServer(
				"partmem",
				"1.0.0",
				server.WithLogging(),
			)

			partmem.RegisterMemoryTools(s, backend)
			return server.ServeStdio(s)
		},
	}
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.AddCommand(httpCmd)
	serveCmd.AddCommand(mcpCmd)

	serveCmd.PersistentFlags().IntVarP(&portFlag, "port", "p", 3210, "Port to serve on")
	serveCmd.PersistentFlags().StringVarP(&hostFlag, "host", "H", "0.0.0.0", "Host address to bind to")
	serveCmd.PersistentFlags().BoolVar(&localFlag, "local", false, "Run with the in-process index and mock embedder")
}

/*
backendFromConfig assembles the embedder and vector index from the values
in the user's config file.
*/
func backendFromConfig() (*partmem.Backend, error) {
	if localFlag {
		return partmem.NewLocalBackend(), nil
	}

	if viper.GetString("embedder.provider") == "openai" {
		return &partmem.Backend{
			Embedder: memory.NewOpenAIEmbedder(
				memory.WithOpenAIModel(
					viper.GetString("embedder.model"),
					viper.GetInt("embedder.dimensions"),
				),
			),
			Index: memory.NewQdrantIndex(qdrant.New(
				viper.GetString("qdrant.url"),
				qdrant.WithTimeout(durationOr("qdrant.timeout", 10*time.Second)),
			)),
		}, nil
	}

	options := []memory.OllamaEmbedderOption{
		memory.WithOllamaTimeout(durationOr("embedder.timeout", 30*time.Second)),
	}
	if model := viper.GetString("embedder.model"); model != "" {
		options = append(options, memory.WithOllamaModel(model, viper.GetInt("embedder.dimensions")))
	}

	return partmem.NewQdrantBackend(
		viper.GetString("qdrant.url"),
		viper.GetString("embedder.url"),
		durationOr("qdrant.timeout", 10*time.Second),
		options...,
	)
}

func retryFromConfig() *errors.RetryConfig {
	config := errors.DefaultRetryConfig()

	if n := viper.GetInt("retry.max_attempts"); n > 0 {
		config.MaxAttempts = n
	}
	if d := viper.GetDuration("retry.initial_delay"); d > 0 {
		config.InitialDelay = d
	}

	return config
}

func durationOr(key string, fallback time.Duration) time.Duration {
	if d := viper.GetDuration(key); d > 0 {
		return d
	}
	return fallback
}

var longServe = `
Serve the part memory HTTP API or MCP server with various configurations.

Examples:
  # Serve the HTTP API on port 8080
  partmem serve http --port 8080

  # Serve the MCP tools over stdio
  partmem serve mcp

  # Run without external services (mock embedder, in-memory index)
  partmem serve http --local
`
