package cmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/adenhq/composio-mcp/internal/composio"
	"github.com/adenhq/composio-mcp/internal/credentials"
	"github.com/adenhq/composio-mcp/internal/instrumentation"
	"github.com/adenhq/composio-mcp/internal/logging"
	"github.com/adenhq/composio-mcp/internal/server"
	"github.com/adenhq/composio-mcp/internal/tools/gmail_tools"
	"github.com/adenhq/composio-mcp/internal/tools/linkedin_tools"
)

// ServeConfig holds the configuration assembled from flags and environment
// variables for the serve command.
type ServeConfig struct {
	Transport string
	HTTPAddr  string
	Debug     bool

	// Composio options
	APIKey   string
	EntityID string
	BaseURL  string

	// Metrics server configuration
	Metrics MetricsConfig
}

// MetricsConfig holds configuration for the metrics server.
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

func newServeCmd() *cobra.Command {
	var config ServeConfig

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server to provide Gmail and
LinkedIn integration tools for AI assistants.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport

Composio Configuration:
  The server needs a Composio API key to execute actions:
    --composio-api-key flag OR COMPOSIO_API_KEY env var
  Without it the server still starts; tools answer with a structured
  error telling the user how to obtain a key.

  The entity identifier selects whose connected accounts are used:
    --entity-id flag OR COMPOSIO_ENTITY_ID env var (default: "default")`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Environment variables fill in anything not set via flags
			if !cmd.Flags().Changed("composio-api-key") && config.APIKey == "" {
				config.APIKey = os.Getenv(credentials.EnvVarFor(credentials.KeyComposio))
			}
			if !cmd.Flags().Changed("entity-id") {
				if entity := os.Getenv("COMPOSIO_ENTITY_ID"); entity != "" {
					config.EntityID = entity
				}
			}
			if !cmd.Flags().Changed("composio-base-url") {
				if baseURL := os.Getenv("COMPOSIO_BASE_URL"); baseURL != "" {
					config.BaseURL = baseURL
				}
			}
			if !cmd.Flags().Changed("metrics-enabled") {
				if os.Getenv("METRICS_ENABLED") == "false" {
					config.Metrics.Enabled = false
				}
			}
			if !cmd.Flags().Changed("metrics-addr") {
				if addr := os.Getenv("METRICS_ADDR"); addr != "" {
					config.Metrics.Addr = addr
				}
			}

			return runServe(config)
		},
	}

	cmd.Flags().BoolVar(&config.Debug, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&config.Transport, "transport", "stdio", "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&config.HTTPAddr, "http-addr", ":8080", "HTTP server address (for streamable-http transport)")
	cmd.Flags().StringVar(&config.APIKey, "composio-api-key", "", "Composio API key. Can also use COMPOSIO_API_KEY env var.")
	cmd.Flags().StringVar(&config.EntityID, "entity-id", composio.DefaultEntityID, "Composio entity identifier selecting whose connected accounts are used. Can also use COMPOSIO_ENTITY_ID env var.")
	cmd.Flags().StringVar(&config.BaseURL, "composio-base-url", "", "Override the Composio API base URL. Can also use COMPOSIO_BASE_URL env var.")
	cmd.Flags().BoolVar(&config.Metrics.Enabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&config.Metrics.Addr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

func runServe(config ServeConfig) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Structured logging goes to stderr so the stdio transport keeps
	// stdout clean for the protocol stream.
	logLevel := slog.LevelInfo
	if config.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(shutdownCtx); err != nil {
			if config.Transport != "stdio" {
				log.Printf("Error during instrumentation shutdown: %v", err)
			}
		}
	}()

	// Start metrics server if enabled and not in stdio mode
	var metricsServer *server.MetricsServer
	if config.Transport != "stdio" && config.Metrics.Enabled && provider.Enabled() {
		var err error
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    config.Metrics.Addr,
			Enabled:                 true,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}

		// Use ready channel to confirm metrics server started successfully
		metricsReady := make(chan struct{})
		metricsErr := make(chan error, 1)
		go func() {
			if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && err != http.ErrServerClosed {
				metricsErr <- err
			}
			close(metricsErr)
		}()

		// Wait for metrics server to be ready or fail
		select {
		case <-metricsReady:
			log.Printf("Metrics server started on %s", metricsServer.Addr())
		case err := <-metricsErr:
			return fmt.Errorf("metrics server failed to start: %w", err)
		case <-time.After(5 * time.Second):
			return fmt.Errorf("metrics server startup timed out")
		}
	}

	// Assemble the server context. A key provided via flag takes priority
	// over the environment.
	opts := []server.Option{
		server.WithEntityID(config.EntityID),
	}
	if config.APIKey != "" {
		opts = append(opts, server.WithCredentialSource(credentials.StaticSource{
			credentials.KeyComposio: config.APIKey,
		}))
	}

	var clientOpts []composio.Option
	if config.BaseURL != "" {
		clientOpts = append(clientOpts, composio.WithBaseURL(config.BaseURL))
	}
	if config.Debug {
		clientOpts = append(clientOpts, composio.WithLogger(logging.DefaultLogger()))
	}
	if len(clientOpts) > 0 {
		opts = append(opts, server.WithClientOptions(clientOpts...))
	}

	serverContext := server.NewServerContext(shutdownCtx, opts...)

	// Set metrics and audit logger on server context for tool instrumentation
	if provider.Enabled() {
		serverContext.SetMetrics(provider.Metrics())
		serverContext.SetAuditLogger(instrumentation.NewAuditLoggerWithConfig(nil, instrConfig.AuditLogging))
	}
	defer func() {
		// Shutdown metrics server first
		if metricsServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				log.Printf("Error during metrics server shutdown: %v", err)
			}
		}
		if err := serverContext.Shutdown(); err != nil {
			if config.Transport != "stdio" {
				log.Printf("Error during server context shutdown: %v", err)
			}
		}
	}()

	if !serverContext.HasAPIKey() && config.Transport != "stdio" {
		log.Printf("Warning: no Composio API key configured; tools will answer with a setup error")
	}

	// Create MCP server
	mcpSrv := mcpserver.NewMCPServer("composio-mcp", version,
		mcpserver.WithToolCapabilities(true),
	)

	// Register all tools
	if err := registerAllTools(mcpSrv, serverContext); err != nil {
		return err
	}

	// Start the appropriate server based on transport type
	switch config.Transport {
	case "stdio":
		return runStdioServer(mcpSrv)
	case "streamable-http":
		return runStreamableHTTPServer(shutdownCtx, mcpSrv, serverContext, config, provider)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", config.Transport)
	}
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

// registerAllTools registers all MCP tools with the server.
func registerAllTools(mcpSrv *mcpserver.MCPServer, sc *server.ServerContext) error {
	type toolRegistration struct {
		name     string
		register func() error
	}

	registrations := []toolRegistration{
		{
			name: "Gmail",
			register: func() error {
				return gmail_tools.RegisterGmailTools(mcpSrv, sc)
			},
		},
		{
			name: "LinkedIn",
			register: func() error {
				return linkedin_tools.RegisterLinkedInTools(mcpSrv, sc)
			},
		},
	}

	for _, reg := range registrations {
		if err := reg.register(); err != nil {
			return fmt.Errorf("failed to register %s: %w", reg.name, err)
		}
	}

	return nil
}

func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, serverContext *server.ServerContext, config ServeConfig, provider *instrumentation.Provider) error {
	httpConfig := server.HTTPServerConfig{
		Addr:          config.HTTPAddr,
		HealthChecker: server.NewHealthChecker(serverContext),
	}
	if provider != nil && provider.Enabled() {
		httpConfig.Metrics = provider.Metrics()
	}

	httpServer := server.NewHTTPServer(mcpSrv, httpConfig)

	fmt.Printf("Streamable HTTP server starting on %s\n", config.HTTPAddr)
	fmt.Printf("  HTTP endpoint: %s\n", server.MCPEndpointPath)
	fmt.Printf("  Health endpoints: /healthz, /readyz\n")
	if config.Metrics.Enabled {
		fmt.Printf("  Metrics endpoint: %s/metrics\n", config.Metrics.Addr)
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.Start(); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		fmt.Println("Shutdown signal received, stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
		fmt.Println("HTTP server stopped normally")
	}

	fmt.Println("HTTP server gracefully stopped")
	return nil
}
