package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/adenhq/composio-mcp/internal/instrumentation"
)

const (
	// MCPEndpointPath is the HTTP path serving the MCP protocol.
	MCPEndpointPath = "/mcp"

	// DefaultHTTPReadHeaderTimeout bounds how long reading request headers may take.
	DefaultHTTPReadHeaderTimeout = 10 * time.Second

	// DefaultHTTPIdleTimeout is the keep-alive idle timeout.
	DefaultHTTPIdleTimeout = 120 * time.Second
)

// HTTPServerConfig holds configuration for the streamable HTTP server.
type HTTPServerConfig struct {
	// Addr is the address to bind to (e.g., ":8080").
	Addr string

	// HealthChecker serves /healthz and /readyz. Optional.
	HealthChecker *HealthChecker

	// Metrics records HTTP request metrics. Optional.
	Metrics *instrumentation.Metrics
}

// HTTPServer serves the MCP protocol over streamable HTTP on /mcp,
// alongside Kubernetes health endpoints.
type HTTPServer struct {
	httpServer *http.Server
	addr       string
}

// NewHTTPServer wraps the given MCP server in a streamable HTTP transport.
func NewHTTPServer(mcpSrv *mcpserver.MCPServer, config HTTPServerConfig) *HTTPServer {
	streamable := mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithEndpointPath(MCPEndpointPath),
	)

	mux := http.NewServeMux()
	mux.Handle(MCPEndpointPath, streamable)
	// Streamable HTTP uses sub-paths for per-session endpoints
	mux.Handle(MCPEndpointPath+"/", streamable)

	if config.HealthChecker != nil {
		config.HealthChecker.RegisterHealthEndpoints(mux)
	}

	var handler http.Handler = mux
	if config.Metrics != nil {
		handler = instrumentHTTPHandler(mux, config.Metrics)
	}

	return &HTTPServer{
		addr: config.Addr,
		httpServer: &http.Server{
			Addr:              config.Addr,
			Handler:           handler,
			ReadHeaderTimeout: DefaultHTTPReadHeaderTimeout,
			IdleTimeout:       DefaultHTTPIdleTimeout,
		},
	}
}

// Start starts the HTTP server in a blocking manner.
func (s *HTTPServer) Start() error {
	slog.Info("starting streamable HTTP server", "addr", s.addr, "endpoint", MCPEndpointPath)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	slog.Info("shutting down streamable HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the configured address.
func (s *HTTPServer) Addr() string {
	return s.addr
}

// statusRecorder captures the response status code for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// instrumentHTTPHandler records request count and duration for every request.
func instrumentHTTPHandler(next http.Handler, metrics *instrumentation.Metrics) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		metrics.RecordHTTPRequest(r.Context(), r.Method, r.URL.Path, recorder.status, time.Since(start))
	})
}
