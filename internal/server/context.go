package server

import (
	"context"
	"sync"

	"github.com/adenhq/composio-mcp/internal/composio"
	"github.com/adenhq/composio-mcp/internal/credentials"
	"github.com/adenhq/composio-mcp/internal/instrumentation"
)

// ToolsetFactory builds a Composio toolset for a given API key.
// The default factory creates a real HTTP client; tests inject fakes.
type ToolsetFactory func(apiKey string) composio.Toolset

// ServerContext holds the shared state for the MCP server.
type ServerContext struct {
	ctx      context.Context
	cancel   context.CancelFunc
	creds    credentials.Source
	entityID string
	factory  ToolsetFactory
	toolsets map[string]composio.Toolset // Maps API key to cached toolset

	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger

	mu       sync.RWMutex
	shutdown bool
}

// Option configures a ServerContext.
type Option func(*ServerContext)

// WithCredentialSource sets the credential source. Defaults to process
// environment variables when nil.
func WithCredentialSource(src credentials.Source) Option {
	return func(sc *ServerContext) {
		sc.creds = src
	}
}

// WithEntityID sets the Composio entity identifier used for all tool calls.
func WithEntityID(entityID string) Option {
	return func(sc *ServerContext) {
		if entityID != "" {
			sc.entityID = entityID
		}
	}
}

// WithToolsetFactory overrides how Composio toolsets are constructed.
func WithToolsetFactory(factory ToolsetFactory) Option {
	return func(sc *ServerContext) {
		if factory != nil {
			sc.factory = factory
		}
	}
}

// WithClientOptions sets options forwarded to composio.NewClient by the
// default toolset factory. Ignored when a custom factory is installed.
func WithClientOptions(opts ...composio.Option) Option {
	return func(sc *ServerContext) {
		sc.factory = func(apiKey string) composio.Toolset {
			return composio.NewClient(apiKey, opts...)
		}
	}
}

// NewServerContext creates a new server context.
func NewServerContext(ctx context.Context, opts ...Option) *ServerContext {
	shutdownCtx, cancel := context.WithCancel(ctx)

	sc := &ServerContext{
		ctx:      shutdownCtx,
		cancel:   cancel,
		creds:    credentials.EnvSource{},
		entityID: composio.DefaultEntityID,
		toolsets: make(map[string]composio.Toolset),
	}
	sc.factory = func(apiKey string) composio.Toolset {
		return composio.NewClient(apiKey)
	}

	for _, opt := range opts {
		opt(sc)
	}

	return sc
}

// Context returns the server context.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// EntityID returns the Composio entity identifier for tool calls.
func (sc *ServerContext) EntityID() string {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.entityID
}

// APIKey resolves the Composio API key from the credential source.
// Returns false when no key is configured.
func (sc *ServerContext) APIKey() (string, bool) {
	sc.mu.RLock()
	src := sc.creds
	sc.mu.RUnlock()
	return credentials.Resolve(src, credentials.KeyComposio)
}

// HasAPIKey reports whether a Composio API key is configured.
func (sc *ServerContext) HasAPIKey() bool {
	_, ok := sc.APIKey()
	return ok
}

// Toolset returns the Composio toolset for the given API key.
// Toolsets are cached per key so repeated tool calls reuse the same
// underlying HTTP client.
func (sc *ServerContext) Toolset(apiKey string) composio.Toolset {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if ts, ok := sc.toolsets[apiKey]; ok {
		return ts
	}

	ts := sc.factory(apiKey)
	sc.toolsets[apiKey] = ts
	return ts
}

// SetMetrics sets the metrics recorder for tool instrumentation.
func (sc *ServerContext) SetMetrics(metrics *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = metrics
}

// Metrics returns the metrics recorder, or nil if not configured.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetAuditLogger sets the audit logger for tool invocations.
func (sc *ServerContext) SetAuditLogger(logger *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.auditLogger = logger
}

// AuditLogger returns the audit logger, or nil if not configured.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// IsShutdown returns whether the server has been shutdown.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
