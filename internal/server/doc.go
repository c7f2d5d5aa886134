// Package server provides the MCP server context, health checks, and the
// HTTP transports for the composio-mcp application.
//
// # Key Components
//
// ServerContext holds shared state for tool handlers: the Composio API key
// source, the entity identifier, and a per-key cache of Composio toolsets.
// Toolsets are built lazily through a ToolsetFactory so tests can inject
// fakes without touching the network.
//
// HTTPServer serves the MCP protocol over streamable HTTP on /mcp and
// registers the health endpoints on the same listener.
//
// MetricsServer exposes Prometheus metrics on a dedicated port, isolating
// operational metrics from MCP traffic.
//
// HealthChecker provides Kubernetes-style probes:
//   - /healthz: liveness (process running)
//   - /readyz: readiness (ready flag, shutdown state, credential presence)
//   - /healthz/detailed: uptime and credential status
package server
