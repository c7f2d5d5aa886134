// Package common provides shared helpers for MCP tool handlers.
//
// It contains the OAuth connection gate every Composio-backed tool runs
// before executing a remote action (EnsureConnection), the uniform error
// envelope returned across the tool surface (ErrorEnvelope), argument
// extraction helpers for MCP requests, and instrumentation wrappers that
// add tracing, metrics and audit logging around tool handlers.
package common
