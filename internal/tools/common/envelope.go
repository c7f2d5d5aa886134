package common

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// ErrorEnvelope is the uniform error shape every tool returns. Success
// payloads are tool-specific structs; failures always serialize to this.
//
// OAuthRequired is set only when the user has not yet authorized the app,
// and in that case OAuthURL is always non-empty. A connection check that
// failed for other reasons carries Error alone, so callers can tell
// "needs user action" apart from "system malfunction".
type ErrorEnvelope struct {
	Error         string `json:"error"`
	OAuthRequired bool   `json:"oauth_required,omitempty"`
	OAuthURL      string `json:"oauth_url,omitempty"`
	Message       string `json:"message,omitempty"`
	Suggestion    string `json:"suggestion,omitempty"`
}

// JSONResult marshals v into an MCP text result. Tool payloads are plain
// structs with json tags, so a marshal failure indicates a programming
// error and is surfaced as a tool error rather than a transport error.
func JSONResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf(`{"error": "failed to encode result: %s"}`, err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// ErrorResult serializes an error envelope into an MCP error result.
func ErrorResult(env *ErrorEnvelope) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf(`{"error": %q}`, env.Error)), nil
	}
	return mcp.NewToolResultError(string(data)), nil
}

// Errorf builds an error result from a plain format string.
func Errorf(format string, args ...any) (*mcp.CallToolResult, error) {
	return ErrorResult(&ErrorEnvelope{Error: fmt.Sprintf(format, args...)})
}
