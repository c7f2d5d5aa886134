package common

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("result has no content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want mcp.TextContent", result.Content[0])
	}
	return text.Text
}

func TestJSONResult(t *testing.T) {
	payload := struct {
		Success   bool   `json:"success"`
		MessageID string `json:"message_id"`
	}{Success: true, MessageID: "abc123"}

	result, err := JSONResult(payload)
	if err != nil {
		t.Fatalf("JSONResult returned error: %v", err)
	}
	if result.IsError {
		t.Error("expected non-error result")
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(resultText(t, result)), &decoded); err != nil {
		t.Fatalf("result is not valid JSON: %v", err)
	}
	if decoded["message_id"] != "abc123" {
		t.Errorf("message_id = %v, want abc123", decoded["message_id"])
	}
	if decoded["success"] != true {
		t.Errorf("success = %v, want true", decoded["success"])
	}
}

func TestErrorResult(t *testing.T) {
	result, err := ErrorResult(&ErrorEnvelope{
		Error:         "GMAIL OAuth connection required. Please authorize access.",
		OAuthRequired: true,
		OAuthURL:      "https://example.com/oauth",
	})
	if err != nil {
		t.Fatalf("ErrorResult returned error: %v", err)
	}
	if !result.IsError {
		t.Error("expected error result")
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(resultText(t, result)), &decoded); err != nil {
		t.Fatalf("result is not valid JSON: %v", err)
	}
	if decoded["oauth_required"] != true {
		t.Error("expected oauth_required in payload")
	}
	if decoded["oauth_url"] != "https://example.com/oauth" {
		t.Errorf("oauth_url = %v", decoded["oauth_url"])
	}
}

func TestErrorResult_OmitsEmptyFields(t *testing.T) {
	result, err := ErrorResult(&ErrorEnvelope{Error: "something broke"})
	if err != nil {
		t.Fatalf("ErrorResult returned error: %v", err)
	}

	text := resultText(t, result)
	for _, absent := range []string{"oauth_required", "oauth_url", "message", "suggestion"} {
		if strings.Contains(text, absent) {
			t.Errorf("payload should omit %q: %s", absent, text)
		}
	}
}

func TestErrorf(t *testing.T) {
	result, err := Errorf("Gmail send failed: %s", "timeout")
	if err != nil {
		t.Fatalf("Errorf returned error: %v", err)
	}
	if !result.IsError {
		t.Error("expected error result")
	}
	if !strings.Contains(resultText(t, result), "Gmail send failed: timeout") {
		t.Errorf("unexpected payload: %s", resultText(t, result))
	}
}
