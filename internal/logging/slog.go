package logging

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
)

// Common log attribute keys for consistent naming across the codebase.
const (
	KeyOperation = "operation"
	KeyApp       = "app"
	KeyEntity    = "entity"
	KeyAction    = "action"
	KeyDuration  = "duration"
	KeyStatus    = "status"
	KeyError     = "error"
	KeyTool      = "tool"
)

// Status values for consistent logging.
// Note: These are intentionally duplicated from instrumentation package
// to avoid circular dependencies (instrumentation imports logging).
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// WithOperation returns a logger with the operation attribute set.
func WithOperation(logger *slog.Logger, operation string) *slog.Logger {
	return logger.With(slog.String(KeyOperation, operation))
}

// WithTool returns a logger with the tool attribute set.
func WithTool(logger *slog.Logger, tool string) *slog.Logger {
	return logger.With(slog.String(KeyTool, tool))
}

// WithApp returns a logger with the Composio app attribute set.
func WithApp(logger *slog.Logger, app string) *slog.Logger {
	return logger.With(slog.String(KeyApp, app))
}

// Operation returns a slog attribute for the operation name.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// App returns a slog attribute for the Composio app name.
func App(app string) slog.Attr {
	return slog.String(KeyApp, app)
}

// Entity returns a slog attribute for the Composio entity identifier.
func Entity(entity string) slog.Attr {
	return slog.String(KeyEntity, entity)
}

// Action returns a slog attribute for the Composio action name.
func Action(action string) slog.Attr {
	return slog.String(KeyAction, action)
}

// Tool returns a slog attribute for the tool name.
func Tool(tool string) slog.Attr {
	return slog.String(KeyTool, tool)
}

// Status returns a slog attribute for the status.
func Status(status string) slog.Attr {
	return slog.String(KeyStatus, status)
}

// Err returns a slog attribute for an error.
// If err is nil, returns an empty Group attribute that will be omitted from output.
// This allows safely passing Err(maybeNilErr) without adding empty attributes.
//
// Usage:
//
//	logger.Info("operation", logging.Err(err))  // Safe even if err is nil
func Err(err error) slog.Attr {
	if err == nil {
		// Return an empty Group that slog will omit from output
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// AnonymizeEmail returns a hashed representation of an email for logging purposes.
// Recipient addresses are PII; this allows correlation of log entries without
// exposing them.
func AnonymizeEmail(email string) string {
	if email == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(email))
	return "user:" + hex.EncodeToString(hash[:8])
}

// Recipient returns a slog attribute with the anonymized recipient address.
func Recipient(email string) slog.Attr {
	return slog.String("recipient_hash", AnonymizeEmail(email))
}

// SanitizeAPIKey returns a masked version of an API key for logging.
// It returns a length indicator without exposing any key content, as even
// partial prefixes can aid attacks.
func SanitizeAPIKey(key string) string {
	if key == "" {
		return "<empty>"
	}
	return fmt.Sprintf("[key:%d chars]", len(key))
}

// ExtractDomain extracts the domain part from an email address.
// This is useful for lower-cardinality logging where the full address would
// create too many unique values.
func ExtractDomain(email string) string {
	if email == "" {
		return ""
	}
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return ""
	}
	return parts[1]
}

// Domain returns a slog attribute for the email domain (lower cardinality than full address).
func Domain(email string) slog.Attr {
	return slog.String("recipient_domain", ExtractDomain(email))
}
