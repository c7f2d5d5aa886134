// Package logging provides structured logging utilities for composio-mcp.
//
// This package centralizes logging patterns to ensure consistent, structured
// logging throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Structured logging with slog
//   - PII sanitization (recipient address anonymization, API key masking)
//   - Consistent attribute naming across the codebase
//   - Logger adapter interface for flexibility
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithTool(slog.Default(), "gmail_send_email")
//	logger.Info("email sent", logging.Status("success"))
//
// Sanitize sensitive data before logging:
//
//	logger.Info("credential resolved",
//	    slog.String("api_key", logging.SanitizeAPIKey(key)))
//
// # Security Considerations
//
//   - Recipient addresses are hashed to prevent PII leakage while allowing correlation
//   - API keys are never logged directly
package logging
