package common

import (
	"context"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/adenhq/composio-mcp/internal/instrumentation"
	"github.com/adenhq/composio-mcp/internal/server"
)

// ToolHandler is the handler signature registered with the MCP server.
type ToolHandler = func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

type invocationKey struct{}

// SetRecipient records the recipient address of the current tool invocation
// so the audit log can carry it (as a domain, or in full when PII logging is
// enabled). It is a no-op outside an instrumented handler.
func SetRecipient(ctx context.Context, recipient string) {
	if invocation, ok := ctx.Value(invocationKey{}).(*instrumentation.ToolInvocation); ok {
		invocation.WithRecipient(recipient)
	}
}

// InstrumentedToolHandler wraps a tool handler with tracing, metrics and
// audit logging. It records tool invocation metrics and logs the invocation
// for audit purposes.
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandler("my_tool", sc, handler))
func InstrumentedToolHandler(toolName string, sc *server.ServerContext, handler ToolHandler) ToolHandler {
	return instrumented(toolName, "", "", sc, handler)
}

// InstrumentedToolHandlerWithApp is like InstrumentedToolHandler but also
// records the Composio app and action for more detailed observability:
// the invocation record carries the app/action pair, and the tool span is
// annotated with both.
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandlerWithApp("gmail_send_email", composio.AppGmail, composio.ActionGmailSendEmail, sc, handler))
func InstrumentedToolHandlerWithApp(toolName, app, action string, sc *server.ServerContext, handler ToolHandler) ToolHandler {
	return instrumented(toolName, app, action, sc, handler)
}

func instrumented(toolName, app, action string, sc *server.ServerContext, handler ToolHandler) ToolHandler {
	// Metric and audit labels use the lowercase app form
	app = strings.ToLower(app)

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		// Metrics and audit logger may be nil if instrumentation is not
		// configured; in that case call the handler directly.
		metrics := sc.Metrics()
		auditLogger := sc.AuditLogger()
		if metrics == nil && auditLogger == nil {
			return handler(ctx, request)
		}

		builder := instrumentation.NewSpanAttributeBuilder().
			WithTool(toolName).
			WithEntity(sc.EntityID())
		if app != "" {
			builder.WithApp(app).WithAction(action)
		}
		ctx, span := instrumentation.StartToolSpan(ctx, toolName, builder.Build()...)
		defer span.End()

		start := time.Now()
		invocation := instrumentation.NewToolInvocation(toolName).
			WithEntity(sc.EntityID()).
			WithSpanContext(ctx)
		if app != "" {
			invocation.WithAction(app, action)
		}
		ctx = context.WithValue(ctx, invocationKey{}, invocation)

		result, err := handler(ctx, request)
		duration := time.Since(start)

		status := instrumentation.StatusSuccess
		if err != nil || (result != nil && result.IsError) {
			status = instrumentation.StatusError
			if err != nil {
				invocation.CompleteWithError(err)
				instrumentation.SetSpanError(span, err)
			} else {
				invocation.Complete(false, nil)
			}
		} else {
			invocation.CompleteSuccess()
			instrumentation.SetSpanSuccess(span)
		}

		if metrics != nil {
			metrics.RecordToolInvocationWithEntity(ctx, toolName, status, sc.EntityID(), duration)
		}
		if auditLogger != nil {
			auditLogger.LogToolInvocation(invocation)
		}

		return result, err
	}
}
