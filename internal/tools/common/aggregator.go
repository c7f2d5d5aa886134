package common

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/adenhq/composio-mcp/internal/composio"
	"github.com/adenhq/composio-mcp/internal/instrumentation"
)

// instrumentedToolset decorates a Toolset with aggregator operation metrics
// and client spans. Every remote call records aggregator_api_operations_total
// and aggregator_api_operation_duration_seconds labeled with the app and the
// action or client operation name.
type instrumentedToolset struct {
	inner   composio.Toolset
	app     string
	metrics *instrumentation.Metrics
}

// instrumentToolset wraps toolset for app. The metrics may be nil, in which
// case only spans are emitted (a no-op unless tracing is configured).
func instrumentToolset(toolset composio.Toolset, app string, metrics *instrumentation.Metrics) composio.Toolset {
	return &instrumentedToolset{
		inner:   toolset,
		app:     strings.ToLower(app),
		metrics: metrics,
	}
}

func (t *instrumentedToolset) GetConnection(ctx context.Context, app, entityID string) (*composio.Connection, error) {
	ctx, span := instrumentation.StartAggregatorSpan(ctx, t.app, instrumentation.OperationGetConnection)
	defer span.End()

	start := time.Now()
	conn, err := t.inner.GetConnection(ctx, app, entityID)

	// A missing connection is a successful lookup, not an operation failure.
	opErr := err
	if errors.Is(err, composio.ErrNoConnection) {
		opErr = nil
	}
	t.record(ctx, span, instrumentation.OperationGetConnection, opErr, time.Since(start))
	return conn, err
}

func (t *instrumentedToolset) InitiateConnection(ctx context.Context, app, entityID, redirectURL string) (*composio.ConnectionRequest, error) {
	ctx, span := instrumentation.StartAggregatorSpan(ctx, t.app, instrumentation.OperationInitiateConnection)
	defer span.End()

	start := time.Now()
	req, err := t.inner.InitiateConnection(ctx, app, entityID, redirectURL)
	t.record(ctx, span, instrumentation.OperationInitiateConnection, err, time.Since(start))
	return req, err
}

func (t *instrumentedToolset) ExecuteAction(ctx context.Context, action, entityID string, params map[string]any) (*composio.ActionResult, error) {
	ctx, span := instrumentation.StartAggregatorSpan(ctx, t.app, action)
	defer span.End()

	start := time.Now()
	result, err := t.inner.ExecuteAction(ctx, action, entityID, params)

	// A remote-reported failure counts as an error for the operation metric
	// even though it is not a transport error.
	opErr := err
	if opErr == nil && result != nil && !result.Successful {
		opErr = errors.New(result.ErrorOr("action failed"))
	}
	t.record(ctx, span, action, opErr, time.Since(start))
	return result, err
}

func (t *instrumentedToolset) record(ctx context.Context, span trace.Span, action string, err error, duration time.Duration) {
	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		instrumentation.SetSpanError(span, err)
	} else {
		instrumentation.SetSpanSuccess(span)
	}
	if t.metrics != nil {
		t.metrics.RecordAggregatorOperation(ctx, t.app, action, status, duration)
	}
}
