package common

import (
	"context"
	"errors"
	"strings"

	"github.com/adenhq/composio-mcp/internal/composio"
	"github.com/adenhq/composio-mcp/internal/instrumentation"
	"github.com/adenhq/composio-mcp/internal/server"
)

// MissingCredentialError is returned when no Composio API key can be
// resolved from the credential source or the environment.
const MissingCredentialError = "COMPOSIO_API_KEY not set. Get one at https://app.composio.dev/settings"

// EnsureConnection resolves the Composio API key, verifies that an active
// OAuth connection exists for app under the configured entity, and returns
// a toolset ready for action execution.
//
// On failure it returns a nil toolset and a populated error envelope:
//
//   - Missing API key: envelope with Error only, no remote call is made.
//   - No authorized connection: envelope with OAuthRequired set and an
//     OAuthURL the user must visit. Initiation failures are swallowed and
//     replaced by a dashboard link scoped to the app, so the user can
//     always self-serve.
//   - Connection check failure: envelope with Error only, distinguishing a
//     system fault from a pending authorization.
func EnsureConnection(ctx context.Context, sc *server.ServerContext, app string) (composio.Toolset, *ErrorEnvelope) {
	apiKey, ok := sc.APIKey()
	if !ok {
		return nil, &ErrorEnvelope{Error: MissingCredentialError}
	}

	metrics := sc.Metrics()
	toolset := instrumentToolset(sc.Toolset(apiKey), app, metrics)
	appLabel := strings.ToLower(app)

	conn, err := toolset.GetConnection(ctx, app, sc.EntityID())
	switch {
	case err == nil && conn != nil && conn.IsActive():
		if metrics != nil {
			metrics.RecordConnectionCheck(ctx, appLabel, instrumentation.ConnectionResultConnected)
		}
		return toolset, nil

	case err != nil && !errors.Is(err, composio.ErrNoConnection):
		if metrics != nil {
			metrics.RecordConnectionCheck(ctx, appLabel, instrumentation.ConnectionResultCheckFailed)
		}
		return nil, &ErrorEnvelope{Error: "Failed to check OAuth connection: " + err.Error()}
	}

	// No usable connection. Start a fresh authorization flow; a failure
	// here must never propagate, the dashboard link is always a valid
	// fallback for the user.
	if metrics != nil {
		metrics.RecordConnectionCheck(ctx, appLabel, instrumentation.ConnectionResultDisconnected)
	}

	oauthURL := composio.DashboardURL(app)
	req, initErr := toolset.InitiateConnection(ctx, app, sc.EntityID(), composio.ConnectionsRedirectURL)
	if initErr == nil && req != nil && req.RedirectURL != "" {
		oauthURL = req.RedirectURL
	}
	if metrics != nil {
		result := instrumentation.StatusSuccess
		if initErr != nil {
			result = instrumentation.StatusError
		}
		metrics.RecordConnectionInitiation(ctx, appLabel, result)
	}

	return nil, &ErrorEnvelope{
		Error:         app + " OAuth connection required. Please authorize access.",
		OAuthRequired: true,
		OAuthURL:      oauthURL,
		Message:       "Please visit the following URL to connect your " + app + " account: " + oauthURL,
	}
}
