package composio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/adenhq/composio-mcp/internal/logging"
)

// DefaultBaseURL is the Composio API endpoint.
const DefaultBaseURL = "https://backend.composio.dev"

// defaultTimeout bounds every API round trip. There is no retry logic here;
// failed calls surface as error envelopes and the user simply retries the tool.
const defaultTimeout = 30 * time.Second

// maxErrorBodySize limits how much of an error response body is read for
// inclusion in error messages.
const maxErrorBodySize = 4096

// Client talks to the Composio REST API. It implements Toolset.
//
// The client is stateless apart from its configuration and is safe for
// concurrent use. Connection status is never cached: every tool call that
// needs it pays a fresh round trip, keeping the aggregator the single
// source of truth.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     logging.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint. Used in tests against httptest
// servers and for self-hosted Composio deployments.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a logger for request-level debug logging.
func WithLogger(logger logging.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a Composio API client authenticated with the given API key.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logging.DefaultLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// connectedAccountsResponse is the list payload of GET /api/v1/connectedAccounts.
type connectedAccountsResponse struct {
	Items []Connection `json:"items"`
}

// GetConnection returns the connected account for app under entityID.
// Returns an *Error wrapping ErrNoConnection when no record exists.
func (c *Client) GetConnection(ctx context.Context, app, entityID string) (*Connection, error) {
	query := url.Values{
		"appNames": {app},
		"entityId": {entityID},
	}

	var resp connectedAccountsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/connectedAccounts", query, nil, &resp); err != nil {
		return nil, &Error{Op: "getConnection", Target: app, Err: err}
	}

	if len(resp.Items) == 0 {
		return nil, &Error{Op: "getConnection", Target: app, Err: ErrNoConnection}
	}

	conn := resp.Items[0]
	return &conn, nil
}

// initiateConnectionRequest is the body of POST /api/v1/connectedAccounts.
type initiateConnectionRequest struct {
	AppName     string `json:"appName"`
	EntityID    string `json:"entityId"`
	RedirectURI string `json:"redirectUri,omitempty"`
}

// InitiateConnection starts a new authorization flow for app and returns the
// redirect URL the user must visit to grant access.
func (c *Client) InitiateConnection(ctx context.Context, app, entityID, redirectURL string) (*ConnectionRequest, error) {
	body := initiateConnectionRequest{
		AppName:     app,
		EntityID:    entityID,
		RedirectURI: redirectURL,
	}

	var resp ConnectionRequest
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/connectedAccounts", nil, body, &resp); err != nil {
		return nil, &Error{Op: "initiateConnection", Target: app, Err: err}
	}

	return &resp, nil
}

// executeActionRequest is the body of POST /api/v2/actions/{action}/execute.
type executeActionRequest struct {
	EntityID string         `json:"entityId"`
	Input    map[string]any `json:"input"`
}

// ExecuteAction runs a named remote action with the given parameters and
// returns the normalized result. A result with Successful == false is not an
// error at this layer; the remote executed the call and reported failure.
func (c *Client) ExecuteAction(ctx context.Context, action, entityID string, params map[string]any) (*ActionResult, error) {
	body := executeActionRequest{
		EntityID: entityID,
		Input:    params,
	}

	var resp ActionResult
	path := "/api/v2/actions/" + url.PathEscape(action) + "/execute"
	if err := c.doJSON(ctx, http.MethodPost, path, nil, body, &resp); err != nil {
		return nil, &Error{Op: "executeAction", Target: action, Err: err}
	}

	return &resp, nil
}

// doJSON performs an API request with the X-API-Key header, encoding body as
// JSON when non-nil and decoding the response into out.
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("composio API request",
		logging.KeyOperation, method+" "+path,
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
