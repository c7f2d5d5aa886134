package composio

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
)

// App identifiers used by the Composio catalog.
const (
	AppGmail    = "GMAIL"
	AppLinkedIn = "LINKEDIN"
)

// DefaultEntityID is the entity used when no explicit entity is configured.
// The entity identifies "whose account" within a single API key's scope.
const DefaultEntityID = "default"

// StatusActive is the connection status marker for an authorized connection.
// A connection with an empty status is also treated as active; see IsActive.
const StatusActive = "ACTIVE"

// Composio action identifiers for the operations this server exposes.
const (
	ActionGmailSendEmail       = "GMAIL_SEND_EMAIL"
	ActionGmailFetchEmails     = "GMAIL_FETCH_EMAILS"
	ActionGmailCreateDraft     = "GMAIL_CREATE_EMAIL_DRAFT"
	ActionLinkedInCreatePost   = "LINKEDIN_CREATE_LINKED_IN_POST"
	ActionLinkedInGetCompany   = "LINKEDIN_GET_COMPANY_INFO"
	ActionLinkedInSearchPeople = "LINKEDIN_SEARCH_PEOPLE"
	ActionLinkedInSendMessage  = "LINKEDIN_SEND_MESSAGE"
)

// ConnectionsRedirectURL is where Composio sends the user after completing
// an OAuth flow initiated by this server.
const ConnectionsRedirectURL = "https://app.composio.dev/connections"

// DashboardURL returns the Composio dashboard page for an app. It is used as
// the fallback authorization link when flow initiation cannot produce a
// proper redirect URL.
func DashboardURL(app string) string {
	return "https://app.composio.dev/app/" + strings.ToLower(app)
}

// Connection is a connected account record as reported by Composio.
type Connection struct {
	ID       string `json:"id"`
	AppName  string `json:"appName"`
	EntityID string `json:"entityId"`
	Status   string `json:"status"`
}

// IsActive reports whether the connection is usable for action execution.
// An absent status is treated as active: Composio has historically omitted
// the field for healthy connections, and a false negative here would force
// users through a needless re-authorization. Accepted trade-off: a revoked
// connection with a missing status would be caught by the action call itself.
func (c *Connection) IsActive() bool {
	return c.Status == StatusActive || c.Status == ""
}

// ConnectionRequest is the response to initiating a new authorization flow.
type ConnectionRequest struct {
	ConnectedAccountID string `json:"connectedAccountId"`
	ConnectionStatus   string `json:"connectionStatus"`
	RedirectURL        string `json:"redirectUrl"`
}

// ActionResult is the normalized outcome of a remote action execution.
//
// The data payload is object-shaped for most actions and lands in Data, but
// some actions return a bare array of objects instead; those land in List.
// At most one of the two fields is populated.
type ActionResult struct {
	Successful bool             `json:"successful"`
	Error      string           `json:"error,omitempty"`
	Data       map[string]any   `json:"data,omitempty"`
	List       []map[string]any `json:"-"`
}

// UnmarshalJSON decodes the result, routing the data payload into Data or
// List depending on its shape. Non-object entries in a list payload are
// skipped, matching DataObjects.
func (r *ActionResult) UnmarshalJSON(b []byte) error {
	var raw struct {
		Successful bool            `json:"successful"`
		Error      string          `json:"error"`
		Data       json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	r.Successful = raw.Successful
	r.Error = raw.Error
	r.Data = nil
	r.List = nil

	payload := bytes.TrimSpace(raw.Data)
	switch {
	case len(payload) == 0 || bytes.Equal(payload, []byte("null")):
		return nil
	case payload[0] == '[':
		var entries []any
		if err := json.Unmarshal(payload, &entries); err != nil {
			return err
		}
		r.List = make([]map[string]any, 0, len(entries))
		for _, entry := range entries {
			if obj, ok := entry.(map[string]any); ok {
				r.List = append(r.List, obj)
			}
		}
		return nil
	default:
		return json.Unmarshal(payload, &r.Data)
	}
}

// ErrorOr returns the remote error text, or fallback when the remote
// reported failure without a message.
func (r *ActionResult) ErrorOr(fallback string) string {
	if r.Error != "" {
		return r.Error
	}
	return fallback
}

// DataString returns the string value at key in the result payload,
// or "" when the key is absent or not a string.
func (r *ActionResult) DataString(key string) string {
	if r.Data == nil {
		return ""
	}
	s, _ := r.Data[key].(string)
	return s
}

// DataStringPtr is like DataString but returns nil when the key is absent,
// preserving the distinction between "" and null in reshaped envelopes.
func (r *ActionResult) DataStringPtr(key string) *string {
	if r.Data == nil {
		return nil
	}
	s, ok := r.Data[key].(string)
	if !ok {
		return nil
	}
	return &s
}

// DataBool returns the boolean value at key, or false when absent.
func (r *ActionResult) DataBool(key string) bool {
	if r.Data == nil {
		return false
	}
	b, _ := r.Data[key].(bool)
	return b
}

// DataObjects returns the list of objects at key in the result payload.
// JSON arrays decode as []any; entries that are not objects are skipped.
func (r *ActionResult) DataObjects(key string) []map[string]any {
	if r.Data == nil {
		return nil
	}
	raw, ok := r.Data[key].([]any)
	if !ok {
		return nil
	}
	objects := make([]map[string]any, 0, len(raw))
	for _, entry := range raw {
		if obj, ok := entry.(map[string]any); ok {
			objects = append(objects, obj)
		}
	}
	return objects
}

// Toolset is the capability surface tool handlers depend on. The production
// implementation is Client; tests substitute a fake so handler logic can be
// exercised without a live network dependency.
type Toolset interface {
	// GetConnection returns the connected account for app under entityID.
	// Returns an error wrapping ErrNoConnection when no record exists.
	GetConnection(ctx context.Context, app, entityID string) (*Connection, error)

	// InitiateConnection starts a new authorization flow for app and returns
	// the redirect URL the user must visit.
	InitiateConnection(ctx context.Context, app, entityID, redirectURL string) (*ConnectionRequest, error)

	// ExecuteAction runs a named remote action with the given parameters.
	ExecuteAction(ctx context.Context, action, entityID string, params map[string]any) (*ActionResult, error)
}
