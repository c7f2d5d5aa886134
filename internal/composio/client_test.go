package composio

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConnection(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantErr    bool
		wantNoConn bool
		wantStatus string
	}{
		{
			name:       "active connection",
			status:     http.StatusOK,
			body:       `{"items":[{"id":"conn-1","appName":"GMAIL","entityId":"default","status":"ACTIVE"}]}`,
			wantStatus: "ACTIVE",
		},
		{
			name:       "connection without status",
			status:     http.StatusOK,
			body:       `{"items":[{"id":"conn-2","appName":"GMAIL","entityId":"default"}]}`,
			wantStatus: "",
		},
		{
			name:       "no connection",
			status:     http.StatusOK,
			body:       `{"items":[]}`,
			wantErr:    true,
			wantNoConn: true,
		},
		{
			name:    "server error",
			status:  http.StatusInternalServerError,
			body:    `{"message":"boom"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/api/v1/connectedAccounts", r.URL.Path)
				assert.Equal(t, "GMAIL", r.URL.Query().Get("appNames"))
				assert.Equal(t, "default", r.URL.Query().Get("entityId"))
				assert.Equal(t, "sk-test", r.Header.Get("X-API-Key"))

				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClient("sk-test", WithBaseURL(srv.URL))
			conn, err := client.GetConnection(context.Background(), AppGmail, DefaultEntityID)

			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantNoConn, errors.Is(err, ErrNoConnection))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, conn.Status)
			assert.True(t, conn.IsActive())
		})
	}
}

func TestInitiateConnection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/connectedAccounts", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "LINKEDIN", body["appName"])
		assert.Equal(t, "default", body["entityId"])
		assert.Equal(t, ConnectionsRedirectURL, body["redirectUri"])

		_, _ = w.Write([]byte(`{"connectedAccountId":"conn-9","connectionStatus":"INITIATED","redirectUrl":"https://auth.example.com/oauth"}`))
	}))
	defer srv.Close()

	client := NewClient("sk-test", WithBaseURL(srv.URL))
	req, err := client.InitiateConnection(context.Background(), AppLinkedIn, DefaultEntityID, ConnectionsRedirectURL)

	require.NoError(t, err)
	assert.Equal(t, "https://auth.example.com/oauth", req.RedirectURL)
	assert.Equal(t, "conn-9", req.ConnectedAccountID)
}

func TestExecuteAction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v2/actions/GMAIL_SEND_EMAIL/execute", r.URL.Path)

		var body struct {
			EntityID string         `json:"entityId"`
			Input    map[string]any `json:"input"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "default", body.EntityID)
		assert.Equal(t, "user@example.com", body.Input["to"])

		_, _ = w.Write([]byte(`{"successful":true,"data":{"id":"abc123","threadId":"thr-1"}}`))
	}))
	defer srv.Close()

	client := NewClient("sk-test", WithBaseURL(srv.URL))
	result, err := client.ExecuteAction(context.Background(), ActionGmailSendEmail, DefaultEntityID, map[string]any{
		"to":      "user@example.com",
		"subject": "Hi",
		"body":    "Hello",
	})

	require.NoError(t, err)
	assert.True(t, result.Successful)
	assert.Equal(t, "abc123", result.DataString("id"))
	require.NotNil(t, result.DataStringPtr("threadId"))
	assert.Equal(t, "thr-1", *result.DataStringPtr("threadId"))
}

func TestExecuteActionListShapedData(t *testing.T) {
	// Some actions return a bare array as the data payload instead of an
	// object. It must decode into List rather than fail.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"successful":true,"data":[{"name":"Aden"},{"name":"Globex"},"ignored"]}`))
	}))
	defer srv.Close()

	client := NewClient("sk-test", WithBaseURL(srv.URL))
	result, err := client.ExecuteAction(context.Background(), ActionLinkedInGetCompany, DefaultEntityID, nil)

	require.NoError(t, err)
	assert.True(t, result.Successful)
	assert.Nil(t, result.Data)
	require.Len(t, result.List, 2)
	assert.Equal(t, "Aden", result.List[0]["name"])
	assert.Equal(t, "Globex", result.List[1]["name"])
}

func TestExecuteActionRemoteFailure(t *testing.T) {
	// A remote failure report is not a transport error; the caller inspects
	// Successful and surfaces the error text.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"successful":false,"error":"quota exceeded"}`))
	}))
	defer srv.Close()

	client := NewClient("sk-test", WithBaseURL(srv.URL))
	result, err := client.ExecuteAction(context.Background(), ActionGmailSendEmail, DefaultEntityID, nil)

	require.NoError(t, err)
	assert.False(t, result.Successful)
	assert.Equal(t, "quota exceeded", result.ErrorOr("fallback"))
}

func TestExecuteActionTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	srv.Close() // force connection errors

	client := NewClient("sk-test", WithBaseURL(srv.URL))
	_, err := client.ExecuteAction(context.Background(), ActionGmailSendEmail, DefaultEntityID, nil)

	require.Error(t, err)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "executeAction", apiErr.Op)
	assert.Equal(t, ActionGmailSendEmail, apiErr.Target)
}

func TestDashboardURL(t *testing.T) {
	assert.Equal(t, "https://app.composio.dev/app/gmail", DashboardURL(AppGmail))
	assert.Equal(t, "https://app.composio.dev/app/linkedin", DashboardURL(AppLinkedIn))
}

func TestActionResultHelpers(t *testing.T) {
	result := &ActionResult{
		Successful: true,
		Data: map[string]any{
			"id":       "post-1",
			"isUnread": true,
			"messages": []any{
				map[string]any{"id": "m1"},
				"not an object",
				map[string]any{"id": "m2"},
			},
		},
	}

	assert.Equal(t, "post-1", result.DataString("id"))
	assert.Equal(t, "", result.DataString("missing"))
	assert.Nil(t, result.DataStringPtr("missing"))
	assert.True(t, result.DataBool("isUnread"))
	assert.False(t, result.DataBool("missing"))

	objects := result.DataObjects("messages")
	require.Len(t, objects, 2)
	assert.Equal(t, "m1", objects[0]["id"])

	empty := &ActionResult{}
	assert.Equal(t, "fallback", empty.ErrorOr("fallback"))
	assert.Nil(t, empty.DataObjects("messages"))
}

func TestConnectionIsActive(t *testing.T) {
	tests := []struct {
		name   string
		status string
		want   bool
	}{
		{name: "explicit active", status: "ACTIVE", want: true},
		{name: "absent status treated as active", status: "", want: true},
		{name: "initiated is not active", status: "INITIATED", want: false},
		{name: "expired is not active", status: "EXPIRED", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := &Connection{Status: tt.status}
			assert.Equal(t, tt.want, conn.IsActive())
		})
	}
}
