package gmail_tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/adenhq/composio-mcp/internal/composio"
	"github.com/adenhq/composio-mcp/internal/credentials"
	"github.com/adenhq/composio-mcp/internal/instrumentation"
	"github.com/adenhq/composio-mcp/internal/server"
	"github.com/adenhq/composio-mcp/internal/tools/common"
)

// fakeToolset is a scripted composio.Toolset that records the action and
// params of the last execution.
type fakeToolset struct {
	conn    *composio.Connection
	connErr error

	initReq *composio.ConnectionRequest
	initErr error

	execResult *composio.ActionResult
	execErr    error

	executeCalls int
	lastAction   string
	lastParams   map[string]any
}

func (f *fakeToolset) GetConnection(_ context.Context, _, _ string) (*composio.Connection, error) {
	return f.conn, f.connErr
}

func (f *fakeToolset) InitiateConnection(_ context.Context, _, _, _ string) (*composio.ConnectionRequest, error) {
	return f.initReq, f.initErr
}

func (f *fakeToolset) ExecuteAction(_ context.Context, action, _ string, params map[string]any) (*composio.ActionResult, error) {
	f.executeCalls++
	f.lastAction = action
	f.lastParams = params
	return f.execResult, f.execErr
}

func connectedToolset() *fakeToolset {
	return &fakeToolset{conn: &composio.Connection{Status: composio.StatusActive}}
}

func newTestContext(t *testing.T, ts composio.Toolset) *server.ServerContext {
	t.Helper()
	sc := server.NewServerContext(context.Background(),
		server.WithCredentialSource(credentials.StaticSource{credentials.KeyComposio: "ck_test"}),
		server.WithToolsetFactory(func(string) composio.Toolset { return ts }),
	)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func newRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultJSON(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	if result == nil || len(result.Content) == 0 {
		t.Fatal("result has no content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want mcp.TextContent", result.Content[0])
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(text.Text), &decoded); err != nil {
		t.Fatalf("result is not valid JSON: %v\n%s", err, text.Text)
	}
	return decoded
}

func resultError(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if !result.IsError {
		t.Fatal("expected error result")
	}
	decoded := resultJSON(t, result)
	msg, _ := decoded["error"].(string)
	return msg
}

func TestHandleSendEmail_Validation(t *testing.T) {
	fake := connectedToolset()
	sc := newTestContext(t, fake)

	tests := []struct {
		name    string
		args    map[string]interface{}
		wantErr string
	}{
		{
			name:    "missing to",
			args:    map[string]interface{}{"subject": "hi", "body": "text"},
			wantErr: "Recipient email address is required",
		},
		{
			name:    "missing subject",
			args:    map[string]interface{}{"to": "jane@example.com", "body": "text"},
			wantErr: "Email subject is required",
		},
		{
			name:    "missing body",
			args:    map[string]interface{}{"to": "jane@example.com", "subject": "hi"},
			wantErr: "Email body is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := handleSendEmail(context.Background(), newRequest("gmail_send_email", tt.args), sc)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := resultError(t, result); got != tt.wantErr {
				t.Errorf("error = %q, want %q", got, tt.wantErr)
			}
		})
	}

	if fake.executeCalls != 0 {
		t.Errorf("executeCalls = %d, validation failures must not reach the remote", fake.executeCalls)
	}
}

func TestHandleSendEmail_MissingCredential(t *testing.T) {
	sc := server.NewServerContext(context.Background(),
		server.WithCredentialSource(credentials.StaticSource{}),
	)
	defer sc.Shutdown()

	args := map[string]interface{}{"to": "jane@example.com", "subject": "hi", "body": "text"}
	result, err := handleSendEmail(context.Background(), newRequest("gmail_send_email", args), sc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := resultError(t, result); !strings.Contains(got, "COMPOSIO_API_KEY not set") {
		t.Errorf("error = %q, want missing credential message", got)
	}
	if _, hasFlag := resultJSON(t, result)["oauth_required"]; hasFlag {
		t.Error("missing credential must not set oauth_required")
	}
}

func TestHandleSendEmail_OAuthRequired(t *testing.T) {
	fake := &fakeToolset{
		connErr: composio.ErrNoConnection,
		initReq: &composio.ConnectionRequest{RedirectURL: "https://example.com/oauth"},
	}
	sc := newTestContext(t, fake)

	args := map[string]interface{}{"to": "jane@example.com", "subject": "hi", "body": "text"}
	result, err := handleSendEmail(context.Background(), newRequest("gmail_send_email", args), sc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	decoded := resultJSON(t, result)
	if decoded["oauth_required"] != true {
		t.Error("expected oauth_required")
	}
	if decoded["oauth_url"] != "https://example.com/oauth" {
		t.Errorf("oauth_url = %v", decoded["oauth_url"])
	}
	if fake.executeCalls != 0 {
		t.Errorf("executeCalls = %d, gated calls must not reach the remote", fake.executeCalls)
	}
}

func TestHandleSendEmail_Success(t *testing.T) {
	fake := connectedToolset()
	fake.execResult = &composio.ActionResult{
		Successful: true,
		Data:       map[string]any{"id": "abc123", "threadId": "thread9"},
	}
	sc := newTestContext(t, fake)

	args := map[string]interface{}{
		"to":      "jane@example.com",
		"subject": "Quarterly report",
		"body":    "Attached below.",
		"cc":      "team@example.com",
	}
	result, err := handleSendEmail(context.Background(), newRequest("gmail_send_email", args), sc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %v", result)
	}

	decoded := resultJSON(t, result)
	if decoded["success"] != true {
		t.Error("expected success")
	}
	if decoded["message_id"] != "abc123" {
		t.Errorf("message_id = %v", decoded["message_id"])
	}
	if decoded["thread_id"] != "thread9" {
		t.Errorf("thread_id = %v", decoded["thread_id"])
	}
	if decoded["message"] != "Email sent successfully" {
		t.Errorf("message = %v", decoded["message"])
	}

	if fake.lastAction != composio.ActionGmailSendEmail {
		t.Errorf("action = %q", fake.lastAction)
	}
	if fake.lastParams["cc"] != "team@example.com" {
		t.Errorf("cc param = %v", fake.lastParams["cc"])
	}
	if _, hasBcc := fake.lastParams["bcc"]; hasBcc {
		t.Error("empty bcc must not be forwarded")
	}
}

func TestHandleSendEmail_AuditRecipientDomain(t *testing.T) {
	fake := connectedToolset()
	fake.execResult = &composio.ActionResult{Successful: true, Data: map[string]any{"id": "m-1"}}
	sc := newTestContext(t, fake)

	var audit bytes.Buffer
	sc.SetAuditLogger(instrumentation.NewAuditLogger(slog.New(slog.NewJSONHandler(&audit, nil))))

	handler := common.InstrumentedToolHandlerWithApp("gmail_send_email", composio.AppGmail, composio.ActionGmailSendEmail, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSendEmail(ctx, request, sc)
		})

	result, err := handler(context.Background(), newRequest("gmail_send_email", map[string]interface{}{
		"to":      "ceo@adenhq.com",
		"subject": "Hi",
		"body":    "Hello",
	}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %v", result.Content)
	}

	logged := audit.String()
	if !strings.Contains(logged, "recipient_domain") {
		t.Errorf("audit log missing recipient_domain: %s", logged)
	}
	if !strings.Contains(logged, "adenhq.com") {
		t.Errorf("audit log missing recipient domain value: %s", logged)
	}
	if strings.Contains(logged, "ceo@adenhq.com") {
		t.Errorf("audit log must not carry the full address: %s", logged)
	}
}

func TestHandleSendEmail_NullThreadID(t *testing.T) {
	fake := connectedToolset()
	fake.execResult = &composio.ActionResult{
		Successful: true,
		Data:       map[string]any{"id": "abc123"},
	}
	sc := newTestContext(t, fake)

	args := map[string]interface{}{"to": "jane@example.com", "subject": "hi", "body": "text"}
	result, err := handleSendEmail(context.Background(), newRequest("gmail_send_email", args), sc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	decoded := resultJSON(t, result)
	val, present := decoded["thread_id"]
	if !present {
		t.Fatal("thread_id should be present")
	}
	if val != nil {
		t.Errorf("thread_id = %v, want null", val)
	}
}

func TestHandleSendEmail_RemoteFailure(t *testing.T) {
	fake := connectedToolset()
	fake.execResult = &composio.ActionResult{Successful: false, Error: "quota exceeded"}
	sc := newTestContext(t, fake)

	args := map[string]interface{}{"to": "jane@example.com", "subject": "hi", "body": "text"}
	result, err := handleSendEmail(context.Background(), newRequest("gmail_send_email", args), sc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := resultError(t, result); got != "quota exceeded" {
		t.Errorf("error = %q", got)
	}
}

func TestHandleSendEmail_ExecutionError(t *testing.T) {
	fake := connectedToolset()
	fake.execErr = errors.New("connection reset")
	sc := newTestContext(t, fake)

	args := map[string]interface{}{"to": "jane@example.com", "subject": "hi", "body": "text"}
	result, err := handleSendEmail(context.Background(), newRequest("gmail_send_email", args), sc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := resultError(t, result); !strings.HasPrefix(got, "Gmail send failed:") {
		t.Errorf("error = %q, want Gmail send failed prefix", got)
	}
}

func TestHandleReadEmails_Defaults(t *testing.T) {
	fake := connectedToolset()
	fake.execResult = &composio.ActionResult{
		Successful: true,
		Data: map[string]any{
			"messages": []any{
				map[string]any{
					"id":       "m1",
					"threadId": "t1",
					"from":     "alice@example.com",
					"subject":  "Status",
					"snippet":  "All green",
					"isUnread": true,
				},
			},
		},
	}
	sc := newTestContext(t, fake)

	result, err := handleReadEmails(context.Background(), newRequest("gmail_read_emails", map[string]interface{}{}), sc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	decoded := resultJSON(t, result)
	emails, ok := decoded["emails"].([]any)
	if !ok || len(emails) != 1 {
		t.Fatalf("emails = %v", decoded["emails"])
	}
	first := emails[0].(map[string]any)
	if first["is_unread"] != true {
		t.Errorf("is_unread = %v", first["is_unread"])
	}
	if decoded["total"] != float64(1) {
		t.Errorf("total = %v", decoded["total"])
	}

	if fake.lastAction != composio.ActionGmailFetchEmails {
		t.Errorf("action = %q", fake.lastAction)
	}
	if fake.lastParams["max_results"] != defaultMaxResults {
		t.Errorf("max_results = %v", fake.lastParams["max_results"])
	}
	labels, ok := fake.lastParams["label_ids"].([]string)
	if !ok || len(labels) != 1 || labels[0] != defaultLabel {
		t.Errorf("label_ids = %v", fake.lastParams["label_ids"])
	}
	if _, hasQuery := fake.lastParams["query"]; hasQuery {
		t.Error("query must be absent unless unread_only is set")
	}
}

func TestHandleReadEmails_UnreadOnlyAndClamp(t *testing.T) {
	fake := connectedToolset()
	fake.execResult = &composio.ActionResult{Successful: true, Data: map[string]any{"messages": []any{}}}
	sc := newTestContext(t, fake)

	args := map[string]interface{}{
		"max_results": float64(500),
		"label":       "SENT",
		"unread_only": true,
	}
	if _, err := handleReadEmails(context.Background(), newRequest("gmail_read_emails", args), sc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if fake.lastParams["max_results"] != maxResults {
		t.Errorf("max_results = %v, want clamp to %d", fake.lastParams["max_results"], maxResults)
	}
	if fake.lastParams["query"] != "is:unread" {
		t.Errorf("query = %v", fake.lastParams["query"])
	}
	labels, _ := fake.lastParams["label_ids"].([]string)
	if len(labels) != 1 || labels[0] != "SENT" {
		t.Errorf("label_ids = %v", fake.lastParams["label_ids"])
	}

	// The lower bound clamps too
	args["max_results"] = float64(0)
	if _, err := handleReadEmails(context.Background(), newRequest("gmail_read_emails", args), sc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fake.lastParams["max_results"] != minResults {
		t.Errorf("max_results = %v, want clamp to %d", fake.lastParams["max_results"], minResults)
	}
}

func TestHandleReadEmails_TruncatesToLimit(t *testing.T) {
	messages := make([]any, 5)
	for i := range messages {
		messages[i] = map[string]any{"id": "m"}
	}
	fake := connectedToolset()
	fake.execResult = &composio.ActionResult{Successful: true, Data: map[string]any{"messages": messages}}
	sc := newTestContext(t, fake)

	args := map[string]interface{}{"max_results": float64(2)}
	result, err := handleReadEmails(context.Background(), newRequest("gmail_read_emails", args), sc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	decoded := resultJSON(t, result)
	emails, _ := decoded["emails"].([]any)
	if len(emails) != 2 {
		t.Errorf("len(emails) = %d, want 2", len(emails))
	}
	// Total reflects what the remote returned, not the truncated page
	if decoded["total"] != float64(5) {
		t.Errorf("total = %v, want 5", decoded["total"])
	}
}

func TestHandleSearchEmails_QueryRequired(t *testing.T) {
	fake := connectedToolset()
	sc := newTestContext(t, fake)

	result, err := handleSearchEmails(context.Background(), newRequest("gmail_search_emails", map[string]interface{}{}), sc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := resultError(t, result); got != "Search query is required" {
		t.Errorf("error = %q", got)
	}
	if fake.executeCalls != 0 {
		t.Errorf("executeCalls = %d, want 0", fake.executeCalls)
	}
}

func TestHandleSearchEmails_Success(t *testing.T) {
	fake := connectedToolset()
	fake.execResult = &composio.ActionResult{
		Successful: true,
		Data: map[string]any{
			"messages": []any{
				map[string]any{"id": "m1", "subject": "Invoice"},
				map[string]any{"id": "m2", "subject": "Invoice reminder"},
			},
		},
	}
	sc := newTestContext(t, fake)

	args := map[string]interface{}{"query": "subject:invoice"}
	result, err := handleSearchEmails(context.Background(), newRequest("gmail_search_emails", args), sc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	decoded := resultJSON(t, result)
	if decoded["query"] != "subject:invoice" {
		t.Errorf("query = %v", decoded["query"])
	}
	results, _ := decoded["results"].([]any)
	if len(results) != 2 {
		t.Errorf("len(results) = %d, want 2", len(results))
	}
	if fake.lastParams["query"] != "subject:invoice" {
		t.Errorf("query param = %v", fake.lastParams["query"])
	}
}

func TestHandleCreateDraft_Validation(t *testing.T) {
	fake := connectedToolset()
	sc := newTestContext(t, fake)

	result, err := handleCreateDraft(context.Background(), newRequest("gmail_create_draft", map[string]interface{}{
		"subject": "hi",
	}), sc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := resultError(t, result); got != "Recipient email address is required" {
		t.Errorf("error = %q", got)
	}
}

func TestHandleCreateDraft_Success(t *testing.T) {
	fake := connectedToolset()
	fake.execResult = &composio.ActionResult{
		Successful: true,
		Data:       map[string]any{"id": "draft42"},
	}
	sc := newTestContext(t, fake)

	// Body is optional for drafts
	args := map[string]interface{}{"to": "jane@example.com", "subject": "WIP"}
	result, err := handleCreateDraft(context.Background(), newRequest("gmail_create_draft", args), sc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	decoded := resultJSON(t, result)
	if decoded["draft_id"] != "draft42" {
		t.Errorf("draft_id = %v", decoded["draft_id"])
	}
	if decoded["message"] != "Draft created successfully" {
		t.Errorf("message = %v", decoded["message"])
	}
	if fake.lastAction != composio.ActionGmailCreateDraft {
		t.Errorf("action = %q", fake.lastAction)
	}
	if fake.lastParams["body"] != "" {
		t.Errorf("body param = %v, want empty string", fake.lastParams["body"])
	}
}
