package gmail_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/adenhq/composio-mcp/internal/composio"
	"github.com/adenhq/composio-mcp/internal/server"
	"github.com/adenhq/composio-mcp/internal/tools/common"
)

const (
	defaultMaxResults = 10
	minResults        = 1
	maxResults        = 100
	defaultLabel      = "INBOX"
)

// sendEmailResult is the success payload for gmail_send_email.
// ThreadID is a pointer so an absent thread id serializes as null.
type sendEmailResult struct {
	Success   bool    `json:"success"`
	MessageID string  `json:"message_id"`
	ThreadID  *string `json:"thread_id"`
	Message   string  `json:"message"`
}

// createDraftResult is the success payload for gmail_create_draft.
type createDraftResult struct {
	Success bool   `json:"success"`
	DraftID string `json:"draft_id"`
	Message string `json:"message"`
}

// emailSummary is a reshaped Gmail message for gmail_read_emails.
type emailSummary struct {
	ID       string `json:"id"`
	ThreadID string `json:"thread_id"`
	From     string `json:"from"`
	To       string `json:"to"`
	Subject  string `json:"subject"`
	Snippet  string `json:"snippet"`
	Date     string `json:"date"`
	IsUnread bool   `json:"is_unread"`
}

// readEmailsResult is the success payload for gmail_read_emails.
type readEmailsResult struct {
	Success bool           `json:"success"`
	Emails  []emailSummary `json:"emails"`
	Total   int            `json:"total"`
}

// searchHit is a reshaped Gmail message for gmail_search_emails.
type searchHit struct {
	ID       string `json:"id"`
	ThreadID string `json:"thread_id"`
	From     string `json:"from"`
	To       string `json:"to"`
	Subject  string `json:"subject"`
	Snippet  string `json:"snippet"`
	Date     string `json:"date"`
}

// searchEmailsResult is the success payload for gmail_search_emails.
type searchEmailsResult struct {
	Success bool        `json:"success"`
	Results []searchHit `json:"results"`
	Total   int         `json:"total"`
	Query   string      `json:"query"`
}

func objString(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}

func objBool(obj map[string]any, key string) bool {
	b, _ := obj[key].(bool)
	return b
}

func handleSendEmail(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	to := common.StringArg(args, "to", "")
	subject := common.StringArg(args, "subject", "")
	body := common.StringArg(args, "body", "")

	if to == "" {
		return common.Errorf("Recipient email address is required")
	}
	if subject == "" {
		return common.Errorf("Email subject is required")
	}
	if body == "" {
		return common.Errorf("Email body is required")
	}
	common.SetRecipient(ctx, to)

	toolset, env := common.EnsureConnection(ctx, sc, composio.AppGmail)
	if env != nil {
		return common.ErrorResult(env)
	}

	params := map[string]any{
		"to":      to,
		"subject": subject,
		"body":    body,
	}
	if cc := common.StringArg(args, "cc", ""); cc != "" {
		params["cc"] = cc
	}
	if bcc := common.StringArg(args, "bcc", ""); bcc != "" {
		params["bcc"] = bcc
	}

	result, err := toolset.ExecuteAction(ctx, composio.ActionGmailSendEmail, sc.EntityID(), params)
	if err != nil {
		return common.Errorf("Gmail send failed: %v", err)
	}
	if !result.Successful {
		return common.Errorf("%s", result.ErrorOr("Failed to send email"))
	}

	return common.JSONResult(sendEmailResult{
		Success:   true,
		MessageID: result.DataString("id"),
		ThreadID:  result.DataStringPtr("threadId"),
		Message:   "Email sent successfully",
	})
}

func handleReadEmails(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	limit := common.ClampInt(common.IntArg(args, "max_results", defaultMaxResults), minResults, maxResults)
	label := common.StringArg(args, "label", defaultLabel)
	unreadOnly := common.BoolArg(args, "unread_only", false)

	toolset, env := common.EnsureConnection(ctx, sc, composio.AppGmail)
	if env != nil {
		return common.ErrorResult(env)
	}

	params := map[string]any{
		"max_results": limit,
		"label_ids":   []string{label},
	}
	if unreadOnly {
		params["query"] = "is:unread"
	}

	result, err := toolset.ExecuteAction(ctx, composio.ActionGmailFetchEmails, sc.EntityID(), params)
	if err != nil {
		return common.Errorf("Gmail read failed: %v", err)
	}
	if !result.Successful {
		return common.Errorf("%s", result.ErrorOr("Failed to fetch emails"))
	}

	messages := result.DataObjects("messages")
	emails := make([]emailSummary, 0, limit)
	for _, msg := range messages {
		if len(emails) == limit {
			break
		}
		emails = append(emails, emailSummary{
			ID:       objString(msg, "id"),
			ThreadID: objString(msg, "threadId"),
			From:     objString(msg, "from"),
			To:       objString(msg, "to"),
			Subject:  objString(msg, "subject"),
			Snippet:  objString(msg, "snippet"),
			Date:     objString(msg, "date"),
			IsUnread: objBool(msg, "isUnread"),
		})
	}

	return common.JSONResult(readEmailsResult{
		Success: true,
		Emails:  emails,
		Total:   len(messages),
	})
}

func handleSearchEmails(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	query := common.StringArg(args, "query", "")
	if query == "" {
		return common.Errorf("Search query is required")
	}

	limit := common.ClampInt(common.IntArg(args, "max_results", defaultMaxResults), minResults, maxResults)

	toolset, env := common.EnsureConnection(ctx, sc, composio.AppGmail)
	if env != nil {
		return common.ErrorResult(env)
	}

	result, err := toolset.ExecuteAction(ctx, composio.ActionGmailFetchEmails, sc.EntityID(), map[string]any{
		"query":       query,
		"max_results": limit,
	})
	if err != nil {
		return common.Errorf("Gmail search failed: %v", err)
	}
	if !result.Successful {
		return common.Errorf("%s", result.ErrorOr("Failed to search emails"))
	}

	messages := result.DataObjects("messages")
	hits := make([]searchHit, 0, limit)
	for _, msg := range messages {
		if len(hits) == limit {
			break
		}
		hits = append(hits, searchHit{
			ID:       objString(msg, "id"),
			ThreadID: objString(msg, "threadId"),
			From:     objString(msg, "from"),
			To:       objString(msg, "to"),
			Subject:  objString(msg, "subject"),
			Snippet:  objString(msg, "snippet"),
			Date:     objString(msg, "date"),
		})
	}

	return common.JSONResult(searchEmailsResult{
		Success: true,
		Results: hits,
		Total:   len(messages),
		Query:   query,
	})
}

func handleCreateDraft(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	to := common.StringArg(args, "to", "")
	subject := common.StringArg(args, "subject", "")

	if to == "" {
		return common.Errorf("Recipient email address is required")
	}
	if subject == "" {
		return common.Errorf("Email subject is required")
	}

	toolset, env := common.EnsureConnection(ctx, sc, composio.AppGmail)
	if env != nil {
		return common.ErrorResult(env)
	}

	params := map[string]any{
		"to":      to,
		"subject": subject,
		"body":    common.StringArg(args, "body", ""),
	}
	if cc := common.StringArg(args, "cc", ""); cc != "" {
		params["cc"] = cc
	}
	if bcc := common.StringArg(args, "bcc", ""); bcc != "" {
		params["bcc"] = bcc
	}

	result, err := toolset.ExecuteAction(ctx, composio.ActionGmailCreateDraft, sc.EntityID(), params)
	if err != nil {
		return common.Errorf("Gmail draft creation failed: %v", err)
	}
	if !result.Successful {
		return common.Errorf("%s", result.ErrorOr("Failed to create draft"))
	}

	return common.JSONResult(createDraftResult{
		Success: true,
		DraftID: result.DataString("id"),
		Message: "Draft created successfully",
	})
}
