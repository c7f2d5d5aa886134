package gmail_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/adenhq/composio-mcp/internal/composio"
	"github.com/adenhq/composio-mcp/internal/server"
	"github.com/adenhq/composio-mcp/internal/tools/common"
)

// RegisterGmailTools registers all Gmail-related tools with the MCP server.
func RegisterGmailTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// Send email tool
	sendEmailTool := mcp.NewTool("gmail_send_email",
		mcp.WithDescription("Send an email via Gmail. Composes and sends an email from the user's Gmail account."),
		mcp.WithString("to",
			mcp.Required(),
			mcp.Description("Recipient email address(es), comma-separated for multiple"),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Email subject line"),
		),
		mcp.WithString("body",
			mcp.Required(),
			mcp.Description("Email body content (plain text or HTML)"),
		),
		mcp.WithString("cc",
			mcp.Description("CC recipients, comma-separated (optional)"),
		),
		mcp.WithString("bcc",
			mcp.Description("BCC recipients, comma-separated (optional)"),
		),
	)

	s.AddTool(sendEmailTool, common.InstrumentedToolHandlerWithApp(
		"gmail_send_email", composio.AppGmail, composio.ActionGmailSendEmail, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSendEmail(ctx, request, sc)
		}))

	// Read emails tool
	readEmailsTool := mcp.NewTool("gmail_read_emails",
		mcp.WithDescription("Read emails from Gmail. Fetches emails from the user's Gmail account."),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of emails to return (1-100, default: 10)"),
		),
		mcp.WithString("label",
			mcp.Description("Gmail label to read from (INBOX, SENT, DRAFTS, etc., default: INBOX)"),
		),
		mcp.WithBoolean("unread_only",
			mcp.Description("If true, only return unread emails"),
		),
	)

	s.AddTool(readEmailsTool, common.InstrumentedToolHandlerWithApp(
		"gmail_read_emails", composio.AppGmail, composio.ActionGmailFetchEmails, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleReadEmails(ctx, request, sc)
		}))

	// Search emails tool
	searchEmailsTool := mcp.NewTool("gmail_search_emails",
		mcp.WithDescription("Search emails in Gmail using Gmail search syntax (from:, to:, subject:, has:attachment, etc.)"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Gmail search query (e.g., 'from:user@example.com subject:meeting')"),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of results (1-100, default: 10)"),
		),
	)

	s.AddTool(searchEmailsTool, common.InstrumentedToolHandlerWithApp(
		"gmail_search_emails", composio.AppGmail, composio.ActionGmailFetchEmails, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSearchEmails(ctx, request, sc)
		}))

	// Create draft tool
	createDraftTool := mcp.NewTool("gmail_create_draft",
		mcp.WithDescription("Create a draft email in Gmail without sending it."),
		mcp.WithString("to",
			mcp.Required(),
			mcp.Description("Recipient email address(es), comma-separated for multiple"),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Email subject line"),
		),
		mcp.WithString("body",
			mcp.Description("Email body content (plain text or HTML)"),
		),
		mcp.WithString("cc",
			mcp.Description("CC recipients, comma-separated (optional)"),
		),
		mcp.WithString("bcc",
			mcp.Description("BCC recipients, comma-separated (optional)"),
		),
	)

	s.AddTool(createDraftTool, common.InstrumentedToolHandlerWithApp(
		"gmail_create_draft", composio.AppGmail, composio.ActionGmailCreateDraft, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateDraft(ctx, request, sc)
		}))

	return nil
}
