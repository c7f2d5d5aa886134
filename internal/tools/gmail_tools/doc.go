// Package gmail_tools provides MCP tools for Gmail operations backed by
// the Composio aggregator.
//
// Available tools:
//   - gmail_send_email: Send an email from the connected Gmail account
//   - gmail_read_emails: Fetch emails from a label, optionally unread only
//   - gmail_search_emails: Search emails using Gmail query syntax
//   - gmail_create_draft: Save an email as a draft without sending
//
// Every tool resolves the Composio API key, verifies the Gmail OAuth
// connection via the shared gate, executes a single remote action and
// reshapes the response into a uniform result envelope.
package gmail_tools
