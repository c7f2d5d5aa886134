package linkedin_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/adenhq/composio-mcp/internal/composio"
	"github.com/adenhq/composio-mcp/internal/server"
	"github.com/adenhq/composio-mcp/internal/tools/common"
)

// RegisterLinkedInTools registers all LinkedIn-related tools with the MCP server.
func RegisterLinkedInTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// Create post tool
	createPostTool := mcp.NewTool("linkedin_create_post",
		mcp.WithDescription("Create a post on LinkedIn. Publishes content to the user's LinkedIn feed."),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("The content of the post (1-3000 chars)"),
		),
		mcp.WithString("visibility",
			mcp.Description("Post visibility - PUBLIC, CONNECTIONS, or LOGGED_IN (default: PUBLIC)"),
		),
	)

	s.AddTool(createPostTool, common.InstrumentedToolHandlerWithApp(
		"linkedin_create_post", composio.AppLinkedIn, composio.ActionLinkedInCreatePost, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreatePost(ctx, request, sc)
		}))

	// Get profile tool
	getProfileTool := mcp.NewTool("linkedin_get_profile",
		mcp.WithDescription("Get a LinkedIn profile (returns sample data)."),
		mcp.WithString("profile_id",
			mcp.Description("Profile ID (default: 'me')"),
		),
	)

	s.AddTool(getProfileTool, common.InstrumentedToolHandler(
		"linkedin_get_profile", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetProfile(ctx, request, sc)
		}))

	// Get company tool
	getCompanyTool := mcp.NewTool("linkedin_get_company",
		mcp.WithDescription("Get LinkedIn company/organization info. Retrieves organizations where the authenticated user has management or posting roles."),
		mcp.WithString("role",
			mcp.Description("The role to filter by - 'ADMINISTRATOR' or 'DIRECT_SPONSORED_CONTENT_POSTER' (default: ADMINISTRATOR)"),
		),
	)

	s.AddTool(getCompanyTool, common.InstrumentedToolHandlerWithApp(
		"linkedin_get_company", composio.AppLinkedIn, composio.ActionLinkedInGetCompany, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetCompany(ctx, request, sc)
		}))

	// Search people tool
	searchPeopleTool := mcp.NewTool("linkedin_search_people",
		mcp.WithDescription("Search for people on LinkedIn matching specific keywords."),
		mcp.WithString("keywords",
			mcp.Required(),
			mcp.Description("Search keywords (name, title, company, etc.)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results (1-50, default: 10)"),
		),
	)

	s.AddTool(searchPeopleTool, common.InstrumentedToolHandlerWithApp(
		"linkedin_search_people", composio.AppLinkedIn, composio.ActionLinkedInSearchPeople, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSearchPeople(ctx, request, sc)
		}))

	// Send message tool
	sendMessageTool := mcp.NewTool("linkedin_send_message",
		mcp.WithDescription("Send a direct message to a LinkedIn connection."),
		mcp.WithString("recipient_id",
			mcp.Required(),
			mcp.Description("LinkedIn profile ID of the recipient"),
		),
		mcp.WithString("message",
			mcp.Required(),
			mcp.Description("The message content (1-8000 chars)"),
		),
	)

	s.AddTool(sendMessageTool, common.InstrumentedToolHandlerWithApp(
		"linkedin_send_message", composio.AppLinkedIn, composio.ActionLinkedInSendMessage, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSendMessage(ctx, request, sc)
		}))

	return nil
}
