package linkedin_tools

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/adenhq/composio-mcp/internal/composio"
	"github.com/adenhq/composio-mcp/internal/server"
	"github.com/adenhq/composio-mcp/internal/tools/common"
)

const (
	maxPostLength    = 3000
	maxMessageLength = 8000

	defaultLimit = 10
	minLimit     = 1
	maxLimit     = 50

	defaultVisibility = "PUBLIC"
	defaultRole       = "ADMINISTRATOR"
)

// createPostResult is the success payload for linkedin_create_post.
type createPostResult struct {
	Success bool   `json:"success"`
	PostID  string `json:"post_id"`
	Message string `json:"message"`
}

// profile is the payload shape for linkedin_get_profile.
type profile struct {
	ID             string `json:"id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	FullName       string `json:"full_name"`
	Headline       string `json:"headline"`
	Summary        string `json:"summary"`
	ProfileURL     string `json:"profile_url"`
	Location       string `json:"location"`
	CurrentCompany string `json:"current_company"`
}

// getProfileResult is the success payload for linkedin_get_profile.
type getProfileResult struct {
	Success bool    `json:"success"`
	Profile profile `json:"profile"`
}

// getCompanyResult is the success payload for linkedin_get_company.
type getCompanyResult struct {
	Success       bool             `json:"success"`
	Organizations []map[string]any `json:"organizations"`
	Count         int              `json:"count"`
}

// person is a reshaped search hit for linkedin_search_people.
type person struct {
	Name       string `json:"name"`
	Headline   string `json:"headline"`
	ProfileURL string `json:"profile_url"`
}

// searchPeopleResult is the success payload for linkedin_search_people.
type searchPeopleResult struct {
	Success bool     `json:"success"`
	Results []person `json:"results"`
	Total   int      `json:"total"`
}

// sendMessageResult is the success payload for linkedin_send_message.
type sendMessageResult struct {
	Success   bool   `json:"success"`
	MessageID string `json:"message_id"`
	Message   string `json:"message"`
}

func objString(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}

func handleCreatePost(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	text := common.StringArg(args, "text", "")
	if text == "" || utf8.RuneCountInString(text) > maxPostLength {
		return common.Errorf("Post text must be 1-3000 characters")
	}

	// Unknown visibility values are coerced rather than rejected
	visibility := common.StringArg(args, "visibility", defaultVisibility)
	switch visibility {
	case "PUBLIC", "CONNECTIONS", "LOGGED_IN":
	default:
		visibility = defaultVisibility
	}

	toolset, env := common.EnsureConnection(ctx, sc, composio.AppLinkedIn)
	if env != nil {
		return common.ErrorResult(env)
	}

	result, err := toolset.ExecuteAction(ctx, composio.ActionLinkedInCreatePost, sc.EntityID(), map[string]any{
		"text":       text,
		"visibility": visibility,
	})
	if err != nil {
		return common.Errorf("LinkedIn post failed: %v", err)
	}
	if !result.Successful {
		return common.Errorf("%s", result.ErrorOr("Failed to create post"))
	}

	return common.JSONResult(createPostResult{
		Success: true,
		PostID:  result.DataString("id"),
		Message: "Post created successfully",
	})
}

// handleGetProfile returns fixed sample profile data. The aggregator has no
// profile-read action on the current plan, so this tool stays answerable
// without a credential or connection check.
func handleGetProfile(_ context.Context, _ mcp.CallToolRequest, _ *server.ServerContext) (*mcp.CallToolResult, error) {
	return common.JSONResult(getProfileResult{
		Success: true,
		Profile: profile{
			ID:             "mock-profile-123",
			FirstName:      "Richard",
			LastName:       "Tang",
			FullName:       "Richard Tang",
			Headline:       "CEO & Founder at Aden | Building AI-powered solutions",
			Summary:        "Experienced tech entrepreneur focused on AI and automation. Previously founded multiple startups in the B2B space.",
			ProfileURL:     "https://www.linkedin.com/in/richardtang",
			Location:       "San Francisco, CA",
			CurrentCompany: "Aden",
		},
	})
}

func handleGetCompany(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	role := common.StringArg(args, "role", defaultRole)
	switch role {
	case "ADMINISTRATOR", "DIRECT_SPONSORED_CONTENT_POSTER":
	default:
		role = defaultRole
	}

	toolset, env := common.EnsureConnection(ctx, sc, composio.AppLinkedIn)
	if env != nil {
		return common.ErrorResult(env)
	}

	result, err := toolset.ExecuteAction(ctx, composio.ActionLinkedInGetCompany, sc.EntityID(), map[string]any{
		"role":  role,
		"state": "APPROVED",
		"count": 100,
	})
	if err != nil {
		return common.Errorf("LinkedIn company fetch failed: %v", err)
	}
	if !result.Successful {
		errMsg := result.ErrorOr("Failed to get company info")
		if strings.Contains(errMsg, "403") || strings.Contains(errMsg, "Forbidden") {
			return common.ErrorResult(&common.ErrorEnvelope{
				Error:      "Permission denied. You may not have admin access to any LinkedIn company pages.",
				Suggestion: "Ensure you have ADMINISTRATOR or DIRECT_SPONSORED_CONTENT_POSTER role on a company page.",
			})
		}
		return common.Errorf("%s", errMsg)
	}

	// The remote may return a bare list of organizations, an elements list,
	// or the organization record directly when there is only one.
	var orgs []map[string]any
	if result.List != nil {
		orgs = result.List
	} else if _, hasElements := result.Data["elements"]; hasElements {
		orgs = result.DataObjects("elements")
		if orgs == nil {
			orgs = []map[string]any{}
		}
	} else if len(result.Data) > 0 {
		orgs = []map[string]any{result.Data}
	} else {
		orgs = []map[string]any{}
	}

	return common.JSONResult(getCompanyResult{
		Success:       true,
		Organizations: orgs,
		Count:         len(orgs),
	})
}

func handleSearchPeople(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	keywords := common.StringArg(args, "keywords", "")
	if keywords == "" {
		return common.Errorf("Keywords are required")
	}

	limit := common.ClampInt(common.IntArg(args, "limit", defaultLimit), minLimit, maxLimit)

	toolset, env := common.EnsureConnection(ctx, sc, composio.AppLinkedIn)
	if env != nil {
		return common.ErrorResult(env)
	}

	result, err := toolset.ExecuteAction(ctx, composio.ActionLinkedInSearchPeople, sc.EntityID(), map[string]any{
		"keywords": keywords,
		"limit":    limit,
	})
	if err != nil {
		return common.Errorf("LinkedIn search failed: %v", err)
	}
	if !result.Successful {
		return common.Errorf("%s", result.ErrorOr("Failed to search people"))
	}

	people := result.DataObjects("elements")
	hits := make([]person, 0, limit)
	for _, p := range people {
		if len(hits) == limit {
			break
		}
		hits = append(hits, person{
			Name:       objString(p, "name"),
			Headline:   objString(p, "headline"),
			ProfileURL: objString(p, "profileUrl"),
		})
	}

	return common.JSONResult(searchPeopleResult{
		Success: true,
		Results: hits,
		Total:   len(people),
	})
}

func handleSendMessage(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	recipientID := common.StringArg(args, "recipient_id", "")
	if recipientID == "" {
		return common.Errorf("Recipient ID is required")
	}

	message := common.StringArg(args, "message", "")
	if message == "" || utf8.RuneCountInString(message) > maxMessageLength {
		return common.Errorf("Message must be 1-8000 characters")
	}
	common.SetRecipient(ctx, recipientID)

	toolset, env := common.EnsureConnection(ctx, sc, composio.AppLinkedIn)
	if env != nil {
		return common.ErrorResult(env)
	}

	result, err := toolset.ExecuteAction(ctx, composio.ActionLinkedInSendMessage, sc.EntityID(), map[string]any{
		"recipient_id": recipientID,
		"message":      message,
	})
	if err != nil {
		return common.Errorf("LinkedIn message failed: %v", err)
	}
	if !result.Successful {
		return common.Errorf("%s", result.ErrorOr("Failed to send message"))
	}

	return common.JSONResult(sendMessageResult{
		Success:   true,
		MessageID: result.DataString("id"),
		Message:   "Message sent successfully",
	})
}
