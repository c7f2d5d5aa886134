// Package linkedin_tools provides MCP tools for LinkedIn operations backed
// by the Composio aggregator.
//
// Available tools:
//   - linkedin_create_post: Publish a post to the user's feed
//   - linkedin_get_profile: Return sample profile data
//   - linkedin_get_company: List organizations the user can manage
//   - linkedin_search_people: Search profiles by keywords
//   - linkedin_send_message: Send a direct message to a connection
//
// All tools except linkedin_get_profile run the shared OAuth connection
// gate before executing a remote action.
package linkedin_tools
