// Package composio provides a client for the Composio aggregator API.
//
// Composio mediates OAuth and action execution for third-party providers
// (Gmail, LinkedIn, ...). This package exposes the three capabilities tool
// handlers need, behind the Toolset interface:
//
//   - GetConnection: query whether an authorized connection exists for an app
//   - InitiateConnection: start a new OAuth flow and obtain a redirect URL
//   - ExecuteAction: run a named action from the Composio catalog
//
// The production implementation is Client, an HTTP client authenticated with
// a Composio API key. Tests substitute fakes so handler logic can be
// exercised without network access.
//
// This package deliberately implements no retry, backoff, rate limiting, or
// token handling; all of that is owned by the aggregator.
package composio
