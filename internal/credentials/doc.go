// Package credentials resolves secrets by logical name.
//
// The only credential this server needs is the Composio API key
// ("composio", backed by the COMPOSIO_API_KEY environment variable).
// Credentials are read-only for the process lifetime; a Source is queried
// on every tool call so that a missing key yields a per-call error rather
// than a startup failure.
package credentials
