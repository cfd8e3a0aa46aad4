// Package oauth implements the authorization layer for the remote MCP
// server: client registration and validation, PKCE, authorization codes,
// opaque audience-bound access tokens, browser sessions, and audit events.
//
// All state is held in memory behind mutex-guarded maps. Codes and tokens
// are swept on background tickers; sessions are evicted lazily on lookup.
// The server is a single process, so in-memory stores are the unit of
// truth and a restart invalidates all outstanding credentials.
package oauth
