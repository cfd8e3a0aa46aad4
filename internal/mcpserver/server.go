package mcpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"remotemcp/internal/identity"
	"remotemcp/internal/oauth"
	"remotemcp/internal/tools"
	"remotemcp/pkg/logging"
)

const (
	serverName    = "academiadepolitie-remote-mcp"
	serverVersion = "1.0.0"

	heartbeatInterval = 30 * time.Second
)

// Service is the MCP endpoint: a streamable HTTP transport over the tool
// set, gated on bearer tokens bound to this server's canonical URL.
type Service struct {
	mcpServer  *server.MCPServer
	streamable *server.StreamableHTTPServer
	handler    http.Handler
}

// New builds the MCP service. The streamable transport negotiates plain
// JSON or SSE from the Accept header and heartbeats long-lived streams. It
// runs stateless so each authorized POST stands alone, matching how remote
// MCP clients reconnect.
func New(toolClient *tools.Client, tokenStore *oauth.TokenStore, users *identity.Directory, resource string) *Service {
	mcpServer := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTools(tools.ServerTools(toolClient, userFromContext)...)

	streamable := server.NewStreamableHTTPServer(
		mcpServer,
		server.WithHeartbeatInterval(heartbeatInterval),
		server.WithStateLess(true),
	)

	gated := NewRequireToken(tokenStore, users, resource, streamable)

	logging.Info("MCP", "MCP server %s ready with %d tools", serverName, len(tools.Definitions()))
	return &Service{mcpServer: mcpServer, streamable: streamable, handler: gated}
}

// Handler returns the token-gated HTTP handler for the /mcp endpoint.
func (s *Service) Handler() http.Handler {
	return s.handler
}

// UngatedHandler returns the transport without token enforcement. It backs
// the test endpoint, which is only mounted when test mode is enabled.
func (s *Service) UngatedHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The test endpoint runs as the fixture user.
		id := Identity{UserID: "4001", Username: "test", Scope: "mcp"}
		s.streamable.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

// userFromContext adapts the request identity to the tool layer's user
// context.
func userFromContext(ctx context.Context) (tools.UserContext, bool) {
	id, ok := IdentityFromContext(ctx)
	if !ok {
		return tools.UserContext{}, false
	}
	return tools.UserContext{UserID: id.UserID, APIToken: id.APIToken}, true
}
