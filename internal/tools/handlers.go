package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"remotemcp/pkg/logging"
)

// UserFromContext extracts the authenticated user a tool call runs for. The
// transport layer installs the user into the request context before the MCP
// handler runs.
type UserFromContext func(ctx context.Context) (UserContext, bool)

// ServerTools binds every tool definition to a handler backed by the
// downstream client. userFrom resolves the calling user from the request
// context.
func ServerTools(client *Client, userFrom UserFromContext) []server.ServerTool {
	defs := Definitions()
	serverTools := make([]server.ServerTool, 0, len(defs))

	for _, def := range defs {
		serverTools = append(serverTools, server.ServerTool{
			Tool:    def,
			Handler: makeHandler(client, userFrom, def.Name),
		})
	}
	return serverTools
}

func makeHandler(client *Client, userFrom UserFromContext, toolName string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		user, ok := userFrom(ctx)
		if !ok {
			// The request gate should make this unreachable.
			logging.Warn("Tools", "Tool %s called without an authenticated user", toolName)
			return mcp.NewToolResultError("not authenticated"), nil
		}

		result, err := client.Call(ctx, user, toolName, request.GetArguments())
		if err != nil {
			logging.Error("Tools", err, "Tool %s failed for user %s", toolName, user.UserID)
			return mcp.NewToolResultError(fmt.Sprintf("Tool execution failed: %v", err)), nil
		}

		encoded, err := json.Marshal(result)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to encode result: %v", err)), nil
		}
		return mcp.NewToolResultText(string(encoded)), nil
	}
}
