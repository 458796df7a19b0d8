// Package mcpserver publishes the assistant tools over the Model Context
// Protocol, on stdio for local clients and over streamable HTTP.
package mcpserver

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mmynk/billminder/internal/assistant"
)

// Name is the MCP implementation name announced to clients.
const Name = "billminder"

// New returns an MCP server with every bill tool registered.
func New(kit *assistant.Toolkit, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: Name, Version: version}, &mcp.ServerOptions{
		Instructions: "Tools for tracking recurring bills: list them, check what is due or overdue, add new bills and mark bills paid.",
	})

	mcp.AddTool(server, toolFor(assistant.ListBillsDef), handlerFor(kit.ListBills))
	mcp.AddTool(server, toolFor(assistant.CheckUpcomingDef), handlerFor(kit.CheckUpcoming))
	mcp.AddTool(server, toolFor(assistant.CheckOverdueDef), handlerFor(kit.CheckOverdue))
	mcp.AddTool(server, toolFor(assistant.AddBillDef), handlerFor(kit.AddBill))
	mcp.AddTool(server, toolFor(assistant.MarkPaidDef), handlerFor(kit.MarkPaid))
	mcp.AddTool(server, toolFor(assistant.DeleteBillDef), handlerFor(kit.DeleteBill))
	mcp.AddTool(server, toolFor(assistant.AlertsDef), handlerFor(kit.Alerts))

	return server
}

// ServeStdio runs server on stdin/stdout until the client disconnects or
// ctx is done.
func ServeStdio(ctx context.Context, server *mcp.Server) error {
	slog.Info("MCP server listening on stdio")
	return server.Run(ctx, &mcp.StdioTransport{})
}

// HTTPHandler serves server over the streamable HTTP transport.
func HTTPHandler(server *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)
}

func toolFor(def assistant.Definition) *mcp.Tool {
	return &mcp.Tool{
		Name:        def.Name,
		Description: def.Description,
	}
}

// handlerFor adapts a toolkit method. The text reply becomes the tool's
// content; errors come back to the client as tool errors carrying the
// explanation.
func handlerFor[In any, Out assistant.Replier](fn func(context.Context, In) (Out, error)) mcp.ToolHandlerFor[In, Out] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in In) (*mcp.CallToolResult, Out, error) {
		out, err := fn(ctx, in)
		if err != nil {
			var zero Out
			return nil, zero, err
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: out.Reply()}},
		}, out, nil
	}
}
