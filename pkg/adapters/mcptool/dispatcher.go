// Package mcptool adapts an MCP (Model Context Protocol) tool server to the
// engine's ToolDispatcher port. The travel tools (location resolution, flight
// and hotel search, booking management) are expected to be exposed by a
// stdio MCP server launched by the host.
package mcptool

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/windrose-ai/windrose/internal/logging"
	"github.com/windrose-ai/windrose/pkg/domain"
)

// Dispatcher forwards tool calls to an MCP server over stdio.
type Dispatcher struct {
	client *client.Client
	logger *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the dispatcher logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// New launches the MCP server command and performs the protocol handshake.
// Close must be called to stop the child process.
func New(ctx context.Context, command string, args []string, opts ...Option) (*Dispatcher, error) {
	c, err := client.NewStdioMCPClient(command, nil, args...)
	if err != nil {
		return nil, fmt.Errorf("starting MCP server %q: %w", command, err)
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: "windrose", Version: "0.1.0"}
	if _, err := c.Initialize(ctx, initReq); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("initializing MCP session: %w", err)
	}

	d := &Dispatcher{client: c, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Dispatch implements ports.ToolDispatcher. MCP-level tool failures come back
// as failure-flavored results; only transport errors surface as Go errors.
func (d *Dispatcher) Dispatch(ctx context.Context, call domain.ToolCall) (domain.ToolResult, error) {
	req := mcp.CallToolRequest{}
	req.Params.Name = call.Name
	req.Params.Arguments = call.Args

	d.logger.Debug("dispatching tool call", "tool", call.Name)

	res, err := d.client.CallTool(ctx, req)
	if err != nil {
		return domain.ToolResult{}, fmt.Errorf("calling tool %s: %w", call.Name, err)
	}

	content := flattenContent(res.Content)
	if res.IsError {
		return domain.ToolResult{
			ID:      call.ID,
			Content: content,
			IsError: true,
			Error:   content,
		}, nil
	}

	return domain.ToolResult{ID: call.ID, Content: content}, nil
}

// Tools lists the tools the server exposes, mapped to the engine's schema.
func (d *Dispatcher) Tools(ctx context.Context) ([]domain.Tool, error) {
	res, err := d.client.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("listing tools: %w", err)
	}

	tools := make([]domain.Tool, 0, len(res.Tools))
	for _, t := range res.Tools {
		tools = append(tools, domain.Tool{
			Name:        t.Name,
			Description: t.Description,
			Parameters: map[string]any{
				"type":       t.InputSchema.Type,
				"properties": t.InputSchema.Properties,
				"required":   t.InputSchema.Required,
			},
		})
	}
	return tools, nil
}

// Close shuts down the MCP session and the child process.
func (d *Dispatcher) Close() error {
	return d.client.Close()
}

func flattenContent(items []mcp.Content) string {
	var parts []string
	for _, item := range items {
		if tc, ok := item.(mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}
