// Package mcpserver exposes the steno pipeline as MCP tools so AI coding
// assistants can parse and route steno commands programmatically. This is
// the composition point only; all parsing and mapping logic stays in the
// steno package.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/shandley/stenograph/steno"
)

// New builds an MCP server with the steno_parse and steno_map tools
// registered over the given parser and mapper.
func New(parser *steno.Parser, mapper *steno.Mapper, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"steno",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(
			"steno turns compressed commands like `dx:@data.csv +normalize .ts:edge` "+
				"into structured intents. Use steno_parse to inspect the intent and "+
				"steno_map to see how it routes (direct execution, delegation, "+
				"clarification or error).",
		),
	)

	s.AddTool(parseToolDefinition(), parseHandler(parser))
	s.AddTool(mapToolDefinition(), mapHandler(parser, mapper))
	return s
}

func parseToolDefinition() mcp.Tool {
	return mcp.NewTool("steno_parse",
		mcp.WithDescription(
			"Parse a steno command string into a structured intent: verb, target, "+
				"additions, exclusions, flags, precision, references and freeform text.",
		),
		mcp.WithString("command",
			mcp.Required(),
			mcp.Description("The steno command, e.g. `ch:login +rate-limit .ts:edge ^signup`"),
		),
	)
}

func parseHandler(parser *steno.Parser) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		command := req.GetString("command", "")
		if command == "" {
			return mcp.NewToolResultError("'command' is required"), nil
		}
		res, err := parser.Parse(command)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("parse failed: %v", err)), nil
		}
		return jsonResult(struct {
			Intent   *steno.Intent `json:"intent"`
			Warnings []string      `json:"warnings,omitempty"`
		}{res.Intent, res.Warnings})
	}
}

func mapToolDefinition() mcp.Tool {
	return mcp.NewTool("steno_map",
		mcp.WithDescription(
			"Parse a steno command and route the resulting intent: returns a "+
				"variant-tagged result (direct, delegate, clarify or error).",
		),
		mcp.WithString("command",
			mcp.Required(),
			mcp.Description("The steno command to route"),
		),
	)
}

func mapHandler(parser *steno.Parser, mapper *steno.Mapper) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		command := req.GetString("command", "")
		if command == "" {
			return mcp.NewToolResultError("'command' is required"), nil
		}
		res, err := parser.Parse(command)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("parse failed: %v", err)), nil
		}
		result := mapper.Map(res.Intent)
		return jsonResult(struct {
			Result   steno.MappingResult `json:"result"`
			Warnings []string            `json:"warnings,omitempty"`
		}{result, res.Warnings})
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
