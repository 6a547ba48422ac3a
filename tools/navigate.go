package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/roveo/codejump/languages"
	"github.com/roveo/codejump/lens"
)

// PositionInput addresses a source line
type PositionInput struct {
	File   string `json:"file" jsonschema_description:"Source file, absolute or relative to the workspace root."`
	Line   int    `json:"line" jsonschema_description:"1-based line number."`
	Column int    `json:"column,omitempty" jsonschema_description:"1-based column. Optional; lookups work on whole lines."`
}

func (in PositionInput) position() (languages.Position, error) {
	if in.Line < 1 {
		return languages.Position{}, fmt.Errorf("line must be 1 or greater, got %d", in.Line)
	}
	pos := languages.Position{Line: in.Line - 1}
	if in.Column > 0 {
		pos.Character = in.Column - 1
	}
	return pos, nil
}

// GoToImplementationTool creates the go_to_implementation MCP tool
func GoToImplementationTool() *mcp.Tool {
	return &mcp.Tool{
		Name: "go_to_implementation",
		Description: `Find the implementations of an interface.

On an interface declaration line, lists every type whose methods cover the interface (Go: implicitly; Java: types that also declare "implements"). On an interface method line, lists every method of that name.`,
	}
}

// GoToImplementationHandler handles the go_to_implementation tool invocation
func GoToImplementationHandler(cfg *Config) func(context.Context, *mcp.CallToolRequest, PositionInput) (*mcp.CallToolResult, any, error) {
	return navigateHandler(cfg, lens.ActionGoToImplementation, "Implementations")
}

// GoToInterfaceTool creates the go_to_interface MCP tool
func GoToInterfaceTool() *mcp.Tool {
	return &mcp.Tool{
		Name: "go_to_interface",
		Description: `Find the interfaces a type or method belongs to.

On a type declaration line, lists the interfaces the type satisfies. On a method line, lists every interface with a method of that name.`,
	}
}

// GoToInterfaceHandler handles the go_to_interface tool invocation
func GoToInterfaceHandler(cfg *Config) func(context.Context, *mcp.CallToolRequest, PositionInput) (*mcp.CallToolResult, any, error) {
	return navigateHandler(cfg, lens.ActionGoToInterface, "Interfaces")
}

func navigateHandler(cfg *Config, action, title string) func(context.Context, *mcp.CallToolRequest, PositionInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input PositionInput) (*mcp.CallToolResult, any, error) {
		file, err := cfg.resolveFile(input.File)
		if err != nil {
			return nil, nil, err
		}
		pos, err := input.position()
		if err != nil {
			return nil, nil, err
		}

		nav, err := cfg.Service.ExecuteAction(ctx, action, lens.Target{File: file, Position: pos})
		if err != nil {
			return nil, nil, err
		}
		if len(nav.Targets) == 0 {
			return textResult(fmt.Sprintf("No %s found for %s:%d", strings.ToLower(title), file, input.Line)), nil, nil
		}

		output := formatLocations(ctx, cfg.workspace(), fmt.Sprintf("%s for %s:%d", title, file, input.Line), nav.Targets)
		return textResult(output), nil, nil
	}
}
