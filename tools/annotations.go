package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// AnnotationsInput is the input schema for the annotations tool
type AnnotationsInput struct {
	File string `json:"file" jsonschema_description:"Source file, absolute or relative to the workspace root."`
}

// AnnotationsTool creates the annotations MCP tool
func AnnotationsTool() *mcp.Tool {
	return &mcp.Tool{
		Name: "annotations",
		Description: `List the navigation annotations of a Go or Java file.

Interfaces and their methods are annotated with their implementation count; types and methods that satisfy interfaces are annotated with the interfaces they belong to. Follow an annotation with go_to_implementation or go_to_interface on the same line.`,
	}
}

// AnnotationsHandler handles the annotations tool invocation
func AnnotationsHandler(cfg *Config) func(context.Context, *mcp.CallToolRequest, AnnotationsInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input AnnotationsInput) (*mcp.CallToolResult, any, error) {
		file, err := cfg.resolveFile(input.File)
		if err != nil {
			return nil, nil, err
		}

		annotations, err := cfg.Service.ProvideAnnotations(ctx, file)
		if err != nil {
			return nil, nil, err
		}
		if len(annotations) == 0 {
			return textResult(fmt.Sprintf("No annotations for %s", file)), nil, nil
		}

		src := newSourceLines(cfg.workspace())
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("# %s\n\n", file))
		for _, a := range annotations {
			sb.WriteString(fmt.Sprintf("  [%d:%d] %s (%s) %s\n",
				a.Position.Line+1, a.Position.Character+1, a.Label, a.Action,
				src.line(ctx, file, a.Position.Line)))
		}
		return textResult(sb.String()), nil, nil
	}
}
