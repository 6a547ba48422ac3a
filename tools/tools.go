// Package tools provides the MCP tools that expose interface navigation.
package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/roveo/codejump/languages"
	"github.com/roveo/codejump/lens"
	"github.com/roveo/codejump/workspace"
)

// DefaultLineLimit is the default maximum number of lines in the interfaces output
const DefaultLineLimit = 1000

// maxContext truncates source lines quoted in results.
const maxContext = 100

// Config holds server-wide configuration for tools
type Config struct {
	Service   *lens.Service
	LineLimit int // Maximum lines in output (0 = DefaultLineLimit)
}

func (c *Config) workspace() *workspace.Workspace {
	return c.Service.Finder().Sources().Workspace()
}

// resolveFile turns a tool's file argument into a workspace-relative path.
func (c *Config) resolveFile(file string) (string, error) {
	if file == "" {
		return "", fmt.Errorf("file is required")
	}
	return c.workspace().Rel(file)
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// sourceLines reads files lazily for quoting result lines.
type sourceLines struct {
	ws    *workspace.Workspace
	files map[string][]string
}

func newSourceLines(ws *workspace.Workspace) *sourceLines {
	return &sourceLines{ws: ws, files: make(map[string][]string)}
}

// line returns the trimmed text of a 0-based line, or "" when unreadable.
func (s *sourceLines) line(ctx context.Context, file string, line int) string {
	lines, ok := s.files[file]
	if !ok {
		lines, _ = s.ws.ReadLines(ctx, file)
		s.files[file] = lines
	}
	if line < 0 || line >= len(lines) {
		return ""
	}
	text := strings.TrimSpace(lines[line])
	if len(text) > maxContext {
		text = text[:maxContext-3] + "..."
	}
	return text
}

// formatLocations groups locations by file, quoting each line. Lines and
// columns are shown 1-based.
func formatLocations(ctx context.Context, ws *workspace.Workspace, title string, locs []languages.Location) string {
	src := newSourceLines(ws)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s (%d found)\n\n", title, len(locs)))

	currentFile := ""
	for _, loc := range locs {
		if loc.File != currentFile {
			if currentFile != "" {
				sb.WriteString("\n")
			}
			sb.WriteString(fmt.Sprintf("## %s\n", loc.File))
			currentFile = loc.File
		}
		sb.WriteString(fmt.Sprintf("  [%d:%d] %s\n",
			loc.Position.Line+1, loc.Position.Character+1,
			src.line(ctx, loc.File, loc.Position.Line)))
	}
	return sb.String()
}

// Register adds every tool to the server.
func Register(s *mcp.Server, cfg *Config) {
	mcp.AddTool(s, AnnotationsTool(), AnnotationsHandler(cfg))
	mcp.AddTool(s, GoToImplementationTool(), GoToImplementationHandler(cfg))
	mcp.AddTool(s, GoToInterfaceTool(), GoToInterfaceHandler(cfg))
	mcp.AddTool(s, InterfacesTool(), InterfacesHandler(cfg))
}
