package tools

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"path"
	"slices"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/roveo/codejump/conformance"
	"github.com/roveo/codejump/finder"
	"github.com/roveo/codejump/languages"
)

// InterfacesInput is the input schema for the interfaces tool
type InterfacesInput struct {
	Language string `json:"language,omitempty" jsonschema_description:"Language to list: go or java. Lists every supported language if not specified."`
	Filter   string `json:"filter,omitempty" jsonschema_description:"Optional path filter to show only a specific package (directory) or file."`
}

// InterfacesTool creates the interfaces MCP tool
func InterfacesTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "interfaces",
		Description: "List the interfaces declared in the workspace with their methods, line ranges and implementation counts, grouped by file.",
	}
}

// InterfacesHandler handles the interfaces tool invocation
func InterfacesHandler(cfg *Config) func(context.Context, *mcp.CallToolRequest, InterfacesInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input InterfacesInput) (*mcp.CallToolResult, any, error) {
		output, err := Codemap(ctx, cfg.Service.Finder(), input.Language, FormatOptions{
			Filter:    input.Filter,
			LineLimit: cfg.LineLimit,
		})
		if err != nil {
			return nil, nil, err
		}
		if output == "" {
			output = "No interfaces found."
		}
		return textResult(output), nil, nil
	}
}

// InterfaceEntry is an interface declaration in the map.
type InterfaceEntry struct {
	*conformance.Interface
	EndLine         int
	Implementations int
}

// FileIndex holds the interfaces declared in one file
type FileIndex struct {
	Path       string
	Language   string
	Interfaces []InterfaceEntry
}

// Codemap formats the interfaces of language, or of every registered
// language when it is empty. The language name is case-insensitive.
func Codemap(ctx context.Context, f *finder.Finder, language string, opts FormatOptions) (string, error) {
	names := languages.RegisteredLanguages()
	language = strings.ToLower(strings.TrimSpace(language))
	if language != "" {
		if languages.Get(language) == nil {
			return "", fmt.Errorf("unsupported language %q (supported: %s)", language, strings.Join(names, ", "))
		}
		names = []string{language}
	}

	var files []FileIndex
	for _, name := range names {
		snap, err := f.Snapshot(ctx, languages.Get(name))
		if err != nil {
			return "", err
		}
		files = append(files, IndexSnapshot(snap)...)
	}
	return FormatCodemap(files, opts), nil
}

// IndexSnapshot lists every interface declaration of snap by file.
func IndexSnapshot(snap *finder.Snapshot) []FileIndex {
	if snap.Empty() {
		return nil
	}
	var out []FileIndex
	for _, file := range snap.Files {
		fi := FileIndex{Path: file.Path, Language: snap.Language.Name()}
		for i := range file.Scan.Interfaces {
			b := &file.Scan.Interfaces[i]
			iface := conformance.NewInterface(file.Path, b)
			fi.Interfaces = append(fi.Interfaces, InterfaceEntry{
				Interface:       iface,
				EndLine:         b.EndLine,
				Implementations: len(snap.Implementations(iface)),
			})
		}
		if len(fi.Interfaces) > 0 {
			out = append(out, fi)
		}
	}
	return out
}

// FormatOptions controls how the map is formatted
type FormatOptions struct {
	Filter    string // If set, only show files matching this prefix
	LineLimit int    // Maximum lines in output (0 = DefaultLineLimit, negative = no limit)
}

// FormatCodemap formats the interface map in a compact human-readable
// format, pruning the largest directories first to fit the line limit.
func FormatCodemap(files []FileIndex, opts FormatOptions) string {
	limit := opts.LineLimit
	if limit == 0 {
		limit = DefaultLineLimit
	}

	tree := buildDirTree(files, opts.Filter)
	kept, prunedDirs := pruneToLimit(tree, limit)

	var sb strings.Builder
	if len(prunedDirs) > 0 {
		sb.WriteString("# Note: Output pruned to fit line limit\n")
		sb.WriteString("# Pruned directories: ")
		sb.WriteString(strings.Join(prunedDirs, ", "))
		sb.WriteString("\n\n")
	}

	for _, file := range kept {
		sb.WriteString(fmt.Sprintf("## %s\n", file.Path))
		for _, e := range file.Interfaces {
			// 1-based for display
			start, end := e.Location.Position.Line+1, e.EndLine+1
			span := fmt.Sprintf("[%d-%d]", start, end)
			if start == end {
				span = fmt.Sprintf("[%d]", start)
			}
			sb.WriteString(fmt.Sprintf("  interface %s %s (%s)\n", e.Name, span, implementationsLabel(e.Implementations)))
			for _, m := range e.Members {
				sb.WriteString(fmt.Sprintf("    %s%s\n", m, e.Signatures[m]))
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func implementationsLabel(n int) string {
	if n == 1 {
		return "1 implementation"
	}
	return fmt.Sprintf("%d implementations", n)
}

// matchesFilter checks if a file path matches the filter.
// Supports both exact file match and directory/package prefix match.
func matchesFilter(filePath, filter string) bool {
	filter = strings.TrimPrefix(filter, "./")
	filePath = strings.TrimPrefix(filePath, "./")
	if filePath == filter {
		return true
	}
	return strings.HasPrefix(filePath, strings.TrimSuffix(filter, "/")+"/")
}

// fileLineCount returns the number of output lines a file produces:
// a header, a line per interface and per member, and a blank line.
func fileLineCount(file FileIndex) int {
	if len(file.Interfaces) == 0 {
		return 0
	}
	n := 2
	for _, e := range file.Interfaces {
		n += 1 + len(e.Members)
	}
	return n
}

// dirNode is a directory in the pruning tree
type dirNode struct {
	name     string
	path     string // slash path from the workspace root
	files    []FileIndex
	children map[string]*dirNode
	lines    int // total lines in this subtree
}

func newDirNode(name, p string) *dirNode {
	return &dirNode{name: name, path: p, children: make(map[string]*dirNode)}
}

// buildDirTree builds a directory tree from the flat file list
func buildDirTree(files []FileIndex, filter string) *dirNode {
	root := newDirNode("", "")
	for _, file := range files {
		if filter != "" && !matchesFilter(file.Path, filter) {
			continue
		}
		if len(file.Interfaces) == 0 {
			continue
		}

		current := root
		if dir := path.Dir(file.Path); dir != "." {
			for _, part := range strings.Split(dir, "/") {
				child := current.children[part]
				if child == nil {
					child = newDirNode(part, path.Join(current.path, part))
					current.children[part] = child
				}
				current = child
			}
		}
		current.files = append(current.files, file)
	}
	calculateLines(root)
	return root
}

// calculateLines recomputes the line totals of node's subtree
func calculateLines(node *dirNode) int {
	total := 0
	for _, file := range node.files {
		total += fileLineCount(file)
	}
	for _, child := range node.children {
		total += calculateLines(child)
	}
	node.lines = total
	return total
}

// pruneToLimit drops the largest leaf directories until the tree fits the
// limit, then the largest files. It returns the kept files and the
// pruned directories.
func pruneToLimit(root *dirNode, limit int) ([]FileIndex, []string) {
	if limit <= 0 || root.lines <= limit {
		return collectFiles(root), nil
	}

	var prunedDirs []string
	for root.lines > limit {
		leaf, parent := findLargestLeaf(root)
		if leaf == nil {
			break
		}
		delete(parent.children, leaf.name)
		prunedDirs = append(prunedDirs, leaf.path)
		calculateLines(root)
	}
	if root.lines > limit {
		pruneFiles(root, limit)
	}
	return collectFiles(root), prunedDirs
}

// findLargestLeaf returns the directory without subdirectories that
// holds the most lines, and its parent. Ties go to the smaller path.
func findLargestLeaf(root *dirNode) (leaf, parent *dirNode) {
	var walk func(node, p *dirNode)
	walk = func(node, p *dirNode) {
		if len(node.children) == 0 {
			if node != root && (leaf == nil || node.lines > leaf.lines ||
				(node.lines == leaf.lines && node.path < leaf.path)) {
				leaf, parent = node, p
			}
			return
		}
		for _, child := range node.children {
			walk(child, node)
		}
	}
	walk(root, nil)
	return leaf, parent
}

// pruneFiles removes the largest files until the tree fits the limit
func pruneFiles(root *dirNode, limit int) {
	type entry struct {
		node  *dirNode
		path  string
		lines int
	}
	var entries []entry
	var collect func(node *dirNode)
	collect = func(node *dirNode) {
		for _, f := range node.files {
			entries = append(entries, entry{node, f.Path, fileLineCount(f)})
		}
		for _, child := range node.children {
			collect(child)
		}
	}
	collect(root)

	slices.SortFunc(entries, func(a, b entry) int {
		if c := cmp.Compare(b.lines, a.lines); c != 0 {
			return c
		}
		return cmp.Compare(a.path, b.path)
	})

	total := root.lines
	for _, e := range entries {
		if total <= limit {
			break
		}
		e.node.files = slices.DeleteFunc(e.node.files, func(f FileIndex) bool { return f.Path == e.path })
		total -= e.lines
	}
	calculateLines(root)
}

// collectFiles returns the files of the tree sorted by path
func collectFiles(root *dirNode) []FileIndex {
	var files []FileIndex
	var collect func(node *dirNode)
	collect = func(node *dirNode) {
		files = append(files, node.files...)
		for _, name := range slices.Sorted(maps.Keys(node.children)) {
			collect(node.children[name])
		}
	}
	collect(root)

	slices.SortFunc(files, func(a, b FileIndex) int {
		return cmp.Compare(a.Path, b.Path)
	})
	return files
}
