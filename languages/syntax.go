package languages

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// MaskedLines parses content with the language's tree-sitter grammar and
// returns the 0-based lines that lie wholly inside a masked node (comments,
// string literals). Languages without a grammar return nil.
func MaskedLines(ctx context.Context, lang Language, content []byte) (map[int]bool, error) {
	tsLang, ok := lang.(TreeSitterLanguage)
	if !ok {
		return nil, nil
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(tsLang.TreeSitterLang())

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s source: %w", lang.Name(), err)
	}
	defer tree.Close()

	masked := make(map[string]bool)
	for _, t := range tsLang.MaskedNodeTypes() {
		masked[t] = true
	}

	lines := strings.Split(string(content), "\n")
	out := make(map[int]bool)

	var walk func(node *sitter.Node)
	walk = func(node *sitter.Node) {
		if node == nil {
			return
		}
		if masked[node.Type()] {
			markRange(out, lines, NodeRange(node))
			return
		}
		for i := 0; i < int(node.ChildCount()); i++ {
			walk(node.Child(i))
		}
	}
	walk(tree.RootNode())

	return out, nil
}

// markRange marks the lines of r that hold nothing but the masked node.
// The first and last lines are marked only together, so a scanner that
// tracks open comments and raw strings sees both delimiters or neither.
func markRange(out map[int]bool, lines []string, r Range) {
	if r.Start.Line >= len(lines) {
		return
	}
	first := lines[r.Start.Line]
	edges := strings.TrimSpace(first[:min(r.Start.Character, len(first))]) == ""
	if r.End.Line < len(lines) {
		last := lines[r.End.Line]
		edges = edges && strings.TrimSpace(last[min(r.End.Character, len(last)):]) == ""
	}

	for line := r.Start.Line; line <= r.End.Line && line < len(lines); line++ {
		if (line == r.Start.Line || line == r.End.Line) && !edges {
			continue
		}
		out[line] = true
	}
}
