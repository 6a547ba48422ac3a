package languages

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// NodeRange converts a tree-sitter node to a Range
func NodeRange(node *sitter.Node) Range {
	start := node.StartPoint()
	end := node.EndPoint()
	return Range{
		Start: Position{Line: int(start.Row), Character: int(start.Column)},
		End:   Position{Line: int(end.Row), Character: int(end.Column)},
	}
}

// NormalizeSignature trims a raw signature down to its comparable text:
// trailing comments, the body and a terminating semicolon are dropped and
// runs of whitespace collapse to one space.
func NormalizeSignature(sig string) string {
	if i := strings.Index(sig, "//"); i >= 0 {
		sig = sig[:i]
	}
	sig = sig[:bodyStart(sig)]
	sig = strings.TrimSpace(sig)
	sig = strings.TrimSuffix(sig, ";")
	return strings.Join(strings.Fields(sig), " ")
}

// bodyStart returns the offset of the brace opening a body, or len(sig).
// Braces glued to a word, as in "interface{}", are part of a type.
func bodyStart(sig string) int {
	depth := 0
	for i := 0; i < len(sig); i++ {
		switch sig[i] {
		case '(':
			depth++
		case ')':
			depth--
		case '{':
			if depth > 0 || i == 0 {
				continue
			}
			if prev := sig[i-1]; prev == ' ' || prev == '\t' || prev == ')' {
				return i
			}
		}
	}
	return len(sig)
}

// SplitNames splits a comma-separated list of type names, ignoring commas
// nested inside generic brackets and stripping the generic arguments.
func SplitNames(list string) []string {
	var names []string
	depth := 0
	var cur strings.Builder
	flush := func() {
		if name := strings.TrimSpace(cur.String()); name != "" {
			names = append(names, name)
		}
		cur.Reset()
	}
	for _, r := range list {
		switch {
		case r == '<' || r == '[':
			depth++
		case r == '>' || r == ']':
			if depth > 0 {
				depth--
			}
		case r == ',' && depth == 0:
			flush()
		case depth == 0:
			cur.WriteRune(r)
		}
	}
	flush()
	return names
}
