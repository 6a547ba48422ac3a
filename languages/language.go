package languages

import (
	"regexp"

	sitter "github.com/smacker/go-tree-sitter"
)

// Position represents a position in a text document (LSP-compliant, 0-based)
type Position struct {
	Line      int `json:"line"`      // 0-based line number
	Character int `json:"character"` // 0-based character offset
}

// Range represents a range in a text document (LSP-compliant, 0-based)
type Range struct {
	Start Position
	End   Position
}

// Location identifies a point in a workspace file.
// File is the workspace-relative, slash-separated path.
type Location struct {
	File     string   `json:"file"`
	Position Position `json:"position"`
}

// ConformanceRule selects how a language decides that a concrete type
// satisfies an interface.
type ConformanceRule int

const (
	// StructuralOnly matches on method-name sets alone (Go).
	StructuralOnly ConformanceRule = iota
	// DeclaredAndStructural additionally requires the type to list the
	// interface in its declaration (Java "implements").
	DeclaredAndStructural
)

func (r ConformanceRule) String() string {
	switch r {
	case StructuralOnly:
		return "structural"
	case DeclaredAndStructural:
		return "declared+structural"
	default:
		return "unknown"
	}
}

// Patterns is the set of line rules a language is scanned with.
type Patterns struct {
	InterfaceOpen   *Rule // opens an interface body, captures its name
	InterfaceMember *Rule // a method inside an interface body
	TypeOpen        *Rule // opens a concrete type declaration
	MethodWithOwner *Rule // a concrete method; may capture its owner
}

// Language defines how a particular programming language is scanned.
// It is the only place that knows about source syntax; everything above it
// works with names, lines and columns.
type Language interface {
	// Name returns the language identifier (e.g., "go", "java")
	Name() string

	// Extensions returns the file extensions this language handles (e.g., [".go"])
	Extensions() []string

	// Patterns returns the line rules for this language
	Patterns() *Patterns

	// Conformance returns the rule used to decide interface satisfaction
	Conformance() ConformanceRule

	// DeclaredInterfaces returns the interface names listed in the
	// conformance clause of a type declaration line, or nil.
	DeclaredInterfaces(declLine string) []string
}

// TreeSitterLanguage is an optional interface for languages that can mask
// comments and string literals with a tree-sitter grammar
type TreeSitterLanguage interface {
	Language
	// TreeSitterLang returns the tree-sitter language for parsing
	TreeSitterLang() *sitter.Language
	// MaskedNodeTypes returns node types whose lines never hold declarations
	MaskedNodeTypes() []string
}

// Rule is a line-matching rule. The regular expression must contain a
// group named "name"; it may contain groups named "owner" and "sig".
type Rule struct {
	re       *regexp.Regexp
	name     int
	owner    int
	sig      int
	reserved map[string]bool
}

// Match is the result of a rule matching a line.
type Match struct {
	Name      string
	Column    int    // byte offset of the name group in the line
	Owner     string // receiver or enclosing type, when the rule captures one
	Signature string // raw parameter/result text, when the rule captures one
}

// NewRule compiles expr into a Rule. Names in reserved never match.
// It panics if expr does not compile or lacks a "name" group.
func NewRule(expr string, reserved ...string) *Rule {
	re := regexp.MustCompile(expr)
	r := &Rule{
		re:    re,
		name:  re.SubexpIndex("name"),
		owner: re.SubexpIndex("owner"),
		sig:   re.SubexpIndex("sig"),
	}
	if r.name < 0 {
		panic("languages: rule " + expr + " has no name group")
	}
	if len(reserved) > 0 {
		r.reserved = make(map[string]bool, len(reserved))
		for _, w := range reserved {
			r.reserved[w] = true
		}
	}
	return r
}

// Match tests line against the rule.
func (r *Rule) Match(line string) (Match, bool) {
	if r == nil {
		return Match{}, false
	}
	idx := r.re.FindStringSubmatchIndex(line)
	if idx == nil || idx[2*r.name] < 0 {
		return Match{}, false
	}
	m := Match{
		Name:   line[idx[2*r.name]:idx[2*r.name+1]],
		Column: idx[2*r.name],
	}
	if r.reserved[m.Name] {
		return Match{}, false
	}
	if r.owner > 0 && idx[2*r.owner] >= 0 {
		m.Owner = line[idx[2*r.owner]:idx[2*r.owner+1]]
	}
	if r.sig > 0 && idx[2*r.sig] >= 0 {
		m.Signature = NormalizeSignature(line[idx[2*r.sig]:idx[2*r.sig+1]])
	}
	return m, true
}

// MatchString reports whether the rule matches line.
func (r *Rule) MatchString(line string) bool {
	_, ok := r.Match(line)
	return ok
}

// String returns the rule's regular expression.
func (r *Rule) String() string {
	if r == nil {
		return ""
	}
	return r.re.String()
}
