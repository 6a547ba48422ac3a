// Package golang registers the Go grammar. Go conformance is implicit:
// a type satisfies an interface when its method set covers the interface's.
package golang

import (
	"github.com/roveo/codejump/languages"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

func init() {
	languages.Register(&Language{})
}

var patterns = &languages.Patterns{
	InterfaceOpen: languages.NewRule(
		`^\s*type\s+(?P<name>\w+)(?:\[[^\]]*\])?\s+interface\s*\{`),
	InterfaceMember: languages.NewRule(
		`^\s*(?P<name>\w+)\s*(?P<sig>\(.*)$`),
	TypeOpen: languages.NewRule(
		`^\s*type\s+(?P<name>\w+)(?:\[[^\]]*\])?\s+struct\s*\{`),
	MethodWithOwner: languages.NewRule(
		`^\s*func\s*\(\s*(?:\w+\s+)?\*?\s*(?P<owner>\w+)(?:\[[^\]]*\])?\s*\)\s*(?P<name>\w+)\s*(?P<sig>\(.*)$`),
}

// Language implements the Go grammar
type Language struct{}

func (g *Language) Name() string {
	return "go"
}

func (g *Language) Extensions() []string {
	return []string{".go"}
}

func (g *Language) Patterns() *languages.Patterns {
	return patterns
}

func (g *Language) Conformance() languages.ConformanceRule {
	return languages.StructuralOnly
}

// DeclaredInterfaces always returns nil: Go types never name their interfaces.
func (g *Language) DeclaredInterfaces(string) []string {
	return nil
}

func (g *Language) TreeSitterLang() *sitter.Language {
	return golang.GetLanguage()
}

func (g *Language) MaskedNodeTypes() []string {
	return []string{"comment", "raw_string_literal", "interpreted_string_literal"}
}
