// Package java registers the Java grammar. Java conformance is explicit:
// a class must name the interface in its implements clause and also
// define every member.
package java

import (
	"regexp"
	"strings"

	"github.com/roveo/codejump/languages"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
)

func init() {
	languages.Register(&Language{})
}

const (
	annotations = `(?:@\w+(?:\([^)]*\))?\s+)*`
	returnType  = `[\w.$]+(?:\s*<[^()]*?>)?(?:\s*\[\s*\])*\s+`
	typeParams  = `(?:<[^>]*>\s*)?`
)

// keywords that look like a call followed by a block
var keywords = []string{
	"if", "for", "while", "switch", "catch", "synchronized", "return",
	"new", "throw", "else", "do", "try", "super", "this", "assert",
}

var patterns = &languages.Patterns{
	InterfaceOpen: languages.NewRule(
		`^\s*` + annotations +
			`(?:(?:public|protected|private|abstract|static|sealed|non-sealed|strictfp)\s+)*` +
			`interface\s+(?P<name>\w+)`),
	InterfaceMember: languages.NewRule(
		`^\s*` + annotations +
			`(?:(?:public|abstract|default|static|private|synchronized|strictfp)\s+)*` +
			typeParams + `(?:` + returnType + `)?` +
			`(?P<name>\w+)\s*(?P<sig>\([^)]*\))`,
		keywords...),
	TypeOpen: languages.NewRule(
		`^\s*` + annotations +
			`(?:(?:public|protected|private|abstract|final|static|sealed|non-sealed|strictfp)\s+)*` +
			`(?:class|record|enum)\s+(?P<name>\w+)`),
	MethodWithOwner: languages.NewRule(
		`^\s*`+annotations+
			`(?:(?:public|protected|private|abstract|static|final|synchronized|native|default|strictfp)\s+)*`+
			typeParams+`(?:`+returnType+`)?`+
			`(?P<name>\w+)\s*(?P<sig>\([^)]*\))\s*(?:throws\s+[\w.$,\s]+?)?\s*(?:\{.*)?$`,
		keywords...),
}

var (
	implementsClause = regexp.MustCompile(`\bimplements\s+([^{]+)`)
	permitsClause    = regexp.MustCompile(`\bpermits\b.*$`)
)

// Language implements the Java grammar
type Language struct{}

func (l *Language) Name() string {
	return "java"
}

func (l *Language) Extensions() []string {
	return []string{".java"}
}

func (l *Language) Patterns() *languages.Patterns {
	return patterns
}

func (l *Language) Conformance() languages.ConformanceRule {
	return languages.DeclaredAndStructural
}

// DeclaredInterfaces parses the implements clause of a class, record or
// enum declaration line. Generic arguments are stripped:
// "implements Comparable<Dog>, Animal" yields [Comparable Animal].
func (l *Language) DeclaredInterfaces(declLine string) []string {
	m := implementsClause.FindStringSubmatch(declLine)
	if m == nil {
		return nil
	}
	clause := permitsClause.ReplaceAllString(m[1], "")
	names := languages.SplitNames(clause)
	for i, name := range names {
		// Qualified names resolve to their simple name
		if dot := strings.LastIndex(name, "."); dot >= 0 {
			names[i] = name[dot+1:]
		}
	}
	return names
}

func (l *Language) TreeSitterLang() *sitter.Language {
	return java.GetLanguage()
}

func (l *Language) MaskedNodeTypes() []string {
	return []string{"line_comment", "block_comment", "string_literal", "text_block"}
}
