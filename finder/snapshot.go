package finder

import (
	"github.com/roveo/codejump/conformance"
	"github.com/roveo/codejump/languages"
)

// Snapshot is the scanned candidate file set of one language.
type Snapshot struct {
	Language languages.Language
	Files    []conformance.File // enumeration order
	Catalog  *conformance.Catalog
	Types    []*conformance.ConcreteType
}

// InterfaceMatch is an interface a type or method was matched against,
// located at its first declaration.
type InterfaceMatch struct {
	Name     string             `json:"name"`
	Location languages.Location `json:"location"`
}

func newSnapshot(lang languages.Language, files []conformance.File) *Snapshot {
	return &Snapshot{
		Language: lang,
		Files:    files,
		Catalog:  conformance.NewCatalog(files),
		Types:    conformance.ConcreteTypes(files),
	}
}

// Empty reports whether the snapshot holds no files.
func (s *Snapshot) Empty() bool {
	return s == nil || len(s.Files) == 0
}

func (s *Snapshot) rule() languages.ConformanceRule {
	if s.Language == nil {
		return languages.StructuralOnly
	}
	return s.Language.Conformance()
}

// Implementations returns the declaration of every type that satisfies
// iface by name, in file order. Every satisfying type of a file is
// reported.
func (s *Snapshot) Implementations(iface *conformance.Interface) []languages.Location {
	if s.Empty() {
		return nil
	}
	var out []languages.Location
	for _, t := range (conformance.Resolver{}).Implementers(s.Types, iface, s.rule()) {
		out = append(out, t.Location)
	}
	return out
}

// MethodsNamed returns every owned method called name, in file order.
// Nothing checks that the owner satisfies any interface.
func (s *Snapshot) MethodsNamed(name string) []languages.Location {
	if s.Empty() {
		return nil
	}
	var out []languages.Location
	for _, f := range s.Files {
		for _, m := range f.Scan.Methods {
			if m.Name == name {
				out = append(out, languages.Location{
					File:     f.Path,
					Position: languages.Position{Line: m.Line, Character: m.Column},
				})
			}
		}
	}
	return out
}

// TypeAt returns the concrete type declared at file:line, or nil.
func (s *Snapshot) TypeAt(file string, line int) *conformance.ConcreteType {
	if s.Empty() {
		return nil
	}
	for _, t := range s.Types {
		if t.Location.File == file && t.Location.Position.Line == line {
			return t
		}
	}
	return nil
}

// InterfacesOf returns the interfaces t satisfies under r.
func (s *Snapshot) InterfacesOf(t *conformance.ConcreteType, r conformance.Resolver) []InterfaceMatch {
	if s.Empty() || t == nil {
		return nil
	}
	return s.matches(r.Resolve(t, s.Catalog, s.rule()))
}

// InterfacesWithMember returns every interface that has a member called
// name.
func (s *Snapshot) InterfacesWithMember(name string) []InterfaceMatch {
	if s.Empty() {
		return nil
	}
	var names []string
	for _, iface := range s.Catalog.InterfacesWithMember(name) {
		names = append(names, iface.Name)
	}
	return s.matches(names)
}

func (s *Snapshot) matches(names []string) []InterfaceMatch {
	var out []InterfaceMatch
	for _, name := range names {
		loc, ok := s.Catalog.FirstDeclaration(name)
		if !ok {
			continue
		}
		out = append(out, InterfaceMatch{Name: name, Location: loc})
	}
	return out
}
