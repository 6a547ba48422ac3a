package conformance

import (
	"slices"

	"github.com/roveo/codejump/languages"
)

// Evidence records why a type was found to satisfy an interface
type Evidence string

const (
	EvidenceStructural         Evidence = "structural"
	EvidenceDeclaredStructural Evidence = "declared+structural"
)

// Edge states that Type satisfies Interface.
type Edge struct {
	Type      string   `json:"type"`
	Interface string   `json:"interface"`
	Evidence  Evidence `json:"evidence"`
}

// Resolver decides interface satisfaction.
type Resolver struct {
	// StrictSignatures additionally requires every member's normalized
	// signature to equal the signature of the type's method.
	StrictSignatures bool
}

// Satisfies reports whether t satisfies iface under rule. An interface
// without members is satisfied by every type its rule admits.
func (r Resolver) Satisfies(t *ConcreteType, iface *Interface, rule languages.ConformanceRule) (Evidence, bool) {
	evidence := EvidenceStructural
	if rule == languages.DeclaredAndStructural {
		if !slices.Contains(t.Declared, iface.Name) {
			return "", false
		}
		evidence = EvidenceDeclaredStructural
	}
	for _, member := range iface.Members {
		sig, ok := t.Signatures[member]
		if !ok {
			return "", false
		}
		if r.StrictSignatures && sig != iface.Signatures[member] {
			return "", false
		}
	}
	return evidence, true
}

// Resolve returns the names of the catalog interfaces t satisfies, in
// catalog order.
func (r Resolver) Resolve(t *ConcreteType, c *Catalog, rule languages.ConformanceRule) []string {
	var names []string
	for _, iface := range r.candidates(t, c, rule) {
		if _, ok := r.Satisfies(t, iface, rule); ok {
			names = append(names, iface.Name)
		}
	}
	return names
}

// Edges returns every satisfaction edge between types and the catalog,
// grouped by type in the order given.
func (r Resolver) Edges(types []*ConcreteType, c *Catalog, rule languages.ConformanceRule) []Edge {
	var edges []Edge
	for _, t := range types {
		for _, iface := range r.candidates(t, c, rule) {
			if ev, ok := r.Satisfies(t, iface, rule); ok {
				edges = append(edges, Edge{Type: t.Name, Interface: iface.Name, Evidence: ev})
			}
		}
	}
	return edges
}

// Implementers returns the types that satisfy iface, in the order given.
func (r Resolver) Implementers(types []*ConcreteType, iface *Interface, rule languages.ConformanceRule) []*ConcreteType {
	var out []*ConcreteType
	for _, t := range types {
		if _, ok := r.Satisfies(t, iface, rule); ok {
			out = append(out, t)
		}
	}
	return out
}

// candidates narrows the catalog to the interfaces worth checking.
// Declared conformance only looks at names in the clause.
func (r Resolver) candidates(t *ConcreteType, c *Catalog, rule languages.ConformanceRule) []*Interface {
	if rule != languages.DeclaredAndStructural {
		return c.Interfaces()
	}
	var out []*Interface
	for _, iface := range c.Interfaces() {
		if slices.Contains(t.Declared, iface.Name) {
			out = append(out, iface)
		}
	}
	return out
}
