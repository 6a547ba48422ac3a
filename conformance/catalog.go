// Package conformance builds the interface catalog of a file set and
// decides which interfaces a concrete type satisfies.
package conformance

import (
	"path"

	"github.com/roveo/codejump/languages"
	"github.com/roveo/codejump/scanner"
)

// File is the scan of one workspace file.
type File struct {
	Path string // workspace-relative, slash-separated
	Scan *scanner.FileScan
}

// Interface is an interface declaration with its members.
type Interface struct {
	Name     string             `json:"name"`
	Location languages.Location `json:"location"`
	Members  []string           `json:"members"`
	// Signatures maps a member name to its normalized raw signature.
	Signatures map[string]string `json:"signatures,omitempty"`
}

// HasMember reports whether name is a member of the interface.
func (i *Interface) HasMember(name string) bool {
	_, ok := i.Signatures[name]
	return ok
}

// NewInterface builds an Interface from a scanned block. Duplicate member
// names keep their first position and last signature.
func NewInterface(file string, b *scanner.Block) *Interface {
	iface := &Interface{
		Name: b.Name,
		Location: languages.Location{
			File:     file,
			Position: languages.Position{Line: b.Line, Character: b.Column},
		},
		Signatures: make(map[string]string, len(b.Members)),
	}
	for _, m := range b.Members {
		if _, seen := iface.Signatures[m.Name]; !seen {
			iface.Members = append(iface.Members, m.Name)
		}
		iface.Signatures[m.Name] = m.Signature
	}
	return iface
}

// Catalog maps interface names to declarations in discovery order.
type Catalog struct {
	order  []string
	byName map[string]*Interface
	first  map[string]languages.Location
}

// NewCatalog accumulates the interfaces of files in order. When a name is
// declared twice the later declaration replaces the earlier one but keeps
// the earlier position in the iteration order.
func NewCatalog(files []File) *Catalog {
	c := &Catalog{
		byName: make(map[string]*Interface),
		first:  make(map[string]languages.Location),
	}
	for _, f := range files {
		if f.Scan == nil {
			continue
		}
		for i := range f.Scan.Interfaces {
			c.add(NewInterface(f.Path, &f.Scan.Interfaces[i]))
		}
	}
	return c
}

func (c *Catalog) add(iface *Interface) {
	if _, ok := c.byName[iface.Name]; !ok {
		c.order = append(c.order, iface.Name)
		c.first[iface.Name] = iface.Location
	}
	c.byName[iface.Name] = iface
}

// Lookup returns the interface declared under name.
func (c *Catalog) Lookup(name string) (*Interface, bool) {
	iface, ok := c.byName[name]
	return iface, ok
}

// FirstDeclaration returns where name was first declared in file order.
func (c *Catalog) FirstDeclaration(name string) (languages.Location, bool) {
	loc, ok := c.first[name]
	return loc, ok
}

// Names returns the interface names in catalog order.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.order...)
}

// Interfaces returns the declarations in catalog order.
func (c *Catalog) Interfaces() []*Interface {
	out := make([]*Interface, len(c.order))
	for i, name := range c.order {
		out[i] = c.byName[name]
	}
	return out
}

func (c *Catalog) Len() int {
	return len(c.order)
}

// InterfacesWithMember returns every interface that has a member called
// name, in catalog order.
func (c *Catalog) InterfacesWithMember(name string) []*Interface {
	var out []*Interface
	for _, n := range c.order {
		if iface := c.byName[n]; iface.HasMember(name) {
			out = append(out, iface)
		}
	}
	return out
}

// Equal reports whether both catalogs hold the same interface names with
// the same member sets. Order is ignored.
func (c *Catalog) Equal(other *Catalog) bool {
	if c.Len() != other.Len() {
		return false
	}
	for name, iface := range c.byName {
		o, ok := other.byName[name]
		if !ok || len(o.Signatures) != len(iface.Signatures) {
			return false
		}
		for member := range iface.Signatures {
			if !o.HasMember(member) {
				return false
			}
		}
	}
	return true
}

// ConcreteType is a concrete type with every method attributed to it.
type ConcreteType struct {
	Name     string             `json:"name"`
	Location languages.Location `json:"location"`
	Header   string             `json:"header"`
	Methods  []string           `json:"methods"`
	// Signatures maps a method name to its normalized raw signature.
	Signatures map[string]string `json:"signatures,omitempty"`
	Declared   []string          `json:"declared,omitempty"`
}

// HasMethod reports whether the type defines a method called name.
func (t *ConcreteType) HasMethod(name string) bool {
	_, ok := t.Signatures[name]
	return ok
}

func (t *ConcreteType) addMethod(m scanner.Method) {
	if _, ok := t.Signatures[m.Name]; !ok {
		t.Methods = append(t.Methods, m.Name)
	}
	t.Signatures[m.Name] = m.Signature
}

type ownerKey struct {
	dir   string
	owner string
}

// ConcreteTypes returns the concrete types declared in files, in file
// order. Methods are attributed to the type of the same name declared in
// the same directory, so Go methods spread over several files of a
// package end up on one type. A type declared twice in one directory is
// reported once, at its first declaration.
func ConcreteTypes(files []File) []*ConcreteType {
	var types []*ConcreteType
	byKey := make(map[ownerKey]*ConcreteType)

	for _, f := range files {
		if f.Scan == nil {
			continue
		}
		dir := path.Dir(f.Path)
		for _, st := range f.Scan.Types {
			key := ownerKey{dir, st.Name}
			if _, ok := byKey[key]; ok {
				continue
			}
			t := &ConcreteType{
				Name: st.Name,
				Location: languages.Location{
					File:     f.Path,
					Position: languages.Position{Line: st.Line, Character: st.Column},
				},
				Header:     st.Header,
				Signatures: make(map[string]string),
				Declared:   st.Declared,
			}
			byKey[key] = t
			types = append(types, t)
		}
	}

	for _, f := range files {
		if f.Scan == nil {
			continue
		}
		dir := path.Dir(f.Path)
		for _, m := range f.Scan.Methods {
			if t, ok := byKey[ownerKey{dir, m.Owner}]; ok {
				t.addMethod(m)
			}
		}
	}
	return types
}
