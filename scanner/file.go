package scanner

import (
	"cmp"
	"slices"

	"github.com/roveo/codejump/languages"
)

// Type is a concrete type declaration block.
type Type struct {
	Block
	// Declared lists the interfaces named in the declaration's
	// conformance clause (Java "implements"). Always empty for Go.
	Declared []string
}

// Method is a concrete method attributed to its owning type
type Method struct {
	Member
	Owner string `json:"owner"`
}

// FileScan is everything a single file declares.
type FileScan struct {
	Interfaces []Block
	Types      []Type
	Methods    []Method
}

// MethodsOf returns the methods owned by typeName, in line order.
func (s *FileScan) MethodsOf(typeName string) []Method {
	var out []Method
	for _, m := range s.Methods {
		if m.Owner == typeName {
			out = append(out, m)
		}
	}
	return out
}

// InterfaceAt returns the interface declared on line, or nil.
func (s *FileScan) InterfaceAt(line int) *Block {
	for i := range s.Interfaces {
		if s.Interfaces[i].Line == line {
			return &s.Interfaces[i]
		}
	}
	return nil
}

// InterfaceMemberAt returns the interface member on line with its
// interface, or nils.
func (s *FileScan) InterfaceMemberAt(line int) (*Block, *Member) {
	for i := range s.Interfaces {
		b := &s.Interfaces[i]
		if !b.Contains(line) {
			continue
		}
		for j := range b.Members {
			if b.Members[j].Line == line {
				return b, &b.Members[j]
			}
		}
	}
	return nil, nil
}

// TypeAt returns the concrete type declared on line, or nil.
func (s *FileScan) TypeAt(line int) *Type {
	for i := range s.Types {
		if s.Types[i].Line == line {
			return &s.Types[i]
		}
	}
	return nil
}

// MethodAt returns the method declared on line, or nil.
func (s *FileScan) MethodAt(line int) *Method {
	for i := range s.Methods {
		if s.Methods[i].Line == line {
			return &s.Methods[i]
		}
	}
	return nil
}

// ScanFile runs every rule of lang over lines.
//
// Methods come from two places. Members of a type body are owned by the
// enclosing type (Java). Lines matching the method rule with a captured
// owner are owned by that owner wherever they appear (Go receivers).
// A member named after its enclosing type is a constructor and is dropped.
func ScanFile(lines []string, lang languages.Language) *FileScan {
	scan := &FileScan{}
	if lang == nil {
		return scan
	}
	p := lang.Patterns()
	if p == nil {
		return scan
	}

	scan.Interfaces = ScanBlocks(lines, p.InterfaceOpen, p.InterfaceMember)

	for _, b := range ScanBlocks(lines, p.TypeOpen, p.MethodWithOwner) {
		scan.Types = append(scan.Types, Type{
			Block:    b,
			Declared: lang.DeclaredInterfaces(b.Header),
		})
		for _, m := range b.Members {
			if m.Name == b.Name {
				continue
			}
			scan.Methods = append(scan.Methods, Method{Member: m, Owner: b.Name})
		}
	}

	if p.MethodWithOwner == nil {
		return scan
	}
	for i, line := range lines {
		m, ok := p.MethodWithOwner.Match(line)
		if !ok || m.Owner == "" {
			continue
		}
		scan.Methods = append(scan.Methods, Method{
			Member: Member{Name: m.Name, Signature: m.Signature, Line: i, Column: m.Column},
			Owner:  m.Owner,
		})
	}
	sortMethods(scan.Methods)
	return scan
}

func sortMethods(methods []Method) {
	slices.SortStableFunc(methods, func(a, b Method) int {
		return cmp.Compare(a.Line, b.Line)
	})
}
