package workspace

import (
	"fmt"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
)

// Allowlist decides which workspace paths may be scanned. Patterns are
// doublestar globs matched against the workspace-relative path.
//
// An empty allowlist allows nothing.
type Allowlist struct {
	patterns []string
}

// NewAllowlist validates patterns and builds an Allowlist.
func NewAllowlist(patterns []string) (*Allowlist, error) {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid allowlist pattern %q", p)
		}
	}
	return &Allowlist{patterns: append([]string(nil), patterns...)}, nil
}

// Allowed reports whether the relative path rel is eligible for scanning.
func (a *Allowlist) Allowed(rel string) bool {
	if a == nil {
		return false
	}
	for _, p := range a.patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// Patterns returns a copy of the configured patterns.
func (a *Allowlist) Patterns() []string {
	if a == nil {
		return nil
	}
	return append([]string(nil), a.patterns...)
}

// Equal reports whether both allowlists hold the same patterns in order.
func (a *Allowlist) Equal(other *Allowlist) bool {
	return slices.Equal(a.Patterns(), other.Patterns())
}
