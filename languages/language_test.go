package languages

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleMatchUsesGroupOffset(t *testing.T) {
	r := NewRule(`^\s*func\s+\((?P<owner>\w+)\)\s+(?P<name>\w+)(?P<sig>\(.*)$`)

	// "Area" also occurs earlier in the line, inside the receiver
	line := "func (Area) Area(x int) int {"
	m, ok := r.Match(line)
	require.True(t, ok)
	assert.Equal(t, "Area", m.Name)
	assert.Equal(t, 12, m.Column)
	assert.Equal(t, "Area", m.Owner)
	assert.Equal(t, "(x int) int", m.Signature)
}

func TestRuleReservedNames(t *testing.T) {
	r := NewRule(`^\s*(?P<name>\w+)\s*\(`, "if", "for")

	_, ok := r.Match("  if (x) {")
	assert.False(t, ok)
	m, ok := r.Match("  run() {")
	require.True(t, ok)
	assert.Equal(t, "run", m.Name)
	assert.Empty(t, m.Owner)
	assert.Empty(t, m.Signature)
}

func TestNilRuleNeverMatches(t *testing.T) {
	var r *Rule
	assert.False(t, r.MatchString("anything"))
	assert.Empty(t, r.String())
}

func TestNewRulePanicsWithoutNameGroup(t *testing.T) {
	assert.Panics(t, func() { NewRule(`^(\w+)$`) })
}

func TestNormalizeSignature(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"(r float64)   float64 {", "(r float64) float64"},
		{"()  // comment", "()"},
		{"(String name);", "(String name)"},
		{"(a int,\tb int) (int, error)", "(a int, b int) (int, error)"},
		{"() int { return 1 }", "() int"},
		{"(){}", "()"},
		{"() interface{} {", "() interface{}"},
		{"(fn func() error) {", "(fn func() error)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeSignature(tt.in), tt.in)
	}
}

func TestSplitNames(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Shape", []string{"Shape"}},
		{" Named,  Aged ", []string{"Named", "Aged"}},
		{"Comparable<Map<K, V>>, Serializable", []string{"Comparable", "Serializable"}},
		{"", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SplitNames(tt.in), tt.in)
	}
}

func TestConformanceRuleString(t *testing.T) {
	assert.Equal(t, "structural", StructuralOnly.String())
	assert.Equal(t, "declared+structural", DeclaredAndStructural.String())
	assert.Equal(t, "unknown", ConformanceRule(42).String())
}
