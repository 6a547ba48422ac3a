package java

import (
	"context"
	"testing"

	"github.com/roveo/codejump/languages"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLanguageMetadata(t *testing.T) {
	lang := &Language{}
	assert.Equal(t, "java", lang.Name())
	assert.Equal(t, []string{".java"}, lang.Extensions())
	assert.Equal(t, languages.DeclaredAndStructural, lang.Conformance())
	assert.NotNil(t, languages.GetLanguageForFile("src/Dog.java"))
}

func TestInterfaceOpen(t *testing.T) {
	tests := []struct {
		line string
		name string
		ok   bool
	}{
		{"public interface Shape {", "Shape", true},
		{"interface Repo<T> extends Base<T> {", "Repo", true},
		{"@FunctionalInterface public interface Action", "Action", true},
		{"public @interface Marker {", "", false},
		{"public class Circle implements Shape {", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			m, ok := patterns.InterfaceOpen.Match(tt.line)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.name, m.Name)
		})
	}
}

func TestInterfaceMember(t *testing.T) {
	tests := []struct {
		line string
		name string
		sig  string
	}{
		{"    double area();", "area", "()"},
		{"    void speak();", "speak", "()"},
		{"    public abstract String name(int x);", "name", "(int x)"},
		{"    Map<String, List<Integer>> index(String key);", "index", "(String key)"},
		{"    <T> T convert(Object o);", "convert", "(Object o)"},
		{"    default int[] sizes() {", "sizes", "()"},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			m, ok := patterns.InterfaceMember.Match(tt.line)
			require.True(t, ok)
			assert.Equal(t, tt.name, m.Name)
			assert.Equal(t, tt.sig, m.Signature)
		})
	}

	_, ok := patterns.InterfaceMember.Match("    int LIMIT = 10;")
	assert.False(t, ok)
}

func TestTypeOpen(t *testing.T) {
	m, ok := patterns.TypeOpen.Match("public final class Circle implements Shape {")
	require.True(t, ok)
	assert.Equal(t, "Circle", m.Name)
	assert.Equal(t, 19, m.Column)

	m, ok = patterns.TypeOpen.Match("record Point(int x, int y) implements Named {")
	require.True(t, ok)
	assert.Equal(t, "Point", m.Name)

	_, ok = patterns.TypeOpen.Match("// this class does things")
	assert.False(t, ok)
}

func TestMethodWithOwner(t *testing.T) {
	tests := []struct {
		line string
		name string
		ok   bool
	}{
		{"    public double area() {", "area", true},
		{"    @Override public String name() {", "name", true},
		{"    static <T> List<T> wrap(T v) throws IOException {", "wrap", true},
		{"    void run()", "run", true},
		{"        if (x > 0) {", "", false},
		{"        } else if (y) {", "", false},
		{"    private int count = compute();", "", false},
		{"    abstract void hook();", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			m, ok := patterns.MethodWithOwner.Match(tt.line)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.name, m.Name)
			assert.Empty(t, m.Owner, "java owners come from the enclosing class")
		})
	}
}

func TestDeclaredInterfaces(t *testing.T) {
	lang := &Language{}
	tests := []struct {
		line string
		want []string
	}{
		{"public class Circle implements Shape {", []string{"Shape"}},
		{"class Dog extends Animal implements Named, Aged {", []string{"Named", "Aged"}},
		{"class Box implements Comparable<Box>, java.io.Serializable {", []string{"Comparable", "Serializable"}},
		{"sealed class S implements A permits B, C {", []string{"A"}},
		{"public class Plain {", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, lang.DeclaredInterfaces(tt.line), tt.line)
	}
}

func TestMaskedLines(t *testing.T) {
	src := "class A {\n" +
		"    /*\n" +
		"     interface Hidden {\n" +
		"     */\n" +
		"    // class Fake implements Shape {\n" +
		"    void run() { }\n" +
		"}\n"

	mask, err := languages.MaskedLines(context.Background(), &Language{}, []byte(src))
	require.NoError(t, err)
	assert.True(t, mask[1])
	assert.True(t, mask[2])
	assert.True(t, mask[3])
	assert.True(t, mask[4])
	assert.False(t, mask[5])
}
