package scanner

import (
	"strings"
	"testing"

	"github.com/roveo/codejump/languages/golang"
	"github.com/roveo/codejump/languages/java"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lines(src string) []string {
	return SplitLines(strings.TrimPrefix(src, "\n"))
}

const goSource = `
package shapes

type Shape interface {
	Area() float64
	Perimeter() float64
}

type Circle struct {
	R float64
	meta struct {
		tag string
	}
}

func (c Circle) Area() float64 {
	return 3.14 * c.R * c.R
}

func (c *Circle) Perimeter() float64 {
	return 2 * 3.14 * c.R
}
`

const javaSource = `
package zoo;

public interface Animal {
    String name();
    default String greet() {
        return "hi {";
    }
    void speak();
}

public class Dog extends Base implements Animal, Comparable<Dog> {
    private final String n;
    public Dog(String n) {
        this.n = n;
    }
    @Override
    public String name() {
        if (n == null) {
            return "}";
        }
        return n;
    }
    public void speak() { System.out.println("woof"); }
}
`

func TestScanBlocksGoInterface(t *testing.T) {
	p := (&golang.Language{}).Patterns()
	blocks := ScanBlocks(lines(goSource), p.InterfaceOpen, p.InterfaceMember)

	require.Len(t, blocks, 1)
	b := blocks[0]
	assert.Equal(t, "Shape", b.Name)
	assert.Equal(t, 2, b.Line)
	assert.Equal(t, 5, b.Column)
	assert.Equal(t, 5, b.EndLine)
	assert.True(t, b.Closed)
	assert.Equal(t, []string{"Area", "Perimeter"}, b.MemberNames())
	assert.Equal(t, Member{Name: "Area", Signature: "() float64", Line: 3, Column: 1}, b.Members[0])
}

func TestScanBlocksNestedBraces(t *testing.T) {
	p := (&golang.Language{}).Patterns()
	blocks := ScanBlocks(lines(goSource), p.TypeOpen, nil)

	require.Len(t, blocks, 1)
	assert.Equal(t, "Circle", blocks[0].Name)
	assert.Equal(t, 12, blocks[0].EndLine, "inner struct brace must not close the outer block")
	assert.Empty(t, blocks[0].Members)
}

func TestScanBlocksJavaInterfaceWithDefaultMethod(t *testing.T) {
	p := (&java.Language{}).Patterns()
	blocks := ScanBlocks(lines(javaSource), p.InterfaceOpen, p.InterfaceMember)

	require.Len(t, blocks, 1)
	assert.Equal(t, "Animal", blocks[0].Name)
	assert.Equal(t, []string{"name", "greet", "speak"}, blocks[0].MemberNames())
	assert.Equal(t, 8, blocks[0].EndLine)
}

func TestScanBlocksUnclosed(t *testing.T) {
	p := (&golang.Language{}).Patterns()
	src := lines(`
type Reader interface {
	Read(p []byte) (int, error)
	Close() error`)

	blocks := ScanBlocks(src, p.InterfaceOpen, p.InterfaceMember)
	require.Len(t, blocks, 1)
	assert.False(t, blocks[0].Closed)
	assert.Equal(t, 2, blocks[0].EndLine)
	assert.Equal(t, []string{"Read", "Close"}, blocks[0].MemberNames())
}

func TestScanBlocksNestedOpenIgnored(t *testing.T) {
	p := (&java.Language{}).Patterns()
	src := lines(`
class Outer {
    class Inner {
        void a() {}
    }
    void b() {}
}`)

	blocks := ScanBlocks(src, p.TypeOpen, p.MethodWithOwner)
	require.Len(t, blocks, 1)
	assert.Equal(t, "Outer", blocks[0].Name)
	assert.Equal(t, []string{"b"}, blocks[0].MemberNames())
}

func TestScanBlocksBraceOnNextLine(t *testing.T) {
	p := (&java.Language{}).Patterns()
	src := lines(`
public interface Runner
    extends Base
{
    void run();
}`)

	blocks := ScanBlocks(src, p.InterfaceOpen, p.InterfaceMember)
	require.Len(t, blocks, 1)
	assert.Equal(t, "public interface Runner extends Base {", blocks[0].Header)
	assert.Equal(t, []string{"run"}, blocks[0].MemberNames())
	assert.Equal(t, 4, blocks[0].EndLine)
}

func TestScanBlocksIgnoresBracesInCommentsAndStrings(t *testing.T) {
	p := (&golang.Language{}).Patterns()
	src := lines(`
type Shape interface { // {
	Area() float64 /* } */
	// }
	Name() string
}`)

	blocks := ScanBlocks(src, p.InterfaceOpen, p.InterfaceMember)
	require.Len(t, blocks, 1)
	assert.Equal(t, []string{"Area", "Name"}, blocks[0].MemberNames())
	assert.Equal(t, 4, blocks[0].EndLine)
}

func TestScanBlocksDropsDeclarationWithoutBody(t *testing.T) {
	p := (&java.Language{}).Patterns()
	src := lines(`
class A {
    interface B
}
interface C {
    void c();
}`)

	blocks := ScanBlocks(src, p.InterfaceOpen, p.InterfaceMember)
	require.Len(t, blocks, 1)
	assert.Equal(t, "C", blocks[0].Name)
	assert.Equal(t, []string{"c"}, blocks[0].MemberNames())
}

func TestScanBlocksSingleLine(t *testing.T) {
	p := (&golang.Language{}).Patterns()
	blocks := ScanBlocks([]string{"type Empty interface{}"}, p.InterfaceOpen, p.InterfaceMember)

	require.Len(t, blocks, 1)
	assert.True(t, blocks[0].Closed)
	assert.Equal(t, 0, blocks[0].EndLine)
	assert.Empty(t, blocks[0].Members)
}

func TestScanBlocksNilRule(t *testing.T) {
	assert.Nil(t, ScanBlocks([]string{"type Shape interface {"}, nil, nil))
}

func TestScanFileGo(t *testing.T) {
	scan := ScanFile(lines(goSource), &golang.Language{})

	require.Len(t, scan.Interfaces, 1)
	require.Len(t, scan.Types, 1)
	assert.Equal(t, "Circle", scan.Types[0].Name)
	assert.Empty(t, scan.Types[0].Declared)

	methods := scan.MethodsOf("Circle")
	require.Len(t, methods, 2)
	assert.Equal(t, "Area", methods[0].Name)
	assert.Equal(t, 14, methods[0].Line)
	assert.Equal(t, 16, methods[0].Column)
	assert.Equal(t, "Perimeter", methods[1].Name)

	assert.NotNil(t, scan.InterfaceAt(2))
	assert.Nil(t, scan.InterfaceAt(3))
	iface, member := scan.InterfaceMemberAt(4)
	require.NotNil(t, iface)
	assert.Equal(t, "Shape", iface.Name)
	assert.Equal(t, "Perimeter", member.Name)
	assert.NotNil(t, scan.TypeAt(7))
	assert.Equal(t, "Perimeter", scan.MethodAt(18).Name)
	assert.Nil(t, scan.MethodAt(19))
}

func TestScanFileJava(t *testing.T) {
	scan := ScanFile(lines(javaSource), &java.Language{})

	require.Len(t, scan.Types, 1)
	dog := scan.Types[0]
	assert.Equal(t, "Dog", dog.Name)
	assert.Equal(t, 13, dog.Column)
	assert.Equal(t, []string{"Animal", "Comparable"}, dog.Declared)

	var names []string
	for _, m := range scan.Methods {
		assert.Equal(t, "Dog", m.Owner)
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"name", "speak"}, names, "constructor dropped, nested lines skipped")
}

func TestScanFileNilLanguage(t *testing.T) {
	scan := ScanFile([]string{"type Shape interface {"}, nil)
	assert.Empty(t, scan.Interfaces)
	assert.Empty(t, scan.Types)
}

func TestMaskLines(t *testing.T) {
	src := []string{"a", "b", "c"}
	assert.Equal(t, []string{"a", "", "c"}, MaskLines(src, map[int]bool{1: true}))
	assert.Equal(t, src, MaskLines(src, nil))
	assert.Equal(t, []string{"a", "b", "c"}, src, "input untouched")
}

func TestSplitLines(t *testing.T) {
	assert.Equal(t, []string{"a", "b", ""}, SplitLines("a\r\nb\n"))
}

func TestLexerBraces(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"func() {", "{"},
		{"} else {", "}{"},
		{`s := "{" + '}'`, ""},
		{`x := "a\"{"`, ""},
		{"a // }", ""},
		{"/* { */ }", "}"},
		{"m := map[string]int{}", "{}"},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			var l lexer
			assert.Equal(t, tt.want, collect(&l, tt.line))
		})
	}
}

func TestLexerCarriesStateAcrossLines(t *testing.T) {
	var l lexer
	assert.Equal(t, "", collect(&l, "/* start {"))
	assert.Equal(t, "}", collect(&l, "end */ }"))
	assert.Equal(t, "", collect(&l, "s := `raw {"))
	assert.Equal(t, "{", collect(&l, "still raw }` {"))
}

func collect(l *lexer, line string) string {
	var sb strings.Builder
	l.braces(line, func(open bool) {
		if open {
			sb.WriteByte('{')
		} else {
			sb.WriteByte('}')
		}
	})
	return sb.String()
}
