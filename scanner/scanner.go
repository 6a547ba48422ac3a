// Package scanner finds declaration blocks in source lines with the rules of
// a language grammar. It never parses: a block is the run of lines between a
// declaration and the brace that balances its opening brace.
package scanner

import (
	"strings"

	"github.com/roveo/codejump/languages"
)

// Member is a line inside a block that matched the member rule
type Member struct {
	Name      string `json:"name"`
	Signature string `json:"signature,omitempty"`
	Line      int    `json:"line"`
	Column    int    `json:"column"`
}

// Block is a declaration with its body.
type Block struct {
	Name   string
	Line   int // 0-based line of the declaration
	Column int // column of the declared name
	// Header is the declaration text from Line up to the line holding the
	// opening brace, joined with spaces.
	Header  string
	Members []Member
	EndLine int  // line holding the balancing brace, or the last line
	Closed  bool // false when the file ended first
}

// Contains reports whether line lies within the block, declaration included.
func (b *Block) Contains(line int) bool {
	return line >= b.Line && line <= b.EndLine
}

// MemberNames returns the member names in declaration order.
func (b *Block) MemberNames() []string {
	names := make([]string, len(b.Members))
	for i, m := range b.Members {
		names[i] = m.Name
	}
	return names
}

// ScanBlocks walks lines once and returns every block opened by a line
// matching open. A block opened while another is still open is ignored.
// Members are the lines directly inside the body (one brace deep) that
// match member; a nil member rule collects nothing.
//
// A declaration without a brace on its line waits for the first '{' that
// follows. A block whose closing brace never arrives keeps the members
// collected so far and ends at the last line.
func ScanBlocks(lines []string, open, member *languages.Rule) []Block {
	if open == nil {
		return nil
	}

	var (
		blocks   []Block
		cur      *Block
		opened   bool
		openLine int
		base     int
		depth    int
		lex      lexer
	)

	for i, line := range lines {
		if cur == nil {
			if m, ok := open.Match(line); ok {
				cur = &Block{Name: m.Name, Line: i, Column: m.Column, EndLine: -1}
				opened, base = false, depth
			}
		} else if opened && depth == base+1 {
			if m, ok := member.Match(line); ok {
				cur.Members = append(cur.Members, Member{
					Name:      m.Name,
					Signature: m.Signature,
					Line:      i,
					Column:    m.Column,
				})
			}
		}

		lex.braces(line, func(isOpen bool) {
			if isOpen {
				depth++
				if cur != nil && !opened && depth == base+1 {
					opened, openLine = true, i
				}
				return
			}
			if depth > 0 {
				depth--
			}
			if cur == nil {
				return
			}
			switch {
			case opened && depth == base:
				cur.EndLine, cur.Closed = i, true
				cur.Header = header(lines, cur.Line, openLine)
				blocks = append(blocks, *cur)
				cur = nil
			case !opened && depth < base:
				// the enclosing scope closed before the body began
				cur = nil
			}
		})
	}

	if cur != nil {
		cur.EndLine = len(lines) - 1
		if opened {
			cur.Header = header(lines, cur.Line, openLine)
		} else {
			cur.Header = strings.TrimSpace(lines[cur.Line])
		}
		blocks = append(blocks, *cur)
	}
	return blocks
}

func header(lines []string, from, to int) string {
	parts := make([]string, 0, to-from+1)
	for _, l := range lines[from : to+1] {
		parts = append(parts, strings.TrimSpace(l))
	}
	return strings.Join(parts, " ")
}

// MaskLines returns a copy of lines with every masked line blanked.
// Line numbering is preserved.
func MaskLines(lines []string, mask map[int]bool) []string {
	if len(mask) == 0 {
		return lines
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		if !mask[i] {
			out[i] = l
		}
	}
	return out
}

// SplitLines splits file content into lines, dropping carriage returns.
func SplitLines(content string) []string {
	lines := strings.Split(content, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
