package scanner

// lexer finds the structural braces of a line. Braces inside comments and
// string or character literals are skipped. Block comments and backtick
// raw strings carry over to the following lines.
type lexer struct {
	inBlockComment bool
	inRawString    bool
}

// braces calls fn for every structural brace in line, in order.
// open is true for '{' and false for '}'.
func (l *lexer) braces(line string, fn func(open bool)) {
	for i := 0; i < len(line); i++ {
		c := line[i]

		if l.inBlockComment {
			if c == '*' && i+1 < len(line) && line[i+1] == '/' {
				l.inBlockComment = false
				i++
			}
			continue
		}
		if l.inRawString {
			if c == '`' {
				l.inRawString = false
			}
			continue
		}

		switch c {
		case '/':
			if i+1 < len(line) {
				switch line[i+1] {
				case '/':
					return
				case '*':
					l.inBlockComment = true
					i++
				}
			}
		case '`':
			l.inRawString = true
		case '"', '\'':
			i = skipQuoted(line, i)
		case '{':
			fn(true)
		case '}':
			fn(false)
		}
	}
}

// skipQuoted returns the index of the quote closing the literal that opens
// at start, or the last index of line when the literal is unterminated.
func skipQuoted(line string, start int) int {
	quote := line[start]
	for i := start + 1; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case quote:
			return i
		}
	}
	return len(line) - 1
}
