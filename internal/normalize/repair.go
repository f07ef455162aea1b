package normalize

import (
	"strings"
)

// repairJSON makes one pass over near-JSON text produced by a model and fixes
// the mistakes seen in practice: single-quoted strings, trailing commas and
// unquoted object keys. Content of double-quoted strings is left alone.
func repairJSON(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 16)

	// last significant byte written outside of a string
	var last byte

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			end := scanDoubleQuoted(s, i)
			b.WriteString(s[i:end])
			i = end - 1
			last = '"'

		case c == '\'':
			end := writeSingleQuoted(&b, s, i)
			i = end - 1
			last = '"'

		case c == ',':
			if next := nextSignificant(s, i+1); next == ']' || next == '}' {
				continue
			}
			b.WriteByte(c)
			last = c

		case isIdentStart(c) && (last == '{' || last == ','):
			j := i + 1
			for j < len(s) && isIdentPart(s[j]) {
				j++
			}
			if nextSignificant(s, j) == ':' {
				b.WriteByte('"')
				b.WriteString(s[i:j])
				b.WriteByte('"')
			} else {
				b.WriteString(s[i:j])
			}
			i = j - 1
			last = 'a'

		default:
			b.WriteByte(c)
			if !isSpace(c) {
				last = c
			}
		}
	}
	return b.String()
}

// scanDoubleQuoted returns the index just past the closing quote of the string
// starting at s[start], or len(s) if it is unterminated.
func scanDoubleQuoted(s string, start int) int {
	for i := start + 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i + 1
		}
	}
	return len(s)
}

// writeSingleQuoted rewrites 'text' as "text" and returns the index past the
// closing quote.
func writeSingleQuoted(b *strings.Builder, s string, start int) int {
	b.WriteByte('"')
	for i := start + 1; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\\':
			if i+1 < len(s) && s[i+1] == '\'' {
				b.WriteByte('\'')
				i++
				continue
			}
			b.WriteByte(c)
			if i+1 < len(s) {
				b.WriteByte(s[i+1])
				i++
			}
		case '"':
			b.WriteString(`\"`)
		case '\'':
			b.WriteByte('"')
			return i + 1
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return len(s)
}

func nextSignificant(s string, from int) byte {
	for i := from; i < len(s); i++ {
		if !isSpace(s[i]) {
			return s[i]
		}
	}
	return 0
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
