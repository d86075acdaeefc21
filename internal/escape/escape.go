// Package escape holds the string escaping rules of RFC 5545 TEXT values and
// of parameter values (RFC 5545 quoting plus RFC 6868 caret escapes).
//
// Every function here is pure and never fails: malformed input (a dangling
// backslash, an unterminated quote) is split or unescaped on a best-effort
// basis, because upstream calendar content is frequently imperfect.
package escape

import "strings"

// textEscaper is applied in order; the leading `\N` rewrite turns the
// non-canonical upper-case newline escape into a real newline first.
var textEscaper = []struct{ from, to string }{
	{`\N`, "\n"},
	{`\`, `\\`},
	{`;`, `\;`},
	{`,`, `\,`},
	{"\r\n", `\n`},
	{"\n", `\n`},
}

// EscapeText escapes a TEXT value for the wire.
func EscapeText(s string) string {
	for _, r := range textEscaper {
		if strings.Contains(s, r.from) {
			s = strings.ReplaceAll(s, r.from, r.to)
		}
	}
	return s
}

// UnescapeText reverses EscapeText. Unknown escapes are kept verbatim.
func UnescapeText(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		switch n := s[i+1]; n {
		case 'n', 'N':
			b.WriteByte('\n')
			i++
		case ',', ';', '\\':
			b.WriteByte(n)
			i++
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// SplitUnescaped splits s on sep wherever sep is not backslash-escaped. The
// pieces are returned still escaped.
func SplitUnescaped(s string, sep byte) []string {
	out := make([]string, 0, 4)
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case sep:
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return append(out, s[start:])
}

// SplitText splits an escaped TEXT list on sep and unescapes every item.
func SplitText(s string, sep byte) []string {
	parts := SplitUnescaped(s, sep)
	for i, p := range parts {
		parts[i] = UnescapeText(p)
	}
	return parts
}

// JoinText escapes every item and joins them with sep.
func JoinText(items []string, sep string) string {
	esc := make([]string, len(items))
	for i, it := range items {
		esc[i] = EscapeText(it)
	}
	return strings.Join(esc, sep)
}

// paramQuotable lists the characters that force a parameter value to be
// enclosed in double quotes.
const paramQuotable = ",;:'"

// QuoteParam renders a parameter value, double-quoting it when it contains
// one of `, ; : '` or when always is set. Double quotes cannot appear inside
// a quoted parameter value and are replaced by single quotes.
func QuoteParam(s string, always bool) string {
	s = strings.ReplaceAll(s, `"`, `'`)
	if always || strings.ContainsAny(s, paramQuotable) {
		return `"` + s + `"`
	}
	return s
}

// Dequote strips one pair of surrounding double quotes. An unterminated
// leading quote is dropped.
func Dequote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	if len(s) >= 1 && s[0] == '"' {
		return s[1:]
	}
	return s
}

// EscapeParam applies RFC 6868: `^` becomes `^^`, line breaks become `^n`
// and `"` becomes `^'`.
func EscapeParam(s string) string {
	if !strings.ContainsAny(s, "^\n\"") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '^':
			b.WriteString("^^")
		case '"':
			b.WriteString("^'")
		case '\r':
			if i+1 < len(s) && s[i+1] == '\n' {
				b.WriteString("^n")
				i++
				continue
			}
			b.WriteByte(c)
		case '\n':
			b.WriteString("^n")
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// UnescapeParam reverses RFC 6868. A caret followed by anything else is kept.
func UnescapeParam(s string) string {
	if !strings.ContainsRune(s, '^') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '^' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		switch s[i+1] {
		case '^':
			b.WriteByte('^')
			i++
		case 'n':
			b.WriteByte('\n')
			i++
		case '\'':
			b.WriteByte('"')
			i++
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Split splits s on sep except inside double-quoted runs. Quotes are kept
// on the pieces. An unterminated quote swallows the rest of the input.
func Split(s string, sep byte) []string {
	out := make([]string, 0, 4)
	start := 0
	inQuotes := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			inQuotes = !inQuotes
		case sep:
			if !inQuotes {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	return append(out, s[start:])
}

// SplitQuoted splits a parameter value list and decodes each item: quotes
// are removed and RFC 6868 escapes are resolved.
func SplitQuoted(s string, sep byte) []string {
	parts := Split(s, sep)
	for i, p := range parts {
		parts[i] = UnescapeParam(Dequote(p))
	}
	return parts
}

// JoinQuoted is the inverse of SplitQuoted: items are RFC 6868 escaped and
// quoted when they contain sep or any other quotable character.
func JoinQuoted(items []string, sep byte) string {
	var b strings.Builder
	for i, it := range items {
		if i > 0 {
			b.WriteByte(sep)
		}
		it = EscapeParam(it)
		b.WriteString(QuoteParam(it, strings.IndexByte(it, sep) >= 0))
	}
	return b.String()
}
