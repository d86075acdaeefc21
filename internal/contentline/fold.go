package contentline

import (
	"strings"
	"unicode/utf8"
)

const (
	// DefaultWidth is the RFC 5545 line limit in octets, excluding CRLF.
	DefaultWidth = 75
	// MinWidth leaves room for the continuation space plus the widest
	// UTF-8 sequence.
	MinWidth = 5

	foldSep = "\r\n "
)

// Fold breaks line into physical lines of at most width octets. Continuation
// lines start with a single space which counts towards the width. Multi-byte
// characters are never split.
func Fold(line string, width int) string {
	if width < MinWidth {
		width = MinWidth
	}
	if len(line) <= width {
		return line
	}
	var b strings.Builder
	b.Grow(len(line) + len(line)/width*len(foldSep) + len(foldSep))
	used := 0
	for len(line) > 0 {
		_, size := utf8.DecodeRuneInString(line)
		if used+size > width {
			b.WriteString(foldSep)
			used = 1
		}
		b.WriteString(line[:size])
		used += size
		line = line[size:]
	}
	return b.String()
}
