// Package contentline frames RFC 5545 text: it unfolds physical lines into
// logical content lines, splits a content line into name, parameters and raw
// value, and folds rendered lines back to a maximum octet width.
package contentline

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedLine is wrapped by every framing or splitting failure.
var ErrMalformedLine = errors.New("malformed content line")

// LineError describes a content line that could not be split.
type LineError struct {
	Num    int    // physical line number where the logical line starts
	Line   string // the unfolded line
	Name   string // property name, when it could still be determined
	Reason string
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %s: %s: %q", e.Num, ErrMalformedLine, e.Reason, e.Line)
}

func (e *LineError) Unwrap() error { return ErrMalformedLine }

// Line is one unfolded logical line.
type Line struct {
	Text string
	Num  int
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Unfold joins folded continuations (a line break followed by a space or a
// tab) and returns the non-empty logical lines. Both CRLF and bare LF line
// breaks are accepted.
func Unfold(data []byte) []Line {
	data = bytes.TrimPrefix(data, utf8BOM)
	var (
		out []Line
		cur strings.Builder
		num int
		has bool
	)
	flush := func() {
		if has && cur.Len() > 0 {
			out = append(out, Line{Text: cur.String(), Num: num})
		}
		cur.Reset()
		has = false
	}

	physical := 0
	for len(data) > 0 {
		physical++
		var raw []byte
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			raw, data = data[:i], data[i+1:]
		} else {
			raw, data = data, nil
		}
		raw = bytes.TrimSuffix(raw, []byte{'\r'})
		if len(raw) == 0 {
			// Blank lines between a line and its continuation are dropped.
			continue
		}
		if (raw[0] == ' ' || raw[0] == '\t') && has {
			cur.Write(raw[1:])
			continue
		}
		flush()
		cur.Write(raw)
		num = physical
		has = true
	}
	flush()
	return out
}

// Split separates the line into name, parameters and raw value. The first
// unquoted, unescaped ':' or ';' ends the name and the first unquoted ':'
// ends the parameter section.
func (l Line) Split() (string, Params, string, error) {
	s := l.Text
	nameEnd, valueStart := -1, -1
	inQuotes, escaped := false, false

scan:
	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case c == '"':
			inQuotes = !inQuotes
		case inQuotes:
		case c == '\\':
			escaped = true
		case c == ';' || c == ':':
			if nameEnd < 0 {
				nameEnd = i
			}
			if c == ':' {
				valueStart = i
				break scan
			}
		}
	}

	fail := func(name, reason string) (string, Params, string, error) {
		return "", Params{}, "", &LineError{Num: l.Num, Line: s, Name: name, Reason: reason}
	}

	if nameEnd <= 0 {
		return fail("", "property name is required")
	}
	name := strings.ToUpper(s[:nameEnd])
	if !IsToken(name) {
		return fail("", fmt.Sprintf("invalid property name %q", s[:nameEnd]))
	}
	if valueStart < 0 {
		if inQuotes {
			return fail(name, "unterminated quoted parameter value")
		}
		return fail(name, "missing ':' before the value")
	}
	if nameEnd+1 == valueStart {
		return fail(name, "empty parameter section")
	}

	var params Params
	if nameEnd < valueStart {
		p, err := ParseParams(s[nameEnd+1 : valueStart])
		if err != nil {
			return fail(name, err.Error())
		}
		params = p
	}
	return name, params, s[valueStart+1:], nil
}

// Render builds "NAME[;PARAMS]:VALUE". Parameters are omitted entirely when
// nothing is left to render.
func Render(name string, params Params, value string) string {
	var b strings.Builder
	b.Grow(len(name) + len(value) + 16)
	b.WriteString(strings.ToUpper(name))
	if ps := params.String(); ps != "" {
		b.WriteByte(';')
		b.WriteString(ps)
	}
	b.WriteByte(':')
	b.WriteString(value)
	return b.String()
}
