package contentline

import (
	"fmt"
	"strings"

	"icalcodec/internal/escape"
)

// alwaysQuoted parameters carry URIs or cal-addresses and are DQUOTE'd by
// RFC 5545 regardless of their content.
var alwaysQuoted = map[string]bool{
	"ALTREP":         true,
	"DELEGATED-FROM": true,
	"DELEGATED-TO":   true,
	"DIR":            true,
	"MEMBER":         true,
	"SENT-BY":        true,
}

// Param is one named parameter. A single element in Values is a scalar
// parameter, more than one is a list.
type Param struct {
	Name   string
	Values []string
}

// Params is a case-insensitive, insertion-ordered parameter table. Names are
// stored upper-case; setting an existing name overwrites it in place.
type Params struct {
	list []Param
}

// NewParams builds a table from name/value pairs.
func NewParams(kv ...string) Params {
	var p Params
	for i := 0; i+1 < len(kv); i += 2 {
		p.Set(kv[i], kv[i+1])
	}
	return p
}

func (p Params) index(name string) int {
	for i := range p.list {
		if strings.EqualFold(p.list[i].Name, name) {
			return i
		}
	}
	return -1
}

// Len reports the number of parameters.
func (p Params) Len() int { return len(p.list) }

// Has reports whether name is present.
func (p Params) Has(name string) bool { return p.index(name) >= 0 }

// Get returns the first value of name.
func (p Params) Get(name string) (string, bool) {
	i := p.index(name)
	if i < 0 || len(p.list[i].Values) == 0 {
		return "", false
	}
	return p.list[i].Values[0], true
}

// Values returns all values of name.
func (p Params) Values(name string) []string {
	i := p.index(name)
	if i < 0 {
		return nil
	}
	return append([]string(nil), p.list[i].Values...)
}

// Set stores name with one or more values, replacing any previous entry.
func (p *Params) Set(name string, values ...string) {
	name = strings.ToUpper(name)
	vs := append([]string(nil), values...)
	if i := p.index(name); i >= 0 {
		p.list[i].Values = vs
		return
	}
	p.list = append(p.list, Param{Name: name, Values: vs})
}

// Del removes name.
func (p *Params) Del(name string) {
	if i := p.index(name); i >= 0 {
		p.list = append(p.list[:i:i], p.list[i+1:]...)
	}
}

// List returns a copy of the parameters in insertion order.
func (p Params) List() []Param {
	out := make([]Param, len(p.list))
	for i, pr := range p.list {
		out[i] = Param{Name: pr.Name, Values: append([]string(nil), pr.Values...)}
	}
	return out
}

// Clone returns an independent copy.
func (p Params) Clone() Params {
	return Params{list: p.List()}
}

// Equal compares two tables including order.
func (p Params) Equal(o Params) bool {
	if len(p.list) != len(o.list) {
		return false
	}
	for i := range p.list {
		a, b := p.list[i], o.list[i]
		if a.Name != b.Name || len(a.Values) != len(b.Values) {
			return false
		}
		for j := range a.Values {
			if a.Values[j] != b.Values[j] {
				return false
			}
		}
	}
	return true
}

// String renders the table without the leading semicolon. A TZID of UTC is
// omitted: UTC date-times carry the Z suffix instead.
func (p Params) String() string {
	var b strings.Builder
	for _, pr := range p.list {
		if pr.Name == "TZID" && len(pr.Values) == 1 && strings.EqualFold(pr.Values[0], "UTC") {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(';')
		}
		b.WriteString(pr.Name)
		b.WriteByte('=')
		for i, v := range pr.Values {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(escape.QuoteParam(escape.EscapeParam(v), alwaysQuoted[pr.Name]))
		}
	}
	return b.String()
}

// ParseParams parses the parameter section of a content line (the text
// between the name and the value colon, without the leading semicolon).
func ParseParams(s string) (Params, error) {
	var p Params
	if s == "" {
		return p, nil
	}
	for _, part := range escape.Split(s, ';') {
		eq := strings.IndexByte(part, '=')
		if eq < 0 {
			return Params{}, fmt.Errorf("parameter %q: '=' expected", part)
		}
		name := part[:eq]
		if !IsToken(name) {
			return Params{}, fmt.Errorf("invalid parameter name %q", name)
		}
		p.Set(name, escape.SplitQuoted(part[eq+1:], ',')...)
	}
	return p, nil
}

// IsToken reports whether s is a valid iana-token/x-name: ALPHA, DIGIT and "-".
func IsToken(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-':
		default:
			return false
		}
	}
	return true
}
