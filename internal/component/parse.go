package component

import (
	"errors"
	"fmt"
	"strings"

	"icalcodec/internal/contentline"
	appLog "icalcodec/internal/log"
	"icalcodec/internal/value"
)

var (
	// ErrUnbalancedEnd is returned for an END line with nothing open.
	ErrUnbalancedEnd = errors.New("END without matching BEGIN")
	// ErrPropertyWithoutParent is returned for a property outside any
	// component.
	ErrPropertyWithoutParent = errors.New("property outside of a component")
	// ErrStructure covers the remaining tree shape errors: mismatched END
	// names, components left open and documents without the expected root.
	ErrStructure = errors.New("invalid component structure")
)

// StructureError places a structural failure on a line.
type StructureError struct {
	Num  int
	Line string
	Err  error
}

func (e *StructureError) Error() string {
	if e.Num == 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("line %d: %v: %q", e.Num, e.Err, e.Line)
}

func (e *StructureError) Unwrap() error { return e.Err }

// Options configure Parse.
type Options struct {
	Value value.Options
	// Validate runs the structural validator on every component as it is
	// closed.
	Validate bool
	// Tolerance overrides the per-kind tolerant flag by component name.
	Tolerance map[string]bool
	// OnClose is called for each closed component before it is attached
	// to its parent. An error aborts the parse.
	OnClose func(*Component) error
}

func (o Options) tolerant(name string) bool {
	if t, ok := o.Tolerance[name]; ok {
		return t
	}
	return Lookup(name).Tolerant
}

// Parse builds the component forest in data. Value failures inside tolerant
// components become value.Broken placeholders recorded in the component's
// Errors; every other failure aborts the parse.
func Parse(data []byte, opts Options) ([]*Component, error) {
	p := parser{opts: opts}
	for _, line := range contentline.Unfold(data) {
		if err := p.line(line); err != nil {
			return nil, err
		}
	}
	if n := len(p.stack); n > 0 {
		return nil, &StructureError{Err: fmt.Errorf("%w: %s is never closed", ErrStructure, p.stack[n-1].Name)}
	}
	return p.out, nil
}

// ParseOne parses data and requires exactly one top-level component.
func ParseOne(data []byte, opts Options) (*Component, error) {
	comps, err := Parse(data, opts)
	if err != nil {
		return nil, err
	}
	if len(comps) != 1 {
		return nil, &StructureError{Err: fmt.Errorf("%w: expected one top-level component, found %d", ErrStructure, len(comps))}
	}
	return comps[0], nil
}

type parser struct {
	opts  Options
	stack []*Component
	out   []*Component
}

func (p *parser) top() *Component {
	if len(p.stack) == 0 {
		return nil
	}
	return p.stack[len(p.stack)-1]
}

func (p *parser) line(l contentline.Line) error {
	name, params, raw, err := l.Split()
	if err != nil {
		return p.malformed(l, err)
	}
	switch name {
	case "BEGIN":
		kind := strings.ToUpper(strings.TrimSpace(raw))
		if kind == "" {
			return &StructureError{Num: l.Num, Line: l.Text, Err: fmt.Errorf("%w: BEGIN without a name", ErrStructure)}
		}
		p.stack = append(p.stack, New(kind))
		return nil
	case "END":
		return p.end(l, strings.ToUpper(strings.TrimSpace(raw)))
	}

	c := p.top()
	if c == nil {
		return &StructureError{Num: l.Num, Line: l.Text, Err: ErrPropertyWithoutParent}
	}
	if name == "FREEBUSY" {
		return p.freeBusy(c, l, params, raw)
	}
	return p.property(c, l.Num, name, params, raw)
}

func (p *parser) end(l contentline.Line, kind string) error {
	n := len(p.stack)
	if n == 0 {
		return &StructureError{Num: l.Num, Line: l.Text, Err: ErrUnbalancedEnd}
	}
	c := p.stack[n-1]
	if kind != c.Name {
		return &StructureError{Num: l.Num, Line: l.Text, Err: fmt.Errorf("%w: END:%s closes %s", ErrStructure, kind, c.Name)}
	}
	p.stack = p.stack[:n-1]

	if p.opts.Validate {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	if p.opts.OnClose != nil {
		if err := p.opts.OnClose(c); err != nil {
			return err
		}
	}
	if parent := p.top(); parent != nil {
		parent.AddComponent(c)
	} else {
		p.out = append(p.out, c)
	}
	return nil
}

// malformed handles a line that could not be split. A tolerant component
// keeps it as a broken property when the name is still known.
func (p *parser) malformed(l contentline.Line, err error) error {
	c := p.top()
	if c == nil || !p.opts.tolerant(c.Name) {
		return err
	}
	var le *contentline.LineError
	if errors.As(err, &le) && le.Name != "" && le.Name != "BEGIN" && le.Name != "END" {
		prop := c.AddValue(le.Name, value.Broken{
			Raw:      l.Text[len(le.Name):],
			Intended: value.Resolve(le.Name, contentline.Params{}),
			Err:      err,
			Line:     true,
		}, contentline.Params{})
		prop.Num = l.Num
		c.recordError(prop, err)
	} else {
		c.Errors = append(c.Errors, PropertyError{Num: l.Num, Err: err})
	}
	appLog.Debug("skipped malformed line", "component", c.Name, "line", l.Num, "reason", err.Error())
	return nil
}

func (p *parser) property(c *Component, num int, name string, params contentline.Params, raw string) error {
	v, err := value.Parse(name, params, raw, p.opts.Value)
	if err == nil {
		prop := c.AddValue(name, v, params)
		prop.Num = num
		return nil
	}
	if !p.opts.tolerant(c.Name) {
		return &PropertyError{Property: name, Num: num, Err: err}
	}
	prop := c.AddValue(name, value.Broken{Raw: raw, Intended: value.Resolve(name, params), Err: err}, params)
	prop.Num = num
	c.recordError(prop, err)
	appLog.Debug("kept broken value", "component", c.Name, "property", name, "line", num, "reason", err.Error())
	return nil
}

// freeBusy stores one property per period of a FREEBUSY line.
func (p *parser) freeBusy(c *Component, l contentline.Line, params contentline.Params, raw string) error {
	for _, item := range strings.Split(raw, ",") {
		if err := p.property(c, l.Num, "FREEBUSY", params.Clone(), item); err != nil {
			return err
		}
	}
	return nil
}
