// Package component holds the iCalendar component tree: named components
// carrying ordered properties and child components, the parser that builds
// the tree from content lines, the structural validator and the serializer.
package component

import (
	"fmt"
	"sort"
	"strings"

	"icalcodec/internal/contentline"
	"icalcodec/internal/value"
)

// Property is one stored property value. A content line that expands into
// several values (FREEBUSY) is stored as several properties.
type Property struct {
	Name   string
	Params contentline.Params
	Value  value.Value
	Num    int // physical line number, zero for properties built in code
}

// PropertyError records a property that was recovered in a tolerant
// component.
type PropertyError struct {
	Property string
	Num      int
	Err      error
}

func (e *PropertyError) Error() string {
	if e.Num > 0 {
		return fmt.Sprintf("line %d: %s: %v", e.Num, e.Property, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Property, e.Err)
}

func (e *PropertyError) Unwrap() error { return e.Err }

// Component is a BEGIN/END block.
type Component struct {
	Name       string
	Properties []*Property
	Children   []*Component
	Errors     []PropertyError
}

// New returns an empty component of the given kind.
func New(name string) *Component {
	return &Component{Name: strings.ToUpper(name)}
}

// Add converts x with value.FromNative and appends it under name.
func (c *Component) Add(name string, x any) (*Property, error) {
	v, err := value.FromNative(name, x)
	if err != nil {
		return nil, err
	}
	return c.AddValue(name, v, contentline.Params{}), nil
}

// AddValue appends an already typed value.
func (c *Component) AddValue(name string, v value.Value, params contentline.Params) *Property {
	p := &Property{Name: strings.ToUpper(name), Params: params, Value: v}
	c.Properties = append(c.Properties, p)
	return p
}

// Set replaces every property called name with x.
func (c *Component) Set(name string, x any) (*Property, error) {
	v, err := value.FromNative(name, x)
	if err != nil {
		return nil, err
	}
	c.Remove(name)
	return c.AddValue(name, v, contentline.Params{}), nil
}

// Get returns the first property called name.
func (c *Component) Get(name string) *Property {
	name = strings.ToUpper(name)
	for _, p := range c.Properties {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Value returns the value of the first property called name.
func (c *Component) Value(name string) (value.Value, bool) {
	if p := c.Get(name); p != nil {
		return p.Value, true
	}
	return nil, false
}

// GetAll returns every property called name in insertion order.
func (c *Component) GetAll(name string) []*Property {
	name = strings.ToUpper(name)
	var out []*Property
	for _, p := range c.Properties {
		if p.Name == name {
			out = append(out, p)
		}
	}
	return out
}

// Has reports whether a property called name is present.
func (c *Component) Has(name string) bool { return c.Get(name) != nil }

// Remove deletes every property called name and returns how many went.
func (c *Component) Remove(name string) int {
	name = strings.ToUpper(name)
	kept := c.Properties[:0]
	n := 0
	for _, p := range c.Properties {
		if p.Name == name {
			n++
			continue
		}
		kept = append(kept, p)
	}
	for i := len(kept); i < len(c.Properties); i++ {
		c.Properties[i] = nil
	}
	c.Properties = kept
	return n
}

// AddComponent appends a child.
func (c *Component) AddComponent(child *Component) {
	c.Children = append(c.Children, child)
}

// Walk returns c and its descendants, depth first, whose name matches.
// An empty name matches every component.
func (c *Component) Walk(name string) []*Component {
	name = strings.ToUpper(name)
	var out []*Component
	var visit func(*Component)
	visit = func(n *Component) {
		if name == "" || n.Name == name {
			out = append(out, n)
		}
		for _, ch := range n.Children {
			visit(ch)
		}
	}
	visit(c)
	return out
}

// PropertyItems returns the properties in serialization order: the kind's
// canonical prefix first, then the rest either sorted by name or in
// insertion order. Properties sharing a name keep their insertion order.
func (c *Component) PropertyItems(sorted bool) []*Property {
	canon := Lookup(c.Name).Canonical
	out := make([]*Property, 0, len(c.Properties))
	placed := make(map[string]bool, len(canon))
	for _, name := range canon {
		placed[name] = true
		out = append(out, c.GetAll(name)...)
	}
	rest := make([]*Property, 0, len(c.Properties)-len(out))
	for _, p := range c.Properties {
		if !placed[p.Name] {
			rest = append(rest, p)
		}
	}
	if sorted {
		sort.SliceStable(rest, func(i, j int) bool { return rest[i].Name < rest[j].Name })
	}
	return append(out, rest...)
}

// IsBroken reports whether any property of c or its descendants was
// recovered from a parse failure.
func (c *Component) IsBroken() bool {
	if len(c.Errors) > 0 {
		return true
	}
	for _, ch := range c.Children {
		if ch.IsBroken() {
			return true
		}
	}
	return false
}

// Copy returns a deep copy of the tree. Values are shared; they are never
// mutated in place by this package.
func (c *Component) Copy() *Component {
	out := &Component{
		Name:       c.Name,
		Properties: make([]*Property, len(c.Properties)),
		Children:   make([]*Component, len(c.Children)),
		Errors:     append([]PropertyError(nil), c.Errors...),
	}
	for i, p := range c.Properties {
		cp := *p
		cp.Params = p.Params.Clone()
		out.Properties[i] = &cp
	}
	for i, ch := range c.Children {
		out.Children[i] = ch.Copy()
	}
	return out
}

func (c *Component) recordError(p *Property, err error) {
	c.Errors = append(c.Errors, PropertyError{Property: p.Name, Num: p.Num, Err: err})
}
