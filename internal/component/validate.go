package component

import (
	"errors"
	"fmt"
	"strings"
)

// ErrValidation is wrapped by every structural rule violation.
var ErrValidation = errors.New("component validation failed")

// Rule names a structural rule.
type Rule string

const (
	RuleRequired  Rule = "required"
	RuleSingleton Rule = "singleton"
	RuleExclusive Rule = "exclusive"
	RuleInclusive Rule = "inclusive"
)

// ValidationError reports the first rule a component breaks.
type ValidationError struct {
	Component string
	Rule      Rule
	Names     []string
}

func (e *ValidationError) Error() string {
	var what string
	switch e.Rule {
	case RuleRequired:
		what = "missing required property " + e.Names[0]
	case RuleSingleton:
		what = "property " + e.Names[0] + " may occur only once"
	case RuleExclusive:
		what = "properties " + strings.Join(e.Names, " and ") + " are mutually exclusive"
	case RuleInclusive:
		what = fmt.Sprintf("property %s requires %s", e.Names[0], e.Names[1])
	default:
		what = string(e.Rule)
	}
	return fmt.Sprintf("%s: %s: %s", ErrValidation, e.Component, what)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Validate checks the structural rules of c's kind. Children are not
// visited.
func (c *Component) Validate() error {
	k := Lookup(c.Name)
	counts := make(map[string]int, len(c.Properties))
	for _, p := range c.Properties {
		counts[p.Name]++
	}
	fail := func(r Rule, names ...string) error {
		return &ValidationError{Component: c.Name, Rule: r, Names: names}
	}
	for _, name := range k.Required {
		if counts[name] == 0 {
			return fail(RuleRequired, name)
		}
	}
	for _, name := range k.Singletons {
		if counts[name] > 1 {
			return fail(RuleSingleton, name)
		}
	}
	for _, pair := range k.Exclusive {
		if counts[pair[0]] > 0 && counts[pair[1]] > 0 {
			return fail(RuleExclusive, pair[0], pair[1])
		}
	}
	for _, pair := range k.Inclusive {
		if counts[pair[0]] > 0 && counts[pair[1]] == 0 {
			return fail(RuleInclusive, pair[0], pair[1])
		}
	}
	return nil
}

// ValidateTree validates c and all of its descendants, stopping at the
// first failure.
func (c *Component) ValidateTree() error {
	for _, n := range c.Walk("") {
		if err := n.Validate(); err != nil {
			return err
		}
	}
	return nil
}
