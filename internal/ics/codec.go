// Package ics is the document level entry point: it parses and serializes
// whole iCalendar payloads with a configuration, a timezone cache and
// logging wired in.
package ics

import (
	"fmt"
	"sort"
	"strings"

	"icalcodec/internal/component"
	"icalcodec/internal/config"
	appLog "icalcodec/internal/log"
	"icalcodec/internal/tz"
	"icalcodec/internal/value"
)

// Codec parses and serializes iCalendar documents. It is safe for
// concurrent use; the only shared state is its timezone cache.
type Codec struct {
	cfg   config.Config
	cache *tz.Cache
	value value.Options
}

// NewCodec builds a codec from cfg. A nil cfg uses config.DefaultConfig.
// A nil cache gets a private cache backed by the system zone database with
// the configured horizons; pass tz.Shared() to share zones process-wide.
func NewCodec(cfg *config.Config, cache *tz.Cache) (*Codec, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	c := &Codec{cfg: *cfg}
	c.cfg.Normalize()

	infer, err := c.cfg.InferKinds()
	if err != nil {
		return nil, err
	}
	if cache == nil {
		cache = tz.NewCache(tz.NewSystemProvider(c.cfg.SynthFirstYear, c.cfg.SynthLastYear), c.cfg.RRuleCutoffYear)
	}
	c.cache = cache
	c.value = value.Options{Localizer: cache, Infer: infer}

	appLog.SetLevel(appLog.ParseLevel(c.cfg.LogLevel))
	return c, nil
}

// Cache returns the timezone cache the codec resolves TZIDs with.
func (c *Codec) Cache() *tz.Cache { return c.cache }

// Parse reads every top-level component of data. VTIMEZONE components are
// registered in the cache as they close, so later TZID references in the
// same document resolve against them.
func (c *Codec) Parse(data []byte) ([]*component.Component, error) {
	comps, err := component.Parse(data, component.Options{
		Value:     c.value,
		Validate:  c.cfg.Validate,
		Tolerance: c.cfg.Tolerance(),
		OnClose:   c.cache.Register,
	})
	if err != nil {
		appLog.Error("ics parse failed", err, "bytes", len(data))
		return nil, err
	}
	if appLog.Enabled(appLog.LevelDebug) {
		appLog.Debug("ics parse completed", "components", len(comps), "issues", len(Report(comps)))
	}
	return comps, nil
}

// ParseCalendar parses a document holding exactly one VCALENDAR.
func (c *Codec) ParseCalendar(data []byte) (*component.Component, error) {
	comps, err := c.Parse(data)
	if err != nil {
		return nil, err
	}
	if len(comps) != 1 || comps[0].Name != "VCALENDAR" {
		err := fmt.Errorf("%w: expected a single VCALENDAR, found %s", component.ErrStructure, names(comps))
		appLog.Error("ics parse failed", err, "bytes", len(data))
		return nil, err
	}
	return comps[0], nil
}

func names(comps []*component.Component) string {
	if len(comps) == 0 {
		return "nothing"
	}
	out := make([]string, len(comps))
	for i, c := range comps {
		out[i] = c.Name
	}
	return strings.Join(out, ", ")
}

// Serialize writes the components with the configured folding and
// property order.
func (c *Codec) Serialize(comps ...*component.Component) ([]byte, error) {
	return component.Serialize(comps, component.SerializeOptions{
		Value:     c.value,
		FoldWidth: c.cfg.FoldWidth,
		Sorted:    c.cfg.SortProperties,
	})
}

// Issue is one property recovered in tolerant mode.
type Issue struct {
	Component string
	Property  string
	Line      int
	Message   string
}

// Report lists the recovered properties of every component in comps and
// their descendants, in document order.
func Report(comps []*component.Component) []Issue {
	var out []Issue
	for _, root := range comps {
		for _, n := range root.Walk("") {
			for _, e := range n.Errors {
				out = append(out, Issue{
					Component: n.Name,
					Property:  e.Property,
					Line:      e.Num,
					Message:   e.Err.Error(),
				})
			}
		}
	}
	return out
}

// Report is the codec bound form of the package-level Report.
func (c *Codec) Report(comps []*component.Component) []Issue { return Report(comps) }

// Timezone builds a VTIMEZONE for tzid from the cache.
func (c *Codec) Timezone(tzid string) (*component.Component, error) {
	t, err := c.cache.Resolve(tzid)
	if err != nil {
		return nil, err
	}
	return t.ToComponent(), nil
}

// AddMissingTimezones inserts a VTIMEZONE into cal for every TZID
// parameter in the tree that cal does not define yet. The new components
// go before the first non-timezone child.
func (c *Codec) AddMissingTimezones(cal *component.Component) error {
	defined := map[string]bool{}
	for _, z := range cal.Walk("VTIMEZONE") {
		if v, ok := z.Value("TZID"); ok {
			if s, err := value.Render(v); err == nil {
				defined[s] = true
			}
		}
	}
	used := map[string]bool{}
	for _, n := range cal.Walk("") {
		if n.Name == "VTIMEZONE" || n.Name == "STANDARD" || n.Name == "DAYLIGHT" {
			continue
		}
		for _, p := range n.Properties {
			if tzid, ok := p.Params.Get("TZID"); ok && !defined[tzid] && !strings.EqualFold(tzid, "UTC") {
				used[tzid] = true
			}
		}
	}
	if len(used) == 0 {
		return nil
	}

	missing := make([]string, 0, len(used))
	for tzid := range used {
		missing = append(missing, tzid)
	}
	sort.Strings(missing)

	zones := make([]*component.Component, 0, len(missing))
	for _, tzid := range missing {
		z, err := c.Timezone(tzid)
		if err != nil {
			return err
		}
		zones = append(zones, z)
	}

	at := 0
	for at < len(cal.Children) && cal.Children[at].Name == "VTIMEZONE" {
		at++
	}
	children := make([]*component.Component, 0, len(cal.Children)+len(zones))
	children = append(children, cal.Children[:at]...)
	children = append(children, zones...)
	children = append(children, cal.Children[at:]...)
	cal.Children = children
	appLog.Debug("added timezones", "tzids", strings.Join(missing, ","))
	return nil
}
