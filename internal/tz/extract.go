package tz

import (
	"fmt"
	"strconv"
	"time"

	"github.com/teambition/rrule-go"

	"icalcodec/internal/component"
	"icalcodec/internal/value"
)

// DefaultCutoffYear bounds the expansion of open-ended STANDARD and DAYLIGHT
// rules.
const DefaultCutoffYear = 2038

// observance is one STANDARD or DAYLIGHT block.
type observance struct {
	wall     time.Time // DTSTART wall clock, fields in UTC
	from, to time.Duration
	name     string
	dst      bool
	rule     *value.Recur
	rdates   []time.Time // wall clocks, fields in UTC
}

// FromComponent builds the transition table of a VTIMEZONE. Open-ended
// recurrence rules are expanded up to January 1st of cutoffYear; a value
// below 1 selects DefaultCutoffYear.
func FromComponent(c *component.Component, cutoffYear int) (*Table, error) {
	if cutoffYear < 1 {
		cutoffYear = DefaultCutoffYear
	}
	if c == nil || c.Name != "VTIMEZONE" {
		return nil, fmt.Errorf("%w: not a VTIMEZONE", ErrInvalidTimezoneComponent)
	}
	tzid, err := text(c, "TZID")
	if err != nil || tzid == "" {
		return nil, fmt.Errorf("%w: TZID is required", ErrInvalidTimezoneComponent)
	}

	var obs []observance
	for _, ch := range c.Children {
		if ch.Name != "STANDARD" && ch.Name != "DAYLIGHT" {
			continue
		}
		o, err := readObservance(ch)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %s: %v", ErrInvalidTimezoneComponent, tzid, ch.Name, err)
		}
		if o.name == "" {
			o.name = tzid
		}
		obs = append(obs, o)
	}
	if len(obs) == 0 {
		return nil, fmt.Errorf("%w: %s has no STANDARD or DAYLIGHT block", ErrInvalidTimezoneComponent, tzid)
	}
	uniqueNames(obs)

	t := &Table{TZID: tzid}
	for _, o := range obs {
		starts, err := o.starts(cutoffYear)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidTimezoneComponent, tzid, err)
		}
		for _, at := range starts {
			t.Transitions = append(t.Transitions, Transition{
				At: at, From: o.from, To: o.to, Name: o.name, DST: o.dst,
			})
		}
	}
	t.normalize()
	t.Initial = initialInfo(t)
	return t, nil
}

// initialInfo names the offset before the first transition after the
// observance that switches to it, if there is one.
func initialInfo(t *Table) Info {
	first := t.Transitions[0]
	for _, tr := range t.Transitions {
		if tr.To == first.From {
			return tr.Info()
		}
	}
	return Info{Offset: first.From, Name: t.TZID}
}

func readObservance(c *component.Component) (observance, error) {
	o := observance{dst: c.Name == "DAYLIGHT"}

	v, ok := c.Value("DTSTART")
	if !ok {
		return o, fmt.Errorf("DTSTART is required")
	}
	dt, ok := v.(value.DateTime)
	if !ok {
		return o, fmt.Errorf("DTSTART must be a local DATE-TIME, got %s", v.Kind())
	}
	o.wall = dt.Wall()

	var err error
	if o.from, err = offset(c, "TZOFFSETFROM"); err != nil {
		return o, err
	}
	if o.to, err = offset(c, "TZOFFSETTO"); err != nil {
		return o, err
	}
	if name, err := text(c, "TZNAME"); err == nil {
		o.name = name
	}

	if v, ok := c.Value("RRULE"); ok {
		r, ok := v.(value.Recur)
		if !ok {
			return o, fmt.Errorf("RRULE is not a valid RECUR")
		}
		o.rule = &r
	}
	for _, p := range c.GetAll("RDATE") {
		list, ok := p.Value.(value.DateList)
		if !ok {
			return o, fmt.Errorf("RDATE is not a valid date list")
		}
		for _, item := range list {
			switch it := item.(type) {
			case value.DateTime:
				o.rdates = append(o.rdates, it.Wall())
			case value.Date:
				o.rdates = append(o.rdates, it.In(time.UTC))
			case value.Period:
				o.rdates = append(o.rdates, it.Start.Wall())
			}
		}
	}
	return o, nil
}

// starts returns the UTC instants at which the observance begins. Wall
// clocks are read in the offset the observance switches from.
func (o observance) starts(cutoffYear int) ([]time.Time, error) {
	loc := time.FixedZone("", int(o.from/time.Second))
	inFrom := func(wall time.Time) time.Time {
		y, mo, d := wall.Date()
		h, mi, s := wall.Clock()
		return time.Date(y, mo, d, h, mi, s, 0, loc).UTC()
	}

	out := []time.Time{inFrom(o.wall)}
	for _, rd := range o.rdates {
		out = append(out, inFrom(rd))
	}
	if o.rule == nil {
		return out, nil
	}

	opt, err := o.rule.Option()
	if err != nil {
		return nil, err
	}
	opt.Dtstart = inFrom(o.wall).In(loc)
	if opt.Count == 0 && opt.Until.IsZero() {
		opt.Until = time.Date(cutoffYear, time.January, 1, 0, 0, 0, 0, loc)
	}
	r, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil, fmt.Errorf("RRULE: %w", err)
	}
	for _, at := range r.All() {
		out = append(out, at.UTC())
	}
	return out, nil
}

// uniqueNames suffixes names shared by observances that switch to a
// different offset or DST state.
func uniqueNames(obs []observance) {
	type key struct {
		to  time.Duration
		dst bool
	}
	used := map[string]key{}
	for i := range obs {
		k := key{obs[i].to, obs[i].dst}
		base := obs[i].name
		name := base
		for n := 1; ; n++ {
			prev, taken := used[name]
			if !taken || prev == k {
				break
			}
			name = base + "_" + strconv.Itoa(n)
		}
		used[name] = k
		obs[i].name = name
	}
}

func text(c *component.Component, name string) (string, error) {
	v, ok := c.Value(name)
	if !ok {
		return "", fmt.Errorf("%s is required", name)
	}
	switch t := v.(type) {
	case value.Text:
		return string(t), nil
	case value.Unknown:
		return t.Raw, nil
	}
	return "", fmt.Errorf("%s is not text", name)
}

// offset reads a UTC-OFFSET property rounded to whole minutes.
func offset(c *component.Component, name string) (time.Duration, error) {
	v, ok := c.Value(name)
	if !ok {
		return 0, fmt.Errorf("%s is required", name)
	}
	o, ok := v.(value.UTCOffset)
	if !ok {
		return 0, fmt.Errorf("%s is not a UTC offset", name)
	}
	return time.Duration(o).Round(time.Minute), nil
}
