package tz

import (
	"fmt"
	"time"

	"icalcodec/internal/component"
	"icalcodec/internal/contentline"
	"icalcodec/internal/value"
)

// Zone reports the offset in effect at an instant.
type Zone interface {
	At(t time.Time) Info
}

// ZoneFunc adapts a function to Zone.
type ZoneFunc func(time.Time) Info

func (f ZoneFunc) At(t time.Time) Info { return f(t) }

// LocationZone reads offsets from a Go location.
type LocationZone struct {
	Loc *time.Location
}

func (z LocationZone) At(t time.Time) Info {
	lt := t.In(z.Loc)
	name, off := lt.Zone()
	return Info{Offset: time.Duration(off) * time.Second, Name: name, DST: lt.IsDST()}
}

// synthMaxStep is the largest sampling step. An offset change that is
// undone within it can go unseen.
const synthMaxStep = 28 * 24 * time.Hour

// synthSteps are tried from largest to smallest to bracket each change.
var synthSteps = []time.Duration{
	synthMaxStep,
	7 * 24 * time.Hour,
	24 * time.Hour,
	time.Hour,
	time.Minute,
	time.Second,
}

// Synthesize samples zone between first and last and records every offset
// change found. A change reverted within synthMaxStep may be missed, so the
// result is an approximation meant only for that window.
func Synthesize(tzid string, zone Zone, first, last time.Time) (*Table, error) {
	if !first.Before(last) {
		return nil, fmt.Errorf("synthesize %s: empty horizon %s..%s", tzid, first.Format(time.RFC3339), last.Format(time.RFC3339))
	}
	first, last = first.UTC(), last.UTC()
	t := &Table{TZID: tzid, First: first, Last: last}
	cur := zone.At(first)
	t.Initial = cur

	at := first
	for at.Before(last) {
		advanced := false
		for _, step := range synthSteps {
			next := at.Add(step)
			if next.After(last) {
				continue
			}
			if zone.At(next) == cur {
				at = next
				advanced = true
				break
			}
		}
		if advanced {
			continue
		}
		next := at.Add(time.Second)
		if next.After(last) {
			break
		}
		info := zone.At(next)
		if info != cur {
			t.Transitions = append(t.Transitions, Transition{
				At: next, From: cur.Offset, To: info.Offset, Name: info.Name, DST: info.DST,
			})
			cur = info
		}
		at = next
	}
	t.normalize()
	return t, nil
}

// SynthesizeLocation synthesizes loc from January 1st of firstYear to
// January 1st of lastYear.
func SynthesizeLocation(loc *time.Location, firstYear, lastYear int) (*Table, error) {
	first := time.Date(firstYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(lastYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	return Synthesize(loc.String(), LocationZone{Loc: loc}, first, last)
}

type observanceKey struct {
	from, to time.Duration
	name     string
	dst      bool
}

// ToComponent renders the table as a VTIMEZONE. Transitions sharing the
// same offsets, name and DST state become one STANDARD or DAYLIGHT block:
// the first occurrence is its DTSTART and the rest are listed in RDATE.
// Synthesized tables carry a COMMENT naming their window and saying the
// table is approximate.
func (t *Table) ToComponent() *component.Component {
	c := component.New("VTIMEZONE")
	c.AddValue("TZID", value.Text(t.TZID), contentline.Params{})
	if !t.First.IsZero() {
		c.AddValue("COMMENT", value.Text(fmt.Sprintf(
			"Approximate transitions synthesized for %s to %s only. Offset changes reverted within %d days may be missing.",
			t.First.Format(time.RFC3339), t.Last.Format(time.RFC3339), int(synthMaxStep/(24*time.Hour)),
		)), contentline.Params{})
	}

	if len(t.Transitions) == 0 {
		start := t.First
		if start.IsZero() {
			start = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)
		}
		c.AddComponent(observanceComponent(start, Transition{
			From: t.Initial.Offset, To: t.Initial.Offset, Name: t.Initial.Name, DST: t.Initial.DST,
		}, nil))
		return c
	}

	var order []observanceKey
	groups := map[observanceKey][]Transition{}
	for _, tr := range t.Transitions {
		k := observanceKey{tr.From, tr.To, tr.Name, tr.DST}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], tr)
	}
	for _, k := range order {
		g := groups[k]
		c.AddComponent(observanceComponent(g[0].At, g[0], g[1:]))
	}
	return c
}

func observanceComponent(at time.Time, tr Transition, rest []Transition) *component.Component {
	name := "STANDARD"
	if tr.DST {
		name = "DAYLIGHT"
	}
	o := component.New(name)
	o.AddValue("DTSTART", localWall(at, tr.From), contentline.Params{})
	o.AddValue("TZOFFSETFROM", value.UTCOffset(tr.From), contentline.Params{})
	o.AddValue("TZOFFSETTO", value.UTCOffset(tr.To), contentline.Params{})
	if tr.Name != "" {
		o.AddValue("TZNAME", value.Text(tr.Name), contentline.Params{})
	}
	if len(rest) > 0 {
		list := make(value.DateList, len(rest))
		for i, r := range rest {
			list[i] = localWall(r.At, r.From)
		}
		o.AddValue("RDATE", list, contentline.Params{})
	}
	return o
}

// localWall is the floating wall clock of instant at in offset off.
func localWall(at time.Time, off time.Duration) value.DateTime {
	return value.DateTime{Time: at.UTC().Add(off), Floating: true}
}
