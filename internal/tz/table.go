// Package tz turns VTIMEZONE components into transition tables, synthesizes
// VTIMEZONE components from Go locations and keeps the process-wide cache of
// known zones.
package tz

import (
	"errors"
	"sort"
	"time"
)

var (
	// ErrUnknownTimezone is returned when no provider or cached table knows
	// a TZID.
	ErrUnknownTimezone = errors.New("unknown timezone")
	// ErrInvalidTimezoneComponent is returned for a VTIMEZONE that cannot be
	// turned into a transition table.
	ErrInvalidTimezoneComponent = errors.New("invalid timezone component")
)

// Info is the offset in effect at some instant.
type Info struct {
	Offset time.Duration
	Name   string
	DST    bool
}

// Transition is one offset change.
type Transition struct {
	At   time.Time // UTC instant of the change
	From time.Duration
	To   time.Duration
	Name string
	DST  bool
	// Delta is the daylight saving amount relative to the nearest
	// standard offset. It is zero for transitions into standard time.
	Delta time.Duration
}

// Info returns the offset the transition switches to.
func (t Transition) Info() Info {
	return Info{Offset: t.To, Name: t.Name, DST: t.DST}
}

// Table is the sorted transition list of one zone.
type Table struct {
	TZID        string
	Transitions []Transition
	// Initial is in effect before the first transition.
	Initial Info
	// First and Last bound a synthesized table; both are zero for tables
	// read from a VTIMEZONE.
	First, Last time.Time
}

// Lookup returns the offset of the last transition at or before at.
func (t *Table) Lookup(at time.Time) Info {
	i := sort.Search(len(t.Transitions), func(i int) bool {
		return t.Transitions[i].At.After(at)
	})
	if i == 0 {
		return t.Initial
	}
	return t.Transitions[i-1].Info()
}

// Localize maps a wall clock in this zone to an instant. Wall clocks that
// fall into a gap are moved forward by the size of the gap; ambiguous wall
// clocks resolve to the earlier instant.
func (t *Table) Localize(wall time.Time) time.Time {
	inst := localize(ZoneFunc(t.Lookup), wall)
	info := t.Lookup(inst)
	return inst.In(time.FixedZone(info.Name, int(info.Offset/time.Second)))
}

// localize resolves wall against the offsets in force a day before and a
// day after it. Offset changes less than a day apart are not told apart.
func localize(z Zone, wall time.Time) time.Time {
	y, mo, d := wall.Date()
	h, mi, s := wall.Clock()
	u := time.Date(y, mo, d, h, mi, s, wall.Nanosecond(), time.UTC)

	before := z.At(u.Add(-24 * time.Hour)).Offset
	after := z.At(u.Add(24 * time.Hour)).Offset
	early, late := u.Add(-before), u.Add(-after)
	earlyOK := z.At(early).Offset == before
	lateOK := z.At(late).Offset == after
	switch {
	case earlyOK && lateOK:
		if late.Before(early) {
			return late
		}
		return early
	case lateOK:
		return late
	default:
		// in a gap the offset from before it moves the wall clock forward
		return early
	}
}

// normalize sorts transitions, drops repeated instants keeping the first
// one seen and fills in the DST deltas.
func (t *Table) normalize() {
	sort.SliceStable(t.Transitions, func(i, j int) bool {
		return t.Transitions[i].At.Before(t.Transitions[j].At)
	})
	out := t.Transitions[:0]
	for _, tr := range t.Transitions {
		if n := len(out); n > 0 && out[n-1].At.Equal(tr.At) {
			continue
		}
		out = append(out, tr)
	}
	t.Transitions = out

	for i := range t.Transitions {
		t.Transitions[i].Delta = t.dstDelta(i)
	}
}

// dstDelta compares a daylight transition against the closest standard
// one, searching backward first and then forward.
func (t *Table) dstDelta(i int) time.Duration {
	tr := t.Transitions[i]
	if !tr.DST {
		return 0
	}
	for j := i - 1; j >= 0; j-- {
		if !t.Transitions[j].DST {
			return tr.To - t.Transitions[j].To
		}
	}
	for j := i + 1; j < len(t.Transitions); j++ {
		if !t.Transitions[j].DST {
			return tr.To - t.Transitions[j].To
		}
	}
	return tr.To - tr.From
}
