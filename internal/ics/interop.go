package ics

import (
	"bytes"
	"fmt"

	ical "github.com/arran4/golang-ical"
	goical "github.com/emersion/go-ical"

	"icalcodec/internal/component"
)

// The conversions below move whole calendars between this codec and the
// two common Go calendar models through the wire format, so every value
// keeps its exact text.

// ToGolangICal converts cal into a github.com/arran4/golang-ical calendar.
func (c *Codec) ToGolangICal(cal *component.Component) (*ical.Calendar, error) {
	data, err := c.Serialize(cal)
	if err != nil {
		return nil, err
	}
	out, err := ical.ParseCalendar(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("golang-ical: %w", err)
	}
	return out, nil
}

// FromGolangICal parses a github.com/arran4/golang-ical calendar.
func (c *Codec) FromGolangICal(cal *ical.Calendar) (*component.Component, error) {
	if cal == nil {
		return nil, fmt.Errorf("golang-ical: nil calendar")
	}
	return c.ParseCalendar([]byte(cal.Serialize()))
}

// ToGoICal converts cal into a github.com/emersion/go-ical calendar.
func (c *Codec) ToGoICal(cal *component.Component) (*goical.Calendar, error) {
	data, err := c.Serialize(cal)
	if err != nil {
		return nil, err
	}
	out, err := goical.NewDecoder(bytes.NewReader(data)).Decode()
	if err != nil {
		return nil, fmt.Errorf("go-ical: %w", err)
	}
	return out, nil
}

// FromGoICal parses a github.com/emersion/go-ical calendar.
func (c *Codec) FromGoICal(cal *goical.Calendar) (*component.Component, error) {
	if cal == nil || cal.Component == nil {
		return nil, fmt.Errorf("go-ical: nil calendar")
	}
	var buf bytes.Buffer
	if err := goical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("go-ical: %w", err)
	}
	return c.ParseCalendar(buf.Bytes())
}
