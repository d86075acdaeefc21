package ics

import (
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	goical "github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"icalcodec/internal/value"
)

func TestToGolangICal(t *testing.T) {
	c := newCodec(t, nil)
	cal, err := c.ParseCalendar(sample)
	require.NoError(t, err)

	out, err := c.ToGolangICal(cal)
	require.NoError(t, err)
	events := out.Events()
	require.Len(t, events, 1)
	ve := events[0]

	assert.Equal(t, "plan@example.com", ve.GetProperty(ical.ComponentPropertyUniqueId).Value)
	start := ve.GetProperty(ical.ComponentPropertyDtStart)
	require.NotNil(t, start)
	assert.Equal(t, "20210104T090000", start.Value)
	assert.Equal(t, []string{"Europe/Berlin"}, start.ICalParameters["TZID"])
	assert.Equal(t, "FREQ=WEEKLY;COUNT=4", ve.GetProperty(ical.ComponentPropertyRrule).Value)
}

func TestFromGolangICal(t *testing.T) {
	src := ical.NewCalendar()
	ve := src.AddEvent("lunch@example.com")
	ve.SetSummary("Lunch, then coffee")
	ve.SetDtStampTime(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC))
	ve.SetStartAt(time.Date(2021, 3, 2, 12, 30, 0, 0, time.UTC))

	c := newCodec(t, nil)
	cal, err := c.FromGolangICal(src)
	require.NoError(t, err)
	ev := cal.Walk("VEVENT")
	require.Len(t, ev, 1)

	assert.Equal(t, value.Text("lunch@example.com"), ev[0].Get("UID").Value)
	assert.Equal(t, value.Text("Lunch, then coffee"), ev[0].Get("SUMMARY").Value)
	start := ev[0].Get("DTSTART").Value.(value.DateTime)
	assert.True(t, start.UTC())
	assert.True(t, start.Time.Equal(time.Date(2021, 3, 2, 12, 30, 0, 0, time.UTC)))

	_, err = c.FromGolangICal(nil)
	assert.Error(t, err)
}

func TestToGoICal(t *testing.T) {
	c := newCodec(t, nil)
	cal, err := c.ParseCalendar(sample)
	require.NoError(t, err)

	out, err := c.ToGoICal(cal)
	require.NoError(t, err)
	events := out.Events()
	require.Len(t, events, 1)

	summary, err := events[0].Props.Text(goical.PropSummary)
	require.NoError(t, err)
	assert.Equal(t, "Planning, weekly", summary)

	start, err := events[0].Props.DateTime(goical.PropDateTimeStart, time.UTC)
	require.NoError(t, err)
	assert.True(t, start.Equal(time.Date(2021, 1, 4, 8, 0, 0, 0, time.UTC)))
}

func TestFromGoICal(t *testing.T) {
	src := goical.NewCalendar()
	src.Props.SetText(goical.PropVersion, "2.0")
	src.Props.SetText(goical.PropProductID, "-//icalcodec//EN")

	ve := goical.NewComponent(goical.CompEvent)
	ve.Props.SetText(goical.PropUID, "sync@example.com")
	ve.Props.SetText(goical.PropSummary, "Review; notes, slides")
	ve.Props.SetDateTime(goical.PropDateTimeStamp, time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC))
	ve.Props.SetDateTime(goical.PropDateTimeStart, time.Date(2021, 5, 6, 7, 0, 0, 0, time.UTC))
	src.Children = append(src.Children, ve)

	c := newCodec(t, nil)
	cal, err := c.FromGoICal(src)
	require.NoError(t, err)
	ev := cal.Walk("VEVENT")
	require.Len(t, ev, 1)
	assert.Equal(t, value.Text("Review; notes, slides"), ev[0].Get("SUMMARY").Value)
	start := ev[0].Get("DTSTART").Value.(value.DateTime)
	assert.True(t, start.Time.Equal(time.Date(2021, 5, 6, 7, 0, 0, 0, time.UTC)))

	// and back again
	again, err := c.ToGoICal(cal)
	require.NoError(t, err)
	uid, err := again.Events()[0].Props.Text(goical.PropUID)
	require.NoError(t, err)
	assert.Equal(t, "sync@example.com", uid)

	_, err = c.FromGoICal(nil)
	assert.Error(t, err)
}
