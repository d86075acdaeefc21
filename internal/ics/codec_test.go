package ics

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"icalcodec/internal/component"
	"icalcodec/internal/config"
	appLog "icalcodec/internal/log"
	"icalcodec/internal/tz"
	"icalcodec/internal/value"
)

func doc(ls ...string) []byte {
	return []byte(strings.Join(ls, "\r\n") + "\r\n")
}

func newCodec(t *testing.T, mutate func(*config.Config)) *Codec {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.SynthFirstYear, cfg.SynthLastYear = 2020, 2023
	if mutate != nil {
		mutate(cfg)
	}
	c, err := NewCodec(cfg, nil)
	require.NoError(t, err)
	return c
}

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	appLog.SetOutput(&buf)
	t.Cleanup(func() { appLog.SetOutput(nil) })
	return &buf
}

var sample = doc(
	"BEGIN:VCALENDAR",
	"VERSION:2.0",
	"PRODID:-//Example//Planner//EN",
	"BEGIN:VEVENT",
	"UID:plan@example.com",
	"DTSTAMP:20210101T000000Z",
	"DTSTART;TZID=Europe/Berlin:20210104T090000",
	"DTEND;TZID=Europe/Berlin:20210104T100000",
	"SUMMARY:Planning\\, weekly",
	"CATEGORIES:Work\\,Home,Family",
	"RRULE:FREQ=WEEKLY;COUNT=4",
	"END:VEVENT",
	"END:VCALENDAR",
)

func TestParseCalendar(t *testing.T) {
	c := newCodec(t, nil)
	cal, err := c.ParseCalendar(sample)
	require.NoError(t, err)
	ev := cal.Walk("VEVENT")[0]

	start := ev.Get("DTSTART").Value.(value.DateTime)
	assert.Equal(t, "Europe/Berlin", start.TZID)
	assert.True(t, start.Time.Equal(time.Date(2021, 1, 4, 8, 0, 0, 0, time.UTC)))
	assert.Equal(t, value.Categories{"Work,Home", "Family"}, ev.Get("CATEGORIES").Value)
	assert.Empty(t, c.Report([]*component.Component{cal}))
}

func TestParseCalendarRequiresOneCalendar(t *testing.T) {
	c := newCodec(t, nil)
	event := "BEGIN:VEVENT\r\nUID:1\r\nDTSTAMP:20210101T000000Z\r\nEND:VEVENT\r\n"
	for name, in := range map[string]string{
		"empty":      "",
		"two events": event + event,
		"event only": event,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := c.ParseCalendar([]byte(in))
			assert.True(t, errors.Is(err, component.ErrStructure), "got %v", err)
		})
	}
	comps, err := c.Parse([]byte(event + event))
	require.NoError(t, err)
	assert.Len(t, comps, 2)
}

func TestReportListsRecoveredProperties(t *testing.T) {
	logs := captureLog(t)
	c := newCodec(t, func(cfg *config.Config) { cfg.LogLevel = "debug" })
	comps, err := c.Parse(doc(
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:x",
		"BEGIN:VEVENT",
		"UID:1",
		"DTSTAMP:20210101T000000Z",
		"PRIORITY:urgent",
		`ATTENDEE;CN="Open:mailto:a@example.com`,
		"SUMMARY:ok",
		"END:VEVENT",
		"BEGIN:VTODO",
		"UID:2",
		"DTSTAMP:20210101T000000Z",
		"PERCENT-COMPLETE:half",
		"END:VTODO",
		"END:VCALENDAR",
	))
	require.NoError(t, err)

	issues := Report(comps)
	require.Len(t, issues, 3)
	assert.Equal(t, Issue{Component: "VEVENT", Property: "PRIORITY", Line: 7, Message: issues[0].Message}, issues[0])
	assert.Contains(t, issues[0].Message, "INTEGER")
	assert.Equal(t, "ATTENDEE", issues[1].Property)
	assert.Equal(t, 8, issues[1].Line)
	assert.Equal(t, "VTODO", issues[2].Component)
	assert.Equal(t, "PERCENT-COMPLETE", issues[2].Property)

	assert.Contains(t, logs.String(), "kept broken value")
	assert.Contains(t, logs.String(), "skipped malformed line")
}

func TestStrictComponentsFromConfig(t *testing.T) {
	logs := captureLog(t)
	c := newCodec(t, func(cfg *config.Config) { cfg.StrictComponents = []string{"vevent"} })
	_, err := c.Parse(doc(
		"BEGIN:VEVENT", "UID:1", "DTSTAMP:20210101T000000Z", "PRIORITY:urgent", "END:VEVENT",
	))
	require.Error(t, err)
	assert.True(t, errors.Is(err, value.ErrValueParse))
	assert.Contains(t, logs.String(), "ics parse failed")
}

func TestValidationFromConfig(t *testing.T) {
	missing := doc("BEGIN:VEVENT", "UID:1", "END:VEVENT")
	_, err := newCodec(t, nil).Parse(missing)
	assert.True(t, errors.Is(err, component.ErrValidation))

	_, err = newCodec(t, func(cfg *config.Config) { cfg.Validate = false }).Parse(missing)
	assert.NoError(t, err)
}

func TestSerializeUsesConfig(t *testing.T) {
	ev := component.New("VEVENT")
	_, _ = ev.Add("X-LONG", strings.Repeat("abcdefghij", 10))
	_, _ = ev.Add("UID", "1")
	_, _ = ev.Add("LOCATION", "Room 1")
	_, _ = ev.Add("DTSTART", value.Date{Year: 2021, Month: time.March, Day: 4})

	out, err := newCodec(t, func(cfg *config.Config) {
		cfg.FoldWidth = 40
		cfg.SortProperties = false
	}).Serialize(ev)
	require.NoError(t, err)
	phys := strings.Split(strings.TrimSuffix(string(out), "\r\n"), "\r\n")
	for _, l := range phys {
		assert.LessOrEqual(t, len(l), 40)
	}
	assert.Equal(t, "DTSTART;VALUE=DATE:20210304", phys[1])
	assert.Equal(t, "UID:1", phys[2])
	assert.True(t, strings.HasPrefix(phys[3], "X-LONG:"))

	out, err = newCodec(t, nil).Serialize(ev)
	require.NoError(t, err)
	assert.Contains(t, string(out), "UID:1\r\nLOCATION:Room 1\r\nX-LONG:")

	out, err = newCodec(t, func(cfg *config.Config) { cfg.InferValue = []string{} }).Serialize(ev)
	require.NoError(t, err)
	assert.Contains(t, string(out), "\r\nDTSTART:20210304\r\n")
}

func TestEmbeddedTimezoneResolves(t *testing.T) {
	c := newCodec(t, nil)
	cal, err := c.ParseCalendar(doc(
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:x",
		"BEGIN:VTIMEZONE",
		"TZID:Example/Plus3",
		"BEGIN:STANDARD",
		"DTSTART:19700101T000000",
		"TZOFFSETFROM:+0300",
		"TZOFFSETTO:+0300",
		"TZNAME:P3",
		"END:STANDARD",
		"END:VTIMEZONE",
		"BEGIN:VEVENT",
		"UID:1",
		"DTSTAMP:20210101T000000Z",
		"DTSTART;TZID=Example/Plus3:20210601T120000",
		"END:VEVENT",
		"END:VCALENDAR",
	))
	require.NoError(t, err)
	start := cal.Walk("VEVENT")[0].Get("DTSTART").Value.(value.DateTime)
	assert.True(t, start.Time.Equal(time.Date(2021, 6, 1, 9, 0, 0, 0, time.UTC)))
	_, ok := c.Cache().Get("Example/Plus3")
	assert.True(t, ok)
}

func TestAddMissingTimezones(t *testing.T) {
	c := newCodec(t, nil)
	cal, err := c.ParseCalendar(sample)
	require.NoError(t, err)
	require.NoError(t, c.AddMissingTimezones(cal))

	require.Len(t, cal.Children, 2)
	vtz := cal.Children[0]
	assert.Equal(t, "VTIMEZONE", vtz.Name)
	assert.Equal(t, value.Text("Europe/Berlin"), vtz.Get("TZID").Value)
	assert.NoError(t, cal.ValidateTree())

	// idempotent
	require.NoError(t, c.AddMissingTimezones(cal))
	assert.Len(t, cal.Children, 2)

	out, err := c.Serialize(cal)
	require.NoError(t, err)
	again, err := c.ParseCalendar(out)
	require.NoError(t, err)
	assert.Len(t, again.Walk("DAYLIGHT"), 1)
	assert.Len(t, again.Walk("STANDARD"), 1)

	ev := component.New("VEVENT")
	p, _ := ev.Add("DTSTART", time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC))
	p.Params.Set("TZID", "Nowhere/Special")
	wrapper := component.New("VCALENDAR")
	wrapper.AddComponent(ev)
	assert.True(t, errors.Is(c.AddMissingTimezones(wrapper), tz.ErrUnknownTimezone))
}

func TestNewCodecRejectsBadInference(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.InferValue = []string{"NOPE"}
	_, err := NewCodec(cfg, tz.NewCache(nil, 0))
	assert.Error(t, err)

	c, err := NewCodec(nil, tz.Shared())
	require.NoError(t, err)
	assert.Same(t, tz.Shared(), c.Cache())
}

func TestZonedWallClockSurvivesRoundTrip(t *testing.T) {
	usRules := []string{
		"BEGIN:STANDARD",
		"DTSTART:19701101T020000",
		"RRULE:FREQ=YEARLY;BYMONTH=11;BYDAY=1SU",
		"TZOFFSETFROM:-0400",
		"TZOFFSETTO:-0500",
		"TZNAME:EST",
		"END:STANDARD",
		"BEGIN:DAYLIGHT",
		"DTSTART:19700308T020000",
		"RRULE:FREQ=YEARLY;BYMONTH=3;BYDAY=2SU",
		"TZOFFSETFROM:-0500",
		"TZOFFSETTO:-0400",
		"TZNAME:EDT",
		"END:DAYLIGHT",
	}
	calendar := func(tzid string, embed bool) []byte {
		ls := []string{"BEGIN:VCALENDAR", "VERSION:2.0", "PRODID:x"}
		if embed {
			ls = append(ls, "BEGIN:VTIMEZONE", "TZID:"+tzid)
			ls = append(ls, usRules...)
			ls = append(ls, "END:VTIMEZONE")
		}
		return doc(append(ls,
			"BEGIN:VEVENT",
			"UID:1",
			"DTSTAMP:20210101T000000Z",
			"DTSTART;TZID="+tzid+":20210314T023000",
			"DTEND;TZID="+tzid+":20211107T013000",
			"END:VEVENT",
			"END:VCALENDAR",
		)...)
	}

	for name, in := range map[string][]byte{
		"system zone":   calendar("America/New_York", false),
		"embedded zone": calendar("Custom/Zone", true),
	} {
		t.Run(name, func(t *testing.T) {
			c := newCodec(t, nil)
			cal, err := c.ParseCalendar(in)
			require.NoError(t, err)
			ev := cal.Walk("VEVENT")[0]

			start := ev.Get("DTSTART").Value.(value.DateTime)
			assert.True(t, start.Time.Equal(time.Date(2021, 3, 14, 7, 30, 0, 0, time.UTC)), "start %s", start.Time.UTC())
			end := ev.Get("DTEND").Value.(value.DateTime)
			assert.True(t, end.Time.Equal(time.Date(2021, 11, 7, 5, 30, 0, 0, time.UTC)), "end %s", end.Time.UTC())

			out, err := c.Serialize(cal)
			require.NoError(t, err)
			assert.Contains(t, string(out), ":20210314T023000\r\n")
			assert.Contains(t, string(out), ":20211107T013000\r\n")
		})
	}
}

func TestParseCompletionLoggedAtDebugOnly(t *testing.T) {
	logs := captureLog(t)
	c := newCodec(t, nil)
	_, err := c.Parse(sample)
	require.NoError(t, err)
	assert.NotContains(t, logs.String(), "ics parse completed")

	c = newCodec(t, func(cfg *config.Config) { cfg.LogLevel = "DEBUG" })
	_, err = c.Parse(sample)
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "ics parse completed")
	assert.Contains(t, logs.String(), "issues=0")
}
