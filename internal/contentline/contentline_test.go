package contentline

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnfold(t *testing.T) {
	in := "BEGIN:VEVENT\r\nDESCRIPTION:This is a lo\r\n ng description\r\n\tthat goes on\r\nEND:VEVENT\r\n"
	lines := Unfold([]byte(in))
	require.Len(t, lines, 3)
	assert.Equal(t, "BEGIN:VEVENT", lines[0].Text)
	assert.Equal(t, "DESCRIPTION:This is a long descriptionthat goes on", lines[1].Text)
	assert.Equal(t, 2, lines[1].Num)
	assert.Equal(t, "END:VEVENT", lines[2].Text)
	assert.Equal(t, 5, lines[2].Num)
}

func TestUnfoldBareLFAndBlankLines(t *testing.T) {
	in := "\xEF\xBB\xBFA:1\n\nB:2\n\n C\nD:4"
	lines := Unfold([]byte(in))
	require.Len(t, lines, 3)
	assert.Equal(t, "A:1", lines[0].Text)
	assert.Equal(t, "B:2C", lines[1].Text)
	assert.Equal(t, "D:4", lines[2].Text)
}

func TestFoldUnfoldInverse(t *testing.T) {
	long := "DESCRIPTION:" + strings.Repeat("Grüße aus Köln – 東京 🎉 ", 12)
	for _, width := range []int{MinWidth, 6, 7, 10, 33, 74, DefaultWidth} {
		folded := Fold(long, width)
		for _, phys := range strings.Split(folded, "\r\n") {
			assert.LessOrEqual(t, len(phys), width, "width %d", width)
			assert.True(t, strings.ToValidUTF8(phys, "?") == phys, "split rune at width %d", width)
		}
		lines := Unfold([]byte(folded))
		require.Len(t, lines, 1)
		assert.Equal(t, long, lines[0].Text, "width %d", width)
	}
}

func TestFoldShortLineUntouched(t *testing.T) {
	assert.Equal(t, "UID:1", Fold("UID:1", DefaultWidth))
	exact := strings.Repeat("x", DefaultWidth)
	assert.Equal(t, exact, Fold(exact, DefaultWidth))
	assert.Equal(t, exact[:75]+"\r\n x", Fold(exact+"x", DefaultWidth))
}

func TestSplit(t *testing.T) {
	name, params, value, err := Line{Text: `ATTENDEE;CN="Doe, John";ROLE=REQ-PARTICIPANT;DELEGATED-TO="mailto:a@x","mailto:b@x":mailto:jd@x`}.Split()
	require.NoError(t, err)
	assert.Equal(t, "ATTENDEE", name)
	assert.Equal(t, "mailto:jd@x", value)
	cn, ok := params.Get("cn")
	require.True(t, ok)
	assert.Equal(t, "Doe, John", cn)
	assert.Equal(t, []string{"mailto:a@x", "mailto:b@x"}, params.Values("DELEGATED-TO"))
}

func TestSplitValueKeepsColons(t *testing.T) {
	name, params, value, err := Line{Text: "dtstart;tzid=Europe/Berlin:20210101T100000"}.Split()
	require.NoError(t, err)
	assert.Equal(t, "DTSTART", name)
	assert.Equal(t, "20210101T100000", value)
	tzid, _ := params.Get("TZID")
	assert.Equal(t, "Europe/Berlin", tzid)

	_, _, value, err = Line{Text: "URL:http://example.com:8080/a;b"}.Split()
	require.NoError(t, err)
	assert.Equal(t, "http://example.com:8080/a;b", value)
}

func TestSplitMalformed(t *testing.T) {
	cases := map[string]string{
		"no delimiter":    "JUSTANAME",
		"empty name":      ":value",
		"semicolon colon": "SUMMARY;:value",
		"unterminated":    `DESCRIPTION;ALTREP="cid:part1:value`,
		"bad param":       "SUMMARY;NOEQUALS:value",
		"bad name":        "SUM MARY:value",
		"bad param name":  "SUMMARY;A B=c:value",
	}
	for label, text := range cases {
		_, _, _, err := Line{Text: text, Num: 7}.Split()
		require.Error(t, err, label)
		assert.True(t, errors.Is(err, ErrMalformedLine), label)
		var le *LineError
		require.True(t, errors.As(err, &le), label)
		assert.Equal(t, 7, le.Num, label)
	}

	_, _, _, err := Line{Text: `DESCRIPTION;ALTREP="cid:part1:value`}.Split()
	var le *LineError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, "DESCRIPTION", le.Name)
}

func TestSplitEscapedDelimiterInName(t *testing.T) {
	_, _, _, err := Line{Text: `X-A\;B:v`}.Split()
	require.Error(t, err)
}

func TestParamsOrderAndOverwrite(t *testing.T) {
	p, err := ParseParams(`X-B=2;x-a=1;X-B=3`)
	require.NoError(t, err)
	require.Equal(t, 2, p.Len())
	list := p.List()
	assert.Equal(t, "X-B", list[0].Name)
	assert.Equal(t, []string{"3"}, list[0].Values)
	assert.Equal(t, "X-A", list[1].Name)
	assert.Equal(t, "X-B=3;X-A=1", p.String())
}

func TestParamsRendering(t *testing.T) {
	var p Params
	p.Set("cn", "Doe, John")
	p.Set("sent-by", "mailto:boss@x")
	p.Set("member", "mailto:a@x", "mailto:b@x")
	p.Set("x-note", "say \"hi\"\nnow")
	p.Set("role", "CHAIR")
	assert.Equal(t,
		`CN="Doe, John";SENT-BY="mailto:boss@x";MEMBER="mailto:a@x","mailto:b@x";X-NOTE="say ^'hi^'^nnow";ROLE=CHAIR`,
		p.String())

	back, err := ParseParams(p.String())
	require.NoError(t, err)
	assert.True(t, p.Equal(back))
}

func TestParamsDropUTCTimezone(t *testing.T) {
	p := NewParams("TZID", "UTC")
	assert.Equal(t, "", p.String())
	assert.Equal(t, "DTSTART:20210101T100000Z", Render("dtstart", p, "20210101T100000Z"))

	p.Set("TZID", "Europe/Berlin")
	assert.Equal(t, "DTSTART;TZID=Europe/Berlin:20210101T100000", Render("DTSTART", p, "20210101T100000"))
}

func TestParamsDelAndClone(t *testing.T) {
	p := NewParams("A", "1", "B", "2", "C", "3")
	c := p.Clone()
	p.Del("b")
	assert.Equal(t, "A=1;C=3", p.String())
	assert.Equal(t, "A=1;B=2;C=3", c.String())
	assert.False(t, p.Has("B"))
	assert.Nil(t, p.Values("B"))
}
