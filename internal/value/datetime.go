package value

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	layoutDate      = "20060102"
	layoutLocal     = "20060102T150405"
	layoutUTC       = "20060102T150405Z"
	layoutTime      = "150405"
	layoutTimeUTC   = "150405Z"
	utcTimezoneName = "UTC"
)

func parseDate(raw string) (Value, error) {
	s := strings.TrimSpace(raw)
	if len(s) != 8 || !allDigits(s) {
		return nil, parseErr(KindDate, raw, "expected YYYYMMDD")
	}
	t, err := time.Parse(layoutDate, s)
	if err != nil {
		return nil, parseErr(KindDate, raw, "%v", err)
	}
	return NewDate(t), nil
}

func renderDate(d Date) string {
	return fmt.Sprintf("%04d%02d%02d", d.Year, int(d.Month), d.Day)
}

// parseDateTime parses YYYYMMDDTHHMMSS[Z]. A TZID other than UTC is resolved
// through loc when one is available.
func parseDateTime(raw, tzid string, loc Localizer) (DateTime, error) {
	s := strings.TrimSpace(raw)
	utc := strings.HasSuffix(s, "Z")
	layout := layoutLocal
	if utc {
		layout = layoutUTC
	}
	if len(s) != len(layout) || !allDigits(s[:8]) || s[8] != 'T' || !allDigits(s[9:15]) {
		return DateTime{}, parseErr(KindDateTime, raw, "expected YYYYMMDDTHHMMSS[Z]")
	}
	wall, err := time.Parse(layout, s)
	if err != nil {
		return DateTime{}, parseErr(KindDateTime, raw, "%v", err)
	}
	switch {
	case utc, strings.EqualFold(tzid, utcTimezoneName):
		return DateTime{Time: wall.UTC()}, nil
	case tzid == "":
		return DateTime{Time: wall, Floating: true}, nil
	}
	var inst time.Time
	if loc != nil {
		if t, err := loc.Localize(wall, tzid); err == nil {
			inst = t
		}
	}
	return NewZoned(wall, tzid, inst), nil
}

func renderDateTime(d DateTime) string {
	if d.UTC() {
		return d.Time.UTC().Format(layoutUTC)
	}
	return d.Wall().Format(layoutLocal)
}

func parseTime(raw string) (Value, error) {
	s := strings.TrimSpace(raw)
	utc := strings.HasSuffix(s, "Z")
	layout := layoutTime
	if utc {
		layout = layoutTimeUTC
	}
	if len(s) != len(layout) || !allDigits(s[:6]) {
		return nil, parseErr(KindTime, raw, "expected HHMMSS[Z]")
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return nil, parseErr(KindTime, raw, "%v", err)
	}
	return Time{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second(), UTC: utc}, nil
}

func renderTime(t Time) string {
	s := fmt.Sprintf("%02d%02d%02d", t.Hour, t.Minute, t.Second)
	if t.UTC {
		s += "Z"
	}
	return s
}

var durationGrammar = regexp.MustCompile(`^([+-])?P(?:([0-9]+)W)?(?:([0-9]+)D)?(?:T(?:([0-9]+)H)?(?:([0-9]+)M)?(?:([0-9]+)S)?)?$`)

func parseDuration(raw string) (Duration, error) {
	s := strings.TrimSpace(raw)
	m := durationGrammar.FindStringSubmatch(s)
	if m == nil {
		return Duration{}, parseErr(KindDuration, raw, "expected [+-]P[nW][nD][T[nH][nM][nS]]")
	}
	if m[2] == "" && m[3] == "" && m[4] == "" && m[5] == "" && m[6] == "" {
		return Duration{}, parseErr(KindDuration, raw, "no duration components")
	}
	if strings.Contains(s, "T") && m[4] == "" && m[5] == "" && m[6] == "" {
		return Duration{}, parseErr(KindDuration, raw, "time designator without components")
	}
	var d Duration
	d.Negative = m[1] == "-"
	fields := []*int{&d.Weeks, &d.Days, &d.Hours, &d.Minutes, &d.Seconds}
	for i, f := range fields {
		if m[i+2] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+2])
		if err != nil {
			return Duration{}, parseErr(KindDuration, raw, "%v", err)
		}
		*f = n
	}
	if d.isZero() {
		for i := len(fields) - 1; i >= 0; i-- {
			if m[i+2] != "" {
				d.zeroUnit = "WDHMS"[i]
				break
			}
		}
	}
	return d, nil
}

func (d Duration) isZero() bool {
	return d.Weeks == 0 && d.Days == 0 && d.Hours == 0 && d.Minutes == 0 && d.Seconds == 0
}

func renderDuration(d Duration) string {
	var b strings.Builder
	if d.Negative {
		b.WriteByte('-')
	}
	b.WriteByte('P')
	if d.isZero() {
		switch d.zeroUnit {
		case 'W', 'D':
			b.WriteByte('0')
			b.WriteByte(d.zeroUnit)
		case 'H', 'M':
			b.WriteString("T0")
			b.WriteByte(d.zeroUnit)
		default:
			b.WriteString("T0S")
		}
		return b.String()
	}
	if d.Weeks != 0 {
		fmt.Fprintf(&b, "%dW", d.Weeks)
	}
	if d.Days != 0 {
		fmt.Fprintf(&b, "%dD", d.Days)
	}
	if d.Hours != 0 || d.Minutes != 0 || d.Seconds != 0 {
		b.WriteByte('T')
		if d.Hours != 0 {
			fmt.Fprintf(&b, "%dH", d.Hours)
		}
		if d.Minutes != 0 {
			fmt.Fprintf(&b, "%dM", d.Minutes)
		}
		if d.Seconds != 0 {
			fmt.Fprintf(&b, "%dS", d.Seconds)
		}
	}
	return b.String()
}

func parsePeriod(raw, tzid string, loc Localizer) (Period, error) {
	s := strings.TrimSpace(raw)
	start, end, ok := strings.Cut(s, "/")
	if !ok || strings.Contains(end, "/") {
		return Period{}, parseErr(KindPeriod, raw, "expected start/end or start/duration")
	}
	st, err := parseDateTime(start, tzid, loc)
	if err != nil {
		return Period{}, parseErr(KindPeriod, raw, "start: %v", err)
	}
	p := Period{Start: st}
	if detectDDD(end) == KindDuration {
		d, err := parseDuration(end)
		if err != nil {
			return Period{}, parseErr(KindPeriod, raw, "duration: %v", err)
		}
		if d.Negative || d.Std() <= 0 {
			return Period{}, parseErr(KindPeriod, raw, "duration must be positive")
		}
		p.Duration, p.ByDuration = d, true
		return p, nil
	}
	en, err := parseDateTime(end, tzid, loc)
	if err != nil {
		return Period{}, parseErr(KindPeriod, raw, "end: %v", err)
	}
	if !en.Time.After(st.Time) {
		return Period{}, parseErr(KindPeriod, raw, "end must be after start")
	}
	p.End = en
	return p, nil
}

func renderPeriod(p Period) string {
	if p.ByDuration {
		return renderDateTime(p.Start) + "/" + renderDuration(p.Duration)
	}
	return renderDateTime(p.Start) + "/" + renderDateTime(p.End)
}

var offsetGrammar = regexp.MustCompile(`^([+-])([0-9]{2})([0-9]{2})([0-9]{2})?$`)

func parseUTCOffset(raw string) (Value, error) {
	s := strings.TrimSpace(raw)
	m := offsetGrammar.FindStringSubmatch(s)
	if m == nil {
		return nil, parseErr(KindUTCOffset, raw, "expected [+-]HHMM[SS]")
	}
	h, _ := strconv.Atoi(m[2])
	mi, _ := strconv.Atoi(m[3])
	sec := 0
	if m[4] != "" {
		sec, _ = strconv.Atoi(m[4])
	}
	if h > 23 || mi > 59 || sec > 59 {
		return nil, parseErr(KindUTCOffset, raw, "component out of range")
	}
	off := time.Duration(h)*time.Hour + time.Duration(mi)*time.Minute + time.Duration(sec)*time.Second
	if m[1] == "-" {
		if off == 0 {
			return nil, parseErr(KindUTCOffset, raw, "negative zero offset is not allowed")
		}
		off = -off
	}
	return UTCOffset(off), nil
}

func renderUTCOffset(o UTCOffset) string {
	d := time.Duration(o)
	sign := '+'
	if d < 0 {
		sign = '-'
		d = -d
	}
	secs := int(d / time.Second)
	h, m, s := secs/3600, secs%3600/60, secs%60
	if s != 0 {
		return fmt.Sprintf("%c%02d%02d%02d", sign, h, m, s)
	}
	return fmt.Sprintf("%c%02d%02d", sign, h, m)
}
