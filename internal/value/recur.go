package value

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/teambition/rrule-go"
)

// recurOrder is the canonical output order of RECUR keys. Keys outside it
// (X- extensions) follow in their original order.
var recurOrder = []string{
	"RSCALE", "FREQ", "UNTIL", "COUNT", "INTERVAL",
	"BYSECOND", "BYMINUTE", "BYHOUR", "BYDAY", "BYMONTHDAY", "BYYEARDAY",
	"BYWEEKNO", "BYMONTH", "BYSETPOS", "WKST", "SKIP",
}

var (
	frequencies = map[string]bool{
		"SECONDLY": true, "HOURLY": true, "DAILY": true, "WEEKLY": true,
		"MINUTELY": true, "MONTHLY": true, "YEARLY": true,
	}
	skipValues   = map[string]bool{"OMIT": true, "BACKWARD": true, "FORWARD": true}
	weekdayRe    = regexp.MustCompile(`^([+-]?[0-9]{1,2})?(SU|MO|TU|WE|TH|FR|SA)$`)
	plainWeekday = regexp.MustCompile(`^(SU|MO|TU|WE|TH|FR|SA)$`)
	monthRe      = regexp.MustCompile(`^[0-9]{1,2}L?$`)
)

// rrule-go does not understand these keys; they are dropped before
// handing a rule to it.
var rruleUnsupported = map[string]bool{"RSCALE": true, "SKIP": true}

// RecurPart is one KEY=VALUE[,VALUE...] element of a RECUR value.
type RecurPart struct {
	Key    string
	Values []string
}

// Recur is a RECUR value kept as an ordered multimap of validated parts.
type Recur struct {
	Parts []RecurPart
}

// Get returns the values of key.
func (r Recur) Get(key string) []string {
	key = strings.ToUpper(key)
	for _, p := range r.Parts {
		if p.Key == key {
			return p.Values
		}
	}
	return nil
}

// Has reports whether key is present.
func (r Recur) Has(key string) bool { return r.Get(key) != nil }

// Set replaces or appends key.
func (r *Recur) Set(key string, values ...string) {
	key = strings.ToUpper(key)
	vs := append([]string(nil), values...)
	for i := range r.Parts {
		if r.Parts[i].Key == key {
			r.Parts[i].Values = vs
			return
		}
	}
	r.Parts = append(r.Parts, RecurPart{Key: key, Values: vs})
}

// Freq returns the FREQ value.
func (r Recur) Freq() string {
	if v := r.Get("FREQ"); len(v) > 0 {
		return v[0]
	}
	return ""
}

// Option converts the rule into an rrule-go option set. The rule's own
// start is not part of a RECUR value and has to be set by the caller.
func (r Recur) Option() (*rrule.ROption, error) {
	var parts []string
	for _, p := range r.canonical() {
		if rruleUnsupported[p.Key] || strings.HasPrefix(p.Key, "X-") {
			continue
		}
		parts = append(parts, p.Key+"="+strings.Join(p.Values, ","))
	}
	opt, err := rrule.StrToROption(strings.Join(parts, ";"))
	if err != nil {
		return nil, fmt.Errorf("recur %q: %w", renderRecur(r), err)
	}
	return opt, nil
}

func (r Recur) canonical() []RecurPart {
	out := make([]RecurPart, 0, len(r.Parts))
	for _, key := range recurOrder {
		for _, p := range r.Parts {
			if p.Key == key {
				out = append(out, p)
			}
		}
	}
	for _, p := range r.Parts {
		if !isRecurKey(p.Key) {
			out = append(out, p)
		}
	}
	return out
}

func isRecurKey(key string) bool {
	for _, k := range recurOrder {
		if k == key {
			return true
		}
	}
	return false
}

func parseRecur(raw string) (Value, error) {
	s := strings.TrimSpace(raw)
	var r Recur
	seen := map[string]bool{}
	for _, part := range strings.Split(s, ";") {
		if part == "" {
			continue
		}
		key, vals, ok := strings.Cut(part, "=")
		if !ok {
			return nil, parseErr(KindRecur, raw, "%q: '=' expected", part)
		}
		key = strings.ToUpper(strings.TrimSpace(key))
		if seen[key] {
			return nil, parseErr(KindRecur, raw, "duplicate key %s", key)
		}
		seen[key] = true
		values := strings.Split(vals, ",")
		if err := checkRecurPart(key, values); err != nil {
			return nil, parseErr(KindRecur, raw, "%s: %v", key, err)
		}
		r.Parts = append(r.Parts, RecurPart{Key: key, Values: values})
	}
	if !r.Has("FREQ") {
		return nil, parseErr(KindRecur, raw, "FREQ is required")
	}
	if r.Has("UNTIL") && r.Has("COUNT") {
		return nil, parseErr(KindRecur, raw, "UNTIL and COUNT are mutually exclusive")
	}
	return r, nil
}

// checkRecurPart validates and upper-cases enumerated values in place.
func checkRecurPart(key string, values []string) error {
	single := func() error {
		if len(values) != 1 {
			return fmt.Errorf("exactly one value expected")
		}
		return nil
	}
	switch key {
	case "FREQ":
		if err := single(); err != nil {
			return err
		}
		values[0] = strings.ToUpper(values[0])
		if !frequencies[values[0]] {
			return fmt.Errorf("unknown frequency %q", values[0])
		}
	case "UNTIL":
		if err := single(); err != nil {
			return err
		}
		switch detectDDD(values[0]) {
		case KindDate:
			_, err := parseDate(values[0])
			return err
		case KindDateTime:
			_, err := parseDateTime(values[0], "", nil)
			return err
		default:
			return fmt.Errorf("expected DATE or DATE-TIME")
		}
	case "COUNT", "INTERVAL":
		if err := single(); err != nil {
			return err
		}
		return checkInts(values, 1, 1<<31-1, false)
	case "BYSECOND":
		return checkInts(values, 0, 60, false)
	case "BYMINUTE":
		return checkInts(values, 0, 59, false)
	case "BYHOUR":
		return checkInts(values, 0, 23, false)
	case "BYMONTHDAY":
		return checkInts(values, 1, 31, true)
	case "BYYEARDAY", "BYSETPOS":
		return checkInts(values, 1, 366, true)
	case "BYWEEKNO":
		return checkInts(values, 1, 53, true)
	case "BYMONTH":
		for i, v := range values {
			values[i] = strings.ToUpper(v)
			if !monthRe.MatchString(values[i]) {
				return fmt.Errorf("invalid month %q", v)
			}
			n, _ := strconv.Atoi(strings.TrimSuffix(values[i], "L"))
			if n < 1 || n > 13 {
				return fmt.Errorf("month %q out of range", v)
			}
		}
	case "BYDAY":
		for i, v := range values {
			values[i] = strings.ToUpper(v)
			m := weekdayRe.FindStringSubmatch(values[i])
			if m == nil {
				return fmt.Errorf("invalid weekday %q", v)
			}
			if m[1] != "" {
				n, _ := strconv.Atoi(m[1])
				if n == 0 || n < -53 || n > 53 {
					return fmt.Errorf("weekday ordinal %q out of range", v)
				}
			}
		}
	case "WKST":
		if err := single(); err != nil {
			return err
		}
		values[0] = strings.ToUpper(values[0])
		if !plainWeekday.MatchString(values[0]) {
			return fmt.Errorf("invalid weekday %q", values[0])
		}
	case "SKIP":
		if err := single(); err != nil {
			return err
		}
		values[0] = strings.ToUpper(values[0])
		if !skipValues[values[0]] {
			return fmt.Errorf("invalid skip %q", values[0])
		}
	case "RSCALE":
		return single()
	default:
		if !strings.HasPrefix(key, "X-") {
			return fmt.Errorf("unknown key")
		}
	}
	return nil
}

func checkInts(values []string, lo, hi int, signed bool) error {
	for _, v := range values {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%q is not an integer", v)
		}
		if signed && n < 0 {
			n = -n
		} else if !signed && strings.HasPrefix(v, "-") {
			return fmt.Errorf("%q must not be negative", v)
		}
		if n < lo || n > hi {
			return fmt.Errorf("%q out of range", v)
		}
	}
	return nil
}

func renderRecur(r Recur) string {
	parts := r.canonical()
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = p.Key + "=" + strings.Join(p.Values, ",")
	}
	return strings.Join(out, ";")
}
