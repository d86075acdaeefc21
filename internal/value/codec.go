package value

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"icalcodec/internal/contentline"
	"icalcodec/internal/escape"
)

// Localizer turns a wall clock in a named zone into an instant.
type Localizer interface {
	Localize(wall time.Time, tzid string) (time.Time, error)
}

// DefaultInference is the set of kinds for which Encode adds a VALUE
// parameter when the value's kind differs from the property default.
var DefaultInference = map[Kind]bool{
	KindDate:     true,
	KindDateTime: true,
	KindTime:     true,
	KindPeriod:   true,
	KindDuration: true,
}

// Options configure parsing and encoding.
type Options struct {
	// Localizer resolves TZID parameters. Without one, zoned values keep
	// their wall clock and TZID unresolved.
	Localizer Localizer
	// Infer overrides DefaultInference when non-nil.
	Infer map[Kind]bool
}

func (o Options) infer(k Kind) bool {
	if o.Infer != nil {
		return o.Infer[k]
	}
	return DefaultInference[k]
}

// Parse resolves the kind of a property and parses its raw value.
func Parse(name string, params contentline.Params, raw string, opts Options) (Value, error) {
	name = strings.ToUpper(name)
	kind := Resolve(name, params)
	if dddProperties[name] && !params.Has("VALUE") {
		kind = detectDDD(raw)
	}
	if kind == KindUnknown {
		hint, _ := params.Get("VALUE")
		return Unknown{Raw: raw, KindName: hint}, nil
	}
	return ParseKind(kind, raw, params, opts)
}

// ParseKind parses raw as the given kind.
func ParseKind(kind Kind, raw string, params contentline.Params, opts Options) (Value, error) {
	tzid, _ := params.Get("TZID")
	switch kind {
	case KindText:
		return Text(escape.UnescapeText(raw)), nil
	case KindInteger:
		return parseInteger(raw)
	case KindFloat:
		return parseFloat(raw)
	case KindBoolean:
		return parseBoolean(raw)
	case KindBinary:
		return parseBinary(raw)
	case KindCalAddress:
		return CalAddress(raw), nil
	case KindURI:
		return URI(raw), nil
	case KindDate:
		return parseDate(raw)
	case KindDateTime:
		return parseDateTime(raw, tzid, opts.Localizer)
	case KindDuration:
		return parseDuration(raw)
	case KindPeriod:
		return parsePeriod(raw, tzid, opts.Localizer)
	case KindTime:
		return parseTime(raw)
	case KindUTCOffset:
		return parseUTCOffset(raw)
	case KindRecur:
		return parseRecur(raw)
	case KindGeo:
		return parseGeo(raw)
	case KindCategories:
		return parseCategories(raw), nil
	case KindDateList:
		item := KindUnknown
		if v, ok := params.Get("VALUE"); ok {
			if k, ok := KindFromValueParam(v); ok {
				item = k
			}
		}
		return parseDateList(raw, item, tzid, opts.Localizer)
	case KindAddress:
		return parseAddress(raw)
	case KindName:
		return parseName(raw)
	case KindOrganization:
		return parseOrganization(raw)
	case KindUnknown:
		hint, _ := params.Get("VALUE")
		return Unknown{Raw: raw, KindName: hint}, nil
	}
	return nil, parseErr(kind, raw, "unsupported kind")
}

// Render returns the wire text of v.
func Render(v Value) (string, error) {
	switch t := v.(type) {
	case Text:
		return escape.EscapeText(string(t)), nil
	case Integer:
		return fmt.Sprintf("%d", int(t)), nil
	case Float:
		return formatFloat(float64(t)), nil
	case Boolean:
		return renderBoolean(t), nil
	case Binary:
		return base64.StdEncoding.EncodeToString(t), nil
	case CalAddress:
		return string(t), nil
	case URI:
		return string(t), nil
	case Date:
		return renderDate(t), nil
	case DateTime:
		return renderDateTime(t), nil
	case Duration:
		return renderDuration(t), nil
	case Period:
		return renderPeriod(t), nil
	case Time:
		return renderTime(t), nil
	case UTCOffset:
		return renderUTCOffset(t), nil
	case Recur:
		return renderRecur(t), nil
	case Geo:
		return renderGeo(t), nil
	case Categories:
		return escape.JoinText(t, ","), nil
	case DateList:
		items := make([]string, len(t))
		for i, it := range t {
			s, err := Render(it)
			if err != nil {
				return "", err
			}
			items[i] = s
		}
		return strings.Join(items, ","), nil
	case Address:
		return renderAddress(t), nil
	case Name:
		return renderName(t), nil
	case Organization:
		return escape.JoinText(t, ";"), nil
	case Unknown:
		return t.Raw, nil
	case Broken:
		return t.Raw, nil
	case nil:
		return "", fmt.Errorf("render: nil value")
	}
	return "", fmt.Errorf("render: unsupported value %T", v)
}

// Encode renders v for property name and returns the parameters to write
// with it. An explicit VALUE parameter is kept; otherwise one is added when
// the value's kind differs from the property default and the kind is in the
// inference table. TZID follows the zone of date-time values.
func Encode(name string, v Value, params contentline.Params, opts Options) (string, contentline.Params, error) {
	out := params.Clone()
	raw, err := Render(v)
	if err != nil {
		return "", out, fmt.Errorf("%s: %w", strings.ToUpper(name), err)
	}

	switch t := v.(type) {
	case Broken, Unknown:
		return raw, out, nil
	case DateTime:
		setTZID(&out, t)
	case Period:
		setTZID(&out, t.Start)
	case DateList:
		if tz := t.tzid(); tz != "" {
			out.Set("TZID", tz)
		} else {
			out.Del("TZID")
		}
	case Binary:
		if !out.Has("ENCODING") {
			out.Set("ENCODING", "BASE64")
		}
		if !out.Has("VALUE") {
			out.Set("VALUE", "BINARY")
		}
	}

	if out.Has("VALUE") {
		return raw, out, nil
	}
	kind := v.Kind()
	if l, ok := v.(DateList); ok {
		kind = l.itemKind()
	}
	def, known := DefaultKind(name)
	if known && kind != def && opts.infer(kind) {
		if vn, ok := kind.ValueName(); ok {
			out.Set("VALUE", vn)
		}
	}
	return raw, out, nil
}

func setTZID(p *contentline.Params, d DateTime) {
	if d.TZID != "" {
		p.Set("TZID", d.TZID)
		return
	}
	p.Del("TZID")
}

// Equal compares two values by kind and content. Date-times compare by wall
// clock and zone identity.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case DateTime:
		y, ok := b.(DateTime)
		return ok && x.Equal(y)
	case Period:
		y, ok := b.(Period)
		if !ok || !x.Start.Equal(y.Start) || x.ByDuration != y.ByDuration {
			return false
		}
		if x.ByDuration {
			return x.Duration == y.Duration
		}
		return x.End.Equal(y.End)
	case DateList:
		y, ok := b.(DateList)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case Binary:
		y, ok := b.(Binary)
		return ok && bytes.Equal(x, y)
	case Broken:
		y, ok := b.(Broken)
		return ok && x.Raw == y.Raw && x.Line == y.Line
	}
	ra, err1 := Render(a)
	rb, err2 := Render(b)
	return err1 == nil && err2 == nil && ra == rb
}
