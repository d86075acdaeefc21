package value

import (
	"fmt"
	"strings"
	"time"

	"icalcodec/internal/contentline"
)

// FromNative converts a Go value into the typed value of property name.
// Values that already implement Value are returned unchanged; strings are
// wrapped for text-like kinds and parsed for everything else.
func FromNative(name string, x any) (Value, error) {
	kind := Resolve(name, contentline.Params{})
	switch t := x.(type) {
	case Value:
		return t, nil
	case time.Time:
		return dateTimeFromTime(t), nil
	case []time.Time:
		out := make(DateList, len(t))
		for i, tt := range t {
			out[i] = dateTimeFromTime(tt)
		}
		return out, nil
	case time.Duration:
		if kind == KindUTCOffset {
			return UTCOffset(t), nil
		}
		return FromDuration(t), nil
	case int:
		return Integer(t), nil
	case int32:
		return Integer(t), nil
	case int64:
		return Integer(t), nil
	case float32:
		return Float(t), nil
	case float64:
		return Float(t), nil
	case bool:
		return Boolean(t), nil
	case []byte:
		return Binary(t), nil
	case []string:
		switch kind {
		case KindCategories:
			return Categories(t), nil
		case KindOrganization:
			return Organization(t), nil
		}
		return nil, fmt.Errorf("%s: a string list is not a %s value", strings.ToUpper(name), kind)
	case string:
		switch kind {
		case KindText:
			return Text(t), nil
		case KindCalAddress:
			return CalAddress(t), nil
		case KindURI:
			return URI(t), nil
		case KindUnknown:
			return Unknown{Raw: t}, nil
		case KindCategories:
			return Categories{t}, nil
		}
		return Parse(name, contentline.Params{}, t, Options{})
	case nil:
		return nil, fmt.Errorf("%s: nil value", strings.ToUpper(name))
	}
	return nil, fmt.Errorf("%s: unsupported Go type %T", strings.ToUpper(name), x)
}

// dateTimeFromTime keeps UTC as UTC and records the location name of any
// other zone as its TZID. time.Local becomes a floating value.
func dateTimeFromTime(t time.Time) DateTime {
	switch loc := t.Location(); {
	case loc == time.UTC:
		return DateTime{Time: t.Truncate(time.Second)}
	case loc == time.Local:
		return DateTime{Time: wallUTC(t), Floating: true}
	default:
		return DateTime{Time: t.Truncate(time.Second), TZID: loc.String()}
	}
}

func wallUTC(t time.Time) time.Time {
	y, mo, d := t.Date()
	h, mi, s := t.Clock()
	return time.Date(y, mo, d, h, mi, s, 0, time.UTC)
}
