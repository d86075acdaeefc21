package value

import (
	"strings"

	"icalcodec/internal/contentline"
)

// fixedKinds are used regardless of any VALUE parameter.
var fixedKinds = map[string]Kind{
	"RDATE":      KindDateList,
	"EXDATE":     KindDateList,
	"CATEGORIES": KindCategories,
	"RESOURCES":  KindCategories,
	"GEO":        KindGeo,
	"ADR":        KindAddress,
	"N":          KindName,
	"ORG":        KindOrganization,
}

// defaultKinds lists the RFC 5545/7986/9073 default value kind of each
// property.
var defaultKinds = map[string]Kind{
	// calendar
	"CALSCALE": KindText,
	"METHOD":   KindText,
	"PRODID":   KindText,
	"VERSION":  KindText,
	// descriptive
	"ATTACH":           KindURI,
	"CLASS":            KindText,
	"COMMENT":          KindText,
	"DESCRIPTION":      KindText,
	"LOCATION":         KindText,
	"PERCENT-COMPLETE": KindInteger,
	"PRIORITY":         KindInteger,
	"STATUS":           KindText,
	"SUMMARY":          KindText,
	// date and time
	"COMPLETED":     KindDateTime,
	"DTEND":         KindDateTime,
	"DUE":           KindDateTime,
	"DTSTART":       KindDateTime,
	"DURATION":      KindDuration,
	"FREEBUSY":      KindPeriod,
	"TRANSP":        KindText,
	"RECURRENCE-ID": KindDateTime,
	// time zone
	"TZID":         KindText,
	"TZNAME":       KindText,
	"TZOFFSETFROM": KindUTCOffset,
	"TZOFFSETTO":   KindUTCOffset,
	"TZURL":        KindURI,
	// relationship
	"ATTENDEE":   KindCalAddress,
	"CONTACT":    KindText,
	"ORGANIZER":  KindCalAddress,
	"RELATED-TO": KindText,
	"URL":        KindURI,
	"UID":        KindText,
	// recurrence
	"EXRULE": KindRecur,
	"RRULE":  KindRecur,
	// alarm
	"ACTION":       KindText,
	"REPEAT":       KindInteger,
	"TRIGGER":      KindDuration,
	"ACKNOWLEDGED": KindDateTime,
	// change management
	"CREATED":       KindDateTime,
	"DTSTAMP":       KindDateTime,
	"LAST-MODIFIED": KindDateTime,
	"SEQUENCE":      KindInteger,
	// misc
	"REQUEST-STATUS": KindText,
	// RFC 7986
	"NAME":             KindText,
	"REFRESH-INTERVAL": KindDuration,
	"SOURCE":           KindURI,
	"COLOR":            KindText,
	"IMAGE":            KindURI,
	"CONFERENCE":       KindURI,
	// RFC 7953
	"BUSYTYPE": KindText,
}

// dddProperties accept a DATE, DATE-TIME, PERIOD or DURATION without a VALUE
// hint; the kind is then detected from the shape of the text.
var dddProperties = map[string]bool{
	"DTSTART":       true,
	"DTEND":         true,
	"DUE":           true,
	"RECURRENCE-ID": true,
	"TRIGGER":       true,
}

// Resolve picks the kind for a property. Fixed list properties win, then an
// explicit and recognised VALUE parameter, then the property default. Anything
// else is KindUnknown.
func Resolve(name string, params contentline.Params) Kind {
	name = strings.ToUpper(name)
	if k, ok := fixedKinds[name]; ok {
		return k
	}
	if v, ok := params.Get("VALUE"); ok {
		if k, ok := KindFromValueParam(v); ok {
			return k
		}
	}
	if k, ok := defaultKinds[name]; ok {
		return k
	}
	return KindUnknown
}

// DefaultKind returns the kind a property has without any VALUE parameter,
// and whether the property is known at all. Date lists report DATE-TIME,
// the default of their items.
func DefaultKind(name string) (Kind, bool) {
	name = strings.ToUpper(name)
	if k, ok := fixedKinds[name]; ok {
		if k == KindDateList {
			return KindDateTime, true
		}
		return k, true
	}
	k, ok := defaultKinds[name]
	return k, ok
}

// detectDDD guesses the kind of a date/time-like value from its text.
func detectDDD(raw string) Kind {
	s := strings.TrimSpace(raw)
	switch {
	case strings.Contains(s, "/"):
		return KindPeriod
	case strings.HasPrefix(s, "P"), strings.HasPrefix(s, "-P"), strings.HasPrefix(s, "+P"):
		return KindDuration
	case len(s) == 8 && allDigits(s):
		return KindDate
	case (len(s) == 6 && allDigits(s)) || (len(s) == 7 && allDigits(s[:6]) && s[6] == 'Z'):
		return KindTime
	default:
		return KindDateTime
	}
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}
