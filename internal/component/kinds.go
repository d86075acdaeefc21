package component

import "strings"

// Kind is the structural metadata of one component name.
type Kind struct {
	Name       string
	Required   []string
	Singletons []string
	// Exclusive pairs must not both be present.
	Exclusive [][2]string
	// Inclusive pairs: when the first is present the second is required.
	Inclusive [][2]string
	// Canonical is the serialization prefix order.
	Canonical []string
	// Tolerant components turn value parse failures into Broken values.
	Tolerant bool
}

var eventSingletons = []string{
	"CLASS", "CREATED", "DESCRIPTION", "DTSTART", "GEO", "LAST-MODIFIED",
	"LOCATION", "ORGANIZER", "PRIORITY", "DTSTAMP", "SEQUENCE", "STATUS",
	"SUMMARY", "TRANSP", "UID", "URL", "RECURRENCE-ID", "DTEND", "DURATION",
	"COLOR",
}

var kinds = map[string]Kind{
	"VCALENDAR": {
		Required: []string{"PRODID", "VERSION"},
		Singletons: []string{
			"PRODID", "VERSION", "CALSCALE", "METHOD", "UID", "LAST-MODIFIED",
			"URL", "REFRESH-INTERVAL", "SOURCE", "COLOR",
		},
		Canonical: []string{"VERSION", "PRODID", "CALSCALE", "METHOD"},
	},
	"VEVENT": {
		Required:   []string{"UID", "DTSTAMP"},
		Singletons: eventSingletons,
		Exclusive:  [][2]string{{"DTEND", "DURATION"}},
		Canonical: []string{
			"SUMMARY", "DTSTART", "DTEND", "DURATION", "DTSTAMP", "UID",
			"RECURRENCE-ID", "SEQUENCE", "RRULE", "RDATE", "EXDATE",
		},
		Tolerant: true,
	},
	"VTODO": {
		Required: []string{"UID", "DTSTAMP"},
		Singletons: []string{
			"CLASS", "COMPLETED", "CREATED", "DESCRIPTION", "DTSTAMP", "DTSTART",
			"GEO", "LAST-MODIFIED", "LOCATION", "ORGANIZER", "PERCENT-COMPLETE",
			"PRIORITY", "RECURRENCE-ID", "SEQUENCE", "STATUS", "SUMMARY", "UID",
			"URL", "DUE", "DURATION", "COLOR",
		},
		Exclusive: [][2]string{{"DUE", "DURATION"}},
		Inclusive: [][2]string{{"DURATION", "DTSTART"}},
		Canonical: []string{
			"SUMMARY", "DTSTART", "DUE", "DURATION", "DTSTAMP", "UID",
			"RECURRENCE-ID", "SEQUENCE", "RRULE", "RDATE", "EXDATE",
		},
		Tolerant: true,
	},
	"VJOURNAL": {
		Required: []string{"UID", "DTSTAMP"},
		Singletons: []string{
			"CLASS", "CREATED", "DTSTART", "DTSTAMP", "LAST-MODIFIED", "ORGANIZER",
			"RECURRENCE-ID", "SEQUENCE", "STATUS", "SUMMARY", "UID", "URL", "COLOR",
		},
		Canonical: []string{"SUMMARY", "DTSTART", "DTSTAMP", "UID", "RECURRENCE-ID", "SEQUENCE"},
		Tolerant:  true,
	},
	"VFREEBUSY": {
		Required: []string{"UID", "DTSTAMP"},
		Singletons: []string{
			"CONTACT", "DTSTART", "DTEND", "DTSTAMP", "ORGANIZER", "UID", "URL",
		},
		Canonical: []string{"DTSTART", "DTEND", "DTSTAMP", "UID"},
	},
	"VTIMEZONE": {
		Required:   []string{"TZID"},
		Singletons: []string{"TZID", "LAST-MODIFIED", "TZURL"},
		Canonical:  []string{"TZID"},
	},
	"STANDARD": tzRuleKind,
	"DAYLIGHT": tzRuleKind,
	"VALARM": {
		Required: []string{"ACTION", "TRIGGER"},
		Singletons: []string{
			"ACTION", "TRIGGER", "DURATION", "REPEAT", "DESCRIPTION", "SUMMARY",
			"ACKNOWLEDGED",
		},
		Inclusive: [][2]string{{"DURATION", "REPEAT"}, {"REPEAT", "DURATION"}},
		Canonical: []string{"ACTION", "TRIGGER"},
		Tolerant:  true,
	},
	"VAVAILABILITY": {
		Required: []string{"DTSTAMP", "UID"},
		Singletons: []string{
			"DTSTAMP", "UID", "BUSYTYPE", "CLASS", "CREATED", "DESCRIPTION",
			"DTSTART", "LAST-MODIFIED", "LOCATION", "ORGANIZER", "PRIORITY",
			"SEQUENCE", "SUMMARY", "URL", "DTEND", "DURATION",
		},
		Exclusive: [][2]string{{"DTEND", "DURATION"}},
		Inclusive: [][2]string{{"DURATION", "DTSTART"}},
		Canonical: []string{"DTSTART", "DTEND", "DURATION", "DTSTAMP", "UID"},
	},
	"AVAILABLE": {
		Required: []string{"DTSTAMP", "DTSTART", "UID"},
		Singletons: []string{
			"DTSTAMP", "DTSTART", "UID", "CREATED", "DESCRIPTION", "LAST-MODIFIED",
			"LOCATION", "RECURRENCE-ID", "RRULE", "SUMMARY", "DTEND", "DURATION",
		},
		Exclusive: [][2]string{{"DTEND", "DURATION"}},
		Canonical: []string{"DTSTART", "DTEND", "DURATION", "DTSTAMP", "UID"},
	},
}

var tzRuleKind = Kind{
	Required:   []string{"DTSTART", "TZOFFSETTO", "TZOFFSETFROM"},
	Singletons: []string{"DTSTART", "TZOFFSETTO", "TZOFFSETFROM"},
	Canonical:  []string{"DTSTART", "TZOFFSETTO", "TZOFFSETFROM", "TZNAME", "RRULE", "RDATE"},
}

// Lookup returns the metadata for a component name. Unregistered names get
// an empty, strict kind that still carries the name.
func Lookup(name string) Kind {
	name = strings.ToUpper(name)
	k, ok := kinds[name]
	if !ok {
		return Kind{Name: name}
	}
	k.Name = name
	return k
}

// Registered reports whether name has registered metadata.
func Registered(name string) bool {
	_, ok := kinds[strings.ToUpper(name)]
	return ok
}
