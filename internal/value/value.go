// Package value is the property-value codec. It resolves a property name and
// an optional VALUE hint to a Kind, parses raw wire text into a typed Value
// and renders a Value back to wire text.
//
// Value is a closed sum type: every implementation lives in this package and
// the codec switches over all of them. Properties the codec does not know are
// carried as Unknown, and values that failed to parse inside a tolerant
// component are carried as Broken.
package value

import (
	"errors"
	"fmt"
	"time"
)

// ErrValueParse is wrapped by every value parse failure.
var ErrValueParse = errors.New("value parse error")

// ParseError reports raw text a value kind rejected.
type ParseError struct {
	Kind   Kind
	Raw    string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: invalid %s %q: %s", ErrValueParse, e.Kind, e.Raw, e.Reason)
}

func (e *ParseError) Unwrap() error { return ErrValueParse }

func parseErr(k Kind, raw, format string, args ...any) error {
	return &ParseError{Kind: k, Raw: raw, Reason: fmt.Sprintf(format, args...)}
}

// Value is a typed property value.
type Value interface {
	Kind() Kind
	isValue()
}

type (
	// Text is an unescaped TEXT value.
	Text string
	// Integer is a signed INTEGER.
	Integer int
	// Float is a FLOAT.
	Float float64
	// Boolean is TRUE or FALSE.
	Boolean bool
	// Binary holds decoded BINARY content; it is base64 on the wire.
	Binary []byte
	// CalAddress is a CAL-ADDRESS URI such as mailto:someone@example.com.
	CalAddress string
	// URI is kept verbatim.
	URI string
	// UTCOffset is a UTC-OFFSET, positive east of UTC.
	UTCOffset time.Duration
	// Categories is a comma separated TEXT list (CATEGORIES, RESOURCES).
	Categories []string
	// Organization is the vCard ORG structure: the name followed by units.
	Organization []string
)

// Date is a DATE without time or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate returns the calendar date of t in its own location.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// In returns midnight of the date in loc.
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// DateTime is a DATE-TIME. A value is UTC when it carries neither a TZID
// nor the Floating flag. For TZID values Time is the instant in the resolved
// zone; when the zone could not be resolved Time holds the wall clock in UTC.
// A parsed TZID value also keeps its written wall clock, which is what it
// renders.
type DateTime struct {
	Time     time.Time
	TZID     string
	Floating bool

	wall time.Time
}

// NewZoned returns a TZID value written as wall and resolved to instant.
// A zero instant leaves the wall clock in Time.
func NewZoned(wall time.Time, tzid string, instant time.Time) DateTime {
	w := wallUTC(wall)
	d := DateTime{Time: w, TZID: tzid, wall: w}
	if !instant.IsZero() {
		d.Time = instant
	}
	return d
}

// UTC reports whether the value renders with the Z suffix.
func (d DateTime) UTC() bool { return d.TZID == "" && !d.Floating }

// Wall returns the wall clock fields as a UTC time.
func (d DateTime) Wall() time.Time {
	if d.UTC() {
		return d.Time.UTC()
	}
	if d.TZID != "" && !d.wall.IsZero() {
		return d.wall
	}
	return wallUTC(d.Time)
}

// Equal compares wall clocks and zone identity.
func (d DateTime) Equal(o DateTime) bool {
	return d.TZID == o.TZID && d.Floating == o.Floating && d.Wall().Equal(o.Wall())
}

// Time is a TIME of day.
type Time struct {
	Hour, Minute, Second int
	UTC                  bool
}

// Duration is a DURATION in its written components, so that weeks and days
// survive a round trip.
type Duration struct {
	Negative bool
	Weeks    int
	Days     int
	Hours    int
	Minutes  int
	Seconds  int

	// zeroUnit is the designator a parsed all-zero duration was written
	// with, so that P0D does not come back as PT0S.
	zeroUnit byte
}

// FromDuration converts d into days, hours, minutes and seconds.
func FromDuration(d time.Duration) Duration {
	var out Duration
	if d < 0 {
		out.Negative = true
		d = -d
	}
	secs := int64(d / time.Second)
	out.Days = int(secs / 86400)
	secs %= 86400
	out.Hours = int(secs / 3600)
	secs %= 3600
	out.Minutes = int(secs / 60)
	out.Seconds = int(secs % 60)
	return out
}

// Std returns the nominal length, counting days as 24 hours.
func (d Duration) Std() time.Duration {
	total := time.Duration(d.Weeks)*7*24*time.Hour +
		time.Duration(d.Days)*24*time.Hour +
		time.Duration(d.Hours)*time.Hour +
		time.Duration(d.Minutes)*time.Minute +
		time.Duration(d.Seconds)*time.Second
	if d.Negative {
		return -total
	}
	return total
}

// Period is a PERIOD: an explicit end, or a duration when ByDuration is set.
type Period struct {
	Start      DateTime
	End        DateTime
	Duration   Duration
	ByDuration bool
}

// EndTime returns the end instant for either form.
func (p Period) EndTime() time.Time {
	if p.ByDuration {
		return p.Start.Time.Add(p.Duration.Std())
	}
	return p.End.Time
}

// Geo is a GEO latitude/longitude pair.
type Geo struct {
	Latitude  float64
	Longitude float64
}

// DateList is the comma separated list carried by RDATE and EXDATE. Items
// are Date, DateTime or Period values.
type DateList []Value

// Address is the vCard ADR structure.
type Address struct {
	POBox      string
	Extended   string
	Street     string
	Locality   string
	Region     string
	PostalCode string
	Country    string
}

// Name is the vCard N structure.
type Name struct {
	Family     string
	Given      string
	Additional string
	Prefix     string
	Suffix     string
}

// Unknown preserves the literal text of a property without a known default
// kind. KindName records an unrecognised VALUE hint, if there was one.
type Unknown struct {
	Raw      string
	KindName string
}

// Broken stands in for a value that failed to parse inside a tolerant
// component. Line is set when the whole content line could not be split;
// Raw then holds everything after the property name.
type Broken struct {
	Raw      string
	Intended Kind
	Err      error
	Line     bool
}

func (Text) Kind() Kind         { return KindText }
func (Integer) Kind() Kind      { return KindInteger }
func (Float) Kind() Kind        { return KindFloat }
func (Boolean) Kind() Kind      { return KindBoolean }
func (Binary) Kind() Kind       { return KindBinary }
func (CalAddress) Kind() Kind   { return KindCalAddress }
func (URI) Kind() Kind          { return KindURI }
func (Date) Kind() Kind         { return KindDate }
func (DateTime) Kind() Kind     { return KindDateTime }
func (Duration) Kind() Kind     { return KindDuration }
func (Period) Kind() Kind       { return KindPeriod }
func (Time) Kind() Kind         { return KindTime }
func (UTCOffset) Kind() Kind    { return KindUTCOffset }
func (Recur) Kind() Kind        { return KindRecur }
func (Geo) Kind() Kind          { return KindGeo }
func (Categories) Kind() Kind   { return KindCategories }
func (DateList) Kind() Kind     { return KindDateList }
func (Address) Kind() Kind      { return KindAddress }
func (Name) Kind() Kind         { return KindName }
func (Organization) Kind() Kind { return KindOrganization }
func (Unknown) Kind() Kind      { return KindUnknown }
func (b Broken) Kind() Kind     { return b.Intended }

func (Text) isValue()         {}
func (Integer) isValue()      {}
func (Float) isValue()        {}
func (Boolean) isValue()      {}
func (Binary) isValue()       {}
func (CalAddress) isValue()   {}
func (URI) isValue()          {}
func (Date) isValue()         {}
func (DateTime) isValue()     {}
func (Duration) isValue()     {}
func (Period) isValue()       {}
func (Time) isValue()         {}
func (UTCOffset) isValue()    {}
func (Recur) isValue()        {}
func (Geo) isValue()          {}
func (Categories) isValue()   {}
func (DateList) isValue()     {}
func (Address) isValue()      {}
func (Name) isValue()         {}
func (Organization) isValue() {}
func (Unknown) isValue()      {}
func (Broken) isValue()       {}

// IsBroken reports whether v is a Broken placeholder.
func IsBroken(v Value) bool {
	_, ok := v.(Broken)
	return ok
}
