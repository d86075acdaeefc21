package value

import "strings"

// Kind identifies a property value kind. The set is closed; properties and
// VALUE hints the codec does not know end up as KindUnknown.
type Kind int

const (
	KindUnknown Kind = iota
	KindText
	KindInteger
	KindFloat
	KindBoolean
	KindBinary
	KindCalAddress
	KindURI
	KindDate
	KindDateTime
	KindDuration
	KindPeriod
	KindTime
	KindUTCOffset
	KindRecur
	KindGeo
	KindCategories
	KindDateList
	KindAddress
	KindName
	KindOrganization
)

var kindNames = map[Kind]string{
	KindUnknown:      "UNKNOWN",
	KindText:         "TEXT",
	KindInteger:      "INTEGER",
	KindFloat:        "FLOAT",
	KindBoolean:      "BOOLEAN",
	KindBinary:       "BINARY",
	KindCalAddress:   "CAL-ADDRESS",
	KindURI:          "URI",
	KindDate:         "DATE",
	KindDateTime:     "DATE-TIME",
	KindDuration:     "DURATION",
	KindPeriod:       "PERIOD",
	KindTime:         "TIME",
	KindUTCOffset:    "UTC-OFFSET",
	KindRecur:        "RECUR",
	KindGeo:          "GEO",
	KindCategories:   "CATEGORIES",
	KindDateList:     "DATE-LIST",
	KindAddress:      "ADR",
	KindName:         "N",
	KindOrganization: "ORG",
}

// valueParamKinds are the kinds a VALUE parameter may name (RFC 5545 3.2.20).
var valueParamKinds = map[string]Kind{
	"TEXT":        KindText,
	"INTEGER":     KindInteger,
	"FLOAT":       KindFloat,
	"BOOLEAN":     KindBoolean,
	"BINARY":      KindBinary,
	"CAL-ADDRESS": KindCalAddress,
	"URI":         KindURI,
	"DATE":        KindDate,
	"DATE-TIME":   KindDateTime,
	"DURATION":    KindDuration,
	"PERIOD":      KindPeriod,
	"TIME":        KindTime,
	"UTC-OFFSET":  KindUTCOffset,
	"RECUR":       KindRecur,
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "UNKNOWN"
}

// ValueName returns the VALUE parameter spelling of k, if it has one.
func (k Kind) ValueName() (string, bool) {
	for name, kind := range valueParamKinds {
		if kind == k {
			return name, true
		}
	}
	return "", false
}

// KindFromValueParam maps a VALUE parameter to a Kind.
func KindFromValueParam(name string) (Kind, bool) {
	k, ok := valueParamKinds[strings.ToUpper(strings.TrimSpace(name))]
	return k, ok
}

// KindFromName maps any kind name, including the structured ones, to a Kind.
func KindFromName(name string) (Kind, bool) {
	name = strings.ToUpper(strings.TrimSpace(name))
	for k, s := range kindNames {
		if s == name {
			return k, true
		}
	}
	return KindUnknown, false
}
