package value

import (
	"strconv"
	"strings"

	"icalcodec/internal/escape"
)

func parseGeo(raw string) (Value, error) {
	lat, lon, ok := strings.Cut(strings.TrimSpace(raw), ";")
	if !ok {
		return nil, parseErr(KindGeo, raw, "expected float;float")
	}
	la, err1 := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	lo, err2 := strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if err1 != nil || err2 != nil {
		return nil, parseErr(KindGeo, raw, "expected float;float")
	}
	if la < -90 || la > 90 || lo < -180 || lo > 180 {
		return nil, parseErr(KindGeo, raw, "coordinates out of range")
	}
	return Geo{Latitude: la, Longitude: lo}, nil
}

func renderGeo(g Geo) string {
	return formatFloat(g.Latitude) + ";" + formatFloat(g.Longitude)
}

func parseCategories(raw string) Value {
	return Categories(escape.SplitText(raw, ','))
}

func parseAddress(raw string) (Value, error) {
	f := escape.SplitText(raw, ';')
	if len(f) != 7 {
		return nil, parseErr(KindAddress, raw, "expected 7 fields, got %d", len(f))
	}
	return Address{
		Street: f[2], POBox: f[0], Extended: f[1], Locality: f[3],
		Region: f[4], PostalCode: f[5], Country: f[6],
	}, nil
}

func renderAddress(a Address) string {
	return escape.JoinText([]string{
		a.POBox, a.Extended, a.Street, a.Locality, a.Region, a.PostalCode, a.Country,
	}, ";")
}

func parseName(raw string) (Value, error) {
	f := escape.SplitText(raw, ';')
	if len(f) != 5 {
		return nil, parseErr(KindName, raw, "expected 5 fields, got %d", len(f))
	}
	return Name{Family: f[0], Given: f[1], Additional: f[2], Prefix: f[3], Suffix: f[4]}, nil
}

func renderName(n Name) string {
	return escape.JoinText([]string{n.Family, n.Given, n.Additional, n.Prefix, n.Suffix}, ";")
}

func parseOrganization(raw string) (Value, error) {
	f := escape.SplitText(raw, ';')
	if len(f) == 0 || f[0] == "" && len(f) == 1 {
		return nil, parseErr(KindOrganization, raw, "organization name is required")
	}
	return Organization(f), nil
}

// parseDateList parses the items of an RDATE or EXDATE value. An explicit
// item kind applies to every item; otherwise each item's shape decides.
func parseDateList(raw string, item Kind, tzid string, loc Localizer) (Value, error) {
	parts := strings.Split(strings.TrimSpace(raw), ",")
	out := make(DateList, 0, len(parts))
	for _, p := range parts {
		k := item
		if k == KindUnknown {
			k = detectDDD(p)
		}
		var (
			v   Value
			err error
		)
		switch k {
		case KindDate:
			v, err = parseDate(p)
		case KindDateTime:
			v, err = parseDateTime(p, tzid, loc)
		case KindPeriod:
			v, err = parsePeriod(p, tzid, loc)
		default:
			return nil, parseErr(KindDateList, raw, "%s items are not allowed", k)
		}
		if err != nil {
			return nil, parseErr(KindDateList, raw, "%v", err)
		}
		out = append(out, v)
	}
	return out, nil
}

// itemKind reports the common kind of the list, or KindUnknown when mixed.
func (l DateList) itemKind() Kind {
	k := KindUnknown
	for i, v := range l {
		if i == 0 {
			k = v.Kind()
			continue
		}
		if v.Kind() != k {
			return KindUnknown
		}
	}
	return k
}

// tzid returns the TZID of the first zoned item.
func (l DateList) tzid() string {
	for _, v := range l {
		switch t := v.(type) {
		case DateTime:
			if t.TZID != "" {
				return t.TZID
			}
		case Period:
			if t.Start.TZID != "" {
				return t.Start.TZID
			}
		}
	}
	return ""
}
