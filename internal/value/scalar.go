package value

import (
	"encoding/base64"
	"regexp"
	"strconv"
	"strings"
)

var floatGrammar = regexp.MustCompile(`^[+-]?[0-9]+(\.[0-9]+)?$`)

func parseInteger(raw string) (Value, error) {
	s := strings.TrimSpace(raw)
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, parseErr(KindInteger, raw, "expected [+-]digits")
	}
	return Integer(n), nil
}

func parseFloat(raw string) (Value, error) {
	s := strings.TrimSpace(raw)
	if !floatGrammar.MatchString(s) {
		return nil, parseErr(KindFloat, raw, "expected [+-]digits[.digits]")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, parseErr(KindFloat, raw, "%v", err)
	}
	return Float(f), nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func parseBoolean(raw string) (Value, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "TRUE":
		return Boolean(true), nil
	case "FALSE":
		return Boolean(false), nil
	}
	return nil, parseErr(KindBoolean, raw, "expected TRUE or FALSE")
}

func renderBoolean(b Boolean) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

func parseBinary(raw string) (Value, error) {
	b, err := base64.StdEncoding.DecodeString(strings.TrimSpace(raw))
	if err != nil {
		return nil, parseErr(KindBinary, raw, "invalid base64: %v", err)
	}
	return Binary(b), nil
}
