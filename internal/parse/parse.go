// Package parse holds the pure field parsers that turn raw REDCap source
// fields into canonical Epic demographic values. Parsers are total: malformed
// or unrecognized input is reported as an absent value (ok == false) or a
// documented default, never as an error, because source data quality is poor
// and "unable to determine" is an expected outcome.
package parse

import (
	"regexp"
	"strings"
)

// CSZ is the result of splitting a combined "City, ST 12345" string.
type CSZ struct {
	City  string
	State string
	Zip   string
}

// cszPattern matches "city, STATE 12345" with a 5-digit zip. Only the first
// match is used; anything trailing the zip (zip+4, country) is ignored.
var cszPattern = regexp.MustCompile(`^([^,]+),\s+(\w+)\s+(\d{5})`)

// CityStateZip splits a combined city/state/zip string. ok is false when the
// input does not match the expected shape, in which case the zero CSZ is
// returned and callers must not use any component.
func CityStateZip(raw string) (CSZ, bool) {
	m := cszPattern.FindStringSubmatch(raw)
	if m == nil {
		return CSZ{}, false
	}
	return CSZ{
		City:  strings.TrimSpace(m[1]),
		State: strings.TrimSpace(m[2]),
		Zip:   strings.TrimSpace(m[3]),
	}, true
}

// Address normalizes a free-text address. The only transformation is
// whitespace trimming; street parsing is out of scope.
func Address(raw string) string {
	return strings.TrimSpace(raw)
}

// languageByCode maps the structured confirm_language source codes to Epic
// 3-letter language codes. The table is deliberately conservative: only the
// five languages offered by the screening instrument are mapped, even though
// the target field accepts the full EpicLanguages vocabulary.
var languageByCode = map[string]string{
	"1": "ENG",
	"2": "SPA",
	"3": "MDN",
	"4": "TGL",
	"5": "VIE",
}

// Language maps a confirmed-language source code to its Epic code. ok is
// false for empty, unrecognized, or free-text input.
func Language(code string) (string, bool) {
	lang, ok := languageByCode[code]
	return lang, ok
}

// sexByCode maps sex-assigned-at-birth source codes. Anything outside the
// table, including a missing value, is reported as unknown.
var sexByCode = map[string]string{
	"1": "M",
	"2": "F",
}

// SexUnknown is the default sex code. It is a real value eligible to be
// written, not an absence marker.
const SexUnknown = "U"

// Sex maps a sex-assigned-at-birth code to M/F/U. Total: always returns a
// writable value.
func Sex(code string) string {
	if sex, ok := sexByCode[code]; ok {
		return sex
	}
	return SexUnknown
}

// Ethnicity values written to the target field.
const (
	EthnicityHispanic    = "Hispanic/Latino"
	EthnicityNonHispanic = "Non-Hispanic/Non-Latino"
	EthnicityUnknown     = "Unknown"
)

var ethnicityByCode = map[string]string{
	"1": EthnicityHispanic,
	"0": EthnicityNonHispanic,
}

// Ethnicity maps a Hispanic/Latino-origin flag to the canonical ethnicity
// string. Total: unrecognized input maps to Unknown.
func Ethnicity(code string) string {
	if eth, ok := ethnicityByCode[code]; ok {
		return eth
	}
	return EthnicityUnknown
}
