// Package money provides monetary parsing and formatting for freight values.
//
// Freight documents and rate spreadsheets mix Brazilian and international
// numeric conventions ("1.234,56", "1,234.56", "R$ 123,45"), so parsing
// resolves the separator roles heuristically instead of assuming one locale.
package money

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// currencyMarkers strips the R$ prefix and any whitespace, wherever they
// appear in the input.
var currencyMarkers = regexp.MustCompile(`[R$\s]`)

// ParseDecimal converts a free-form numeric string into a decimal value.
// It never fails: empty or unparseable input yields zero.
//
// Separator resolution, in order:
//  1. No separators: direct decimal parse.
//  2. Two or more occurrences of the same separator are thousands
//     separators ("1.000.000" -> 1000000).
//  3. Otherwise the last separator is the decimal point; any separators
//     before it are thousands separators ("1,234.56" -> 1234.56).
//  4. Exception: a single separator followed by exactly 3 digits, with a
//     1-3 digit integer part, is a thousands separator ("3.331" -> 3331).
//     Freight values carry 2 decimal places, so the 3-digit tail is read
//     as thousands. This is a business rule, not a locale rule; it applies
//     only to the exactly-one-separator case.
func ParseDecimal(input string) decimal.Decimal {
	s := currencyMarkers.ReplaceAllString(input, "")
	if s == "" {
		return decimal.Zero
	}

	var seps []byte
	for i := 0; i < len(s); i++ {
		if s[i] == '.' || s[i] == ',' {
			seps = append(seps, s[i])
		}
	}

	if len(seps) == 0 {
		return parseOrZero(s)
	}

	allSame := true
	for _, c := range seps {
		if c != seps[0] {
			allSame = false
			break
		}
	}
	if allSame && len(seps) > 1 {
		return parseOrZero(stripSeparators(s))
	}

	lastDot := strings.LastIndexByte(s, '.')
	lastComma := strings.LastIndexByte(s, ',')
	last := lastDot
	if lastComma > last {
		last = lastComma
	}

	intPart := stripSeparators(s[:last])
	fracPart := s[last+1:]

	if len(seps) == 1 && len(fracPart) == 3 && len(intPart) >= 1 && len(intPart) <= 3 {
		return parseOrZero(intPart + fracPart)
	}

	return parseOrZero(intPart + "." + fracPart)
}

func parseOrZero(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func stripSeparators(s string) string {
	s = strings.ReplaceAll(s, ".", "")
	return strings.ReplaceAll(s, ",", "")
}
