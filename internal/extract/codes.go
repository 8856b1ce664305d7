package extract

import (
	"regexp"
	"strings"
)

// Pre-compiled patterns for mining business identifiers out of the free-text
// observation field.
var (
	// Transport request references: "SOLTRANSP-2026-00231",
	// "SOLTRANSP - 2026 - 00231", "soltransp 2026 00231", ...
	soltranspRegex = regexp.MustCompile(`(?i)SOLTRANSP\s*[- ]*\s*[0-9]{4}\s*[- ]*\s*[0-9]+`)

	// Calculation-memory codes are 10 consecutive digits.
	codeRegex = regexp.MustCompile(`\d{10}`)
)

// ExtractCodes mines the observation text for the transport request reference
// and the 10-digit calculation-memory code. Only the first occurrence of each
// pattern counts; either result may be empty.
func ExtractCodes(observation string) (reference, code string) {
	if m := soltranspRegex.FindString(observation); m != "" {
		reference = strings.ToUpper(strings.TrimSpace(m))
	}
	code = codeRegex.FindString(observation)
	return reference, code
}
