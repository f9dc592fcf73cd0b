package enrich

import (
	"fmt"
	"regexp"
	"strings"
)

var zipPattern = regexp.MustCompile(`^\d{5}(-\d{4})?$`)

// NormalizeZIP trims whitespace and validates the 5-or-9-digit ZIP format.
func NormalizeZIP(raw string) (string, error) {
	zip := strings.TrimSpace(raw)
	if !zipPattern.MatchString(zip) {
		return "", fmt.Errorf("invalid ZIP code %q: must be 5 digits or ZIP+4", raw)
	}
	return zip, nil
}

// NormalizeState trims and uppercases a two-letter state abbreviation.
func NormalizeState(raw string) (string, error) {
	state := strings.ToUpper(strings.TrimSpace(raw))
	if len(state) != 2 || state[0] < 'A' || state[0] > 'Z' || state[1] < 'A' || state[1] > 'Z' {
		return "", fmt.Errorf("invalid state %q: use the two-letter abbreviation", raw)
	}
	return state, nil
}
