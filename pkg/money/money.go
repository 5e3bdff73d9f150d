package money

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse converts a money string like "$1,250.50" to its numeric value.
// Legacy rows store costs as free text, so currency symbols, commas and
// surrounding whitespace are tolerated.
func Parse(s string) (float64, error) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.ReplaceAll(cleaned, "$", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return 0, fmt.Errorf("empty money value")
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable money value %q", s)
	}
	return v, nil
}

// Normalize strips currency formatting and returns the bare numeric string
// that gets persisted. Persisting without the "$" keeps re-display from
// doubling the prefix.
func Normalize(s string) (string, error) {
	v, err := Parse(s)
	if err != nil {
		return "", err
	}
	return strconv.FormatFloat(v, 'f', 2, 64), nil
}

// Format renders a numeric value for display.
func Format(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}
