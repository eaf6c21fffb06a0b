package draws

import (
	"strconv"
	"strings"
)

// ParseCount parses an upstream count string such as "12.345.678" into an
// integer. Dots and commas are grouping noise. Returns nil when the field is
// empty or not numeric.
func ParseCount(s string) *int {
	cleaned := strings.NewReplacer(".", "", ",", "").Replace(strings.TrimSpace(s))
	if cleaned == "" {
		return nil
	}
	v, err := strconv.Atoi(cleaned)
	if err != nil {
		return nil
	}
	return &v
}

// ParseAmount parses an upstream money string such as "1.234.567,89" into a
// float. Dots group thousands, the comma is the decimal separator. Returns
// nil when the field is empty or not numeric.
func ParseAmount(s string) *float64 {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.ReplaceAll(cleaned, ".", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	if cleaned == "" {
		return nil
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &v
}
