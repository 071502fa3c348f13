package validation

import (
	"regexp"
	"strconv"
	"strings"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Runs of anything other than lowercase ASCII letters and digits collapse to one separator.
var slugSeparatorRe = regexp.MustCompile(`[^a-z0-9]+`)

func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

// Slugify lowercases s, collapses non-alphanumeric runs into a single "-" and trims
// leading/trailing separators: "Beautiful 3-Bed House!!" -> "beautiful-3-bed-house".
func Slugify(s string) string {
	slug := slugSeparatorRe.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(slug, "-")
}

// ParseInt parses a decimal integer. ok is false for empty or malformed input.
func ParseInt(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseFloat parses a decimal number, tolerating thousands separators ("1,200.5").
func ParseFloat(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// NumberFrom accepts a JSON-decoded number or numeric string (area and price arrive as either).
func NumberFrom(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		return ParseFloat(n)
	}
	return 0, false
}
