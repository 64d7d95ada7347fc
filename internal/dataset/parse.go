package dataset

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// DefaultDateLayouts are the release date layouts tried in order
var DefaultDateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006",
}

// NullMarkers are cell values treated as missing, besides blank cells
var NullMarkers = []string{"NA", "N/A", "NaN", "nan", "null", "NULL", "None", "<NA>"}

// parseDate parses a release date, returning nil when no layout matches
func parseDate(value string, layouts []string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d
		}
	}
	return nil
}

// parseFloat coerces a numeric cell, returning false for unparseable or non-finite values
func parseFloat(value string) (float64, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// parseCount coerces a vote count. Integral floats such as "1234.0" are accepted,
// fractional and negative values are not.
func parseCount(value string) (int64, bool) {
	value = strings.TrimSpace(value)
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return n, n >= 0
	}
	f, ok := parseFloat(value)
	if !ok || f < 0 || f != math.Trunc(f) || f > math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}
