package loader

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// dateLayouts are tried in order when coercing date cells. The store mixes
// ISO dates with timestamps and the occasional European format.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02/01/2006",
}

// coerceDate parses a raw cell into a calendar date. Unparseable values
// become nil and a warning; processing continues.
func coerceDate(v interface{}) (*time.Time, bool) {
	switch val := v.(type) {
	case nil:
		return nil, true
	case time.Time:
		return &val, true
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return nil, true
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return &t, true
			}
		}
		return nil, false
	default:
		return nil, false
	}
}

// coerceNumber parses a raw cell into a float. JSON numbers arrive as
// float64; strings are parsed after stripping grouping spaces.
func coerceNumber(v interface{}) (*float64, bool) {
	switch val := v.(type) {
	case nil:
		return nil, true
	case float64:
		return &val, true
	case int:
		f := float64(val)
		return &f, true
	case int64:
		f := float64(val)
		return &f, true
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(val), " ", "")
		s = strings.ReplaceAll(s, ",", ".")
		if s == "" {
			return nil, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return &f, true
		}
		return nil, false
	default:
		return nil, false
	}
}

// coerceText renders a raw cell as text. Everything has a string form, so
// this never warns.
func coerceText(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
