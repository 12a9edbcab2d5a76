package dq

import (
	"strings"
	"time"
)

// Spreadsheet exports routinely carry these literals where a value is absent.
var blankTokens = map[string]struct{}{
	"nan":  {},
	"none": {},
	"null": {},
	"n/a":  {},
}

// NormalizeString trims and lowercases v for use as a grouping or comparison
// key. Empty strings and placeholder tokens normalize to "", meaning no value.
func NormalizeString(v string) string {
	s := strings.ToLower(strings.TrimSpace(v))
	if s == "" {
		return ""
	}
	if _, ok := blankTokens[s]; ok {
		return ""
	}
	return s
}

// IsBlank reports whether v carries no usable value.
func IsBlank(v string) bool {
	return NormalizeString(v) == ""
}

// ToBoolYesNo maps the survey yes/no token sets to a boolean. ok is false for
// anything outside both sets, which is "unknown" and distinct from false.
func ToBoolYesNo(v string) (value bool, ok bool) {
	switch NormalizeString(v) {
	case "yes", "y", "true", "1", "01":
		return true, true
	case "no", "n", "false", "0", "02":
		return false, true
	}
	return false, false
}

// IsAffirmative reports whether v is an explicit yes. A recognized "no" and an
// unrecognized token both come back false.
func IsAffirmative(v string) bool {
	value, ok := ToBoolYesNo(v)
	return ok && value
}

// Layouts without a zone pick up the reference location via ParseInLocation.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTimestamp parses the timestamp formats the client form tools export:
// RFC 3339 with or without fractional seconds, "Z" or numeric offsets
// (including the non-colon "+0000" variant), a space instead of "T", and bare
// dates (midnight). Values without an offset are interpreted in loc, or the
// process-local zone when loc is nil. ok is false when nothing matches.
func ParseTimestamp(v string, loc *time.Location) (time.Time, bool) {
	s := strings.TrimSpace(v)
	if s == "" || IsBlank(s) {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}

	for _, candidate := range []string{s, fixNumericOffset(s)} {
		if candidate == "" {
			continue
		}
		for _, layout := range timestampLayouts {
			if t, err := time.ParseInLocation(layout, candidate, loc); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// fixNumericOffset rewrites a trailing "+0000"/"-0230" offset to the colon
// form RFC 3339 expects. Returns "" when the input has no such suffix.
func fixNumericOffset(s string) string {
	if len(s) < 5 {
		return ""
	}
	tail := s[len(s)-5:]
	if tail[0] != '+' && tail[0] != '-' {
		return ""
	}
	for _, r := range tail[1:] {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return s[:len(s)-5] + tail[:3] + ":" + tail[3:]
}
