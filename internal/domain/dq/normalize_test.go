package dq

import (
	"testing"
	"time"
)

func TestNormalizeStringTreatsPlaceholderTokensAsNoValue(t *testing.T) {
	cases := map[string]string{
		" Lusaka ": "lusaka",
		"LUSAKA":   "lusaka",
		"":         "",
		"  ":       "",
		"nan":      "",
		"NaN":      "",
		"None":     "",
		"NULL":     "",
		"n/a":      "",
		"N/A":      "",
		"0":        "0",
	}
	for in, want := range cases {
		if got := NormalizeString(in); got != want {
			t.Fatalf("NormalizeString(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsBlank(t *testing.T) {
	if !IsBlank("  nan ") {
		t.Fatalf("IsBlank(\"  nan \") = false, want true")
	}
	if IsBlank("EA-001") {
		t.Fatalf("IsBlank(\"EA-001\") = true, want false")
	}
}

func TestToBoolYesNo(t *testing.T) {
	affirmative := []string{"yes", "Y", " TRUE ", "1", "01"}
	for _, in := range affirmative {
		v, ok := ToBoolYesNo(in)
		if !ok || !v {
			t.Fatalf("ToBoolYesNo(%q) = (%v, %v), want (true, true)", in, v, ok)
		}
	}
	negative := []string{"no", "N", "false", "0", "02"}
	for _, in := range negative {
		v, ok := ToBoolYesNo(in)
		if !ok || v {
			t.Fatalf("ToBoolYesNo(%q) = (%v, %v), want (false, true)", in, v, ok)
		}
	}
	for _, in := range []string{"", "maybe", "nan", "2"} {
		if _, ok := ToBoolYesNo(in); ok {
			t.Fatalf("ToBoolYesNo(%q) recognized, want unknown", in)
		}
	}
}

func TestIsAffirmativeDistinguishesNoFromUnknown(t *testing.T) {
	if IsAffirmative("no") {
		t.Fatalf("IsAffirmative(\"no\") = true")
	}
	if IsAffirmative("") {
		t.Fatalf("IsAffirmative(\"\") = true")
	}
	if !IsAffirmative("01") {
		t.Fatalf("IsAffirmative(\"01\") = false")
	}
}

func TestParseTimestampFormats(t *testing.T) {
	utc := time.UTC
	want := time.Date(2024, 3, 5, 14, 30, 0, 0, utc)

	cases := []string{
		"2024-03-05T14:30:00Z",
		"2024-03-05T14:30:00+00:00",
		"2024-03-05T14:30:00+0000",
		"2024-03-05T14:30:00",
		"2024-03-05 14:30:00",
		"2024-03-05T14:30:00.123456Z",
	}
	for _, in := range cases {
		got, ok := ParseTimestamp(in, utc)
		if !ok {
			t.Fatalf("ParseTimestamp(%q) failed", in)
		}
		if in == "2024-03-05T14:30:00.123456Z" {
			if !got.Truncate(time.Second).Equal(want) {
				t.Fatalf("ParseTimestamp(%q) = %v", in, got)
			}
			continue
		}
		if !got.Equal(want) {
			t.Fatalf("ParseTimestamp(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseTimestampBareDateIsMidnight(t *testing.T) {
	got, ok := ParseTimestamp("2024-03-05", time.UTC)
	if !ok {
		t.Fatalf("ParseTimestamp bare date failed")
	}
	want := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("ParseTimestamp bare date = %v, want %v", got, want)
	}
}

func TestParseTimestampNaiveUsesReferenceLocation(t *testing.T) {
	loc := time.FixedZone("CAT", 2*60*60)
	got, ok := ParseTimestamp("2024-03-05 14:30:00", loc)
	if !ok {
		t.Fatalf("ParseTimestamp naive failed")
	}
	if got.Location() != loc {
		t.Fatalf("location = %v, want %v", got.Location(), loc)
	}
}

func TestParseTimestampRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "nan", "not a date", "31/02/2024"} {
		if _, ok := ParseTimestamp(in, time.UTC); ok {
			t.Fatalf("ParseTimestamp(%q) succeeded, want failure", in)
		}
	}
}
