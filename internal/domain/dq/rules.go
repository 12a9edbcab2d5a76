package dq

import (
	"fmt"
	"sort"
	"time"
)

// Default rule thresholds.
const (
	DefaultMinDuration = 15 * time.Minute
	DefaultMaxDelay    = 48 * time.Hour
)

// RuleConfig carries the per-record rule thresholds. The zero value gets the
// documented defaults.
type RuleConfig struct {
	MinDuration time.Duration
	MaxDelay    time.Duration
	Location    *time.Location
}

func (c RuleConfig) withDefaults() RuleConfig {
	if c.MinDuration <= 0 {
		c.MinDuration = DefaultMinDuration
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = DefaultMaxDelay
	}
	if c.Location == nil {
		c.Location = time.Local
	}
	return c
}

// CheckShortDuration flags interviews shorter than the minimum duration.
// Records whose start or end does not parse are skipped, not flagged: an
// interview of unknown length is not assumed short.
func CheckShortDuration(rec Record, cfg RuleConfig) (Finding, bool) {
	cfg = cfg.withDefaults()

	start, okStart := ParseTimestamp(rec.Field(FieldStart), cfg.Location)
	end, okEnd := ParseTimestamp(rec.Field(FieldEnd), cfg.Location)
	if !okStart || !okEnd {
		return Finding{}, false
	}

	dur := end.Sub(start)
	if dur >= cfg.MinDuration {
		return Finding{}, false
	}

	return Finding{
		Kind:      KindShortDuration,
		MemberIDs: []uint64{rec.ID},
		Keys: map[string]string{
			FieldStart: rec.Field(FieldStart),
			FieldEnd:   rec.Field(FieldEnd),
		},
		Details: map[string]any{
			"subtype":          string(KindShortDuration),
			"duration_minutes": fmt.Sprintf("%.2f", dur.Minutes()),
			"threshold":        cfg.MinDuration.String(),
		},
	}, true
}

// CheckLateSubmission flags records submitted more than the allowed delay
// after the interview. Interview time falls back from start to the form's
// "today" field; submission time from submit_time to the submission date.
// Missing either side skips the check, and a zero or negative delay never
// flags.
func CheckLateSubmission(rec Record, cfg RuleConfig) (Finding, bool) {
	cfg = cfg.withDefaults()

	interview, ok := ParseTimestamp(rec.Field(FieldStart), cfg.Location)
	if !ok {
		interview, ok = ParseTimestamp(rec.Field(FieldToday), cfg.Location)
	}
	if !ok {
		return Finding{}, false
	}

	submitted, ok := ParseTimestamp(rec.Field(FieldSubmitTime), cfg.Location)
	if !ok {
		submitted, ok = ParseTimestamp(rec.Field(FieldSubmissionDate), cfg.Location)
	}
	if !ok {
		return Finding{}, false
	}

	delay := submitted.Sub(interview)
	if delay <= cfg.MaxDelay {
		return Finding{}, false
	}

	return Finding{
		Kind:      KindLateSubmission,
		MemberIDs: []uint64{rec.ID},
		Keys: map[string]string{
			FieldStart:          rec.Field(FieldStart),
			FieldToday:          rec.Field(FieldToday),
			FieldSubmissionDate: rec.Field(FieldSubmissionDate),
			FieldSubmitTime:     rec.Field(FieldSubmitTime),
		},
		Details: map[string]any{
			"subtype":     string(KindLateSubmission),
			"delay_hours": fmt.Sprintf("%.2f", delay.Hours()),
			"threshold":   cfg.MaxDelay.String(),
		},
	}, true
}

// CheckCompleteness applies the household Minimum Viable Record rule.
//
// household unknown: that alone is a violation. household yes: head-of-
// household name (HH_01), person count (HH_02) and enumerator are required.
// household no: every HH_* detail field must be blank, result_list is
// required (with result_other when it is an "other" code), and enumerator is
// required.
func CheckCompleteness(rec Record) (Finding, bool) {
	household, householdKnown := ToBoolYesNo(rec.Field(FieldHousehold))

	var violations []string
	details := map[string]any{"subtype": "minimum_viable_record"}

	if !householdKnown {
		violations = append(violations, "household_missing_or_unknown")
	}

	if householdKnown && household {
		if IsBlank(rec.Field(FieldHH01)) {
			violations = append(violations, "HH_01_missing")
		}
		if IsBlank(rec.Field(FieldHH02)) {
			violations = append(violations, "HH_02_missing")
		}
		if IsBlank(rec.Field(FieldEnumerator)) {
			violations = append(violations, "enumerator_missing")
		}
	}

	if householdKnown && !household {
		var nonblank []string
		for _, name := range HouseholdDetailFields {
			if !IsBlank(rec.Field(name)) {
				nonblank = append(nonblank, name)
			}
		}
		if len(nonblank) > 0 {
			violations = append(violations, "HH_fields_should_be_blank_when_household_no")
			sort.Strings(nonblank)
			details["nonblank_HH_fields"] = nonblank
		}

		resultList := NormalizeString(rec.Field(FieldResultList))
		if resultList == "" {
			violations = append(violations, "result_list_missing")
		} else if _, other := otherResultCodes[resultList]; other && IsBlank(rec.Field(FieldResultOther)) {
			violations = append(violations, "result_other_missing_for_other_result_list")
		}
		if IsBlank(rec.Field(FieldEnumerator)) {
			violations = append(violations, "enumerator_missing")
		}
	}

	if len(violations) == 0 {
		return Finding{}, false
	}
	details["violations"] = violations

	return Finding{
		Kind:      KindIncompleteRecord,
		MemberIDs: []uint64{rec.ID},
		Keys: map[string]string{
			FieldHH01:        rec.Field(FieldHH01),
			FieldHH02:        rec.Field(FieldHH02),
			FieldHousehold:   rec.Field(FieldHousehold),
			FieldEnumerator:  rec.Field(FieldEnumerator),
			FieldResultList:  rec.Field(FieldResultList),
			FieldResultOther: rec.Field(FieldResultOther),
		},
		Details: details,
	}, true
}

// CheckConsent requires affirmative consent once a household interview is
// asserted (household = yes). For any other household value the check is a
// no-op: consent only becomes mandatory when an interview took place.
func CheckConsent(rec Record) (Finding, bool) {
	household, ok := ToBoolYesNo(rec.Field(FieldHousehold))
	if !ok || !household {
		return Finding{}, false
	}
	if IsAffirmative(rec.Field(FieldConsent)) {
		return Finding{}, false
	}

	return Finding{
		Kind:      KindInvalidConsent,
		MemberIDs: []uint64{rec.ID},
		Keys: map[string]string{
			FieldHousehold: rec.Field(FieldHousehold),
			FieldConsent:   rec.Field(FieldConsent),
		},
		Details: map[string]any{
			"subtype": "household_consent_missing_or_invalid",
		},
	}, true
}
