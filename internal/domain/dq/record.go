package dq

import "time"

// Record is one survey row as handed over by a record source: a stable
// numeric id plus a flat field-name -> raw-value mapping. The engine never
// sees entity business fields beyond the ones named below.
type Record struct {
	ID     uint64
	Fields map[string]string
}

// Field returns the raw value of a named field ("" when absent).
func (r Record) Field(name string) string {
	return r.Fields[name]
}

// Field names shared across the survey forms.
const (
	FieldProvince       = "province"
	FieldDistrict       = "district"
	FieldConstituency   = "constituency"
	FieldWard           = "ward"
	FieldEA             = "ea"
	FieldHUN            = "hun"
	FieldHHN            = "hhn"
	FieldStart          = "start"
	FieldEnd            = "end"
	FieldToday          = "today"
	FieldSubmissionDate = "submission_date"
	FieldSubmitTime     = "submit_time"
	FieldEnumerator     = "enumerator"
	FieldRespondent     = "respondent"
	FieldHousehold      = "household"
	FieldConsent        = "consent"
	FieldResultList     = "result_list"
	FieldResultOther    = "result_other"
	FieldHH01           = "HH_01"
	FieldHH02           = "HH_02"
)

// HouseholdDetailFields is the static list of HH_* detail columns on the
// household form, enumerated once from schema metadata instead of runtime
// introspection. All of them must be blank when no household was found.
var HouseholdDetailFields = []string{
	"HH_01", "HH_02",
	"HH_16", "HH_16A", "HH_17", "HH_17A", "HH_18", "HH_18A",
	"HH_19", "HH_19A", "HH_20", "HH_21", "HH_22",
}

// "Other" codes on result_list that require a free-text result_other.
var otherResultCodes = map[string]struct{}{
	"other":         {},
	"others":        {},
	"other_specify": {},
	"96":            {},
	"99":            {},
}

// normalized is the comparison view of one record: grouping keys normalized,
// timestamp fields parsed. A zero time means unparseable or absent.
type normalized struct {
	id uint64

	province     string
	district     string
	constituency string
	ward         string
	ea           string
	hun          string
	hhn          string
	start        string
	end          string
	enumerator   string
	respondent   string

	startAt      time.Time
	endAt        time.Time
	submissionAt time.Time
}

func newNormalized(rec Record, loc *time.Location) normalized {
	n := normalized{
		id:           rec.ID,
		province:     NormalizeString(rec.Field(FieldProvince)),
		district:     NormalizeString(rec.Field(FieldDistrict)),
		constituency: NormalizeString(rec.Field(FieldConstituency)),
		ward:         NormalizeString(rec.Field(FieldWard)),
		ea:           NormalizeString(rec.Field(FieldEA)),
		hun:          NormalizeString(rec.Field(FieldHUN)),
		hhn:          NormalizeString(rec.Field(FieldHHN)),
		start:        NormalizeString(rec.Field(FieldStart)),
		end:          NormalizeString(rec.Field(FieldEnd)),
		enumerator:   NormalizeString(rec.Field(FieldEnumerator)),
		respondent:   NormalizeString(rec.Field(FieldRespondent)),
	}
	if t, ok := ParseTimestamp(rec.Field(FieldStart), loc); ok {
		n.startAt = t
	}
	if t, ok := ParseTimestamp(rec.Field(FieldEnd), loc); ok {
		n.endAt = t
	}
	if t, ok := ParseTimestamp(rec.Field(FieldSubmissionDate), loc); ok {
		n.submissionAt = t
	}
	return n
}

// bestTime picks the timestamp used for window clustering: start, else end,
// else the submission date.
func (n normalized) bestTime() time.Time {
	if !n.startAt.IsZero() {
		return n.startAt
	}
	if !n.endAt.IsZero() {
		return n.endAt
	}
	return n.submissionAt
}
