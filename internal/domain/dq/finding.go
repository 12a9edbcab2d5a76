package dq

// IssueType is the persisted issue taxonomy.
type IssueType string

const (
	IssueDuplicate  IssueType = "duplicate"
	IssueIncomplete IssueType = "incomplete"
	IssueConsent    IssueType = "consent"
	IssueDuration   IssueType = "duration"
	IssueTimeliness IssueType = "timeliness"
)

// Issue status values.
const (
	StatusOpen     = "open"
	StatusResolved = "resolved"
	StatusMuted    = "muted"
)

// Kind tags one detector or checker result. Values double as the report
// "subtype" labels.
type Kind string

const (
	KindExactDuplicate   Kind = "exact_fields"
	KindWindowDuplicate  Kind = "ea_hun_hhn_time"
	KindAdminDuplicate   Kind = "admin_hun_hhn"
	KindShortDuration    Kind = "short_duration"
	KindLateSubmission   Kind = "submission_timeliness"
	KindIncompleteRecord Kind = "mvr_completeness"
	KindInvalidConsent   Kind = "consent"
)

// IssueType maps a detection kind to its persisted issue bucket.
func (k Kind) IssueType() IssueType {
	switch k {
	case KindExactDuplicate, KindWindowDuplicate, KindAdminDuplicate:
		return IssueDuplicate
	case KindShortDuration:
		return IssueDuration
	case KindLateSubmission:
		return IssueTimeliness
	case KindIncompleteRecord:
		return IssueIncomplete
	case KindInvalidConsent:
		return IssueConsent
	}
	return ""
}

// Title is the human summary used when the finding is persisted.
func (k Kind) Title() string {
	switch k {
	case KindExactDuplicate, KindWindowDuplicate, KindAdminDuplicate:
		return "Possible duplicate submission"
	case KindShortDuration:
		return "Short interview duration"
	case KindLateSubmission:
		return "Late submission (> allowed delay)"
	case KindIncompleteRecord:
		return "Minimum Viable Record (MVR) completeness issue"
	case KindInvalidConsent:
		return "Consent missing or not affirmative for household = YES"
	}
	return ""
}

// Finding is the ephemeral result of one detector or checker on one run.
// Findings are never persisted directly; the lifecycle turns each into an
// issue keyed by its signature.
type Finding struct {
	Kind      Kind
	MemberIDs []uint64
	Keys      map[string]string
	Details   map[string]any
}

// Signature hashes the finding against the entity type it was produced for.
func (f Finding) Signature(entity EntityType) string {
	return Signature(f.Kind.IssueType(), entity, f.MemberIDs, f.Keys)
}
