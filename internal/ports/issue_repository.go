package ports

import (
	"context"
	"errors"
)

var (
	ErrIssueNotFound = errors.New("data-quality issue not found")

	// ErrMemberTypeMismatch guards the membership invariant: every member of
	// an issue shares the issue's target entity type. Hitting it means the
	// engine is wired to the wrong entity type, so it is never swallowed.
	ErrMemberTypeMismatch = errors.New("issue member entity type does not match issue target entity")
)

// Issue is the persisted representation of a detected data-quality problem,
// identified by its content signature. Timestamps are RFC 3339 strings.
type Issue struct {
	IssueID      uint64
	IssueType    string
	TargetEntity string
	Signature    string
	Title        string
	KeysJSON     string
	DetailsJSON  string
	Status       string
	DetectedAt   string
	UpdatedAt    string
	ResolvedAt   *string
	ResolvedBy   *string
}

type IssueFilter struct {
	IssueType    string
	TargetEntity string
	Status       string
}

type IssueReadRepository interface {
	GetIssue(ctx context.Context, issueID uint64) (Issue, error)
	FindBySignature(ctx context.Context, signature string) (Issue, error)
	ListIssues(ctx context.Context, filter IssueFilter) ([]Issue, error)
	ListMemberIDs(ctx context.Context, issueID uint64) ([]uint64, error)
}

type IssueRepository interface {
	IssueReadRepository
	CreateIssue(ctx context.Context, issue Issue) (Issue, error)
	// PatchIssueMeta updates title/keys/details in place; the signature and
	// therefore the issue identity are unchanged.
	PatchIssueMeta(ctx context.Context, issueID uint64, title, keysJSON, detailsJSON, updatedAt string) error
	// ReopenIssue clears the resolved state of a previously resolved issue.
	ReopenIssue(ctx context.Context, issueID uint64, updatedAt string) error
	// MarkResolved resolves the given issues if still open and returns how
	// many rows changed.
	MarkResolved(ctx context.Context, issueIDs []uint64, resolvedAt, resolvedBy string) (int64, error)
	// MarkMuted silences an open issue; muted issues are never auto-reopened.
	MarkMuted(ctx context.Context, issueID uint64, mutedBy, updatedAt string) error
	AddMembers(ctx context.Context, issueID uint64, entityType string, entityIDs []uint64) error
	RemoveMembers(ctx context.Context, issueID uint64, entityType string, entityIDs []uint64) error
}
