package dq

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"surveydq/internal/errs"
	"surveydq/internal/ports"
)

// IssueExport is one persisted issue plus its membership, shaped for export.
type IssueExport struct {
	IssueID      uint64   `json:"issue_id"`
	IssueType    string   `json:"issue_type"`
	TargetEntity string   `json:"target_entity"`
	Signature    string   `json:"signature"`
	Title        string   `json:"title"`
	Status       string   `json:"status"`
	Keys         string   `json:"keys"`
	Details      string   `json:"details"`
	MemberIDs    []uint64 `json:"member_ids"`
	DetectedAt   string   `json:"detected_at"`
	UpdatedAt    string   `json:"updated_at"`
	ResolvedAt   string   `json:"resolved_at,omitempty"`
	ResolvedBy   string   `json:"resolved_by,omitempty"`
}

// ExportIssues writes the filtered issues to w as JSON or CSV.
func (s *Service) ExportIssues(ctx context.Context, filter ports.IssueFilter, format string, w io.Writer) (int, error) {
	issues, err := s.issues.ListIssues(ctx, filter)
	if err != nil {
		return 0, errs.Wrap(err, "list issues")
	}

	exports := make([]IssueExport, 0, len(issues))
	for _, issue := range issues {
		members, err := s.issues.ListMemberIDs(ctx, issue.IssueID)
		if err != nil {
			return 0, errs.Wrapf(err, "list members of issue %d", issue.IssueID)
		}
		exports = append(exports, newIssueExport(issue, members))
	}

	switch strings.ToLower(format) {
	case "", "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(exports); err != nil {
			return 0, errs.Wrap(err, "encode issue export")
		}
	case "csv":
		if err := writeIssueCSV(w, exports); err != nil {
			return 0, err
		}
	default:
		return 0, fmt.Errorf("unsupported export format %q", format)
	}

	return len(exports), nil
}

func newIssueExport(issue ports.Issue, members []uint64) IssueExport {
	out := IssueExport{
		IssueID:      issue.IssueID,
		IssueType:    issue.IssueType,
		TargetEntity: issue.TargetEntity,
		Signature:    issue.Signature,
		Title:        issue.Title,
		Status:       issue.Status,
		Keys:         issue.KeysJSON,
		Details:      issue.DetailsJSON,
		MemberIDs:    members,
		DetectedAt:   issue.DetectedAt,
		UpdatedAt:    issue.UpdatedAt,
	}
	if issue.ResolvedAt != nil {
		out.ResolvedAt = *issue.ResolvedAt
	}
	if issue.ResolvedBy != nil {
		out.ResolvedBy = *issue.ResolvedBy
	}
	return out
}

func writeIssueCSV(w io.Writer, exports []IssueExport) error {
	cw := csv.NewWriter(w)
	header := []string{
		"issue_id", "issue_type", "target_entity", "signature", "title",
		"status", "keys", "details", "member_ids",
		"detected_at", "updated_at", "resolved_at", "resolved_by",
	}
	if err := cw.Write(header); err != nil {
		return errs.Wrap(err, "write export header")
	}

	for _, e := range exports {
		ids := make([]string, 0, len(e.MemberIDs))
		for _, id := range e.MemberIDs {
			ids = append(ids, strconv.FormatUint(id, 10))
		}
		record := []string{
			strconv.FormatUint(e.IssueID, 10),
			e.IssueType,
			e.TargetEntity,
			e.Signature,
			e.Title,
			e.Status,
			e.Keys,
			e.Details,
			strings.Join(ids, ";"),
			e.DetectedAt,
			e.UpdatedAt,
			e.ResolvedAt,
			e.ResolvedBy,
		}
		if err := cw.Write(record); err != nil {
			return errs.Wrap(err, "write export row")
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return errs.Wrap(err, "flush export")
	}
	return nil
}
