package dq

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	domaindq "surveydq/internal/domain/dq"
	"surveydq/internal/errs"
	"surveydq/internal/ports"
)

// UpsertIssue persists one finding by its content signature. A new signature
// creates an open issue; a known signature has its metadata refreshed and its
// membership reconciled, and is reopened when it was previously resolved.
// Muted issues keep their status. The whole upsert is one transaction.
func (s *Service) UpsertIssue(ctx context.Context, entity domaindq.EntityType, f domaindq.Finding) (signature string, created bool, err error) {
	signature = f.Signature(entity)

	keysJSON, err := marshalKeys(f.Keys)
	if err != nil {
		return "", false, errs.Wrap(err, "marshal finding keys")
	}
	detailsJSON, err := marshalDetails(f.Details)
	if err != nil {
		return "", false, errs.Wrap(err, "marshal finding details")
	}

	now := s.now().UTC().Format(time.RFC3339)
	memberIDs := sortedUnique(f.MemberIDs)

	err = s.uow.WithTx(ctx, func(txCtx context.Context) error {
		issue, findErr := s.issues.FindBySignature(txCtx, signature)
		if errors.Is(findErr, ports.ErrIssueNotFound) {
			createdIssue, createErr := s.issues.CreateIssue(txCtx, ports.Issue{
				IssueType:    string(f.Kind.IssueType()),
				TargetEntity: string(entity),
				Signature:    signature,
				Title:        f.Kind.Title(),
				KeysJSON:     keysJSON,
				DetailsJSON:  detailsJSON,
				Status:       domaindq.StatusOpen,
				DetectedAt:   now,
				UpdatedAt:    now,
			})
			if createErr != nil {
				return errs.Wrap(createErr, "create issue")
			}
			if addErr := s.issues.AddMembers(txCtx, createdIssue.IssueID, string(entity), memberIDs); addErr != nil {
				return errs.Wrap(addErr, "add issue members")
			}
			created = true
			return nil
		}
		if findErr != nil {
			return errs.Wrap(findErr, "find issue by signature")
		}

		if patchErr := s.issues.PatchIssueMeta(txCtx, issue.IssueID, f.Kind.Title(), keysJSON, detailsJSON, now); patchErr != nil {
			return errs.Wrap(patchErr, "patch issue meta")
		}
		if issue.Status == domaindq.StatusResolved {
			if reopenErr := s.issues.ReopenIssue(txCtx, issue.IssueID, now); reopenErr != nil {
				return errs.Wrap(reopenErr, "reopen issue")
			}
		}

		return s.reconcileMembers(txCtx, issue.IssueID, entity, memberIDs)
	})
	if err != nil {
		return "", false, err
	}

	return signature, created, nil
}

// reconcileMembers makes the stored membership equal to want.
func (s *Service) reconcileMembers(ctx context.Context, issueID uint64, entity domaindq.EntityType, want []uint64) error {
	have, err := s.issues.ListMemberIDs(ctx, issueID)
	if err != nil {
		return errs.Wrap(err, "list issue members")
	}

	haveSet := make(map[uint64]struct{}, len(have))
	for _, id := range have {
		haveSet[id] = struct{}{}
	}
	wantSet := make(map[uint64]struct{}, len(want))
	for _, id := range want {
		wantSet[id] = struct{}{}
	}

	var toAdd, toRemove []uint64
	for _, id := range want {
		if _, ok := haveSet[id]; !ok {
			toAdd = append(toAdd, id)
		}
	}
	for _, id := range have {
		if _, ok := wantSet[id]; !ok {
			toRemove = append(toRemove, id)
		}
	}

	if len(toAdd) > 0 {
		if err := s.issues.AddMembers(ctx, issueID, string(entity), toAdd); err != nil {
			return errs.Wrap(err, "add issue members")
		}
	}
	if len(toRemove) > 0 {
		if err := s.issues.RemoveMembers(ctx, issueID, string(entity), toRemove); err != nil {
			return errs.Wrap(err, "remove issue members")
		}
	}
	return nil
}

// ResolveMissingIssues resolves every open issue of the given type and entity
// whose signature was not produced by the current run. Muted issues are left
// alone because the filter only selects open issues.
func (s *Service) ResolveMissingIssues(ctx context.Context, entity domaindq.EntityType, issueType domaindq.IssueType, seen map[string]struct{}, actor string) (int64, error) {
	open, err := s.issues.ListIssues(ctx, ports.IssueFilter{
		IssueType:    string(issueType),
		TargetEntity: string(entity),
		Status:       domaindq.StatusOpen,
	})
	if err != nil {
		return 0, errs.Wrap(err, "list open issues")
	}

	var stale []uint64
	for _, issue := range open {
		if _, ok := seen[issue.Signature]; !ok {
			stale = append(stale, issue.IssueID)
		}
	}
	if len(stale) == 0 {
		return 0, nil
	}

	now := s.now().UTC().Format(time.RFC3339)
	resolved, err := s.issues.MarkResolved(ctx, stale, now, actor)
	if err != nil {
		return 0, errs.Wrap(err, "resolve stale issues")
	}
	return resolved, nil
}

func marshalKeys(keys map[string]string) (string, error) {
	if keys == nil {
		keys = map[string]string{}
	}
	raw, err := json.Marshal(keys)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func marshalDetails(details map[string]any) (string, error) {
	if details == nil {
		details = map[string]any{}
	}
	raw, err := json.Marshal(details)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func sortedUnique(ids []uint64) []uint64 {
	if len(ids) == 0 {
		return nil
	}
	out := make([]uint64, 0, len(ids))
	seen := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
