package dq

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	domaindq "surveydq/internal/domain/dq"
	"surveydq/internal/infrastructure/persistence/sqlite/model"
	sqliterepo "surveydq/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "surveydq/internal/infrastructure/persistence/sqlite/uow"
	"surveydq/internal/ports"
)

func setupService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "dq.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(
		&model.Issue{},
		&model.IssueMember{},
		&model.DQRun{},
		&model.Household{},
		&model.Pregnancy{},
		&model.PregnancyOutcome{},
		&model.Death{},
	); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	svc := NewService(
		sqliterepo.NewIssueRepository(db),
		sqliterepo.NewRecordSource(db),
		sqliterepo.NewRunLog(db),
		sqliteuow.NewUnitOfWork(db),
		Config{Location: time.UTC, ResolveMissing: true},
	)
	return svc, db
}

func sampleFinding(memberIDs ...uint64) domaindq.Finding {
	return domaindq.Finding{
		Kind:      domaindq.KindShortDuration,
		MemberIDs: memberIDs,
		Keys:      map[string]string{"start": "2024-03-01T09:00:00Z", "end": "2024-03-01T09:05:00Z"},
		Details:   map[string]any{"duration_minutes": "5.00"},
	}
}

func TestUpsertIssueCreatesThenRefreshes(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	sig1, created, err := svc.UpsertIssue(ctx, domaindq.EntityHousehold, sampleFinding(7))
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if !created {
		t.Fatalf("first upsert should create")
	}

	sig2, created, err := svc.UpsertIssue(ctx, domaindq.EntityHousehold, sampleFinding(7))
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if created {
		t.Fatalf("second upsert should not create")
	}
	if sig1 != sig2 {
		t.Fatalf("signature changed across upserts: %q vs %q", sig1, sig2)
	}

	issues, err := svc.ListIssues(ctx, ports.IssueFilter{})
	if err != nil {
		t.Fatalf("list issues: %v", err)
	}
	if len(issues) != 1 {
		t.Fatalf("issue count = %d, want 1", len(issues))
	}
	if issues[0].Status != domaindq.StatusOpen {
		t.Fatalf("status = %q, want open", issues[0].Status)
	}
}

func TestUpsertIssueReopensResolved(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	_, _, err := svc.UpsertIssue(ctx, domaindq.EntityHousehold, sampleFinding(7))
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	issues, err := svc.ListIssues(ctx, ports.IssueFilter{})
	if err != nil {
		t.Fatalf("list issues: %v", err)
	}
	issueID := issues[0].IssueID

	changed, err := svc.ResolveIssue(ctx, issueID, "reviewer")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !changed {
		t.Fatalf("resolve did not change the issue")
	}

	_, created, err := svc.UpsertIssue(ctx, domaindq.EntityHousehold, sampleFinding(7))
	if err != nil {
		t.Fatalf("re-upsert: %v", err)
	}
	if created {
		t.Fatalf("re-upsert created a second issue")
	}

	issue, _, err := svc.GetIssue(ctx, issueID)
	if err != nil {
		t.Fatalf("get issue: %v", err)
	}
	if issue.Status != domaindq.StatusOpen {
		t.Fatalf("status = %q, want open after reopen", issue.Status)
	}
	if issue.ResolvedAt != nil {
		t.Fatalf("resolved_at not cleared after reopen")
	}
}

func TestUpsertIssueKeepsMutedMuted(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	_, _, err := svc.UpsertIssue(ctx, domaindq.EntityHousehold, sampleFinding(7))
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	issues, err := svc.ListIssues(ctx, ports.IssueFilter{})
	if err != nil {
		t.Fatalf("list issues: %v", err)
	}
	issueID := issues[0].IssueID

	if err := svc.MuteIssue(ctx, issueID, "reviewer"); err != nil {
		t.Fatalf("mute: %v", err)
	}

	if _, _, err := svc.UpsertIssue(ctx, domaindq.EntityHousehold, sampleFinding(7)); err != nil {
		t.Fatalf("re-upsert: %v", err)
	}

	issue, _, err := svc.GetIssue(ctx, issueID)
	if err != nil {
		t.Fatalf("get issue: %v", err)
	}
	if issue.Status != domaindq.StatusMuted {
		t.Fatalf("status = %q, want muted", issue.Status)
	}
}

func TestUpsertIssueReconcilesMembership(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	finding := domaindq.Finding{
		Kind:      domaindq.KindWindowDuplicate,
		MemberIDs: []uint64{1, 2},
		Keys:      map[string]string{"ea": "ea1", "hun": "h1", "hhn": "hh1"},
	}
	if _, _, err := svc.UpsertIssue(ctx, domaindq.EntityHousehold, finding); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	// Same signature requires the same member set, so reconcile through a
	// keys-identified finding instead: patch the stored membership directly.
	issues, err := svc.ListIssues(ctx, ports.IssueFilter{})
	if err != nil {
		t.Fatalf("list issues: %v", err)
	}
	issueID := issues[0].IssueID

	if err := svc.reconcileMembers(ctx, issueID, domaindq.EntityHousehold, []uint64{2, 3}); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	_, members, err := svc.GetIssue(ctx, issueID)
	if err != nil {
		t.Fatalf("get issue: %v", err)
	}
	if len(members) != 2 || members[0] != 2 || members[1] != 3 {
		t.Fatalf("members = %v, want [2 3]", members)
	}
}

func TestResolveMissingIssuesSkipsSeenAndMuted(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	sigKeep, _, err := svc.UpsertIssue(ctx, domaindq.EntityHousehold, sampleFinding(1))
	if err != nil {
		t.Fatalf("upsert keep: %v", err)
	}
	sigStale, _, err := svc.UpsertIssue(ctx, domaindq.EntityHousehold, sampleFinding(2))
	if err != nil {
		t.Fatalf("upsert stale: %v", err)
	}
	sigMuted, _, err := svc.UpsertIssue(ctx, domaindq.EntityHousehold, sampleFinding(3))
	if err != nil {
		t.Fatalf("upsert muted: %v", err)
	}

	mutedIssue, err := svc.issues.FindBySignature(ctx, sigMuted)
	if err != nil {
		t.Fatalf("find muted: %v", err)
	}
	if err := svc.MuteIssue(ctx, mutedIssue.IssueID, "reviewer"); err != nil {
		t.Fatalf("mute: %v", err)
	}

	seen := map[string]struct{}{sigKeep: {}}
	resolved, err := svc.ResolveMissingIssues(ctx, domaindq.EntityHousehold, domaindq.IssueDuration, seen, "dq-engine")
	if err != nil {
		t.Fatalf("resolve missing: %v", err)
	}
	if resolved != 1 {
		t.Fatalf("resolved = %d, want 1", resolved)
	}

	keep, err := svc.issues.FindBySignature(ctx, sigKeep)
	if err != nil {
		t.Fatalf("find keep: %v", err)
	}
	if keep.Status != domaindq.StatusOpen {
		t.Fatalf("seen issue status = %q, want open", keep.Status)
	}

	stale, err := svc.issues.FindBySignature(ctx, sigStale)
	if err != nil {
		t.Fatalf("find stale: %v", err)
	}
	if stale.Status != domaindq.StatusResolved {
		t.Fatalf("stale issue status = %q, want resolved", stale.Status)
	}
	if stale.ResolvedBy == nil || *stale.ResolvedBy != "dq-engine" {
		t.Fatalf("stale resolved_by = %v, want dq-engine", stale.ResolvedBy)
	}

	muted, err := svc.issues.FindBySignature(ctx, sigMuted)
	if err != nil {
		t.Fatalf("find muted: %v", err)
	}
	if muted.Status != domaindq.StatusMuted {
		t.Fatalf("muted issue status = %q, want muted", muted.Status)
	}
}
