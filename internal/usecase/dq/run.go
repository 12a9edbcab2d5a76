package dq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"surveydq/internal/bootstrap/logging"
	domaindq "surveydq/internal/domain/dq"
	"surveydq/internal/errs"
	"surveydq/internal/ports"
)

// engineActor is recorded as the resolver of issues the engine auto-resolves.
const engineActor = "dq-engine"

type RunOptions struct {
	// Limit bounds how many records are scanned; <= 0 falls back to the
	// configured default (0 meaning the full table).
	Limit int
	// NoResolve disables auto-resolution of stale issues for this run.
	NoResolve bool
}

type RunResult struct {
	RunUID        string
	EntityType    string
	RecordCount   int
	FindingCount  int
	CreatedCount  int
	UpdatedCount  int
	ResolvedCount int
	SkippedCount  int
	CountsByKind  map[string]int
	Rows          []ReportRow
	StartedAt     time.Time
	FinishedAt    time.Time
}

// Run scans every record of one entity type, upserts an issue per finding and
// resolves open issues whose signatures did not recur. A record whose checks
// panic is skipped and counted; it never aborts the run.
func (s *Service) Run(ctx context.Context, entity domaindq.EntityType, opts RunOptions) (RunResult, error) {
	started := s.now()
	result := RunResult{
		RunUID:       uuid.NewString(),
		EntityType:   string(entity),
		CountsByKind: map[string]int{},
		StartedAt:    started,
	}

	logCtx := logging.WithAttrs(ctx,
		slog.String("component", "usecase.dq"),
		slog.String("run_uid", result.RunUID),
		slog.String("entity_type", string(entity)),
	)

	limit := opts.Limit
	if limit <= 0 {
		limit = s.cfg.Limit
	}

	records, err := s.records.ListRecords(ctx, string(entity), limit)
	if err != nil {
		return RunResult{}, errs.Wrap(err, "list records")
	}
	result.RecordCount = len(records)

	recs := make([]domaindq.Record, 0, len(records))
	for _, r := range records {
		recs = append(recs, domaindq.Record{ID: r.ID, Fields: r.Fields})
	}

	findings := domaindq.FindDuplicates(recs, domaindq.DetectorConfig{
		Window:   s.cfg.Window,
		Location: s.cfg.Location,
	})
	for _, rec := range recs {
		recFindings, ok := s.checkRecord(logCtx, entity, rec)
		if !ok {
			result.SkippedCount++
			continue
		}
		findings = append(findings, recFindings...)
	}
	result.FindingCount = len(findings)

	seen := map[domaindq.IssueType]map[string]struct{}{}
	for _, issueType := range applicableIssueTypes(entity) {
		seen[issueType] = map[string]struct{}{}
	}

	for _, f := range findings {
		signature, created, upsertErr := s.UpsertIssue(ctx, entity, f)
		if upsertErr != nil {
			logging.Error(logCtx, "upsert finding failed",
				slog.String("kind", string(f.Kind)),
				slog.String("error", upsertErr.Error()),
			)
			result.SkippedCount++
			continue
		}
		if created {
			result.CreatedCount++
		} else {
			result.UpdatedCount++
		}
		result.CountsByKind[string(f.Kind)]++
		if sigs, ok := seen[f.Kind.IssueType()]; ok {
			sigs[signature] = struct{}{}
		}
		result.Rows = append(result.Rows, newReportRow(entity, f, signature))
	}

	if s.cfg.ResolveMissing && !opts.NoResolve {
		for _, issueType := range applicableIssueTypes(entity) {
			resolved, resolveErr := s.ResolveMissingIssues(ctx, entity, issueType, seen[issueType], engineActor)
			if resolveErr != nil {
				return RunResult{}, errs.Wrapf(resolveErr, "resolve missing %s issues", issueType)
			}
			result.ResolvedCount += int(resolved)
		}
	}

	result.FinishedAt = s.now()

	countsJSON, err := json.Marshal(result.CountsByKind)
	if err != nil {
		return RunResult{}, errs.Wrap(err, "marshal run counts")
	}
	if err := s.runs.RecordRun(ctx, ports.RunRecord{
		RunUID:        result.RunUID,
		EntityType:    result.EntityType,
		RecordCount:   result.RecordCount,
		FindingCount:  result.FindingCount,
		ResolvedCount: result.ResolvedCount,
		SkippedCount:  result.SkippedCount,
		CountsJSON:    string(countsJSON),
		StartedAt:     result.StartedAt.UTC().Format(time.RFC3339),
		FinishedAt:    result.FinishedAt.UTC().Format(time.RFC3339),
	}); err != nil {
		return RunResult{}, errs.Wrap(err, "record run")
	}

	logging.Info(logCtx, "detection run completed",
		slog.Int("records", result.RecordCount),
		slog.Int("findings", result.FindingCount),
		slog.Int("resolved", result.ResolvedCount),
		slog.Int("skipped", result.SkippedCount),
	)

	return result, nil
}

// checkRecord runs the per-record checkers. A panic in any checker marks the
// record as skipped instead of taking the run down.
func (s *Service) checkRecord(ctx context.Context, entity domaindq.EntityType, rec domaindq.Record) (findings []domaindq.Finding, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error(ctx, "record check panicked",
				slog.Uint64("record_id", rec.ID),
				slog.String("panic", fmt.Sprint(r)),
			)
			findings = nil
			ok = false
		}
	}()

	ruleCfg := domaindq.RuleConfig{
		MinDuration: s.cfg.MinDuration,
		MaxDelay:    s.cfg.MaxDelay,
		Location:    s.cfg.Location,
	}

	if f, flagged := domaindq.CheckShortDuration(rec, ruleCfg); flagged {
		findings = append(findings, f)
	}
	if f, flagged := domaindq.CheckLateSubmission(rec, ruleCfg); flagged {
		findings = append(findings, f)
	}
	if entity == domaindq.EntityHousehold {
		if f, flagged := domaindq.CheckCompleteness(rec); flagged {
			findings = append(findings, f)
		}
		if f, flagged := domaindq.CheckConsent(rec); flagged {
			findings = append(findings, f)
		}
	}

	return findings, true
}

// applicableIssueTypes lists the issue buckets a run over the given entity is
// authoritative for. Stale resolution only touches these buckets, so a
// pregnancy run never resolves household completeness issues.
func applicableIssueTypes(entity domaindq.EntityType) []domaindq.IssueType {
	types := []domaindq.IssueType{
		domaindq.IssueDuplicate,
		domaindq.IssueDuration,
		domaindq.IssueTimeliness,
	}
	if entity == domaindq.EntityHousehold {
		types = append(types, domaindq.IssueIncomplete, domaindq.IssueConsent)
	}
	return types
}
