package dq

import (
	"context"
	"time"

	domaindq "surveydq/internal/domain/dq"
	"surveydq/internal/errs"
	"surveydq/internal/ports"
)

// Config carries the engine thresholds and run defaults.
type Config struct {
	Window         time.Duration
	MinDuration    time.Duration
	MaxDelay       time.Duration
	Location       *time.Location
	Limit          int
	ResolveMissing bool
	ReportDir      string
}

func (c Config) withDefaults() Config {
	if c.Window <= 0 {
		c.Window = domaindq.DefaultWindow
	}
	if c.MinDuration <= 0 {
		c.MinDuration = domaindq.DefaultMinDuration
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = domaindq.DefaultMaxDelay
	}
	if c.Location == nil {
		c.Location = time.Local
	}
	return c
}

type Service struct {
	issues  ports.IssueRepository
	records ports.RecordSource
	runs    ports.RunLog
	uow     ports.UnitOfWork
	cfg     Config
	now     func() time.Time
}

// NewService wires the detection and issue lifecycle usecases.
func NewService(issues ports.IssueRepository, records ports.RecordSource, runs ports.RunLog, uow ports.UnitOfWork, cfg Config) *Service {
	return &Service{
		issues:  issues,
		records: records,
		runs:    runs,
		uow:     uow,
		cfg:     cfg.withDefaults(),
		now:     time.Now,
	}
}

func (s *Service) ListIssues(ctx context.Context, filter ports.IssueFilter) ([]ports.Issue, error) {
	issues, err := s.issues.ListIssues(ctx, filter)
	if err != nil {
		return nil, errs.Wrap(err, "list issues")
	}
	return issues, nil
}

func (s *Service) GetIssue(ctx context.Context, issueID uint64) (ports.Issue, []uint64, error) {
	issue, err := s.issues.GetIssue(ctx, issueID)
	if err != nil {
		return ports.Issue{}, nil, errs.Wrap(err, "get issue")
	}
	members, err := s.issues.ListMemberIDs(ctx, issueID)
	if err != nil {
		return ports.Issue{}, nil, errs.Wrap(err, "list issue members")
	}
	return issue, members, nil
}

// ResolveIssue resolves one open issue by id. Returns false when the issue
// exists but is not open.
func (s *Service) ResolveIssue(ctx context.Context, issueID uint64, actor string) (bool, error) {
	if _, err := s.issues.GetIssue(ctx, issueID); err != nil {
		return false, errs.Wrap(err, "get issue")
	}

	now := s.now().UTC().Format(time.RFC3339)
	changed, err := s.issues.MarkResolved(ctx, []uint64{issueID}, now, actor)
	if err != nil {
		return false, errs.Wrap(err, "mark issue resolved")
	}
	return changed > 0, nil
}

// MuteIssue mutes one open issue by id. A muted issue stays muted across
// later detection runs.
func (s *Service) MuteIssue(ctx context.Context, issueID uint64, actor string) error {
	if _, err := s.issues.GetIssue(ctx, issueID); err != nil {
		return errs.Wrap(err, "get issue")
	}

	now := s.now().UTC().Format(time.RFC3339)
	if err := s.issues.MarkMuted(ctx, issueID, actor, now); err != nil {
		return errs.Wrap(err, "mark issue muted")
	}
	return nil
}

func (s *Service) ListRuns(ctx context.Context, entityType string, limit int) ([]ports.RunRecord, error) {
	runs, err := s.runs.ListRuns(ctx, entityType, limit)
	if err != nil {
		return nil, errs.Wrap(err, "list runs")
	}
	return runs, nil
}
