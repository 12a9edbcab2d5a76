package ports

import "context"

// RunRecord is the persisted summary of one engine invocation.
type RunRecord struct {
	RunUID        string
	EntityType    string
	RecordCount   int
	FindingCount  int
	ResolvedCount int
	SkippedCount  int
	CountsJSON    string
	StartedAt     string
	FinishedAt    string
}

type RunLog interface {
	RecordRun(ctx context.Context, run RunRecord) error
	ListRuns(ctx context.Context, entityType string, limit int) ([]RunRecord, error)
}
