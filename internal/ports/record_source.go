package ports

import "context"

// SurveyRecord is one entity row flattened to the fields the engine checks:
// a stable numeric id plus field name -> raw value.
type SurveyRecord struct {
	ID     uint64
	Fields map[string]string
}

// RecordSource hands over every current record of one entity type. limit <= 0
// means the full table; a positive limit bounds the batch without changing
// which checks run.
type RecordSource interface {
	ListRecords(ctx context.Context, entityType string, limit int) ([]SurveyRecord, error)
}
