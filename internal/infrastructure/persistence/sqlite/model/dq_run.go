package model

type DQRun struct {
	DQRunID       uint64 `gorm:"column:dq_run_id;primaryKey;autoIncrement"`
	RunUID        string `gorm:"column:run_uid;type:text;not null;uniqueIndex"`
	EntityType    string `gorm:"column:entity_type;type:text;not null;index"`
	RecordCount   int    `gorm:"column:record_count;not null"`
	FindingCount  int    `gorm:"column:finding_count;not null"`
	ResolvedCount int    `gorm:"column:resolved_count;not null"`
	SkippedCount  int    `gorm:"column:skipped_count;not null"`
	CountsJSON    string `gorm:"column:counts_json;type:text;not null"`
	StartedAt     string `gorm:"column:started_at;type:text;not null"`
	FinishedAt    string `gorm:"column:finished_at;type:text;not null;index"`
}

func (DQRun) TableName() string {
	return "dq_runs"
}
