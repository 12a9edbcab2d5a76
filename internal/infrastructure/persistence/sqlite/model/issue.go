package model

type Issue struct {
	IssueID      uint64  `gorm:"column:issue_id;primaryKey;autoIncrement"`
	IssueType    string  `gorm:"column:issue_type;type:text;not null;index:idx_dq_issues_scope,priority:1"`
	TargetEntity string  `gorm:"column:target_entity;type:text;not null;index:idx_dq_issues_scope,priority:2"`
	Signature    string  `gorm:"column:signature;type:text;not null;uniqueIndex"`
	Title        string  `gorm:"column:title;type:text;not null"`
	KeysJSON     string  `gorm:"column:keys_json;type:text;not null"`
	DetailsJSON  string  `gorm:"column:details_json;type:text;not null"`
	Status       string  `gorm:"column:status;type:text;not null;index:idx_dq_issues_scope,priority:3"`
	DetectedAt   string  `gorm:"column:detected_at;type:text;not null"`
	UpdatedAt    string  `gorm:"column:updated_at;type:text;not null"`
	ResolvedAt   *string `gorm:"column:resolved_at;type:text"`
	ResolvedBy   *string `gorm:"column:resolved_by;type:text"`
}

func (Issue) TableName() string {
	return "dq_issues"
}
