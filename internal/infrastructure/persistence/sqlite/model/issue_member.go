package model

type IssueMember struct {
	MemberID   uint64 `gorm:"column:member_id;primaryKey;autoIncrement"`
	IssueID    uint64 `gorm:"column:issue_id;not null;uniqueIndex:uq_dq_issue_member,priority:1"`
	EntityType string `gorm:"column:entity_type;type:text;not null;uniqueIndex:uq_dq_issue_member,priority:2"`
	EntityID   uint64 `gorm:"column:entity_id;not null;uniqueIndex:uq_dq_issue_member,priority:3;index:idx_dq_member_entity"`
}

func (IssueMember) TableName() string {
	return "dq_issue_members"
}
