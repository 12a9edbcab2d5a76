package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"surveydq/internal/errs"
	"surveydq/internal/infrastructure/persistence/sqlite/model"
	"surveydq/internal/ports"
)

type IssueRepository struct {
	db *gorm.DB
}

func NewIssueRepository(db *gorm.DB) *IssueRepository {
	return &IssueRepository{db: db}
}

func (r *IssueRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return r.db.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

func (r *IssueRepository) GetIssue(ctx context.Context, issueID uint64) (ports.Issue, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Issue{}, err
	}

	var row model.Issue
	if err := db.First(&row, "issue_id = ?", issueID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Issue{}, ports.ErrIssueNotFound
		}
		return ports.Issue{}, errs.Wrap(err, "query issue")
	}
	return mapIssue(row), nil
}

func (r *IssueRepository) FindBySignature(ctx context.Context, signature string) (ports.Issue, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Issue{}, err
	}

	var row model.Issue
	if err := db.First(&row, "signature = ?", signature).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Issue{}, ports.ErrIssueNotFound
		}
		return ports.Issue{}, errs.Wrap(err, "query issue by signature")
	}
	return mapIssue(row), nil
}

func (r *IssueRepository) ListIssues(ctx context.Context, filter ports.IssueFilter) ([]ports.Issue, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Issue{})
	if filter.IssueType != "" {
		query = query.Where("issue_type = ?", filter.IssueType)
	}
	if filter.TargetEntity != "" {
		query = query.Where("target_entity = ?", filter.TargetEntity)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var rows []model.Issue
	if err := query.Order("issue_id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query issues")
	}

	items := make([]ports.Issue, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapIssue(row))
	}
	return items, nil
}

func (r *IssueRepository) ListMemberIDs(ctx context.Context, issueID uint64) ([]uint64, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var ids []uint64
	if err := db.Model(&model.IssueMember{}).
		Where("issue_id = ?", issueID).
		Order("entity_id asc").
		Pluck("entity_id", &ids).Error; err != nil {
		return nil, errs.Wrap(err, "query issue member ids")
	}
	return ids, nil
}

func (r *IssueRepository) CreateIssue(ctx context.Context, issue ports.Issue) (ports.Issue, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Issue{}, err
	}

	row := model.Issue{
		IssueType:    issue.IssueType,
		TargetEntity: issue.TargetEntity,
		Signature:    issue.Signature,
		Title:        issue.Title,
		KeysJSON:     issue.KeysJSON,
		DetailsJSON:  issue.DetailsJSON,
		Status:       issue.Status,
		DetectedAt:   issue.DetectedAt,
		UpdatedAt:    issue.UpdatedAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.Issue{}, errs.Wrap(err, "insert issue")
	}
	return mapIssue(row), nil
}

func (r *IssueRepository) PatchIssueMeta(ctx context.Context, issueID uint64, title, keysJSON, detailsJSON, updatedAt string) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	result := db.Model(&model.Issue{}).
		Where("issue_id = ?", issueID).
		Updates(map[string]any{
			"title":        title,
			"keys_json":    keysJSON,
			"details_json": detailsJSON,
			"updated_at":   updatedAt,
		})
	if result.Error != nil {
		return errs.Wrap(result.Error, "patch issue metadata")
	}
	if result.RowsAffected == 0 {
		return ports.ErrIssueNotFound
	}
	return nil
}

func (r *IssueRepository) ReopenIssue(ctx context.Context, issueID uint64, updatedAt string) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	result := db.Model(&model.Issue{}).
		Where("issue_id = ?", issueID).
		Updates(map[string]any{
			"status":      "open",
			"resolved_at": nil,
			"resolved_by": nil,
			"updated_at":  updatedAt,
		})
	if result.Error != nil {
		return errs.Wrap(result.Error, "reopen issue")
	}
	if result.RowsAffected == 0 {
		return ports.ErrIssueNotFound
	}
	return nil
}

func (r *IssueRepository) MarkResolved(ctx context.Context, issueIDs []uint64, resolvedAt, resolvedBy string) (int64, error) {
	if len(issueIDs) == 0 {
		return 0, nil
	}
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}

	updates := map[string]any{
		"status":      "resolved",
		"resolved_at": resolvedAt,
		"updated_at":  resolvedAt,
	}
	if resolvedBy != "" {
		updates["resolved_by"] = resolvedBy
	}

	result := db.Model(&model.Issue{}).
		Where("issue_id IN ? AND status = ?", issueIDs, "open").
		Updates(updates)
	if result.Error != nil {
		return 0, errs.Wrap(result.Error, "mark issues resolved")
	}
	return result.RowsAffected, nil
}

func (r *IssueRepository) MarkMuted(ctx context.Context, issueID uint64, mutedBy, updatedAt string) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	updates := map[string]any{
		"status":     "muted",
		"updated_at": updatedAt,
	}
	if mutedBy != "" {
		updates["resolved_by"] = mutedBy
	}

	result := db.Model(&model.Issue{}).
		Where("issue_id = ? AND status = ?", issueID, "open").
		Updates(updates)
	if result.Error != nil {
		return errs.Wrap(result.Error, "mute issue")
	}
	if result.RowsAffected == 0 {
		return ports.ErrIssueNotFound
	}
	return nil
}

func (r *IssueRepository) AddMembers(ctx context.Context, issueID uint64, entityType string, entityIDs []uint64) error {
	if len(entityIDs) == 0 {
		return nil
	}
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	// The membership invariant is enforced here, in the insert path: a member
	// whose entity type disagrees with the issue's target is a wiring bug.
	var issue model.Issue
	if err := db.First(&issue, "issue_id = ?", issueID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.ErrIssueNotFound
		}
		return errs.Wrap(err, "query issue for member insert")
	}
	if issue.TargetEntity != entityType {
		return fmt.Errorf("%w: issue targets %q, member is %q",
			ports.ErrMemberTypeMismatch, issue.TargetEntity, entityType)
	}

	rows := make([]model.IssueMember, 0, len(entityIDs))
	for _, id := range entityIDs {
		rows = append(rows, model.IssueMember{
			IssueID:    issueID,
			EntityType: entityType,
			EntityID:   id,
		})
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
		return errs.Wrap(err, "insert issue members")
	}
	return nil
}

func (r *IssueRepository) RemoveMembers(ctx context.Context, issueID uint64, entityType string, entityIDs []uint64) error {
	if len(entityIDs) == 0 {
		return nil
	}
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	if err := db.
		Where("issue_id = ? AND entity_type = ? AND entity_id IN ?", issueID, entityType, entityIDs).
		Delete(&model.IssueMember{}).Error; err != nil {
		return errs.Wrap(err, "delete issue members")
	}
	return nil
}

func mapIssue(row model.Issue) ports.Issue {
	return ports.Issue{
		IssueID:      row.IssueID,
		IssueType:    row.IssueType,
		TargetEntity: row.TargetEntity,
		Signature:    row.Signature,
		Title:        row.Title,
		KeysJSON:     row.KeysJSON,
		DetailsJSON:  row.DetailsJSON,
		Status:       row.Status,
		DetectedAt:   row.DetectedAt,
		UpdatedAt:    row.UpdatedAt,
		ResolvedAt:   row.ResolvedAt,
		ResolvedBy:   row.ResolvedBy,
	}
}
