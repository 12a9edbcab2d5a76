package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"surveydq/internal/errs"
	"surveydq/internal/infrastructure/persistence/sqlite/model"
	"surveydq/internal/ports"
)

type RunLog struct {
	db *gorm.DB
}

func NewRunLog(db *gorm.DB) *RunLog {
	return &RunLog{db: db}
}

func (l *RunLog) dbFromContext(ctx context.Context) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return l.db.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

func (l *RunLog) RecordRun(ctx context.Context, run ports.RunRecord) error {
	db, err := l.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row := model.DQRun{
		RunUID:        run.RunUID,
		EntityType:    run.EntityType,
		RecordCount:   run.RecordCount,
		FindingCount:  run.FindingCount,
		ResolvedCount: run.ResolvedCount,
		SkippedCount:  run.SkippedCount,
		CountsJSON:    run.CountsJSON,
		StartedAt:     run.StartedAt,
		FinishedAt:    run.FinishedAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return errs.Wrap(err, "insert run record")
	}
	return nil
}

func (l *RunLog) ListRuns(ctx context.Context, entityType string, limit int) ([]ports.RunRecord, error) {
	db, err := l.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.DQRun{}).Order("dq_run_id desc")
	if entityType != "" {
		query = query.Where("entity_type = ?", entityType)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []model.DQRun
	if err := query.Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query run records")
	}

	items := make([]ports.RunRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.RunRecord{
			RunUID:        row.RunUID,
			EntityType:    row.EntityType,
			RecordCount:   row.RecordCount,
			FindingCount:  row.FindingCount,
			ResolvedCount: row.ResolvedCount,
			SkippedCount:  row.SkippedCount,
			CountsJSON:    row.CountsJSON,
			StartedAt:     row.StartedAt,
			FinishedAt:    row.FinishedAt,
		})
	}
	return items, nil
}
