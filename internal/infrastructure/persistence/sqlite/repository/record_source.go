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

// RecordSource flattens the survey tables into the field maps the engine
// consumes. Ids are the table primary keys, so they are stable across runs.
type RecordSource struct {
	db *gorm.DB
}

func NewRecordSource(db *gorm.DB) *RecordSource {
	return &RecordSource{db: db}
}

func (s *RecordSource) dbFromContext(ctx context.Context) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return s.db.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

func (s *RecordSource) ListRecords(ctx context.Context, entityType string, limit int) ([]ports.SurveyRecord, error) {
	db, err := s.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	switch entityType {
	case "household":
		return s.listHouseholds(db, limit)
	case "pregnancy":
		return s.listPregnancies(db, limit)
	case "pregnancy_outcome":
		return s.listPregnancyOutcomes(db, limit)
	case "death":
		return s.listDeaths(db, limit)
	default:
		return nil, fmt.Errorf("unknown entity type %q", entityType)
	}
}

func (s *RecordSource) listHouseholds(db *gorm.DB, limit int) ([]ports.SurveyRecord, error) {
	query := db.Model(&model.Household{}).Order("household_id asc")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []model.Household
	if err := query.Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query households")
	}

	items := make([]ports.SurveyRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.SurveyRecord{
			ID: row.HouseholdID,
			Fields: map[string]string{
				"province":        row.Province,
				"district":        row.District,
				"constituency":    row.Constituency,
				"ward":            row.Ward,
				"ea":              row.EA,
				"hun":             row.HUN,
				"hhn":             row.HHN,
				"start":           row.Start,
				"end":             row.End,
				"today":           row.Today,
				"submission_date": row.SubmissionDate,
				"submit_time":     row.SubmitTime,
				"enumerator":      row.Enumerator,
				"respondent":      row.Respondent,
				"household":       row.Household,
				"consent":         row.Consent,
				"result_list":     row.ResultList,
				"result_other":    row.ResultOther,
				"HH_01":           row.HH01,
				"HH_02":           row.HH02,
				"HH_16":           row.HH16,
				"HH_16A":          row.HH16A,
				"HH_17":           row.HH17,
				"HH_17A":          row.HH17A,
				"HH_18":           row.HH18,
				"HH_18A":          row.HH18A,
				"HH_19":           row.HH19,
				"HH_19A":          row.HH19A,
				"HH_20":           row.HH20,
				"HH_21":           row.HH21,
				"HH_22":           row.HH22,
			},
		})
	}
	return items, nil
}

func (s *RecordSource) listPregnancies(db *gorm.DB, limit int) ([]ports.SurveyRecord, error) {
	query := db.Model(&model.Pregnancy{}).Order("pregnancy_id asc")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []model.Pregnancy
	if err := query.Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query pregnancies")
	}

	items := make([]ports.SurveyRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.SurveyRecord{
			ID: row.PregnancyID,
			Fields: map[string]string{
				"province":        row.Province,
				"district":        row.District,
				"constituency":    row.Constituency,
				"ward":            row.Ward,
				"ea":              row.EA,
				"start":           row.Start,
				"end":             row.End,
				"today":           row.Today,
				"submission_date": row.SubmissionDate,
				"submit_time":     row.SubmitTime,
				"enumerator":      row.Enumerator,
				"respondent":      row.Respondent,
				"consent":         row.Consent,
			},
		})
	}
	return items, nil
}

func (s *RecordSource) listPregnancyOutcomes(db *gorm.DB, limit int) ([]ports.SurveyRecord, error) {
	query := db.Model(&model.PregnancyOutcome{}).Order("pregnancy_outcome_id asc")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []model.PregnancyOutcome
	if err := query.Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query pregnancy outcomes")
	}

	items := make([]ports.SurveyRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.SurveyRecord{
			ID: row.PregnancyOutcomeID,
			Fields: map[string]string{
				"province":        row.Province,
				"district":        row.District,
				"constituency":    row.Constituency,
				"ward":            row.Ward,
				"ea":              row.EA,
				"start":           row.Start,
				"end":             row.End,
				"today":           row.Today,
				"submission_date": row.SubmissionDate,
				"submit_time":     row.SubmitTime,
				"enumerator":      row.Enumerator,
				"respondent":      row.Respondent,
				"consent":         row.Consent,
			},
		})
	}
	return items, nil
}

func (s *RecordSource) listDeaths(db *gorm.DB, limit int) ([]ports.SurveyRecord, error) {
	query := db.Model(&model.Death{}).Order("death_id asc")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []model.Death
	if err := query.Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query deaths")
	}

	items := make([]ports.SurveyRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.SurveyRecord{
			ID: row.DeathID,
			Fields: map[string]string{
				"province":        row.Province,
				"district":        row.District,
				"constituency":    row.Constituency,
				"ward":            row.Ward,
				"ea":              row.EA,
				"start":           row.Start,
				"end":             row.End,
				"today":           row.Today,
				"submission_date": row.SubmissionDate,
				"submit_time":     row.SubmitTime,
				"enumerator":      row.Enumerator,
				"respondent":      row.Respondent,
				"consent":         row.Consent,
			},
		})
	}
	return items, nil
}
