package dq

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	domaindq "surveydq/internal/domain/dq"
	"surveydq/internal/errs"
)

// ReportRow is one finding shaped for the run report files.
type ReportRow struct {
	IssueType string            `json:"issue_type"`
	Subtype   string            `json:"subtype"`
	Title     string            `json:"title"`
	Entity    string            `json:"entity"`
	Signature string            `json:"signature"`
	MemberIDs []uint64          `json:"member_ids"`
	Keys      map[string]string `json:"keys"`
	Details   map[string]any    `json:"details"`
}

func newReportRow(entity domaindq.EntityType, f domaindq.Finding, signature string) ReportRow {
	keys := f.Keys
	if keys == nil {
		keys = map[string]string{}
	}
	details := f.Details
	if details == nil {
		details = map[string]any{}
	}
	return ReportRow{
		IssueType: string(f.Kind.IssueType()),
		Subtype:   string(f.Kind),
		Title:     f.Kind.Title(),
		Entity:    string(entity),
		Signature: signature,
		MemberIDs: sortedUnique(f.MemberIDs),
		Keys:      keys,
		Details:   details,
	}
}

// WriteReports writes the run's findings as JSON and CSV under dir and
// returns the two paths. The directory is created when missing.
func (s *Service) WriteReports(dir string, result RunResult) (jsonPath, csvPath string, err error) {
	if dir == "" {
		dir = s.cfg.ReportDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", errs.Wrapf(err, "create report directory %q", dir)
	}

	stamp := result.StartedAt.UTC().Format("20060102T150405Z")
	base := fmt.Sprintf("dq_%s_%s", result.EntityType, stamp)

	jsonPath = filepath.Join(dir, base+".json")
	if err := writeJSONReport(jsonPath, result); err != nil {
		return "", "", err
	}

	csvPath = filepath.Join(dir, base+".csv")
	if err := writeCSVReport(csvPath, result.Rows); err != nil {
		return "", "", err
	}

	return jsonPath, csvPath, nil
}

func writeJSONReport(path string, result RunResult) error {
	payload := struct {
		RunUID        string         `json:"run_uid"`
		EntityType    string         `json:"entity_type"`
		RecordCount   int            `json:"record_count"`
		FindingCount  int            `json:"finding_count"`
		ResolvedCount int            `json:"resolved_count"`
		SkippedCount  int            `json:"skipped_count"`
		CountsByKind  map[string]int `json:"counts_by_kind"`
		StartedAt     string         `json:"started_at"`
		FinishedAt    string         `json:"finished_at"`
		Findings      []ReportRow    `json:"findings"`
	}{
		RunUID:        result.RunUID,
		EntityType:    result.EntityType,
		RecordCount:   result.RecordCount,
		FindingCount:  result.FindingCount,
		ResolvedCount: result.ResolvedCount,
		SkippedCount:  result.SkippedCount,
		CountsByKind:  result.CountsByKind,
		StartedAt:     result.StartedAt.UTC().Format(time.RFC3339),
		FinishedAt:    result.FinishedAt.UTC().Format(time.RFC3339),
		Findings:      result.Rows,
	}
	if payload.Findings == nil {
		payload.Findings = []ReportRow{}
	}

	raw, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return errs.Wrap(err, "marshal json report")
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return errs.Wrapf(err, "write json report %q", path)
	}
	return nil
}

func writeCSVReport(path string, rows []ReportRow) error {
	f, err := os.Create(path)
	if err != nil {
		return errs.Wrapf(err, "create csv report %q", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"issue_type", "subtype", "title", "entity", "signature", "member_ids", "keys", "details"}
	if err := w.Write(header); err != nil {
		return errs.Wrap(err, "write csv header")
	}

	for _, row := range rows {
		keysJSON, err := json.Marshal(row.Keys)
		if err != nil {
			return errs.Wrap(err, "marshal csv keys")
		}
		detailsJSON, err := json.Marshal(row.Details)
		if err != nil {
			return errs.Wrap(err, "marshal csv details")
		}

		ids := make([]string, 0, len(row.MemberIDs))
		for _, id := range row.MemberIDs {
			ids = append(ids, strconv.FormatUint(id, 10))
		}

		record := []string{
			row.IssueType,
			row.Subtype,
			row.Title,
			row.Entity,
			row.Signature,
			strings.Join(ids, ";"),
			string(keysJSON),
			string(detailsJSON),
		}
		if err := w.Write(record); err != nil {
			return errs.Wrap(err, "write csv row")
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return errs.Wrap(err, "flush csv report")
	}
	return nil
}
