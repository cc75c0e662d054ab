// Package report defines the quality report: the JSON exchange format that
// couples one release's metrics record with its quality score. The packaging
// layer attaches it to versioned data artifacts, so the field keys are part
// of the contract and must stay stable.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mkoziy/genome/monitor/internal/metrics"
	"github.com/mkoziy/genome/monitor/internal/scoring"
)

// Report pairs a metrics record with its quality score.
type Report struct {
	Metrics *metrics.Record `json:"metrics"`
	Score   scoring.Score   `json:"quality_score"`
}

// New builds a report from a metrics record and its score.
func New(rec *metrics.Record, score scoring.Score) *Report {
	return &Report{Metrics: rec, Score: score}
}

// Save writes the report to dir as quality_report_<date>.json and returns
// the file path. The date comes from the record's creation timestamp.
func (r *Report) Save(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	name := fmt.Sprintf("quality_report_%s.json", r.Metrics.GeneratedAt.Format("2006-01-02"))
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

// Load reads a previously saved report.
func Load(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse report %s: %w", path, err)
	}
	if r.Metrics == nil {
		return nil, fmt.Errorf("report %s has no metrics record", path)
	}
	return &r, nil
}
