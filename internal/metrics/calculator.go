package metrics

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/mkoziy/genome/monitor/internal/dataset"
)

// Options designate the columns that feed the domain metrics.
type Options struct {
	SignificanceColumn string `yaml:"significance_column"`
	ReviewStatusColumn string `yaml:"review_status_column"`
	ConflictColumn     string `yaml:"conflict_column"`

	// AllowGenericOnly lets Compute emit a record without domain metrics
	// when a designated column is absent. Off by default; the caller must
	// opt in.
	AllowGenericOnly bool `yaml:"allow_generic_only"`
}

// DefaultOptions returns the column designations for the ClinVar variant
// summary format.
func DefaultOptions() Options {
	return Options{
		SignificanceColumn: "ClinicalSignificance",
		ReviewStatusColumn: "ReviewStatus",
		ConflictColumn:     "ConflictingInterpretations",
	}
}

// Compute derives a metrics Record from a table. The computation is pure:
// the table is only read, and identical tables yield identical records
// apart from the creation timestamp.
func Compute(t *dataset.Table, opts Options) (*Record, error) {
	if t.RowCount() == 0 {
		return nil, &DataFormatError{Reason: "empty table"}
	}
	if err := t.Validate(); err != nil {
		return nil, &DataFormatError{Reason: err.Error()}
	}

	rec := &Record{
		RowCount:          t.RowCount(),
		ColumnCount:       t.ColumnCount(),
		NullPctByColumn:   make(map[string]float64, t.ColumnCount()),
		SchemaFingerprint: append([]string(nil), t.Columns...),
		GeneratedAt:       time.Now().UTC(),
	}

	computeNullPercentages(t, rec)
	rec.DuplicateCount = countDuplicates(t)

	domain, err := computeDomainMetrics(t, opts)
	if err != nil {
		if opts.AllowGenericOnly {
			return rec, nil
		}
		return nil, err
	}
	rec.Domain = domain

	return rec, nil
}

func computeNullPercentages(t *dataset.Table, rec *Record) {
	rows := float64(t.RowCount())
	var sum float64
	for i, col := range t.Columns {
		nulls := 0
		for _, row := range t.Rows {
			if isNull(row[i]) {
				nulls++
			}
		}
		pct := round1(float64(nulls) / rows * 100)
		rec.NullPctByColumn[col] = pct
		sum += pct
	}
	// Unweighted mean of the per-column percentages.
	rec.NullPctAvg = round1(sum / float64(t.ColumnCount()))
}

// countDuplicates counts rows whose full value tuple already occurred
// earlier in the table. The first occurrence is never counted.
func countDuplicates(t *dataset.Table) int {
	seen := make(map[string]struct{}, t.RowCount())
	duplicates := 0
	for _, row := range t.Rows {
		key := strings.Join(row, "\x1f")
		if _, ok := seen[key]; ok {
			duplicates++
			continue
		}
		seen[key] = struct{}{}
	}
	return duplicates
}

func computeDomainMetrics(t *dataset.Table, opts Options) (*DomainMetrics, error) {
	sigIdx, ok := t.ColumnIndex(opts.SignificanceColumn)
	if !ok {
		return nil, &DataFormatError{Reason: "missing required column", Column: opts.SignificanceColumn}
	}
	reviewIdx, ok := t.ColumnIndex(opts.ReviewStatusColumn)
	if !ok {
		return nil, &DataFormatError{Reason: "missing required column", Column: opts.ReviewStatusColumn}
	}
	conflictIdx, ok := t.ColumnIndex(opts.ConflictColumn)
	if !ok {
		return nil, &DataFormatError{Reason: "missing required column", Column: opts.ConflictColumn}
	}

	dm := &DomainMetrics{
		CategoryDistribution:     make(map[string]int),
		ReviewStatusDistribution: make(map[string]int),
	}

	for _, row := range t.Rows {
		sig := row[sigIdx]
		if isNull(sig) {
			dm.CategoryDistribution[UnknownBucket]++
		} else {
			dm.CategoryDistribution[sig]++
		}

		dm.ReviewStatusDistribution[reviewTier(row[reviewIdx])]++

		if isConflicting(row[conflictIdx]) {
			dm.ConflictingCount++
		}
	}

	return dm, nil
}

// isNull treats empty cells and the ClinVar placeholder values as missing.
func isNull(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "-", "na", "n/a":
		return true
	}
	return false
}

// isConflicting interprets the conflict indicator column. ClinVar encodes it
// as a 0/1 count; boolean-like values are accepted for other sources.
func isConflicting(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	if n, err := strconv.Atoi(v); err == nil {
		return n > 0
	}
	switch v {
	case "true", "yes", "y":
		return true
	}
	return false
}

// reviewTier buckets a review status value into a star tier. Values either
// carry literal star glyphs or the textual ClinVar review status.
func reviewTier(status string) string {
	if isNull(status) {
		return UnknownBucket
	}
	if n := strings.Count(status, "★"); n > 0 {
		return starTier(n)
	}

	s := strings.ToLower(status)
	switch {
	case strings.Contains(s, "practice guideline"):
		return TierFourStar
	case strings.Contains(s, "expert panel"):
		return TierThreeStar
	// "no assertion criteria provided" must not match the criteria-provided
	// tiers below.
	case strings.Contains(s, "no assertion"):
		return TierZeroStar
	case strings.Contains(s, "multiple submitters"):
		return TierTwoStar
	case strings.Contains(s, "single submitter"), strings.Contains(s, "criteria provided"):
		return TierOneStar
	default:
		return UnknownBucket
	}
}

func starTier(n int) string {
	if n > 4 {
		n = 4
	}
	return strconv.Itoa(n) + "-star"
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
