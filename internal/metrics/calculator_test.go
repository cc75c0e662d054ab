package metrics

import (
	"errors"
	"reflect"
	"testing"

	"github.com/mkoziy/genome/monitor/internal/dataset"
)

func variantTable() *dataset.Table {
	return &dataset.Table{
		Columns: []string{"VariationID", "ClinicalSignificance", "ReviewStatus", "ConflictingInterpretations"},
		Rows: [][]string{
			{"1", "Pathogenic", "practice guideline", "0"},
			{"2", "Benign", "reviewed by expert panel", "0"},
			{"3", "Uncertain significance", "criteria provided, single submitter", "1"},
			{"4", "", "no assertion criteria provided", "0"},
		},
	}
}

func TestComputeBasicShape(t *testing.T) {
	rec, err := Compute(variantTable(), DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.RowCount != 4 {
		t.Fatalf("expected 4 rows, got %d", rec.RowCount)
	}
	if rec.ColumnCount != 4 {
		t.Fatalf("expected 4 columns, got %d", rec.ColumnCount)
	}
	if rec.ColumnCount != len(rec.SchemaFingerprint) {
		t.Fatalf("column count %d does not match fingerprint length %d", rec.ColumnCount, len(rec.SchemaFingerprint))
	}
	if rec.GeneratedAt.IsZero() {
		t.Fatalf("expected generated_at to be set")
	}
}

func TestComputeNullPercentages(t *testing.T) {
	rec, err := Compute(variantTable(), DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// One empty significance value out of four rows.
	if got := rec.NullPctByColumn["ClinicalSignificance"]; got != 25.0 {
		t.Fatalf("expected 25.0%% nulls, got %v", got)
	}
	if got := rec.NullPctByColumn["VariationID"]; got != 0.0 {
		t.Fatalf("expected 0%% nulls, got %v", got)
	}
	// Unweighted mean across 4 columns: (0+25+0+0)/4.
	if rec.NullPctAvg != 6.3 {
		t.Fatalf("expected avg 6.3, got %v", rec.NullPctAvg)
	}
	for col, pct := range rec.NullPctByColumn {
		if pct < 0 || pct > 100 {
			t.Fatalf("column %s percentage out of range: %v", col, pct)
		}
	}
}

func TestComputeTreatsPlaceholdersAsNull(t *testing.T) {
	table := &dataset.Table{
		Columns: []string{"ClinicalSignificance", "ReviewStatus", "ConflictingInterpretations"},
		Rows: [][]string{
			{"-", "practice guideline", "0"},
			{"na", "practice guideline", "0"},
			{"N/A", "practice guideline", "0"},
			{"Pathogenic", "practice guideline", "0"},
		},
	}
	rec, err := Compute(table, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := rec.NullPctByColumn["ClinicalSignificance"]; got != 75.0 {
		t.Fatalf("expected 75.0%% nulls, got %v", got)
	}
	if rec.Domain.CategoryDistribution[UnknownBucket] != 3 {
		t.Fatalf("expected 3 unknown categories, got %d", rec.Domain.CategoryDistribution[UnknownBucket])
	}
}

func TestComputeDuplicateCount(t *testing.T) {
	table := &dataset.Table{
		Columns: []string{"ClinicalSignificance", "ReviewStatus", "ConflictingInterpretations"},
		Rows: [][]string{
			{"Pathogenic", "practice guideline", "0"},
			{"Pathogenic", "practice guideline", "0"},
			{"Pathogenic", "practice guideline", "0"},
			{"Pathogenic", "practice guideline", "0"},
			{"Pathogenic", "practice guideline", "0"},
		},
	}
	rec, err := Compute(table, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// First occurrence is never a duplicate.
	if rec.DuplicateCount != 4 {
		t.Fatalf("expected 4 duplicates, got %d", rec.DuplicateCount)
	}
}

func TestComputeDistributions(t *testing.T) {
	rec, err := Compute(variantTable(), DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Domain == nil {
		t.Fatalf("expected domain metrics")
	}

	cat := rec.Domain.CategoryDistribution
	if cat["Pathogenic"] != 1 || cat["Benign"] != 1 || cat[UnknownBucket] != 1 {
		t.Fatalf("unexpected category distribution: %v", cat)
	}

	rev := rec.Domain.ReviewStatusDistribution
	if rev[TierFourStar] != 1 || rev[TierThreeStar] != 1 || rev[TierOneStar] != 1 || rev[TierZeroStar] != 1 {
		t.Fatalf("unexpected review distribution: %v", rev)
	}

	if rec.Domain.ConflictingCount != 1 {
		t.Fatalf("expected 1 conflicting row, got %d", rec.Domain.ConflictingCount)
	}

	// Every row lands in exactly one bucket, so counts sum to row_count.
	for name, dist := range map[string]map[string]int{"category": cat, "review": rev} {
		total := 0
		for _, n := range dist {
			if n < 0 {
				t.Fatalf("%s distribution has negative count", name)
			}
			total += n
		}
		if total != rec.RowCount {
			t.Fatalf("%s distribution sums to %d, expected %d", name, total, rec.RowCount)
		}
	}
}

func TestComputeStarGlyphReviewStatus(t *testing.T) {
	table := &dataset.Table{
		Columns: []string{"ClinicalSignificance", "ReviewStatus", "ConflictingInterpretations"},
		Rows: [][]string{
			{"Pathogenic", "★★★★", "0"},
			{"Benign", "★★", "0"},
			{"Benign", "", "0"},
		},
	}
	rec, err := Compute(table, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rev := rec.Domain.ReviewStatusDistribution
	if rev[TierFourStar] != 1 || rev[TierTwoStar] != 1 || rev[UnknownBucket] != 1 {
		t.Fatalf("unexpected review distribution: %v", rev)
	}
}

func TestComputeIdempotent(t *testing.T) {
	table := variantTable()
	opts := DefaultOptions()

	first, err := Compute(table, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Compute(table, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// generated_at differs by construction; everything else must match.
	second.GeneratedAt = first.GeneratedAt
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical records:\n%+v\n%+v", first, second)
	}
}

func TestComputeEmptyTableFails(t *testing.T) {
	table := &dataset.Table{Columns: []string{"A", "B"}}
	_, err := Compute(table, DefaultOptions())
	var dfe *DataFormatError
	if !errors.As(err, &dfe) {
		t.Fatalf("expected DataFormatError, got %v", err)
	}
}

func TestComputeMissingDomainColumn(t *testing.T) {
	table := &dataset.Table{
		Columns: []string{"A", "B"},
		Rows:    [][]string{{"1", "2"}},
	}

	opts := DefaultOptions()
	_, err := Compute(table, opts)
	var dfe *DataFormatError
	if !errors.As(err, &dfe) {
		t.Fatalf("expected DataFormatError, got %v", err)
	}
	if dfe.Column != opts.SignificanceColumn {
		t.Fatalf("expected missing column %q, got %q", opts.SignificanceColumn, dfe.Column)
	}

	// With the opt-in toggle the record is emitted without domain metrics.
	opts.AllowGenericOnly = true
	rec, err := Compute(table, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Domain != nil {
		t.Fatalf("expected no domain metrics")
	}
	if rec.RowCount != 1 || rec.ColumnCount != 2 {
		t.Fatalf("unexpected generic record: %+v", rec)
	}
}

func TestRecordHelpers(t *testing.T) {
	rec := &Record{
		RowCount: 10,
		Domain: &DomainMetrics{
			ConflictingCount:         2,
			ReviewStatusDistribution: map[string]int{TierFourStar: 5},
		},
	}
	if got := rec.ConflictPct(); got != 20.0 {
		t.Fatalf("expected 20%% conflicting, got %v", got)
	}
	if got := rec.HighConfidencePct(); got != 50.0 {
		t.Fatalf("expected 50%% high confidence, got %v", got)
	}

	empty := &Record{RowCount: 0, Domain: &DomainMetrics{ConflictingCount: 3}}
	if got := empty.ConflictPct(); got != 0 {
		t.Fatalf("expected zero conflict percentage for empty record, got %v", got)
	}

	generic := &Record{RowCount: 5}
	if generic.ConflictPct() != 0 || generic.HighConfidencePct() != 0 {
		t.Fatalf("expected zero domain rates for generic record")
	}
}

func TestSameSchema(t *testing.T) {
	a := &Record{SchemaFingerprint: []string{"A", "B", "C"}}
	b := &Record{SchemaFingerprint: []string{"A", "C", "B"}}
	if a.SameSchema(b) {
		t.Fatalf("reordered columns must not compare equal")
	}
	c := &Record{SchemaFingerprint: []string{"A", "B", "C"}}
	if !a.SameSchema(c) {
		t.Fatalf("identical fingerprints must compare equal")
	}
}
