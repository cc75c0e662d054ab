package metrics

import "time"

// Record summarizes the quality-relevant statistics of one dataset release.
// A Record is produced once per release and never mutated afterwards;
// consumers compare records by value.
type Record struct {
	RowCount          int                `json:"row_count"`
	ColumnCount       int                `json:"column_count"`
	NullPctByColumn   map[string]float64 `json:"null_percentage_by_column"`
	NullPctAvg        float64            `json:"null_percentage_avg"`
	DuplicateCount    int                `json:"duplicate_count"`
	SchemaFingerprint []string           `json:"schema_fingerprint"`
	Domain            *DomainMetrics     `json:"domain,omitempty"`
	GeneratedAt       time.Time          `json:"generated_at"`
}

// DomainMetrics carries the variant-specific statistics. It is attached to a
// Record as an optional sub-record so the generic metrics stay usable for
// non-variant tabular data.
type DomainMetrics struct {
	CategoryDistribution     map[string]int `json:"category_distribution"`
	ConflictingCount         int            `json:"conflicting_count"`
	ReviewStatusDistribution map[string]int `json:"review_status_distribution"`
}

// UnknownBucket collects empty or unrecognized values in the distributions
// so their counts stay consistent with the row count.
const UnknownBucket = "unknown"

// Review tiers follow the ClinVar star rating. TierFourStar is the highest
// confidence tier and feeds the scorer's confidence bonus.
const (
	TierFourStar  = "4-star"
	TierThreeStar = "3-star"
	TierTwoStar   = "2-star"
	TierOneStar   = "1-star"
	TierZeroStar  = "0-star"
)

// ConflictPct returns the percentage of rows flagged as conflicting.
// Zero when the record has no rows or no domain metrics.
func (r *Record) ConflictPct() float64 {
	if r.Domain == nil || r.RowCount == 0 {
		return 0
	}
	return float64(r.Domain.ConflictingCount) * 100 / float64(r.RowCount)
}

// HighConfidencePct returns the percentage of rows at the highest review
// tier. Zero when the record has no rows or no domain metrics.
func (r *Record) HighConfidencePct() float64 {
	if r.Domain == nil || r.RowCount == 0 {
		return 0
	}
	return float64(r.Domain.ReviewStatusDistribution[TierFourStar]) * 100 / float64(r.RowCount)
}

// SameSchema reports whether two records share an identical schema
// fingerprint, including column order.
func (r *Record) SameSchema(other *Record) bool {
	if len(r.SchemaFingerprint) != len(other.SchemaFingerprint) {
		return false
	}
	for i, col := range r.SchemaFingerprint {
		if other.SchemaFingerprint[i] != col {
			return false
		}
	}
	return true
}
