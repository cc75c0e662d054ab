package drift

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/mkoziy/genome/monitor/internal/metrics"
)

// Severity classifies how much and how many metrics drifted.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Metric names used as keys in Verdict.MetricsChanged.
const (
	MetricRowCount     = "row_count"
	MetricConflictRate = "conflict_rate"
	MetricSchema       = "schema_fingerprint"
)

// Delta is the magnitude of one drifted metric. Numeric deltas carry a
// percentage; structural deltas (schema changes) have no magnitude and
// serialize as the marker "changed".
type Delta struct {
	Percent    float64
	Structural bool
}

func (d Delta) MarshalJSON() ([]byte, error) {
	if d.Structural {
		return json.Marshal("changed")
	}
	return json.Marshal(d.Percent)
}

func (d *Delta) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != "changed" {
			return fmt.Errorf("unexpected delta marker %q", s)
		}
		d.Structural = true
		return nil
	}
	return json.Unmarshal(data, &d.Percent)
}

func (d Delta) String() string {
	if d.Structural {
		return "changed"
	}
	return strconv.FormatFloat(d.Percent, 'f', -1, 64) + "%"
}

// Verdict is the outcome of comparing two metrics records. It is produced
// per comparison and not persisted by the detector.
type Verdict struct {
	DriftDetected  bool             `json:"drift_detected"`
	MetricsChanged map[string]Delta `json:"metrics_changed"`
	Severity       Severity         `json:"severity"`
}

// UndefinedComparisonError reports a drift comparison against a degenerate
// baseline for which no sensible numeric delta exists.
type UndefinedComparisonError struct {
	Reason string
}

func (e *UndefinedComparisonError) Error() string {
	return "undefined comparison: " + e.Reason
}

// Thresholds hold the drift sensitivity settings.
type Thresholds struct {
	// RowCountPct is the row-count drift threshold, in percent of the
	// previous release's row count.
	RowCountPct float64 `yaml:"row_count_pct"`

	// ConflictRateDivisor scales the row-count threshold down for the
	// conflict-rate rule: a rate is a fraction, not a magnitude, so it
	// gets a more sensitive threshold (RowCountPct / ConflictRateDivisor
	// percentage points). The default ratio of 10 is a tunable, not a
	// derived constant.
	ConflictRateDivisor float64 `yaml:"conflict_rate_divisor"`
}

// DefaultThresholds returns the standard sensitivity settings.
func DefaultThresholds() Thresholds {
	return Thresholds{
		RowCountPct:         10,
		ConflictRateDivisor: 10,
	}
}

func (t Thresholds) conflictRatePts() float64 {
	if t.ConflictRateDivisor <= 0 {
		t.ConflictRateDivisor = DefaultThresholds().ConflictRateDivisor
	}
	return t.RowCountPct / t.ConflictRateDivisor
}

// Detect compares the current release's metrics against the previous
// release's and classifies the change. The detector is stateless: every
// rule is evaluated first, then severity is derived from the aggregate set
// of drifted metrics.
func Detect(current, previous *metrics.Record, th Thresholds) (*Verdict, error) {
	if current == nil || previous == nil {
		return nil, &UndefinedComparisonError{Reason: "both metrics records are required"}
	}
	if previous.RowCount == 0 {
		return nil, &UndefinedComparisonError{Reason: "previous release has zero rows"}
	}

	changed := make(map[string]Delta)
	exceedsDouble := false

	// Row-count drift. The denominator is always the previous release.
	rowDelta := math.Abs(float64(current.RowCount)-float64(previous.RowCount)) * 100 / float64(previous.RowCount)
	if rowDelta > th.RowCountPct {
		changed[MetricRowCount] = Delta{Percent: rowDelta}
		if rowDelta > 2*th.RowCountPct {
			exceedsDouble = true
		}
	}

	// Conflict-rate drift, in percentage points. Skipped when either record
	// has no domain metrics: generic tabular data has no conflict notion.
	if current.Domain != nil && previous.Domain != nil {
		ratePts := math.Abs(current.ConflictPct() - previous.ConflictPct())
		if ratePts > th.conflictRatePts() {
			changed[MetricConflictRate] = Delta{Percent: ratePts}
			if ratePts > 2*th.conflictRatePts() {
				exceedsDouble = true
			}
		}
	}

	// Schema drift is binary: any reordering, addition or removal counts.
	if !current.SameSchema(previous) {
		changed[MetricSchema] = Delta{Structural: true}
	}

	verdict := &Verdict{
		DriftDetected:  len(changed) > 0,
		MetricsChanged: changed,
		Severity:       classify(changed, exceedsDouble),
	}
	return verdict, nil
}

// classify derives severity from the full set of drifted metrics.
func classify(changed map[string]Delta, exceedsDouble bool) Severity {
	switch {
	case len(changed) > 2 || exceedsDouble:
		return SeverityHigh
	case len(changed) > 0:
		return SeverityMedium
	default:
		return SeverityLow
	}
}
