package scoring

import (
	"github.com/mkoziy/genome/monitor/internal/metrics"
)

// Weights exposes the scoring formula's factor weights and caps so they can
// be tuned from configuration and audited in isolation.
type Weights struct {
	NullPenaltyPerPct     float64 `yaml:"null_penalty_per_pct"`
	NullPenaltyCap        float64 `yaml:"null_penalty_cap"`
	ConflictPenaltyPerPct float64 `yaml:"conflict_penalty_per_pct"`
	ConflictPenaltyCap    float64 `yaml:"conflict_penalty_cap"`
	ConfidenceBonusPerPct float64 `yaml:"confidence_bonus_per_pct"`
	ConfidenceBonusCap    float64 `yaml:"confidence_bonus_cap"`
}

// DefaultWeights returns the standard formula weights.
func DefaultWeights() Weights {
	return Weights{
		NullPenaltyPerPct:     0.5,
		NullPenaltyCap:        30,
		ConflictPenaltyPerPct: 2,
		ConflictPenaltyCap:    25,
		ConfidenceBonusPerPct: 0.25,
		ConfidenceBonusCap:    10,
	}
}

// Score is a bounded quality value with the raw contribution of each factor,
// so a reader can reconstruct how the value was reached. It is derived
// deterministically from one metrics record and recomputed on demand.
type Score struct {
	Value               float64 `json:"value"`
	CompletenessPenalty float64 `json:"completeness_penalty"`
	ConflictPenalty     float64 `json:"conflict_penalty"`
	ConfidenceBonus     float64 `json:"confidence_bonus"`
}

// Compute scores a metrics record. The formula starts at 100 and applies
// three independently capped adjustments; each is clipped to its own
// maximum before summing, and the final value is clamped to [0,100] as the
// only bound enforcement. Records without domain metrics receive neither
// the conflict penalty nor the confidence bonus.
func Compute(rec *metrics.Record, w Weights) Score {
	s := Score{
		CompletenessPenalty: capAt(rec.NullPctAvg*w.NullPenaltyPerPct, w.NullPenaltyCap),
	}

	// ConflictPct guards the zero-row case itself: a score must always be
	// computable once a metrics record exists.
	s.ConflictPenalty = capAt(rec.ConflictPct()*w.ConflictPenaltyPerPct, w.ConflictPenaltyCap)
	s.ConfidenceBonus = capAt(rec.HighConfidencePct()*w.ConfidenceBonusPerPct, w.ConfidenceBonusCap)

	s.Value = clamp(100 - s.CompletenessPenalty - s.ConflictPenalty + s.ConfidenceBonus)
	return s
}

func capAt(v, limit float64) float64 {
	if v > limit {
		return limit
	}
	return v
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
