package model

import "time"

// RiskKind identifies which rule produced a RiskFlag.
type RiskKind string

const (
	RiskCostSpike         RiskKind = "cost_spike"
	RiskDelay             RiskKind = "delay_risk"
	RiskCapacityShortfall RiskKind = "capacity_shortfall"
	RiskStaleData         RiskKind = "stale_data"
	RiskLowReliability    RiskKind = "reliability_risk"
)

// Severity grades a risk flag.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// RiskFlag is one fired risk rule for one vendor. Flags are transient:
// recomputed on every evaluation, never persisted as authoritative state.
type RiskFlag struct {
	Kind        RiskKind `json:"type"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
	Value       float64  `json:"value"`
	Threshold   float64  `json:"threshold"`
}

// PillarScores are the four normalized evaluation dimensions, each in
// [0,1]. They are relative to the vendor set they were computed against;
// scores from different candidate sets are not comparable.
type PillarScores struct {
	TotalCost   float64 `json:"total_cost"`
	TotalTime   float64 `json:"total_time"`
	Reliability float64 `json:"reliability"`
	Capacity    float64 `json:"capacity"`
}

// RawMetrics are a vendor's pre-normalization inputs, derived from its
// part records. Issues collects per-vendor data-quality findings; a
// malformed field never aborts the batch.
type RawMetrics struct {
	AvgLandedCost float64  `json:"avg_landed_cost"`
	AvgTotalTime  float64  `json:"avg_total_time"`
	TotalCapacity int      `json:"total_capacity"`
	Reliability   float64  `json:"reliability"`
	PartCount     int      `json:"part_count"`
	Issues        []string `json:"issues,omitempty"`
}

// VendorScore is one vendor's scored result for a single run.
type VendorScore struct {
	VendorID   string       `json:"vendor_id"`
	VendorName string       `json:"vendor_name"`
	Pillars    PillarScores `json:"pillar_scores"`
	FinalScore float64      `json:"final_score"`
	Weights    Weights      `json:"weights"`
	ComputedAt time.Time    `json:"computed_at"`
}

// Contributions returns each pillar's weighted share of the final score.
func (s VendorScore) Contributions() PillarScores {
	return PillarScores{
		TotalCost:   s.Weights.TotalCost * s.Pillars.TotalCost,
		TotalTime:   s.Weights.TotalTime * s.Pillars.TotalTime,
		Reliability: s.Weights.Reliability * s.Pillars.Reliability,
		Capacity:    s.Weights.Capacity * s.Pillars.Capacity,
	}
}

// VendorAnalysis bundles everything a ranking or detail view needs for
// one vendor: the record, its parts, raw metrics, score, and risk flags.
type VendorAnalysis struct {
	Vendor  Vendor      `json:"vendor"`
	Parts   []Part      `json:"parts,omitempty"`
	Metrics RawMetrics  `json:"metrics"`
	Score   VendorScore `json:"score"`
	Flags   []RiskFlag  `json:"risk_flags"`
	Stale   bool        `json:"stale"`
}

// Snapshot is a point-in-time copy of one vendor's computed scores and
// the inputs behind them. Identified by (vendor, timestamp); written only
// by an explicit save action and never mutated afterward.
type Snapshot struct {
	ID         string       `json:"id"`
	VendorID   string       `json:"vendor_id"`
	VendorName string       `json:"vendor_name"`
	TakenAt    time.Time    `json:"taken_at"`
	FinalScore float64      `json:"final_score"`
	Pillars    PillarScores `json:"pillar_scores"`
	Weights    Weights      `json:"weights"`
	Metrics    RawMetrics   `json:"metrics"`
}

// NewSnapshot freezes one analysis at takenAt. The ID is left empty;
// the archive assigns one on insert.
func NewSnapshot(a VendorAnalysis, takenAt time.Time) Snapshot {
	return Snapshot{
		VendorID:   a.Vendor.ID,
		VendorName: a.Vendor.Name,
		TakenAt:    takenAt,
		FinalScore: a.Score.FinalScore,
		Pillars:    a.Score.Pillars,
		Weights:    a.Score.Weights,
		Metrics:    a.Metrics,
	}
}
