// Package scoring implements the supplier-comparison engine: per-vendor
// metric extraction, set-relative min-max normalization, weighted pillar
// scoring, independent risk rules, and deterministic ranking.
//
// The engine is a pure library boundary. It consumes plain vendor and
// part records plus a weights value and produces analyses; fetching,
// persistence, and encoding belong to the callers.
package scoring

import (
	"time"

	"go.uber.org/zap"

	"github.com/pdesskyterra/vendor-tracking-app/internal/model"
	"github.com/pdesskyterra/vendor-tracking-app/internal/policy"
)

// Engine scores vendor sets. Weights are read from the holder once per
// run; risk thresholds are fixed at construction.
type Engine struct {
	weights      *WeightsHolder
	det          *Detector
	winsorizePct float64
}

// Option adjusts engine construction.
type Option func(*Engine)

// WithWinsorize caps cost, time, and capacity outliers at the given
// lower percentile (and its mirror upper percentile) before
// normalization. pct must sit in (0, 0.5); anything else leaves
// winsorization off. Reliability is never winsorized: it is already
// bounded to [0,1] by the data contract.
func WithWinsorize(pct float64) Option {
	return func(e *Engine) {
		if pct > 0 && pct < 0.5 {
			e.winsorizePct = pct
		}
	}
}

// NewEngine builds an engine around a weights holder and risk policy.
func NewEngine(holder *WeightsHolder, pol policy.Risk, opts ...Option) *Engine {
	e := &Engine{
		weights: holder,
		det:     NewDetector(pol),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Detector exposes the rule registry so callers can add rules.
func (e *Engine) Detector() *Detector {
	return e.det
}

// Input is one scoring run's worth of data. PriorCosts maps vendor ID
// to the average landed cost from that vendor's most recent archived
// snapshot before Now; vendors absent from the map have no history and
// the cost-spike rule stays silent for them.
type Input struct {
	Vendors       []model.Vendor
	PartsByVendor map[string][]model.Part
	PriorCosts    map[string]float64
	Now           time.Time
}

// Result is a completed scoring run. Analyses are ranked by final score
// descending with vendor-name tie-break; Excluded names the vendors
// dropped for having no parts. Weights records the value snapshotted at
// run start.
type Result struct {
	Analyses   []model.VendorAnalysis `json:"analyses"`
	Excluded   []string               `json:"excluded,omitempty"`
	Summary    Summary                `json:"summary"`
	Weights    model.Weights          `json:"weights"`
	ComputedAt time.Time              `json:"computed_at"`
}

type vendorWork struct {
	vendor  model.Vendor
	parts   []model.Part
	metrics model.RawMetrics
}

// Run scores the full vendor set against itself. The computation is
// synchronous and deterministic: same inputs and weights, same output.
// Vendors without parts degrade to the Excluded list instead of
// skewing the normalization range; the run always completes.
func (e *Engine) Run(in Input) *Result {
	weights := e.weights.Load()
	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	zap.L().Info("scoring vendors",
		zap.Int("vendors", len(in.Vendors)),
		zap.Float64("weight_sum", weights.Sum()),
	)

	included := make([]vendorWork, 0, len(in.Vendors))
	var excluded []string
	for _, v := range in.Vendors {
		parts := in.PartsByVendor[v.ID]
		if len(parts) == 0 {
			excluded = append(excluded, v.Name)
			continue
		}
		included = append(included, vendorWork{
			vendor:  v,
			parts:   parts,
			metrics: ExtractMetrics(v, parts),
		})
	}

	result := &Result{
		Excluded:   excluded,
		Weights:    weights,
		ComputedAt: now,
	}
	if len(included) == 0 {
		result.Summary = BuildSummary(nil)
		return result
	}

	// Normalization barrier: every raw metric is collected before the
	// first min-max pass.
	costs := make([]float64, len(included))
	times := make([]float64, len(included))
	capacities := make([]float64, len(included))
	reliabilities := make([]float64, len(included))
	for i, w := range included {
		costs[i] = w.metrics.AvgLandedCost
		times[i] = w.metrics.AvgTotalTime
		capacities[i] = float64(w.metrics.TotalCapacity)
		reliabilities[i] = w.metrics.Reliability
	}

	if e.winsorizePct > 0 {
		costs = winsorize(costs, e.winsorizePct, 1-e.winsorizePct)
		times = winsorize(times, e.winsorizePct, 1-e.winsorizePct)
		capacities = winsorize(capacities, e.winsorizePct, 1-e.winsorizePct)
	}

	costBounds := collectBounds(costs)
	timeBounds := collectBounds(times)
	capacityBounds := collectBounds(capacities)
	reliabilityBounds := collectBounds(reliabilities)

	analyses := make([]model.VendorAnalysis, 0, len(included))
	for i, w := range included {
		pillars := model.PillarScores{
			TotalCost:   normalizeLower(costs[i], costBounds),
			TotalTime:   normalizeLower(times[i], timeBounds),
			Reliability: normalizeHigher(reliabilities[i], reliabilityBounds),
			Capacity:    normalizeHigher(capacities[i], capacityBounds),
		}

		score := model.VendorScore{
			VendorID:   w.vendor.ID,
			VendorName: w.vendor.Name,
			Pillars:    pillars,
			FinalScore: weightedScore(weights, pillars),
			Weights:    weights,
			ComputedAt: now,
		}

		var prior *float64
		if c, ok := in.PriorCosts[w.vendor.ID]; ok {
			prior = &c
		}
		flags := e.det.Evaluate(RuleContext{
			Vendor:             w.vendor,
			Parts:              w.parts,
			Metrics:            w.metrics,
			PriorAvgLandedCost: prior,
			Now:                now,
		})

		analyses = append(analyses, model.VendorAnalysis{
			Vendor:  w.vendor,
			Parts:   w.parts,
			Metrics: w.metrics,
			Score:   score,
			Flags:   flags,
			Stale:   !w.vendor.VerifiedWithin(now, e.det.StalenessWindow()),
		})
	}

	Rank(analyses, SortFinalScore)
	result.Analyses = analyses
	result.Summary = BuildSummary(analyses)

	zap.L().Info("scoring complete",
		zap.Int("scored", len(analyses)),
		zap.Int("excluded", len(excluded)),
		zap.String("top_vendor", analyses[0].Vendor.Name),
		zap.Float64("top_score", analyses[0].Score.FinalScore),
	)
	return result
}

// weightedScore is the four-pillar dot product. The engine never
// renormalizes the weights: a non-unit sum scales the final score
// outside [0,1] and that is the caller's contract to manage.
func weightedScore(w model.Weights, p model.PillarScores) float64 {
	return w.TotalCost*p.TotalCost +
		w.TotalTime*p.TotalTime +
		w.Reliability*p.Reliability +
		w.Capacity*p.Capacity
}
