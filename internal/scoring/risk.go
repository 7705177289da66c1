package scoring

import (
	"fmt"
	"time"

	"github.com/pdesskyterra/vendor-tracking-app/internal/model"
	"github.com/pdesskyterra/vendor-tracking-app/internal/policy"
)

// RuleContext is everything a risk rule may inspect for one vendor.
// PriorAvgLandedCost is the vendor's average landed cost from its most
// recent archived snapshot strictly before Now; nil means no history.
type RuleContext struct {
	Vendor             model.Vendor
	Parts              []model.Part
	Metrics            model.RawMetrics
	PriorAvgLandedCost *float64
	Policy             policy.Risk
	Now                time.Time
}

// Rule is one independent risk predicate. Evaluate returns nil when the
// rule does not fire; a firing rule emits exactly one flag.
type Rule interface {
	Kind() model.RiskKind
	Evaluate(rc RuleContext) *model.RiskFlag
}

// Detector evaluates a registered list of rules against a vendor.
// Rules are independent of the scorer: registering a new rule never
// touches scoring code. Flags are recomputed fresh on every call.
type Detector struct {
	pol   policy.Risk
	rules []Rule
}

// NewDetector builds a detector with the default rule set and the given
// thresholds.
func NewDetector(pol policy.Risk) *Detector {
	return &Detector{
		pol: pol,
		rules: []Rule{
			costSpikeRule{},
			delayRule{},
			capacityShortfallRule{},
			staleDataRule{},
			reliabilityRule{},
		},
	}
}

// Register appends a custom rule to the detector.
func (d *Detector) Register(r Rule) {
	d.rules = append(d.rules, r)
}

// StalenessWindow returns the configured staleness window as a duration.
func (d *Detector) StalenessWindow() time.Duration {
	return time.Duration(d.pol.StalenessDays) * 24 * time.Hour
}

// Evaluate runs every enabled rule and collects the fired flags.
func (d *Detector) Evaluate(rc RuleContext) []model.RiskFlag {
	rc.Policy = d.pol

	var flags []model.RiskFlag
	for _, r := range d.rules {
		if d.pol.RuleDisabled(r.Kind()) {
			continue
		}
		if f := r.Evaluate(rc); f != nil {
			flags = append(flags, *f)
		}
	}
	return flags
}

// costSpikeRule fires on a month-over-month average landed cost increase
// beyond the configured percentage. Without a prior snapshot the rule
// stays silent; absence of history is not a risk signal.
type costSpikeRule struct{}

func (costSpikeRule) Kind() model.RiskKind { return model.RiskCostSpike }

func (costSpikeRule) Evaluate(rc RuleContext) *model.RiskFlag {
	if rc.PriorAvgLandedCost == nil || *rc.PriorAvgLandedCost <= 0 {
		return nil
	}

	prev := *rc.PriorAvgLandedCost
	change := (rc.Metrics.AvgLandedCost - prev) / prev
	if change <= rc.Policy.CostSpikePct {
		return nil
	}

	severity := model.SeverityMedium
	if change > 2*rc.Policy.CostSpikePct {
		severity = model.SeverityHigh
	}
	return &model.RiskFlag{
		Kind:        model.RiskCostSpike,
		Severity:    severity,
		Description: fmt.Sprintf("Cost increased %.1f%% from previous snapshot", change*100),
		Value:       change,
		Threshold:   rc.Policy.CostSpikePct,
	}
}

// delayRule fires when any part's transit time breaches its shipping
// mode's limit, or any part's lead time exceeds the ceiling. One flag
// per vendor, describing the worst breach; air overruns and lead-time
// breaches rank high, surface transit medium.
type delayRule struct{}

func (delayRule) Kind() model.RiskKind { return model.RiskDelay }

func (delayRule) Evaluate(rc RuleContext) *model.RiskFlag {
	var worst *model.RiskFlag
	var worstExcess float64

	consider := func(f model.RiskFlag, excess float64) {
		if worst == nil {
			worst = &f
			worstExcess = excess
			return
		}
		if severityRank(f.Severity) > severityRank(worst.Severity) ||
			(f.Severity == worst.Severity && excess > worstExcess) {
			worst = &f
			worstExcess = excess
		}
	}

	for _, p := range rc.Parts {
		if limit := transitLimit(rc.Policy.TransitLimits, p.ShippingMode); limit > 0 && p.TransitDays > limit {
			severity := model.SeverityMedium
			if p.ShippingMode == model.ShipAir {
				severity = model.SeverityHigh
			}
			consider(model.RiskFlag{
				Kind:     model.RiskDelay,
				Severity: severity,
				Description: fmt.Sprintf("%s transit %d days for %s exceeds %d-day limit",
					p.ShippingMode, p.TransitDays, p.ComponentName, limit),
				Value:     float64(p.TransitDays),
				Threshold: float64(limit),
			}, float64(p.TransitDays-limit))
		}

		if ceiling := rc.Policy.LeadTimeCeilingWeeks; ceiling > 0 && p.LeadTimeWeeks > ceiling {
			consider(model.RiskFlag{
				Kind:     model.RiskDelay,
				Severity: model.SeverityHigh,
				Description: fmt.Sprintf("Lead time %d weeks for %s exceeds %d-week ceiling",
					p.LeadTimeWeeks, p.ComponentName, ceiling),
				Value:     float64(p.LeadTimeWeeks),
				Threshold: float64(ceiling),
			}, float64((p.LeadTimeWeeks-ceiling)*7))
		}
	}
	return worst
}

func transitLimit(limits policy.TransitLimits, mode model.ShippingMode) int {
	switch mode {
	case model.ShipAir:
		return limits.Air
	case model.ShipOcean:
		return limits.Ocean
	case model.ShipGround:
		return limits.Ground
	default:
		return 0
	}
}

func severityRank(s model.Severity) int {
	switch s {
	case model.SeverityHigh:
		return 3
	case model.SeverityMedium:
		return 2
	case model.SeverityLow:
		return 1
	default:
		return 0
	}
}

// capacityShortfallRule fires when a vendor's total monthly capacity
// sits below the configured floor.
type capacityShortfallRule struct{}

func (capacityShortfallRule) Kind() model.RiskKind { return model.RiskCapacityShortfall }

func (capacityShortfallRule) Evaluate(rc RuleContext) *model.RiskFlag {
	floor := rc.Policy.CapacityFloor
	if floor <= 0 || rc.Metrics.TotalCapacity >= floor {
		return nil
	}

	severity := model.SeverityMedium
	if rc.Metrics.TotalCapacity < floor/2 {
		severity = model.SeverityHigh
	}
	return &model.RiskFlag{
		Kind:     model.RiskCapacityShortfall,
		Severity: severity,
		Description: msgPrinter.Sprintf("Limited capacity: %d units/month below %d floor",
			rc.Metrics.TotalCapacity, floor),
		Value:     float64(rc.Metrics.TotalCapacity),
		Threshold: float64(floor),
	}
}

// staleDataRule fires when the vendor record's last verification falls
// outside the staleness window at evaluation time. A record past twice
// the window, or never verified at all, escalates to high.
type staleDataRule struct{}

func (staleDataRule) Kind() model.RiskKind { return model.RiskStaleData }

func (staleDataRule) Evaluate(rc RuleContext) *model.RiskFlag {
	window := time.Duration(rc.Policy.StalenessDays) * 24 * time.Hour
	if rc.Vendor.VerifiedWithin(rc.Now, window) {
		return nil
	}

	if rc.Vendor.LastVerified.IsZero() {
		return &model.RiskFlag{
			Kind:        model.RiskStaleData,
			Severity:    model.SeverityHigh,
			Description: "Vendor data never verified",
			Value:       -1,
			Threshold:   float64(rc.Policy.StalenessDays),
		}
	}

	daysStale := int(rc.Now.Sub(rc.Vendor.LastVerified).Hours() / 24)
	severity := model.SeverityLow
	if daysStale > 2*rc.Policy.StalenessDays {
		severity = model.SeverityHigh
	}
	return &model.RiskFlag{
		Kind:        model.RiskStaleData,
		Severity:    severity,
		Description: fmt.Sprintf("Vendor data not verified for %d days", daysStale),
		Value:       float64(daysStale),
		Threshold:   float64(rc.Policy.StalenessDays),
	}
}

// reliabilityRule fires when the vendor's raw reliability metric sits
// below the configured floor. Below 0.5 is treated as critical
// regardless of where the floor is set.
type reliabilityRule struct{}

func (reliabilityRule) Kind() model.RiskKind { return model.RiskLowReliability }

func (reliabilityRule) Evaluate(rc RuleContext) *model.RiskFlag {
	floor := rc.Policy.ReliabilityFloor
	if floor <= 0 || rc.Metrics.Reliability >= floor {
		return nil
	}

	severity := model.SeverityMedium
	if rc.Metrics.Reliability < 0.5 {
		severity = model.SeverityHigh
	}
	return &model.RiskFlag{
		Kind:        model.RiskLowReliability,
		Severity:    severity,
		Description: fmt.Sprintf("Low reliability score: %.1f%%", rc.Metrics.Reliability*100),
		Value:       rc.Metrics.Reliability,
		Threshold:   floor,
	}
}
