// Package policy loads the scoring policy file: the pillar weights and
// the risk-rule thresholds. The file is optional; every field has a
// built-in default so a missing or partial file never blocks a run.
package policy

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/pdesskyterra/vendor-tracking-app/internal/model"
)

// TransitLimits holds the per-mode transit-day thresholds for the
// delay_risk rule.
type TransitLimits struct {
	Air    int `yaml:"air"`
	Ocean  int `yaml:"ocean"`
	Ground int `yaml:"ground"`
}

// Risk holds the thresholds consumed by the risk detector.
type Risk struct {
	CostSpikePct         float64       `yaml:"cost_spike_pct"`
	LeadTimeCeilingWeeks int           `yaml:"lead_time_ceiling_weeks"`
	TransitLimits        TransitLimits `yaml:"transit_limits"`
	CapacityFloor        int           `yaml:"capacity_floor"`
	StalenessDays        int           `yaml:"staleness_days"`
	ReliabilityFloor     float64       `yaml:"reliability_floor"`
	Disabled             []string      `yaml:"disabled,omitempty"`
}

// Policy is the full scoring policy: weights plus risk thresholds.
type Policy struct {
	Weights model.Weights `yaml:"weights"`
	Risk    Risk          `yaml:"risk"`
}

// Default returns the product's standard policy.
func Default() Policy {
	return Policy{
		Weights: model.DefaultWeights(),
		Risk: Risk{
			CostSpikePct:         0.10,
			LeadTimeCeilingWeeks: 10,
			TransitLimits:        TransitLimits{Air: 9, Ocean: 50, Ground: 21},
			CapacityFloor:        10000,
			StalenessDays:        30,
			ReliabilityFloor:     0.7,
		},
	}
}

// RuleDisabled reports whether the named rule kind is switched off.
func (r Risk) RuleDisabled(kind model.RiskKind) bool {
	for _, d := range r.Disabled {
		if d == string(kind) {
			return true
		}
	}
	return false
}

// fileShape mirrors the on-disk layout. Weights is a pointer so an
// absent block falls back to defaults while an explicit zero weight in
// a present block is respected.
type fileShape struct {
	Weights *model.Weights `yaml:"weights"`
	Risk    Risk           `yaml:"risk"`
}

// Load reads the policy file at path. A missing file returns the
// default policy without error; unset threshold fields are filled from
// the defaults.
func Load(path string) (Policy, error) {
	p := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return p, eris.Wrap(err, "policy: read file")
	}

	var f fileShape
	if err := yaml.Unmarshal(data, &f); err != nil {
		return p, eris.Wrap(err, "policy: parse yaml")
	}

	if f.Weights != nil {
		if err := f.Weights.Validate(); err != nil {
			return p, eris.Wrap(err, "policy: weights")
		}
		p.Weights = *f.Weights
	}
	p.Risk = fillRiskDefaults(f.Risk)

	return p, nil
}

// Save writes the policy to path, creating or replacing the file.
func Save(path string, p Policy) error {
	data, err := yaml.Marshal(struct {
		Weights model.Weights `yaml:"weights"`
		Risk    Risk          `yaml:"risk"`
	}{Weights: p.Weights, Risk: p.Risk})
	if err != nil {
		return eris.Wrap(err, "policy: marshal yaml")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrap(err, "policy: write file")
	}
	return nil
}

func fillRiskDefaults(r Risk) Risk {
	def := Default().Risk
	if r.CostSpikePct == 0 {
		r.CostSpikePct = def.CostSpikePct
	}
	if r.LeadTimeCeilingWeeks == 0 {
		r.LeadTimeCeilingWeeks = def.LeadTimeCeilingWeeks
	}
	if r.TransitLimits.Air == 0 {
		r.TransitLimits.Air = def.TransitLimits.Air
	}
	if r.TransitLimits.Ocean == 0 {
		r.TransitLimits.Ocean = def.TransitLimits.Ocean
	}
	if r.TransitLimits.Ground == 0 {
		r.TransitLimits.Ground = def.TransitLimits.Ground
	}
	if r.CapacityFloor == 0 {
		r.CapacityFloor = def.CapacityFloor
	}
	if r.StalenessDays == 0 {
		r.StalenessDays = def.StalenessDays
	}
	if r.ReliabilityFloor == 0 {
		r.ReliabilityFloor = def.ReliabilityFloor
	}
	return r
}
