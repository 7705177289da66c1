package model

import (
	"math"
	"strings"

	"github.com/rotisserie/eris"
)

// Weights holds the four pillar weights applied by the scorer.
//
// Weights conventionally sum to 1.0 but the engine never enforces or
// renormalizes that: a non-unit sum is accepted and simply scales the
// final score outside [0,1]. Callers who want bounded scores own the
// sum. Validate rejects only negative or non-finite values.
type Weights struct {
	TotalCost   float64 `json:"total_cost" yaml:"total_cost" mapstructure:"total_cost"`
	TotalTime   float64 `json:"total_time" yaml:"total_time" mapstructure:"total_time"`
	Reliability float64 `json:"reliability" yaml:"reliability" mapstructure:"reliability"`
	Capacity    float64 `json:"capacity" yaml:"capacity" mapstructure:"capacity"`
}

// DefaultWeights returns the product's standard pillar weighting.
func DefaultWeights() Weights {
	return Weights{
		TotalCost:   0.4,
		TotalTime:   0.3,
		Reliability: 0.2,
		Capacity:    0.1,
	}
}

// Sum returns the total of all four weights.
func (w Weights) Sum() float64 {
	return w.TotalCost + w.TotalTime + w.Reliability + w.Capacity
}

// Validate checks each weight is finite and non-negative. It deliberately
// does not require the weights to sum to 1.
func (w Weights) Validate() error {
	var errs []string

	check := func(name string, v float64) {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			errs = append(errs, name+" is not finite")
			return
		}
		if v < 0 {
			errs = append(errs, name+" is negative")
		}
	}
	check("total_cost", w.TotalCost)
	check("total_time", w.TotalTime)
	check("reliability", w.Reliability)
	check("capacity", w.Capacity)

	if len(errs) > 0 {
		return eris.Errorf("model: invalid weights: %s", strings.Join(errs, "; "))
	}
	return nil
}
