package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultWeightsSumToOne(t *testing.T) {
	w := DefaultWeights()
	assert.InDelta(t, 1.0, w.Sum(), 0.0001)
	require.NoError(t, w.Validate())
}

func TestWeightsValidate(t *testing.T) {
	tests := []struct {
		name    string
		weights Weights
		wantErr string
	}{
		{
			name:    "defaults pass",
			weights: DefaultWeights(),
		},
		{
			name:    "non-unit sum is accepted",
			weights: Weights{TotalCost: 1.0, TotalTime: 0.5, Reliability: 0.3, Capacity: 0.2},
		},
		{
			name:    "all zero is accepted",
			weights: Weights{},
		},
		{
			name:    "negative weight rejected",
			weights: Weights{TotalCost: -0.1, TotalTime: 0.5, Reliability: 0.3, Capacity: 0.3},
			wantErr: "total_cost is negative",
		},
		{
			name:    "nan rejected",
			weights: Weights{TotalCost: math.NaN(), TotalTime: 0.3, Reliability: 0.2, Capacity: 0.1},
			wantErr: "total_cost is not finite",
		},
		{
			name:    "multiple problems reported together",
			weights: Weights{TotalCost: -1, TotalTime: math.Inf(1), Reliability: 0.2, Capacity: 0.1},
			wantErr: "total_time is not finite",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.weights.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestContributionsSumToFinal(t *testing.T) {
	score := VendorScore{
		Pillars: PillarScores{TotalCost: 1.0, TotalTime: 0.5, Reliability: 0.8, Capacity: 0.6},
		Weights: DefaultWeights(),
	}
	c := score.Contributions()
	sum := c.TotalCost + c.TotalTime + c.Reliability + c.Capacity
	assert.InDelta(t, 0.77, sum, 0.0001)
}
