package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdesskyterra/vendor-tracking-app/internal/model"
)

var engineNow = time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

func newTestEngine(opts ...Option) *Engine {
	return NewEngine(NewWeightsHolder(model.DefaultWeights()), defaultRisk(), opts...)
}

// engineVendor builds a vendor and one matching part with sane values;
// mutate the part via the supplied function to vary one metric at a time.
func engineVendor(name string, mutate func(*model.Part)) (model.Vendor, []model.Part) {
	v := testVendor(name)
	v.LastVerified = engineNow.Add(-5 * 24 * time.Hour)
	p := testPart(v.ID, "Li-ion Battery Cell 18650")
	p.MonthlyCapacity = 50000
	if mutate != nil {
		mutate(&p)
	}
	return v, []model.Part{p}
}

func TestWeightedScore(t *testing.T) {
	got := weightedScore(model.DefaultWeights(), model.PillarScores{
		TotalCost:   1.0,
		TotalTime:   0.5,
		Reliability: 0.8,
		Capacity:    0.6,
	})
	// 0.4*1.0 + 0.3*0.5 + 0.2*0.8 + 0.1*0.6 = 0.77
	assert.InDelta(t, 0.77, got, 1e-9)
}

func TestRunCostInversion(t *testing.T) {
	va, pa := engineVendor("Alpha", func(p *model.Part) { p.UnitPrice = 10; p.FreightCost = 0; p.TariffRate = 0 })
	vb, pb := engineVendor("Bravo", func(p *model.Part) { p.UnitPrice = 20; p.FreightCost = 0; p.TariffRate = 0 })

	res := newTestEngine().Run(Input{
		Vendors:       []model.Vendor{va, vb},
		PartsByVendor: map[string][]model.Part{va.ID: pa, vb.ID: pb},
		Now:           engineNow,
	})

	require.Len(t, res.Analyses, 2)
	cheap := res.Analyses[0]
	pricey := res.Analyses[1]
	assert.Equal(t, "Alpha", cheap.Vendor.Name)
	assert.InDelta(t, 1.0, cheap.Score.Pillars.TotalCost, 0.001)
	assert.InDelta(t, 0.0, pricey.Score.Pillars.TotalCost, 0.001)

	// Identical time, reliability, and capacity all degenerate to 1.0.
	assert.InDelta(t, 1.0, cheap.Score.Pillars.TotalTime, 0.001)
	assert.InDelta(t, 1.0, pricey.Score.Pillars.Reliability, 0.001)
	assert.InDelta(t, 1.0, pricey.Score.Pillars.Capacity, 0.001)

	// Final scores follow: Alpha 1.0, Bravo loses only the cost term.
	assert.InDelta(t, 1.0, cheap.Score.FinalScore, 0.001)
	assert.InDelta(t, 0.6, pricey.Score.FinalScore, 0.001)
}

func TestRunSingleVendor(t *testing.T) {
	v, parts := engineVendor("Solo", nil)

	res := newTestEngine().Run(Input{
		Vendors:       []model.Vendor{v},
		PartsByVendor: map[string][]model.Part{v.ID: parts},
		Now:           engineNow,
	})

	require.Len(t, res.Analyses, 1)
	p := res.Analyses[0].Score.Pillars
	assert.InDelta(t, 1.0, p.TotalCost, 0.001)
	assert.InDelta(t, 1.0, p.TotalTime, 0.001)
	assert.InDelta(t, 1.0, p.Reliability, 0.001)
	assert.InDelta(t, 1.0, p.Capacity, 0.001)
	assert.InDelta(t, 1.0, res.Analyses[0].Score.FinalScore, 0.001)
}

func TestRunIdempotent(t *testing.T) {
	va, pa := engineVendor("Alpha", func(p *model.Part) { p.UnitPrice = 12 })
	vb, pb := engineVendor("Bravo", func(p *model.Part) { p.UnitPrice = 18; p.TransitDays = 4 })
	vc, pc := engineVendor("Charlie", func(p *model.Part) { p.MonthlyCapacity = 8000 })

	in := Input{
		Vendors:       []model.Vendor{va, vb, vc},
		PartsByVendor: map[string][]model.Part{va.ID: pa, vb.ID: pb, vc.ID: pc},
		Now:           engineNow,
	}

	e := newTestEngine()
	first := e.Run(in)
	second := e.Run(in)

	assert.Equal(t, first.Analyses, second.Analyses)
	assert.Equal(t, first.Summary, second.Summary)
	assert.Equal(t, first.Excluded, second.Excluded)
}

func TestRunExcludesZeroPartVendors(t *testing.T) {
	scored, parts := engineVendor("Scored", nil)
	ghost := testVendor("Ghost Supply")

	res := newTestEngine().Run(Input{
		Vendors:       []model.Vendor{scored, ghost},
		PartsByVendor: map[string][]model.Part{scored.ID: parts},
		Now:           engineNow,
	})

	require.Len(t, res.Analyses, 1)
	assert.Equal(t, "Scored", res.Analyses[0].Vendor.Name)
	assert.Equal(t, []string{"Ghost Supply"}, res.Excluded)

	// With the ghost out of the candidate set, the remaining vendor
	// normalizes against itself and scores a clean 1.0.
	assert.InDelta(t, 1.0, res.Analyses[0].Score.FinalScore, 0.001)
}

func TestRunAllVendorsExcluded(t *testing.T) {
	a := testVendor("Alpha")
	b := testVendor("Bravo")

	res := newTestEngine().Run(Input{
		Vendors: []model.Vendor{a, b},
		Now:     engineNow,
	})

	assert.Empty(t, res.Analyses)
	assert.ElementsMatch(t, []string{"Alpha", "Bravo"}, res.Excluded)
	assert.Equal(t, "No vendor data available for analysis.", res.Summary.Summary)
	assert.Equal(t, engineNow, res.ComputedAt)
}

func TestRunNonUnitWeights(t *testing.T) {
	holder := NewWeightsHolder(model.Weights{TotalCost: 1, TotalTime: 1, Reliability: 1, Capacity: 1})
	e := NewEngine(holder, defaultRisk())

	v, parts := engineVendor("Solo", nil)
	res := e.Run(Input{
		Vendors:       []model.Vendor{v},
		PartsByVendor: map[string][]model.Part{v.ID: parts},
		Now:           engineNow,
	})

	// Weights are applied as given; a sum of 4 scales the final score
	// past 1.0 rather than being renormalized.
	require.Len(t, res.Analyses, 1)
	assert.InDelta(t, 4.0, res.Analyses[0].Score.FinalScore, 0.001)
	assert.InDelta(t, 4.0, res.Weights.Sum(), 0.001)
}

func TestRunSnapshotsWeightsPerRun(t *testing.T) {
	holder := NewWeightsHolder(model.DefaultWeights())
	e := NewEngine(holder, defaultRisk())

	v, parts := engineVendor("Solo", nil)
	in := Input{
		Vendors:       []model.Vendor{v},
		PartsByVendor: map[string][]model.Part{v.ID: parts},
		Now:           engineNow,
	}

	first := e.Run(in)
	assert.Equal(t, model.DefaultWeights(), first.Weights)
	assert.Equal(t, model.DefaultWeights(), first.Analyses[0].Score.Weights)

	costOnly := model.Weights{TotalCost: 1}
	require.NoError(t, holder.Swap(costOnly))

	second := e.Run(in)
	assert.Equal(t, costOnly, second.Weights)
	assert.InDelta(t, 1.0, second.Analyses[0].Score.FinalScore, 0.001)
}

func TestRunRanksAndTieBreaks(t *testing.T) {
	// Identical metrics across the board: every pillar degenerates to
	// 1.0, all final scores tie, and names decide the order.
	vz, pz := engineVendor("Zeta Components", nil)
	va, pa := engineVendor("Acme Supply", nil)
	vm, pm := engineVendor("Midway Parts", nil)

	res := newTestEngine().Run(Input{
		Vendors:       []model.Vendor{vz, va, vm},
		PartsByVendor: map[string][]model.Part{vz.ID: pz, va.ID: pa, vm.ID: pm},
		Now:           engineNow,
	})

	require.Len(t, res.Analyses, 3)
	assert.Equal(t, "Acme Supply", res.Analyses[0].Vendor.Name)
	assert.Equal(t, "Midway Parts", res.Analyses[1].Vendor.Name)
	assert.Equal(t, "Zeta Components", res.Analyses[2].Vendor.Name)
}

func TestRunFlagsAndStaleness(t *testing.T) {
	fresh, freshParts := engineVendor("Fresh", nil)
	fresh.LastVerified = engineNow.Add(-29 * 24 * time.Hour)

	stale, staleParts := engineVendor("Stale", nil)
	stale.LastVerified = engineNow.Add(-45 * 24 * time.Hour)

	res := newTestEngine().Run(Input{
		Vendors:       []model.Vendor{fresh, stale},
		PartsByVendor: map[string][]model.Part{fresh.ID: freshParts, stale.ID: staleParts},
		Now:           engineNow,
	})

	byName := map[string]model.VendorAnalysis{}
	for _, a := range res.Analyses {
		byName[a.Vendor.Name] = a
	}

	assert.False(t, byName["Fresh"].Stale)
	assert.Empty(t, byName["Fresh"].Flags)

	require.True(t, byName["Stale"].Stale)
	require.Len(t, byName["Stale"].Flags, 1)
	assert.Equal(t, model.RiskStaleData, byName["Stale"].Flags[0].Kind)
}

func TestRunCostSpikeUsesPriorCosts(t *testing.T) {
	v, parts := engineVendor("Spiky", func(p *model.Part) { p.UnitPrice = 23; p.FreightCost = 0; p.TariffRate = 0 })

	e := newTestEngine()
	withHistory := e.Run(Input{
		Vendors:       []model.Vendor{v},
		PartsByVendor: map[string][]model.Part{v.ID: parts},
		PriorCosts:    map[string]float64{v.ID: 20},
		Now:           engineNow,
	})
	require.Len(t, withHistory.Analyses, 1)
	require.Len(t, withHistory.Analyses[0].Flags, 1)
	assert.Equal(t, model.RiskCostSpike, withHistory.Analyses[0].Flags[0].Kind)

	withoutHistory := e.Run(Input{
		Vendors:       []model.Vendor{v},
		PartsByVendor: map[string][]model.Part{v.ID: parts},
		Now:           engineNow,
	})
	assert.Empty(t, withoutHistory.Analyses[0].Flags)
}

func TestRunComputedAtDefaultsToNow(t *testing.T) {
	v, parts := engineVendor("Solo", nil)
	before := time.Now().UTC()

	res := newTestEngine().Run(Input{
		Vendors:       []model.Vendor{v},
		PartsByVendor: map[string][]model.Part{v.ID: parts},
	})

	assert.False(t, res.ComputedAt.Before(before))
}

func TestWithWinsorize(t *testing.T) {
	tests := []struct {
		name string
		pct  float64
		want float64
	}{
		{"valid pct", 0.05, 0.05},
		{"zero ignored", 0, 0},
		{"negative ignored", -0.1, 0},
		{"half and above ignored", 0.5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(WithWinsorize(tt.pct))
			assert.InDelta(t, tt.want, e.winsorizePct, 1e-9)
		})
	}
}

func TestRunWinsorizeCapsOutlier(t *testing.T) {
	// Twenty vendors priced 10..29 with one at 1000: winsorized bounds
	// pull the outlier's cap down so mid-range vendors keep spread
	// instead of bunching at the top.
	vendors := make([]model.Vendor, 0, 21)
	partsByVendor := make(map[string][]model.Part, 21)
	for i := 0; i < 20; i++ {
		v, parts := engineVendor(vendorLetterName(i), nil)
		parts[0].UnitPrice = float64(10 + i)
		parts[0].FreightCost = 0
		parts[0].TariffRate = 0
		vendors = append(vendors, v)
		partsByVendor[v.ID] = parts
	}
	outlier, outlierParts := engineVendor("Outlier Corp", func(p *model.Part) {
		p.UnitPrice = 1000
		p.FreightCost = 0
		p.TariffRate = 0
	})
	vendors = append(vendors, outlier)
	partsByVendor[outlier.ID] = outlierParts

	in := Input{Vendors: vendors, PartsByVendor: partsByVendor, Now: engineNow}

	raw := newTestEngine().Run(in)
	capped := newTestEngine(WithWinsorize(0.05)).Run(in)

	spread := func(res *Result) float64 {
		var min, max float64
		seen := false
		for _, a := range res.Analyses {
			if a.Vendor.Name == "Outlier Corp" {
				continue
			}
			c := a.Score.Pillars.TotalCost
			if !seen || c < min {
				min = c
			}
			if !seen || c > max {
				max = c
			}
			seen = true
		}
		return max - min
	}

	assert.Greater(t, spread(capped), spread(raw),
		"winsorized run should spread non-outlier cost scores wider")
}

func vendorLetterName(i int) string {
	return "Vendor " + string(rune('A'+i))
}
