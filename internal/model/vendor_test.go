package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPartLandedCost(t *testing.T) {
	tests := []struct {
		name string
		part Part
		want float64
	}{
		{
			name: "price plus freight plus tariff",
			part: Part{UnitPrice: 10.0, FreightCost: 1.5, TariffRate: 0.065},
			want: 10.0 + 1.5 + 0.65,
		},
		{
			name: "zero tariff",
			part: Part{UnitPrice: 4.20, FreightCost: 0.30},
			want: 4.50,
		},
		{
			name: "free freight",
			part: Part{UnitPrice: 8.0, TariffRate: 0.10},
			want: 8.80,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.part.LandedCost(), 0.0001)
		})
	}
}

func TestPartTotalTimeDays(t *testing.T) {
	p := Part{LeadTimeWeeks: 4, TransitDays: 18}
	assert.Equal(t, 46, p.TotalTimeDays())

	p = Part{LeadTimeWeeks: 0, TransitDays: 3}
	assert.Equal(t, 3, p.TotalTimeDays())
}

func TestParseShippingMode(t *testing.T) {
	tests := []struct {
		in   string
		want ShippingMode
	}{
		{"Air", ShipAir},
		{"air", ShipAir},
		{" OCEAN ", ShipOcean},
		{"sea", ShipOcean},
		{"Ground", ShipGround},
		{"rail", ShipGround},
		{"Drone", ShippingMode("Drone")},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseShippingMode(tt.in))
		})
	}
}

func TestVendorVerifiedWithin(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	window := 30 * 24 * time.Hour

	fresh := Vendor{LastVerified: now.AddDate(0, 0, -29)}
	assert.True(t, fresh.VerifiedWithin(now, window))

	stale := Vendor{LastVerified: now.AddDate(0, 0, -45)}
	assert.False(t, stale.VerifiedWithin(now, window))

	never := Vendor{}
	assert.False(t, never.VerifiedWithin(now, window))
}
