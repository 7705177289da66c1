package model

import (
	"strings"
	"time"
)

// Region is a vendor's sourcing region code.
type Region string

const (
	RegionUS Region = "US"
	RegionEU Region = "EU"
	RegionKR Region = "KR"
	RegionCN Region = "CN"
	RegionVN Region = "VN"
	RegionMX Region = "MX"
	RegionIN Region = "IN"
)

// ShippingMode describes how a part travels from vendor to destination.
type ShippingMode string

const (
	ShipAir    ShippingMode = "Air"
	ShipOcean  ShippingMode = "Ocean"
	ShipGround ShippingMode = "Ground"
)

// ParseShippingMode normalizes free-form mode text from the datastore.
// Unknown values are returned as-is so a new mode degrades to no
// mode-specific thresholds instead of dropping the part.
func ParseShippingMode(s string) ShippingMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "air":
		return ShipAir
	case "ocean", "sea":
		return ShipOcean
	case "ground", "truck", "rail":
		return ShipGround
	default:
		return ShippingMode(strings.TrimSpace(s))
	}
}

// Vendor is a supplier record. Sourced from the Vendors database and
// read-only to the scoring engine; score fields live on VendorAnalysis.
type Vendor struct {
	ID               string    `json:"id" yaml:"id"`
	Name             string    `json:"name" yaml:"name"`
	Region           Region    `json:"region" yaml:"region"`
	ReliabilityScore float64   `json:"reliability_score" yaml:"reliability_score"` // raw input metric in [0,1]
	ContactEmail     string    `json:"contact_email,omitempty" yaml:"contact_email,omitempty"`
	LastVerified     time.Time `json:"last_verified,omitempty" yaml:"last_verified,omitempty"` // zero means never verified
	CreatedTime      time.Time `json:"created_time,omitempty" yaml:"created_time,omitempty"`
}

// VerifiedWithin reports whether the vendor record was verified within
// the given window before now. A zero LastVerified always fails.
func (v Vendor) VerifiedWithin(now time.Time, window time.Duration) bool {
	if v.LastVerified.IsZero() {
		return false
	}
	return now.Sub(v.LastVerified) <= window
}

// Part is a component quote belonging to exactly one vendor.
type Part struct {
	ID              string       `json:"id" yaml:"id"`
	ComponentName   string       `json:"component_name" yaml:"component_name"`
	VendorID        string       `json:"vendor_id" yaml:"vendor_id"`
	UnitPrice       float64      `json:"unit_price" yaml:"unit_price"`
	FreightCost     float64      `json:"freight_cost" yaml:"freight_cost"`
	TariffRate      float64      `json:"tariff_rate" yaml:"tariff_rate"` // decimal fraction, e.g. 0.065
	LeadTimeWeeks   int          `json:"lead_time_weeks" yaml:"lead_time_weeks"`
	TransitDays     int          `json:"transit_days" yaml:"transit_days"`
	ShippingMode    ShippingMode `json:"shipping_mode" yaml:"shipping_mode"`
	MonthlyCapacity int          `json:"monthly_capacity" yaml:"monthly_capacity"`
	Notes           string       `json:"notes,omitempty" yaml:"notes,omitempty"`
	LastVerified    time.Time    `json:"last_verified,omitempty" yaml:"last_verified,omitempty"`
}

// LandedCost is the fully-loaded per-unit cost:
// unit price + freight + tariff on the unit price.
func (p Part) LandedCost() float64 {
	return p.UnitPrice + p.FreightCost + p.UnitPrice*p.TariffRate
}

// TotalTimeDays is lead time plus transit, in days.
func (p Part) TotalTimeDays() int {
	return p.LeadTimeWeeks*7 + p.TransitDays
}
