package catalog

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/pdesskyterra/vendor-tracking-app/internal/model"
)

// demoSeed fixes the generator so repeated seeding runs produce the
// same vendors and parts.
const demoSeed = 42

// maxDemoParts caps generated part records across all vendors.
const maxDemoParts = 60

type seedVendor struct {
	name        string
	region      model.Region
	reliability float64
	email       string
}

// Thirty supplier profiles covering the sourcing regions the scoring
// demo needs: high-volume Asian suppliers, premium European ones,
// balanced North American ones, and emerging-market Indian ones.
var seedVendors = []seedVendor{
	{"Batreon", model.RegionKR, 0.85, "sourcing@batreon.kr"},
	{"PowerCell KR", model.RegionKR, 0.82, "exports@powercell.co.kr"},
	{"Seoul Battery Co", model.RegionKR, 0.78, "global@seoulbattery.com"},
	{"Shenzhen Energy", model.RegionCN, 0.75, "sales@szenergy.cn"},
	{"BYD Components", model.RegionCN, 0.80, "oem@byd.com"},
	{"CATL Supply", model.RegionCN, 0.88, "partnerships@catl.com"},
	{"Panasonic Shenzhen", model.RegionCN, 0.92, "b2b@panasonic.cn"},
	{"VinFast Components", model.RegionVN, 0.72, "supply@vinfast.vn"},
	{"Hanoi Power", model.RegionVN, 0.68, "export@hanoipower.vn"},
	{"Vietnam Energy Co", model.RegionVN, 0.71, "sales@vnenergy.com"},
	{"EuroEnergy", model.RegionEU, 0.91, "procurement@euroenergy.de"},
	{"Nordic Power", model.RegionEU, 0.89, "sales@nordicpower.se"},
	{"Alpine Components", model.RegionEU, 0.86, "export@alpine-comp.at"},
	{"French Cell Tech", model.RegionEU, 0.84, "b2b@frenchcell.fr"},
	{"Italian Energy", model.RegionEU, 0.79, "global@italenergy.it"},
	{"Tesla Energy", model.RegionUS, 0.94, "supply@tesla.com"},
	{"GM Components", model.RegionUS, 0.87, "sourcing@gm.com"},
	{"Ford Energy", model.RegionUS, 0.83, "partnerships@ford.com"},
	{"Boston Power", model.RegionUS, 0.81, "oem@bostonpower.com"},
	{"California Cells", model.RegionUS, 0.77, "sales@calcells.com"},
	{"Tijuana Power", model.RegionMX, 0.74, "export@tjpower.mx"},
	{"Mexico Energy", model.RegionMX, 0.70, "global@mexenergy.com"},
	{"Guadalajara Tech", model.RegionMX, 0.73, "sales@gdltech.mx"},
	{"Mumbai Power", model.RegionIN, 0.69, "export@mumbaipower.in"},
	{"Delhi Components", model.RegionIN, 0.66, "sales@delhicomp.in"},
	{"Bangalore Energy", model.RegionIN, 0.71, "global@blrenergy.in"},
	{"Chennai Cells", model.RegionIN, 0.67, "oem@chennaicells.in"},
	{"Hyderabad Tech", model.RegionIN, 0.73, "export@hydtech.in"},
	{"Pune Power", model.RegionIN, 0.68, "partnerships@punepower.in"},
	{"Kolkata Energy", model.RegionIN, 0.65, "sales@kolkataenergy.in"},
}

var seedComponents = []string{
	"Li-ion cell 18650", "Li-ion cell 21700", "Li-ion cell 302030", "Li-ion cell 402030",
	"Li-ion pouch 5Ah", "Li-ion pouch 10Ah", "LiFePO4 cell 32650", "Li-poly 1000mAh",
	"Li-poly 2000mAh", "Li-poly 3000mAh", "Solid-state 500mAh", "NMC cell 3500mAh",
	"Heart Rate Sensor", "SpO2 Sensor", "Temperature Sensor", "Accelerometer 6-axis",
	"Gyroscope 3-axis", "Pressure Sensor", "Ambient Light Sensor", "UV Sensor",
	"ECG Sensor", "EEG Sensor", "EMG Sensor", "Bioimpedance Sensor",
	"ARM Cortex-M4", "ARM Cortex-M7", "nRF52840 BLE", "ESP32-S3",
	"Qualcomm WCN3990", "MediaTek MT2523", "STM32 MCU", "NXP i.MX RT",
	"TI CC2640", "Nordic nRF91", "Realtek RTL8720", "Broadcom BCM4343",
	"OLED Display 1.3\"", "E-ink Display", "Haptic Motor", "Speaker 8ohm",
	"Microphone MEMS", "Antenna 2.4GHz", "Charging Coil", "Connector USB-C",
	"Flexible PCB", "Ceramic Substrate", "Silicone Overmold", "Metal Housing",
}

type modeRange struct {
	mode model.ShippingMode
	min  int
	max  int
}

// Transit-day ranges per region, in the order a shipping mode is picked.
var seedTransit = map[model.Region][]modeRange{
	model.RegionUS: {{model.ShipAir, 2, 5}, {model.ShipGround, 3, 7}, {model.ShipOcean, 14, 21}},
	model.RegionCN: {{model.ShipAir, 3, 7}, {model.ShipOcean, 18, 28}, {model.ShipGround, 28, 35}},
	model.RegionKR: {{model.ShipAir, 2, 4}, {model.ShipOcean, 14, 21}, {model.ShipGround, 21, 28}},
	model.RegionEU: {{model.ShipAir, 1, 3}, {model.ShipOcean, 12, 18}, {model.ShipGround, 5, 9}},
	model.RegionVN: {{model.ShipAir, 4, 8}, {model.ShipOcean, 21, 30}, {model.ShipGround, 30, 42}},
	model.RegionMX: {{model.ShipAir, 1, 2}, {model.ShipGround, 2, 4}, {model.ShipOcean, 7, 12}},
	model.RegionIN: {{model.ShipAir, 5, 9}, {model.ShipOcean, 25, 35}, {model.ShipGround, 35, 50}},
}

// Tariff options per region, in percent.
var seedTariffs = map[model.Region][]float64{
	model.RegionCN: {0, 2.5, 6.5, 10.0},
	model.RegionKR: {0, 0, 2.5, 6.5},
	model.RegionEU: {0, 2.5, 4.0, 6.5},
	model.RegionVN: {0, 0, 2.5, 6.5},
	model.RegionMX: {0, 0, 0, 2.5},
	model.RegionIN: {0, 2.5, 6.5, 10.0},
	model.RegionUS: {0, 0, 0, 0},
}

var seedPriceMultiplier = map[model.Region]float64{
	model.RegionCN: 0.85,
	model.RegionVN: 0.80,
	model.RegionIN: 0.75,
	model.RegionKR: 1.0,
	model.RegionMX: 0.90,
	model.RegionUS: 1.15,
	model.RegionEU: 1.25,
}

// DemoData generates the deterministic demo catalog: 30 vendors with
// mixed verification freshness and up to 60 parts with region-shaped
// pricing, shipping, tariffs, and capacity. The same now yields the
// same records on every call.
func DemoData(now time.Time) ([]model.Vendor, []model.Part) {
	rng := rand.New(rand.NewPCG(demoSeed, 0))

	vendors := make([]model.Vendor, 0, len(seedVendors))
	for i, tpl := range seedVendors {
		// First twenty vendors look recently verified, the rest stale.
		daysAgo := 1 + rng.IntN(25)
		if i >= 20 {
			daysAgo = 35 + rng.IntN(56)
		}

		vendors = append(vendors, model.Vendor{
			ID:               fmt.Sprintf("vendor_%02d", i+1),
			Name:             tpl.name,
			Region:           tpl.region,
			ReliabilityScore: tpl.reliability + (rng.Float64()*0.1 - 0.05),
			ContactEmail:     tpl.email,
			LastVerified:     now.AddDate(0, 0, -daysAgo),
			CreatedTime:      now.AddDate(0, 0, -(30 + rng.IntN(336))),
		})
	}

	var parts []model.Part
	partID := 1

	for _, v := range vendors {
		numParts := weightedPick(rng, []int{1, 2, 3, 4}, []int{10, 40, 35, 15})

		for range numParts {
			component := seedComponents[rng.IntN(len(seedComponents))]

			basePrice := componentBasePrice(rng, component)
			unitPrice := round2(basePrice * seedPriceMultiplier[v.Region])

			ranges := seedTransit[v.Region]
			mr := ranges[rng.IntN(len(ranges))]
			transitDays := mr.min + rng.IntN(mr.max-mr.min+1)

			var freight float64
			switch mr.mode {
			case model.ShipAir:
				freight = uniform(rng, 0.15, 0.45) * seedPriceMultiplier[v.Region]
			case model.ShipOcean:
				freight = uniform(rng, 0.05, 0.20)
			default:
				freight = uniform(rng, 0.08, 0.25)
			}

			var leadTime int
			if v.ReliabilityScore > 0.85 {
				leadTime = weightedPick(rng, []int{2, 3, 4, 6}, []int{20, 40, 30, 10})
			} else {
				leadTime = weightedPick(rng, []int{3, 4, 6, 8, 12}, []int{10, 25, 35, 20, 10})
			}

			tariffWeights := []int{60, 25, 10, 5}
			if v.Region == model.RegionCN || v.Region == model.RegionIN {
				tariffWeights = []int{40, 20, 30, 10}
			}
			tariffPct := weightedPick(rng, seedTariffs[v.Region], tariffWeights)

			var capacity int
			switch {
			case v.ReliabilityScore > 0.90:
				capacity = 50000 + rng.IntN(150001)
			case v.ReliabilityScore > 0.75:
				capacity = 15000 + rng.IntN(65001)
			default:
				capacity = 5000 + rng.IntN(25001)
			}

			verified := v.LastVerified
			if rng.Float64() < 0.3 {
				verified = verified.AddDate(0, 0, 1+rng.IntN(10))
				if verified.After(now) {
					verified = now
				}
			}

			notes := ""
			if rng.Float64() < 0.2 {
				notes = "Demo data for " + component
			}

			parts = append(parts, model.Part{
				ID:              fmt.Sprintf("part_%03d", partID),
				ComponentName:   component,
				VendorID:        v.ID,
				UnitPrice:       unitPrice,
				FreightCost:     round3(freight),
				TariffRate:      tariffPct / 100,
				LeadTimeWeeks:   leadTime,
				TransitDays:     transitDays,
				ShippingMode:    mr.mode,
				MonthlyCapacity: capacity,
				Notes:           notes,
				LastVerified:    verified,
			})
			partID++

			if len(parts) >= maxDemoParts {
				return vendors, parts
			}
		}
	}

	return vendors, parts
}

func componentBasePrice(rng *rand.Rand, component string) float64 {
	switch {
	case strings.Contains(component, "Li-ion"),
		strings.Contains(component, "Li-poly"),
		strings.Contains(component, "LiFePO4"):
		return uniform(rng, 0.80, 8.50)
	case strings.Contains(component, "Sensor"):
		return uniform(rng, 1.20, 15.00)
	case strings.Contains(component, "ARM"),
		strings.Contains(component, "nRF"),
		strings.Contains(component, "ESP32"),
		strings.Contains(component, "Qualcomm"):
		return uniform(rng, 3.50, 25.00)
	default:
		return uniform(rng, 0.30, 12.00)
	}
}

func weightedPick[T any](rng *rand.Rand, values []T, weights []int) T {
	total := 0
	for _, w := range weights {
		total += w
	}
	n := rng.IntN(total)
	for i, w := range weights {
		if n < w {
			return values[i]
		}
		n -= w
	}
	return values[len(values)-1]
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }

// SeedResult reports what a seeding run created.
type SeedResult struct {
	VendorsCreated int
	PartsCreated   int
}

// Seed validates schemas and populates the Vendors and Parts databases
// with the demo catalog. Populated databases are left alone unless
// force is set.
func (c *Catalog) Seed(ctx context.Context, force bool) (*SeedResult, error) {
	if err := c.ValidateSchemas(ctx); err != nil {
		return nil, err
	}

	if !force {
		empty, err := c.databasesEmpty(ctx)
		if err != nil {
			return nil, err
		}
		if !empty {
			return nil, ErrDataExists
		}
	}

	vendors, parts := DemoData(time.Now().UTC())

	result := &SeedResult{}
	pageIDs := make(map[string]string, len(vendors))

	for _, v := range vendors {
		if err := ctx.Err(); err != nil {
			return result, eris.Wrap(err, "catalog: seed cancelled")
		}

		page, err := c.client.CreatePage(ctx, &notionapi.PageCreateRequest{
			Parent: notionapi.Parent{
				Type:       notionapi.ParentTypeDatabaseID,
				DatabaseID: notionapi.DatabaseID(c.vendorsDB),
			},
			Properties: vendorProperties(v),
		})
		if err != nil {
			return result, eris.Wrap(err, fmt.Sprintf("catalog: seed vendor %s", v.Name))
		}
		pageIDs[v.ID] = string(page.ID)
		result.VendorsCreated++
	}

	for _, p := range parts {
		if err := ctx.Err(); err != nil {
			return result, eris.Wrap(err, "catalog: seed cancelled")
		}

		p.VendorID = pageIDs[p.VendorID]
		if _, err := c.client.CreatePage(ctx, &notionapi.PageCreateRequest{
			Parent: notionapi.Parent{
				Type:       notionapi.ParentTypeDatabaseID,
				DatabaseID: notionapi.DatabaseID(c.partsDB),
			},
			Properties: partProperties(p),
		}); err != nil {
			return result, eris.Wrap(err, fmt.Sprintf("catalog: seed part %s", p.ComponentName))
		}
		result.PartsCreated++
	}

	zap.L().Info("catalog: demo data seeded",
		zap.Int("vendors", result.VendorsCreated),
		zap.Int("parts", result.PartsCreated),
	)
	return result, nil
}

// databasesEmpty reports whether both the vendors and parts databases
// contain zero pages.
func (c *Catalog) databasesEmpty(ctx context.Context) (bool, error) {
	for _, dbID := range []string{c.vendorsDB, c.partsDB} {
		resp, err := c.client.QueryDatabase(ctx, dbID, &notionapi.DatabaseQueryRequest{
			PageSize: 1,
		})
		if err != nil {
			return false, eris.Wrap(err, "catalog: check existing data")
		}
		if len(resp.Results) > 0 {
			return false, nil
		}
	}
	return true, nil
}

func vendorProperties(v model.Vendor) notionapi.Properties {
	props := notionapi.Properties{
		"Name": notionapi.TitleProperty{
			Type: notionapi.PropertyTypeTitle,
			Title: []notionapi.RichText{
				{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: v.Name}},
			},
		},
		"Region": notionapi.SelectProperty{
			Type:   notionapi.PropertyTypeSelect,
			Select: notionapi.Option{Name: string(v.Region)},
		},
		"Reliability Score": numberProperty(v.ReliabilityScore),
	}
	if v.ContactEmail != "" {
		props["Contact Email"] = notionapi.EmailProperty{
			Type:  notionapi.PropertyTypeEmail,
			Email: v.ContactEmail,
		}
	}
	if !v.LastVerified.IsZero() {
		d := notionapi.Date(v.LastVerified)
		props["Last Verified"] = notionapi.DateProperty{
			Type: notionapi.PropertyTypeDate,
			Date: &notionapi.DateObject{Start: &d},
		}
	}
	return props
}

func partProperties(p model.Part) notionapi.Properties {
	props := notionapi.Properties{
		"Component Name": notionapi.TitleProperty{
			Type: notionapi.PropertyTypeTitle,
			Title: []notionapi.RichText{
				{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: p.ComponentName}},
			},
		},
		"Vendor": notionapi.RelationProperty{
			Type: notionapi.PropertyTypeRelation,
			Relation: []notionapi.Relation{
				{ID: notionapi.PageID(p.VendorID)},
			},
		},
		"Unit Price":        numberProperty(p.UnitPrice),
		"Freight Cost":      numberProperty(p.FreightCost),
		"Tariff Rate":       numberProperty(p.TariffRate),
		"Lead Time (weeks)": numberProperty(float64(p.LeadTimeWeeks)),
		"Transit Days":      numberProperty(float64(p.TransitDays)),
		"Shipping Mode": notionapi.SelectProperty{
			Type:   notionapi.PropertyTypeSelect,
			Select: notionapi.Option{Name: string(p.ShippingMode)},
		},
		"Monthly Capacity": numberProperty(float64(p.MonthlyCapacity)),
	}
	if p.Notes != "" {
		props["Notes"] = richTextProperty(p.Notes)
	}
	if !p.LastVerified.IsZero() {
		d := notionapi.Date(p.LastVerified)
		props["Last Verified"] = notionapi.DateProperty{
			Type: notionapi.PropertyTypeDate,
			Date: &notionapi.DateObject{Start: &d},
		}
	}
	return props
}
