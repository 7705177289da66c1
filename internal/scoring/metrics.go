package scoring

import (
	"fmt"

	"github.com/pdesskyterra/vendor-tracking-app/internal/model"
)

// ExtractMetrics derives a vendor's raw metrics from its part records.
//
// A vendor with zero parts gets sentinel metrics (all zero, PartCount 0);
// the engine excludes such vendors from normalization rather than letting
// zeros drag the min-max range. Malformed fields are recorded as issues
// on the result and the offending value is clamped so the batch always
// completes; a data-quality problem never aborts scoring.
func ExtractMetrics(vendor model.Vendor, parts []model.Part) model.RawMetrics {
	m := model.RawMetrics{PartCount: len(parts)}

	m.Reliability = vendor.ReliabilityScore
	if vendor.ReliabilityScore < 0 || vendor.ReliabilityScore > 1 {
		m.Issues = append(m.Issues,
			fmt.Sprintf("reliability score %.3f outside [0,1]", vendor.ReliabilityScore))
		m.Reliability = clamp01(vendor.ReliabilityScore)
	}

	if len(parts) == 0 {
		return m
	}

	var costSum, timeSum float64
	for _, p := range parts {
		price := p.UnitPrice
		if price < 0 {
			m.Issues = append(m.Issues,
				fmt.Sprintf("part %q: negative unit price %.2f", p.ComponentName, price))
			price = 0
		}
		freight := p.FreightCost
		if freight < 0 {
			m.Issues = append(m.Issues,
				fmt.Sprintf("part %q: negative freight cost %.2f", p.ComponentName, freight))
			freight = 0
		}
		tariff := p.TariffRate
		if tariff < 0 || tariff >= 1 {
			m.Issues = append(m.Issues,
				fmt.Sprintf("part %q: tariff rate %.3f outside [0,1)", p.ComponentName, tariff))
			tariff = 0
		}
		costSum += price + freight + price*tariff

		lead := p.LeadTimeWeeks
		if lead < 0 {
			m.Issues = append(m.Issues,
				fmt.Sprintf("part %q: negative lead time %d", p.ComponentName, lead))
			lead = 0
		}
		transit := p.TransitDays
		if transit < 0 {
			m.Issues = append(m.Issues,
				fmt.Sprintf("part %q: negative transit days %d", p.ComponentName, transit))
			transit = 0
		}
		timeSum += float64(lead*7 + transit)

		capacity := p.MonthlyCapacity
		if capacity < 0 {
			m.Issues = append(m.Issues,
				fmt.Sprintf("part %q: negative monthly capacity %d", p.ComponentName, capacity))
			capacity = 0
		}
		m.TotalCapacity += capacity
	}

	n := float64(len(parts))
	m.AvgLandedCost = costSum / n
	m.AvgTotalTime = timeSum / n
	return m
}
