package scoring

import (
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/pdesskyterra/vendor-tracking-app/internal/model"
)

// SortKey selects which score drives the ranking order.
type SortKey string

const (
	SortFinalScore  SortKey = "final_score"
	SortTotalCost   SortKey = "total_cost"
	SortTotalTime   SortKey = "total_time"
	SortReliability SortKey = "reliability"
	SortCapacity    SortKey = "capacity"
)

// ParseSortKey validates a user-supplied sort field. Empty input means
// final score.
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortFinalScore:
		return SortFinalScore, nil
	case SortTotalCost:
		return SortTotalCost, nil
	case SortTotalTime:
		return SortTotalTime, nil
	case SortReliability:
		return SortReliability, nil
	case SortCapacity:
		return SortCapacity, nil
	default:
		return "", eris.Errorf("scoring: unknown sort key %q", s)
	}
}

// sortValue reads the chosen score off an analysis. Every key is a
// normalized score where higher is better; cost and time were inverted
// during normalization, so descending order is correct for all keys.
func sortValue(a model.VendorAnalysis, key SortKey) float64 {
	switch key {
	case SortTotalCost:
		return a.Score.Pillars.TotalCost
	case SortTotalTime:
		return a.Score.Pillars.TotalTime
	case SortReliability:
		return a.Score.Pillars.Reliability
	case SortCapacity:
		return a.Score.Pillars.Capacity
	default:
		return a.Score.FinalScore
	}
}

// Rank orders analyses by the chosen score descending. Ties fall back
// to vendor name ascending so repeated runs over the same inputs always
// produce the same order.
func Rank(analyses []model.VendorAnalysis, key SortKey) {
	sort.Slice(analyses, func(i, j int) bool {
		vi, vj := sortValue(analyses[i], key), sortValue(analyses[j], key)
		if vi != vj {
			return vi > vj
		}
		return analyses[i].Vendor.Name < analyses[j].Vendor.Name
	})
}

// FilterOptions narrows the candidate set before scoring. Because
// normalization is set-relative, filtering is applied first and scores
// are computed against the filtered set.
type FilterOptions struct {
	Component string // case-insensitive substring over part names
	Region    string // exact region match, case-insensitive
	Mode      string // exact shipping mode match, case-insensitive
}

func (f FilterOptions) empty() bool {
	return f.Component == "" && f.Region == "" && f.Mode == ""
}

// ApplyFilters returns the vendors passing every set filter. Component
// and mode filters inspect the vendor's parts: a vendor qualifies when
// at least one part matches.
func ApplyFilters(vendors []model.Vendor, partsByVendor map[string][]model.Part, opts FilterOptions) []model.Vendor {
	if opts.empty() {
		return vendors
	}

	component := strings.ToLower(opts.Component)
	region := strings.ToLower(opts.Region)
	mode := strings.ToLower(opts.Mode)

	var out []model.Vendor
	for _, v := range vendors {
		if region != "" && strings.ToLower(string(v.Region)) != region {
			continue
		}
		if component != "" && !anyPart(partsByVendor[v.ID], func(p model.Part) bool {
			return strings.Contains(strings.ToLower(p.ComponentName), component)
		}) {
			continue
		}
		if mode != "" && !anyPart(partsByVendor[v.ID], func(p model.Part) bool {
			return strings.ToLower(string(p.ShippingMode)) == mode
		}) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func anyPart(parts []model.Part, match func(model.Part) bool) bool {
	for _, p := range parts {
		if match(p) {
			return true
		}
	}
	return false
}
