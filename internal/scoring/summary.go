package scoring

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/pdesskyterra/vendor-tracking-app/internal/model"
)

// msgPrinter renders large counts with thousands separators for
// summary and risk text.
var msgPrinter = message.NewPrinter(language.English)

// Summary is the executive rollup attached to a ranked result.
type Summary struct {
	Summary        string `json:"summary"`
	Recommendation string `json:"recommendation"`
}

// BuildSummary assembles the executive summary from analyses already
// ranked by final score descending. Templated text only; the engine's
// numbers do the arguing.
func BuildSummary(analyses []model.VendorAnalysis) Summary {
	if len(analyses) == 0 {
		return Summary{Summary: "No vendor data available for analysis."}
	}

	top := analyses[0]
	total := len(analyses)

	highRisk := 0
	staleCount := 0
	totalCapacity := 0
	var costSum float64
	for _, a := range analyses {
		if hasHighSeverity(a.Flags) {
			highRisk++
		}
		if a.Stale {
			staleCount++
		}
		totalCapacity += a.Metrics.TotalCapacity
		costSum += a.Metrics.AvgLandedCost
	}

	var insights []string

	insights = append(insights, fmt.Sprintf("**Top Performer**: %s leads with %.1f%% score",
		top.Vendor.Name, top.Score.FinalScore*100))

	if highRisk > 0 {
		insights = append(insights, fmt.Sprintf("**Risk Alert**: %d/%d vendors flagged with high-risk issues",
			highRisk, total))
	}

	avgCost := costSum / float64(total)
	leaders := analyses
	if len(leaders) > 3 {
		leaders = leaders[:3]
	}
	var leaderSum float64
	for _, a := range leaders {
		leaderSum += a.Metrics.AvgLandedCost
	}
	leaderAvg := leaderSum / float64(len(leaders))
	if leaderAvg < avgCost*0.9 {
		insights = append(insights, fmt.Sprintf("**Cost Efficiency**: Top performers average 10%%+ lower costs ($%.2f vs $%.2f)",
			leaderAvg, avgCost))
	}

	insights = append(insights, msgPrinter.Sprintf("**Supply Capacity**: %d total units/month across all vendors",
		totalCapacity))

	if staleCount > 0 {
		insights = append(insights, fmt.Sprintf("**Data Quality**: %d/%d vendors need data refresh",
			staleCount, total))
	}

	return Summary{
		Summary:        strings.Join(insights, " • "),
		Recommendation: buildRecommendation(analyses),
	}
}

func buildRecommendation(analyses []model.VendorAnalysis) string {
	top := analyses[0]
	if len(analyses) == 1 {
		return fmt.Sprintf("**Single Option**: Proceed with %s while developing alternative suppliers.",
			top.Vendor.Name)
	}

	gap := top.Score.FinalScore - analyses[1].Score.FinalScore
	if gap > 0.15 {
		return fmt.Sprintf("**Strong Leader**: Prioritize %s for primary sourcing given significant performance advantage.",
			top.Vendor.Name)
	}
	return fmt.Sprintf("**Competitive Landscape**: Consider diversified sourcing between %s and %s to balance performance and risk.",
		top.Vendor.Name, analyses[1].Vendor.Name)
}

func hasHighSeverity(flags []model.RiskFlag) bool {
	for _, f := range flags {
		if f.Severity == model.SeverityHigh {
			return true
		}
	}
	return false
}
