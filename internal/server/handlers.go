package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/pdesskyterra/vendor-tracking-app/internal/catalog"
	"github.com/pdesskyterra/vendor-tracking-app/internal/model"
	"github.com/pdesskyterra/vendor-tracking-app/internal/scoring"
	"github.com/pdesskyterra/vendor-tracking-app/internal/store"
)

const (
	defaultLimit = 50
	maxLimit     = 100

	// trendHistoryLimit caps the archived points in a detail response.
	trendHistoryLimit = 12
)

// Catalog is the slice of the catalog surface the handlers consume.
type Catalog interface {
	Fetch(ctx context.Context) (*catalog.Data, error)
	WriteSnapshots(ctx context.Context, analyses []model.VendorAnalysis, takenAt time.Time) (int, error)
}

// API holds the dependencies behind the HTTP handlers.
type API struct {
	catalog Catalog
	archive store.Store
	engine  *scoring.Engine
	weights *scoring.WeightsHolder
	version string
}

// NewAPI wires the handlers to their dependencies.
func NewAPI(cat Catalog, archive store.Store, engine *scoring.Engine, weights *scoring.WeightsHolder, version string) *API {
	return &API{catalog: cat, archive: archive, engine: engine, weights: weights, version: version}
}

func (a *API) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   a.version,
	})
}

// fetchAndScore loads the live catalog, applies filters, and runs one
// set-relative scoring pass. On failure it writes the error response
// itself and returns ok=false.
func (a *API) fetchAndScore(w http.ResponseWriter, r *http.Request, opts scoring.FilterOptions) (*scoring.Result, *catalog.Data, bool) {
	ctx := r.Context()

	data, err := a.catalog.Fetch(ctx)
	if err != nil {
		zap.L().Error("server: catalog fetch failed", zap.Error(err))
		respondFailure(w, http.StatusServiceUnavailable, "Database connection error", "Unable to connect to data store")
		return nil, nil, false
	}

	vendors := scoring.ApplyFilters(data.Vendors, data.PartsByVendor, opts)

	ids := make([]string, len(vendors))
	for i, v := range vendors {
		ids[i] = v.ID
	}
	prior, err := store.PriorCosts(ctx, a.archive, ids, time.Now().UTC())
	if err != nil {
		// Cost-spike momentum input only; the run proceeds without it.
		zap.L().Warn("server: prior costs unavailable", zap.Error(err))
		prior = nil
	}

	res := a.engine.Run(scoring.Input{
		Vendors:       vendors,
		PartsByVendor: data.PartsByVendor,
		PriorCosts:    prior,
	})
	return res, data, true
}

type vendorListResponse struct {
	Vendors          []vendorItem    `json:"vendors"`
	Total            int             `json:"total"`
	Excluded         []string        `json:"excluded,omitempty"`
	ExecutiveSummary scoring.Summary `json:"executive_summary"`
	FiltersApplied   filtersApplied  `json:"filters_applied"`
	GeneratedAt      string          `json:"generated_at"`
}

type filtersApplied struct {
	Sort      string `json:"sort"`
	Component string `json:"component"`
	Region    string `json:"region"`
	Mode      string `json:"mode"`
}

// riskFlagBrief is the list-view flag shape: kind and severity without
// the numeric evidence carried by the detail view.
type riskFlagBrief struct {
	Kind        model.RiskKind `json:"type"`
	Severity    model.Severity `json:"severity"`
	Description string         `json:"description"`
}

type vendorItem struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Region       model.Region       `json:"region"`
	FinalScore   float64            `json:"final_score"`
	PillarScores model.PillarScores `json:"pillar_scores"`
	Metrics      model.RawMetrics   `json:"metrics"`
	RiskFlags    []riskFlagBrief    `json:"risk_flags"`
	Staleness    bool               `json:"staleness"`
	LastVerified *string            `json:"last_verified"`
}

func newVendorItem(an model.VendorAnalysis) vendorItem {
	flags := make([]riskFlagBrief, 0, len(an.Flags))
	for _, f := range an.Flags {
		flags = append(flags, riskFlagBrief{Kind: f.Kind, Severity: f.Severity, Description: f.Description})
	}
	return vendorItem{
		ID:           an.Vendor.ID,
		Name:         an.Vendor.Name,
		Region:       an.Vendor.Region,
		FinalScore:   an.Score.FinalScore,
		PillarScores: an.Score.Pillars,
		Metrics:      an.Metrics,
		RiskFlags:    flags,
		Staleness:    an.Stale,
		LastVerified: isoTime(an.Vendor.LastVerified),
	}
}

func (a *API) handleVendors(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	key, err := scoring.ParseSortKey(q.Get("sort"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	limit := defaultLimit
	if raw := q.Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	opts := scoring.FilterOptions{
		Component: q.Get("component"),
		Region:    q.Get("region"),
		Mode:      q.Get("mode"),
	}

	res, _, ok := a.fetchAndScore(w, r, opts)
	if !ok {
		return
	}

	analyses := res.Analyses
	if key != scoring.SortFinalScore {
		scoring.Rank(analyses, key)
	}
	if len(analyses) > limit {
		analyses = analyses[:limit]
	}

	items := make([]vendorItem, 0, len(analyses))
	for _, an := range analyses {
		items = append(items, newVendorItem(an))
	}

	respondJSON(w, http.StatusOK, vendorListResponse{
		Vendors:          items,
		Total:            len(items),
		Excluded:         res.Excluded,
		ExecutiveSummary: scoring.BuildSummary(analyses),
		FiltersApplied: filtersApplied{
			Sort:      string(key),
			Component: opts.Component,
			Region:    opts.Region,
			Mode:      opts.Mode,
		},
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	})
}

type vendorDetailResponse struct {
	Vendor          vendorProfile    `json:"vendor"`
	CurrentScore    currentScore     `json:"current_score"`
	Parts           []partDetail     `json:"parts"`
	HistoricalTrend []trendEntry     `json:"historical_trend"`
	RiskFlags       []model.RiskFlag `json:"risk_flags"`
	Metrics         model.RawMetrics `json:"metrics"`
}

type vendorProfile struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	Region           model.Region `json:"region"`
	ReliabilityScore float64      `json:"reliability_score"`
	ContactEmail     string       `json:"contact_email"`
	LastVerified     *string      `json:"last_verified"`
	IsStale          bool         `json:"is_stale"`
}

type currentScore struct {
	FinalScore    float64            `json:"final_score"`
	PillarScores  model.PillarScores `json:"pillar_scores"`
	Contributions model.PillarScores `json:"contributions"`
	ComputedAt    time.Time          `json:"computed_at"`
}

// trendEntry is one archived score point, oldest first.
type trendEntry struct {
	Date       string  `json:"date"`
	FinalScore float64 `json:"final_score"`
}

type partDetail struct {
	ID              string             `json:"id"`
	ComponentName   string             `json:"component_name"`
	UnitPrice       float64            `json:"unit_price"`
	FreightCost     float64            `json:"freight_cost"`
	TariffRate      float64            `json:"tariff_rate"`
	TotalLandedCost float64            `json:"total_landed_cost"`
	LeadTimeWeeks   int                `json:"lead_time_weeks"`
	TransitDays     int                `json:"transit_days"`
	TotalTimeDays   int                `json:"total_time_days"`
	ShippingMode    model.ShippingMode `json:"shipping_mode"`
	MonthlyCapacity int                `json:"monthly_capacity"`
	Notes           string             `json:"notes,omitempty"`
	LastVerified    *string            `json:"last_verified"`
}

func newPartDetail(p model.Part) partDetail {
	return partDetail{
		ID:              p.ID,
		ComponentName:   p.ComponentName,
		UnitPrice:       p.UnitPrice,
		FreightCost:     p.FreightCost,
		TariffRate:      p.TariffRate,
		TotalLandedCost: p.LandedCost(),
		LeadTimeWeeks:   p.LeadTimeWeeks,
		TransitDays:     p.TransitDays,
		TotalTimeDays:   p.TotalTimeDays(),
		ShippingMode:    p.ShippingMode,
		MonthlyCapacity: p.MonthlyCapacity,
		Notes:           p.Notes,
		LastVerified:    isoTime(p.LastVerified),
	}
}

func (a *API) handleVendorDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// Score the full candidate set so the vendor's pillar scores match
	// the ranking view instead of a degenerate single-vendor set.
	res, data, ok := a.fetchAndScore(w, r, scoring.FilterOptions{})
	if !ok {
		return
	}

	an, found := a.findAnalysis(res, data, id)
	if !found {
		respondError(w, http.StatusNotFound, "Vendor not found")
		return
	}

	snaps, err := a.archive.History(r.Context(), id, trendHistoryLimit)
	if err != nil {
		zap.L().Error("server: snapshot history failed", zap.String("vendor_id", id), zap.Error(err))
		respondFailure(w, http.StatusInternalServerError, "Internal server error", "Unable to load snapshot history")
		return
	}
	trend := make([]trendEntry, 0, len(snaps))
	for i := len(snaps) - 1; i >= 0; i-- {
		trend = append(trend, trendEntry{
			Date:       snaps[i].TakenAt.UTC().Format(time.RFC3339),
			FinalScore: snaps[i].FinalScore,
		})
	}

	parts := make([]partDetail, 0, len(an.Parts))
	for _, p := range an.Parts {
		parts = append(parts, newPartDetail(p))
	}

	flags := an.Flags
	if flags == nil {
		flags = []model.RiskFlag{}
	}

	respondJSON(w, http.StatusOK, vendorDetailResponse{
		Vendor: vendorProfile{
			ID:               an.Vendor.ID,
			Name:             an.Vendor.Name,
			Region:           an.Vendor.Region,
			ReliabilityScore: an.Vendor.ReliabilityScore,
			ContactEmail:     an.Vendor.ContactEmail,
			LastVerified:     isoTime(an.Vendor.LastVerified),
			IsStale:          an.Stale,
		},
		CurrentScore: currentScore{
			FinalScore:    an.Score.FinalScore,
			PillarScores:  an.Score.Pillars,
			Contributions: an.Score.Contributions(),
			ComputedAt:    res.ComputedAt,
		},
		Parts:           parts,
		HistoricalTrend: trend,
		RiskFlags:       flags,
		Metrics:         an.Metrics,
	})
}

// findAnalysis locates the vendor's analysis in the run, falling back
// to a zero-score analysis for vendors excluded for having no parts.
func (a *API) findAnalysis(res *scoring.Result, data *catalog.Data, id string) (model.VendorAnalysis, bool) {
	for _, an := range res.Analyses {
		if an.Vendor.ID == id {
			return an, true
		}
	}
	for _, v := range data.Vendors {
		if v.ID == id {
			return model.VendorAnalysis{
				Vendor: v,
				Stale:  !v.VerifiedWithin(res.ComputedAt, a.engine.Detector().StalenessWindow()),
			}, true
		}
	}
	return model.VendorAnalysis{}, false
}

type weightsResponse struct {
	Weights   model.Weights `json:"weights"`
	UpdatedAt string        `json:"updated_at"`
	Message   string        `json:"message,omitempty"`
}

func (a *API) handleWeightsGet(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, weightsResponse{
		Weights:   a.weights.Load(),
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	})
}

// weightKeys fixes the validation order for update requests.
var weightKeys = []string{"total_cost", "total_time", "reliability", "capacity"}

func (a *API) handleWeightsUpdate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Weights map[string]any `json:"weights"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Weights == nil {
		respondError(w, http.StatusBadRequest, "Missing weights in request body")
		return
	}

	vals := make(map[string]float64, len(weightKeys))
	for _, key := range weightKeys {
		raw, ok := body.Weights[key]
		if !ok {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("Missing weight for %s", key))
			return
		}
		f, ok := raw.(float64)
		if !ok {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("Weight for %s must be a number", key))
			return
		}
		vals[key] = f
	}

	next := model.Weights{
		TotalCost:   vals["total_cost"],
		TotalTime:   vals["total_time"],
		Reliability: vals["reliability"],
		Capacity:    vals["capacity"],
	}
	if err := a.weights.Swap(next); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	zap.L().Info("server: weights updated", zap.Float64("sum", next.Sum()))
	respondJSON(w, http.StatusOK, weightsResponse{
		Weights:   a.weights.Load(),
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
		Message:   "Scoring weights updated successfully",
	})
}

type recomputeResponse struct {
	Recomputed       int             `json:"recomputed"`
	WeightsUsed      model.Weights   `json:"weights_used"`
	ExecutiveSummary scoring.Summary `json:"executive_summary"`
	ComputedAt       time.Time       `json:"computed_at"`
}

func (a *API) handleRecompute(w http.ResponseWriter, r *http.Request) {
	res, _, ok := a.fetchAndScore(w, r, scoring.FilterOptions{})
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, recomputeResponse{
		Recomputed:       len(res.Analyses),
		WeightsUsed:      res.Weights,
		ExecutiveSummary: res.Summary,
		ComputedAt:       res.ComputedAt,
	})
}

type trendsResponse struct {
	Trends      trendsPayload `json:"trends"`
	GeneratedAt string        `json:"generated_at"`
}

type trendsPayload struct {
	VendorRankings []vendorRanking `json:"vendor_rankings"`
	CostTrends     costTrendSeries `json:"cost_trends"`
}

// vendorRanking is a chart-ready series: scores[i] belongs to months[i].
type vendorRanking struct {
	VendorID string    `json:"vendor_id"`
	Vendor   string    `json:"vendor"`
	Scores   []float64 `json:"scores"`
	Months   []string  `json:"months"`
}

type costTrendSeries struct {
	AvgLandedCost []float64 `json:"avg_landed_cost"`
	Months        []string  `json:"months"`
}

func (a *API) handleTrends(w http.ResponseWriter, r *http.Request) {
	months := 6
	if raw := r.URL.Query().Get("months"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			months = n
		}
	}

	ctx := r.Context()
	vendorTrends, err := a.archive.VendorTrends(ctx, months)
	if err != nil {
		zap.L().Error("server: vendor trends failed", zap.Error(err))
		respondFailure(w, http.StatusInternalServerError, "Internal server error", "Unable to load trend data")
		return
	}
	costTrend, err := a.archive.CostTrend(ctx, months)
	if err != nil {
		zap.L().Error("server: cost trend failed", zap.Error(err))
		respondFailure(w, http.StatusInternalServerError, "Internal server error", "Unable to load trend data")
		return
	}

	rankings := make([]vendorRanking, 0, len(vendorTrends))
	for _, vt := range vendorTrends {
		vr := vendorRanking{
			VendorID: vt.VendorID,
			Vendor:   vt.VendorName,
			Scores:   make([]float64, 0, len(vt.Points)),
			Months:   make([]string, 0, len(vt.Points)),
		}
		for _, pt := range vt.Points {
			vr.Scores = append(vr.Scores, pt.AvgFinalScore)
			vr.Months = append(vr.Months, pt.Month)
		}
		rankings = append(rankings, vr)
	}

	costs := costTrendSeries{
		AvgLandedCost: make([]float64, 0, len(costTrend)),
		Months:        make([]string, 0, len(costTrend)),
	}
	for _, pt := range costTrend {
		costs.AvgLandedCost = append(costs.AvgLandedCost, pt.AvgLandedCost)
		costs.Months = append(costs.Months, pt.Month)
	}

	respondJSON(w, http.StatusOK, trendsResponse{
		Trends:      trendsPayload{VendorRankings: rankings, CostTrends: costs},
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	})
}

type snapshotResponse struct {
	Saved       int       `json:"saved"`
	NotionPages int       `json:"notion_pages"`
	TakenAt     time.Time `json:"taken_at"`
}

func (a *API) handleSnapshots(w http.ResponseWriter, r *http.Request) {
	res, _, ok := a.fetchAndScore(w, r, scoring.FilterOptions{})
	if !ok {
		return
	}

	takenAt := res.ComputedAt
	snaps := make([]model.Snapshot, 0, len(res.Analyses))
	for _, an := range res.Analyses {
		snaps = append(snaps, model.NewSnapshot(an, takenAt))
	}

	if err := a.archive.SaveSnapshots(r.Context(), snaps); err != nil {
		zap.L().Error("server: archive save failed", zap.Error(err))
		respondFailure(w, http.StatusInternalServerError, "Internal server error", "Unable to archive snapshots")
		return
	}

	// The archive is the source of truth; the Notion mirror is
	// best-effort.
	pages, err := a.catalog.WriteSnapshots(r.Context(), res.Analyses, takenAt)
	if err != nil {
		zap.L().Warn("server: notion snapshot write failed", zap.Error(err))
		pages = 0
	}

	respondJSON(w, http.StatusOK, snapshotResponse{
		Saved:       len(snaps),
		NotionPages: pages,
		TakenAt:     takenAt,
	})
}
