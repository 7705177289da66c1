package main

import (
	"context"

	"github.com/pdesskyterra/vendor-tracking-app/internal/catalog"
	"github.com/pdesskyterra/vendor-tracking-app/internal/policy"
	"github.com/pdesskyterra/vendor-tracking-app/internal/resilience"
	"github.com/pdesskyterra/vendor-tracking-app/internal/scoring"
	"github.com/pdesskyterra/vendor-tracking-app/pkg/notion"
)

// buildCatalog wires the Notion client with the configured rate limit
// and retry budget.
func buildCatalog() *catalog.Catalog {
	var opts []notion.ClientOption
	if cfg.Notion.RateLimitRPS > 0 {
		opts = append(opts, notion.WithRateLimit(cfg.Notion.RateLimitRPS))
	}
	client := notion.NewClient(cfg.Notion.Token, opts...)

	// Multiplier and jitter keep their defaults.
	retry := resilience.FromRetryConfig(
		cfg.Notion.RetryMaxAttempts,
		cfg.Notion.RetryBackoffMs,
		cfg.Notion.RetryMaxBackoffMs,
		0, -1,
	)

	return catalog.New(catalog.WithRetry(client, retry), cfg.Notion)
}

// loadData reads the catalog from a YAML fixture when path is set,
// otherwise from Notion.
func loadData(ctx context.Context, fixturePath string) (*catalog.Data, error) {
	if fixturePath != "" {
		return catalog.LoadFixture(fixturePath)
	}
	if err := cfg.Validate("catalog"); err != nil {
		return nil, err
	}
	return buildCatalog().Fetch(ctx)
}

// buildEngine loads the scoring policy and constructs the engine around
// it.
func buildEngine() (*scoring.Engine, *scoring.WeightsHolder, error) {
	pol, err := policy.Load(cfg.Policy.Path)
	if err != nil {
		return nil, nil, err
	}
	holder := scoring.NewWeightsHolder(pol.Weights)
	return scoring.NewEngine(holder, pol.Risk), holder, nil
}
