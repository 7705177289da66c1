// Package catalog is the Notion-backed vendor catalog: it loads vendor
// and part records, validates database schemas, writes score snapshots,
// and seeds demo data. All reads tolerate malformed pages by skipping
// them with a warning so one bad record never sinks a scoring run.
package catalog

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/pdesskyterra/vendor-tracking-app/internal/config"
	"github.com/pdesskyterra/vendor-tracking-app/internal/model"
	"github.com/pdesskyterra/vendor-tracking-app/pkg/notion"
)

// Catalog reads and writes the three Notion databases behind the
// product: Vendors, Parts, and Vendor Scores.
type Catalog struct {
	client notion.Client

	vendorsDB string
	partsDB   string
	scoresDB  string
}

// New builds a Catalog over the given client and database IDs.
func New(client notion.Client, cfg config.NotionConfig) *Catalog {
	return &Catalog{
		client:    client,
		vendorsDB: cfg.VendorsDB,
		partsDB:   cfg.PartsDB,
		scoresDB:  cfg.ScoresDB,
	}
}

// Data is one consistent read of the catalog, shaped for the scoring
// engine's input.
type Data struct {
	Vendors       []model.Vendor
	PartsByVendor map[string][]model.Part
}

// Fetch loads vendors and parts concurrently and groups parts by vendor.
func (c *Catalog) Fetch(ctx context.Context) (*Data, error) {
	var (
		vendors []model.Vendor
		parts   []model.Part
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		vendors, err = c.Vendors(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		parts, err = c.Parts(gCtx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Data{
		Vendors:       vendors,
		PartsByVendor: GroupParts(parts),
	}, nil
}
