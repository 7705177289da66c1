package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Expected property layouts for the three catalog databases. Seeding
// refuses to write into databases that do not match.
var (
	vendorsSchema = map[string]notionapi.PropertyConfigType{
		"Name":              notionapi.PropertyConfigTypeTitle,
		"Region":            notionapi.PropertyConfigTypeSelect,
		"Reliability Score": notionapi.PropertyConfigTypeNumber,
		"Contact Email":     notionapi.PropertyConfigTypeEmail,
		"Last Verified":     notionapi.PropertyConfigTypeDate,
	}

	partsSchema = map[string]notionapi.PropertyConfigType{
		"Component Name":    notionapi.PropertyConfigTypeTitle,
		"Vendor":            notionapi.PropertyConfigTypeRelation,
		"Unit Price":        notionapi.PropertyConfigTypeNumber,
		"Freight Cost":      notionapi.PropertyConfigTypeNumber,
		"Tariff Rate":       notionapi.PropertyConfigTypeNumber,
		"Lead Time (weeks)": notionapi.PropertyConfigTypeNumber,
		"Transit Days":      notionapi.PropertyConfigTypeNumber,
		"Shipping Mode":     notionapi.PropertyConfigTypeSelect,
		"Monthly Capacity":  notionapi.PropertyConfigTypeNumber,
		"Last Verified":     notionapi.PropertyConfigTypeDate,
	}

	scoresSchema = map[string]notionapi.PropertyConfigType{
		"Snapshot":          notionapi.PropertyConfigTypeTitle,
		"Vendor":            notionapi.PropertyConfigTypeRelation,
		"Total Cost Score":  notionapi.PropertyConfigTypeNumber,
		"Total Time Score":  notionapi.PropertyConfigTypeNumber,
		"Reliability Score": notionapi.PropertyConfigTypeNumber,
		"Capacity Score":    notionapi.PropertyConfigTypeNumber,
		"Final Score":       notionapi.PropertyConfigTypeNumber,
		"Weights JSON":      notionapi.PropertyConfigTypeRichText,
		"Inputs JSON":       notionapi.PropertyConfigTypeRichText,
		"Snapshot Date":     notionapi.PropertyConfigTypeDate,
	}
)

// ValidateSchemas checks that each configured database exposes the
// required properties with the required types. All problems across all
// databases are collected into a single ErrSchemaMismatch.
func (c *Catalog) ValidateSchemas(ctx context.Context) error {
	var problems []string

	p, err := c.validateSchema(ctx, "vendors", c.vendorsDB, vendorsSchema)
	if err != nil {
		return err
	}
	problems = append(problems, p...)

	p, err = c.validateSchema(ctx, "parts", c.partsDB, partsSchema)
	if err != nil {
		return err
	}
	problems = append(problems, p...)

	if c.scoresDB != "" {
		p, err = c.validateSchema(ctx, "scores", c.scoresDB, scoresSchema)
		if err != nil {
			return err
		}
		problems = append(problems, p...)
	}

	if len(problems) > 0 {
		return eris.Wrap(ErrSchemaMismatch, strings.Join(problems, "; "))
	}
	return nil
}

func (c *Catalog) validateSchema(ctx context.Context, label, dbID string, want map[string]notionapi.PropertyConfigType) ([]string, error) {
	db, err := c.client.GetDatabase(ctx, dbID)
	if err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("catalog: get %s database", label))
	}

	var problems []string
	names := make([]string, 0, len(want))
	for name := range want {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		wantType := want[name]
		cfg, ok := db.Properties[name]
		if !ok {
			problems = append(problems, fmt.Sprintf("%s: missing property %q (%s)", label, name, wantType))
			continue
		}
		got := cfg.GetType()
		if got == wantType {
			continue
		}
		// Legacy databases report rich_text columns as "text".
		if wantType == notionapi.PropertyConfigTypeRichText && got == "text" {
			continue
		}
		problems = append(problems, fmt.Sprintf("%s: property %q has type %s, want %s", label, name, got, wantType))
	}

	if len(problems) == 0 {
		zap.L().Debug("catalog: schema valid",
			zap.String("database", label),
			zap.Int("properties", len(want)),
		)
	}
	return problems, nil
}
