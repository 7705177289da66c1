package catalog

import (
	"context"
	"time"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/pdesskyterra/vendor-tracking-app/internal/model"
	"github.com/pdesskyterra/vendor-tracking-app/pkg/notion"
)

// Parts loads every part record from the Parts database. Malformed
// pages, including parts with no vendor relation, are skipped with a
// warning.
func (c *Catalog) Parts(ctx context.Context) ([]model.Part, error) {
	pages, err := notion.QueryAll(ctx, c.client, c.partsDB, nil)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: load parts")
	}

	var parts []model.Part
	for _, p := range pages {
		part, err := parsePartPage(p)
		if err != nil {
			zap.L().Warn("catalog: skipping malformed part page",
				zap.String("page_id", string(p.ID)),
				zap.Error(err),
			)
			continue
		}
		parts = append(parts, part)
	}

	return parts, nil
}

// VendorParts loads the parts belonging to a single vendor, using a
// relation filter so only that vendor's pages come back.
func (c *Catalog) VendorParts(ctx context.Context, vendorID string) ([]model.Part, error) {
	filter := &notionapi.DatabaseQueryRequest{
		Filter: notionapi.PropertyFilter{
			Property: "Vendor",
			Relation: &notionapi.RelationFilterCondition{
				Contains: vendorID,
			},
		},
	}

	pages, err := notion.QueryAll(ctx, c.client, c.partsDB, filter)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: load vendor parts")
	}

	var parts []model.Part
	for _, p := range pages {
		part, err := parsePartPage(p)
		if err != nil {
			zap.L().Warn("catalog: skipping malformed part page",
				zap.String("page_id", string(p.ID)),
				zap.Error(err),
			)
			continue
		}
		parts = append(parts, part)
	}

	return parts, nil
}

// GroupParts buckets parts by their owning vendor ID.
func GroupParts(parts []model.Part) map[string][]model.Part {
	grouped := make(map[string][]model.Part)
	for _, p := range parts {
		grouped[p.VendorID] = append(grouped[p.VendorID], p)
	}
	return grouped
}

func parsePartPage(p notionapi.Page) (model.Part, error) {
	part := model.Part{
		ID: string(p.ID),
	}

	// Component Name (title)
	if prop, ok := p.Properties["Component Name"]; ok {
		if tp, ok := prop.(*notionapi.TitleProperty); ok {
			part.ComponentName = plainText(tp.Title)
		}
	}

	// Vendor (relation)
	if prop, ok := p.Properties["Vendor"]; ok {
		if rp, ok := prop.(*notionapi.RelationProperty); ok && len(rp.Relation) > 0 {
			part.VendorID = string(rp.Relation[0].ID)
		}
	}

	// Unit Price (number)
	if prop, ok := p.Properties["Unit Price"]; ok {
		if np, ok := prop.(*notionapi.NumberProperty); ok {
			part.UnitPrice = np.Number
		}
	}

	// Freight Cost (number)
	if prop, ok := p.Properties["Freight Cost"]; ok {
		if np, ok := prop.(*notionapi.NumberProperty); ok {
			part.FreightCost = np.Number
		}
	}

	// Tariff Rate (number, decimal fraction)
	if prop, ok := p.Properties["Tariff Rate"]; ok {
		if np, ok := prop.(*notionapi.NumberProperty); ok {
			part.TariffRate = np.Number
		}
	}

	// Lead Time (weeks) (number)
	if prop, ok := p.Properties["Lead Time (weeks)"]; ok {
		if np, ok := prop.(*notionapi.NumberProperty); ok {
			part.LeadTimeWeeks = int(np.Number)
		}
	}

	// Transit Days (number)
	if prop, ok := p.Properties["Transit Days"]; ok {
		if np, ok := prop.(*notionapi.NumberProperty); ok {
			part.TransitDays = int(np.Number)
		}
	}

	// Shipping Mode (select)
	if prop, ok := p.Properties["Shipping Mode"]; ok {
		if sp, ok := prop.(*notionapi.SelectProperty); ok {
			part.ShippingMode = model.ParseShippingMode(sp.Select.Name)
		}
	}

	// Monthly Capacity (number)
	if prop, ok := p.Properties["Monthly Capacity"]; ok {
		if np, ok := prop.(*notionapi.NumberProperty); ok {
			part.MonthlyCapacity = int(np.Number)
		}
	}

	// Notes (rich_text)
	if prop, ok := p.Properties["Notes"]; ok {
		if rtp, ok := prop.(*notionapi.RichTextProperty); ok {
			part.Notes = plainText(rtp.RichText)
		}
	}

	// Last Verified (date)
	if prop, ok := p.Properties["Last Verified"]; ok {
		if dp, ok := prop.(*notionapi.DateProperty); ok && dp.Date != nil && dp.Date.Start != nil {
			part.LastVerified = time.Time(*dp.Date.Start)
		}
	}

	if part.ComponentName == "" {
		return part, eris.New("missing Component Name property")
	}
	if part.VendorID == "" {
		return part, eris.New("missing Vendor relation")
	}

	return part, nil
}
