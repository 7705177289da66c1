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

// Vendors loads every vendor record from the Vendors database.
// Malformed pages are skipped with a warning.
func (c *Catalog) Vendors(ctx context.Context) ([]model.Vendor, error) {
	pages, err := notion.QueryAll(ctx, c.client, c.vendorsDB, nil)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: load vendors")
	}

	var vendors []model.Vendor
	for _, p := range pages {
		v, err := parseVendorPage(p)
		if err != nil {
			zap.L().Warn("catalog: skipping malformed vendor page",
				zap.String("page_id", string(p.ID)),
				zap.Error(err),
			)
			continue
		}
		vendors = append(vendors, v)
	}

	return vendors, nil
}

func parseVendorPage(p notionapi.Page) (model.Vendor, error) {
	v := model.Vendor{
		ID:          string(p.ID),
		CreatedTime: p.CreatedTime,
	}

	// Name (title)
	if prop, ok := p.Properties["Name"]; ok {
		if tp, ok := prop.(*notionapi.TitleProperty); ok {
			v.Name = plainText(tp.Title)
		}
	}

	// Region (select)
	if prop, ok := p.Properties["Region"]; ok {
		if sp, ok := prop.(*notionapi.SelectProperty); ok {
			v.Region = model.Region(sp.Select.Name)
		}
	}

	// Reliability Score (number)
	if prop, ok := p.Properties["Reliability Score"]; ok {
		if np, ok := prop.(*notionapi.NumberProperty); ok {
			v.ReliabilityScore = np.Number
		}
	}

	// Contact Email (email)
	if prop, ok := p.Properties["Contact Email"]; ok {
		if ep, ok := prop.(*notionapi.EmailProperty); ok {
			v.ContactEmail = ep.Email
		}
	}

	// Last Verified (date)
	if prop, ok := p.Properties["Last Verified"]; ok {
		if dp, ok := prop.(*notionapi.DateProperty); ok && dp.Date != nil && dp.Date.Start != nil {
			v.LastVerified = time.Time(*dp.Date.Start)
		}
	}

	if v.Name == "" {
		return v, eris.New("missing Name property")
	}

	return v, nil
}

// plainText concatenates the plain_text values from a slice of RichText.
func plainText(rts []notionapi.RichText) string {
	var s string
	for _, rt := range rts {
		s += rt.PlainText
	}
	return s
}
