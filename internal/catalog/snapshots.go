package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/pdesskyterra/vendor-tracking-app/internal/model"
)

// WriteSnapshots creates one page in the Vendor Scores database per
// analysis. Snapshots are append-only: existing pages are never touched.
// Returns the number of pages created; on error the count covers the
// pages written before the failure.
func (c *Catalog) WriteSnapshots(ctx context.Context, analyses []model.VendorAnalysis, takenAt time.Time) (int, error) {
	if c.scoresDB == "" {
		return 0, eris.New("catalog: scores database not configured")
	}

	created := 0
	for _, a := range analyses {
		if err := ctx.Err(); err != nil {
			return created, eris.Wrap(err, "catalog: write snapshots cancelled")
		}

		props, err := snapshotProperties(a, takenAt)
		if err != nil {
			return created, err
		}

		req := &notionapi.PageCreateRequest{
			Parent: notionapi.Parent{
				Type:       notionapi.ParentTypeDatabaseID,
				DatabaseID: notionapi.DatabaseID(c.scoresDB),
			},
			Properties: props,
		}

		if _, err := c.client.CreatePage(ctx, req); err != nil {
			return created, eris.Wrap(err, fmt.Sprintf("catalog: write snapshot for %s", a.Vendor.Name))
		}
		created++
	}

	zap.L().Info("catalog: score snapshots written",
		zap.Int("count", created),
		zap.Time("taken_at", takenAt),
	)
	return created, nil
}

func snapshotProperties(a model.VendorAnalysis, takenAt time.Time) (notionapi.Properties, error) {
	weightsJSON, err := json.Marshal(a.Score.Weights)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: marshal weights")
	}
	inputsJSON, err := json.Marshal(a.Metrics)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: marshal metrics")
	}

	date := notionapi.Date(takenAt)
	title := fmt.Sprintf("%s %s", a.Vendor.Name, takenAt.Format("2006-01-02"))

	return notionapi.Properties{
		"Snapshot": notionapi.TitleProperty{
			Type: notionapi.PropertyTypeTitle,
			Title: []notionapi.RichText{
				{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: title}},
			},
		},
		"Vendor": notionapi.RelationProperty{
			Type: notionapi.PropertyTypeRelation,
			Relation: []notionapi.Relation{
				{ID: notionapi.PageID(a.Vendor.ID)},
			},
		},
		"Total Cost Score":  numberProperty(a.Score.Pillars.TotalCost),
		"Total Time Score":  numberProperty(a.Score.Pillars.TotalTime),
		"Reliability Score": numberProperty(a.Score.Pillars.Reliability),
		"Capacity Score":    numberProperty(a.Score.Pillars.Capacity),
		"Final Score":       numberProperty(a.Score.FinalScore),
		"Weights JSON":      richTextProperty(string(weightsJSON)),
		"Inputs JSON":       richTextProperty(string(inputsJSON)),
		"Snapshot Date": notionapi.DateProperty{
			Type: notionapi.PropertyTypeDate,
			Date: &notionapi.DateObject{Start: &date},
		},
	}, nil
}

func numberProperty(v float64) notionapi.NumberProperty {
	return notionapi.NumberProperty{
		Type:   notionapi.PropertyTypeNumber,
		Number: v,
	}
}

func richTextProperty(s string) notionapi.RichTextProperty {
	return notionapi.RichTextProperty{
		Type: notionapi.PropertyTypeRichText,
		RichText: []notionapi.RichText{
			{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: s}},
		},
	}
}
