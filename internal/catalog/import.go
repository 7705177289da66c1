package catalog

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/pdesskyterra/vendor-tracking-app/internal/model"
)

// ImportResult reports what a CSV import created and skipped.
type ImportResult struct {
	Created int
	Skipped int
}

// ImportPartsCSV reads part quotes from a CSV file and creates one
// Parts page per unique (vendor, component) pair. Headers are matched
// loosely: "Component Name", "component_name", and similar variants all
// resolve to the same column. Malformed rows are skipped with a
// warning; page-creation failures abort the import.
func (c *Catalog) ImportPartsCSV(ctx context.Context, csvPath string) (*ImportResult, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("catalog: open csv %s", csvPath))
	}
	defer f.Close() //nolint:errcheck

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "catalog: read csv")
	}

	result := &ImportResult{}
	if len(records) < 2 {
		return result, nil // header only or empty
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = normalizeHeader(h)
	}

	seen := make(map[string]struct{})
	for _, row := range records[1:] {
		if err := ctx.Err(); err != nil {
			return result, eris.Wrap(err, "catalog: import csv cancelled")
		}

		part, err := partFromRow(headers, row)
		if err != nil {
			zap.L().Warn("catalog: skipping malformed csv row", zap.Error(err))
			result.Skipped++
			continue
		}

		key := part.VendorID + "|" + part.ComponentName
		if _, dup := seen[key]; dup {
			result.Skipped++
			continue
		}
		seen[key] = struct{}{}

		req := &notionapi.PageCreateRequest{
			Parent: notionapi.Parent{
				Type:       notionapi.ParentTypeDatabaseID,
				DatabaseID: notionapi.DatabaseID(c.partsDB),
			},
			Properties: partProperties(part),
		}
		if _, err := c.client.CreatePage(ctx, req); err != nil {
			return result, eris.Wrap(err, "catalog: create part from csv row")
		}
		result.Created++
	}

	zap.L().Info("catalog: parts imported",
		zap.String("file", csvPath),
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

// normalizeHeader lowercases a header and strips everything but
// letters and digits, so "Lead Time (weeks)" == "lead_time_weeks".
func normalizeHeader(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(h)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func partFromRow(headers []string, row []string) (model.Part, error) {
	cell := func(name string) string {
		for i, h := range headers {
			if h == name && i < len(row) {
				return strings.TrimSpace(row[i])
			}
		}
		return ""
	}

	part := model.Part{
		ComponentName: cell("componentname"),
		VendorID:      cell("vendorid"),
		Notes:         cell("notes"),
		ShippingMode:  model.ParseShippingMode(cell("shippingmode")),
	}
	if part.ComponentName == "" {
		return part, eris.New("missing component_name")
	}
	if part.VendorID == "" {
		return part, eris.New("missing vendor_id")
	}

	var err error
	if part.UnitPrice, err = parseFloatCell(cell("unitprice"), "unit_price"); err != nil {
		return part, err
	}
	if part.FreightCost, err = parseFloatCell(cell("freightcost"), "freight_cost"); err != nil {
		return part, err
	}
	if part.TariffRate, err = parseFloatCell(cell("tariffrate"), "tariff_rate"); err != nil {
		return part, err
	}
	if part.LeadTimeWeeks, err = parseIntCell(cell("leadtimeweeks"), "lead_time_weeks"); err != nil {
		return part, err
	}
	if part.TransitDays, err = parseIntCell(cell("transitdays"), "transit_days"); err != nil {
		return part, err
	}
	if part.MonthlyCapacity, err = parseIntCell(cell("monthlycapacity"), "monthly_capacity"); err != nil {
		return part, err
	}

	if s := cell("lastverified"); s != "" {
		t, err := parseDateCell(s)
		if err != nil {
			return part, err
		}
		part.LastVerified = t
	}

	return part, nil
}

func parseFloatCell(s, name string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, eris.Errorf("bad %s %q", name, s)
	}
	return v, nil
}

func parseIntCell(s, name string) (int, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, eris.Errorf("bad %s %q", name, s)
	}
	return v, nil
}

func parseDateCell(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, eris.Errorf("bad last_verified %q", s)
	}
	return t, nil
}
