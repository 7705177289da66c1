package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/pdesskyterra/vendor-tracking-app/internal/model"
)

func makePartPage(id, component, vendorID string, price float64, mode model.ShippingMode) notionapi.Page {
	props := make(notionapi.Properties)

	props["Component Name"] = &notionapi.TitleProperty{
		Type:  notionapi.PropertyTypeTitle,
		Title: []notionapi.RichText{{PlainText: component}},
	}
	if vendorID != "" {
		props["Vendor"] = &notionapi.RelationProperty{
			Type:     notionapi.PropertyTypeRelation,
			Relation: []notionapi.Relation{{ID: notionapi.PageID(vendorID)}},
		}
	}
	props["Unit Price"] = &notionapi.NumberProperty{Type: notionapi.PropertyTypeNumber, Number: price}
	props["Freight Cost"] = &notionapi.NumberProperty{Type: notionapi.PropertyTypeNumber, Number: 0.25}
	props["Tariff Rate"] = &notionapi.NumberProperty{Type: notionapi.PropertyTypeNumber, Number: 0.065}
	props["Lead Time (weeks)"] = &notionapi.NumberProperty{Type: notionapi.PropertyTypeNumber, Number: 4}
	props["Transit Days"] = &notionapi.NumberProperty{Type: notionapi.PropertyTypeNumber, Number: 6}
	props["Shipping Mode"] = &notionapi.SelectProperty{
		Type:   notionapi.PropertyTypeSelect,
		Select: notionapi.Option{Name: string(mode)},
	}
	props["Monthly Capacity"] = &notionapi.NumberProperty{Type: notionapi.PropertyTypeNumber, Number: 25000}

	return notionapi.Page{ID: notionapi.ObjectID(id), Properties: props}
}

func TestParts_Success(t *testing.T) {
	mc := new(mockNotionClient)
	ctx := context.Background()

	mc.On("QueryDatabase", ctx, "db-parts", mock.AnythingOfType("*notionapi.DatabaseQueryRequest")).
		Return(&notionapi.DatabaseQueryResponse{
			Results: []notionapi.Page{
				makePartPage("p1", "Li-ion cell 18650", "v1", 3.20, model.ShipOcean),
				makePartPage("p2", "Heart Rate Sensor", "v2", 7.80, model.ShipAir),
			},
			HasMore: false,
		}, nil).Once()

	parts, err := testCatalog(mc).Parts(ctx)
	assert.NoError(t, err)
	assert.Len(t, parts, 2)

	assert.Equal(t, "p1", parts[0].ID)
	assert.Equal(t, "Li-ion cell 18650", parts[0].ComponentName)
	assert.Equal(t, "v1", parts[0].VendorID)
	assert.InDelta(t, 3.20, parts[0].UnitPrice, 1e-9)
	assert.InDelta(t, 0.25, parts[0].FreightCost, 1e-9)
	assert.InDelta(t, 0.065, parts[0].TariffRate, 1e-9)
	assert.Equal(t, 4, parts[0].LeadTimeWeeks)
	assert.Equal(t, 6, parts[0].TransitDays)
	assert.Equal(t, model.ShipOcean, parts[0].ShippingMode)
	assert.Equal(t, 25000, parts[0].MonthlyCapacity)

	mc.AssertExpectations(t)
}

func TestParts_SkipsPartWithoutVendorRelation(t *testing.T) {
	mc := new(mockNotionClient)
	ctx := context.Background()

	mc.On("QueryDatabase", ctx, "db-parts", mock.AnythingOfType("*notionapi.DatabaseQueryRequest")).
		Return(&notionapi.DatabaseQueryResponse{
			Results: []notionapi.Page{
				makePartPage("p1", "Li-ion cell 18650", "v1", 3.20, model.ShipOcean),
				makePartPage("p2", "Orphan Part", "", 5.00, model.ShipAir),
				makePartPage("p3", "", "v1", 5.00, model.ShipAir), // no title
			},
			HasMore: false,
		}, nil).Once()

	parts, err := testCatalog(mc).Parts(ctx)
	assert.NoError(t, err)
	assert.Len(t, parts, 1)
	assert.Equal(t, "Li-ion cell 18650", parts[0].ComponentName)
	mc.AssertExpectations(t)
}

func TestParts_QueryError(t *testing.T) {
	mc := new(mockNotionClient)
	ctx := context.Background()

	mc.On("QueryDatabase", ctx, "db-parts", mock.AnythingOfType("*notionapi.DatabaseQueryRequest")).
		Return(nil, assert.AnError)

	_, err := testCatalog(mc).Parts(ctx)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "catalog: load parts")
	mc.AssertExpectations(t)
}

func TestVendorParts_FiltersByRelation(t *testing.T) {
	mc := new(mockNotionClient)
	ctx := context.Background()

	mc.On("QueryDatabase", ctx, "db-parts", mock.MatchedBy(func(req *notionapi.DatabaseQueryRequest) bool {
		pf, ok := req.Filter.(notionapi.PropertyFilter)
		return ok && pf.Property == "Vendor" && pf.Relation != nil && pf.Relation.Contains == "v1"
	})).Return(&notionapi.DatabaseQueryResponse{
		Results: []notionapi.Page{
			makePartPage("p1", "Li-ion cell 18650", "v1", 3.20, model.ShipOcean),
		},
		HasMore: false,
	}, nil).Once()

	parts, err := testCatalog(mc).VendorParts(ctx, "v1")
	assert.NoError(t, err)
	assert.Len(t, parts, 1)
	assert.Equal(t, "v1", parts[0].VendorID)
	mc.AssertExpectations(t)
}

func TestParsePartPage_NotesAndLastVerified(t *testing.T) {
	verified := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	d := notionapi.Date(verified)

	p := makePartPage("p1", "Charging Coil", "v1", 1.10, model.ShipGround)
	p.Properties["Notes"] = &notionapi.RichTextProperty{
		Type:     notionapi.PropertyTypeRichText,
		RichText: []notionapi.RichText{{PlainText: "Dual-sourced"}},
	}
	p.Properties["Last Verified"] = &notionapi.DateProperty{
		Type: notionapi.PropertyTypeDate,
		Date: &notionapi.DateObject{Start: &d},
	}

	part, err := parsePartPage(p)
	assert.NoError(t, err)
	assert.Equal(t, "Dual-sourced", part.Notes)
	assert.True(t, part.LastVerified.Equal(verified))
}

func TestGroupParts(t *testing.T) {
	parts := []model.Part{
		{ID: "p1", VendorID: "v1"},
		{ID: "p2", VendorID: "v2"},
		{ID: "p3", VendorID: "v1"},
	}

	grouped := GroupParts(parts)
	assert.Len(t, grouped, 2)
	assert.Len(t, grouped["v1"], 2)
	assert.Len(t, grouped["v2"], 1)
	assert.Equal(t, "p1", grouped["v1"][0].ID)
	assert.Equal(t, "p3", grouped["v1"][1].ID)
}
