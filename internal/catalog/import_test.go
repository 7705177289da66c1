package catalog

import (
	"context"
	"testing"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const partsCSV = `Component Name,Vendor ID,Unit Price,Freight Cost,Tariff Rate,Lead Time (weeks),Transit Days,Shipping Mode,Monthly Capacity,Notes
Li-ion cell 18650,v1,3.20,0.20,0.025,4,18,Ocean,40000,
STM32 MCU,v1,4.50,0.30,0,3,3,Air,60000,Preferred MCU
Li-ion cell 18650,v1,3.10,0.20,0.025,4,18,Ocean,40000,duplicate row
`

func TestImportPartsCSV_CreatesPages(t *testing.T) {
	mc := new(mockNotionClient)
	ctx := context.Background()

	var reqs []*notionapi.PageCreateRequest
	mc.On("CreatePage", ctx, mock.AnythingOfType("*notionapi.PageCreateRequest")).
		Run(func(args mock.Arguments) {
			reqs = append(reqs, args.Get(1).(*notionapi.PageCreateRequest))
		}).
		Return(&notionapi.Page{ID: "part-page"}, nil).Times(2)

	res, err := testCatalog(mc).ImportPartsCSV(ctx, writeFixture(t, "parts.csv", partsCSV))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created)
	assert.Equal(t, 1, res.Skipped) // duplicate (vendor, component) pair

	require.Len(t, reqs, 2)
	assert.Equal(t, notionapi.DatabaseID("db-parts"), reqs[0].Parent.DatabaseID)

	title, ok := reqs[0].Properties["Component Name"].(notionapi.TitleProperty)
	require.True(t, ok)
	assert.Equal(t, "Li-ion cell 18650", title.Title[0].Text.Content)

	price, ok := reqs[0].Properties["Unit Price"].(notionapi.NumberProperty)
	require.True(t, ok)
	assert.InDelta(t, 3.20, price.Number, 1e-9)

	notes, ok := reqs[1].Properties["Notes"].(notionapi.RichTextProperty)
	require.True(t, ok)
	assert.Equal(t, "Preferred MCU", notes.RichText[0].Text.Content)

	mc.AssertExpectations(t)
}

func TestImportPartsCSV_SnakeCaseHeaders(t *testing.T) {
	mc := new(mockNotionClient)
	ctx := context.Background()

	csv := "component_name,vendor_id,unit_price,monthly_capacity\nCharging Coil,v2,1.10,15000\n"

	mc.On("CreatePage", ctx, mock.AnythingOfType("*notionapi.PageCreateRequest")).
		Return(&notionapi.Page{ID: "part-page"}, nil).Once()

	res, err := testCatalog(mc).ImportPartsCSV(ctx, writeFixture(t, "parts.csv", csv))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 0, res.Skipped)
	mc.AssertExpectations(t)
}

func TestImportPartsCSV_SkipsMalformedRows(t *testing.T) {
	mc := new(mockNotionClient)
	ctx := context.Background()

	csv := `component_name,vendor_id,unit_price
Good Part,v1,2.50
,v1,3.00
Bad Price,v1,not-a-number
No Vendor,,1.00
`

	mc.On("CreatePage", ctx, mock.AnythingOfType("*notionapi.PageCreateRequest")).
		Return(&notionapi.Page{ID: "part-page"}, nil).Once()

	res, err := testCatalog(mc).ImportPartsCSV(ctx, writeFixture(t, "parts.csv", csv))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 3, res.Skipped)
	mc.AssertExpectations(t)
}

func TestImportPartsCSV_EmptyFile(t *testing.T) {
	mc := new(mockNotionClient)

	res, err := testCatalog(mc).ImportPartsCSV(context.Background(), writeFixture(t, "parts.csv", "component_name,vendor_id\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Created)
	mc.AssertNotCalled(t, "CreatePage", mock.Anything, mock.Anything)
}

func TestImportPartsCSV_CreateErrorAborts(t *testing.T) {
	mc := new(mockNotionClient)
	ctx := context.Background()

	mc.On("CreatePage", ctx, mock.AnythingOfType("*notionapi.PageCreateRequest")).
		Return(nil, assert.AnError).Once()

	res, err := testCatalog(mc).ImportPartsCSV(ctx, writeFixture(t, "parts.csv", partsCSV))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "catalog: create part from csv row")
	assert.Equal(t, 0, res.Created)
	mc.AssertExpectations(t)
}

func TestImportPartsCSV_MissingFile(t *testing.T) {
	mc := new(mockNotionClient)

	_, err := testCatalog(mc).ImportPartsCSV(context.Background(), "/nonexistent/parts.csv")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "catalog: open csv")
}
