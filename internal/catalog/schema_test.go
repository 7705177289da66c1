package catalog

import (
	"context"
	"testing"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"

	"github.com/pdesskyterra/vendor-tracking-app/internal/config"
)

func propertyConfig(typ notionapi.PropertyConfigType) notionapi.PropertyConfig {
	switch typ {
	case notionapi.PropertyConfigTypeTitle:
		return notionapi.TitlePropertyConfig{Type: typ}
	case notionapi.PropertyConfigTypeSelect:
		return notionapi.SelectPropertyConfig{Type: typ}
	case notionapi.PropertyConfigTypeNumber:
		return notionapi.NumberPropertyConfig{Type: typ}
	case notionapi.PropertyConfigTypeEmail:
		return notionapi.EmailPropertyConfig{Type: typ}
	case notionapi.PropertyConfigTypeDate:
		return notionapi.DatePropertyConfig{Type: typ}
	case notionapi.PropertyConfigTypeRelation:
		return notionapi.RelationPropertyConfig{Type: typ}
	default:
		return notionapi.RichTextPropertyConfig{Type: typ}
	}
}

// dbFromSchema builds a database whose properties exactly match the
// expected layout, with optional overrides applied on top.
func dbFromSchema(schema map[string]notionapi.PropertyConfigType, overrides map[string]notionapi.PropertyConfig) *notionapi.Database {
	props := make(notionapi.PropertyConfigs, len(schema))
	for name, typ := range schema {
		props[name] = propertyConfig(typ)
	}
	for name, cfg := range overrides {
		if cfg == nil {
			delete(props, name)
			continue
		}
		props[name] = cfg
	}
	return &notionapi.Database{Properties: props}
}

func TestValidateSchemas_Valid(t *testing.T) {
	mc := new(mockNotionClient)
	ctx := context.Background()

	mc.On("GetDatabase", ctx, "db-vendors").Return(dbFromSchema(vendorsSchema, nil), nil).Once()
	mc.On("GetDatabase", ctx, "db-parts").Return(dbFromSchema(partsSchema, nil), nil).Once()
	mc.On("GetDatabase", ctx, "db-scores").Return(dbFromSchema(scoresSchema, nil), nil).Once()

	assert.NoError(t, testCatalog(mc).ValidateSchemas(ctx))
	mc.AssertExpectations(t)
}

func TestValidateSchemas_MissingProperty(t *testing.T) {
	mc := new(mockNotionClient)
	ctx := context.Background()

	mc.On("GetDatabase", ctx, "db-vendors").Return(dbFromSchema(vendorsSchema, nil), nil).Once()
	mc.On("GetDatabase", ctx, "db-parts").Return(dbFromSchema(partsSchema, map[string]notionapi.PropertyConfig{
		"Monthly Capacity": nil,
	}), nil).Once()
	mc.On("GetDatabase", ctx, "db-scores").Return(dbFromSchema(scoresSchema, nil), nil).Once()

	err := testCatalog(mc).ValidateSchemas(ctx)
	assert.ErrorIs(t, err, ErrSchemaMismatch)
	assert.Contains(t, err.Error(), `parts: missing property "Monthly Capacity"`)
	mc.AssertExpectations(t)
}

func TestValidateSchemas_WrongType(t *testing.T) {
	mc := new(mockNotionClient)
	ctx := context.Background()

	mc.On("GetDatabase", ctx, "db-vendors").Return(dbFromSchema(vendorsSchema, nil), nil).Once()
	mc.On("GetDatabase", ctx, "db-parts").Return(dbFromSchema(partsSchema, map[string]notionapi.PropertyConfig{
		"Unit Price": notionapi.SelectPropertyConfig{Type: notionapi.PropertyConfigTypeSelect},
	}), nil).Once()
	mc.On("GetDatabase", ctx, "db-scores").Return(dbFromSchema(scoresSchema, nil), nil).Once()

	err := testCatalog(mc).ValidateSchemas(ctx)
	assert.ErrorIs(t, err, ErrSchemaMismatch)
	assert.Contains(t, err.Error(), `parts: property "Unit Price" has type select, want number`)
	mc.AssertExpectations(t)
}

func TestValidateSchemas_LegacyTextTolerated(t *testing.T) {
	mc := new(mockNotionClient)
	ctx := context.Background()

	// Older databases report rich_text columns with the legacy "text" type.
	mc.On("GetDatabase", ctx, "db-vendors").Return(dbFromSchema(vendorsSchema, nil), nil).Once()
	mc.On("GetDatabase", ctx, "db-parts").Return(dbFromSchema(partsSchema, nil), nil).Once()
	mc.On("GetDatabase", ctx, "db-scores").Return(dbFromSchema(scoresSchema, map[string]notionapi.PropertyConfig{
		"Weights JSON": notionapi.RichTextPropertyConfig{Type: "text"},
	}), nil).Once()

	assert.NoError(t, testCatalog(mc).ValidateSchemas(ctx))
	mc.AssertExpectations(t)
}

func TestValidateSchemas_CollectsAcrossDatabases(t *testing.T) {
	mc := new(mockNotionClient)
	ctx := context.Background()

	mc.On("GetDatabase", ctx, "db-vendors").Return(dbFromSchema(vendorsSchema, map[string]notionapi.PropertyConfig{
		"Region": nil,
	}), nil).Once()
	mc.On("GetDatabase", ctx, "db-parts").Return(dbFromSchema(partsSchema, map[string]notionapi.PropertyConfig{
		"Transit Days": notionapi.RichTextPropertyConfig{Type: notionapi.PropertyConfigTypeRichText},
	}), nil).Once()
	mc.On("GetDatabase", ctx, "db-scores").Return(dbFromSchema(scoresSchema, nil), nil).Once()

	err := testCatalog(mc).ValidateSchemas(ctx)
	assert.ErrorIs(t, err, ErrSchemaMismatch)
	assert.Contains(t, err.Error(), `vendors: missing property "Region"`)
	assert.Contains(t, err.Error(), `parts: property "Transit Days" has type rich_text, want number`)
	mc.AssertExpectations(t)
}

func TestValidateSchemas_GetDatabaseError(t *testing.T) {
	mc := new(mockNotionClient)
	ctx := context.Background()

	mc.On("GetDatabase", ctx, "db-vendors").Return(nil, assert.AnError).Once()

	err := testCatalog(mc).ValidateSchemas(ctx)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "catalog: get vendors database")
	mc.AssertExpectations(t)
}

func TestValidateSchemas_SkipsScoresWhenUnconfigured(t *testing.T) {
	mc := new(mockNotionClient)
	ctx := context.Background()
	cat := New(mc, config.NotionConfig{VendorsDB: "db-vendors", PartsDB: "db-parts"})

	mc.On("GetDatabase", ctx, "db-vendors").Return(dbFromSchema(vendorsSchema, nil), nil).Once()
	mc.On("GetDatabase", ctx, "db-parts").Return(dbFromSchema(partsSchema, nil), nil).Once()

	assert.NoError(t, cat.ValidateSchemas(ctx))
	mc.AssertNumberOfCalls(t, "GetDatabase", 2)
	mc.AssertExpectations(t)
}
