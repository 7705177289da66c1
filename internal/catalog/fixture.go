package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/pdesskyterra/vendor-tracking-app/internal/model"
)

// Fixture is an offline catalog file: vendors and parts scored without
// touching Notion. Useful for demos and repeatable test runs.
type Fixture struct {
	Vendors []model.Vendor `json:"vendors" yaml:"vendors"`
	Parts   []model.Part   `json:"parts" yaml:"parts"`
}

// LoadFixture reads a fixture file, YAML or JSON by extension, and
// returns it shaped as catalog data.
func LoadFixture(path string) (*Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: read fixture")
	}

	var f Fixture
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &f); err != nil {
			return nil, eris.Wrap(err, "catalog: unmarshal yaml fixture")
		}
	default:
		if err := json.Unmarshal(raw, &f); err != nil {
			return nil, eris.Wrap(err, "catalog: unmarshal json fixture")
		}
	}

	return &Data{
		Vendors:       f.Vendors,
		PartsByVendor: GroupParts(f.Parts),
	}, nil
}
