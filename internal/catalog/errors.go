package catalog

import "github.com/rotisserie/eris"

var (
	// ErrNotFound is returned when a lookup matches no record.
	ErrNotFound = eris.New("catalog: not found")

	// ErrDataExists guards seeding: populated databases are not
	// re-seeded unless the caller forces it.
	ErrDataExists = eris.New("catalog: databases already contain data")

	// ErrSchemaMismatch is returned when a Notion database is missing
	// required properties or carries the wrong property types.
	ErrSchemaMismatch = eris.New("catalog: schema mismatch")
)
