package gridform

import (
	"embed"
	"io/fs"

	"github.com/goliatone/go-gridform/pkg/schema"
)

//go:embed schemas/*.yaml
var embeddedSchemas embed.FS

// SchemasFS exposes the built-in entity schemas (members, engineers,
// machine-projects, safety-projects).
func SchemasFS() fs.FS {
	sub, err := fs.Sub(embeddedSchemas, "schemas")
	if err != nil {
		return embeddedSchemas
	}
	return sub
}

// LoadSchemas parses the built-in schemas into a store.
func LoadSchemas() (*schema.Store, error) {
	return schema.LoadFS(SchemasFS())
}
