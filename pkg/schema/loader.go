// Package schema loads entity field metadata from JSON or YAML documents and
// from OpenAPI component schemas.
package schema

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-gridform/pkg/model"
)

// Store holds the loaded schemas keyed by entity name.
type Store struct {
	schemas map[string]model.Schema
}

// NewStore builds a store from already constructed schemas.
func NewStore(schemas ...model.Schema) (*Store, error) {
	store := &Store{schemas: make(map[string]model.Schema, len(schemas))}
	for _, s := range schemas {
		if err := store.add(s, "memory"); err != nil {
			return nil, err
		}
	}
	return store, nil
}

// LoadFS walks fsys and parses every JSON/YAML schema file. A nil fsys yields
// an empty store.
func LoadFS(fsys fs.FS) (*Store, error) {
	store := &Store{schemas: make(map[string]model.Schema)}
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isSchemaFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("schema: read %s: %w", path, err)
		}
		parsed, err := Parse(data, path)
		if err != nil {
			return err
		}
		return store.add(parsed, path)
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Parse decodes one schema document. JSON is tried first, then YAML.
func Parse(data []byte, source string) (model.Schema, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return model.Schema{}, fmt.Errorf("schema: file %s is empty", source)
	}

	var doc documentFile
	if err := json.Unmarshal(data, &doc); err != nil {
		doc = documentFile{}
		if yerr := yaml.Unmarshal(data, &doc); yerr != nil {
			return model.Schema{}, fmt.Errorf("schema: parse %s: invalid JSON or YAML: %w", source, yerr)
		}
	}
	return normalise(doc, source)
}

// Schema returns the schema for entity.
func (s *Store) Schema(entity string) (model.Schema, bool) {
	if s == nil {
		return model.Schema{}, false
	}
	schema, ok := s.schemas[entity]
	return schema, ok
}

// Entities returns the loaded entity names, sorted.
func (s *Store) Entities() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.schemas))
	for name := range s.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Empty reports whether the store holds any schema.
func (s *Store) Empty() bool {
	return s == nil || len(s.schemas) == 0
}

func (s *Store) add(schema model.Schema, source string) error {
	if err := schema.Validate(); err != nil {
		return fmt.Errorf("schema: %s: %w", source, err)
	}
	if _, exists := s.schemas[schema.Entity]; exists {
		return fmt.Errorf("schema: duplicate entity %q (file %s)", schema.Entity, source)
	}
	s.schemas[schema.Entity] = schema
	return nil
}

type documentFile struct {
	Entity   string        `json:"entity" yaml:"entity"`
	Title    string        `json:"title" yaml:"title"`
	Resource string        `json:"resource" yaml:"resource"`
	IDField  string        `json:"idField" yaml:"idField"`
	Icon     string        `json:"icon" yaml:"icon"`
	Columns  model.Headers `json:"columns" yaml:"columns"`
	Fields   []fieldFile   `json:"fields" yaml:"fields"`
}

type fieldFile struct {
	Key        string         `json:"key" yaml:"key"`
	Label      string         `json:"label" yaml:"label"`
	Kind       string         `json:"kind" yaml:"kind"`
	Options    []model.Option `json:"options" yaml:"options"`
	Disabled   bool           `json:"disabled" yaml:"disabled"`
	Required   bool           `json:"required" yaml:"required"`
	Rule       string         `json:"rule" yaml:"rule"`
	Sensitive  bool           `json:"sensitive" yaml:"sensitive"`
	Filterable bool           `json:"filterable" yaml:"filterable"`
	Sortable   bool           `json:"sortable" yaml:"sortable"`
	Hidden     bool           `json:"hidden" yaml:"hidden"`
	Help       string         `json:"help" yaml:"help"`
}

func normalise(doc documentFile, source string) (model.Schema, error) {
	entity := strings.TrimSpace(doc.Entity)
	if entity == "" {
		base := filepath.Base(source)
		entity = strings.TrimSuffix(base, filepath.Ext(base))
	}
	out := model.Schema{
		Entity:   entity,
		Title:    strings.TrimSpace(doc.Title),
		Resource: strings.Trim(strings.TrimSpace(doc.Resource), "/"),
		IDField:  strings.TrimSpace(doc.IDField),
		Icon:     SanitizeIcon(doc.Icon),
		Columns:  doc.Columns.Clone(),
		Fields:   make([]model.FieldMetadata, 0, len(doc.Fields)),
	}
	if out.Resource == "" {
		out.Resource = entity
	}

	for idx, raw := range doc.Fields {
		kind, err := model.ParseKind(raw.Kind)
		if err != nil {
			return model.Schema{}, fmt.Errorf("schema: %s field %d (%s): %w", source, idx, raw.Key, err)
		}
		label := strings.TrimSpace(raw.Label)
		if label == "" {
			label = raw.Key
		}
		out.Fields = append(out.Fields, model.FieldMetadata{
			Key:        strings.TrimSpace(raw.Key),
			Label:      label,
			Kind:       kind,
			Options:    append([]model.Option(nil), raw.Options...),
			Disabled:   raw.Disabled,
			Required:   raw.Required,
			Rule:       model.Rule(strings.ToLower(strings.TrimSpace(raw.Rule))),
			Sensitive:  raw.Sensitive,
			Filterable: raw.Filterable,
			Sortable:   raw.Sortable,
			Hidden:     raw.Hidden,
			Help:       SanitizeText(raw.Help),
		})
	}
	return out, nil
}

func isSchemaFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
