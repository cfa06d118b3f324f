package model

import (
	"fmt"
	"strings"
)

// FieldKind is the explicit discriminator deciding which control renders a
// field.
type FieldKind string

const (
	KindText        FieldKind = "text"
	KindLongText    FieldKind = "longtext"
	KindNumber      FieldKind = "number"
	KindDate        FieldKind = "date"
	KindYesNo       FieldKind = "yesno"
	KindMultiChoice FieldKind = "multichoice"
)

var knownKinds = map[FieldKind]struct{}{
	KindText:        {},
	KindLongText:    {},
	KindNumber:      {},
	KindDate:        {},
	KindYesNo:       {},
	KindMultiChoice: {},
}

// ParseKind normalises raw into a FieldKind. An empty value yields KindText.
func ParseKind(raw string) (FieldKind, error) {
	kind := FieldKind(strings.ToLower(strings.TrimSpace(raw)))
	if kind == "" {
		return KindText, nil
	}
	if _, ok := knownKinds[kind]; !ok {
		return "", fmt.Errorf("model: unknown field kind %q", raw)
	}
	return kind, nil
}

// Valid reports whether k is one of the declared kinds.
func (k FieldKind) Valid() bool {
	_, ok := knownKinds[k]
	return ok
}

// Rule names a pattern-based validation applied on top of the required check.
type Rule string

const (
	RuleNone  Rule = ""
	RuleEmail Rule = "email"
	RulePhone Rule = "phone"
)

// Placeholder values used by multi-choice controls.
const (
	UnsetLabel = "미정"
	YesLabel   = "예"
	NoLabel    = "아니오"
	YesValue   = "Y"
	NoValue    = "N"
)

// Option is a single value/label pair for multi-choice fields.
type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// FieldMetadata describes one data field of an entity.
type FieldMetadata struct {
	Key        string    `json:"key" yaml:"key"`
	Label      string    `json:"label" yaml:"label"`
	Kind       FieldKind `json:"kind" yaml:"kind"`
	Options    []Option  `json:"options,omitempty" yaml:"options,omitempty"`
	Disabled   bool      `json:"disabled,omitempty" yaml:"disabled,omitempty"`
	Required   bool      `json:"required,omitempty" yaml:"required,omitempty"`
	Rule       Rule      `json:"rule,omitempty" yaml:"rule,omitempty"`
	Sensitive  bool      `json:"sensitive,omitempty" yaml:"sensitive,omitempty"`
	Filterable bool      `json:"filterable,omitempty" yaml:"filterable,omitempty"`
	Sortable   bool      `json:"sortable,omitempty" yaml:"sortable,omitempty"`
	Hidden     bool      `json:"hidden,omitempty" yaml:"hidden,omitempty"`
	Help       string    `json:"help,omitempty" yaml:"help,omitempty"`
}

// ControlOptions returns the options a select control should list. Yes/no
// fields always map to the fixed Y/N pair. Multi-choice fields with no options
// get a single placeholder so the select never renders without children.
func (f FieldMetadata) ControlOptions() []Option {
	switch f.Kind {
	case KindYesNo:
		return []Option{
			{Value: YesValue, Label: YesLabel},
			{Value: NoValue, Label: NoLabel},
		}
	case KindMultiChoice:
		if len(f.Options) == 0 {
			return []Option{{Value: "", Label: UnsetLabel}}
		}
		return append([]Option(nil), f.Options...)
	default:
		return nil
	}
}

// OptionLabel resolves the display label for value, falling back to value.
func (f FieldMetadata) OptionLabel(value string) string {
	for _, opt := range f.ControlOptions() {
		if opt.Value == value {
			return opt.Label
		}
	}
	return value
}

// Schema groups the field metadata of one entity type.
type Schema struct {
	Entity   string          `json:"entity" yaml:"entity"`
	Title    string          `json:"title" yaml:"title"`
	Resource string          `json:"resource" yaml:"resource"`
	IDField  string          `json:"idField,omitempty" yaml:"idField,omitempty"`
	Fields   []FieldMetadata `json:"fields" yaml:"fields"`
	Columns  Headers         `json:"columns,omitempty" yaml:"columns,omitempty"`
	Icon     string          `json:"icon,omitempty" yaml:"icon,omitempty"`
}

// Field looks up metadata by key.
func (s Schema) Field(key string) (FieldMetadata, bool) {
	for _, field := range s.Fields {
		if field.Key == key {
			return field, true
		}
	}
	return FieldMetadata{}, false
}

// Keys returns the field keys in declaration order.
func (s Schema) Keys() []string {
	keys := make([]string, 0, len(s.Fields))
	for _, field := range s.Fields {
		keys = append(keys, field.Key)
	}
	return keys
}

// FilterKeys returns the keys of filterable fields.
func (s Schema) FilterKeys() []string {
	var keys []string
	for _, field := range s.Fields {
		if field.Filterable {
			keys = append(keys, field.Key)
		}
	}
	return keys
}

// HeaderMapping returns the explicit column headers when declared, otherwise
// one header per visible field.
func (s Schema) HeaderMapping() Headers {
	if len(s.Columns) > 0 {
		return s.Columns.Clone()
	}
	headers := make(Headers, 0, len(s.Fields))
	for _, field := range s.Fields {
		if field.Hidden {
			continue
		}
		headers = append(headers, Header{Key: field.Key, Label: field.Label})
	}
	return headers
}

// RowIDField is the key used to identify rows, "id" by default.
func (s Schema) RowIDField() string {
	if strings.TrimSpace(s.IDField) == "" {
		return "id"
	}
	return s.IDField
}

// Validate checks the schema for internal consistency.
func (s Schema) Validate() error {
	if strings.TrimSpace(s.Entity) == "" {
		return fmt.Errorf("model: schema entity is required")
	}
	seen := make(map[string]struct{}, len(s.Fields))
	for idx, field := range s.Fields {
		if strings.TrimSpace(field.Key) == "" {
			return fmt.Errorf("model: schema %q field %d has no key", s.Entity, idx)
		}
		if _, dup := seen[field.Key]; dup {
			return fmt.Errorf("model: schema %q declares field %q twice", s.Entity, field.Key)
		}
		seen[field.Key] = struct{}{}
		if !field.Kind.Valid() {
			return fmt.Errorf("model: schema %q field %q has unknown kind %q", s.Entity, field.Key, field.Kind)
		}
		switch field.Rule {
		case RuleNone, RuleEmail, RulePhone:
		default:
			return fmt.Errorf("model: schema %q field %q has unknown rule %q", s.Entity, field.Key, field.Rule)
		}
	}
	return nil
}
