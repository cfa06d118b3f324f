package form

import "github.com/goliatone/go-gridform/pkg/model"

// Visual is the style state of a control.
type Visual string

const (
	VisualNormal   Visual = "normal"
	VisualError    Visual = "error"
	VisualDirty    Visual = "dirty"
	VisualDisabled Visual = "disabled"
)

// Flags are the inputs to VisualFor.
type Flags struct {
	Error    bool
	Dirty    bool
	Disabled bool
}

// VisualFor picks one style. Error wins over dirty, dirty over disabled.
func VisualFor(flags Flags) Visual {
	switch {
	case flags.Error:
		return VisualError
	case flags.Dirty:
		return VisualDirty
	case flags.Disabled:
		return VisualDisabled
	default:
		return VisualNormal
	}
}

// Flags returns the style inputs of key.
func (s *State) Flags(key string) Flags {
	field, _ := s.schema.Field(key)
	return Flags{
		Error:    s.errors[key] != "",
		Dirty:    s.touched[key],
		Disabled: field.Disabled,
	}
}

// Visual returns the style state of key.
func (s *State) Visual(key string) Visual {
	return VisualFor(s.Flags(key))
}

// FieldView bundles what a renderer needs for a single control.
type FieldView struct {
	Field  model.FieldMetadata
	Value  string
	Error  string
	Flags  Flags
	Visual Visual
}

// View returns the renderer inputs of key.
func (s *State) View(key string) (FieldView, bool) {
	field, ok := s.schema.Field(key)
	if !ok {
		return FieldView{}, false
	}
	flags := s.Flags(key)
	return FieldView{
		Field:  field,
		Value:  s.values[key],
		Error:  s.errors[key],
		Flags:  flags,
		Visual: VisualFor(flags),
	}, true
}
