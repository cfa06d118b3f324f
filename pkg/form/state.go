// Package form holds the per-modal form state: current values, the snapshot
// taken when the modal opened, the touched set and validation errors.
//
// A field is dirty once touched. Setting it back to its original value does
// not clear the flag; only Reset does.
package form

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-gridform/pkg/adminerr"
	"github.com/goliatone/go-gridform/pkg/columns"
	"github.com/goliatone/go-gridform/pkg/model"
	"github.com/goliatone/go-gridform/pkg/render"
)

// VersionKey is the entity field carrying the optimistic concurrency version.
const VersionKey = "version"

// State is owned by a single modal or page and is not safe for concurrent use.
type State struct {
	schema    model.Schema
	values    map[string]string
	initial   map[string]string
	touched   map[string]bool
	errors    map[string]string
	formErrs  []string
	version   int64
	submitted bool
}

// New seeds a state from initial values. Keys not declared by the schema are
// ignored. Missing keys start as "".
func New(schema model.Schema, initial map[string]any) *State {
	s := &State{
		schema:  schema,
		values:  make(map[string]string, len(schema.Fields)),
		initial: make(map[string]string, len(schema.Fields)),
		touched: make(map[string]bool),
		errors:  make(map[string]string),
	}
	for _, field := range schema.Fields {
		value := encodeValue(field, initial[field.Key])
		s.values[field.Key] = value
		s.initial[field.Key] = value
	}
	if raw, ok := initial[VersionKey]; ok {
		s.version = parseVersion(raw)
	}
	return s
}

// FromEntity seeds a state from a typed entity using its JSON representation.
func FromEntity[T any](schema model.Schema, entity T) (*State, error) {
	encoded, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("form: encode entity: %w", err)
	}
	values := map[string]any{}
	if err := json.Unmarshal(encoded, &values); err != nil {
		return nil, fmt.Errorf("form: entity must encode as a JSON object: %w", err)
	}
	return New(schema, values), nil
}

// Decode converts the current payload into T.
func Decode[T any](s *State) (T, error) {
	var out T
	encoded, err := json.Marshal(s.Payload())
	if err != nil {
		return out, fmt.Errorf("form: encode payload: %w", err)
	}
	if err := json.Unmarshal(encoded, &out); err != nil {
		return out, fmt.Errorf("form: decode payload: %w", err)
	}
	return out, nil
}

// Schema returns the schema the state was built for.
func (s *State) Schema() model.Schema { return s.schema }

// Version returns the optimistic concurrency version read at seed time.
func (s *State) Version() int64 { return s.version }

// Get returns the current value of key.
func (s *State) Get(key string) string { return s.values[key] }

// Initial returns the snapshot value of key.
func (s *State) Initial(key string) string { return s.initial[key] }

// Set stores a control payload and marks the field touched. Unknown or
// disabled fields are ignored and Set reports false.
func (s *State) Set(key, value string) bool {
	field, ok := s.schema.Field(key)
	if !ok || field.Disabled {
		return false
	}
	s.values[key] = value
	s.touched[key] = true
	if s.submitted {
		s.validateField(field)
	}
	return true
}

// Dirty reports whether key was touched since the last seed or reset.
func (s *State) Dirty(key string) bool { return s.touched[key] }

// AnyDirty reports whether any field was touched.
func (s *State) AnyDirty() bool { return len(s.touched) > 0 }

// DirtyKeys returns the touched keys in schema order.
func (s *State) DirtyKeys() []string {
	var keys []string
	for _, field := range s.schema.Fields {
		if s.touched[field.Key] {
			keys = append(keys, field.Key)
		}
	}
	return keys
}

// Changed reports whether key currently differs from its snapshot. Unlike
// Dirty it tracks the value itself.
func (s *State) Changed(key string) bool { return s.values[key] != s.initial[key] }

// Reset restores every field to its snapshot and clears touched flags and
// errors.
func (s *State) Reset() {
	for key, value := range s.initial {
		s.values[key] = value
	}
	s.touched = make(map[string]bool)
	s.errors = make(map[string]string)
	s.formErrs = nil
	s.submitted = false
}

// Rebase takes the current values as the new snapshot, for example after a
// successful save.
func (s *State) Rebase(version int64) {
	for key, value := range s.values {
		s.initial[key] = value
	}
	s.version = version
	s.touched = make(map[string]bool)
	s.errors = make(map[string]string)
	s.formErrs = nil
	s.submitted = false
}

// Validate runs every field rule and returns the errors keyed by field.
func (s *State) Validate() map[string]string {
	s.errors = make(map[string]string)
	for _, field := range s.schema.Fields {
		s.validateField(field)
	}
	return s.Errors()
}

// SubmitAttempt validates the whole form and reports whether it may be sent.
// After the first attempt, edits revalidate the field they touch.
func (s *State) SubmitAttempt() bool {
	s.submitted = true
	return len(s.Validate()) == 0
}

// Submitted reports whether a submit was attempted.
func (s *State) Submitted() bool { return s.submitted }

// Error returns the message for key.
func (s *State) Error(key string) string { return s.errors[key] }

// Errors returns a copy of the field errors.
func (s *State) Errors() map[string]string {
	out := make(map[string]string, len(s.errors))
	for key, msg := range s.errors {
		out[key] = msg
	}
	return out
}

// FormErrors returns messages not tied to a field.
func (s *State) FormErrors() []string { return append([]string(nil), s.formErrs...) }

// ApplyError merges a backend error into the state. Field messages whose path
// resolves to a known key attach to the field; the rest become form-level
// messages.
func (s *State) ApplyError(err error) {
	typed, ok := adminerr.As(err)
	if !ok {
		s.formErrs = append(s.formErrs, adminerr.UserMessage(err))
		return
	}
	if typed.Field != "" {
		if _, known := s.schema.Field(typed.Field); known {
			s.errors[typed.Field] = typed.Message
			return
		}
	}
	mapped := render.MapErrorPayload(s.schema, typed.Fields)
	for key, messages := range mapped.Fields {
		s.errors[key] = messages[0]
	}
	s.formErrs = render.AppendUnique(s.formErrs, mapped.Form...)
	attached := len(mapped.Fields) > 0
	if !attached && typed.Message != "" {
		s.formErrs = render.AppendUnique(s.formErrs, typed.Message)
	}
}

// Values returns a copy of the raw control values.
func (s *State) Values() map[string]string {
	out := make(map[string]string, len(s.values))
	for key, value := range s.values {
		out[key] = value
	}
	return out
}

// Payload converts values into a request body. Number fields become JSON
// numbers, empty optional values become null, and the version is included
// when known. Sensitive fields only ever hold the masked display value and are
// never sent back.
func (s *State) Payload() map[string]any {
	out := make(map[string]any, len(s.values)+1)
	for _, field := range s.schema.Fields {
		if field.Sensitive {
			continue
		}
		raw := strings.TrimSpace(s.values[field.Key])
		switch {
		case raw == "":
			out[field.Key] = nil
		case field.Kind == model.KindNumber:
			if number, ok := NumberLiteral(raw); ok {
				out[field.Key] = number
			} else {
				out[field.Key] = raw
			}
		default:
			out[field.Key] = s.values[field.Key]
		}
	}
	if s.version > 0 {
		out[VersionKey] = s.version
	}
	return out
}

// ChangedPayload returns only the touched fields plus the version.
func (s *State) ChangedPayload() map[string]any {
	full := s.Payload()
	out := make(map[string]any, len(s.touched)+1)
	for key := range s.touched {
		if value, ok := full[key]; ok {
			out[key] = value
		}
	}
	if v, ok := full[VersionKey]; ok {
		out[VersionKey] = v
	}
	return out
}

func (s *State) validateField(field model.FieldMetadata) {
	if err := ValidateField(field, s.values[field.Key]); err != nil {
		s.errors[field.Key] = err.Message
		return
	}
	delete(s.errors, field.Key)
}

func encodeValue(field model.FieldMetadata, value any) string {
	if field.Kind == model.KindYesNo {
		switch v := value.(type) {
		case bool:
			return YesNo(v)
		case string:
			if parsed, ok := ParseYesNo(v); ok {
				return YesNo(parsed)
			}
			return v
		}
	}
	if field.Kind == model.KindDate {
		if s, ok := value.(string); ok && len(s) > len(DateLayout) && s[len(DateLayout)] == 'T' {
			return s[:len(DateLayout)]
		}
	}
	return columns.FormatValue(value)
}

func parseVersion(raw any) int64 {
	switch v := raw.(type) {
	case float64:
		return int64(v)
	case int:
		return int64(v)
	case int64:
		return v
	case json.Number:
		n, _ := v.Int64()
		return n
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	default:
		return 0
	}
}
