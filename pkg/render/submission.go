package render

import (
	"fmt"
	"sort"
	"strings"
)

// Hidden input names posted back by modal forms.
const (
	SessionFieldName = "_session"
	VersionFieldName = "version"
)

// HiddenField is a hidden input emitted alongside the visible controls.
type HiddenField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Hidden returns a HiddenField for an arbitrary name/value pair.
func Hidden(name string, value any) HiddenField {
	return HiddenField{Name: strings.TrimSpace(name), Value: fmt.Sprint(value)}
}

// SessionField carries the modal session identifier.
func SessionField(id string) HiddenField {
	return Hidden(SessionFieldName, id)
}

// VersionField carries the optimistic concurrency version. An unsaved entity
// has no version and yields an unnamed field, which HiddenFields drops.
func VersionField(version int64) HiddenField {
	if version <= 0 {
		return HiddenField{}
	}
	return Hidden(VersionFieldName, version)
}

// HiddenFields drops unnamed fields, keeps the last value of a repeated name
// and sorts by name so markup is stable.
func HiddenFields(fields ...HiddenField) []HiddenField {
	byName := make(map[string]string, len(fields))
	for _, field := range fields {
		if name := strings.TrimSpace(field.Name); name != "" {
			byName[name] = field.Value
		}
	}
	if len(byName) == 0 {
		return nil
	}
	out := make([]HiddenField, 0, len(byName))
	for name, value := range byName {
		out = append(out, HiddenField{Name: name, Value: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
