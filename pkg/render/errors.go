// Package render holds helpers shared by the HTML and terminal renderers:
// backend error path mapping and hidden submission fields.
package render

import (
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-gridform/pkg/model"
)

// ErrorMapping splits a backend error payload into field-level and form-level
// messages. Either part is nil when empty.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// formLevelPaths address the whole form rather than a field.
var formLevelPaths = map[string]struct{}{
	"": {}, ".": {}, "/": {}, "#": {}, "$": {},
	"form": {}, "base": {}, "__all__": {}, "non_field_errors": {}, "non-field-errors": {},
}

// envelopeSegments wrap the entity in common request bodies and are skipped
// at the start of a path.
var envelopeSegments = map[string]struct{}{
	"body": {}, "request": {}, "payload": {}, "data": {}, "attributes": {},
}

var pointerUnescape = strings.NewReplacer("~1", "/", "~0", "~")

// MapErrorPayload resolves backend error paths such as "/data/email",
// "body.email" or "$.data.items[0].name" onto the field keys of schema. Paths
// that resolve to no field keep their messages at form level.
func MapErrorPayload(schema model.Schema, payload map[string][]string) ErrorMapping {
	var mapping ErrorMapping
	if len(payload) == 0 {
		return mapping
	}
	keys := make(map[string]struct{}, len(schema.Fields))
	for _, field := range schema.Fields {
		keys[field.Key] = struct{}{}
	}

	paths := make([]string, 0, len(payload))
	for path := range payload {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		messages := AppendUnique(nil, payload[path]...)
		if len(messages) == 0 {
			continue
		}
		key, ok := resolvePath(path, keys)
		if !ok {
			mapping.Form = AppendUnique(mapping.Form, messages...)
			continue
		}
		if mapping.Fields == nil {
			mapping.Fields = make(map[string][]string)
		}
		mapping.Fields[key] = AppendUnique(mapping.Fields[key], messages...)
	}
	return mapping
}

// AppendUnique appends the trimmed, non-empty messages not already present.
// Order is kept.
func AppendUnique(existing []string, messages ...string) []string {
	out := existing
	for _, message := range messages {
		message = strings.TrimSpace(message)
		if message == "" || contains(out, message) {
			continue
		}
		out = append(out, message)
	}
	return out
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if strings.TrimSpace(item) == s {
			return true
		}
	}
	return false
}

func resolvePath(raw string, keys map[string]struct{}) (string, bool) {
	if _, ok := formLevelPaths[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return "", false
	}
	leading := true
	for _, segment := range strings.FieldsFunc(raw, isPathSeparator) {
		segment = pointerUnescape.Replace(strings.TrimSpace(segment))
		if segment == "" {
			continue
		}
		if _, err := strconv.Atoi(segment); err == nil {
			continue
		}
		if leading {
			if _, envelope := envelopeSegments[strings.ToLower(segment)]; envelope {
				continue
			}
			leading = false
		}
		if _, ok := keys[segment]; ok {
			return segment, true
		}
	}
	return "", false
}

func isPathSeparator(r rune) bool {
	switch r {
	case '/', '.', '[', ']', '#', '$':
		return true
	}
	return false
}
