package columns

import (
	"encoding/json"
	"reflect"
	"strings"
	"sync"
)

// Row exposes field values by key. Implementations must not panic for unknown
// keys.
type Row interface {
	Field(key string) (any, bool)
}

// MapRow adapts a decoded JSON object.
type MapRow map[string]any

// Field implements Row.
func (r MapRow) Field(key string) (any, bool) {
	value, ok := r[key]
	return value, ok
}

// StructRow adapts a struct (or pointer to struct) using its json tags, falling
// back to the Go field name.
type StructRow struct {
	Value any
}

// Field implements Row.
func (r StructRow) Field(key string) (any, bool) {
	rv := reflect.ValueOf(r.Value)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, false
	}
	idx, ok := structIndex(rv.Type())[key]
	if !ok {
		return nil, false
	}
	field, err := rv.FieldByIndexErr(idx)
	if err != nil {
		return nil, false
	}
	return field.Interface(), true
}

var structIndexes sync.Map

func structIndex(t reflect.Type) map[string][]int {
	if cached, ok := structIndexes.Load(t); ok {
		return cached.(map[string][]int)
	}
	index := make(map[string][]int)
	for _, field := range reflect.VisibleFields(t) {
		if !field.IsExported() || field.Anonymous {
			continue
		}
		name := field.Name
		if tag, ok := field.Tag.Lookup("json"); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}
		if _, exists := index[name]; !exists {
			index[name] = field.Index
		}
	}
	structIndexes.Store(t, index)
	return index
}

// AsRow converts common row shapes into a Row.
func AsRow(v any) Row {
	switch row := v.(type) {
	case Row:
		return row
	case map[string]any:
		return MapRow(row)
	case json.RawMessage:
		var decoded map[string]any
		if err := json.Unmarshal(row, &decoded); err != nil {
			return MapRow(nil)
		}
		return MapRow(decoded)
	default:
		return StructRow{Value: v}
	}
}
