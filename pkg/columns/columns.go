// Package columns turns an ordered header mapping into column descriptors a
// table can render. Descriptors know how to extract and format a cell from a
// row.
package columns

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"

	"github.com/goliatone/go-gridform/pkg/model"
)

// CellFunc renders the display value of one cell.
type CellFunc[T any] func(row T) string

// Descriptor is one column definition.
type Descriptor[T any] struct {
	ID       string
	Header   string
	Cell     CellFunc[T]
	Sortable bool
}

// Option customises Build.
type Option[T any] func(*builder[T])

type builder[T any] struct {
	cells    map[string]CellFunc[T]
	sortable map[string]bool
}

// WithCell overrides the renderer of a single column.
func WithCell[T any](key string, fn CellFunc[T]) Option[T] {
	return func(b *builder[T]) {
		if fn != nil {
			b.cells[key] = fn
		}
	}
}

// WithSortable marks the listed columns as sortable.
func WithSortable[T any](keys ...string) Option[T] {
	return func(b *builder[T]) {
		for _, key := range keys {
			b.sortable[key] = true
		}
	}
}

// Build returns one descriptor per header, in header order.
func Build[T any](headers model.Headers, opts ...Option[T]) []Descriptor[T] {
	b := &builder[T]{
		cells:    make(map[string]CellFunc[T]),
		sortable: make(map[string]bool),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}

	out := make([]Descriptor[T], 0, len(headers))
	for _, header := range headers {
		cell, ok := b.cells[header.Key]
		if !ok {
			cell = DefaultCell[T](header.Key)
		}
		out = append(out, Descriptor[T]{
			ID:       header.Key,
			Header:   header.Label,
			Cell:     cell,
			Sortable: b.sortable[header.Key],
		})
	}
	return out
}

// DefaultCell reads key from the row and formats it with FormatValue.
func DefaultCell[T any](key string) CellFunc[T] {
	return func(row T) string {
		value, ok := AsRow(any(row)).Field(key)
		if !ok {
			return ""
		}
		return FormatValue(value)
	}
}

// FormatValue renders objects (maps, slices, structs) as JSON text and
// everything else with its string coercion. nil renders as "". Floats never
// use exponent form, so a decoded id of 1000000 stays "1000000".
func FormatValue(value any) string {
	if value == nil {
		return ""
	}
	if rv := reflect.ValueOf(value); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case json.RawMessage:
		return string(v)
	case fmt.Stringer:
		return v.String()
	}

	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return ""
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		if (rv.Kind() == reflect.Map || rv.Kind() == reflect.Slice) && rv.IsNil() {
			return ""
		}
		encoded, err := json.Marshal(rv.Interface())
		if err != nil {
			return fmt.Sprint(rv.Interface())
		}
		return string(encoded)
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 32)
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64)
	default:
		return fmt.Sprint(rv.Interface())
	}
}
