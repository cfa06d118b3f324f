// Package model defines the static field metadata that drives columns, form
// state, and input rendering. Every field declares an explicit Kind; nothing
// is inferred from a field's name. Schemas are immutable after load and are
// shared by all requests.
package model
