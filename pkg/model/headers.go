package model

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Header maps a field key to its display label.
type Header struct {
	Key   string `json:"key" yaml:"key"`
	Label string `json:"label" yaml:"label"`
}

// Headers is an ordered key to label mapping. Order is display order.
type Headers []Header

// Clone returns a copy of h.
func (h Headers) Clone() Headers {
	if h == nil {
		return nil
	}
	return append(Headers(nil), h...)
}

// Keys returns the header keys in order.
func (h Headers) Keys() []string {
	keys := make([]string, len(h))
	for i, header := range h {
		keys[i] = header.Key
	}
	return keys
}

// Label returns the label for key.
func (h Headers) Label(key string) (string, bool) {
	for _, header := range h {
		if header.Key == key {
			return header.Label, true
		}
	}
	return "", false
}

// UnmarshalYAML accepts either a mapping (document order is kept) or a
// sequence of {key, label} entries.
func (h *Headers) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.MappingNode:
		out := make(Headers, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			var key, label string
			if err := node.Content[i].Decode(&key); err != nil {
				return fmt.Errorf("model: decode header key: %w", err)
			}
			if err := node.Content[i+1].Decode(&label); err != nil {
				return fmt.Errorf("model: decode header %q label: %w", key, err)
			}
			out = append(out, Header{Key: key, Label: label})
		}
		*h = out
		return nil
	case yaml.SequenceNode:
		var list []Header
		if err := node.Decode(&list); err != nil {
			return fmt.Errorf("model: decode headers: %w", err)
		}
		*h = list
		return nil
	default:
		return fmt.Errorf("model: headers must be a mapping or a sequence (line %d)", node.Line)
	}
}

// UnmarshalJSON accepts either an object (member order is kept) or an array of
// {key, label} entries.
func (h *Headers) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*h = nil
		return nil
	}
	if trimmed[0] == '[' {
		var list []Header
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return fmt.Errorf("model: decode headers: %w", err)
		}
		*h = list
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("model: decode headers: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("model: headers must be an object or an array")
	}
	var out Headers
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("model: decode header key: %w", err)
		}
		key, _ := keyTok.(string)
		var label string
		if err := dec.Decode(&label); err != nil {
			return fmt.Errorf("model: decode header %q label: %w", key, err)
		}
		out = append(out, Header{Key: key, Label: label})
	}
	*h = out
	return nil
}
