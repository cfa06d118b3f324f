package schema

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-gridform/pkg/model"
)

// OpenAPI extension keys read from component schemas and their properties.
const (
	ExtEntity     = "x-gridform-entity"
	ExtTitle      = "x-gridform-title"
	ExtResource   = "x-gridform-resource"
	ExtKind       = "x-gridform-kind"
	ExtLabel      = "x-gridform-label"
	ExtOrder      = "x-gridform-order"
	ExtFilterable = "x-gridform-filterable"
	ExtSortable   = "x-gridform-sortable"
	ExtSensitive  = "x-gridform-sensitive"
	ExtHidden     = "x-gridform-hidden"
	ExtEnumLabels = "x-gridform-enum-labels"
)

// longTextThreshold is the maxLength above which strings render as textareas.
const longTextThreshold = 200

// FromOpenAPI derives schemas from the component schemas of an OpenAPI
// document that carry ExtEntity. Property order follows ExtOrder, then name.
func FromOpenAPI(ctx context.Context, data []byte) ([]model.Schema, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("schema: openapi document is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("schema: load openapi document: %w", err)
	}
	if doc.Components == nil || len(doc.Components.Schemas) == 0 {
		return nil, nil
	}

	names := make([]string, 0, len(doc.Components.Schemas))
	for name := range doc.Components.Schemas {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []model.Schema
	for _, name := range names {
		ref := doc.Components.Schemas[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		entity := extString(ref.Value.Extensions, ExtEntity)
		if entity == "" {
			continue
		}
		converted, err := convertComponent(entity, ref.Value)
		if err != nil {
			return nil, fmt.Errorf("schema: component %q: %w", name, err)
		}
		out = append(out, converted)
	}
	return out, nil
}

func convertComponent(entity string, src *openapi3.Schema) (model.Schema, error) {
	out := model.Schema{
		Entity:   entity,
		Title:    firstNonEmpty(extString(src.Extensions, ExtTitle), src.Title),
		Resource: firstNonEmpty(extString(src.Extensions, ExtResource), entity),
	}

	required := make(map[string]bool, len(src.Required))
	for _, key := range src.Required {
		required[key] = true
	}

	type ordered struct {
		name  string
		order int
		prop  *openapi3.Schema
	}
	props := make([]ordered, 0, len(src.Properties))
	for name, ref := range src.Properties {
		if ref == nil || ref.Value == nil {
			continue
		}
		order, ok := extInt(ref.Value.Extensions, ExtOrder)
		if !ok {
			order = 1 << 20
		}
		props = append(props, ordered{name: name, order: order, prop: ref.Value})
	}
	sort.SliceStable(props, func(i, j int) bool {
		if props[i].order != props[j].order {
			return props[i].order < props[j].order
		}
		return props[i].name < props[j].name
	})

	for _, p := range props {
		field, err := convertProperty(p.name, p.prop, required[p.name])
		if err != nil {
			return model.Schema{}, err
		}
		out.Fields = append(out.Fields, field)
	}
	return out, out.Validate()
}

func convertProperty(name string, prop *openapi3.Schema, required bool) (model.FieldMetadata, error) {
	field := model.FieldMetadata{
		Key:        name,
		Label:      firstNonEmpty(extString(prop.Extensions, ExtLabel), prop.Title, name),
		Required:   required,
		Disabled:   prop.ReadOnly,
		Filterable: extBool(prop.Extensions, ExtFilterable),
		Sortable:   extBool(prop.Extensions, ExtSortable),
		Sensitive:  extBool(prop.Extensions, ExtSensitive),
		Hidden:     extBool(prop.Extensions, ExtHidden),
		Help:       SanitizeText(prop.Description),
	}

	if raw := extString(prop.Extensions, ExtKind); raw != "" {
		kind, err := model.ParseKind(raw)
		if err != nil {
			return model.FieldMetadata{}, fmt.Errorf("property %q: %w", name, err)
		}
		field.Kind = kind
	} else {
		field.Kind = inferKind(prop)
	}

	switch prop.Format {
	case "email":
		field.Rule = model.RuleEmail
	case "phone", "tel":
		field.Rule = model.RulePhone
	}

	if field.Kind == model.KindMultiChoice && len(prop.Enum) > 0 {
		labels := extStringMap(prop.Extensions, ExtEnumLabels)
		for _, value := range prop.Enum {
			text := fmt.Sprint(value)
			label := labels[text]
			if label == "" {
				label = text
			}
			field.Options = append(field.Options, model.Option{Value: text, Label: label})
		}
	}
	return field, nil
}

// inferKind maps OpenAPI types onto control kinds when no explicit kind is
// declared.
func inferKind(prop *openapi3.Schema) model.FieldKind {
	switch {
	case prop.Type != nil && (prop.Type.Is("integer") || prop.Type.Is("number")):
		return model.KindNumber
	case prop.Format == "date" || prop.Format == "date-time":
		return model.KindDate
	case len(prop.Enum) > 0:
		return model.KindMultiChoice
	case prop.MaxLength != nil && *prop.MaxLength > longTextThreshold:
		return model.KindLongText
	default:
		return model.KindText
	}
}

func extRaw(ext map[string]any, key string) any {
	if len(ext) == 0 {
		return nil
	}
	value, ok := ext[key]
	if !ok {
		return nil
	}
	if raw, isRaw := value.(json.RawMessage); isRaw {
		var decoded any
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return nil
		}
		return decoded
	}
	return value
}

func extString(ext map[string]any, key string) string {
	if s, ok := extRaw(ext, key).(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func extBool(ext map[string]any, key string) bool {
	switch v := extRaw(ext, key).(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	default:
		return false
	}
}

func extInt(ext map[string]any, key string) (int, bool) {
	switch v := extRaw(ext, key).(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	case string:
		n, err := strconv.Atoi(v)
		return n, err == nil
	default:
		return 0, false
	}
}

func extStringMap(ext map[string]any, key string) map[string]string {
	raw, ok := extRaw(ext, key).(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		out[k] = fmt.Sprint(v)
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
