package vanilla

import (
	"bytes"
	"fmt"
	"html"
	"slices"
	"strings"

	"github.com/goliatone/go-gridform/pkg/form"
	"github.com/goliatone/go-gridform/pkg/model"
	"github.com/goliatone/go-gridform/pkg/render/template"
	"github.com/goliatone/go-gridform/pkg/renderers/vanilla/components"
	"github.com/goliatone/go-gridform/pkg/reveal"
)

// Reveal toggle labels.
const (
	RevealShowLabel = "보기"
	RevealHideLabel = "숨기기"
)

const defaultTextareaRows = 4

// Binding carries the per-request URLs a field control posts to.
type Binding struct {
	// ChangeURL receives the control value on change. Empty disables live
	// updates.
	ChangeURL string
	Reveal    *RevealView
}

// RevealView is the render input of a sensitive value.
type RevealView struct {
	State   reveal.State
	Display string
	URL     string
}

// RevealViewFrom snapshots ctrl for rendering. url is the toggle endpoint.
func RevealViewFrom(ctrl *reveal.Control, url string) *RevealView {
	if ctrl == nil {
		return nil
	}
	return &RevealView{State: ctrl.State(), Display: ctrl.Display(), URL: url}
}

type componentRenderer struct {
	templates template.TemplateRenderer
	registry  *components.Registry
	overrides map[string]string
	classes   Classes
	partials  map[string]string

	usedComponents map[string]struct{}
}

func newComponentRenderer(templates template.TemplateRenderer, registry *components.Registry, overrides map[string]string, classes Classes, partials map[string]string) *componentRenderer {
	if registry == nil {
		registry = components.NewDefaultRegistry()
	}
	return &componentRenderer{
		templates:      templates,
		registry:       registry,
		overrides:      cloneStringMap(overrides),
		classes:        classes,
		partials:       cloneStringMap(partials),
		usedComponents: make(map[string]struct{}),
	}
}

// render returns the field chrome wrapping the control of view.
func (r *componentRenderer) render(view form.FieldView, binding Binding) (string, error) {
	control, name, err := r.renderControl(view, binding)
	if err != nil {
		return "", err
	}
	return r.decorate(view, name, control), nil
}

func (r *componentRenderer) renderControl(view form.FieldView, binding Binding) (string, string, error) {
	field := view.Field
	name := r.componentName(field)
	descriptor, ok := r.registry.Descriptor(name)
	if !ok {
		return "", name, fmt.Errorf("component %q not registered for field %q", name, field.Key)
	}

	control := r.buildControl(view, binding)
	var buf bytes.Buffer
	if err := descriptor.Renderer(&buf, control, components.ComponentData{
		Template:      r.templates,
		ThemePartials: r.partials,
	}); err != nil {
		return "", name, fmt.Errorf("render field %q: %w", field.Key, err)
	}
	r.usedComponents[name] = struct{}{}
	return buf.String(), name, nil
}

func (r *componentRenderer) componentName(field model.FieldMetadata) string {
	if override := strings.TrimSpace(r.overrides[field.Key]); override != "" {
		return override
	}
	if field.Sensitive {
		return components.NameReveal
	}
	switch field.Kind {
	case model.KindLongText:
		return components.NameLongText
	case model.KindNumber:
		return components.NameNumber
	case model.KindDate:
		return components.NameDate
	case model.KindYesNo:
		return components.NameYesNo
	case model.KindMultiChoice:
		return components.NameMultiChoice
	default:
		return components.NameText
	}
}

func (r *componentRenderer) buildControl(view form.FieldView, binding Binding) components.Control {
	field := view.Field
	id := controlID(field.Key)
	control := components.Control{
		ID:        id,
		Name:      field.Key,
		Value:     view.Value,
		Field:     field,
		Error:     view.Error,
		Visual:    string(view.Visual),
		Class:     r.classes.ForVisual(view.Visual),
		ChangeURL: binding.ChangeURL,
	}
	if field.Disabled {
		control.ChangeURL = ""
	}

	var describedBy []string
	if view.Error != "" {
		describedBy = append(describedBy, id+"-error")
	}
	if field.Help != "" {
		describedBy = append(describedBy, id+"-help")
	}
	control.DescribedBy = strings.Join(describedBy, " ")

	switch {
	case field.Sensitive:
		control.Reveal = revealControl(view, binding.Reveal)
	case field.Kind == model.KindLongText:
		control.Rows = defaultTextareaRows
	case field.Kind == model.KindYesNo, field.Kind == model.KindMultiChoice:
		control.Options, control.Placeholder = selectOptions(field, view.Value)
		if control.Placeholder {
			control.Class = joinClasses(control.Class, r.classes.Placeholder)
		}
	}
	return control
}

// selectOptions lists the options of a yes/no or multi-choice control. An
// empty yes/no value selects a hidden blank option. Multi-choice controls
// always lead with the muted placeholder, and a stored value missing from
// the options is kept as an extra entry so it survives a round trip.
func selectOptions(field model.FieldMetadata, value string) ([]components.Option, bool) {
	var options []components.Option
	if field.Kind == model.KindYesNo {
		if value == "" {
			options = append(options, components.Option{Selected: true, Hidden: true})
		}
		for _, opt := range field.ControlOptions() {
			options = append(options, components.Option{Value: opt.Value, Label: opt.Label, Selected: opt.Value == value && value != ""})
		}
		return options, false
	}

	options = append(options, components.Option{Label: model.UnsetLabel, Placeholder: true, Selected: value == ""})
	matched := value == ""
	for _, opt := range field.Options {
		selected := value != "" && opt.Value == value
		matched = matched || selected
		options = append(options, components.Option{Value: opt.Value, Label: opt.Label, Selected: selected})
	}
	if !matched {
		options = append(options, components.Option{Value: value, Label: value, Selected: true})
	}
	return options, value == ""
}

func revealControl(view form.FieldView, rv *RevealView) *components.Reveal {
	if rv == nil {
		display := view.Value
		if display == "" {
			display = reveal.DefaultMask
		}
		return &components.Reveal{State: string(reveal.StateMasked), Display: display, ToggleLabel: RevealShowLabel}
	}
	label := RevealShowLabel
	if rv.State == reveal.StateRevealed {
		label = RevealHideLabel
	}
	return &components.Reveal{
		State:       string(rv.State),
		Display:     rv.Display,
		URL:         rv.URL,
		ToggleLabel: label,
	}
}

func (r *componentRenderer) decorate(view form.FieldView, componentName, control string) string {
	field := view.Field
	id := controlID(field.Key)

	var b strings.Builder
	b.WriteString(`<div class="`)
	b.WriteString(html.EscapeString(joinClasses(r.classes.Field, r.classes.Field+"--"+string(view.Visual))))
	b.WriteString(`" data-field="`)
	b.WriteString(html.EscapeString(field.Key))
	b.WriteString(`" data-component="`)
	b.WriteString(html.EscapeString(componentName))
	b.WriteString(`" data-visual="`)
	b.WriteString(html.EscapeString(string(view.Visual)))
	b.WriteString("\">\n")

	b.WriteString(`  <label class="`)
	b.WriteString(html.EscapeString(r.classes.Label))
	b.WriteString(`" for="`)
	b.WriteString(html.EscapeString(id))
	b.WriteString(`">`)
	b.WriteString(html.EscapeString(labelFor(field)))
	if field.Required {
		b.WriteString(`<sup class="`)
		b.WriteString(html.EscapeString(r.classes.Required))
		b.WriteString(`" aria-hidden="true">*</sup>`)
	}
	b.WriteString("</label>\n  ")
	b.WriteString(control)
	b.WriteString("\n")

	if view.Error != "" {
		b.WriteString(`  <p id="`)
		b.WriteString(html.EscapeString(id + "-error"))
		b.WriteString(`" class="`)
		b.WriteString(html.EscapeString(r.classes.Error))
		b.WriteString(`" role="alert">`)
		b.WriteString(html.EscapeString(view.Error))
		b.WriteString("</p>\n")
	}
	if field.Help != "" {
		b.WriteString(`  <small id="`)
		b.WriteString(html.EscapeString(id + "-help"))
		b.WriteString(`" class="`)
		b.WriteString(html.EscapeString(r.classes.Help))
		b.WriteString(`">`)
		b.WriteString(html.EscapeString(field.Help))
		b.WriteString("</small>\n")
	}
	b.WriteString("</div>")
	return b.String()
}

func (r *componentRenderer) used() []string {
	names := make([]string, 0, len(r.usedComponents))
	for name := range r.usedComponents {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func controlID(key string) string {
	return "gf-" + key
}

func labelFor(field model.FieldMetadata) string {
	if strings.TrimSpace(field.Label) != "" {
		return field.Label
	}
	return field.Key
}

func cloneStringMap(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}
