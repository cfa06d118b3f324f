package components

import (
	"bytes"
	"fmt"
	"strings"
)

const templatePrefix = "templates/components/"

// HTMXScript is the htmx build the reveal adornment depends on.
const HTMXScript = "https://unpkg.com/htmx.org@1.9.12"

// builtins lists the bundled components. Yes/no and multi-choice share the
// select template; they differ only in the options they are given.
var builtins = []struct {
	name     string
	partial  string
	template string
	scripts  []Script
}{
	{NameText, PartialText, "text.tmpl", nil},
	{NameLongText, PartialLongText, "longtext.tmpl", nil},
	{NameNumber, PartialNumber, "number.tmpl", nil},
	{NameDate, PartialDate, "date.tmpl", nil},
	{NameYesNo, PartialYesNo, "select.tmpl", nil},
	{NameMultiChoice, PartialMultiChoice, "select.tmpl", nil},
	{NameReveal, PartialReveal, "reveal.tmpl", []Script{{Src: HTMXScript, Defer: true}}},
}

// NewDefaultRegistry returns a registry with one component per field kind
// plus the reveal adornment.
func NewDefaultRegistry() *Registry {
	registry := New()
	for _, b := range builtins {
		registry.MustRegister(b.name, Descriptor{
			Renderer: partialRenderer(b.partial, templatePrefix+b.template),
			Scripts:  b.scripts,
		})
	}
	return registry
}

// partialRenderer renders fallback unless the theme maps partialKey to
// another template.
func partialRenderer(partialKey, fallback string) Renderer {
	return func(buf *bytes.Buffer, control Control, data ComponentData) error {
		if data.Template == nil {
			return fmt.Errorf("components: no template engine for %q", control.Field.Key)
		}
		name := fallback
		if override := strings.TrimSpace(data.ThemePartials[partialKey]); override != "" {
			name = override
		}
		rendered, err := data.Template.RenderTemplate(name, map[string]any{
			"control": control,
			"config":  data.Config,
		})
		if err != nil {
			return fmt.Errorf("components: render %q: %w", name, err)
		}
		buf.WriteString(strings.TrimSpace(rendered))
		return nil
	}
}
