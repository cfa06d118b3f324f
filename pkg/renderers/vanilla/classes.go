package vanilla

import (
	"strings"

	"github.com/goliatone/go-gridform/pkg/form"
)

// Classes lists the CSS classes the renderer emits. Themes override them
// through tokens keyed by the names documented on ClassesFromTokens.
type Classes struct {
	Form            string `json:"form"`
	FormErrors      string `json:"formErrors"`
	Field           string `json:"field"`
	Label           string `json:"label"`
	Required        string `json:"required"`
	Error           string `json:"error"`
	Help            string `json:"help"`
	Control         string `json:"control"`
	ControlError    string `json:"controlError"`
	ControlDirty    string `json:"controlDirty"`
	ControlDisabled string `json:"controlDisabled"`
	Placeholder     string `json:"placeholder"`
}

// DefaultClasses returns the classes styled by the bundled stylesheet.
func DefaultClasses() Classes {
	return Classes{
		Form:            "gf-form",
		FormErrors:      "gf-form-errors",
		Field:           "gf-field",
		Label:           "gf-label",
		Required:        "gf-required",
		Error:           "gf-error",
		Help:            "gf-help",
		Control:         "gf-control",
		ControlError:    "gf-control--error",
		ControlDirty:    "gf-control--dirty",
		ControlDisabled: "gf-control--disabled",
		Placeholder:     "gf-placeholder",
	}
}

// ClassesFromTokens overlays theme tokens on the defaults. Tokens are read as
// "class.<name>", for example "class.control.dirty".
func ClassesFromTokens(tokens map[string]string) Classes {
	classes := DefaultClasses()
	if len(tokens) == 0 {
		return classes
	}
	targets := map[string]*string{
		"form":             &classes.Form,
		"form.errors":      &classes.FormErrors,
		"field":            &classes.Field,
		"label":            &classes.Label,
		"required":         &classes.Required,
		"error":            &classes.Error,
		"help":             &classes.Help,
		"control":          &classes.Control,
		"control.error":    &classes.ControlError,
		"control.dirty":    &classes.ControlDirty,
		"control.disabled": &classes.ControlDisabled,
		"placeholder":      &classes.Placeholder,
	}
	for key, target := range targets {
		if value := strings.TrimSpace(tokens["class."+key]); value != "" {
			*target = value
		}
	}
	return classes
}

// ForVisual returns the control classes for one visual state. Only the
// winning state contributes a modifier.
func (c Classes) ForVisual(visual form.Visual) string {
	var modifier string
	switch visual {
	case form.VisualError:
		modifier = c.ControlError
	case form.VisualDirty:
		modifier = c.ControlDirty
	case form.VisualDisabled:
		modifier = c.ControlDisabled
	}
	return joinClasses(c.Control, modifier)
}

func joinClasses(parts ...string) string {
	fields := make([]string, 0, len(parts))
	for _, part := range parts {
		fields = append(fields, strings.Fields(part)...)
	}
	return strings.Join(fields, " ")
}
