// Package tui fills a form state from terminal prompts. Every input goes
// through the same field validation as the web form, and yes/no answers are
// stored as "Y"/"N".
package tui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-gridform/pkg/form"
	"github.com/goliatone/go-gridform/pkg/model"
	"github.com/goliatone/go-gridform/pkg/reveal"
)

// Renderer prompts for the editable fields of a form state.
type Renderer struct {
	driver       PromptDriver
	outputFormat OutputFormat
	theme        Theme
	logger       *zap.Logger
}

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
		theme:        DefaultTheme,
		logger:       zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	switch r.outputFormat {
	case OutputFormatJSON, OutputFormatPrettyText:
	default:
		return nil, fmt.Errorf("tui: unknown output format %q", r.outputFormat)
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	if r.outputFormat == OutputFormatPrettyText {
		return "text/plain"
	}
	return "application/json"
}

// Render fills state and serializes the resulting payload.
func (r *Renderer) Render(ctx context.Context, state *form.State) ([]byte, error) {
	if err := r.Fill(ctx, state); err != nil {
		return nil, err
	}
	if r.outputFormat == OutputFormatPrettyText {
		return []byte(Summary(state)), nil
	}
	return json.Marshal(state.Payload())
}

// Fill prompts for every editable field of state in schema order. Hidden,
// disabled and sensitive fields are skipped. An invalid answer prints the
// validation message and asks again.
func (r *Renderer) Fill(ctx context.Context, state *form.State) error {
	if ctx == nil {
		return errors.New("tui: context is required")
	}
	if state == nil {
		return errors.New("tui: form state is required")
	}
	for _, field := range state.Schema().Fields {
		if !Promptable(field) {
			continue
		}
		if err := r.promptField(ctx, state, field); err != nil {
			return err
		}
	}
	return nil
}

// Promptable reports whether field is asked for.
func Promptable(field model.FieldMetadata) bool {
	return !field.Hidden && !field.Disabled && !field.Sensitive
}

func (r *Renderer) promptField(ctx context.Context, state *form.State, field model.FieldMetadata) error {
	for {
		value, err := r.ask(ctx, field, state.Get(field.Key))
		if err != nil {
			return fmt.Errorf("tui: field %q: %w", field.Key, err)
		}
		if verr := form.ValidateField(field, value); verr != nil {
			r.logger.Debug("rejected answer", zap.String("field", field.Key), zap.String("code", verr.Code))
			if err := r.driver.Notify(ctx, r.theme.ErrorPrefix+displayLabel(field)+": "+verr.Message); err != nil {
				return err
			}
			continue
		}
		if value != state.Get(field.Key) {
			state.Set(field.Key, value)
		}
		return nil
	}
}

// ask poses the question matching the field kind and converts the answer back
// into a control value.
func (r *Renderer) ask(ctx context.Context, field model.FieldMetadata, current string) (string, error) {
	q := Question{Kind: AskLine, Label: displayLabel(field), Help: field.Help, Default: current}
	var options []model.Option

	switch field.Kind {
	case model.KindLongText:
		q.Kind = AskLines
	case model.KindDate:
		if q.Help == "" {
			q.Help = form.DateLayout
		}
	case model.KindYesNo:
		q.Kind = AskYesNo
		yes, _ := form.ParseYesNo(current)
		q.Default = form.YesNo(yes)
	case model.KindMultiChoice:
		q.Kind = AskChoice
		options = choiceOptions(field, current)
		for i, opt := range options {
			q.Choices = append(q.Choices, opt.Label)
			if opt.Value == current {
				q.Selected = i
			}
		}
	}

	ans, err := r.driver.Ask(ctx, q)
	if err != nil {
		return "", err
	}
	switch q.Kind {
	case AskYesNo:
		return form.YesNo(ans.Yes), nil
	case AskChoice:
		if ans.Index < 0 || ans.Index >= len(options) {
			return "", fmt.Errorf("selection %d out of range", ans.Index)
		}
		return options[ans.Index].Value, nil
	default:
		return ans.Text, nil
	}
}

// choiceOptions lists the placeholder first, then the declared options. A
// current value outside the options is appended so the prompt still shows it.
func choiceOptions(field model.FieldMetadata, current string) []model.Option {
	options := []model.Option{{Value: "", Label: model.UnsetLabel}}
	known := current == ""
	for _, opt := range field.Options {
		if opt.Value == "" {
			continue
		}
		options = append(options, opt)
		if opt.Value == current {
			known = true
		}
	}
	if !known {
		options = append(options, model.Option{Value: current, Label: current})
	}
	return options
}

// Summary lists the promptable fields of state as "label: value" lines, with
// choice values shown by label. Sensitive fields are listed too, redacted.
func Summary(state *form.State) string {
	var b bytes.Buffer
	for _, field := range state.Schema().Fields {
		if field.Hidden || (!Promptable(field) && !field.Sensitive) {
			continue
		}
		value := state.Get(field.Key)
		switch {
		case field.Sensitive:
			value = reveal.Redact(value)
		case field.Kind == model.KindYesNo:
			value = field.OptionLabel(value)
		case field.Kind == model.KindMultiChoice:
			if value == "" {
				value = model.UnsetLabel
			} else {
				value = field.OptionLabel(value)
			}
		}
		fmt.Fprintf(&b, "%s: %s\n", displayLabel(field), strings.ReplaceAll(value, "\n", " "))
	}
	return b.String()
}

// RecordSummary renders rec through schema the same way Summary does.
func RecordSummary(schema model.Schema, rec map[string]any) string {
	return Summary(form.New(schema, rec))
}

func displayLabel(field model.FieldMetadata) string {
	if strings.TrimSpace(field.Label) != "" {
		return field.Label
	}
	return field.Key
}
