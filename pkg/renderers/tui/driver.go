package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// QuestionKind selects the terminal control used for a field.
type QuestionKind int

const (
	// AskLine is a single line of text. Numbers and dates use it too.
	AskLine QuestionKind = iota
	// AskLines is a multi-line editor.
	AskLines
	// AskYesNo is a y/N confirmation.
	AskYesNo
	// AskChoice picks one of Choices.
	AskChoice
)

// Question is one prompt.
type Question struct {
	Kind  QuestionKind
	Label string
	Help  string
	// Default is the current text, or "Y"/"N" for AskYesNo.
	Default string
	// Choices holds the labels offered by AskChoice; Selected indexes the
	// preselected one.
	Choices  []string
	Selected int
}

// Answer carries the reply in the field matching the question kind.
type Answer struct {
	Text  string
	Yes   bool
	Index int
}

// PromptDriver asks questions on a terminal, or on a script in tests.
type PromptDriver interface {
	Ask(ctx context.Context, q Question) (Answer, error)
	Notify(ctx context.Context, msg string) error
}

type surveyDriver struct {
	out io.Writer
}

// NewSurveyDriver returns the interactive driver. Notifications go to out, or
// stdout when nil.
func NewSurveyDriver(out io.Writer) PromptDriver {
	if out == nil {
		out = os.Stdout
	}
	return &surveyDriver{out: out}
}

func (d *surveyDriver) Ask(ctx context.Context, q Question) (Answer, error) {
	if err := ctx.Err(); err != nil {
		return Answer{}, err
	}

	var (
		ans Answer
		err error
	)
	switch q.Kind {
	case AskLine:
		err = survey.AskOne(&survey.Input{Message: q.Label, Help: q.Help, Default: q.Default}, &ans.Text)
	case AskLines:
		err = survey.AskOne(&survey.Multiline{Message: q.Label, Help: q.Help, Default: q.Default}, &ans.Text)
	case AskYesNo:
		err = survey.AskOne(&survey.Confirm{Message: q.Label, Help: q.Help, Default: q.Default == "Y"}, &ans.Yes)
	case AskChoice:
		if len(q.Choices) == 0 {
			return Answer{}, fmt.Errorf("tui: %q has no choices", q.Label)
		}
		prompt := &survey.Select{Message: q.Label, Help: q.Help, Options: q.Choices}
		if q.Selected >= 0 && q.Selected < len(q.Choices) {
			prompt.Default = q.Choices[q.Selected]
		}
		// An int target receives the index, so repeated labels stay apart.
		err = survey.AskOne(prompt, &ans.Index)
	default:
		return Answer{}, fmt.Errorf("tui: unknown question kind %d", q.Kind)
	}
	if errors.Is(err, terminal.InterruptErr) {
		return Answer{}, ErrAborted
	}
	return ans, err
}

func (d *surveyDriver) Notify(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(d.out, msg)
	return err
}
