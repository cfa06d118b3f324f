// Package modal implements the dialog workflow wrapped around create, edit
// and delete flows. The shell tracks only its own state and a reference to
// the bound form; it holds no form data.
package modal

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// State is the shell lifecycle state.
type State string

const (
	StateClosed            State = "closed"
	StateOpen              State = "open"
	StateConfirmingDiscard State = "confirming_discard"
)

// ErrInvalidTransition is returned when an operation does not apply to the
// current state.
var ErrInvalidTransition = errors.New("modal: invalid transition")

// Dirtier is the part of a form the shell needs.
type Dirtier interface {
	AnyDirty() bool
	Reset()
}

// Action is one action slot. A nil slot is not rendered.
type Action struct {
	Label    string `json:"label"`
	URL      string `json:"url,omitempty"`
	Disabled bool   `json:"disabled,omitempty"`
}

// Slots parameterizes the dialog chrome.
type Slots struct {
	Title     string
	Primary   *Action
	Secondary *Action
	Modify    *Action
	Delete    *Action
}

// ClosePolicy decides what a close request does.
type ClosePolicy int

const (
	// ConfirmIfDirty asks for confirmation when the bound form is dirty.
	ConfirmIfDirty ClosePolicy = iota
	// CloseImmediately closes and resets without asking.
	CloseImmediately
)

// Option configures a Shell.
type Option func(*Shell)

// WithClosePolicy overrides the default ConfirmIfDirty policy.
func WithClosePolicy(policy ClosePolicy) Option {
	return func(s *Shell) { s.policy = policy }
}

// WithLogger sets the logger for transitions.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Shell) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithOnChange registers a callback invoked after every transition.
func WithOnChange(fn func(from, to State)) Option {
	return func(s *Shell) { s.onChange = fn }
}

// Shell is the modal state machine.
type Shell struct {
	mu       sync.Mutex
	state    State
	slots    Slots
	form     Dirtier
	policy   ClosePolicy
	onChange func(from, to State)
	logger   *zap.Logger
}

// New returns a closed shell.
func New(slots Slots, opts ...Option) *Shell {
	s := &Shell{
		state:  StateClosed,
		slots:  slots,
		policy: ConfirmIfDirty,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// State returns the current state.
func (s *Shell) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Slots returns the configured slots.
func (s *Shell) Slots() Slots {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slots
}

// SetSlots replaces the slots, for example to disable the primary action
// while a save is in flight.
func (s *Shell) SetSlots(slots Slots) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots = slots
}

// Open binds form and opens the dialog.
func (s *Shell) Open(form Dirtier) error {
	return s.transition("open", func() (State, error) {
		if s.state != StateClosed {
			return "", s.invalid("open")
		}
		s.form = form
		return StateOpen, nil
	})
}

// RequestClose closes the dialog, or moves to StateConfirmingDiscard when the
// policy asks for confirmation and the form is dirty. It returns the
// resulting state.
func (s *Shell) RequestClose() (State, error) {
	err := s.transition("request_close", func() (State, error) {
		if s.state != StateOpen {
			return "", s.invalid("request_close")
		}
		if s.policy == ConfirmIfDirty && s.form != nil && s.form.AnyDirty() {
			return StateConfirmingDiscard, nil
		}
		if s.form != nil {
			s.form.Reset()
		}
		s.form = nil
		return StateClosed, nil
	})
	return s.State(), err
}

// Discard resets the form to its snapshot and closes.
func (s *Shell) Discard() error {
	return s.transition("discard", func() (State, error) {
		if s.state != StateConfirmingDiscard {
			return "", s.invalid("discard")
		}
		if s.form != nil {
			s.form.Reset()
		}
		s.form = nil
		return StateClosed, nil
	})
}

// Cancel abandons the discard confirmation and returns to the open dialog.
func (s *Shell) Cancel() error {
	return s.transition("cancel", func() (State, error) {
		if s.state != StateConfirmingDiscard {
			return "", s.invalid("cancel")
		}
		return StateOpen, nil
	})
}

// Complete closes the dialog after a successful save or delete without
// touching the form.
func (s *Shell) Complete() error {
	return s.transition("complete", func() (State, error) {
		if s.state == StateClosed {
			return "", s.invalid("complete")
		}
		s.form = nil
		return StateClosed, nil
	})
}

func (s *Shell) transition(op string, fn func() (State, error)) error {
	s.mu.Lock()
	from := s.state
	to, err := fn()
	if err != nil {
		s.mu.Unlock()
		s.logger.Debug("modal transition rejected", zap.String("op", op), zap.String("state", string(from)))
		return err
	}
	s.state = to
	onChange := s.onChange
	s.mu.Unlock()

	s.logger.Debug("modal transition",
		zap.String("op", op),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)
	if onChange != nil {
		onChange(from, to)
	}
	return nil
}

func (s *Shell) invalid(op string) error {
	return fmt.Errorf("%w: %s while %s", ErrInvalidTransition, op, s.state)
}
