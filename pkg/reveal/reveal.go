// Package reveal implements the masked/revealed/re-masked cycle of sensitive
// field values. The unmasked value is fetched at most once per control.
package reveal

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-gridform/pkg/adminerr"
	"github.com/goliatone/go-gridform/pkg/appctx"
)

// State is the display state of a Control.
type State string

const (
	StateMasked   State = "masked"
	StateRevealed State = "revealed"
	StateRemasked State = "remasked"
)

// DefaultMask is shown when the backend supplied no masked value.
const DefaultMask = "********"

// Messages surfaced as notifications.
const (
	MsgNoUserContext = "사용자 정보가 없어 조회할 수 없습니다"
)

// ErrNoUserContext is returned when a reveal is attempted without a signed-in
// user.
var ErrNoUserContext = adminerr.NewPrecondition(adminerr.CodeNoUserContext, MsgNoUserContext)

// Fetcher loads the unmasked value of one field of one record.
type Fetcher interface {
	Reveal(ctx context.Context, user appctx.User, recordID, field string) (string, error)
}

// FetcherFunc adapts a function into a Fetcher.
type FetcherFunc func(ctx context.Context, user appctx.User, recordID, field string) (string, error)

// Reveal calls fn.
func (fn FetcherFunc) Reveal(ctx context.Context, user appctx.User, recordID, field string) (string, error) {
	return fn(ctx, user, recordID, field)
}

// Control is the reveal adornment of one sensitive value.
type Control struct {
	mu       sync.Mutex
	recordID string
	field    string
	masked   string
	revealed string
	fetched  bool
	state    State
	fetcher  Fetcher
	logger   *zap.Logger
}

// New returns a control in StateMasked.
func New(recordID, field, masked string, fetcher Fetcher, logger *zap.Logger) *Control {
	if strings.TrimSpace(masked) == "" {
		masked = DefaultMask
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Control{
		recordID: recordID,
		field:    field,
		masked:   masked,
		state:    StateMasked,
		fetcher:  fetcher,
		logger:   logger,
	}
}

// RecordID returns the record the control belongs to.
func (c *Control) RecordID() string { return c.recordID }

// Field returns the field key.
func (c *Control) Field() string { return c.field }

// State returns the current display state.
func (c *Control) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Display returns the text to show for the current state.
func (c *Control) Display() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case StateRevealed:
		return c.revealed
	case StateRemasked:
		return Redact(c.revealed)
	default:
		return c.masked
	}
}

// Toggle advances the cycle. From masked it fetches the value once; from
// revealed it re-masks; from re-masked it reveals the cached value again.
//
// Without a user in app the toggle is refused: a warning is queued on the
// app notifier and ErrNoUserContext is returned. A fetch failure leaves the
// state unchanged and queues an error notification.
func (c *Control) Toggle(ctx context.Context, app *appctx.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateRevealed:
		c.state = StateRemasked
		return nil
	case StateRemasked:
		c.state = StateRevealed
		return nil
	}

	if c.fetched {
		c.state = StateRevealed
		return nil
	}

	var user appctx.User
	ok := false
	if app != nil {
		user, ok = app.User()
	}
	if !ok {
		if app != nil {
			app.Notifier().Warn(MsgNoUserContext)
		}
		c.logger.Warn("reveal refused without user context",
			zap.String("record", c.recordID),
			zap.String("field", c.field),
		)
		return ErrNoUserContext
	}
	if c.fetcher == nil {
		return adminerr.NewPrecondition(adminerr.CodeInvalidRequest, "reveal: no fetcher configured")
	}

	value, err := c.fetcher.Reveal(ctx, user, c.recordID, c.field)
	if err != nil {
		app.Notifier().Error(adminerr.UserMessage(err))
		c.logger.Error("reveal fetch failed",
			zap.String("record", c.recordID),
			zap.String("field", c.field),
			zap.Error(err),
		)
		return err
	}
	c.revealed = value
	c.fetched = true
	c.state = StateRevealed
	return nil
}

// Redact keeps the first three and last two runes of value and replaces the
// rest with '*'. Values of five runes or fewer keep only their first rune.
func Redact(value string) string {
	runes := []rune(value)
	n := len(runes)
	switch {
	case n == 0:
		return ""
	case n <= 5:
		return string(runes[:1]) + strings.Repeat("*", n-1)
	default:
		return string(runes[:3]) + strings.Repeat("*", n-5) + string(runes[n-2:])
	}
}
