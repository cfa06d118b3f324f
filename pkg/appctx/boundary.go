package appctx

import (
	"context"

	"go.uber.org/zap"

	"github.com/goliatone/go-gridform/pkg/adminerr"
)

// Boundary runs op and turns a failure into a notification. Precondition
// failures become warnings; everything else is an error toast carrying the
// user-facing message. The error is still returned so callers can branch on it.
func (c *Context) Boundary(ctx context.Context, name string, op func(context.Context) error) error {
	if op == nil {
		return nil
	}
	err := op(ctx)
	if err == nil {
		return nil
	}

	message := adminerr.UserMessage(err)
	if adminerr.IsPrecondition(err) {
		c.notify.Warn(message)
		c.logger.Warn("operation refused", zap.String("op", name), zap.Error(err))
		return err
	}
	c.notify.Error(message)
	c.logger.Error("operation failed", zap.String("op", name), zap.Error(err))
	return err
}
