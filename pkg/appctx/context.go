// Package appctx carries the explicit application context: the signed-in
// user, the auth token, per-section tab selection and transient notifications.
// Components receive it as a value; nothing here is a process-wide singleton.
package appctx

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// User is the signed-in account.
type User struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email,omitempty"`
	Roles []string `json:"roles,omitempty"`
}

// Context is the application state shared by the admin views.
type Context struct {
	mu     sync.RWMutex
	user   *User
	token  string
	tabs   map[string]string
	notify *Notifier
	logger *zap.Logger
}

// New returns an empty context with its own notifier.
func New(logger *zap.Logger) *Context {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Context{
		tabs:   make(map[string]string),
		notify: NewNotifier(),
		logger: logger,
	}
}

// Logger returns the context logger.
func (c *Context) Logger() *zap.Logger { return c.logger }

// Notifier returns the notification sink.
func (c *Context) Notifier() *Notifier { return c.notify }

// User returns a copy of the current user.
func (c *Context) User() (User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil || strings.TrimSpace(c.user.ID) == "" {
		return User{}, false
	}
	out := *c.user
	out.Roles = append([]string(nil), c.user.Roles...)
	return out, true
}

// HasUser reports whether a user is signed in.
func (c *Context) HasUser() bool {
	_, ok := c.User()
	return ok
}

// Token returns the bearer token.
func (c *Context) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SignIn stores the user and token.
func (c *Context) SignIn(user User, token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	u := user
	u.Roles = append([]string(nil), user.Roles...)
	c.user = &u
	c.token = strings.TrimSpace(token)
}

// SignOut clears the user and token.
func (c *Context) SignOut() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = nil
	c.token = ""
}

// Tab returns the selected tab of section.
func (c *Context) Tab(section string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tabs[section]
}

// SetTab records the selected tab of section. An empty tab clears it.
func (c *Context) SetTab(section, tab string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if strings.TrimSpace(tab) == "" {
		delete(c.tabs, section)
		return
	}
	c.tabs[section] = tab
}

// Tabs returns a copy of every tab selection.
func (c *Context) Tabs() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]string, len(c.tabs))
	for k, v := range c.tabs {
		out[k] = v
	}
	return out
}

type ctxKey struct{}

// WithContext attaches app to ctx.
func WithContext(ctx context.Context, app *Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, app)
}

// FromContext returns the app context attached to ctx.
func FromContext(ctx context.Context) (*Context, bool) {
	if ctx == nil {
		return nil, false
	}
	app, ok := ctx.Value(ctxKey{}).(*Context)
	return app, ok && app != nil
}
