package appctx

import (
	"sync"
	"time"
)

// Level is the severity of a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is a transient toast message.
type Notification struct {
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Notifier queues notifications until a view drains them.
type Notifier struct {
	mu    sync.Mutex
	items []Notification
	now   func() time.Time
}

// NewNotifier returns an empty notifier.
func NewNotifier() *Notifier {
	return &Notifier{now: time.Now}
}

// Notify queues a message. Empty messages are dropped.
func (n *Notifier) Notify(level Level, message string) {
	if n == nil || message == "" {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = append(n.items, Notification{Level: level, Message: message, At: n.now()})
}

func (n *Notifier) Info(message string)  { n.Notify(LevelInfo, message) }
func (n *Notifier) Warn(message string)  { n.Notify(LevelWarning, message) }
func (n *Notifier) Error(message string) { n.Notify(LevelError, message) }

// Pending returns the queued notifications without removing them.
func (n *Notifier) Pending() []Notification {
	if n == nil {
		return nil
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification(nil), n.items...)
}

// Drain returns and clears the queued notifications.
func (n *Notifier) Drain() []Notification {
	if n == nil {
		return nil
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	out := n.items
	n.items = nil
	return out
}
