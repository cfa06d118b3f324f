package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-gridform/pkg/form"
	"github.com/goliatone/go-gridform/pkg/modal"
	"github.com/goliatone/go-gridform/pkg/model"
	"github.com/goliatone/go-gridform/pkg/reveal"
)

// session is one open modal. Handlers hold mu while touching the form state.
type session struct {
	mu       sync.Mutex
	id       string
	schema   model.Schema
	recordID string
	// state is nil for bulk delete confirmations.
	state   *form.State
	shell   *modal.Shell
	reveals map[string]*reveal.Control
	// deleteIDs are the records removed by the delete confirmation.
	deleteIDs        []string
	confirm          *modal.DeleteConfirm
	confirmingDelete bool
	lastSeen         time.Time
}

// noForm stands in for the form of a bulk delete dialog.
type noForm struct{}

func (noForm) AnyDirty() bool { return false }
func (noForm) Reset()         {}

type sessionStore struct {
	mu    sync.Mutex
	items map[string]*session
	ttl   time.Duration
	now   func() time.Time
	newID func() string
}

func newSessionStore(ttl time.Duration) *sessionStore {
	return &sessionStore{
		items: make(map[string]*session),
		ttl:   ttl,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// add registers sess under a fresh id and evicts idle sessions.
func (st *sessionStore) add(sess *session) string {
	st.mu.Lock()
	defer st.mu.Unlock()
	now := st.now()
	for id, existing := range st.items {
		if now.Sub(existing.lastSeen) > st.ttl {
			delete(st.items, id)
		}
	}
	sess.id = st.newID()
	sess.lastSeen = now
	st.items[sess.id] = sess
	return sess.id
}

func (st *sessionStore) get(id string) (*session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	sess, ok := st.items[id]
	if !ok {
		return nil, false
	}
	now := st.now()
	if now.Sub(sess.lastSeen) > st.ttl {
		delete(st.items, id)
		return nil, false
	}
	sess.lastSeen = now
	return sess, true
}

func (st *sessionStore) remove(id string) {
	st.mu.Lock()
	delete(st.items, id)
	st.mu.Unlock()
}

func (st *sessionStore) len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.items)
}
