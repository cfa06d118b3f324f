package server

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-gridform/pkg/adminerr"
	"github.com/goliatone/go-gridform/pkg/modal"
	"github.com/goliatone/go-gridform/pkg/model"
)

// TitleBulkDelete heads the bulk delete dialog.
const TitleBulkDelete = "선택 삭제"

func (s *Server) deleteConfirm(sch model.Schema, sess *session) *modal.DeleteConfirm {
	resource := resourceOf(sch)
	return modal.NewDeleteConfirm(func(ctx context.Context) error {
		return s.deps.Backend.Delete(ctx, resource, sess.deleteIDs...)
	})
}

// handleBulkDelete opens a confirmation for the rows selected in the table.
func (s *Server) handleBulkDelete(w http.ResponseWriter, r *http.Request) {
	sch := schemaFrom(r)
	var ids []string
	for _, id := range r.URL.Query()["selected"] {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		s.deps.App.Notifier().Warn(MsgNothingChosen)
		s.writeClosedModal(w, r)
		return
	}

	sess := &session{schema: sch, deleteIDs: ids, confirmingDelete: true}
	s.sessions.add(sess)
	sess.shell = modal.New(modal.Slots{Title: TitleBulkDelete}, modal.WithLogger(s.logger))
	_ = sess.shell.Open(noForm{})
	sess.confirm = s.deleteConfirm(sch, sess)
	s.respondModal(w, r, sess)
}

// handleDeleteConfirm overlays the delete confirmation on an edit dialog.
func (s *Server) handleDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if len(sess.deleteIDs) > 0 && sess.shell.State() == modal.StateOpen {
		sess.confirmingDelete = true
	}
	s.respondModal(w, r, sess)
}

func (s *Server) handleDeleteCancel(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.state == nil {
		_ = sess.shell.Complete()
		s.closeSession(w, r, sess, false)
		return
	}
	sess.confirmingDelete = false
	s.respondModal(w, r, sess)
}

// handleDelete runs the confirmation handler. The session lock is released
// while the backend call is in flight so a repeated click observes the busy
// trigger and is refused instead of queueing a second delete.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	sess.mu.Lock()
	ready := sess.confirmingDelete
	sess.mu.Unlock()
	if !ready {
		sess.mu.Lock()
		s.respondModal(w, r, sess)
		sess.mu.Unlock()
		return
	}

	err := s.deps.App.Boundary(r.Context(), "delete "+sess.schema.Entity, sess.confirm.Run)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	switch {
	case err == nil:
		s.logger.Info("records deleted",
			zap.String("entity", sess.schema.Entity),
			zap.Strings("ids", sess.deleteIDs),
		)
		s.deps.App.Notifier().Info(MsgDeleted)
		_ = sess.shell.Complete()
		s.closeSession(w, r, sess, true)
	case adminerr.IsPrecondition(err):
		s.respondModal(w, r, sess)
	default:
		sess.confirmingDelete = false
		if sess.state == nil {
			_ = sess.shell.Complete()
			s.closeSession(w, r, sess, true)
			return
		}
		sess.state.ApplyError(err)
		s.respondModal(w, r, sess)
	}
}
