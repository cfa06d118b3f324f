package server

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/goliatone/go-gridform/pkg/apiclient"
	"github.com/goliatone/go-gridform/pkg/appctx"
	"github.com/goliatone/go-gridform/pkg/columns"
	"github.com/goliatone/go-gridform/pkg/form"
	"github.com/goliatone/go-gridform/pkg/modal"
	"github.com/goliatone/go-gridform/pkg/model"
	"github.com/goliatone/go-gridform/pkg/queryparam"
	"github.com/goliatone/go-gridform/pkg/renderers/vanilla"
	"github.com/goliatone/go-gridform/pkg/reveal"
)

// Modal labels.
const (
	LabelSave   = "저장"
	LabelClose  = "닫기"
	LabelDelete = "삭제"
	TitleNew    = "등록"
	TitleEdit   = "수정"
)

func (s *Server) handleNew(w http.ResponseWriter, r *http.Request) {
	sch := schemaFrom(r)
	sess := s.openSession(sch, "", form.New(sch, nil))
	s.respondModal(w, r, sess)
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	sch := schemaFrom(r)
	id := chi.URLParam(r, "id")

	var record apiclient.Record
	err := s.deps.App.Boundary(r.Context(), "get "+sch.Entity, func(ctx context.Context) error {
		var err error
		record, err = s.deps.Backend.Get(ctx, resourceOf(sch), id)
		return err
	})
	if err != nil {
		s.writeClosedModal(w, r)
		return
	}
	sess := s.openSession(sch, id, form.New(sch, record))
	s.respondModal(w, r, sess)
}

// openSession binds state to a new shell and registers it. Sensitive fields of
// existing records get a reveal control seeded with the masked value.
func (s *Server) openSession(sch model.Schema, recordID string, state *form.State) *session {
	sess := &session{
		schema:   sch,
		recordID: recordID,
		state:    state,
		reveals:  make(map[string]*reveal.Control),
	}
	s.sessions.add(sess)

	title := sch.Title + " " + TitleNew
	if recordID != "" {
		title = sch.Title + " " + TitleEdit
	}
	slots := modal.Slots{
		Title:     title,
		Primary:   &modal.Action{Label: LabelSave, URL: modalPath(sch.Entity, sess.id, "save")},
		Secondary: &modal.Action{Label: LabelClose, URL: modalPath(sch.Entity, sess.id, "close")},
	}
	if recordID != "" {
		slots.Delete = &modal.Action{Label: LabelDelete, URL: modalPath(sch.Entity, sess.id, "delete")}
		sess.deleteIDs = []string{recordID}
		for _, field := range sch.Fields {
			if field.Sensitive {
				sess.reveals[field.Key] = reveal.New(recordID, field.Key, state.Get(field.Key), s.revealFetcher(sch), s.logger)
			}
		}
	}
	sess.shell = modal.New(slots, modal.WithLogger(s.logger))
	_ = sess.shell.Open(state)
	sess.confirm = s.deleteConfirm(sch, sess)
	return sess
}

func (s *Server) revealFetcher(sch model.Schema) reveal.Fetcher {
	resource := resourceOf(sch)
	return reveal.FetcherFunc(func(ctx context.Context, _ appctx.User, recordID, field string) (string, error) {
		return s.deps.Backend.Reveal(ctx, resource, recordID, field)
	})
}

// renderModal renders the dialog of sess. Callers hold sess.mu.
func (s *Server) renderModal(ctx context.Context, sess *session) (string, error) {
	entity := sess.schema.Entity
	view := vanilla.ModalView{
		State:    sess.shell.State(),
		Slots:    sess.shell.Slots(),
		CloseURL: modalPath(entity, sess.id, "close"),
	}
	if sess.confirmingDelete {
		if view.Slots.Primary != nil {
			primary := *view.Slots.Primary
			primary.Disabled = true
			view.Slots.Primary = &primary
		}
	}

	if sess.state != nil {
		view.FormID = vanilla.FormID(entity)
		body, err := s.deps.Renderer.RenderForm(ctx, vanilla.FormView{
			ID:     view.FormID,
			Action: modalPath(entity, sess.id, "save"),
			State:  sess.state,
			ChangeURL: func(key string) string {
				return modalPath(entity, sess.id, "fields", key)
			},
			Reveal: func(key string) *vanilla.RevealView {
				return vanilla.RevealViewFrom(sess.reveals[key], modalPath(entity, sess.id, "reveal", key))
			},
			HTMX: true,
		})
		if err != nil {
			return "", err
		}
		view.Body = body
	}

	var confirm *vanilla.ConfirmView
	switch {
	case view.State == modal.StateConfirmingDiscard:
		cv := vanilla.DiscardConfirmView(modalPath(entity, sess.id, "discard"), modalPath(entity, sess.id, "cancel"))
		confirm = &cv
	case sess.confirmingDelete:
		cv := vanilla.DeleteConfirmView(modalPath(entity, sess.id, "delete"), modalPath(entity, sess.id, "delete", "cancel"))
		cv.Busy = sess.confirm.Busy()
		confirm = &cv
	}
	if confirm != nil {
		html, err := s.deps.Renderer.RenderConfirm(ctx, *confirm)
		if err != nil {
			return "", err
		}
		view.Confirm = html
	}
	return s.deps.Renderer.RenderModal(ctx, view)
}

// respondModal answers htmx with the dialog fragment. A plain GET, such as a
// bookmarked edit link, gets the full list page with the dialog open.
func (s *Server) respondModal(w http.ResponseWriter, r *http.Request, sess *session) {
	html, err := s.renderModal(r.Context(), sess)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if r.Method == http.MethodGet && !queryparam.IsHTMX(r) {
		content, err := s.renderTable(r.Context(), sess.schema, &url.URL{Path: entityPath(sess.schema.Entity)})
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.writePage(w, r, sess.schema, content, html)
		return
	}
	s.writeFragment(w, r, html)
}

// closeSession drops sess and answers with the empty modal. refresh asks
// tables on the page to reload.
func (s *Server) closeSession(w http.ResponseWriter, r *http.Request, sess *session, refresh bool) {
	s.sessions.remove(sess.id)
	if refresh {
		w.Header().Set(headerTrigger, vanilla.RefreshEvent)
	}
	s.writeClosedModal(w, r)
}

// handleFieldChange stores one control value and re-renders the field so its
// dirty and error styling follow the state.
func (s *Server) handleFieldChange(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	key := chi.URLParam(r, "field")
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.state == nil {
		http.NotFound(w, r)
		return
	}
	field, ok := sess.schema.Field(key)
	if !ok || field.Sensitive {
		http.NotFound(w, r)
		return
	}
	sess.state.Set(key, r.PostForm.Get(key))

	view, _ := sess.state.View(key)
	html, err := s.deps.Renderer.RenderField(view, vanilla.Binding{
		ChangeURL: changeURLFor(field, sess),
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeHTML(w, http.StatusOK, html)
}

func changeURLFor(field model.FieldMetadata, sess *session) string {
	if field.Disabled {
		return ""
	}
	return modalPath(sess.schema.Entity, sess.id, "fields", field.Key)
}

// handleSave applies the posted values that differ from the state, validates
// and sends the record. Validation or backend errors re-render the form with
// messages; success closes the dialog and refreshes the table.
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.state == nil || sess.shell.State() != modal.StateOpen || sess.confirmingDelete {
		s.respondModal(w, r, sess)
		return
	}
	state := sess.state
	for _, field := range sess.schema.Fields {
		if field.Hidden || field.Disabled || field.Sensitive {
			continue
		}
		if _, posted := r.PostForm[field.Key]; !posted {
			continue
		}
		if value := r.PostForm.Get(field.Key); value != state.Get(field.Key) {
			state.Set(field.Key, value)
		}
	}
	if !state.SubmitAttempt() {
		s.respondModal(w, r, sess)
		return
	}

	sch := sess.schema
	var saved apiclient.Record
	err := s.deps.App.Boundary(r.Context(), "save "+sch.Entity, func(ctx context.Context) error {
		var err error
		if sess.recordID == "" {
			saved, err = s.deps.Backend.Create(ctx, resourceOf(sch), state.Payload())
		} else {
			saved, err = s.deps.Backend.Update(ctx, resourceOf(sch), sess.recordID, state.Version(), state.Payload())
		}
		return err
	})
	if err != nil {
		state.ApplyError(err)
		s.respondModal(w, r, sess)
		return
	}

	id := sess.recordID
	if id == "" {
		id = columns.FormatValue(saved[sch.RowIDField()])
	}
	s.logger.Info("record saved", zap.String("entity", sch.Entity), zap.String("id", id))
	s.deps.App.Notifier().Info(MsgSaved)
	_ = sess.shell.Complete()
	s.closeSession(w, r, sess, true)
}

// handleClose asks the shell to close; a dirty form moves to the discard
// confirmation instead.
func (s *Server) handleClose(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.shell.State() != modal.StateOpen {
		s.respondModal(w, r, sess)
		return
	}
	state, err := sess.shell.RequestClose()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if state == modal.StateClosed {
		s.closeSession(w, r, sess, false)
		return
	}
	s.respondModal(w, r, sess)
}

func (s *Server) handleDiscard(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := sess.shell.Discard(); err != nil {
		s.respondModal(w, r, sess)
		return
	}
	s.closeSession(w, r, sess, false)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	_ = sess.shell.Cancel()
	s.respondModal(w, r, sess)
}

// handleReveal advances the reveal cycle of a sensitive field and returns the
// adornment fragment. Refusals and fetch failures surface as notifications.
func (s *Server) handleReveal(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	key := chi.URLParam(r, "field")

	sess.mu.Lock()
	defer sess.mu.Unlock()
	ctrl, ok := sess.reveals[key]
	if !ok || sess.state == nil {
		http.NotFound(w, r)
		return
	}
	_ = ctrl.Toggle(r.Context(), s.deps.App)

	view, _ := sess.state.View(key)
	html, err := s.deps.Renderer.RenderReveal(view, vanilla.RevealViewFrom(ctrl, modalPath(sess.schema.Entity, sess.id, "reveal", key)))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeFragment(w, r, html)
}
