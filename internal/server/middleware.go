package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/goliatone/go-gridform/pkg/appctx"
	"github.com/goliatone/go-gridform/pkg/model"
)

type ctxKey int

const (
	schemaKey ctxKey = iota
	sessionKey
)

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (s *Server) withAppContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(appctx.WithContext(r.Context(), s.deps.App)))
	})
}

func (s *Server) requireEntity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sch, ok := s.deps.Schemas.Schema(chi.URLParam(r, "entity"))
		if !ok {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), schemaKey, sch)))
	})
}

// requireSession resolves the modal session. An expired session closes the
// dialog with a warning instead of failing, so htmx still swaps the modal.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.sessions.get(chi.URLParam(r, "sid"))
		if !ok || sess.schema.Entity != schemaFrom(r).Entity {
			s.deps.App.Notifier().Warn(MsgSessionExpired)
			s.writeClosedModal(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey, sess)))
	})
}

func schemaFrom(r *http.Request) model.Schema {
	sch, _ := r.Context().Value(schemaKey).(model.Schema)
	return sch
}

func sessionFrom(r *http.Request) *session {
	sess, _ := r.Context().Value(sessionKey).(*session)
	return sess
}
