package server

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-gridform/pkg/adminerr"
	"github.com/goliatone/go-gridform/pkg/modal"
	"github.com/goliatone/go-gridform/pkg/renderers/vanilla"
)

// User-facing messages.
const (
	MsgSessionExpired = "화면이 만료되었습니다. 다시 열어 주세요"
	MsgSaved          = "저장되었습니다"
	MsgDeleted        = "삭제되었습니다"
	MsgNothingChosen  = "삭제할 항목을 선택해 주세요"
	MsgUploaded       = "파일을 업로드했습니다"
	MsgUploadPartial  = "일부 파일을 업로드하지 못했습니다"
)

const headerTrigger = "HX-Trigger"

func writeHTML(w http.ResponseWriter, status int, parts ...string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	for _, part := range parts {
		_, _ = w.Write([]byte(part))
	}
}

// writeFragment writes an htmx fragment followed by the pending notifications
// as an out-of-band swap.
func (s *Server) writeFragment(w http.ResponseWriter, r *http.Request, html string) {
	toasts, err := s.deps.Renderer.RenderNotifications(r.Context(), s.deps.App.Notifier().Drain(), true)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeHTML(w, http.StatusOK, html, "\n", toasts)
}

func (s *Server) writeClosedModal(w http.ResponseWriter, r *http.Request) {
	html, err := s.deps.Renderer.RenderModal(r.Context(), vanilla.ModalView{State: modal.StateClosed})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeFragment(w, r, html)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("encode response", zap.Error(err))
	}
}

// writeError writes a typed error as {"error":{...}}.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	typed, ok := adminerr.As(err)
	if !ok {
		typed = adminerr.NewAPI(http.StatusInternalServerError, adminerr.UserMessage(err))
	}
	s.writeJSON(w, statusFor(typed), map[string]any{"error": typed})
}

func statusFor(err *adminerr.Error) int {
	switch err.Type {
	case adminerr.TypeValidation:
		return http.StatusUnprocessableEntity
	case adminerr.TypePrecondition:
		return http.StatusPreconditionFailed
	}
	if err.Code == adminerr.CodeTransport {
		return http.StatusBadGateway
	}
	if err.Status >= 400 {
		return err.Status
	}
	return http.StatusBadGateway
}

func entityPath(entity string, parts ...string) string {
	segments := []string{"", url.PathEscape(entity)}
	for _, part := range parts {
		segments = append(segments, url.PathEscape(part))
	}
	return strings.Join(segments, "/")
}

func modalPath(entity, sid string, parts ...string) string {
	return entityPath(entity, append([]string{"modal", sid}, parts...)...)
}
