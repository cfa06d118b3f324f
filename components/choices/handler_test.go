package choices

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-gridform/pkg/model"
	"github.com/goliatone/go-gridform/pkg/testsupport"
)

type handlerResponse struct {
	Data []model.Option `json:"data"`
}

func serve(t *testing.T, h http.Handler, method, target string) (*httptest.ResponseRecorder, handlerResponse) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var payload handlerResponse
	if rec.Code == http.StatusOK && method == http.MethodGet {
		if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
	}
	return rec, payload
}

func TestHandler_ListsFieldOptions(t *testing.T) {
	h := NewHandler(WithSource(testsupport.MustStore(t, testsupport.MembersSchema())))

	rec, payload := serve(t, h, http.MethodGet, "/api/choices?entity=members&field=grade")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	want := []model.Option{{Value: "A", Label: "고급"}, {Value: "B", Label: "중급"}}
	if diff := cmp.Diff(want, payload.Data); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestHandler_EmptyOptionsYieldPlaceholder(t *testing.T) {
	h := NewHandler(WithSource(testsupport.MustStore(t, testsupport.MembersSchema())))

	_, payload := serve(t, h, http.MethodGet, "/api/choices?entity=members&field=region")
	want := []model.Option{{Value: "", Label: model.UnsetLabel}}
	if diff := cmp.Diff(want, payload.Data); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestHandler_SearchesYesNoLabels(t *testing.T) {
	h := NewHandler(WithSource(testsupport.MustStore(t, testsupport.MembersSchema())))

	_, payload := serve(t, h, http.MethodGet, "/api/choices?entity=members&field=useYn&q=아니")
	if diff := cmp.Diff([]model.Option{{Value: "N", Label: "아니오"}}, payload.Data); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestHandler_UnknownEntityOrField(t *testing.T) {
	h := NewHandler(WithSource(testsupport.MustStore(t, testsupport.MembersSchema())))

	for _, target := range []string{
		"/api/choices?entity=ghosts&field=grade",
		"/api/choices?entity=members&field=missing",
		"/api/choices?entity=members&field=name",
	} {
		rec, _ := serve(t, h, http.MethodGet, target)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("%s: expected status 404, got %d", target, rec.Code)
		}
	}
}

func TestHandler_GuardRejects(t *testing.T) {
	h := NewHandler(
		WithSource(testsupport.MustStore(t, testsupport.MembersSchema())),
		WithGuard(func(r *http.Request) error {
			return StatusError{Code: http.StatusUnauthorized}
		}),
	)

	rec, _ := serve(t, h, http.MethodGet, "/api/choices?entity=members&field=grade")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	h := NewHandler(WithSource(testsupport.MustStore(t, testsupport.MembersSchema())))

	rec, _ := serve(t, h, http.MethodPost, "/api/choices?entity=members&field=grade")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rec.Code)
	}
}

func TestHandler_NoSource(t *testing.T) {
	rec, _ := serve(t, NewHandler(), http.MethodGet, "/api/choices?entity=members&field=grade")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
}
