package queryparam

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestUpdateParamsNavigatesOnce(t *testing.T) {
	rec := &Recorder{}
	adapter := New("/members", url.Values{"name": {"홍"}}, rec, "name")

	adapter.UpdateParams(func(v url.Values) {
		v.Set("page", "3")
		v.Set("size", "30")
	})

	if diff := cmp.Diff([]string{"/members?name=%ED%99%8D&page=3&size=30"}, rec.Calls()); diff != "" {
		t.Fatalf("navigations mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateParamsIsIdempotent(t *testing.T) {
	rec := &Recorder{}
	adapter := New("/engineers", nil, rec)

	adapter.SetQueryParams(map[string]any{"grade": "고급"})
	once := rec.Last()
	adapter.SetQueryParams(map[string]any{"grade": "고급"})

	if rec.Last() != once {
		t.Fatalf("expected identical URL, got %q then %q", once, rec.Last())
	}
}

func TestSetQueryParamsLeavesOtherKeys(t *testing.T) {
	rec := &Recorder{}
	adapter := New("/machine-projects", url.Values{"site": {"울산"}, "page": {"0"}}, rec, "site")

	adapter.SetQueryParams(map[string]any{"page": 2, "size": 10})

	state := adapter.State()
	if state.Page != 2 || state.Size != 10 {
		t.Fatalf("expected page 2 size 10, got %+v", state)
	}
	if diff := cmp.Diff(map[string]string{"site": "울산"}, state.Filters); diff != "" {
		t.Fatalf("filters mismatch (-want +got):\n%s", diff)
	}
	if len(rec.Calls()) != 1 {
		t.Fatalf("expected a single navigation, got %d", len(rec.Calls()))
	}
}

func TestSetQueryParamsNilDeletes(t *testing.T) {
	adapter := New("/safety-projects", url.Values{"status": {"open"}}, nil)
	adapter.SetQueryParams(map[string]any{"status": nil})
	if adapter.Get("status") != "" {
		t.Fatalf("expected status to be removed")
	}
}

func TestStateDefaultsAndClamps(t *testing.T) {
	cases := []struct {
		query    string
		wantPage int
		wantSize int
	}{
		{query: "", wantPage: 0, wantSize: 10},
		{query: "page=4&size=50", wantPage: 4, wantSize: 50},
		{query: "page=-1&size=20", wantPage: 0, wantSize: 10},
		{query: "page=x&size=1", wantPage: 0, wantSize: 1},
	}
	for _, tc := range cases {
		values, _ := url.ParseQuery(tc.query)
		state := ParseState(values)
		if state.Page != tc.wantPage || state.Size != tc.wantSize {
			t.Errorf("%q: want page %d size %d, got %+v", tc.query, tc.wantPage, tc.wantSize, state)
		}
	}
}

func TestStateRestoredFromURLAlone(t *testing.T) {
	rec := &Recorder{}
	first := New("/members", nil, rec, "name", "dept")
	first.SetQueryParams(map[string]any{"page": 5, "size": 30, "dept": "설비"})

	u, err := url.Parse(rec.Last())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	restored := FromURL(u, nil, "name", "dept").State()

	want := TableQueryState{Page: 5, Size: 30, Filters: map[string]string{"dept": "설비"}}
	if diff := cmp.Diff(want, restored); diff != "" {
		t.Fatalf("state mismatch (-want +got):\n%s", diff)
	}
}

func TestSetFiltersResetsPage(t *testing.T) {
	adapter := New("/members", url.Values{"page": {"3"}, "name": {"old"}}, nil, "name")
	adapter.SetFilters(map[string]string{"name": ""})
	if adapter.Get("name") != "" || adapter.Get("page") != "0" {
		t.Fatalf("unexpected values %v", adapter.Values())
	}
}

func TestStringify(t *testing.T) {
	cases := map[string]any{
		"2":    2,
		"1.5":  1.5,
		"true": true,
		"abc":  "abc",
		"10":   int64(10),
	}
	for want, in := range cases {
		if got := Stringify(in); got != want {
			t.Errorf("Stringify(%v): want %q, got %q", in, want, got)
		}
	}
}

func TestHTTPNavigatorRedirects(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/members/filters", nil)
	rr := httptest.NewRecorder()
	nav := NewHTTPNavigator(rr, req)

	New("/members", nil, nav).SetQueryParams(map[string]any{"page": 1})

	if !nav.Flush() {
		t.Fatalf("expected redirect to complete the response")
	}
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/members?page=1" {
		t.Fatalf("unexpected location %q", loc)
	}
}

func TestHTTPNavigatorHTMXReplacesURL(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/members/filters", nil)
	req.Header.Set("HX-Request", "true")
	rr := httptest.NewRecorder()
	nav := NewHTTPNavigator(rr, req)

	New("/members", nil, nav).SetQueryParams(map[string]any{"size": 50})

	if nav.Flush() {
		t.Fatalf("expected htmx navigation to leave body rendering to the caller")
	}
	if got := rr.Header().Get(HeaderReplaceURL); got != "/members?size=50" {
		t.Fatalf("unexpected replace url %q", got)
	}
	if nav.Flush() {
		t.Fatalf("expected second flush to be a no-op")
	}
}

func TestHrefDoesNotNavigate(t *testing.T) {
	rec := &Recorder{}
	adapter := New("/engineers", url.Values{"page": {"3"}, "grade": {"A"}}, rec)

	got := adapter.Href(map[string]any{ParamPage: 4})
	if got != "/engineers?grade=A&page=4" {
		t.Fatalf("unexpected href %q", got)
	}
	if len(rec.Calls()) != 0 {
		t.Fatalf("expected no navigation, got %v", rec.Calls())
	}
	if adapter.Get(ParamPage) != "3" {
		t.Fatalf("expected current values untouched")
	}
}

func TestSortParamRoundTrip(t *testing.T) {
	adapter := New("/members", nil, nil)
	href := adapter.Href(map[string]any{ParamSort: FormatSort("career", "desc")})
	if href != "/members?sort=career%3Adesc" {
		t.Fatalf("unexpected href %q", href)
	}

	column, direction := ParseSort("career:desc")
	if column != "career" || direction != "desc" {
		t.Fatalf("unexpected parse %q %q", column, direction)
	}
	if column, direction := ParseSort("name"); column != "name" || direction != "asc" {
		t.Fatalf("expected bare column to sort ascending, got %q %q", column, direction)
	}
	if FormatSort("name", "") != nil {
		t.Fatalf("expected empty direction to clear the sort")
	}
}
