package vanilla

import (
	"net/url"
	"strings"
	"testing"

	"github.com/goliatone/go-theme"

	"github.com/goliatone/go-gridform/pkg/adminerr"
	"github.com/goliatone/go-gridform/pkg/appctx"
	"github.com/goliatone/go-gridform/pkg/columns"
	"github.com/goliatone/go-gridform/pkg/form"
	"github.com/goliatone/go-gridform/pkg/modal"
	"github.com/goliatone/go-gridform/pkg/model"
	"github.com/goliatone/go-gridform/pkg/queryparam"
	"github.com/goliatone/go-gridform/pkg/render"
	"github.com/goliatone/go-gridform/pkg/reveal"
	"github.com/goliatone/go-gridform/pkg/table"
	"github.com/goliatone/go-gridform/pkg/testsupport"
)

func newRenderer(t *testing.T, opts ...Option) *Renderer {
	t.Helper()
	r, err := New(opts...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return r
}

func memberState() *form.State {
	return form.New(testsupport.MembersSchema(), map[string]any{
		"id":         "m-7",
		"name":       "홍길동",
		"email":      "hong@example.com",
		"useYn":      true,
		"grade":      "A",
		"residentNo": "900101-1******",
		"version":    float64(3),
	})
}

func fieldHTML(t *testing.T, r *Renderer, state *form.State, key string, binding Binding) string {
	t.Helper()
	view, ok := state.View(key)
	if !ok {
		t.Fatalf("unknown field %q", key)
	}
	out, err := r.RenderField(view, binding)
	if err != nil {
		t.Fatalf("render field %q: %v", key, err)
	}
	return out
}

func TestRenderFieldChrome(t *testing.T) {
	r := newRenderer(t)
	out := fieldHTML(t, r, memberState(), "name", Binding{ChangeURL: "/members/modal/s-1/fields/name"})

	testsupport.AssertContains(t, out,
		`data-field="name"`,
		`data-component="text"`,
		`data-visual="normal"`,
		`<label class="gf-label" for="gf-name">이름<sup class="gf-required" aria-hidden="true">*</sup></label>`,
		`<input type="text" id="gf-name" name="name" value="홍길동" class="gf-control"`,
		`aria-required="true"`,
		`hx-post="/members/modal/s-1/fields/name" hx-trigger="change" hx-target="closest [data-field]"`,
	)
	testsupport.AssertNotContains(t, out, "gf-error", " required")
}

func TestRenderFieldVisualPrecedence(t *testing.T) {
	r := newRenderer(t)
	state := memberState()
	state.Set("name", "")
	state.Set("email", "kim@example.com")
	state.SubmitAttempt()

	name := fieldHTML(t, r, state, "name", Binding{})
	testsupport.AssertContains(t, name,
		`class="gf-control gf-control--error"`,
		`aria-invalid="true"`,
		`aria-describedby="gf-name-error"`,
		`<p id="gf-name-error" class="gf-error" role="alert">필수 입력입니다</p>`,
		`data-visual="error"`,
	)
	testsupport.AssertNotContains(t, name, "gf-control--dirty")

	email := fieldHTML(t, r, state, "email", Binding{})
	testsupport.AssertContains(t, email, `class="gf-control gf-control--dirty"`)

	id := fieldHTML(t, r, state, "id", Binding{ChangeURL: "/ignored"})
	testsupport.AssertContains(t, id, `class="gf-control gf-control--disabled"`, " disabled")
	testsupport.AssertNotContains(t, id, "hx-post")
}

func TestRenderFieldKinds(t *testing.T) {
	r := newRenderer(t)
	state := form.New(testsupport.MembersSchema(), map[string]any{
		"career":   float64(12),
		"joinedAt": "2024-03-01T09:00:00Z",
		"memo":     "비고",
	})

	testsupport.AssertContains(t, fieldHTML(t, r, state, "career", Binding{}),
		`<input type="text" inputmode="numeric" id="gf-career" name="career" value="12"`)
	testsupport.AssertContains(t, fieldHTML(t, r, state, "joinedAt", Binding{}),
		`<input type="date" id="gf-joinedAt" name="joinedAt" value="2024-03-01"`)
	testsupport.AssertContains(t, fieldHTML(t, r, state, "memo", Binding{}),
		`<textarea id="gf-memo" name="memo" rows="4"`, `>비고</textarea>`)
}

func TestRenderYesNoSelect(t *testing.T) {
	r := newRenderer(t)

	set := fieldHTML(t, r, memberState(), "useYn", Binding{})
	testsupport.AssertContains(t, set,
		`data-component="yesno"`,
		`<option value="Y" selected>예</option>`,
		`<option value="N">아니오</option>`,
	)
	testsupport.AssertOrder(t, set, `value="Y"`, `value="N"`)

	empty := fieldHTML(t, r, form.New(testsupport.MembersSchema(), nil), "useYn", Binding{})
	testsupport.AssertContains(t, empty, `<option value="" selected hidden disabled></option>`)
}

func TestRenderMultiChoicePlaceholder(t *testing.T) {
	r := newRenderer(t)
	empty := form.New(testsupport.MembersSchema(), nil)

	region := fieldHTML(t, r, empty, "region", Binding{})
	testsupport.AssertContains(t, region,
		`class="gf-control gf-placeholder"`,
		`<option value="" selected class="gf-option--placeholder">미정</option>`,
	)
	if got := strings.Count(region, "<option"); got != 1 {
		t.Fatalf("expected a single placeholder option, got %d\n%s", got, region)
	}

	grade := fieldHTML(t, r, memberState(), "grade", Binding{})
	testsupport.AssertOrder(t, grade, `>미정</option>`, `<option value="A" selected>고급</option>`, `<option value="B">중급</option>`)
	testsupport.AssertNotContains(t, grade, "gf-placeholder")
}

func TestRenderMultiChoiceKeepsUnknownValue(t *testing.T) {
	r := newRenderer(t)
	state := form.New(testsupport.MembersSchema(), map[string]any{"grade": "C"})

	testsupport.AssertContains(t, fieldHTML(t, r, state, "grade", Binding{}), `<option value="C" selected>C</option>`)
}

func TestRenderFieldEscapesValues(t *testing.T) {
	r := newRenderer(t)
	state := form.New(testsupport.MembersSchema(), map[string]any{"name": `<script>alert("x")</script>`})

	out := fieldHTML(t, r, state, "name", Binding{})
	testsupport.AssertContains(t, out, "&lt;script&gt;")
	testsupport.AssertNotContains(t, out, "<script>")
}

func TestRenderFieldSensitiveUsesReveal(t *testing.T) {
	r := newRenderer(t)
	state := memberState()

	masked := fieldHTML(t, r, state, "residentNo", Binding{Reveal: &RevealView{
		State:   reveal.StateMasked,
		Display: "900101-1******",
		URL:     "/members/m-7/reveal/residentNo",
	}})
	testsupport.AssertContains(t, masked,
		`data-component="reveal"`,
		`<span id="gf-residentNo-reveal" class="gf-reveal gf-reveal--masked">`,
		`value="900101-1******"`,
		"readonly",
		`hx-get="/members/m-7/reveal/residentNo" hx-target="#gf-residentNo-reveal"`,
		`>보기</button>`,
	)
	testsupport.AssertNotContains(t, masked, `name="residentNo"`)

	view, _ := state.View("residentNo")
	revealed, err := r.RenderReveal(view, &RevealView{State: reveal.StateRevealed, Display: "900101-1234567", URL: "/r"})
	if err != nil {
		t.Fatalf("render reveal: %v", err)
	}
	testsupport.AssertContains(t, revealed, `value="900101-1234567"`, `>숨기기</button>`)
	testsupport.AssertNotContains(t, revealed, "<label")
}

func TestRenderFormOrderAndHiddenFields(t *testing.T) {
	r := newRenderer(t)
	state := memberState()

	out, err := r.RenderForm(testsupport.Context(), FormView{
		Action: "/members/modal/s-1/save",
		State:  state,
		Hidden: []render.HiddenField{render.SessionField("s-1")},
		HTMX:   true,
		ChangeURL: func(key string) string {
			return "/members/modal/s-1/fields/" + key
		},
	})
	if err != nil {
		t.Fatalf("render form: %v", err)
	}

	testsupport.AssertContains(t, out,
		`<form id="gf-form-members" class="gf-form" method="post" action="/members/modal/s-1/save" hx-post="/members/modal/s-1/save" hx-target="#gf-modal"`,
		`<input type="hidden" name="_session" value="s-1">`,
		`<input type="hidden" name="version" value="3">`,
	)
	testsupport.AssertOrder(t, out, `data-field="name"`, `data-field="email"`, `data-field="grade"`, `data-field="residentNo"`)
	testsupport.AssertNotContains(t, out, `data-field="id"`, "gf-form-errors")
}

func TestRenderFormShowsFormErrors(t *testing.T) {
	r := newRenderer(t)
	state := memberState()
	state.ApplyError(adminerr.NewAPI(409, "다른 사용자가 먼저 수정했습니다"))

	out, err := r.RenderForm(testsupport.Context(), FormView{Action: "/save", State: state})
	if err != nil {
		t.Fatalf("render form: %v", err)
	}
	testsupport.AssertContains(t, out, `<div class="gf-form-errors" role="alert">`, "<p>다른 사용자가 먼저 수정했습니다</p>")
	testsupport.AssertNotContains(t, out, "hx-post=\"/save\"")
}

func TestRenderFormRequiresState(t *testing.T) {
	r := newRenderer(t)
	if _, err := r.RenderForm(testsupport.Context(), FormView{}); err == nil {
		t.Fatalf("expected error for nil state")
	}
}

func memberTable(t *testing.T, adapter *queryparam.Adapter) TableView {
	t.Helper()
	schema := testsupport.MembersSchema()
	rows := []columns.MapRow{
		{"id": "m-1", "name": "김철수", "career": float64(3), "useYn": "Y"},
		{"id": "m-2", "name": "이영희", "career": float64(8), "useYn": "N"},
	}
	inst := table.New(table.Config[columns.MapRow]{
		Rows:            rows,
		Columns:         columns.Build[columns.MapRow](schema.HeaderMapping(), columns.WithSortable[columns.MapRow]("career")),
		RowID:           func(r columns.MapRow) string { id, _ := r["id"].(string); return id },
		Selection:       table.Selection{"m-2": true},
		Sorting:         table.Sorting{ColumnID: "career", Direction: table.SortAsc},
		EnableSorting:   true,
		EnableSelection: true,
		PageSize:        10,
	})
	view := BuildTable(inst, TableLinks{
		Sort: SortHref(adapter),
		Edit: func(id string) string { return "/members/modal/edit/" + id },
	})
	view.Entity = schema.Entity
	view.Title = schema.Title
	view.Filters = FiltersFor(schema, adapter.State())
	view.FilterURL = "/members/filters"
	view.NewURL = "/members/modal/new"
	view.DeleteURL = "/members/delete"
	view.Pagination = PaginationFor(adapter, 25)
	return view
}

func TestRenderTable(t *testing.T) {
	r := newRenderer(t)
	adapter := queryparam.New("/members", url.Values{"page": {"1"}, "grade": {"A"}}, &queryparam.Recorder{}, "name", "grade", "useYn")

	out, err := r.RenderTable(testsupport.Context(), memberTable(t, adapter))
	if err != nil {
		t.Fatalf("render table: %v", err)
	}

	testsupport.AssertContains(t, out,
		`<section id="gf-table-members" class="gf-table">`,
		`<h1>회원 관리</h1>`,
		`aria-sort="ascending"`,
		`href="/members?grade=A&amp;page=0&amp;sort=career%3Adesc"`,
		`<input type="checkbox" name="selected" value="m-2" checked>`,
		`<input type="checkbox" name="selected" value="m-1">`,
		`hx-get="/members/modal/edit/m-1"`,
		`<option value="A" selected>고급</option>`,
		`<option value="">전체</option>`,
		`2 / 3 (총 25건)`,
		`href="/members?grade=A&amp;page=0"`,
		`href="/members?grade=A&amp;page=2"`,
		`<option value="10" selected>10건</option>`,
		`hx-include="#gf-filters-members"`,
	)
	testsupport.AssertOrder(t, out, "<td>김철수</td>", "<td>이영희</td>")
	testsupport.AssertOrder(t, out, `<th scope="col">이름</th>`, `>경력</a>`)
}

func TestRowsWithoutIDAreNotActionable(t *testing.T) {
	rows := []columns.MapRow{
		{"id": "m-1", "name": "김철수"},
		{"name": "이영희"},
	}
	inst := table.New(table.Config[columns.MapRow]{
		Rows:            rows,
		Columns:         columns.Build[columns.MapRow](model.Headers{{Key: "name", Label: "이름"}}),
		RowID:           func(r columns.MapRow) string { id, _ := r["id"].(string); return id },
		EnableSelection: true,
	})
	view := BuildTable(inst, TableLinks{Edit: func(id string) string { return "/members/" + id + "/edit" }})
	if view.Rows[0].EditURL != "/members/m-1/edit" {
		t.Fatalf("expected edit url for keyed row, got %q", view.Rows[0].EditURL)
	}
	if view.Rows[1].EditURL != "" {
		t.Fatalf("expected no edit url for row without id, got %q", view.Rows[1].EditURL)
	}

	view.Entity = "members"
	out, err := newRenderer(t).RenderTable(testsupport.Context(), view)
	if err != nil {
		t.Fatalf("render table: %v", err)
	}
	testsupport.AssertContains(t, out, `value="m-1"`, `hx-get="/members/m-1/edit"`)
	testsupport.AssertNotContains(t, out, `value="1"`, `/members/1/edit`)
}

func TestRenderTableEmpty(t *testing.T) {
	r := newRenderer(t)
	out, err := r.RenderTable(testsupport.Context(), TableView{
		Entity:  "engineers",
		Headers: []HeaderView{{ID: "name", Label: "성명"}},
	})
	if err != nil {
		t.Fatalf("render table: %v", err)
	}
	testsupport.AssertContains(t, out, `<td colspan="1">데이터가 없습니다</td>`)
	testsupport.AssertNotContains(t, out, "gf-filters", "선택 삭제")
}

func TestRenderModal(t *testing.T) {
	r := newRenderer(t)
	slots := modal.Slots{
		Title:     "회원 수정",
		Primary:   &modal.Action{Label: "저장"},
		Secondary: &modal.Action{Label: "닫기", URL: "/members/modal/s-1/close"},
		Delete:    &modal.Action{Label: "삭제", URL: "/members/delete?selected=m-7"},
	}

	out, err := r.RenderModal(testsupport.Context(), ModalView{
		State:    modal.StateOpen,
		Slots:    slots,
		FormID:   FormID("members"),
		CloseURL: "/members/modal/s-1/close",
		Body:     `<form id="gf-form-members"></form>`,
	})
	if err != nil {
		t.Fatalf("render modal: %v", err)
	}
	testsupport.AssertContains(t, out,
		`<div id="gf-modal" class="gf-modal gf-modal--open" role="dialog"`,
		`<h2 id="gf-modal-title">회원 수정</h2>`,
		`<form id="gf-form-members"></form>`,
		`<button type="submit" class="gf-button gf-button--primary" form="gf-form-members">저장</button>`,
		`hx-post="/members/modal/s-1/close"`,
		`hx-get="/members/delete?selected=m-7"`,
	)
	testsupport.AssertOrder(t, out, ">삭제<", ">닫기<", ">저장<")
	testsupport.AssertNotContains(t, out, "modify")
}

func TestRenderModalConfirmingDiscard(t *testing.T) {
	r := newRenderer(t)
	ctx := testsupport.Context()

	confirm, err := r.RenderConfirm(ctx, DiscardConfirmView("/members/modal/s-1/discard", "/members/modal/s-1/cancel"))
	if err != nil {
		t.Fatalf("render confirm: %v", err)
	}
	out, err := r.RenderModal(ctx, ModalView{
		State:   modal.StateConfirmingDiscard,
		Slots:   modal.Slots{Title: "회원 등록", Primary: &modal.Action{Label: "저장"}},
		FormID:  FormID("members"),
		Body:    "<form></form>",
		Confirm: confirm,
	})
	if err != nil {
		t.Fatalf("render modal: %v", err)
	}
	testsupport.AssertContains(t, out,
		"gf-modal--confirming_discard",
		`<p id="gf-confirm-message">변경 사항을 저장하지 않고 닫으시겠습니까?</p>`,
		`hx-post="/members/modal/s-1/discard"`,
		`hx-post="/members/modal/s-1/cancel"`,
		`form="gf-form-members" disabled>저장</button>`,
	)
	testsupport.AssertOrder(t, out, "<form></form>", "gf-confirm", "gf-modal__footer")
}

func TestRenderModalClosed(t *testing.T) {
	r := newRenderer(t)
	out, err := r.RenderModal(testsupport.Context(), ModalView{State: modal.StateClosed, Slots: modal.Slots{Title: "x"}})
	if err != nil {
		t.Fatalf("render modal: %v", err)
	}
	if strings.TrimSpace(out) != `<div id="gf-modal"></div>` {
		t.Fatalf("expected empty container, got %q", out)
	}
}

func TestRenderDeleteConfirmBusy(t *testing.T) {
	r := newRenderer(t)
	view := DeleteConfirmView("/members/delete", "/members/modal/close", render.Hidden("selected", "m-1"))
	view.Busy = true

	out, err := r.RenderConfirm(testsupport.Context(), view)
	if err != nil {
		t.Fatalf("render confirm: %v", err)
	}
	testsupport.AssertContains(t, out,
		"삭제하시겠습니까?",
		`<input type="hidden" name="selected" value="m-1">`,
		`disabled aria-busy="true">삭제</button>`,
		`>취소</button>`,
	)
}

func TestRenderPageWithTheme(t *testing.T) {
	r := newRenderer(t, WithTheme(&theme.RendererConfig{
		Theme:   "acme",
		Variant: "dark",
		Tokens:  map[string]string{"class.control.dirty": "acme-dirty"},
		CSSVars: map[string]string{"--gf-primary": "#123456"},
		AssetURL: func(key string) string {
			return "/themes/acme/" + key
		},
	}))
	if r.Classes().ControlDirty != "acme-dirty" {
		t.Fatalf("expected token override, got %q", r.Classes().ControlDirty)
	}

	user := appctx.User{ID: "u-1", Name: "관리자"}
	out, err := r.RenderPage(testsupport.Context(), PageView{
		Title:         "회원 관리",
		Nav:           []NavItem{{Title: "회원", Href: "/members", Active: true}},
		User:          &user,
		Notifications: []appctx.Notification{{Level: appctx.LevelWarning, Message: "사용자 정보가 없습니다"}},
		Content:       "<section>본문</section>",
	})
	if err != nil {
		t.Fatalf("render page: %v", err)
	}
	testsupport.AssertContains(t, out,
		`<html lang="ko" data-theme="acme" data-theme-variant="dark">`,
		`<link rel="stylesheet" href="/themes/acme/gridform.css">`,
		"--gf-primary: #123456;",
		`<script src="https://unpkg.com/htmx.org@1.9.12" defer></script>`,
		`<a href="/members" aria-current="page">회원</a>`,
		`<span class="gf-nav__user">관리자</span>`,
		`<p class="gf-notification gf-notification--warning" role="alert">사용자 정보가 없습니다</p>`,
		"<section>본문</section>",
		`<div id="gf-modal"></div>`,
	)
	if got := strings.Count(out, "htmx.org"); got != 1 {
		t.Fatalf("expected htmx once, got %d", got)
	}
}

func TestRenderNotificationsOOB(t *testing.T) {
	r := newRenderer(t)
	out, err := r.RenderNotifications(testsupport.Context(), []appctx.Notification{{Level: appctx.LevelInfo, Message: "저장되었습니다"}}, true)
	if err != nil {
		t.Fatalf("render notifications: %v", err)
	}
	testsupport.AssertContains(t, out, `hx-swap-oob="true"`, `role="status">저장되었습니다</p>`)
}

func TestThemePartialOverridesComponent(t *testing.T) {
	r := newRenderer(t, WithTheme(&theme.RendererConfig{
		Partials: map[string]string{"forms.text": "templates/components/number.tmpl"},
	}))
	out := fieldHTML(t, r, memberState(), "name", Binding{})
	testsupport.AssertContains(t, out, `inputmode="numeric"`)
}

func TestComponentOverrides(t *testing.T) {
	r := newRenderer(t, WithComponentOverrides(map[string]string{"memo": "text"}))
	out := fieldHTML(t, r, memberState(), "memo", Binding{})
	testsupport.AssertContains(t, out, `data-component="text"`, `<input type="text" id="gf-memo"`)
}
