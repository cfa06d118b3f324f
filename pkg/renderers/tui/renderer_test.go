package tui

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-gridform/pkg/form"
	"github.com/goliatone/go-gridform/pkg/testsupport"
)

// scriptDriver answers questions from a queue in prompt order.
type scriptDriver struct {
	answers   []Answer
	questions []Question
	notices   []string
}

func (s *scriptDriver) Ask(_ context.Context, q Question) (Answer, error) {
	s.questions = append(s.questions, q)
	if len(s.answers) == 0 {
		return Answer{}, errors.New("no answer scripted")
	}
	next := s.answers[0]
	s.answers = s.answers[1:]
	return next, nil
}

func (s *scriptDriver) Notify(_ context.Context, msg string) error {
	s.notices = append(s.notices, msg)
	return nil
}

func (s *scriptDriver) labels() []string {
	out := make([]string, len(s.questions))
	for i, q := range s.questions {
		out[i] = q.Label
	}
	return out
}

func (s *scriptDriver) choices() [][]string {
	var out [][]string
	for _, q := range s.questions {
		if q.Kind == AskChoice {
			out = append(out, q.Choices)
		}
	}
	return out
}

func text(v string) Answer { return Answer{Text: v} }
func yes(v bool) Answer    { return Answer{Yes: v} }
func pick(i int) Answer    { return Answer{Index: i} }

func newScriptRenderer(t *testing.T, driver *scriptDriver, opts ...Option) *Renderer {
	t.Helper()
	r, err := New(append([]Option{WithPromptDriver(driver)}, opts...)...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return r
}

func TestRenderPromptsEditableFieldsInOrder(t *testing.T) {
	driver := &scriptDriver{answers: []Answer{
		text("홍길동"), text("hong@example.com"), text("010-1234-5678"), text("메모"),
		text("12"), text("2024-03-01"), yes(false), pick(1), pick(0),
	}}
	r := newScriptRenderer(t, driver)

	out, err := r.Render(context.Background(), form.New(testsupport.MembersSchema(), nil))
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	wantPrompts := []string{"이름", "이메일", "연락처", "메모", "경력", "가입일", "사용 여부", "등급", "지역"}
	if diff := cmp.Diff(wantPrompts, driver.labels()); diff != "" {
		t.Fatalf("prompts mismatch (-want +got):\n%s", diff)
	}
	wantSelects := [][]string{{"미정", "고급", "중급"}, {"미정"}}
	if diff := cmp.Diff(wantSelects, driver.choices()); diff != "" {
		t.Fatalf("select options mismatch (-want +got):\n%s", diff)
	}

	var payload map[string]any
	if err := json.Unmarshal(out, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	want := map[string]any{
		"id":       nil,
		"name":     "홍길동",
		"email":    "hong@example.com",
		"phone":    "010-1234-5678",
		"memo":     "메모",
		"career":   float64(12),
		"joinedAt": "2024-03-01",
		"useYn":    "N",
		"grade":    "A",
		"region":   nil,
	}
	if diff := cmp.Diff(want, payload); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderRepromptsInvalidAnswers(t *testing.T) {
	driver := &scriptDriver{answers: []Answer{
		text(""), text("홍길동"), text("bad"), text(""), text(""), text(""),
		text("x"), text("3"), text(""), yes(true), pick(0), pick(0),
	}}
	r := newScriptRenderer(t, driver)
	state := form.New(testsupport.MembersSchema(), nil)

	if err := r.Fill(context.Background(), state); err != nil {
		t.Fatalf("fill: %v", err)
	}
	want := []string{
		"! 이름: " + form.MsgRequired,
		"! 이메일: " + form.MsgEmail,
		"! 경력: " + form.MsgNumber,
	}
	if diff := cmp.Diff(want, driver.notices); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
	if got := state.Get("useYn"); got != "Y" {
		t.Fatalf("expected yes to map to Y, got %q", got)
	}
	if got := state.Get("career"); got != "3" {
		t.Fatalf("expected career 3, got %q", got)
	}
}

func TestFillKeepsUnknownChoiceAndDefaults(t *testing.T) {
	driver := &scriptDriver{answers: []Answer{
		text("홍길동"), text(""), text(""), text(""), text(""), text(""), yes(true), pick(1), pick(0),
	}}
	r := newScriptRenderer(t, driver)
	state := form.New(testsupport.MembersSchema(), map[string]any{"name": "홍길동", "grade": "Z", "useYn": true})

	if err := r.Fill(context.Background(), state); err != nil {
		t.Fatalf("fill: %v", err)
	}
	if diff := cmp.Diff([]string{"미정", "고급", "중급", "Z"}, driver.choices()[0]); diff != "" {
		t.Fatalf("grade options mismatch (-want +got):\n%s", diff)
	}
	if got := state.Get("grade"); got != "A" {
		t.Fatalf("expected grade A, got %q", got)
	}
	if state.Dirty("name") || state.Dirty("useYn") {
		t.Fatalf("unchanged answers must not mark fields dirty: %v", state.DirtyKeys())
	}
}

func TestFillPropagatesAbort(t *testing.T) {
	driver := &scriptDriver{}
	r := newScriptRenderer(t, driver)
	err := r.Fill(context.Background(), form.New(testsupport.MembersSchema(), nil))
	if err == nil || !strings.Contains(err.Error(), `field "name"`) {
		t.Fatalf("expected driver error for name, got %v", err)
	}
}

func TestSummaryShowsLabels(t *testing.T) {
	out := RecordSummary(testsupport.MembersSchema(), map[string]any{
		"name":  "홍길동",
		"useYn": false,
		"grade": "B",
		"memo":  "줄1\n줄2",
	})
	testsupport.AssertContains(t, out, "이름: 홍길동\n", "사용 여부: 아니오\n", "등급: 중급\n", "지역: 미정\n", "메모: 줄1 줄2\n")
	testsupport.AssertNotContains(t, out, "ID:")
}

func TestSummaryRedactsSensitiveFields(t *testing.T) {
	out := RecordSummary(testsupport.MembersSchema(), map[string]any{
		"name":       "홍길동",
		"residentNo": "900101-1234567",
	})
	testsupport.AssertContains(t, out, "주민등록번호: 900*********67\n")
	testsupport.AssertNotContains(t, out, "1234")
}

func TestPrettyOutput(t *testing.T) {
	driver := &scriptDriver{answers: []Answer{
		text("홍길동"), text(""), text(""), text(""), text(""), text(""), yes(true), pick(0), pick(0),
	}}
	r := newScriptRenderer(t, driver, WithOutputFormat(OutputFormatPrettyText))
	if got := r.ContentType(); got != "text/plain" {
		t.Fatalf("expected text/plain, got %q", got)
	}
	out, err := r.Render(context.Background(), form.New(testsupport.MembersSchema(), nil))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	testsupport.AssertContains(t, string(out), "이름: 홍길동\n", "사용 여부: 예\n")
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(WithPromptDriver(&scriptDriver{}), WithOutputFormat("xml")); err == nil {
		t.Fatalf("expected unknown format to fail")
	}
}
