// Package testsupport holds fixtures and assertions shared by package tests.
package testsupport

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/goliatone/go-gridform/pkg/model"
	"github.com/goliatone/go-gridform/pkg/schema"
)

// MembersSchema returns a small schema covering every field kind.
func MembersSchema() model.Schema {
	return model.Schema{
		Entity:   "members",
		Title:    "회원 관리",
		Resource: "members",
		Fields: []model.FieldMetadata{
			{Key: "id", Label: "ID", Kind: model.KindText, Disabled: true, Hidden: true},
			{Key: "name", Label: "이름", Kind: model.KindText, Required: true, Filterable: true, Sortable: true},
			{Key: "email", Label: "이메일", Kind: model.KindText, Rule: model.RuleEmail, Filterable: true},
			{Key: "phone", Label: "연락처", Kind: model.KindText, Rule: model.RulePhone},
			{Key: "memo", Label: "메모", Kind: model.KindLongText},
			{Key: "career", Label: "경력", Kind: model.KindNumber, Sortable: true},
			{Key: "joinedAt", Label: "가입일", Kind: model.KindDate},
			{Key: "useYn", Label: "사용 여부", Kind: model.KindYesNo, Filterable: true},
			{Key: "grade", Label: "등급", Kind: model.KindMultiChoice, Filterable: true, Options: []model.Option{
				{Value: "A", Label: "고급"},
				{Value: "B", Label: "중급"},
			}},
			{Key: "region", Label: "지역", Kind: model.KindMultiChoice},
			{Key: "residentNo", Label: "주민등록번호", Kind: model.KindText, Sensitive: true, Disabled: true},
		},
	}
}

// MustParseSchema parses an inline JSON or YAML schema document.
func MustParseSchema(t *testing.T, doc string) model.Schema {
	t.Helper()
	parsed, err := schema.Parse([]byte(doc), "inline.yaml")
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}
	if err := parsed.Validate(); err != nil {
		t.Fatalf("validate schema: %v", err)
	}
	return parsed
}

// MustStore builds a schema store.
func MustStore(t *testing.T, schemas ...model.Schema) *schema.Store {
	t.Helper()
	store, err := schema.NewStore(schemas...)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}
	return out, buf.String()
}

// AssertContains fails when any fragment is missing from output.
func AssertContains(t *testing.T, output string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if !strings.Contains(output, fragment) {
			t.Errorf("expected output to contain %q\noutput:\n%s", fragment, output)
		}
	}
}

// AssertNotContains fails when any fragment is present in output.
func AssertNotContains(t *testing.T, output string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if strings.Contains(output, fragment) {
			t.Errorf("expected output not to contain %q\noutput:\n%s", fragment, output)
		}
	}
}

// AssertOrder fails unless the fragments appear in output in the given order.
func AssertOrder(t *testing.T, output string, fragments ...string) {
	t.Helper()
	offset := 0
	for _, fragment := range fragments {
		idx := strings.Index(output[offset:], fragment)
		if idx < 0 {
			t.Fatalf("expected %q after offset %d\noutput:\n%s", fragment, offset, output)
		}
		offset += idx + len(fragment)
	}
}
