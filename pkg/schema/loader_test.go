package schema

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-gridform/pkg/model"
)

func TestLoadFSParsesYAMLAndJSON(t *testing.T) {
	fsys := fstest.MapFS{
		"members.yaml": {Data: []byte(`
entity: members
title: 회원
fields:
  - key: name
    label: 이름
    required: true
  - key: useYn
    label: 사용
    kind: yesno
`)},
		"nested/engineers.json": {Data: []byte(`{
  "entity": "engineers",
  "resource": "/engineers/",
  "columns": {"name": "성명", "grade": "등급"},
  "fields": [
    {"key": "name", "label": "성명"},
    {"key": "grade", "label": "등급", "kind": "multichoice", "options": [{"value": "A", "label": "고급"}]}
  ]
}`)},
		"README.md": {Data: []byte("ignored")},
	}

	store, err := LoadFS(fsys)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff([]string{"engineers", "members"}, store.Entities()); diff != "" {
		t.Fatalf("entities mismatch (-want +got):\n%s", diff)
	}

	members, _ := store.Schema("members")
	want := []model.FieldMetadata{
		{Key: "name", Label: "이름", Kind: model.KindText, Required: true},
		{Key: "useYn", Label: "사용", Kind: model.KindYesNo},
	}
	if diff := cmp.Diff(want, members.Fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	if members.Resource != "members" {
		t.Fatalf("expected resource to default to entity, got %q", members.Resource)
	}

	engineers, _ := store.Schema("engineers")
	if engineers.Resource != "engineers" {
		t.Fatalf("expected trimmed resource, got %q", engineers.Resource)
	}
	if diff := cmp.Diff([]string{"name", "grade"}, engineers.HeaderMapping().Keys()); diff != "" {
		t.Fatalf("column order mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFSRejectsInvalidDocuments(t *testing.T) {
	cases := map[string]fstest.MapFS{
		"unknown kind": {"a.yaml": {Data: []byte("entity: a\nfields:\n  - key: x\n    kind: slider\n")}},
		"duplicate": {
			"a.yaml": {Data: []byte("entity: dup\nfields: []\n")},
			"b.yaml": {Data: []byte("entity: dup\nfields: []\n")},
		},
		"empty":   {"a.yaml": {Data: []byte("   ")}},
		"garbage": {"a.yaml": {Data: []byte("fields: [unclosed")}},
	}
	for name, fsys := range cases {
		if _, err := LoadFS(fsys); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestLoadFSNil(t *testing.T) {
	store, err := LoadFS(nil)
	if err != nil || !store.Empty() {
		t.Fatalf("expected empty store, got %v (%v)", store, err)
	}
}

func TestEntityDefaultsToFileName(t *testing.T) {
	parsed, err := Parse([]byte("fields:\n  - key: name\n"), "schemas/safety-projects.yaml")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed.Entity != "safety-projects" {
		t.Fatalf("expected entity from file name, got %q", parsed.Entity)
	}
	if parsed.Fields[0].Label != "name" {
		t.Fatalf("expected label to default to key, got %q", parsed.Fields[0].Label)
	}
}

func TestSanitizeIconRemovesScripts(t *testing.T) {
	got := SanitizeIcon(`  <svg><script>alert('x')</script><path d="M0 0h24v24H0z" onclick="x()"/></svg>`)
	if strings.Contains(got, "script") || strings.Contains(got, "onclick") {
		t.Fatalf("expected script and handlers removed, got %q", got)
	}
	if !strings.Contains(got, "<svg") || !strings.Contains(got, "<path") {
		t.Fatalf("expected svg/path to remain, got %q", got)
	}
}

func TestSanitizeText(t *testing.T) {
	if got := SanitizeText(`<b>조회</b> 후 &amp; 확인<script>x</script>`); got != "조회 후 & 확인" {
		t.Fatalf("unexpected sanitized text %q", got)
	}
}

const openapiDoc = `{
  "openapi": "3.0.3",
  "info": {"title": "admin", "version": "1.0.0"},
  "paths": {},
  "components": {
    "schemas": {
      "Engineer": {
        "type": "object",
        "x-gridform-entity": "engineers",
        "x-gridform-title": "기술인력",
        "required": ["name"],
        "properties": {
          "name": {"type": "string", "x-gridform-label": "성명", "x-gridform-order": 1, "x-gridform-filterable": true},
          "career": {"type": "integer", "x-gridform-label": "경력", "x-gridform-order": 2},
          "grade": {"type": "string", "enum": ["A", "B"], "x-gridform-enum-labels": {"A": "고급"}, "x-gridform-order": 3},
          "email": {"type": "string", "format": "email", "x-gridform-order": 4},
          "hiredOn": {"type": "string", "format": "date", "x-gridform-order": 5},
          "bio": {"type": "string", "maxLength": 2000, "x-gridform-order": 6},
          "activeYn": {"type": "string", "x-gridform-kind": "yesno", "x-gridform-order": 7},
          "id": {"type": "string", "readOnly": true, "x-gridform-hidden": true}
        }
      },
      "Unrelated": {"type": "object", "properties": {"x": {"type": "string"}}}
    }
  }
}`

func TestFromOpenAPI(t *testing.T) {
	schemas, err := FromOpenAPI(context.Background(), []byte(openapiDoc))
	if err != nil {
		t.Fatalf("from openapi: %v", err)
	}
	if len(schemas) != 1 {
		t.Fatalf("expected one schema, got %d", len(schemas))
	}
	got := schemas[0]
	if got.Entity != "engineers" || got.Title != "기술인력" || got.Resource != "engineers" {
		t.Fatalf("unexpected schema header %+v", got)
	}

	want := []model.FieldMetadata{
		{Key: "name", Label: "성명", Kind: model.KindText, Required: true, Filterable: true},
		{Key: "career", Label: "경력", Kind: model.KindNumber},
		{Key: "grade", Label: "grade", Kind: model.KindMultiChoice, Options: []model.Option{{Value: "A", Label: "고급"}, {Value: "B", Label: "B"}}},
		{Key: "email", Label: "email", Kind: model.KindText, Rule: model.RuleEmail},
		{Key: "hiredOn", Label: "hiredOn", Kind: model.KindDate},
		{Key: "bio", Label: "bio", Kind: model.KindLongText},
		{Key: "activeYn", Label: "activeYn", Kind: model.KindYesNo},
		{Key: "id", Label: "id", Kind: model.KindText, Disabled: true, Hidden: true},
	}
	if diff := cmp.Diff(want, got.Fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
}
