package vanilla

import (
	"testing"

	"github.com/goliatone/go-gridform/pkg/form"
)

func TestClassesForVisual(t *testing.T) {
	classes := DefaultClasses()
	cases := []struct {
		visual form.Visual
		want   string
	}{
		{form.VisualNormal, "gf-control"},
		{form.VisualError, "gf-control gf-control--error"},
		{form.VisualDirty, "gf-control gf-control--dirty"},
		{form.VisualDisabled, "gf-control gf-control--disabled"},
	}
	for _, tc := range cases {
		if got := classes.ForVisual(tc.visual); got != tc.want {
			t.Errorf("ForVisual(%q) = %q, want %q", tc.visual, got, tc.want)
		}
	}
}

func TestClassesFromTokens(t *testing.T) {
	classes := ClassesFromTokens(map[string]string{
		"class.control":       " input  input-bordered ",
		"class.control.error": "input-error",
		"brand":               "#123456",
	})
	if got := classes.ForVisual(form.VisualError); got != "input input-bordered input-error" {
		t.Fatalf("unexpected classes %q", got)
	}
	if classes.Field != "gf-field" {
		t.Fatalf("expected default field class, got %q", classes.Field)
	}
}
