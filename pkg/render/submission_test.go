package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-gridform/pkg/render"
)

func TestHiddenFieldsSortsAndDeduplicates(t *testing.T) {
	got := render.HiddenFields(
		render.Hidden(" selected ", "m-1"),
		render.VersionField(4),
		render.SessionField("b7d1"),
		render.Hidden("  ", "skip"),
		render.Hidden("selected", "m-2"),
	)
	want := []render.HiddenField{
		{Name: "_session", Value: "b7d1"},
		{Name: "selected", Value: "m-2"},
		{Name: "version", Value: "4"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("hidden fields mismatch (-want +got):\n%s", diff)
	}
}

func TestVersionFieldSkipsUnsavedEntities(t *testing.T) {
	if got := render.HiddenFields(render.VersionField(0)); got != nil {
		t.Fatalf("expected no hidden fields, got %v", got)
	}
}
