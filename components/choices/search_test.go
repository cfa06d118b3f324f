package choices

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-gridform/pkg/model"
)

var grades = []model.Option{
	{Value: "S", Label: "특급"},
	{Value: "A", Label: "고급"},
	{Value: "B", Label: "중급"},
	{Value: "C", Label: "초급"},
}

func TestSearch_PrefixBeforeContainsKeepsDeclarationOrder(t *testing.T) {
	opts := NewOptions(WithEmptySearchMode(EmptySearchNone))

	got := Search([]model.Option{
		{Value: "x-ab", Label: "x-ab"},
		{Value: "ab", Label: "ab"},
		{Value: "zab", Label: "zab"},
		{Value: "abc", Label: "abc"},
	}, "AB", 10, opts)
	want := []string{"ab", "abc", "x-ab", "zab"}
	values := make([]string, len(got))
	for i, opt := range got {
		values[i] = opt.Value
	}
	if diff := cmp.Diff(want, values); diff != "" {
		t.Fatalf("ordering mismatch (-want +got):\n%s", diff)
	}
}

func TestSearch_MatchesValue(t *testing.T) {
	got := Search(grades, "b", 10, NewOptions())
	if diff := cmp.Diff([]model.Option{{Value: "B", Label: "중급"}}, got); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestSearch_LimitApplied(t *testing.T) {
	opts := NewOptions(WithDefaultLimit(2), WithMaxLimit(3))

	if got := Search(grades, "", 0, opts); len(got) != 2 {
		t.Fatalf("expected default limit of 2, got %d", len(got))
	}
	if got := Search(grades, "", 10, opts); len(got) != 3 {
		t.Fatalf("expected max limit of 3, got %d", len(got))
	}
	if got := Search(grades, "", -1, opts); got != nil {
		t.Fatalf("expected negative limit to yield nothing, got %#v", got)
	}
}

func TestSearch_EmptyQueryModes(t *testing.T) {
	if got := Search(grades, " ", 10, NewOptions(WithEmptySearchMode(EmptySearchNone))); got != nil {
		t.Fatalf("expected no results, got %#v", got)
	}
	if got := Search(grades, "", 10, NewOptions()); len(got) != len(grades) {
		t.Fatalf("expected all options, got %d", len(got))
	}
}
