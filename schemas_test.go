package gridform

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-gridform/pkg/model"
)

func TestBuiltinSchemasLoad(t *testing.T) {
	store, err := LoadSchemas()
	if err != nil {
		t.Fatalf("load schemas: %v", err)
	}

	want := []string{"engineers", "machine-projects", "members", "safety-projects"}
	if diff := cmp.Diff(want, store.Entities()); diff != "" {
		t.Fatalf("entities mismatch (-want +got):\n%s", diff)
	}

	members, _ := store.Schema("members")
	if got := members.HeaderMapping().Keys(); got[0] != "name" || got[len(got)-1] != "useYn" {
		t.Fatalf("expected declared column order, got %v", got)
	}

	machine, _ := store.Schema("machine-projects")
	status, ok := machine.Field("status")
	if !ok || status.Kind != model.KindMultiChoice {
		t.Fatalf("expected status multichoice, got %+v", status)
	}
	if opts := status.ControlOptions(); len(opts) != 1 || opts[0].Label != model.UnsetLabel {
		t.Fatalf("expected placeholder option, got %v", opts)
	}
}
