package table

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-gridform/pkg/columns"
	"github.com/goliatone/go-gridform/pkg/model"
)

func fixture() ([]columns.MapRow, []columns.Descriptor[columns.MapRow]) {
	rows := []columns.MapRow{
		{"id": "m-1", "name": "박", "career": float64(10), "grade": "중급"},
		{"id": "m-2", "name": "김", "career": float64(2), "grade": "초급"},
		{"id": "m-3", "name": "이", "career": float64(10), "grade": "고급"},
		{"id": "m-4", "name": "최", "career": float64(9), "grade": "초급"},
	}
	cols := columns.Build[columns.MapRow](
		model.Headers{{Key: "name", Label: "성명"}, {Key: "career", Label: "경력"}, {Key: "grade", Label: "등급"}},
		columns.WithSortable[columns.MapRow]("career", "name"),
	)
	return rows, cols
}

func rowID(r columns.MapRow) string {
	id, _ := r["id"].(string)
	return id
}

func ids(views []RowView[columns.MapRow]) []string {
	out := make([]string, len(views))
	for i, v := range views {
		out[i] = v.ID
	}
	return out
}

func TestRowModelRendersGivenRowsOnly(t *testing.T) {
	rows, cols := fixture()
	inst := New(Config[columns.MapRow]{Rows: rows, Columns: cols, RowID: rowID, PageSize: 10})

	if !inst.Manual() {
		t.Fatalf("expected manual mode")
	}
	got := inst.RowModel()
	if diff := cmp.Diff([]string{"m-1", "m-2", "m-3", "m-4"}, ids(got)); diff != "" {
		t.Fatalf("row order mismatch (-want +got):\n%s", diff)
	}
	if got[1].Cells[1].Value != "2" {
		t.Fatalf("expected career cell 2, got %q", got[1].Cells[1].Value)
	}
}

func TestSortIsStableWithinPage(t *testing.T) {
	rows, cols := fixture()
	var events []Sorting
	inst := New(Config[columns.MapRow]{
		Rows:          rows,
		Columns:       cols,
		RowID:         rowID,
		EnableSorting: true,
		OnSortChange:  func(s Sorting) { events = append(events, s) },
	})

	inst.ToggleSort("career")
	if diff := cmp.Diff([]string{"m-2", "m-4", "m-1", "m-3"}, ids(inst.RowModel())); diff != "" {
		t.Fatalf("asc order mismatch (-want +got):\n%s", diff)
	}

	inst.ToggleSort("career")
	if diff := cmp.Diff([]string{"m-1", "m-3", "m-4", "m-2"}, ids(inst.RowModel())); diff != "" {
		t.Fatalf("desc order mismatch (-want +got):\n%s", diff)
	}

	inst.ToggleSort("career")
	if diff := cmp.Diff([]string{"m-1", "m-2", "m-3", "m-4"}, ids(inst.RowModel())); diff != "" {
		t.Fatalf("unsorted order mismatch (-want +got):\n%s", diff)
	}

	want := []Sorting{
		{ColumnID: "career", Direction: SortAsc},
		{ColumnID: "career", Direction: SortDesc},
		{},
	}
	if diff := cmp.Diff(want, events); diff != "" {
		t.Fatalf("sort events mismatch (-want +got):\n%s", diff)
	}
}

func TestSortIgnoresUnsortableColumns(t *testing.T) {
	rows, cols := fixture()
	inst := New(Config[columns.MapRow]{Rows: rows, Columns: cols, RowID: rowID, EnableSorting: true})

	inst.ToggleSort("grade")
	if inst.Sorting() != (Sorting{}) {
		t.Fatalf("expected grade to stay unsorted, got %+v", inst.Sorting())
	}

	headers := inst.HeaderGroups()[0].Headers
	if headers[2].CanSort || !headers[1].CanSort {
		t.Fatalf("unexpected CanSort flags: %+v", headers)
	}
}

func TestSelectionKeyedByRowID(t *testing.T) {
	rows, cols := fixture()
	var last Selection
	inst := New(Config[columns.MapRow]{
		Rows:              rows,
		Columns:           cols,
		RowID:             rowID,
		EnableSelection:   true,
		EnableSorting:     true,
		Selection:         Selection{"m-2": true, "other-page": true},
		OnSelectionChange: func(s Selection) { last = s },
	})

	if inst.IsSelected("other-page") {
		t.Fatalf("expected selection from another page to be dropped")
	}

	inst.ToggleRow("m-3")
	inst.ToggleSort("career")
	if diff := cmp.Diff(Selection{"m-2": true, "m-3": true}, last); diff != "" {
		t.Fatalf("selection mismatch (-want +got):\n%s", diff)
	}

	var selectedNames []string
	for _, row := range inst.SelectedRows() {
		selectedNames = append(selectedNames, row["name"].(string))
	}
	if diff := cmp.Diff([]string{"김", "이"}, selectedNames); diff != "" {
		t.Fatalf("selected rows mismatch (-want +got):\n%s", diff)
	}

	inst.ToggleRow("missing")
	if len(last) != 2 {
		t.Fatalf("expected unknown id to be ignored, got %v", last)
	}

	inst.SelectAll()
	if !inst.AllSelected() {
		t.Fatalf("expected all rows selected")
	}
	inst.ClearSelection()
	if len(inst.Selection()) != 0 || len(last) != 0 {
		t.Fatalf("expected cleared selection, got %v", last)
	}
}

func TestRowIDFallsBackToIndex(t *testing.T) {
	rows, cols := fixture()
	inst := New(Config[columns.MapRow]{Rows: rows, Columns: cols, EnableSelection: true})
	inst.ToggleRow("1")
	if !inst.IsSelected("1") {
		t.Fatalf("expected index based id")
	}
	for _, view := range inst.RowModel() {
		if view.Keyed {
			t.Fatalf("row %q must not be keyed without a RowID", view.ID)
		}
	}

	keyed := New(Config[columns.MapRow]{Rows: rows, Columns: cols, RowID: rowID})
	if views := keyed.RowModel(); !views[0].Keyed {
		t.Fatalf("expected row %q to be keyed", views[0].ID)
	}
}

func TestSortTreatsNaNAsText(t *testing.T) {
	rows := []columns.MapRow{
		{"id": "r-1", "career": "10"},
		{"id": "r-2", "career": "NaN"},
		{"id": "r-3", "career": "2"},
		{"id": "r-4", "career": "9"},
	}
	cols := columns.Build[columns.MapRow](
		model.Headers{{Key: "career", Label: "경력"}},
		columns.WithSortable[columns.MapRow]("career"),
	)
	inst := New(Config[columns.MapRow]{
		Rows:          rows,
		Columns:       cols,
		RowID:         rowID,
		EnableSorting: true,
		Sorting:       Sorting{ColumnID: "career", Direction: SortAsc},
	})
	if diff := cmp.Diff([]string{"r-3", "r-4", "r-1", "r-2"}, ids(inst.RowModel())); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if got := compareCells("NaN", "NaN"); got != 0 {
		t.Fatalf("expected equal text, got %d", got)
	}
	if got := compareCells("NaN", "5"); got <= 0 {
		t.Fatalf("expected NaN to sort lexically after 5, got %d", got)
	}
}
