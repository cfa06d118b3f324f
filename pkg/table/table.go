// Package table wraps sorting and row selection state around a page of rows.
// Filtering and pagination are manual: the instance renders exactly the rows it
// is given and only raises sort and selection intent to its owner.
package table

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-gridform/pkg/columns"
)

// SortDirection is the sort state of a column.
type SortDirection string

const (
	SortNone SortDirection = ""
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Sorting is the active sort. An empty ColumnID means unsorted.
type Sorting struct {
	ColumnID  string
	Direction SortDirection
}

// Selection is the set of selected row IDs.
type Selection map[string]bool

// Clone returns a copy of s.
func (s Selection) Clone() Selection {
	out := make(Selection, len(s))
	for id, selected := range s {
		if selected {
			out[id] = true
		}
	}
	return out
}

// Config describes a table instance.
type Config[T any] struct {
	Rows              []T
	Columns           []columns.Descriptor[T]
	RowID             func(T) string
	Selection         Selection
	OnSelectionChange func(Selection)
	Sorting           Sorting
	OnSortChange      func(Sorting)
	PageSize          int
	EnableSorting     bool
	EnableSelection   bool
}

// HeaderCell is one header of the single header group.
type HeaderCell struct {
	ID            string
	Label         string
	CanSort       bool
	SortDirection SortDirection
}

// HeaderGroup is a row of header cells.
type HeaderGroup struct {
	Headers []HeaderCell
}

// Cell is a rendered cell.
type Cell struct {
	ColumnID string
	Value    string
}

// RowView is a row in display order.
type RowView[T any] struct {
	ID       string
	Index    int
	Original T
	Cells    []Cell
	Selected bool
	// Keyed is false when ID is the load index because RowID returned "".
	Keyed    bool
}

// Instance is the table handle.
type Instance[T any] struct {
	cfg       Config[T]
	selection Selection
	sorting   Sorting
}

// New builds an instance. Selected IDs that are not on the current page are
// dropped.
func New[T any](cfg Config[T]) *Instance[T] {
	if cfg.RowID == nil {
		cfg.RowID = func(T) string { return "" }
	}
	inst := &Instance[T]{
		cfg:       cfg,
		selection: make(Selection),
		sorting:   cfg.Sorting,
	}
	present := make(map[string]struct{}, len(cfg.Rows))
	for idx, row := range cfg.Rows {
		present[inst.rowID(idx, row)] = struct{}{}
	}
	for id, selected := range cfg.Selection {
		if _, ok := present[id]; ok && selected {
			inst.selection[id] = true
		}
	}
	if !inst.canSort(inst.sorting.ColumnID) {
		inst.sorting = Sorting{}
	}
	return inst
}

// Manual reports that filtering and pagination are owned by the caller.
func (t *Instance[T]) Manual() bool { return true }

// PageSize returns the configured page size.
func (t *Instance[T]) PageSize() int { return t.cfg.PageSize }

// Len returns the number of loaded rows.
func (t *Instance[T]) Len() int { return len(t.cfg.Rows) }

// HeaderGroups returns the header rows.
func (t *Instance[T]) HeaderGroups() []HeaderGroup {
	group := HeaderGroup{Headers: make([]HeaderCell, 0, len(t.cfg.Columns))}
	for _, col := range t.cfg.Columns {
		cell := HeaderCell{
			ID:      col.ID,
			Label:   col.Header,
			CanSort: t.canSort(col.ID),
		}
		if t.sorting.ColumnID == col.ID {
			cell.SortDirection = t.sorting.Direction
		}
		group.Headers = append(group.Headers, cell)
	}
	return []HeaderGroup{group}
}

// RowModel returns the loaded rows in display order.
func (t *Instance[T]) RowModel() []RowView[T] {
	views := make([]RowView[T], 0, len(t.cfg.Rows))
	for idx, row := range t.cfg.Rows {
		id := t.rowID(idx, row)
		view := RowView[T]{
			ID:       id,
			Index:    idx,
			Original: row,
			Cells:    make([]Cell, 0, len(t.cfg.Columns)),
			Selected: t.selection[id],
			Keyed:    t.cfg.RowID(row) != "",
		}
		for _, col := range t.cfg.Columns {
			value := ""
			if col.Cell != nil {
				value = col.Cell(row)
			}
			view.Cells = append(view.Cells, Cell{ColumnID: col.ID, Value: value})
		}
		views = append(views, view)
	}

	if t.sorting.ColumnID == "" || t.sorting.Direction == SortNone {
		return views
	}
	colIdx := t.columnIndex(t.sorting.ColumnID)
	if colIdx < 0 {
		return views
	}
	desc := t.sorting.Direction == SortDesc
	sort.SliceStable(views, func(i, j int) bool {
		a, b := views[i].Cells[colIdx].Value, views[j].Cells[colIdx].Value
		if desc {
			return compareCells(b, a) < 0
		}
		return compareCells(a, b) < 0
	})
	return views
}

// Sorting returns the active sort.
func (t *Instance[T]) Sorting() Sorting { return t.sorting }

// SetSorting replaces the active sort. Unsortable columns are ignored.
func (t *Instance[T]) SetSorting(s Sorting) {
	if s.ColumnID != "" && !t.canSort(s.ColumnID) {
		return
	}
	if s.Direction == SortNone {
		s = Sorting{}
	}
	t.sorting = s
	if t.cfg.OnSortChange != nil {
		t.cfg.OnSortChange(s)
	}
}

// ToggleSort cycles a column through asc, desc and unsorted.
func (t *Instance[T]) ToggleSort(columnID string) {
	if !t.canSort(columnID) {
		return
	}
	t.SetSorting(t.NextSort(columnID))
}

// NextSort returns the sort ToggleSort(columnID) would apply.
func (t *Instance[T]) NextSort(columnID string) Sorting {
	if !t.canSort(columnID) {
		return t.sorting
	}
	next := Sorting{ColumnID: columnID, Direction: SortAsc}
	if t.sorting.ColumnID == columnID {
		switch t.sorting.Direction {
		case SortAsc:
			next.Direction = SortDesc
		case SortDesc:
			next = Sorting{}
		}
	}
	return next
}

// EnableSelection reports whether rows can be selected.
func (t *Instance[T]) EnableSelection() bool { return t.cfg.EnableSelection }

// IsSelected reports whether the row is selected.
func (t *Instance[T]) IsSelected(id string) bool { return t.selection[id] }

// Selection returns a copy of the selected IDs.
func (t *Instance[T]) Selection() Selection { return t.selection.Clone() }

// ToggleRow flips the selection of one loaded row.
func (t *Instance[T]) ToggleRow(id string) {
	if !t.cfg.EnableSelection || !t.hasRow(id) {
		return
	}
	if t.selection[id] {
		delete(t.selection, id)
	} else {
		t.selection[id] = true
	}
	t.emitSelection()
}

// SelectAll selects every loaded row.
func (t *Instance[T]) SelectAll() {
	if !t.cfg.EnableSelection {
		return
	}
	for idx, row := range t.cfg.Rows {
		t.selection[t.rowID(idx, row)] = true
	}
	t.emitSelection()
}

// AllSelected reports whether every loaded row is selected.
func (t *Instance[T]) AllSelected() bool {
	if len(t.cfg.Rows) == 0 {
		return false
	}
	for idx, row := range t.cfg.Rows {
		if !t.selection[t.rowID(idx, row)] {
			return false
		}
	}
	return true
}

// ClearSelection deselects every row.
func (t *Instance[T]) ClearSelection() {
	if len(t.selection) == 0 {
		return
	}
	t.selection = make(Selection)
	t.emitSelection()
}

// SelectedRows returns the selected rows in load order.
func (t *Instance[T]) SelectedRows() []T {
	var out []T
	for idx, row := range t.cfg.Rows {
		if t.selection[t.rowID(idx, row)] {
			out = append(out, row)
		}
	}
	return out
}

func (t *Instance[T]) emitSelection() {
	if t.cfg.OnSelectionChange != nil {
		t.cfg.OnSelectionChange(t.selection.Clone())
	}
}

func (t *Instance[T]) rowID(idx int, row T) string {
	if id := t.cfg.RowID(row); id != "" {
		return id
	}
	return strconv.Itoa(idx)
}

func (t *Instance[T]) hasRow(id string) bool {
	for idx, row := range t.cfg.Rows {
		if t.rowID(idx, row) == id {
			return true
		}
	}
	return false
}

func (t *Instance[T]) canSort(columnID string) bool {
	if !t.cfg.EnableSorting || columnID == "" {
		return false
	}
	idx := t.columnIndex(columnID)
	return idx >= 0 && t.cfg.Columns[idx].Sortable
}

func (t *Instance[T]) columnIndex(columnID string) int {
	for idx, col := range t.cfg.Columns {
		if col.ID == columnID {
			return idx
		}
	}
	return -1
}

// compareCells orders numerically when both sides parse as numbers, otherwise
// lexically. NaN never counts as a number, so the order stays transitive.
func compareCells(a, b string) int {
	fa, okA := cellNumber(a)
	fb, okB := cellNumber(b)
	if okA && okB {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a, b)
}

func cellNumber(value string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}
