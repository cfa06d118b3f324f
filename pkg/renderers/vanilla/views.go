package vanilla

import (
	"strings"

	"github.com/goliatone/go-gridform/pkg/appctx"
	"github.com/goliatone/go-gridform/pkg/form"
	"github.com/goliatone/go-gridform/pkg/model"
	"github.com/goliatone/go-gridform/pkg/modal"
	"github.com/goliatone/go-gridform/pkg/queryparam"
	"github.com/goliatone/go-gridform/pkg/render"
	"github.com/goliatone/go-gridform/pkg/table"
)

// FormView is the input of RenderForm.
type FormView struct {
	ID     string
	Action string
	State  *form.State
	Hidden []render.HiddenField
	// ChangeURL returns the live update endpoint of a field. Nil disables
	// live updates.
	ChangeURL func(key string) string
	// Reveal returns the reveal state of a sensitive field.
	Reveal func(key string) *RevealView
	HTMX   bool
}

// RefreshEvent is the htmx event that reloads rendered tables.
const RefreshEvent = "gf-refresh"

// FormID returns the element id of the form of entity.
func FormID(entity string) string {
	return "gf-form-" + entity
}

// HeaderView is one column header.
type HeaderView struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	CanSort   bool   `json:"canSort"`
	Direction string `json:"direction,omitempty"`
	AriaSort  string `json:"ariaSort,omitempty"`
	SortURL   string `json:"sortUrl,omitempty"`
}

// RowView is one rendered row.
type RowView struct {
	ID       string   `json:"id"`
	Cells    []string `json:"cells"`
	Selected bool     `json:"selected,omitempty"`
	EditURL  string   `json:"editUrl,omitempty"`
	// Keyed rows carry a record id and can be edited or selected.
	Keyed    bool     `json:"keyed,omitempty"`
}

// FilterOption is one choice of a select filter.
type FilterOption struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected,omitempty"`
}

// FilterView is one filter control. Filters with options render as selects.
type FilterView struct {
	Key     string         `json:"key"`
	Label   string         `json:"label"`
	Value   string         `json:"value"`
	Options []FilterOption `json:"options,omitempty"`
}

// SizeOption is one page size choice.
type SizeOption struct {
	Value    int  `json:"value"`
	Selected bool `json:"selected,omitempty"`
}

// PaginationView describes the pager. Page is one-based for display.
type PaginationView struct {
	Page    int          `json:"page"`
	Pages   int          `json:"pages"`
	Size    int          `json:"size"`
	Total   int          `json:"total"`
	HasPrev bool         `json:"hasPrev"`
	HasNext bool         `json:"hasNext"`
	PrevURL string       `json:"prevUrl,omitempty"`
	NextURL string       `json:"nextUrl,omitempty"`
	Sizes   []SizeOption `json:"sizes"`
}

// TableView is the input of RenderTable.
type TableView struct {
	Entity     string         `json:"entity"`
	Title      string         `json:"title"`
	Headers    []HeaderView   `json:"headers"`
	Rows       []RowView      `json:"rows"`
	Selectable bool           `json:"selectable"`
	Editable   bool           `json:"editable"`
	Filters    []FilterView   `json:"filters,omitempty"`
	FilterURL  string         `json:"filterUrl,omitempty"`
	NewURL     string         `json:"newUrl,omitempty"`
	DeleteURL  string         `json:"deleteUrl,omitempty"`
	// RefreshURL reloads the table when the gf-refresh event fires.
	RefreshURL string         `json:"refreshUrl,omitempty"`
	Pagination PaginationView `json:"pagination"`
}

// TableLinks resolves the URLs a table emits.
type TableLinks struct {
	// Sort returns the URL applying s.
	Sort func(s table.Sorting) string
	// Edit returns the URL opening the edit modal of a row. Nil hides the
	// edit column.
	Edit func(rowID string) string
}

// BuildTable projects the headers and rows of inst.
func BuildTable[T any](inst *table.Instance[T], links TableLinks) TableView {
	view := TableView{Selectable: inst.EnableSelection(), Editable: links.Edit != nil}
	for _, group := range inst.HeaderGroups() {
		for _, header := range group.Headers {
			hv := HeaderView{
				ID:        header.ID,
				Label:     header.Label,
				CanSort:   header.CanSort,
				Direction: string(header.SortDirection),
			}
			switch header.SortDirection {
			case table.SortAsc:
				hv.AriaSort = "ascending"
			case table.SortDesc:
				hv.AriaSort = "descending"
			}
			if header.CanSort && links.Sort != nil {
				hv.SortURL = links.Sort(inst.NextSort(header.ID))
			}
			view.Headers = append(view.Headers, hv)
		}
	}
	for _, row := range inst.RowModel() {
		rv := RowView{ID: row.ID, Selected: row.Selected, Keyed: row.Keyed, Cells: make([]string, 0, len(row.Cells))}
		for _, cell := range row.Cells {
			rv.Cells = append(rv.Cells, cell.Value)
		}
		if links.Edit != nil && row.Keyed {
			rv.EditURL = links.Edit(row.ID)
		}
		view.Rows = append(view.Rows, rv)
	}
	return view
}

// FiltersFor builds the filter controls of the filterable fields of schema.
// Yes/no and multi-choice fields render as selects.
func FiltersFor(schema model.Schema, state queryparam.TableQueryState) []FilterView {
	var filters []FilterView
	for _, field := range schema.Fields {
		if !field.Filterable {
			continue
		}
		value := state.Filters[field.Key]
		fv := FilterView{Key: field.Key, Label: labelFor(field), Value: value}
		if field.Kind == model.KindYesNo || field.Kind == model.KindMultiChoice {
			for _, opt := range field.ControlOptions() {
				if opt.Value == "" {
					continue
				}
				fv.Options = append(fv.Options, FilterOption{Value: opt.Value, Label: opt.Label, Selected: opt.Value == value})
			}
		}
		filters = append(filters, fv)
	}
	return filters
}

// PaginationFor builds the pager from the adapter state and the total row count
// reported by the backend.
func PaginationFor(adapter *queryparam.Adapter, total int) PaginationView {
	state := adapter.State()
	pages := 1
	if state.Size > 0 && total > 0 {
		pages = (total + state.Size - 1) / state.Size
	}
	view := PaginationView{
		Page:    state.Page + 1,
		Pages:   pages,
		Size:    state.Size,
		Total:   total,
		HasPrev: state.Page > 0,
		HasNext: state.Page+1 < pages,
	}
	if view.HasPrev {
		view.PrevURL = adapter.Href(map[string]any{queryparam.ParamPage: state.Page - 1})
	}
	if view.HasNext {
		view.NextURL = adapter.Href(map[string]any{queryparam.ParamPage: state.Page + 1})
	}
	for _, size := range queryparam.AllowedSizes {
		view.Sizes = append(view.Sizes, SizeOption{Value: size, Selected: size == state.Size})
	}
	return view
}

// SortHref returns a TableLinks.Sort implementation writing the sort into the
// adapter URL.
func SortHref(adapter *queryparam.Adapter) func(table.Sorting) string {
	return func(s table.Sorting) string {
		return adapter.Href(map[string]any{
			queryparam.ParamSort: queryparam.FormatSort(s.ColumnID, string(s.Direction)),
			queryparam.ParamPage: 0,
		})
	}
}

// ActionKind styles a modal footer button.
type ActionKind string

const (
	ActionPrimary   ActionKind = "primary"
	ActionSecondary ActionKind = "secondary"
	ActionModify    ActionKind = "modify"
	ActionDanger    ActionKind = "danger"
)

type actionView struct {
	Label    string     `json:"label"`
	URL      string     `json:"url,omitempty"`
	Method   string     `json:"method,omitempty"`
	Kind     ActionKind `json:"kind"`
	Submit   bool       `json:"submit,omitempty"`
	Disabled bool       `json:"disabled,omitempty"`
}

// ModalView is the input of RenderModal.
type ModalView struct {
	State    modal.State
	Slots    modal.Slots
	FormID   string
	CloseURL string
	// Body is the rendered content, usually a form.
	Body string
	// Confirm is a rendered confirmation dialog shown over the body.
	Confirm string
}

// ConfirmView is the input of RenderConfirm.
type ConfirmView struct {
	Message      string               `json:"message"`
	ConfirmLabel string               `json:"confirmLabel"`
	CancelLabel  string               `json:"cancelLabel"`
	ConfirmURL   string               `json:"confirmUrl"`
	CancelURL    string               `json:"cancelUrl"`
	Hidden       []render.HiddenField `json:"hidden,omitempty"`
	Busy         bool                 `json:"busy,omitempty"`
}

// DeleteConfirmView returns the confirmation for deleting records.
func DeleteConfirmView(confirmURL, cancelURL string, hidden ...render.HiddenField) ConfirmView {
	return ConfirmView{
		Message:      modal.DeleteMessage,
		ConfirmLabel: modal.DeleteConfirmLabel,
		CancelLabel:  modal.DeleteCancelLabel,
		ConfirmURL:   confirmURL,
		CancelURL:    cancelURL,
		Hidden:       hidden,
	}
}

// DiscardConfirmView returns the confirmation for closing a dirty form.
func DiscardConfirmView(discardURL, cancelURL string, hidden ...render.HiddenField) ConfirmView {
	return ConfirmView{
		Message:      modal.DiscardMessage,
		ConfirmLabel: modal.DiscardLabel,
		CancelLabel:  modal.DeleteCancelLabel,
		ConfirmURL:   discardURL,
		CancelURL:    cancelURL,
		Hidden:       hidden,
	}
}

// NavItem is one entry of the page navigation.
type NavItem struct {
	Title  string `json:"title"`
	Href   string `json:"href"`
	Icon   string `json:"icon,omitempty"`
	Active bool   `json:"active,omitempty"`
}

// PageView is the input of RenderPage.
type PageView struct {
	Title         string
	Nav           []NavItem
	User          *appctx.User
	Notifications []appctx.Notification
	Content       string
	Modal         string
	// Components lists the component names used by Content so their assets
	// are linked.
	Components []string
}

func displayUser(user *appctx.User) string {
	if user == nil {
		return ""
	}
	if name := strings.TrimSpace(user.Name); name != "" {
		return name
	}
	return user.ID
}
