package server

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/goliatone/go-gridform/pkg/apiclient"
	"github.com/goliatone/go-gridform/pkg/columns"
	"github.com/goliatone/go-gridform/pkg/form"
	"github.com/goliatone/go-gridform/pkg/model"
	"github.com/goliatone/go-gridform/pkg/queryparam"
	"github.com/goliatone/go-gridform/pkg/renderers/vanilla"
	"github.com/goliatone/go-gridform/pkg/table"
)

const headerCurrentURL = "HX-Current-URL"

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	sch := schemaFrom(r)
	u := *r.URL
	u.Path = entityPath(sch.Entity)
	html, err := s.renderTable(r.Context(), sch, &u)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if queryparam.IsHTMX(r) {
		s.writeFragment(w, r, html)
		return
	}
	s.writePage(w, r, sch, html, "")
}

// handleFilters applies the posted filters and page size in one replace
// navigation. Non-htmx clients are redirected; htmx gets the new table and
// an HX-Replace-Url header.
func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	sch := schemaFrom(r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	nav := queryparam.NewHTTPNavigator(w, r)
	adapter := queryparam.New(entityPath(sch.Entity), currentQuery(r, sch.Entity), nav, sch.FilterKeys()...)

	pairs := make(map[string]any, len(sch.FilterKeys())+2)
	for _, key := range sch.FilterKeys() {
		if _, posted := r.PostForm[key]; !posted {
			continue
		}
		if value := strings.TrimSpace(r.PostForm.Get(key)); value != "" {
			pairs[key] = value
		} else {
			pairs[key] = nil
		}
	}
	if raw := r.PostForm.Get(queryparam.ParamSize); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || !queryparam.ValidSize(size) {
			size = queryparam.DefaultSize
		}
		pairs[queryparam.ParamSize] = size
	}
	pairs[queryparam.ParamPage] = 0
	adapter.SetQueryParams(pairs)

	if nav.Flush() {
		return
	}
	target, err := url.Parse(nav.Location())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	html, err := s.renderTable(r.Context(), sch, target)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeFragment(w, r, html)
}

// currentQuery recovers the list query of the page that issued r, so filter
// posts keep the sort and size already in the URL.
func currentQuery(r *http.Request, entity string) url.Values {
	raw := r.Header.Get(headerCurrentURL)
	if raw == "" {
		raw = r.Referer()
	}
	if raw == "" {
		return url.Values{}
	}
	u, err := url.Parse(raw)
	if err != nil || u.Path != entityPath(entity) {
		return url.Values{}
	}
	return u.Query()
}

// renderTable loads one page for the URL state and renders the list. A
// backend failure renders an empty table and queues an error notification.
func (s *Server) renderTable(ctx context.Context, sch model.Schema, u *url.URL) (string, error) {
	if s.pageSize != queryparam.DefaultSize && !u.Query().Has(queryparam.ParamSize) {
		withSize := *u
		query := withSize.Query()
		query.Set(queryparam.ParamSize, strconv.Itoa(s.pageSize))
		withSize.RawQuery = query.Encode()
		u = &withSize
	}
	adapter := queryparam.FromURL(u, queryparam.NavigatorFunc(func(string, string) {}), sch.FilterKeys()...)
	state := adapter.State()

	var page apiclient.Page
	_ = s.deps.App.Boundary(ctx, "list "+sch.Entity, func(ctx context.Context) error {
		var err error
		page, err = s.deps.Backend.List(ctx, resourceOf(sch), state)
		return err
	})

	idField := sch.RowIDField()
	column, direction := queryparam.ParseSort(state.Sort)
	inst := table.New(table.Config[apiclient.Record]{
		Rows:    page.Items,
		Columns: s.columnsFor(sch),
		RowID: func(rec apiclient.Record) string {
			return columns.FormatValue(rec[idField])
		},
		Sorting:         table.Sorting{ColumnID: column, Direction: table.SortDirection(direction)},
		PageSize:        state.Size,
		EnableSorting:   true,
		EnableSelection: true,
	})

	view := vanilla.BuildTable(inst, vanilla.TableLinks{
		Sort: vanilla.SortHref(adapter),
		Edit: func(id string) string { return entityPath(sch.Entity, id, "edit") },
	})
	view.Entity = sch.Entity
	view.Title = sch.Title
	view.Filters = vanilla.FiltersFor(sch, state)
	view.FilterURL = entityPath(sch.Entity, "filters")
	view.NewURL = entityPath(sch.Entity, "new")
	view.DeleteURL = entityPath(sch.Entity, "delete")
	view.RefreshURL = adapter.URL()
	view.Pagination = vanilla.PaginationFor(adapter, page.Total)
	return s.deps.Renderer.RenderTable(ctx, view)
}

// columnsFor returns the cached descriptors of sch. Choice fields show their
// labels, dates their day part.
func (s *Server) columnsFor(sch model.Schema) []columns.Descriptor[apiclient.Record] {
	s.columnsMu.Lock()
	cache, ok := s.columns[sch.Entity]
	if !ok {
		var opts []columns.Option[apiclient.Record]
		var sortable []string
		for _, field := range sch.Fields {
			if field.Sortable {
				sortable = append(sortable, field.Key)
			}
			if cell := cellFor(field); cell != nil {
				opts = append(opts, columns.WithCell(field.Key, cell))
			}
		}
		opts = append(opts, columns.WithSortable[apiclient.Record](sortable...))
		cache = columns.NewCache(opts...)
		s.columns[sch.Entity] = cache
	}
	s.columnsMu.Unlock()
	return cache.Get(sch.HeaderMapping())
}

func cellFor(field model.FieldMetadata) columns.CellFunc[apiclient.Record] {
	key := field.Key
	switch field.Kind {
	case model.KindYesNo:
		return func(rec apiclient.Record) string {
			switch v := rec[key].(type) {
			case bool:
				return field.OptionLabel(form.YesNo(v))
			case nil:
				return ""
			default:
				return field.OptionLabel(columns.FormatValue(v))
			}
		}
	case model.KindMultiChoice:
		return func(rec apiclient.Record) string {
			value := columns.FormatValue(rec[key])
			if value == "" {
				return model.UnsetLabel
			}
			return field.OptionLabel(value)
		}
	case model.KindDate:
		return func(rec apiclient.Record) string {
			value := columns.FormatValue(rec[key])
			if len(value) > len(form.DateLayout) && value[len(form.DateLayout)] == 'T' {
				return value[:len(form.DateLayout)]
			}
			return value
		}
	}
	return nil
}

func (s *Server) writePage(w http.ResponseWriter, r *http.Request, active model.Schema, content, modalHTML string) {
	var nav []vanilla.NavItem
	for _, entity := range s.deps.Schemas.Entities() {
		sch, _ := s.deps.Schemas.Schema(entity)
		title := sch.Title
		if title == "" {
			title = entity
		}
		nav = append(nav, vanilla.NavItem{
			Title:  title,
			Href:   entityPath(entity),
			Icon:   sch.Icon,
			Active: entity == active.Entity,
		})
	}
	view := vanilla.PageView{
		Title:         active.Title,
		Nav:           nav,
		Notifications: s.deps.App.Notifier().Drain(),
		Content:       content,
		Modal:         modalHTML,
	}
	if user, ok := s.deps.App.User(); ok {
		view.User = &user
	}
	html, err := s.deps.Renderer.RenderPage(r.Context(), view)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeHTML(w, http.StatusOK, html)
}

func resourceOf(sch model.Schema) string {
	if sch.Resource != "" {
		return sch.Resource
	}
	return sch.Entity
}
