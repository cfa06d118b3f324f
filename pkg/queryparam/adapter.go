// Package queryparam keeps list view state (page, size, filters) in the URL
// query string. Every mutation rewrites the query and triggers exactly one
// replace navigation; the in-memory State is only a projection of the URL.
package queryparam

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync"
)

const (
	ParamPage = "page"
	ParamSize = "size"
	ParamSort = "sort"
)

// DefaultSize is used when the URL carries no valid size.
const DefaultSize = 10

// AllowedSizes lists the page sizes a table accepts.
var AllowedSizes = []int{1, 10, 30, 50}

// Navigator performs a replace navigation (no history entry, no full reload)
// to path with the encoded query.
type Navigator interface {
	Replace(path, rawQuery string)
}

// NavigatorFunc adapts a function into a Navigator.
type NavigatorFunc func(path, rawQuery string)

// Replace calls fn.
func (fn NavigatorFunc) Replace(path, rawQuery string) { fn(path, rawQuery) }

// TableQueryState is the list view state read from the URL.
type TableQueryState struct {
	Page    int
	Size    int
	Sort    string
	Filters map[string]string
}

// Adapter binds a path and its query values to a Navigator.
type Adapter struct {
	mu         sync.Mutex
	path       string
	values     url.Values
	nav        Navigator
	filterKeys []string
}

// New creates an adapter for the current location. filterKeys restricts which
// query keys State reports as filters.
func New(path string, current url.Values, nav Navigator, filterKeys ...string) *Adapter {
	return &Adapter{
		path:       path,
		values:     cloneValues(current),
		nav:        nav,
		filterKeys: append([]string(nil), filterKeys...),
	}
}

// FromURL is a convenience wrapper around New.
func FromURL(u *url.URL, nav Navigator, filterKeys ...string) *Adapter {
	if u == nil {
		return New("/", nil, nav, filterKeys...)
	}
	return New(u.Path, u.Query(), nav, filterKeys...)
}

// UpdateParams clones the current parameters, applies mutator and navigates
// once to the same path with the new query.
func (a *Adapter) UpdateParams(mutator func(url.Values)) {
	a.mu.Lock()
	next := cloneValues(a.values)
	if mutator != nil {
		mutator(next)
	}
	a.values = next
	path := a.path
	encoded := next.Encode()
	nav := a.nav
	a.mu.Unlock()

	if nav != nil {
		nav.Replace(path, encoded)
	}
}

// SetQueryParams replaces the listed keys in one navigation. Keys not in pairs
// keep their current value; a nil value removes the key.
func (a *Adapter) SetQueryParams(pairs map[string]any) {
	a.UpdateParams(func(values url.Values) {
		applyPairs(values, pairs)
	})
}

func applyPairs(values url.Values, pairs map[string]any) {
	for key, value := range pairs {
		if value == nil {
			values.Del(key)
			continue
		}
		values.Set(key, Stringify(value))
	}
}

// Href returns the location SetQueryParams(pairs) would navigate to, without
// navigating. Renderers use it for sort, page and size links.
func (a *Adapter) Href(pairs map[string]any) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	next := cloneValues(a.values)
	applyPairs(next, pairs)
	return joinLocation(a.path, next.Encode())
}

// Values returns a copy of the current parameters.
func (a *Adapter) Values() url.Values {
	a.mu.Lock()
	defer a.mu.Unlock()
	return cloneValues(a.values)
}

// Get returns a single parameter.
func (a *Adapter) Get(key string) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.values.Get(key)
}

// URL returns path plus encoded query.
func (a *Adapter) URL() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return joinLocation(a.path, a.values.Encode())
}

// Path returns the path the adapter navigates on.
func (a *Adapter) Path() string { return a.path }

// State projects the current URL into a TableQueryState.
func (a *Adapter) State() TableQueryState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return parseState(a.values, a.filterKeys)
}

// SetPage navigates to page, keeping size and filters.
func (a *Adapter) SetPage(page int) {
	if page < 0 {
		page = 0
	}
	a.SetQueryParams(map[string]any{ParamPage: page})
}

// SetSize changes the page size and resets to the first page.
func (a *Adapter) SetSize(size int) {
	if !ValidSize(size) {
		size = DefaultSize
	}
	a.SetQueryParams(map[string]any{ParamSize: size, ParamPage: 0})
}

// SetFilters replaces filter values and resets to the first page. Empty values
// remove the filter from the URL.
func (a *Adapter) SetFilters(filters map[string]string) {
	a.UpdateParams(func(values url.Values) {
		for key, value := range filters {
			if strings.TrimSpace(value) == "" {
				values.Del(key)
				continue
			}
			values.Set(key, value)
		}
		values.Set(ParamPage, "0")
	})
}

// ParseState reads a TableQueryState from raw query values.
func ParseState(values url.Values, filterKeys ...string) TableQueryState {
	return parseState(values, filterKeys)
}

// FormatSort encodes a sort column and direction as "column:direction". An
// empty direction clears the sort.
func FormatSort(column, direction string) any {
	if strings.TrimSpace(column) == "" || strings.TrimSpace(direction) == "" {
		return nil
	}
	return column + ":" + direction
}

// ParseSort splits a sort parameter. A bare column sorts ascending.
func ParseSort(raw string) (column, direction string) {
	column, direction, found := strings.Cut(strings.TrimSpace(raw), ":")
	if column == "" {
		return "", ""
	}
	if !found || (direction != "asc" && direction != "desc") {
		direction = "asc"
	}
	return column, direction
}

// ValidSize reports whether size is an accepted page size.
func ValidSize(size int) bool {
	return slices.Contains(AllowedSizes, size)
}

// Stringify converts a query value into its URL text. Numbers use their
// decimal representation.
func Stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func parseState(values url.Values, filterKeys []string) TableQueryState {
	state := TableQueryState{
		Page:    0,
		Size:    DefaultSize,
		Sort:    values.Get(ParamSort),
		Filters: make(map[string]string),
	}
	if page, err := strconv.Atoi(values.Get(ParamPage)); err == nil && page >= 0 {
		state.Page = page
	}
	if size, err := strconv.Atoi(values.Get(ParamSize)); err == nil && ValidSize(size) {
		state.Size = size
	}
	for _, key := range filterKeys {
		if value := values.Get(key); value != "" {
			state.Filters[key] = value
		}
	}
	return state
}

func cloneValues(in url.Values) url.Values {
	out := make(url.Values, len(in))
	for key, list := range in {
		out[key] = append([]string(nil), list...)
	}
	return out
}
