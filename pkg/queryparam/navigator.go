package queryparam

import (
	"net/http"
	"strings"
	"sync"
)

// HeaderReplaceURL is the htmx response header that replaces the browser URL
// without adding a history entry.
const HeaderReplaceURL = "HX-Replace-Url"

// Recorder is an in-memory Navigator that remembers every navigation.
type Recorder struct {
	mu    sync.Mutex
	calls []string
}

// Replace implements Navigator.
func (r *Recorder) Replace(path, rawQuery string) {
	r.mu.Lock()
	r.calls = append(r.calls, joinLocation(path, rawQuery))
	r.mu.Unlock()
}

// Calls returns the recorded locations in order.
func (r *Recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// Last returns the most recent location, or "".
func (r *Recorder) Last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return ""
	}
	return r.calls[len(r.calls)-1]
}

// HTTPNavigator turns a replace navigation into an HTTP response. For htmx
// requests it sets HX-Replace-Url and leaves the body to the caller so the
// fragment re-renders in place; other requests get a 303 redirect.
type HTTPNavigator struct {
	w        http.ResponseWriter
	r        *http.Request
	location string
	written  bool
}

// NewHTTPNavigator binds a navigator to one request.
func NewHTTPNavigator(w http.ResponseWriter, r *http.Request) *HTTPNavigator {
	return &HTTPNavigator{w: w, r: r}
}

// Replace implements Navigator. The last call before Flush wins.
func (n *HTTPNavigator) Replace(path, rawQuery string) {
	n.location = joinLocation(path, rawQuery)
}

// Location returns the pending location.
func (n *HTTPNavigator) Location() string { return n.location }

// Flush writes the navigation. It returns true when the response is complete
// (a redirect was sent) and false when the caller should render the body.
func (n *HTTPNavigator) Flush() bool {
	if n.written || n.location == "" {
		return false
	}
	n.written = true
	if IsHTMX(n.r) {
		n.w.Header().Set(HeaderReplaceURL, n.location)
		return false
	}
	http.Redirect(n.w, n.r, n.location, http.StatusSeeOther)
	return true
}

// IsHTMX reports whether r was issued by htmx.
func IsHTMX(r *http.Request) bool {
	return r != nil && strings.EqualFold(r.Header.Get("HX-Request"), "true")
}

func joinLocation(path, rawQuery string) string {
	if path == "" {
		path = "/"
	}
	if rawQuery == "" {
		return path
	}
	return path + "?" + rawQuery
}
