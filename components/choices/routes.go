package choices

import (
	"errors"
	"net/http"
	"strings"
)

// Mux registers a handler for a pattern. *http.ServeMux and chi.Router
// satisfy it.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

// Path joins basePath and the configured route.
func (c *Component) Path(basePath string) string {
	route := "/" + strings.Trim(strings.TrimSpace(c.Options().RoutePath), "/")
	base := strings.Trim(strings.TrimSpace(basePath), "/")
	if base == "" {
		return route
	}
	if route == "/" {
		return "/" + base + "/"
	}
	return "/" + base + route
}

// Mount registers the handler on mux and returns the pattern it used.
func (c *Component) Mount(mux Mux, basePath string) (string, error) {
	if mux == nil {
		return "", errors.New("choices: nil mux")
	}
	pattern := c.Path(basePath)
	mux.Handle(pattern, c.Handler())
	return pattern, nil
}
