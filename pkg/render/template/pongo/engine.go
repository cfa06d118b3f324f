// Package pongo runs the renderer templates on pongo2.
//
// View structs reach templates through their JSON encoding, so a template
// writes {{ row.rowId }} for a field tagged `json:"rowId"`. Integral numbers
// stay integral. Values in a top-level map that are functions or pongo2
// values are passed through untouched.
package pongo

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"reflect"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-gridform/pkg/render/template"
)

// DefaultExtension is appended to template names that lack it.
const DefaultExtension = ".tmpl"

// Option configures an Engine.
type Option func(*Engine)

// WithFS sets the template bundle.
func WithFS(files fs.FS) Option {
	return func(e *Engine) {
		e.files = files
	}
}

// WithExtension changes DefaultExtension.
func WithExtension(ext string) Option {
	return func(e *Engine) {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			return
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		e.ext = ext
	}
}

// WithGlobals exposes values to every template.
func WithGlobals(globals map[string]any) Option {
	return func(e *Engine) {
		for key, value := range globals {
			e.globals[key] = value
		}
	}
}

// Engine caches compiled templates by path. It is safe for concurrent use.
type Engine struct {
	files   fs.FS
	ext     string
	globals pongo2.Context

	set   *pongo2.TemplateSet
	mu    sync.RWMutex
	cache map[string]*pongo2.Template
}

var _ template.TemplateRenderer = (*Engine)(nil)

// New builds an engine over the bundle given with WithFS.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		ext:     DefaultExtension,
		globals: pongo2.Context{},
		cache:   make(map[string]*pongo2.Template),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	if e.files == nil {
		return nil, errors.New("pongo: template bundle is required")
	}
	e.set = pongo2.NewSet("gridform", pongo2.NewFSLoader(e.files))
	e.set.Globals = e.globals
	return e, nil
}

// RenderTemplate renders the template stored under name.
func (e *Engine) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	path := name
	if !strings.HasSuffix(path, e.ext) {
		path += e.ext
	}
	tmpl, err := e.lookup(path)
	if err != nil {
		return "", err
	}
	rendered, err := execute(tmpl, data)
	if err != nil {
		return "", fmt.Errorf("pongo: execute %q: %w", path, err)
	}
	return copyTo(rendered, out)
}

// RenderString compiles and renders source. The result is not cached.
func (e *Engine) RenderString(source string, data any, out ...io.Writer) (string, error) {
	tmpl, err := e.set.FromString(source)
	if err != nil {
		return "", fmt.Errorf("pongo: parse inline template: %w", err)
	}
	rendered, err := execute(tmpl, data)
	if err != nil {
		return "", fmt.Errorf("pongo: execute inline template: %w", err)
	}
	return copyTo(rendered, out)
}

func (e *Engine) lookup(path string) (*pongo2.Template, error) {
	e.mu.RLock()
	tmpl, ok := e.cache[path]
	e.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if tmpl, ok := e.cache[path]; ok {
		return tmpl, nil
	}
	tmpl, err := e.set.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("pongo: load %q: %w", path, err)
	}
	e.cache[path] = tmpl
	return tmpl, nil
}

func execute(tmpl *pongo2.Template, data any) (string, error) {
	ctx, err := contextOf(data)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(ctx, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func copyTo(rendered string, out []io.Writer) (string, error) {
	for _, w := range out {
		if w == nil {
			continue
		}
		if _, err := io.WriteString(w, rendered); err != nil {
			return "", err
		}
	}
	return rendered, nil
}

func contextOf(data any) (pongo2.Context, error) {
	var in map[string]any
	switch v := data.(type) {
	case nil:
		return pongo2.Context{}, nil
	case pongo2.Context:
		in = v
	case map[string]any:
		in = v
	default:
		decoded, err := viaJSON(v)
		if err != nil {
			return nil, fmt.Errorf("pongo: encode view: %w", err)
		}
		m, ok := decoded.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("pongo: view %T does not encode as an object", data)
		}
		return m, nil
	}

	ctx := make(pongo2.Context, len(in))
	for key, value := range in {
		if passThrough(value) {
			ctx[key] = value
			continue
		}
		decoded, err := viaJSON(value)
		if err != nil {
			return nil, fmt.Errorf("pongo: encode %q: %w", key, err)
		}
		ctx[key] = decoded
	}
	return ctx, nil
}

func passThrough(value any) bool {
	switch value.(type) {
	case nil, string, bool, int, int64, float64, *pongo2.Value:
		return true
	}
	return reflect.ValueOf(value).Kind() == reflect.Func
}

func viaJSON(v any) (any, error) {
	encoded, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(encoded))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return integral(out), nil
}

func integral(value any) any {
	switch v := value.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
		f, _ := v.Float64()
		return f
	case map[string]any:
		for key, item := range v {
			v[key] = integral(item)
		}
	case []any:
		for i, item := range v {
			v[i] = integral(item)
		}
	}
	return value
}
