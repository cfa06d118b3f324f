package components

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/goliatone/go-gridform/pkg/model"
	rendertemplate "github.com/goliatone/go-gridform/pkg/render/template"
)

// Renderer writes the HTML of one control into buf.
type Renderer func(buf *bytes.Buffer, control Control, data ComponentData) error

// Option is one entry of a select control.
type Option struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	Selected    bool   `json:"selected,omitempty"`
	Placeholder bool   `json:"placeholder,omitempty"`
	Hidden      bool   `json:"hidden,omitempty"`
}

// Reveal is the state of a sensitive value adornment.
type Reveal struct {
	State       string `json:"state"`
	Display     string `json:"display"`
	URL         string `json:"url,omitempty"`
	ToggleLabel string `json:"toggleLabel"`
}

// Control is everything a component needs to render one field.
type Control struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Value       string              `json:"value"`
	Field       model.FieldMetadata `json:"field"`
	Error       string              `json:"error,omitempty"`
	Visual      string              `json:"visual"`
	Class       string              `json:"class"`
	Options     []Option            `json:"options,omitempty"`
	Placeholder bool                `json:"placeholder,omitempty"`
	DescribedBy string              `json:"describedBy,omitempty"`
	ChangeURL   string              `json:"changeUrl,omitempty"`
	Rows        int                 `json:"rows,omitempty"`
	Reveal      *Reveal             `json:"reveal,omitempty"`
}

// ComponentData carries helpers and configuration for component renderers.
type ComponentData struct {
	Template      rendertemplate.TemplateRenderer
	Config        map[string]any
	ThemePartials map[string]string
}

// Script describes a JavaScript dependency emitted once per page.
type Script struct {
	Src   string `json:"src"`
	Defer bool   `json:"defer,omitempty"`
}

// Descriptor bundles a renderer with its asset dependencies.
type Descriptor struct {
	Name        string
	Renderer    Renderer
	Stylesheets []string
	Scripts     []Script
}

// Registry tracks component descriptors keyed by name.
type Registry struct {
	mu         sync.RWMutex
	components map[string]Descriptor
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{components: make(map[string]Descriptor)}
}

// Register associates a descriptor with name, replacing any existing entry.
func (r *Registry) Register(name string, descriptor Descriptor) error {
	if name = normalize(name); name == "" {
		return fmt.Errorf("components: component name is required")
	}
	if descriptor.Renderer == nil {
		return fmt.Errorf("components: renderer for %q is nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	descriptor.Name = name
	r.components[name] = cloneDescriptor(descriptor)
	return nil
}

// MustRegister is Register that panics on error.
func (r *Registry) MustRegister(name string, descriptor Descriptor) {
	if err := r.Register(name, descriptor); err != nil {
		panic(err)
	}
}

// Descriptor fetches a descriptor by name.
func (r *Registry) Descriptor(name string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	descriptor, ok := r.components[normalize(name)]
	if !ok {
		return Descriptor{}, false
	}
	return cloneDescriptor(descriptor), true
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.components))
	for name := range r.components {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Assets aggregates the stylesheets and scripts of names, deduplicated in
// first-seen order.
func (r *Registry) Assets(names []string) (stylesheets []string, scripts []Script) {
	if len(names) == 0 {
		return nil, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	seenStyles := make(map[string]struct{})
	seenScripts := make(map[string]struct{})
	for _, name := range names {
		descriptor, ok := r.components[normalize(name)]
		if !ok {
			continue
		}
		for _, href := range descriptor.Stylesheets {
			if _, exists := seenStyles[href]; href == "" || exists {
				continue
			}
			seenStyles[href] = struct{}{}
			stylesheets = append(stylesheets, href)
		}
		for _, script := range descriptor.Scripts {
			if _, exists := seenScripts[script.Src]; script.Src == "" || exists {
				continue
			}
			seenScripts[script.Src] = struct{}{}
			scripts = append(scripts, script)
		}
	}
	return stylesheets, scripts
}

func cloneDescriptor(src Descriptor) Descriptor {
	return Descriptor{
		Name:        src.Name,
		Renderer:    src.Renderer,
		Stylesheets: slices.Clone(src.Stylesheets),
		Scripts:     slices.Clone(src.Scripts),
	}
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
