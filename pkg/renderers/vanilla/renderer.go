// Package vanilla renders tables, forms, modals and pages as server-side
// HTML driven by htmx attributes. Controls are rendered through a component
// registry so themes can swap individual templates.
package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/goliatone/go-theme"

	"github.com/goliatone/go-gridform/pkg/appctx"
	"github.com/goliatone/go-gridform/pkg/form"
	"github.com/goliatone/go-gridform/pkg/modal"
	"github.com/goliatone/go-gridform/pkg/render"
	rendertemplate "github.com/goliatone/go-gridform/pkg/render/template"
	"github.com/goliatone/go-gridform/pkg/render/template/pongo"
	"github.com/goliatone/go-gridform/pkg/renderers/vanilla/components"
)

// DefaultAssetPrefix is where AssetsFS is expected to be mounted.
const DefaultAssetPrefix = "/assets/"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	registry         *components.Registry
	overrides        map[string]string
	theme            *theme.RendererConfig
	assetPrefix      string
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithRegistry replaces the default component registry.
func WithRegistry(registry *components.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.registry = registry
		}
	}
}

// WithComponentOverrides forces a component per field key.
func WithComponentOverrides(overrides map[string]string) Option {
	return func(cfg *config) {
		cfg.overrides = cloneStringMap(overrides)
	}
}

// WithTheme applies theme partials, class tokens, CSS variables and asset
// URLs.
func WithTheme(cfg *theme.RendererConfig) Option {
	return func(c *config) {
		c.theme = cfg
	}
}

// WithAssetPrefix changes the URL prefix of the bundled stylesheet.
func WithAssetPrefix(prefix string) Option {
	return func(cfg *config) {
		if strings.TrimSpace(prefix) != "" {
			cfg.assetPrefix = prefix
		}
	}
}

type rendererTheme struct {
	Name         string            `json:"name"`
	Variant      string            `json:"variant"`
	Partials     map[string]string `json:"partials,omitempty"`
	Tokens       map[string]string `json:"tokens,omitempty"`
	CSSVars      map[string]string `json:"cssVars,omitempty"`
	CSSVarsStyle string            `json:"cssVarsStyle,omitempty"`
}

// Renderer renders HTML fragments and pages.
type Renderer struct {
	templates   rendertemplate.TemplateRenderer
	registry    *components.Registry
	overrides   map[string]string
	classes     Classes
	theme       rendererTheme
	assetURL    func(string) string
	assetPrefix string
}

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS(), assetPrefix: DefaultAssetPrefix}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := pongo.New(pongo.WithFS(cfg.templateFS))
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}
	registry := cfg.registry
	if registry == nil {
		registry = components.NewDefaultRegistry()
	}

	themeCtx := buildThemeContext(cfg.theme)
	r := &Renderer{
		templates:   renderer,
		registry:    registry,
		overrides:   cfg.overrides,
		classes:     ClassesFromTokens(themeCtx.Tokens),
		theme:       themeCtx,
		assetPrefix: cfg.assetPrefix,
	}
	if cfg.theme != nil {
		r.assetURL = cfg.theme.AssetURL
	}
	return r, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Classes returns the resolved CSS classes.
func (r *Renderer) Classes() Classes { return r.classes }

// Registry returns the component registry.
func (r *Renderer) Registry() *components.Registry { return r.registry }

func (r *Renderer) components() *componentRenderer {
	return newComponentRenderer(r.templates, r.registry, r.overrides, r.classes, r.theme.Partials)
}

// RenderField renders one field with its label, error and help chrome.
func (r *Renderer) RenderField(view form.FieldView, binding Binding) (string, error) {
	out, err := r.components().render(view, binding)
	if err != nil {
		return "", fmt.Errorf("vanilla renderer: %w", err)
	}
	return out, nil
}

// RenderReveal renders only the reveal adornment of a sensitive field, the
// fragment swapped by the toggle button.
func (r *Renderer) RenderReveal(view form.FieldView, rv *RevealView) (string, error) {
	view.Field.Sensitive = true
	out, _, err := r.components().renderControl(view, Binding{Reveal: rv})
	if err != nil {
		return "", fmt.Errorf("vanilla renderer: %w", err)
	}
	return out, nil
}

// RenderForm renders every visible field of the form state in schema order.
func (r *Renderer) RenderForm(_ context.Context, view FormView) (string, error) {
	if view.State == nil {
		return "", fmt.Errorf("vanilla renderer: form state is nil")
	}
	schema := view.State.Schema()
	cr := r.components()

	rendered := make([]string, 0, len(schema.Fields))
	for _, field := range schema.Fields {
		if field.Hidden {
			continue
		}
		fv, _ := view.State.View(field.Key)
		binding := Binding{}
		if view.ChangeURL != nil {
			binding.ChangeURL = view.ChangeURL(field.Key)
		}
		if field.Sensitive && view.Reveal != nil {
			binding.Reveal = view.Reveal(field.Key)
		}
		out, err := cr.render(fv, binding)
		if err != nil {
			return "", fmt.Errorf("vanilla renderer: %w", err)
		}
		rendered = append(rendered, out)
	}

	id := view.ID
	if id == "" {
		id = FormID(schema.Entity)
	}
	fields := append(append([]render.HiddenField(nil), view.Hidden...), render.VersionField(view.State.Version()))
	hidden := render.HiddenFields(fields...)
	return r.renderTemplate("templates/form.tmpl", map[string]any{
		"id":         id,
		"action":     view.Action,
		"htmx":       view.HTMX,
		"hidden":     hidden,
		"formErrors": view.State.FormErrors(),
		"fields":     rendered,
		"classes":    r.classes,
	})
}

// RenderTable renders the list view.
func (r *Renderer) RenderTable(_ context.Context, view TableView) (string, error) {
	colspan := len(view.Headers)
	if view.Selectable {
		colspan++
	}
	if view.Editable {
		colspan++
	}
	if colspan == 0 {
		colspan = 1
	}
	if view.Rows == nil {
		view.Rows = []RowView{}
	}
	return r.renderTemplate("templates/table.tmpl", map[string]any{
		"entity":     view.Entity,
		"title":      view.Title,
		"headers":    view.Headers,
		"rows":       view.Rows,
		"selectable": view.Selectable,
		"editable":   view.Editable,
		"filters":    view.Filters,
		"filterUrl":  view.FilterURL,
		"newUrl":     view.NewURL,
		"deleteUrl":  view.DeleteURL,
		"refreshUrl": view.RefreshURL,
		"pagination": view.Pagination,
		"colspan":    colspan,
	})
}

// RenderModal renders the dialog container. A closed modal renders the empty
// container so swaps clear the dialog.
func (r *Renderer) RenderModal(_ context.Context, view ModalView) (string, error) {
	open := view.State != "" && view.State != modal.StateClosed
	var actions []actionView
	if slots := view.Slots; open {
		if a := slots.Delete; a != nil {
			actions = append(actions, actionView{Label: a.Label, URL: a.URL, Method: "get", Kind: ActionDanger, Disabled: a.Disabled})
		}
		if a := slots.Modify; a != nil {
			actions = append(actions, actionView{Label: a.Label, URL: a.URL, Method: "get", Kind: ActionModify, Disabled: a.Disabled})
		}
		if a := slots.Secondary; a != nil {
			actions = append(actions, actionView{Label: a.Label, URL: a.URL, Method: "post", Kind: ActionSecondary, Disabled: a.Disabled})
		}
		if a := slots.Primary; a != nil {
			action := actionView{Label: a.Label, URL: a.URL, Method: "post", Kind: ActionPrimary, Disabled: a.Disabled}
			action.Submit = view.FormID != ""
			actions = append(actions, action)
		}
	}
	if view.State == modal.StateConfirmingDiscard {
		for i := range actions {
			actions[i].Disabled = true
		}
	}
	return r.renderTemplate("templates/modal.tmpl", map[string]any{
		"open":     open,
		"state":    string(view.State),
		"title":    view.Slots.Title,
		"closeUrl": view.CloseURL,
		"formId":   view.FormID,
		"body":     view.Body,
		"confirm":  view.Confirm,
		"actions":  actions,
	})
}

// RenderConfirm renders a confirmation dialog.
func (r *Renderer) RenderConfirm(_ context.Context, view ConfirmView) (string, error) {
	return r.renderTemplate("templates/confirm.tmpl", view)
}

// RenderNotifications renders the toast container. oob marks it for an htmx
// out-of-band swap.
func (r *Renderer) RenderNotifications(_ context.Context, notifications []appctx.Notification, oob bool) (string, error) {
	return r.renderTemplate("templates/notifications.tmpl", map[string]any{
		"notifications": notifications,
		"oob":           oob,
	})
}

// RenderPage renders the full document around a content fragment.
func (r *Renderer) RenderPage(ctx context.Context, view PageView) (string, error) {
	notifications, err := r.RenderNotifications(ctx, view.Notifications, false)
	if err != nil {
		return "", err
	}
	modalHTML := view.Modal
	if modalHTML == "" {
		if modalHTML, err = r.RenderModal(ctx, ModalView{State: modal.StateClosed}); err != nil {
			return "", err
		}
	}

	stylesheets := []string{r.resolveAsset(StylesheetName)}
	componentStyles, componentScripts := r.registry.Assets(view.Components)
	stylesheets = append(stylesheets, componentStyles...)
	scripts := []components.Script{{Src: components.HTMXScript, Defer: true}}
	for _, script := range componentScripts {
		if script.Src != components.HTMXScript {
			scripts = append(scripts, script)
		}
	}

	return r.renderTemplate("templates/page.tmpl", map[string]any{
		"title":         view.Title,
		"nav":           view.Nav,
		"user":          displayUser(view.User),
		"notifications": notifications,
		"content":       view.Content,
		"modal":         modalHTML,
		"theme":         r.theme,
		"stylesheets":   stylesheets,
		"scripts":       scripts,
	})
}

func (r *Renderer) renderTemplate(name string, data any) (string, error) {
	if r.templates == nil {
		return "", fmt.Errorf("vanilla renderer: template renderer is nil")
	}
	result, err := r.templates.RenderTemplate(name, data)
	if err != nil {
		return "", fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return result, nil
}

func (r *Renderer) resolveAsset(name string) string {
	if r.assetURL != nil {
		if resolved := r.assetURL(name); resolved != "" {
			return resolved
		}
	}
	return strings.TrimRight(r.assetPrefix, "/") + "/" + name
}

func buildThemeContext(cfg *theme.RendererConfig) rendererTheme {
	if cfg == nil {
		return rendererTheme{}
	}
	ctx := rendererTheme{
		Name:     cfg.Theme,
		Variant:  cfg.Variant,
		Partials: cloneStringMap(cfg.Partials),
		Tokens:   cloneStringMap(cfg.Tokens),
		CSSVars:  cloneStringMap(cfg.CSSVars),
	}
	ctx.CSSVarsStyle = cssVarsStyle(ctx.CSSVars)
	return ctx
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, key := range keys {
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteString(";\n")
	}
	b.WriteString("}")
	return b.String()
}
