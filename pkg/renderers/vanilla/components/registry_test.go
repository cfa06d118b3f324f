package components

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRegistryDescriptorClone(t *testing.T) {
	reg := New()
	renderer := func(*bytes.Buffer, Control, ComponentData) error { return nil }

	if err := reg.Register("Test ", Descriptor{Renderer: renderer, Stylesheets: []string{"/a.css"}}); err != nil {
		t.Fatalf("register: %v", err)
	}

	desc, ok := reg.Descriptor("test")
	if !ok {
		t.Fatalf("descriptor not found")
	}
	desc.Stylesheets = append(desc.Stylesheets, "/mutated.css")

	original, _ := reg.Descriptor("test")
	if diff := cmp.Diff([]string{"/a.css"}, original.Stylesheets); diff != "" {
		t.Fatalf("registry descriptor mutated (-want +got):\n%s", diff)
	}
}

func TestRegistryRejectsInvalid(t *testing.T) {
	reg := New()
	if err := reg.Register(" ", Descriptor{Renderer: func(*bytes.Buffer, Control, ComponentData) error { return nil }}); err == nil {
		t.Fatalf("expected empty name to fail")
	}
	if err := reg.Register("x", Descriptor{}); err == nil {
		t.Fatalf("expected nil renderer to fail")
	}
}

func TestRegistryAssetsDeduplicates(t *testing.T) {
	reg := New()
	renderer := func(*bytes.Buffer, Control, ComponentData) error { return nil }

	reg.MustRegister("text", Descriptor{
		Renderer:    renderer,
		Stylesheets: []string{"/shared.css", "/text.css"},
		Scripts:     []Script{{Src: "/shared.js"}},
	})
	reg.MustRegister("reveal", Descriptor{
		Renderer:    renderer,
		Stylesheets: []string{"/shared.css"},
		Scripts:     []Script{{Src: "/shared.js"}, {Src: "/reveal.js"}},
	})

	styles, scripts := reg.Assets([]string{"text", "reveal", "missing"})
	if diff := cmp.Diff([]string{"/shared.css", "/text.css"}, styles); diff != "" {
		t.Fatalf("stylesheets mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Script{{Src: "/shared.js"}, {Src: "/reveal.js"}}, scripts); diff != "" {
		t.Fatalf("scripts mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultRegistryCoversEveryKind(t *testing.T) {
	want := []string{NameDate, NameLongText, NameMultiChoice, NameNumber, NameReveal, NameText, NameYesNo}
	if diff := cmp.Diff(want, NewDefaultRegistry().Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}

type recordingTemplate struct {
	name string
	data any
}

func (r *recordingTemplate) RenderTemplate(name string, data any, _ ...io.Writer) (string, error) {
	r.name = name
	r.data = data
	return "  <input>\n", nil
}

func (r *recordingTemplate) RenderString(string, any, ...io.Writer) (string, error) {
	return "", errors.New("unused")
}

func TestTemplateRendererUsesThemePartial(t *testing.T) {
	tpl := &recordingTemplate{}
	desc, _ := NewDefaultRegistry().Descriptor(NameText)

	var buf bytes.Buffer
	err := desc.Renderer(&buf, Control{ID: "gf-name"}, ComponentData{
		Template:      tpl,
		ThemePartials: map[string]string{PartialText: "themes/acme/text.tmpl"},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if tpl.name != "themes/acme/text.tmpl" {
		t.Fatalf("expected partial override, got %q", tpl.name)
	}
	if buf.String() != "<input>" {
		t.Fatalf("expected trimmed output, got %q", buf.String())
	}
}

func TestTemplateRendererRequiresEngine(t *testing.T) {
	desc, _ := NewDefaultRegistry().Descriptor(NameDate)
	var buf bytes.Buffer
	if err := desc.Renderer(&buf, Control{}, ComponentData{}); err == nil {
		t.Fatalf("expected error without template engine")
	}
}
