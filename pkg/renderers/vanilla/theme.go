package vanilla

import (
	"strings"

	"github.com/goliatone/go-theme"
)

// ThemeConfig resolves a manifest and one of its variants into renderer
// settings. Variant tokens, templates and asset files win over the base
// manifest; an unknown variant leaves the base values. Tokens other than
// "class.*" become CSS variables ("brand" -> "--brand"). Asset keys resolve
// against the manifest files, so AssetURL(StylesheetName) can point at a
// themed stylesheet.
func ThemeConfig(manifest *theme.Manifest, variant string) *theme.RendererConfig {
	if manifest == nil {
		return nil
	}
	tokens := cloneStringMap(manifest.Tokens)
	partials := cloneStringMap(manifest.Templates)
	files := cloneStringMap(manifest.Assets.Files)
	prefix := manifest.Assets.Prefix

	if v, ok := manifest.Variants[variant]; ok {
		tokens = overlay(tokens, v.Tokens)
		partials = overlay(partials, v.Templates)
		files = overlay(files, v.Assets.Files)
		if v.Assets.Prefix != "" {
			prefix = v.Assets.Prefix
		}
	}

	var cssVars map[string]string
	for key, value := range tokens {
		if strings.HasPrefix(key, "class.") {
			continue
		}
		if cssVars == nil {
			cssVars = make(map[string]string)
		}
		cssVars["--"+strings.ReplaceAll(key, ".", "-")] = value
	}

	return &theme.RendererConfig{
		Theme:    manifest.Name,
		Variant:  variant,
		Tokens:   tokens,
		CSSVars:  cssVars,
		Partials: partials,
		AssetURL: func(key string) string {
			file, ok := files[key]
			if !ok || file == "" {
				return ""
			}
			if prefix == "" || strings.Contains(file, "://") || strings.HasPrefix(file, "/") {
				return file
			}
			return strings.TrimRight(prefix, "/") + "/" + file
		},
	}
}

func overlay(base, top map[string]string) map[string]string {
	if len(top) == 0 {
		return base
	}
	if base == nil {
		base = make(map[string]string, len(top))
	}
	for key, value := range top {
		base[key] = value
	}
	return base
}
