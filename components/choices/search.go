package choices

import (
	"sort"
	"strings"

	"github.com/goliatone/go-gridform/pkg/model"
)

// Search filters options by a case-insensitive substring of the label or the
// value. Prefix matches come first; otherwise declaration order is kept.
func Search(options []model.Option, query string, limit int, opts Options) []model.Option {
	limit = clampLimit(limit, opts)
	if limit == 0 {
		return nil
	}

	query = strings.TrimSpace(query)
	if query == "" {
		if opts.EmptySearchMode == EmptySearchTop {
			if len(options) <= limit {
				return append([]model.Option{}, options...)
			}
			return append([]model.Option{}, options[:limit]...)
		}
		return nil
	}

	q := strings.ToLower(query)
	matches := make([]matchedOption, 0, len(options))
	for _, opt := range options {
		label := strings.ToLower(opt.Label)
		value := strings.ToLower(opt.Value)
		if !strings.Contains(label, q) && !strings.Contains(value, q) {
			continue
		}
		matches = append(matches, matchedOption{
			option:   opt,
			isPrefix: strings.HasPrefix(label, q) || strings.HasPrefix(value, q),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].isPrefix && !matches[j].isPrefix
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]model.Option, 0, len(matches))
	for _, match := range matches {
		out = append(out, match.option)
	}
	return out
}

// FieldOptions returns the selectable options of a field, or false when the
// field does not render as a select.
func FieldOptions(schema model.Schema, key string) ([]model.Option, bool) {
	field, ok := schema.Field(key)
	if !ok {
		return nil, false
	}
	if field.Kind != model.KindYesNo && field.Kind != model.KindMultiChoice {
		return nil, false
	}
	return field.ControlOptions(), true
}

type matchedOption struct {
	option   model.Option
	isPrefix bool
}
