package form

import (
	"strings"

	"github.com/goliatone/go-gridform/pkg/model"
)

// YesNo encodes b as the stored "Y"/"N" value.
func YesNo(b bool) string {
	if b {
		return model.YesValue
	}
	return model.NoValue
}

// ParseYesNo decodes a stored value. Only "Y"/"N" (any case) and the display
// labels are accepted.
func ParseYesNo(raw string) (bool, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case model.YesValue, model.YesLabel:
		return true, true
	case model.NoValue, model.NoLabel:
		return false, true
	default:
		return false, false
	}
}
