package form

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-gridform/pkg/adminerr"
	"github.com/goliatone/go-gridform/pkg/model"
)

// DateLayout is the ISO date format produced by date controls.
const DateLayout = "2006-01-02"

var (
	emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)
	phonePattern = regexp.MustCompile(`^0\d{1,2}-?\d{3,4}-?\d{4}$`)
	jsonNumber   = regexp.MustCompile(`^-?(0|[1-9]\d*)(\.\d+)?([eE][+-]?\d+)?$`)
)

// ValidateField checks value against the field's metadata and returns the
// first failing rule as a validation error, or nil.
func ValidateField(field model.FieldMetadata, value string) *adminerr.Error {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		if field.Required {
			return adminerr.NewValidation(field.Key, adminerr.CodeRequired, MsgRequired)
		}
		return nil
	}

	switch field.Kind {
	case model.KindNumber:
		if _, ok := NumberLiteral(trimmed); !ok {
			return adminerr.NewValidation(field.Key, adminerr.CodeInvalidFormat, MsgNumber)
		}
	case model.KindDate:
		if _, err := time.Parse(DateLayout, trimmed); err != nil {
			return adminerr.NewValidation(field.Key, adminerr.CodeInvalidFormat, MsgDate)
		}
	case model.KindYesNo:
		if trimmed != model.YesValue && trimmed != model.NoValue {
			return adminerr.NewValidation(field.Key, adminerr.CodeInvalidFormat, MsgChoice)
		}
	case model.KindMultiChoice:
		if len(field.Options) > 0 && !hasOption(field.Options, trimmed) {
			return adminerr.NewValidation(field.Key, adminerr.CodeInvalidFormat, MsgChoice)
		}
	}

	switch field.Rule {
	case model.RuleEmail:
		if !emailPattern.MatchString(trimmed) {
			return adminerr.NewValidation(field.Key, adminerr.CodeInvalidFormat, MsgEmail)
		}
	case model.RulePhone:
		if !phonePattern.MatchString(trimmed) {
			return adminerr.NewValidation(field.Key, adminerr.CodeInvalidFormat, MsgPhone)
		}
	}
	return nil
}

// NumberLiteral converts raw into a JSON number. Inputs strconv accepts but
// JSON does not ("+3", ".5", "5.") are rewritten in plain decimal form. NaN,
// infinities and out of range values are rejected.
func NumberLiteral(raw string) (json.Number, bool) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return "", false
	}
	if jsonNumber.MatchString(raw) {
		return json.Number(raw), true
	}
	return json.Number(strconv.FormatFloat(f, 'f', -1, 64)), true
}

func hasOption(options []model.Option, value string) bool {
	for _, opt := range options {
		if opt.Value == value {
			return true
		}
	}
	return false
}
