package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/sipsyai/agentflow/internal/core/flow"
)

// validate backs the email/url shape checks. go-playground's Var
// validation is stateless and safe for concurrent use.
var validate = validator.New()

// dateLayouts are accepted on the way in; values normalize to RFC3339.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// CheckField validates one supplied value against its field
// declaration and returns every violation message. present reports
// whether the caller supplied the field at all.
func CheckField(f flow.Field, value any, present bool) []string {
	var msgs []string
	if !present || value == nil || value == "" {
		if f.Required {
			msgs = append(msgs, fmt.Sprintf("field %q is required", f.Name))
		}
		return msgs
	}

	switch f.Type {
	case flow.FieldTypeText, flow.FieldTypeTextarea:
		s, ok := value.(string)
		if !ok {
			return append(msgs, fmt.Sprintf("field %q must be a string", f.Name))
		}
		msgs = append(msgs, checkStringBounds(f, s)...)
	case flow.FieldTypeNumber:
		n, ok := toNumber(value)
		if !ok {
			return append(msgs, fmt.Sprintf("field %q must be a number", f.Name))
		}
		if f.Min != nil && n < *f.Min {
			msgs = append(msgs, fmt.Sprintf("field %q must be at least %v", f.Name, *f.Min))
		}
		if f.Max != nil && n > *f.Max {
			msgs = append(msgs, fmt.Sprintf("field %q must be at most %v", f.Name, *f.Max))
		}
	case flow.FieldTypeURL:
		s, ok := value.(string)
		if !ok || validate.Var(s, "url") != nil {
			return append(msgs, fmt.Sprintf("field %q must be a valid URL", f.Name))
		}
		msgs = append(msgs, checkStringBounds(f, s)...)
	case flow.FieldTypeEmail:
		s, ok := value.(string)
		if !ok || validate.Var(s, "email") != nil {
			return append(msgs, fmt.Sprintf("field %q must be a valid email address", f.Name))
		}
	case flow.FieldTypeCheckbox:
		if _, ok := toBool(value); !ok {
			msgs = append(msgs, fmt.Sprintf("field %q must be a boolean", f.Name))
		}
	case flow.FieldTypeDate, flow.FieldTypeDatetime:
		s, ok := value.(string)
		if !ok {
			return append(msgs, fmt.Sprintf("field %q must be a date string", f.Name))
		}
		if _, err := parseDate(s); err != nil {
			msgs = append(msgs, fmt.Sprintf("field %q is not a valid date: %v", f.Name, s))
		}
	case flow.FieldTypeSelect:
		s, ok := value.(string)
		if !ok {
			return append(msgs, fmt.Sprintf("field %q must be a string", f.Name))
		}
		if !contains(f.Options, s) {
			msgs = append(msgs, fmt.Sprintf("field %q value %q is not one of the allowed options", f.Name, s))
		}
	case flow.FieldTypeMultiselect:
		for _, item := range toList(value) {
			s, ok := item.(string)
			if !ok {
				msgs = append(msgs, fmt.Sprintf("field %q entries must be strings", f.Name))
				continue
			}
			if !contains(f.Options, s) {
				msgs = append(msgs, fmt.Sprintf("field %q value %q is not one of the allowed options", f.Name, s))
			}
		}
	case flow.FieldTypeFile:
		switch value.(type) {
		case string, map[string]any:
		default:
			msgs = append(msgs, fmt.Sprintf("field %q must be a file reference", f.Name))
		}
	}

	// Pattern applies as a string regex only to string-typed values.
	if f.Pattern != "" {
		if s, ok := value.(string); ok {
			re, err := regexp.Compile(f.Pattern)
			if err != nil {
				msgs = append(msgs, fmt.Sprintf("field %q has an invalid pattern: %v", f.Name, err))
			} else if !re.MatchString(s) {
				msgs = append(msgs, fmt.Sprintf("field %q does not match the required pattern", f.Name))
			}
		}
	}
	return msgs
}

// CoerceField applies defaulting and type coercion to a valid value.
// The second return reports whether a value (supplied or defaulted)
// exists for the field.
func CoerceField(f flow.Field, value any, present bool) (any, bool) {
	if !present || value == nil || value == "" {
		if f.Default == nil {
			return nil, false
		}
		value = f.Default
	}
	switch f.Type {
	case flow.FieldTypeNumber:
		if n, ok := toNumber(value); ok {
			return n, true
		}
	case flow.FieldTypeCheckbox:
		if b, ok := toBool(value); ok {
			return b, true
		}
	case flow.FieldTypeDate, flow.FieldTypeDatetime:
		if s, ok := value.(string); ok {
			if ts, err := parseDate(s); err == nil {
				return ts.UTC().Format(time.RFC3339), true
			}
		}
	case flow.FieldTypeMultiselect:
		return toList(value), true
	}
	return value, true
}

func checkStringBounds(f flow.Field, s string) []string {
	var msgs []string
	n := float64(len(s))
	if f.Min != nil && n < *f.Min {
		msgs = append(msgs, fmt.Sprintf("field %q must be at least %v characters", f.Name, *f.Min))
	}
	if f.Max != nil && n > *f.Max {
		msgs = append(msgs, fmt.Sprintf("field %q must be at most %v characters", f.Name, *f.Max))
	}
	return msgs
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

func toBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		switch strings.ToLower(b) {
		case "true", "1", "yes", "on":
			return true, true
		case "false", "0", "no", "off":
			return false, true
		}
	case float64:
		return b != 0, true
	case int:
		return b != 0, true
	}
	return false, false
}

func parseDate(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func toList(v any) []any {
	switch l := v.(type) {
	case []any:
		return l
	case []string:
		out := make([]any, len(l))
		for i, s := range l {
			out[i] = s
		}
		return out
	default:
		return []any{v}
	}
}

func contains(options []string, s string) bool {
	for _, o := range options {
		if o == s {
			return true
		}
	}
	return false
}
