package models

import (
	"strings"

	"github.com/spf13/cast"
)

// Answers maps question identifiers to answer values. Values keep the loose
// shape they arrive in (bool, float64 from JSON, string, []string, date string);
// the typed accessors below coerce them the same way everywhere.
//
// Coercion is deliberately silent: a malformed number reads as zero and an
// unrecognised boolean reads as false.
type Answers map[string]any

// Has reports whether a key has been answered.
func (a Answers) Has(key string) bool {
	_, ok := a[key]
	return ok
}

// Bool reads a key as a boolean. Missing keys are false.
func (a Answers) Bool(key string) bool {
	v, ok := a[key]
	if !ok || v == nil {
		return false
	}
	if s, isString := v.(string); isString {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "yes", "y":
			return true
		case "no", "n":
			return false
		}
	}
	return cast.ToBool(v)
}

// Number reads a key as a number. Missing or malformed values are zero.
// Currency strings such as "£29,000" are accepted.
func (a Answers) Number(key string) float64 {
	v, ok := a[key]
	if !ok || v == nil {
		return 0
	}
	if s, isString := v.(string); isString {
		v = strings.NewReplacer("£", "", ",", "", " ", "").Replace(s)
	}
	return cast.ToFloat64(v)
}

// String reads a key as a trimmed string.
func (a Answers) String(key string) string {
	v, ok := a[key]
	if !ok || v == nil {
		return ""
	}
	return strings.TrimSpace(cast.ToString(v))
}

// Strings reads a multi-choice key. A single string is treated as a one-element list.
func (a Answers) Strings(key string) []string {
	v, ok := a[key]
	if !ok || v == nil {
		return nil
	}
	if s, isString := v.(string); isString {
		if strings.TrimSpace(s) == "" {
			return nil
		}
		return []string{strings.TrimSpace(s)}
	}
	return cast.ToStringSlice(v)
}

// Contains reports whether a multi-choice key includes value.
func (a Answers) Contains(key, value string) bool {
	for _, v := range a.Strings(key) {
		if v == value {
			return true
		}
	}
	return false
}

// Clone returns a shallow copy; slices are copied so callers cannot mutate the original.
func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for k, v := range a {
		switch typed := v.(type) {
		case []string:
			out[k] = append([]string(nil), typed...)
		case []any:
			out[k] = append([]any(nil), typed...)
		default:
			out[k] = v
		}
	}
	return out
}

// Income returns the applicant's qualifying income: sponsor_income, falling back
// to sw_salary when no sponsor income was given.
func (a Answers) Income() float64 {
	if income := a.Number("sponsor_income"); income != 0 {
		return income
	}
	return a.Number("sw_salary")
}
