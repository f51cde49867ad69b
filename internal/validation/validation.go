package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Rule func(value any) string

type fieldSchema struct {
	name     string
	required bool
	rules    []Rule
}

// Schema is an ordered list of per-field rules for one create/update
// operation. Validate returns every violation, never just the first.
type Schema struct {
	fields []fieldSchema
}

func NewSchema() *Schema {
	return &Schema{}
}

func (s *Schema) Required(name string, rules ...Rule) *Schema {
	s.fields = append(s.fields, fieldSchema{name: name, required: true, rules: rules})
	return s
}

func (s *Schema) Optional(name string, rules ...Rule) *Schema {
	s.fields = append(s.fields, fieldSchema{name: name, rules: rules})
	return s
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// Validate checks values against the schema. Missing optional fields are
// skipped; missing required fields fail without running their other rules.
func (s *Schema) Validate(values map[string]any) []FieldError {
	var errs []FieldError
	for _, f := range s.fields {
		v, present := values[f.name]
		if !present || isEmpty(v) {
			if f.required {
				errs = append(errs, FieldError{Field: f.name, Message: "is required"})
			}
			continue
		}
		for _, rule := range f.rules {
			if msg := rule(v); msg != "" {
				errs = append(errs, FieldError{Field: f.name, Message: msg})
			}
		}
	}
	return errs
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	}
	return 0, false
}

func StrLen(min, max int) Rule {
	return func(v any) string {
		s, ok := asString(v)
		if !ok {
			return "must be a string"
		}
		if len(s) < min || len(s) > max {
			return fmt.Sprintf("length must be between %d and %d", min, max)
		}
		return ""
	}
}

// NumRange checks inclusive numeric bounds.
func NumRange(min, max float64) Rule {
	return func(v any) string {
		n, ok := asFloat(v)
		if !ok {
			return "must be a number"
		}
		if n < min || n > max {
			return fmt.Sprintf("must be between %v and %v", min, max)
		}
		return ""
	}
}

func OneOf(allowed ...string) Rule {
	return func(v any) string {
		s, ok := asString(v)
		if !ok {
			return "must be a string"
		}
		for _, a := range allowed {
			if s == a {
				return ""
			}
		}
		return fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", "))
	}
}

func Pattern(re *regexp.Regexp, hint string) Rule {
	return func(v any) string {
		s, ok := asString(v)
		if !ok {
			return "must be a string"
		}
		if !re.MatchString(s) {
			return hint
		}
		return ""
	}
}

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func Email() Rule {
	return Pattern(emailRe, "must be a valid email address")
}

var phoneRe = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

func Phone() Rule {
	return Pattern(phoneRe, "must be a valid phone number")
}

// PasswordStrength requires an uppercase letter, a lowercase letter and a
// digit.
func PasswordStrength() Rule {
	return func(v any) string {
		s, ok := asString(v)
		if !ok {
			return "must be a string"
		}
		var upper, lower, digit bool
		for _, r := range s {
			switch {
			case unicode.IsUpper(r):
				upper = true
			case unicode.IsLower(r):
				lower = true
			case unicode.IsDigit(r):
				digit = true
			}
		}
		if !upper || !lower || !digit {
			return "must contain an uppercase letter, a lowercase letter and a digit"
		}
		return ""
	}
}
