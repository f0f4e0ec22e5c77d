// Package validation checks product payloads before they reach the store.
//
// Fields are checked in a fixed order: name, price, description, category,
// inStock. A Policy selects which fields are mandatory and what price range is
// accepted (Mode), and whether checking stops at the first violation (Errors).
package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Mode selects the field requirements.
type Mode string

const (
	// Lenient requires name and a non-negative price; the other fields are
	// optional but type-checked when present.
	Lenient Mode = "lenient"
	// Strict requires every field and a positive price.
	Strict Mode = "strict"
)

// Collection selects how many violations are reported.
type Collection string

const (
	FirstError Collection = "first"
	AllErrors  Collection = "all"
)

// Policy is the validation configuration of one route.
type Policy struct {
	Mode   Mode
	Errors Collection
}

// ParseMode parses "strict" or "lenient".
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case Strict, Lenient:
		return m, nil
	default:
		return "", fmt.Errorf("unknown validation mode %q", s)
	}
}

// ParseCollection parses "first" or "all".
func ParseCollection(s string) (Collection, error) {
	switch c := Collection(strings.ToLower(strings.TrimSpace(s))); c {
	case FirstError, AllErrors:
		return c, nil
	default:
		return "", fmt.Errorf("unknown validation error collection %q", s)
	}
}

type kind int

const (
	kindString kind = iota
	kindNumber
	kindBool
)

type fieldRule struct {
	field    string
	kind     kind
	required bool
	// tag is a validator tag applied to the value once its type is correct.
	tag     string
	message string
}

var (
	lenientRules = []fieldRule{
		{field: "name", kind: kindString, required: true, tag: "required", message: "Product name is required and must be a non-empty string."},
		{field: "price", kind: kindNumber, required: true, tag: "gte=0", message: "Product price is required and must be a non-negative number."},
		{field: "description", kind: kindString, message: "Product description must be a string."},
		{field: "category", kind: kindString, message: "Product category must be a string."},
		{field: "inStock", kind: kindBool, message: "Product inStock must be a boolean."},
	}
	strictRules = []fieldRule{
		{field: "name", kind: kindString, required: true, tag: "required", message: "Product name is required and must be a non-empty string."},
		{field: "price", kind: kindNumber, required: true, tag: "gt=0", message: "Product price is required and must be a positive number."},
		{field: "description", kind: kindString, required: true, message: "Product description is required and must be a string."},
		{field: "category", kind: kindString, required: true, message: "Product category is required and must be a string."},
		{field: "inStock", kind: kindBool, required: true, message: "Product inStock is required and must be a boolean."},
	}
)

// Validator applies policies to decoded JSON payloads.
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator.
func New() *Validator {
	return &Validator{validate: validator.New()}
}

// Check returns the violations of payload under policy, in field order. An
// empty result means the payload is accepted. With FirstError at most one
// violation is returned.
func (v *Validator) Check(payload map[string]any, policy Policy) []string {
	rules := lenientRules
	if policy.Mode == Strict {
		rules = strictRules
	}

	var violations []string
	for _, rule := range rules {
		if v.passes(rule, payload) {
			continue
		}
		violations = append(violations, rule.message)
		if policy.Errors != AllErrors {
			break
		}
	}
	return violations
}

func (v *Validator) passes(rule fieldRule, payload map[string]any) bool {
	value, present := payload[rule.field]
	if !present {
		return !rule.required
	}

	// A JSON null is present but never of the right type.
	var checked any
	switch rule.kind {
	case kindString:
		s, ok := value.(string)
		if !ok {
			return false
		}
		checked = strings.TrimSpace(s)
	case kindNumber:
		f, ok := value.(float64)
		if !ok {
			return false
		}
		checked = f
	case kindBool:
		if _, ok := value.(bool); !ok {
			return false
		}
		return true
	}

	if rule.tag == "" {
		return true
	}
	return v.validate.Var(checked, rule.tag) == nil
}
