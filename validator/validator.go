package validator

import (
	"maps"
	"slices"
	"strings"
)

// Validator collects input errors by field name.
type Validator struct {
	Errors map[string][]string `json:"errors"`
}

func New() *Validator {
	return &Validator{
		Errors: map[string][]string{},
	}
}

func (v *Validator) AddError(field, message string) {
	if v.Errors == nil {
		v.Errors = make(map[string][]string)
	}
	v.Errors[field] = append(v.Errors[field], message)
}

// Check adds the message to field when ok is false.
func (v *Validator) Check(ok bool, field, message string) {
	if !ok {
		v.AddError(field, message)
	}
}

func (v *Validator) HasErrors() bool {
	return len(v.Errors) > 0
}

func (v *Validator) Has(field string) bool {
	_, ok := v.Errors[field]
	return ok
}

func (v *Validator) First(field string) string {
	if messages, exists := v.Errors[field]; exists && len(messages) != 0 {
		return messages[0]
	}
	return ""
}

func (v *Validator) Error() string {
	if !v.HasErrors() {
		return ""
	}

	var sb strings.Builder
	for _, field := range slices.Sorted(maps.Keys(v.Errors)) {
		sb.WriteString(field + ":\n")
		for _, msg := range v.Errors[field] {
			sb.WriteString("\t- " + msg + "\n")
		}
	}
	return strings.TrimSpace(sb.String())
}

func (v *Validator) AsError() error {
	if v.HasErrors() {
		return v
	}
	return nil
}
