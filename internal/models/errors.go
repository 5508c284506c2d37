package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrDuplicateRelationship = errors.New("interest already exists for this pair")
	ErrTargetNotEligible     = errors.New("cannot send interest to this profile")
	ErrNotAuthorized         = errors.New("not authorized")
	ErrInvalidTransition     = errors.New("interest already responded or withdrawn")
	ErrInterestNotFound      = errors.New("interest not found")
	ErrProfileNotFound       = errors.New("profile not found")
	ErrInvalidInput          = errors.New("invalid input")
)

// InputError carries per-field validation messages and unwraps to ErrInvalidInput.
type InputError struct {
	Fields map[string]string
}

func (e *InputError) Error() string {
	if len(e.Fields) == 0 {
		return ErrInvalidInput.Error()
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "invalid input: " + strings.Join(parts, ", ")
}

func (e *InputError) Unwrap() error { return ErrInvalidInput }

// NewInputError builds an InputError for a single field.
func NewInputError(field, msg string) error {
	return &InputError{Fields: map[string]string{field: msg}}
}
