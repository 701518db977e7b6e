package apperr

import (
	"errors"
	"strings"
)

var (
	ErrNotFound = errors.New("not found")

	// ErrOverlap is returned when a new slot starts too close to an existing slot of the same mentor.
	ErrOverlap = errors.New("you already have an open slot close to this time")

	ErrSlotUnavailable = errors.New("slot is no longer available")

	// ErrInvalidSlot is returned when the slot does not belong to the mentee's mentor.
	ErrInvalidSlot = errors.New("select a valid slot")

	ErrUnauthorized = errors.New("invalid username or password")

	ErrConflict = errors.New("resource already exists")
)

// ValidationError carries every failed field with its messages, in the order they were added.
type ValidationError struct {
	fields   []string
	messages map[string][]string
}

func NewValidation() *ValidationError {
	return &ValidationError{messages: map[string][]string{}}
}

// Invalid is a shortcut for a validation error on a single field.
func Invalid(field, message string) *ValidationError {
	return NewValidation().Add(field, message)
}

func (v *ValidationError) Add(field, message string) *ValidationError {
	if _, ok := v.messages[field]; !ok {
		v.fields = append(v.fields, field)
	}
	v.messages[field] = append(v.messages[field], message)
	return v
}

func (v *ValidationError) Empty() bool {
	return v == nil || len(v.fields) == 0
}

// Fields returns a copy of the field -> messages mapping.
func (v *ValidationError) Fields() map[string][]string {
	out := make(map[string][]string, len(v.messages))
	for k, msgs := range v.messages {
		out[k] = append([]string(nil), msgs...)
	}
	return out
}

// Message returns the first message of the first failed field. The HTTP layer shows only this one.
func (v *ValidationError) Message() string {
	if v.Empty() {
		return ""
	}
	return v.messages[v.fields[0]][0]
}

// Err returns nil when nothing was added, so callers can `return v.Err()`.
func (v *ValidationError) Err() error {
	if v.Empty() {
		return nil
	}
	return v
}

func (v *ValidationError) Error() string {
	parts := make([]string, 0, len(v.fields))
	for _, f := range v.fields {
		parts = append(parts, f+": "+strings.Join(v.messages[f], ", "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsValidation unwraps err into a *ValidationError when possible.
func AsValidation(err error) (*ValidationError, bool) {
	var v *ValidationError
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
