// Package apperr defines the error taxonomy shared by all case operations.
// Every rejection carries enough structure for the caller to render the
// reason, not just a failure flag.
package apperr

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError reports malformed input, keyed by field.
type ValidationError struct {
	Fields map[string]string
}

// NewValidation creates a ValidationError for a single field.
func NewValidation(field, problem string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: problem}}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
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
	return "validation failed: " + strings.Join(parts, "; ")
}

// AuthorizationError reports an actor/role check failure.
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string {
	return "not authorized: " + e.Reason
}

// NotFoundError reports a missing entity.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// IncompleteItem identifies an action item that blocks finalization,
// by its per-case number.
type IncompleteItem struct {
	ItemNumber    int
	MissingFields []string
	InactiveOwner string
}

// NonTerminalItem identifies an action item that blocks closing.
type NonTerminalItem struct {
	ItemNumber int
	Status     string
}

// ConflictError reports a failed status or completeness precondition.
// The optional fields carry the detail for the specific precondition that
// failed: the legal next statuses, the incomplete draft items, or the
// action items still open at close time.
type ConflictError struct {
	Reason           string
	AllowedTargets   []string
	IncompleteItems  []IncompleteItem
	NonTerminalItems []NonTerminalItem
}

func (e *ConflictError) Error() string {
	msg := "conflict: " + e.Reason
	if len(e.AllowedTargets) > 0 {
		msg += fmt.Sprintf(" (allowed: %s)", strings.Join(e.AllowedTargets, ", "))
	}
	return msg
}

// UpstreamError reports a language-model call that failed after its retry.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return "analysis model unavailable: " + e.Err.Error()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// MalformedResponseError reports structurally invalid or self-contradictory
// model output. Callers treat it like an upstream failure; the distinct type
// lets operators tell a dead gateway from a misbehaving model.
type MalformedResponseError struct {
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return "malformed analysis response: " + e.Reason
}
