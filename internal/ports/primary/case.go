// Package primary defines the primary ports (driving adapters) for the
// application: the operations the routing layer may invoke, with their
// request and response shapes. Timestamps cross this boundary as RFC3339
// strings.
package primary

import "context"

// CaseService defines the primary port for case lifecycle operations.
// Every mutating operation derives its actor from the context and follows
// the read / re-read-under-lock pattern; status conflicts surface as
// apperr.ConflictError with the legal targets attached.
type CaseService interface {
	// CreateCase creates a new case in draft status.
	CreateCase(ctx context.Context, req CreateCaseRequest) (*Case, error)

	// GetCase retrieves a case by ID.
	GetCase(ctx context.Context, caseID string) (*Case, error)

	// ListCases lists cases with optional filters.
	ListCases(ctx context.Context, filters CaseFilters) ([]*Case, error)

	// StartInvestigation moves a draft case to investigation without
	// running the analysis. Only the creating user may start it.
	StartInvestigation(ctx context.Context, caseID string) error

	// SetStatus applies a backward/reopen transition under the restricted
	// map. Forward progress must go through Analyze, Finalize, and Close.
	SetStatus(ctx context.Context, caseID, target string) error

	// Finalize moves investigation to actions_open after the completeness
	// gate passes, activating every draft action item.
	Finalize(ctx context.Context, caseID string) (*FinalizeResponse, error)

	// Close moves actions_open to closed once every action item is
	// terminal, recording who closed the case and why.
	Close(ctx context.Context, caseID, summary string) error

	// Reopen moves a closed case back to actions_open and clears the
	// closing fields. Admin only.
	Reopen(ctx context.Context, caseID string) error

	// UpdateNotes replaces the free-form investigation notes.
	UpdateNotes(ctx context.Context, caseID, notes string) error

	// DeleteCase soft-deletes a case; children stay intact for audit.
	DeleteCase(ctx context.Context, caseID string) error
}

// CreateCaseRequest contains the intake fields for a new case.
type CreateCaseRequest struct {
	Title              string
	Asset              string
	FailureDescription string
	Background         string
}

// Case represents a case at the port boundary.
type Case struct {
	ID                 string
	Title              string
	Asset              string
	FailureDescription string
	Background         string
	Status             string
	OwnerID            string
	CreatorID          string
	Notes              string
	ClosedBy           string
	ClosedAt           string
	ClosureSummary     string
	CreatedAt          string
	UpdatedAt          string
}

// CaseFilters contains filter options for listing cases.
type CaseFilters struct {
	Status  string
	OwnerID string
	Limit   int
}

// FinalizeResponse reports which draft items the finalize gate activated.
type FinalizeResponse struct {
	ActivatedItemIDs []string
}
