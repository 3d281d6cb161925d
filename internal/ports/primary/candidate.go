package primary

import "context"

// CandidateService defines the primary port for root-cause and action-item
// candidates and for ratified (final) root causes.
type CandidateService interface {
	// AddRootCauseCandidate creates a human-authored root-cause candidate.
	AddRootCauseCandidate(ctx context.Context, req AddRootCauseCandidateRequest) (*RootCauseCandidate, error)

	// AddActionItemCandidate creates a human-authored action-item candidate.
	AddActionItemCandidate(ctx context.Context, req AddActionItemCandidateRequest) (*ActionItemCandidate, error)

	// ListRootCauseCandidates retrieves the root-cause candidates of a case.
	ListRootCauseCandidates(ctx context.Context, caseID string) ([]*RootCauseCandidate, error)

	// ListActionItemCandidates retrieves the action-item candidates of a case.
	ListActionItemCandidates(ctx context.Context, caseID string) ([]*ActionItemCandidate, error)

	// PromoteRootCause ratifies a candidate into a final root cause. A
	// candidate can be promoted at most once; the case must be in
	// investigation.
	PromoteRootCause(ctx context.Context, req PromoteRootCauseRequest) (*RootCauseFinal, error)

	// AddFinal creates a final root cause authored directly, without a
	// backing candidate.
	AddFinal(ctx context.Context, req AddFinalRequest) (*RootCauseFinal, error)

	// ListFinals retrieves the final root causes of a case.
	ListFinals(ctx context.Context, caseID string) ([]*RootCauseFinal, error)

	// DeleteFinal removes a final root cause, auditing its key fields.
	DeleteFinal(ctx context.Context, finalID string) error
}

// AddRootCauseCandidateRequest contains the fields of a human-authored
// root-cause candidate.
type AddRootCauseCandidateRequest struct {
	CaseID     string
	CauseText  string
	Detail     string
	Confidence string
}

// AddActionItemCandidateRequest contains the fields of a human-authored
// action-item candidate.
type AddActionItemCandidateRequest struct {
	CaseID      string
	Text        string
	Description string
	Priority    string
}

// PromoteRootCauseRequest identifies the candidate to ratify. CauseText and
// Detail default to the candidate's values and may be edited during
// promotion.
type PromoteRootCauseRequest struct {
	CandidateID string
	CauseText   string
	Detail      string
}

// AddFinalRequest contains the fields of a directly authored final.
type AddFinalRequest struct {
	CaseID    string
	CauseText string
	Detail    string
}

// RootCauseCandidate represents a root-cause candidate at the port boundary.
type RootCauseCandidate struct {
	ID          string
	CaseID      string
	CauseText   string
	Detail      string
	Confidence  string
	GeneratedBy string
	CreatedAt   string
	UpdatedAt   string
}

// ActionItemCandidate represents an action-item candidate at the port
// boundary.
type ActionItemCandidate struct {
	ID          string
	CaseID      string
	Text        string
	Description string
	Priority    string
	GeneratedBy string
	CreatedAt   string
	UpdatedAt   string
}

// RootCauseFinal represents a ratified root cause at the port boundary.
// PromotedFromID is empty for directly authored finals.
type RootCauseFinal struct {
	ID             string
	CaseID         string
	CauseText      string
	Detail         string
	PromotedFromID string
	CreatedBy      string
	CreatedAt      string
}
