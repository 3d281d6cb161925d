package primary

import "context"

// AnalysisService defines the primary port for the AI-assisted analysis
// operations. The language-model call is resolved before any transaction
// opens; a model failure after its retry surfaces as apperr.UpstreamError
// with no partial state written.
type AnalysisService interface {
	// Analyze runs the initial analysis on a draft case: generates
	// follow-up questions and candidates, and moves the case to
	// investigation.
	Analyze(ctx context.Context, caseID string) (*AnalyzeResponse, error)

	// Reanalyze re-runs the analysis against the accumulated evidence
	// (answers and notes) and merges any material changes into the
	// candidate set. Human-authored candidates are never touched.
	Reanalyze(ctx context.Context, caseID string) (*ReanalyzeResponse, error)
}

// AnalyzeResponse reports what the initial analysis created.
type AnalyzeResponse struct {
	FollowUpQuestionCount    int
	RootCauseCandidateCount  int
	ActionItemCandidateCount int
}

// SkippedUpdate reports a proposed candidate update that was not applied,
// and why. Skips are defensive (stale id, human-authored target, unchanged
// label) and do not fail the operation.
type SkippedUpdate struct {
	CandidateID   string
	CandidateType string
	Reason        string
}

// ReanalyzeResponse reports the outcome of a re-analysis. MaterialChange
// false means the evidence did not change any engineering conclusion and no
// candidate was touched; Rationale carries the model's one-sentence
// explanation either way.
type ReanalyzeResponse struct {
	MaterialChange        bool
	Rationale             string
	UpdatedCandidateCount int
	NewRootCauseCount     int
	NewActionItemCount    int
	AnswerChangeCount     int
	SkippedUpdates        []SkippedUpdate

	// DiscardedExtraneous is set when the model claimed no material change
	// but still returned update data, which was dropped defensively.
	DiscardedExtraneous bool
}
