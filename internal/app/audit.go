package app

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/rcfa/internal/core/reconcile"
	"github.com/example/rcfa/internal/ctxutil"
	"github.com/example/rcfa/internal/ports/secondary"
)

// Audit event payloads. One struct per event type; the shape of a written
// payload never changes, so older events stay readable.

type caseCreatedPayload struct {
	Title string `json:"title"`
	Asset string `json:"asset,omitempty"`
}

type caseDeletedPayload struct {
	Title string `json:"title"`
}

type caseReopenedPayload struct {
	PreviousClosedBy string `json:"previousClosedBy"`
	ClosureSummary   string `json:"closureSummary"`
}

type statusChangedPayload struct {
	From string `json:"from"`
	To   string `json:"to"`
	Via  string `json:"via"`
}

// Via values for statusChangedPayload, naming the operation that moved the
// case.
const (
	viaStartInvestigation = "start_investigation"
	viaSetStatus          = "set_status"
	viaAnalyze            = "analyze"
	viaFinalize           = "finalize"
	viaClose              = "close"
	viaReopen             = "reopen"
)

type notesUpdatedPayload struct {
	Length int `json:"length"`
}

// candidatesGeneratedPayload records one analysis run. AnswerSnapshot captures
// the answers the model saw; the next re-analysis diffs against it to emit
// answer events. Source distinguishes the initial run from re-analyses.
type candidatesGeneratedPayload struct {
	Source                   string                   `json:"source"`
	FollowUpQuestionCount    int                      `json:"followUpQuestionCount"`
	RootCauseCandidateCount  int                      `json:"rootCauseCandidateCount"`
	ActionItemCandidateCount int                      `json:"actionItemCandidateCount"`
	AnswerSnapshot           reconcile.AnswerSnapshot `json:"answerSnapshot"`
	MaterialityRationale     string                   `json:"materialityRationale,omitempty"`
	NoChange                 bool                     `json:"noChange,omitempty"`
	UpdatedCandidateCount    int                      `json:"updatedCandidateCount,omitempty"`
}

// Source values for candidatesGeneratedPayload.
const (
	sourceInitial    = "initial"
	sourceReanalysis = "reanalysis"
)

type candidateAddedPayload struct {
	CandidateID   string `json:"candidateId"`
	CandidateType string `json:"candidateType"`
	Label         string `json:"label"`
}

type candidateUpdatedPayload struct {
	CandidateID   string `json:"candidateId"`
	CandidateType string `json:"candidateType"`
	PreviousLabel string `json:"previousLabel"`
	NewLabel      string `json:"newLabel"`
	Reason        string `json:"reason"`
}

type answerPayload struct {
	QuestionID string `json:"questionId"`
	Answer     string `json:"answer"`
}

type draftItemsActivatedPayload struct {
	ItemIDs []string `json:"itemIds"`
}

type finalAddedPayload struct {
	FinalID        string `json:"finalId"`
	CauseText      string `json:"causeText"`
	PromotedFromID string `json:"promotedFromId,omitempty"`
}

type finalDeletedPayload struct {
	FinalID        string `json:"finalId"`
	CauseText      string `json:"causeText"`
	PromotedFromID string `json:"promotedFromId,omitempty"`
}

type actionItemAddedPayload struct {
	ItemID string `json:"itemId"`
	Number int    `json:"number"`
	Title  string `json:"title"`
	Status string `json:"status"`
}

type actionItemUpdatedPayload struct {
	ItemID string `json:"itemId"`
	Number int    `json:"number"`
}

type actionItemStatusChangedPayload struct {
	ItemID string `json:"itemId"`
	Number int    `json:"number"`
	From   string `json:"from"`
	To     string `json:"to"`
}

type actionItemDeletedPayload struct {
	ItemID string `json:"itemId"`
	Number int    `json:"number"`
	Title  string `json:"title"`
	Status string `json:"status"`
}

// appendEvent marshals the payload and appends one audit event attributed to
// the context actor. Called only inside an open case transaction, so the
// event commits with the state change or not at all.
func appendEvent(ctx context.Context, audit secondary.AuditRepository, caseID, eventType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", eventType, err)
	}
	actor := ctxutil.ActorFromContext(ctx)
	if err := audit.Append(ctx, &secondary.AuditEventRecord{
		CaseID:    caseID,
		EventType: eventType,
		ActorID:   actor.UserID,
		Payload:   data,
	}); err != nil {
		return fmt.Errorf("failed to append %s event: %w", eventType, err)
	}
	return nil
}
