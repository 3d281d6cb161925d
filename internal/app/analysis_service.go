package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/rcfa/internal/apperr"
	"github.com/example/rcfa/internal/core/reconcile"
	"github.com/example/rcfa/internal/core/workflow"
	"github.com/example/rcfa/internal/ports/primary"
	"github.com/example/rcfa/internal/ports/secondary"
)

// AnalysisServiceImpl implements the AnalysisService interface.
//
// Both operations follow the same shape: read the case, call the model while
// no transaction is open, validate the response, then open the case
// transaction, re-check the preconditions against the locked row, and write
// everything (candidates, questions, audit events) atomically.
type AnalysisServiceImpl struct {
	caseRepo      secondary.CaseRepository
	questionRepo  secondary.QuestionRepository
	candidateRepo secondary.CandidateRepository
	auditRepo     secondary.AuditRepository
	coord         secondary.CaseCoordinator
	completion    secondary.CompletionClient
}

// NewAnalysisService creates a new AnalysisService with injected dependencies.
func NewAnalysisService(
	caseRepo secondary.CaseRepository,
	questionRepo secondary.QuestionRepository,
	candidateRepo secondary.CandidateRepository,
	auditRepo secondary.AuditRepository,
	coord secondary.CaseCoordinator,
	completion secondary.CompletionClient,
) *AnalysisServiceImpl {
	return &AnalysisServiceImpl{
		caseRepo:      caseRepo,
		questionRepo:  questionRepo,
		candidateRepo: candidateRepo,
		auditRepo:     auditRepo,
		coord:         coord,
		completion:    completion,
	}
}

// Analyze runs the initial analysis on a draft case: generates follow-up
// questions and candidates, and moves the case to investigation.
func (s *AnalysisServiceImpl) Analyze(ctx context.Context, caseID string) (*primary.AnalyzeResponse, error) {
	if _, err := requireActor(ctx); err != nil {
		return nil, err
	}

	c, err := s.loadCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if err := s.requireStatus(c, workflow.StatusDraft, "initial analysis requires a draft case"); err != nil {
		return nil, err
	}

	prompt, err := buildInitialPrompt(c)
	if err != nil {
		return nil, err
	}
	raw, err := s.completion.Complete(ctx, prompt)
	if err != nil {
		return nil, &apperr.UpstreamError{Err: err}
	}
	analysis, err := reconcile.ParseInitial(raw)
	if err != nil {
		return nil, &apperr.MalformedResponseError{Reason: err.Error()}
	}

	err = s.coord.WithCase(ctx, caseID, func(tx secondary.Tx, c *secondary.CaseRecord) error {
		if err := requireLiveCase(c); err != nil {
			return err
		}
		if err := s.requireStatus(c, workflow.StatusDraft, "case left draft while the analysis was running"); err != nil {
			return err
		}

		if err := s.insertQuestions(ctx, tx, c.ID, analysis.Questions); err != nil {
			return err
		}
		if err := s.insertRootCauses(ctx, tx, c.ID, analysis.RootCauses); err != nil {
			return err
		}
		if err := s.insertActionItems(ctx, tx, c.ID, analysis.ActionItems); err != nil {
			return err
		}

		if err := appendEvent(ctx, tx.Audit, c.ID, secondary.EventCandidatesGenerated, candidatesGeneratedPayload{
			Source:                   sourceInitial,
			FollowUpQuestionCount:    len(analysis.Questions),
			RootCauseCandidateCount:  len(analysis.RootCauses),
			ActionItemCandidateCount: len(analysis.ActionItems),
			AnswerSnapshot:           reconcile.AnswerSnapshot{},
		}); err != nil {
			return err
		}

		if err := tx.Cases.UpdateStatus(ctx, c.ID, string(workflow.StatusInvestigation)); err != nil {
			return fmt.Errorf("failed to update case status: %w", err)
		}
		return appendEvent(ctx, tx.Audit, c.ID, secondary.EventStatusChanged, statusChangedPayload{
			From: string(workflow.StatusDraft),
			To:   string(workflow.StatusInvestigation),
			Via:  viaAnalyze,
		})
	})
	if err != nil {
		return nil, err
	}

	return &primary.AnalyzeResponse{
		FollowUpQuestionCount:    len(analysis.Questions),
		RootCauseCandidateCount:  len(analysis.RootCauses),
		ActionItemCandidateCount: len(analysis.ActionItems),
	}, nil
}

// Reanalyze re-runs the analysis against the accumulated evidence and merges
// any material changes into the candidate set.
func (s *AnalysisServiceImpl) Reanalyze(ctx context.Context, caseID string) (*primary.ReanalyzeResponse, error) {
	if _, err := requireActor(ctx); err != nil {
		return nil, err
	}

	c, err := s.loadCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if err := s.requireReanalyzable(c, "re-analysis requires a case in investigation or actions_open"); err != nil {
		return nil, err
	}

	questions, err := s.questionRepo.ListByCase(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	lastGen, err := s.auditRepo.LastGenerated(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load last analysis event: %w", err)
	}
	if lastGen == nil {
		return nil, &apperr.ConflictError{Reason: "no prior analysis to re-run; run the initial analysis first"}
	}

	if err := s.checkEvidence(c, questions, lastGen.CreatedAt); err != nil {
		return nil, err
	}
	prevSnapshot := priorSnapshot(lastGen)

	rootCauses, err := s.candidateRepo.ListRootCausesByCase(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list root cause candidates: %w", err)
	}
	actionItems, err := s.candidateRepo.ListActionItemsByCase(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list action item candidates: %w", err)
	}

	prompt, err := buildReanalysisPrompt(c, questions, rootCauses, actionItems)
	if err != nil {
		return nil, err
	}
	raw, err := s.completion.Complete(ctx, prompt)
	if err != nil {
		return nil, &apperr.UpstreamError{Err: err}
	}
	proposal, err := reconcile.ParseReanalysis(raw)
	if err != nil {
		return nil, &apperr.MalformedResponseError{Reason: err.Error()}
	}

	currentSnapshot := snapshotAnswers(questions)
	changes := reconcile.DiffAnswers(prevSnapshot, currentSnapshot)

	resp := &primary.ReanalyzeResponse{
		MaterialChange:      proposal.MaterialChange,
		Rationale:           proposal.Rationale,
		AnswerChangeCount:   len(changes),
		DiscardedExtraneous: proposal.DiscardedExtraneous,
	}

	err = s.coord.WithCase(ctx, caseID, func(tx secondary.Tx, c *secondary.CaseRecord) error {
		if err := requireLiveCase(c); err != nil {
			return err
		}
		if err := s.requireReanalyzable(c, "case status changed while the re-analysis was running"); err != nil {
			return err
		}

		if proposal.MaterialChange {
			if err := s.applyProposal(ctx, tx, c.ID, proposal, resp); err != nil {
				return err
			}
		}

		if err := s.appendAnswerEvents(ctx, tx, c.ID, changes); err != nil {
			return err
		}

		return appendEvent(ctx, tx.Audit, c.ID, secondary.EventCandidatesGenerated, candidatesGeneratedPayload{
			Source:                   sourceReanalysis,
			RootCauseCandidateCount:  resp.NewRootCauseCount,
			ActionItemCandidateCount: resp.NewActionItemCount,
			AnswerSnapshot:           currentSnapshot,
			MaterialityRationale:     proposal.Rationale,
			NoChange:                 !proposal.MaterialChange,
			UpdatedCandidateCount:    resp.UpdatedCandidateCount,
		})
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// applyProposal writes a material re-analysis: label updates against the
// candidates as they exist under the lock, then the new candidates. Stale or
// forbidden updates are skipped, not failed.
func (s *AnalysisServiceImpl) applyProposal(ctx context.Context, tx secondary.Tx, caseID string, proposal *reconcile.ReanalysisProposal, resp *primary.ReanalyzeResponse) error {
	existing, err := s.existingCandidates(ctx, tx, caseID)
	if err != nil {
		return err
	}
	applied, skipped := reconcile.PartitionUpdates(existing, proposal.Updates)

	for _, u := range applied {
		switch u.CandidateType {
		case reconcile.TypeRootCause:
			err = tx.Candidates.UpdateRootCauseConfidence(ctx, u.CandidateID, u.NewLabel)
		case reconcile.TypeActionItem:
			err = tx.Candidates.UpdateActionItemPriority(ctx, u.CandidateID, u.NewLabel)
		}
		if err != nil {
			return fmt.Errorf("failed to update candidate %s: %w", u.CandidateID, err)
		}
		if err := appendEvent(ctx, tx.Audit, caseID, secondary.EventCandidateUpdated, candidateUpdatedPayload{
			CandidateID:   u.CandidateID,
			CandidateType: u.CandidateType,
			PreviousLabel: u.PreviousLabel,
			NewLabel:      u.NewLabel,
			Reason:        u.Reason,
		}); err != nil {
			return err
		}
	}

	if err := s.insertRootCauses(ctx, tx, caseID, proposal.NewRootCauses); err != nil {
		return err
	}
	if err := s.insertActionItems(ctx, tx, caseID, proposal.NewActionItems); err != nil {
		return err
	}

	resp.UpdatedCandidateCount = len(applied)
	resp.NewRootCauseCount = len(proposal.NewRootCauses)
	resp.NewActionItemCount = len(proposal.NewActionItems)
	for _, sk := range skipped {
		resp.SkippedUpdates = append(resp.SkippedUpdates, primary.SkippedUpdate{
			CandidateID:   sk.CandidateID,
			CandidateType: sk.CandidateType,
			Reason:        sk.Reason,
		})
	}
	return nil
}

func (s *AnalysisServiceImpl) loadCase(ctx context.Context, caseID string) (*secondary.CaseRecord, error) {
	c, err := s.caseRepo.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if c == nil || c.Deleted {
		return nil, &apperr.NotFoundError{Kind: "case", ID: caseID}
	}
	return c, nil
}

func (s *AnalysisServiceImpl) requireStatus(c *secondary.CaseRecord, want workflow.Status, reason string) error {
	if workflow.Status(c.Status) != want {
		return &apperr.ConflictError{Reason: fmt.Sprintf("%s (status is %s)", reason, c.Status)}
	}
	return nil
}

// requireReanalyzable checks the case is still accumulating evidence.
// Re-analysis stays available in actions_open because notes keep arriving
// while the items are worked.
func (s *AnalysisServiceImpl) requireReanalyzable(c *secondary.CaseRecord, reason string) error {
	switch workflow.Status(c.Status) {
	case workflow.StatusInvestigation, workflow.StatusActionsOpen:
		return nil
	}
	return &apperr.ConflictError{Reason: fmt.Sprintf("%s (status is %s)", reason, c.Status)}
}

// checkEvidence enforces the re-analysis preconditions: some evidence must
// exist, and some of it must postdate the last analysis. Re-running the model
// on unchanged evidence wastes a call and invites spurious materiality noise.
func (s *AnalysisServiceImpl) checkEvidence(c *secondary.CaseRecord, questions []*secondary.QuestionRecord, since time.Time) error {
	hasAnswer := false
	var answeredAt []time.Time
	for _, q := range questions {
		if q.Answer != "" {
			hasAnswer = true
		}
		if q.AnsweredAt != nil {
			answeredAt = append(answeredAt, *q.AnsweredAt)
		}
	}
	if !hasAnswer && c.Notes == "" {
		return &apperr.ConflictError{Reason: "no evidence to re-analyze; answer a question or add notes first"}
	}
	if !reconcile.HasNewEvidence(since, answeredAt, c.NotesUpdatedAt) {
		return &apperr.ConflictError{Reason: "no new evidence since the last analysis"}
	}
	return nil
}

// priorSnapshot recovers the answer snapshot from the last analysis event.
// An unreadable payload degrades to an empty snapshot: every current answer
// then diffs as newly submitted, which over-reports but never loses a change.
func priorSnapshot(event *secondary.AuditEventRecord) reconcile.AnswerSnapshot {
	var payload candidatesGeneratedPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil || payload.AnswerSnapshot == nil {
		return reconcile.AnswerSnapshot{}
	}
	return payload.AnswerSnapshot
}

func snapshotAnswers(questions []*secondary.QuestionRecord) reconcile.AnswerSnapshot {
	snapshot := make(reconcile.AnswerSnapshot, len(questions))
	for _, q := range questions {
		snapshot[q.ID] = q.Answer
	}
	return snapshot
}

func (s *AnalysisServiceImpl) existingCandidates(ctx context.Context, tx secondary.Tx, caseID string) ([]reconcile.ExistingCandidate, error) {
	rootCauses, err := tx.Candidates.ListRootCausesByCase(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list root cause candidates: %w", err)
	}
	actionItems, err := tx.Candidates.ListActionItemsByCase(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list action item candidates: %w", err)
	}

	existing := make([]reconcile.ExistingCandidate, 0, len(rootCauses)+len(actionItems))
	for _, rc := range rootCauses {
		existing = append(existing, reconcile.ExistingCandidate{
			ID:          rc.ID,
			Type:        reconcile.TypeRootCause,
			GeneratedBy: rc.GeneratedBy,
			Label:       rc.Confidence,
		})
	}
	for _, ai := range actionItems {
		existing = append(existing, reconcile.ExistingCandidate{
			ID:          ai.ID,
			Type:        reconcile.TypeActionItem,
			GeneratedBy: ai.GeneratedBy,
			Label:       ai.Priority,
		})
	}
	return existing, nil
}

func (s *AnalysisServiceImpl) insertQuestions(ctx context.Context, tx secondary.Tx, caseID string, proposed []reconcile.ProposedQuestion) error {
	if len(proposed) == 0 {
		return nil
	}
	records := make([]*secondary.QuestionRecord, len(proposed))
	for i, q := range proposed {
		records[i] = &secondary.QuestionRecord{
			CaseID:   caseID,
			Text:     q.Text,
			Category: q.Category,
		}
	}
	if err := tx.Questions.BulkCreate(ctx, records); err != nil {
		return fmt.Errorf("failed to create follow-up questions: %w", err)
	}
	return nil
}

func (s *AnalysisServiceImpl) insertRootCauses(ctx context.Context, tx secondary.Tx, caseID string, proposed []reconcile.ProposedRootCause) error {
	if len(proposed) == 0 {
		return nil
	}
	records := make([]*secondary.RootCauseCandidateRecord, len(proposed))
	for i, rc := range proposed {
		records[i] = &secondary.RootCauseCandidateRecord{
			CaseID:      caseID,
			CauseText:   rc.CauseText,
			Detail:      rc.Detail,
			Confidence:  rc.Confidence,
			GeneratedBy: reconcile.GeneratedByAI,
		}
	}
	if err := tx.Candidates.BulkCreateRootCauses(ctx, records); err != nil {
		return fmt.Errorf("failed to create root cause candidates: %w", err)
	}
	return nil
}

func (s *AnalysisServiceImpl) insertActionItems(ctx context.Context, tx secondary.Tx, caseID string, proposed []reconcile.ProposedActionItem) error {
	if len(proposed) == 0 {
		return nil
	}
	records := make([]*secondary.ActionItemCandidateRecord, len(proposed))
	for i, ai := range proposed {
		records[i] = &secondary.ActionItemCandidateRecord{
			CaseID:      caseID,
			Text:        ai.Text,
			Description: ai.Description,
			Priority:    ai.Priority,
			GeneratedBy: reconcile.GeneratedByAI,
		}
	}
	if err := tx.Candidates.BulkCreateActionItems(ctx, records); err != nil {
		return fmt.Errorf("failed to create action item candidates: %w", err)
	}
	return nil
}

func (s *AnalysisServiceImpl) appendAnswerEvents(ctx context.Context, tx secondary.Tx, caseID string, changes []reconcile.AnswerChange) error {
	for _, change := range changes {
		eventType := secondary.EventAnswerSubmitted
		if change.Kind == reconcile.AnswerUpdated {
			eventType = secondary.EventAnswerUpdated
		}
		if err := appendEvent(ctx, tx.Audit, caseID, eventType, answerPayload{
			QuestionID: change.QuestionID,
			Answer:     change.Answer,
		}); err != nil {
			return err
		}
	}
	return nil
}

// Ensure AnalysisServiceImpl implements the interface
var _ primary.AnalysisService = (*AnalysisServiceImpl)(nil)
