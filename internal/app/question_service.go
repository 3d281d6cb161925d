package app

import (
	"context"
	"fmt"

	"github.com/example/rcfa/internal/apperr"
	"github.com/example/rcfa/internal/core/workflow"
	"github.com/example/rcfa/internal/ports/primary"
	"github.com/example/rcfa/internal/ports/secondary"
)

// QuestionServiceImpl implements the QuestionService interface.
//
// No audit event is written when an answer lands. Answer events are emitted
// by the next re-analysis, which diffs the live answers against the snapshot
// stored in the previous candidates_generated event; that ties each answer
// event to the analysis that actually consumed the answer.
type QuestionServiceImpl struct {
	caseRepo     secondary.CaseRepository
	questionRepo secondary.QuestionRepository
	coord        secondary.CaseCoordinator
}

// NewQuestionService creates a new QuestionService with injected dependencies.
func NewQuestionService(
	caseRepo secondary.CaseRepository,
	questionRepo secondary.QuestionRepository,
	coord secondary.CaseCoordinator,
) *QuestionServiceImpl {
	return &QuestionServiceImpl{
		caseRepo:     caseRepo,
		questionRepo: questionRepo,
		coord:        coord,
	}
}

// ListQuestions retrieves the follow-up questions of a case.
func (s *QuestionServiceImpl) ListQuestions(ctx context.Context, caseID string) ([]*primary.FollowUpQuestion, error) {
	c, err := s.caseRepo.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if c == nil || c.Deleted {
		return nil, &apperr.NotFoundError{Kind: "case", ID: caseID}
	}
	records, err := s.questionRepo.ListByCase(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	questions := make([]*primary.FollowUpQuestion, len(records))
	for i, r := range records {
		questions[i] = s.recordToQuestion(r)
	}
	return questions, nil
}

// AnswerQuestion records an answer to a follow-up question. Answers may be
// revised; the re-analysis snapshot diff reports the revision.
func (s *QuestionServiceImpl) AnswerQuestion(ctx context.Context, questionID, answer string) error {
	actor, err := requireActor(ctx)
	if err != nil {
		return err
	}
	if answer == "" {
		return apperr.NewValidation("answer", "required")
	}

	question, err := s.questionRepo.GetByID(ctx, questionID)
	if err != nil {
		return err
	}
	if question == nil {
		return &apperr.NotFoundError{Kind: "question", ID: questionID}
	}

	return s.coord.WithCase(ctx, question.CaseID, func(tx secondary.Tx, c *secondary.CaseRecord) error {
		if err := requireLiveCase(c); err != nil {
			return err
		}
		if workflow.Status(c.Status) != workflow.StatusInvestigation {
			return &apperr.ConflictError{
				Reason: fmt.Sprintf("answers are recorded during investigation (case status is %s)", c.Status),
			}
		}
		question, err := tx.Questions.GetByID(ctx, questionID)
		if err != nil {
			return err
		}
		if question == nil {
			return &apperr.NotFoundError{Kind: "question", ID: questionID}
		}
		if err := tx.Questions.Answer(ctx, question.ID, answer, actor.UserID); err != nil {
			return fmt.Errorf("failed to record answer: %w", err)
		}
		return nil
	})
}

// Helper methods

func (s *QuestionServiceImpl) recordToQuestion(r *secondary.QuestionRecord) *primary.FollowUpQuestion {
	return &primary.FollowUpQuestion{
		ID:         r.ID,
		CaseID:     r.CaseID,
		Text:       r.Text,
		Category:   r.Category,
		Answer:     r.Answer,
		AnsweredBy: r.AnsweredBy,
		AnsweredAt: formatTimePtr(r.AnsweredAt),
		CreatedAt:  formatTime(r.CreatedAt),
	}
}

// Ensure QuestionServiceImpl implements the interface
var _ primary.QuestionService = (*QuestionServiceImpl)(nil)
