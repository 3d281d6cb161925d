package primary

import "context"

// QuestionService defines the primary port for follow-up questions.
// Questions are created only by the analysis engine; users answer them
// incrementally and they are never deleted.
type QuestionService interface {
	// ListQuestions retrieves the follow-up questions of a case.
	ListQuestions(ctx context.Context, caseID string) ([]*FollowUpQuestion, error)

	// AnswerQuestion records an answer to a follow-up question.
	AnswerQuestion(ctx context.Context, questionID, answer string) error
}

// FollowUpQuestion represents a follow-up question at the port boundary.
type FollowUpQuestion struct {
	ID         string
	CaseID     string
	Text       string
	Category   string
	Answer     string
	AnsweredBy string
	AnsweredAt string
	CreatedAt  string
}
