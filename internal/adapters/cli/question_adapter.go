package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/example/rcfa/internal/ports/primary"
)

// QuestionAdapter is a thin adapter that translates CLI operations to
// QuestionService calls.
type QuestionAdapter struct {
	service primary.QuestionService
	out     io.Writer
}

// NewQuestionAdapter creates a new QuestionAdapter with the given service.
func NewQuestionAdapter(service primary.QuestionService, out io.Writer) *QuestionAdapter {
	return &QuestionAdapter{service: service, out: out}
}

// List prints the follow-up questions of a case, answers inline.
func (a *QuestionAdapter) List(ctx context.Context, caseID string) error {
	questions, err := a.service.ListQuestions(ctx, caseID)
	if err != nil {
		return err
	}
	if len(questions) == 0 {
		fmt.Fprintln(a.out, "No follow-up questions")
		return nil
	}

	for _, q := range questions {
		category := color.New(color.FgHiBlack).Sprintf("[%s]", q.Category)
		fmt.Fprintf(a.out, "%s %s %s\n", q.ID, category, q.Text)
		if q.Answer != "" {
			fmt.Fprintf(a.out, "    %s %s (%s)\n", color.New(color.FgHiGreen).Sprint("A:"), q.Answer, q.AnsweredBy)
		} else {
			fmt.Fprintf(a.out, "    %s\n", color.New(color.FgHiBlack).Sprint("unanswered"))
		}
	}
	return nil
}

// Answer records an answer to a follow-up question.
func (a *QuestionAdapter) Answer(ctx context.Context, questionID, answer string) error {
	if err := a.service.AnswerQuestion(ctx, questionID, answer); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Answered %s\n", questionID)
	return nil
}
