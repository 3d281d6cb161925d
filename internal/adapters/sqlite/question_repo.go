package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/rcfa/internal/ports/secondary"
)

// QuestionRepository implements secondary.QuestionRepository with SQLite.
type QuestionRepository struct {
	db DBTX
}

// NewQuestionRepository creates a new SQLite question repository.
func NewQuestionRepository(db DBTX) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// BulkCreate persists a batch of questions, assigning sequential IDs.
// Callers see the assigned IDs on the passed records.
func (r *QuestionRepository) BulkCreate(ctx context.Context, questions []*secondary.QuestionRecord) error {
	if len(questions) == 0 {
		return nil
	}

	var maxID int
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(CAST(SUBSTR(id, 3) AS INTEGER)), 0) FROM followup_questions",
	).Scan(&maxID)
	if err != nil {
		return fmt.Errorf("failed to get next question ID: %w", err)
	}

	for i, q := range questions {
		q.ID = fmt.Sprintf("Q-%03d", maxID+i+1)
		_, err := r.db.ExecContext(ctx,
			"INSERT INTO followup_questions (id, case_id, text, category) VALUES (?, ?, ?, ?)",
			q.ID, q.CaseID, q.Text, q.Category,
		)
		if err != nil {
			return fmt.Errorf("failed to create question: %w", err)
		}
	}
	return nil
}

const questionColumns = "id, case_id, text, category, answer, answered_by, answered_at, created_at"

func scanQuestion(scan func(dest ...any) error) (*secondary.QuestionRecord, error) {
	var (
		answer, answeredBy sql.NullString
		answeredAt         sql.NullTime
	)
	record := &secondary.QuestionRecord{}
	err := scan(&record.ID, &record.CaseID, &record.Text, &record.Category,
		&answer, &answeredBy, &answeredAt, &record.CreatedAt)
	if err != nil {
		return nil, err
	}
	record.Answer = answer.String
	record.AnsweredBy = answeredBy.String
	record.AnsweredAt = timePtr(answeredAt)
	return record, nil
}

// GetByID retrieves a question by its ID.
func (r *QuestionRepository) GetByID(ctx context.Context, id string) (*secondary.QuestionRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+questionColumns+" FROM followup_questions WHERE id = ?", id)
	record, err := scanQuestion(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return record, nil
}

// ListByCase retrieves all questions for a case in creation order.
func (r *QuestionRepository) ListByCase(ctx context.Context, caseID string) ([]*secondary.QuestionRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+questionColumns+" FROM followup_questions WHERE case_id = ? ORDER BY id", caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	defer rows.Close()

	var questions []*secondary.QuestionRecord
	for rows.Next() {
		record, err := scanQuestion(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, record)
	}
	return questions, rows.Err()
}

// Answer sets the answer text and answered-by/answered-at fields.
func (r *QuestionRepository) Answer(ctx context.Context, id, answer, answeredBy string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE followup_questions SET answer = ?, answered_by = ?, answered_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		answer, answeredBy, id,
	)
	if err != nil {
		return fmt.Errorf("failed to answer question: %w", err)
	}
	return requireRow(result, "question", id)
}

// Ensure QuestionRepository implements the interface
var _ secondary.QuestionRepository = (*QuestionRepository)(nil)
