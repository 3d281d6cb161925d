package sqlite_test

import (
	"context"
	"testing"

	"github.com/example/rcfa/internal/adapters/sqlite"
	"github.com/example/rcfa/internal/ports/secondary"
)

func TestQuestionRepository_BulkCreate(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewQuestionRepository(db)
	ctx := context.Background()

	seedCase(t, db, "CASE-001", "investigation")

	questions := []*secondary.QuestionRecord{
		{CaseID: "CASE-001", Text: "When was the seal last replaced?", Category: "maintenance_history"},
		{CaseID: "CASE-001", Text: "What was the suction pressure at startup?", Category: "operating_conditions"},
	}
	if err := repo.BulkCreate(ctx, questions); err != nil {
		t.Fatalf("BulkCreate failed: %v", err)
	}

	if questions[0].ID != "Q-001" || questions[1].ID != "Q-002" {
		t.Errorf("expected sequential IDs Q-001/Q-002, got %s/%s", questions[0].ID, questions[1].ID)
	}

	// A second batch continues the sequence.
	more := []*secondary.QuestionRecord{
		{CaseID: "CASE-001", Text: "Any recent process changes?", Category: "general"},
	}
	if err := repo.BulkCreate(ctx, more); err != nil {
		t.Fatalf("BulkCreate failed: %v", err)
	}
	if more[0].ID != "Q-003" {
		t.Errorf("expected Q-003, got %s", more[0].ID)
	}
}

func TestQuestionRepository_Answer(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewQuestionRepository(db)
	ctx := context.Background()

	seedCase(t, db, "CASE-001", "investigation")
	questions := []*secondary.QuestionRecord{
		{CaseID: "CASE-001", Text: "When was the seal last replaced?", Category: "maintenance_history"},
	}
	if err := repo.BulkCreate(ctx, questions); err != nil {
		t.Fatalf("BulkCreate failed: %v", err)
	}

	if err := repo.Answer(ctx, "Q-001", "Two weeks before the failure", "alice"); err != nil {
		t.Fatalf("Answer failed: %v", err)
	}

	got, err := repo.GetByID(ctx, "Q-001")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Answer != "Two weeks before the failure" {
		t.Errorf("unexpected answer: %q", got.Answer)
	}
	if got.AnsweredBy != "alice" {
		t.Errorf("expected answered_by alice, got %q", got.AnsweredBy)
	}
	if got.AnsweredAt == nil {
		t.Error("expected answered_at to be set")
	}
}

func TestQuestionRepository_AnswerMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewQuestionRepository(db)

	if err := repo.Answer(context.Background(), "Q-999", "answer", "alice"); err == nil {
		t.Error("expected error for missing question")
	}
}

func TestQuestionRepository_ListByCase(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewQuestionRepository(db)
	ctx := context.Background()

	seedCase(t, db, "CASE-001", "investigation")
	seedCase(t, db, "CASE-002", "investigation")

	batch := []*secondary.QuestionRecord{
		{CaseID: "CASE-001", Text: "Q one", Category: "general"},
		{CaseID: "CASE-002", Text: "Q two", Category: "general"},
		{CaseID: "CASE-001", Text: "Q three", Category: "general"},
	}
	if err := repo.BulkCreate(ctx, batch); err != nil {
		t.Fatalf("BulkCreate failed: %v", err)
	}

	got, err := repo.ListByCase(ctx, "CASE-001")
	if err != nil {
		t.Fatalf("ListByCase failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 questions for CASE-001, got %d", len(got))
	}
	if got[0].ID != "Q-001" || got[1].ID != "Q-003" {
		t.Errorf("expected Q-001 then Q-003, got %s then %s", got[0].ID, got[1].ID)
	}
}
