package sqlite_test

import (
	"context"
	"testing"

	"github.com/example/rcfa/internal/adapters/sqlite"
	"github.com/example/rcfa/internal/ports/secondary"
)

func seedRootCauseCandidate(t *testing.T, repo *sqlite.CandidateRepository, caseID string) string {
	t.Helper()
	candidates := []*secondary.RootCauseCandidateRecord{
		{CaseID: caseID, CauseText: "Seal installed dry", Confidence: "high", GeneratedBy: "ai"},
	}
	if err := repo.BulkCreateRootCauses(context.Background(), candidates); err != nil {
		t.Fatalf("failed to seed candidate: %v", err)
	}
	return candidates[0].ID
}

func TestFinalRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewFinalRepository(db)
	ctx := context.Background()

	seedCase(t, db, "CASE-001", "investigation")
	candidateID := seedRootCauseCandidate(t, sqlite.NewCandidateRepository(db), "CASE-001")

	final := &secondary.FinalRecord{
		ID:             "RF-001",
		CaseID:         "CASE-001",
		CauseText:      "Seal installed dry",
		Detail:         "Confirmed by teardown",
		PromotedFromID: candidateID,
		CreatedBy:      "alice",
	}
	if err := repo.Create(ctx, final); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.GetByID(ctx, "RF-001")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.PromotedFromID != candidateID {
		t.Errorf("expected promoted_from %s, got %q", candidateID, got.PromotedFromID)
	}
	if got.Detail != "Confirmed by teardown" {
		t.Errorf("unexpected detail: %q", got.Detail)
	}
}

func TestFinalRepository_PromotionIsUnique(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewFinalRepository(db)
	ctx := context.Background()

	seedCase(t, db, "CASE-001", "investigation")
	candidateID := seedRootCauseCandidate(t, sqlite.NewCandidateRepository(db), "CASE-001")

	first := &secondary.FinalRecord{
		ID: "RF-001", CaseID: "CASE-001", CauseText: "Seal installed dry",
		PromotedFromID: candidateID, CreatedBy: "alice",
	}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// The schema's unique constraint is the last line of defense against a
	// double promotion racing past the service check.
	second := &secondary.FinalRecord{
		ID: "RF-002", CaseID: "CASE-001", CauseText: "Seal installed dry",
		PromotedFromID: candidateID, CreatedBy: "bob",
	}
	if err := repo.Create(ctx, second); err == nil {
		t.Error("expected unique constraint violation for second promotion")
	}

	exists, err := repo.ExistsForCandidate(ctx, candidateID)
	if err != nil {
		t.Fatalf("ExistsForCandidate failed: %v", err)
	}
	if !exists {
		t.Error("expected ExistsForCandidate to be true")
	}
}

func TestFinalRepository_DirectFinalsDoNotCollide(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewFinalRepository(db)
	ctx := context.Background()

	seedCase(t, db, "CASE-001", "investigation")

	// Directly authored finals have NULL promoted_from_id; SQLite treats
	// NULLs as distinct, so several may coexist.
	for _, id := range []string{"RF-001", "RF-002"} {
		final := &secondary.FinalRecord{
			ID: id, CaseID: "CASE-001", CauseText: "Cause " + id, CreatedBy: "alice",
		}
		if err := repo.Create(ctx, final); err != nil {
			t.Fatalf("Create %s failed: %v", id, err)
		}
	}

	count, err := repo.CountByCase(ctx, "CASE-001")
	if err != nil {
		t.Fatalf("CountByCase failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 finals, got %d", count)
	}
}

func TestFinalRepository_GetNextID(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewFinalRepository(db)
	ctx := context.Background()

	id, err := repo.GetNextID(ctx)
	if err != nil {
		t.Fatalf("GetNextID failed: %v", err)
	}
	if id != "RF-001" {
		t.Errorf("expected RF-001, got %s", id)
	}
}

func TestFinalRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewFinalRepository(db)
	ctx := context.Background()

	seedCase(t, db, "CASE-001", "investigation")
	final := &secondary.FinalRecord{
		ID: "RF-001", CaseID: "CASE-001", CauseText: "Seal installed dry", CreatedBy: "alice",
	}
	if err := repo.Create(ctx, final); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := repo.Delete(ctx, "RF-001"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	got, _ := repo.GetByID(ctx, "RF-001")
	if got != nil {
		t.Error("expected final to be gone")
	}

	if err := repo.Delete(ctx, "RF-001"); err == nil {
		t.Error("expected error deleting missing final")
	}
}
