package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/rcfa/internal/apperr"
	"github.com/example/rcfa/internal/ports/secondary"
)

// CaseCoordinator implements secondary.CaseCoordinator over a single
// connection pool.
type CaseCoordinator struct {
	db *sql.DB
}

// NewCaseCoordinator creates a new coordinator.
func NewCaseCoordinator(db *sql.DB) *CaseCoordinator {
	return &CaseCoordinator{db: db}
}

// newTx binds every repository to the same query executor.
func newTx(q DBTX) secondary.Tx {
	return secondary.Tx{
		Cases:      NewCaseRepository(q),
		Questions:  NewQuestionRepository(q),
		Candidates: NewCandidateRepository(q),
		Finals:     NewFinalRepository(q),
		Items:      NewActionItemRepository(q),
		Users:      NewUserRepository(q),
		Audit:      NewAuditRepository(q),
	}
}

// WithCase begins a write transaction, re-reads the case row under the
// transaction's lock, and invokes fn. The database is opened with
// _txlock=immediate, so BEGIN acquires the write lock: two concurrent
// mutations serialize here, and the loser re-validates against the row the
// winner committed. A nil return from fn commits; any error rolls back.
func (c *CaseCoordinator) WithCase(ctx context.Context, caseID string, fn func(tx secondary.Tx, rec *secondary.CaseRecord) error) error {
	sqlTx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = sqlTx.Rollback()
		}
	}()

	tx := newTx(sqlTx)
	record, err := tx.Cases.GetByID(ctx, caseID)
	if err != nil {
		return err
	}
	if record == nil {
		return &apperr.NotFoundError{Kind: "case", ID: caseID}
	}

	if err := fn(tx, record); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true
	return nil
}

// WithTx runs fn inside one write transaction without re-reading a case row.
// Case creation goes through here: there is no row to lock yet.
func (c *CaseCoordinator) WithTx(ctx context.Context, fn func(tx secondary.Tx) error) error {
	sqlTx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = sqlTx.Rollback()
		}
	}()

	if err := fn(newTx(sqlTx)); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true
	return nil
}

// Ensure CaseCoordinator implements the interface
var _ secondary.CaseCoordinator = (*CaseCoordinator)(nil)
