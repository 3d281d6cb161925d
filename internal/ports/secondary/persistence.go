// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import (
	"context"
	"time"
)

// CaseRepository defines the secondary port for case persistence.
// Lookups return (nil, nil) when no row matches; the service layer decides
// how a missing case surfaces to the caller.
type CaseRepository interface {
	// Create persists a new case.
	Create(ctx context.Context, c *CaseRecord) error

	// GetByID retrieves a case by its ID, including soft-deleted ones.
	GetByID(ctx context.Context, id string) (*CaseRecord, error)

	// List retrieves cases matching the given filters. Soft-deleted cases
	// are excluded.
	List(ctx context.Context, filters CaseFilters) ([]*CaseRecord, error)

	// GetNextID returns the next available case ID.
	GetNextID(ctx context.Context) (string, error)

	// UpdateStatus sets the case status.
	UpdateStatus(ctx context.Context, id, status string) error

	// UpdateNotes replaces the free-form investigation notes and bumps
	// their timestamp.
	UpdateNotes(ctx context.Context, id, notes string) error

	// SetClosing records who closed the case and the closure summary.
	SetClosing(ctx context.Context, id, closedBy, summary string) error

	// ClearClosing removes the closing fields when a case is reopened.
	ClearClosing(ctx context.Context, id string) error

	// SoftDelete marks the case deleted without removing its children.
	SoftDelete(ctx context.Context, id string) error
}

// CaseRecord represents a case as stored in persistence.
type CaseRecord struct {
	ID                 string // human-readable sequence, CASE-NNN
	Title              string
	Asset              string
	FailureDescription string
	Background         string
	Status             string
	OwnerID            string
	CreatorID          string
	Notes              string
	NotesUpdatedAt     *time.Time
	Deleted            bool
	ClosedBy           string
	ClosedAt           *time.Time
	ClosureSummary     string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// CaseFilters contains filter options for querying cases.
type CaseFilters struct {
	Status  string
	OwnerID string
	Limit   int
}

// QuestionRepository defines the secondary port for follow-up question
// persistence. Questions are created in batches during analysis and never
// deleted.
type QuestionRepository interface {
	// BulkCreate persists a batch of questions, assigning their IDs.
	BulkCreate(ctx context.Context, questions []*QuestionRecord) error

	// GetByID retrieves a question by its ID.
	GetByID(ctx context.Context, id string) (*QuestionRecord, error)

	// ListByCase retrieves all questions for a case in creation order.
	ListByCase(ctx context.Context, caseID string) ([]*QuestionRecord, error)

	// Answer sets the answer text and answered-by/answered-at fields.
	Answer(ctx context.Context, id, answer, answeredBy string) error
}

// QuestionRecord represents a follow-up question as stored in persistence.
type QuestionRecord struct {
	ID         string
	CaseID     string
	Text       string
	Category   string
	Answer     string
	AnsweredBy string
	AnsweredAt *time.Time
	CreatedAt  time.Time
}

// CandidateRepository defines the secondary port for root-cause and
// action-item candidate persistence.
type CandidateRepository interface {
	// BulkCreateRootCauses persists a batch of root-cause candidates,
	// assigning their IDs.
	BulkCreateRootCauses(ctx context.Context, candidates []*RootCauseCandidateRecord) error

	// BulkCreateActionItems persists a batch of action-item candidates,
	// assigning their IDs.
	BulkCreateActionItems(ctx context.Context, candidates []*ActionItemCandidateRecord) error

	// GetRootCauseByID retrieves a root-cause candidate by its ID.
	GetRootCauseByID(ctx context.Context, id string) (*RootCauseCandidateRecord, error)

	// GetActionItemByID retrieves an action-item candidate by its ID.
	GetActionItemByID(ctx context.Context, id string) (*ActionItemCandidateRecord, error)

	// ListRootCausesByCase retrieves all root-cause candidates for a case.
	ListRootCausesByCase(ctx context.Context, caseID string) ([]*RootCauseCandidateRecord, error)

	// ListActionItemsByCase retrieves all action-item candidates for a case.
	ListActionItemsByCase(ctx context.Context, caseID string) ([]*ActionItemCandidateRecord, error)

	// UpdateRootCauseConfidence sets the confidence label of a root-cause
	// candidate.
	UpdateRootCauseConfidence(ctx context.Context, id, confidence string) error

	// UpdateActionItemPriority sets the priority label of an action-item
	// candidate.
	UpdateActionItemPriority(ctx context.Context, id, priority string) error
}

// RootCauseCandidateRecord represents a root-cause candidate as stored in
// persistence.
type RootCauseCandidateRecord struct {
	ID          string
	CaseID      string
	CauseText   string
	Detail      string
	Confidence  string
	GeneratedBy string // "ai" or "human"
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ActionItemCandidateRecord represents an action-item candidate as stored in
// persistence.
type ActionItemCandidateRecord struct {
	ID          string
	CaseID      string
	Text        string
	Description string
	Priority    string
	GeneratedBy string // "ai" or "human"
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// FinalRepository defines the secondary port for ratified root causes.
type FinalRepository interface {
	// Create persists a new final root cause.
	Create(ctx context.Context, final *FinalRecord) error

	// GetByID retrieves a final by its ID.
	GetByID(ctx context.Context, id string) (*FinalRecord, error)

	// ListByCase retrieves all finals for a case.
	ListByCase(ctx context.Context, caseID string) ([]*FinalRecord, error)

	// CountByCase returns the number of finals for a case.
	CountByCase(ctx context.Context, caseID string) (int, error)

	// ExistsForCandidate reports whether a final already references the
	// given candidate.
	ExistsForCandidate(ctx context.Context, candidateID string) (bool, error)

	// GetNextID returns the next available final ID.
	GetNextID(ctx context.Context) (string, error)

	// Delete removes a final.
	Delete(ctx context.Context, id string) error
}

// FinalRecord represents a ratified root cause as stored in persistence.
// PromotedFromID is empty when the final was authored directly.
type FinalRecord struct {
	ID             string
	CaseID         string
	CauseText      string
	Detail         string
	PromotedFromID string
	CreatedBy      string
	CreatedAt      time.Time
}

// ActionItemRepository defines the secondary port for action items.
type ActionItemRepository interface {
	// Create persists a new action item.
	Create(ctx context.Context, item *ActionItemRecord) error

	// GetByID retrieves an action item by its ID.
	GetByID(ctx context.Context, id string) (*ActionItemRecord, error)

	// ListByCase retrieves all action items for a case ordered by number.
	ListByCase(ctx context.Context, caseID string) ([]*ActionItemRecord, error)

	// NextNumber returns the next per-case item number.
	NextNumber(ctx context.Context, caseID string) (int, error)

	// GetNextID returns the next available item ID.
	GetNextID(ctx context.Context) (string, error)

	// Update replaces the item's editable fields (title, description,
	// priority, owner, due date).
	Update(ctx context.Context, item *ActionItemRecord) error

	// SetStatus sets the item status and, for done items, the completion
	// fields.
	SetStatus(ctx context.Context, id, status, completionNote string) error

	// ActivateDrafts transitions the given draft items to open.
	ActivateDrafts(ctx context.Context, ids []string) error

	// Delete removes an action item.
	Delete(ctx context.Context, id string) error
}

// ActionItemRecord represents an action item as stored in persistence.
type ActionItemRecord struct {
	ID             string
	CaseID         string
	Number         int
	Title          string
	Description    string
	Priority       string
	Status         string
	OwnerID        string
	DueDate        *time.Time
	CompletedAt    *time.Time
	CompletionNote string
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// UserRepository defines the secondary port for user lookups. The workflow
// core only needs enough of the user model to gate transitions and to
// re-verify owners at finalize time.
type UserRepository interface {
	// Create persists a new user.
	Create(ctx context.Context, user *UserRecord) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id string) (*UserRecord, error)

	// List retrieves all users.
	List(ctx context.Context) ([]*UserRecord, error)

	// SetActive toggles the user's active flag.
	SetActive(ctx context.Context, id string, active bool) error
}

// UserRecord represents a user as stored in persistence.
type UserRecord struct {
	ID        string
	Name      string
	Role      string // "member" or "admin"
	Active    bool
	CreatedAt time.Time
}

// Audit event types. Payloads are typed per event in the app layer.
const (
	EventCaseCreated             = "case_created"
	EventCaseDeleted             = "case_deleted"
	EventCaseReopened            = "case_reopened"
	EventStatusChanged           = "status_changed"
	EventNotesUpdated            = "notes_updated"
	EventCandidatesGenerated     = "candidates_generated"
	EventCandidateAdded          = "candidate_added"
	EventCandidateUpdated        = "candidate_updated"
	EventAnswerSubmitted         = "answer_submitted"
	EventAnswerUpdated           = "answer_updated"
	EventDraftItemsActivated     = "draft_items_activated"
	EventFinalAdded              = "final_added"
	EventFinalDeleted            = "final_deleted"
	EventActionItemAdded         = "action_item_added"
	EventActionItemUpdated       = "action_item_updated"
	EventActionItemStatusChanged = "action_item_status_changed"
	EventActionItemDeleted       = "action_item_deleted"
)

// AuditRepository defines the secondary port for the append-only audit log.
// There is deliberately no update or delete.
type AuditRepository interface {
	// Append persists a new audit event.
	Append(ctx context.Context, event *AuditEventRecord) error

	// ListByCase retrieves all events for a case in append order.
	ListByCase(ctx context.Context, caseID string) ([]*AuditEventRecord, error)

	// LastGenerated retrieves the most recent candidates_generated event
	// for a case, or (nil, nil) if none exists.
	LastGenerated(ctx context.Context, caseID string) (*AuditEventRecord, error)
}

// AuditEventRecord represents one immutable audit event.
type AuditEventRecord struct {
	ID        int64
	CaseID    string
	EventType string
	ActorID   string
	Payload   []byte // JSON, shape fixed per event type
	CreatedAt time.Time
}

// Tx bundles the repositories bound to one open transaction. Everything a
// mutation touches goes through the same Tx so the audit events commit with
// the state change or not at all.
type Tx struct {
	Cases      CaseRepository
	Questions  QuestionRepository
	Candidates CandidateRepository
	Finals     FinalRepository
	Items      ActionItemRepository
	Users      UserRepository
	Audit      AuditRepository
}

// CaseCoordinator runs a function against a locked case inside one write
// transaction. WithCase begins the transaction, re-reads the case row under
// the transaction's lock, and invokes fn with the freshly read record. A nil
// return commits; any error rolls back everything fn wrote. Callers re-check
// their preconditions against the re-read record, because the case may have
// changed between their initial read and the lock acquisition.
type CaseCoordinator interface {
	WithCase(ctx context.Context, caseID string, fn func(tx Tx, c *CaseRecord) error) error

	// WithTx runs fn inside one write transaction without binding it to an
	// existing case row. Used for operations that create the case itself.
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}
