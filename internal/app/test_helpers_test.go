package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/example/rcfa/internal/apperr"
	"github.com/example/rcfa/internal/ctxutil"
	"github.com/example/rcfa/internal/ports/secondary"
)

// ============================================================================
// Mock Implementations
// ============================================================================

// Ensure the mocks implement the secondary ports
var (
	_ secondary.CaseRepository       = (*mockCaseRepository)(nil)
	_ secondary.QuestionRepository   = (*mockQuestionRepository)(nil)
	_ secondary.CandidateRepository  = (*mockCandidateRepository)(nil)
	_ secondary.FinalRepository      = (*mockFinalRepository)(nil)
	_ secondary.ActionItemRepository = (*mockItemRepository)(nil)
	_ secondary.UserRepository       = (*mockUserRepository)(nil)
	_ secondary.AuditRepository      = (*mockAuditRepository)(nil)
	_ secondary.CaseCoordinator      = (*mockCoordinator)(nil)
	_ secondary.CompletionClient     = (*mockCompletionClient)(nil)
)

// mockCaseRepository implements secondary.CaseRepository for testing.
type mockCaseRepository struct {
	cases     map[string]*secondary.CaseRecord
	createErr error
	getErr    error
	listErr   error
}

func newMockCaseRepository() *mockCaseRepository {
	return &mockCaseRepository{cases: make(map[string]*secondary.CaseRecord)}
}

func (m *mockCaseRepository) Create(ctx context.Context, c *secondary.CaseRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	m.cases[c.ID] = c
	return nil
}

func (m *mockCaseRepository) GetByID(ctx context.Context, id string) (*secondary.CaseRecord, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.cases[id], nil
}

func (m *mockCaseRepository) List(ctx context.Context, filters secondary.CaseFilters) ([]*secondary.CaseRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []*secondary.CaseRecord
	for _, c := range m.cases {
		if c.Deleted {
			continue
		}
		if filters.Status != "" && c.Status != filters.Status {
			continue
		}
		if filters.OwnerID != "" && c.OwnerID != filters.OwnerID {
			continue
		}
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	if filters.Limit > 0 && len(result) > filters.Limit {
		result = result[:filters.Limit]
	}
	return result, nil
}

func (m *mockCaseRepository) GetNextID(ctx context.Context) (string, error) {
	return fmt.Sprintf("CASE-%03d", len(m.cases)+1), nil
}

func (m *mockCaseRepository) UpdateStatus(ctx context.Context, id, status string) error {
	c, ok := m.cases[id]
	if !ok {
		return fmt.Errorf("case %s not found", id)
	}
	c.Status = status
	c.UpdatedAt = time.Now()
	return nil
}

func (m *mockCaseRepository) UpdateNotes(ctx context.Context, id, notes string) error {
	c, ok := m.cases[id]
	if !ok {
		return fmt.Errorf("case %s not found", id)
	}
	now := time.Now()
	c.Notes = notes
	c.NotesUpdatedAt = &now
	return nil
}

func (m *mockCaseRepository) SetClosing(ctx context.Context, id, closedBy, summary string) error {
	c, ok := m.cases[id]
	if !ok {
		return fmt.Errorf("case %s not found", id)
	}
	now := time.Now()
	c.ClosedBy = closedBy
	c.ClosedAt = &now
	c.ClosureSummary = summary
	return nil
}

func (m *mockCaseRepository) ClearClosing(ctx context.Context, id string) error {
	c, ok := m.cases[id]
	if !ok {
		return fmt.Errorf("case %s not found", id)
	}
	c.ClosedBy = ""
	c.ClosedAt = nil
	c.ClosureSummary = ""
	return nil
}

func (m *mockCaseRepository) SoftDelete(ctx context.Context, id string) error {
	c, ok := m.cases[id]
	if !ok {
		return fmt.Errorf("case %s not found", id)
	}
	c.Deleted = true
	return nil
}

// mockQuestionRepository implements secondary.QuestionRepository for testing.
type mockQuestionRepository struct {
	questions map[string]*secondary.QuestionRecord
	order     []string
	createErr error
	answerErr error
}

func newMockQuestionRepository() *mockQuestionRepository {
	return &mockQuestionRepository{questions: make(map[string]*secondary.QuestionRecord)}
}

func (m *mockQuestionRepository) BulkCreate(ctx context.Context, records []*secondary.QuestionRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, q := range records {
		q.ID = fmt.Sprintf("Q-%03d", len(m.questions)+1)
		q.CreatedAt = time.Now()
		m.questions[q.ID] = q
		m.order = append(m.order, q.ID)
	}
	return nil
}

func (m *mockQuestionRepository) GetByID(ctx context.Context, id string) (*secondary.QuestionRecord, error) {
	return m.questions[id], nil
}

func (m *mockQuestionRepository) ListByCase(ctx context.Context, caseID string) ([]*secondary.QuestionRecord, error) {
	var result []*secondary.QuestionRecord
	for _, id := range m.order {
		if q := m.questions[id]; q.CaseID == caseID {
			result = append(result, q)
		}
	}
	return result, nil
}

func (m *mockQuestionRepository) Answer(ctx context.Context, id, answer, answeredBy string) error {
	if m.answerErr != nil {
		return m.answerErr
	}
	q, ok := m.questions[id]
	if !ok {
		return fmt.Errorf("question %s not found", id)
	}
	now := time.Now()
	q.Answer = answer
	q.AnsweredBy = answeredBy
	q.AnsweredAt = &now
	return nil
}

// mockCandidateRepository implements secondary.CandidateRepository for testing.
type mockCandidateRepository struct {
	rootCauses  map[string]*secondary.RootCauseCandidateRecord
	actionItems map[string]*secondary.ActionItemCandidateRecord
	rcOrder     []string
	acOrder     []string
}

func newMockCandidateRepository() *mockCandidateRepository {
	return &mockCandidateRepository{
		rootCauses:  make(map[string]*secondary.RootCauseCandidateRecord),
		actionItems: make(map[string]*secondary.ActionItemCandidateRecord),
	}
}

func (m *mockCandidateRepository) BulkCreateRootCauses(ctx context.Context, records []*secondary.RootCauseCandidateRecord) error {
	for _, rc := range records {
		rc.ID = fmt.Sprintf("RC-%03d", len(m.rootCauses)+1)
		now := time.Now()
		rc.CreatedAt = now
		rc.UpdatedAt = now
		m.rootCauses[rc.ID] = rc
		m.rcOrder = append(m.rcOrder, rc.ID)
	}
	return nil
}

func (m *mockCandidateRepository) BulkCreateActionItems(ctx context.Context, records []*secondary.ActionItemCandidateRecord) error {
	for _, ac := range records {
		ac.ID = fmt.Sprintf("AC-%03d", len(m.actionItems)+1)
		now := time.Now()
		ac.CreatedAt = now
		ac.UpdatedAt = now
		m.actionItems[ac.ID] = ac
		m.acOrder = append(m.acOrder, ac.ID)
	}
	return nil
}

func (m *mockCandidateRepository) GetRootCauseByID(ctx context.Context, id string) (*secondary.RootCauseCandidateRecord, error) {
	return m.rootCauses[id], nil
}

func (m *mockCandidateRepository) GetActionItemByID(ctx context.Context, id string) (*secondary.ActionItemCandidateRecord, error) {
	return m.actionItems[id], nil
}

func (m *mockCandidateRepository) ListRootCausesByCase(ctx context.Context, caseID string) ([]*secondary.RootCauseCandidateRecord, error) {
	var result []*secondary.RootCauseCandidateRecord
	for _, id := range m.rcOrder {
		if rc := m.rootCauses[id]; rc.CaseID == caseID {
			result = append(result, rc)
		}
	}
	return result, nil
}

func (m *mockCandidateRepository) ListActionItemsByCase(ctx context.Context, caseID string) ([]*secondary.ActionItemCandidateRecord, error) {
	var result []*secondary.ActionItemCandidateRecord
	for _, id := range m.acOrder {
		if ac := m.actionItems[id]; ac.CaseID == caseID {
			result = append(result, ac)
		}
	}
	return result, nil
}

func (m *mockCandidateRepository) UpdateRootCauseConfidence(ctx context.Context, id, confidence string) error {
	rc, ok := m.rootCauses[id]
	if !ok {
		return fmt.Errorf("root cause candidate %s not found", id)
	}
	rc.Confidence = confidence
	rc.UpdatedAt = time.Now()
	return nil
}

func (m *mockCandidateRepository) UpdateActionItemPriority(ctx context.Context, id, priority string) error {
	ac, ok := m.actionItems[id]
	if !ok {
		return fmt.Errorf("action item candidate %s not found", id)
	}
	ac.Priority = priority
	ac.UpdatedAt = time.Now()
	return nil
}

// mockFinalRepository implements secondary.FinalRepository for testing.
type mockFinalRepository struct {
	finals map[string]*secondary.FinalRecord
	order  []string
}

func newMockFinalRepository() *mockFinalRepository {
	return &mockFinalRepository{finals: make(map[string]*secondary.FinalRecord)}
}

func (m *mockFinalRepository) Create(ctx context.Context, final *secondary.FinalRecord) error {
	final.CreatedAt = time.Now()
	m.finals[final.ID] = final
	m.order = append(m.order, final.ID)
	return nil
}

func (m *mockFinalRepository) GetByID(ctx context.Context, id string) (*secondary.FinalRecord, error) {
	return m.finals[id], nil
}

func (m *mockFinalRepository) ListByCase(ctx context.Context, caseID string) ([]*secondary.FinalRecord, error) {
	var result []*secondary.FinalRecord
	for _, id := range m.order {
		if f, ok := m.finals[id]; ok && f.CaseID == caseID {
			result = append(result, f)
		}
	}
	return result, nil
}

func (m *mockFinalRepository) CountByCase(ctx context.Context, caseID string) (int, error) {
	count := 0
	for _, f := range m.finals {
		if f.CaseID == caseID {
			count++
		}
	}
	return count, nil
}

func (m *mockFinalRepository) ExistsForCandidate(ctx context.Context, candidateID string) (bool, error) {
	for _, f := range m.finals {
		if f.PromotedFromID == candidateID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockFinalRepository) GetNextID(ctx context.Context) (string, error) {
	return fmt.Sprintf("RF-%03d", len(m.order)+1), nil
}

func (m *mockFinalRepository) Delete(ctx context.Context, id string) error {
	if _, ok := m.finals[id]; !ok {
		return fmt.Errorf("final %s not found", id)
	}
	delete(m.finals, id)
	return nil
}

// mockItemRepository implements secondary.ActionItemRepository for testing.
type mockItemRepository struct {
	items map[string]*secondary.ActionItemRecord
	order []string
}

func newMockItemRepository() *mockItemRepository {
	return &mockItemRepository{items: make(map[string]*secondary.ActionItemRecord)}
}

func (m *mockItemRepository) Create(ctx context.Context, item *secondary.ActionItemRecord) error {
	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now
	m.items[item.ID] = item
	m.order = append(m.order, item.ID)
	return nil
}

func (m *mockItemRepository) GetByID(ctx context.Context, id string) (*secondary.ActionItemRecord, error) {
	return m.items[id], nil
}

func (m *mockItemRepository) ListByCase(ctx context.Context, caseID string) ([]*secondary.ActionItemRecord, error) {
	var result []*secondary.ActionItemRecord
	for _, id := range m.order {
		if item, ok := m.items[id]; ok && item.CaseID == caseID {
			result = append(result, item)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Number < result[j].Number })
	return result, nil
}

func (m *mockItemRepository) NextNumber(ctx context.Context, caseID string) (int, error) {
	max := 0
	for _, item := range m.items {
		if item.CaseID == caseID && item.Number > max {
			max = item.Number
		}
	}
	return max + 1, nil
}

func (m *mockItemRepository) GetNextID(ctx context.Context) (string, error) {
	return fmt.Sprintf("AI-%03d", len(m.order)+1), nil
}

func (m *mockItemRepository) Update(ctx context.Context, item *secondary.ActionItemRecord) error {
	existing, ok := m.items[item.ID]
	if !ok {
		return fmt.Errorf("action item %s not found", item.ID)
	}
	*existing = *item
	existing.UpdatedAt = time.Now()
	return nil
}

func (m *mockItemRepository) SetStatus(ctx context.Context, id, status, completionNote string) error {
	item, ok := m.items[id]
	if !ok {
		return fmt.Errorf("action item %s not found", id)
	}
	item.Status = status
	if status == "done" {
		now := time.Now()
		item.CompletedAt = &now
		item.CompletionNote = completionNote
	} else {
		item.CompletedAt = nil
		item.CompletionNote = ""
	}
	return nil
}

func (m *mockItemRepository) ActivateDrafts(ctx context.Context, ids []string) error {
	for _, id := range ids {
		if item, ok := m.items[id]; ok && item.Status == "draft" {
			item.Status = "open"
		}
	}
	return nil
}

func (m *mockItemRepository) Delete(ctx context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return fmt.Errorf("action item %s not found", id)
	}
	delete(m.items, id)
	return nil
}

// mockUserRepository implements secondary.UserRepository for testing.
type mockUserRepository struct {
	users map[string]*secondary.UserRecord
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[string]*secondary.UserRecord)}
}

func (m *mockUserRepository) Create(ctx context.Context, user *secondary.UserRecord) error {
	user.CreatedAt = time.Now()
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*secondary.UserRecord, error) {
	return m.users[id], nil
}

func (m *mockUserRepository) List(ctx context.Context) ([]*secondary.UserRecord, error) {
	var result []*secondary.UserRecord
	for _, u := range m.users {
		result = append(result, u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockUserRepository) SetActive(ctx context.Context, id string, active bool) error {
	u, ok := m.users[id]
	if !ok {
		return fmt.Errorf("user %s not found", id)
	}
	u.Active = active
	return nil
}

// mockAuditRepository implements secondary.AuditRepository for testing.
type mockAuditRepository struct {
	events    []*secondary.AuditEventRecord
	appendErr error
}

func newMockAuditRepository() *mockAuditRepository {
	return &mockAuditRepository{}
}

func (m *mockAuditRepository) Append(ctx context.Context, event *secondary.AuditEventRecord) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	event.ID = int64(len(m.events) + 1)
	event.CreatedAt = time.Now()
	m.events = append(m.events, event)
	return nil
}

func (m *mockAuditRepository) ListByCase(ctx context.Context, caseID string) ([]*secondary.AuditEventRecord, error) {
	var result []*secondary.AuditEventRecord
	for _, e := range m.events {
		if e.CaseID == caseID {
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *mockAuditRepository) LastGenerated(ctx context.Context, caseID string) (*secondary.AuditEventRecord, error) {
	for i := len(m.events) - 1; i >= 0; i-- {
		e := m.events[i]
		if e.CaseID == caseID && e.EventType == secondary.EventCandidatesGenerated {
			return e, nil
		}
	}
	return nil, nil
}

// eventTypes returns the types of the events recorded for a case, in append
// order.
func (m *mockAuditRepository) eventTypes(caseID string) []string {
	var types []string
	for _, e := range m.events {
		if e.CaseID == caseID {
			types = append(types, e.EventType)
		}
	}
	return types
}

// mockCoordinator implements secondary.CaseCoordinator against the mocks.
// There is no real transaction: fn mutates the mocks directly, which is fine
// for exercising service logic.
type mockCoordinator struct {
	tx       secondary.Tx
	cases    *mockCaseRepository
	beginErr error
}

func (m *mockCoordinator) WithCase(ctx context.Context, caseID string, fn func(tx secondary.Tx, c *secondary.CaseRecord) error) error {
	if m.beginErr != nil {
		return m.beginErr
	}
	c, err := m.cases.GetByID(ctx, caseID)
	if err != nil {
		return err
	}
	if c == nil {
		return &apperr.NotFoundError{Kind: "case", ID: caseID}
	}
	return fn(m.tx, c)
}

func (m *mockCoordinator) WithTx(ctx context.Context, fn func(tx secondary.Tx) error) error {
	if m.beginErr != nil {
		return m.beginErr
	}
	return fn(m.tx)
}

// mockCompletionClient implements secondary.CompletionClient for testing.
type mockCompletionClient struct {
	response string
	err      error
	prompts  []string
}

func (m *mockCompletionClient) Complete(ctx context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

// ============================================================================
// Test Environment
// ============================================================================

// testEnv wires every mock together the way the real composition root does.
type testEnv struct {
	cases      *mockCaseRepository
	questions  *mockQuestionRepository
	candidates *mockCandidateRepository
	finals     *mockFinalRepository
	items      *mockItemRepository
	users      *mockUserRepository
	audit      *mockAuditRepository
	coord      *mockCoordinator
	completion *mockCompletionClient
}

func newTestEnv() *testEnv {
	env := &testEnv{
		cases:      newMockCaseRepository(),
		questions:  newMockQuestionRepository(),
		candidates: newMockCandidateRepository(),
		finals:     newMockFinalRepository(),
		items:      newMockItemRepository(),
		users:      newMockUserRepository(),
		audit:      newMockAuditRepository(),
		completion: &mockCompletionClient{},
	}
	env.coord = &mockCoordinator{
		tx: secondary.Tx{
			Cases:      env.cases,
			Questions:  env.questions,
			Candidates: env.candidates,
			Finals:     env.finals,
			Items:      env.items,
			Users:      env.users,
			Audit:      env.audit,
		},
		cases: env.cases,
	}
	return env
}

func (env *testEnv) caseService() *CaseServiceImpl {
	return NewCaseService(env.cases, env.coord)
}

func (env *testEnv) analysisService() *AnalysisServiceImpl {
	return NewAnalysisService(env.cases, env.questions, env.candidates, env.audit, env.coord, env.completion)
}

func (env *testEnv) candidateService() *CandidateServiceImpl {
	return NewCandidateService(env.cases, env.candidates, env.finals, env.coord)
}

func (env *testEnv) itemService() *ActionItemServiceImpl {
	return NewActionItemService(env.cases, env.items, env.users, env.coord)
}

func (env *testEnv) questionService() *QuestionServiceImpl {
	return NewQuestionService(env.cases, env.questions, env.coord)
}

func (env *testEnv) seedCase(id, status, creator string) *secondary.CaseRecord {
	now := time.Now()
	c := &secondary.CaseRecord{
		ID:                 id,
		Title:              "Pump seal failure",
		Asset:              "P-101",
		FailureDescription: "Mechanical seal leaked after restart",
		Status:             status,
		OwnerID:            creator,
		CreatorID:          creator,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	env.cases.cases[id] = c
	return c
}

func (env *testEnv) seedUser(id string, active bool) {
	env.users.users[id] = &secondary.UserRecord{
		ID:        id,
		Name:      id,
		Role:      ctxutil.RoleMember,
		Active:    active,
		CreatedAt: time.Now(),
	}
}

func (env *testEnv) seedItem(id, caseID string, number int, status, owner string, withDueDate bool) *secondary.ActionItemRecord {
	now := time.Now()
	item := &secondary.ActionItemRecord{
		ID:          id,
		CaseID:      caseID,
		Number:      number,
		Title:       fmt.Sprintf("Replace seal %d", number),
		Description: "Swap the worn seal for the upgraded part",
		Priority:    "medium",
		Status:      status,
		OwnerID:     owner,
		CreatedBy:   owner,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if withDueDate {
		due := now.Add(7 * 24 * time.Hour)
		item.DueDate = &due
	}
	env.items.items[id] = item
	env.items.order = append(env.items.order, id)
	return item
}

func (env *testEnv) seedFinal(id, caseID, promotedFrom string) *secondary.FinalRecord {
	f := &secondary.FinalRecord{
		ID:             id,
		CaseID:         caseID,
		CauseText:      "Seal installed dry",
		PromotedFromID: promotedFrom,
		CreatedBy:      "alice",
		CreatedAt:      time.Now(),
	}
	env.finals.finals[id] = f
	env.finals.order = append(env.finals.order, id)
	return f
}

func memberCtx(userID string) context.Context {
	return ctxutil.WithActor(context.Background(), ctxutil.Actor{UserID: userID, Role: ctxutil.RoleMember})
}

func adminCtx(userID string) context.Context {
	return ctxutil.WithActor(context.Background(), ctxutil.Actor{UserID: userID, Role: ctxutil.RoleAdmin})
}
