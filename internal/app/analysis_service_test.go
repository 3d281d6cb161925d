package app

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/example/rcfa/internal/apperr"
	"github.com/example/rcfa/internal/core/reconcile"
	"github.com/example/rcfa/internal/ports/primary"
	"github.com/example/rcfa/internal/ports/secondary"
)

const initialResponse = "```json\n" + `{
  "followUpQuestions": [
    {"text": "When was the seal last replaced?", "category": "maintenance"},
    {"text": "What was the suction pressure at restart?", "category": "evidence"}
  ],
  "rootCauseCandidates": [
    {"causeText": "Seal installed dry", "detail": "No barrier fluid during commissioning", "confidence": "medium"},
    {"causeText": "Pipe strain on the casing", "detail": "", "confidence": "low"}
  ],
  "actionItemCandidates": [
    {"text": "Revise commissioning checklist", "description": "Add barrier fluid verification", "priority": "high"}
  ]
}` + "\n```"

func TestAnalyze(t *testing.T) {
	env := newTestEnv()
	env.seedCase("CASE-001", "draft", "alice")
	env.completion.response = initialResponse
	svc := env.analysisService()

	resp, err := svc.Analyze(memberCtx("alice"), "CASE-001")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if resp.FollowUpQuestionCount != 2 || resp.RootCauseCandidateCount != 2 || resp.ActionItemCandidateCount != 1 {
		t.Errorf("unexpected counts: %+v", resp)
	}
	if got := env.cases.cases["CASE-001"].Status; got != "investigation" {
		t.Errorf("expected investigation status, got %s", got)
	}

	questions, _ := env.questions.ListByCase(memberCtx("alice"), "CASE-001")
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}
	if questions[0].ID != "Q-001" || questions[0].Category != "maintenance" {
		t.Errorf("unexpected first question: %+v", questions[0])
	}

	rootCauses, _ := env.candidates.ListRootCausesByCase(memberCtx("alice"), "CASE-001")
	if len(rootCauses) != 2 {
		t.Fatalf("expected 2 root cause candidates, got %d", len(rootCauses))
	}
	for _, rc := range rootCauses {
		if rc.GeneratedBy != reconcile.GeneratedByAI {
			t.Errorf("expected candidate %s tagged ai, got %s", rc.ID, rc.GeneratedBy)
		}
	}

	types := env.audit.eventTypes("CASE-001")
	want := []string{secondary.EventCandidatesGenerated, secondary.EventStatusChanged}
	if diff := cmp.Diff(want, types); diff != "" {
		t.Errorf("audit events mismatch (-want +got):\n%s", diff)
	}

	var payload candidatesGeneratedPayload
	if err := json.Unmarshal(env.audit.events[0].Payload, &payload); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if payload.Source != sourceInitial || payload.RootCauseCandidateCount != 2 {
		t.Errorf("unexpected payload: %+v", payload)
	}
	if len(payload.AnswerSnapshot) != 0 {
		t.Errorf("expected empty answer snapshot, got %v", payload.AnswerSnapshot)
	}
}

func TestAnalyzeRequiresDraft(t *testing.T) {
	env := newTestEnv()
	env.seedCase("CASE-001", "investigation", "alice")
	svc := env.analysisService()

	_, err := svc.Analyze(memberCtx("alice"), "CASE-001")
	var cerr *apperr.ConflictError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if len(env.completion.prompts) != 0 {
		t.Errorf("expected no model call on a rejected precondition")
	}
}

func TestAnalyzeUpstreamFailure(t *testing.T) {
	env := newTestEnv()
	env.seedCase("CASE-001", "draft", "alice")
	env.completion.err = errors.New("gateway timeout")
	svc := env.analysisService()

	_, err := svc.Analyze(memberCtx("alice"), "CASE-001")
	var uerr *apperr.UpstreamError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if got := env.cases.cases["CASE-001"].Status; got != "draft" {
		t.Errorf("expected case untouched, got status %s", got)
	}
	if len(env.audit.events) != 0 {
		t.Errorf("expected no audit events, got %d", len(env.audit.events))
	}
}

func TestAnalyzeMalformedResponse(t *testing.T) {
	env := newTestEnv()
	env.seedCase("CASE-001", "draft", "alice")
	env.completion.response = `{"rootCauseCandidates": []}`
	svc := env.analysisService()

	_, err := svc.Analyze(memberCtx("alice"), "CASE-001")
	var merr *apperr.MalformedResponseError
	if !errors.As(err, &merr) {
		t.Fatalf("expected MalformedResponseError, got %v", err)
	}
	if got := env.cases.cases["CASE-001"].Status; got != "draft" {
		t.Errorf("expected case untouched, got status %s", got)
	}
}

// seedReanalysis prepares an investigation case with one answered question,
// one ai root-cause candidate, one human root-cause candidate, and a prior
// initial-analysis event whose snapshot predates the answer.
func seedReanalysis(env *testEnv) {
	env.seedCase("CASE-001", "investigation", "alice")

	now := time.Now()
	answeredAt := now.Add(-10 * time.Minute)
	env.questions.questions["Q-001"] = &secondary.QuestionRecord{
		ID:         "Q-001",
		CaseID:     "CASE-001",
		Text:       "When was the seal last replaced?",
		Category:   "maintenance",
		Answer:     "Two weeks before the failure",
		AnsweredBy: "bob",
		AnsweredAt: &answeredAt,
		CreatedAt:  now.Add(-time.Hour),
	}
	env.questions.order = append(env.questions.order, "Q-001")

	env.candidates.rootCauses["RC-001"] = &secondary.RootCauseCandidateRecord{
		ID: "RC-001", CaseID: "CASE-001", CauseText: "Seal installed dry",
		Confidence: "medium", GeneratedBy: reconcile.GeneratedByAI,
	}
	env.candidates.rcOrder = append(env.candidates.rcOrder, "RC-001")
	env.candidates.rootCauses["RC-002"] = &secondary.RootCauseCandidateRecord{
		ID: "RC-002", CaseID: "CASE-001", CauseText: "Operator error at restart",
		Confidence: "low", GeneratedBy: reconcile.GeneratedByHuman,
	}
	env.candidates.rcOrder = append(env.candidates.rcOrder, "RC-002")

	payload, _ := json.Marshal(candidatesGeneratedPayload{
		Source:         sourceInitial,
		AnswerSnapshot: reconcile.AnswerSnapshot{},
	})
	env.audit.events = append(env.audit.events, &secondary.AuditEventRecord{
		ID:        1,
		CaseID:    "CASE-001",
		EventType: secondary.EventCandidatesGenerated,
		ActorID:   "alice",
		Payload:   payload,
		CreatedAt: now.Add(-time.Hour),
	})
}

func TestReanalyzeMaterialChange(t *testing.T) {
	env := newTestEnv()
	seedReanalysis(env)
	env.completion.response = `{
		"materialChange": true,
		"rationale": "Recent seal replacement points at installation",
		"candidateUpdates": [
			{"candidateId": "RC-001", "candidateType": "root_cause", "newLabel": "high", "reason": "replacement was recent"},
			{"candidateId": "RC-002", "candidateType": "root_cause", "newLabel": "deprioritized", "reason": "no operator involvement"},
			{"candidateId": "RC-999", "candidateType": "root_cause", "newLabel": "low", "reason": "stale"}
		],
		"newRootCauseCandidates": [
			{"causeText": "Wrong seal elastomer for service temperature", "detail": "", "confidence": "low"}
		],
		"newActionItemCandidates": []
	}`
	svc := env.analysisService()

	resp, err := svc.Reanalyze(memberCtx("alice"), "CASE-001")
	if err != nil {
		t.Fatalf("Reanalyze failed: %v", err)
	}
	if !resp.MaterialChange {
		t.Fatal("expected material change")
	}
	if resp.UpdatedCandidateCount != 1 || resp.NewRootCauseCount != 1 || resp.AnswerChangeCount != 1 {
		t.Errorf("unexpected counts: %+v", resp)
	}

	// The ai candidate moved; the human one did not.
	if got := env.candidates.rootCauses["RC-001"].Confidence; got != "high" {
		t.Errorf("expected RC-001 raised to high, got %s", got)
	}
	if got := env.candidates.rootCauses["RC-002"].Confidence; got != "low" {
		t.Errorf("expected human candidate RC-002 untouched, got %s", got)
	}

	wantSkipped := []primary.SkippedUpdate{
		{CandidateID: "RC-002", CandidateType: "root_cause", Reason: reconcile.SkipHumanAuthored},
		{CandidateID: "RC-999", CandidateType: "root_cause", Reason: reconcile.SkipUnknownCandidate},
	}
	if diff := cmp.Diff(wantSkipped, resp.SkippedUpdates); diff != "" {
		t.Errorf("skipped updates mismatch (-want +got):\n%s", diff)
	}

	types := env.audit.eventTypes("CASE-001")
	want := []string{
		secondary.EventCandidatesGenerated, // the seeded initial run
		secondary.EventCandidateUpdated,
		secondary.EventAnswerSubmitted,
		secondary.EventCandidatesGenerated,
	}
	if diff := cmp.Diff(want, types); diff != "" {
		t.Errorf("audit events mismatch (-want +got):\n%s", diff)
	}

	var payload candidatesGeneratedPayload
	if err := json.Unmarshal(env.audit.events[len(env.audit.events)-1].Payload, &payload); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if payload.Source != sourceReanalysis || payload.NoChange || payload.UpdatedCandidateCount != 1 {
		t.Errorf("unexpected payload: %+v", payload)
	}
	wantSnapshot := reconcile.AnswerSnapshot{"Q-001": "Two weeks before the failure"}
	if diff := cmp.Diff(wantSnapshot, payload.AnswerSnapshot); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestReanalyzeNoMaterialChange(t *testing.T) {
	env := newTestEnv()
	seedReanalysis(env)
	env.completion.response = `{
		"materialChange": false,
		"rationale": "Answer confirms the existing assessment"
	}`
	svc := env.analysisService()

	resp, err := svc.Reanalyze(memberCtx("alice"), "CASE-001")
	if err != nil {
		t.Fatalf("Reanalyze failed: %v", err)
	}
	if resp.MaterialChange || resp.UpdatedCandidateCount != 0 {
		t.Errorf("expected no-op outcome, got %+v", resp)
	}
	if got := env.candidates.rootCauses["RC-001"].Confidence; got != "medium" {
		t.Errorf("expected candidates untouched, RC-001 is %s", got)
	}

	types := env.audit.eventTypes("CASE-001")
	want := []string{
		secondary.EventCandidatesGenerated,
		secondary.EventAnswerSubmitted,
		secondary.EventCandidatesGenerated,
	}
	if diff := cmp.Diff(want, types); diff != "" {
		t.Errorf("audit events mismatch (-want +got):\n%s", diff)
	}

	var payload candidatesGeneratedPayload
	if err := json.Unmarshal(env.audit.events[len(env.audit.events)-1].Payload, &payload); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if !payload.NoChange || payload.MaterialityRationale == "" {
		t.Errorf("expected no-change payload with rationale, got %+v", payload)
	}
}

func TestReanalyzeDiscardsExtraneous(t *testing.T) {
	env := newTestEnv()
	seedReanalysis(env)
	env.completion.response = `{
		"materialChange": false,
		"rationale": "Nothing changes",
		"candidateUpdates": [
			{"candidateId": "RC-001", "candidateType": "root_cause", "newLabel": "high", "reason": "contradiction"}
		]
	}`
	svc := env.analysisService()

	resp, err := svc.Reanalyze(memberCtx("alice"), "CASE-001")
	if err != nil {
		t.Fatalf("Reanalyze failed: %v", err)
	}
	if !resp.DiscardedExtraneous {
		t.Error("expected DiscardedExtraneous to be reported")
	}
	if got := env.candidates.rootCauses["RC-001"].Confidence; got != "medium" {
		t.Errorf("expected discarded update not applied, RC-001 is %s", got)
	}
}

func TestReanalyzeAnswerUpdated(t *testing.T) {
	env := newTestEnv()
	seedReanalysis(env)
	// Prior snapshot already saw an older answer for Q-001.
	payload, _ := json.Marshal(candidatesGeneratedPayload{
		Source:         sourceReanalysis,
		AnswerSnapshot: reconcile.AnswerSnapshot{"Q-001": "Unknown"},
	})
	env.audit.events[0].Payload = payload
	env.completion.response = `{"materialChange": false, "rationale": "Still consistent"}`
	svc := env.analysisService()

	_, err := svc.Reanalyze(memberCtx("alice"), "CASE-001")
	if err != nil {
		t.Fatalf("Reanalyze failed: %v", err)
	}
	types := env.audit.eventTypes("CASE-001")
	if types[1] != secondary.EventAnswerUpdated {
		t.Errorf("expected answer_updated for a revised answer, got %v", types)
	}
}

func TestReanalyzeInActionsOpen(t *testing.T) {
	env := newTestEnv()
	seedReanalysis(env)
	env.cases.cases["CASE-001"].Status = "actions_open"
	env.completion.response = `{
		"materialChange": false,
		"rationale": "Answer confirms the existing assessment"
	}`
	svc := env.analysisService()

	resp, err := svc.Reanalyze(memberCtx("alice"), "CASE-001")
	if err != nil {
		t.Fatalf("Reanalyze failed: %v", err)
	}
	if resp.MaterialChange {
		t.Errorf("expected no-op outcome, got %+v", resp)
	}
	if got := env.cases.cases["CASE-001"].Status; got != "actions_open" {
		t.Errorf("expected case to stay actions_open, got %s", got)
	}
	types := env.audit.eventTypes("CASE-001")
	if types[len(types)-1] != secondary.EventCandidatesGenerated {
		t.Errorf("expected a generation event recorded, got %v", types)
	}
}

func TestReanalyzeRejectsClosedCase(t *testing.T) {
	env := newTestEnv()
	seedReanalysis(env)
	env.cases.cases["CASE-001"].Status = "closed"
	svc := env.analysisService()

	_, err := svc.Reanalyze(memberCtx("alice"), "CASE-001")
	var cerr *apperr.ConflictError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if len(env.completion.prompts) != 0 {
		t.Errorf("expected no model call on a rejected precondition")
	}
}

func TestReanalyzeRequiresPriorAnalysis(t *testing.T) {
	env := newTestEnv()
	env.seedCase("CASE-001", "investigation", "alice")
	now := time.Now()
	env.questions.questions["Q-001"] = &secondary.QuestionRecord{
		ID: "Q-001", CaseID: "CASE-001", Text: "q", Category: "general",
		Answer: "a", AnsweredAt: &now,
	}
	env.questions.order = append(env.questions.order, "Q-001")
	svc := env.analysisService()

	_, err := svc.Reanalyze(memberCtx("alice"), "CASE-001")
	var cerr *apperr.ConflictError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
}

func TestReanalyzeNoNewEvidence(t *testing.T) {
	env := newTestEnv()
	seedReanalysis(env)
	// Move the prior analysis after the answer: nothing new since.
	env.audit.events[0].CreatedAt = time.Now()
	svc := env.analysisService()

	_, err := svc.Reanalyze(memberCtx("alice"), "CASE-001")
	var cerr *apperr.ConflictError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if len(env.completion.prompts) != 0 {
		t.Errorf("expected no model call without new evidence")
	}
}

func TestReanalyzeNoEvidenceAtAll(t *testing.T) {
	env := newTestEnv()
	env.seedCase("CASE-001", "investigation", "alice")
	payload, _ := json.Marshal(candidatesGeneratedPayload{Source: sourceInitial, AnswerSnapshot: reconcile.AnswerSnapshot{}})
	env.audit.events = append(env.audit.events, &secondary.AuditEventRecord{
		ID: 1, CaseID: "CASE-001", EventType: secondary.EventCandidatesGenerated,
		Payload: payload, CreatedAt: time.Now().Add(-time.Hour),
	})
	svc := env.analysisService()

	_, err := svc.Reanalyze(memberCtx("alice"), "CASE-001")
	var cerr *apperr.ConflictError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
}

func TestReanalyzeCorruptPriorSnapshot(t *testing.T) {
	env := newTestEnv()
	seedReanalysis(env)
	env.audit.events[0].Payload = []byte("not json")
	env.completion.response = `{"materialChange": false, "rationale": "Consistent"}`
	svc := env.analysisService()

	// A corrupt snapshot degrades to empty: the answer diffs as newly
	// submitted instead of failing the operation.
	resp, err := svc.Reanalyze(memberCtx("alice"), "CASE-001")
	if err != nil {
		t.Fatalf("Reanalyze failed: %v", err)
	}
	if resp.AnswerChangeCount != 1 {
		t.Errorf("expected one answer change, got %d", resp.AnswerChangeCount)
	}
}
