// Package reconcile contains the pure logic of the candidate reconciliation
// engine: validating model output, partitioning proposed updates against the
// stored candidates, and diffing answer snapshots. All I/O stays in the app
// layer.
package reconcile

// Candidate authorship tags.
const (
	GeneratedByAI    = "ai"
	GeneratedByHuman = "human"
)

// Candidate types referenced by proposed updates.
const (
	TypeRootCause  = "root_cause"
	TypeActionItem = "action_item"
)

// Confidence labels for root-cause candidates.
var ConfidenceLabels = []string{"deprioritized", "low", "medium", "high"}

// Priority labels for action-item candidates and action items.
var PriorityLabels = []string{"low", "medium", "high", "critical"}

// DefaultPriority is applied when an action item is created without one.
const DefaultPriority = "medium"

// Question categories. Unrecognized categories collapse to CategoryGeneral
// rather than rejecting the whole response.
var QuestionCategories = []string{"evidence", "timeline", "operations", "maintenance", "environment", "general"}

// CategoryGeneral is the catch-all follow-up question category.
const CategoryGeneral = "general"

// ValidConfidence reports whether s is a known confidence label.
func ValidConfidence(s string) bool {
	return contains(ConfidenceLabels, s)
}

// ValidPriority reports whether s is a known priority label.
func ValidPriority(s string) bool {
	return contains(PriorityLabels, s)
}

// NormalizeCategory returns s if it is a known category, CategoryGeneral
// otherwise.
func NormalizeCategory(s string) string {
	if contains(QuestionCategories, s) {
		return s
	}
	return CategoryGeneral
}

func contains(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

// ProposedQuestion is a follow-up question proposed by the model.
type ProposedQuestion struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

// ProposedRootCause is a root-cause candidate proposed by the model.
type ProposedRootCause struct {
	CauseText  string `json:"causeText"`
	Detail     string `json:"detail"`
	Confidence string `json:"confidence"`
}

// ProposedActionItem is an action-item candidate proposed by the model.
type ProposedActionItem struct {
	Text        string `json:"text"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// InitialAnalysis is the validated result of an initial-analysis call.
type InitialAnalysis struct {
	Questions   []ProposedQuestion   `json:"followUpQuestions"`
	RootCauses  []ProposedRootCause  `json:"rootCauseCandidates"`
	ActionItems []ProposedActionItem `json:"actionItemCandidates"`
}

// ProposedUpdate is a label change the model proposes for an existing
// ai-authored candidate.
type ProposedUpdate struct {
	CandidateID   string `json:"candidateId"`
	CandidateType string `json:"candidateType"`
	NewLabel      string `json:"newLabel"`
	Reason        string `json:"reason"`
}

// ReanalysisProposal is the validated result of a re-analysis call.
//
// DiscardedExtraneous is set when the model claimed no material change but
// still returned updates or new candidates; that data has been dropped and
// the caller should log it.
type ReanalysisProposal struct {
	MaterialChange      bool                 `json:"materialChange"`
	Rationale           string               `json:"rationale"`
	Updates             []ProposedUpdate     `json:"candidateUpdates"`
	NewRootCauses       []ProposedRootCause  `json:"newRootCauseCandidates"`
	NewActionItems      []ProposedActionItem `json:"newActionItemCandidates"`
	DiscardedExtraneous bool                 `json:"-"`
}
