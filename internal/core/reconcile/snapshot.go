package reconcile

import (
	"sort"
	"time"
)

// AnswerSnapshot maps follow-up question ids to their answer text at the
// time of an analysis. It is stored in the candidates_generated audit event
// payload and diffed against the live answers on the next re-analysis.
type AnswerSnapshot map[string]string

// Answer change kinds.
const (
	AnswerSubmitted = "submitted"
	AnswerUpdated   = "updated"
)

// AnswerChange records one question whose answer changed since the previous
// snapshot.
type AnswerChange struct {
	QuestionID string
	Kind       string
	Answer     string
}

// DiffAnswers compares the previously recorded snapshot with the current
// answers. A question answered for the first time yields a submitted change;
// a question whose stored answer differs yields an updated change. Results
// are ordered by question id so audit events are written deterministically.
func DiffAnswers(prev, current AnswerSnapshot) []AnswerChange {
	var changes []AnswerChange
	for id, answer := range current {
		if answer == "" {
			continue
		}
		old, had := prev[id]
		switch {
		case !had || old == "":
			changes = append(changes, AnswerChange{QuestionID: id, Kind: AnswerSubmitted, Answer: answer})
		case old != answer:
			changes = append(changes, AnswerChange{QuestionID: id, Kind: AnswerUpdated, Answer: answer})
		}
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].QuestionID < changes[j].QuestionID })
	return changes
}

// HasNewEvidence reports whether any answer or the investigation notes were
// touched after the given analysis time. It backs the re-analysis
// idempotence guard: re-running the model on unchanged evidence wastes a
// call and risks spurious materiality noise.
func HasNewEvidence(since time.Time, answeredAt []time.Time, notesUpdatedAt *time.Time) bool {
	for _, at := range answeredAt {
		if at.After(since) {
			return true
		}
	}
	if notesUpdatedAt != nil && notesUpdatedAt.After(since) {
		return true
	}
	return false
}
