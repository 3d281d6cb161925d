package reconcile

import (
	"encoding/json"
	"fmt"
	"strings"
)

// extractJSON strips markdown code fences the model sometimes wraps around
// its JSON payload.
func extractJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
	}
	return strings.TrimSpace(s)
}

// ParseInitial parses and validates the model output of an initial analysis.
// Any structural violation fails the whole parse; nothing partial is
// returned.
func ParseInitial(raw string) (*InitialAnalysis, error) {
	var analysis InitialAnalysis
	if err := json.Unmarshal([]byte(extractJSON(raw)), &analysis); err != nil {
		return nil, fmt.Errorf("response is not valid JSON: %w", err)
	}

	if len(analysis.RootCauses) == 0 {
		return nil, fmt.Errorf("response contains no root cause candidates")
	}

	for i := range analysis.Questions {
		q := &analysis.Questions[i]
		if strings.TrimSpace(q.Text) == "" {
			return nil, fmt.Errorf("follow-up question %d has empty text", i+1)
		}
		q.Category = NormalizeCategory(q.Category)
	}
	for i, rc := range analysis.RootCauses {
		if strings.TrimSpace(rc.CauseText) == "" {
			return nil, fmt.Errorf("root cause candidate %d has empty cause text", i+1)
		}
		if !ValidConfidence(rc.Confidence) {
			return nil, fmt.Errorf("root cause candidate %d has invalid confidence %q", i+1, rc.Confidence)
		}
	}
	for i, ai := range analysis.ActionItems {
		if strings.TrimSpace(ai.Text) == "" {
			return nil, fmt.Errorf("action item candidate %d has empty text", i+1)
		}
		if !ValidPriority(ai.Priority) {
			return nil, fmt.Errorf("action item candidate %d has invalid priority %q", i+1, ai.Priority)
		}
	}

	return &analysis, nil
}

// ParseReanalysis parses and validates the model output of a re-analysis.
//
// Two self-contradictory shapes get special treatment:
//   - "no material change" accompanied by updates or new candidates: the
//     extraneous data is discarded and DiscardedExtraneous is set, because a
//     no-change verdict with leftover payload is noise, not signal.
//   - "material change" with neither updates nor new candidates: an error,
//     because committing a no-op under a changed label would silently lose
//     the claimed signal.
func ParseReanalysis(raw string) (*ReanalysisProposal, error) {
	var proposal ReanalysisProposal
	if err := json.Unmarshal([]byte(extractJSON(raw)), &proposal); err != nil {
		return nil, fmt.Errorf("response is not valid JSON: %w", err)
	}

	if strings.TrimSpace(proposal.Rationale) == "" {
		return nil, fmt.Errorf("response has no materiality rationale")
	}

	if !proposal.MaterialChange {
		if len(proposal.Updates) > 0 || len(proposal.NewRootCauses) > 0 || len(proposal.NewActionItems) > 0 {
			proposal.Updates = nil
			proposal.NewRootCauses = nil
			proposal.NewActionItems = nil
			proposal.DiscardedExtraneous = true
		}
		return &proposal, nil
	}

	if len(proposal.Updates) == 0 && len(proposal.NewRootCauses) == 0 && len(proposal.NewActionItems) == 0 {
		return nil, fmt.Errorf("response claims material change but proposes nothing")
	}

	for i, u := range proposal.Updates {
		if strings.TrimSpace(u.CandidateID) == "" {
			return nil, fmt.Errorf("candidate update %d has no candidate id", i+1)
		}
		if strings.TrimSpace(u.Reason) == "" {
			return nil, fmt.Errorf("candidate update %d has no reason", i+1)
		}
		switch u.CandidateType {
		case TypeRootCause:
			if !ValidConfidence(u.NewLabel) {
				return nil, fmt.Errorf("candidate update %d has invalid confidence %q", i+1, u.NewLabel)
			}
		case TypeActionItem:
			if !ValidPriority(u.NewLabel) {
				return nil, fmt.Errorf("candidate update %d has invalid priority %q", i+1, u.NewLabel)
			}
		default:
			return nil, fmt.Errorf("candidate update %d has unknown type %q", i+1, u.CandidateType)
		}
	}

	for i := range proposal.NewRootCauses {
		rc := proposal.NewRootCauses[i]
		if strings.TrimSpace(rc.CauseText) == "" {
			return nil, fmt.Errorf("new root cause candidate %d has empty cause text", i+1)
		}
		if !ValidConfidence(rc.Confidence) {
			return nil, fmt.Errorf("new root cause candidate %d has invalid confidence %q", i+1, rc.Confidence)
		}
	}
	for i := range proposal.NewActionItems {
		ai := proposal.NewActionItems[i]
		if strings.TrimSpace(ai.Text) == "" {
			return nil, fmt.Errorf("new action item candidate %d has empty text", i+1)
		}
		if !ValidPriority(ai.Priority) {
			return nil, fmt.Errorf("new action item candidate %d has invalid priority %q", i+1, ai.Priority)
		}
	}

	return &proposal, nil
}
