package reconcile

// ExistingCandidate is the stored view of a candidate a proposed update may
// reference.
type ExistingCandidate struct {
	ID          string
	Type        string
	GeneratedBy string
	Label       string
}

// AppliedUpdate is a proposed update that survived partitioning and should
// be written, together with the previous label for the audit trail.
type AppliedUpdate struct {
	CandidateID   string
	CandidateType string
	PreviousLabel string
	NewLabel      string
	Reason        string
}

// Skip reasons recorded for updates that are not applied.
const (
	SkipUnknownCandidate = "candidate not found"
	SkipHumanAuthored    = "candidate is human-authored"
	SkipLabelUnchanged   = "label unchanged"
)

// SkippedUpdate is a proposed update that was not applied, and why.
type SkippedUpdate struct {
	CandidateID   string
	CandidateType string
	Reason        string
}

// PartitionUpdates folds the proposed updates over the stored candidates and
// splits them into the set to apply and the set to skip. Updates referencing
// a missing candidate or a human-authored one are skipped rather than
// failed: losing one stale update is less harmful than discarding an
// otherwise valid batch. Updates whose label already matches the stored
// value are skipped so no-op writes never reach the audit log.
func PartitionUpdates(existing []ExistingCandidate, updates []ProposedUpdate) (applied []AppliedUpdate, skipped []SkippedUpdate) {
	byKey := make(map[string]ExistingCandidate, len(existing))
	for _, c := range existing {
		byKey[c.Type+"/"+c.ID] = c
	}

	for _, u := range updates {
		current, ok := byKey[u.CandidateType+"/"+u.CandidateID]
		switch {
		case !ok:
			skipped = append(skipped, SkippedUpdate{u.CandidateID, u.CandidateType, SkipUnknownCandidate})
		case current.GeneratedBy != GeneratedByAI:
			skipped = append(skipped, SkippedUpdate{u.CandidateID, u.CandidateType, SkipHumanAuthored})
		case current.Label == u.NewLabel:
			skipped = append(skipped, SkippedUpdate{u.CandidateID, u.CandidateType, SkipLabelUnchanged})
		default:
			applied = append(applied, AppliedUpdate{
				CandidateID:   u.CandidateID,
				CandidateType: u.CandidateType,
				PreviousLabel: current.Label,
				NewLabel:      u.NewLabel,
				Reason:        u.Reason,
			})
		}
	}
	return applied, skipped
}
