// Package workflow contains the pure status state machine for cases.
// Validation is side-effect free; callers decide what to do with the result.
package workflow

import "fmt"

// Status is the lifecycle state of a case.
type Status string

const (
	StatusDraft         Status = "draft"
	StatusInvestigation Status = "investigation"
	StatusActionsOpen   Status = "actions_open"
	StatusClosed        Status = "closed"
)

// Valid reports whether s is a known case status.
func Valid(s Status) bool {
	switch s {
	case StatusDraft, StatusInvestigation, StatusActionsOpen, StatusClosed:
		return true
	}
	return false
}

// Map is a transition map: for each status, the statuses reachable from it.
type Map map[Status][]Status

// FullMap contains every legal transition, including the forward edges that
// are only reachable through the gated operations (analyze, finalize, close).
var FullMap = Map{
	StatusDraft:         {StatusInvestigation},
	StatusInvestigation: {StatusDraft, StatusActionsOpen},
	StatusActionsOpen:   {StatusInvestigation, StatusClosed},
	StatusClosed:        {StatusActionsOpen},
}

// RestrictedMap is the surface exposed to the generic status setter. Forward
// edges are removed so forward progress cannot bypass the gates' business
// preconditions; only backward/reopen corrections remain.
var RestrictedMap = Map{
	StatusDraft:         {},
	StatusInvestigation: {StatusDraft},
	StatusActionsOpen:   {StatusInvestigation},
	StatusClosed:        {StatusActionsOpen},
}

// Result represents the outcome of a transition validation.
type Result struct {
	Allowed        bool
	Reason         string
	AllowedTargets []Status
}

// Error converts the result to an error if not allowed.
func (r Result) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// Validate decides whether a case may move from one status to another under
// the given transition map. A no-op transition (from == to) is always
// allowed. On rejection the result carries the currently legal targets.
func Validate(from, to Status, m Map) Result {
	if from == to {
		return Result{Allowed: true}
	}
	targets := m[from]
	for _, t := range targets {
		if t == to {
			return Result{Allowed: true}
		}
	}
	return Result{
		Allowed:        false,
		Reason:         fmt.Sprintf("cannot transition from %s to %s", from, to),
		AllowedTargets: targets,
	}
}

// TargetStrings renders a status slice for error payloads and CLI output.
func TargetStrings(targets []Status) []string {
	out := make([]string, len(targets))
	for i, t := range targets {
		out[i] = string(t)
	}
	return out
}
