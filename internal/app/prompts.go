package app

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/example/rcfa/internal/ports/secondary"
)

// The analysis prompts ask for raw JSON matching the shapes that
// reconcile.ParseInitial and reconcile.ParseReanalysis validate. Label
// vocabularies are spelled out in the prompt; anything off-vocabulary is
// rejected at parse time rather than guessed at.

var initialPromptTmpl = template.Must(template.New("initial").Parse(`You are assisting a root cause failure analysis (RCFA) for industrial equipment.

Case {{.ID}}: {{.Title}}
{{- if .Asset}}
Asset: {{.Asset}}
{{- end}}

Failure description:
{{.FailureDescription}}
{{- if .Background}}

Background:
{{.Background}}
{{- end}}

Produce an initial analysis as a single JSON object with exactly these keys:

{
  "followUpQuestions": [{"text": "...", "category": "evidence|timeline|operations|maintenance|environment|general"}],
  "rootCauseCandidates": [{"causeText": "...", "detail": "...", "confidence": "deprioritized|low|medium|high"}],
  "actionItemCandidates": [{"text": "...", "description": "...", "priority": "low|medium|high|critical"}]
}

Rules:
- Propose at least one root cause candidate. Confidence reflects how well the evidence so far supports the cause.
- Follow-up questions should target the evidence gaps that would discriminate between the candidates.
- Action item candidates are corrective or preventive actions worth taking if a candidate is confirmed.
- Respond with the JSON object only, no prose.`))

type reanalysisPromptData struct {
	Case        *secondary.CaseRecord
	Answered    []*secondary.QuestionRecord
	RootCauses  []*secondary.RootCauseCandidateRecord
	ActionItems []*secondary.ActionItemCandidateRecord
}

var reanalysisPromptTmpl = template.Must(template.New("reanalysis").Parse(`You are re-evaluating a root cause failure analysis (RCFA) after new evidence arrived.

Case {{.Case.ID}}: {{.Case.Title}}
{{- if .Case.Asset}}
Asset: {{.Case.Asset}}
{{- end}}

Failure description:
{{.Case.FailureDescription}}
{{- if .Case.Background}}

Background:
{{.Case.Background}}
{{- end}}
{{- if .Case.Notes}}

Investigator notes:
{{.Case.Notes}}
{{- end}}

Answered follow-up questions:
{{- range .Answered}}
- [{{.ID}}] Q: {{.Text}}
  A: {{.Answer}}
{{- end}}

Current root cause candidates:
{{- range .RootCauses}}
- [{{.ID}}] ({{.GeneratedBy}}, confidence {{.Confidence}}) {{.CauseText}}
{{- end}}

Current action item candidates:
{{- range .ActionItems}}
- [{{.ID}}] ({{.GeneratedBy}}, priority {{.Priority}}) {{.Text}}
{{- end}}

Decide whether the new evidence materially changes any engineering conclusion. Respond with a single JSON object:

{
  "materialChange": true|false,
  "rationale": "one sentence explaining the materiality verdict",
  "candidateUpdates": [{"candidateId": "...", "candidateType": "root_cause|action_item", "newLabel": "...", "reason": "..."}],
  "newRootCauseCandidates": [{"causeText": "...", "detail": "...", "confidence": "deprioritized|low|medium|high"}],
  "newActionItemCandidates": [{"text": "...", "description": "...", "priority": "low|medium|high|critical"}]
}

Rules:
- If materialChange is false, leave all three arrays empty.
- candidateUpdates may only change confidence labels of root_cause candidates and priority labels of action_item candidates, referencing the ids shown above. Never reference human-authored candidates.
- Only claim a material change when the evidence would actually alter a conclusion, a confidence level, or a priority.
- Respond with the JSON object only, no prose.`))

func buildInitialPrompt(c *secondary.CaseRecord) (string, error) {
	var buf bytes.Buffer
	if err := initialPromptTmpl.Execute(&buf, c); err != nil {
		return "", fmt.Errorf("failed to render analysis prompt: %w", err)
	}
	return buf.String(), nil
}

func buildReanalysisPrompt(c *secondary.CaseRecord, questions []*secondary.QuestionRecord, rootCauses []*secondary.RootCauseCandidateRecord, actionItems []*secondary.ActionItemCandidateRecord) (string, error) {
	answered := make([]*secondary.QuestionRecord, 0, len(questions))
	for _, q := range questions {
		if q.Answer != "" {
			answered = append(answered, q)
		}
	}
	var buf bytes.Buffer
	err := reanalysisPromptTmpl.Execute(&buf, reanalysisPromptData{
		Case:        c,
		Answered:    answered,
		RootCauses:  rootCauses,
		ActionItems: actionItems,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render re-analysis prompt: %w", err)
	}
	return buf.String(), nil
}
