package narrate

import (
	"fmt"
	"strings"

	"github.com/sentinelops/mission-intel-platform/internal/contracts"
)

// ThreatAssessmentPrompt builds the multi-incident assessment prompt for a
// command officer.
func ThreatAssessmentPrompt(alerts []contracts.Alert) string {
	var b strings.Builder
	b.WriteString("Analyze the following border security incidents and provide a brief, actionable threat assessment.\n")
	b.WriteString("Focus on potential connections, escalation risks, and recommended priority. Be concise.\n\nIncidents:\n")

	for _, a := range alerts {
		fmt.Fprintf(&b, "- Title: %s\n  Location: %s\n  Severity: %s\n  Timestamp: %s\n\n",
			a.Title, a.Location, a.Level, a.Timestamp)
	}
	return b.String()
}

// ExplainAlertPrompt builds the plain-language explanation prompt for a
// single alert.
func ExplainAlertPrompt(alert contracts.Alert) string {
	var b strings.Builder
	b.WriteString("Explain the following security alert in simple terms for a command officer.\n")
	b.WriteString("What are the potential implications and what is the immediate operational context? Be brief and clear.\n\nAlert Details:\n")
	fmt.Fprintf(&b, "- Title: %s\n- Severity: %s\n- Location: %s\n- Timestamp: %s\n",
		alert.Title, alert.Level, alert.Location, alert.Timestamp)
	return b.String()
}

// MissionSummaryPrompt builds the dispatch-and-evidence summary prompt for a
// field agent's report.
func MissionSummaryPrompt(alert contracts.Alert) string {
	var b strings.Builder
	b.WriteString("Summarize the mission activity for a field agent's report based on the following dispatch log and evidence list.\n")
	b.WriteString("Provide a brief, neutral summary of events.\n\n")
	fmt.Fprintf(&b, "Mission: %s at %s\n\nDispatch Log:\n", alert.Title, alert.Location)

	if len(alert.DispatchLog) == 0 {
		b.WriteString("No dispatch messages.\n")
	}
	for _, msg := range alert.DispatchLog {
		fmt.Fprintf(&b, "- [%s] %s\n", msg.Sender, msg.Text)
	}

	b.WriteString("\nEvidence Log:\n")
	if len(alert.Evidence) == 0 {
		b.WriteString("No evidence uploaded.\n")
	}
	for _, ev := range alert.Evidence {
		fmt.Fprintf(&b, "- File: %s\n", ev.FileName)
	}
	return b.String()
}
