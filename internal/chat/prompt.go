// internal/chat/prompt.go
package chat

import (
	"fmt"
	"strings"

	"forecast-assistant/internal/models"
)

// BuildSystemPrompt renders the assistant's instructions from the current
// application state. The reply contract (workflow markers, suggestion
// section) is parsed back out by ParseReply.
func BuildSystemPrompt(state models.AppState) string {
	var b strings.Builder

	b.WriteString("You are a BI forecasting assistant embedded in a demand-planning tool.\n")
	b.WriteString("You help analysts explore uploaded sales data and run forecasting workflows.\n\n")

	b.WriteString("Current context:\n")
	if state.SelectedBU != nil {
		b.WriteString(fmt.Sprintf("- Business unit: %s (%s)\n", state.SelectedBU.Name, state.SelectedBU.ID))
	}
	if state.SelectedLOB != nil {
		lob := state.SelectedLOB
		if lob.HasData {
			b.WriteString(fmt.Sprintf("- Line of business: %s, %d records uploaded", lob.Name, lob.RecordCount))
			if lob.DataQuality != nil {
				b.WriteString(fmt.Sprintf(" (completeness %d%%, %d outliers)", lob.DataQuality.Completeness, lob.DataQuality.Outliers))
			}
			b.WriteString("\n")
		} else {
			b.WriteString(fmt.Sprintf("- Line of business: %s, no data uploaded yet\n", lob.Name))
		}
	}
	if len(state.Workflow) > 0 {
		b.WriteString(fmt.Sprintf("- A workflow with %d steps is already installed", len(state.Workflow)))
		if state.IsProcessing {
			b.WriteString(" and still running")
		}
		b.WriteString(".\n")
	}
	b.WriteString("\n")

	b.WriteString("Reply rules:\n")
	b.WriteString("1. To launch the standard forecasting workflow, include the marker [START_WORKFLOW] on its own line.\n")
	b.WriteString("2. To propose a custom workflow, emit a block of the form:\n")
	b.WriteString("   [WORKFLOW_PLAN]\n")
	b.WriteString("   [{\"name\": \"...\", \"details\": \"...\", \"estimatedTime\": \"...\", \"agent\": \"...\"}]\n")
	b.WriteString("   [/WORKFLOW_PLAN]\n")
	b.WriteString("   The block must contain a JSON array of step objects; name is required.\n")
	b.WriteString("3. End every reply with a section titled **What's next?** followed by two or three short suggested actions, one per line, each starting with \"- \".\n")
	b.WriteString("4. Keep the rest of the reply concise markdown. Never emit markers you do not intend.\n")

	return b.String()
}
