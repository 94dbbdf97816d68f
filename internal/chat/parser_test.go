package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReply_PlainText(t *testing.T) {
	reply := ParseReply("Here is a summary of your data.")

	assert.Equal(t, PlanAbsent, reply.PlanStatus)
	assert.Equal(t, "Here is a summary of your data.", reply.Content)
	assert.Empty(t, reply.Suggestions)
}

func TestParseReply_StartMarker(t *testing.T) {
	reply := ParseReply("Kicking off the standard run.\n[START_WORKFLOW]\nSit tight.")

	assert.Equal(t, PlanDefault, reply.PlanStatus)
	assert.NotContains(t, reply.Content, "[START_WORKFLOW]")
	assert.Contains(t, reply.Content, "Kicking off the standard run.")
}

func TestParseReply_CustomPlan(t *testing.T) {
	raw := `Here's a tailored plan.
[WORKFLOW_PLAN]
[
  {"name": "Load data", "details": "Read the upload", "estimatedTime": "5s", "agent": "DataBot"},
  {"name": "Forecast", "estimatedTime": "12s"}
]
[/WORKFLOW_PLAN]
Done.`

	reply := ParseReply(raw)

	require.Equal(t, PlanParsed, reply.PlanStatus)
	require.Len(t, reply.PlanSteps, 2)
	assert.Equal(t, "Load data", reply.PlanSteps[0].Name)
	assert.Equal(t, "DataBot", reply.PlanSteps[0].Agent)
	assert.Equal(t, "Forecast", reply.PlanSteps[1].Name)
	assert.NotContains(t, reply.Content, "[WORKFLOW_PLAN]")
	assert.NotContains(t, reply.Content, "Load data")
}

func TestParseReply_MalformedPlan(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"unterminated block", "[WORKFLOW_PLAN]\n[{\"name\": \"x\"}]"},
		{"invalid json", "[WORKFLOW_PLAN]\nnot json\n[/WORKFLOW_PLAN]"},
		{"missing name", "[WORKFLOW_PLAN]\n[{\"details\": \"x\"}]\n[/WORKFLOW_PLAN]"},
		{"empty array", "[WORKFLOW_PLAN]\n[]\n[/WORKFLOW_PLAN]"},
		{"not an array", "[WORKFLOW_PLAN]\n{\"name\": \"x\"}\n[/WORKFLOW_PLAN]"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reply := ParseReply(tc.raw)
			assert.Equal(t, PlanMalformed, reply.PlanStatus)
			assert.Empty(t, reply.PlanSteps)
			assert.NotEmpty(t, reply.PlanError)
			assert.NotContains(t, reply.Content, "[WORKFLOW_PLAN]")
		})
	}
}

func TestParseReply_Suggestions(t *testing.T) {
	raw := "All set.\n\n**What's next?**\n- Run a forecast\n- \"Show outliers\"\n\n- Upload more data"

	reply := ParseReply(raw)

	assert.Equal(t, "All set.", reply.Content)
	assert.Equal(t, []string{"Run a forecast", "Show outliers", "Upload more data"}, reply.Suggestions)
}

func TestParseReply_SuggestionsAfterPlan(t *testing.T) {
	raw := "Launching.\n[START_WORKFLOW]\n**What's next?**\n- Watch the progress"

	reply := ParseReply(raw)

	assert.Equal(t, PlanDefault, reply.PlanStatus)
	assert.Equal(t, []string{"Watch the progress"}, reply.Suggestions)
	assert.Equal(t, "Launching.", reply.Content)
}
