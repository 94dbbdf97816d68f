// internal/store/actions.go
package store

import "forecast-assistant/internal/models"

// Action is a state transition request. Concrete action types are the only
// way to mutate an AppState; anything the reducer does not recognize is a
// no-op.
type Action interface {
	actionName() string
}

// SetSelectedBU selects a business unit, auto-selects its first LOB (or
// none), and abandons any live workflow.
type SetSelectedBU struct {
	BU *models.BusinessUnit
}

// SetSelectedLOB selects a line of business. A workflow that is mid-flight
// survives the switch; otherwise the workflow is cleared.
type SetSelectedLOB struct {
	LOB *models.LineOfBusiness
}

// AddMessage appends a chat message after dropping any typing placeholder.
// An exact role-and-content repeat of the preceding message is ignored.
type AddMessage struct {
	Message models.ChatMessage
}

// UpdateLastMessage merges the set fields into the final message of the
// history. Nil fields are left untouched; empty history is a no-op.
type UpdateLastMessage struct {
	Content       *string
	IsTyping      *bool
	Suggestions   []string
	Visualization *models.Visualization
}

// SetWorkflow installs a plan wholesale and marks the session processing.
type SetWorkflow struct {
	Steps []models.WorkflowStep
}

// UpdateWorkflowStep merges fields into the step with the matching id and
// recomputes the processing flag. Unknown ids are ignored.
type UpdateWorkflowStep struct {
	ID     string
	Status *models.StepStatus
	Name   *string
	Agent  *string
}

// ResetWorkflow clears the workflow and the processing flag.
type ResetWorkflow struct{}

// UploadData marks a LOB as populated with simulated upload results and
// appends an assistant message describing them.
type UploadData struct {
	LOBID    string
	Filename string
}

// ToggleVisualization flips the inline chart on the matching message.
type ToggleVisualization struct {
	MessageID string
}

// AddBU appends a new business unit with a fresh id and generated color.
type AddBU struct {
	Name        string
	Description string
}

// AddLOB appends a new line of business under the given BU.
type AddLOB struct {
	BUID        string
	Name        string
	Description string
}

// UpdateAgents replaces the simulated agent roster (telemetry tick).
type UpdateAgents struct {
	Agents []models.Agent
}

// SetAgentMonitorOpen toggles the agent activity monitor dialog.
type SetAgentMonitorOpen struct {
	Open bool
}

// SetDataPanel sets visibility and layout of the data panel.
type SetDataPanel struct {
	Panel models.DataPanel
}

// EndOnboarding clears the onboarding flag.
type EndOnboarding struct{}

// QueueUserPrompt stores a prompt to submit once the session is ready.
type QueueUserPrompt struct {
	Prompt string
}

// ClearQueuedPrompt discards any queued prompt.
type ClearQueuedPrompt struct{}

func (SetSelectedBU) actionName() string       { return "SET_SELECTED_BU" }
func (SetSelectedLOB) actionName() string      { return "SET_SELECTED_LOB" }
func (AddMessage) actionName() string          { return "ADD_MESSAGE" }
func (UpdateLastMessage) actionName() string   { return "UPDATE_LAST_MESSAGE" }
func (SetWorkflow) actionName() string         { return "SET_WORKFLOW" }
func (UpdateWorkflowStep) actionName() string  { return "UPDATE_WORKFLOW_STEP" }
func (ResetWorkflow) actionName() string       { return "RESET_WORKFLOW" }
func (UploadData) actionName() string          { return "UPLOAD_DATA" }
func (ToggleVisualization) actionName() string { return "TOGGLE_VISUALIZATION" }
func (AddBU) actionName() string               { return "ADD_BU" }
func (AddLOB) actionName() string              { return "ADD_LOB" }
func (UpdateAgents) actionName() string        { return "UPDATE_AGENTS" }
func (SetAgentMonitorOpen) actionName() string { return "SET_AGENT_MONITOR_OPEN" }
func (SetDataPanel) actionName() string        { return "SET_DATA_PANEL" }
func (EndOnboarding) actionName() string       { return "END_ONBOARDING" }
func (QueueUserPrompt) actionName() string     { return "QUEUE_USER_PROMPT" }
func (ClearQueuedPrompt) actionName() string   { return "CLEAR_QUEUED_PROMPT" }

// Name reports the wire name of an action, used for logging and metrics.
func Name(a Action) string {
	if a == nil {
		return "UNKNOWN"
	}
	return a.actionName()
}
