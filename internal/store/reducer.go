// internal/store/reducer.go
package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"forecast-assistant/internal/mockdata"
	"forecast-assistant/internal/models"
)

// uploadSuggestions are the fixed follow-ups offered after every upload.
var uploadSuggestions = []string{
	"Analyze the uploaded data",
	"Start a 30-day forecast",
	"Show the data quality report",
}

// Reducer maps (state, action) to a new state. It never returns an error:
// unknown actions and lookups that miss leave the state unchanged. All
// randomness and clock access is injected so transitions replay
// deterministically under test.
type Reducer struct {
	gen   *mockdata.Generator
	now   func() time.Time
	newID func() string
}

// NewReducer builds a reducer using the wall clock and uuid ids.
func NewReducer(gen *mockdata.Generator) *Reducer {
	return &Reducer{gen: gen, now: time.Now, newID: uuid.NewString}
}

// NewDeterministicReducer pins the clock and id source, for tests.
func NewDeterministicReducer(gen *mockdata.Generator, now func() time.Time, newID func() string) *Reducer {
	return &Reducer{gen: gen, now: now, newID: newID}
}

// NewState returns the initial state for a fresh session: seed catalog,
// first BU/LOB selected, and the greeting message.
func (r *Reducer) NewState() models.AppState {
	bus := models.SeedBusinessUnits()
	state := models.AppState{
		BusinessUnits: bus,
		Agents:        models.SeedAgents(),
		IsOnboarding:  true,
		Messages: []models.ChatMessage{{
			ID:      r.newID(),
			Role:    models.RoleAssistant,
			Content: "Hello! I'm your BI forecasting assistant. I see you have Premium Order Services selected. What would you like to do?",
		}},
	}
	buCopy := bus[0]
	state.SelectedBU = &buCopy
	lobCopy := bus[0].LOBs[0]
	state.SelectedLOB = &lobCopy
	return state
}

// Reduce applies one action. The input state is never mutated; the returned
// state shares only untouched slices with it.
func (r *Reducer) Reduce(state models.AppState, action Action) models.AppState {
	switch a := action.(type) {
	case SetSelectedBU:
		return r.reduceSetSelectedBU(state, a)
	case SetSelectedLOB:
		return r.reduceSetSelectedLOB(state, a)
	case AddMessage:
		return r.reduceAddMessage(state, a)
	case UpdateLastMessage:
		return r.reduceUpdateLastMessage(state, a)
	case SetWorkflow:
		steps := cloneSteps(a.Steps)
		state.Workflow = steps
		state.IsProcessing = stillProcessing(steps)
		return state
	case UpdateWorkflowStep:
		return r.reduceUpdateWorkflowStep(state, a)
	case ResetWorkflow:
		state.Workflow = nil
		state.IsProcessing = false
		return state
	case UploadData:
		return r.reduceUploadData(state, a)
	case ToggleVisualization:
		return r.reduceToggleVisualization(state, a)
	case AddBU:
		return r.reduceAddBU(state, a)
	case AddLOB:
		return r.reduceAddLOB(state, a)
	case UpdateAgents:
		state.Agents = append([]models.Agent(nil), a.Agents...)
		return state
	case SetAgentMonitorOpen:
		state.AgentMonitorOpen = a.Open
		return state
	case SetDataPanel:
		state.DataPanel = a.Panel
		return state
	case EndOnboarding:
		state.IsOnboarding = false
		return state
	case QueueUserPrompt:
		state.QueuedPrompt = a.Prompt
		return state
	case ClearQueuedPrompt:
		state.QueuedPrompt = ""
		return state
	default:
		return state
	}
}

func (r *Reducer) reduceSetSelectedBU(state models.AppState, a SetSelectedBU) models.AppState {
	if a.BU == nil {
		state.SelectedBU = nil
		state.SelectedLOB = nil
	} else {
		bu := *a.BU
		state.SelectedBU = &bu
		if len(bu.LOBs) > 0 {
			lob := bu.LOBs[0]
			state.SelectedLOB = &lob
		} else {
			state.SelectedLOB = nil
		}
	}
	state.Workflow = nil
	state.IsProcessing = false
	return state
}

func (r *Reducer) reduceSetSelectedLOB(state models.AppState, a SetSelectedLOB) models.AppState {
	if a.LOB == nil {
		state.SelectedLOB = nil
	} else {
		lob := *a.LOB
		state.SelectedLOB = &lob
	}
	// A plan that is still running survives an LOB switch.
	if !stillProcessing(state.Workflow) {
		state.Workflow = nil
		state.IsProcessing = false
	}
	return state
}

func (r *Reducer) reduceAddMessage(state models.AppState, a AddMessage) models.AppState {
	messages := make([]models.ChatMessage, 0, len(state.Messages)+1)
	for _, m := range state.Messages {
		if !m.IsTyping {
			messages = append(messages, m)
		}
	}
	if n := len(messages); n > 0 {
		prev := messages[n-1]
		if prev.Role == a.Message.Role && prev.Content == a.Message.Content {
			state.Messages = messages
			return state
		}
	}
	state.Messages = append(messages, a.Message)
	return state
}

func (r *Reducer) reduceUpdateLastMessage(state models.AppState, a UpdateLastMessage) models.AppState {
	if len(state.Messages) == 0 {
		return state
	}
	messages := append([]models.ChatMessage(nil), state.Messages...)
	last := &messages[len(messages)-1]
	if a.Content != nil {
		last.Content = *a.Content
	}
	if a.IsTyping != nil {
		last.IsTyping = *a.IsTyping
	}
	if a.Suggestions != nil {
		last.Suggestions = append([]string(nil), a.Suggestions...)
	}
	if a.Visualization != nil {
		v := *a.Visualization
		last.Visualization = &v
	}
	state.Messages = messages
	return state
}

func (r *Reducer) reduceUpdateWorkflowStep(state models.AppState, a UpdateWorkflowStep) models.AppState {
	steps := cloneSteps(state.Workflow)
	for i := range steps {
		if steps[i].ID != a.ID {
			continue
		}
		if a.Status != nil {
			steps[i].Status = *a.Status
		}
		if a.Name != nil {
			steps[i].Name = *a.Name
		}
		if a.Agent != nil {
			steps[i].Agent = *a.Agent
		}
		break
	}
	state.Workflow = steps
	state.IsProcessing = stillProcessing(steps)
	return state
}

func (r *Reducer) reduceUploadData(state models.AppState, a UploadData) models.AppState {
	bus := cloneBusinessUnits(state.BusinessUnits)
	var uploaded *models.LineOfBusiness
	for bi := range bus {
		for li := range bus[bi].LOBs {
			if bus[bi].LOBs[li].ID != a.LOBID {
				continue
			}
			lob := &bus[bi].LOBs[li]
			now := r.now()
			lob.HasData = true
			lob.RecordCount = r.gen.RecordCount()
			lob.DataUploaded = &now
			lob.AttachedFile = a.Filename
			quality := r.gen.DataQuality()
			lob.DataQuality = &quality
			lob.MockData = r.gen.WeeklySeries(12, now)
			uploaded = lob
		}
	}
	if uploaded == nil {
		return state
	}
	state.BusinessUnits = bus
	if state.SelectedLOB != nil && state.SelectedLOB.ID == uploaded.ID {
		lob := *uploaded
		state.SelectedLOB = &lob
	}
	msg := models.ChatMessage{
		ID:   r.newID(),
		Role: models.RoleAssistant,
		Content: fmt.Sprintf("I've processed **%s** for %s: %d records detected. Completeness is %d%% with %d outliers flagged.",
			a.Filename, uploaded.Name, uploaded.RecordCount, uploaded.DataQuality.Completeness, uploaded.DataQuality.Outliers),
		Suggestions: append([]string(nil), uploadSuggestions...),
	}
	return r.reduceAddMessage(state, AddMessage{Message: msg})
}

func (r *Reducer) reduceToggleVisualization(state models.AppState, a ToggleVisualization) models.AppState {
	messages := append([]models.ChatMessage(nil), state.Messages...)
	for i := range messages {
		if messages[i].ID != a.MessageID || messages[i].Visualization == nil {
			continue
		}
		v := *messages[i].Visualization
		v.IsShowing = !v.IsShowing
		messages[i].Visualization = &v
		state.Messages = messages
		return state
	}
	return state
}

func (r *Reducer) reduceAddBU(state models.AppState, a AddBU) models.AppState {
	bu := models.BusinessUnit{
		ID:          "bu-" + r.newID(),
		Name:        a.Name,
		Description: a.Description,
		Color:       r.gen.Color(),
	}
	state.BusinessUnits = append(append([]models.BusinessUnit(nil), state.BusinessUnits...), bu)
	return state
}

func (r *Reducer) reduceAddLOB(state models.AppState, a AddLOB) models.AppState {
	bus := cloneBusinessUnits(state.BusinessUnits)
	for i := range bus {
		if bus[i].ID != a.BUID {
			continue
		}
		bus[i].LOBs = append(bus[i].LOBs, models.LineOfBusiness{
			ID:          "lob-" + r.newID(),
			Name:        a.Name,
			Description: a.Description,
		})
		state.BusinessUnits = bus
		return state
	}
	return state
}

// stillProcessing reports whether a workflow is live: non-empty, not fully
// completed, and with at least one step that can still make progress.
func stillProcessing(steps []models.WorkflowStep) bool {
	for _, s := range steps {
		if s.Status == models.StepActive || s.Status == models.StepPending {
			return true
		}
	}
	return false
}

func cloneSteps(steps []models.WorkflowStep) []models.WorkflowStep {
	if steps == nil {
		return nil
	}
	out := append([]models.WorkflowStep(nil), steps...)
	for i := range out {
		out[i].Dependencies = append([]string(nil), out[i].Dependencies...)
	}
	return out
}

func cloneBusinessUnits(bus []models.BusinessUnit) []models.BusinessUnit {
	out := append([]models.BusinessUnit(nil), bus...)
	for i := range out {
		out[i].LOBs = append([]models.LineOfBusiness(nil), out[i].LOBs...)
	}
	return out
}
