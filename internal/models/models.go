// internal/models/models.go
package models

import "time"

// WeeklyDataPoint is one week of a line of business' history. Points are
// produced only by the mock generator and never mutated afterwards.
type WeeklyDataPoint struct {
	WeekLabel string    `json:"week"`
	Date      time.Time `json:"date"`
	Units     int       `json:"units"`
	Revenue   float64   `json:"revenue"`
	IsOutlier bool      `json:"isOutlier,omitempty"`
	IsMissing bool      `json:"isMissing,omitempty"`
}

// DataQuality summarizes a synthetic profiling pass over an uploaded dataset.
type DataQuality struct {
	Completeness int    `json:"completeness"` // percent
	Outliers     int    `json:"outliers"`
	Seasonality  string `json:"seasonality"`
	Trend        string `json:"trend"`
}

// LineOfBusiness is the unit of data upload and analysis. Owned by exactly
// one BusinessUnit. HasData implies RecordCount > 0 and DataUploaded != nil.
type LineOfBusiness struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	HasData      bool              `json:"hasData"`
	DataUploaded *time.Time        `json:"dataUploaded"`
	RecordCount  int               `json:"recordCount"`
	DataQuality  *DataQuality      `json:"dataQuality,omitempty"`
	MockData     []WeeklyDataPoint `json:"mockData,omitempty"`
	AttachedFile string            `json:"attachedFile,omitempty"`
}

// BusinessUnit is a top-level grouping owning one or more LOBs. Identity is
// immutable after creation.
type BusinessUnit struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Color       string           `json:"color"`
	LOBs        []LineOfBusiness `json:"lobs"`
}

// MessageRole is the author of a chat message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Visualization is an inline chart payload attached to an assistant message.
type Visualization struct {
	Data      []WeeklyDataPoint `json:"data"`
	Target    string            `json:"target"` // "units" or "revenue"
	IsShowing bool              `json:"isShowing"`
}

// ChatMessage is one turn of the conversation. The history is append-only
// except that the final message may be merged into while it is a typing
// placeholder, and a visualization's IsShowing flag may be toggled.
type ChatMessage struct {
	ID            string         `json:"id"`
	Role          MessageRole    `json:"role"`
	Content       string         `json:"content"`
	IsTyping      bool           `json:"isTyping,omitempty"`
	Suggestions   []string       `json:"suggestions,omitempty"`
	Visualization *Visualization `json:"visualization,omitempty"`
}

// StepStatus is the lifecycle state of a workflow step.
type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepActive    StepStatus = "active"
	StepCompleted StepStatus = "completed"
	StepError     StepStatus = "error"
)

// WorkflowStep is one stage of a simulated forecasting pipeline. Steps are
// installed in bulk when a plan starts; the Dependencies field is carried for
// the data model but progression is strictly by array order.
type WorkflowStep struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Status        StepStatus `json:"status"`
	Dependencies  []string   `json:"dependencies"`
	EstimatedTime string     `json:"estimatedTime"`
	Details       string     `json:"details"`
	Agent         string     `json:"agent,omitempty"`
}

// AgentStatus is the simulated state of a pipeline agent.
type AgentStatus string

const (
	AgentActive    AgentStatus = "active"
	AgentIdle      AgentStatus = "idle"
	AgentError     AgentStatus = "error"
	AgentCompleted AgentStatus = "completed"
)

// Agent is a simulated pipeline worker shown in the activity monitor.
type Agent struct {
	ID                string      `json:"id"`
	Name              string      `json:"name"`
	Task              string      `json:"task"`
	Status            AgentStatus `json:"status"`
	SuccessRate       float64     `json:"successRate"`
	AvgCompletionTime int         `json:"avgCompletionTime"` // milliseconds
	ErrorCount        int         `json:"errorCount"`
	CPUUsage          float64     `json:"cpuUsage"`
	MemoryUsage       float64     `json:"memoryUsage"`
}

// DataPanel holds visibility and layout of the data side panel.
type DataPanel struct {
	Open   bool   `json:"open"`
	Mode   string `json:"mode,omitempty"`
	Target string `json:"target,omitempty"`
	Width  int    `json:"width,omitempty"`
}

// AppState is the aggregate root for one assistant session. A single
// instance exists per session; all mutation goes through the reducer.
//
// Invariants:
//   - at most one workflow is live at a time
//   - IsProcessing is true iff the workflow is non-empty and not every step
//     has reached a terminal status
//   - at most one message has IsTyping set, and it is the last one
type AppState struct {
	BusinessUnits    []BusinessUnit  `json:"businessUnits"`
	SelectedBU       *BusinessUnit   `json:"selectedBu"`
	SelectedLOB      *LineOfBusiness `json:"selectedLob"`
	Messages         []ChatMessage   `json:"messages"`
	Workflow         []WorkflowStep  `json:"workflow"`
	Agents           []Agent         `json:"agents"`
	IsProcessing     bool            `json:"isProcessing"`
	IsOnboarding     bool            `json:"isOnboarding"`
	AgentMonitorOpen bool            `json:"agentMonitorOpen"`
	DataPanel        DataPanel       `json:"dataPanel"`
	QueuedPrompt     string          `json:"queuedPrompt,omitempty"`
}

// FindLOB returns the LOB with the given id and its owning BU, or nil.
func (s *AppState) FindLOB(lobID string) (*BusinessUnit, *LineOfBusiness) {
	for bi := range s.BusinessUnits {
		bu := &s.BusinessUnits[bi]
		for li := range bu.LOBs {
			if bu.LOBs[li].ID == lobID {
				return bu, &bu.LOBs[li]
			}
		}
	}
	return nil, nil
}

// FindBU returns the business unit with the given id, or nil.
func (s *AppState) FindBU(buID string) *BusinessUnit {
	for i := range s.BusinessUnits {
		if s.BusinessUnits[i].ID == buID {
			return &s.BusinessUnits[i]
		}
	}
	return nil
}
