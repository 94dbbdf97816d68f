// internal/chat/parser.go
package chat

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const (
	startMarker     = "[START_WORKFLOW]"
	planOpenMarker  = "[WORKFLOW_PLAN]"
	planCloseMarker = "[/WORKFLOW_PLAN]"
	suggestionsHead = "**What's next?**"
)

// PlanStatus tags the outcome of extracting a workflow plan from a reply.
type PlanStatus int

const (
	// PlanAbsent means the reply carried no workflow marker at all.
	PlanAbsent PlanStatus = iota
	// PlanDefault means the reply asked for the standard workflow.
	PlanDefault
	// PlanParsed means the reply carried a well-formed custom plan.
	PlanParsed
	// PlanMalformed means a plan block was present but unusable.
	PlanMalformed
)

// PlanStep is one step of a custom plan as emitted by the model.
type PlanStep struct {
	Name          string `json:"name"`
	Details       string `json:"details"`
	EstimatedTime string `json:"estimatedTime"`
	Agent         string `json:"agent"`
}

// Reply is the structured form of a raw assistant completion.
type Reply struct {
	Content     string
	Suggestions []string
	PlanStatus  PlanStatus
	PlanSteps   []PlanStep
	PlanError   string
}

var planSchema = gojsonschema.NewStringLoader(`{
	"type": "array",
	"minItems": 1,
	"items": {
		"type": "object",
		"required": ["name"],
		"properties": {
			"name":          {"type": "string", "minLength": 1},
			"details":       {"type": "string"},
			"estimatedTime": {"type": "string"},
			"agent":         {"type": "string"}
		}
	}
}`)

// ParseReply splits a raw completion into display content, suggested next
// actions, and an optional workflow plan. Markers are removed from the
// returned content even when the plan they carry is malformed.
func ParseReply(raw string) Reply {
	reply := Reply{PlanStatus: PlanAbsent}
	text := raw

	if open := strings.Index(text, planOpenMarker); open >= 0 {
		rest := text[open+len(planOpenMarker):]
		closeAt := strings.Index(rest, planCloseMarker)
		if closeAt < 0 {
			reply.PlanStatus = PlanMalformed
			reply.PlanError = "unterminated plan block"
			text = text[:open]
		} else {
			body := rest[:closeAt]
			text = text[:open] + rest[closeAt+len(planCloseMarker):]
			steps, err := parsePlanBody(body)
			if err != nil {
				reply.PlanStatus = PlanMalformed
				reply.PlanError = err.Error()
			} else {
				reply.PlanStatus = PlanParsed
				reply.PlanSteps = steps
			}
		}
	}

	if strings.Contains(text, startMarker) {
		text = strings.ReplaceAll(text, startMarker, "")
		if reply.PlanStatus == PlanAbsent {
			reply.PlanStatus = PlanDefault
		}
	}

	text, reply.Suggestions = splitSuggestions(text)
	reply.Content = strings.TrimSpace(text)
	return reply
}

func parsePlanBody(body string) ([]PlanStep, error) {
	body = strings.TrimSpace(body)
	result, err := gojsonschema.Validate(planSchema, gojsonschema.NewStringLoader(body))
	if err != nil {
		return nil, fmt.Errorf("plan is not valid JSON: %v", err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			details = append(details, e.String())
		}
		return nil, fmt.Errorf("plan failed validation: %s", strings.Join(details, "; "))
	}

	var steps []PlanStep
	if err := json.Unmarshal([]byte(body), &steps); err != nil {
		return nil, fmt.Errorf("plan decode: %v", err)
	}
	return steps, nil
}

func splitSuggestions(text string) (string, []string) {
	at := strings.LastIndex(text, suggestionsHead)
	if at < 0 {
		return text, nil
	}

	var suggestions []string
	for _, line := range strings.Split(text[at+len(suggestionsHead):], "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "- ")
		line = strings.TrimPrefix(line, "• ")
		line = strings.Trim(line, "\"")
		if line != "" {
			suggestions = append(suggestions, line)
		}
	}
	return text[:at], suggestions
}
