// internal/chat/orchestrator.go
package chat

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"forecast-assistant/internal/common/logger"
	"forecast-assistant/internal/common/metrics"
	"forecast-assistant/internal/models"
	"forecast-assistant/internal/store"
)

// FallbackMessage replaces the typing placeholder when the model cannot be
// reached.
const FallbackMessage = "Sorry, I'm having trouble connecting to my brain right now. Please try again later."

// maxHistoryTurns bounds the conversation window sent to the model.
const maxHistoryTurns = 20

// Orchestrator drives one chat turn end to end: user message in, typing
// placeholder, model call, parsed reply back into the store. Every turn ends
// with exactly one message update that clears the typing flag, whatever the
// model did.
type Orchestrator struct {
	backend Backend
	store   *store.Store
	logger  logger.Logger

	mu      sync.Mutex
	history []Message
}

// NewOrchestrator wires a chat backend to a session store.
func NewOrchestrator(backend Backend, st *store.Store, log logger.Logger) *Orchestrator {
	return &Orchestrator{
		backend: backend,
		store:   st,
		logger:  log.WithFields(map[string]interface{}{"component": "chat-orchestrator"}),
	}
}

// Submit runs one conversation turn and returns the resulting state. The
// returned error reports a degraded turn (fallback shown); the store is
// consistent either way.
func (o *Orchestrator) Submit(ctx context.Context, text string) (models.AppState, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	started := time.Now()

	o.store.Dispatch(store.AddMessage{Message: models.ChatMessage{
		ID:      uuid.NewString(),
		Role:    models.RoleUser,
		Content: text,
	}})
	state := o.store.Dispatch(store.AddMessage{Message: models.ChatMessage{
		ID:       uuid.NewString(),
		Role:     models.RoleAssistant,
		IsTyping: true,
	}})

	messages := make([]Message, 0, len(o.history)+2)
	messages = append(messages, Message{Role: "system", Content: BuildSystemPrompt(state)})
	messages = append(messages, o.history...)
	messages = append(messages, Message{Role: "user", Content: text})

	raw, err := o.backend.Complete(ctx, messages)
	if err != nil {
		metrics.ChatRequests.WithLabelValues("error").Inc()
		o.logger.WithError(err).Error("chat turn failed, serving fallback", nil)
		fallback := FallbackMessage
		done := false
		o.store.Dispatch(store.UpdateLastMessage{Content: &fallback, IsTyping: &done})
		return o.store.State(), err
	}

	reply := ParseReply(raw)
	o.installPlan(reply, state)

	done := false
	final := o.store.Dispatch(store.UpdateLastMessage{
		Content:     &reply.Content,
		IsTyping:    &done,
		Suggestions: reply.Suggestions,
	})

	o.history = append(o.history,
		Message{Role: "user", Content: text},
		Message{Role: "assistant", Content: reply.Content},
	)
	if len(o.history) > maxHistoryTurns {
		o.history = o.history[len(o.history)-maxHistoryTurns:]
	}

	metrics.ChatRequests.WithLabelValues("ok").Inc()
	metrics.ChatDuration.Observe(time.Since(started).Seconds())
	return final, nil
}

// History returns a copy of the conversation window.
func (o *Orchestrator) History() []Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Message(nil), o.history...)
}

func (o *Orchestrator) installPlan(reply Reply, state models.AppState) {
	switch reply.PlanStatus {
	case PlanDefault:
		o.store.Dispatch(store.SetWorkflow{Steps: models.DefaultWorkflow()})
	case PlanParsed:
		o.store.Dispatch(store.SetWorkflow{Steps: buildSteps(reply.PlanSteps, state.Agents)})
	case PlanMalformed:
		o.logger.Warn("discarding malformed workflow plan", map[string]interface{}{
			"reason": reply.PlanError,
		})
	}
}

// buildSteps turns a parsed plan into workflow steps: fresh sequential ids,
// every step pending, each step depending on the one before it.
func buildSteps(plan []PlanStep, agents []models.Agent) []models.WorkflowStep {
	steps := make([]models.WorkflowStep, 0, len(plan))
	for i, p := range plan {
		step := models.WorkflowStep{
			ID:            fmt.Sprintf("step-%d", i+1),
			Name:          p.Name,
			Status:        models.StepPending,
			Details:       p.Details,
			EstimatedTime: p.EstimatedTime,
			Agent:         p.Agent,
		}
		if step.Agent == "" && len(agents) > 0 {
			step.Agent = agents[i%len(agents)].Name
		}
		if i > 0 {
			step.Dependencies = []string{steps[i-1].ID}
		}
		steps = append(steps, step)
	}
	return steps
}
