// internal/simulator/simulator.go
package simulator

import (
	"context"
	"time"

	"forecast-assistant/internal/common/logger"
	"forecast-assistant/internal/common/metrics"
	"forecast-assistant/internal/mockdata"
	"forecast-assistant/internal/models"
	"forecast-assistant/internal/store"
)

// Tick computes the status changes for one simulator tick over the given
// steps. Progression is strictly left to right:
//
//   - if a step is active, it completes and the following step (if any and
//     still pending) becomes active
//   - otherwise the first pending step becomes active, unless an error step
//     sits in front of it; error is terminal and is never advanced past
//
// The returned actions, applied in order, preserve the invariant that at
// most one step is active and completed steps form a prefix of the array.
func Tick(steps []models.WorkflowStep) []store.UpdateWorkflowStep {
	active := -1
	for i, s := range steps {
		if s.Status == models.StepActive {
			active = i
			break
		}
	}

	completed := models.StepCompleted
	activated := models.StepActive

	if active >= 0 {
		updates := []store.UpdateWorkflowStep{{ID: steps[active].ID, Status: &completed}}
		if next := active + 1; next < len(steps) && steps[next].Status == models.StepPending {
			updates = append(updates, store.UpdateWorkflowStep{ID: steps[next].ID, Status: &activated})
		}
		return updates
	}

	for _, s := range steps {
		switch s.Status {
		case models.StepCompleted:
			continue
		case models.StepPending:
			return []store.UpdateWorkflowStep{{ID: s.ID, Status: &activated}}
		default:
			// error step in front: hold position
			return nil
		}
	}
	return nil
}

// Completed reports whether every step has finished.
func Completed(steps []models.WorkflowStep) bool {
	if len(steps) == 0 {
		return false
	}
	for _, s := range steps {
		if s.Status != models.StepCompleted {
			return false
		}
	}
	return true
}

// Runner drives a session's workflow animation on a fixed ticker. It owns
// no workflow state of its own: every tick reads the store fresh, so the
// plan can be replaced or reset between ticks without stale closures.
type Runner struct {
	store      *store.Store
	gen        *mockdata.Generator
	interval   time.Duration
	resetDelay time.Duration
	logger     logger.Logger
}

// NewRunner builds a runner for one session store.
func NewRunner(st *store.Store, gen *mockdata.Generator, interval, resetDelay time.Duration, log logger.Logger) *Runner {
	return &Runner{
		store:      st,
		gen:        gen,
		interval:   interval,
		resetDelay: resetDelay,
		logger:     log,
	}
}

// Run ticks until ctx is cancelled. Call it from its own goroutine; the
// ticker is released on return.
func (r *Runner) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

func (r *Runner) tick(ctx context.Context) {
	state := r.store.State()

	r.advanceAgents(state)

	if !state.IsProcessing {
		return
	}

	updates := Tick(state.Workflow)
	for _, u := range updates {
		state = r.store.Dispatch(u)
	}
	if len(updates) > 0 {
		metrics.WorkflowTicks.Inc()
	}

	if Completed(state.Workflow) {
		metrics.WorkflowsCompleted.Inc()
		r.logger.Info("workflow completed", map[string]interface{}{
			"steps": len(state.Workflow),
		})
		r.scheduleReset(ctx)
	}
}

// scheduleReset clears a finished workflow after a grace delay so the UI
// can show the final state. A plan installed during the delay survives:
// the reset only fires if the workflow is still the completed one.
func (r *Runner) scheduleReset(ctx context.Context) {
	go func() {
		select {
		case <-ctx.Done():
			return
		case <-time.After(r.resetDelay):
		}
		state := r.store.State()
		if Completed(state.Workflow) {
			r.store.Dispatch(store.ResetWorkflow{})
		}
	}()
}

// advanceAgents drifts the simulated agent telemetry. Roughly a third of
// ticks flip an agent's status; usage figures wander within their bands.
func (r *Runner) advanceAgents(state models.AppState) {
	if len(state.Agents) == 0 {
		return
	}
	agents := r.gen.DriftAgents(state.Agents)
	r.store.Dispatch(store.UpdateAgents{Agents: agents})
}
