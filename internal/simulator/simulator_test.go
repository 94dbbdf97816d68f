package simulator

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forecast-assistant/internal/common/logger"
	"forecast-assistant/internal/mockdata"
	"forecast-assistant/internal/models"
	"forecast-assistant/internal/store"
)

func plan(statuses ...models.StepStatus) []models.WorkflowStep {
	steps := make([]models.WorkflowStep, len(statuses))
	for i, st := range statuses {
		steps[i] = models.WorkflowStep{
			ID:     fmt.Sprintf("step-%d", i+1),
			Name:   fmt.Sprintf("Step %d", i+1),
			Status: st,
		}
	}
	return steps
}

func apply(steps []models.WorkflowStep, updates []store.UpdateWorkflowStep) []models.WorkflowStep {
	out := append([]models.WorkflowStep(nil), steps...)
	for _, u := range updates {
		for i := range out {
			if out[i].ID == u.ID && u.Status != nil {
				out[i].Status = *u.Status
			}
		}
	}
	return out
}

func checkInvariants(t *testing.T, steps []models.WorkflowStep) {
	t.Helper()
	active := 0
	donePrefix := true
	for _, s := range steps {
		if s.Status == models.StepActive {
			active++
		}
		if s.Status != models.StepCompleted {
			donePrefix = false
		} else {
			require.True(t, donePrefix, "completed steps must form a prefix")
		}
	}
	assert.LessOrEqual(t, active, 1, "at most one step active")
}

func TestTick_ActivatesFirstPending(t *testing.T) {
	steps := plan(models.StepPending, models.StepPending)

	updates := Tick(steps)

	require.Len(t, updates, 1)
	assert.Equal(t, "step-1", updates[0].ID)
	assert.Equal(t, models.StepActive, *updates[0].Status)
}

func TestTick_CompletesActiveAndAdvances(t *testing.T) {
	steps := plan(models.StepCompleted, models.StepActive, models.StepPending)

	updates := Tick(steps)

	require.Len(t, updates, 2)
	assert.Equal(t, "step-2", updates[0].ID)
	assert.Equal(t, models.StepCompleted, *updates[0].Status)
	assert.Equal(t, "step-3", updates[1].ID)
	assert.Equal(t, models.StepActive, *updates[1].Status)
}

func TestTick_LastStepCompletesWithoutSuccessor(t *testing.T) {
	steps := plan(models.StepCompleted, models.StepActive)

	updates := Tick(steps)

	require.Len(t, updates, 1)
	assert.Equal(t, "step-2", updates[0].ID)
	assert.Equal(t, models.StepCompleted, *updates[0].Status)
}

func TestTick_ErrorStepHaltsProgression(t *testing.T) {
	steps := plan(models.StepCompleted, models.StepError, models.StepPending)

	updates := Tick(steps)

	assert.Empty(t, updates)
}

func TestTick_EmptyPlan(t *testing.T) {
	assert.Empty(t, Tick(nil))
	assert.Empty(t, Tick(plan()))
}

func TestTick_RoundTripCompletesEveryStep(t *testing.T) {
	const n = 8
	statuses := make([]models.StepStatus, n)
	for i := range statuses {
		statuses[i] = models.StepPending
	}
	steps := plan(statuses...)

	// One tick to activate the first step, then one per completion.
	for tick := 0; tick <= n; tick++ {
		checkInvariants(t, steps)
		steps = apply(steps, Tick(steps))
	}

	for _, s := range steps {
		assert.Equal(t, models.StepCompleted, s.Status)
	}
	assert.True(t, Completed(steps))
	assert.Empty(t, Tick(steps))
}

func TestCompleted(t *testing.T) {
	assert.False(t, Completed(nil))
	assert.False(t, Completed(plan(models.StepCompleted, models.StepPending)))
	assert.False(t, Completed(plan(models.StepCompleted, models.StepError)))
	assert.True(t, Completed(plan(models.StepCompleted, models.StepCompleted)))
}

func newRunnerStore(t *testing.T) *store.Store {
	t.Helper()
	reducer := store.NewReducer(mockdata.NewSeeded(3))
	return store.New(reducer, logger.NewNoOpLogger())
}

func TestRunner_DrivesWorkflowToCompletionAndResets(t *testing.T) {
	st := newRunnerStore(t)
	st.Dispatch(store.SetWorkflow{Steps: plan(models.StepPending, models.StepPending)})

	runner := NewRunner(st, mockdata.NewSeeded(3), 5*time.Millisecond, 10*time.Millisecond, logger.NewTestLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go runner.Run(ctx)

	require.Eventually(t, func() bool {
		state := st.State()
		return len(state.Workflow) == 0 && !state.IsProcessing
	}, 2*time.Second, 5*time.Millisecond, "workflow should complete and auto-reset")
}

func TestRunner_ErrorStepHoldsWorkflow(t *testing.T) {
	st := newRunnerStore(t)
	st.Dispatch(store.SetWorkflow{Steps: plan(models.StepCompleted, models.StepError, models.StepPending)})

	runner := NewRunner(st, mockdata.NewSeeded(3), 5*time.Millisecond, 10*time.Millisecond, logger.NewTestLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go runner.Run(ctx)

	time.Sleep(60 * time.Millisecond)
	state := st.State()
	require.Len(t, state.Workflow, 3)
	assert.Equal(t, models.StepError, state.Workflow[1].Status)
	assert.Equal(t, models.StepPending, state.Workflow[2].Status)
}

func TestRunner_DriftsAgentTelemetry(t *testing.T) {
	st := newRunnerStore(t)

	runner := NewRunner(st, mockdata.NewSeeded(3), 5*time.Millisecond, 10*time.Millisecond, logger.NewTestLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go runner.Run(ctx)

	before := st.State().Agents
	require.Eventually(t, func() bool {
		after := st.State().Agents
		for i := range after {
			if after[i].CPUUsage != before[i].CPUUsage || after[i].MemoryUsage != before[i].MemoryUsage {
				return true
			}
		}
		return false
	}, 2*time.Second, 5*time.Millisecond, "agent telemetry should drift")
}
