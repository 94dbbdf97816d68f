package store

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forecast-assistant/internal/common/logger"
	"forecast-assistant/internal/mockdata"
	"forecast-assistant/internal/models"
)

func TestStore_DispatchReturnsSnapshot(t *testing.T) {
	st := New(newTestReducer(), logger.NewNoOpLogger())

	before := st.State()
	after := st.Dispatch(AddMessage{Message: models.ChatMessage{
		ID: "m1", Role: models.RoleUser, Content: "hello",
	}})

	assert.Equal(t, len(before.Messages)+1, len(after.Messages))
	assert.Equal(t, after, st.State())
}

func TestStore_ConcurrentDispatch(t *testing.T) {
	st := New(NewReducer(mockdata.NewSeeded(7)), logger.NewNoOpLogger())
	seeded := len(st.State().Messages)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			st.Dispatch(AddMessage{Message: models.ChatMessage{
				ID:      string(rune('a' + n%26)),
				Role:    models.RoleUser,
				Content: string(rune('A' + n)),
			}})
		}(i)
	}
	wg.Wait()

	state := st.State()
	require.Equal(t, seeded+50, len(state.Messages))
	assert.Equal(t, stillProcessing(state.Workflow), state.IsProcessing)
}
