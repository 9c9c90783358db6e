package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIterationState_ShouldAbortOnTimeouts(t *testing.T) {
	tests := []struct {
		name     string
		timeouts int
		abort    bool
	}{
		{"no timeouts", 0, false},
		{"one timeout", 1, false},
		{"at threshold", MaxConsecutiveTimeouts, true},
		{"past threshold", MaxConsecutiveTimeouts + 1, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			state := &IterationState{ConsecutiveTimeoutFailures: tc.timeouts}
			assert.Equal(t, tc.abort, state.ShouldAbortOnTimeouts())
		})
	}
}

func TestIterationState_RecordSuccess(t *testing.T) {
	state := &IterationState{
		LastInteractionFailed:      true,
		LastErrorMessage:           "some error",
		ConsecutiveTimeoutFailures: 3,
	}

	state.RecordSuccess()

	assert.False(t, state.LastInteractionFailed)
	assert.Empty(t, state.LastErrorMessage)
	assert.Zero(t, state.ConsecutiveTimeoutFailures)
}

func TestIterationState_RecordFailure(t *testing.T) {
	t.Run("consecutive timeouts accumulate", func(t *testing.T) {
		state := &IterationState{}

		state.RecordFailure("deadline exceeded", true)
		assert.True(t, state.LastInteractionFailed)
		assert.Equal(t, "deadline exceeded", state.LastErrorMessage)
		assert.Equal(t, 1, state.ConsecutiveTimeoutFailures)

		state.RecordFailure("deadline exceeded again", true)
		assert.Equal(t, 2, state.ConsecutiveTimeoutFailures)
	})

	t.Run("non-timeout failure resets the streak", func(t *testing.T) {
		state := &IterationState{ConsecutiveTimeoutFailures: 3}

		state.RecordFailure("connection error", false)
		assert.True(t, state.LastInteractionFailed)
		assert.Equal(t, "connection error", state.LastErrorMessage)
		assert.Zero(t, state.ConsecutiveTimeoutFailures)
	})

	t.Run("mixed outcomes", func(t *testing.T) {
		state := &IterationState{}

		state.RecordFailure("timeout 1", true)
		require.Equal(t, 1, state.ConsecutiveTimeoutFailures)

		state.RecordSuccess()
		require.Zero(t, state.ConsecutiveTimeoutFailures)

		state.RecordFailure("timeout 2", true)
		require.Equal(t, 1, state.ConsecutiveTimeoutFailures)

		state.RecordFailure("regular error", false)
		assert.Zero(t, state.ConsecutiveTimeoutFailures)
	})
}

func TestMaxConsecutiveTimeouts_Value(t *testing.T) {
	assert.Equal(t, 2, MaxConsecutiveTimeouts)
}
