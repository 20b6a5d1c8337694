package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"WAITING", "CALLED", "DONE", "SKIPPED"} {
		st, err := ParseStatus(s)
		require.NoError(t, err)
		assert.Equal(t, s, st.String())
		assert.True(t, st.Valid())
	}

	_, err := ParseStatus("waiting")
	assert.Error(t, err)

	_, err = ParseStatus("CANCELLED")
	assert.Error(t, err)
}

func TestActionTransitions(t *testing.T) {
	tests := []struct {
		action Action
		from   Status
		ok     bool
	}{
		{ActionCall, StatusWaiting, true},
		{ActionCall, StatusCalled, false},
		{ActionCall, StatusDone, false},
		{ActionCall, StatusSkipped, false},

		{ActionComplete, StatusCalled, true},
		{ActionComplete, StatusWaiting, false},
		{ActionComplete, StatusSkipped, false},

		{ActionCancel, StatusWaiting, true},
		{ActionCancel, StatusCalled, false},
		{ActionCancel, StatusDone, false},
		{ActionCancel, StatusSkipped, false},

		{ActionRecall, StatusWaiting, true},
		{ActionRecall, StatusCalled, true},
		{ActionRecall, StatusDone, true},
		{ActionRecall, StatusSkipped, true},

		{ActionSkip, StatusWaiting, true},
		{ActionSkip, StatusCalled, true},
		{ActionSkip, StatusDone, true},
		{ActionSkip, StatusSkipped, true},

		{Action("teleport"), StatusWaiting, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.action)+"/"+string(tt.from), func(t *testing.T) {
			assert.Equal(t, tt.ok, tt.action.CanApply(tt.from))
		})
	}
}

func TestActionTarget(t *testing.T) {
	to, ok := ActionCancel.Target()
	require.True(t, ok)
	assert.Equal(t, StatusSkipped, to)

	to, ok = ActionRecall.Target()
	require.True(t, ok)
	assert.Equal(t, StatusCalled, to)

	_, ok = Action("teleport").Target()
	assert.False(t, ok)
	assert.Nil(t, Action("teleport").AllowedFrom())
}

func TestAllowedFromIsACopy(t *testing.T) {
	from := ActionCall.AllowedFrom()
	from[0] = StatusDone

	assert.True(t, ActionCall.CanApply(StatusWaiting))
	assert.Equal(t, []string{"WAITING"}, StatusNames(ActionCall.AllowedFrom()))
}
