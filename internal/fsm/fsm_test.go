package fsm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTransitionHappyPath(t *testing.T) {
	s := StateDormant

	next, err := Transition(s, EventWake)
	require.NoError(t, err)
	require.Equal(t, StateListening, next)

	next, err = Transition(next, EventCommandResolved)
	require.NoError(t, err)
	require.Equal(t, StateConfirmation, next)

	next, err = Transition(next, EventConfirmationDone)
	require.NoError(t, err)
	require.Equal(t, StateListening, next)
}

func TestTransitionSleepFromAnyStateGoesDormant(t *testing.T) {
	states := []State{StateDormant, StateListening, StateConfirmation}
	for _, state := range states {
		next, err := Transition(state, EventSleep)
		require.NoError(t, err)
		require.Equal(t, StateDormant, next)

		next, err = Transition(state, EventSessionTimeout)
		require.NoError(t, err)
		require.Equal(t, StateDormant, next)
	}
}

func TestTransitionPreemptionReturnsToListening(t *testing.T) {
	next, err := Transition(StateConfirmation, EventTranscriptAgain)
	require.NoError(t, err)
	require.Equal(t, StateListening, next)
}

func TestTransitionMatrixInvalidTransitions(t *testing.T) {
	tests := []struct {
		name    string
		state   State
		event   Event
		want    State
		wantErr bool
	}{
		{name: "dormant command invalid", state: StateDormant, event: EventCommandResolved, want: StateDormant, wantErr: true},
		{name: "dormant confirmation invalid", state: StateDormant, event: EventConfirmationDone, want: StateDormant, wantErr: true},
		{name: "listening wake invalid", state: StateListening, event: EventWake, want: StateListening, wantErr: true},
		{name: "listening confirmation invalid", state: StateListening, event: EventConfirmationDone, want: StateListening, wantErr: true},
		{name: "listening continue valid", state: StateListening, event: EventContinue, want: StateListening, wantErr: false},
		{name: "confirmation wake invalid", state: StateConfirmation, event: EventWake, want: StateConfirmation, wantErr: true},
		{name: "confirmation resolve again valid", state: StateConfirmation, event: EventCommandResolved, want: StateConfirmation, wantErr: false},
		{name: "confirmation continue valid", state: StateConfirmation, event: EventContinue, want: StateConfirmation, wantErr: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			next, err := Transition(tc.state, tc.event)
			require.Equal(t, tc.want, next)
			if tc.wantErr {
				require.Error(t, err)
				require.Contains(t, err.Error(), "invalid transition")
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestTransitionUnknownState(t *testing.T) {
	next, err := Transition(State("mystery"), EventWake)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown state")
	require.Equal(t, State("mystery"), next)
}

func TestIsAwake(t *testing.T) {
	require.False(t, IsAwake(StateDormant))
	require.True(t, IsAwake(StateListening))
	require.True(t, IsAwake(StateConfirmation))
}
