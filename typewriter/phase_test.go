package typewriter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition_ValidTransitions(t *testing.T) {
	cases := []struct {
		from  Phase
		event Event
		to    Phase
	}{
		{PhaseIdle, Start, PhaseTyping},
		{PhaseIdle, Skip, PhaseComplete},
		{PhaseTyping, Reveal, PhaseTyping},
		{PhaseTyping, Finished, PhaseHolding},
		{PhaseHolding, Cycle, PhaseDeleting},
		{PhaseHolding, Rest, PhaseComplete},
		{PhaseDeleting, Erase, PhaseDeleting},
		{PhaseDeleting, Cleared, PhaseTyping},
	}
	for _, tc := range cases {
		t.Run(string(tc.from)+"_"+string(tc.event), func(t *testing.T) {
			result, err := ApplyTransition(tc.from, tc.event)
			require.NoError(t, err)
			assert.Equal(t, tc.to, result)
		})
	}
}

func TestTransition_InvalidTransitions(t *testing.T) {
	cases := []struct {
		from  Phase
		event Event
	}{
		{PhaseIdle, Reveal},       // must start first
		{PhaseTyping, Cycle},      // hold comes before delete
		{PhaseHolding, Erase},     // deleting not entered yet
		{PhaseDeleting, Finished}, // wrong direction
		{PhaseComplete, Start},    // terminal
		{PhaseComplete, Cycle},    // terminal
		{Phase("bogus"), Start},
	}
	for _, tc := range cases {
		t.Run(string(tc.from)+"_"+string(tc.event), func(t *testing.T) {
			_, err := ApplyTransition(tc.from, tc.event)
			assert.Error(t, err)
		})
	}
}

func TestPhase_Animating(t *testing.T) {
	assert.True(t, PhaseIdle.Animating())
	assert.True(t, PhaseTyping.Animating())
	assert.True(t, PhaseHolding.Animating())
	assert.True(t, PhaseDeleting.Animating())
	assert.False(t, PhaseComplete.Animating())
}
