package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMachineTransitions(t *testing.T) {
	tests := []struct {
		name  string
		path  []State
		final State
	}{
		{"happy path", []State{StateSearching, StateAnalyzing, StateRendered}, StateRendered},
		{"search failure", []State{StateSearching, StateErrored}, StateErrored},
		{"analysis failure", []State{StateSearching, StateAnalyzing, StateErrored}, StateErrored},
		{"reset after render", []State{StateSearching, StateAnalyzing, StateRendered, StateIdle, StateSearching}, StateSearching},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMachine()
			for _, s := range tt.path {
				require.NoError(t, m.Transition(s))
			}
			assert.Equal(t, tt.final, m.State())
		})
	}
}

func TestMachineRejectsIllegalTransitions(t *testing.T) {
	illegal := []struct {
		from []State
		to   State
	}{
		{nil, StateAnalyzing},
		{nil, StateRendered},
		{nil, StateErrored},
		{[]State{StateSearching}, StateRendered},
		{[]State{StateSearching}, StateIdle},
		{[]State{StateSearching, StateErrored}, StateAnalyzing},
		{[]State{StateSearching, StateAnalyzing, StateRendered}, StateSearching},
	}
	for _, tt := range illegal {
		m := NewMachine()
		for _, s := range tt.from {
			require.NoError(t, m.Transition(s))
		}
		before := m.State()
		err := m.Transition(tt.to)
		require.ErrorIs(t, err, ErrIllegalTransition)
		assert.Equal(t, before, m.State())
	}
}

func TestMachineReset(t *testing.T) {
	m := NewMachine()
	require.NoError(t, m.Reset())
	require.NoError(t, m.Transition(StateSearching))
	require.ErrorIs(t, m.Reset(), ErrIllegalTransition)
	require.NoError(t, m.Transition(StateErrored))
	require.NoError(t, m.Reset())
	assert.Equal(t, StateIdle, m.State())
	assert.True(t, StateErrored.Terminal())
	assert.False(t, StateAnalyzing.Terminal())
}
