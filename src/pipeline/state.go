package pipeline

import (
	"errors"
	"fmt"
)

// State is a step of one submission.
type State string

const (
	StateIdle      State = "idle"
	StateSearching State = "searching"
	StateAnalyzing State = "analyzing"
	StateRendered  State = "rendered"
	StateErrored   State = "errored"
)

// ErrIllegalTransition is returned when a move is not in the transition table.
var ErrIllegalTransition = errors.New("illegal state transition")

var transitions = map[State][]State{
	StateIdle:      {StateSearching},
	StateSearching: {StateAnalyzing, StateErrored},
	StateAnalyzing: {StateRendered, StateErrored},
	StateRendered:  {StateIdle},
	StateErrored:   {StateIdle},
}

// Terminal reports whether s ends a run.
func (s State) Terminal() bool {
	return s == StateRendered || s == StateErrored
}

// Machine tracks one submission's state. It is not safe for concurrent use;
// each run owns its own Machine.
type Machine struct {
	state State
}

// NewMachine starts in Idle.
func NewMachine() *Machine {
	return &Machine{state: StateIdle}
}

func (m *Machine) State() State { return m.state }

// Transition moves to next or returns ErrIllegalTransition.
func (m *Machine) Transition(next State) error {
	for _, allowed := range transitions[m.state] {
		if allowed == next {
			m.state = next
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, m.state, next)
}

// Reset returns a finished machine to Idle for the next submission.
func (m *Machine) Reset() error {
	if m.state == StateIdle {
		return nil
	}
	return m.Transition(StateIdle)
}
