package markov

import (
	"fmt"
	"strings"

	"github.com/lmontes/melgen/event"
)

// Key separators. Event encodings never contain these characters, so the
// joined keys stay injective.
const (
	voiceSep = "&" // same-time events across voices
	stepSep  = "+" // consecutive time steps inside a state window
)

// Group is one synchronized multi-voice time step: exactly one event per
// selected voice, in the table's voice order.
type Group struct {
	Events []event.Event
}

// Key renders the canonical group key: voice events joined with '&'.
func (g Group) Key() string {
	parts := make([]string, len(g.Events))
	for i, ev := range g.Events {
		parts[i] = ev.String()
	}
	return strings.Join(parts, voiceSep)
}

// DecodeGroup is the inverse of Group.Key.
func DecodeGroup(s string) (Group, error) {
	var g Group
	for _, es := range strings.Split(s, voiceSep) {
		ev, err := event.Decode(strings.TrimSpace(es))
		if err != nil {
			return Group{}, err
		}
		g.Events = append(g.Events, ev)
	}
	return g, nil
}

// State is the n-gram context: a window of `order` consecutive groups,
// oldest first.
type State struct {
	Steps []Group
}

// Key renders the canonical state key: group keys joined with '+'.
func (s State) Key() string {
	parts := make([]string, len(s.Steps))
	for i, g := range s.Steps {
		parts[i] = g.Key()
	}
	return strings.Join(parts, stepSep)
}

// DecodeState is the inverse of State.Key.
func DecodeState(s string) (State, error) {
	var st State
	for _, gs := range strings.Split(s, stepSep) {
		g, err := DecodeGroup(gs)
		if err != nil {
			return State{}, err
		}
		st.Steps = append(st.Steps, g)
	}
	if len(st.Steps) == 0 {
		return State{}, fmt.Errorf("empty state key %q", s)
	}
	return st, nil
}

// Latest returns the most recent time step of the window.
func (s State) Latest() Group {
	return s.Steps[len(s.Steps)-1]
}

// Advance slides the window forward: the oldest step is dropped and next is
// appended. This is the defining recurrence of the n-gram chain.
func (s State) Advance(next Group) State {
	steps := make([]Group, 0, len(s.Steps))
	if len(s.Steps) > 1 {
		steps = append(steps, s.Steps[1:]...)
	}
	steps = append(steps, next)
	return State{Steps: steps}
}
