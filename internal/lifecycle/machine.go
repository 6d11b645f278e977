// Package lifecycle holds the state machines for every entity with a
// status. Machines are pure: they validate a move and return the target
// state; callers own persistence and timestamps.
package lifecycle

import (
	"fmt"
	"slices"

	dErrors "atelier/pkg/domain-errors"
)

// Machine is a finite-state machine over an adjacency table.
// States with no outgoing edges are terminal.
type Machine[S ~string] struct {
	scope string
	edges map[S][]S
	order []S
}

// NewMachine builds a machine. Every state, including terminals, must be
// listed in states; edges may only reference listed states.
func NewMachine[S ~string](scope string, states []S, edges map[S][]S) *Machine[S] {
	for from, targets := range edges {
		if !slices.Contains(states, from) {
			panic(fmt.Sprintf("lifecycle %s: edge from unlisted state %q", scope, from))
		}
		for _, to := range targets {
			if !slices.Contains(states, to) {
				panic(fmt.Sprintf("lifecycle %s: edge to unlisted state %q", scope, to))
			}
		}
	}
	return &Machine[S]{scope: scope, edges: edges, order: slices.Clone(states)}
}

// Scope returns the name used in error messages.
func (m *Machine[S]) Scope() string { return m.scope }

// Transition validates from -> to. A self-transition is a no-op and always
// succeeds for a known state.
func (m *Machine[S]) Transition(from, to S) (S, error) {
	if !m.known(from) {
		return "", m.unknown(from)
	}
	if !m.known(to) {
		return "", m.unknown(to)
	}
	if from == to {
		return to, nil
	}
	if !slices.Contains(m.edges[from], to) {
		return "", dErrors.InvalidTransition(m.scope, string(from), string(to))
	}
	return to, nil
}

// Can reports whether Transition(from, to) would succeed.
func (m *Machine[S]) Can(from, to S) bool {
	_, err := m.Transition(from, to)
	return err == nil
}

// Targets lists the states reachable in one step from s, excluding s itself.
func (m *Machine[S]) Targets(s S) []S {
	return slices.Clone(m.edges[s])
}

// IsTerminal reports whether s has no outgoing edges.
func (m *Machine[S]) IsTerminal(s S) bool {
	return m.known(s) && len(m.edges[s]) == 0
}

// States lists every state in declaration order.
func (m *Machine[S]) States() []S {
	return slices.Clone(m.order)
}

func (m *Machine[S]) known(s S) bool {
	return slices.Contains(m.order, s)
}

func (m *Machine[S]) unknown(s S) error {
	return dErrors.InvalidInput(fmt.Sprintf("invalid_%s_state:%s", m.scope, s))
}
