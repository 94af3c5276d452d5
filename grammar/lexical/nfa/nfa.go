package nfa

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/emirpasic/gods/sets/treeset"
)

// phase is the lifecycle of a state. A state moves forward only:
//
//	unevaluated --closure--> evaluated --optimize--> optimized
//
// The ε-closure is read only once a state is evaluated, and the ε-edges are dropped
// only once the closure has been folded into symbol transitions.
type phase int

const (
	phaseUnevaluated phase = iota
	phaseEvaluated
	phaseOptimized
)

func (p phase) String() string {
	switch p {
	case phaseUnevaluated:
		return "unevaluated"
	case phaseEvaluated:
		return "evaluated"
	case phaseOptimized:
		return "optimized"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

type state struct {
	trans      map[rune][]StateID
	eps        []StateID
	phase      phase
	closure    []StateID
	acceptable bool
}

// NFA is a finalized automaton. Its language never changes. Closures and the
// folding of ε-edges into symbol transitions happen lazily the first time a state is
// visited; a mutex serializes that work, so an NFA may be shared between lexers.
type NFA struct {
	mu     sync.Mutex
	states []*state
	start  StateID
	accept StateID
}

func (n *NFA) Start() StateID {
	return n.start
}

func (n *NFA) Accept() StateID {
	return n.accept
}

func (n *NFA) Len() int {
	return len(n.states)
}

func stateIDComparator(a, b interface{}) int {
	x := a.(StateID)
	y := b.(StateID)
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

func newStateSet(ids ...StateID) *treeset.Set {
	s := treeset.NewWith(stateIDComparator)
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

func stateSetValues(s *treeset.Set) []StateID {
	vs := s.Values()
	ids := make([]StateID, len(vs))
	for i, v := range vs {
		ids[i] = v.(StateID)
	}
	return ids
}

// Closure returns the ε-closure of a state in ascending order, the state itself
// included.
func (n *NFA) Closure(id StateID) ([]StateID, error) {
	if id < 0 || int(id) >= len(n.states) {
		return nil, fmt.Errorf("%w: %v", ErrUnknownState, id)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]StateID{}, n.closure(id)...), nil
}

// Acceptable reports whether the accepting state is in the ε-closure of a state.
func (n *NFA) Acceptable(id StateID) (bool, error) {
	if id < 0 || int(id) >= len(n.states) {
		return false, fmt.Errorf("%w: %v", ErrUnknownState, id)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closure(id)
	return n.states[id].acceptable, nil
}

// closure evaluates a state. The traversal uses an explicit stack, and states that
// are already evaluated contribute their memoized closure instead of being walked
// again; this is also what makes it safe to traverse past optimized states, whose
// ε-edges are gone.
func (n *NFA) closure(id StateID) []StateID {
	s := n.states[id]
	if s.phase != phaseUnevaluated {
		return s.closure
	}

	set := newStateSet()
	stack := []StateID{id}
	for len(stack) > 0 {
		q := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if set.Contains(q) {
			continue
		}
		qs := n.states[q]
		if q != id && qs.phase != phaseUnevaluated {
			for _, r := range qs.closure {
				set.Add(r)
			}
			continue
		}
		set.Add(q)
		for _, r := range qs.eps {
			if !set.Contains(r) {
				stack = append(stack, r)
			}
		}
	}

	s.closure = stateSetValues(set)
	s.acceptable = set.Contains(n.accept)
	s.phase = phaseEvaluated
	return s.closure
}

// optimize folds the symbol transitions of every state in the closure of id into id
// itself and drops its ε-edges. It runs at most once per state.
func (n *NFA) optimize(id StateID) *state {
	s := n.states[id]
	if s.phase == phaseOptimized {
		return s
	}
	closure := n.closure(id)

	folded := map[rune]*treeset.Set{}
	for _, q := range closure {
		for c, dests := range n.states[q].trans {
			set, ok := folded[c]
			if !ok {
				set = newStateSet()
				folded[c] = set
			}
			for _, d := range dests {
				set.Add(d)
			}
		}
	}
	trans := make(map[rune][]StateID, len(folded))
	for c, set := range folded {
		trans[c] = stateSetValues(set)
	}

	s.trans = trans
	s.eps = nil
	s.phase = phaseOptimized
	return s
}

// step returns the states reachable from the given ones by consuming c.
func (n *NFA) step(from *treeset.Set, c rune) *treeset.Set {
	n.mu.Lock()
	defer n.mu.Unlock()

	next := newStateSet()
	for _, v := range from.Values() {
		s := n.optimize(v.(StateID))
		for _, d := range s.trans[c] {
			next.Add(d)
		}
	}
	return next
}

func (n *NFA) accepting(ids *treeset.Set) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, v := range ids.Values() {
		id := v.(StateID)
		n.closure(id)
		if n.states[id].acceptable {
			return true
		}
	}
	return false
}

func (n *NFA) startSet() *treeset.Set {
	n.mu.Lock()
	defer n.mu.Unlock()
	return newStateSet(n.closure(n.start)...)
}

// Eval reports whether the automaton accepts s.
func (n *NFA) Eval(s string) bool {
	return n.Matcher().Eval(s)
}

// Stats counts states and edges as they are now; optimization moves ε-edges into
// symbol edges, so the counts change as the automaton is used.
type Stats struct {
	States       int
	SymbolEdges  int
	EpsilonEdges int
	Optimized    int
}

func (n *NFA) Stats() Stats {
	n.mu.Lock()
	defer n.mu.Unlock()

	st := Stats{
		States: len(n.states),
	}
	for _, s := range n.states {
		for _, dests := range s.trans {
			st.SymbolEdges += len(dests)
		}
		st.EpsilonEdges += len(s.eps)
		if s.phase == phaseOptimized {
			st.Optimized++
		}
	}
	return st
}

// Dot writes the automaton in GraphViz format.
func (n *NFA) Dot(w io.Writer, name string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, err := fmt.Fprintf(w, "digraph %q {\n  rankdir=LR;\n  node [shape=circle];\n", name); err != nil {
		return err
	}
	fmt.Fprintf(w, "  %d [shape=doublecircle];\n", n.accept)
	fmt.Fprintf(w, "  start [shape=point];\n  start -> %d;\n", n.start)
	for i, s := range n.states {
		cs := make([]rune, 0, len(s.trans))
		for c := range s.trans {
			cs = append(cs, c)
		}
		sort.Slice(cs, func(a, b int) bool {
			return cs[a] < cs[b]
		})
		for _, c := range cs {
			for _, d := range s.trans[c] {
				fmt.Fprintf(w, "  %d -> %d [label=%q];\n", i, d, string(c))
			}
		}
		for _, d := range s.eps {
			fmt.Fprintf(w, "  %d -> %d [label=\"ε\", style=dashed];\n", i, d)
		}
	}
	_, err := fmt.Fprintln(w, "}")
	return err
}
