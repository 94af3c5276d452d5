package nfa

import (
	"errors"
	"fmt"
	"sort"

	"github.com/nihei9/ppjgen/grammar/lexical/regex"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'ppjgen.nfa'.
func tracer() tracing.Trace {
	return tracing.Select("ppjgen.nfa")
}

// StateID identifies a state of an automaton. IDs are dense and start at 0, which is
// the start state.
type StateID int

const StateIDNil = StateID(-1)

func (id StateID) Int() int {
	return int(id)
}

var (
	ErrFinalized    = errors.New("the automaton has been finalized; no more edits are allowed")
	ErrUnknownState = errors.New("unknown state")
	ErrNotBuilt     = errors.New("the automaton has no accepting state; call Build first")
)

type builderState struct {
	trans map[rune][]StateID
	eps   []StateID
}

// Builder assembles an automaton. It is the only type that can add states and edges;
// Finalize hands the result over to an NFA, which is read-only from then on.
type Builder struct {
	states    []*builderState
	start     StateID
	accept    StateID
	finalized bool
}

func NewBuilder() *Builder {
	b := &Builder{
		accept: StateIDNil,
	}
	b.start = b.AddState()
	return b
}

// Compile translates a regex tree into a finalized automaton.
func Compile(tree regex.Node) (*NFA, error) {
	b := NewBuilder()
	if err := b.Build(tree); err != nil {
		return nil, err
	}
	return b.Finalize()
}

func (b *Builder) Start() StateID {
	return b.start
}

func (b *Builder) AddState() StateID {
	if b.finalized {
		return StateIDNil
	}
	b.states = append(b.states, &builderState{
		trans: map[rune][]StateID{},
	})
	return StateID(len(b.states) - 1)
}

func (b *Builder) Link(from, to StateID, c rune) error {
	if err := b.checkEdge(from, to); err != nil {
		return err
	}
	b.states[from].trans[c] = append(b.states[from].trans[c], to)
	return nil
}

func (b *Builder) LinkEpsilon(from, to StateID) error {
	if err := b.checkEdge(from, to); err != nil {
		return err
	}
	b.states[from].eps = append(b.states[from].eps, to)
	return nil
}

func (b *Builder) checkEdge(from, to StateID) error {
	if b.finalized {
		return ErrFinalized
	}
	if !b.valid(from) {
		return fmt.Errorf("%w: %v", ErrUnknownState, from)
	}
	if !b.valid(to) {
		return fmt.Errorf("%w: %v", ErrUnknownState, to)
	}
	return nil
}

func (b *Builder) valid(id StateID) bool {
	return id >= 0 && int(id) < len(b.states)
}

// SetAccept marks the accepting state of a hand-built automaton.
func (b *Builder) SetAccept(id StateID) error {
	if b.finalized {
		return ErrFinalized
	}
	if !b.valid(id) {
		return fmt.Errorf("%w: %v", ErrUnknownState, id)
	}
	b.accept = id
	return nil
}

// Build translates tree starting at the start state and makes the state the
// translation ends in the accepting state.
func (b *Builder) Build(tree regex.Node) error {
	if b.finalized {
		return ErrFinalized
	}
	if tree == nil {
		return fmt.Errorf("cannot build an automaton from a nil tree")
	}
	end, err := b.translate(tree, b.start)
	if err != nil {
		return err
	}
	b.accept = end
	return nil
}

// translate adds the states and edges recognizing n, entering at from, and returns
// the state the recognition ends in.
//
//   - alternation: a shared join state; every operand gets a fresh branch state
//     entered by an ε-edge from `from`, and its end is linked to the join by an ε-edge.
//   - concatenation: the end of one operand is the start of the next.
//   - character: an edge labeled with the character to a fresh state.
//   - empty word: an ε-edge to a fresh state.
//   - star: the node starts in a fresh state entered by an ε-edge, its end is linked
//     back to that state, and that state is also the end of the node. The fresh state
//     keeps the loop from reaching edges that leave `from` for other operands.
func (b *Builder) translate(n regex.Node, from StateID) (StateID, error) {
	start := from
	if n.Repeated() {
		start = b.AddState()
		if err := b.LinkEpsilon(from, start); err != nil {
			return StateIDNil, err
		}
	}

	var end StateID
	switch n := n.(type) {
	case *regex.AltNode:
		end = b.AddState()
		for _, c := range n.Children() {
			branch := b.AddState()
			if err := b.LinkEpsilon(start, branch); err != nil {
				return StateIDNil, err
			}
			cEnd, err := b.translate(c, branch)
			if err != nil {
				return StateIDNil, err
			}
			if err := b.LinkEpsilon(cEnd, end); err != nil {
				return StateIDNil, err
			}
		}
	case *regex.ConcatNode:
		end = start
		for _, c := range n.Children() {
			var err error
			end, err = b.translate(c, end)
			if err != nil {
				return StateIDNil, err
			}
		}
	case *regex.SymbolNode:
		end = b.AddState()
		if err := b.Link(start, end, n.Char()); err != nil {
			return StateIDNil, err
		}
	case *regex.EpsilonNode:
		end = b.AddState()
		if err := b.LinkEpsilon(start, end); err != nil {
			return StateIDNil, err
		}
	default:
		return StateIDNil, fmt.Errorf("unexpected node: %T", n)
	}

	if n.Repeated() {
		if err := b.LinkEpsilon(end, start); err != nil {
			return StateIDNil, err
		}
		end = start
	}
	return end, nil
}

// Finalize freezes the builder and returns the automaton.
func (b *Builder) Finalize() (*NFA, error) {
	if b.finalized {
		return nil, ErrFinalized
	}
	if b.accept == StateIDNil {
		return nil, ErrNotBuilt
	}
	b.finalized = true

	states := make([]*state, len(b.states))
	for i, bs := range b.states {
		trans := make(map[rune][]StateID, len(bs.trans))
		for c, dests := range bs.trans {
			trans[c] = dedupStates(dests)
		}
		states[i] = &state{
			trans: trans,
			eps:   dedupStates(bs.eps),
			phase: phaseUnevaluated,
		}
	}
	n := &NFA{
		states: states,
		start:  b.start,
		accept: b.accept,
	}
	b.states = nil
	tracer().Debugf("finalized an automaton with %v states", len(states))
	return n, nil
}

func dedupStates(ids []StateID) []StateID {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[StateID]struct{}, len(ids))
	out := make([]StateID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i] < out[j]
	})
	return out
}
