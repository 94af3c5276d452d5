package nfa

import "github.com/emirpasic/gods/sets/treeset"

// Matcher runs an automaton over input one character at a time. A matcher is a
// cursor; any number of matchers can run over the same NFA.
type Matcher struct {
	nfa    *NFA
	active *treeset.Set
}

func (n *NFA) Matcher() *Matcher {
	m := &Matcher{
		nfa: n,
	}
	m.Reset()
	return m
}

// Reset returns to the ε-closure of the start state.
func (m *Matcher) Reset() {
	m.active = m.nfa.startSet()
}

// Push consumes c and reports whether some state is still active, that is, whether
// the input read so far can still be extended to a match.
func (m *Matcher) Push(c rune) bool {
	if m.active.Empty() {
		return false
	}
	m.active = m.nfa.step(m.active, c)
	return !m.active.Empty()
}

// Alive reports whether some state is active.
func (m *Matcher) Alive() bool {
	return !m.active.Empty()
}

// Accepting reports whether the input read since the last reset is accepted.
func (m *Matcher) Accepting() bool {
	return m.nfa.accepting(m.active)
}

// Eval resets the matcher, consumes s, and reports whether s is accepted.
func (m *Matcher) Eval(s string) bool {
	m.Reset()
	for _, c := range s {
		if !m.Push(c) {
			return false
		}
	}
	return m.Accepting()
}
