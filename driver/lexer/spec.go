package lexer

import (
	"github.com/nihei9/ppjgen/grammar/lexical"
	"github.com/nihei9/ppjgen/grammar/lexical/nfa"
)

// ruleSet runs the automata of the rules of one lexer state side by side.
type ruleSet struct {
	rules    []*lexical.Rule
	matchers []*nfa.Matcher
}

func newRuleSets(tab *lexical.LexerTable) []*ruleSet {
	sets := make([]*ruleSet, len(tab.States))
	for i, s := range tab.States {
		set := &ruleSet{
			rules:    s.Rules,
			matchers: make([]*nfa.Matcher, len(s.Rules)),
		}
		for j, r := range s.Rules {
			set.matchers[j] = r.NFA.Matcher()
		}
		sets[i] = set
	}
	return sets
}

func (s *ruleSet) reset() {
	for _, m := range s.matchers {
		m.Reset()
	}
}

// push feeds c to every alive automaton. It returns the earliest rule accepting the
// input read so far, or nil, and whether any automaton is still alive.
func (s *ruleSet) push(c rune) (*lexical.Rule, bool) {
	var accepted *lexical.Rule
	alive := false
	for i, m := range s.matchers {
		if !m.Alive() || !m.Push(c) {
			continue
		}
		alive = true
		if accepted == nil && m.Accepting() {
			accepted = s.rules[i]
		}
	}
	return accepted, alive
}
