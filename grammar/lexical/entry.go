package lexical

import (
	"fmt"
	"io"
	"sort"

	"github.com/nihei9/ppjgen/grammar/lexical/nfa"
	"github.com/nihei9/ppjgen/grammar/lexical/regex"
	lexspec "github.com/nihei9/ppjgen/spec/lexical"
)

// StateID identifies a lexer state. The initial state is 0.
type StateID int

func (id StateID) Int() int {
	return int(id)
}

const StateIDInitial = StateID(0)

type Rule struct {
	// ID is the position of the rule in the definition. It is unique among all lexer
	// states, and a lower ID wins a tie between matches of the same length.
	ID int

	State    StateID
	Pattern  string
	Token    string
	NFA      *nfa.NFA
	Commands []Command
	Row      int
}

// Emits reports whether a match of the rule produces a token.
func (r *Rule) Emits() bool {
	return r.Token != lexspec.TokenNone
}

type State struct {
	ID    StateID
	Name  string
	Rules []*Rule
}

// LexerTable is the compiled form of a lexical definition.
type LexerTable struct {
	States      []*State
	Tokens      []string
	Rules       []*Rule
	Definitions *regex.Definitions
}

func (t *LexerTable) InitialState() *State {
	return t.States[StateIDInitial]
}

func (t *LexerTable) StateByName(name string) (*State, bool) {
	for _, s := range t.States {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// RuleStats describes the automaton of one rule.
type RuleStats struct {
	Rule  *Rule
	Stats nfa.Stats
}

func (t *LexerTable) Stats() []*RuleStats {
	stats := make([]*RuleStats, len(t.Rules))
	for i, r := range t.Rules {
		stats[i] = &RuleStats{
			Rule:  r,
			Stats: r.NFA.Stats(),
		}
	}
	return stats
}

// Dot writes the automaton of a rule in GraphViz format.
func (t *LexerTable) Dot(w io.Writer, ruleID int) error {
	if ruleID < 0 || ruleID >= len(t.Rules) {
		return fmt.Errorf("rule #%v is not defined; the definition has %v rules", ruleID, len(t.Rules))
	}
	r := t.Rules[ruleID]
	name := fmt.Sprintf("<%v>%v", t.States[r.State].Name, r.Pattern)
	return r.NFA.Dot(w, name)
}

type SemanticError struct {
	message string
}

func newSemanticError(message string) *SemanticError {
	return &SemanticError{
		message: message,
	}
}

func (e *SemanticError) Error() string {
	return e.message
}

var (
	semErrDuplicateState = newSemanticError("duplicate lexer state")
	semErrDuplicateToken = newSemanticError("duplicate token name")
	semErrUndefinedState = newSemanticError("undefined lexer state")
	semErrUndefinedToken = newSemanticError("undefined token name; declare it with %L or use -")
	semErrNoRule         = newSemanticError("a lexical definition needs at least one rule")
	semErrReservedToken  = newSemanticError("- cannot be declared as a token name")
)

// validate checks the names a definition uses and returns the lexer states by name.
func validate(spec *lexspec.LexSpec) (map[string]StateID, []*ruleError) {
	var errs []*ruleError

	states := map[string]StateID{}
	for _, name := range spec.States {
		if _, ok := states[name]; ok {
			errs = append(errs, &ruleError{cause: semErrDuplicateState, detail: name, row: spec.StatesRow})
			continue
		}
		states[name] = StateID(len(states))
	}

	tokens := map[string]struct{}{}
	for _, name := range spec.Tokens {
		if name == lexspec.TokenNone {
			errs = append(errs, &ruleError{cause: semErrReservedToken, row: spec.TokensRow})
			continue
		}
		if _, ok := tokens[name]; ok {
			errs = append(errs, &ruleError{cause: semErrDuplicateToken, detail: name, row: spec.TokensRow})
			continue
		}
		tokens[name] = struct{}{}
	}

	if len(spec.Rules) == 0 {
		errs = append(errs, &ruleError{cause: semErrNoRule})
	}
	for _, r := range spec.Rules {
		if _, ok := states[r.State]; !ok {
			errs = append(errs, &ruleError{cause: semErrUndefinedState, detail: r.State, row: r.Row})
		}
		if r.Emits() {
			if _, ok := tokens[r.Token]; !ok {
				errs = append(errs, &ruleError{cause: semErrUndefinedToken, detail: r.Token, row: r.Row})
			}
		}
	}

	sort.SliceStable(errs, func(i, j int) bool {
		return errs[i].row < errs[j].row
	})
	return states, errs
}
