package lexical

import (
	"runtime"

	verr "github.com/nihei9/ppjgen/error"
	"github.com/nihei9/ppjgen/grammar/lexical/nfa"
	"github.com/nihei9/ppjgen/grammar/lexical/regex"
	lexspec "github.com/nihei9/ppjgen/spec/lexical"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/sync/errgroup"
)

// tracer traces with key 'ppjgen.lexical'.
func tracer() tracing.Trace {
	return tracing.Select("ppjgen.lexical")
}

type ruleError struct {
	cause  error
	detail string
	row    int
}

// Compile resolves the regular definitions of spec in order and compiles the pattern
// of every rule into an automaton. Rules are compiled concurrently; the table lists
// them in declaration order regardless.
//
// Every error found is returned at once as an error.SpecErrors.
func Compile(spec *lexspec.LexSpec) (*LexerTable, error) {
	stateIDs, errs := validate(spec)

	defs := regex.NewDefinitions()
	for _, d := range spec.Definitions {
		if err := defs.Define(d.Name, d.Pattern); err != nil {
			errs = append(errs, &ruleError{cause: err, detail: "{" + d.Name + "}", row: d.Row})
		}
	}

	rules := make([]*Rule, len(spec.Rules))
	for i, r := range spec.Rules {
		rule := &Rule{
			ID:      i,
			State:   stateIDs[r.State],
			Pattern: r.Pattern,
			Token:   r.Token,
			Row:     r.Row,
		}
		for _, c := range r.Commands {
			cmd, err := parseCommand(c.Text, stateIDs)
			if err != nil {
				errs = append(errs, &ruleError{cause: err, row: c.Row})
				continue
			}
			rule.Commands = append(rule.Commands, cmd)
		}
		rules[i] = rule
	}

	nfaErrs := make([]error, len(rules))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, rule := range rules {
		i, rule := i, rule
		g.Go(func() error {
			tree, err := regex.Parse(defs, rule.Pattern)
			if err != nil {
				nfaErrs[i] = err
				return nil
			}
			rule.NFA, err = nfa.Compile(tree)
			if err != nil {
				nfaErrs[i] = err
			}
			return nil
		})
	}
	// The workers report failures through nfaErrs so that every rule is checked.
	_ = g.Wait()
	for i, err := range nfaErrs {
		if err != nil {
			errs = append(errs, &ruleError{cause: err, row: rules[i].Row})
		}
	}

	if len(errs) > 0 {
		specErrs := make(verr.SpecErrors, len(errs))
		for i, e := range errs {
			specErrs[i] = &verr.SpecError{
				Cause:  e.cause,
				Detail: e.detail,
				Row:    e.row,
			}
		}
		tracer().Errorf("the lexical definition has %v errors", len(specErrs))
		return nil, specErrs
	}

	tab := &LexerTable{
		Tokens:      spec.Tokens,
		Rules:       rules,
		Definitions: defs,
	}
	for i, name := range spec.States {
		tab.States = append(tab.States, &State{
			ID:   StateID(i),
			Name: name,
		})
	}
	for _, r := range rules {
		s := tab.States[r.State]
		s.Rules = append(s.Rules, r)
	}
	for _, s := range tab.States {
		tracer().Debugf("lexer state %v: %v rules", s.Name, len(s.Rules))
	}
	return tab, nil
}
