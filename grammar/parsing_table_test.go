package grammar

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	spec "github.com/nihei9/ppjgen/spec/grammar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recognize runs a shift-reduce recognizer over the compiled tables. input is a list of
// terminal names separated by blanks.
func recognize(t *testing.T, cg *spec.CompiledGrammar, input string) bool {
	t.Helper()

	tab := cg.ParsingTable
	termNums := map[string]int{}
	for i, name := range tab.Terminals {
		if name != "" {
			termNums[name] = i
		}
	}
	var toks []int
	for _, f := range strings.Fields(input) {
		n, ok := termNums[f]
		if !ok {
			t.Fatalf("unknown terminal: %v", f)
		}
		toks = append(toks, n)
	}
	toks = append(toks, tab.EOFSymbol)

	stack := []int{tab.InitialState}
	for steps := 0; steps < 1000; steps++ {
		top := stack[len(stack)-1]
		act, err := tab.Action.Lookup(top, toks[0])
		require.NoError(t, err)
		switch {
		case act == 0:
			return false
		case act < 0:
			stack = append(stack, -act)
			toks = toks[1:]
		case act == tab.StartProduction:
			return true
		default:
			stack = stack[:len(stack)-tab.AlternativeSymbolCounts[act]]
			next, err := tab.GoTo.Lookup(stack[len(stack)-1], tab.LHSSymbols[act])
			require.NoError(t, err)
			if next == 0 {
				t.Fatalf("no goto entry; state: %v, production: %v", stack[len(stack)-1], act)
			}
			stack = append(stack, next)
		}
	}
	t.Fatal("the recognizer doesn't stop")
	return false
}

func TestCompile(t *testing.T) {
	tests := []struct {
		caption string
		src     string
		accept  []string
		reject  []string
	}{
		{
			caption: "a left-recursive grammar",
			src:     exprGrammar,
			accept:  []string{"id", "id + id", "id + id + id"},
			reject:  []string{"", "+", "id id", "id +", "+ id"},
		},
		{
			caption: "a grammar with an empty production",
			src:     nullableGrammar,
			accept:  []string{"c", "d"},
			reject:  []string{"", "c c", "d c", "c d"},
		},
		{
			caption: "a grammar that is LR(1) but not LALR(1)",
			src:     nonLALRGrammar,
			accept:  []string{"a c d", "b c d", "a c e", "b c e"},
			reject:  []string{"a c", "c d", "a d", "a c d e"},
		},
		{
			caption: "an ambiguous grammar with shifts preferred",
			src:     ambiguousGrammar,
			accept:  []string{"id", "id + id * id", "id * id + id"},
			reject:  []string{"id +", "* id", "id id"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			g := buildGrammar(t, tt.src)
			cg, _, err := Compile(g)
			require.NoError(t, err)
			for _, input := range tt.accept {
				assert.True(t, recognize(t, cg, input), "input: %q", input)
			}
			for _, input := range tt.reject {
				assert.False(t, recognize(t, cg, input), "input: %q", input)
			}
		})
	}
}

func TestCompile_Tables(t *testing.T) {
	g := buildGrammar(t, exprGrammar)
	cg, report, err := Compile(g)
	require.NoError(t, err)
	assert.Nil(t, report)

	tab := cg.ParsingTable
	assert.Equal(t, "test", cg.Name)
	assert.Equal(t, 6, tab.StateCount)
	assert.Equal(t, 0, tab.InitialState)
	assert.Equal(t, 1, tab.StartProduction)
	assert.Equal(t, 1, tab.EOFSymbol)
	assert.Equal(t, []string{"", "<eof>", "+", "id"}, tab.Terminals)
	assert.Equal(t, []string{"", "<<q0>>", "<E>", "<T>"}, tab.NonTerminals)
	assert.Equal(t, 4, tab.TerminalCount)
	assert.Equal(t, 4, tab.NonTerminalCount)
	assert.Equal(t, []int{0, 1, 2, 2, 3}, tab.LHSSymbols)
	assert.Equal(t, []int{0, 1, 3, 1, 1}, tab.AlternativeSymbolCounts)
	assert.Equal(t, []int{0, 0, 0, 0}, tab.SyncTerminals)

	rows, cols := tab.Action.OriginalTableSize()
	assert.Equal(t, 6, rows)
	assert.Equal(t, 4, cols)
	rows, cols = tab.GoTo.OriginalTableSize()
	assert.Equal(t, 6, rows)
	assert.Equal(t, 4, cols)
}

func TestCompile_Report(t *testing.T) {
	g := buildGrammar(t, nullableGrammar)
	_, report, err := Compile(g, EnableReporting())
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Nil(t, report.Terminals[0])
	assert.Equal(t, "<eof>", report.Terminals[1].Name)
	assert.False(t, report.Terminals[2].Sync)
	assert.Equal(t, "d", report.Terminals[3].Name)
	assert.True(t, report.Terminals[3].Sync)

	a := report.NonTerminals[3]
	assert.Equal(t, "<A>", a.Name)
	assert.True(t, a.Vanishing)
	assert.Empty(t, a.First)
	b := report.NonTerminals[4]
	assert.Equal(t, "<B>", b.Name)
	assert.False(t, b.Vanishing)
	assert.Equal(t, []int{2, 3}, b.First)

	require.Len(t, report.Productions, 6)
	assert.Nil(t, report.Productions[0])
	assert.Equal(t, []int{-3, -4}, report.Productions[2].RHS)
	assert.Equal(t, []int{-3, 2}, report.Productions[4].RHS)
	assert.Equal(t, 9, report.Productions[4].Row)

	sr, rr := report.ConflictCount()
	assert.Equal(t, 0, sr)
	assert.Equal(t, 0, rr)

	accepting := 0
	for _, s := range report.States {
		if s.Accept {
			accepting++
		}
	}
	assert.Equal(t, 1, accepting)
}

func TestCompile_Conflicts(t *testing.T) {
	t.Run("shift/reduce conflicts are resolved by shifting", func(t *testing.T) {
		g := buildGrammar(t, ambiguousGrammar)
		_, report, err := Compile(g, EnableReporting(), WithConflictPolicy(PreferShiftAndEarliestProduction))
		require.NoError(t, err)
		sr, rr := report.ConflictCount()
		assert.Greater(t, sr, 0)
		assert.Equal(t, 0, rr)
		for _, s := range report.States {
			for _, c := range s.SRConflict {
				assert.Equal(t, spec.ResolvedByShift, c.ResolvedBy)
				require.NotNil(t, c.AdoptedState)
				assert.Nil(t, c.AdoptedProduction)
			}
		}
	})

	t.Run("shift/reduce conflicts are rejected", func(t *testing.T) {
		g := buildGrammar(t, ambiguousGrammar)
		cg, _, err := Compile(g, WithConflictPolicy(RejectConflicts))
		assert.Nil(t, cg)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrGrammarConflict))

		var cerr *ConflictError
		require.True(t, errors.As(err, &cerr))
		require.NotEmpty(t, cerr.Conflicts)
		for _, c := range cerr.Conflicts {
			assert.True(t, c.IsShiftReduce())
		}
		assert.Contains(t, err.Error(), "shift/reduce conflict")
	})

	rrGrammar := `%V <S> <A> <B>
%T x
<S>
 <A>
 <B>
<A>
 x
<B>
 x
`

	t.Run("reduce/reduce conflicts are resolved by the earliest production", func(t *testing.T) {
		g := buildGrammar(t, rrGrammar)
		cc, err := g.CanonicalCollection()
		require.NoError(t, err)
		conflicts := cc.Conflicts()
		require.Len(t, conflicts, 1)
		assert.False(t, conflicts[0].IsShiftReduce())
		assert.Equal(t, []productionNum{4, 5}, conflicts[0].Productions())

		cg, report, err := Compile(g, EnableReporting())
		require.NoError(t, err)
		sr, rr := report.ConflictCount()
		assert.Equal(t, 0, sr)
		assert.Equal(t, 1, rr)
		for _, s := range report.States {
			for _, c := range s.RRConflict {
				assert.Equal(t, 4, c.AdoptedProduction)
				assert.Equal(t, spec.ResolvedByProdOrder, c.ResolvedBy)
			}
		}
		assert.True(t, recognize(t, cg, "x"))
	})

	t.Run("reduce/reduce conflicts are rejected", func(t *testing.T) {
		g := buildGrammar(t, rrGrammar)
		tab, err := BuildParsingTable(mustCanonicalCollection(t, g), RejectConflicts)
		assert.Nil(t, tab)
		assert.True(t, errors.Is(err, ErrGrammarConflict))
	})
}

func mustCanonicalCollection(t *testing.T, g *Grammar) *CanonicalCollection {
	t.Helper()
	cc, err := g.CanonicalCollection()
	require.NoError(t, err)
	return cc
}

func TestParseConflictPolicy(t *testing.T) {
	for _, p := range []ConflictPolicy{PreferShiftAndEarliestProduction, RejectConflicts} {
		parsed, err := ParseConflictPolicy(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, parsed)
	}
	_, err := ParseConflictPolicy("reduce")
	assert.Error(t, err)
}

func TestCanonicalCollection_Dot(t *testing.T) {
	g := buildGrammar(t, exprGrammar)
	cc := mustCanonicalCollection(t, g)

	var b bytes.Buffer
	require.NoError(t, cc.Dot(&b))
	out := b.String()
	assert.True(t, strings.HasPrefix(out, "digraph {"))
	for i := range cc.States {
		assert.Contains(t, out, fmt.Sprintf("s%03d [", i))
	}
	assert.Contains(t, out, "s001 [fillcolor=lightgray")
	assert.Contains(t, out, `s000 -> s003 [label="id"]`)
	assert.Contains(t, out, `\<E\> -\> \<E\> . + \<T\>`)
}

func TestBuildParsingTable_AgreesWithCompile(t *testing.T) {
	for _, policy := range []ConflictPolicy{PreferShiftAndEarliestProduction, RejectConflicts} {
		t.Run(policy.String(), func(t *testing.T) {
			g := buildGrammar(t, ambiguousGrammar)
			tab, tabErr := BuildParsingTable(mustCanonicalCollection(t, g), policy)
			cg, _, compileErr := Compile(g, WithConflictPolicy(policy))
			if policy == RejectConflicts {
				assert.Nil(t, tab)
				assert.Nil(t, cg)
				var tabConflicts, compileConflicts *ConflictError
				require.True(t, errors.As(tabErr, &tabConflicts))
				require.True(t, errors.As(compileErr, &compileConflicts))
				assert.Equal(t, len(tabConflicts.Conflicts), len(compileConflicts.Conflicts))
				return
			}
			require.NoError(t, tabErr)
			require.NoError(t, compileErr)
			assert.Equal(t, tab.InitialState.Int(), cg.ParsingTable.InitialState)
			assert.True(t, recognize(t, cg, "id + id * id"))
		})
	}
}
