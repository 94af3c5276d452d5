package grammar

import (
	"errors"
	"strings"
	"testing"

	"github.com/nihei9/ppjgen/grammar/symbol"
	spec "github.com/nihei9/ppjgen/spec/grammar"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exprGrammar = `%V <E> <T>
%T + id
<E>
 <E> + <T>
 <T>
<T>
 id
`

const ambiguousGrammar = `%V <E>
%T + * id
<E>
 <E> + <E>
 <E> * <E>
 id
`

const nullableGrammar = `%V <S> <A> <B>
%T c d
%Syn d
<S>
 <A> <B>
<A>
 $
<B>
 <A> c
 d
`

// nonLALRGrammar is LR(1), but merging the states with the same core creates a
// reduce/reduce conflict.
const nonLALRGrammar = `%V <S> <A> <B>
%T a b c d e
<S>
 a <A> d
 b <B> d
 a <B> e
 b <A> e
<A>
 c
<B>
 c
`

func buildGrammar(t *testing.T, src string) *Grammar {
	t.Helper()

	ast, err := spec.Parse(strings.NewReader(src))
	require.NoError(t, err)
	b := GrammarBuilder{
		AST:  ast,
		Name: "test",
	}
	g, err := b.Build()
	require.NoError(t, err)
	return g
}

func genSym(t *testing.T, g *Grammar) func(name string) symbol.Symbol {
	return func(name string) symbol.Symbol {
		t.Helper()

		sym, ok := g.SymbolTable().ToSymbol(name)
		if !ok {
			t.Fatalf("symbol was not found: %v", name)
		}
		return sym
	}
}

func TestGrammarBuilder_Build(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ppjgen.grammar")
	defer teardown()

	g := buildGrammar(t, nullableGrammar)
	sym := genSym(t, g)

	assert.Equal(t, sym("<S>"), g.StartSymbol())
	assert.Equal(t, []symbol.Symbol{sym("d")}, g.SyncTerminals())

	prods := []string{
		"<<q0>> -> <S>",
		"<S> -> <A> <B>",
		"<A> -> $",
		"<B> -> <A> c",
		"<B> -> d",
	}
	for i, want := range prods {
		text, ok := g.ProductionText(i + 1)
		if !ok {
			t.Fatalf("production %v was not found", i+1)
		}
		assert.Equal(t, want, text)
	}
	_, ok := g.ProductionText(0)
	assert.False(t, ok)
	_, ok = g.ProductionText(len(prods) + 1)
	assert.False(t, ok)
}

func TestGrammarBuilder_Build_SplitProductions(t *testing.T) {
	g := buildGrammar(t, `%V <S> <A>
%T a
<S>
 <A>
<A>
 a
<S>
 a <S>
`)
	text, ok := g.ProductionText(4)
	require.True(t, ok)
	assert.Equal(t, "<S> -> a <S>", text)
}

func TestGrammarBuilder_Build_Errors(t *testing.T) {
	tests := []struct {
		caption string
		src     string
		cause   error
	}{
		{
			caption: "a non-terminal is declared twice",
			src: `%V <S> <S>
%T a
<S>
 a
`,
			cause: semErrDuplicateSymbol,
		},
		{
			caption: "a terminal is declared twice",
			src: `%V <S>
%T a a
<S>
 a
`,
			cause: semErrDuplicateSymbol,
		},
		{
			caption: "a symbol is both a non-terminal and a terminal",
			src: `%V <S> <A>
%T a <A>
<S>
 a
`,
			cause: semErrKindClash,
		},
		{
			caption: "a terminal uses the name of the end of input",
			src: `%V <S>
%T <eof>
<S>
 <eof>
`,
			cause: semErrReservedName,
		},
		{
			caption: "a non-terminal uses the name of the augmented start symbol",
			src: `%V <S> <<q0>>
%T a
<S>
 a
`,
			cause: semErrReservedName,
		},
		{
			caption: "a production contains an undeclared symbol",
			src: `%V <S>
%T a
<S>
 a b
`,
			cause: semErrUndefinedSym,
		},
		{
			caption: "a left-hand side is not declared",
			src: `%V <S>
%T a
<S>
 a
<B>
 a
`,
			cause: semErrLHSNotNonTerminal,
		},
		{
			caption: "the start symbol has no production",
			src: `%V <S> <A>
%T a
<A>
 a
`,
			cause: semErrStartNoProduction,
		},
		{
			caption: "a synchronizing symbol is a non-terminal",
			src: `%V <S>
%T a
%Syn <S>
<S>
 a
`,
			cause: semErrSyncNotTerminal,
		},
		{
			caption: "a synchronizing symbol is not declared",
			src: `%V <S>
%T a
%Syn b
<S>
 a
`,
			cause: semErrSyncNotTerminal,
		},
		{
			caption: "a production appears twice",
			src: `%V <S>
%T a
<S>
 a
 a
`,
			cause: semErrDuplicateProduction,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			ast, err := spec.Parse(strings.NewReader(tt.src))
			require.NoError(t, err)
			b := GrammarBuilder{
				AST: ast,
			}
			g, err := b.Build()
			if err == nil {
				t.Fatal("an expected error didn't occur")
			}
			assert.Nil(t, g)
			assert.True(t, errors.Is(err, tt.cause), "unexpected error: %v", err)
			assert.True(t, errors.Is(err, spec.ErrMalformedGrammar), "unexpected error: %v", err)
		})
	}
}
