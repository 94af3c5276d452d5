package lexical

import (
	"errors"
	"strings"
	"testing"

	verr "github.com/nihei9/ppjgen/error"
	"github.com/nihei9/ppjgen/grammar/lexical/regex"
	lexspec "github.com/nihei9/ppjgen/spec/lexical"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseSpec(t *testing.T, src string) *lexspec.LexSpec {
	t.Helper()
	spec, err := lexspec.Parse(strings.NewReader(src))
	require.NoError(t, err)
	return spec
}

const minusLang = `{digit} 0|1|2|3|4|5|6|7|8|9
{hex} {digit}|a|b|c|d|e|f
%X S_initial S_comment S_unary
%L OPERAND OP_MINUS UMINUS LEFT_PAREN RIGHT_PAREN
<S_initial>\t|\_
{
-
}
<S_initial>\n
{
-
NOVI_REDAK
}
<S_initial>#\|
{
-
UDJI_U_STANJE S_comment
}
<S_comment>\|#
{
-
UDJI_U_STANJE S_initial
}
<S_comment>\n
{
-
NEWLINE
}
<S_comment>{hex}|\t|\_|#|\|
{
-
}
<S_initial>{digit}{digit}*
{
OPERAND
}
<S_initial>0x{hex}{hex}*
{
OPERAND
}
<S_initial>\(
{
LEFT_PAREN
}
<S_initial>\)
{
RIGHT_PAREN
}
<S_initial>-
{
OP_MINUS
}
<S_initial>-(\t|\n|\_)*-
{
OP_MINUS
UDJI_U_STANJE S_unary
VRATI_SE 1
}
<S_unary>\t|\_
{
-
}
<S_unary>\n
{
-
NOVI_REDAK
}
<S_unary>-
{
UMINUS
ENTER S_initial
}
<S_unary>-(\t|\n|\_)*-
{
UMINUS
REWIND 1
}
`

func TestCompile(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ppjgen.lexical")
	defer teardown()

	tab, err := Compile(parseSpec(t, minusLang))
	require.NoError(t, err)

	require.Len(t, tab.States, 3)
	assert.Equal(t, "S_initial", tab.InitialState().Name)
	assert.Equal(t, []string{"OPERAND", "OP_MINUS", "UMINUS", "LEFT_PAREN", "RIGHT_PAREN"}, tab.Tokens)
	require.Len(t, tab.Rules, 16)

	// Rules keep their declaration order both globally and per lexer state.
	for i, r := range tab.Rules {
		assert.Equal(t, i, r.ID)
		assert.NotNil(t, r.NFA, "rule #%v", i)
	}
	for _, s := range tab.States {
		for i := 1; i < len(s.Rules); i++ {
			assert.Less(t, s.Rules[i-1].ID, s.Rules[i].ID)
		}
		for _, r := range s.Rules {
			assert.Equal(t, s.ID, r.State)
		}
	}
	assert.Len(t, tab.States[0].Rules, 9)
	assert.Len(t, tab.States[1].Rules, 3)
	assert.Len(t, tab.States[2].Rules, 4)

	r := tab.Rules[11]
	assert.Equal(t, "OP_MINUS", r.Token)
	assert.Equal(t, []Command{
		EnterState{State: 2, Name: "S_unary"},
		Rewind{N: 1},
	}, r.Commands)
	assert.True(t, r.NFA.Eval("--"))
	assert.True(t, r.NFA.Eval("-\t\n -"))
	assert.False(t, r.NFA.Eval("-"))

	assert.False(t, tab.Rules[0].Emits())
	assert.Equal(t, []Command{NewLine{}}, tab.Rules[1].Commands)
	assert.Equal(t, []Command{NewLine{}}, tab.Rules[4].Commands)
	assert.Equal(t, []Command{EnterState{State: 0, Name: "S_initial"}}, tab.Rules[14].Commands)

	assert.True(t, tab.Rules[7].NFA.Eval("0x1f"))
	assert.False(t, tab.Rules[7].NFA.Eval("0x"))

	_, ok := tab.Definitions.Lookup("hex")
	assert.True(t, ok)
	s, ok := tab.StateByName("S_comment")
	require.True(t, ok)
	assert.Equal(t, StateID(1), s.ID)
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		caption string
		src     string
		causes  []error
		rows    []int
	}{
		{
			caption: "an unknown command keyword",
			src:     "%X S\n%L A\n<S>a\n{\nA\nSKOCI S\n}\n",
			causes:  []error{ErrUnknownLexerCommand},
			rows:    []int{6},
		},
		{
			caption: "a command entering an undefined state",
			src:     "%X S\n%L A\n<S>a\n{\nA\nUDJI_U_STANJE T\n}\n",
			causes:  []error{ErrUnknownLexerCommand},
			rows:    []int{6},
		},
		{
			caption: "a rewind without a count",
			src:     "%X S\n%L A\n<S>a\n{\nA\nVRATI_SE\n}\n",
			causes:  []error{ErrUnknownLexerCommand},
			rows:    []int{6},
		},
		{
			caption: "a negative rewind",
			src:     "%X S\n%L A\n<S>a\n{\nA\nVRATI_SE -1\n}\n",
			causes:  []error{ErrUnknownLexerCommand},
			rows:    []int{6},
		},
		{
			caption: "a new line with an argument",
			src:     "%X S\n%L A\n<S>a\n{\nA\nNOVI_REDAK 2\n}\n",
			causes:  []error{ErrUnknownLexerCommand},
			rows:    []int{6},
		},
		{
			caption: "a malformed rule pattern",
			src:     "%X S\n%L A\n<S>(a\n{\nA\n}\n",
			causes:  []error{regex.ErrMalformedRegex},
			rows:    []int{3},
		},
		{
			caption: "a malformed regular definition",
			src:     "{d} a|\n%X S\n%L A\n<S>a\n{\nA\n}\n",
			causes:  []error{regex.ErrMalformedRegex},
			rows:    []int{1},
		},
		{
			caption: "a reference to an undefined definition",
			src:     "%X S\n%L A\n<S>{d}\n{\nA\n}\n",
			causes:  []error{regex.ErrMalformedRegex},
			rows:    []int{3},
		},
		{
			caption: "a rule in an undefined lexer state",
			src:     "%X S\n%L A\n<T>a\n{\nA\n}\n",
			causes:  []error{semErrUndefinedState},
			rows:    []int{3},
		},
		{
			caption: "an undeclared token",
			src:     "%X S\n%L A\n<S>a\n{\nB\n}\n",
			causes:  []error{semErrUndefinedToken},
			rows:    []int{3},
		},
		{
			caption: "duplicate lexer states",
			src:     "%X S S\n%L A\n<S>a\n{\nA\n}\n",
			causes:  []error{semErrDuplicateState},
			rows:    []int{1},
		},
		{
			caption: "duplicate tokens",
			src:     "%X S\n%L A A\n<S>a\n{\nA\n}\n",
			causes:  []error{semErrDuplicateToken},
			rows:    []int{2},
		},
		{
			caption: "no rules",
			src:     "%X S\n%L A\n",
			causes:  []error{semErrNoRule},
			rows:    []int{0},
		},
		{
			caption: "errors of several rules are reported together",
			src:     "%X S\n%L A\n<S>(\n{\nA\n}\n<S>a\n{\nA\nFOO\n}\n<S>b|\n{\nA\n}\n",
			causes:  []error{ErrUnknownLexerCommand, regex.ErrMalformedRegex, regex.ErrMalformedRegex},
			rows:    []int{10, 3, 12},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			tab, err := Compile(parseSpec(t, tt.src))
			require.Error(t, err)
			assert.Nil(t, tab)

			var specErrs verr.SpecErrors
			require.True(t, errors.As(err, &specErrs), "unexpected error type: %T", err)
			require.Len(t, specErrs, len(tt.causes), "%v", err)
			for i, cause := range tt.causes {
				assert.ErrorIs(t, specErrs[i], cause)
				assert.Equal(t, tt.rows[i], specErrs[i].Row)
			}
			for _, cause := range tt.causes {
				assert.ErrorIs(t, err, cause)
			}
		})
	}
}

func TestLexerTable_Dot(t *testing.T) {
	tab, err := Compile(parseSpec(t, "%X S\n%L A\n<S>ab*\n{\nA\n}\n"))
	require.NoError(t, err)

	var b strings.Builder
	require.NoError(t, tab.Dot(&b, 0))
	assert.Contains(t, b.String(), `digraph "<S>ab*"`)
	assert.Error(t, tab.Dot(&b, 1))

	stats := tab.Stats()
	require.Len(t, stats, 1)
	assert.Greater(t, stats[0].Stats.States, 0)
}
