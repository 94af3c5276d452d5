package lexical

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	verr "github.com/nihei9/ppjgen/error"
)

func TestParse(t *testing.T) {
	tests := []struct {
		caption string
		src     string
		spec    *LexSpec
		synErrs []*SyntaxError
	}{
		{
			caption: "a complete definition",
			src: `{digit} 0|1|2
{number} {digit}{digit}*
%X S_initial S_comment
%L NUMBER PLUS
<S_initial>{number}
{
NUMBER
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
`,
			spec: &LexSpec{
				Definitions: []*Definition{
					{Name: "digit", Pattern: "0|1|2", Row: 1},
					{Name: "number", Pattern: "{digit}{digit}*", Row: 2},
				},
				States:    []string{"S_initial", "S_comment"},
				Tokens:    []string{"NUMBER", "PLUS"},
				StatesRow: 3,
				TokensRow: 4,
				Rules: []*Rule{
					{State: "S_initial", Pattern: "{number}", Token: "NUMBER", Row: 5},
					{
						State:   "S_initial",
						Pattern: `\n`,
						Token:   "-",
						Commands: []*Command{
							{Text: "NOVI_REDAK", Row: 12},
						},
						Row: 9,
					},
					{
						State:   "S_initial",
						Pattern: `#\|`,
						Token:   "-",
						Commands: []*Command{
							{Text: "UDJI_U_STANJE S_comment", Row: 17},
						},
						Row: 14,
					},
					{
						State:   "S_comment",
						Pattern: `\|#`,
						Token:   "-",
						Commands: []*Command{
							{Text: "UDJI_U_STANJE S_initial", Row: 22},
						},
						Row: 19,
					},
				},
			},
		},
		{
			caption: "blank lines and carriage returns are ignored",
			src:     "%X S\r\n\r\n%L A\r\n\r\n<S>a\r\n{\r\n\r\nA\r\n}\r\n",
			spec: &LexSpec{
				States:    []string{"S"},
				Tokens:    []string{"A"},
				StatesRow: 1,
				TokensRow: 3,
				Rules: []*Rule{
					{State: "S", Pattern: "a", Token: "A", Row: 5},
				},
			},
		},
		{
			caption: "a state name may be followed by a pattern starting with >",
			src: `%X S
%L GT
<S>>
{
GT
}
`,
			spec: &LexSpec{
				States:    []string{"S"},
				Tokens:    []string{"GT"},
				StatesRow: 1,
				TokensRow: 2,
				Rules: []*Rule{
					{State: "S", Pattern: ">", Token: "GT", Row: 3},
				},
			},
		},
		{
			caption: "an escaped trailing blank belongs to the pattern",
			src:     "%X S\n%L\n<S>a\\ \n{\n-\n}\n",
			spec: &LexSpec{
				States:    []string{"S"},
				Tokens:    []string{},
				StatesRow: 1,
				TokensRow: 2,
				Rules: []*Rule{
					{State: "S", Pattern: `a\ `, Token: "-", Row: 3},
				},
			},
		},
		{
			caption: "a definition without a name",
			src:     "{} a\n%X S\n",
			synErrs: []*SyntaxError{synErrDefNoName},
		},
		{
			caption: "a definition without a pattern",
			src:     "{a}\n%X S\n",
			synErrs: []*SyntaxError{synErrDefNoPattern},
		},
		{
			caption: "an unknown directive",
			src:     "%X S\n%Y a\n",
			synErrs: []*SyntaxError{synErrUnknownDirective},
		},
		{
			caption: "no lexer states",
			src:     "%L A\n",
			synErrs: []*SyntaxError{synErrNoStates},
		},
		{
			caption: "a rule without a block",
			src:     "%X S\n<S>a\nA\n}\n<S>b\n{\n-\n}\n",
			synErrs: []*SyntaxError{synErrRuleNoBlock},
		},
		{
			caption: "a rule without a pattern",
			src:     "%X S\n<S>\n{\n-\n}\n",
			synErrs: []*SyntaxError{synErrRuleNoPattern},
		},
		{
			caption: "a rule block without a token",
			src:     "%X S\n<S>a\n{\n}\n",
			synErrs: []*SyntaxError{synErrRuleNoToken},
		},
		{
			caption: "an unclosed rule block at the end of input",
			src:     "%X S\n<S>a\n{\n-\n",
			synErrs: []*SyntaxError{synErrRuleUnclosed},
		},
		{
			caption: "an unclosed rule block followed by another rule",
			src:     "%X S\n<S>a\n{\n-\n<S>b\n{\n-\n}\n",
			synErrs: []*SyntaxError{synErrRuleUnclosed},
		},
		{
			caption: "several errors are reported together",
			src:     "{} a\n%X S\n%Q\n<S>a\n{\nA B\n}\n",
			synErrs: []*SyntaxError{synErrDefNoName, synErrUnknownDirective, synErrRuleInvalidToken},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			spec, err := Parse(strings.NewReader(tt.src))
			if len(tt.synErrs) > 0 {
				if err == nil {
					t.Fatalf("expected syntax errors; got a definition: %+v", spec)
				}
				if !errors.Is(err, ErrMalformedLexSpec) {
					t.Fatalf("the error must be classified as %v; got: %v", ErrMalformedLexSpec, err)
				}
				var specErrs verr.SpecErrors
				if !errors.As(err, &specErrs) {
					t.Fatalf("unexpected error type: %T", err)
				}
				if len(specErrs) != len(tt.synErrs) {
					t.Fatalf("unexpected error count; want: %v, got: %v\n%v", len(tt.synErrs), len(specErrs), err)
				}
				for i, synErr := range tt.synErrs {
					if specErrs[i].Cause != synErr {
						t.Fatalf("unexpected error #%v; want: %v, got: %v", i, synErr, specErrs[i].Cause)
					}
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.spec, spec); diff != "" {
				t.Fatalf("unexpected definition (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_ErrorRows(t *testing.T) {
	src := `%X S
%L A
<S>a
{
A
}
<S>b
{
`
	_, err := Parse(strings.NewReader(src))
	var specErrs verr.SpecErrors
	if !errors.As(err, &specErrs) {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(specErrs) != 1 || specErrs[0].Row != 7 {
		t.Fatalf("the error must point at the rule on row 7; got: %v", err)
	}
}

func TestTrimPattern(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{src: "  a|b  ", want: "a|b"},
		{src: `a\ `, want: `a\ `},
		{src: `a\\ `, want: `a\\`},
		{src: "\ta\t", want: "a"},
		{src: "   ", want: ""},
	}
	for _, tt := range tests {
		if got := trimPattern(tt.src); got != tt.want {
			t.Errorf("unexpected pattern; want: %q, got: %q", tt.want, got)
		}
	}
}
