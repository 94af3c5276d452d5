package grammar

import (
	"testing"

	"github.com/nihei9/ppjgen/grammar/symbol"
	"github.com/stretchr/testify/assert"
)

func TestGrammar_IsVanishing(t *testing.T) {
	g := buildGrammar(t, nullableGrammar)
	sym := genSym(t, g)

	tests := []struct {
		word      []string
		vanishing bool
	}{
		{word: nil, vanishing: true},
		{word: []string{"<A>"}, vanishing: true},
		{word: []string{"<A>", "<A>"}, vanishing: true},
		{word: []string{"<B>"}, vanishing: false},
		{word: []string{"<S>"}, vanishing: false},
		{word: []string{"<A>", "c"}, vanishing: false},
	}
	for _, tt := range tests {
		word := make([]symbol.Symbol, len(tt.word))
		for i, name := range tt.word {
			word[i] = sym(name)
		}
		// A second query is answered by the cache and must agree.
		for i := 0; i < 2; i++ {
			assert.Equal(t, tt.vanishing, g.IsVanishing(word...), "word: %v", tt.word)
		}
	}
}

func TestGrammar_First(t *testing.T) {
	tests := []struct {
		caption string
		src     string
		word    []string
		first   []string
	}{
		{
			caption: "a left-recursive non-terminal",
			src:     exprGrammar,
			word:    []string{"<E>"},
			first:   []string{"id"},
		},
		{
			caption: "a word starting with a terminal",
			src:     exprGrammar,
			word:    []string{"+", "<T>"},
			first:   []string{"+"},
		},
		{
			caption: "a vanishing prefix is skipped",
			src:     nullableGrammar,
			word:    []string{"<S>"},
			first:   []string{"c", "d"},
		},
		{
			caption: "a vanishing non-terminal has no terminal",
			src:     nullableGrammar,
			word:    []string{"<A>"},
			first:   []string{},
		},
		{
			caption: "the symbol following a vanishing word",
			src:     nullableGrammar,
			word:    []string{"<A>", "d"},
			first:   []string{"d"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			g := buildGrammar(t, tt.src)
			sym := genSym(t, g)
			word := make([]symbol.Symbol, len(tt.word))
			for i, name := range tt.word {
				word[i] = sym(name)
			}
			first := []string{}
			for _, s := range g.First(word...) {
				first = append(first, g.SymbolTable().Name(s))
			}
			assert.Equal(t, tt.first, first)
		})
	}
}

func TestGrammar_StartsWith(t *testing.T) {
	g := buildGrammar(t, nullableGrammar)
	sym := genSym(t, g)

	tests := []struct {
		word   []string
		x      string
		starts bool
	}{
		{word: []string{"<S>"}, x: "<A>", starts: true},
		{word: []string{"<S>"}, x: "<B>", starts: true},
		{word: []string{"<S>"}, x: "c", starts: true},
		{word: []string{"<S>"}, x: "<S>", starts: true},
		{word: []string{"<B>"}, x: "<A>", starts: true},
		{word: []string{"<B>"}, x: "<S>", starts: false},
		{word: []string{"<A>", "c"}, x: "c", starts: true},
		{word: []string{"<A>", "c"}, x: "d", starts: false},
		{word: []string{"<A>"}, x: "c", starts: false},
		{word: []string{"<A>"}, x: symbol.NameEOF, starts: true},
		{word: []string{"<A>", "<A>"}, x: symbol.NameEOF, starts: true},
		{word: []string{"<B>"}, x: symbol.NameEOF, starts: false},
		{word: []string{"d", "<A>"}, x: "<A>", starts: false},
	}
	for _, tt := range tests {
		word := make([]symbol.Symbol, len(tt.word))
		for i, name := range tt.word {
			word[i] = sym(name)
		}
		assert.Equal(t, tt.starts, g.StartsWith(word, sym(tt.x)), "word: %v, x: %v", tt.word, tt.x)
	}

	assert.True(t, g.StartsWith(nil, symbol.SymbolEOF))
}
