package symbol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable(t *testing.T) {
	tab := NewTable()
	for _, name := range []string{"<E>", "<T>", "<F>"} {
		_, err := tab.RegisterNonTerminal(name)
		require.NoError(t, err)
	}
	for _, name := range []string{"ID", "PLUS", "STAR"} {
		_, err := tab.RegisterTerminal(name)
		require.NoError(t, err)
	}

	tests := []struct {
		name          string
		num           Num
		isStart       bool
		isEOF         bool
		isNonTerminal bool
		isTerminal    bool
	}{
		{name: NameStart, num: 1, isStart: true, isNonTerminal: true},
		{name: NameEOF, num: 1, isEOF: true, isTerminal: true},
		{name: "<E>", num: 2, isNonTerminal: true},
		{name: "<F>", num: 4, isNonTerminal: true},
		{name: "ID", num: 2, isTerminal: true},
		{name: "STAR", num: 4, isTerminal: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sym, ok := tab.ToSymbol(tt.name)
			require.True(t, ok)
			assert.False(t, sym.IsNil())
			assert.Equal(t, tt.num, sym.Num())
			assert.Equal(t, tt.isStart, sym.IsStart())
			assert.Equal(t, tt.isEOF, sym.IsEOF())
			assert.Equal(t, tt.isNonTerminal, sym.IsNonTerminal())
			assert.Equal(t, tt.isTerminal, sym.IsTerminal())

			name, ok := tab.ToText(sym)
			require.True(t, ok)
			assert.Equal(t, tt.name, name)
		})
	}

	assert.Equal(t, []string{"", NameStart, "<E>", "<T>", "<F>"}, tab.NonTerminalTexts())
	assert.Equal(t, []string{"", NameEOF, "ID", "PLUS", "STAR"}, tab.TerminalTexts())
	assert.Equal(t, 5, tab.TerminalCount())
	assert.Equal(t, 5, tab.NonTerminalCount())

	terms := tab.Terminals()
	require.Len(t, terms, 4)
	assert.Equal(t, SymbolEOF, terms[0])
	nonTerms := tab.NonTerminals()
	require.Len(t, nonTerms, 4)
	assert.Equal(t, SymbolStart, nonTerms[0])
}

func TestTable_Register(t *testing.T) {
	tab := NewTable()
	e1, err := tab.RegisterNonTerminal("<E>")
	require.NoError(t, err)
	e2, err := tab.RegisterNonTerminal("<E>")
	require.NoError(t, err)
	assert.Equal(t, e1, e2)

	_, err = tab.RegisterTerminal("<E>")
	assert.Error(t, err)
	_, err = tab.RegisterTerminal(NameEOF)
	assert.Error(t, err)
	_, err = tab.RegisterNonTerminal(NameStart)
	assert.Error(t, err)

	assert.Equal(t, "t9", Symbol(bitTerminal|9).String())
	assert.Equal(t, "nil", tab.Name(SymbolNil))
	assert.Equal(t, "<E>", tab.Name(e1))
}

func TestSymbol_Nil(t *testing.T) {
	assert.True(t, SymbolNil.IsNil())
	assert.Equal(t, KindNil, SymbolNil.Kind())
	assert.False(t, SymbolNil.IsTerminal())
	assert.False(t, SymbolNil.IsNonTerminal())

	_, err := newSymbol(KindTerminal, NumMax+1)
	assert.Error(t, err)
	_, err = newSymbol(KindTerminal, 1)
	assert.Error(t, err)
}
