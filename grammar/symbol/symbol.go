// Package symbol numbers the symbols of a grammar.
//
// A Symbol packs its kind and its number into 16 bits:
//
//	bit 15     0: non-terminal, 1: terminal
//	bit 14     1: the augmented start symbol (non-terminal) or the end of input (terminal)
//	bit 13-0   number
//
// Numbers are dense per kind. Number 0 is the nil symbol and number 1 is reserved for
// the augmented start symbol and the end of input, so user symbols start at 2. The
// number doubles as the column of the symbol in the action and goto tables.
package symbol

import (
	"fmt"
	"sort"
)

type Kind uint8

const (
	KindNil Kind = iota
	KindNonTerminal
	KindTerminal
)

func (k Kind) String() string {
	switch k {
	case KindNonTerminal:
		return "non-terminal"
	case KindTerminal:
		return "terminal"
	}
	return "nil"
}

type Num uint16

func (n Num) Int() int {
	return int(n)
}

type Symbol uint16

const (
	bitTerminal = uint16(0x8000) // 1000 0000 0000 0000
	bitReserved = uint16(0x4000) // 0100 0000 0000 0000
	maskNum     = uint16(0x3fff) // 0011 1111 1111 1111

	numReserved = Num(1)
	NumMin      = Num(2)
	NumMax      = Num(maskNum)

	SymbolNil   = Symbol(0)
	SymbolStart = Symbol(bitReserved | uint16(numReserved))               // 0100 0000 0000 0001
	SymbolEOF   = Symbol(bitTerminal | bitReserved | uint16(numReserved)) // 1100 0000 0000 0001

	// The reserved names contain `<` and `>` so that they never collide with user symbols.
	NameStart = "<<q0>>"
	NameEOF   = "<eof>"
)

func newSymbol(kind Kind, num Num) (Symbol, error) {
	if num < NumMin || num > NumMax {
		return SymbolNil, fmt.Errorf("a symbol number must be between %v and %v: %v", NumMin, NumMax, num)
	}
	switch kind {
	case KindNonTerminal:
		return Symbol(num), nil
	case KindTerminal:
		return Symbol(bitTerminal | uint16(num)), nil
	}
	return SymbolNil, fmt.Errorf("invalid symbol kind: %v", kind)
}

func (s Symbol) Kind() Kind {
	switch {
	case s.IsNil():
		return KindNil
	case uint16(s)&bitTerminal != 0:
		return KindTerminal
	}
	return KindNonTerminal
}

func (s Symbol) Num() Num {
	return Num(uint16(s) & maskNum)
}

func (s Symbol) IsNil() bool {
	return s.Num() == 0
}

func (s Symbol) IsTerminal() bool {
	return s.Kind() == KindTerminal
}

func (s Symbol) IsNonTerminal() bool {
	return s.Kind() == KindNonTerminal
}

// IsStart reports whether s is the augmented start symbol.
func (s Symbol) IsStart() bool {
	return s == SymbolStart
}

func (s Symbol) IsEOF() bool {
	return s == SymbolEOF
}

func (s Symbol) String() string {
	switch {
	case s.IsNil():
		return "nil"
	case s.IsStart():
		return "s1"
	case s.IsEOF():
		return "e1"
	case s.IsTerminal():
		return fmt.Sprintf("t%v", s.Num())
	}
	return fmt.Sprintf("n%v", s.Num())
}

// Table maps symbol names to symbols. The augmented start symbol and the end of input
// are registered from the beginning.
type Table struct {
	byName   map[string]Symbol
	names    map[Symbol]string
	nonTerms []string
	terms    []string
}

func NewTable() *Table {
	return &Table{
		byName: map[string]Symbol{
			NameStart: SymbolStart,
			NameEOF:   SymbolEOF,
		},
		names: map[Symbol]string{
			SymbolStart: NameStart,
			SymbolEOF:   NameEOF,
		},
		nonTerms: []string{"", NameStart},
		terms:    []string{"", NameEOF},
	}
}

// RegisterNonTerminal returns the symbol of a non-terminal, registering it on first use.
// A name already registered as a terminal is an error.
func (t *Table) RegisterNonTerminal(name string) (Symbol, error) {
	return t.register(name, KindNonTerminal)
}

// RegisterTerminal returns the symbol of a terminal, registering it on first use. A name
// already registered as a non-terminal is an error.
func (t *Table) RegisterTerminal(name string) (Symbol, error) {
	return t.register(name, KindTerminal)
}

func (t *Table) register(name string, kind Kind) (Symbol, error) {
	if sym, ok := t.byName[name]; ok {
		if sym.Kind() != kind || sym.IsStart() || sym.IsEOF() {
			return SymbolNil, fmt.Errorf("%v is already registered as a %v", name, sym.Kind())
		}
		return sym, nil
	}
	names := &t.nonTerms
	if kind == KindTerminal {
		names = &t.terms
	}
	sym, err := newSymbol(kind, Num(len(*names)))
	if err != nil {
		return SymbolNil, err
	}
	*names = append(*names, name)
	t.byName[name] = sym
	t.names[sym] = name
	return sym, nil
}

func (t *Table) ToSymbol(name string) (Symbol, bool) {
	sym, ok := t.byName[name]
	return sym, ok
}

func (t *Table) ToText(sym Symbol) (string, bool) {
	name, ok := t.names[sym]
	return name, ok
}

// Name returns the name of a symbol, or its numeric form when it is unknown.
func (t *Table) Name(sym Symbol) string {
	if name, ok := t.names[sym]; ok {
		return name
	}
	return sym.String()
}

// Terminals returns every terminal, the end of input included, in number order.
func (t *Table) Terminals() []Symbol {
	return t.symbols(KindTerminal)
}

// NonTerminals returns every non-terminal, the augmented start symbol included, in
// number order.
func (t *Table) NonTerminals() []Symbol {
	return t.symbols(KindNonTerminal)
}

func (t *Table) symbols(kind Kind) []Symbol {
	syms := make([]Symbol, 0, len(t.names))
	for sym := range t.names {
		if sym.Kind() == kind {
			syms = append(syms, sym)
		}
	}
	sort.Slice(syms, func(i, j int) bool {
		return syms[i].Num() < syms[j].Num()
	})
	return syms
}

// TerminalTexts returns the names of the terminals indexed by symbol number. Index 0
// is the empty name of the nil symbol.
func (t *Table) TerminalTexts() []string {
	return append([]string(nil), t.terms...)
}

// NonTerminalTexts returns the names of the non-terminals indexed by symbol number.
func (t *Table) NonTerminalTexts() []string {
	return append([]string(nil), t.nonTerms...)
}

// TerminalCount is the number of columns of the action table.
func (t *Table) TerminalCount() int {
	return len(t.terms)
}

// NonTerminalCount is the number of columns of the goto table.
func (t *Table) NonTerminalCount() int {
	return len(t.nonTerms)
}
