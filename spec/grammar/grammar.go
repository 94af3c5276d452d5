package grammar

import "github.com/nihei9/ppjgen/compressor"

// CompiledGrammar is what a shift-reduce parser driver needs to parse with a grammar.
type CompiledGrammar struct {
	Name         string        `json:"name"`
	ParsingTable *ParsingTable `json:"parsing_table"`
}

// ParsingTable holds the action and goto tables. Rows are states, and columns are
// terminal and non-terminal numbers respectively.
//
// An action entry is 0 for an error, -n for a shift to state n, and n for a reduction
// by production n. A reduction by StartProduction is the accept action. A goto entry
// is the next state, or 0 when there is none.
type ParsingTable struct {
	Action                  *compressor.UniqueEntriesTable `json:"action"`
	GoTo                    *compressor.UniqueEntriesTable `json:"goto"`
	StateCount              int                            `json:"state_count"`
	InitialState            int                            `json:"initial_state"`
	StartProduction         int                            `json:"start_production"`
	LHSSymbols              []int                          `json:"lhs_symbols"`
	AlternativeSymbolCounts []int                          `json:"alternative_symbol_counts"`
	Terminals               []string                       `json:"terminals"`
	TerminalCount           int                            `json:"terminal_count"`
	NonTerminals            []string                       `json:"non_terminals"`
	NonTerminalCount        int                            `json:"non_terminal_count"`
	EOFSymbol               int                            `json:"eof_symbol"`

	// SyncTerminals has 1 at the numbers of the synchronizing terminals.
	SyncTerminals []int `json:"sync_terminals"`
}
