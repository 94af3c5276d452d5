package grammar

import (
	"fmt"

	"github.com/nihei9/ppjgen/compressor"
	verr "github.com/nihei9/ppjgen/error"
	"github.com/nihei9/ppjgen/grammar/symbol"
	spec "github.com/nihei9/ppjgen/spec/grammar"
	"github.com/npillmayer/schuko/tracing"
)

// Grammar is a validated grammar augmented with `<<q0>> → S`, the production numbered
// productionNumStart, where S is the declared start symbol.
type Grammar struct {
	name          string
	symbolTable   *symbol.Table
	productionSet *productionSet
	startSymbol   symbol.Symbol
	syncTerminals []symbol.Symbol
	firsts        *firstCache
}

// SymbolTable returns the symbols of the grammar, the reserved ones included.
func (g *Grammar) SymbolTable() *symbol.Table {
	return g.symbolTable
}

// StartSymbol returns the declared start symbol, not the augmented one.
func (g *Grammar) StartSymbol() symbol.Symbol {
	return g.startSymbol
}

func (g *Grammar) SyncTerminals() []symbol.Symbol {
	return g.syncTerminals
}

// StartsWith reports whether word derives a sentential form whose first symbol is x.
// x may be a terminal or a non-terminal. Every word that derives the empty word starts
// with symbol.SymbolEOF.
func (g *Grammar) StartsWith(word []symbol.Symbol, x symbol.Symbol) bool {
	return g.firsts.fst.startsWith(word, x)
}

// IsVanishing reports whether word derives the empty word.
func (g *Grammar) IsVanishing(word ...symbol.Symbol) bool {
	return g.firsts.find(word).empty
}

// First returns the terminals word can start with, in symbol order.
func (g *Grammar) First(word ...symbol.Symbol) []symbol.Symbol {
	return append([]symbol.Symbol(nil), g.firsts.find(word).terms...)
}

// ProductionText returns a production as `A -> x y`, or false when there is no
// production with the number.
func (g *Grammar) ProductionText(num int) (string, bool) {
	if num < 0 || num > int(^productionNum(0)) {
		return "", false
	}
	p, ok := g.productionSet.findByNum(productionNum(num))
	if !ok {
		return "", false
	}
	return p.text(g.symbolTable), true
}

// CanonicalCollection builds the canonical collection of LR(1) item sets.
func (g *Grammar) CanonicalCollection() (*CanonicalCollection, error) {
	return genCanonicalCollection(g)
}

type GrammarBuilder struct {
	AST *spec.RootNode

	// Name is the name of the compiled grammar, usually the file name.
	Name string

	errs verr.SpecErrors
}

func (b *GrammarBuilder) Build() (*Grammar, error) {
	symTab := b.genSymbolTable(b.AST)
	if len(b.errs) > 0 {
		return nil, b.errs
	}

	startSym, _ := symTab.ToSymbol(b.AST.StartSymbol())
	prods := b.genProductionSet(b.AST, symTab, startSym)
	if len(b.errs) > 0 {
		return nil, b.errs
	}

	var syncSyms []symbol.Symbol
	if dir := b.AST.SyncTerminals; dir != nil {
		for _, name := range dir.Symbols {
			sym, ok := symTab.ToSymbol(name)
			if !ok || !sym.IsTerminal() || sym.IsEOF() {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrSyncNotTerminal,
					Detail: name,
					Row:    dir.Row,
				})
				continue
			}
			syncSyms = append(syncSyms, sym)
		}
	}
	if len(b.errs) > 0 {
		return nil, b.errs
	}

	fst := genFirstSet(symTab.NonTerminals(), prods)

	tracer().Debugf("grammar %v: %v terminals, %v non-terminals, %v productions", b.Name, symTab.TerminalCount()-1, symTab.NonTerminalCount()-1, len(prods.getAllProductions()))

	return &Grammar{
		name:          b.Name,
		symbolTable:   symTab,
		productionSet: prods,
		startSymbol:   startSym,
		syncTerminals: syncSyms,
		firsts:        newFirstCache(fst),
	}, nil
}

func isReservedName(name string) bool {
	return name == symbol.NameStart || name == symbol.NameEOF || name == spec.EmptyMarker
}

// genSymbolTable registers the non-terminals first so that their numbers follow the
// order of %V, then the terminals in the order of %T.
func (b *GrammarBuilder) genSymbolTable(root *spec.RootNode) *symbol.Table {
	symTab := symbol.NewTable()
	declared := map[string]struct{}{}
	register := func(dir *spec.DirectiveNode, reg func(string) (symbol.Symbol, error)) {
		if dir == nil {
			return
		}
		for _, name := range dir.Symbols {
			if isReservedName(name) {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrReservedName,
					Detail: name,
					Row:    dir.Row,
				})
				continue
			}
			if _, ok := declared[name]; ok {
				cause := semErrDuplicateSymbol
				if sym, ok := symTab.ToSymbol(name); ok && sym.IsNonTerminal() && dir == root.Terminals {
					cause = semErrKindClash
				}
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  cause,
					Detail: name,
					Row:    dir.Row,
				})
				continue
			}
			declared[name] = struct{}{}
			if _, err := reg(name); err != nil {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrTooManySymbols,
					Detail: err.Error(),
					Row:    dir.Row,
				})
			}
		}
	}
	register(root.NonTerminals, symTab.RegisterNonTerminal)
	register(root.Terminals, symTab.RegisterTerminal)
	return symTab
}

// genProductionSet appends `<<q0>> → S` and then every production in file order.
// Productions of the same non-terminal may be split across several blocks.
func (b *GrammarBuilder) genProductionSet(root *spec.RootNode, symTab *symbol.Table, startSym symbol.Symbol) *productionSet {
	prods := newProductionSet()

	startProd, err := newProduction(symbol.SymbolStart, []symbol.Symbol{startSym})
	if err != nil {
		b.errs = append(b.errs, &verr.SpecError{
			Cause:  semErrUndefinedSym,
			Detail: err.Error(),
		})
		return nil
	}
	startProd.row = 0
	prods.append(startProd)

	for _, prodNode := range root.Productions {
		lhs, ok := symTab.ToSymbol(prodNode.LHS)
		if !ok || !lhs.IsNonTerminal() || lhs.IsStart() {
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrLHSNotNonTerminal,
				Detail: prodNode.LHS,
				Row:    prodNode.Row,
			})
			continue
		}

	ALTERNATIVES_LOOP:
		for _, alt := range prodNode.RHS {
			rhs := make([]symbol.Symbol, 0, len(alt.Elements))
			for _, elem := range alt.Elements {
				sym, ok := symTab.ToSymbol(elem)
				if !ok || sym.IsStart() || sym.IsEOF() {
					b.errs = append(b.errs, &verr.SpecError{
						Cause:  semErrUndefinedSym,
						Detail: elem,
						Row:    alt.Row,
					})
					continue ALTERNATIVES_LOOP
				}
				rhs = append(rhs, sym)
			}

			p, err := newProduction(lhs, rhs)
			if err != nil {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrUndefinedSym,
					Detail: err.Error(),
					Row:    alt.Row,
				})
				continue
			}
			p.row = alt.Row
			if !prods.append(p) {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrDuplicateProduction,
					Detail: p.text(symTab),
					Row:    alt.Row,
				})
			}
		}
	}

	if _, ok := prods.findByLHS(startSym); !ok {
		b.errs = append(b.errs, &verr.SpecError{
			Cause:  semErrStartNoProduction,
			Detail: root.StartSymbol(),
			Row:    root.NonTerminals.Row,
		})
	}

	return prods
}

type compileConfig struct {
	isReportingEnabled bool
	policy             ConflictPolicy
}

type CompileOption func(config *compileConfig)

func EnableReporting() CompileOption {
	return func(config *compileConfig) {
		config.isReportingEnabled = true
	}
}

// WithConflictPolicy sets how conflicts are handled. The default is
// PreferShiftAndEarliestProduction.
func WithConflictPolicy(policy ConflictPolicy) CompileOption {
	return func(config *compileConfig) {
		config.policy = policy
	}
}

// Compile builds the canonical LR(1) parsing table of a grammar. The report is nil
// unless EnableReporting is passed.
func Compile(gram *Grammar, opts ...CompileOption) (*spec.CompiledGrammar, *spec.Report, error) {
	config := &compileConfig{
		policy: PreferShiftAndEarliestProduction,
	}
	for _, opt := range opts {
		opt(config)
	}

	cc, err := genCanonicalCollection(gram)
	if err != nil {
		return nil, nil, err
	}

	tab, b, err := buildParsingTable(cc, config.policy)
	if err != nil {
		return nil, nil, err
	}

	var report *spec.Report
	if config.isReportingEnabled {
		report = b.genReport(tab, gram)
	}
	if conflicts := cc.Conflicts(); len(conflicts) > 0 {
		tracing.With(tracer()).Dump("conflicts", conflicts)
	}

	action := make([]int, len(tab.actionTable))
	for i, e := range tab.actionTable {
		action[i] = int(e)
	}
	goTo := make([]int, len(tab.goToTable))
	for i, e := range tab.goToTable {
		goTo[i] = int(e)
	}
	compAction, err := compressor.Compress(action, tab.terminalCount, int(actionEntryEmpty))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to compress the action table: %w", err)
	}
	compGoTo, err := compressor.Compress(goTo, tab.nonTerminalCount, int(goToEntryEmpty))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to compress the goto table: %w", err)
	}

	prodCount := gram.productionSet.count()
	lhsSyms := make([]int, prodCount)
	altSymCounts := make([]int, prodCount)
	for _, p := range gram.productionSet.getAllProductions() {
		lhsSyms[p.num] = p.lhs.Num().Int()
		altSymCounts[p.num] = len(p.rhs)
	}

	syncTerms := make([]int, tab.terminalCount)
	for _, sym := range gram.syncTerminals {
		syncTerms[sym.Num()] = 1
	}

	return &spec.CompiledGrammar{
		Name: gram.name,
		ParsingTable: &spec.ParsingTable{
			Action:                  compAction,
			GoTo:                    compGoTo,
			StateCount:              tab.stateCount,
			InitialState:            tab.InitialState.Int(),
			StartProduction:         productionNumStart.Int(),
			LHSSymbols:              lhsSyms,
			AlternativeSymbolCounts: altSymCounts,
			Terminals:               gram.symbolTable.TerminalTexts(),
			TerminalCount:           tab.terminalCount,
			NonTerminals:            gram.symbolTable.NonTerminalTexts(),
			NonTerminalCount:        tab.nonTerminalCount,
			EOFSymbol:               symbol.SymbolEOF.Num().Int(),
			SyncTerminals:           syncTerms,
		},
	}, report, nil
}
