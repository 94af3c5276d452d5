package grammar

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/nihei9/ppjgen/grammar/symbol"
	spec "github.com/nihei9/ppjgen/spec/grammar"
)

type ActionType string

const (
	ActionTypeShift  = ActionType("shift")
	ActionTypeReduce = ActionType("reduce")
	ActionTypeAccept = ActionType("accept")
	ActionTypeError  = ActionType("error")
)

type actionEntry int

const actionEntryEmpty = actionEntry(0)

func newShiftActionEntry(state stateNum) actionEntry {
	return actionEntry(state * -1)
}

func newReduceActionEntry(prod productionNum) actionEntry {
	return actionEntry(prod)
}

func (e actionEntry) isEmpty() bool {
	return e == actionEntryEmpty
}

func (e actionEntry) describe() (ActionType, stateNum, productionNum) {
	switch {
	case e == actionEntryEmpty:
		return ActionTypeError, stateNumInitial, productionNumNil
	case e < 0:
		return ActionTypeShift, stateNum(e * -1), productionNumNil
	case productionNum(e) == productionNumStart:
		return ActionTypeAccept, stateNumInitial, productionNumStart
	}
	return ActionTypeReduce, stateNumInitial, productionNum(e)
}

type GoToType string

const (
	GoToTypeRegistered = GoToType("registered")
	GoToTypeError      = GoToType("error")
)

type goToEntry uint

const goToEntryEmpty = goToEntry(0)

func newGoToEntry(state stateNum) goToEntry {
	return goToEntry(state)
}

func (e goToEntry) describe() (GoToType, stateNum) {
	if e == goToEntryEmpty {
		return GoToTypeError, stateNumInitial
	}
	return GoToTypeRegistered, stateNum(e)
}

// ConflictPolicy decides what the table builder does with conflicts.
type ConflictPolicy int

const (
	// PreferShiftAndEarliestProduction resolves a shift/reduce conflict by shifting and
	// a reduce/reduce conflict by reducing the production declared first.
	PreferShiftAndEarliestProduction ConflictPolicy = iota

	// RejectConflicts fails with a ConflictError when there is any conflict.
	RejectConflicts
)

func (p ConflictPolicy) String() string {
	switch p {
	case PreferShiftAndEarliestProduction:
		return "shift"
	case RejectConflicts:
		return "reject"
	}
	return fmt.Sprintf("ConflictPolicy(%d)", int(p))
}

// ParseConflictPolicy accepts the names String returns.
func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	switch s {
	case "shift", "":
		return PreferShiftAndEarliestProduction, nil
	case "reject":
		return RejectConflicts, nil
	}
	return 0, fmt.Errorf("unknown conflict policy: %v; shift or reject is allowed", s)
}

var ErrGrammarConflict = errors.New("the grammar has LR(1) conflicts")

// ConflictError carries every conflict of the canonical collection.
type ConflictError struct {
	Conflicts []*Conflict
	cc        *CanonicalCollection
}

func (e *ConflictError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v: %v conflicts", ErrGrammarConflict, len(e.Conflicts))
	for _, c := range e.Conflicts {
		fmt.Fprintf(&b, "\n%v", e.cc.ConflictText(c))
	}
	return b.String()
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrGrammarConflict
}

type shiftReduceConflict struct {
	state      stateNum
	sym        symbol.Symbol
	nextState  stateNum
	prodNum    productionNum
	resolvedBy int
}

type reduceReduceConflict struct {
	state      stateNum
	sym        symbol.Symbol
	prodNum1   productionNum
	prodNum2   productionNum
	resolvedBy int
}

type ParsingTable struct {
	actionTable      []actionEntry
	goToTable        []goToEntry
	stateCount       int
	terminalCount    int
	nonTerminalCount int

	InitialState stateNum
}

func (t *ParsingTable) getAction(state stateNum, sym symbol.Num) (ActionType, stateNum, productionNum) {
	pos := state.Int()*t.terminalCount + sym.Int()
	return t.actionTable[pos].describe()
}

func (t *ParsingTable) getGoTo(state stateNum, sym symbol.Num) (GoToType, stateNum) {
	pos := state.Int()*t.nonTerminalCount + sym.Int()
	return t.goToTable[pos].describe()
}

func (t *ParsingTable) readAction(row int, col int) actionEntry {
	return t.actionTable[row*t.terminalCount+col]
}

func (t *ParsingTable) writeAction(row int, col int, act actionEntry) {
	t.actionTable[row*t.terminalCount+col] = act
}

func (t *ParsingTable) writeGoTo(state stateNum, sym symbol.Symbol, nextState stateNum) {
	pos := state.Int()*t.nonTerminalCount + sym.Num().Int()
	t.goToTable[pos] = newGoToEntry(nextState)
}

type lrTableBuilder struct {
	cc           *CanonicalCollection
	prods        *productionSet
	termCount    int
	nonTermCount int
	symTab       *symbol.Table

	srConflicts []*shiftReduceConflict
	rrConflicts []*reduceReduceConflict
}

// BuildParsingTable derives the action and goto tables from a canonical collection.
// Conflicts are resolved or rejected according to policy.
func BuildParsingTable(cc *CanonicalCollection, policy ConflictPolicy) (*ParsingTable, error) {
	tab, _, err := buildParsingTable(cc, policy)
	return tab, err
}

// buildParsingTable also returns the builder, which holds the resolved conflicts the
// report lists.
func buildParsingTable(cc *CanonicalCollection, policy ConflictPolicy) (*ParsingTable, *lrTableBuilder, error) {
	b := newLRTableBuilder(cc)
	tab := b.build()
	if policy == RejectConflicts && (len(b.srConflicts) > 0 || len(b.rrConflicts) > 0) {
		return nil, nil, &ConflictError{
			Conflicts: cc.Conflicts(),
			cc:        cc,
		}
	}
	return tab, b, nil
}

func newLRTableBuilder(cc *CanonicalCollection) *lrTableBuilder {
	return &lrTableBuilder{
		cc:           cc,
		prods:        cc.g.productionSet,
		termCount:    cc.g.symbolTable.TerminalCount(),
		nonTermCount: cc.g.symbolTable.NonTerminalCount(),
		symTab:       cc.g.symbolTable,
	}
}

func (b *lrTableBuilder) build() *ParsingTable {
	stateCount := len(b.cc.States)
	ptab := &ParsingTable{
		actionTable:      make([]actionEntry, stateCount*b.termCount),
		goToTable:        make([]goToEntry, stateCount*b.nonTermCount),
		stateCount:       stateCount,
		terminalCount:    b.termCount,
		nonTerminalCount: b.nonTermCount,
		InitialState:     b.cc.Initial,
	}

	for _, state := range b.cc.States {
		syms := make([]symbol.Symbol, 0, len(state.Next))
		for sym := range state.Next {
			syms = append(syms, sym)
		}
		sort.Slice(syms, func(i, j int) bool {
			return syms[i] < syms[j]
		})
		for _, sym := range syms {
			next := state.Next[sym]
			if sym.IsTerminal() {
				b.writeShiftAction(ptab, state.Num, sym, next)
			} else {
				ptab.writeGoTo(state.Num, sym, next)
			}
		}

		for _, item := range state.Items {
			if !item.isComplete() {
				continue
			}
			for _, a := range item.lookAhead {
				b.writeReduceAction(ptab, state.Num, a, item.prod.num)
			}
		}
	}

	tracer().Debugf("parsing table: %v states, %v shift/reduce and %v reduce/reduce conflicts", stateCount, len(b.srConflicts), len(b.rrConflicts))

	return ptab
}

// writeShiftAction writes a shift action to the parsing table. When a shift/reduce conflict occurred,
// we prioritize the shift action.
func (b *lrTableBuilder) writeShiftAction(tab *ParsingTable, state stateNum, sym symbol.Symbol, nextState stateNum) {
	act := tab.readAction(state.Int(), sym.Num().Int())
	if !act.isEmpty() {
		ty, _, p := act.describe()
		if ty == ActionTypeReduce || ty == ActionTypeAccept {
			b.srConflicts = append(b.srConflicts, &shiftReduceConflict{
				state:      state,
				sym:        sym,
				nextState:  nextState,
				prodNum:    p,
				resolvedBy: spec.ResolvedByShift,
			})
		}
	}
	tab.writeAction(state.Int(), sym.Num().Int(), newShiftActionEntry(nextState))
}

// writeReduceAction writes a reduce action to the parsing table. When a shift/reduce conflict occurred,
// we prioritize the shift action, and when a reduce/reduce conflict we prioritize the action that reduces
// the production with higher priority. Productions defined earlier in the grammar file have a higher priority.
func (b *lrTableBuilder) writeReduceAction(tab *ParsingTable, state stateNum, sym symbol.Symbol, prod productionNum) {
	act := tab.readAction(state.Int(), sym.Num().Int())
	if !act.isEmpty() {
		ty, s, p := act.describe()
		switch ty {
		case ActionTypeReduce, ActionTypeAccept:
			if p == prod {
				return
			}

			b.rrConflicts = append(b.rrConflicts, &reduceReduceConflict{
				state:      state,
				sym:        sym,
				prodNum1:   p,
				prodNum2:   prod,
				resolvedBy: spec.ResolvedByProdOrder,
			})
			if p < prod {
				tab.writeAction(state.Int(), sym.Num().Int(), newReduceActionEntry(p))
			} else {
				tab.writeAction(state.Int(), sym.Num().Int(), newReduceActionEntry(prod))
			}
		case ActionTypeShift:
			b.srConflicts = append(b.srConflicts, &shiftReduceConflict{
				state:      state,
				sym:        sym,
				nextState:  s,
				prodNum:    prod,
				resolvedBy: spec.ResolvedByShift,
			})
		}
		return
	}
	tab.writeAction(state.Int(), sym.Num().Int(), newReduceActionEntry(prod))
}

func (b *lrTableBuilder) genReport(tab *ParsingTable, gram *Grammar) *spec.Report {
	sync := map[symbol.Symbol]struct{}{}
	for _, sym := range gram.syncTerminals {
		sync[sym] = struct{}{}
	}

	termSyms := b.symTab.Terminals()
	terms := make([]*spec.Terminal, b.termCount)
	for _, sym := range termSyms {
		_, isSync := sync[sym]
		terms[sym.Num()] = &spec.Terminal{
			Number: sym.Num().Int(),
			Name:   b.symTab.Name(sym),
			Sync:   isSync,
		}
	}

	nonTermSyms := b.symTab.NonTerminals()
	nonTerms := make([]*spec.NonTerminal, b.nonTermCount)
	for _, sym := range nonTermSyms {
		first, vanishing := gram.firsts.fst.first([]symbol.Symbol{sym})
		nonTerm := &spec.NonTerminal{
			Number:    sym.Num().Int(),
			Name:      b.symTab.Name(sym),
			First:     make([]int, len(first)),
			Vanishing: vanishing,
		}
		for i, t := range first {
			nonTerm.First[i] = t.Num().Int()
		}
		nonTerms[sym.Num()] = nonTerm
	}

	prods := make([]*spec.Production, b.prods.count())
	for _, p := range b.prods.getAllProductions() {
		rhs := make([]int, len(p.rhs))
		for i, e := range p.rhs {
			if e.IsTerminal() {
				rhs[i] = e.Num().Int()
			} else {
				rhs[i] = e.Num().Int() * -1
			}
		}
		prods[p.num.Int()] = &spec.Production{
			Number: p.num.Int(),
			LHS:    p.lhs.Num().Int(),
			RHS:    rhs,
			Row:    p.row,
		}
	}

	srConflicts := map[stateNum][]*shiftReduceConflict{}
	for _, c := range b.srConflicts {
		srConflicts[c.state] = append(srConflicts[c.state], c)
	}
	rrConflicts := map[stateNum][]*reduceReduceConflict{}
	for _, c := range b.rrConflicts {
		rrConflicts[c.state] = append(rrConflicts[c.state], c)
	}

	states := make([]*spec.State, len(b.cc.States))
	for _, s := range b.cc.States {
		var kernel []*spec.Item
		for _, item := range s.kernel() {
			la := make([]int, len(item.lookAhead))
			for i, sym := range item.lookAhead {
				la[i] = sym.Num().Int()
			}
			kernel = append(kernel, &spec.Item{
				Production: item.prod.num.Int(),
				Dot:        item.dot,
				LookAhead:  la,
			})
		}

		var shift []*spec.Transition
		var reduce []*spec.Reduce
		var goTo []*spec.Transition
		accept := false
	TERMINALS_LOOP:
		for _, t := range termSyms {
			act, next, prod := tab.getAction(s.Num, t.Num())
			switch act {
			case ActionTypeShift:
				shift = append(shift, &spec.Transition{
					Symbol: t.Num().Int(),
					State:  next.Int(),
				})
			case ActionTypeAccept:
				accept = true
			case ActionTypeReduce:
				for _, r := range reduce {
					if r.Production == prod.Int() {
						r.LookAhead = append(r.LookAhead, t.Num().Int())
						continue TERMINALS_LOOP
					}
				}
				reduce = append(reduce, &spec.Reduce{
					LookAhead:  []int{t.Num().Int()},
					Production: prod.Int(),
				})
			}
		}
		for _, n := range nonTermSyms {
			ty, next := tab.getGoTo(s.Num, n.Num())
			if ty == GoToTypeRegistered {
				goTo = append(goTo, &spec.Transition{
					Symbol: n.Num().Int(),
					State:  next.Int(),
				})
			}
		}
		sort.Slice(reduce, func(i, j int) bool {
			return reduce[i].Production < reduce[j].Production
		})

		sr := []*spec.SRConflict{}
		for _, c := range srConflicts[s.Num] {
			conflict := &spec.SRConflict{
				Symbol:     c.sym.Num().Int(),
				State:      c.nextState.Int(),
				Production: c.prodNum.Int(),
				ResolvedBy: c.resolvedBy,
			}
			ty, next, p := tab.getAction(s.Num, c.sym.Num())
			switch ty {
			case ActionTypeShift:
				n := next.Int()
				conflict.AdoptedState = &n
			case ActionTypeReduce, ActionTypeAccept:
				n := p.Int()
				conflict.AdoptedProduction = &n
			}
			sr = append(sr, conflict)
		}
		sort.Slice(sr, func(i, j int) bool {
			return sr[i].Symbol < sr[j].Symbol
		})

		rr := []*spec.RRConflict{}
		for _, c := range rrConflicts[s.Num] {
			_, _, p := tab.getAction(s.Num, c.sym.Num())
			rr = append(rr, &spec.RRConflict{
				Symbol:            c.sym.Num().Int(),
				Production1:       c.prodNum1.Int(),
				Production2:       c.prodNum2.Int(),
				AdoptedProduction: p.Int(),
				ResolvedBy:        c.resolvedBy,
			})
		}
		sort.Slice(rr, func(i, j int) bool {
			return rr[i].Symbol < rr[j].Symbol
		})

		states[s.Num.Int()] = &spec.State{
			Number:     s.Num.Int(),
			Kernel:     kernel,
			Accept:     accept,
			Shift:      shift,
			Reduce:     reduce,
			GoTo:       goTo,
			SRConflict: sr,
			RRConflict: rr,
		}
	}

	return &spec.Report{
		Terminals:    terms,
		NonTerminals: nonTerms,
		Productions:  prods,
		States:       states,
	}
}
