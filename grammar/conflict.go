package grammar

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nihei9/ppjgen/grammar/symbol"
)

// Conflict is a state and a lookahead terminal for which the canonical collection
// allows more than one action. Reduces holds the complete items having the lookahead,
// Shifts the items having it after the dot. A conflict has either two or more reduce
// items, or at least one of each.
type Conflict struct {
	State     stateNum
	LookAhead symbol.Symbol
	Reduces   []*lr1Item
	Shifts    []*lr1Item
}

func (c *Conflict) IsShiftReduce() bool {
	return len(c.Shifts) > 0
}

// Productions returns the numbers of the productions the reduce items would reduce, in
// ascending order.
func (c *Conflict) Productions() []productionNum {
	nums := make([]productionNum, len(c.Reduces))
	for i, item := range c.Reduces {
		nums[i] = item.prod.num
	}
	sort.Slice(nums, func(i, j int) bool {
		return nums[i] < nums[j]
	})
	return nums
}

func (c *Conflict) text(symTab *symbol.Table) string {
	var b strings.Builder
	kind := "reduce/reduce"
	if c.IsShiftReduce() {
		kind = "shift/reduce"
	}
	fmt.Fprintf(&b, "%v conflict in state %v on %v", kind, c.State, symTab.Name(c.LookAhead))
	for _, item := range c.Shifts {
		fmt.Fprintf(&b, "\n    shift:  %v", item.text(symTab))
	}
	for _, item := range c.Reduces {
		fmt.Fprintf(&b, "\n    reduce: %v", item.text(symTab))
	}
	return b.String()
}

// Conflicts lists every conflict of the collection ordered by state and lookahead.
// Nothing is resolved here; ConflictPolicy decides when the parsing table is built.
func (cc *CanonicalCollection) Conflicts() []*Conflict {
	var conflicts []*Conflict
	for _, state := range cc.States {
		las := map[symbol.Symbol]struct{}{}
		for _, item := range state.Items {
			if !item.isComplete() {
				continue
			}
			for _, sym := range item.lookAhead {
				las[sym] = struct{}{}
			}
		}
		syms := make([]symbol.Symbol, 0, len(las))
		for sym := range las {
			syms = append(syms, sym)
		}
		sort.Slice(syms, func(i, j int) bool {
			return syms[i] < syms[j]
		})

		for _, sym := range syms {
			reduces := state.reducible(sym)
			shifts := state.shifting(sym)
			if len(reduces)+len(shifts) < 2 || len(reduces) == 0 {
				continue
			}
			conflicts = append(conflicts, &Conflict{
				State:     state.Num,
				LookAhead: sym,
				Reduces:   reduces,
				Shifts:    shifts,
			})
		}
	}
	return conflicts
}

// ConflictText describes a conflict with the symbol names of the grammar.
func (cc *CanonicalCollection) ConflictText(c *Conflict) string {
	return c.text(cc.g.symbolTable)
}
