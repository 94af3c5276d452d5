package grammar

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cnf/structhash"
	"github.com/nihei9/ppjgen/grammar/symbol"
)

// lr1ItemID identifies an item by its content. Two items built separately from the
// same production, dot, and lookahead set have the same ID.
type lr1ItemID string

// lr1ItemKey is the hashed form of an item. The lookahead is sorted, so it compares as
// a set.
type lr1ItemKey struct {
	Production int
	Dot        int
	LookAhead  []int
}

// lr1Item is immutable. Both sides of the dot read left to right:
//
//	E → E + T, dot 2
//
//	beforeDot: E +
//	afterDot:  T
type lr1Item struct {
	id   lr1ItemID
	prod *production
	dot  int

	// lookAhead is sorted by symbol number, the order of the action table columns, and
	// has no duplicates.
	lookAhead []symbol.Symbol
}

func newLR1Item(prod *production, dot int, lookAhead []symbol.Symbol) (*lr1Item, error) {
	if prod == nil {
		return nil, fmt.Errorf("production must be non-nil")
	}
	if dot < 0 || dot > len(prod.rhs) {
		return nil, fmt.Errorf("dot must be between 0 and %v", len(prod.rhs))
	}
	if len(lookAhead) == 0 {
		return nil, fmt.Errorf("an LR(1) item needs at least one lookahead symbol")
	}

	la := normalizeLookAhead(lookAhead)
	key := lr1ItemKey{
		Production: prod.num.Int(),
		Dot:        dot,
		LookAhead:  make([]int, len(la)),
	}
	for i, sym := range la {
		if !sym.IsTerminal() {
			return nil, fmt.Errorf("a lookahead symbol must be a terminal: %v", sym)
		}
		key.LookAhead[i] = int(sym)
	}
	h, err := structhash.Hash(key, 1)
	if err != nil {
		return nil, err
	}

	return &lr1Item{
		id:        lr1ItemID(h),
		prod:      prod,
		dot:       dot,
		lookAhead: la,
	}, nil
}

func normalizeLookAhead(syms []symbol.Symbol) []symbol.Symbol {
	la := append([]symbol.Symbol(nil), syms...)
	sort.Slice(la, func(i, j int) bool {
		return la[i].Num() < la[j].Num()
	})
	n := 0
	for i, sym := range la {
		if i > 0 && sym == la[n-1] {
			continue
		}
		la[n] = sym
		n++
	}
	return la[:n]
}

func (i *lr1Item) left() symbol.Symbol {
	return i.prod.lhs
}

func (i *lr1Item) beforeDot() []symbol.Symbol {
	return i.prod.rhs[:i.dot]
}

func (i *lr1Item) afterDot() []symbol.Symbol {
	return i.prod.rhs[i.dot:]
}

// dottedSymbol returns the symbol right after the dot, or symbol.SymbolNil when the
// item is complete.
func (i *lr1Item) dottedSymbol() symbol.Symbol {
	if i.isComplete() {
		return symbol.SymbolNil
	}
	return i.prod.rhs[i.dot]
}

func (i *lr1Item) isComplete() bool {
	return i.dot == len(i.prod.rhs)
}

// isKernel reports whether the item can start a state: the dot has moved, or the item
// is the initial one.
func (i *lr1Item) isKernel() bool {
	return i.dot > 0 || i.prod.lhs.IsStart()
}

func (i *lr1Item) hasLookAhead(sym symbol.Symbol) bool {
	n := sort.Search(len(i.lookAhead), func(j int) bool {
		return i.lookAhead[j].Num() >= sym.Num()
	})
	return n < len(i.lookAhead) && i.lookAhead[n] == sym
}

// shift returns the item with the dot moved over the next symbol.
func (i *lr1Item) shift() (*lr1Item, error) {
	if i.isComplete() {
		return nil, fmt.Errorf("the dot of a complete item cannot move")
	}
	return newLR1Item(i.prod, i.dot+1, i.lookAhead)
}

// sameCore reports whether both items have the same production and dot.
func (i *lr1Item) sameCore(j *lr1Item) bool {
	return i.prod == j.prod && i.dot == j.dot
}

func (i *lr1Item) text(symTab *symbol.Table) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v ->", symTab.Name(i.left()))
	for _, sym := range i.beforeDot() {
		fmt.Fprintf(&b, " %v", symTab.Name(sym))
	}
	fmt.Fprintf(&b, " .")
	for _, sym := range i.afterDot() {
		fmt.Fprintf(&b, " %v", symTab.Name(sym))
	}
	la := make([]string, len(i.lookAhead))
	for j, sym := range i.lookAhead {
		la[j] = symTab.Name(sym)
	}
	fmt.Fprintf(&b, ", {%v}", strings.Join(la, " "))
	return b.String()
}

// compareItems orders items by production number, then by dot.
func compareItems(a, b *lr1Item) int {
	switch {
	case a.prod.num != b.prod.num:
		return int(a.prod.num) - int(b.prod.num)
	default:
		return a.dot - b.dot
	}
}
