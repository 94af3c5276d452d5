package grammar

import (
	"fmt"
	"sort"

	"github.com/cnf/structhash"
	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/queues/linkedlistqueue"
	"github.com/nihei9/ppjgen/grammar/symbol"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'ppjgen.grammar'.
func tracer() tracing.Trace {
	return tracing.Select("ppjgen.grammar")
}

type stateNum int

const stateNumInitial = stateNum(0)

func (n stateNum) Int() int {
	return int(n)
}

func (n stateNum) String() string {
	return fmt.Sprintf("%v", int(n))
}

func (n stateNum) next() stateNum {
	return stateNum(n + 1)
}

// itemNFA is the automaton whose states are single LR(1) items. An item with a
// non-terminal B after the dot has epsilon edges to the initial items of the
// productions of B, and every incomplete item has one edge shifting its dot.
type itemNFA struct {
	g     *Grammar
	ids   map[lr1ItemID]int
	items []*lr1Item

	// closures and shifts are filled on first use. A shift of -1 is not computed yet.
	closures [][]int
	shifts   []int
}

func newItemNFA(g *Grammar) *itemNFA {
	return &itemNFA{
		g:   g,
		ids: map[lr1ItemID]int{},
	}
}

// getState returns the state of an item, adding one on first sight.
func (n *itemNFA) getState(item *lr1Item) int {
	if s, ok := n.ids[item.id]; ok {
		return s
	}
	s := len(n.items)
	n.ids[item.id] = s
	n.items = append(n.items, item)
	n.closures = append(n.closures, nil)
	n.shifts = append(n.shifts, -1)
	return s
}

func (n *itemNFA) item(s int) *lr1Item {
	return n.items[s]
}

// epsilonNeighbours returns the items `B → ・γ, T` an item `A → α・B β, L` leads to,
// where T is FIRST(β) together with L when β derives the empty word.
func (n *itemNFA) epsilonNeighbours(s int) ([]int, error) {
	item := n.items[s]
	b := item.dottedSymbol()
	if !b.IsNonTerminal() {
		return nil, nil
	}
	prods, ok := n.g.productionSet.findByLHS(b)
	if !ok {
		return nil, nil
	}

	rest := item.afterDot()[1:]
	f := n.g.firsts.find(rest)
	la := f.terms
	if f.empty {
		la = append(append([]symbol.Symbol(nil), la...), item.lookAhead...)
	}
	if len(la) == 0 {
		return nil, fmt.Errorf("no lookahead for the productions of %v in item %v", b, item.text(n.g.symbolTable))
	}

	neighbours := make([]int, 0, len(prods))
	for _, prod := range prods {
		next, err := newLR1Item(prod, 0, la)
		if err != nil {
			return nil, err
		}
		neighbours = append(neighbours, n.getState(next))
	}
	return neighbours, nil
}

// closure returns the epsilon closure of a state in state order. Closures are
// memoized, and a closure already known for a neighbour is reused as a whole.
func (n *itemNFA) closure(s int) ([]int, error) {
	if c := n.closures[s]; c != nil {
		return c, nil
	}

	seen := map[int]struct{}{
		s: {},
	}
	queue := linkedlistqueue.New()
	queue.Enqueue(s)
	for !queue.Empty() {
		v, _ := queue.Dequeue()
		t := v.(int)
		if t != s && n.closures[t] != nil {
			for _, u := range n.closures[t] {
				seen[u] = struct{}{}
			}
			continue
		}
		neighbours, err := n.epsilonNeighbours(t)
		if err != nil {
			return nil, err
		}
		for _, u := range neighbours {
			if _, ok := seen[u]; ok {
				continue
			}
			seen[u] = struct{}{}
			queue.Enqueue(u)
		}
	}

	c := make([]int, 0, len(seen))
	for u := range seen {
		c = append(c, u)
	}
	sort.Ints(c)
	n.closures[s] = c
	return c, nil
}

// shift returns the state reached by moving the dot of an incomplete item.
func (n *itemNFA) shift(s int) (int, error) {
	if n.shifts[s] >= 0 {
		return n.shifts[s], nil
	}
	next, err := n.items[s].shift()
	if err != nil {
		return 0, err
	}
	t := n.getState(next)
	n.shifts[s] = t
	return t, nil
}

// LR1State is a state of the canonical LR(1) automaton. Its items are closed under
// the item closure and hold one item per production and dot, the lookahead sets of
// items sharing both being merged.
type LR1State struct {
	Num   stateNum
	Items []*lr1Item
	Next  map[symbol.Symbol]stateNum

	// nfaStates are the item NFA states of Items in the same order.
	nfaStates []int
}

func (s *LR1State) kernel() []*lr1Item {
	var items []*lr1Item
	for _, item := range s.Items {
		if item.isKernel() {
			items = append(items, item)
		}
	}
	return items
}

// reducible returns the complete items having sym as lookahead.
func (s *LR1State) reducible(sym symbol.Symbol) []*lr1Item {
	var items []*lr1Item
	for _, item := range s.Items {
		if item.isComplete() && item.hasLookAhead(sym) {
			items = append(items, item)
		}
	}
	return items
}

// shifting returns the items having sym after the dot.
func (s *LR1State) shifting(sym symbol.Symbol) []*lr1Item {
	var items []*lr1Item
	for _, item := range s.Items {
		if item.dottedSymbol() == sym {
			items = append(items, item)
		}
	}
	return items
}

// isAccepting reports whether the state holds `<<q0>> → S・, {<eof>}`.
func (s *LR1State) isAccepting() bool {
	for _, item := range s.Items {
		if item.prod.lhs.IsStart() && item.isComplete() {
			return true
		}
	}
	return false
}

type lr1Edge struct {
	from stateNum
	to   stateNum
	sym  symbol.Symbol
}

// CanonicalCollection is the canonical collection of LR(1) item sets together with
// the goto function between them. States are numbered in discovery order.
type CanonicalCollection struct {
	States  []*LR1State
	Initial stateNum

	// edges holds every transition in the order they were found.
	edges *arraylist.List
	g     *Grammar
}

// GoTo returns the state reached from state on sym.
func (cc *CanonicalCollection) GoTo(state stateNum, sym symbol.Symbol) (stateNum, bool) {
	if state < 0 || state.Int() >= len(cc.States) {
		return stateNumInitial, false
	}
	next, ok := cc.States[state].Next[sym]
	return next, ok
}

// KernelTexts returns the kernel items of a state as `A -> x . y, {a b}`.
func (cc *CanonicalCollection) KernelTexts(state stateNum) []string {
	if state < 0 || state.Int() >= len(cc.States) {
		return nil
	}
	var texts []string
	for _, item := range cc.States[state].kernel() {
		texts = append(texts, item.text(cc.g.SymbolTable()))
	}
	return texts
}

// stateKey is the hashed form of an item set. Item IDs are sorted.
type stateKey struct {
	Items []string
}

type lr1Builder struct {
	g      *Grammar
	nfa    *itemNFA
	known  map[string]stateNum
	states []*LR1State
	queue  *linkedlistqueue.Queue
	edges  *arraylist.List
}

func symbolComparator(a, b interface{}) int {
	return int(a.(symbol.Symbol)) - int(b.(symbol.Symbol))
}

// genCanonicalCollection runs the subset construction over the item NFA, starting
// from the closure of `<<q0>> → ・S, {<eof>}`.
func genCanonicalCollection(g *Grammar) (*CanonicalCollection, error) {
	b := &lr1Builder{
		g:     g,
		nfa:   newItemNFA(g),
		known: map[string]stateNum{},
		queue: linkedlistqueue.New(),
		edges: arraylist.New(),
	}

	startProd, ok := g.productionSet.findByNum(productionNumStart)
	if !ok {
		return nil, fmt.Errorf("the augmented start production was not found")
	}
	initialItem, err := newLR1Item(startProd, 0, []symbol.Symbol{symbol.SymbolEOF})
	if err != nil {
		return nil, err
	}
	initial, _, err := b.stateOf([]int{b.nfa.getState(initialItem)})
	if err != nil {
		return nil, err
	}

	for !b.queue.Empty() {
		v, _ := b.queue.Dequeue()
		if err := b.expand(v.(*LR1State)); err != nil {
			return nil, err
		}
	}

	tracer().Debugf("canonical collection: %v states, %v edges, %v items", len(b.states), b.edges.Size(), len(b.nfa.items))

	return &CanonicalCollection{
		States:  b.states,
		Initial: initial.Num,
		edges:   b.edges,
		g:       g,
	}, nil
}

// expand computes the goto sets of a state, one per symbol after a dot, in symbol
// order.
func (b *lr1Builder) expand(state *LR1State) error {
	targets := treemap.NewWith(symbolComparator)
	for _, s := range state.nfaStates {
		sym := b.nfa.item(s).dottedSymbol()
		if sym.IsNil() {
			continue
		}
		t, err := b.nfa.shift(s)
		if err != nil {
			return err
		}
		var ts []int
		if v, ok := targets.Get(sym); ok {
			ts = v.([]int)
		}
		targets.Put(sym, append(ts, t))
	}

	it := targets.Iterator()
	for it.Next() {
		sym := it.Key().(symbol.Symbol)
		next, isNew, err := b.stateOf(it.Value().([]int))
		if err != nil {
			return err
		}
		if isNew {
			tracer().Debugf("state %v --%v--> new state %v (%v items)", state.Num, b.g.symbolTable.Name(sym), next.Num, len(next.Items))
		}
		state.Next[sym] = next.Num
		b.edges.Add(&lr1Edge{
			from: state.Num,
			to:   next.Num,
			sym:  sym,
		})
	}
	return nil
}

// stateOf closes a set of item NFA states, merges the lookaheads of items with the
// same production and dot, and returns the DFA state of the result. The bool result
// is true when the state was created by this call.
func (b *lr1Builder) stateOf(nfaStates []int) (*LR1State, bool, error) {
	closed := map[int]struct{}{}
	for _, s := range nfaStates {
		c, err := b.nfa.closure(s)
		if err != nil {
			return nil, false, err
		}
		for _, t := range c {
			closed[t] = struct{}{}
		}
	}

	items := make([]*lr1Item, 0, len(closed))
	for s := range closed {
		items = append(items, b.nfa.item(s))
	}
	sort.Slice(items, func(i, j int) bool {
		return compareItems(items[i], items[j]) < 0
	})
	merged := make([]*lr1Item, 0, len(items))
	for i := 0; i < len(items); {
		j := i + 1
		var la []symbol.Symbol
		la = append(la, items[i].lookAhead...)
		for ; j < len(items) && items[j].sameCore(items[i]); j++ {
			la = append(la, items[j].lookAhead...)
		}
		item := items[i]
		if j-i > 1 {
			var err error
			item, err = newLR1Item(items[i].prod, items[i].dot, la)
			if err != nil {
				return nil, false, err
			}
		}
		merged = append(merged, item)
		i = j
	}

	key := stateKey{
		Items: make([]string, len(merged)),
	}
	for i, item := range merged {
		key.Items[i] = string(item.id)
	}
	h, err := structhash.Hash(key, 1)
	if err != nil {
		return nil, false, err
	}
	if num, ok := b.known[h]; ok {
		return b.states[num], false, nil
	}

	state := &LR1State{
		Num:       stateNum(len(b.states)),
		Items:     merged,
		Next:      map[symbol.Symbol]stateNum{},
		nfaStates: make([]int, len(merged)),
	}
	for i, item := range merged {
		state.nfaStates[i] = b.nfa.getState(item)
	}
	b.known[h] = state.Num
	b.states = append(b.states, state)
	b.queue.Enqueue(state)
	return state, true, nil
}
