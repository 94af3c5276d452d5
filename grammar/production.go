package grammar

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/nihei9/ppjgen/grammar/symbol"
)

type productionID [32]byte

func (id productionID) String() string {
	return hex.EncodeToString(id[:])
}

func genProductionID(lhs symbol.Symbol, rhs []symbol.Symbol) productionID {
	seq := make([]byte, 2*(len(rhs)+1))
	binary.BigEndian.PutUint16(seq, uint16(lhs))
	for i, sym := range rhs {
		binary.BigEndian.PutUint16(seq[2*(i+1):], uint16(sym))
	}
	return productionID(sha256.Sum256(seq))
}

type productionNum uint16

const (
	productionNumNil   = productionNum(0)
	productionNumStart = productionNum(1)
	productionNumMin   = productionNum(2)
)

func (n productionNum) Int() int {
	return int(n)
}

// production is an immutable rule `lhs -> rhs`. An empty rhs is the empty production.
type production struct {
	id  productionID
	num productionNum
	lhs symbol.Symbol
	rhs []symbol.Symbol

	// row is the line of the production in the grammar file, 0 for the augmented start
	// production.
	row int
}

func newProduction(lhs symbol.Symbol, rhs []symbol.Symbol) (*production, error) {
	if !lhs.IsNonTerminal() {
		return nil, fmt.Errorf("LHS must be a non-terminal symbol; LHS: %v, RHS: %v", lhs, rhs)
	}
	for _, sym := range rhs {
		if sym.IsNil() || sym.IsStart() || sym.IsEOF() {
			return nil, fmt.Errorf("a symbol of RHS must be a user symbol; LHS: %v, RHS: %v", lhs, rhs)
		}
	}

	return &production{
		id:  genProductionID(lhs, rhs),
		lhs: lhs,
		rhs: rhs,
	}, nil
}

func (p *production) isEmpty() bool {
	return len(p.rhs) == 0
}

func (p *production) text(symTab *symbol.Table) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v ->", symTab.Name(p.lhs))
	if p.isEmpty() {
		fmt.Fprintf(&b, " %v", "$")
	}
	for _, sym := range p.rhs {
		fmt.Fprintf(&b, " %v", symTab.Name(sym))
	}
	return b.String()
}

// productionSet numbers productions in the order they are appended. The augmented
// start production always takes productionNumStart.
type productionSet struct {
	lhs2Prods map[symbol.Symbol][]*production
	id2Prod   map[productionID]*production
	num2Prod  []*production
}

func newProductionSet() *productionSet {
	return &productionSet{
		lhs2Prods: map[symbol.Symbol][]*production{},
		id2Prod:   map[productionID]*production{},
		num2Prod:  make([]*production, productionNumMin),
	}
}

// append returns false when the same production is already in the set.
func (ps *productionSet) append(prod *production) bool {
	if _, ok := ps.id2Prod[prod.id]; ok {
		return false
	}

	if prod.lhs.IsStart() {
		prod.num = productionNumStart
		ps.num2Prod[productionNumStart] = prod
	} else {
		prod.num = productionNum(len(ps.num2Prod))
		ps.num2Prod = append(ps.num2Prod, prod)
	}
	ps.lhs2Prods[prod.lhs] = append(ps.lhs2Prods[prod.lhs], prod)
	ps.id2Prod[prod.id] = prod

	return true
}

func (ps *productionSet) findByID(id productionID) (*production, bool) {
	prod, ok := ps.id2Prod[id]
	return prod, ok
}

func (ps *productionSet) findByNum(num productionNum) (*production, bool) {
	if num < productionNumStart || int(num) >= len(ps.num2Prod) {
		return nil, false
	}
	prod := ps.num2Prod[num]
	return prod, prod != nil
}

// findByLHS returns the productions of a non-terminal in declaration order.
func (ps *productionSet) findByLHS(lhs symbol.Symbol) ([]*production, bool) {
	prods, ok := ps.lhs2Prods[lhs]
	return prods, ok
}

// getAllProductions returns the productions in number order.
func (ps *productionSet) getAllProductions() []*production {
	prods := make([]*production, 0, len(ps.id2Prod))
	for _, p := range ps.num2Prod {
		if p != nil {
			prods = append(prods, p)
		}
	}
	return prods
}

// count is the number of rows of per-production tables, including the unused row 0.
func (ps *productionSet) count() int {
	return len(ps.num2Prod)
}
