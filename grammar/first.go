package grammar

import (
	"encoding/binary"
	"sort"

	"github.com/nihei9/ppjgen/grammar/symbol"
)

// firstEntry holds what a non-terminal can derive at its left edge. symbols contains
// every terminal and non-terminal that can start a sentential form derived from it,
// the non-terminal itself included, and empty is true when it derives the empty word.
type firstEntry struct {
	symbols map[symbol.Symbol]struct{}
	empty   bool
}

func newFirstEntry() *firstEntry {
	return &firstEntry{
		symbols: map[symbol.Symbol]struct{}{},
	}
}

func (e *firstEntry) add(sym symbol.Symbol) bool {
	if _, ok := e.symbols[sym]; ok {
		return false
	}
	e.symbols[sym] = struct{}{}
	return true
}

func (e *firstEntry) addEmpty() bool {
	if !e.empty {
		e.empty = true
		return true
	}
	return false
}

func (e *firstEntry) mergeExceptEmpty(target *firstEntry) bool {
	changed := false
	for sym := range target.symbols {
		if e.add(sym) {
			changed = true
		}
	}
	return changed
}

func (e *firstEntry) has(sym symbol.Symbol) bool {
	_, ok := e.symbols[sym]
	return ok
}

type firstSet struct {
	set map[symbol.Symbol]*firstEntry
}

// genFirstSet iterates over the productions until no entry grows. Non-terminals
// without productions keep an entry holding only themselves.
func genFirstSet(nonTerms []symbol.Symbol, prods *productionSet) *firstSet {
	fst := &firstSet{
		set: map[symbol.Symbol]*firstEntry{},
	}
	for _, sym := range nonTerms {
		e := newFirstEntry()
		e.add(sym)
		fst.set[sym] = e
	}

	for {
		more := false
		for _, prod := range prods.getAllProductions() {
			if genProdFirstEntry(fst, fst.set[prod.lhs], prod) {
				more = true
			}
		}
		if !more {
			break
		}
	}
	return fst
}

func genProdFirstEntry(fst *firstSet, acc *firstEntry, prod *production) bool {
	changed := false
	for _, sym := range prod.rhs {
		if sym.IsTerminal() {
			return acc.add(sym) || changed
		}

		e := fst.set[sym]
		if acc.mergeExceptEmpty(e) {
			changed = true
		}
		if !e.empty {
			return changed
		}
	}
	return acc.addEmpty() || changed
}

func (fst *firstSet) findBySymbol(sym symbol.Symbol) *firstEntry {
	return fst.set[sym]
}

// startsWith reports whether word can derive a sentential form starting with x, read
// left to right. A word that derives the empty word starts with symbol.SymbolEOF.
func (fst *firstSet) startsWith(word []symbol.Symbol, x symbol.Symbol) bool {
	for _, sym := range word {
		if sym == x {
			return true
		}
		if sym.IsTerminal() {
			return false
		}
		e := fst.set[sym]
		if e.has(x) {
			return true
		}
		if !e.empty {
			return false
		}
	}
	return x == symbol.SymbolEOF
}

// first returns the terminals word can start with, in symbol order, and whether word
// derives the empty word.
func (fst *firstSet) first(word []symbol.Symbol) ([]symbol.Symbol, bool) {
	terms := map[symbol.Symbol]struct{}{}
	empty := true
	for _, sym := range word {
		if sym.IsTerminal() {
			terms[sym] = struct{}{}
			empty = false
			break
		}
		e := fst.set[sym]
		for s := range e.symbols {
			if s.IsTerminal() {
				terms[s] = struct{}{}
			}
		}
		if !e.empty {
			empty = false
			break
		}
	}

	syms := make([]symbol.Symbol, 0, len(terms))
	for sym := range terms {
		syms = append(syms, sym)
	}
	sort.Slice(syms, func(i, j int) bool {
		return syms[i] < syms[j]
	})
	return syms, empty
}

type wordFirst struct {
	terms []symbol.Symbol
	empty bool
}

// firstCache memoizes FIRST of words. Item closures ask for the same suffixes of
// right-hand sides over and over.
type firstCache struct {
	fst   *firstSet
	words map[string]*wordFirst
}

func newFirstCache(fst *firstSet) *firstCache {
	return &firstCache{
		fst:   fst,
		words: map[string]*wordFirst{},
	}
}

func (c *firstCache) find(word []symbol.Symbol) *wordFirst {
	key := wordKey(word)
	if wf, ok := c.words[key]; ok {
		return wf
	}
	terms, empty := c.fst.first(word)
	wf := &wordFirst{
		terms: terms,
		empty: empty,
	}
	c.words[key] = wf
	return wf
}

func wordKey(word []symbol.Symbol) string {
	b := make([]byte, 2*len(word))
	for i, sym := range word {
		binary.BigEndian.PutUint16(b[2*i:], uint16(sym))
	}
	return string(b)
}
