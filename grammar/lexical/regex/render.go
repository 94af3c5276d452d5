package regex

import "strings"

// Render writes a tree back as pattern text. Parsing the result yields a tree equal
// to the input up to the flattening Parse always performs.
func Render(n Node) string {
	var b strings.Builder
	render(&b, n)
	return b.String()
}

func render(b *strings.Builder, n Node) {
	switch n := n.(type) {
	case *SymbolNode:
		writeChar(b, n.char)
		if n.repeated {
			b.WriteByte('*')
		}
	case *EpsilonNode:
		b.WriteByte('$')
		if n.repeated {
			b.WriteByte('*')
		}
	case *ConcatNode:
		if n.repeated {
			b.WriteByte('(')
		}
		for _, c := range n.children {
			// Alternation binds looser than concatenation.
			if alt, ok := c.(*AltNode); ok && !alt.repeated {
				b.WriteByte('(')
				render(b, c)
				b.WriteByte(')')
				continue
			}
			render(b, c)
		}
		if n.repeated {
			b.WriteString(")*")
		}
	case *AltNode:
		if n.repeated {
			b.WriteByte('(')
		}
		for i, c := range n.children {
			if i > 0 {
				b.WriteByte('|')
			}
			render(b, c)
		}
		if n.repeated {
			b.WriteString(")*")
		}
	}
}

func writeChar(b *strings.Builder, c rune) {
	switch c {
	case ' ':
		b.WriteString(`\_`)
	case '\n':
		b.WriteString(`\n`)
	case '\t':
		b.WriteString(`\t`)
	case '\\', '|', '*', '(', ')', '{', '}', '$':
		b.WriteByte('\\')
		b.WriteRune(c)
	default:
		b.WriteRune(c)
	}
}

// Reduce returns the simplified canonical form of a tree:
//   - nested operators of the same kind are flattened,
//   - the empty word is dropped from concatenations,
//   - repeated alternatives and the empty word are dropped from a starred alternation,
//     since (x*|y)* and ($|x|y)* are both (x|y)*,
//   - duplicate alternatives are removed, the first one is kept,
//   - a single-operand node is replaced by its operand.
//
// Reduce is idempotent.
func Reduce(n Node) Node {
	switch n := n.(type) {
	case *SymbolNode:
		return n.clone()
	case *EpsilonNode:
		// $* is $.
		return NewEpsilonNode()
	case *ConcatNode:
		var cs []Node
		for _, c := range n.children {
			c = Reduce(c)
			if e, ok := c.(*EpsilonNode); ok && !e.repeated {
				continue
			}
			cs = append(cs, c)
		}
		if len(cs) == 0 {
			return NewEpsilonNode()
		}
		return reduceStar(NewConcatNode(cs...), n.repeated)
	case *AltNode:
		var cs []Node
		seen := map[string]struct{}{}
		for _, c := range n.children {
			c = Reduce(c)
			if n.repeated {
				if _, ok := c.(*EpsilonNode); ok {
					continue
				}
				if c.Repeated() {
					c = Reduce(c.withRepeated(false))
				}
			}
			for _, o := range operandsOf(c) {
				key := Render(o)
				if _, ok := seen[key]; ok {
					continue
				}
				seen[key] = struct{}{}
				cs = append(cs, o)
			}
		}
		switch {
		case len(cs) == 0:
			return NewEpsilonNode()
		case len(cs) == 1:
			return reduceStar(cs[0], n.repeated)
		case n.repeated:
			return &AltNode{
				children: cs,
				repeated: true,
			}
		}
		return NewAltNode(cs...)
	}
	return n
}

// operandsOf returns the operands an alternative contributes to its parent
// alternation.
func operandsOf(n Node) []Node {
	if alt, ok := n.(*AltNode); ok && !alt.repeated {
		return alt.children
	}
	return []Node{n}
}

func reduceStar(n Node, repeated bool) Node {
	if !repeated || n.Repeated() {
		return n
	}
	switch n.(type) {
	case *AltNode:
		// The star changes which operands are redundant.
		return Reduce(n.withRepeated(true))
	case *EpsilonNode:
		return n
	}
	return n.withRepeated(true)
}
