package regex

import "fmt"

// Node is a node of a regex tree. Nodes are immutable; every operation that would
// change a node builds a new one.
type Node interface {
	fmt.Stringer

	// Repeated reports whether the node carries a Kleene star.
	Repeated() bool

	// Children returns a copy of the child list. Leaves have no children.
	Children() []Node

	withRepeated(repeated bool) Node
	clone() Node
}

var (
	_ Node = &AltNode{}
	_ Node = &ConcatNode{}
	_ Node = &SymbolNode{}
	_ Node = &EpsilonNode{}
)

// AltNode is an n-ary alternation.
type AltNode struct {
	children []Node
	repeated bool
}

// NewAltNode builds an alternation and flattens children that are alternations
// themselves and carry no star, so that `a|(b|c)` has three operands. A single
// operand is returned as is.
func NewAltNode(cs ...Node) Node {
	children := make([]Node, 0, len(cs))
	for _, c := range cs {
		if c == nil {
			continue
		}
		if alt, ok := c.(*AltNode); ok && !alt.repeated {
			children = append(children, alt.children...)
			continue
		}
		children = append(children, c)
	}
	switch len(children) {
	case 0:
		return nil
	case 1:
		return children[0]
	}
	return &AltNode{
		children: children,
	}
}

func (n *AltNode) String() string {
	return Render(n)
}

func (n *AltNode) Repeated() bool {
	return n.repeated
}

func (n *AltNode) Children() []Node {
	return append([]Node{}, n.children...)
}

func (n *AltNode) withRepeated(repeated bool) Node {
	return &AltNode{
		children: n.children,
		repeated: repeated,
	}
}

func (n *AltNode) clone() Node {
	return &AltNode{
		children: cloneNodes(n.children),
		repeated: n.repeated,
	}
}

// ConcatNode is an n-ary concatenation.
type ConcatNode struct {
	children []Node
	repeated bool
}

// NewConcatNode builds a concatenation and flattens children that are
// concatenations without a star.
func NewConcatNode(cs ...Node) Node {
	children := make([]Node, 0, len(cs))
	for _, c := range cs {
		if c == nil {
			continue
		}
		if concat, ok := c.(*ConcatNode); ok && !concat.repeated {
			children = append(children, concat.children...)
			continue
		}
		children = append(children, c)
	}
	switch len(children) {
	case 0:
		return nil
	case 1:
		return children[0]
	}
	return &ConcatNode{
		children: children,
	}
}

func (n *ConcatNode) String() string {
	return Render(n)
}

func (n *ConcatNode) Repeated() bool {
	return n.repeated
}

func (n *ConcatNode) Children() []Node {
	return append([]Node{}, n.children...)
}

func (n *ConcatNode) withRepeated(repeated bool) Node {
	return &ConcatNode{
		children: n.children,
		repeated: repeated,
	}
}

func (n *ConcatNode) clone() Node {
	return &ConcatNode{
		children: cloneNodes(n.children),
		repeated: n.repeated,
	}
}

// SymbolNode matches exactly one character.
type SymbolNode struct {
	char     rune
	repeated bool
}

func NewSymbolNode(c rune) *SymbolNode {
	return &SymbolNode{
		char: c,
	}
}

func (n *SymbolNode) Char() rune {
	return n.char
}

func (n *SymbolNode) String() string {
	return Render(n)
}

func (n *SymbolNode) Repeated() bool {
	return n.repeated
}

func (n *SymbolNode) Children() []Node {
	return nil
}

func (n *SymbolNode) withRepeated(repeated bool) Node {
	return &SymbolNode{
		char:     n.char,
		repeated: repeated,
	}
}

func (n *SymbolNode) clone() Node {
	return n.withRepeated(n.repeated)
}

// EpsilonNode matches the empty word. It is written `$`.
type EpsilonNode struct {
	repeated bool
}

func NewEpsilonNode() *EpsilonNode {
	return &EpsilonNode{}
}

func (n *EpsilonNode) String() string {
	return Render(n)
}

func (n *EpsilonNode) Repeated() bool {
	return n.repeated
}

func (n *EpsilonNode) Children() []Node {
	return nil
}

func (n *EpsilonNode) withRepeated(repeated bool) Node {
	return &EpsilonNode{
		repeated: repeated,
	}
}

func (n *EpsilonNode) clone() Node {
	return n.withRepeated(n.repeated)
}

// Star returns n with a Kleene star attached. Stars do not stack: `(a*)*` is `a*`.
func Star(n Node) Node {
	if n == nil || n.Repeated() {
		return n
	}
	return n.withRepeated(true)
}

func cloneNodes(ns []Node) []Node {
	cs := make([]Node, len(ns))
	for i, n := range ns {
		cs[i] = n.clone()
	}
	return cs
}
