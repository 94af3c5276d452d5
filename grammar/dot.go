package grammar

import (
	"fmt"
	"io"
	"strings"
)

// recordEscaper escapes the characters with a meaning in record labels.
var recordEscaper = strings.NewReplacer(
	`{`, `\{`,
	`}`, `\}`,
	`|`, `\|`,
	`<`, `\<`,
	`>`, `\>`,
	`"`, `\"`,
)

// Dot writes the canonical collection in GraphViz format. A node lists the kernel items
// of a state, and accepting states are filled gray.
func (cc *CanonicalCollection) Dot(w io.Writer) error {
	var b strings.Builder
	b.WriteString(`digraph {
graph [splines=true, fontname=Helvetica, fontsize=10];
node [shape=Mrecord, style=filled, fontname=Helvetica, fontsize=10];
edge [fontname=Helvetica, fontsize=10];

`)
	symTab := cc.g.symbolTable
	for _, s := range cc.States {
		items := make([]string, 0, len(s.Items))
		for _, item := range s.kernel() {
			items = append(items, recordEscaper.Replace(item.text(symTab)))
		}
		fmt.Fprintf(&b, "s%03d [fillcolor=%s label=\"{%03d | %s}\"]\n", s.Num.Int(), nodeColor(s), s.Num.Int(), strings.Join(items, `\l`)+`\l`)
	}
	it := cc.edges.Iterator()
	for it.Next() {
		e := it.Value().(*lr1Edge)
		fmt.Fprintf(&b, "s%03d -> s%03d [label=\"%s\"]\n", e.from.Int(), e.to.Int(), strings.ReplaceAll(symTab.Name(e.sym), `"`, `\"`))
	}
	b.WriteString("}\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func nodeColor(s *LR1State) string {
	if s.isAccepting() {
		return "lightgray"
	}
	return "white"
}
