// Package grammar loads context-free grammars written in the PPJ format and holds the
// data the grammar compiler produces from them.
//
//	%V <S> <A> <B>
//	%T a b c
//	%Syn c
//	<S>
//	 <A> <B>
//	<A>
//	 a <A>
//	 $
//
// %V declares the non-terminals, the first one being the start symbol. %T declares
// the terminals and %Syn the synchronizing terminals. A line holding a single <name>
// opens the productions of that non-terminal, and every following line starting with
// a blank is one production. $ stands for the empty production.
package grammar

import (
	"bufio"
	"io"
	"strings"

	verr "github.com/nihei9/ppjgen/error"
)

// EmptyMarker denotes the empty production.
const EmptyMarker = "$"

const (
	DirectiveNonTerminals  = "%V"
	DirectiveTerminals     = "%T"
	DirectiveSynchronizing = "%Syn"
)

type RootNode struct {
	NonTerminals  *DirectiveNode
	Terminals     *DirectiveNode
	SyncTerminals *DirectiveNode
	Productions   []*ProductionNode
}

// StartSymbol returns the first declared non-terminal.
func (n *RootNode) StartSymbol() string {
	if n.NonTerminals == nil || len(n.NonTerminals.Symbols) == 0 {
		return ""
	}
	return n.NonTerminals.Symbols[0]
}

type DirectiveNode struct {
	Name    string
	Symbols []string
	Row     int
}

type ProductionNode struct {
	LHS string
	RHS []*AlternativeNode
	Row int
}

// AlternativeNode is one right-hand side. It has no elements when it is the empty
// production.
type AlternativeNode struct {
	Elements []string
	Row      int
}

func (n *AlternativeNode) IsEmpty() bool {
	return len(n.Elements) == 0
}

// Parse reads a grammar. It reports every syntax error it finds as an
// error.SpecErrors.
func Parse(src io.Reader) (*RootNode, error) {
	p := &parser{
		root: &RootNode{},
	}
	s := bufio.NewScanner(src)
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	row := 0
	for s.Scan() {
		row++
		p.parseLine(strings.TrimRight(s.Text(), "\r"), row)
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	if p.root.NonTerminals == nil {
		p.error(0, synErrNoNonTerminals, "")
	}
	if len(p.errs) > 0 {
		return nil, p.errs
	}
	return p.root, nil
}

type parser struct {
	root *RootNode
	lhs  *ProductionNode
	errs verr.SpecErrors
}

func (p *parser) error(row int, cause error, detail string) {
	p.errs = append(p.errs, &verr.SpecError{
		Cause:  cause,
		Detail: detail,
		Row:    row,
	})
}

func (p *parser) parseLine(line string, row int) {
	if strings.TrimSpace(line) == "" {
		return
	}
	switch line[0] {
	case '%':
		p.parseDirective(line, row)
	case '<':
		fields := strings.Fields(line)
		if len(fields) != 1 || !strings.HasSuffix(fields[0], ">") || len(fields[0]) < 3 {
			p.error(row, synErrMalformedLHS, strings.TrimSpace(line))
			p.lhs = nil
			return
		}
		p.lhs = &ProductionNode{
			LHS: fields[0],
			Row: row,
		}
		p.root.Productions = append(p.root.Productions, p.lhs)
	case ' ', '\t':
		if p.lhs == nil {
			p.error(row, synErrProductionNoLHS, "")
			return
		}
		alt := &AlternativeNode{
			Row: row,
		}
		fields := strings.Fields(line)
		for _, f := range fields {
			if f == EmptyMarker {
				if len(fields) > 1 {
					p.error(row, synErrEmptyMarkerInWord, "")
					return
				}
				continue
			}
			alt.Elements = append(alt.Elements, f)
		}
		p.lhs.RHS = append(p.lhs.RHS, alt)
	default:
		p.error(row, synErrUnexpectedLine, "")
	}
}

func (p *parser) parseDirective(line string, row int) {
	if len(p.root.Productions) > 0 {
		p.error(row, synErrDirectiveAfterRule, "")
		return
	}
	fields := strings.Fields(line)
	var dir **DirectiveNode
	switch fields[0] {
	case DirectiveNonTerminals:
		dir = &p.root.NonTerminals
	case DirectiveTerminals:
		dir = &p.root.Terminals
	case DirectiveSynchronizing:
		dir = &p.root.SyncTerminals
	default:
		p.error(row, synErrUnknownDirective, fields[0])
		return
	}
	if *dir != nil {
		p.error(row, synErrDuplicateDirective, fields[0])
		return
	}
	if fields[0] == DirectiveNonTerminals && len(fields) == 1 {
		p.error(row, synErrDirectiveNoSymbol, fields[0])
	}
	*dir = &DirectiveNode{
		Name:    fields[0],
		Symbols: fields[1:],
		Row:     row,
	}
}
