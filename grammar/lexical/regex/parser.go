package regex

import (
	"errors"
	"fmt"
)

var errParse = errors.New("parse error")

type parser struct {
	pattern   string
	defs      *Definitions
	lex       *lexer
	peekedTok *token
	lastTok   *token

	errCause  error
	errDetail string
	errPos    int
}

// Parse parses a pattern into a tree. References of the form `{name}` are resolved
// against defs and copied into the tree; defs may be nil when the pattern contains
// no references.
//
// Operators by increasing precedence: alternation `|`, concatenation (adjacency),
// Kleene star `*`. Parentheses group, `$` is the empty word, `\` escapes the next
// character (`\n`, `\t`, and `\_` for a blank). An unescaped blank is an error.
func Parse(defs *Definitions, pattern string) (Node, error) {
	p := &parser{
		pattern: pattern,
		defs:    defs,
		lex:     newLexer(pattern),
	}
	return p.parse()
}

func (p *parser) parse() (root Node, retErr error) {
	defer func() {
		err := recover()
		if err != nil {
			if err != errParse {
				panic(err)
			}
			retErr = &ParseError{
				Pattern: p.pattern,
				Offset:  p.errPos,
				Cause:   p.errCause,
				Detail:  p.errDetail,
			}
			tracer().Debugf("cannot parse %q: %v", p.pattern, retErr)
			return
		}
		tracer().Debugf("parsed %q: %v", p.pattern, root)
	}()

	return p.parseRegexp(), nil
}

func (p *parser) parseRegexp() Node {
	alt := p.parseAlt()
	if alt == nil {
		if p.consume(tokenKindGroupClose) {
			p.raiseParseError(synErrGroupNoInitiator, "")
		}
		p.raiseParseError(synErrNullPattern, "")
	}
	if p.consume(tokenKindGroupClose) {
		p.raiseParseError(synErrGroupNoInitiator, "")
	}
	p.expect(tokenKindEOF)
	return alt
}

func (p *parser) parseAlt() Node {
	left := p.parseConcat()
	if left == nil {
		if p.consume(tokenKindAlt) {
			p.raiseParseError(synErrAltLackOfOperand, "")
		}
		return nil
	}
	operands := []Node{left}
	for {
		if !p.consume(tokenKindAlt) {
			break
		}
		right := p.parseConcat()
		if right == nil {
			p.raiseParseError(synErrAltLackOfOperand, "")
		}
		operands = append(operands, right)
	}
	return NewAltNode(operands...)
}

func (p *parser) parseConcat() Node {
	left := p.parseRepeat()
	if left == nil {
		return nil
	}
	operands := []Node{left}
	for {
		right := p.parseRepeat()
		if right == nil {
			break
		}
		operands = append(operands, right)
	}
	return NewConcatNode(operands...)
}

func (p *parser) parseRepeat() Node {
	group := p.parseGroup()
	if group == nil {
		if p.consume(tokenKindRepeat) {
			p.raiseParseError(synErrRepNoTarget, "* needs an operand")
		}
		return nil
	}
	// A run of stars is a single star.
	repeated := false
	for p.consume(tokenKindRepeat) {
		repeated = true
	}
	if repeated {
		return Star(group)
	}
	return group
}

func (p *parser) parseGroup() Node {
	if p.consume(tokenKindGroupOpen) {
		alt := p.parseAlt()
		if alt == nil {
			if p.consume(tokenKindEOF) {
				p.raiseParseError(synErrGroupUnclosed, "")
			}
			p.raiseParseError(synErrGroupNoElem, "")
		}
		if p.consume(tokenKindEOF) {
			p.raiseParseError(synErrGroupUnclosed, "")
		}
		if !p.consume(tokenKindGroupClose) {
			p.raiseParseError(synErrGroupInvalidForm, "")
		}
		// The group is returned bare. NewAltNode and NewConcatNode inline it into the
		// parent when the operators agree and no star is attached.
		return alt
	}
	if p.consume(tokenKindReference) {
		name := p.lastTok.name
		var tree Node
		var ok bool
		if p.defs != nil {
			tree, ok = p.defs.Lookup(name)
		}
		if !ok {
			p.raiseParseError(synErrRefUndefined, name)
		}
		return tree
	}
	if p.consume(tokenKindEpsilon) {
		return NewEpsilonNode()
	}
	if p.consume(tokenKindChar) {
		return NewSymbolNode(p.lastTok.char)
	}
	return nil
}

func (p *parser) expect(expected tokenKind) {
	if !p.consume(expected) {
		tok := p.peekedTok
		p.raiseParseError(synErrUnexpectedToken, fmt.Sprintf("expected: %v, actual: %v", expected, tok.kind))
	}
}

func (p *parser) consume(expected tokenKind) bool {
	var tok *token
	if p.peekedTok != nil {
		tok = p.peekedTok
		p.peekedTok = nil
	} else {
		var ok bool
		tok, ok = p.lex.next()
		if !ok {
			detail, cause, pos := p.lex.error()
			p.errPos = pos
			p.errCause = cause
			p.errDetail = detail
			panic(errParse)
		}
	}
	p.lastTok = tok
	if tok.kind == expected {
		return true
	}
	p.peekedTok = tok
	p.lastTok = nil

	return false
}

func (p *parser) raiseParseError(err error, detail string) {
	p.errCause = err
	p.errDetail = detail
	switch {
	case p.lastTok != nil:
		p.errPos = p.lastTok.pos
	case p.peekedTok != nil:
		p.errPos = p.peekedTok.pos
	default:
		p.errPos = p.lex.pos
	}
	panic(errParse)
}
