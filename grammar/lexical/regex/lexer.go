package regex

import "strings"

type tokenKind string

const (
	tokenKindChar       tokenKind = "char"
	tokenKindEpsilon    tokenKind = "$"
	tokenKindRepeat     tokenKind = "*"
	tokenKindAlt        tokenKind = "|"
	tokenKindGroupOpen  tokenKind = "("
	tokenKindGroupClose tokenKind = ")"
	tokenKindReference  tokenKind = "reference"
	tokenKindEOF        tokenKind = "eof"
)

type token struct {
	kind tokenKind
	char rune
	name string
	pos  int
}

const nullChar = '\u0000'

// Escape sequences. Any other escaped character stands for itself, so `\(`, `\|`,
// `\$`, `\\` and so on are literals.
var escapes = map[rune]rune{
	'n': '\n',
	't': '\t',
	'_': ' ',
}

type lexer struct {
	src []rune
	pos int

	errCause  error
	errDetail string
	errPos    int
}

func newLexer(src string) *lexer {
	return &lexer{
		src: []rune(src),
	}
}

func (l *lexer) error() (string, error, int) {
	return l.errDetail, l.errCause, l.errPos
}

func (l *lexer) next() (*token, bool) {
	start := l.pos
	c, eof := l.read()
	if eof {
		return &token{kind: tokenKindEOF, pos: start}, true
	}

	switch c {
	case '*':
		return &token{kind: tokenKindRepeat, char: c, pos: start}, true
	case '|':
		return &token{kind: tokenKindAlt, char: c, pos: start}, true
	case '(':
		return &token{kind: tokenKindGroupOpen, char: c, pos: start}, true
	case ')':
		return &token{kind: tokenKindGroupClose, char: c, pos: start}, true
	case '$':
		return &token{kind: tokenKindEpsilon, char: c, pos: start}, true
	case '{':
		return l.nextReference(start)
	case '}':
		return l.fail(synErrRefNoInitiator, "", start)
	case ' ':
		return l.fail(synErrUnescapedBlank, "", start)
	case '\\':
		e, eof := l.read()
		if eof {
			return l.fail(synErrIncompletedEscSeq, "", start)
		}
		if r, ok := escapes[e]; ok {
			return &token{kind: tokenKindChar, char: r, pos: start}, true
		}
		return &token{kind: tokenKindChar, char: e, pos: start}, true
	}
	return &token{kind: tokenKindChar, char: c, pos: start}, true
}

// nextReference reads the rest of a `{name}` expression.
func (l *lexer) nextReference(start int) (*token, bool) {
	var b strings.Builder
	for {
		c, eof := l.read()
		if eof {
			return l.fail(synErrRefUnclosed, b.String(), start)
		}
		switch c {
		case '}':
			if b.Len() == 0 {
				return l.fail(synErrRefNoName, "", start)
			}
			return &token{kind: tokenKindReference, name: b.String(), pos: start}, true
		case '{':
			return l.fail(synErrRefNested, b.String(), start)
		}
		b.WriteRune(c)
	}
}

func (l *lexer) read() (rune, bool) {
	if l.pos >= len(l.src) {
		return nullChar, true
	}
	c := l.src[l.pos]
	l.pos++
	return c, false
}

func (l *lexer) fail(cause error, detail string, pos int) (*token, bool) {
	l.errCause = cause
	l.errDetail = detail
	l.errPos = pos
	return nil, false
}
