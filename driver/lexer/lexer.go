package lexer

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nihei9/ppjgen/grammar/lexical"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'ppjgen.lexer'.
func tracer() tracing.Trace {
	return tracing.Select("ppjgen.lexer")
}

// ErrNoProgress is returned when rewinds keep the lexer at the same position for
// longer than it takes to visit every lexer state.
var ErrNoProgress = errors.New("the lexer makes no progress; rules rewind to the start of their matches")

// Token representes a token.
type Token struct {
	// RuleID is the ID of the rule that matched the lexeme. It is -1 for the EOF
	// token and for error tokens.
	RuleID int

	// Name is the token name of the rule. It is empty for the EOF token and for error
	// tokens.
	Name string

	// State is the lexer state the lexeme was matched in.
	State string

	// Row is the line the lexeme starts on. Lines are counted from 1 and advance only
	// through the NOVI_REDAK command.
	Row int

	// Pos is the offset of the lexeme in code points.
	Pos int

	Lexeme string

	// When this field is true, it means the token is the EOF token.
	EOF bool

	// When this field is true, it means the token is an error token. Its lexeme is a
	// run of input no rule matches; the run never continues past a line break.
	Invalid bool

	silent bool
}

// String formats a token as `NAME line lexeme`.
func (t *Token) String() string {
	switch {
	case t.EOF:
		return fmt.Sprintf("<eof> %v", t.Row)
	case t.Invalid:
		return fmt.Sprintf("<invalid> %v %q", t.Row, t.Lexeme)
	}
	return fmt.Sprintf("%v %v %v", t.Name, t.Row, t.Lexeme)
}

type LexerOption func(l *Lexer) error

// InitialState starts the lexer in the named lexer state instead of the first one.
func InitialState(name string) LexerOption {
	return func(l *Lexer) error {
		s, ok := l.tab.StateByName(name)
		if !ok {
			return fmt.Errorf("undefined lexer state: %v", name)
		}
		l.state.lexState = s.ID
		return nil
	}
}

// InitialRow sets the number of the first line.
func InitialRow(row int) LexerOption {
	return func(l *Lexer) error {
		if row < 1 {
			return fmt.Errorf("a line number must be greater than or equal to 1: %v", row)
		}
		l.state.row = row
		return nil
	}
}

type lexerState struct {
	srcPtr   int
	row      int
	lexState lexical.StateID
}

type Lexer struct {
	tab      *lexical.LexerTable
	src      []rune
	state    lexerState
	ruleSets []*ruleSet
	tokBuf   []*Token

	// stalled counts consecutive matches that consumed nothing.
	stalled int
}

// NewLexer returns a new lexer.
func NewLexer(tab *lexical.LexerTable, src io.Reader, opts ...LexerOption) (*Lexer, error) {
	b, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	l := &Lexer{
		tab: tab,
		src: []rune(string(b)),
		state: lexerState{
			srcPtr:   0,
			row:      1,
			lexState: lexical.StateIDInitial,
		},
		ruleSets: newRuleSets(tab),
	}
	for _, opt := range opts {
		err := opt(l)
		if err != nil {
			return nil, err
		}
	}

	return l, nil
}

// State returns the name of the current lexer state.
func (l *Lexer) State() string {
	return l.tab.States[l.state.lexState].Name
}

// Row returns the current line number.
func (l *Lexer) Row() int {
	return l.state.row
}

// Next returns a next token. Matches of rules without a token name are skipped.
func (l *Lexer) Next() (*Token, error) {
	for {
		tok, err := l.nextBatched()
		if err != nil {
			return nil, err
		}
		if tok.silent {
			continue
		}
		return tok, nil
	}
}

// ReadAll returns the remaining tokens, the EOF token included.
func (l *Lexer) ReadAll() ([]*Token, error) {
	var toks []*Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.EOF {
			return toks, nil
		}
	}
}

// nextBatched merges consecutive error tokens into one.
func (l *Lexer) nextBatched() (*Token, error) {
	if len(l.tokBuf) > 0 {
		tok := l.tokBuf[0]
		l.tokBuf = l.tokBuf[1:]
		return tok, nil
	}

	tok, err := l.next()
	if err != nil {
		return nil, err
	}
	if !tok.Invalid {
		return tok, nil
	}
	errTok := tok
	for !strings.HasSuffix(errTok.Lexeme, "\n") {
		tok, err = l.next()
		if err != nil {
			return nil, err
		}
		if !tok.Invalid {
			l.tokBuf = append(l.tokBuf, tok)
			break
		}
		errTok.Lexeme += tok.Lexeme
	}
	tracer().Debugf("no rule matches %q on line %v", errTok.Lexeme, errTok.Row)

	return errTok, nil
}

// next matches the longest prefix of the remaining input. Among rules matching the
// same length, the one declared first wins. When no rule matches, it returns an
// error token holding a single character.
func (l *Lexer) next() (*Token, error) {
	lexState := l.state.lexState
	start := l.state.srcPtr
	if start >= len(l.src) {
		return &Token{
			RuleID: -1,
			State:  l.tab.States[lexState].Name,
			Row:    l.state.row,
			Pos:    start,
			EOF:    true,
		}, nil
	}

	set := l.ruleSets[lexState]
	set.reset()
	var rule *lexical.Rule
	length := 0
	for i := start; i < len(l.src); i++ {
		accepted, alive := set.push(l.src[i])
		if accepted != nil {
			rule = accepted
			length = i - start + 1
		}
		if !alive {
			break
		}
	}

	if rule == nil {
		l.state.srcPtr++
		return &Token{
			RuleID:  -1,
			State:   l.tab.States[lexState].Name,
			Row:     l.state.row,
			Pos:     start,
			Lexeme:  string(l.src[start]),
			Invalid: true,
		}, nil
	}

	tok := &Token{
		RuleID: rule.ID,
		State:  l.tab.States[lexState].Name,
		Row:    l.state.row,
		Pos:    start,
		silent: !rule.Emits(),
	}
	if rule.Emits() {
		tok.Name = rule.Token
	}
	for _, cmd := range rule.Commands {
		switch cmd := cmd.(type) {
		case lexical.EnterState:
			l.state.lexState = cmd.State
		case lexical.NewLine:
			l.state.row++
		case lexical.Rewind:
			if cmd.N < length {
				length = cmd.N
			}
		}
	}
	tok.Lexeme = string(l.src[start : start+length])
	l.state.srcPtr += length

	if length == 0 {
		l.stalled++
		if l.stalled > len(l.tab.States) {
			return nil, fmt.Errorf("%w: rule #%v at line %v", ErrNoProgress, rule.ID, tok.Row)
		}
	} else {
		l.stalled = 0
	}

	return tok, nil
}
