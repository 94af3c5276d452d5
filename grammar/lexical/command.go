package lexical

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownLexerCommand is reported for a command line whose keyword is unknown or
// whose argument is missing or invalid. A definition with such a line cannot be
// compiled.
var ErrUnknownLexerCommand = errors.New("unknown lexer command")

// Command is an action a rule performs when it wins a match. Commands run in the
// order they are declared.
type Command interface {
	fmt.Stringer
	isCommand()
}

// EnterState switches the lexer to another lexer state.
type EnterState struct {
	State StateID
	Name  string
}

func (EnterState) isCommand() {}

func (c EnterState) String() string {
	return fmt.Sprintf("UDJI_U_STANJE %v", c.Name)
}

// NewLine increments the line counter. The token of the same match still reports
// the line it started on.
type NewLine struct{}

func (NewLine) isCommand() {}

func (NewLine) String() string {
	return "NOVI_REDAK"
}

// Rewind keeps the first N characters of the match and makes the lexer resume right
// after them.
type Rewind struct {
	N int
}

func (Rewind) isCommand() {}

func (c Rewind) String() string {
	return fmt.Sprintf("VRATI_SE %v", c.N)
}

const (
	cmdNewLine      = "NOVI_REDAK"
	cmdEnterState   = "UDJI_U_STANJE"
	cmdRewind       = "VRATI_SE"
	cmdNewLineEN    = "NEWLINE"
	cmdEnterStateEN = "ENTER"
	cmdRewindEN     = "REWIND"
)

func parseCommand(text string, states map[string]StateID) (Command, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty command", ErrUnknownLexerCommand)
	}
	switch fields[0] {
	case cmdNewLine, cmdNewLineEN:
		if len(fields) != 1 {
			return nil, fmt.Errorf("%w: %v takes no argument", ErrUnknownLexerCommand, fields[0])
		}
		return NewLine{}, nil
	case cmdEnterState, cmdEnterStateEN:
		if len(fields) != 2 {
			return nil, fmt.Errorf("%w: %v takes a lexer state", ErrUnknownLexerCommand, fields[0])
		}
		id, ok := states[fields[1]]
		if !ok {
			return nil, fmt.Errorf("%w: undefined lexer state %v", ErrUnknownLexerCommand, fields[1])
		}
		return EnterState{
			State: id,
			Name:  fields[1],
		}, nil
	case cmdRewind, cmdRewindEN:
		if len(fields) != 2 {
			return nil, fmt.Errorf("%w: %v takes a character count", ErrUnknownLexerCommand, fields[0])
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: %v is not a character count", ErrUnknownLexerCommand, fields[1])
		}
		return Rewind{
			N: n,
		}, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownLexerCommand, fields[0])
}
