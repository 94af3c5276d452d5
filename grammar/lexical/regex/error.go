package regex

import (
	"errors"
	"fmt"
)

// ErrMalformedRegex is the class of every error the parser reports. Use errors.Is to
// test for it; the concrete cause is one of the synErr values below.
var ErrMalformedRegex = errors.New("malformed regular expression")

var (
	// lexical errors
	synErrIncompletedEscSeq = fmt.Errorf("incompleted escape sequence; unexpected EOF following \\")
	synErrUnescapedBlank    = fmt.Errorf("a blank must be escaped as \\_")
	synErrRefUnclosed       = fmt.Errorf("unclosed reference expression")
	synErrRefNested         = fmt.Errorf("a reference expression cannot contain {")
	synErrRefNoName         = fmt.Errorf("a reference expression must have a name")
	synErrRefNoInitiator    = fmt.Errorf("} needs preceding {")

	// syntax errors
	synErrUnexpectedToken  = fmt.Errorf("unexpected token")
	synErrNullPattern      = fmt.Errorf("a pattern must be a non-empty sequence; use $ for the empty word")
	synErrAltLackOfOperand = fmt.Errorf("an alternation expression must have operands")
	synErrRepNoTarget      = fmt.Errorf("a repeat expression must have an operand")
	synErrGroupNoElem      = fmt.Errorf("a grouping expression must include at least one character")
	synErrGroupUnclosed    = fmt.Errorf("unclosed grouping expression")
	synErrGroupNoInitiator = fmt.Errorf(") needs preceding (")
	synErrGroupInvalidForm = fmt.Errorf("invalid grouping expression")
	synErrRefUndefined     = fmt.Errorf("undefined reference")
)

// ParseError describes why a pattern could not be parsed. Offset counts runes from the
// beginning of the pattern.
type ParseError struct {
	Pattern string
	Offset  int
	Cause   error
	Detail  string
}

func (e *ParseError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%v: %v: %v (pattern: %q, offset: %v)", ErrMalformedRegex, e.Cause, e.Detail, e.Pattern, e.Offset)
	}
	return fmt.Sprintf("%v: %v (pattern: %q, offset: %v)", ErrMalformedRegex, e.Cause, e.Pattern, e.Offset)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

func (e *ParseError) Is(target error) bool {
	return target == ErrMalformedRegex
}
