package lexical

import (
	"errors"
	"fmt"
)

// ErrMalformedLexSpec is the class of every error Parse reports. The concrete cause is
// one of the synErr values below.
var ErrMalformedLexSpec = errors.New("malformed lexical definition")

type SyntaxError struct {
	message string
}

func newSyntaxError(message string) *SyntaxError {
	return &SyntaxError{
		message: message,
	}
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error: %s", e.message)
}

func (e *SyntaxError) Is(target error) bool {
	return target == ErrMalformedLexSpec
}

var (
	// header
	synErrDefNoName         = newSyntaxError("a regular definition needs a name enclosed in {}")
	synErrDefNoPattern      = newSyntaxError("a regular definition needs a pattern")
	synErrUnknownDirective  = newSyntaxError("unknown directive; %X and %L are allowed")
	synErrDuplicateStates   = newSyntaxError("the %X directive appears more than once")
	synErrDuplicateTokens   = newSyntaxError("the %L directive appears more than once")
	synErrNoStates          = newSyntaxError("a lexical definition must declare at least one lexer state with %X")
	synErrUnexpectedHeading = newSyntaxError("a header line must be a regular definition or a directive")

	// rules
	synErrRuleNoState      = newSyntaxError("a rule must start with <state>")
	synErrRuleNoPattern    = newSyntaxError("a rule needs a pattern after its state")
	synErrRuleNoBlock      = newSyntaxError("a rule pattern must be followed by a line containing only {")
	synErrRuleNoToken      = newSyntaxError("a rule block needs a token name or - on its first line")
	synErrRuleUnclosed     = newSyntaxError("unclosed rule block; } is missing")
	synErrRuleInvalidToken = newSyntaxError("a token name must be a single word")
)
