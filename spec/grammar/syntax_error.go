package grammar

import (
	"errors"
	"fmt"
)

// ErrMalformedGrammar is the class of every error found while loading a grammar, the
// semantic errors reported by the grammar builder included.
var ErrMalformedGrammar = errors.New("malformed grammar")

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
	return target == ErrMalformedGrammar
}

var (
	// directives
	synErrUnknownDirective   = newSyntaxError("unknown directive; %V, %T, and %Syn are allowed")
	synErrDuplicateDirective = newSyntaxError("a directive appears more than once")
	synErrNoNonTerminals     = newSyntaxError("a grammar must declare at least one non-terminal with %V")
	synErrDirectiveNoSymbol  = newSyntaxError("a directive needs at least one symbol")

	// productions
	synErrMalformedLHS       = newSyntaxError("a left-hand side must be a single <name> on its own line")
	synErrProductionNoLHS    = newSyntaxError("a production must follow a left-hand side line")
	synErrEmptyMarkerInWord  = newSyntaxError("the empty marker $ must be the only symbol of a production")
	synErrUnexpectedLine     = newSyntaxError("a line must be a directive, a left-hand side, or a production starting with a blank")
	synErrDirectiveAfterRule = newSyntaxError("directives must precede productions")
)
