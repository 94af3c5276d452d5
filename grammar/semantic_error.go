package grammar

import spec "github.com/nihei9/ppjgen/spec/grammar"

type SemanticError struct {
	message string
}

func newSemanticError(message string) *SemanticError {
	return &SemanticError{
		message: message,
	}
}

func (e *SemanticError) Error() string {
	return e.message
}

func (e *SemanticError) Is(target error) bool {
	return target == spec.ErrMalformedGrammar
}

var (
	semErrDuplicateSymbol     = newSemanticError("a symbol is declared more than once")
	semErrKindClash           = newSemanticError("a symbol cannot be both a terminal and a non-terminal")
	semErrReservedName        = newSemanticError("reserved symbol name")
	semErrUndefinedSym        = newSemanticError("undefined symbol")
	semErrLHSNotNonTerminal   = newSemanticError("a left-hand side must be a declared non-terminal")
	semErrStartNoProduction   = newSemanticError("the start symbol has no production")
	semErrSyncNotTerminal     = newSemanticError("a synchronizing symbol must be a declared terminal")
	semErrDuplicateProduction = newSemanticError("duplicate production")
	semErrTooManySymbols      = newSemanticError("too many symbols")
)
