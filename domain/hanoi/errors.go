package hanoi

import "errors"

// Domain errors for puzzle operations.
var (
	// ErrInvalidTransition indicates a step that is illegal or does not match
	// the exact simulation of its action.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrMalformedResponse indicates oracle output that fails structural or
	// semantic parsing.
	ErrMalformedResponse = errors.New("malformed response")
)
