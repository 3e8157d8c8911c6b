package run

import "errors"

var (
	ErrRunNotFound  = errors.New("run: not found")
	ErrRunExists    = errors.New("run: id already stored")
	ErrInvalidRunID = errors.New("run: empty id")

	// ErrStepOutOfOrder means a step index did not equal the number of
	// steps already recorded.
	ErrStepOutOfOrder = errors.New("run: step out of order")
)
