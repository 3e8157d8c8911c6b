package oracle

import (
	"errors"
	"fmt"
)

// ErrEmptyCompletion indicates the provider returned no reply text.
var ErrEmptyCompletion = errors.New("empty completion")

// ErrProviderUnavailable indicates the provider refused the call before it
// was sent, for example because a circuit breaker is open.
var ErrProviderUnavailable = errors.New("provider unavailable")

// ProviderError wraps any transport, quota or timeout failure raised while
// calling a provider. Callers treat it as transient.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// WrapError wraps err as a ProviderError unless it already is one.
func WrapError(provider string, err error) error {
	if err == nil {
		return nil
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return err
	}
	return &ProviderError{Provider: provider, Err: err}
}

// IsProviderError reports whether err came from a provider call.
func IsProviderError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}
