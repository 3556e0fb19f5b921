package model

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by every component. Wrap with fmt.Errorf("...: %w")
// and classify with errors.Is.
var (
	ErrValidation           = errors.New("validation error")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrMalformedInput       = errors.New("malformed input")
	ErrUpstreamCall         = errors.New("upstream call failed")
	ErrUpstreamParse        = errors.New("upstream reply could not be parsed")
	ErrConfirmationRequired = errors.New("confirmation required")
)

// ProviderError is returned by vision model backends.
type ProviderError struct {
	Code       string
	Message    string
	Retryable  bool
	StatusCode int
	Cause      error
}

func (e *ProviderError) Error() string {
	if e == nil {
		return ""
	}
	return e.Code + ": " + e.Message
}

func (e *ProviderError) Unwrap() []error {
	if e == nil {
		return nil
	}
	if e.Cause == nil {
		return []error{ErrUpstreamCall}
	}
	return []error{ErrUpstreamCall, e.Cause}
}

// WrapUpstream makes sure a failed model call classifies as ErrUpstreamCall.
func WrapUpstream(err error) error {
	if err == nil || errors.Is(err, ErrUpstreamCall) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUpstreamCall, err)
}
