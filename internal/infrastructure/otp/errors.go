package otp

import (
	domainerrors "davspay.backend/internal/domain/errors"
)

// GatewayError reports that the OTP provider could not complete a request.
// Message is safe to show to the caller.
type GatewayError struct {
	Message string
	Err     error
}

func newGatewayError(message string, cause error) *GatewayError {
	return &GatewayError{Message: message, Err: cause}
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes both ErrUpstreamFailure and the underlying cause to errors.Is
func (e *GatewayError) Unwrap() []error {
	if e.Err == nil {
		return []error{domainerrors.ErrUpstreamFailure}
	}
	return []error{domainerrors.ErrUpstreamFailure, e.Err}
}

// ProviderMessage returns the message that may be shown to API callers
func (e *GatewayError) ProviderMessage() string {
	return e.Message
}
