package handlers

import (
	"errors"
	"net/http"

	domainerrors "davspay.backend/internal/domain/errors"
)

// toAppError maps domain failures onto the HTTP contract. Errors already carrying an
// AppError pass through; anything unrecognized becomes a 500 with the cause hidden.
func toAppError(err error) error {
	var appErr *domainerrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, domainerrors.ErrAlreadyExists):
		return domainerrors.Conflict("Email already registered")
	case errors.Is(err, domainerrors.ErrInvalidCredentials):
		return domainerrors.NewAppError(http.StatusUnauthorized, domainerrors.CodeInvalidCredentials, "Invalid email or password", err)
	case errors.Is(err, domainerrors.ErrAccountDeactivated):
		return domainerrors.NewAppError(http.StatusForbidden, domainerrors.CodeForbidden, "Account is deactivated. Please contact support.", err)
	case errors.Is(err, domainerrors.ErrNotFound):
		return domainerrors.NotFound("User not found")
	case errors.Is(err, domainerrors.ErrAlreadySubmitted):
		return domainerrors.NewAppError(http.StatusBadRequest, domainerrors.CodeConflict, "Verification already submitted", err)
	case errors.Is(err, domainerrors.ErrNoFieldsToUpdate):
		return domainerrors.NewAppError(http.StatusBadRequest, domainerrors.CodeInvalidInput, "No fields to update", err)
	case errors.Is(err, domainerrors.ErrUpstreamFailure):
		return domainerrors.Upstream(upstreamMessage(err), err)
	}
	return domainerrors.InternalError(err)
}

// providerMessager is implemented by gateway errors that carry a caller-safe message
type providerMessager interface {
	error
	ProviderMessage() string
}

func upstreamMessage(err error) string {
	var pm providerMessager
	if errors.As(err, &pm) && pm.ProviderMessage() != "" {
		return pm.ProviderMessage()
	}
	return "OTP service unavailable"
}
