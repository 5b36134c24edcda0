package usecases

import (
	"context"
	"regexp"

	"davspay.backend/internal/domain/entities"
	domainerrors "davspay.backend/internal/domain/errors"
	"davspay.backend/internal/domain/repositories"
	"davspay.backend/pkg/utils"
)

var (
	phonePattern     = regexp.MustCompile(`^\+?[0-9]{6,15}$`)
	otpCodePattern   = regexp.MustCompile(`^[0-9]{4,8}$`)
	sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9-]{1,128}$`)
)

// OTPUsecase relays phone OTP requests to the SMS provider. It never touches the user store.
type OTPUsecase struct {
	gateway repositories.OTPGateway
}

// NewOTPUsecase creates a new OTP usecase
func NewOTPUsecase(gateway repositories.OTPGateway) *OTPUsecase {
	return &OTPUsecase{gateway: gateway}
}

// SendOTP asks the provider to text a code to the phone and returns the session handle
func (u *OTPUsecase) SendOTP(ctx context.Context, input *entities.SendOTPInput) (*entities.OTPSession, error) {
	if input == nil {
		return nil, domainerrors.ValidationError("Phone number is required")
	}
	phone := utils.Sanitize(input.Phone)
	if phone == "" {
		return nil, domainerrors.ValidationError("Phone number is required")
	}
	// phone becomes a provider URL path segment
	if !phonePattern.MatchString(phone) {
		return nil, domainerrors.ValidationError("Invalid phone number format")
	}
	return u.gateway.SendOTP(ctx, phone)
}

// VerifyOTP checks a code against a previously issued session
func (u *OTPUsecase) VerifyOTP(ctx context.Context, input *entities.VerifyOTPInput) (*entities.OTPVerification, error) {
	if input == nil {
		return nil, domainerrors.ValidationError("session_id and otp are required")
	}
	sessionID := utils.Sanitize(input.SessionID)
	code := utils.Sanitize(input.OTP)
	if sessionID == "" || code == "" {
		return nil, domainerrors.ValidationError("session_id and otp are required")
	}
	if !sessionIDPattern.MatchString(sessionID) {
		return nil, domainerrors.ValidationError("Invalid session_id format")
	}
	if !otpCodePattern.MatchString(code) {
		return nil, domainerrors.ValidationError("Invalid OTP format")
	}
	return u.gateway.VerifyOTP(ctx, sessionID, code)
}
