package repositories

import (
	"context"

	"davspay.backend/internal/domain/entities"
)

// OTPGateway sends and checks one-time passwords through an SMS provider
type OTPGateway interface {
	SendOTP(ctx context.Context, phone string) (*entities.OTPSession, error)
	VerifyOTP(ctx context.Context, sessionID, otp string) (*entities.OTPVerification, error)
}
