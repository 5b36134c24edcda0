package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"davspay.backend/internal/domain/entities"
	domainerrors "davspay.backend/internal/domain/errors"
	"davspay.backend/internal/interfaces/http/response"
)

// OTPService relays phone OTP requests
type OTPService interface {
	SendOTP(ctx context.Context, input *entities.SendOTPInput) (*entities.OTPSession, error)
	VerifyOTP(ctx context.Context, input *entities.VerifyOTPInput) (*entities.OTPVerification, error)
}

// OTPHandler handles phone OTP endpoints
type OTPHandler struct {
	otpService OTPService
}

// NewOTPHandler creates a new OTP handler
func NewOTPHandler(otpService OTPService) *OTPHandler {
	return &OTPHandler{otpService: otpService}
}

// SendOTP texts a one-time code to a phone
// POST /api/auth/send-otp
func (h *OTPHandler) SendOTP(c *gin.Context) {
	var input entities.SendOTPInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest("Phone number is required"))
		return
	}

	session, err := h.otpService.SendOTP(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, toAppError(err))
		return
	}

	response.Success(c, http.StatusOK, "OTP sent successfully", session)
}

// VerifyOTP checks a one-time code against its session
// POST /api/auth/verify-otp
func (h *OTPHandler) VerifyOTP(c *gin.Context) {
	var input entities.VerifyOTPInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest("session_id and otp are required"))
		return
	}

	result, err := h.otpService.VerifyOTP(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, toAppError(err))
		return
	}
	if !result.Verified() {
		response.Error(c, domainerrors.BadRequest(result.Details))
		return
	}

	response.Success(c, http.StatusOK, "OTP verified successfully", nil)
}
