package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"davspay.backend/internal/domain/entities"
	domainerrors "davspay.backend/internal/domain/errors"
	"davspay.backend/internal/interfaces/http/middleware"
	"davspay.backend/internal/interfaces/http/response"
)

// AuthService is the account directory used by AuthHandler
type AuthService interface {
	Register(ctx context.Context, input *entities.RegisterInput) (*entities.AuthResponse, error)
	Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error)
	GetUserByID(ctx context.Context, id int64) (*entities.User, error)
	UpdateProfile(ctx context.Context, id int64, input *entities.UpdateProfileInput) (*entities.User, error)
}

// VerificationService is the verification workflow used by AuthHandler
type VerificationService interface {
	Submit(ctx context.Context, userID int64) (*entities.User, error)
	GetStatus(ctx context.Context, userID int64) (*entities.VerificationState, error)
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService         AuthService
	verificationService VerificationService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService AuthService, verificationService VerificationService) *AuthHandler {
	return &AuthHandler{
		authService:         authService,
		verificationService: verificationService,
	}
}

// Register handles user registration
// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var input entities.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid request body"))
		return
	}

	authResponse, err := h.authService.Register(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, toAppError(err))
		return
	}

	response.Success(c, http.StatusCreated, "Registration successful", gin.H{
		"user":         authResponse.User,
		"access_token": authResponse.AccessToken,
	})
}

// Login handles user login
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var input entities.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid request body"))
		return
	}

	authResponse, err := h.authService.Login(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, toAppError(err))
		return
	}

	response.Success(c, http.StatusOK, "Login successful", gin.H{
		"user":         authResponse.User,
		"access_token": authResponse.AccessToken,
	})
}

// Me returns the authenticated user's profile
// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Unauthorized"))
		return
	}

	user, err := h.authService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, toAppError(err))
		return
	}

	response.Success(c, http.StatusOK, "User retrieved successfully", gin.H{"user": user})
}

// UpdateProfile applies a partial profile update
// PUT /api/auth/update-profile
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Unauthorized"))
		return
	}

	var input entities.UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid request body"))
		return
	}

	user, err := h.authService.UpdateProfile(c.Request.Context(), userID, &input)
	if err != nil {
		response.Error(c, toAppError(err))
		return
	}

	response.Success(c, http.StatusOK, "Profile updated successfully", gin.H{"user": user})
}

// SubmitVerification moves the account into pending review
// POST /api/auth/submit-verification
func (h *AuthHandler) SubmitVerification(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Unauthorized"))
		return
	}

	user, err := h.verificationService.Submit(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, toAppError(err))
		return
	}

	response.Success(c, http.StatusOK, "Verification request submitted successfully.", gin.H{
		"user":                user,
		"verification_status": user.VerificationStatus,
	})
}

// VerificationStatus reports the account's verification state
// GET /api/auth/verification-status
func (h *AuthHandler) VerificationStatus(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Unauthorized"))
		return
	}

	state, err := h.verificationService.GetStatus(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, toAppError(err))
		return
	}

	response.Success(c, http.StatusOK, "Verification status retrieved", state)
}
