package main

import (
	"github.com/gin-gonic/gin"

	"davspay.backend/internal/interfaces/http/handlers"
)

type routeDeps struct {
	authHandler    *handlers.AuthHandler
	otpHandler     *handlers.OTPHandler
	authMiddleware gin.HandlerFunc
	idempotency    gin.HandlerFunc
}

type endpoint struct {
	Name         string `json:"name"`
	Method       string `json:"method"`
	Path         string `json:"path"`
	RequiresAuth bool   `json:"requires_auth"`
}

var authEndpoints = []endpoint{
	{Name: "register", Method: "POST", Path: "/api/auth/register"},
	{Name: "login", Method: "POST", Path: "/api/auth/login"},
	{Name: "me", Method: "GET", Path: "/api/auth/me", RequiresAuth: true},
	{Name: "update-profile", Method: "PUT", Path: "/api/auth/update-profile", RequiresAuth: true},
	{Name: "submit-verification", Method: "POST", Path: "/api/auth/submit-verification", RequiresAuth: true},
	{Name: "verification-status", Method: "GET", Path: "/api/auth/verification-status", RequiresAuth: true},
	{Name: "send-otp", Method: "POST", Path: "/api/auth/send-otp"},
	{Name: "verify-otp", Method: "POST", Path: "/api/auth/verify-otp"},
}

func registerAuthRoutes(r *gin.Engine, d routeDeps) {
	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			// Public
			auth.POST("/register", d.idempotency, d.authHandler.Register)
			auth.POST("/login", d.authHandler.Login)
			auth.POST("/send-otp", d.idempotency, d.otpHandler.SendOTP)
			auth.POST("/verify-otp", d.otpHandler.VerifyOTP)

			// Protected
			auth.GET("/me", d.authMiddleware, d.authHandler.Me)
			auth.PUT("/update-profile", d.authMiddleware, d.authHandler.UpdateProfile)
			auth.POST("/submit-verification", d.authMiddleware, d.authHandler.SubmitVerification)
			auth.GET("/verification-status", d.authMiddleware, d.authHandler.VerificationStatus)
		}
	}
}
