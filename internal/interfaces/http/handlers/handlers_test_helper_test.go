package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"davspay.backend/internal/domain/entities"
	"davspay.backend/internal/interfaces/http/middleware"
)

type authServiceStub struct {
	registerFn      func(ctx context.Context, input *entities.RegisterInput) (*entities.AuthResponse, error)
	loginFn         func(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error)
	getUserByIDFn   func(ctx context.Context, id int64) (*entities.User, error)
	updateProfileFn func(ctx context.Context, id int64, input *entities.UpdateProfileInput) (*entities.User, error)
}

func (s authServiceStub) Register(ctx context.Context, input *entities.RegisterInput) (*entities.AuthResponse, error) {
	return s.registerFn(ctx, input)
}
func (s authServiceStub) Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error) {
	return s.loginFn(ctx, input)
}
func (s authServiceStub) GetUserByID(ctx context.Context, id int64) (*entities.User, error) {
	return s.getUserByIDFn(ctx, id)
}
func (s authServiceStub) UpdateProfile(ctx context.Context, id int64, input *entities.UpdateProfileInput) (*entities.User, error) {
	return s.updateProfileFn(ctx, id, input)
}

type verificationServiceStub struct {
	submitFn    func(ctx context.Context, userID int64) (*entities.User, error)
	getStatusFn func(ctx context.Context, userID int64) (*entities.VerificationState, error)
}

func (s verificationServiceStub) Submit(ctx context.Context, userID int64) (*entities.User, error) {
	return s.submitFn(ctx, userID)
}
func (s verificationServiceStub) GetStatus(ctx context.Context, userID int64) (*entities.VerificationState, error) {
	return s.getStatusFn(ctx, userID)
}

type otpServiceStub struct {
	sendFn   func(ctx context.Context, input *entities.SendOTPInput) (*entities.OTPSession, error)
	verifyFn func(ctx context.Context, input *entities.VerifyOTPInput) (*entities.OTPVerification, error)
}

func (s otpServiceStub) SendOTP(ctx context.Context, input *entities.SendOTPInput) (*entities.OTPSession, error) {
	return s.sendFn(ctx, input)
}
func (s otpServiceStub) VerifyOTP(ctx context.Context, input *entities.VerifyOTPInput) (*entities.OTPVerification, error) {
	return s.verifyFn(ctx, input)
}

// withUser injects an authenticated user id the way AuthMiddleware does
func withUser(id int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, id)
		c.Next()
	}
}

type envelope struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Code    string                 `json:"code"`
	Data    map[string]interface{} `json:"data"`
}

func doJSON(t *testing.T, r http.Handler, method, path, body string, headers ...string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw), "body: %s", w.Body.String())
	require.Contains(t, raw, "message", "every envelope carries a message: %s", w.Body.String())

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}
