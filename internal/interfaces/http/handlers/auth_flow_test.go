package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"davspay.backend/internal/infrastructure/repositories"
	"davspay.backend/internal/interfaces/http/middleware"
	"davspay.backend/internal/testutil"
	"davspay.backend/internal/usecases"
	"davspay.backend/pkg/crypto"
	"davspay.backend/pkg/jwt"
)

func newAuthFlowRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.OpenDB(t)
	userRepo := repositories.NewUserRepository(db)
	uow := repositories.NewUnitOfWork(db)
	tokens := jwt.NewJWTService("flow-test-secret", time.Hour)

	h := NewAuthHandler(
		usecases.NewAuthUsecase(userRepo, crypto.NewPasswordHasher(bcrypt.MinCost), tokens),
		usecases.NewVerificationUsecase(userRepo, uow),
	)

	r := gin.New()
	api := r.Group("/api/auth")
	api.POST("/register", h.Register)
	api.POST("/login", h.Login)
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(tokens))
	protected.GET("/me", h.Me)
	protected.PUT("/update-profile", h.UpdateProfile)
	protected.POST("/submit-verification", h.SubmitVerification)
	protected.GET("/verification-status", h.VerificationStatus)
	return r
}

func TestAuthFlow_RegisterLoginProfileVerification(t *testing.T) {
	r := newAuthFlowRouter(t)

	w, env := doJSON(t, r, http.MethodPost, "/api/auth/register",
		`{"email":"  Alice@Example.com ","password":"Password123!","full_name":" Alice ","company_name":"Acme"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "password")
	user := env.Data["user"].(map[string]interface{})
	assert.Equal(t, "alice@example.com", user["email"])
	assert.Equal(t, "Alice", user["full_name"])
	assert.Equal(t, "not_submitted", user["verification_status"])
	assert.Equal(t, false, user["is_verified"])

	w, _ = doJSON(t, r, http.MethodPost, "/api/auth/register",
		`{"email":"ALICE@example.com","password":"Password123!","full_name":"Other"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, env = doJSON(t, r, http.MethodPost, "/api/auth/login", `{"email":"alice@EXAMPLE.com","password":"Password123!"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token := env.Data["access_token"].(string)
	require.NotEmpty(t, token)
	bearer := "Bearer " + token

	w, env = doJSON(t, r, http.MethodGet, "/api/auth/me", "", "Authorization", bearer)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice@example.com", env.Data["user"].(map[string]interface{})["email"])
	assert.NotContains(t, w.Body.String(), "password")

	w, env = doJSON(t, r, http.MethodPut, "/api/auth/update-profile", `{"phone":"+919999999999"}`, "Authorization", bearer)
	require.Equal(t, http.StatusOK, w.Code)
	updated := env.Data["user"].(map[string]interface{})
	assert.Equal(t, "+919999999999", updated["phone"])
	assert.Equal(t, "Alice", updated["full_name"])

	w, env = doJSON(t, r, http.MethodGet, "/api/auth/verification-status", "", "Authorization", bearer)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "not_submitted", env.Data["verification_status"])
	assert.Nil(t, env.Data["verification_submitted_at"])

	w, env = doJSON(t, r, http.MethodPost, "/api/auth/submit-verification", "", "Authorization", bearer)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "pending", env.Data["verification_status"])

	w, env = doJSON(t, r, http.MethodPost, "/api/auth/submit-verification", "", "Authorization", bearer)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Verification already submitted", env.Message)

	w, env = doJSON(t, r, http.MethodGet, "/api/auth/verification-status", "", "Authorization", bearer)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pending", env.Data["verification_status"])
	assert.NotNil(t, env.Data["verification_submitted_at"])
}

func TestAuthFlow_LoginFailuresAreIndistinguishable(t *testing.T) {
	r := newAuthFlowRouter(t)

	w, _ := doJSON(t, r, http.MethodPost, "/api/auth/register",
		`{"email":"bob@example.com","password":"Password123!","full_name":"Bob"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	wrong, env := doJSON(t, r, http.MethodPost, "/api/auth/login", `{"email":"bob@example.com","password":"nope-nope"}`)
	unknown, _ := doJSON(t, r, http.MethodPost, "/api/auth/login", `{"email":"ghost@example.com","password":"nope-nope"}`)

	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, "Invalid email or password", env.Message)
	assert.Equal(t, wrong.Code, unknown.Code)
	assert.Equal(t, wrong.Body.String(), unknown.Body.String())
}

func TestAuthFlow_ProtectedRoutesRequireToken(t *testing.T) {
	r := newAuthFlowRouter(t)

	w, env := doJSON(t, r, http.MethodGet, "/api/auth/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Authorization header is required", env.Message)

	w, env = doJSON(t, r, http.MethodGet, "/api/auth/me", "", "Authorization", "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid token", env.Message)
}
