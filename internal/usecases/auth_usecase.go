package usecases

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"

	"davspay.backend/internal/domain/entities"
	domainerrors "davspay.backend/internal/domain/errors"
	"davspay.backend/internal/domain/repositories"
	"davspay.backend/pkg/crypto"
	"davspay.backend/pkg/jwt"
	"davspay.backend/pkg/logger"
	"davspay.backend/pkg/metrics"
	"davspay.backend/pkg/utils"
)

const (
	minPasswordChars = 8
	maxNameChars     = 255
	maxPhoneChars    = 50
)

// AuthUsecase handles registration, login and profile management
type AuthUsecase struct {
	userRepo   repositories.UserRepository
	hasher     *crypto.PasswordHasher
	jwtService *jwt.JWTService
}

// NewAuthUsecase creates a new auth usecase
func NewAuthUsecase(
	userRepo repositories.UserRepository,
	hasher *crypto.PasswordHasher,
	jwtService *jwt.JWTService,
) *AuthUsecase {
	return &AuthUsecase{
		userRepo:   userRepo,
		hasher:     hasher,
		jwtService: jwtService,
	}
}

// Register creates an account and issues its first access token
func (u *AuthUsecase) Register(ctx context.Context, input *entities.RegisterInput) (*entities.AuthResponse, error) {
	if input == nil {
		return nil, domainerrors.ValidationError("Request body is required")
	}

	email := utils.NormalizeEmail(input.Email)
	fullName := utils.Sanitize(input.FullName)
	companyName := utils.Sanitize(input.CompanyName)
	phone := utils.Sanitize(input.Phone)

	switch {
	case email == "":
		return nil, domainerrors.ValidationError("email is required")
	case input.Password == "":
		return nil, domainerrors.ValidationError("password is required")
	case fullName == "":
		return nil, domainerrors.ValidationError("full_name is required")
	}

	if !utils.IsValidEmail(email) || len(email) > maxNameChars {
		return nil, domainerrors.ValidationError("Invalid email format")
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}
	if err := validateLength("full_name", fullName, maxNameChars); err != nil {
		return nil, err
	}
	if err := validateLength("company_name", companyName, maxNameChars); err != nil {
		return nil, err
	}
	if err := validateLength("phone", phone, maxPhoneChars); err != nil {
		return nil, err
	}

	passwordHash, err := u.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &entities.User{
		Email:        email,
		PasswordHash: passwordHash,
		FullName:     fullName,
		CompanyName:  companyName,
		Phone:        phone,
	}
	if err := u.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyExists) {
			metrics.ObserveAuth("register", "conflict")
		} else {
			metrics.ObserveAuth("register", "error")
		}
		return nil, err
	}

	token, err := u.jwtService.Issue(user.ID)
	if err != nil {
		metrics.ObserveAuth("register", "error")
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	metrics.ObserveAuth("register", "success")
	logger.Info(ctx, "User registered", zap.Int64("user_id", user.ID))
	return &entities.AuthResponse{AccessToken: token, User: user}, nil
}

// Authenticate checks credentials. The password is verified before the account state is looked at;
// unknown emails still pay for one bcrypt comparison.
func (u *AuthUsecase) Authenticate(ctx context.Context, email, password string) (*entities.User, error) {
	user, err := u.findForLogin(ctx, utils.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}

	if user == nil {
		u.hasher.VerifyDummy(password)
		return nil, domainerrors.ErrInvalidCredentials
	}
	if !u.hasher.Verify(password, user.PasswordHash) {
		return nil, domainerrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, domainerrors.ErrAccountDeactivated
	}
	return user, nil
}

// Login authenticates and issues an access token
func (u *AuthUsecase) Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error) {
	if input == nil || utils.Sanitize(input.Email) == "" || input.Password == "" {
		return nil, domainerrors.ValidationError("Email and password are required")
	}

	user, err := u.Authenticate(ctx, input.Email, input.Password)
	if err != nil {
		switch {
		case errors.Is(err, domainerrors.ErrInvalidCredentials):
			metrics.ObserveAuth("login", "invalid_credentials")
		case errors.Is(err, domainerrors.ErrAccountDeactivated):
			metrics.ObserveAuth("login", "deactivated")
		default:
			metrics.ObserveAuth("login", "error")
		}
		return nil, err
	}

	token, err := u.jwtService.Issue(user.ID)
	if err != nil {
		metrics.ObserveAuth("login", "error")
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	metrics.ObserveAuth("login", "success")
	return &entities.AuthResponse{AccessToken: token, User: user}, nil
}

// GetUserByID returns an active user
func (u *AuthUsecase) GetUserByID(ctx context.Context, id int64) (*entities.User, error) {
	return u.userRepo.GetByID(ctx, id)
}

// UpdateProfile applies the present, non-blank fields of input
func (u *AuthUsecase) UpdateProfile(ctx context.Context, id int64, input *entities.UpdateProfileInput) (*entities.User, error) {
	if input == nil {
		return nil, domainerrors.ErrNoFieldsToUpdate
	}

	var changes entities.ProfileChanges
	if v, ok := utils.SanitizePtr(input.FullName); ok {
		if err := validateLength("full_name", v, maxNameChars); err != nil {
			return nil, err
		}
		changes.FullName = null.StringFrom(v)
	}
	if v, ok := utils.SanitizePtr(input.CompanyName); ok {
		if err := validateLength("company_name", v, maxNameChars); err != nil {
			return nil, err
		}
		changes.CompanyName = null.StringFrom(v)
	}
	if v, ok := utils.SanitizePtr(input.Phone); ok {
		if err := validateLength("phone", v, maxPhoneChars); err != nil {
			return nil, err
		}
		changes.Phone = null.StringFrom(v)
	}

	if changes.IsEmpty() {
		return nil, domainerrors.ErrNoFieldsToUpdate
	}
	return u.userRepo.UpdateProfile(ctx, id, changes)
}

// findForLogin returns the stored user for email, or nil when there is none
func (u *AuthUsecase) findForLogin(ctx context.Context, email string) (*entities.User, error) {
	if email == "" {
		return nil, nil
	}
	user, err := u.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordChars {
		return domainerrors.ValidationError("Password must be at least 8 characters long")
	}
	if len(password) > crypto.MaxPasswordBytes {
		return domainerrors.ValidationError(fmt.Sprintf("Password must be at most %d bytes long", crypto.MaxPasswordBytes))
	}
	return nil
}

func validateLength(field, value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return domainerrors.ValidationError(fmt.Sprintf("%s must be at most %d characters", field, max))
	}
	return nil
}
