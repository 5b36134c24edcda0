package jwt

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultAccessExpiry is how long an issued access token stays valid
const DefaultAccessExpiry = 24 * time.Hour

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidSignature = errors.New("token signature is invalid")
)

// Claims represents JWT claims. The subject carries the user id and is the only
// claim callers may rely on.
type Claims struct {
	jwt.RegisteredClaims
}

// JWTService issues and validates access tokens
type JWTService struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// Option configures a JWTService
type Option func(*JWTService)

// WithClock overrides the time source used for issuing and validating tokens
func WithClock(now func() time.Time) Option {
	return func(s *JWTService) {
		s.now = now
	}
}

var signJWTToken = func(token *jwt.Token, secret []byte) (string, error) {
	return token.SignedString(secret)
}

// NewJWTService creates a new JWT service. A non-positive expiry falls back to DefaultAccessExpiry.
func NewJWTService(secret string, expiry time.Duration, opts ...Option) *JWTService {
	if expiry <= 0 {
		expiry = DefaultAccessExpiry
	}
	s := &JWTService{
		secret: []byte(secret),
		expiry: expiry,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Expiry returns the lifetime of issued tokens
func (s *JWTService) Expiry() time.Duration {
	return s.expiry
}

// Issue generates a signed access token for userID
func (s *JWTService) Issue(userID int64) (string, error) {
	now := s.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return signJWTToken(token, s.secret)
}

// Validate verifies a token and returns the user id it was issued for
func (s *JWTService) Validate(tokenString string) (int64, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return 0, ErrInvalidSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return 0, ErrExpiredToken
		default:
			return 0, ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return 0, ErrInvalidToken
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, ErrInvalidToken
	}
	return userID, nil
}
