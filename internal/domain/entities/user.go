package entities

import (
	"time"

	"github.com/volatiletech/null/v8"
)

// VerificationStatus represents the account verification workflow state
type VerificationStatus string

const (
	VerificationNotSubmitted VerificationStatus = "not_submitted"
	VerificationPending      VerificationStatus = "pending"
)

// User represents a user entity
type User struct {
	ID                      int64              `json:"id"`
	Email                   string             `json:"email"`
	PasswordHash            string             `json:"-"`
	FullName                string             `json:"full_name"`
	CompanyName             string             `json:"company_name"`
	Phone                   string             `json:"phone"`
	IsActive                bool               `json:"-"`
	IsVerified              bool               `json:"is_verified"`
	VerificationStatus      VerificationStatus `json:"verification_status"`
	VerificationSubmittedAt null.Time          `json:"verification_submitted_at"`
	CreatedAt               time.Time          `json:"created_at"`
	UpdatedAt               time.Time          `json:"updated_at"`
}

// VerificationState returns the user's current verification workflow state
func (u *User) VerificationState() *VerificationState {
	return &VerificationState{
		Status:      u.VerificationStatus,
		SubmittedAt: u.VerificationSubmittedAt,
	}
}

// VerificationState is the read model of the verification workflow
type VerificationState struct {
	Status      VerificationStatus `json:"verification_status"`
	SubmittedAt null.Time          `json:"verification_submitted_at"`
}

// RegisterInput represents input for creating a user
type RegisterInput struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FullName    string `json:"full_name"`
	CompanyName string `json:"company_name"`
	Phone       string `json:"phone"`
}

// LoginInput represents input for user login
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileInput carries optional profile fields. Nil or blank fields are left untouched.
type UpdateProfileInput struct {
	FullName    *string `json:"full_name"`
	CompanyName *string `json:"company_name"`
	Phone       *string `json:"phone"`
}

// ProfileChanges is the validated set of columns a profile update will write
type ProfileChanges struct {
	FullName    null.String
	CompanyName null.String
	Phone       null.String
}

// IsEmpty reports whether no field would be written
func (c ProfileChanges) IsEmpty() bool {
	return !c.FullName.Valid && !c.CompanyName.Valid && !c.Phone.Valid
}

// AuthResponse represents authentication response
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	User        *User  `json:"user"`
}
