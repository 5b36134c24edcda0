package repositories

import (
	"context"

	"davspay.backend/internal/domain/entities"
)

// UserRepository defines user data operations. Everything except GetByEmail treats
// deactivated accounts as missing.
type UserRepository interface {
	// Create inserts the user and fills in its ID and timestamps.
	// A duplicate email (case-insensitive) yields ErrAlreadyExists.
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id int64) (*entities.User, error)
	// GetByEmail matches case-insensitively and also returns deactivated accounts.
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	UpdateProfile(ctx context.Context, id int64, changes entities.ProfileChanges) (*entities.User, error)
	// MarkVerificationPending moves not_submitted to pending exactly once.
	// A second call yields ErrAlreadySubmitted.
	MarkVerificationPending(ctx context.Context, id int64) (*entities.User, error)
}
