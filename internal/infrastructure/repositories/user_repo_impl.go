package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"

	"davspay.backend/internal/domain/entities"
	domainerrors "davspay.backend/internal/domain/errors"
	"davspay.backend/internal/infrastructure/models"
)

// UserRepository implements user data operations
type UserRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db, now: time.Now}
}

// Create creates a new active, unverified user
func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	now := r.now().UTC()
	m := &models.User{
		Email:              user.Email,
		PasswordHash:       user.PasswordHash,
		FullName:           user.FullName,
		CompanyName:        user.CompanyName,
		Phone:              user.Phone,
		IsActive:           true,
		IsVerified:         false,
		VerificationStatus: string(entities.VerificationNotSubmitted),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := GetDB(ctx, r.db).WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}

	*user = *r.toEntity(m)
	return nil
}

// GetByID gets an active user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*entities.User, error) {
	var m models.User
	err := GetDB(ctx, r.db).WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// GetByEmail gets a user by email, ignoring case. Deactivated accounts are returned
// so that login can tell them apart from unknown emails.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	var m models.User
	err := GetDB(ctx, r.db).WithContext(ctx).
		Where("LOWER(email) = LOWER(?)", email).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// UpdateProfile writes the supplied profile fields in a single statement and returns the fresh row
func (r *UserRepository) UpdateProfile(ctx context.Context, id int64, changes entities.ProfileChanges) (*entities.User, error) {
	if changes.IsEmpty() {
		return nil, domainerrors.ErrNoFieldsToUpdate
	}

	updates := map[string]interface{}{
		"updated_at": r.now().UTC(),
	}
	if changes.FullName.Valid {
		updates["full_name"] = changes.FullName.String
	}
	if changes.CompanyName.Valid {
		updates["company_name"] = changes.CompanyName.String
	}
	if changes.Phone.Valid {
		updates["phone"] = changes.Phone.String
	}

	result := GetDB(ctx, r.db).WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND is_active = ?", id, true).
		Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, domainerrors.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// MarkVerificationPending moves the user from not_submitted to pending.
// The status guard in the WHERE clause makes concurrent submissions race on a single row update.
func (r *UserRepository) MarkVerificationPending(ctx context.Context, id int64) (*entities.User, error) {
	now := r.now().UTC()
	db := GetDB(ctx, r.db).WithContext(ctx)

	result := db.Model(&models.User{}).
		Where("id = ? AND is_active = ? AND verification_status = ?", id, true, string(entities.VerificationNotSubmitted)).
		Updates(map[string]interface{}{
			"verification_status":       string(entities.VerificationPending),
			"verification_submitted_at": now,
			"updated_at":                now,
		})
	if result.Error != nil {
		return nil, result.Error
	}

	user, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if result.RowsAffected == 0 {
		return nil, domainerrors.ErrAlreadySubmitted
	}
	return user, nil
}

const pqUniqueViolation = pq.ErrorCode("23505")

// isUniqueViolation recognizes duplicate keys from GORM's translated errors and from lib/pq directly
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

func (r *UserRepository) toEntity(m *models.User) *entities.User {
	return &entities.User{
		ID:                      m.ID,
		Email:                   m.Email,
		PasswordHash:            m.PasswordHash,
		FullName:                m.FullName,
		CompanyName:             m.CompanyName,
		Phone:                   m.Phone,
		IsActive:                m.IsActive,
		IsVerified:              m.IsVerified,
		VerificationStatus:      entities.VerificationStatus(m.VerificationStatus),
		VerificationSubmittedAt: null.TimeFromPtr(m.VerificationSubmittedAt),
		CreatedAt:               m.CreatedAt,
		UpdatedAt:               m.UpdatedAt,
	}
}
