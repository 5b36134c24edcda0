package usecases

import (
	"context"

	"go.uber.org/zap"

	"davspay.backend/internal/domain/entities"
	"davspay.backend/internal/domain/repositories"
	"davspay.backend/pkg/logger"
)

// VerificationUsecase drives the one-way not_submitted -> pending workflow
type VerificationUsecase struct {
	userRepo repositories.UserRepository
	uow      repositories.UnitOfWork
}

// NewVerificationUsecase creates a new verification usecase
func NewVerificationUsecase(userRepo repositories.UserRepository, uow repositories.UnitOfWork) *VerificationUsecase {
	return &VerificationUsecase{
		userRepo: userRepo,
		uow:      uow,
	}
}

// Submit marks the user's verification as pending. A second submission returns
// ErrAlreadySubmitted and leaves the original timestamp in place.
func (u *VerificationUsecase) Submit(ctx context.Context, userID int64) (*entities.User, error) {
	var user *entities.User
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		var err error
		user, err = u.userRepo.MarkVerificationPending(txCtx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "Verification submitted", zap.Int64("user_id", userID))
	return user, nil
}

// GetStatus returns the current verification state without changing it
func (u *VerificationUsecase) GetStatus(ctx context.Context, userID int64) (*entities.VerificationState, error) {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.VerificationState(), nil
}
