package repositories

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"davspay.backend/internal/domain/entities"
	domainerrors "davspay.backend/internal/domain/errors"
	"davspay.backend/internal/testutil"
)

func TestUserRepository_ConcurrentVerificationSubmitsSucceedOnce(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	uow := NewUnitOfWork(db)
	u := seedUser(t, repo, "race@davspay.in")

	var ok, rejected atomic.Int32
	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			err := uow.Do(ctx, func(txCtx context.Context) error {
				_, err := repo.MarkVerificationPending(txCtx, u.ID)
				return err
			})
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, domainerrors.ErrAlreadySubmitted):
				rejected.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int32(1), ok.Load())
	assert.Equal(t, int32(7), rejected.Load())
}

func TestUserRepository_VerificationSubmitRaceAcrossConnections(t *testing.T) {
	handles := testutil.OpenFileDBs(t, 4)
	u := seedUser(t, NewUserRepository(handles[0]), "pool-race@davspay.in")

	var ok, rejected atomic.Int32
	g, ctx := errgroup.WithContext(context.Background())
	for _, db := range handles {
		repo := NewUserRepository(db)
		uow := NewUnitOfWork(db)
		for i := 0; i < 2; i++ {
			g.Go(func() error {
				err := uow.Do(ctx, func(txCtx context.Context) error {
					_, err := repo.MarkVerificationPending(txCtx, u.ID)
					return err
				})
				switch {
				case err == nil:
					ok.Add(1)
				case errors.Is(err, domainerrors.ErrAlreadySubmitted):
					rejected.Add(1)
				default:
					return err
				}
				return nil
			})
		}
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int32(1), ok.Load())
	assert.Equal(t, int32(2*len(handles)-1), rejected.Load())

	got, err := NewUserRepository(handles[0]).GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.VerificationPending, got.VerificationStatus)
	assert.True(t, got.VerificationSubmittedAt.Valid)
}

func TestUserRepository_VerificationSubmitAfterStaleRead(t *testing.T) {
	handles := testutil.OpenFileDBs(t, 2)
	first := NewUserRepository(handles[0])
	second := NewUserRepository(handles[1])
	ctx := context.Background()

	u := seedUser(t, first, "stale@davspay.in")

	// second sees the user as not yet submitted
	stale, err := second.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, entities.VerificationNotSubmitted, stale.VerificationStatus)

	submittedAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	first.now = func() time.Time { return submittedAt }
	_, err = first.MarkVerificationPending(ctx, u.ID)
	require.NoError(t, err)

	second.now = func() time.Time { return submittedAt.Add(time.Hour) }
	_, err = second.MarkVerificationPending(ctx, u.ID)
	assert.ErrorIs(t, err, domainerrors.ErrAlreadySubmitted)

	got, err := second.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, got.VerificationSubmittedAt.Valid)
	assert.True(t, submittedAt.Equal(got.VerificationSubmittedAt.Time), "submitted_at moved to %v", got.VerificationSubmittedAt.Time)
}

func TestUserRepository_ConcurrentRegistrationsSameEmail(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)

	emails := []string{"dup@x.com", "DUP@x.com", "Dup@X.com", "dup@X.COM"}
	var ok, dup atomic.Int32
	g, ctx := errgroup.WithContext(context.Background())
	for _, email := range emails {
		email := email
		g.Go(func() error {
			err := repo.Create(ctx, &entities.User{Email: email, PasswordHash: "h", FullName: "n"})
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, domainerrors.ErrAlreadyExists):
				dup.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int32(1), ok.Load())
	assert.Equal(t, int32(len(emails)-1), dup.Load())
}
