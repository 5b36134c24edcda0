package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"davspay.backend/internal/domain/entities"
)

func countUsers(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Table("users").Count(&count).Error)
	return count
}

func TestUnitOfWork_DoCommitAndRollback(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	u := &UnitOfWorkImpl{db: db}

	err := u.Do(context.Background(), func(ctx context.Context) error {
		return repo.Create(ctx, &entities.User{Email: "commit@davspay.in", PasswordHash: "h", FullName: "n"})
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), countUsers(t, db))

	err = u.Do(context.Background(), func(ctx context.Context) error {
		if err := GetDB(ctx, db).Exec("INSERT INTO users(email,password_hash,full_name) VALUES (?,?,?)", "rollback@davspay.in", "h", "n").Error; err != nil {
			return err
		}
		return errors.New("force rollback")
	})
	require.Error(t, err)
	require.Equal(t, int64(1), countUsers(t, db), "second insert must be rolled back")
}

func TestUnitOfWork_NestedDoReusesTransaction(t *testing.T) {
	db := newTestDB(t)
	u := &UnitOfWorkImpl{db: db}

	err := u.Do(context.Background(), func(outer context.Context) error {
		outerTx := GetDB(outer, db)
		return u.Do(outer, func(inner context.Context) error {
			require.Same(t, outerTx, GetDB(inner, db))
			return nil
		})
	})
	require.NoError(t, err)
}

func TestUnitOfWork_GetDB(t *testing.T) {
	db := newTestDB(t)
	u := &UnitOfWorkImpl{db: db}

	require.Equal(t, db, u.GetDB(context.Background()))

	tx := db.Begin()
	txCtx := context.WithValue(context.Background(), txKey, tx)
	require.Equal(t, tx, u.GetDB(txCtx))
	tx.Rollback()
}

func TestUnitOfWork_DoBeginFailure(t *testing.T) {
	db := newTestDB(t)
	u := &UnitOfWorkImpl{db: db}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	err = u.Do(context.Background(), func(ctx context.Context) error {
		return nil
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to begin transaction")
}

func TestUnitOfWork_DoCommitFailure_WithHook(t *testing.T) {
	db := newTestDB(t)
	u := &UnitOfWorkImpl{db: db}

	origCommit := commitTx
	t.Cleanup(func() { commitTx = origCommit })
	commitTx = func(*gorm.DB) error {
		return errors.New("forced commit fail")
	}

	err := u.Do(context.Background(), func(ctx context.Context) error {
		return nil
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to commit transaction")
}
