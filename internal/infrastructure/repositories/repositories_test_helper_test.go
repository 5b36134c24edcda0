package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"davspay.backend/internal/domain/entities"
	"davspay.backend/internal/testutil"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return testutil.OpenDB(t)
}

func seedUser(t *testing.T, repo *UserRepository, email string) *entities.User {
	t.Helper()
	u := &entities.User{
		Email:        email,
		PasswordHash: "hash",
		FullName:     "Alice",
		CompanyName:  "Acme",
		Phone:        "9999999999",
	}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}
