// Package testutil holds database fixtures shared by package tests.
package testutil

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// OpenDB opens a private in-memory sqlite database with the users table in place
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", sanitizeName(t.Name()), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err, "open sqlite")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps the shared in-memory database alive and serializes writers.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	CreateUsersTable(t, db)
	return db
}

// OpenFileDBs opens n independent handles on one file-backed WAL database.
// Each handle has its own connection pool, so writers really contend.
func OpenFileDBs(t *testing.T, n int) []*gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), sanitizeName(t.Name())+".db")
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate", path)

	handles := make([]*gorm.DB, 0, n)
	for i := 0; i < n; i++ {
		db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
			TranslateError: true,
			Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		})
		require.NoError(t, err, "open sqlite file")
		sqlDB, err := db.DB()
		require.NoError(t, err)
		t.Cleanup(func() { _ = sqlDB.Close() })
		handles = append(handles, db)
	}

	CreateUsersTable(t, handles[0])
	return handles
}

// MustExec runs a statement and fails the test on error
func MustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

// CreateUsersTable mirrors the postgres users migration in sqlite dialect
func CreateUsersTable(t *testing.T, db *gorm.DB) {
	t.Helper()
	MustExec(t, db, `CREATE TABLE users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		full_name TEXT NOT NULL,
		company_name TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT 1,
		is_verified BOOLEAN NOT NULL DEFAULT 0,
		verification_status TEXT NOT NULL DEFAULT 'not_submitted'
			CHECK (verification_status IN ('not_submitted', 'pending')),
		verification_submitted_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME,
		CHECK ((verification_status = 'not_submitted') = (verification_submitted_at IS NULL))
	);`)
	MustExec(t, db, `CREATE UNIQUE INDEX idx_users_email_lower ON users (LOWER(email));`)
}

// DeactivateUser flips is_active off for a seeded user
func DeactivateUser(t *testing.T, db *gorm.DB, id int64) {
	t.Helper()
	MustExec(t, db, `UPDATE users SET is_active = ? WHERE id = ?`, false, id)
}

func sanitizeName(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
