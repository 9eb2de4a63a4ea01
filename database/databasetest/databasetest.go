// Package databasetest opens throwaway migrated databases for tests.
package databasetest

import (
	"testing"

	"finreport/database"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// New returns a migrated in-memory sqlite database private to t.
// The pool is capped at one connection so every query sees the same memory
// database, which means callers must not query outside an open transaction.
func New(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), database.GormConfig(false))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
