// Package database opens the gorm connection, applies the schema and seeds
// the bootstrap administrator.
package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"finreport/config"
	"finreport/logger"
	"finreport/models"

	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const defaultSQLiteDSN = "file:finreport.db?_pragma=busy_timeout(5000)"

// Open connects to the configured store. Foreign keys are declared on the
// models for eager loading only; no constraint is created, so deleting a
// report leaves its children pointing at the removed id.
func Open(cfg config.DBConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite":
		dsn := cfg.DSN
		if dsn == "" {
			dsn = defaultSQLiteDSN
		}
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unknown db driver %q", cfg.Driver)
	}
	db, err := gorm.Open(dialector, GormConfig(cfg.LogSQL))
	if err != nil {
		return nil, fmt.Errorf("connect %s database: %w", cfg.Driver, err)
	}
	return db, nil
}

// GormConfig is shared by the server, the command line tools and tests.
func GormConfig(logSQL bool) *gorm.Config {
	cfg := &gorm.Config{Logger: logger.Gorm(logSQL), TranslateError: true}
	cfg.DisableForeignKeyConstraintWhenMigrating = true
	return cfg
}

// Migrate creates or alters the tables. Models are migrated one at a time so
// that a failure on one table is reported with its name.
func Migrate(db *gorm.DB) error {
	tables := []struct {
		name  string
		model any
	}{
		{"reports", &models.Report{}},
		{"financial_data", &models.FinancialData{}},
		{"summaries", &models.Summary{}},
		{"users", &models.User{}},
	}
	var errs []error
	for _, t := range tables {
		if err := db.AutoMigrate(t.model); err != nil {
			logger.Log.Warnf("migration warning (%s): %v", t.name, err)
			errs = append(errs, fmt.Errorf("migrate %s: %w", t.name, err))
		}
	}
	return errors.Join(errs...)
}

// SeedAdmin creates the administrator account when no user with that name
// exists. It never changes the password of an existing account.
func SeedAdmin(ctx context.Context, db *gorm.DB, username, password string) error {
	if username == "" {
		return nil
	}
	var count int64
	if err := db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return fmt.Errorf("look up %s: %w", username, err)
	}
	if count > 0 {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	roles, _ := json.Marshal([]string{"admin"})
	admin := models.User{Username: username, Password: hash, Roles: datatypes.JSON(roles)}
	if err := db.WithContext(ctx).Create(&admin).Error; err != nil {
		return fmt.Errorf("seed %s: %w", username, err)
	}
	logger.Log.Infof("seeded admin user: username=%s", username)
	return nil
}
