package main

import (
	"context"

	"finreport/config"
	"finreport/database"
	"finreport/logger"

	"gorm.io/gorm"
)

// initDB connects, migrates unless db.auto_migrate is off, and seeds the
// admin account. Migration and seeding problems are logged and ignored so
// that a restricted database user can still serve requests.
func initDB(cfg config.Config) (*gorm.DB, error) {
	db, err := database.Open(cfg.DB)
	if err != nil {
		return nil, err
	}
	if cfg.DB.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			logger.Log.Warnf("migration finished with warnings: %v", err)
		}
	}
	if err := database.SeedAdmin(context.Background(), db, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword); err != nil {
		logger.Log.Warnf("seeding admin failed: %v", err)
	}
	return db, nil
}
