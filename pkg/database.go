package pkg

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/MaX-NeO/atom-q-10/internal/config"
	"github.com/MaX-NeO/atom-q-10/internal/models"
)

// InitDatabase opens the Postgres connection, runs migrations and enforces
// the store-level attempt invariants.
func InitDatabase(cfg *config.Config) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}
	if cfg.Environment == "development" {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Quiz{},
		&models.Question{},
		&models.QuizQuestion{},
		&models.QuizAttempt{},
		&models.QuizAnswer{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	// Partial unique index: one IN_PROGRESS attempt per (quiz, user). GORM
	// tags cannot express the WHERE clause.
	if err := db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_active_attempt
		 ON quiz_attempts (quiz_id, user_id)
		 WHERE status = 'IN_PROGRESS'`,
	).Error; err != nil {
		return nil, fmt.Errorf("failed to create active attempt index: %w", err)
	}

	return db, nil
}
