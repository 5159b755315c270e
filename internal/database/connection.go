// internal/database/connection.go
package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/javajoker/pollopollo-backend/internal/config"
	"github.com/javajoker/pollopollo-backend/internal/models"
)

// Initialize opens the configured database. For postgres a lib/pq pool is
// tuned and handed to gorm.
func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	if cfg.Driver == "sqlite" {
		return OpenSQLite(cfg.SQLitePath, cfg.LogLevel)
	}

	sqlDB, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db, err := Open(sqlDB, cfg.LogLevel)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}

	logrus.Info("Database connection established successfully")
	return db, nil
}

// Open wraps an existing connection pool in gorm.
func Open(sqlDB *sql.DB, logLevel string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), gormConfig(logLevel))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// OpenSQLite opens a pure Go SQLite database with foreign keys enforced. An
// in-memory database lives as long as its single connection, so the pool is
// pinned to one connection that never expires.
func OpenSQLite(path, logLevel string) (*gorm.DB, error) {
	if path == "" {
		path = ":memory:"
	}
	db, err := gorm.Open(sqlite.Open(path+"?_pragma=foreign_keys(1)"), gormConfig(logLevel))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sqlite pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(0)

	logrus.WithField("path", path).Info("SQLite database opened")
	return db, nil
}

// OpenInMemory returns a migrated, empty in-memory SQLite database.
func OpenInMemory(logLevel string) (*gorm.DB, error) {
	db, err := OpenSQLite(":memory:", logLevel)
	if err != nil {
		return nil, err
	}
	if err := RunMigrations(db); err != nil {
		Close(db)
		return nil, err
	}
	return db, nil
}

func gormConfig(logLevel string) *gorm.Config {
	return &gorm.Config{
		Logger: newLogger(logLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func newLogger(level string) logger.Interface {
	var lvl logger.LogLevel
	switch level {
	case "silent":
		lvl = logger.Silent
	case "error":
		lvl = logger.Error
	case "info":
		lvl = logger.Info
	default:
		lvl = logger.Warn
	}

	return logger.New(logrus.StandardLogger(), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  lvl,
		IgnoreRecordNotFoundError: true,
	})
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		logrus.WithError(err).Error("Error getting underlying sql.DB")
		return
	}

	if err := sqlDB.Close(); err != nil {
		logrus.WithError(err).Error("Error closing database connection")
	} else {
		logrus.Info("Database connection closed successfully")
	}
}

func RunMigrations(db *gorm.DB) error {
	logrus.Info("Running database migrations...")

	err := db.AutoMigrate(
		&models.User{},
		&models.Producer{},
		&models.Receiver{},
		&models.Product{},
		&models.Application{},
		&models.Contract{},
		&models.ByteExchangeRate{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	logrus.Info("Database migrations completed successfully")
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// Application projections all sort newest first with insertion order as tie-break
		"CREATE INDEX IF NOT EXISTS idx_applications_status_created ON applications(status, created_at DESC, id)",
		"CREATE INDEX IF NOT EXISTS idx_applications_receiver_created ON applications(receiver_id, created_at DESC, id)",
		"CREATE INDEX IF NOT EXISTS idx_applications_last_modified ON applications(last_modified_at DESC)",

		"CREATE INDEX IF NOT EXISTS idx_products_producer_available ON products(producer_id, available)",
		"CREATE INDEX IF NOT EXISTS idx_contracts_withdrawable ON contracts(application_id) WHERE completed AND bytes > 0",
		"CREATE INDEX IF NOT EXISTS idx_byte_exchange_rates_updated ON byte_exchange_rates(updated_at DESC)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			logrus.WithError(err).WithField("index", index).Warn("Failed to create index")
		}
	}

	return nil
}

// SeedInitialData makes sure an exchange rate row exists for producer summaries.
func SeedInitialData(db *gorm.DB, gbyteUSD float64) error {
	logrus.Info("Seeding initial data...")

	var count int64
	if err := db.Model(&models.ByteExchangeRate{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count exchange rates: %w", err)
	}

	if count == 0 {
		rate := &models.ByteExchangeRate{GBYTEUSD: gbyteUSD}
		if err := db.Create(rate).Error; err != nil {
			return fmt.Errorf("failed to seed exchange rate: %w", err)
		}
		logrus.Info("Default exchange rate created")
	}

	logrus.Info("Initial data seeding completed")
	return nil
}

// Transaction helper
func WithTransaction(db *gorm.DB, fn func(*gorm.DB) error) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
