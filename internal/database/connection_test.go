package database

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/javajoker/pollopollo-backend/internal/config"
	"github.com/javajoker/pollopollo-backend/internal/models"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := Open(sqlDB, "silent")
	require.NoError(t, err)
	return db, mock
}

func TestWithTransactionCommits(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE applications").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := WithTransaction(db, func(tx *gorm.DB) error {
		return tx.Exec("UPDATE applications SET status = ?", "pending").Error
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTransactionRollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := WithTransaction(db, func(tx *gorm.DB) error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTransactionRollsBackOnPanic(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.Panics(t, func() {
		_ = WithTransaction(db, func(tx *gorm.DB) error {
			panic("boom")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedInitialDataSkipsExistingRate(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "byte_exchange_rates"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	require.NoError(t, SeedInitialData(db, 20))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpenInMemoryMigratesAndEnforcesForeignKeys(t *testing.T) {
	db, err := OpenInMemory("silent")
	require.NoError(t, err)
	defer Close(db)

	for _, table := range []interface{}{&models.User{}, &models.Application{}, &models.Contract{}, &models.ByteExchangeRate{}} {
		assert.True(t, db.Migrator().HasTable(table))
	}

	err = db.Create(&models.Application{ReceiverID: 7, ProductID: 9, Status: models.ApplicationStatusOpen}).Error
	assert.Error(t, err)

	require.NoError(t, SeedInitialData(db, 20))
	require.NoError(t, SeedInitialData(db, 30))
	var rates []models.ByteExchangeRate
	require.NoError(t, db.Find(&rates).Error)
	require.Len(t, rates, 1)
	assert.Equal(t, 20.0, rates[0].GBYTEUSD)
}

func TestInitializeSQLite(t *testing.T) {
	db, err := Initialize(config.DatabaseConfig{Driver: "sqlite", SQLitePath: ":memory:", LogLevel: "silent"})
	require.NoError(t, err)
	defer Close(db)

	require.NoError(t, db.Exec("SELECT 1").Error)
}
