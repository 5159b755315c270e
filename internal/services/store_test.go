package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/javajoker/pollopollo-backend/internal/database"
	"github.com/javajoker/pollopollo-backend/internal/repository"
)

// newTestStore opens a migrated in-memory SQLite database for one test.
func newTestStore(t *testing.T) (*repository.GormStore, *gorm.DB) {
	t.Helper()
	db, err := database.OpenInMemory("silent")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })
	return repository.NewGormStore(db), db
}
