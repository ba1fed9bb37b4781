package repository

import (
	"context"
	"testing"
	"time"

	"bizrwanda/internal/database"
	"bizrwanda/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB returns a migrated in-memory SQLite database private to the test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Every pooled connection to :memory: would otherwise see its own empty database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

var baseTime = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type listingOpt func(*models.Listing)

func withDetails(raw string) listingOpt {
	return func(l *models.Listing) { l.Details = datatypes.JSON(raw) }
}

func withAge(hours int) listingOpt {
	return func(l *models.Listing) { l.CreatedAt = baseTime.Add(-time.Duration(hours) * time.Hour) }
}

func createListing(t *testing.T, db *gorm.DB, postType models.PostType, title string, opts ...listingOpt) *models.Listing {
	t.Helper()

	l := &models.Listing{
		PostType:       postType,
		Title:          title,
		Location:       "Kigali",
		Description:    "A sufficiently long description for " + title,
		Category:       "Finance",
		Status:         models.ListingStatusPending,
		IsActive:       true,
		IndividualName: "Test Owner",
		PostedByID:     1,
		CreatedAt:      baseTime,
		Details:        datatypes.JSON(`{}`),
	}
	for _, opt := range opts {
		opt(l)
	}
	require.NoError(t, NewListingRepository(db).Create(context.Background(), l))
	return l
}

func deactivate(t *testing.T, db *gorm.DB, id uint) {
	t.Helper()
	require.NoError(t, db.Model(&models.Listing{}).Where("id = ?", id).Update("is_active", false).Error)
}

func createUser(t *testing.T, db *gorm.DB, email string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{Email: email, Role: role, FullName: "Test User", AuthProvider: models.AuthProviderLocal}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), u))
	return u
}
