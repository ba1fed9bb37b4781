package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"bizrwanda/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_GetByID_SQLShape(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	tests := []struct {
		name          string
		userID        uint
		mockBehavior  func()
		expectedEmail string
		expectedError bool
	}{
		{
			name:   "Success",
			userID: 1,
			mockBehavior: func() {
				rows := sqlmock.NewRows([]string{"id", "email", "role"}).
					AddRow(1, "hr@company.rw", "employer")
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1 AND "users"."deleted_at" IS NULL ORDER BY "users"."id" LIMIT $2`)).
					WithArgs(1, 1).
					WillReturnRows(rows)
			},
			expectedEmail: "hr@company.rw",
		},
		{
			name:   "Database Error",
			userID: 2,
			mockBehavior: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1`)).
					WithArgs(2, 1).
					WillReturnError(errors.New("connection timeout"))
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockBehavior()
			user, err := repo.GetByID(ctx, tt.userID)

			if tt.expectedError {
				assert.Error(t, err)
				assert.Equal(t, 500, models.StatusFor(err))
			} else if assert.NotNil(t, user) {
				assert.Equal(t, tt.expectedEmail, user.Email)
				assert.Equal(t, models.RoleEmployer, user.Role)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_CreateAndLookups(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	uid := "firebase-uid-1"
	u := &models.User{Email: "seeker@example.com", Role: models.RoleJobSeeker, FullName: "Aline", FirebaseUID: &uid}
	require.NoError(t, repo.Create(ctx, u))
	assert.NotZero(t, u.ID)

	byEmail, err := repo.GetByEmail(ctx, "seeker@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	byUID, err := repo.GetByFirebaseUID(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, u.ID, byUID.ID)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.True(t, models.IsNotFound(err))

	dup := &models.User{Email: "seeker@example.com", Role: models.RoleEmployer}
	err = repo.Create(ctx, dup)
	assert.Equal(t, 409, models.StatusFor(err))
}

func TestUserRepository_UpdateKeepsPassword(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := &models.User{Email: "owner@example.com", Role: models.RoleEmployer, Password: "hash"}
	require.NoError(t, repo.Create(ctx, u))

	loaded, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	loaded.Password = ""
	loaded.FullName = "Renamed"
	require.NoError(t, repo.Update(ctx, loaded))

	stored, err := repo.GetByEmail(ctx, "owner@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", stored.FullName)
	assert.Equal(t, "hash", stored.Password)
}

func TestUserRepository_RolesListingAndCounts(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	createUser(t, db, "a@example.com", models.RoleJobSeeker)
	createUser(t, db, "b@example.com", models.RoleJobSeeker)
	employer := createUser(t, db, "c@example.com", models.RoleEmployer)

	require.NoError(t, repo.UpdateRole(ctx, employer.ID, models.RoleAdmin))
	assert.True(t, models.IsNotFound(repo.UpdateRole(ctx, 999, models.RoleAdmin)))

	admins, err := repo.List(ctx, models.RoleAdmin)
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, "c@example.com", admins[0].Email)

	everyone, err := repo.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, everyone, 3)

	counts, err := repo.CountByRole(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts["job_seeker"])
	assert.Equal(t, int64(1), counts["admin"])
}
