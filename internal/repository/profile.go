package repository

import (
	"context"
	"errors"

	"bizrwanda/internal/models"
	"bizrwanda/internal/observability"

	"gorm.io/gorm"
)

const profilesTable = "job_seeker_profiles"

// ProfileRepository defines persistence operations for job seeker profiles.
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID uint) (*models.JobSeekerProfile, error)
	Upsert(ctx context.Context, profile *models.JobSeekerProfile) error
}

type profileRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewProfileRepository returns a ProfileRepository backed by db.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db, log: observability.NewRepoLogger(profilesTable)}
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID uint) (_ *models.JobSeekerProfile, err error) {
	ctx, done := instrument(ctx, "GetByUserID", profilesTable)
	defer func() { done(err) }()

	var profile models.JobSeekerProfile
	if err = r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, lookupError(err, "Profile for user", userID)
	}
	return &profile, nil
}

// Upsert writes the single profile row owned by profile.UserID.
func (r *profileRepository) Upsert(ctx context.Context, profile *models.JobSeekerProfile) (err error) {
	ctx, done := instrument(ctx, "Upsert", profilesTable)
	defer func() { done(err) }()

	db := r.db.WithContext(ctx)
	var existing models.JobSeekerProfile
	err = db.Where("user_id = ?", profile.UserID).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err = db.Create(profile).Error; err != nil {
			return models.NewInternalError(err)
		}
		r.log.LogCreate(ctx, map[string]interface{}{"id": profile.ID, "user_id": profile.UserID})
	case err != nil:
		return models.NewInternalError(err)
	default:
		profile.ID = existing.ID
		profile.CreatedAt = existing.CreatedAt
		if err = db.Save(profile).Error; err != nil {
			return models.NewInternalError(err)
		}
		r.log.LogUpdate(ctx, map[string]interface{}{"id": profile.ID, "user_id": profile.UserID})
	}
	return nil
}
