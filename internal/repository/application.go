package repository

import (
	"context"

	"bizrwanda/internal/models"
	"bizrwanda/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const applicationsTable = "applications"

// ApplicationRepository defines persistence operations for job applications.
type ApplicationRepository interface {
	Create(ctx context.Context, app *models.Application) error
	GetByID(ctx context.Context, id uint) (*models.Application, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Application, error)
	ListByJobOwner(ctx context.Context, ownerID uint) ([]models.Application, error)
	ListAll(ctx context.Context) ([]models.Application, error)
	UpdateStatus(ctx context.Context, id uint, status models.ApplicationStatus) error
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

type applicationRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewApplicationRepository returns an ApplicationRepository backed by db.
func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db, log: observability.NewRepoLogger(applicationsTable)}
}

func (r *applicationRepository) Create(ctx context.Context, app *models.Application) (err error) {
	ctx, done := instrument(ctx, "Create", applicationsTable)
	defer func() { done(err) }()

	if err = r.db.WithContext(ctx).Omit(clause.Associations).Create(app).Error; err != nil {
		if isUniqueViolation(err) {
			return models.NewConflictError("You have already applied to this job")
		}
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	r.log.LogCreate(ctx, map[string]interface{}{"id": app.ID, "job_id": app.JobID, "user_id": app.UserID})
	return nil
}

func (r *applicationRepository) GetByID(ctx context.Context, id uint) (_ *models.Application, err error) {
	ctx, done := instrument(ctx, "GetByID", applicationsTable)
	defer func() { done(err) }()

	var app models.Application
	if err = r.db.WithContext(ctx).
		Preload("Job", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("User").
		First(&app, id).Error; err != nil {
		return nil, lookupError(err, "Application", id)
	}
	return &app, nil
}

func (r *applicationRepository) ListByUser(ctx context.Context, userID uint) (_ []models.Application, err error) {
	ctx, done := instrument(ctx, "ListByUser", applicationsTable)
	defer func() { done(err) }()

	var apps []models.Application
	if err = r.db.WithContext(ctx).
		Preload("Job", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("Job.Company").
		Where("user_id = ?", userID).
		Order("applied_at DESC").Order("id DESC").
		Find(&apps).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return apps, nil
}

// ListByJobOwner returns applications to listings posted by ownerID.
func (r *applicationRepository) ListByJobOwner(ctx context.Context, ownerID uint) (_ []models.Application, err error) {
	ctx, done := instrument(ctx, "ListByJobOwner", applicationsTable)
	defer func() { done(err) }()

	var apps []models.Application
	if err = r.db.WithContext(ctx).
		Select("applications.*").
		Joins("JOIN jobs ON jobs.id = applications.job_id").
		Where("jobs.posted_by_id = ?", ownerID).
		Preload("Job", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("User").
		Order("applications.applied_at DESC").Order("applications.id DESC").
		Find(&apps).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return apps, nil
}

func (r *applicationRepository) ListAll(ctx context.Context) (_ []models.Application, err error) {
	ctx, done := instrument(ctx, "ListAll", applicationsTable)
	defer func() { done(err) }()

	var apps []models.Application
	if err = r.db.WithContext(ctx).
		Preload("Job", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("User").
		Order("applied_at DESC").Order("id DESC").
		Find(&apps).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return apps, nil
}

func (r *applicationRepository) UpdateStatus(ctx context.Context, id uint, status models.ApplicationStatus) (err error) {
	ctx, done := instrument(ctx, "UpdateStatus", applicationsTable)
	defer func() { done(err) }()

	res := r.db.WithContext(ctx).Model(&models.Application{ID: id}).Update("status", status)
	if err = res.Error; err != nil {
		return models.NewInternalError(err)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Application", id)
	}
	r.log.LogUpdate(ctx, map[string]interface{}{"id": id, "status": status})
	return nil
}

func (r *applicationRepository) CountByStatus(ctx context.Context) (_ map[string]int64, err error) {
	ctx, done := instrument(ctx, "CountByStatus", applicationsTable)
	defer func() { done(err) }()

	var rows []groupCount
	if err = r.db.WithContext(ctx).Model(&models.Application{}).
		Select("status AS group_key, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.GroupKey] = row.Count
	}
	return out, nil
}
