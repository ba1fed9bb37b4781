package repository

import (
	"context"
	"errors"

	"bizrwanda/internal/cache"
	"bizrwanda/internal/models"
	"bizrwanda/internal/observability"

	"gorm.io/gorm"
)

const companiesTable = "companies"

// companyColumns selects every company column plus its active listing count.
const companyColumns = "companies.*, (SELECT COUNT(*) FROM jobs WHERE jobs.company_id = companies.id AND jobs.is_active = ? AND jobs.deleted_at IS NULL) AS job_count"

// CompanyRepository defines persistence operations for employer companies.
type CompanyRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Company, error)
	GetByUserID(ctx context.Context, userID uint) (*models.Company, error)
	UpsertByUserID(ctx context.Context, company *models.Company) error
	Featured(ctx context.Context, limit int) ([]models.Company, error)
	List(ctx context.Context) ([]models.Company, error)
	Count(ctx context.Context) (int64, error)
}

type companyRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewCompanyRepository returns a CompanyRepository backed by db.
func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepository{db: db, log: observability.NewRepoLogger(companiesTable)}
}

func (r *companyRepository) withJobCount(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Company{}).Select(companyColumns, true)
}

func (r *companyRepository) GetByID(ctx context.Context, id uint) (_ *models.Company, err error) {
	ctx, done := instrument(ctx, "GetByID", companiesTable)
	defer func() { done(err) }()

	var company models.Company
	err = cache.Aside(ctx, cache.CompanyKey(id), &company, cache.CompanyTTL, func() error {
		if err := r.withJobCount(ctx).Where("companies.id = ?", id).First(&company).Error; err != nil {
			return lookupError(err, "Company", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *companyRepository) GetByUserID(ctx context.Context, userID uint) (_ *models.Company, err error) {
	ctx, done := instrument(ctx, "GetByUserID", companiesTable)
	defer func() { done(err) }()

	var company models.Company
	if err = r.withJobCount(ctx).Where("companies.user_id = ?", userID).First(&company).Error; err != nil {
		return nil, lookupError(err, "Company for user", userID)
	}
	return &company, nil
}

// UpsertByUserID creates the owner's company or overwrites its editable
// fields. The featured flag is admin-controlled and survives the write.
func (r *companyRepository) UpsertByUserID(ctx context.Context, company *models.Company) (err error) {
	ctx, done := instrument(ctx, "UpsertByUserID", companiesTable)
	defer func() { done(err) }()

	db := r.db.WithContext(ctx)
	var existing models.Company
	err = db.Where("user_id = ?", company.UserID).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err = db.Create(company).Error; err != nil {
			r.log.LogError(ctx, err, "create")
			return models.NewInternalError(err)
		}
		r.log.LogCreate(ctx, map[string]interface{}{"id": company.ID, "user_id": company.UserID})
	case err != nil:
		return models.NewInternalError(err)
	default:
		company.ID = existing.ID
		company.CreatedAt = existing.CreatedAt
		company.IsFeatured = existing.IsFeatured
		if err = db.Save(company).Error; err != nil {
			r.log.LogError(ctx, err, "update")
			return models.NewInternalError(err)
		}
		r.log.LogUpdate(ctx, map[string]interface{}{"id": company.ID, "user_id": company.UserID})
	}

	var listingIDs []uint
	if err = db.Model(&models.Listing{}).Where("company_id = ?", company.ID).Pluck("id", &listingIDs).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateCompanyListings(ctx, company.ID, listingIDs)
	return nil
}

// Featured returns flagged companies first, then those with the most active listings.
func (r *companyRepository) Featured(ctx context.Context, limit int) (_ []models.Company, err error) {
	ctx, done := instrument(ctx, "Featured", companiesTable)
	defer func() { done(err) }()

	if limit <= 0 {
		limit = FeaturedLimit
	}
	var companies []models.Company
	if err = r.withJobCount(ctx).
		Order("is_featured DESC").
		Order("job_count DESC").
		Order("created_at DESC").
		Limit(limit).
		Find(&companies).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return companies, nil
}

func (r *companyRepository) List(ctx context.Context) (_ []models.Company, err error) {
	ctx, done := instrument(ctx, "List", companiesTable)
	defer func() { done(err) }()

	var companies []models.Company
	if err = r.withJobCount(ctx).Order("name ASC").Find(&companies).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return companies, nil
}

func (r *companyRepository) Count(ctx context.Context) (n int64, err error) {
	ctx, done := instrument(ctx, "Count", companiesTable)
	defer func() { done(err) }()

	if err = r.db.WithContext(ctx).Model(&models.Company{}).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}
