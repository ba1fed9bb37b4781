package repository

import (
	"context"

	"bizrwanda/internal/cache"
	"bizrwanda/internal/models"
	"bizrwanda/internal/observability"

	"gorm.io/gorm"
)

const categoriesTable = "categories"

// CategoryRepository defines persistence operations for listing categories.
type CategoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
	ListWithCounts(ctx context.Context) ([]models.Category, error)
	GetByID(ctx context.Context, id uint) (*models.Category, error)
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
}

type categoryRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewCategoryRepository returns a CategoryRepository backed by db.
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db, log: observability.NewRepoLogger(categoriesTable)}
}

func (r *categoryRepository) List(ctx context.Context) (_ []models.Category, err error) {
	ctx, done := instrument(ctx, "List", categoriesTable)
	defer func() { done(err) }()

	var categories []models.Category
	if err = r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return categories, nil
}

// ListWithCounts returns categories with the number of active listings filed
// under each name, computed at read time.
func (r *categoryRepository) ListWithCounts(ctx context.Context) (_ []models.Category, err error) {
	ctx, done := instrument(ctx, "ListWithCounts", categoriesTable)
	defer func() { done(err) }()

	var categories []models.Category
	err = cache.Aside(ctx, cache.CategoryCountsKey, &categories, cache.CategoryTTL, func() error {
		if err := r.db.WithContext(ctx).Model(&models.Category{}).
			Select("categories.*, (SELECT COUNT(*) FROM jobs WHERE jobs.category = categories.name AND jobs.is_active = ? AND jobs.deleted_at IS NULL) AS count", true).
			Order("name ASC").
			Find(&categories).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id uint) (_ *models.Category, err error) {
	ctx, done := instrument(ctx, "GetByID", categoriesTable)
	defer func() { done(err) }()

	var category models.Category
	if err = r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, lookupError(err, "Category", id)
	}
	return &category, nil
}

func (r *categoryRepository) Create(ctx context.Context, category *models.Category) (err error) {
	ctx, done := instrument(ctx, "Create", categoriesTable)
	defer func() { done(err) }()

	if err = r.db.WithContext(ctx).Create(category).Error; err != nil {
		if isUniqueViolation(err) {
			return models.NewConflictError("A category with this name already exists")
		}
		return models.NewInternalError(err)
	}
	cache.Invalidate(ctx, cache.CategoryCountsKey)
	r.log.LogCreate(ctx, map[string]interface{}{"id": category.ID, "name": category.Name})
	return nil
}

func (r *categoryRepository) Update(ctx context.Context, category *models.Category) (err error) {
	ctx, done := instrument(ctx, "Update", categoriesTable)
	defer func() { done(err) }()

	if err = r.db.WithContext(ctx).Save(category).Error; err != nil {
		if isUniqueViolation(err) {
			return models.NewConflictError("A category with this name already exists")
		}
		return models.NewInternalError(err)
	}
	cache.Invalidate(ctx, cache.CategoryCountsKey)
	r.log.LogUpdate(ctx, map[string]interface{}{"id": category.ID})
	return nil
}

func (r *categoryRepository) Delete(ctx context.Context, id uint) (err error) {
	ctx, done := instrument(ctx, "Delete", categoriesTable)
	defer func() { done(err) }()

	res := r.db.WithContext(ctx).Delete(&models.Category{}, id)
	if err = res.Error; err != nil {
		return models.NewInternalError(err)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Category", id)
	}
	cache.Invalidate(ctx, cache.CategoryCountsKey)
	r.log.LogDelete(ctx, map[string]interface{}{"id": id})
	return nil
}

func (r *categoryRepository) Count(ctx context.Context) (n int64, err error) {
	ctx, done := instrument(ctx, "Count", categoriesTable)
	defer func() { done(err) }()

	if err = r.db.WithContext(ctx).Model(&models.Category{}).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}
