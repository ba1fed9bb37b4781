package repository

import (
	"context"

	"bizrwanda/internal/models"
	"bizrwanda/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	featuredSectionsTable = "featured_sections"
	notificationsTable    = "platform_notifications"
)

// FeaturedSectionRepository persists the admin-editable landing page sections.
type FeaturedSectionRepository interface {
	List(ctx context.Context, enabledOnly bool) ([]models.FeaturedSection, error)
	GetByID(ctx context.Context, id uint) (*models.FeaturedSection, error)
	Update(ctx context.Context, section *models.FeaturedSection) error
	EnsureDefaults(ctx context.Context, defaults []models.FeaturedSection) error
}

type featuredSectionRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewFeaturedSectionRepository returns a FeaturedSectionRepository backed by db.
func NewFeaturedSectionRepository(db *gorm.DB) FeaturedSectionRepository {
	return &featuredSectionRepository{db: db, log: observability.NewRepoLogger(featuredSectionsTable)}
}

func (r *featuredSectionRepository) List(ctx context.Context, enabledOnly bool) (_ []models.FeaturedSection, err error) {
	ctx, done := instrument(ctx, "List", featuredSectionsTable)
	defer func() { done(err) }()

	q := r.db.WithContext(ctx).Order("position ASC").Order("id ASC")
	if enabledOnly {
		q = q.Where("enabled = ?", true)
	}
	var sections []models.FeaturedSection
	if err = q.Find(&sections).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return sections, nil
}

func (r *featuredSectionRepository) GetByID(ctx context.Context, id uint) (_ *models.FeaturedSection, err error) {
	ctx, done := instrument(ctx, "GetByID", featuredSectionsTable)
	defer func() { done(err) }()

	var section models.FeaturedSection
	if err = r.db.WithContext(ctx).First(&section, id).Error; err != nil {
		return nil, lookupError(err, "Featured section", id)
	}
	return &section, nil
}

func (r *featuredSectionRepository) Update(ctx context.Context, section *models.FeaturedSection) (err error) {
	ctx, done := instrument(ctx, "Update", featuredSectionsTable)
	defer func() { done(err) }()

	if err = r.db.WithContext(ctx).Save(section).Error; err != nil {
		return models.NewInternalError(err)
	}
	r.log.LogUpdate(ctx, map[string]interface{}{"id": section.ID, "key": section.Key})
	return nil
}

// EnsureDefaults inserts any default section whose key is missing and leaves
// existing rows untouched.
func (r *featuredSectionRepository) EnsureDefaults(ctx context.Context, defaults []models.FeaturedSection) (err error) {
	ctx, done := instrument(ctx, "EnsureDefaults", featuredSectionsTable)
	defer func() { done(err) }()

	if len(defaults) == 0 {
		return nil
	}
	// Create writes generated IDs back; keep the caller's slice untouched.
	rows := make([]models.FeaturedSection, len(defaults))
	copy(rows, defaults)
	for i := range rows {
		rows[i].ID = 0
	}
	if err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "key"}}, DoNothing: true}).
		Create(&rows).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// NotificationRepository persists platform-wide notifications.
type NotificationRepository interface {
	List(ctx context.Context, activeOnly bool) ([]models.PlatformNotification, error)
	GetByID(ctx context.Context, id uint) (*models.PlatformNotification, error)
	Create(ctx context.Context, n *models.PlatformNotification) error
	Update(ctx context.Context, n *models.PlatformNotification) error
	Delete(ctx context.Context, id uint) error
}

type notificationRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewNotificationRepository returns a NotificationRepository backed by db.
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db, log: observability.NewRepoLogger(notificationsTable)}
}

func (r *notificationRepository) List(ctx context.Context, activeOnly bool) (_ []models.PlatformNotification, err error) {
	ctx, done := instrument(ctx, "List", notificationsTable)
	defer func() { done(err) }()

	q := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var out []models.PlatformNotification
	if err = q.Find(&out).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return out, nil
}

func (r *notificationRepository) GetByID(ctx context.Context, id uint) (_ *models.PlatformNotification, err error) {
	ctx, done := instrument(ctx, "GetByID", notificationsTable)
	defer func() { done(err) }()

	var n models.PlatformNotification
	if err = r.db.WithContext(ctx).First(&n, id).Error; err != nil {
		return nil, lookupError(err, "Notification", id)
	}
	return &n, nil
}

func (r *notificationRepository) Create(ctx context.Context, n *models.PlatformNotification) (err error) {
	ctx, done := instrument(ctx, "Create", notificationsTable)
	defer func() { done(err) }()

	active := n.IsActive
	db := r.db.WithContext(ctx)
	if err = db.Create(n).Error; err != nil {
		return models.NewInternalError(err)
	}
	// is_active has a database default, so an inactive draft needs a second write.
	if !active {
		if err = db.Model(n).Update("is_active", false).Error; err != nil {
			return models.NewInternalError(err)
		}
		n.IsActive = false
	}
	r.log.LogCreate(ctx, map[string]interface{}{"id": n.ID, "audience": n.Audience})
	return nil
}

func (r *notificationRepository) Update(ctx context.Context, n *models.PlatformNotification) (err error) {
	ctx, done := instrument(ctx, "Update", notificationsTable)
	defer func() { done(err) }()

	if err = r.db.WithContext(ctx).Save(n).Error; err != nil {
		return models.NewInternalError(err)
	}
	r.log.LogUpdate(ctx, map[string]interface{}{"id": n.ID})
	return nil
}

func (r *notificationRepository) Delete(ctx context.Context, id uint) (err error) {
	ctx, done := instrument(ctx, "Delete", notificationsTable)
	defer func() { done(err) }()

	res := r.db.WithContext(ctx).Delete(&models.PlatformNotification{}, id)
	if err = res.Error; err != nil {
		return models.NewInternalError(err)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Notification", id)
	}
	r.log.LogDelete(ctx, map[string]interface{}{"id": id})
	return nil
}
