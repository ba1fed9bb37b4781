package repository

import (
	"context"
	"fmt"
	"strings"

	"bizrwanda/internal/cache"
	"bizrwanda/internal/models"
	"bizrwanda/internal/observability"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const listingsTable = "jobs"

// FeaturedLimit caps the featured listing strip.
const FeaturedLimit = 6

// requirementKeys are the variant payload keys keyword search looks into.
var requirementKeys = []string{"requirements", "auctionRequirements", "tenderRequirements"}

// SearchParams are the optional public search predicates. Empty fields are ignored.
type SearchParams struct {
	Keyword         string
	Location        string
	Category        string
	JobType         string
	ExperienceLevel string
	PostType        models.PostType
}

// AdminListingFilter narrows the moderation queue.
type AdminListingFilter struct {
	Status         models.ListingStatus
	PostType       models.PostType
	IncludeDeleted bool
}

// ListingStats aggregates listing counts for the admin dashboard.
type ListingStats struct {
	Total      int64            `json:"total"`
	Active     int64            `json:"active"`
	Featured   int64            `json:"featured"`
	ByStatus   map[string]int64 `json:"byStatus"`
	ByPostType map[string]int64 `json:"byPostType"`
}

// ListingRepository defines persistence operations for listings of every post type.
type ListingRepository interface {
	Create(ctx context.Context, l *models.Listing) error
	GetByID(ctx context.Context, id uint) (*models.Listing, error)
	GetByIDUnscoped(ctx context.Context, id uint) (*models.Listing, error)
	Update(ctx context.Context, l *models.Listing) error
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error
	SoftDelete(ctx context.Context, id uint, note string) error
	Search(ctx context.Context, params SearchParams) ([]models.Listing, error)
	Featured(ctx context.Context, limit int, flaggedFirst bool) ([]models.Listing, error)
	MatchTitles(ctx context.Context, keywords []string, limit int) ([]models.Listing, error)
	ListAll(ctx context.Context, filter AdminListingFilter) ([]models.Listing, error)
	ListByOwner(ctx context.Context, userID uint) ([]models.Listing, error)
	CountActiveByCategory(ctx context.Context) (map[string]int64, error)
	DeactivateExpired(ctx context.Context, today string) (map[models.PostType]int64, error)
	Stats(ctx context.Context) (*ListingStats, error)
}

type listingRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewListingRepository returns a ListingRepository backed by db.
func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepository{db: db, log: observability.NewRepoLogger(listingsTable)}
}

func (r *listingRepository) Create(ctx context.Context, l *models.Listing) (err error) {
	ctx, done := instrument(ctx, "Create", listingsTable)
	defer func() { done(err) }()

	if err = r.db.WithContext(ctx).Omit(clause.Associations).Create(l).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	cache.InvalidateListings(ctx)
	r.log.LogCreate(ctx, map[string]interface{}{"id": l.ID, "post_type": l.PostType, "posted_by": l.PostedByID})
	return nil
}

func (r *listingRepository) GetByID(ctx context.Context, id uint) (_ *models.Listing, err error) {
	ctx, done := instrument(ctx, "GetByID", listingsTable)
	defer func() { done(err) }()

	var l models.Listing
	err = cache.Aside(ctx, cache.ListingKey(id), &l, cache.ListingTTL, func() error {
		if err := r.db.WithContext(ctx).Preload("Company").First(&l, id).Error; err != nil {
			return lookupError(err, "Listing", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *listingRepository) GetByIDUnscoped(ctx context.Context, id uint) (_ *models.Listing, err error) {
	ctx, done := instrument(ctx, "GetByIDUnscoped", listingsTable)
	defer func() { done(err) }()

	var l models.Listing
	if err = r.db.WithContext(ctx).Unscoped().Preload("Company").First(&l, id).Error; err != nil {
		return nil, lookupError(err, "Listing", id)
	}
	return &l, nil
}

// Update replaces every column of the listing row (last write wins).
func (r *listingRepository) Update(ctx context.Context, l *models.Listing) (err error) {
	ctx, done := instrument(ctx, "Update", listingsTable)
	defer func() { done(err) }()

	if err = r.db.WithContext(ctx).Omit(clause.Associations).Save(l).Error; err != nil {
		r.log.LogError(ctx, err, "update")
		return models.NewInternalError(err)
	}
	cache.InvalidateListing(ctx, l.ID)
	r.log.LogUpdate(ctx, map[string]interface{}{"id": l.ID})
	return nil
}

func (r *listingRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) (err error) {
	ctx, done := instrument(ctx, "UpdateFields", listingsTable)
	defer func() { done(err) }()

	res := r.db.WithContext(ctx).Model(&models.Listing{ID: id}).Updates(fields)
	if err = res.Error; err != nil {
		r.log.LogError(ctx, err, "update")
		return models.NewInternalError(err)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Listing", id)
	}
	cache.InvalidateListing(ctx, id)
	r.log.LogUpdate(ctx, map[string]interface{}{"id": id, "fields": len(fields)})
	return nil
}

// SoftDelete rejects the listing, appends note to its audit trail and marks
// the row deleted. The row itself is retained.
func (r *listingRepository) SoftDelete(ctx context.Context, id uint, note string) (err error) {
	ctx, done := instrument(ctx, "SoftDelete", listingsTable)
	defer func() { done(err) }()

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var l models.Listing
		if err := tx.First(&l, id).Error; err != nil {
			return lookupError(err, "Listing", id)
		}
		l.AppendAdminNote(note)
		if err := tx.Model(&l).Updates(map[string]interface{}{
			"status":      models.ListingStatusRejected,
			"admin_notes": l.AdminNotes,
		}).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Delete(&l).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		if !models.IsNotFound(err) {
			r.log.LogError(ctx, err, "delete")
		}
		return err
	}
	cache.InvalidateListing(ctx, id)
	r.log.LogDelete(ctx, map[string]interface{}{"id": id})
	return nil
}

// Search AND-combines the provided predicates over active listings, newest first.
func (r *listingRepository) Search(ctx context.Context, params SearchParams) (_ []models.Listing, err error) {
	ctx, done := instrument(ctx, "Search", listingsTable)
	defer func() { done(err) }()

	q := r.db.WithContext(ctx).Model(&models.Listing{}).Preload("Company").Where("is_active = ?", true)

	if kw := strings.TrimSpace(params.Keyword); kw != "" {
		pattern := likePattern(kw)
		conds := []string{"LOWER(title) LIKE ?" + likeEscape, "LOWER(description) LIKE ?" + likeEscape}
		args := []interface{}{pattern, pattern}
		for _, key := range requirementKeys {
			conds = append(conds, "LOWER(COALESCE(?, '')) LIKE ?"+likeEscape)
			args = append(args, datatypes.JSONQuery("details").Extract(key), pattern)
		}
		q = q.Where("("+strings.Join(conds, " OR ")+")", args...)
	}
	if loc := strings.TrimSpace(params.Location); loc != "" {
		q = q.Where("LOWER(location) LIKE ?"+likeEscape, likePattern(loc))
	}
	if cat := strings.TrimSpace(params.Category); cat != "" {
		q = q.Where("category = ?", cat)
	}
	if params.PostType != "" {
		q = q.Where("post_type = ?", params.PostType)
	}
	if jt := strings.TrimSpace(params.JobType); jt != "" {
		q = q.Where(datatypes.JSONQuery("details").Equals(jt, "type"))
	}
	if lvl := strings.TrimSpace(params.ExperienceLevel); lvl != "" {
		q = q.Where(datatypes.JSONQuery("details").Equals(lvl, "experienceLevel"))
	}

	var listings []models.Listing
	if err = q.Order("created_at DESC").Order("id DESC").Find(&listings).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return listings, nil
}

// Featured returns up to limit active listings. With flaggedFirst, listings
// marked isFeatured lead and recency fills the rest; otherwise pure recency.
func (r *listingRepository) Featured(ctx context.Context, limit int, flaggedFirst bool) (_ []models.Listing, err error) {
	ctx, done := instrument(ctx, "Featured", listingsTable)
	defer func() { done(err) }()

	if limit <= 0 || limit > FeaturedLimit {
		limit = FeaturedLimit
	}

	key := fmt.Sprintf("%s:%t:%d", cache.FeaturedKey(ctx), flaggedFirst, limit)
	var listings []models.Listing
	err = cache.Aside(ctx, key, &listings, cache.ListTTL, func() error {
		q := r.db.WithContext(ctx).Preload("Company").Where("is_active = ?", true)
		if flaggedFirst {
			q = q.Order("is_featured DESC")
		}
		if err := q.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&listings).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return listings, nil
}

// MatchTitles returns active listings whose title contains any keyword.
func (r *listingRepository) MatchTitles(ctx context.Context, keywords []string, limit int) (_ []models.Listing, err error) {
	ctx, done := instrument(ctx, "MatchTitles", listingsTable)
	defer func() { done(err) }()

	if len(keywords) == 0 {
		return []models.Listing{}, nil
	}

	conds := make([]string, 0, len(keywords))
	args := make([]interface{}, 0, len(keywords))
	for _, kw := range keywords {
		conds = append(conds, "LOWER(title) LIKE ?"+likeEscape)
		args = append(args, likePattern(kw))
	}

	q := r.db.WithContext(ctx).Preload("Company").
		Where("is_active = ?", true).
		Where("("+strings.Join(conds, " OR ")+")", args...).
		Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var listings []models.Listing
	if err = q.Find(&listings).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return listings, nil
}

func (r *listingRepository) ListAll(ctx context.Context, filter AdminListingFilter) (_ []models.Listing, err error) {
	ctx, done := instrument(ctx, "ListAll", listingsTable)
	defer func() { done(err) }()

	q := r.db.WithContext(ctx).Preload("Company")
	if filter.IncludeDeleted {
		q = q.Unscoped()
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.PostType != "" {
		q = q.Where("post_type = ?", filter.PostType)
	}

	var listings []models.Listing
	if err = q.Order("created_at DESC").Order("id DESC").Find(&listings).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return listings, nil
}

func (r *listingRepository) ListByOwner(ctx context.Context, userID uint) (_ []models.Listing, err error) {
	ctx, done := instrument(ctx, "ListByOwner", listingsTable)
	defer func() { done(err) }()

	var listings []models.Listing
	if err = r.db.WithContext(ctx).Preload("Company").
		Where("posted_by_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&listings).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return listings, nil
}

type categoryCount struct {
	Category string
	Count    int64
}

func (r *listingRepository) CountActiveByCategory(ctx context.Context) (_ map[string]int64, err error) {
	ctx, done := instrument(ctx, "CountActiveByCategory", listingsTable)
	defer func() { done(err) }()

	var rows []categoryCount
	if err = r.db.WithContext(ctx).Model(&models.Listing{}).
		Select("category, COUNT(*) AS count").
		Where("is_active = ?", true).
		Group("category").
		Scan(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Category] = row.Count
	}
	return out, nil
}

// deadlineKeys maps the post types that expire to the payload date they expire on.
var deadlineKeys = map[models.PostType]string{
	models.PostTypeTender:  "tenderDeadline",
	models.PostTypeAuction: "auctionDate",
}

// DeactivateExpired flips isActive off for tenders and auctions whose
// deadline (YYYY-MM-DD) is before today. Moderation status is untouched.
func (r *listingRepository) DeactivateExpired(ctx context.Context, today string) (_ map[models.PostType]int64, err error) {
	ctx, done := instrument(ctx, "DeactivateExpired", listingsTable)
	defer func() { done(err) }()

	out := make(map[models.PostType]int64, len(deadlineKeys))
	for postType, key := range deadlineKeys {
		var ids []uint
		if err = r.db.WithContext(ctx).Model(&models.Listing{}).
			Where("post_type = ? AND is_active = ?", postType, true).
			Where("? < ?", datatypes.JSONQuery("details").Extract(key), today).
			Pluck("id", &ids).Error; err != nil {
			return nil, models.NewInternalError(err)
		}
		if len(ids) == 0 {
			continue
		}

		res := r.db.WithContext(ctx).Model(&models.Listing{}).
			Where("id IN ?", ids).
			Update("is_active", false)
		if err = res.Error; err != nil {
			return nil, models.NewInternalError(err)
		}
		out[postType] = res.RowsAffected
		for _, id := range ids {
			cache.Invalidate(ctx, cache.ListingKey(id))
		}
	}

	if len(out) > 0 {
		cache.InvalidateListings(ctx)
	}
	return out, nil
}

type groupCount struct {
	GroupKey string
	Count    int64
}

func (r *listingRepository) Stats(ctx context.Context) (_ *ListingStats, err error) {
	ctx, done := instrument(ctx, "Stats", listingsTable)
	defer func() { done(err) }()

	stats := &ListingStats{
		ByStatus:   make(map[string]int64),
		ByPostType: make(map[string]int64),
	}
	db := r.db.WithContext(ctx)

	if err = db.Model(&models.Listing{}).Count(&stats.Total).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err = db.Model(&models.Listing{}).Where("is_active = ?", true).Count(&stats.Active).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err = db.Model(&models.Listing{}).Where("is_featured = ?", true).Count(&stats.Featured).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	for column, target := range map[string]map[string]int64{
		"status":    stats.ByStatus,
		"post_type": stats.ByPostType,
	} {
		var rows []groupCount
		if err = db.Model(&models.Listing{}).
			Select(column + " AS group_key, COUNT(*) AS count").
			Group(column).
			Scan(&rows).Error; err != nil {
			return nil, models.NewInternalError(err)
		}
		for _, row := range rows {
			target[row.GroupKey] = row.Count
		}
	}
	return stats, nil
}
