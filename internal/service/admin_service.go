package service

import (
	"context"
	"log/slog"
	"strings"

	"bizrwanda/internal/featureflags"
	"bizrwanda/internal/middleware"
	"bizrwanda/internal/models"
	"bizrwanda/internal/repository"
	"bizrwanda/internal/validation"
)

// DefaultFeaturedSections are the landing page blocks every install starts with.
var DefaultFeaturedSections = []models.FeaturedSection{
	{Key: "featured_jobs", Title: "Featured Opportunities", Enabled: true, Position: 1, Limit: repository.FeaturedLimit},
	{Key: "featured_companies", Title: "Top Companies", Enabled: true, Position: 2, Limit: featuredCompanyLimit},
	{Key: "categories", Title: "Browse by Category", Enabled: true, Position: 3, Limit: 12},
}

// AdminService backs the admin dashboard: statistics, reference data and
// platform content. Listing moderation lives on ListingService.
type AdminService struct {
	users        repository.UserRepository
	listings     repository.ListingRepository
	applications repository.ApplicationRepository
	companies    repository.CompanyRepository
	categories   repository.CategoryRepository
	sections     repository.FeaturedSectionRepository
	notices      repository.NotificationRepository
	broadcaster  Broadcaster
	flags        *featureflags.Manager
}

// AdminDeps groups the repositories AdminService reads and writes.
type AdminDeps struct {
	Users         repository.UserRepository
	Listings      repository.ListingRepository
	Applications  repository.ApplicationRepository
	Companies     repository.CompanyRepository
	Categories    repository.CategoryRepository
	Sections      repository.FeaturedSectionRepository
	Notifications repository.NotificationRepository
	Broadcaster   Broadcaster
	Flags         *featureflags.Manager
}

// Statistics is the admin dashboard summary.
type Statistics struct {
	Users           map[string]int64         `json:"users"`
	TotalUsers      int64                    `json:"totalUsers"`
	Listings        *repository.ListingStats `json:"listings"`
	Applications    map[string]int64         `json:"applications"`
	TotalCompanies  int64                    `json:"totalCompanies"`
	TotalCategories int64                    `json:"totalCategories"`
}

// CategoryInput creates or renames a category.
type CategoryInput struct {
	Name string `json:"name" validate:"required,min=2,max=120"`
	Icon string `json:"icon" validate:"max=80"`
}

// FeaturedSectionPatch changes one landing page block. Nil fields are kept.
type FeaturedSectionPatch struct {
	ID       uint    `json:"id" validate:"required"`
	Title    *string `json:"title,omitempty" validate:"omitempty,min=2,max=200"`
	Enabled  *bool   `json:"enabled,omitempty"`
	Position *int    `json:"position,omitempty" validate:"omitempty,gte=0"`
	Limit    *int    `json:"limit,omitempty" validate:"omitempty,gte=1,lte=50"`
}

// NotificationInput is a platform announcement banner.
type NotificationInput struct {
	Title    string `json:"title" validate:"required,min=2,max=200"`
	Message  string `json:"message" validate:"required,max=2000"`
	Audience string `json:"audience" validate:"omitempty,oneof=all job_seeker employer"`
	Level    string `json:"level" validate:"omitempty,oneof=info success warning error"`
	IsActive *bool  `json:"isActive,omitempty"`
}

func NewAdminService(deps AdminDeps) *AdminService {
	if deps.Broadcaster == nil {
		deps.Broadcaster = noopBroadcaster{}
	}
	if deps.Flags == nil {
		deps.Flags = featureflags.NewManager("")
	}
	return &AdminService{
		users:        deps.Users,
		listings:     deps.Listings,
		applications: deps.Applications,
		companies:    deps.Companies,
		categories:   deps.Categories,
		sections:     deps.Sections,
		notices:      deps.Notifications,
		broadcaster:  deps.Broadcaster,
		flags:        deps.Flags,
	}
}

func (s *AdminService) Statistics(ctx context.Context) (*Statistics, error) {
	users, err := s.users.CountByRole(ctx)
	if err != nil {
		return nil, err
	}
	listings, err := s.listings.Stats(ctx)
	if err != nil {
		return nil, err
	}
	applications, err := s.applications.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	companies, err := s.companies.Count(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := s.categories.Count(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Statistics{
		Users:           users,
		Listings:        listings,
		Applications:    applications,
		TotalCompanies:  companies,
		TotalCategories: categories,
	}
	for _, n := range users {
		stats.TotalUsers += n
	}
	return stats, nil
}

// Users

func (s *AdminService) ListUsers(ctx context.Context, role string) ([]models.User, error) {
	r := models.Role(strings.ToLower(strings.TrimSpace(role)))
	if r != "" && !r.Valid() {
		return nil, models.NewFieldValidationError(map[string]string{
			"role": "must be one of: job_seeker, employer, admin",
		})
	}
	return s.users.List(ctx, r)
}

// SetUserRole changes a user's role. Admins cannot demote themselves.
func (s *AdminService) SetUserRole(ctx context.Context, actor Actor, userID uint, role string) (*models.User, error) {
	r := models.Role(strings.ToLower(strings.TrimSpace(role)))
	if !r.Valid() {
		return nil, models.NewFieldValidationError(map[string]string{
			"role": "must be one of: job_seeker, employer, admin",
		})
	}
	if actor.UserID == userID && r != models.RoleAdmin {
		return nil, models.NewValidationError("You cannot remove your own admin role")
	}
	if err := s.users.UpdateRole(ctx, userID, r); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, userID)
}

// Categories

func (s *AdminService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.categories.ListWithCounts(ctx)
}

func (s *AdminService) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Icon = strings.TrimSpace(in.Icon)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	category := &models.Category{Name: in.Name, Icon: in.Icon}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *AdminService) UpdateCategory(ctx context.Context, id uint, in CategoryInput) (*models.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Icon = strings.TrimSpace(in.Icon)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	category.Name = in.Name
	category.Icon = in.Icon
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *AdminService) DeleteCategory(ctx context.Context, id uint) error {
	return s.categories.Delete(ctx, id)
}

// Featured sections

func (s *AdminService) FeaturedSections(ctx context.Context, enabledOnly bool) ([]models.FeaturedSection, error) {
	return s.sections.List(ctx, enabledOnly)
}

// PatchFeaturedSections applies each patch in order and returns the full list.
func (s *AdminService) PatchFeaturedSections(ctx context.Context, patches []FeaturedSectionPatch) ([]models.FeaturedSection, error) {
	if len(patches) == 0 {
		return nil, models.NewValidationError("No changes supplied")
	}
	for _, p := range patches {
		if err := validation.Struct(p); err != nil {
			return nil, err
		}
	}

	for _, p := range patches {
		section, err := s.sections.GetByID(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		if p.Title != nil {
			section.Title = strings.TrimSpace(*p.Title)
		}
		if p.Enabled != nil {
			section.Enabled = *p.Enabled
		}
		if p.Position != nil {
			section.Position = *p.Position
		}
		if p.Limit != nil {
			section.Limit = *p.Limit
		}
		if err := s.sections.Update(ctx, section); err != nil {
			return nil, err
		}
	}
	return s.sections.List(ctx, false)
}

// EnsureFeaturedSections inserts any missing default sections.
func (s *AdminService) EnsureFeaturedSections(ctx context.Context) error {
	return s.sections.EnsureDefaults(ctx, DefaultFeaturedSections)
}

// Notifications

// Notifications lists platform notifications. With role set, only the
// active notifications visible to that audience are returned.
func (s *AdminService) Notifications(ctx context.Context, activeOnly bool, role models.Role) ([]models.PlatformNotification, error) {
	items, err := s.notices.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	if !activeOnly {
		return items, nil
	}
	visible := items[:0]
	for i := range items {
		if items[i].VisibleTo(role) {
			visible = append(visible, items[i])
		}
	}
	return visible, nil
}

// CreateNotification stores a notification and, when active, broadcasts it
// to connected clients. A failed broadcast is logged, not returned.
func (s *AdminService) CreateNotification(ctx context.Context, actor Actor, in NotificationInput) (*models.PlatformNotification, error) {
	in = normalizeNotification(in)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	n := &models.PlatformNotification{
		Title:       in.Title,
		Message:     in.Message,
		Audience:    in.Audience,
		Level:       in.Level,
		IsActive:    in.IsActive == nil || *in.IsActive,
		CreatedByID: actor.UserID,
	}
	if err := s.notices.Create(ctx, n); err != nil {
		return nil, err
	}

	if n.IsActive {
		if err := s.broadcaster.BroadcastPlatform(ctx, n); err != nil {
			middleware.Logger.WarnContext(ctx, "Failed to broadcast platform notification",
				slog.Uint64("notification_id", uint64(n.ID)),
				slog.String("error", err.Error()),
			)
		}
	}
	return n, nil
}

func (s *AdminService) UpdateNotification(ctx context.Context, id uint, in NotificationInput) (*models.PlatformNotification, error) {
	in = normalizeNotification(in)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	n, err := s.notices.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	n.Title = in.Title
	n.Message = in.Message
	n.Audience = in.Audience
	n.Level = in.Level
	if in.IsActive != nil {
		n.IsActive = *in.IsActive
	}
	if err := s.notices.Update(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *AdminService) DeleteNotification(ctx context.Context, id uint) error {
	return s.notices.Delete(ctx, id)
}

func normalizeNotification(in NotificationInput) NotificationInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Message = strings.TrimSpace(in.Message)
	in.Audience = strings.ToLower(strings.TrimSpace(in.Audience))
	in.Level = strings.ToLower(strings.TrimSpace(in.Level))
	if in.Audience == "" {
		in.Audience = models.AudienceAll
	}
	if in.Level == "" {
		in.Level = "info"
	}
	return in
}

// FeatureFlags returns the configured flag values and how they evaluate
// for the calling admin.
func (s *AdminService) FeatureFlags(actor Actor) (map[string]string, map[string]bool) {
	return s.flags.Raw(), s.flags.Snapshot(actor.UserID)
}
