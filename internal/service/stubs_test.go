package service

import (
	"context"

	"bizrwanda/internal/models"
	"bizrwanda/internal/repository"
)

// listingRepoStub is a stub for repository.ListingRepository. Unset funcs
// return zero values.
type listingRepoStub struct {
	createFn            func(context.Context, *models.Listing) error
	getByIDFn           func(context.Context, uint) (*models.Listing, error)
	updateFn            func(context.Context, *models.Listing) error
	updateFieldsFn      func(context.Context, uint, map[string]interface{}) error
	softDeleteFn        func(context.Context, uint, string) error
	searchFn            func(context.Context, repository.SearchParams) ([]models.Listing, error)
	featuredFn          func(context.Context, int, bool) ([]models.Listing, error)
	matchTitlesFn       func(context.Context, []string, int) ([]models.Listing, error)
	listAllFn           func(context.Context, repository.AdminListingFilter) ([]models.Listing, error)
	listByOwnerFn       func(context.Context, uint) ([]models.Listing, error)
	deactivateExpiredFn func(context.Context, string) (map[models.PostType]int64, error)
	statsFn             func(context.Context) (*repository.ListingStats, error)
}

func (s *listingRepoStub) Create(ctx context.Context, l *models.Listing) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, l)
}
func (s *listingRepoStub) GetByID(ctx context.Context, id uint) (*models.Listing, error) {
	if s.getByIDFn == nil {
		return nil, models.NewNotFoundError("Listing", id)
	}
	return s.getByIDFn(ctx, id)
}
func (s *listingRepoStub) GetByIDUnscoped(ctx context.Context, id uint) (*models.Listing, error) {
	return s.GetByID(ctx, id)
}
func (s *listingRepoStub) Update(ctx context.Context, l *models.Listing) error {
	if s.updateFn == nil {
		return nil
	}
	return s.updateFn(ctx, l)
}
func (s *listingRepoStub) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	if s.updateFieldsFn == nil {
		return nil
	}
	return s.updateFieldsFn(ctx, id, fields)
}
func (s *listingRepoStub) SoftDelete(ctx context.Context, id uint, note string) error {
	if s.softDeleteFn == nil {
		return nil
	}
	return s.softDeleteFn(ctx, id, note)
}
func (s *listingRepoStub) Search(ctx context.Context, params repository.SearchParams) ([]models.Listing, error) {
	if s.searchFn == nil {
		return nil, nil
	}
	return s.searchFn(ctx, params)
}
func (s *listingRepoStub) Featured(ctx context.Context, limit int, flaggedFirst bool) ([]models.Listing, error) {
	if s.featuredFn == nil {
		return nil, nil
	}
	return s.featuredFn(ctx, limit, flaggedFirst)
}
func (s *listingRepoStub) MatchTitles(ctx context.Context, keywords []string, limit int) ([]models.Listing, error) {
	if s.matchTitlesFn == nil {
		return nil, nil
	}
	return s.matchTitlesFn(ctx, keywords, limit)
}
func (s *listingRepoStub) ListAll(ctx context.Context, filter repository.AdminListingFilter) ([]models.Listing, error) {
	if s.listAllFn == nil {
		return nil, nil
	}
	return s.listAllFn(ctx, filter)
}
func (s *listingRepoStub) ListByOwner(ctx context.Context, userID uint) ([]models.Listing, error) {
	if s.listByOwnerFn == nil {
		return nil, nil
	}
	return s.listByOwnerFn(ctx, userID)
}
func (s *listingRepoStub) CountActiveByCategory(context.Context) (map[string]int64, error) {
	return map[string]int64{}, nil
}
func (s *listingRepoStub) DeactivateExpired(ctx context.Context, today string) (map[models.PostType]int64, error) {
	if s.deactivateExpiredFn == nil {
		return map[models.PostType]int64{}, nil
	}
	return s.deactivateExpiredFn(ctx, today)
}
func (s *listingRepoStub) Stats(ctx context.Context) (*repository.ListingStats, error) {
	if s.statsFn == nil {
		return &repository.ListingStats{}, nil
	}
	return s.statsFn(ctx)
}

// companyRepoStub is a stub for repository.CompanyRepository.
type companyRepoStub struct {
	companies map[uint]*models.Company
	upsertFn  func(context.Context, *models.Company) error
	count     int64
}

func (s *companyRepoStub) GetByID(_ context.Context, id uint) (*models.Company, error) {
	if c, ok := s.companies[id]; ok {
		return c, nil
	}
	return nil, models.NewNotFoundError("Company", id)
}
func (s *companyRepoStub) GetByUserID(_ context.Context, userID uint) (*models.Company, error) {
	for _, c := range s.companies {
		if c.UserID == userID {
			return c, nil
		}
	}
	return nil, models.NewNotFoundError("Company for user", userID)
}
func (s *companyRepoStub) UpsertByUserID(ctx context.Context, c *models.Company) error {
	if s.upsertFn == nil {
		return nil
	}
	return s.upsertFn(ctx, c)
}
func (s *companyRepoStub) Featured(context.Context, int) ([]models.Company, error) { return nil, nil }
func (s *companyRepoStub) List(context.Context) ([]models.Company, error)          { return nil, nil }
func (s *companyRepoStub) Count(context.Context) (int64, error)                    { return s.count, nil }

// profileRepoStub is a stub for repository.ProfileRepository.
type profileRepoStub struct {
	profiles map[uint]*models.JobSeekerProfile
	upserted *models.JobSeekerProfile
}

func (s *profileRepoStub) GetByUserID(_ context.Context, userID uint) (*models.JobSeekerProfile, error) {
	if p, ok := s.profiles[userID]; ok {
		return p, nil
	}
	return nil, models.NewNotFoundError("Profile for user", userID)
}
func (s *profileRepoStub) Upsert(_ context.Context, p *models.JobSeekerProfile) error {
	s.upserted = p
	return nil
}

// userRepoStub is an in-memory repository.UserRepository.
type userRepoStub struct {
	users     map[uint]*models.User
	nextID    uint
	createErr error
	updated   []*models.User
	roleCalls map[uint]models.Role
}

func newUserRepoStub(users ...*models.User) *userRepoStub {
	s := &userRepoStub{users: map[uint]*models.User{}, nextID: 100, roleCalls: map[uint]models.Role{}}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *userRepoStub) GetByID(_ context.Context, id uint) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, models.NewNotFoundError("User", id)
}
func (s *userRepoStub) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, models.NewNotFoundError("User", email)
}
func (s *userRepoStub) GetByFirebaseUID(_ context.Context, uid string) (*models.User, error) {
	for _, u := range s.users {
		if u.FirebaseUID != nil && *u.FirebaseUID == uid {
			return u, nil
		}
	}
	return nil, models.NewNotFoundError("User", uid)
}
func (s *userRepoStub) Create(_ context.Context, u *models.User) error {
	if s.createErr != nil {
		return s.createErr
	}
	if _, err := s.GetByEmail(context.Background(), u.Email); err == nil {
		return models.NewConflictError("An account with this email already exists")
	}
	s.nextID++
	u.ID = s.nextID
	s.users[u.ID] = u
	return nil
}
func (s *userRepoStub) Update(_ context.Context, u *models.User) error {
	s.updated = append(s.updated, u)
	s.users[u.ID] = u
	return nil
}
func (s *userRepoStub) UpdateRole(_ context.Context, id uint, role models.Role) error {
	u, ok := s.users[id]
	if !ok {
		return models.NewNotFoundError("User", id)
	}
	s.roleCalls[id] = role
	u.Role = role
	return nil
}
func (s *userRepoStub) List(_ context.Context, role models.Role) ([]models.User, error) {
	var out []models.User
	for _, u := range s.users {
		if role == "" || u.Role == role {
			out = append(out, *u)
		}
	}
	return out, nil
}
func (s *userRepoStub) CountByRole(context.Context) (map[string]int64, error) {
	out := map[string]int64{}
	for _, u := range s.users {
		out[string(u.Role)]++
	}
	return out, nil
}

// applicationRepoStub is a stub for repository.ApplicationRepository.
type applicationRepoStub struct {
	apps         map[uint]*models.Application
	createErr    error
	created      []*models.Application
	statusCalls  map[uint]models.ApplicationStatus
	listByOwner  uint
	listAllCalls int
}

func newApplicationRepoStub(apps ...*models.Application) *applicationRepoStub {
	s := &applicationRepoStub{apps: map[uint]*models.Application{}, statusCalls: map[uint]models.ApplicationStatus{}}
	for _, a := range apps {
		s.apps[a.ID] = a
	}
	return s
}

func (s *applicationRepoStub) Create(_ context.Context, app *models.Application) error {
	if s.createErr != nil {
		return s.createErr
	}
	app.ID = uint(len(s.apps) + 1)
	s.apps[app.ID] = app
	s.created = append(s.created, app)
	return nil
}
func (s *applicationRepoStub) GetByID(_ context.Context, id uint) (*models.Application, error) {
	if a, ok := s.apps[id]; ok {
		return a, nil
	}
	return nil, models.NewNotFoundError("Application", id)
}
func (s *applicationRepoStub) ListByUser(_ context.Context, userID uint) ([]models.Application, error) {
	var out []models.Application
	for _, a := range s.apps {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}
func (s *applicationRepoStub) ListByJobOwner(_ context.Context, ownerID uint) ([]models.Application, error) {
	s.listByOwner = ownerID
	return nil, nil
}
func (s *applicationRepoStub) ListAll(context.Context) ([]models.Application, error) {
	s.listAllCalls++
	return nil, nil
}
func (s *applicationRepoStub) UpdateStatus(_ context.Context, id uint, status models.ApplicationStatus) error {
	s.statusCalls[id] = status
	return nil
}
func (s *applicationRepoStub) CountByStatus(context.Context) (map[string]int64, error) {
	return map[string]int64{"applied": int64(len(s.apps))}, nil
}

// broadcasterStub records pushes.
type broadcasterStub struct {
	platform []*models.PlatformNotification
	user     []uint
	events   []string
	err      error
}

func (b *broadcasterStub) BroadcastPlatform(_ context.Context, n *models.PlatformNotification) error {
	b.platform = append(b.platform, n)
	return b.err
}

func (b *broadcasterStub) NotifyUser(_ context.Context, userID uint, event string, _ interface{}) error {
	b.user = append(b.user, userID)
	b.events = append(b.events, event)
	return b.err
}
