package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"bizrwanda/internal/featureflags"
	"bizrwanda/internal/listing"
	"bizrwanda/internal/models"
	"bizrwanda/internal/observability"
	"bizrwanda/internal/repository"
)

const (
	recommendedLimit  = 10
	minKeywordLength  = 3
	dateLayout        = "2006-01-02"
	deletedNoteFormat = "Deleted by admin #%d on %s"
)

// ListingService implements listing submission, editing, discovery and moderation.
type ListingService struct {
	listings  repository.ListingRepository
	companies repository.CompanyRepository
	profiles  repository.ProfileRepository
	flags     *featureflags.Manager
	now       Clock
}

// CreateListingInput is a listing submission.
type CreateListingInput struct {
	Actor Actor
	Form  listing.Form
}

// EditListingInput replaces the content of an existing listing.
type EditListingInput struct {
	Actor     Actor
	ListingID uint
	Form      listing.Form
}

// AdminUpdateInput is a moderation change. Nil fields are left as they are.
type AdminUpdateInput struct {
	Actor      Actor
	ListingID  uint
	Status     *models.ListingStatus
	IsActive   *bool
	IsFeatured *bool
	AdminNote  string
}

// NewListingService wires the listing service.
func NewListingService(
	listings repository.ListingRepository,
	companies repository.CompanyRepository,
	profiles repository.ProfileRepository,
	flags *featureflags.Manager,
) *ListingService {
	if flags == nil {
		flags = featureflags.NewManager("")
	}
	return &ListingService{
		listings:  listings,
		companies: companies,
		profiles:  profiles,
		flags:     flags,
		now:       systemClock,
	}
}

// WithClock overrides the time source.
func (s *ListingService) WithClock(c Clock) *ListingService {
	s.now = c
	return s
}

// Create validates the form and stores a new listing. New listings are
// always pending moderation, whoever submits them.
func (s *ListingService) Create(ctx context.Context, in CreateListingInput) (*models.Listing, error) {
	if !in.Actor.CanPost() {
		return nil, models.NewForbiddenError("Only employers can post listings")
	}

	draft, err := listing.Validate(in.Form)
	if err != nil {
		return nil, err
	}

	l := &models.Listing{
		Status:     models.ListingStatusPending,
		IsActive:   true,
		PostedByID: in.Actor.UserID,
	}
	if err := draft.Apply(l); err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := s.attachCompany(ctx, in.Actor, l); err != nil {
		return nil, err
	}
	if in.Actor.IsAdmin() {
		l.AppendAdminNote(fmt.Sprintf("Created by admin #%d on %s", in.Actor.UserID, s.now().UTC().Format(dateLayout)))
	}

	if err := s.listings.Create(ctx, l); err != nil {
		return nil, err
	}
	observability.ListingsCreated.WithLabelValues(string(l.PostType)).Inc()
	observability.AnnotateListing(ctx, l.ID, string(l.PostType), string(l.Status))
	return l, nil
}

// Edit replaces a listing's content. Only the submitter or an admin may edit;
// the post type is fixed at creation and moderation fields are untouched.
func (s *ListingService) Edit(ctx context.Context, in EditListingInput) (*models.Listing, error) {
	l, err := s.listings.GetByID(ctx, in.ListingID)
	if err != nil {
		return nil, err
	}
	if !in.Actor.IsAdmin() && !l.OwnedBy(in.Actor.UserID) {
		return nil, models.NewForbiddenError("You can only edit your own listings")
	}

	form := in.Form
	if strings.TrimSpace(form.PostType) == "" {
		form.PostType = string(l.PostType)
	}
	if models.PostType(strings.ToLower(strings.TrimSpace(form.PostType))) != l.PostType {
		return nil, models.NewFieldValidationError(map[string]string{
			"postType": "cannot be changed after creation",
		})
	}

	draft, err := listing.Validate(form)
	if err != nil {
		return nil, err
	}
	if err := draft.Apply(l); err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := s.attachCompany(ctx, in.Actor, l); err != nil {
		return nil, err
	}

	if err := s.listings.Update(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// attachCompany checks the company a listing is filed under belongs to the
// actor (admins may use any) and copies its name onto the listing.
func (s *ListingService) attachCompany(ctx context.Context, actor Actor, l *models.Listing) error {
	if l.CompanyID == nil {
		return nil
	}
	company, err := s.companies.GetByID(ctx, *l.CompanyID)
	if err != nil {
		if models.IsNotFound(err) {
			return models.NewFieldValidationError(map[string]string{"companyId": "does not exist"})
		}
		return err
	}
	if !actor.IsAdmin() && company.UserID != actor.UserID {
		return models.NewForbiddenError("You can only post on behalf of your own company")
	}
	l.CompanyName = company.Name
	l.Company = nil
	return nil
}

// Get returns one listing.
func (s *ListingService) Get(ctx context.Context, id uint) (*models.Listing, error) {
	return s.listings.GetByID(ctx, id)
}

// FormValues returns the flat form an edit screen is prefilled with.
func (s *ListingService) FormValues(ctx context.Context, actor Actor, id uint) (*listing.Form, error) {
	l, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !l.OwnedBy(actor.UserID) {
		return nil, models.NewForbiddenError("You can only edit your own listings")
	}
	form, err := listing.FormFromListing(l)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &form, nil
}

// Search runs the public listing search.
func (s *ListingService) Search(ctx context.Context, params repository.SearchParams) ([]models.Listing, error) {
	if params.PostType != "" && !params.PostType.Valid() {
		return nil, models.NewFieldValidationError(map[string]string{
			"postType": "must be one of: job, auction, tender, announcement",
		})
	}
	return s.listings.Search(ctx, params)
}

// Featured returns the landing page strip: flagged listings first, topped
// up by recency, unless featured_recency_only is on.
func (s *ListingService) Featured(ctx context.Context) ([]models.Listing, error) {
	flaggedFirst := !s.flags.Enabled(featureflags.FeaturedRecencyOnly, 0)
	return s.listings.Featured(ctx, repository.FeaturedLimit, flaggedFirst)
}

// Recommended matches the user's profile title keywords against listing
// titles, ranking by how many keywords a title contains. Without a usable
// profile, or with no match, it falls back to the featured listings.
func (s *ListingService) Recommended(ctx context.Context, userID uint) ([]models.Listing, error) {
	if !s.flags.Enabled(featureflags.Recommendations, userID) {
		return s.Featured(ctx)
	}

	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if models.IsNotFound(err) {
			return s.Featured(ctx)
		}
		return nil, err
	}

	keywords := TitleKeywords(profile.Title)
	if len(keywords) == 0 {
		return s.Featured(ctx)
	}

	matches, err := s.listings.MatchTitles(ctx, keywords, 0)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return s.Featured(ctx)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return keywordHits(matches[i].Title, keywords) > keywordHits(matches[j].Title, keywords)
	})
	if len(matches) > recommendedLimit {
		matches = matches[:recommendedLimit]
	}
	return matches, nil
}

// TitleKeywords splits a profile title into lowercase keywords of at least
// three characters, without duplicates, in order of appearance.
func TitleKeywords(title string) []string {
	words := strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		if utf8.RuneCountInString(w) < minKeywordLength {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

func keywordHits(title string, keywords []string) int {
	lower := strings.ToLower(title)
	hits := 0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			hits++
		}
	}
	return hits
}

// Moderate applies an admin status, visibility or featured change.
// Deactivating a listing always rejects it.
func (s *ListingService) Moderate(ctx context.Context, in AdminUpdateInput) (*models.Listing, error) {
	if !in.Actor.IsAdmin() {
		return nil, models.NewForbiddenError("Admin access required")
	}

	l, err := s.listings.GetByID(ctx, in.ListingID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, models.NewFieldValidationError(map[string]string{
				"status": "must be one of: pending, approved, rejected",
			})
		}
		fields["status"] = *in.Status
	}
	if in.IsActive != nil {
		fields["is_active"] = *in.IsActive
		if !*in.IsActive {
			fields["status"] = models.ListingStatusRejected
		}
	}
	if in.IsFeatured != nil {
		fields["is_featured"] = *in.IsFeatured
	}
	if note := strings.TrimSpace(in.AdminNote); note != "" {
		l.AppendAdminNote(note)
		fields["admin_notes"] = l.AdminNotes
	}
	if len(fields) == 0 {
		return nil, models.NewValidationError("No changes supplied")
	}

	if err := s.listings.UpdateFields(ctx, l.ID, fields); err != nil {
		return nil, err
	}
	if status, ok := fields["status"].(models.ListingStatus); ok {
		observability.RecordModeration(ctx, l.ID, string(status))
	}
	return s.listings.GetByID(ctx, l.ID)
}

// Delete soft-deletes a listing: it is rejected, the reason is appended to
// its admin notes and the row is hidden but kept.
func (s *ListingService) Delete(ctx context.Context, actor Actor, id uint, reason string) error {
	if !actor.IsAdmin() {
		return models.NewForbiddenError("Admin access required")
	}
	note := fmt.Sprintf(deletedNoteFormat, actor.UserID, s.now().UTC().Format(dateLayout))
	if reason = strings.TrimSpace(reason); reason != "" {
		note += ": " + reason
	}
	if err := s.listings.SoftDelete(ctx, id, note); err != nil {
		return err
	}
	observability.RecordModeration(ctx, id, string(models.ListingStatusRejected))
	return nil
}

// ListForOwner returns every listing the user submitted.
func (s *ListingService) ListForOwner(ctx context.Context, userID uint) ([]models.Listing, error) {
	return s.listings.ListByOwner(ctx, userID)
}

// AdminList returns the moderation queue.
func (s *ListingService) AdminList(ctx context.Context, filter repository.AdminListingFilter) ([]models.Listing, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, models.NewFieldValidationError(map[string]string{
			"status": "must be one of: pending, approved, rejected",
		})
	}
	if filter.PostType != "" && !filter.PostType.Valid() {
		return nil, models.NewFieldValidationError(map[string]string{
			"postType": "must be one of: job, auction, tender, announcement",
		})
	}
	return s.listings.ListAll(ctx, filter)
}

// SweepExpired deactivates tenders and auctions whose date has passed.
func (s *ListingService) SweepExpired(ctx context.Context) (int64, error) {
	today := s.now().UTC().Format(dateLayout)
	counts, err := s.listings.DeactivateExpired(ctx, today)
	if err != nil {
		return 0, err
	}
	var total int64
	for postType, n := range counts {
		observability.SweepDeactivations.WithLabelValues(string(postType)).Add(float64(n))
		total += n
	}
	return total, nil
}
