package service

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"bizrwanda/internal/middleware"
	"bizrwanda/internal/models"
	"bizrwanda/internal/observability"
	"bizrwanda/internal/repository"
)

const (
	maxCoverLetterLength = 5000

	// EventApplicationStatus is pushed to an applicant when their status changes.
	EventApplicationStatus = "application_status"
	// EventApplicationReceived is pushed to the listing owner on a new application.
	EventApplicationReceived = "application_received"
)

type ApplicationService struct {
	applications repository.ApplicationRepository
	listings     repository.ListingRepository
	notifier     Broadcaster
}

// ApplyInput is a job seeker's application to a job listing.
type ApplyInput struct {
	Actor       Actor
	ListingID   uint
	CoverLetter string
}

// UpdateApplicationStatusInput moves an application through the pipeline.
type UpdateApplicationStatusInput struct {
	Actor         Actor
	ApplicationID uint
	Status        string
}

func NewApplicationService(
	applications repository.ApplicationRepository,
	listings repository.ListingRepository,
	notifier Broadcaster,
) *ApplicationService {
	if notifier == nil {
		notifier = noopBroadcaster{}
	}
	return &ApplicationService{
		applications: applications,
		listings:     listings,
		notifier:     notifier,
	}
}

// Apply records an application. Only job seekers may apply, and only to
// active listings of the job post type; applying twice is a conflict.
func (s *ApplicationService) Apply(ctx context.Context, in ApplyInput) (*models.Application, error) {
	if in.Actor.Role != models.RoleJobSeeker {
		return nil, models.NewForbiddenError("Only job seekers can apply")
	}

	coverLetter := strings.TrimSpace(in.CoverLetter)
	if utf8.RuneCountInString(coverLetter) > maxCoverLetterLength {
		return nil, models.NewFieldValidationError(map[string]string{
			"coverLetter": "must be at most 5000 characters",
		})
	}

	l, err := s.listings.GetByID(ctx, in.ListingID)
	if err != nil {
		return nil, err
	}
	if l.PostType != models.PostTypeJob {
		return nil, models.NewValidationError("Applications are only accepted for job listings")
	}
	if !l.IsActive {
		return nil, models.NewValidationError("This listing is no longer accepting applications")
	}

	app := &models.Application{
		UserID:      in.Actor.UserID,
		JobID:       l.ID,
		Status:      models.ApplicationStatusApplied,
		CoverLetter: coverLetter,
	}
	if err := s.applications.Create(ctx, app); err != nil {
		return nil, err
	}
	observability.ApplicationsSubmitted.Inc()

	if l.PostedByID != 0 {
		s.notify(ctx, l.PostedByID, EventApplicationReceived, map[string]interface{}{
			"applicationId": app.ID,
			"jobId":         l.ID,
			"jobTitle":      l.Title,
		})
	}
	return app, nil
}

func (s *ApplicationService) Get(ctx context.Context, actor Actor, id uint) (*models.Application, error) {
	app, err := s.applications.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.canView(actor, app) {
		return nil, models.NewForbiddenError("You cannot view this application")
	}
	return app, nil
}

func (s *ApplicationService) ListMine(ctx context.Context, actor Actor) ([]models.Application, error) {
	return s.applications.ListByUser(ctx, actor.UserID)
}

// ListForEmployer returns applications to the actor's listings; admins see all.
func (s *ApplicationService) ListForEmployer(ctx context.Context, actor Actor) ([]models.Application, error) {
	if actor.IsAdmin() {
		return s.applications.ListAll(ctx)
	}
	if !actor.CanPost() {
		return nil, models.NewForbiddenError("Employer access required")
	}
	return s.applications.ListByJobOwner(ctx, actor.UserID)
}

// UpdateStatus sets any valid status. Only the owner of the listing or an
// admin may change it.
func (s *ApplicationService) UpdateStatus(ctx context.Context, in UpdateApplicationStatusInput) (*models.Application, error) {
	status, err := models.ParseApplicationStatus(in.Status)
	if err != nil {
		return nil, models.NewFieldValidationError(map[string]string{
			"status": "must be one of: applied, reviewed, interview_scheduled, hired, rejected",
		})
	}

	app, err := s.applications.GetByID(ctx, in.ApplicationID)
	if err != nil {
		return nil, err
	}
	if !in.Actor.IsAdmin() && (app.Job == nil || !app.Job.OwnedBy(in.Actor.UserID)) {
		return nil, models.NewForbiddenError("You can only manage applications to your own listings")
	}

	if err := s.applications.UpdateStatus(ctx, app.ID, status); err != nil {
		return nil, err
	}
	app.Status = status

	payload := map[string]interface{}{
		"applicationId": app.ID,
		"jobId":         app.JobID,
		"status":        status,
	}
	if app.Job != nil {
		payload["jobTitle"] = app.Job.Title
	}
	s.notify(ctx, app.UserID, EventApplicationStatus, payload)
	return app, nil
}

func (s *ApplicationService) canView(actor Actor, app *models.Application) bool {
	if actor.IsAdmin() || app.UserID == actor.UserID {
		return true
	}
	return app.Job != nil && app.Job.OwnedBy(actor.UserID)
}

// notify is best effort; a failed push never fails the request.
func (s *ApplicationService) notify(ctx context.Context, userID uint, event string, payload interface{}) {
	if err := s.notifier.NotifyUser(ctx, userID, event, payload); err != nil {
		middleware.Logger.WarnContext(ctx, "Failed to push application event",
			slog.String("event", event),
			slog.Uint64("user_id", uint64(userID)),
			slog.String("error", err.Error()),
		)
	}
}
