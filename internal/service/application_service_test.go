package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"bizrwanda/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listingsByID(items ...*models.Listing) *listingRepoStub {
	return &listingRepoStub{getByIDFn: func(_ context.Context, id uint) (*models.Listing, error) {
		for _, l := range items {
			if l.ID == id {
				return l, nil
			}
		}
		return nil, models.NewNotFoundError("Listing", id)
	}}
}

func TestApplicationService_Apply(t *testing.T) {
	job := &models.Listing{ID: 5, PostType: models.PostTypeJob, IsActive: true, PostedByID: 7, Title: "Accountant"}
	apps := newApplicationRepoStub()
	push := &broadcasterStub{}
	svc := NewApplicationService(apps, listingsByID(job), push)

	app, err := svc.Apply(context.Background(), ApplyInput{Actor: jobSeeker, ListingID: 5, CoverLetter: "  Hello  "})
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusApplied, app.Status)
	assert.Equal(t, uint(20), app.UserID)
	assert.Equal(t, uint(5), app.JobID)
	assert.Equal(t, "Hello", app.CoverLetter)
	assert.Equal(t, []uint{7}, push.user)
	assert.Equal(t, []string{EventApplicationReceived}, push.events)
}

func TestApplicationService_ApplyRules(t *testing.T) {
	tender := &models.Listing{ID: 6, PostType: models.PostTypeTender, IsActive: true}
	closed := &models.Listing{ID: 7, PostType: models.PostTypeJob, IsActive: false}
	svc := NewApplicationService(newApplicationRepoStub(), listingsByID(tender, closed), nil)

	tests := []struct {
		name  string
		actor Actor
		id    uint
		cover string
		code  string
	}{
		{"employer cannot apply", employer, 7, "", models.CodeForbidden},
		{"not a job", jobSeeker, 6, "", models.CodeValidation},
		{"inactive", jobSeeker, 7, "", models.CodeValidation},
		{"missing", jobSeeker, 99, "", models.CodeNotFound},
		{"long cover letter", jobSeeker, 7, strings.Repeat("a", maxCoverLetterLength+1), models.CodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Apply(context.Background(), ApplyInput{Actor: tt.actor, ListingID: tt.id, CoverLetter: tt.cover})
			assert.Equal(t, tt.code, errCode(t, err))
		})
	}
}

func TestApplicationService_ApplyDuplicateConflict(t *testing.T) {
	job := &models.Listing{ID: 5, PostType: models.PostTypeJob, IsActive: true}
	apps := newApplicationRepoStub()
	apps.createErr = models.NewConflictError("You have already applied to this job")
	svc := NewApplicationService(apps, listingsByID(job), nil)

	_, err := svc.Apply(context.Background(), ApplyInput{Actor: jobSeeker, ListingID: 5})
	assert.Equal(t, models.CodeConflict, errCode(t, err))
}

func TestApplicationService_UpdateStatusAnyTransition(t *testing.T) {
	job := &models.Listing{ID: 5, PostedByID: 7, Title: "Accountant"}
	apps := newApplicationRepoStub(&models.Application{ID: 1, UserID: 20, JobID: 5, Job: job, Status: models.ApplicationStatusHired})
	push := &broadcasterStub{}
	svc := NewApplicationService(apps, &listingRepoStub{}, push)

	app, err := svc.UpdateStatus(context.Background(), UpdateApplicationStatusInput{Actor: employer, ApplicationID: 1, Status: " Applied "})
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusApplied, app.Status)
	assert.Equal(t, models.ApplicationStatusApplied, apps.statusCalls[1])
	assert.Equal(t, []uint{20}, push.user)
	assert.Equal(t, []string{EventApplicationStatus}, push.events)
}

func TestApplicationService_UpdateStatusRules(t *testing.T) {
	job := &models.Listing{ID: 5, PostedByID: 7}
	apps := newApplicationRepoStub(&models.Application{ID: 1, UserID: 20, JobID: 5, Job: job})
	svc := NewApplicationService(apps, &listingRepoStub{}, nil)

	_, err := svc.UpdateStatus(context.Background(), UpdateApplicationStatusInput{Actor: other, ApplicationID: 1, Status: "reviewed"})
	assert.Equal(t, models.CodeForbidden, errCode(t, err))

	_, err = svc.UpdateStatus(context.Background(), UpdateApplicationStatusInput{Actor: employer, ApplicationID: 1, Status: "archived"})
	assert.Equal(t, models.CodeValidation, errCode(t, err))

	_, err = svc.UpdateStatus(context.Background(), UpdateApplicationStatusInput{Actor: admin, ApplicationID: 1, Status: "hired"})
	assert.NoError(t, err)
}

func TestApplicationService_NotifyFailureDoesNotFail(t *testing.T) {
	job := &models.Listing{ID: 5, PostedByID: 7}
	apps := newApplicationRepoStub(&models.Application{ID: 1, UserID: 20, JobID: 5, Job: job})
	svc := NewApplicationService(apps, &listingRepoStub{}, &broadcasterStub{err: errors.New("redis down")})

	_, err := svc.UpdateStatus(context.Background(), UpdateApplicationStatusInput{Actor: employer, ApplicationID: 1, Status: "reviewed"})
	assert.NoError(t, err)
}

func TestApplicationService_Visibility(t *testing.T) {
	job := &models.Listing{ID: 5, PostedByID: 7}
	apps := newApplicationRepoStub(&models.Application{ID: 1, UserID: 20, JobID: 5, Job: job})
	svc := NewApplicationService(apps, &listingRepoStub{}, nil)

	for _, actor := range []Actor{jobSeeker, employer, admin} {
		_, err := svc.Get(context.Background(), actor, 1)
		assert.NoError(t, err)
	}
	_, err := svc.Get(context.Background(), other, 1)
	assert.Equal(t, models.CodeForbidden, errCode(t, err))
}

func TestApplicationService_ListForEmployer(t *testing.T) {
	apps := newApplicationRepoStub()
	svc := NewApplicationService(apps, &listingRepoStub{}, nil)

	_, err := svc.ListForEmployer(context.Background(), employer)
	require.NoError(t, err)
	assert.Equal(t, uint(7), apps.listByOwner)

	_, err = svc.ListForEmployer(context.Background(), admin)
	require.NoError(t, err)
	assert.Equal(t, 1, apps.listAllCalls)

	_, err = svc.ListForEmployer(context.Background(), jobSeeker)
	assert.Equal(t, models.CodeForbidden, errCode(t, err))
}
