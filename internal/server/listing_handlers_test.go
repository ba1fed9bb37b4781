package server

import (
	"fmt"
	"net/http"
	"testing"

	"bizrwanda/internal/listing"
	"bizrwanda/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postCompany creates the employer's company through the API.
func (e *testEnv) postCompany(token, name string) models.Company {
	e.t.Helper()
	resp := e.do(http.MethodPost, "/api/companies", token, map[string]string{
		"name":     name,
		"industry": "Technology",
		"location": "Kigali",
	})
	require.Equal(e.t, http.StatusOK, resp.StatusCode)
	return decodeJSON[models.Company](e.t, resp)
}

func jobForm(companyID uint) listing.Form {
	return listing.Form{
		PostType:        "job",
		OwnerType:       listing.OwnerCompany,
		CompanyID:       &companyID,
		Title:           "Backend Engineer",
		Location:        "Kigali",
		Description:     "Build and operate the payment APIs used across Rwanda.",
		Category:        "Technology",
		Type:            "full_time",
		ExperienceLevel: "mid",
		Requirements:    "Go and PostgreSQL experience",
	}
}

func announcementForm(name string) listing.Form {
	return listing.Form{
		PostType:         "announcement",
		OwnerType:        listing.OwnerIndividual,
		IndividualName:   name,
		Title:            "Community meeting",
		Location:         "Huye",
		Description:      "Residents are invited to the sector office on Saturday.",
		Category:         "Community",
		AnnouncementType: "general",
	}
}

func (e *testEnv) postListing(token string, form listing.Form) models.Listing {
	e.t.Helper()
	resp := e.do(http.MethodPost, "/api/jobs", token, form)
	require.Equal(e.t, http.StatusCreated, resp.StatusCode)
	return decodeJSON[models.Listing](e.t, resp)
}

func TestCreateJob_StartsPendingWithCompanyName(t *testing.T) {
	env := newTestEnv(t)
	_, employerToken := env.createUser("hr@kigali-pay.rw", models.RoleEmployer)

	company := env.postCompany(employerToken, "Kigali Pay")
	created := env.postListing(employerToken, jobForm(company.ID))

	assert.Equal(t, models.PostTypeJob, created.PostType)
	assert.Equal(t, models.ListingStatusPending, created.Status)
	assert.True(t, created.IsActive)
	assert.Equal(t, "Kigali Pay", created.CompanyName)
	require.NotNil(t, created.CompanyID)
	assert.Equal(t, company.ID, *created.CompanyID)
}

func TestCreateJob_Validation(t *testing.T) {
	env := newTestEnv(t)
	_, employerToken := env.createUser("hr@example.rw", models.RoleEmployer)

	resp := env.do(http.MethodPost, "/api/jobs", employerToken, listing.Form{PostType: "job", OwnerType: listing.OwnerCompany})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeJSON[models.ErrorResponse](t, resp)
	assert.Equal(t, models.CodeValidation, body.Code)
	assert.Contains(t, body.Fields, "title")
	assert.Contains(t, body.Fields, "companyId")
}

func TestCreateJob_RejectsUnknownPostType(t *testing.T) {
	env := newTestEnv(t)
	_, employerToken := env.createUser("hr@example.rw", models.RoleEmployer)

	form := announcementForm("Jean")
	form.PostType = "classified"
	resp := env.do(http.MethodPost, "/api/jobs", employerToken, form)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeJSON[models.ErrorResponse](t, resp)
	assert.Contains(t, body.Fields, "postType")
}

func TestCreateJob_JobSeekerForbidden(t *testing.T) {
	env := newTestEnv(t)
	_, seekerToken := env.createUser("seeker@example.rw", models.RoleJobSeeker)

	resp := env.do(http.MethodPost, "/api/jobs", seekerToken, announcementForm("Jean"))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestCreateJob_OtherEmployersCompanyForbidden(t *testing.T) {
	env := newTestEnv(t)
	_, ownerToken := env.createUser("owner@example.rw", models.RoleEmployer)
	_, otherToken := env.createUser("other@example.rw", models.RoleEmployer)

	company := env.postCompany(ownerToken, "Owner Ltd")
	resp := env.do(http.MethodPost, "/api/jobs", otherToken, jobForm(company.ID))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestListJobs_FiltersAndTotalCount(t *testing.T) {
	env := newTestEnv(t)
	_, employerToken := env.createUser("hr@example.rw", models.RoleEmployer)

	company := env.postCompany(employerToken, "Umurava Tech")
	env.postListing(employerToken, jobForm(company.ID))
	env.postListing(employerToken, announcementForm("Umurava Tech"))

	resp := env.do(http.MethodGet, "/api/jobs", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "2", resp.Header.Get("X-Total-Count"))
	all := decodeJSON[[]models.Listing](t, resp)
	assert.Len(t, all, 2)

	resp = env.do(http.MethodGet, "/api/jobs?postType=announcement", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "1", resp.Header.Get("X-Total-Count"))
	announcements := decodeJSON[[]models.Listing](t, resp)
	require.Len(t, announcements, 1)
	assert.Equal(t, models.PostTypeAnnouncement, announcements[0].PostType)

	resp = env.do(http.MethodGet, "/api/jobs?keyword=payment", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	matches := decodeJSON[[]models.Listing](t, resp)
	require.Len(t, matches, 1)
	assert.Equal(t, "Backend Engineer", matches[0].Title)

	resp = env.do(http.MethodGet, "/api/jobs?postType=classified", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListJobs_Pagination(t *testing.T) {
	env := newTestEnv(t)
	_, employerToken := env.createUser("hr@example.rw", models.RoleEmployer)

	for i := 0; i < 3; i++ {
		form := announcementForm(fmt.Sprintf("Poster %d", i))
		env.postListing(employerToken, form)
	}

	resp := env.do(http.MethodGet, "/api/jobs?page=2&pageSize=2", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "3", resp.Header.Get("X-Total-Count"))

	page := decodeJSON[listing.Page](t, resp)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 2, page.PageSize)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Items, 1)

	resp = env.do(http.MethodGet, "/api/jobs?page=922337203685477580&pageSize=10", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page = decodeJSON[listing.Page](t, resp)
	assert.Empty(t, page.Items)
	assert.Equal(t, 3, page.Total)
}

func TestGetJob_InactiveVisibleToOwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	_, employerToken := env.createUser("hr@example.rw", models.RoleEmployer)
	_, adminToken := env.createUser("admin@example.rw", models.RoleAdmin)
	_, strangerToken := env.createUser("stranger@example.rw", models.RoleJobSeeker)

	created := env.postListing(employerToken, announcementForm("Jean"))
	path := fmt.Sprintf("/api/jobs/%d", created.ID)

	resp := env.do(http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(http.MethodPatch, fmt.Sprintf("/api/admin/jobs/%d", created.ID), adminToken, map[string]interface{}{
		"isActive": false,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	moderated := decodeJSON[models.Listing](t, resp)
	assert.False(t, moderated.IsActive)
	assert.Equal(t, models.ListingStatusRejected, moderated.Status)

	resp = env.do(http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.do(http.MethodGet, path, strangerToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.do(http.MethodGet, path, employerToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(http.MethodGet, path, adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGetJob_BadAndMissingID(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(http.MethodGet, "/api/jobs/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(http.MethodGet, "/api/jobs/999", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateJob_OwnershipAndPostType(t *testing.T) {
	env := newTestEnv(t)
	_, ownerToken := env.createUser("owner@example.rw", models.RoleEmployer)
	_, otherToken := env.createUser("other@example.rw", models.RoleEmployer)

	created := env.postListing(ownerToken, announcementForm("Jean"))
	path := fmt.Sprintf("/api/jobs/%d", created.ID)

	edited := announcementForm("Jean")
	edited.Title = "Community meeting moved"

	resp := env.do(http.MethodPut, path, otherToken, edited)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.do(http.MethodPut, path, ownerToken, edited)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decodeJSON[models.Listing](t, resp)
	assert.Equal(t, "Community meeting moved", updated.Title)

	switched := edited
	switched.PostType = "tender"
	resp = env.do(http.MethodPut, path, ownerToken, switched)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeJSON[models.ErrorResponse](t, resp)
	assert.Contains(t, body.Fields, "postType")
}

func TestGetJobForm_RoundTripsFlatForm(t *testing.T) {
	env := newTestEnv(t)
	_, employerToken := env.createUser("hr@example.rw", models.RoleEmployer)
	_, otherToken := env.createUser("other@example.rw", models.RoleEmployer)

	company := env.postCompany(employerToken, "Kigali Pay")
	created := env.postListing(employerToken, jobForm(company.ID))
	path := fmt.Sprintf("/api/jobs/%d/form", created.ID)

	resp := env.do(http.MethodGet, path, employerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	form := decodeJSON[listing.Form](t, resp)
	assert.Equal(t, "job", form.PostType)
	assert.Equal(t, listing.OwnerCompany, form.OwnerType)
	assert.Equal(t, "full_time", form.Type)
	assert.Equal(t, "Go and PostgreSQL experience", form.Requirements)

	resp = env.do(http.MethodGet, path, otherToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestApplicationFlow(t *testing.T) {
	env := newTestEnv(t)
	_, employerToken := env.createUser("hr@example.rw", models.RoleEmployer)
	seeker, seekerToken := env.createUser("seeker@example.rw", models.RoleJobSeeker)

	company := env.postCompany(employerToken, "Kigali Pay")
	job := env.postListing(employerToken, jobForm(company.ID))
	applyPath := fmt.Sprintf("/api/jobs/%d/apply", job.ID)

	resp := env.do(http.MethodPost, applyPath, employerToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.do(http.MethodPost, applyPath, seekerToken, map[string]string{"coverLetter": "I have shipped Go services."})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	application := decodeJSON[models.Application](t, resp)
	assert.Equal(t, seeker.ID, application.UserID)
	assert.Equal(t, job.ID, application.JobID)
	assert.Equal(t, models.ApplicationStatusApplied, application.Status)

	resp = env.do(http.MethodPost, applyPath, seekerToken, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = env.do(http.MethodGet, "/api/applications/me", seekerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	mine := decodeJSON[[]models.Application](t, resp)
	require.Len(t, mine, 1)
	assert.Equal(t, application.ID, mine[0].ID)

	resp = env.do(http.MethodGet, "/api/employer/applications", employerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	received := decodeJSON[[]models.Application](t, resp)
	require.Len(t, received, 1)

	statusPath := fmt.Sprintf("/api/applications/%d", application.ID)
	resp = env.do(http.MethodPatch, statusPath, employerToken, map[string]string{"status": "promoted"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(http.MethodPatch, statusPath, employerToken, map[string]string{"status": "interview_scheduled"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decodeJSON[models.Application](t, resp)
	assert.Equal(t, models.ApplicationStatusInterviewScheduled, updated.Status)

	resp = env.do(http.MethodGet, statusPath, seekerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	seen := decodeJSON[models.Application](t, resp)
	assert.Equal(t, models.ApplicationStatusInterviewScheduled, seen.Status)
}

func TestApplyToJob_OnlyJobListings(t *testing.T) {
	env := newTestEnv(t)
	_, employerToken := env.createUser("hr@example.rw", models.RoleEmployer)
	_, seekerToken := env.createUser("seeker@example.rw", models.RoleJobSeeker)

	announcement := env.postListing(employerToken, announcementForm("Jean"))
	resp := env.do(http.MethodPost, fmt.Sprintf("/api/jobs/%d/apply", announcement.ID), seekerToken, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateApplicationStatus_ForeignEmployerForbidden(t *testing.T) {
	env := newTestEnv(t)
	_, ownerToken := env.createUser("owner@example.rw", models.RoleEmployer)
	_, otherToken := env.createUser("other@example.rw", models.RoleEmployer)
	_, seekerToken := env.createUser("seeker@example.rw", models.RoleJobSeeker)

	company := env.postCompany(ownerToken, "Owner Ltd")
	job := env.postListing(ownerToken, jobForm(company.ID))

	resp := env.do(http.MethodPost, fmt.Sprintf("/api/jobs/%d/apply", job.ID), seekerToken, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	application := decodeJSON[models.Application](t, resp)

	resp = env.do(http.MethodPatch, fmt.Sprintf("/api/applications/%d", application.ID), otherToken,
		map[string]string{"status": "hired"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.do(http.MethodGet, fmt.Sprintf("/api/applications/%d", application.ID), otherToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestGetEmployerJobs_OwnListingsOnly(t *testing.T) {
	env := newTestEnv(t)
	_, ownerToken := env.createUser("owner@example.rw", models.RoleEmployer)
	_, otherToken := env.createUser("other@example.rw", models.RoleEmployer)

	company := env.postCompany(ownerToken, "Owner Ltd")
	env.postListing(ownerToken, jobForm(company.ID))
	env.postListing(ownerToken, announcementForm("Owner"))
	env.postListing(otherToken, announcementForm("Other"))

	resp := env.do(http.MethodGet, "/api/employer/jobs", ownerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "2", resp.Header.Get("X-Total-Count"))

	resp = env.do(http.MethodGet, "/api/employer/jobs?postType=job", ownerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	jobs := decodeJSON[[]models.Listing](t, resp)
	require.Len(t, jobs, 1)
	assert.Equal(t, models.PostTypeJob, jobs[0].PostType)
}

func TestGetListingFormSchema(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(http.MethodGet, "/api/listings/form-schema?postType=tender&ownerType=individual", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	schema := decodeJSON[listing.Schema](t, resp)
	assert.Equal(t, models.PostTypeTender, schema.PostType)

	resp = env.do(http.MethodGet, "/api/listings/form-schema?postType=classified", "", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeJSON[models.ErrorResponse](t, resp)
	assert.Contains(t, body.Fields, "postType")

	resp = env.do(http.MethodGet, "/api/listings/form-schema?ownerType=cooperative", "", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body = decodeJSON[models.ErrorResponse](t, resp)
	assert.Contains(t, body.Fields, "ownerType")
}
