package server

import (
	"strconv"

	"bizrwanda/internal/listing"
	"bizrwanda/internal/models"
	"bizrwanda/internal/repository"
	"bizrwanda/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListJobs handles GET /api/jobs
// @Summary Search listings
// @Description Public search over active listings of every post type
// @Tags listings
// @Produce json
// @Param keyword query string false "Matches title, description and requirements"
// @Param location query string false "Location substring"
// @Param category query string false "Exact category"
// @Param jobType query string false "Job type (jobs only)"
// @Param experienceLevel query string false "Experience level (jobs only)"
// @Param postType query string false "job, auction, tender or announcement"
// @Param page query int false "Page number; enables pagination"
// @Param pageSize query int false "Page size (default 10)"
// @Success 200 {array} models.Listing
// @Header 200 {integer} X-Total-Count "Number of matching listings"
// @Router /jobs [get]
func (s *Server) ListJobs(c *fiber.Ctx) error {
	params := repository.SearchParams{
		Keyword:         c.Query("keyword"),
		Location:        c.Query("location"),
		Category:        c.Query("category"),
		JobType:         c.Query("jobType"),
		ExperienceLevel: c.Query("experienceLevel"),
		PostType:        models.PostType(c.Query("postType")),
	}

	items, err := s.listingService.Search(c.UserContext(), params)
	if err != nil {
		return respondError(c, err)
	}
	c.Set("X-Total-Count", strconv.Itoa(len(items)))

	if c.Query("page") == "" {
		return c.JSON(items)
	}
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("pageSize", listing.DefaultPageSize)
	if pageSize > 100 {
		pageSize = 100
	}
	return c.JSON(listing.Paginate(items, page, pageSize))
}

// GetFeaturedJobs handles GET /api/jobs/featured
// @Summary Featured listings
// @Tags listings
// @Produce json
// @Success 200 {array} models.Listing
// @Router /jobs/featured [get]
func (s *Server) GetFeaturedJobs(c *fiber.Ctx) error {
	items, err := s.listingService.Featured(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

// GetRecommendedJobs handles GET /api/jobs/recommended
// @Summary Recommended listings
// @Description Listings whose titles match the caller's profile title, or the featured strip
// @Tags listings
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.Listing
// @Router /jobs/recommended [get]
func (s *Server) GetRecommendedJobs(c *fiber.Ctx) error {
	items, err := s.listingService.Recommended(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

// GetJob handles GET /api/jobs/:id
// @Summary Get a listing
// @Description Deactivated listings are only visible to their poster and admins
// @Tags listings
// @Produce json
// @Param id path int true "Listing ID"
// @Success 200 {object} models.Listing
// @Failure 404 {object} models.ErrorResponse
// @Router /jobs/{id} [get]
func (s *Server) GetJob(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	l, err := s.listingService.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	if !l.IsActive {
		viewer := s.optionalUser(c)
		if viewer == nil || (!viewer.IsAdmin() && !l.OwnedBy(viewer.ID)) {
			return respondError(c, models.NewNotFoundError("Listing", id))
		}
	}
	return c.JSON(l)
}

// GetJobForm handles GET /api/jobs/:id/form
// @Summary Edit form values
// @Description The flat form an edit screen is prefilled with
// @Tags listings
// @Security BearerAuth
// @Produce json
// @Param id path int true "Listing ID"
// @Success 200 {object} listing.Form
// @Failure 403 {object} models.ErrorResponse
// @Router /jobs/{id}/form [get]
func (s *Server) GetJobForm(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	form, err := s.listingService.FormValues(c.UserContext(), currentActor(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(form)
}

// CreateJob handles POST /api/jobs and POST /api/admin/jobs
// @Summary Submit a listing
// @Description New listings always start pending moderation
// @Tags listings
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body listing.Form true "Listing form"
// @Success 201 {object} models.Listing
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /jobs [post]
func (s *Server) CreateJob(c *fiber.Ctx) error {
	var form listing.Form
	if err := parseBody(c, &form); err != nil {
		return nil
	}

	l, err := s.listingService.Create(c.UserContext(), service.CreateListingInput{
		Actor: currentActor(c),
		Form:  form,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(l)
}

// UpdateJob handles PUT /api/jobs/:id
// @Summary Edit a listing
// @Tags listings
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Listing ID"
// @Param request body listing.Form true "Listing form"
// @Success 200 {object} models.Listing
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /jobs/{id} [put]
func (s *Server) UpdateJob(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var form listing.Form
	if err := parseBody(c, &form); err != nil {
		return nil
	}

	l, err := s.listingService.Edit(c.UserContext(), service.EditListingInput{
		Actor:     currentActor(c),
		ListingID: id,
		Form:      form,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(l)
}

// ApplyToJob handles POST /api/jobs/:id/apply
// @Summary Apply to a job
// @Tags applications
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Listing ID"
// @Param request body object{coverLetter=string} false "Application"
// @Success 201 {object} models.Application
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /jobs/{id}/apply [post]
func (s *Server) ApplyToJob(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		CoverLetter string `json:"coverLetter"`
	}
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return nil
		}
	}

	app, err := s.applicationService.Apply(c.UserContext(), service.ApplyInput{
		Actor:       currentActor(c),
		ListingID:   id,
		CoverLetter: req.CoverLetter,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(app)
}

// GetListingFormSchema handles GET /api/listings/form-schema
// @Summary Listing form schema
// @Description Fields the create form shows for a post type and owner type
// @Tags listings
// @Produce json
// @Param postType query string true "job, auction, tender or announcement"
// @Param ownerType query string false "company (default) or individual"
// @Success 200 {object} listing.Schema
// @Failure 400 {object} models.ErrorResponse
// @Router /listings/form-schema [get]
func (s *Server) GetListingFormSchema(c *fiber.Ctx) error {
	postType := models.PostType(c.Query("postType", string(models.PostTypeJob)))
	if !postType.Valid() {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewFieldValidationError(map[string]string{
			"postType": "must be one of: job, auction, tender, announcement",
		}))
	}
	ownerType := c.Query("ownerType", listing.OwnerCompany)
	if ownerType != listing.OwnerCompany && ownerType != listing.OwnerIndividual {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewFieldValidationError(map[string]string{
			"ownerType": "must be one of: company, individual",
		}))
	}
	return c.JSON(listing.FormSchema(postType, ownerType))
}

// GetEmployerJobs handles GET /api/employer/jobs
// @Summary My listings
// @Description Every listing the caller submitted, in any moderation state
// @Tags employer
// @Security BearerAuth
// @Produce json
// @Param postType query string false "Narrow to one post type"
// @Success 200 {array} models.Listing
// @Router /employer/jobs [get]
func (s *Server) GetEmployerJobs(c *fiber.Ctx) error {
	postType := models.PostType(c.Query("postType"))
	if postType != "" && !postType.Valid() {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewFieldValidationError(map[string]string{
			"postType": "must be one of: job, auction, tender, announcement",
		}))
	}

	items, err := s.listingService.ListForOwner(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return respondError(c, err)
	}
	items = listing.FilterByPostType(items, postType)
	c.Set("X-Total-Count", strconv.Itoa(len(items)))
	return c.JSON(items)
}
