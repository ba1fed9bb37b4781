package server

import (
	"bizrwanda/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyApplications handles GET /api/applications/me
// @Summary My applications
// @Tags applications
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.Application
// @Router /applications/me [get]
func (s *Server) GetMyApplications(c *fiber.Ctx) error {
	items, err := s.applicationService.ListMine(c.UserContext(), currentActor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

// GetApplication handles GET /api/applications/:id
// @Summary Get an application
// @Description Visible to the applicant, the job's poster and admins
// @Tags applications
// @Security BearerAuth
// @Produce json
// @Param id path int true "Application ID"
// @Success 200 {object} models.Application
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /applications/{id} [get]
func (s *Server) GetApplication(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	app, err := s.applicationService.Get(c.UserContext(), currentActor(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(app)
}

// UpdateApplicationStatus handles PATCH /api/applications/:id
// @Summary Change an application's status
// @Tags applications
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Application ID"
// @Param request body object{status=string} true "New status"
// @Success 200 {object} models.Application
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /applications/{id} [patch]
func (s *Server) UpdateApplicationStatus(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	app, err := s.applicationService.UpdateStatus(c.UserContext(), service.UpdateApplicationStatusInput{
		Actor:         currentActor(c),
		ApplicationID: id,
		Status:        req.Status,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(app)
}

// GetEmployerApplications handles GET /api/employer/applications
// @Summary Applications to my jobs
// @Tags employer
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.Application
// @Router /employer/applications [get]
func (s *Server) GetEmployerApplications(c *fiber.Ctx) error {
	items, err := s.applicationService.ListForEmployer(c.UserContext(), currentActor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}
