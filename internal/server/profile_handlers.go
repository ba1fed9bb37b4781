package server

import (
	"bizrwanda/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetProfile handles GET /api/profile
// @Summary My profile
// @Tags profile
// @Security BearerAuth
// @Produce json
// @Success 200 {object} service.ProfileView
// @Router /profile [get]
func (s *Server) GetProfile(c *fiber.Ctx) error {
	view, err := s.profileService.Get(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(view)
}

// UpdateProfile handles PUT /api/profile
// @Summary Update my profile
// @Tags profile
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body service.ProfileInput true "Profile"
// @Success 200 {object} service.ProfileView
// @Failure 400 {object} models.ErrorResponse
// @Router /profile [put]
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	var in service.ProfileInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	view, err := s.profileService.Upsert(c.UserContext(), currentUser(c).ID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(view)
}
