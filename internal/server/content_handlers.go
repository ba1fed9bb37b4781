package server

import (
	"bizrwanda/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetCategories handles GET /api/categories
// @Summary Listing categories
// @Description Categories with their active listing counts
// @Tags content
// @Produce json
// @Success 200 {array} models.Category
// @Router /categories [get]
func (s *Server) GetCategories(c *fiber.Ctx) error {
	items, err := s.adminService.ListCategories(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

// GetPlatformNotifications handles GET /api/notifications. Signed-in callers
// also see announcements addressed to their role.
// @Summary Active announcements
// @Tags content
// @Produce json
// @Success 200 {array} models.PlatformNotification
// @Router /notifications [get]
func (s *Server) GetPlatformNotifications(c *fiber.Ctx) error {
	var role models.Role
	if user := s.optionalUser(c); user != nil {
		role = user.Role
	}
	items, err := s.adminService.Notifications(c.UserContext(), true, role)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

// GetFeaturedSections handles GET /api/featured-sections
// @Summary Landing page sections
// @Tags content
// @Produce json
// @Success 200 {array} models.FeaturedSection
// @Router /featured-sections [get]
func (s *Server) GetFeaturedSections(c *fiber.Ctx) error {
	items, err := s.adminService.FeaturedSections(c.UserContext(), true)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}
