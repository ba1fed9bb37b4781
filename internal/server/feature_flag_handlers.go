package server

import "github.com/gofiber/fiber/v2"

// GetFeatureFlags returns configured feature flags and how they evaluate for
// the calling admin.
// @Summary Feature flags
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} object{raw=map[string]string,evaluated=map[string]bool}
// @Router /admin/feature-flags [get]
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	raw, evaluated := s.adminService.FeatureFlags(currentActor(c))
	return c.JSON(fiber.Map{
		"raw":       raw,
		"evaluated": evaluated,
	})
}
