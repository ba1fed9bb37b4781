package server

import (
	"strconv"

	"bizrwanda/internal/models"
	"bizrwanda/internal/repository"
	"bizrwanda/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AdminStatistics handles GET /api/admin/statistics
// @Summary Dashboard statistics
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} service.Statistics
// @Router /admin/statistics [get]
func (s *Server) AdminStatistics(c *fiber.Ctx) error {
	stats, err := s.adminService.Statistics(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}

// AdminListJobs handles GET /api/admin/jobs
// @Summary Moderation queue
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param status query string false "pending, approved or rejected"
// @Param postType query string false "job, auction, tender or announcement"
// @Param includeDeleted query bool false "Include soft-deleted listings"
// @Success 200 {array} models.Listing
// @Router /admin/jobs [get]
func (s *Server) AdminListJobs(c *fiber.Ctx) error {
	items, err := s.listingService.AdminList(c.UserContext(), repository.AdminListingFilter{
		Status:         models.ListingStatus(c.Query("status")),
		PostType:       models.PostType(c.Query("postType")),
		IncludeDeleted: c.QueryBool("includeDeleted"),
	})
	if err != nil {
		return respondError(c, err)
	}
	c.Set("X-Total-Count", strconv.Itoa(len(items)))
	return c.JSON(items)
}

// AdminModerateJob handles PATCH /api/admin/jobs/:id
// @Summary Moderate a listing
// @Description Approve, reject, deactivate or feature a listing. Deactivating also rejects it.
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Listing ID"
// @Param request body object{status=string,isActive=bool,isFeatured=bool,adminNote=string} true "Changes"
// @Success 200 {object} models.Listing
// @Failure 400 {object} models.ErrorResponse
// @Router /admin/jobs/{id} [patch]
func (s *Server) AdminModerateJob(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Status     *models.ListingStatus `json:"status"`
		IsActive   *bool                 `json:"isActive"`
		IsFeatured *bool                 `json:"isFeatured"`
		AdminNote  string                `json:"adminNote"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	l, err := s.listingService.Moderate(c.UserContext(), service.AdminUpdateInput{
		Actor:      currentActor(c),
		ListingID:  id,
		Status:     req.Status,
		IsActive:   req.IsActive,
		IsFeatured: req.IsFeatured,
		AdminNote:  req.AdminNote,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(l)
}

// AdminDeleteJob handles DELETE /api/admin/jobs/:id. The listing is rejected
// and hidden; the row and its audit note are kept.
// @Summary Delete a listing
// @Tags admin
// @Security BearerAuth
// @Param id path int true "Listing ID"
// @Param reason query string false "Recorded in the admin notes"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/jobs/{id} [delete]
func (s *Server) AdminDeleteJob(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.listingService.Delete(c.UserContext(), currentActor(c), id, c.Query("reason")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AdminListUsers handles GET /api/admin/users
// @Summary List users
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param role query string false "job_seeker, employer or admin"
// @Success 200 {array} models.User
// @Router /admin/users [get]
func (s *Server) AdminListUsers(c *fiber.Ctx) error {
	users, err := s.adminService.ListUsers(c.UserContext(), c.Query("role"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set("X-Total-Count", strconv.Itoa(len(users)))
	return c.JSON(users)
}

// AdminUpdateUserRole handles PATCH /api/admin/users/:id/role
// @Summary Change a user's role
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param request body object{role=string} true "New role"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Router /admin/users/{id}/role [patch]
func (s *Server) AdminUpdateUserRole(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Role string `json:"role"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.adminService.SetUserRole(c.UserContext(), currentActor(c), id, req.Role)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// Categories

// AdminListCategories handles GET /api/admin/categories
// @Summary List categories
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.Category
// @Router /admin/categories [get]
func (s *Server) AdminListCategories(c *fiber.Ctx) error {
	return s.GetCategories(c)
}

// AdminCreateCategory handles POST /api/admin/categories
// @Summary Create a category
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body service.CategoryInput true "Category"
// @Success 201 {object} models.Category
// @Failure 409 {object} models.ErrorResponse
// @Router /admin/categories [post]
func (s *Server) AdminCreateCategory(c *fiber.Ctx) error {
	var in service.CategoryInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	category, err := s.adminService.CreateCategory(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

// AdminUpdateCategory handles PATCH /api/admin/categories/:id
// @Summary Rename a category
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Category ID"
// @Param request body service.CategoryInput true "Category"
// @Success 200 {object} models.Category
// @Router /admin/categories/{id} [patch]
func (s *Server) AdminUpdateCategory(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var in service.CategoryInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	category, err := s.adminService.UpdateCategory(c.UserContext(), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(category)
}

// AdminDeleteCategory handles DELETE /api/admin/categories/:id
// @Summary Delete a category
// @Tags admin
// @Security BearerAuth
// @Param id path int true "Category ID"
// @Success 204
// @Router /admin/categories/{id} [delete]
func (s *Server) AdminDeleteCategory(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.adminService.DeleteCategory(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Featured sections

// AdminGetFeaturedSections handles GET /api/admin/featured-sections
// @Summary All landing page sections
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.FeaturedSection
// @Router /admin/featured-sections [get]
func (s *Server) AdminGetFeaturedSections(c *fiber.Ctx) error {
	items, err := s.adminService.FeaturedSections(c.UserContext(), false)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

// AdminPatchFeaturedSections handles PATCH /api/admin/featured-sections
// @Summary Edit landing page sections
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body []service.FeaturedSectionPatch true "Section changes"
// @Success 200 {array} models.FeaturedSection
// @Failure 400 {object} models.ErrorResponse
// @Router /admin/featured-sections [patch]
func (s *Server) AdminPatchFeaturedSections(c *fiber.Ctx) error {
	var patches []service.FeaturedSectionPatch
	if err := parseBody(c, &patches); err != nil {
		return nil
	}
	items, err := s.adminService.PatchFeaturedSections(c.UserContext(), patches)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

// Notifications

// AdminListNotifications handles GET /api/admin/notifications
// @Summary All platform notifications
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.PlatformNotification
// @Router /admin/notifications [get]
func (s *Server) AdminListNotifications(c *fiber.Ctx) error {
	items, err := s.adminService.Notifications(c.UserContext(), false, "")
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

// AdminCreateNotification handles POST /api/admin/notifications. Active
// notifications are pushed to connected clients.
// @Summary Publish a platform notification
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body service.NotificationInput true "Notification"
// @Success 201 {object} models.PlatformNotification
// @Failure 400 {object} models.ErrorResponse
// @Router /admin/notifications [post]
func (s *Server) AdminCreateNotification(c *fiber.Ctx) error {
	var in service.NotificationInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	n, err := s.adminService.CreateNotification(c.UserContext(), currentActor(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(n)
}

// AdminUpdateNotification handles PATCH /api/admin/notifications/:id
// @Summary Edit a platform notification
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Notification ID"
// @Param request body service.NotificationInput true "Notification"
// @Success 200 {object} models.PlatformNotification
// @Router /admin/notifications/{id} [patch]
func (s *Server) AdminUpdateNotification(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var in service.NotificationInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	n, err := s.adminService.UpdateNotification(c.UserContext(), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(n)
}

// AdminDeleteNotification handles DELETE /api/admin/notifications/:id
// @Summary Delete a platform notification
// @Tags admin
// @Security BearerAuth
// @Param id path int true "Notification ID"
// @Success 204
// @Router /admin/notifications/{id} [delete]
func (s *Server) AdminDeleteNotification(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.adminService.DeleteNotification(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
