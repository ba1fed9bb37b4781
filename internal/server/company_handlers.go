package server

import (
	"bizrwanda/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetFeaturedCompanies handles GET /api/companies/featured
// @Summary Featured companies
// @Tags companies
// @Produce json
// @Success 200 {array} models.Company
// @Router /companies/featured [get]
func (s *Server) GetFeaturedCompanies(c *fiber.Ctx) error {
	items, err := s.companyService.Featured(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

// GetCompany handles GET /api/companies/:id
// @Summary Get a company
// @Tags companies
// @Produce json
// @Param id path int true "Company ID"
// @Success 200 {object} models.Company
// @Failure 404 {object} models.ErrorResponse
// @Router /companies/{id} [get]
func (s *Server) GetCompany(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	company, err := s.companyService.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(company)
}

// GetMyCompany handles GET /api/companies/me
// @Summary My company
// @Tags companies
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Company
// @Failure 404 {object} models.ErrorResponse
// @Router /companies/me [get]
func (s *Server) GetMyCompany(c *fiber.Ctx) error {
	company, err := s.companyService.Mine(c.UserContext(), currentActor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(company)
}

// UpsertCompany handles POST /api/companies. An employer has one company;
// posting again replaces it.
// @Summary Create or update my company
// @Tags companies
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body service.UpsertCompanyInput true "Company profile"
// @Success 200 {object} models.Company
// @Failure 400 {object} models.ErrorResponse
// @Router /companies [post]
func (s *Server) UpsertCompany(c *fiber.Ctx) error {
	var in service.UpsertCompanyInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	in.Actor = currentActor(c)

	company, err := s.companyService.Upsert(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(company)
}
