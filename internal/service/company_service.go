package service

import (
	"context"
	"strings"

	"bizrwanda/internal/models"
	"bizrwanda/internal/repository"
	"bizrwanda/internal/validation"
)

const featuredCompanyLimit = 6

type CompanyService struct {
	companies repository.CompanyRepository
}

// UpsertCompanyInput is the company profile an employer submits.
type UpsertCompanyInput struct {
	Actor         Actor  `json:"-"`
	Name          string `json:"name" validate:"required,min=2,max=200"`
	Industry      string `json:"industry" validate:"max=120"`
	Location      string `json:"location" validate:"max=200"`
	Logo          string `json:"logo" validate:"omitempty,url"`
	Website       string `json:"website" validate:"omitempty,url"`
	EmployeeCount string `json:"employeeCount" validate:"max=50"`
	Founded       string `json:"founded" validate:"omitempty,len=4,numeric"`
	Description   string `json:"description" validate:"max=5000"`
}

func NewCompanyService(companies repository.CompanyRepository) *CompanyService {
	return &CompanyService{companies: companies}
}

// Upsert creates or replaces the actor's company profile. An employer has at
// most one company.
func (s *CompanyService) Upsert(ctx context.Context, in UpsertCompanyInput) (*models.Company, error) {
	if !in.Actor.CanPost() {
		return nil, models.NewForbiddenError("Only employers can manage a company profile")
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Industry = strings.TrimSpace(in.Industry)
	in.Location = strings.TrimSpace(in.Location)
	in.Logo = strings.TrimSpace(in.Logo)
	in.Website = strings.TrimSpace(in.Website)
	in.EmployeeCount = strings.TrimSpace(in.EmployeeCount)
	in.Founded = strings.TrimSpace(in.Founded)
	in.Description = strings.TrimSpace(in.Description)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	company := &models.Company{
		UserID:        in.Actor.UserID,
		Name:          in.Name,
		Industry:      in.Industry,
		Location:      in.Location,
		Logo:          in.Logo,
		Website:       in.Website,
		EmployeeCount: in.EmployeeCount,
		Founded:       in.Founded,
		Description:   in.Description,
	}
	if err := s.companies.UpsertByUserID(ctx, company); err != nil {
		return nil, err
	}
	return company, nil
}

func (s *CompanyService) Get(ctx context.Context, id uint) (*models.Company, error) {
	return s.companies.GetByID(ctx, id)
}

// Mine returns the actor's company, or a not-found error if they have none yet.
func (s *CompanyService) Mine(ctx context.Context, actor Actor) (*models.Company, error) {
	return s.companies.GetByUserID(ctx, actor.UserID)
}

func (s *CompanyService) Featured(ctx context.Context) ([]models.Company, error) {
	return s.companies.Featured(ctx, featuredCompanyLimit)
}

func (s *CompanyService) List(ctx context.Context) ([]models.Company, error) {
	return s.companies.List(ctx)
}
