package service

import (
	"context"
	"strings"

	"bizrwanda/internal/models"
	"bizrwanda/internal/repository"
	"bizrwanda/internal/validation"
)

type ProfileService struct {
	profiles repository.ProfileRepository
	users    repository.UserRepository
}

// ProfileInput is the job seeker profile a user edits.
type ProfileInput struct {
	FullName        string `json:"fullName" validate:"omitempty,min=2,max=120"`
	Title           string `json:"title" validate:"max=200"`
	Bio             string `json:"bio" validate:"max=5000"`
	Skills          string `json:"skills" validate:"max=2000"`
	Location        string `json:"location" validate:"max=200"`
	ExperienceYears int    `json:"experienceYears" validate:"gte=0,lte=70"`
	ResumeURL       string `json:"resumeUrl" validate:"omitempty,url"`
}

// ProfileView pairs the account with its (possibly empty) profile.
type ProfileView struct {
	User    *models.User             `json:"user"`
	Profile *models.JobSeekerProfile `json:"profile"`
}

func NewProfileService(profiles repository.ProfileRepository, users repository.UserRepository) *ProfileService {
	return &ProfileService{profiles: profiles, users: users}
}

// Get returns the user's profile; a user who never saved one gets an empty
// profile rather than a not-found error.
func (s *ProfileService) Get(ctx context.Context, userID uint) (*ProfileView, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if !models.IsNotFound(err) {
			return nil, err
		}
		profile = &models.JobSeekerProfile{UserID: userID}
	}
	return &ProfileView{User: user, Profile: profile}, nil
}

func (s *ProfileService) Upsert(ctx context.Context, userID uint, in ProfileInput) (*ProfileView, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Title = strings.TrimSpace(in.Title)
	in.Bio = strings.TrimSpace(in.Bio)
	in.Skills = strings.TrimSpace(in.Skills)
	in.Location = strings.TrimSpace(in.Location)
	in.ResumeURL = strings.TrimSpace(in.ResumeURL)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.FullName != "" && in.FullName != user.FullName {
		if err := validation.ValidateFullName(in.FullName); err != nil {
			return nil, models.NewFieldValidationError(map[string]string{"fullName": err.Error()})
		}
		user.FullName = in.FullName
		if err := s.users.Update(ctx, user); err != nil {
			return nil, err
		}
	}

	profile := &models.JobSeekerProfile{
		UserID:          userID,
		Title:           in.Title,
		Bio:             in.Bio,
		Skills:          in.Skills,
		Location:        in.Location,
		ExperienceYears: in.ExperienceYears,
		ResumeURL:       in.ResumeURL,
	}
	if err := s.profiles.Upsert(ctx, profile); err != nil {
		return nil, err
	}
	return &ProfileView{User: user, Profile: profile}, nil
}
