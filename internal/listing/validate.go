package listing

import (
	"fmt"
	"unicode/utf8"

	"bizrwanda/internal/models"
	"bizrwanda/internal/validation"
)

// Base carries the fields every post type shares.
type Base struct {
	Title             string `json:"title" validate:"required,min=3,max=200"`
	Location          string `json:"location" validate:"required,max=200"`
	Description       string `json:"description" validate:"required"`
	Category          string `json:"category" validate:"required,max=120"`
	OwnerType         string `json:"ownerType" validate:"required,oneof=company individual"`
	CompanyID         *uint  `json:"companyId"`
	IndividualName    string `json:"individualName" validate:"max=200"`
	IndividualContact string `json:"individualContact" validate:"max=200"`
}

// Draft is a validated listing ready to be written to a row.
type Draft struct {
	Base
	PostType models.PostType
	Details  Details
}

// Minimum description length per post type. Announcements only need a
// non-empty description.
var descriptionMinLength = map[models.PostType]int{
	models.PostTypeJob:     30,
	models.PostTypeAuction: 20,
	models.PostTypeTender:  20,
}

// Validate checks a submitted form against the rules of its post type and
// returns the typed draft. Failures come back as a validation AppError whose
// Fields map each offending field to a message.
func Validate(form Form) (*Draft, error) {
	form = form.normalize()
	fields := map[string]string{}

	postType := models.PostType(form.PostType)
	if !postType.Valid() {
		fields["postType"] = "must be one of: job, auction, tender, announcement"
		return nil, models.NewFieldValidationError(fields)
	}

	base := Base{
		Title:             form.Title,
		Location:          form.Location,
		Description:       form.Description,
		Category:          form.Category,
		OwnerType:         form.OwnerType,
		CompanyID:         form.CompanyID,
		IndividualName:    form.IndividualName,
		IndividualContact: form.IndividualContact,
	}
	validation.Check(base, fields)

	if minLen, ok := descriptionMinLength[postType]; ok && base.Description != "" {
		if utf8.RuneCountInString(base.Description) < minLen {
			fields["description"] = fmt.Sprintf("must be at least %d characters", minLen)
		}
	}

	switch base.OwnerType {
	case OwnerCompany:
		if base.CompanyID == nil || *base.CompanyID == 0 {
			fields["companyId"] = "is required when posting as a company"
		}
		base.IndividualName = ""
		base.IndividualContact = ""
	case OwnerIndividual:
		if base.IndividualName == "" {
			fields["individualName"] = "is required when posting as an individual"
		}
		base.CompanyID = nil
	}

	details := detailsFromForm(postType, form)
	validation.Check(details, fields)

	if len(fields) > 0 {
		return nil, models.NewFieldValidationError(fields)
	}
	return &Draft{Base: base, PostType: postType, Details: details}, nil
}

func detailsFromForm(postType models.PostType, f Form) Details {
	switch postType {
	case models.PostTypeAuction:
		return AuctionDetails{
			AuctionDate:         f.AuctionDate,
			AuctionTime:         f.AuctionTime,
			ViewingDates:        f.ViewingDates,
			AuctionItems:        SplitLines(f.AuctionItems),
			AuctionRequirements: f.AuctionRequirements,
		}
	case models.PostTypeTender:
		return TenderDetails{
			TenderDeadline:     f.TenderDeadline,
			TenderRequirements: f.TenderRequirements,
			TenderDocuments:    f.TenderDocuments,
		}
	case models.PostTypeAnnouncement:
		return AnnouncementDetails{AnnouncementType: f.AnnouncementType}
	default:
		return JobDetails{
			Type:             f.Type,
			ExperienceLevel:  f.ExperienceLevel,
			Salary:           f.Salary,
			Currency:         f.Currency,
			Requirements:     f.Requirements,
			Responsibilities: f.Responsibilities,
		}
	}
}

// Apply writes the draft onto a listing row. Moderation fields (status,
// isActive, isFeatured) and ownership of the row are left to the caller.
func (d *Draft) Apply(l *models.Listing) error {
	payload, err := EncodeDetails(d.Details)
	if err != nil {
		return err
	}
	l.PostType = d.PostType
	l.Title = d.Title
	l.Location = d.Location
	l.Description = d.Description
	l.Category = d.Category
	l.CompanyID = d.CompanyID
	l.IndividualName = d.IndividualName
	l.IndividualContact = d.IndividualContact
	if d.CompanyID == nil {
		l.CompanyName = ""
		l.Company = nil
	}
	l.Details = payload
	return nil
}
