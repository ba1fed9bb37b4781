// Package listing defines the post-type specific shape of marketplace
// listings: the flat form clients submit, the per-type payloads that are
// persisted, and the validation rules that sit between them.
package listing

import (
	"strings"

	"bizrwanda/internal/models"
)

// Owner types a form can declare.
const (
	OwnerCompany    = "company"
	OwnerIndividual = "individual"
)

// Form is the flat payload submitted by create and edit screens. Every post
// type shares it; which fields matter depends on PostType and OwnerType.
type Form struct {
	PostType  string `json:"postType"`
	OwnerType string `json:"ownerType"`

	Title       string `json:"title"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Category    string `json:"category"`

	CompanyID         *uint  `json:"companyId,omitempty"`
	IndividualName    string `json:"individualName,omitempty"`
	IndividualContact string `json:"individualContact,omitempty"`

	Type             string `json:"type,omitempty"`
	ExperienceLevel  string `json:"experienceLevel,omitempty"`
	Salary           string `json:"salary,omitempty"`
	Currency         string `json:"currency,omitempty"`
	Requirements     string `json:"requirements,omitempty"`
	Responsibilities string `json:"responsibilities,omitempty"`

	AuctionDate         string `json:"auctionDate,omitempty"`
	AuctionTime         string `json:"auctionTime,omitempty"`
	ViewingDates        string `json:"viewingDates,omitempty"`
	AuctionItems        string `json:"auctionItems,omitempty"`
	AuctionRequirements string `json:"auctionRequirements,omitempty"`

	TenderDeadline     string `json:"tenderDeadline,omitempty"`
	TenderRequirements string `json:"tenderRequirements,omitempty"`
	TenderDocuments    string `json:"tenderDocuments,omitempty"`

	AnnouncementType string `json:"announcementType,omitempty"`
}

// normalize trims every free-text field. AuctionItems keeps its inner
// newlines; blank lines are dropped when it is split.
func (f Form) normalize() Form {
	trim := strings.TrimSpace
	f.PostType = strings.ToLower(trim(f.PostType))
	f.OwnerType = strings.ToLower(trim(f.OwnerType))
	f.Title = trim(f.Title)
	f.Location = trim(f.Location)
	f.Description = trim(f.Description)
	f.Category = trim(f.Category)
	f.IndividualName = trim(f.IndividualName)
	f.IndividualContact = trim(f.IndividualContact)
	f.Type = trim(f.Type)
	f.ExperienceLevel = trim(f.ExperienceLevel)
	f.Salary = trim(f.Salary)
	f.Currency = strings.ToUpper(trim(f.Currency))
	f.Requirements = trim(f.Requirements)
	f.Responsibilities = trim(f.Responsibilities)
	f.AuctionDate = trim(f.AuctionDate)
	f.AuctionTime = trim(f.AuctionTime)
	f.ViewingDates = trim(f.ViewingDates)
	f.AuctionRequirements = trim(f.AuctionRequirements)
	f.TenderDeadline = trim(f.TenderDeadline)
	f.TenderRequirements = trim(f.TenderRequirements)
	f.TenderDocuments = trim(f.TenderDocuments)
	f.AnnouncementType = trim(f.AnnouncementType)
	if f.OwnerType == "" {
		// Older clients never sent ownerType; infer it from what they filled in.
		if f.CompanyID != nil && *f.CompanyID > 0 {
			f.OwnerType = OwnerCompany
		} else if f.IndividualName != "" {
			f.OwnerType = OwnerIndividual
		}
	}
	return f
}

// SplitLines turns newline separated text into trimmed, non-empty lines.
func SplitLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// FormFromListing rebuilds the values an edit screen should be prefilled with.
func FormFromListing(l *models.Listing) (Form, error) {
	form := Form{
		PostType:          string(l.PostType),
		Title:             l.Title,
		Location:          l.Location,
		Description:       l.Description,
		Category:          l.Category,
		CompanyID:         l.CompanyID,
		IndividualName:    l.IndividualName,
		IndividualContact: l.IndividualContact,
		OwnerType:         OwnerIndividual,
	}
	if l.CompanyID != nil {
		form.OwnerType = OwnerCompany
	}

	details, err := DecodeDetails(l.PostType, l.Details)
	if err != nil {
		return Form{}, err
	}
	details.fill(&form)
	return form, nil
}
