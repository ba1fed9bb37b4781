package listing

import (
	"encoding/json"
	"fmt"
	"strings"

	"bizrwanda/internal/models"

	"gorm.io/datatypes"
)

// Details is the post-type specific payload of a listing.
type Details interface {
	PostType() models.PostType
	// RequirementsText is the requirement prose keyword search should see.
	RequirementsText() string
	fill(f *Form)
}

// JobDetails holds the fields of a job vacancy.
type JobDetails struct {
	Type             string `json:"type" validate:"required,oneof=full_time part_time contract internship temporary volunteer"`
	ExperienceLevel  string `json:"experienceLevel" validate:"required,oneof=entry mid senior executive"`
	Salary           string `json:"salary,omitempty" validate:"max=100"`
	Currency         string `json:"currency,omitempty" validate:"omitempty,len=3,alpha"`
	Requirements     string `json:"requirements" validate:"required,min=10"`
	Responsibilities string `json:"responsibilities,omitempty"`
}

func (JobDetails) PostType() models.PostType { return models.PostTypeJob }

func (d JobDetails) RequirementsText() string { return d.Requirements }

func (d JobDetails) fill(f *Form) {
	f.Type = d.Type
	f.ExperienceLevel = d.ExperienceLevel
	f.Salary = d.Salary
	f.Currency = d.Currency
	f.Requirements = d.Requirements
	f.Responsibilities = d.Responsibilities
}

// AuctionDetails holds the fields of an auction notice.
type AuctionDetails struct {
	AuctionDate         string `json:"auctionDate" validate:"required,datetime=2006-01-02"`
	AuctionTime         string `json:"auctionTime,omitempty" validate:"omitempty,datetime=15:04"`
	ViewingDates        string `json:"viewingDates,omitempty"`
	AuctionItems        Lines  `json:"auctionItems" validate:"required,min=1,dive,required"`
	AuctionRequirements string `json:"auctionRequirements" validate:"required,min=5"`
}

func (AuctionDetails) PostType() models.PostType { return models.PostTypeAuction }

func (d AuctionDetails) RequirementsText() string { return d.AuctionRequirements }

func (d AuctionDetails) fill(f *Form) {
	f.AuctionDate = d.AuctionDate
	f.AuctionTime = d.AuctionTime
	f.ViewingDates = d.ViewingDates
	f.AuctionItems = strings.Join(d.AuctionItems, "\n")
	f.AuctionRequirements = d.AuctionRequirements
}

// TenderDetails holds the fields of a call for tenders.
type TenderDetails struct {
	TenderDeadline     string `json:"tenderDeadline" validate:"required,datetime=2006-01-02"`
	TenderRequirements string `json:"tenderRequirements" validate:"required,min=5"`
	TenderDocuments    string `json:"tenderDocuments,omitempty"`
}

func (TenderDetails) PostType() models.PostType { return models.PostTypeTender }

func (d TenderDetails) RequirementsText() string { return d.TenderRequirements }

func (d TenderDetails) fill(f *Form) {
	f.TenderDeadline = d.TenderDeadline
	f.TenderRequirements = d.TenderRequirements
	f.TenderDocuments = d.TenderDocuments
}

// AnnouncementDetails holds the fields of a general announcement.
type AnnouncementDetails struct {
	AnnouncementType string `json:"announcementType,omitempty" validate:"max=60"`
}

func (AnnouncementDetails) PostType() models.PostType { return models.PostTypeAnnouncement }

func (AnnouncementDetails) RequirementsText() string { return "" }

func (d AnnouncementDetails) fill(f *Form) {
	f.AnnouncementType = d.AnnouncementType
}

// Lines is a list of auction items. It decodes from a JSON array or, for rows
// written before items were normalized, from newline separated text.
type Lines []string

func (l *Lines) UnmarshalJSON(data []byte) error {
	var items []string
	if err := json.Unmarshal(data, &items); err == nil {
		*l = items
		return nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return fmt.Errorf("auctionItems: expected array or string: %w", err)
	}
	*l = SplitLines(text)
	return nil
}

// DecodeDetails reads the stored payload for postType. An empty payload
// yields the zero value of the variant.
func DecodeDetails(postType models.PostType, raw datatypes.JSON) (Details, error) {
	var target Details
	switch postType {
	case models.PostTypeJob:
		d := JobDetails{}
		if err := unmarshalDetails(raw, &d); err != nil {
			return nil, err
		}
		target = d
	case models.PostTypeAuction:
		d := AuctionDetails{}
		if err := unmarshalDetails(raw, &d); err != nil {
			return nil, err
		}
		target = d
	case models.PostTypeTender:
		d := TenderDetails{}
		if err := unmarshalDetails(raw, &d); err != nil {
			return nil, err
		}
		target = d
	case models.PostTypeAnnouncement:
		d := AnnouncementDetails{}
		if err := unmarshalDetails(raw, &d); err != nil {
			return nil, err
		}
		target = d
	default:
		return nil, fmt.Errorf("unknown post type %q", postType)
	}
	return target, nil
}

func unmarshalDetails(raw datatypes.JSON, dest any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode listing details: %w", err)
	}
	return nil
}

// EncodeDetails serializes a variant for the details column.
func EncodeDetails(d Details) (datatypes.JSON, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encode listing details: %w", err)
	}
	return datatypes.JSON(data), nil
}
