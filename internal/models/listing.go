package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PostType discriminates the four kinds of listing sharing the jobs table.
type PostType string

const (
	PostTypeJob          PostType = "job"
	PostTypeAuction      PostType = "auction"
	PostTypeTender       PostType = "tender"
	PostTypeAnnouncement PostType = "announcement"
)

// PostTypes lists every valid discriminant in display order.
var PostTypes = []PostType{PostTypeJob, PostTypeAuction, PostTypeTender, PostTypeAnnouncement}

// Valid reports whether p is a known post type.
func (p PostType) Valid() bool {
	for _, known := range PostTypes {
		if p == known {
			return true
		}
	}
	return false
}

// ListingStatus is the moderation workflow state of a listing.
type ListingStatus string

const (
	ListingStatusPending  ListingStatus = "pending"
	ListingStatusApproved ListingStatus = "approved"
	ListingStatusRejected ListingStatus = "rejected"
)

// Valid reports whether s is a known listing status.
func (s ListingStatus) Valid() bool {
	switch s {
	case ListingStatusPending, ListingStatusApproved, ListingStatusRejected:
		return true
	}
	return false
}

// Listing is a job, auction, tender or announcement. Columns shared by every
// post type live on the row; the fields of the selected variant are stored as
// a single JSON document in Details.
type Listing struct {
	ID                uint          `gorm:"primaryKey" json:"id"`
	PostType          PostType      `gorm:"type:varchar(20);not null;default:'job';index" json:"postType"`
	Title             string        `gorm:"size:200;not null" json:"title"`
	Location          string        `gorm:"size:200" json:"location"`
	Description       string        `gorm:"type:text;not null" json:"description"`
	Category          string        `gorm:"size:120;index" json:"category"`
	Status            ListingStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	IsActive          bool          `gorm:"not null;default:true;index" json:"isActive"`
	IsFeatured        bool          `gorm:"not null;default:false" json:"isFeatured"`
	CompanyID         *uint         `gorm:"index" json:"companyId"`
	Company           *Company      `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	CompanyName       string        `gorm:"size:200" json:"companyName,omitempty"`
	IndividualName    string        `gorm:"size:200" json:"individualName,omitempty"`
	IndividualContact string        `gorm:"size:200" json:"individualContact,omitempty"`
	// Details holds the variant payload for PostType.
	Details    datatypes.JSON `json:"additionalData"`
	AdminNotes string         `gorm:"type:text" json:"adminNotes,omitempty"`
	PostedByID uint           `gorm:"index" json:"postedBy"`
	CreatedAt  time.Time      `gorm:"index" json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"deletedAt,omitempty"`
}

// TableName keeps the historical table name for listings.
func (Listing) TableName() string {
	return "jobs"
}

// AppendAdminNote adds a line to the listing's audit trail.
func (l *Listing) AppendAdminNote(note string) {
	note = strings.TrimSpace(note)
	if note == "" {
		return
	}
	if l.AdminNotes == "" {
		l.AdminNotes = note
		return
	}
	l.AdminNotes = l.AdminNotes + "\n" + note
}

// OwnedBy reports whether userID submitted the listing.
func (l *Listing) OwnedBy(userID uint) bool {
	return l != nil && l.PostedByID != 0 && l.PostedByID == userID
}
