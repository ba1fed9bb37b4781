package models

import "time"

// FeaturedSection is an admin-editable block on the landing page.
type FeaturedSection struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"size:60;not null;uniqueIndex" json:"key"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Enabled   bool      `gorm:"not null;default:true" json:"enabled"`
	Position  int       `gorm:"not null;default:0" json:"position"`
	Limit     int       `gorm:"column:max_items;not null;default:6" json:"limit"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Notification audiences.
const (
	AudienceAll       = "all"
	AudienceJobSeeker = "job_seeker"
	AudienceEmployer  = "employer"
)

// PlatformNotification is a site-wide announcement banner.
type PlatformNotification struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Message     string    `gorm:"type:text;not null" json:"message"`
	Audience    string    `gorm:"type:varchar(20);not null;default:'all'" json:"audience"`
	Level       string    `gorm:"type:varchar(20);not null;default:'info'" json:"level"`
	IsActive    bool      `gorm:"not null;default:true;index" json:"isActive"`
	CreatedByID uint      `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// VisibleTo reports whether a user with role should see the notification.
// An empty role means an anonymous visitor.
func (n *PlatformNotification) VisibleTo(role Role) bool {
	if !n.IsActive {
		return false
	}
	switch n.Audience {
	case "", AudienceAll:
		return true
	default:
		return role != "" && (string(role) == n.Audience || role == RoleAdmin)
	}
}
