// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Role is the account type a user signed up as.
type Role string

const (
	RoleJobSeeker Role = "job_seeker"
	RoleEmployer  Role = "employer"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleJobSeeker, RoleEmployer, RoleAdmin:
		return true
	}
	return false
}

// Auth providers a user can be created through.
const (
	AuthProviderLocal    = "local"
	AuthProviderGoogle   = "google"
	AuthProviderLinkedIn = "linkedin"
	AuthProviderFirebase = "firebase"
)

// User represents an account on the marketplace.
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Role     Role   `gorm:"type:varchar(20);not null;default:'job_seeker';index" json:"role"`
	FullName string `gorm:"size:200" json:"fullName"`
	// Password holds the bcrypt hash; empty for federated accounts.
	Password     string         `json:"-"`
	FirebaseUID  *string        `gorm:"uniqueIndex" json:"firebaseUid,omitempty"`
	AuthProvider string         `gorm:"type:varchar(20);not null;default:'local'" json:"authProvider"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// CanPost reports whether the user may submit listings and manage a company.
func (u *User) CanPost() bool {
	return u != nil && (u.Role == RoleEmployer || u.Role == RoleAdmin)
}
