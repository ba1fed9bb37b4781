package models

import "time"

// Company is an employer's organisation profile. Each employer owns at most
// one company; writes go through an upsert keyed by UserID.
type Company struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"size:200;not null" json:"name"`
	UserID        uint      `gorm:"not null;index" json:"userId"`
	Industry      string    `gorm:"size:120" json:"industry"`
	Location      string    `gorm:"size:200" json:"location"`
	Logo          string    `json:"logo"`
	Website       string    `json:"website"`
	EmployeeCount string    `gorm:"size:50" json:"employeeCount"`
	Founded       string    `gorm:"size:10" json:"founded"`
	Description   string    `gorm:"type:text" json:"description"`
	IsFeatured    bool      `gorm:"not null;default:false" json:"isFeatured"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	// JobCount is not persisted; computed at query time
	JobCount int `gorm:"->;-:migration" json:"jobCount,omitempty"`
}
