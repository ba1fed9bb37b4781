package models

import "time"

// JobSeekerProfile carries the candidate details used for recommendations.
type JobSeekerProfile struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"not null;uniqueIndex" json:"userId"`
	Title           string    `gorm:"size:200" json:"title"`
	Bio             string    `gorm:"type:text" json:"bio"`
	Skills          string    `gorm:"type:text" json:"skills"`
	Location        string    `gorm:"size:200" json:"location"`
	ExperienceYears int       `json:"experienceYears"`
	ResumeURL       string    `json:"resumeUrl"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// TableName specifies the table name for GORM.
func (JobSeekerProfile) TableName() string {
	return "job_seeker_profiles"
}
