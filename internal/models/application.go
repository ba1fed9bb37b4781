package models

import (
	"fmt"
	"strings"
	"time"
)

// ApplicationStatus tracks a candidate through the hiring pipeline.
type ApplicationStatus string

const (
	ApplicationStatusApplied            ApplicationStatus = "applied"
	ApplicationStatusReviewed           ApplicationStatus = "reviewed"
	ApplicationStatusInterviewScheduled ApplicationStatus = "interview_scheduled"
	ApplicationStatusHired              ApplicationStatus = "hired"
	ApplicationStatusRejected           ApplicationStatus = "rejected"
)

// ApplicationStatuses is the ordered pipeline; any status may be set from any other.
var ApplicationStatuses = []ApplicationStatus{
	ApplicationStatusApplied,
	ApplicationStatusReviewed,
	ApplicationStatusInterviewScheduled,
	ApplicationStatusHired,
	ApplicationStatusRejected,
}

// ParseApplicationStatus normalizes and validates a status string.
func ParseApplicationStatus(raw string) (ApplicationStatus, error) {
	normalized := ApplicationStatus(strings.ToLower(strings.TrimSpace(raw)))
	for _, s := range ApplicationStatuses {
		if s == normalized {
			return s, nil
		}
	}
	return "", fmt.Errorf("invalid application status %q", raw)
}

// Application links a job seeker to a job listing.
type Application struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	UserID      uint              `gorm:"not null;uniqueIndex:idx_application_user_job" json:"userId"`
	User        *User             `gorm:"foreignKey:UserID" json:"user,omitempty"`
	JobID       uint              `gorm:"not null;uniqueIndex:idx_application_user_job;index" json:"jobId"`
	Job         *Listing          `gorm:"foreignKey:JobID" json:"job,omitempty"`
	Status      ApplicationStatus `gorm:"type:varchar(30);not null;default:'applied'" json:"status"`
	CoverLetter string            `gorm:"type:text" json:"coverLetter,omitempty"`
	AppliedAt   time.Time         `gorm:"autoCreateTime" json:"appliedAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}
