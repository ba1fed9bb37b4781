package models

import "time"

// Category groups listings for browsing.
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:120;not null;uniqueIndex" json:"name"`
	Icon      string    `gorm:"size:80" json:"icon"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	// Count is not persisted; computed from active listings at query time
	Count int64 `gorm:"->;-:migration" json:"count"`
}
