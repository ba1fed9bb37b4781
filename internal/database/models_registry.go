package database

import "bizrwanda/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Company{},
		&models.Listing{},
		&models.Application{},
		&models.Category{},
		&models.JobSeekerProfile{},
		&models.FeaturedSection{},
		&models.PlatformNotification{},
	}
}
