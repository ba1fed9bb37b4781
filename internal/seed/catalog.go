package seed

import (
	"context"
	_ "embed"
	"fmt"

	"bizrwanda/internal/models"
	"bizrwanda/internal/repository"
	"bizrwanda/internal/service"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:embed categories.yml
var categoriesYAML []byte

// CategorySeed is one entry of the embedded category catalog.
type CategorySeed struct {
	Name string `yaml:"name"`
	Icon string `yaml:"icon"`
}

// DefaultCategories parses the embedded catalog.
func DefaultCategories() ([]CategorySeed, error) {
	var doc struct {
		Categories []CategorySeed `yaml:"categories"`
	}
	if err := yaml.Unmarshal(categoriesYAML, &doc); err != nil {
		return nil, fmt.Errorf("parse categories.yml: %w", err)
	}
	return doc.Categories, nil
}

// Defaults inserts the reference data every install needs: the category
// catalog and the landing page sections. Existing rows are left alone.
func Defaults(ctx context.Context, db *gorm.DB) error {
	cats, err := DefaultCategories()
	if err != nil {
		return err
	}
	for _, c := range cats {
		row := models.Category{Name: c.Name, Icon: c.Icon}
		if err := db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&row).Error; err != nil {
			return fmt.Errorf("seed category %s: %w", c.Name, err)
		}
	}

	if err := repository.NewFeaturedSectionRepository(db).EnsureDefaults(ctx, service.DefaultFeaturedSections); err != nil {
		return fmt.Errorf("seed featured sections: %w", err)
	}
	return nil
}
