package db

import (
	"github.com/lokal-app/lokal-backend/internal/app/model"
	"github.com/lokal-app/lokal-backend/pkg/logger"
	"gorm.io/gorm"
)

// Models lists every table owned by the directory, parents first.
func Models() []interface{} {
	return []interface{}{
		&model.Category{},
		&model.Feature{},
		&model.Business{},
		&model.Location{},
		&model.OpeningHours{},
		&model.FeatureProposal{},
		&model.SocialLinks{},
		&model.BusinessImage{},
	}
}

// Migrate creates missing tables, columns and indexes. PostGIS must be
// available on PostgreSQL for the geography column.
func Migrate(db *gorm.DB) error {
	logger.Info("Running database migrations...")

	if db.Dialector.Name() == "postgres" {
		if err := db.Exec("CREATE EXTENSION IF NOT EXISTS postgis").Error; err != nil {
			logger.Error("Failed to enable PostGIS extension", err)
			return err
		}
	}

	models := Models()
	if err := db.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

type catalogEntry struct {
	name string
	icon string
}

var defaultCategories = []catalogEntry{
	{"Cafe", "coffee"},
	{"Restaurant", "utensils"},
	{"Bar", "beer"},
	{"Bakery", "bread"},
	{"Shop", "shopping-bag"},
	{"Services", "wrench"},
}

var defaultFeatures = []catalogEntry{
	{"Wheelchair accessible", "wheelchair"},
	{"Dog friendly", "dog"},
	{"Vegan options", "leaf"},
	{"Outdoor seating", "sun"},
	{"Free Wi-Fi", "wifi"},
	{"Card payments", "credit-card"},
}

// Seed inserts the default category and feature catalog into empty tables.
func Seed(db *gorm.DB) error {
	logger.Info("Seeding catalog data...")

	var count int64
	if err := db.Model(&model.Category{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		for _, entry := range defaultCategories {
			icon := entry.icon
			if err := db.Create(&model.Category{Name: entry.name, Icon: &icon}).Error; err != nil {
				logger.Error("Failed to seed category", err, map[string]interface{}{
					"name": entry.name,
				})
				return err
			}
		}
	}

	if err := db.Model(&model.Feature{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		for _, entry := range defaultFeatures {
			icon := entry.icon
			if err := db.Create(&model.Feature{Name: entry.name, Icon: &icon}).Error; err != nil {
				logger.Error("Failed to seed feature", err, map[string]interface{}{
					"name": entry.name,
				})
				return err
			}
		}
	}

	logger.Info("Catalog seeded", map[string]interface{}{
		"categories": len(defaultCategories),
		"features":   len(defaultFeatures),
	})
	return nil
}
