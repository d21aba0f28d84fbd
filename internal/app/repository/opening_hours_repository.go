package repository

import (
	"context"

	"github.com/lokal-app/lokal-backend/internal/app/model"
	"github.com/lokal-app/lokal-backend/pkg/logger"
	"gorm.io/gorm"
)

type OpeningHoursRepository interface {
	// ReplaceForLocation deletes every row of the location and inserts hours.
	// Callers run it inside a transaction.
	ReplaceForLocation(ctx context.Context, locationID uint, hours []*model.OpeningHours) error
	FindByLocation(ctx context.Context, locationID uint) ([]model.OpeningHours, error)
}

type openingHoursRepository struct {
	db *gorm.DB
}

func NewOpeningHoursRepository(db *gorm.DB) OpeningHoursRepository {
	return &openingHoursRepository{db: db}
}

func (r *openingHoursRepository) ReplaceForLocation(ctx context.Context, locationID uint, hours []*model.OpeningHours) error {
	db := r.db.WithContext(ctx)

	result := db.Where("location_id = ?", locationID).Delete(&model.OpeningHours{})
	if result.Error != nil {
		logger.Error("Failed to delete opening hours", result.Error, map[string]interface{}{
			"location_id": locationID,
		})
		return result.Error
	}

	logger.Debug("Replacing opening hours", map[string]interface{}{
		"location_id": locationID,
		"deleted":     result.RowsAffected,
		"inserting":   len(hours),
	})

	if len(hours) == 0 {
		return nil
	}
	for _, h := range hours {
		h.LocationID = locationID
	}
	if err := db.Omit("Location").Create(hours).Error; err != nil {
		logger.Error("Failed to insert opening hours", err, map[string]interface{}{
			"location_id": locationID,
		})
		return err
	}
	return nil
}

func (r *openingHoursRepository) FindByLocation(ctx context.Context, locationID uint) ([]model.OpeningHours, error) {
	var hours []model.OpeningHours
	if err := r.db.WithContext(ctx).
		Where("location_id = ?", locationID).
		Order("day_of_week").
		Find(&hours).Error; err != nil {
		return nil, err
	}
	return hours, nil
}
