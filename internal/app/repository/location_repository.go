package repository

import (
	"context"

	"github.com/lokal-app/lokal-backend/internal/app/model"
	"github.com/lokal-app/lokal-backend/pkg/logger"
	"gorm.io/gorm"
)

type LocationRepository interface {
	Create(ctx context.Context, location *model.Location) error
	FindPrimary(ctx context.Context, businessID uint) (*model.Location, error)
	ExistsPrimary(ctx context.Context, businessID uint) (bool, error)
}

type locationRepository struct {
	db *gorm.DB
}

func NewLocationRepository(db *gorm.DB) LocationRepository {
	return &locationRepository{db: db}
}

func (r *locationRepository) Create(ctx context.Context, location *model.Location) error {
	logger.Debug("Creating location in database", map[string]interface{}{
		"business_id":    location.BusinessID,
		"location_index": location.LocationIndex,
		"longitude":      location.Point.Longitude(),
		"latitude":       location.Point.Latitude(),
	})

	if err := r.db.WithContext(ctx).Omit("Business").Create(location).Error; err != nil {
		logger.Error("Failed to create location in database", err, map[string]interface{}{
			"business_id": location.BusinessID,
		})
		return err
	}

	logger.Debug("Location created in database", map[string]interface{}{
		"location_id": location.ID,
	})
	return nil
}

// FindPrimary returns the business's index-1 location regardless of its
// public flag.
func (r *locationRepository) FindPrimary(ctx context.Context, businessID uint) (*model.Location, error) {
	var location model.Location
	if err := r.db.WithContext(ctx).
		Where("business_id = ? AND location_index = ?", businessID, model.PrimaryLocationIndex).
		First(&location).Error; err != nil {
		return nil, err
	}
	return &location, nil
}

func (r *locationRepository) ExistsPrimary(ctx context.Context, businessID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Location{}).
		Where("business_id = ? AND location_index = ?", businessID, model.PrimaryLocationIndex).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
