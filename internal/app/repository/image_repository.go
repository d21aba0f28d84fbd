package repository

import (
	"context"
	"errors"

	"github.com/lokal-app/lokal-backend/internal/app/model"
	"github.com/lokal-app/lokal-backend/pkg/logger"
	"gorm.io/gorm"
)

type ImageRepository interface {
	FindSlot(ctx context.Context, businessID uint, imageType string, index int) (*model.BusinessImage, error)
	// Upsert writes the image into its (business, type, index) slot.
	Upsert(ctx context.Context, image *model.BusinessImage) error
}

type imageRepository struct {
	db *gorm.DB
}

func NewImageRepository(db *gorm.DB) ImageRepository {
	return &imageRepository{db: db}
}

func (r *imageRepository) FindSlot(ctx context.Context, businessID uint, imageType string, index int) (*model.BusinessImage, error) {
	var image model.BusinessImage
	if err := r.db.WithContext(ctx).
		Where("business_id = ? AND image_type = ? AND image_index = ?", businessID, imageType, index).
		First(&image).Error; err != nil {
		return nil, err
	}
	return &image, nil
}

func (r *imageRepository) Upsert(ctx context.Context, image *model.BusinessImage) error {
	existing, err := r.FindSlot(ctx, image.BusinessID, image.ImageType, image.ImageIndex)
	switch {
	case err == nil:
		logger.Debug("Updating business image", map[string]interface{}{
			"business_id": image.BusinessID,
			"image_type":  image.ImageType,
		})
		existing.URL = image.URL
		if err := r.db.WithContext(ctx).Omit("Business").Save(existing).Error; err != nil {
			return err
		}
		*image = *existing
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		logger.Debug("Inserting business image", map[string]interface{}{
			"business_id": image.BusinessID,
			"image_type":  image.ImageType,
		})
		return r.db.WithContext(ctx).Omit("Business").Create(image).Error
	default:
		return err
	}
}
