package repository

import (
	"context"
	"errors"

	"github.com/lokal-app/lokal-backend/internal/app/model"
	"github.com/lokal-app/lokal-backend/pkg/logger"
	"gorm.io/gorm"
)

type SocialLinksRepository interface {
	FindByBusiness(ctx context.Context, businessID uint) (*model.SocialLinks, error)
	// Upsert updates the business's row in place or inserts it.
	Upsert(ctx context.Context, links *model.SocialLinks) error
}

type socialLinksRepository struct {
	db *gorm.DB
}

func NewSocialLinksRepository(db *gorm.DB) SocialLinksRepository {
	return &socialLinksRepository{db: db}
}

func (r *socialLinksRepository) FindByBusiness(ctx context.Context, businessID uint) (*model.SocialLinks, error) {
	var links model.SocialLinks
	if err := r.db.WithContext(ctx).Where("business_id = ?", businessID).First(&links).Error; err != nil {
		return nil, err
	}
	return &links, nil
}

func (r *socialLinksRepository) Upsert(ctx context.Context, links *model.SocialLinks) error {
	existing, err := r.FindByBusiness(ctx, links.BusinessID)
	switch {
	case err == nil:
		links.ID = existing.ID
		links.CreatedAt = existing.CreatedAt
		logger.Debug("Updating social links", map[string]interface{}{
			"business_id": links.BusinessID,
		})
		return r.db.WithContext(ctx).Omit("Business").Save(links).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		logger.Debug("Inserting social links", map[string]interface{}{
			"business_id": links.BusinessID,
		})
		return r.db.WithContext(ctx).Omit("Business").Create(links).Error
	default:
		return err
	}
}
