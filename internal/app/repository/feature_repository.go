package repository

import (
	"context"

	"github.com/lokal-app/lokal-backend/internal/app/model"
	"github.com/lokal-app/lokal-backend/pkg/logger"
	"gorm.io/gorm"
)

type FeatureRepository interface {
	List(ctx context.Context) ([]model.Feature, error)
	FindByIDs(ctx context.Context, ids []uint) ([]model.Feature, error)
	FindByNames(ctx context.Context, names []string) ([]model.Feature, error)
	CreateProposals(ctx context.Context, proposals []*model.FeatureProposal) error
	FindProposalsByBusiness(ctx context.Context, businessID uint) ([]model.FeatureProposal, error)
}

type featureRepository struct {
	db *gorm.DB
}

func NewFeatureRepository(db *gorm.DB) FeatureRepository {
	return &featureRepository{db: db}
}

func (r *featureRepository) List(ctx context.Context) ([]model.Feature, error) {
	var features []model.Feature
	if err := r.db.WithContext(ctx).Order("name").Find(&features).Error; err != nil {
		return nil, err
	}
	return features, nil
}

func (r *featureRepository) FindByIDs(ctx context.Context, ids []uint) ([]model.Feature, error) {
	var features []model.Feature
	if len(ids) == 0 {
		return features, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&features).Error; err != nil {
		return nil, err
	}
	return features, nil
}

func (r *featureRepository) FindByNames(ctx context.Context, names []string) ([]model.Feature, error) {
	var features []model.Feature
	if len(names) == 0 {
		return features, nil
	}
	if err := r.db.WithContext(ctx).Where("name IN ?", names).Find(&features).Error; err != nil {
		return nil, err
	}
	return features, nil
}

func (r *featureRepository) CreateProposals(ctx context.Context, proposals []*model.FeatureProposal) error {
	if len(proposals) == 0 {
		return nil
	}

	logger.Debug("Creating feature proposals", map[string]interface{}{
		"business_id": proposals[0].BusinessID,
		"count":       len(proposals),
	})

	if err := r.db.WithContext(ctx).Omit("Business", "Feature").Create(proposals).Error; err != nil {
		logger.Error("Failed to create feature proposals", err, map[string]interface{}{
			"business_id": proposals[0].BusinessID,
		})
		return err
	}
	return nil
}

func (r *featureRepository) FindProposalsByBusiness(ctx context.Context, businessID uint) ([]model.FeatureProposal, error) {
	var proposals []model.FeatureProposal
	if err := r.db.WithContext(ctx).
		Preload("Feature").
		Where("business_id = ?", businessID).
		Order("id").
		Find(&proposals).Error; err != nil {
		return nil, err
	}
	return proposals, nil
}
