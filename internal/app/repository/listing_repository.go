package repository

import (
	"context"
	"fmt"

	"github.com/lokal-app/lokal-backend/internal/app/model"
	"github.com/lokal-app/lokal-backend/pkg/logger"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// BusinessLocationRow is a business joined to its primary public location and
// category.
type BusinessLocationRow struct {
	ID           uint
	Name         string
	Verified     bool
	Details      datatypes.JSONMap
	CategoryID   *uint
	CategoryName *string
	CategoryIcon *string
	LocationID   uint
	LocationName *string
	Latitude     *float64
	Longitude    *float64
}

type ApprovedFeatureRow struct {
	BusinessID uint
	FeatureID  uint
	Name       string
	Icon       *string
	Score      *float64
}

type SocialLinksRow struct {
	BusinessID   uint
	Website      *string
	FacebookURL  *string
	InstagramURL *string
	XURL         *string `gorm:"column:x_url"`
	TikTokURL    *string `gorm:"column:tiktok_url"`
}

type OpeningHoursRow struct {
	BusinessID uint
	DayOfWeek  int
	OpenTime   *string
	CloseTime  *string
}

type LogoRow struct {
	BusinessID uint
	URL        string
}

// ListingRepository holds the read queries behind the business listing. Each
// query stands alone so that one-to-many relations never multiply rows; the
// service merges the results by business ID. A nil businessIDs slice means
// every business.
type ListingRepository interface {
	ListBusinessesWithPrimaryLocation(ctx context.Context, businessIDs []uint) ([]BusinessLocationRow, error)
	ListApprovedFeatures(ctx context.Context, businessIDs []uint) ([]ApprovedFeatureRow, error)
	ListSocialLinks(ctx context.Context, businessIDs []uint) ([]SocialLinksRow, error)
	ListOpenHoursForPrimaryLocations(ctx context.Context, businessIDs []uint) ([]OpeningHoursRow, error)
	ListLogos(ctx context.Context, businessIDs []uint) ([]LogoRow, error)
}

type listingRepository struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepository{db: db}
}

// pointAxis extracts X or Y from a geography column. PostGIS needs the
// geometry cast; the SQLite test shims read the WKT directly.
func pointAxis(db *gorm.DB, column, axis string) string {
	if db.Dialector.Name() == "postgres" {
		return fmt.Sprintf("ST_%s(%s::geometry)", axis, column)
	}
	return fmt.Sprintf("ST_%s(%s)", axis, column)
}

func forBusinesses(column string, businessIDs []uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if businessIDs == nil {
			return db
		}
		return db.Where(column+" IN ?", businessIDs)
	}
}

func (r *listingRepository) ListBusinessesWithPrimaryLocation(ctx context.Context, businessIDs []uint) ([]BusinessLocationRow, error) {
	db := r.db.WithContext(ctx)

	var rows []BusinessLocationRow
	err := db.Table("businesses AS b").
		Select(fmt.Sprintf(`b.id, b.name, b.verified, b.details, b.category_id,
			c.name AS category_name,
			COALESCE(c.icon, pc.icon) AS category_icon,
			l.id AS location_id, l.name AS location_name,
			%s AS latitude, %s AS longitude`,
			pointAxis(db, "l.point", "Y"), pointAxis(db, "l.point", "X"))).
		Joins("JOIN locations AS l ON l.business_id = b.id AND l.location_index = ? AND l.is_public = ?", model.PrimaryLocationIndex, true).
		Joins("LEFT JOIN categories AS c ON c.id = b.category_id").
		Joins("LEFT JOIN categories AS pc ON pc.id = c.parent_id").
		Scopes(forBusinesses("b.id", businessIDs)).
		Order("b.name, b.id").
		Scan(&rows).Error
	if err != nil {
		logger.Error("Failed to list businesses with primary location", err)
		return nil, err
	}
	return rows, nil
}

// ListApprovedFeatures returns one row per (business, feature) with the best
// approved score.
func (r *listingRepository) ListApprovedFeatures(ctx context.Context, businessIDs []uint) ([]ApprovedFeatureRow, error) {
	var rows []ApprovedFeatureRow
	err := r.db.WithContext(ctx).Table("feature_proposals AS fp").
		Select("fp.business_id, f.id AS feature_id, f.name, f.icon, MAX(fp.score) AS score").
		Joins("JOIN features AS f ON f.id = fp.feature_id").
		Where("fp.status = ?", model.ProposalApproved).
		Scopes(forBusinesses("fp.business_id", businessIDs)).
		Group("fp.business_id, f.id, f.name, f.icon").
		Order("fp.business_id, f.name").
		Scan(&rows).Error
	if err != nil {
		logger.Error("Failed to list approved features", err)
		return nil, err
	}
	return rows, nil
}

func (r *listingRepository) ListSocialLinks(ctx context.Context, businessIDs []uint) ([]SocialLinksRow, error) {
	var rows []SocialLinksRow
	err := r.db.WithContext(ctx).Table("social_links").
		Select("business_id, website, facebook_url, instagram_url, x_url, tiktok_url").
		Scopes(forBusinesses("business_id", businessIDs)).
		Scan(&rows).Error
	if err != nil {
		logger.Error("Failed to list social links", err)
		return nil, err
	}
	return rows, nil
}

func (r *listingRepository) ListOpenHoursForPrimaryLocations(ctx context.Context, businessIDs []uint) ([]OpeningHoursRow, error) {
	var rows []OpeningHoursRow
	err := r.db.WithContext(ctx).Table("opening_hours AS oh").
		Select("l.business_id, oh.day_of_week, oh.open_time, oh.close_time").
		Joins("JOIN locations AS l ON l.id = oh.location_id").
		Where("l.location_index = ? AND l.is_public = ? AND oh.is_closed = ?", model.PrimaryLocationIndex, true, false).
		Scopes(forBusinesses("l.business_id", businessIDs)).
		Order("l.business_id, oh.day_of_week").
		Scan(&rows).Error
	if err != nil {
		logger.Error("Failed to list opening hours", err)
		return nil, err
	}
	return rows, nil
}

func (r *listingRepository) ListLogos(ctx context.Context, businessIDs []uint) ([]LogoRow, error) {
	var rows []LogoRow
	err := r.db.WithContext(ctx).Table("business_images").
		Select("business_id, url").
		Where("image_type = ? AND image_index = ?", model.ImageTypeLogo, model.LogoImageIndex).
		Scopes(forBusinesses("business_id", businessIDs)).
		Scan(&rows).Error
	if err != nil {
		logger.Error("Failed to list logos", err)
		return nil, err
	}
	return rows, nil
}
