package service

import (
	"context"
	"fmt"

	"github.com/lokal-app/lokal-backend/internal/app/model"
	"github.com/lokal-app/lokal-backend/internal/app/repository"
	apperrors "github.com/lokal-app/lokal-backend/internal/errors"
	"github.com/lokal-app/lokal-backend/pkg/logger"
	"github.com/lokal-app/lokal-backend/pkg/util"
)

const (
	defaultOpenTime  = "9:00"
	defaultCloseTime = "17:00"
)

type FeatureView struct {
	Key   string      `json:"key"`
	Name  string      `json:"name"`
	Value interface{} `json:"value"` // score, or true when unscored
	Icon  *string     `json:"icon,omitempty"`
}

type SocialLinksView struct {
	Website   *string `json:"website,omitempty"`
	Facebook  *string `json:"facebook,omitempty"`
	Instagram *string `json:"instagram,omitempty"`
	X         *string `json:"x,omitempty"`
	TikTok    *string `json:"tiktok,omitempty"`
}

type OpeningHoursView struct {
	Day   string `json:"day"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// BusinessView is the denormalized listing record served to map clients.
type BusinessView struct {
	ID           uint               `json:"id"`
	Name         string             `json:"name"`
	Description  *string            `json:"description,omitempty"`
	Category     *string            `json:"category,omitempty"`
	CategoryID   *uint              `json:"categoryId,omitempty"`
	CategoryIcon *string            `json:"categoryIcon,omitempty"`
	Verified     bool               `json:"verified"`
	Latitude     float64            `json:"latitude"`
	Longitude    float64            `json:"longitude"`
	LocationName *string            `json:"locationName,omitempty"`
	Features     []FeatureView      `json:"features"`
	SocialLinks  *SocialLinksView   `json:"socialLinks,omitempty"`
	OpeningHours []OpeningHoursView `json:"openingHours"`
	LogoURL      *string            `json:"logoUrl,omitempty"`
}

type BusinessService interface {
	GetBusinesses(ctx context.Context) ([]BusinessView, error)
	GetBusiness(ctx context.Context, id uint) (*BusinessView, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	ListFeatures(ctx context.Context) ([]model.Feature, error)
}

type businessService struct {
	listingRepo  repository.ListingRepository
	categoryRepo repository.CategoryRepository
	featureRepo  repository.FeatureRepository
}

func NewBusinessService(
	listingRepo repository.ListingRepository,
	categoryRepo repository.CategoryRepository,
	featureRepo repository.FeatureRepository,
) BusinessService {
	return &businessService{
		listingRepo:  listingRepo,
		categoryRepo: categoryRepo,
		featureRepo:  featureRepo,
	}
}

func (s *businessService) GetBusinesses(ctx context.Context) ([]BusinessView, error) {
	views, err := s.loadViews(ctx, nil)
	if err != nil {
		return nil, err
	}

	logger.Info("Businesses fetched", map[string]interface{}{
		"count": len(views),
	})
	return views, nil
}

// GetBusiness builds the view of one business. A business that is not listed
// (no public primary location) is reported as not found.
func (s *businessService) GetBusiness(ctx context.Context, id uint) (*BusinessView, error) {
	views, err := s.loadViews(ctx, []uint{id})
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		logger.Warn("Business not listed", map[string]interface{}{
			"business_id": id,
		})
		return nil, fmt.Errorf("%w: id %d", ErrBusinessNotFound, id)
	}
	return &views[0], nil
}

func (s *businessService) ListCategories(ctx context.Context) ([]model.Category, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		logger.Error("Failed to list categories", err)
		return nil, apperrors.Unexpected(err, "failed to list categories")
	}
	return categories, nil
}

func (s *businessService) ListFeatures(ctx context.Context) ([]model.Feature, error) {
	features, err := s.featureRepo.List(ctx)
	if err != nil {
		logger.Error("Failed to list features", err)
		return nil, apperrors.Unexpected(err, "failed to list features")
	}
	return features, nil
}

// loadViews runs the base query and the four auxiliary queries independently
// and merges them by business ID.
func (s *businessService) loadViews(ctx context.Context, businessIDs []uint) ([]BusinessView, error) {
	rows, err := s.listingRepo.ListBusinessesWithPrimaryLocation(ctx, businessIDs)
	if err != nil {
		return nil, apperrors.Unexpected(err, "failed to load businesses")
	}
	features, err := s.featuresByBusiness(ctx, businessIDs)
	if err != nil {
		return nil, err
	}
	socials, err := s.socialLinksByBusiness(ctx, businessIDs)
	if err != nil {
		return nil, err
	}
	hours, err := s.openingHoursByBusiness(ctx, businessIDs)
	if err != nil {
		return nil, err
	}
	logos, err := s.logosByBusiness(ctx, businessIDs)
	if err != nil {
		return nil, err
	}

	views := make([]BusinessView, 0, len(rows))
	for _, row := range rows {
		if row.Latitude == nil || row.Longitude == nil {
			continue
		}

		view := BusinessView{
			ID:           row.ID,
			Name:         row.Name,
			Category:     row.CategoryName,
			CategoryID:   row.CategoryID,
			CategoryIcon: row.CategoryIcon,
			Verified:     row.Verified,
			Latitude:     *row.Latitude,
			Longitude:    *row.Longitude,
			LocationName: row.LocationName,
			Features:     features[row.ID],
			SocialLinks:  socials[row.ID],
			OpeningHours: hours[row.ID],
			LogoURL:      logos[row.ID],
		}
		business := model.Business{Details: row.Details}
		if description := business.Description(); description != "" {
			view.Description = &description
		}
		if view.Features == nil {
			view.Features = []FeatureView{}
		}
		if view.OpeningHours == nil {
			view.OpeningHours = []OpeningHoursView{}
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *businessService) featuresByBusiness(ctx context.Context, businessIDs []uint) (map[uint][]FeatureView, error) {
	rows, err := s.listingRepo.ListApprovedFeatures(ctx, businessIDs)
	if err != nil {
		return nil, apperrors.Unexpected(err, "failed to load features")
	}

	byBusiness := make(map[uint][]FeatureView)
	for _, row := range rows {
		var value interface{} = true
		if row.Score != nil && *row.Score != 0 {
			value = *row.Score
		}
		byBusiness[row.BusinessID] = append(byBusiness[row.BusinessID], FeatureView{
			Key:   fmt.Sprintf("feature_%d", row.FeatureID),
			Name:  row.Name,
			Value: value,
			Icon:  row.Icon,
		})
	}
	return byBusiness, nil
}

func (s *businessService) socialLinksByBusiness(ctx context.Context, businessIDs []uint) (map[uint]*SocialLinksView, error) {
	rows, err := s.listingRepo.ListSocialLinks(ctx, businessIDs)
	if err != nil {
		return nil, apperrors.Unexpected(err, "failed to load social links")
	}

	byBusiness := make(map[uint]*SocialLinksView)
	for _, row := range rows {
		links := model.SocialLinks{
			Website:      nonEmpty(row.Website),
			FacebookURL:  nonEmpty(row.FacebookURL),
			InstagramURL: nonEmpty(row.InstagramURL),
			XURL:         nonEmpty(row.XURL),
			TikTokURL:    nonEmpty(row.TikTokURL),
		}
		if links.IsEmpty() {
			continue
		}
		byBusiness[row.BusinessID] = &SocialLinksView{
			Website:   links.Website,
			Facebook:  links.FacebookURL,
			Instagram: links.InstagramURL,
			X:         links.XURL,
			TikTok:    links.TikTokURL,
		}
	}
	return byBusiness, nil
}

func (s *businessService) openingHoursByBusiness(ctx context.Context, businessIDs []uint) (map[uint][]OpeningHoursView, error) {
	rows, err := s.listingRepo.ListOpenHoursForPrimaryLocations(ctx, businessIDs)
	if err != nil {
		return nil, apperrors.Unexpected(err, "failed to load opening hours")
	}

	byBusiness := make(map[uint][]OpeningHoursView)
	for _, row := range rows {
		start, end := defaultOpenTime, defaultCloseTime
		if row.OpenTime != nil {
			start = *row.OpenTime
		}
		if row.CloseTime != nil {
			end = *row.CloseTime
		}
		byBusiness[row.BusinessID] = append(byBusiness[row.BusinessID], OpeningHoursView{
			Day:   util.WeekdayName(row.DayOfWeek),
			Start: start,
			End:   end,
		})
	}
	return byBusiness, nil
}

func (s *businessService) logosByBusiness(ctx context.Context, businessIDs []uint) (map[uint]*string, error) {
	rows, err := s.listingRepo.ListLogos(ctx, businessIDs)
	if err != nil {
		return nil, apperrors.Unexpected(err, "failed to load logos")
	}

	byBusiness := make(map[uint]*string, len(rows))
	for _, row := range rows {
		url := row.URL
		byBusiness[row.BusinessID] = &url
	}
	return byBusiness, nil
}

// nonEmpty maps blank strings to nil.
func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
