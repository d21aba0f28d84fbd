package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lokal-app/lokal-backend/internal/app/model"
	"github.com/lokal-app/lokal-backend/internal/app/repository"
	apperrors "github.com/lokal-app/lokal-backend/internal/errors"
	"github.com/lokal-app/lokal-backend/internal/observability"
	"github.com/lokal-app/lokal-backend/pkg/logger"
	"github.com/lokal-app/lokal-backend/pkg/util"
	"gorm.io/gorm"
)

const defaultGeocodeTimeout = 10 * time.Second

var ErrImportFieldsRequired = apperrors.Validation(apperrors.ValidationRequired, "name, category and address are required")

// Geocoder resolves a free-text address. *util.Geocoder implements it.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*util.GeocodeResult, error)
}

// BulkImportRow is one onboarding sheet row. Day strings are "HH:MM-HH:MM",
// "closed" or empty; features are catalog names.
type BulkImportRow struct {
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	Address      string   `json:"address"`
	LocationName *string  `json:"location_name,omitempty"`
	Website      *string  `json:"website,omitempty"`
	XURL         *string  `json:"x_url,omitempty"`
	InstagramURL *string  `json:"instagram_url,omitempty"`
	FacebookURL  *string  `json:"facebook_url,omitempty"`
	TikTokURL    *string  `json:"tiktok_url,omitempty"`
	LogoURL      *string  `json:"logo_url,omitempty"`
	OHMonday     *string  `json:"oh_monday,omitempty"`
	OHTuesday    *string  `json:"oh_tuesday,omitempty"`
	OHWednesday  *string  `json:"oh_wednesday,omitempty"`
	OHThursday   *string  `json:"oh_thursday,omitempty"`
	OHFriday     *string  `json:"oh_friday,omitempty"`
	OHSaturday   *string  `json:"oh_saturday,omitempty"`
	OHSunday     *string  `json:"oh_sunday,omitempty"`
	Features     []string `json:"features,omitempty"`

	// Strict rejects the row on an unparsable day string or an unknown
	// feature name instead of skipping them.
	Strict bool `json:"strict,omitempty"`
}

// days returns the day strings indexed by day of week, Sunday first.
func (r *BulkImportRow) days() [7]*string {
	return [7]*string{r.OHSunday, r.OHMonday, r.OHTuesday, r.OHWednesday, r.OHThursday, r.OHFriday, r.OHSaturday}
}

type BulkImportResult struct {
	BusinessID    uint    `json:"business_id"`
	LocationID    uint    `json:"location_id"`
	CategoryID    uint    `json:"category_id"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	LocationName  *string `json:"location_name"`
	HoursCount    int     `json:"hours_count"`
	FeaturesCount int     `json:"features_count"`
	Message       string  `json:"message"`
}

type BulkImportService interface {
	Import(ctx context.Context, row BulkImportRow) (*BulkImportResult, error)
}

type bulkImportService struct {
	tm             repository.TransactionManager
	geocoder       Geocoder
	geocodeTimeout time.Duration
	metrics        *observability.ImportMetrics
}

// NewBulkImportService wires the importer. metrics may be nil.
func NewBulkImportService(tm repository.TransactionManager, geocoder Geocoder, geocodeTimeout time.Duration, metrics *observability.ImportMetrics) BulkImportService {
	if geocodeTimeout <= 0 {
		geocodeTimeout = defaultGeocodeTimeout
	}
	return &bulkImportService{
		tm:             tm,
		geocoder:       geocoder,
		geocodeTimeout: geocodeTimeout,
		metrics:        metrics,
	}
}

// Import creates the business and everything attached to it in one
// transaction. Nothing is committed unless every step succeeds.
func (s *bulkImportService) Import(ctx context.Context, row BulkImportRow) (*BulkImportResult, error) {
	start := time.Now()

	result, err := s.importRow(ctx, row)
	if err != nil {
		s.metrics.ObserveImport("failed", apperrors.KindOf(err).String(), time.Since(start))
		logger.Warn("Bulk import failed", map[string]interface{}{
			"name":     row.Name,
			"category": row.Category,
			"error":    err.Error(),
		})
		return nil, err
	}

	s.metrics.ObserveImport("success", "", time.Since(start))
	logger.Info("Business imported", map[string]interface{}{
		"business_id":    result.BusinessID,
		"location_id":    result.LocationID,
		"hours_count":    result.HoursCount,
		"features_count": result.FeaturesCount,
	})
	return result, nil
}

func (s *bulkImportService) importRow(ctx context.Context, row BulkImportRow) (*BulkImportResult, error) {
	name := strings.TrimSpace(row.Name)
	categoryName := strings.TrimSpace(row.Category)
	address := strings.TrimSpace(row.Address)
	if name == "" || categoryName == "" || address == "" {
		return nil, ErrImportFieldsRequired
	}

	var result *BulkImportResult
	err := s.tm.Execute(ctx, func(repos repository.Repositories) error {
		category, err := repos.Categories().FindByName(ctx, categoryName)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %q", ErrCategoryNotFound, categoryName)
			}
			return apperrors.Unexpected(err, "failed to load category")
		}

		geocoded, err := s.geocode(ctx, address)
		if err != nil {
			return err
		}

		locationName := trimmed(row.LocationName)
		if locationName == nil && geocoded.DisplayName != "" {
			displayName := geocoded.DisplayName
			locationName = &displayName
		}

		business, err := createIdentity(ctx, repos, CreateIdentityInput{Name: name, CategoryID: &category.ID})
		if err != nil {
			return err
		}

		location, err := addLocation(ctx, repos, business.ID, AddLocationInput{
			Latitude:  geocoded.Latitude,
			Longitude: geocoded.Longitude,
			Name:      locationName,
		})
		if err != nil {
			return err
		}

		entries, err := parseImportHours(&row)
		if err != nil {
			return err
		}
		hoursCount := 0
		if len(entries) > 0 {
			hours, err := setOpeningHours(ctx, repos, business.ID, entries)
			if err != nil {
				return err
			}
			hoursCount = len(hours)
		}

		links := SocialLinksInput{
			Website:      row.Website,
			FacebookURL:  row.FacebookURL,
			InstagramURL: row.InstagramURL,
			XURL:         row.XURL,
			TikTokURL:    row.TikTokURL,
		}
		if !links.IsEmpty() {
			if _, err := upsertSocialLinks(ctx, repos, business.ID, links); err != nil {
				return err
			}
		}

		if logoURL := trimmed(row.LogoURL); logoURL != nil {
			if _, err := upsertLogo(ctx, repos, business.ID, *logoURL); err != nil {
				return err
			}
		}

		proposals, err := resolveImportFeatures(ctx, repos, row.Features, row.Strict)
		if err != nil {
			return err
		}
		featuresCount := 0
		if len(proposals) > 0 {
			created, err := addFeatureProposals(ctx, repos, business.ID, proposals)
			if err != nil {
				return err
			}
			featuresCount = len(created)
		}

		result = &BulkImportResult{
			BusinessID:    business.ID,
			LocationID:    location.ID,
			CategoryID:    category.ID,
			Latitude:      geocoded.Latitude,
			Longitude:     geocoded.Longitude,
			LocationName:  location.Name,
			HoursCount:    hoursCount,
			FeaturesCount: featuresCount,
			Message:       fmt.Sprintf("Business '%s' imported successfully", name),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// geocode bounds the lookup by the configured timeout. Any failure is a
// validation error on the row and is never retried.
func (s *bulkImportService) geocode(ctx context.Context, address string) (*util.GeocodeResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.geocodeTimeout)
	defer cancel()

	start := time.Now()
	result, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		s.metrics.ObserveGeocode("failed", time.Since(start))
		logger.Warn("Geocoding failed", map[string]interface{}{
			"address": address,
			"error":   err.Error(),
		})
		return nil, fmt.Errorf("%w: %q", ErrGeocodingFailed, address)
	}
	s.metrics.ObserveGeocode("success", time.Since(start))
	return result, nil
}

// parseImportHours skips empty days and, unless the row is strict, days that
// do not parse.
func parseImportHours(row *BulkImportRow) ([]OpeningHoursInput, error) {
	var entries []OpeningHoursInput
	for day, raw := range row.days() {
		if raw == nil {
			continue
		}
		hours, err := util.ParseDayRange(*raw)
		if err != nil {
			if row.Strict {
				return nil, fmt.Errorf("%w: %s %q", ErrInvalidTime, util.WeekdayName(day), *raw)
			}
			logger.Warn("Skipping unparsable opening hours", map[string]interface{}{
				"name":  row.Name,
				"day":   util.WeekdayName(day),
				"value": *raw,
			})
			continue
		}
		if hours == nil {
			continue
		}
		entries = append(entries, OpeningHoursInput{
			DayOfWeek: day,
			OpenTime:  hours.Open,
			CloseTime: hours.Close,
			IsClosed:  hours.IsClosed,
		})
	}
	return entries, nil
}

// resolveImportFeatures maps feature names to catalog IDs. Unknown names are
// skipped unless strict.
func resolveImportFeatures(ctx context.Context, repos repository.Repositories, names []string, strict bool) ([]FeatureProposalInput, error) {
	var wanted []string
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		wanted = append(wanted, name)
	}
	if len(wanted) == 0 {
		return nil, nil
	}

	features, err := repos.Features().FindByNames(ctx, wanted)
	if err != nil {
		return nil, apperrors.Unexpected(err, "failed to load features")
	}
	byName := make(map[string]model.Feature, len(features))
	for _, f := range features {
		byName[f.Name] = f
	}

	proposals := make([]FeatureProposalInput, 0, len(wanted))
	for _, name := range wanted {
		feature, ok := byName[name]
		if !ok {
			if strict {
				return nil, fmt.Errorf("%w: %q", ErrFeatureNotFound, name)
			}
			logger.Warn("Skipping unknown feature", map[string]interface{}{
				"feature": name,
			})
			continue
		}
		proposals = append(proposals, FeatureProposalInput{FeatureID: feature.ID})
	}
	return proposals, nil
}
