package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lokal-app/lokal-backend/internal/app/model"
	"github.com/lokal-app/lokal-backend/internal/app/repository"
	apperrors "github.com/lokal-app/lokal-backend/internal/errors"
	"github.com/lokal-app/lokal-backend/pkg/logger"
	"github.com/lokal-app/lokal-backend/pkg/util"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CreateIdentityInput struct {
	Name        string
	CategoryID  *uint
	Description *string
}

type AddLocationInput struct {
	Latitude  float64
	Longitude float64
	Name      *string
	IsPublic  *bool // nil means public
}

// OpeningHoursInput times accept HH:MM or HH:MM:SS and are ignored when
// IsClosed is set.
type OpeningHoursInput struct {
	DayOfWeek int
	OpenTime  *string
	CloseTime *string
	IsClosed  bool
}

type SocialLinksInput struct {
	Website      *string
	FacebookURL  *string
	InstagramURL *string
	XURL         *string
	TikTokURL    *string
}

// IsEmpty reports whether no link carries a non-blank value.
func (in SocialLinksInput) IsEmpty() bool {
	for _, v := range []*string{in.Website, in.FacebookURL, in.InstagramURL, in.XURL, in.TikTokURL} {
		if trimmed(v) != nil {
			return false
		}
	}
	return true
}

type FeatureProposalInput struct {
	FeatureID uint
	Score     *float64
}

// OnboardingService populates a business one step at a time. Every step runs
// in its own transaction and checks that the steps it depends on happened.
type OnboardingService interface {
	CreateIdentity(ctx context.Context, input CreateIdentityInput) (*model.Business, error)
	AddLocation(ctx context.Context, businessID uint, input AddLocationInput) (*model.Location, error)
	SetOpeningHours(ctx context.Context, businessID uint, entries []OpeningHoursInput) ([]model.OpeningHours, error)
	UpsertSocialLinks(ctx context.Context, businessID uint, input SocialLinksInput) (*model.SocialLinks, error)
	UpsertLogo(ctx context.Context, businessID uint, url string) (*model.BusinessImage, error)
	AddFeatureProposals(ctx context.Context, businessID uint, proposals []FeatureProposalInput) ([]model.FeatureProposal, error)
}

type onboardingService struct {
	tm repository.TransactionManager
}

func NewOnboardingService(tm repository.TransactionManager) OnboardingService {
	return &onboardingService{tm: tm}
}

func (s *onboardingService) CreateIdentity(ctx context.Context, input CreateIdentityInput) (*model.Business, error) {
	var business *model.Business
	err := s.tm.Execute(ctx, func(repos repository.Repositories) error {
		var err error
		business, err = createIdentity(ctx, repos, input)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Business identity created", map[string]interface{}{
		"business_id": business.ID,
		"name":        business.Name,
	})
	return business, nil
}

func (s *onboardingService) AddLocation(ctx context.Context, businessID uint, input AddLocationInput) (*model.Location, error) {
	var location *model.Location
	err := s.tm.Execute(ctx, func(repos repository.Repositories) error {
		var err error
		location, err = addLocation(ctx, repos, businessID, input)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Primary location added", map[string]interface{}{
		"business_id": businessID,
		"location_id": location.ID,
	})
	return location, nil
}

func (s *onboardingService) SetOpeningHours(ctx context.Context, businessID uint, entries []OpeningHoursInput) ([]model.OpeningHours, error) {
	var hours []model.OpeningHours
	err := s.tm.Execute(ctx, func(repos repository.Repositories) error {
		var err error
		hours, err = setOpeningHours(ctx, repos, businessID, entries)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Opening hours replaced", map[string]interface{}{
		"business_id": businessID,
		"count":       len(hours),
	})
	return hours, nil
}

func (s *onboardingService) UpsertSocialLinks(ctx context.Context, businessID uint, input SocialLinksInput) (*model.SocialLinks, error) {
	var links *model.SocialLinks
	err := s.tm.Execute(ctx, func(repos repository.Repositories) error {
		var err error
		links, err = upsertSocialLinks(ctx, repos, businessID, input)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Social links saved", map[string]interface{}{
		"business_id": businessID,
	})
	return links, nil
}

func (s *onboardingService) UpsertLogo(ctx context.Context, businessID uint, url string) (*model.BusinessImage, error) {
	var logo *model.BusinessImage
	err := s.tm.Execute(ctx, func(repos repository.Repositories) error {
		var err error
		logo, err = upsertLogo(ctx, repos, businessID, url)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Logo saved", map[string]interface{}{
		"business_id": businessID,
	})
	return logo, nil
}

func (s *onboardingService) AddFeatureProposals(ctx context.Context, businessID uint, proposals []FeatureProposalInput) ([]model.FeatureProposal, error) {
	var created []model.FeatureProposal
	err := s.tm.Execute(ctx, func(repos repository.Repositories) error {
		var err error
		created, err = addFeatureProposals(ctx, repos, businessID, proposals)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Feature proposals added", map[string]interface{}{
		"business_id": businessID,
		"count":       len(created),
	})
	return created, nil
}

// The step functions below run against whatever repositories they are given,
// so the bulk import can chain them inside its own transaction.

func createIdentity(ctx context.Context, repos repository.Repositories, input CreateIdentityInput) (*model.Business, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrBusinessNameRequired
	}

	if input.CategoryID != nil {
		if _, err := repos.Categories().FindByID(ctx, *input.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				logger.Warn("Category not found", map[string]interface{}{
					"category_id": *input.CategoryID,
				})
				return nil, fmt.Errorf("%w: id %d", ErrCategoryNotFound, *input.CategoryID)
			}
			return nil, apperrors.Unexpected(err, "failed to load category")
		}
	}

	business := &model.Business{
		Name:       name,
		CategoryID: input.CategoryID,
	}
	if description := trimmed(input.Description); description != nil {
		business.Details = datatypes.JSONMap{"description": *description}
	}

	if err := repos.Businesses().Create(ctx, business); err != nil {
		return nil, apperrors.ParseError(err, "create business")
	}
	return business, nil
}

func addLocation(ctx context.Context, repos repository.Repositories, businessID uint, input AddLocationInput) (*model.Location, error) {
	if input.Latitude < -90 || input.Latitude > 90 || input.Longitude < -180 || input.Longitude > 180 {
		return nil, fmt.Errorf("%w: (%g, %g)", ErrInvalidCoordinates, input.Latitude, input.Longitude)
	}
	if err := requireBusiness(ctx, repos, businessID); err != nil {
		return nil, err
	}

	exists, err := repos.Locations().ExistsPrimary(ctx, businessID)
	if err != nil {
		return nil, apperrors.Unexpected(err, "failed to check primary location")
	}
	if exists {
		logger.Warn("Primary location already exists", map[string]interface{}{
			"business_id": businessID,
		})
		return nil, ErrPrimaryLocationExists
	}

	isPublic := true
	if input.IsPublic != nil {
		isPublic = *input.IsPublic
	}
	location := &model.Location{
		BusinessID:    businessID,
		Point:         model.NewGeoPoint(input.Longitude, input.Latitude),
		LocationIndex: model.PrimaryLocationIndex,
		IsPublic:      isPublic,
		Name:          trimmed(input.Name),
	}
	if err := repos.Locations().Create(ctx, location); err != nil {
		// A concurrent insert can pass the check above; the unique index catches it.
		if apperrors.IsUniqueViolation(err) {
			return nil, ErrPrimaryLocationExists
		}
		return nil, apperrors.Unexpected(err, "failed to create location")
	}
	return location, nil
}

func setOpeningHours(ctx context.Context, repos repository.Repositories, businessID uint, entries []OpeningHoursInput) ([]model.OpeningHours, error) {
	if err := requireBusiness(ctx, repos, businessID); err != nil {
		return nil, err
	}
	location, err := repos.Locations().FindPrimary(ctx, businessID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: business %d", ErrPrimaryLocationNotFound, businessID)
		}
		return nil, apperrors.Unexpected(err, "failed to load primary location")
	}

	hours, err := buildOpeningHours(entries)
	if err != nil {
		return nil, err
	}

	if err := repos.OpeningHours().ReplaceForLocation(ctx, location.ID, hours); err != nil {
		return nil, apperrors.ParseError(err, "replace opening hours")
	}

	result := make([]model.OpeningHours, 0, len(hours))
	for _, h := range hours {
		result = append(result, *h)
	}
	return result, nil
}

// buildOpeningHours validates the whole batch before anything is written.
func buildOpeningHours(entries []OpeningHoursInput) ([]*model.OpeningHours, error) {
	seen := make(map[int]bool, len(entries))
	hours := make([]*model.OpeningHours, 0, len(entries))

	for _, entry := range entries {
		if entry.DayOfWeek < 0 || entry.DayOfWeek > 6 {
			return nil, fmt.Errorf("%w: got %d", ErrInvalidDayOfWeek, entry.DayOfWeek)
		}
		if seen[entry.DayOfWeek] {
			return nil, fmt.Errorf("%w: %s listed twice", ErrInvalidDayOfWeek, util.WeekdayName(entry.DayOfWeek))
		}
		seen[entry.DayOfWeek] = true

		if entry.IsClosed {
			hours = append(hours, &model.OpeningHours{DayOfWeek: entry.DayOfWeek, IsClosed: true})
			continue
		}

		if trimmed(entry.OpenTime) == nil || trimmed(entry.CloseTime) == nil {
			return nil, fmt.Errorf("%w: %s needs both open and close times", ErrInvalidTime, util.WeekdayName(entry.DayOfWeek))
		}
		open, err := util.NormalizeTime(*entry.OpenTime)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTime, *entry.OpenTime)
		}
		closing, err := util.NormalizeTime(*entry.CloseTime)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTime, *entry.CloseTime)
		}
		hours = append(hours, &model.OpeningHours{
			DayOfWeek: entry.DayOfWeek,
			OpenTime:  &open,
			CloseTime: &closing,
		})
	}
	return hours, nil
}

func upsertSocialLinks(ctx context.Context, repos repository.Repositories, businessID uint, input SocialLinksInput) (*model.SocialLinks, error) {
	if err := requireBusiness(ctx, repos, businessID); err != nil {
		return nil, err
	}

	links := &model.SocialLinks{
		BusinessID:   businessID,
		Website:      trimmed(input.Website),
		FacebookURL:  trimmed(input.FacebookURL),
		InstagramURL: trimmed(input.InstagramURL),
		XURL:         trimmed(input.XURL),
		TikTokURL:    trimmed(input.TikTokURL),
	}
	if err := repos.SocialLinks().Upsert(ctx, links); err != nil {
		return nil, apperrors.ParseError(err, "save social links")
	}
	return links, nil
}

func upsertLogo(ctx context.Context, repos repository.Repositories, businessID uint, url string) (*model.BusinessImage, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, ErrLogoURLRequired
	}
	if err := requireBusiness(ctx, repos, businessID); err != nil {
		return nil, err
	}

	logo := &model.BusinessImage{
		BusinessID: businessID,
		ImageType:  model.ImageTypeLogo,
		ImageIndex: model.LogoImageIndex,
		URL:        url,
	}
	if err := repos.Images().Upsert(ctx, logo); err != nil {
		return nil, apperrors.ParseError(err, "save logo")
	}
	return logo, nil
}

func addFeatureProposals(ctx context.Context, repos repository.Repositories, businessID uint, inputs []FeatureProposalInput) ([]model.FeatureProposal, error) {
	if err := requireBusiness(ctx, repos, businessID); err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return []model.FeatureProposal{}, nil
	}

	ids := make([]uint, 0, len(inputs))
	requested := make(map[uint]bool, len(inputs))
	for _, in := range inputs {
		if !requested[in.FeatureID] {
			requested[in.FeatureID] = true
			ids = append(ids, in.FeatureID)
		}
	}

	features, err := repos.Features().FindByIDs(ctx, ids)
	if err != nil {
		return nil, apperrors.Unexpected(err, "failed to load features")
	}
	found := make(map[uint]bool, len(features))
	for _, f := range features {
		found[f.ID] = true
	}
	var missing []uint
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
		logger.Warn("Unknown features in proposal batch", map[string]interface{}{
			"business_id": businessID,
			"missing":     missing,
		})
		return nil, fmt.Errorf("%w: ids %v", ErrFeatureNotFound, missing)
	}

	proposals := make([]*model.FeatureProposal, 0, len(inputs))
	for _, in := range inputs {
		proposals = append(proposals, &model.FeatureProposal{
			BusinessID: businessID,
			FeatureID:  in.FeatureID,
			Score:      in.Score,
			Status:     model.ProposalPending,
		})
	}
	if err := repos.Features().CreateProposals(ctx, proposals); err != nil {
		return nil, apperrors.ParseError(err, "create feature proposals")
	}

	created := make([]model.FeatureProposal, 0, len(proposals))
	for _, p := range proposals {
		created = append(created, *p)
	}
	return created, nil
}

func requireBusiness(ctx context.Context, repos repository.Repositories, businessID uint) error {
	exists, err := repos.Businesses().Exists(ctx, businessID)
	if err != nil {
		return apperrors.Unexpected(err, "failed to load business")
	}
	if !exists {
		logger.Warn("Business not found", map[string]interface{}{
			"business_id": businessID,
		})
		return fmt.Errorf("%w: id %d", ErrBusinessNotFound, businessID)
	}
	return nil
}

// trimmed returns nil for nil or blank strings and the trimmed value otherwise.
func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
