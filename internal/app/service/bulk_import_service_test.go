package service

import (
	"context"
	"testing"
	"time"

	"github.com/lokal-app/lokal-backend/internal/app/model"
	"github.com/lokal-app/lokal-backend/internal/app/repository"
	apperrors "github.com/lokal-app/lokal-backend/internal/errors"
	"github.com/lokal-app/lokal-backend/internal/observability"
	"github.com/lokal-app/lokal-backend/pkg/util"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cafeRow() BulkImportRow {
	return BulkImportRow{
		Name:         "Bean There",
		Category:     "Cafe",
		Address:      "1 Market Square, Cambridge",
		Website:      strPtr("https://beanthere.example"),
		InstagramURL: strPtr(""),
		OHMonday:     strPtr("08:00-18:00"),
		OHTuesday:    strPtr("8:00 - 18:00"),
		OHWednesday:  strPtr("all day"),
		OHSunday:     strPtr("Closed"),
		OHSaturday:   strPtr(""),
		Features:     []string{"Free Wi-Fi", "Helipad", "Free Wi-Fi"},
	}
}

func TestBulkImport_CreatesEverything(t *testing.T) {
	s := setupServiceTest(t)
	ctx := context.Background()
	cafe := s.createCategory(t, "Cafe")
	wifi := s.createFeature(t, "Free Wi-Fi")

	row := cafeRow()
	row.LogoURL = strPtr("https://cdn.example/bean.png")

	result, err := s.importer.Import(ctx, row)
	require.NoError(t, err)

	assert.NotZero(t, result.BusinessID)
	assert.NotZero(t, result.LocationID)
	assert.Equal(t, cafe.ID, result.CategoryID)
	assert.InDelta(t, 52.2053, result.Latitude, 1e-9)
	assert.InDelta(t, 0.1218, result.Longitude, 1e-9)
	assert.Equal(t, "Market Square, Cambridge CB2 3QJ, United Kingdom", *result.LocationName)
	assert.Equal(t, 3, result.HoursCount)
	assert.Equal(t, 1, result.FeaturesCount)
	assert.Contains(t, result.Message, "Bean There")
	assert.Equal(t, []string{"1 Market Square, Cambridge"}, s.geocoder.addresses)

	business := &model.Business{}
	require.NoError(t, s.db.First(business, result.BusinessID).Error)
	assert.False(t, business.Verified)

	var proposals []model.FeatureProposal
	require.NoError(t, s.db.Where("business_id = ?", result.BusinessID).Find(&proposals).Error)
	require.Len(t, proposals, 1)
	assert.Equal(t, wifi.ID, proposals[0].FeatureID)
	assert.Equal(t, model.ProposalPending, proposals[0].Status)

	view, err := s.businesses.GetBusiness(ctx, result.BusinessID)
	require.NoError(t, err)
	assert.Equal(t, []OpeningHoursView{
		{Day: "Monday", Start: "08:00:00", End: "18:00:00"},
		{Day: "Tuesday", Start: "08:00:00", End: "18:00:00"},
	}, view.OpeningHours)
	require.NotNil(t, view.SocialLinks)
	assert.Equal(t, "https://beanthere.example", *view.SocialLinks.Website)
	assert.Nil(t, view.SocialLinks.Instagram)
	assert.Equal(t, "https://cdn.example/bean.png", *view.LogoURL)
}

func TestBulkImport_ExplicitLocationName(t *testing.T) {
	s := setupServiceTest(t)
	s.createCategory(t, "Cafe")

	row := cafeRow()
	row.LocationName = strPtr("Stall 4")

	result, err := s.importer.Import(context.Background(), row)
	require.NoError(t, err)
	assert.Equal(t, "Stall 4", *result.LocationName)
}

func TestBulkImport_GeocodingFailureLeavesNothing(t *testing.T) {
	s := setupServiceTest(t)
	s.createCategory(t, "Cafe")
	s.geocoder.err = util.ErrNoGeocodeResult

	row := cafeRow()
	row.Address = "zzzz-invalid"

	before := s.countBusinesses(t)
	_, err := s.importer.Import(context.Background(), row)
	assertKind(t, err, apperrors.KindValidation)
	assert.ErrorIs(t, err, ErrGeocodingFailed)
	assert.Equal(t, before, s.countBusinesses(t))
}

func TestBulkImport_UnknownCategory(t *testing.T) {
	s := setupServiceTest(t)

	_, err := s.importer.Import(context.Background(), cafeRow())
	assertKind(t, err, apperrors.KindNotFound)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
	assert.Empty(t, s.geocoder.addresses)
	assert.Zero(t, s.countBusinesses(t))
}

func TestBulkImport_RequiredFields(t *testing.T) {
	s := setupServiceTest(t)
	s.createCategory(t, "Cafe")

	for _, mutate := range []func(*BulkImportRow){
		func(r *BulkImportRow) { r.Name = " " },
		func(r *BulkImportRow) { r.Category = "" },
		func(r *BulkImportRow) { r.Address = "" },
	} {
		row := cafeRow()
		mutate(&row)
		_, err := s.importer.Import(context.Background(), row)
		assertKind(t, err, apperrors.KindValidation)
	}
	assert.Zero(t, s.countBusinesses(t))
}

func TestBulkImport_StrictModeRollsBack(t *testing.T) {
	s := setupServiceTest(t)
	s.createCategory(t, "Cafe")
	s.createFeature(t, "Free Wi-Fi")

	t.Run("Unparsable day", func(t *testing.T) {
		row := cafeRow()
		row.Strict = true

		_, err := s.importer.Import(context.Background(), row)
		assertKind(t, err, apperrors.KindValidation)
		assert.Zero(t, s.countBusinesses(t))
	})

	t.Run("Unknown feature", func(t *testing.T) {
		row := cafeRow()
		row.Strict = true
		row.OHWednesday = nil

		_, err := s.importer.Import(context.Background(), row)
		assertKind(t, err, apperrors.KindNotFound)
		assert.ErrorIs(t, err, ErrFeatureNotFound)
		assert.Zero(t, s.countBusinesses(t))

		var locations int64
		require.NoError(t, s.db.Model(&model.Location{}).Count(&locations).Error)
		assert.Zero(t, locations)
	})
}

type blockingGeocoder struct{}

func (blockingGeocoder) Geocode(ctx context.Context, address string) (*util.GeocodeResult, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestBulkImport_GeocoderTimeout(t *testing.T) {
	s := setupServiceTest(t)
	s.createCategory(t, "Cafe")

	metrics := observability.NewImportMetrics(prometheus.NewRegistry(), "test")
	importer := NewBulkImportService(repository.NewTransactionManager(s.db), blockingGeocoder{}, 20*time.Millisecond, metrics)

	start := time.Now()
	_, err := importer.Import(context.Background(), cafeRow())
	assert.ErrorIs(t, err, ErrGeocodingFailed)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Zero(t, s.countBusinesses(t))
}

func TestBulkImport_SecondImportOfSameRowCreatesSecondBusiness(t *testing.T) {
	s := setupServiceTest(t)
	s.createCategory(t, "Cafe")

	first, err := s.importer.Import(context.Background(), cafeRow())
	require.NoError(t, err)
	second, err := s.importer.Import(context.Background(), cafeRow())
	require.NoError(t, err)

	assert.NotEqual(t, first.BusinessID, second.BusinessID)
	assert.Equal(t, int64(2), s.countBusinesses(t))
}
