package service

import (
	"context"
	"testing"

	"github.com/lokal-app/lokal-backend/internal/app/model"
	"github.com/lokal-app/lokal-backend/internal/app/repository"
	"github.com/lokal-app/lokal-backend/internal/db"
	apperrors "github.com/lokal-app/lokal-backend/internal/errors"
	"github.com/lokal-app/lokal-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeGeocoder struct {
	result    *util.GeocodeResult
	err       error
	addresses []string
}

func (f *fakeGeocoder) Geocode(ctx context.Context, address string) (*util.GeocodeResult, error) {
	f.addresses = append(f.addresses, address)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type testServices struct {
	db         *gorm.DB
	businesses BusinessService
	onboarding OnboardingService
	importer   BulkImportService
	geocoder   *fakeGeocoder
}

func setupServiceTest(t *testing.T) *testServices {
	t.Helper()
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	geocoder := &fakeGeocoder{result: &util.GeocodeResult{
		Longitude:   0.1218,
		Latitude:    52.2053,
		DisplayName: "Market Square, Cambridge CB2 3QJ, United Kingdom",
	}}
	tm := repository.NewTransactionManager(testDB)

	return &testServices{
		db: testDB,
		businesses: NewBusinessService(
			repository.NewListingRepository(testDB),
			repository.NewCategoryRepository(testDB),
			repository.NewFeatureRepository(testDB),
		),
		onboarding: NewOnboardingService(tm),
		importer:   NewBulkImportService(tm, geocoder, 0, nil),
		geocoder:   geocoder,
	}
}

func (s *testServices) createCategory(t *testing.T, name string) *model.Category {
	t.Helper()
	category := &model.Category{Name: name}
	require.NoError(t, s.db.Create(category).Error)
	return category
}

func (s *testServices) createFeature(t *testing.T, name string) *model.Feature {
	t.Helper()
	feature := &model.Feature{Name: name}
	require.NoError(t, s.db.Create(feature).Error)
	return feature
}

// createListedBusiness runs the identity and location steps.
func (s *testServices) createListedBusiness(t *testing.T, name string) *model.Business {
	t.Helper()
	business, err := s.onboarding.CreateIdentity(context.Background(), CreateIdentityInput{Name: name})
	require.NoError(t, err)
	_, err = s.onboarding.AddLocation(context.Background(), business.ID, AddLocationInput{Latitude: 52.2, Longitude: 0.12})
	require.NoError(t, err)
	return business
}

func (s *testServices) countBusinesses(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, s.db.Model(&model.Business{}).Count(&count).Error)
	return count
}

func assertKind(t *testing.T, err error, kind apperrors.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, apperrors.KindOf(err), err.Error())
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func boolPtr(b bool) *bool { return &b }
