package repository

import (
	"testing"

	"github.com/lokal-app/lokal-backend/internal/app/model"
	"github.com/lokal-app/lokal-backend/internal/db"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupRepositoryTest(t *testing.T) *gorm.DB {
	t.Helper()
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })
	return testDB
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func createTestCategory(t *testing.T, testDB *gorm.DB, name string, icon *string, parentID *uint) *model.Category {
	t.Helper()
	category := &model.Category{Name: name, Icon: icon, ParentID: parentID}
	require.NoError(t, testDB.Create(category).Error)
	return category
}

func createTestBusiness(t *testing.T, testDB *gorm.DB, name string, categoryID *uint) *model.Business {
	t.Helper()
	business := &model.Business{Name: name, CategoryID: categoryID}
	require.NoError(t, NewBusinessRepository(testDB).Create(t.Context(), business))
	return business
}

func createTestLocation(t *testing.T, testDB *gorm.DB, businessID uint, public bool, lon, lat float64) *model.Location {
	t.Helper()
	location := &model.Location{
		BusinessID:    businessID,
		Point:         model.NewGeoPoint(lon, lat),
		LocationIndex: model.PrimaryLocationIndex,
		IsPublic:      public,
	}
	require.NoError(t, NewLocationRepository(testDB).Create(t.Context(), location))
	return location
}
