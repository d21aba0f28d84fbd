package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lokal-app/lokal-backend/internal/app/model"
	"github.com/lokal-app/lokal-backend/internal/app/repository"
	"github.com/lokal-app/lokal-backend/internal/app/service"
	"github.com/lokal-app/lokal-backend/internal/db"
	"github.com/lokal-app/lokal-backend/internal/middleware"
	"github.com/lokal-app/lokal-backend/internal/storage"
	"github.com/lokal-app/lokal-backend/pkg/util"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeGeocoder struct {
	result *util.GeocodeResult
	err    error
}

func (f *fakeGeocoder) Geocode(ctx context.Context, address string) (*util.GeocodeResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakePresigner struct {
	upload *storage.PresignedUpload
	err    error
}

func (f *fakePresigner) PresignLogoUpload(ctx context.Context, businessID uint, filename, contentType string) (*storage.PresignedUpload, error) {
	if f.err != nil {
		return nil, f.err
	}
	if err := storage.ValidateImageContentType(contentType); err != nil {
		return nil, err
	}
	return f.upload, nil
}

type controllerTest struct {
	router    *gin.Engine
	db        *gorm.DB
	geocoder  *fakeGeocoder
	presigner *fakePresigner
}

func setupControllerTest(t *testing.T) *controllerTest {
	t.Helper()
	gin.SetMode(gin.TestMode)
	RegisterValidators()

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
	presigner := &fakePresigner{}
	tm := repository.NewTransactionManager(testDB)

	businessCtrl := NewBusinessController(service.NewBusinessService(
		repository.NewListingRepository(testDB),
		repository.NewCategoryRepository(testDB),
		repository.NewFeatureRepository(testDB),
	))
	onboardingCtrl := NewOnboardingController(
		service.NewOnboardingService(tm),
		service.NewBulkImportService(tm, geocoder, 0, nil),
	)
	uploadCtrl := NewUploadController(presigner)

	router := gin.New()
	router.Use(middleware.LoggingMiddleware())
	router.GET("/categories", businessCtrl.ListCategories)
	router.GET("/features", businessCtrl.ListFeatures)
	router.GET("/businesses", businessCtrl.GetBusinesses)
	router.GET("/businesses/:id", businessCtrl.GetBusiness)
	router.POST("/businesses/identity", onboardingCtrl.CreateIdentity)
	router.POST("/businesses/bulk-import", onboardingCtrl.BulkImport)
	router.POST("/businesses/:id/location", onboardingCtrl.AddLocation)
	router.POST("/businesses/:id/opening-hours", onboardingCtrl.SetOpeningHours)
	router.POST("/businesses/:id/social-links", onboardingCtrl.UpsertSocialLinks)
	router.POST("/businesses/:id/logo", onboardingCtrl.UpsertLogo)
	router.POST("/businesses/:id/features", onboardingCtrl.AddFeatureProposals)
	router.POST("/businesses/:id/logo/presigned-url", uploadCtrl.PresignLogoUpload)

	return &controllerTest{router: router, db: testDB, geocoder: geocoder, presigner: presigner}
}

func (ct *controllerTest) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ct.router.ServeHTTP(w, req)
	return w
}

func (ct *controllerTest) createCategory(t *testing.T, name string) *model.Category {
	t.Helper()
	category := &model.Category{Name: name}
	require.NoError(t, ct.db.Create(category).Error)
	return category
}

func (ct *controllerTest) createFeature(t *testing.T, name string) *model.Feature {
	t.Helper()
	feature := &model.Feature{Name: name}
	require.NoError(t, ct.db.Create(feature).Error)
	return feature
}

func decodeMap(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}
