package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lokal-app/lokal-backend/config"
	"github.com/lokal-app/lokal-backend/internal/app/controller"
	"github.com/lokal-app/lokal-backend/internal/app/model"
	"github.com/lokal-app/lokal-backend/internal/app/repository"
	"github.com/lokal-app/lokal-backend/internal/app/service"
	"github.com/lokal-app/lokal-backend/internal/db"
	"github.com/lokal-app/lokal-backend/internal/observability"
	"github.com/lokal-app/lokal-backend/internal/router"
	"github.com/lokal-app/lokal-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type TestServer struct {
	Router   *gin.Engine
	DB       *gorm.DB
	Geocoder *httptest.Server
}

// setupIntegrationTest wires the real router, services and geocoder client
// against an in-memory database and a stub Mapbox server.
func setupIntegrationTest(t *testing.T) *TestServer {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	require.NoError(t, db.Seed(testDB))

	mapbox := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(r.URL.Path, "Nowhere") {
			_, _ = w.Write([]byte(`{"features":[]}`))
			return
		}
		_, _ = w.Write([]byte(`{"features":[{"center":[0.1218,52.2053],"place_name":"Market Square, Cambridge CB2 3QJ, United Kingdom"}]}`))
	}))

	cfg := &config.Config{
		Server: config.ServerConfig{GinMode: gin.TestMode},
		CORS:   config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		Geocoder: config.GeocoderConfig{
			BaseURL:     mapbox.URL,
			AccessToken: "test-token",
			Country:     "gb",
			Timeout:     2 * time.Second,
		},
	}

	registry := observability.NewMetricsRegistry()
	tm := repository.NewTransactionManager(testDB)

	businessService := service.NewBusinessService(
		repository.NewListingRepository(testDB),
		repository.NewCategoryRepository(testDB),
		repository.NewFeatureRepository(testDB),
	)
	onboardingService := service.NewOnboardingService(tm)
	bulkImportService := service.NewBulkImportService(tm, util.NewGeocoder(cfg.Geocoder), cfg.Geocoder.Timeout,
		observability.NewImportMetrics(registry, "test"))

	r := router.NewRouter(
		controller.NewBusinessController(businessService),
		controller.NewOnboardingController(onboardingService, bulkImportService),
		nil,
		observability.NewHTTPMetrics(registry, "test"),
		cfg,
	)

	return &TestServer{
		Router:   r.Setup(),
		DB:       testDB,
		Geocoder: mapbox,
	}
}

func (ts *TestServer) request(t *testing.T, method, path string, payload interface{}) (int, []byte) {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)
	return w.Code, w.Body.Bytes()
}

func (ts *TestServer) cleanup() {
	ts.Geocoder.Close()
	db.CleanupTestDB(ts.DB)
}

func TestCompleteOnboardingJourney(t *testing.T) {
	ts := setupIntegrationTest(t)
	defer ts.cleanup()

	var cafe model.Category
	require.NoError(t, ts.DB.Where("name = ?", "Cafe").First(&cafe).Error)
	var wifi model.Feature
	require.NoError(t, ts.DB.Where("name = ?", "Free Wi-Fi").First(&wifi).Error)

	// 1. Identity
	t.Log("Step 1: Create identity")
	status, body := ts.request(t, http.MethodPost, "/businesses/identity", gin.H{
		"name":        "Fitzbillies",
		"category_id": cafe.ID,
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	var created struct {
		BusinessID uint `json:"business_id"`
	}
	require.NoError(t, json.Unmarshal(body, &created))
	base := fmt.Sprintf("/businesses/%d", created.BusinessID)

	// Not listed until it has a public primary location
	status, body = ts.request(t, http.MethodGet, "/businesses", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(body))

	// 2. Location
	t.Log("Step 2: Add location")
	status, body = ts.request(t, http.MethodPost, base+"/location", gin.H{"latitude": 52.2009, "longitude": 0.1185})
	require.Equal(t, http.StatusCreated, status, string(body))

	// 3. Hours, links, features
	t.Log("Step 3: Hours, social links and features")
	status, body = ts.request(t, http.MethodPost, base+"/opening-hours", gin.H{"hours": []gin.H{
		{"day_of_week": 1, "open_time": "08:00", "close_time": "18:00"},
		{"day_of_week": 6, "open_time": "09:00", "close_time": "17:30"},
		{"day_of_week": 0, "is_closed": true},
	}})
	require.Equal(t, http.StatusOK, status, string(body))

	status, body = ts.request(t, http.MethodPost, base+"/social-links", gin.H{"x_url": "https://x.com/fitzbillies"})
	require.Equal(t, http.StatusOK, status, string(body))

	status, body = ts.request(t, http.MethodPost, base+"/features", gin.H{"features": []gin.H{{"feature_id": wifi.ID, "score": 4}}})
	require.Equal(t, http.StatusCreated, status, string(body))
	require.NoError(t, ts.DB.Model(&model.FeatureProposal{}).Where("business_id = ?", created.BusinessID).
		Update("status", model.ProposalApproved).Error)

	// 4. Listing
	t.Log("Step 4: Read listing")
	status, body = ts.request(t, http.MethodGet, "/businesses", nil)
	require.Equal(t, http.StatusOK, status)

	var views []service.BusinessView
	require.NoError(t, json.Unmarshal(body, &views))
	require.Len(t, views, 1)
	view := views[0]
	assert.Equal(t, "Fitzbillies", view.Name)
	require.NotNil(t, view.CategoryIcon)
	assert.Equal(t, "coffee", *view.CategoryIcon)
	assert.InDelta(t, 52.2009, view.Latitude, 1e-9)
	require.Len(t, view.OpeningHours, 2)
	assert.Equal(t, "Monday", view.OpeningHours[0].Day)
	assert.Equal(t, "Saturday", view.OpeningHours[1].Day)
	require.Len(t, view.Features, 1)
	assert.Equal(t, float64(4), view.Features[0].Value)
	require.NotNil(t, view.SocialLinks)
	assert.Equal(t, "https://x.com/fitzbillies", *view.SocialLinks.X)
}

func TestBulkImportJourney(t *testing.T) {
	ts := setupIntegrationTest(t)
	defer ts.cleanup()

	status, body := ts.request(t, http.MethodPost, "/businesses/bulk-import", gin.H{
		"name":          "The Eagle",
		"category":      "Bar",
		"address":       "8 Benet St, Cambridge",
		"instagram_url": "https://instagram.com/eaglecambridge",
		"oh_friday":     "11:00 - 23:00",
		"oh_sunday":     "Closed",
		"features":      []string{"Outdoor seating", "Dog friendly", "Outdoor seating"},
	})
	require.Equal(t, http.StatusOK, status, string(body))

	var result service.BulkImportResult
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Equal(t, 2, result.HoursCount)
	assert.Equal(t, 2, result.FeaturesCount)
	require.NotNil(t, result.LocationName)
	assert.Equal(t, "Market Square, Cambridge CB2 3QJ, United Kingdom", *result.LocationName)

	status, body = ts.request(t, http.MethodGet, fmt.Sprintf("/businesses/%d", result.BusinessID), nil)
	require.Equal(t, http.StatusOK, status, string(body))
	var view service.BusinessView
	require.NoError(t, json.Unmarshal(body, &view))
	assert.InDelta(t, 52.2053, view.Latitude, 1e-9)
	assert.InDelta(t, 0.1218, view.Longitude, 1e-9)
	require.Len(t, view.OpeningHours, 1)
	assert.Equal(t, "Friday", view.OpeningHours[0].Day)
	assert.Equal(t, "11:00:00", view.OpeningHours[0].Start)
	// proposals from an import stay pending
	assert.Empty(t, view.Features)

	// An address the geocoder cannot resolve leaves nothing behind
	status, _ = ts.request(t, http.MethodPost, "/businesses/bulk-import", gin.H{
		"name":     "Lost Cafe",
		"category": "Cafe",
		"address":  "Nowhere",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	var count int64
	require.NoError(t, ts.DB.Model(&model.Business{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	status, body = ts.request(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "directory_bulk_import_rows_total")
}
