package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lokal-app/lokal-backend/internal/app/service"
	apperrors "github.com/lokal-app/lokal-backend/internal/errors"
	"github.com/lokal-app/lokal-backend/internal/middleware"
)

type OnboardingController struct {
	onboardingService service.OnboardingService
	bulkImportService service.BulkImportService
}

func NewOnboardingController(onboardingService service.OnboardingService, bulkImportService service.BulkImportService) *OnboardingController {
	return &OnboardingController{
		onboardingService: onboardingService,
		bulkImportService: bulkImportService,
	}
}

type CreateIdentityRequest struct {
	Name        string  `json:"name" binding:"required"`
	CategoryID  *uint   `json:"category_id"`
	Description *string `json:"description"`
}

type AddLocationRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" binding:"required,gte=-180,lte=180"`
	Name      *string  `json:"name"`
	IsPublic  *bool    `json:"is_public"`
}

type OpeningHoursEntryRequest struct {
	DayOfWeek *int    `json:"day_of_week" binding:"required,weekday"`
	OpenTime  *string `json:"open_time" binding:"omitempty,hhmm"`
	CloseTime *string `json:"close_time" binding:"omitempty,hhmm"`
	IsClosed  bool    `json:"is_closed"`
}

type SetOpeningHoursRequest struct {
	Hours []OpeningHoursEntryRequest `json:"hours" binding:"dive"`
}

type SocialLinksRequest struct {
	Website      *string `json:"website"`
	FacebookURL  *string `json:"facebook_url"`
	InstagramURL *string `json:"instagram_url"`
	XURL         *string `json:"x_url"`
	TikTokURL    *string `json:"tiktok_url"`
}

type UpsertLogoRequest struct {
	URL string `json:"url" binding:"required"`
}

type FeatureProposalRequest struct {
	FeatureID uint     `json:"feature_id" binding:"required"`
	Score     *float64 `json:"score"`
}

type AddFeatureProposalsRequest struct {
	Features []FeatureProposalRequest `json:"features" binding:"required,dive"`
}

// POST /businesses/identity
func (ctrl *OnboardingController) CreateIdentity(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CreateIdentityRequest
	if !bindJSON(c, &req) {
		return
	}

	business, err := ctrl.onboardingService.CreateIdentity(c.Request.Context(), service.CreateIdentityInput{
		Name:        req.Name,
		CategoryID:  req.CategoryID,
		Description: req.Description,
	})
	if err != nil {
		respondStepError(c, "create identity", err, nil)
		return
	}

	log.Info("Business identity created", map[string]interface{}{
		"business_id": business.ID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Business created successfully",
		"business_id": business.ID,
		"business":    business,
	})
}

// POST /businesses/:id/location
func (ctrl *OnboardingController) AddLocation(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req AddLocationRequest
	if !bindJSON(c, &req) {
		return
	}

	location, err := ctrl.onboardingService.AddLocation(c.Request.Context(), id, service.AddLocationInput{
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
		Name:      req.Name,
		IsPublic:  req.IsPublic,
	})
	if err != nil {
		respondStepError(c, "add location", err, map[string]interface{}{"business_id": id})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Location added successfully",
		"location_id": location.ID,
		"location": gin.H{
			"id":             location.ID,
			"business_id":    location.BusinessID,
			"latitude":       location.Point.Latitude(),
			"longitude":      location.Point.Longitude(),
			"location_index": location.LocationIndex,
			"is_public":      location.IsPublic,
			"name":           location.Name,
		},
	})
}

// POST /businesses/:id/opening-hours
func (ctrl *OnboardingController) SetOpeningHours(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req SetOpeningHoursRequest
	if !bindJSON(c, &req) {
		return
	}

	entries := make([]service.OpeningHoursInput, 0, len(req.Hours))
	for _, h := range req.Hours {
		entries = append(entries, service.OpeningHoursInput{
			DayOfWeek: *h.DayOfWeek,
			OpenTime:  h.OpenTime,
			CloseTime: h.CloseTime,
			IsClosed:  h.IsClosed,
		})
	}

	hours, err := ctrl.onboardingService.SetOpeningHours(c.Request.Context(), id, entries)
	if err != nil {
		respondStepError(c, "set opening hours", err, map[string]interface{}{"business_id": id})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Opening hours saved",
		"opening_hours": hours,
		"count":         len(hours),
	})
}

// POST /businesses/:id/social-links
func (ctrl *OnboardingController) UpsertSocialLinks(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req SocialLinksRequest
	if !bindJSON(c, &req) {
		return
	}

	links, err := ctrl.onboardingService.UpsertSocialLinks(c.Request.Context(), id, service.SocialLinksInput{
		Website:      req.Website,
		FacebookURL:  req.FacebookURL,
		InstagramURL: req.InstagramURL,
		XURL:         req.XURL,
		TikTokURL:    req.TikTokURL,
	})
	if err != nil {
		respondStepError(c, "upsert social links", err, map[string]interface{}{"business_id": id})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Social links saved",
		"social_links": links,
	})
}

// POST /businesses/:id/logo
func (ctrl *OnboardingController) UpsertLogo(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpsertLogoRequest
	if !bindJSON(c, &req) {
		return
	}

	logo, err := ctrl.onboardingService.UpsertLogo(c.Request.Context(), id, req.URL)
	if err != nil {
		respondStepError(c, "upsert logo", err, map[string]interface{}{"business_id": id})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logo saved",
		"logo":    logo,
	})
}

// POST /businesses/:id/features
func (ctrl *OnboardingController) AddFeatureProposals(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req AddFeatureProposalsRequest
	if !bindJSON(c, &req) {
		return
	}

	inputs := make([]service.FeatureProposalInput, 0, len(req.Features))
	for _, f := range req.Features {
		inputs = append(inputs, service.FeatureProposalInput{FeatureID: f.FeatureID, Score: f.Score})
	}

	proposals, err := ctrl.onboardingService.AddFeatureProposals(c.Request.Context(), id, inputs)
	if err != nil {
		respondStepError(c, "add feature proposals", err, map[string]interface{}{"business_id": id})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":           "Feature proposals submitted",
		"feature_proposals": proposals,
		"count":             len(proposals),
	})
}

// BulkImport creates a complete business from one onboarding sheet row.
// ?strict=true rejects rows with unparsable hours or unknown features.
// POST /businesses/bulk-import
func (ctrl *OnboardingController) BulkImport(c *gin.Context) {
	var row service.BulkImportRow
	if !bindJSON(c, &row) {
		return
	}
	if raw, ok := c.GetQuery("strict"); ok {
		strict, err := strconv.ParseBool(raw)
		if err != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "strict must be a boolean")
			return
		}
		row.Strict = strict
	}

	result, err := ctrl.bulkImportService.Import(c.Request.Context(), row)
	if err != nil {
		respondStepError(c, "bulk import", err, map[string]interface{}{"name": row.Name})
		return
	}

	c.JSON(http.StatusOK, result)
}

// respondStepError logs expected failures at warn and the rest at error, then
// writes the mapped response.
func respondStepError(c *gin.Context, step string, err error, fields map[string]interface{}) {
	log := middleware.GetLoggerFromContext(c)
	if fields == nil {
		fields = map[string]interface{}{}
	}
	fields["step"] = step

	if apperrors.KindOf(err) == apperrors.KindUnexpected {
		log.Error("Onboarding step failed", err, fields)
	} else {
		fields["error"] = err.Error()
		log.Warn("Onboarding step rejected", fields)
	}
	apperrors.RespondWithAppError(c, err)
}
