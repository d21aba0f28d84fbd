package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lokal-app/lokal-backend/internal/app/service"
	apperrors "github.com/lokal-app/lokal-backend/internal/errors"
	"github.com/lokal-app/lokal-backend/internal/middleware"
)

type BusinessController struct {
	businessService service.BusinessService
}

func NewBusinessController(businessService service.BusinessService) *BusinessController {
	return &BusinessController{businessService: businessService}
}

// GetBusinesses lists every business that has a public primary location.
// GET /businesses
func (ctrl *BusinessController) GetBusinesses(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	views, err := ctrl.businessService.GetBusinesses(c.Request.Context())
	if err != nil {
		log.Error("Failed to list businesses", err, nil)
		apperrors.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, views)
}

// GET /businesses/:id
func (ctrl *BusinessController) GetBusiness(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	view, err := ctrl.businessService.GetBusiness(c.Request.Context(), id)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindUnexpected {
			log.Error("Failed to fetch business", err, map[string]interface{}{
				"business_id": id,
			})
		}
		apperrors.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// GET /categories
func (ctrl *BusinessController) ListCategories(c *gin.Context) {
	categories, err := ctrl.businessService.ListCategories(c.Request.Context())
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to list categories", err, nil)
		apperrors.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, categories)
}

// GET /features
func (ctrl *BusinessController) ListFeatures(c *gin.Context) {
	features, err := ctrl.businessService.ListFeatures(c.Request.Context())
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to list features", err, nil)
		apperrors.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, features)
}
