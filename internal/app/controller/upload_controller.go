package controller

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/lokal-app/lokal-backend/internal/errors"
	"github.com/lokal-app/lokal-backend/internal/middleware"
	"github.com/lokal-app/lokal-backend/internal/storage"
)

// LogoPresigner issues upload URLs for business logos. *storage.S3Storage
// implements it.
type LogoPresigner interface {
	PresignLogoUpload(ctx context.Context, businessID uint, filename, contentType string) (*storage.PresignedUpload, error)
}

type UploadController struct {
	presigner LogoPresigner
}

func NewUploadController(presigner LogoPresigner) *UploadController {
	return &UploadController{presigner: presigner}
}

type PresignLogoRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
}

// PresignLogoUpload returns a presigned PUT URL. After uploading, the client
// submits file_url to POST /businesses/:id/logo.
// POST /businesses/:id/logo/presigned-url
func (ctrl *UploadController) PresignLogoUpload(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req PresignLogoRequest
	if !bindJSON(c, &req) {
		return
	}

	upload, err := ctrl.presigner.PresignLogoUpload(c.Request.Context(), id, req.Filename, req.ContentType)
	if err != nil {
		if errors.Is(err, storage.ErrContentTypeNotAllowed) {
			log.Warn("Invalid content type", map[string]interface{}{
				"content_type": req.ContentType,
			})
			apperrors.BadRequest(c, apperrors.UploadInvalidFileType, "Only image files are allowed (JPEG, PNG, GIF, WEBP, SVG)")
			return
		}
		log.Error("Failed to generate presigned URL", err, map[string]interface{}{
			"business_id": id,
			"filename":    req.Filename,
		})
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.UploadFailed, "Failed to generate upload URL")
		return
	}

	log.Info("Presigned logo URL generated", map[string]interface{}{
		"business_id": id,
		"key":         upload.Key,
	})

	c.JSON(http.StatusOK, upload)
}
