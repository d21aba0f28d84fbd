package controller

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	apperrors "github.com/lokal-app/lokal-backend/internal/errors"
	"github.com/lokal-app/lokal-backend/internal/middleware"
	"github.com/lokal-app/lokal-backend/pkg/util"
)

var registerOnce sync.Once

// RegisterValidators adds the directory's binding tags to gin's validator:
// "weekday" (0 = Sunday .. 6) and "hhmm" (HH:MM or HH:MM:SS).
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
			day := fl.Field().Int()
			return day >= 0 && day <= 6
		})
		_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
			_, err := util.NormalizeTime(fl.Field().String())
			return err == nil
		})
	})
}

// bindJSON binds the body into req and writes a 400 on failure.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		log := middleware.GetLoggerFromContext(c)
		log.Warn("Invalid request body", map[string]interface{}{
			"error": err.Error(),
		})

		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fieldName(fe)] = describeValidation(fe)
			}
			apperrors.RespondWithValidationError(c, fields)
			return false
		}
		apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "Invalid JSON body")
		return false
	}
	return true
}

// fieldName turns "SetOpeningHoursRequest.Hours[1].DayOfWeek" into
// "Hours[1].DayOfWeek".
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describeValidation(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "weekday":
		return "must be between 0 (Sunday) and 6 (Saturday)"
	case "hhmm":
		return "must be a time in HH:MM or HH:MM:SS format"
	case "min", "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max", "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "url":
		return "must be a valid URL"
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}

// parseIDParam reads a positive integer path parameter and writes a 400 when
// it is malformed.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		middleware.GetLoggerFromContext(c).Warn("Invalid ID parameter", map[string]interface{}{
			"param": name,
			"value": raw,
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, fmt.Sprintf("invalid %s: %q", name, raw))
		return 0, false
	}
	return uint(id), true
}
