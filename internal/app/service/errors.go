package service

import (
	apperrors "github.com/lokal-app/lokal-backend/internal/errors"
)

var (
	ErrBusinessNotFound        = apperrors.NotFound(apperrors.BusinessNotFound, "business not found")
	ErrCategoryNotFound        = apperrors.NotFound(apperrors.CategoryNotFound, "category not found")
	ErrFeatureNotFound         = apperrors.NotFound(apperrors.FeatureNotFound, "feature not found")
	ErrPrimaryLocationNotFound = apperrors.NotFound(apperrors.PrimaryLocationNotFound, "business has no primary location")
	ErrPrimaryLocationExists   = apperrors.Conflict(apperrors.PrimaryLocationExists, "business already has a primary location")
	ErrInvalidDayOfWeek        = apperrors.Validation(apperrors.OpeningHoursInvalidDay, "day_of_week must be between 0 and 6")
	ErrInvalidTime             = apperrors.Validation(apperrors.OpeningHoursInvalidTime, "invalid opening time")
	ErrInvalidCoordinates      = apperrors.Validation(apperrors.ValidationInvalidRange, "latitude must be within [-90, 90] and longitude within [-180, 180]")
	ErrGeocodingFailed         = apperrors.Validation(apperrors.GeocodingFailed, "could not geocode address")
	ErrLogoURLRequired         = apperrors.Validation(apperrors.ValidationRequired, "logo url is required")
	ErrBusinessNameRequired    = apperrors.Validation(apperrors.ValidationRequired, "business name is required")
)
