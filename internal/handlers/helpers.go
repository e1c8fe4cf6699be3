package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "hearth/internal/errors"
	"hearth/internal/logger"
	"hearth/internal/middleware"
	"hearth/internal/uuid"
)

// getUserID extracts the authenticated user ID from the Gin context.
// Returns ErrUnauthenticated if not present.
func getUserID(c *gin.Context) (string, error) {
	userID := c.GetString(middleware.ContextUserID)
	if userID == "" {
		return "", apperrors.ErrUnauthenticated
	}
	return userID, nil
}

// getHouseholdID extracts the resolved household ID from the Gin context.
// Returns ErrMissingTenant if the tenancy middleware did not run.
func getHouseholdID(c *gin.Context) (string, error) {
	householdID := c.GetString(middleware.ContextHouseholdID)
	if householdID == "" {
		return "", apperrors.ErrMissingTenant
	}
	return householdID, nil
}

// parsePathID validates a UUID path parameter.
// Returns ErrInvalidInput if the parameter is not a valid UUID.
//
//nolint:unparam // param is intentionally generic for reuse across handlers with different path params
func parsePathID(c *gin.Context, param string) (string, error) {
	id := c.Param(param)
	if !uuid.IsValid(id) {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param)
	}
	return id, nil
}

// parseAmount parses a decimal amount string from a request payload.
func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, apperrors.WithMessage(apperrors.ErrInvalidAmount, "Invalid amount: "+raw)
	}
	return amount, nil
}

// parseDate parses an optional RFC 3339 date string, returning the zero time
// when absent so services can default it.
func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	date, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid date: expected RFC 3339")
	}
	return date, nil
}

// respondWithError writes a consistent JSON error response. If the error is an
// *AppError it uses the error's status code, code, and message. Otherwise it
// logs the unexpected error and returns a generic internal server error.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		c.JSON(appErr.StatusCode, gin.H{
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
		return
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	c.JSON(apperrors.ErrInternalServer.StatusCode, gin.H{
		"error": gin.H{
			"code":    apperrors.ErrInternalServer.Code,
			"message": apperrors.ErrInternalServer.Message,
		},
	})
}
