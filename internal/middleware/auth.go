package middleware

import (
	"github.com/gin-gonic/gin"

	"hearth/internal/auth"
	apperrors "hearth/internal/errors"
	"hearth/internal/services"
)

// Context keys set by the middleware chain.
const (
	ContextUserID      = "userID"
	ContextHouseholdID = "householdID"
	ContextRole        = "membershipRole"
)

// TenantHeader carries the target household ID on household-scoped calls.
const TenantHeader = "X-Household-ID"

// Authenticate returns a Gin middleware that resolves the calling user from
// the given credential resolvers, tried in order. Session cookies take
// precedence over bearer tokens; if no resolver succeeds the request is
// rejected with 401.
func Authenticate(resolvers ...auth.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, r := range resolvers {
			if userID, ok := r.Resolve(c); ok {
				c.Set(ContextUserID, userID)
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(apperrors.ErrUnauthenticated.StatusCode, gin.H{
			"error": gin.H{
				"code":    apperrors.ErrUnauthenticated.Code,
				"message": apperrors.ErrUnauthenticated.Message,
			},
		})
	}
}

// RequireHousehold returns a Gin middleware that resolves the target
// household from the tenant header and verifies the authenticated user is a
// member. Failure modes are distinct: a missing header is 400, an unknown
// household is 404, and a household the user does not belong to is 403.
func RequireHousehold(households services.HouseholdServicer) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(ContextUserID)
		if userID == "" {
			abortWithAppError(c, apperrors.ErrUnauthenticated)
			return
		}

		householdID := c.GetHeader(TenantHeader)
		if householdID == "" {
			abortWithAppError(c, apperrors.ErrMissingTenant)
			return
		}

		membership, err := households.RequireMembership(userID, householdID)
		if err != nil {
			respondAbort(c, err)
			return
		}

		c.Set(ContextHouseholdID, householdID)
		c.Set(ContextRole, string(membership.Role))
		c.Next()
	}
}

func abortWithAppError(c *gin.Context, appErr *apperrors.AppError) {
	c.AbortWithStatusJSON(appErr.StatusCode, gin.H{
		"error": gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
		},
	})
}

func respondAbort(c *gin.Context, err error) {
	if appErr, ok := err.(*apperrors.AppError); ok {
		abortWithAppError(c, appErr)
		return
	}
	abortWithAppError(c, apperrors.ErrInternalServer)
}
