package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/dsicola/academic-core-api/internal/models"
	appErrors "github.com/dsicola/academic-core-api/pkg/errors"
	"github.com/dsicola/academic-core-api/pkg/response"
)

// ContextUserKey is the gin context key storing JWT claims.
const ContextUserKey = "currentUser"

// ContextCapabilitiesKey is the gin context key storing the capability set
// resolved from the caller's role, once per request.
const ContextCapabilitiesKey = "capabilities"

// JWT protects routes by requiring a valid access token issued by the
// external identity service.
func JWT(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		claims := &models.JWTClaims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, appErrors.Clone(appErrors.ErrUnauthorized, "unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired token"))
			c.Abort()
			return
		}
		if claims.TenantID == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "token carries no tenant"))
			c.Abort()
			return
		}

		c.Set(ContextUserKey, claims)
		c.Set(ContextCapabilitiesKey, models.CapabilitiesForRole(claims.Role))
		c.Next()
	}
}

// CurrentUser extracts the verified claims from the gin context.
func CurrentUser(c *gin.Context) (*models.JWTClaims, bool) {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*models.JWTClaims)
	return claims, ok
}

// Capabilities extracts the per-request capability set.
func Capabilities(c *gin.Context) models.CapabilitySet {
	value, exists := c.Get(ContextCapabilitiesKey)
	if !exists {
		return nil
	}
	caps, _ := value.(models.CapabilitySet)
	return caps
}
