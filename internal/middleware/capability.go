package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/dsicola/academic-core-api/internal/models"
	appErrors "github.com/dsicola/academic-core-api/pkg/errors"
	"github.com/dsicola/academic-core-api/pkg/response"
)

// RequireCapability rejects requests whose resolved capability set does not
// contain every required capability.
func RequireCapability(required ...models.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		caps := Capabilities(c)
		if caps == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		for _, capability := range required {
			if !caps.Has(capability) {
				response.Error(c, appErrors.Clone(appErrors.ErrForbidden,
					"caller lacks the "+string(capability)+" capability"))
				c.Abort()
				return
			}
		}
		c.Next()
	}
}
