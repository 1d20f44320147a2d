package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/edutec/disponibilidad-api/internal/service"
	appErrors "github.com/edutec/disponibilidad-api/pkg/errors"
	"github.com/edutec/disponibilidad-api/pkg/response"
)

// ContextAdminKey is the gin context key storing verified admin claims.
const ContextAdminKey = "currentAdmin"

// Admin protects roster endpoints by requiring a token minted by the
// admin verification flow.
func Admin(adminService *service.AdminService) gin.HandlerFunc {
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

		claims, err := adminService.ValidateToken(parts[1])
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextAdminKey, claims)
		c.Next()
	}
}
