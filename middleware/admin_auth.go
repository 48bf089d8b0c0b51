package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"carrental-backend/models"
	"carrental-backend/services"
	"carrental-backend/utils"
)

// Authenticator verifies admin credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (models.Admin, error)
}

// AdminAuth guards write routes with HTTP basic auth against the admins
// table. The authenticated admin is stored under "admin".
func AdminAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, password, ok := c.Request.BasicAuth()
		if !ok {
			c.Header("WWW-Authenticate", `Basic realm="carrental"`)
			utils.JSONError(c, http.StatusUnauthorized, "UNAUTHORIZED", "admin credentials required")
			c.Abort()
			return
		}

		admin, err := auth.Authenticate(c.Request.Context(), username, password)
		if err != nil {
			if !errors.Is(err, services.ErrInvalidCredentials) {
				log.Printf("❌ admin auth: %v", err)
				utils.JSONError(c, http.StatusServiceUnavailable, "AUTH_UNAVAILABLE", "cannot verify credentials right now")
				c.Abort()
				return
			}
			c.Header("WWW-Authenticate", `Basic realm="carrental"`)
			utils.JSONError(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid credentials")
			c.Abort()
			return
		}

		c.Set("admin", admin)
		c.Next()
	}
}
