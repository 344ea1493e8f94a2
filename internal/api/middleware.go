package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cpd-labs/certificados-service/internal/models"
)

const (
	// RoleAdmin y RoleOperador son los roles reconocidos por el panel
	RoleAdmin    = "admin"
	RoleOperador = "operador"
)

// AuthMiddleware valida el token JWT del header Authorization y exige uno de
// los roles indicados; sin roles, cualquier usuario autenticado pasa
func (api *API) AuthMiddleware(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.JSON(http.StatusUnauthorized, models.NewUnauthorizedError("Authorization header required"))
			c.Abort()
			return
		}

		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			c.JSON(http.StatusUnauthorized, models.NewUnauthorizedError("Authorization header must be a Bearer token"))
			c.Abort()
			return
		}

		claims, err := api.tokens.Parse(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, models.NewUnauthorizedError("Invalid or expired token"))
			c.Abort()
			return
		}

		if len(roles) > 0 && !roleAllowed(claims.Role, roles) {
			c.JSON(http.StatusForbidden, models.NewForbiddenError("Insufficient permissions"))
			c.Abort()
			return
		}

		c.Set("user_email", claims.Email)
		c.Set("user_role", claims.Role)
		c.Next()
	}
}

func roleAllowed(role string, allowed []string) bool {
	for _, r := range allowed {
		if role == r {
			return true
		}
	}
	return false
}

// RateLimitMiddleware limita las peticiones por IP con una ventana fija en
// Redis; sin Redis disponible el limitador se desactiva
func (api *API) RateLimitMiddleware(limit int64, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if api.redis == nil {
			c.Next()
			return
		}

		key := fmt.Sprintf("ratelimit:%s:%s", c.ClientIP(), c.FullPath())
		count, err := api.redis.IncrWithWindow(c.Request.Context(), key, window)
		if err != nil {
			// Redis caído no debe tumbar la API
			api.logger.WithError(err).Warn("Rate limiter unavailable, allowing request")
			c.Next()
			return
		}

		if count > limit {
			c.JSON(http.StatusTooManyRequests, models.NewRateLimitedError("Too many requests, try again later"))
			c.Abort()
			return
		}

		c.Next()
	}
}
