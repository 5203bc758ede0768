package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/cache"
	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/config"
	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/logger"
	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/models"
	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/repository"
	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/utils"
)

const principalKey = "principal"
const principalCacheTTL = 5 * time.Minute

// AuthMiddleware validates the JWT, resolves the principal row and injects
// it into the request context. The core never reads ambient session state:
// handlers pass the principal explicitly into every service call.
func AuthMiddleware(cfg *config.Config, users repository.UserStore, cacheClient *cache.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>" format
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			c.Abort()
			return
		}

		claims, err := utils.ValidateJWT(parts[1], cfg)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		ctx := c.Request.Context()

		// Try the principal cache first; fall back to the store on any miss
		// or cache error.
		var principal *models.User
		if cacheClient != nil {
			if cached, err := cacheClient.GetUser(ctx, claims.UserID.String()); err == nil {
				principal = cached
			}
		}

		if principal == nil {
			principal, err = users.GetUserByID(ctx, claims.UserID)
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
				c.Abort()
				return
			}
			if cacheClient != nil {
				if err := cacheClient.SetUser(ctx, principal, principalCacheTTL); err != nil {
					logger.Get().Warn("failed to cache principal", zap.Error(err))
				}
			}
		}

		if !principal.Active {
			c.JSON(http.StatusForbidden, gin.H{"error": "user is inactive"})
			c.Abort()
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// Principal returns the authenticated user injected by AuthMiddleware
func Principal(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(principalKey)
	if !exists {
		return nil, false
	}
	principal, ok := value.(*models.User)
	return principal, ok
}
