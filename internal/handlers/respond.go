package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/apperrors"
	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/logger"
	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/middleware"
	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/models"
)

// respondError maps a service error to its HTTP status. The body always
// carries the machine-readable kind plus the human message; storage causes
// are logged, never returned to the caller.
func respondError(c *gin.Context, err error) {
	appErr := apperrors.AsError(err)
	if appErr.Kind == apperrors.KindStorage {
		logger.Get().Error("storage error",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
	}
	c.JSON(appErr.HTTPStatus(), gin.H{"error": appErr})
}

// mustPrincipal aborts with 401 when AuthMiddleware did not run
func mustPrincipal(c *gin.Context) (*models.User, bool) {
	principal, ok := middleware.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
	}
	return principal, ok
}
