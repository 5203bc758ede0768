package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/config"
	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/logger"
	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/models"
	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/rbac"
	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/repository"
	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/utils"
)

type AuthHandler struct {
	cfg       *config.Config
	users     repository.UserStore
	evaluator *rbac.Evaluator
}

func NewAuthHandler(cfg *config.Config, users repository.UserStore, evaluator *rbac.Evaluator) *AuthHandler {
	return &AuthHandler{cfg: cfg, users: users, evaluator: evaluator}
}

// Login authenticates by email and password and issues a JWT. Failures are
// reported with a uniform message so the endpoint does not leak which
// accounts exist.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.GetUserByEmail(c.Request.Context(), utils.NormalizeEmail(req.Email))
	if err != nil || !user.Active || !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := utils.GenerateJWT(user.ID, h.cfg)
	if err != nil {
		logger.Get().Error("failed to generate token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	var resp models.LoginResponse
	resp.Token = token
	resp.User.ID = user.ID
	resp.User.Email = user.Email
	resp.User.FullName = user.FullName
	resp.User.Role = user.Role
	resp.Permissions = h.evaluator.EffectivePermissions(user).Slice()

	c.JSON(http.StatusOK, resp)
}
