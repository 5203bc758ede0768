package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/config"
	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/middleware"
	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/models"
	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/rbac"
	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/repository"
	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/services"
	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/utils"
)

type apiFixture struct {
	router *gin.Engine
	cfg    *config.Config
	users  *repository.MemoryUserStore
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		JWT: config.JWTConfig{Secret: "test-secret", ExpirationHours: 1},
	}
	users := repository.NewMemoryUserStore()
	store := repository.NewMemoryStore()
	evaluator := rbac.NewEvaluator(users)

	resourceService := services.NewResourceService(store, users, evaluator, nil)
	userService := services.NewUserService(users, store, evaluator, nil)

	authHandler := NewAuthHandler(cfg, users, evaluator)
	resourceHandler := NewResourceHandler(resourceService)
	userHandler := NewUserHandler(userService)

	router := gin.New()
	router.POST("/api/v1/auth/login", authHandler.Login)

	protected := router.Group("/api/v1")
	protected.Use(middleware.AuthMiddleware(cfg, users, nil))
	{
		protected.GET("/resources/:kind", resourceHandler.List)
		protected.POST("/resources/:kind", resourceHandler.Create)
		protected.GET("/resources/:kind/:id", resourceHandler.GetByID)
		protected.PUT("/resources/:kind/:id", resourceHandler.Update)
		protected.DELETE("/resources/:kind/:id", resourceHandler.Delete)
		protected.PATCH("/resources/:kind/:id/activate", resourceHandler.Activate)
		protected.PATCH("/resources/folder/:id/move", resourceHandler.Move)
		protected.PATCH("/resources/folder/reorder", resourceHandler.Reorder)
		protected.POST("/users", userHandler.Create)
	}

	return &apiFixture{router: router, cfg: cfg, users: users}
}

func (f *apiFixture) seedUser(t *testing.T, email string, role models.UserRole, password string) *models.User {
	t.Helper()
	hash, err := utils.HashPassword(password)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	user, err := f.users.CreateUser(context.Background(), &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		FullName:     "Test User",
		Role:         role,
		Active:       true,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *apiFixture) login(t *testing.T, email, password string) string {
	t.Helper()
	w := f.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": email, "password": password})
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", w.Code, w.Body.String())
	}
	var resp models.LoginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	return resp.Token
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newAPIFixture(t)
	f.seedUser(t, "root@example.com", models.RoleSuperAdmin, "root-password")

	w := f.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "root@example.com", "password": "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong password status = %d, want 401", w.Code)
	}

	w = f.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "ghost@example.com", "password": "whatever"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unknown user status = %d, want 401", w.Code)
	}
}

func TestResourceEndpoints(t *testing.T) {
	f := newAPIFixture(t)
	f.seedUser(t, "root@example.com", models.RoleSuperAdmin, "root-password")
	token := f.login(t, "root@example.com", "root-password")

	// Requests without a token never reach the handlers
	if w := f.do(t, http.MethodGet, "/api/v1/resources/hotel", "", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("missing token status = %d, want 401", w.Code)
	}

	// Unknown kinds are a client error
	if w := f.do(t, http.MethodGet, "/api/v1/resources/flower", token, nil); w.Code != http.StatusBadRequest {
		t.Errorf("unknown kind status = %d, want 400", w.Code)
	}

	w := f.do(t, http.MethodPost, "/api/v1/resources/hotel", token, gin.H{"name": "Hotel Central"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create hotel status = %d, body %s", w.Code, w.Body.String())
	}
	var hotel models.Hotel
	if err := json.Unmarshal(w.Body.Bytes(), &hotel); err != nil {
		t.Fatalf("decode hotel: %v", err)
	}
	if len(hotel.Code) != 11 {
		t.Errorf("hotel code = %q, want 11 characters", hotel.Code)
	}

	// Fetch by external code
	w = f.do(t, http.MethodGet, "/api/v1/resources/hotel/"+hotel.Code, token, nil)
	if w.Code != http.StatusOK {
		t.Errorf("get by code status = %d", w.Code)
	}

	w = f.do(t, http.MethodGet, "/api/v1/resources/hotel/ZZZZZZZZZZZ", token, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing hotel status = %d, want 404", w.Code)
	}

	// Soft delete then activate
	w = f.do(t, http.MethodDelete, "/api/v1/resources/hotel/"+hotel.Code, token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("soft delete status = %d", w.Code)
	}
	w = f.do(t, http.MethodPatch, "/api/v1/resources/hotel/"+hotel.Code+"/activate", token, nil)
	if w.Code != http.StatusOK {
		t.Errorf("activate status = %d", w.Code)
	}

	// Body validation failures are 400
	w = f.do(t, http.MethodPost, "/api/v1/resources/hotel", token, gin.H{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing name status = %d, want 400", w.Code)
	}
}

func TestAuthorizationStatuses(t *testing.T) {
	f := newAPIFixture(t)
	f.seedUser(t, "root@example.com", models.RoleSuperAdmin, "root-password")
	f.seedUser(t, "staff@example.com", models.RoleHotel, "staff-password")

	rootToken := f.login(t, "root@example.com", "root-password")
	staffToken := f.login(t, "staff@example.com", "staff-password")

	w := f.do(t, http.MethodPost, "/api/v1/resources/hotel", rootToken, gin.H{"name": "Hotel Central"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create hotel status = %d", w.Code)
	}
	var hotel models.Hotel
	if err := json.Unmarshal(w.Body.Bytes(), &hotel); err != nil {
		t.Fatalf("decode hotel: %v", err)
	}

	// delete_hotels is outside the HOTEL role defaults
	w = f.do(t, http.MethodDelete, "/api/v1/resources/hotel/"+hotel.Code, staffToken, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("staff delete status = %d, want 403", w.Code)
	}

	// manage_users is too
	w = f.do(t, http.MethodPost, "/api/v1/users", staffToken, gin.H{
		"email": "new@example.com", "password": "some-password", "full_name": "New", "role": "HOTEL",
	})
	if w.Code != http.StatusForbidden {
		t.Errorf("staff create user status = %d, want 403", w.Code)
	}
}

func TestInactiveUserIsRejected(t *testing.T) {
	f := newAPIFixture(t)
	user := f.seedUser(t, "staff@example.com", models.RoleHotel, "staff-password")
	token := f.login(t, "staff@example.com", "staff-password")

	user.Active = false
	if _, err := f.users.UpdateUser(context.Background(), user); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	w := f.do(t, http.MethodGet, "/api/v1/resources/hotel", token, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("inactive user status = %d, want 403", w.Code)
	}
}
