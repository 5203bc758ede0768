package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/apperrors"
	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/cache"
	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/logger"
	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/metrics"
	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/models"
	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/rbac"
	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/repository"
	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/utils"
)

// UserService manages principals, their permission overrides and hotel
// grants. The evaluator's self-protection rules gate password changes and
// deletion; everything else requires manage_users.
type UserService struct {
	users     repository.UserStore
	store     repository.Store
	evaluator *rbac.Evaluator
	cache     *cache.Client // optional, nil disables caching
}

func NewUserService(users repository.UserStore, store repository.Store, evaluator *rbac.Evaluator, cacheClient *cache.Client) *UserService {
	return &UserService{
		users:     users,
		store:     store,
		evaluator: evaluator,
		cache:     cacheClient,
	}
}

func (s *UserService) deny(token rbac.Token) error {
	metrics.RecordAuthorizationDenied(string(token))
	return apperrors.Forbidden()
}

func (s *UserService) invalidate(ctx context.Context, userID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateUser(ctx, userID.String()); err != nil {
		logger.Get().Warn("failed to invalidate user cache", zap.String("user_id", userID.String()), zap.Error(err))
	}
}

func (s *UserService) CreateUser(ctx context.Context, principal *models.User, req *models.CreateUserRequest) (*models.User, error) {
	if !s.evaluator.Authorize(principal, rbac.ManageUsers) {
		return nil, s.deny(rbac.ManageUsers)
	}

	role, err := models.ParseUserRole(req.Role)
	if err != nil {
		return nil, err
	}
	if role == models.RoleSuperAdmin && principal.Role != models.RoleSuperAdmin {
		return nil, apperrors.Forbidden()
	}

	email := utils.NormalizeEmail(req.Email)
	if existing, _ := s.users.GetUserByEmail(ctx, email); existing != nil {
		return nil, apperrors.Validation("email", "email already in use")
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.Storage("failed to hash password", err)
	}

	return s.users.CreateUser(ctx, &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		FullName:     req.FullName,
		Role:         role,
		Active:       true,
	})
}

func (s *UserService) ListUsers(ctx context.Context, principal *models.User) ([]models.User, error) {
	if !s.evaluator.Authorize(principal, rbac.ViewUsers) {
		return nil, s.deny(rbac.ViewUsers)
	}
	return s.users.ListUsers(ctx)
}

func (s *UserService) GetUser(ctx context.Context, principal *models.User, id uuid.UUID) (*models.User, error) {
	if principal.ID != id && !s.evaluator.Authorize(principal, rbac.ViewUsers) {
		return nil, s.deny(rbac.ViewUsers)
	}
	return s.users.GetUserByID(ctx, id)
}

func (s *UserService) UpdateUser(ctx context.Context, principal *models.User, id uuid.UUID, req *models.UpdateUserRequest) (*models.User, error) {
	if !s.evaluator.Authorize(principal, rbac.ManageUsers) {
		return nil, s.deny(rbac.ManageUsers)
	}

	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		user.Email = utils.NormalizeEmail(*req.Email)
	}
	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Role != nil {
		role, err := models.ParseUserRole(*req.Role)
		if err != nil {
			return nil, err
		}
		// Promoting to or demoting from SUPER_ADMIN is reserved to SUPER_ADMIN
		if (role == models.RoleSuperAdmin || user.Role == models.RoleSuperAdmin) && principal.Role != models.RoleSuperAdmin {
			return nil, apperrors.Forbidden()
		}
		user.Role = role
	}
	if req.Active != nil {
		user.Active = *req.Active
	}

	updated, err := s.users.UpdateUser(ctx, user)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)
	return updated, nil
}

// DeleteUser enforces the self-protection rules: no self-deletion, and only
// SUPER_ADMIN may delete another principal.
func (s *UserService) DeleteUser(ctx context.Context, principal *models.User, id uuid.UUID) error {
	target, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return err
	}

	if !s.evaluator.CanDeleteUser(principal, target) {
		return apperrors.Forbidden()
	}

	if err := s.users.DeleteUser(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx, id)
	return nil
}

// ChangePassword lets a principal change their own password; changing
// another principal's requires SUPER_ADMIN.
func (s *UserService) ChangePassword(ctx context.Context, principal *models.User, id uuid.UUID, req *models.ChangePasswordRequest) error {
	target, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return err
	}

	if !s.evaluator.CanChangePassword(principal, target) {
		return apperrors.Forbidden()
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return apperrors.Storage("failed to hash password", err)
	}

	target.PasswordHash = hash
	if _, err := s.users.UpdateUser(ctx, target); err != nil {
		return err
	}

	s.invalidate(ctx, id)
	return nil
}

// SetPermissions replaces a user's explicit permission override list. An
// empty list clears the override, falling back to role defaults.
func (s *UserService) SetPermissions(ctx context.Context, principal *models.User, id uuid.UUID, permissions []string) (*models.User, error) {
	if !s.evaluator.Authorize(principal, rbac.ManageUsers) {
		return nil, s.deny(rbac.ManageUsers)
	}

	for _, p := range permissions {
		if _, ok := rbac.ParseToken(p); !ok {
			return nil, apperrors.Validation("permissions", "unknown permission token: "+p)
		}
	}

	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Permissions = permissions
	updated, err := s.users.UpdateUser(ctx, user)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)
	return updated, nil
}

// AddHotelGrant links a user to a hotel. The hotel must exist; the grant is
// what scopes role permissions to that tenant.
func (s *UserService) AddHotelGrant(ctx context.Context, principal *models.User, id uuid.UUID, hotelRef string) error {
	if !s.evaluator.Authorize(principal, rbac.ManageUsers) {
		return s.deny(rbac.ManageUsers)
	}

	if _, err := s.users.GetUserByID(ctx, id); err != nil {
		return err
	}

	hotel, err := s.store.GetResource(ctx, models.KindHotel, hotelRef)
	if err != nil {
		return err
	}

	if err := s.users.AddHotelGrant(ctx, id, hotel.GetID()); err != nil {
		return err
	}

	s.invalidate(ctx, id)
	return nil
}

func (s *UserService) RemoveHotelGrant(ctx context.Context, principal *models.User, id uuid.UUID, hotelRef string) error {
	if !s.evaluator.Authorize(principal, rbac.ManageUsers) {
		return s.deny(rbac.ManageUsers)
	}

	hotel, err := s.store.GetResource(ctx, models.KindHotel, hotelRef)
	if err != nil {
		return err
	}

	if err := s.users.RemoveHotelGrant(ctx, id, hotel.GetID()); err != nil {
		return err
	}

	s.invalidate(ctx, id)
	return nil
}

func (s *UserService) ListHotelGrants(ctx context.Context, principal *models.User, id uuid.UUID) ([]int64, error) {
	if principal.ID != id && !s.evaluator.Authorize(principal, rbac.ViewUsers) {
		return nil, s.deny(rbac.ViewUsers)
	}
	return s.users.ListHotelGrants(ctx, id)
}
