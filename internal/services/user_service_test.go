package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/apperrors"
	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/models"
	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/rbac"
	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/repository"
	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/utils"
)

type userTestEnv struct {
	service *UserService
	users   *repository.MemoryUserStore
	store   *repository.MemoryStore
	super   *models.User
}

func newUserTestEnv(t *testing.T) *userTestEnv {
	t.Helper()
	users := repository.NewMemoryUserStore()
	store := repository.NewMemoryStore()
	evaluator := rbac.NewEvaluator(users)
	env := &userTestEnv{
		service: NewUserService(users, store, evaluator, nil),
		users:   users,
		store:   store,
	}

	super, err := users.CreateUser(context.Background(), &models.User{
		ID:     uuid.New(),
		Email:  "root@example.com",
		Role:   models.RoleSuperAdmin,
		Active: true,
	})
	if err != nil {
		t.Fatalf("seed super admin: %v", err)
	}
	env.super = super
	return env
}

func (e *userTestEnv) mustCreateUser(t *testing.T, email, role string) *models.User {
	t.Helper()
	user, err := e.service.CreateUser(context.Background(), e.super, &models.CreateUserRequest{
		Email:    email,
		Password: "s3cret-pass",
		FullName: "Test User",
		Role:     role,
	})
	if err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return user
}

func TestCreateUser(t *testing.T) {
	env := newUserTestEnv(t)
	ctx := context.Background()

	user := env.mustCreateUser(t, "Maria@Example.COM", "ADMIN")
	if user.Email != "maria@example.com" {
		t.Errorf("email = %q, want normalized lower case", user.Email)
	}
	if !utils.CheckPasswordHash("s3cret-pass", user.PasswordHash) {
		t.Error("stored hash does not verify against the submitted password")
	}
	if !user.Active {
		t.Error("new users start active")
	}

	// Duplicate email is rejected
	_, err := env.service.CreateUser(ctx, env.super, &models.CreateUserRequest{
		Email: "maria@example.com", Password: "whatever-else", FullName: "Dup", Role: "HOTEL",
	})
	if kindOf(err) != apperrors.KindValidation {
		t.Errorf("duplicate email: got %v, want validation_error", err)
	}

	// Only SUPER_ADMIN can mint another SUPER_ADMIN
	admin := env.mustCreateUser(t, "ops@example.com", "ADMIN")
	admin.Permissions = []string{"manage_users"}
	_, err = env.service.CreateUser(ctx, admin, &models.CreateUserRequest{
		Email: "boss@example.com", Password: "whatever-else", FullName: "Boss", Role: "SUPER_ADMIN",
	})
	if kindOf(err) != apperrors.KindAuthorization {
		t.Errorf("admin minting super admin: got %v, want authorization_error", err)
	}

	// ADMIN without manage_users cannot create users at all
	plain := env.mustCreateUser(t, "plain@example.com", "ADMIN")
	_, err = env.service.CreateUser(ctx, plain, &models.CreateUserRequest{
		Email: "x@example.com", Password: "whatever-else", FullName: "X", Role: "HOTEL",
	})
	if kindOf(err) != apperrors.KindAuthorization {
		t.Errorf("admin without manage_users: got %v, want authorization_error", err)
	}
}

func TestUpdateUserRoleRules(t *testing.T) {
	env := newUserTestEnv(t)
	ctx := context.Background()

	target := env.mustCreateUser(t, "staff@example.com", "HOTEL")
	admin := env.mustCreateUser(t, "ops@example.com", "ADMIN")
	admin.Permissions = []string{"manage_users", "view_users"}

	role := "ADMIN"
	updated, err := env.service.UpdateUser(ctx, admin, target.ID, &models.UpdateUserRequest{Role: &role})
	if err != nil {
		t.Fatalf("promote to admin: %v", err)
	}
	if updated.Role != models.RoleAdmin {
		t.Errorf("role = %s, want ADMIN", updated.Role)
	}

	// Promotion to SUPER_ADMIN is reserved
	role = "SUPER_ADMIN"
	if _, err := env.service.UpdateUser(ctx, admin, target.ID, &models.UpdateUserRequest{Role: &role}); kindOf(err) != apperrors.KindAuthorization {
		t.Errorf("promote to super admin: got %v, want authorization_error", err)
	}

	// Demoting a SUPER_ADMIN is equally reserved
	role = "ADMIN"
	if _, err := env.service.UpdateUser(ctx, admin, env.super.ID, &models.UpdateUserRequest{Role: &role}); kindOf(err) != apperrors.KindAuthorization {
		t.Errorf("demote super admin: got %v, want authorization_error", err)
	}
	if _, err := env.service.UpdateUser(ctx, env.super, env.super.ID, &models.UpdateUserRequest{Role: &role}); err != nil {
		t.Errorf("super admin demoting self: %v", err)
	}
}

func TestDeleteUserSelfProtection(t *testing.T) {
	env := newUserTestEnv(t)
	ctx := context.Background()

	target := env.mustCreateUser(t, "staff@example.com", "HOTEL")

	if err := env.service.DeleteUser(ctx, env.super, env.super.ID); kindOf(err) != apperrors.KindAuthorization {
		t.Errorf("self deletion: got %v, want authorization_error", err)
	}

	admin := env.mustCreateUser(t, "ops@example.com", "ADMIN")
	admin.Permissions = []string{"manage_users"}
	if err := env.service.DeleteUser(ctx, admin, target.ID); kindOf(err) != apperrors.KindAuthorization {
		t.Errorf("non super admin deletion: got %v, want authorization_error", err)
	}

	if err := env.service.DeleteUser(ctx, env.super, target.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := env.users.GetUserByID(ctx, target.ID); kindOf(err) != apperrors.KindNotFound {
		t.Errorf("deleted user still present, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	env := newUserTestEnv(t)
	ctx := context.Background()

	user := env.mustCreateUser(t, "staff@example.com", "HOTEL")
	other := env.mustCreateUser(t, "other@example.com", "HOTEL")

	if err := env.service.ChangePassword(ctx, user, user.ID, &models.ChangePasswordRequest{Password: "brand-new-pass"}); err != nil {
		t.Fatalf("own password: %v", err)
	}
	stored, _ := env.users.GetUserByID(ctx, user.ID)
	if !utils.CheckPasswordHash("brand-new-pass", stored.PasswordHash) {
		t.Error("new password does not verify")
	}

	if err := env.service.ChangePassword(ctx, user, other.ID, &models.ChangePasswordRequest{Password: "hijacked-pass"}); kindOf(err) != apperrors.KindAuthorization {
		t.Errorf("password of another user: got %v, want authorization_error", err)
	}

	if err := env.service.ChangePassword(ctx, env.super, other.ID, &models.ChangePasswordRequest{Password: "reset-by-root"}); err != nil {
		t.Errorf("super admin reset: %v", err)
	}
}

func TestSetPermissions(t *testing.T) {
	env := newUserTestEnv(t)
	ctx := context.Background()

	user := env.mustCreateUser(t, "staff@example.com", "HOTEL")

	updated, err := env.service.SetPermissions(ctx, env.super, user.ID, []string{"view_bots", "manage_bots"})
	if err != nil {
		t.Fatalf("set permissions: %v", err)
	}
	if len(updated.Permissions) != 2 {
		t.Errorf("permissions = %v, want the override pair", updated.Permissions)
	}

	if _, err := env.service.SetPermissions(ctx, env.super, user.ID, []string{"view_bots", "fly_drones"}); kindOf(err) != apperrors.KindValidation {
		t.Errorf("unknown token: got %v, want validation_error", err)
	}

	// An empty list clears the override
	cleared, err := env.service.SetPermissions(ctx, env.super, user.ID, []string{})
	if err != nil {
		t.Fatalf("clear permissions: %v", err)
	}
	if len(cleared.Permissions) != 0 {
		t.Errorf("permissions after clear = %v, want empty", cleared.Permissions)
	}
}

func TestHotelGrants(t *testing.T) {
	env := newUserTestEnv(t)
	ctx := context.Background()

	hotelRes, err := env.store.CreateResource(ctx, &models.Hotel{Code: "AAAAAAAAAAA", Name: "Hotel Central", Active: true})
	if err != nil {
		t.Fatalf("seed hotel: %v", err)
	}
	hotel := hotelRes.(*models.Hotel)

	user := env.mustCreateUser(t, "staff@example.com", "HOTEL")

	if err := env.service.AddHotelGrant(ctx, env.super, user.ID, hotel.Code); err != nil {
		t.Fatalf("grant by code: %v", err)
	}
	grants, err := env.service.ListHotelGrants(ctx, user, user.ID)
	if err != nil || len(grants) != 1 || grants[0] != hotel.ID {
		t.Errorf("grants = %v, %v", grants, err)
	}

	// Granting access to a missing hotel fails
	if err := env.service.AddHotelGrant(ctx, env.super, user.ID, "999"); kindOf(err) != apperrors.KindNotFound {
		t.Errorf("grant on missing hotel: got %v, want not_found", err)
	}

	if err := env.service.RemoveHotelGrant(ctx, env.super, user.ID, hotel.Code); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	grants, _ = env.service.ListHotelGrants(ctx, user, user.ID)
	if len(grants) != 0 {
		t.Errorf("grants after revoke = %v, want none", grants)
	}

	// Viewing another user's grants needs view_users
	other := env.mustCreateUser(t, "other@example.com", "HOTEL")
	if _, err := env.service.ListHotelGrants(ctx, other, user.ID); kindOf(err) != apperrors.KindAuthorization {
		t.Errorf("grants of another user: got %v, want authorization_error", err)
	}
}
