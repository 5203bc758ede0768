package rbac

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/models"
)

type fakeGrantChecker struct {
	grants map[uuid.UUID]map[int64]bool
	err    error
}

func (f *fakeGrantChecker) HasHotelGrant(_ context.Context, userID uuid.UUID, hotelID int64) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.grants[userID][hotelID], nil
}

func newUser(role models.UserRole, permissions ...string) *models.User {
	return &models.User{
		ID:          uuid.New(),
		Email:       "user@example.com",
		Role:        role,
		Permissions: permissions,
		Active:      true,
	}
}

func TestEffectivePermissions(t *testing.T) {
	eval := NewEvaluator(&fakeGrantChecker{})

	super := newUser(models.RoleSuperAdmin)
	if got := eval.EffectivePermissions(super); len(got) != len(Universe()) {
		t.Errorf("SUPER_ADMIN holds %d tokens, want %d", len(got), len(Universe()))
	}

	// An explicit override replaces role defaults entirely
	admin := newUser(models.RoleAdmin, "view_bots", "manage_bots")
	set := eval.EffectivePermissions(admin)
	if !set.Has(ViewBots) || !set.Has(ManageBots) {
		t.Error("override tokens missing from effective set")
	}
	if set.Has(ViewHotels) || set.Has(DeleteBots) {
		t.Error("role defaults leaked past an explicit override")
	}

	// SUPER_ADMIN ignores stored overrides
	superOverride := newUser(models.RoleSuperAdmin, "view_bots")
	if got := eval.EffectivePermissions(superOverride); len(got) != len(Universe()) {
		t.Error("SUPER_ADMIN override must not narrow the universe")
	}

	// Unknown stored strings are dropped, not honored
	weird := newUser(models.RoleHotel, "view_bots", "launch_missiles")
	set = eval.EffectivePermissions(weird)
	if len(set) != 1 || !set.Has(ViewBots) {
		t.Errorf("unknown token handling wrong, got %v", set.Slice())
	}

	// No override falls back to role defaults
	hotel := newUser(models.RoleHotel)
	set = eval.EffectivePermissions(hotel)
	if !set.Has(ManageBots) || set.Has(DeleteBots) {
		t.Error("HOTEL role defaults not applied")
	}
}

func TestAuthorizeVariants(t *testing.T) {
	eval := NewEvaluator(&fakeGrantChecker{})
	hotel := newUser(models.RoleHotel)

	if !eval.Authorize(hotel, ViewBots) {
		t.Error("Authorize denied a default token")
	}
	if eval.Authorize(hotel, ManageUsers) {
		t.Error("Authorize granted a token outside the role defaults")
	}
	if !eval.AuthorizeAny(hotel, ManageUsers, ViewBots) {
		t.Error("AuthorizeAny should pass when one token is held")
	}
	if eval.AuthorizeAll(hotel, ViewBots, ManageUsers) {
		t.Error("AuthorizeAll should fail when one token is missing")
	}
	if !eval.AuthorizeAll(hotel, ViewBots, ManageBots) {
		t.Error("AuthorizeAll should pass when all tokens are held")
	}
}

func TestAuthorizeOnResource(t *testing.T) {
	ctx := context.Background()
	admin := newUser(models.RoleAdmin)
	super := newUser(models.RoleSuperAdmin)

	checker := &fakeGrantChecker{grants: map[uuid.UUID]map[int64]bool{
		admin.ID: {1: true},
	}}
	eval := NewEvaluator(checker)

	granted := &models.Bot{ID: 10, WorkspaceID: 5, HotelID: 1}
	foreign := &models.Bot{ID: 11, WorkspaceID: 6, HotelID: 2}

	ok, err := eval.AuthorizeOnResource(ctx, admin, ManageBots, granted)
	if err != nil || !ok {
		t.Errorf("expected access on granted hotel, got ok=%v err=%v", ok, err)
	}

	// Role permission alone never crosses the hotel boundary
	ok, err = eval.AuthorizeOnResource(ctx, admin, ManageBots, foreign)
	if err != nil || ok {
		t.Errorf("expected denial on ungranted hotel, got ok=%v err=%v", ok, err)
	}

	// Missing token denies before grants are even consulted
	ok, err = eval.AuthorizeOnResource(ctx, admin, ManageUsers, granted)
	if err != nil || ok {
		t.Errorf("expected denial on missing token, got ok=%v err=%v", ok, err)
	}

	// SUPER_ADMIN skips the grant requirement
	ok, err = eval.AuthorizeOnResource(ctx, super, ManageBots, foreign)
	if err != nil || !ok {
		t.Errorf("SUPER_ADMIN should bypass grants, got ok=%v err=%v", ok, err)
	}

	broken := NewEvaluator(&fakeGrantChecker{err: errors.New("connection reset")})
	if _, err := broken.AuthorizeOnResource(ctx, admin, ManageBots, granted); err == nil {
		t.Error("grant checker failure must surface as an error")
	}
}

func TestSelfProtectionRules(t *testing.T) {
	eval := NewEvaluator(&fakeGrantChecker{})
	super := newUser(models.RoleSuperAdmin)
	admin := newUser(models.RoleAdmin)
	other := newUser(models.RoleHotel)

	if !eval.CanChangePassword(admin, admin) {
		t.Error("a user may always change their own password")
	}
	if eval.CanChangePassword(admin, other) {
		t.Error("only SUPER_ADMIN may change another user's password")
	}
	if !eval.CanChangePassword(super, other) {
		t.Error("SUPER_ADMIN may change any password")
	}

	if eval.CanDeleteUser(super, super) {
		t.Error("no principal may delete themself")
	}
	if eval.CanDeleteUser(admin, other) {
		t.Error("only SUPER_ADMIN may delete users")
	}
	if !eval.CanDeleteUser(super, other) {
		t.Error("SUPER_ADMIN may delete another user")
	}
}
