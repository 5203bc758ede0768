package rbac

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/models"
)

// GrantChecker answers whether a user holds a hotel-scope grant. Backed by
// the user repository in production and by fakes in tests.
type GrantChecker interface {
	HasHotelGrant(ctx context.Context, userID uuid.UUID, hotelID int64) (bool, error)
}

// Evaluator resolves effective permission sets and authorizes operations
// against a target resource's ownership chain.
type Evaluator struct {
	grants GrantChecker
}

func NewEvaluator(grants GrantChecker) *Evaluator {
	return &Evaluator{grants: grants}
}

// EffectivePermissions returns the tokens a user currently holds:
// SUPER_ADMIN gets the full universe regardless of stored grants, everyone
// else gets their explicit override list when non-empty, otherwise the role
// default set. Unknown stored strings are dropped.
func (e *Evaluator) EffectivePermissions(user *models.User) PermissionSet {
	if user.Role == models.RoleSuperAdmin {
		return NewPermissionSet(Universe()...)
	}

	if len(user.Permissions) > 0 {
		set := make(PermissionSet, len(user.Permissions))
		for _, s := range user.Permissions {
			if t, ok := ParseToken(s); ok {
				set[t] = struct{}{}
			}
		}
		return set
	}

	return RoleDefaults(user.Role)
}

// Authorize reports whether a user holds a single permission token
func (e *Evaluator) Authorize(user *models.User, token Token) bool {
	return e.EffectivePermissions(user).Has(token)
}

// AuthorizeAny reports whether a user holds at least one of the tokens
func (e *Evaluator) AuthorizeAny(user *models.User, tokens ...Token) bool {
	set := e.EffectivePermissions(user)
	for _, t := range tokens {
		if set.Has(t) {
			return true
		}
	}
	return false
}

// AuthorizeAll reports whether a user holds every one of the tokens
func (e *Evaluator) AuthorizeAll(user *models.User, tokens ...Token) bool {
	set := e.EffectivePermissions(user)
	for _, t := range tokens {
		if !set.Has(t) {
			return false
		}
	}
	return true
}

// AuthorizeOnResource checks the token and, for non-SUPER_ADMIN users, also
// requires a hotel grant linking the user to the resource's owning hotel.
// Role permission alone never grants cross-tenant access.
func (e *Evaluator) AuthorizeOnResource(ctx context.Context, user *models.User, token Token, resource models.Resource) (bool, error) {
	if !e.Authorize(user, token) {
		return false, nil
	}

	if user.Role == models.RoleSuperAdmin {
		return true, nil
	}

	granted, err := e.grants.HasHotelGrant(ctx, user.ID, resource.OwningHotelID())
	if err != nil {
		return false, fmt.Errorf("failed to check hotel grant: %w", err)
	}
	return granted, nil
}

// CanChangePassword implements the self-protection rule: a principal may
// always change their own password, only SUPER_ADMIN may change another's.
func (e *Evaluator) CanChangePassword(actor, target *models.User) bool {
	if actor.ID == target.ID {
		return true
	}
	return actor.Role == models.RoleSuperAdmin
}

// CanDeleteUser implements the self-protection rule: a principal may never
// delete themself; SUPER_ADMIN may delete any other principal.
func (e *Evaluator) CanDeleteUser(actor, target *models.User) bool {
	if actor.ID == target.ID {
		return false
	}
	return actor.Role == models.RoleSuperAdmin
}
