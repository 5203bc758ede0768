package rbac

import "github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/models"

// Token is a single permission token. The enumeration below is closed: every
// permission check in the system goes through one of these constants, never
// through ad hoc string comparison.
type Token string

const (
	ViewHotels       Token = "view_hotels"
	ManageHotels     Token = "manage_hotels"
	DeleteHotels     Token = "delete_hotels"
	ViewWorkspaces   Token = "view_workspaces"
	ManageWorkspaces Token = "manage_workspaces"
	DeleteWorkspaces Token = "delete_workspaces"
	ViewBots         Token = "view_bots"
	ManageBots       Token = "manage_bots"
	DeleteBots       Token = "delete_bots"
	ViewFolders      Token = "view_folders"
	ManageFolders    Token = "manage_folders"
	DeleteFolders    Token = "delete_folders"
	ViewUsers        Token = "view_users"
	ManageUsers      Token = "manage_users"
)

// Universe returns every defined token, in declaration order.
func Universe() []Token {
	return []Token{
		ViewHotels, ManageHotels, DeleteHotels,
		ViewWorkspaces, ManageWorkspaces, DeleteWorkspaces,
		ViewBots, ManageBots, DeleteBots,
		ViewFolders, ManageFolders, DeleteFolders,
		ViewUsers, ManageUsers,
	}
}

// ParseToken validates a stored or submitted permission string. Unknown
// strings are dropped by the caller rather than silently honored.
func ParseToken(s string) (Token, bool) {
	for _, t := range Universe() {
		if Token(s) == t {
			return t, true
		}
	}
	return "", false
}

// ViewToken returns the read permission guarding a resource kind.
func ViewToken(kind models.Kind) Token {
	switch kind {
	case models.KindHotel:
		return ViewHotels
	case models.KindWorkspace:
		return ViewWorkspaces
	case models.KindBot:
		return ViewBots
	default:
		return ViewFolders
	}
}

// ManageToken returns the write permission guarding a resource kind.
func ManageToken(kind models.Kind) Token {
	switch kind {
	case models.KindHotel:
		return ManageHotels
	case models.KindWorkspace:
		return ManageWorkspaces
	case models.KindBot:
		return ManageBots
	default:
		return ManageFolders
	}
}

// DeleteToken returns the delete permission guarding a resource kind.
func DeleteToken(kind models.Kind) Token {
	switch kind {
	case models.KindHotel:
		return DeleteHotels
	case models.KindWorkspace:
		return DeleteWorkspaces
	case models.KindBot:
		return DeleteBots
	default:
		return DeleteFolders
	}
}

// PermissionSet is the set of tokens a principal currently holds.
type PermissionSet map[Token]struct{}

func NewPermissionSet(tokens ...Token) PermissionSet {
	set := make(PermissionSet, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

func (s PermissionSet) Has(t Token) bool {
	_, ok := s[t]
	return ok
}

// Slice returns the held tokens as strings in universe order, for API
// responses.
func (s PermissionSet) Slice() []string {
	out := make([]string, 0, len(s))
	for _, t := range Universe() {
		if s.Has(t) {
			out = append(out, string(t))
		}
	}
	return out
}

// roleDefaults is the permission set a user holds by role alone, absent any
// explicit override. SUPER_ADMIN is intentionally missing: it holds the full
// universe regardless of anything stored.
var roleDefaults = map[models.UserRole][]Token{
	models.RoleAdmin: {
		ViewHotels, ManageHotels, DeleteHotels,
		ViewWorkspaces, ManageWorkspaces, DeleteWorkspaces,
		ViewBots, ManageBots, DeleteBots,
		ViewFolders, ManageFolders, DeleteFolders,
		ViewUsers,
	},
	models.RoleHotel: {
		ViewHotels, ViewWorkspaces, ViewBots, ViewFolders,
		ManageBots, ManageFolders,
	},
}

// RoleDefaults returns the role default permission set for a role.
func RoleDefaults(role models.UserRole) PermissionSet {
	if role == models.RoleSuperAdmin {
		return NewPermissionSet(Universe()...)
	}
	return NewPermissionSet(roleDefaults[role]...)
}
