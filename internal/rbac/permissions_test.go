package rbac

import (
	"testing"

	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/models"
)

func TestParseToken(t *testing.T) {
	for _, tok := range Universe() {
		parsed, ok := ParseToken(string(tok))
		if !ok || parsed != tok {
			t.Errorf("ParseToken(%q) = %q, %v", tok, parsed, ok)
		}
	}

	for _, bad := range []string{"", "view_hotel", "MANAGE_BOTS", "admin", "view_flows"} {
		if _, ok := ParseToken(bad); ok {
			t.Errorf("ParseToken(%q) accepted an unknown token", bad)
		}
	}
}

func TestKindTokens(t *testing.T) {
	cases := []struct {
		kind   models.Kind
		view   Token
		manage Token
		del    Token
	}{
		{models.KindHotel, ViewHotels, ManageHotels, DeleteHotels},
		{models.KindWorkspace, ViewWorkspaces, ManageWorkspaces, DeleteWorkspaces},
		{models.KindBot, ViewBots, ManageBots, DeleteBots},
		{models.KindFolder, ViewFolders, ManageFolders, DeleteFolders},
	}
	for _, tc := range cases {
		if got := ViewToken(tc.kind); got != tc.view {
			t.Errorf("ViewToken(%s) = %s, want %s", tc.kind, got, tc.view)
		}
		if got := ManageToken(tc.kind); got != tc.manage {
			t.Errorf("ManageToken(%s) = %s, want %s", tc.kind, got, tc.manage)
		}
		if got := DeleteToken(tc.kind); got != tc.del {
			t.Errorf("DeleteToken(%s) = %s, want %s", tc.kind, got, tc.del)
		}
	}
}

func TestPermissionSetSliceIsOrdered(t *testing.T) {
	set := NewPermissionSet(ManageUsers, ViewHotels, DeleteBots)
	got := set.Slice()
	want := []string{"view_hotels", "delete_bots", "manage_users"}
	if len(got) != len(want) {
		t.Fatalf("Slice() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Slice()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRoleDefaults(t *testing.T) {
	super := RoleDefaults(models.RoleSuperAdmin)
	if len(super) != len(Universe()) {
		t.Errorf("SUPER_ADMIN defaults hold %d tokens, want the full universe of %d", len(super), len(Universe()))
	}

	admin := RoleDefaults(models.RoleAdmin)
	if admin.Has(ManageUsers) {
		t.Error("ADMIN defaults must not include manage_users")
	}
	if !admin.Has(DeleteHotels) || !admin.Has(ViewUsers) {
		t.Error("ADMIN defaults missing expected tokens")
	}

	hotel := RoleDefaults(models.RoleHotel)
	for _, tok := range []Token{ViewHotels, ViewWorkspaces, ViewBots, ViewFolders, ManageBots, ManageFolders} {
		if !hotel.Has(tok) {
			t.Errorf("HOTEL defaults missing %s", tok)
		}
	}
	for _, tok := range []Token{ManageHotels, DeleteHotels, DeleteFolders, ViewUsers, ManageUsers} {
		if hotel.Has(tok) {
			t.Errorf("HOTEL defaults must not include %s", tok)
		}
	}
}
