package access

import "testing"

var allRoles = []Role{RoleOwner, RoleAdmin, RoleMember, RoleViewer}

func TestCanManageOwnerTarget(t *testing.T) {
	// only an owner may act on an owner
	for _, r := range allRoles {
		got := CanManage(r, RoleOwner)
		want := r == RoleOwner
		if got != want {
			t.Errorf("CanManage(%s, owner) = %v, want %v", r, got, want)
		}
	}
}

func TestCanManage(t *testing.T) {
	tests := []struct {
		requester Role
		target    Role
		want      bool
	}{
		{RoleOwner, RoleAdmin, true},
		{RoleOwner, RoleMember, true},
		{RoleOwner, RoleViewer, true},
		{RoleAdmin, RoleAdmin, false},
		{RoleAdmin, RoleMember, true},
		{RoleAdmin, RoleViewer, true},
		{RoleMember, RoleViewer, false},
		{RoleMember, RoleMember, false},
		{RoleViewer, RoleViewer, false},
	}
	for _, tt := range tests {
		if got := CanManage(tt.requester, tt.target); got != tt.want {
			t.Errorf("CanManage(%s, %s) = %v, want %v", tt.requester, tt.target, got, tt.want)
		}
	}
}

func TestCanInvite(t *testing.T) {
	tests := []struct {
		requester Role
		assign    Role
		want      bool
	}{
		{RoleOwner, RoleAdmin, true},
		{RoleOwner, RoleMember, true},
		{RoleOwner, RoleViewer, true},
		{RoleAdmin, RoleAdmin, false},
		{RoleAdmin, RoleMember, true},
		{RoleAdmin, RoleViewer, true},
		{RoleMember, RoleViewer, false},
		{RoleViewer, RoleViewer, false},
	}
	for _, tt := range tests {
		if got := CanInvite(tt.requester, tt.assign); got != tt.want {
			t.Errorf("CanInvite(%s, %s) = %v, want %v", tt.requester, tt.assign, got, tt.want)
		}
	}
}

func TestCanInviteUnknownRole(t *testing.T) {
	if CanInvite(RoleOwner, Role("superuser")) {
		t.Error("CanInvite(owner, superuser) = true, want false")
	}
}

func TestRoleValid(t *testing.T) {
	for _, r := range allRoles {
		if !r.Valid() {
			t.Errorf("Role(%s).Valid() = false, want true", r)
		}
	}
	if Role("root").Valid() {
		t.Error(`Role("root").Valid() = true, want false`)
	}
}

func TestRoleAtLeast(t *testing.T) {
	if !RoleOwner.AtLeast(RoleAdmin) {
		t.Error("owner should outrank admin")
	}
	if RoleViewer.AtLeast(RoleMember) {
		t.Error("viewer should not outrank member")
	}
	if !RoleAdmin.AtLeast(RoleAdmin) {
		t.Error("a role should be at least itself")
	}
}
