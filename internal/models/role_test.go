package models

import "testing"

func TestValidateRoleRanks(t *testing.T) {
	if err := validateRoleRanks(); err != nil {
		t.Fatalf("rank table invalid: %v", err)
	}
	for _, r := range AllRoles {
		if Rank(r) < 0 {
			t.Errorf("role %s has no rank", r)
		}
	}
	if Rank("waiter") != -1 {
		t.Errorf("unknown role should rank -1, got %d", Rank("waiter"))
	}
}

func TestRoleOrderIsStrict(t *testing.T) {
	for i := 0; i < len(AllRoles)-1; i++ {
		higher, lower := AllRoles[i], AllRoles[i+1]
		if Rank(higher) <= Rank(lower) {
			t.Errorf("expected rank(%s) > rank(%s)", higher, lower)
		}
	}
}

func TestCanManage(t *testing.T) {
	// canManage(a, b) sadece rank(a) > rank(b) iken true olmalı
	for _, actor := range AllRoles {
		for _, target := range AllRoles {
			got := CanManage(actor, target)
			want := Rank(actor) > Rank(target)
			if got != want {
				t.Errorf("CanManage(%s, %s) = %v, want %v", actor, target, got, want)
			}
		}
	}
}

func TestCanManageSameRankAlwaysFalse(t *testing.T) {
	for _, r := range AllRoles {
		if CanManage(r, r) {
			t.Errorf("CanManage(%s, %s) must be false", r, r)
		}
	}
}

func TestCanManageUnknownRole(t *testing.T) {
	if CanManage("ghost", RoleServer) {
		t.Error("unknown actor role must not manage anyone")
	}
	if CanManage(RoleSuperAdmin, "ghost") {
		t.Error("unknown target role must not be manageable")
	}
}

func TestWouldEscalate(t *testing.T) {
	for _, creator := range AllRoles {
		for _, requested := range AllRoles {
			got := WouldEscalate(creator, requested)
			want := Rank(requested) >= Rank(creator)
			if got != want {
				t.Errorf("WouldEscalate(%s, %s) = %v, want %v", creator, requested, got, want)
			}
		}
	}
}

func TestWouldEscalateAdminScenarios(t *testing.T) {
	// Admin, admin açamaz; manager açabilir
	if !WouldEscalate(RoleAdmin, RoleAdmin) {
		t.Error("admin creating admin must be blocked")
	}
	if WouldEscalate(RoleAdmin, RoleManager) {
		t.Error("admin creating manager must be allowed")
	}
	if !WouldEscalate(RoleAdmin, RoleSuperAdmin) {
		t.Error("admin creating super_admin must be blocked")
	}
}

func TestWouldEscalateUnknownRole(t *testing.T) {
	// Bilinmeyen rol güvenli tarafta kalır: her zaman reddedilir
	if !WouldEscalate(RoleSuperAdmin, "ghost") {
		t.Error("unknown requested role must be treated as escalation")
	}
	if !WouldEscalate("ghost", RoleServer) {
		t.Error("unknown creator role must be treated as escalation")
	}
}
