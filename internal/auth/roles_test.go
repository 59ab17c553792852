package auth

import (
	"errors"
	"testing"
)

func TestVerifyCapabilityTable(t *testing.T) {
	if err := verifyCapabilityTable(); err != nil {
		t.Fatalf("capability table: %v", err)
	}
	// Every capability any role has must also belong to super_admin.
	admin := AvailableActions(RoleSuperAdmin)
	for role, caps := range roleCapabilities {
		for _, c := range caps {
			if _, ok := admin[c]; !ok {
				t.Fatalf("super_admin missing capability %q granted to %s", c, role)
			}
		}
	}
}

func TestParseRole(t *testing.T) {
	cases := []struct {
		raw  string
		want Role
		ok   bool
	}{
		{"organizer", RoleOrganizer, true},
		{"  Reviewer ", RoleReviewer, true},
		{"SUPER_ADMIN", RoleSuperAdmin, true},
		{"participant", RoleParticipant, true},
		{"admin", "", false},
		{"", "", false},
		{"moderator", "", false},
	}
	for _, tc := range cases {
		role, err := ParseRole(tc.raw)
		if tc.ok {
			if err != nil {
				t.Fatalf("ParseRole(%q): %v", tc.raw, err)
			}
			if role != tc.want {
				t.Fatalf("ParseRole(%q) = %s, want %s", tc.raw, role, tc.want)
			}
			continue
		}
		var invalid *InvalidRoleError
		if !errors.As(err, &invalid) {
			t.Fatalf("ParseRole(%q): expected InvalidRoleError, got %v", tc.raw, err)
		}
		if invalid.Role != tc.raw {
			t.Fatalf("InvalidRoleError carries %q, want %q", invalid.Role, tc.raw)
		}
	}
}

func TestHasCapability(t *testing.T) {
	if !HasCapability(RoleOrganizer, CapManageConferences) {
		t.Fatal("organizer should manage conferences")
	}
	if HasCapability(RoleOrganizer, CapManageUsers) {
		t.Fatal("organizer should not manage users")
	}
	if !HasCapability(RoleReviewer, CapReviewApplications) {
		t.Fatal("reviewer should review applications")
	}
	if HasCapability(RoleReviewer, CapSubmitApplications) {
		t.Fatal("reviewer should not submit applications")
	}
	if !HasCapability(RoleParticipant, CapSubmitApplications) {
		t.Fatal("participant should submit applications")
	}
	if HasCapability(Role("ghost"), CapSubmitApplications) {
		t.Fatal("unknown role should have no capabilities")
	}
}

func TestCanAccessRoute(t *testing.T) {
	if !CanAccessRoute(RoleSuperAdmin, "/reviewer/queue") {
		t.Fatal("super_admin should reach reviewer routes")
	}
	if !CanAccessRoute(RoleOrganizer, "/organizer/dashboard") {
		t.Fatal("organizer should reach its own dashboard")
	}
	if CanAccessRoute(RoleParticipant, "/admin/dashboard") {
		t.Fatal("participant should not reach admin routes")
	}
	if CanAccessRoute(Role("ghost"), "/participant/dashboard") {
		t.Fatal("unknown role should reach nothing")
	}
}

func TestHomeRoute(t *testing.T) {
	cases := map[Role]string{
		RoleSuperAdmin:  "/admin/dashboard",
		RoleOrganizer:   "/organizer/dashboard",
		RoleReviewer:    "/reviewer/dashboard",
		RoleParticipant: "/participant/dashboard",
		Role("ghost"):   "/",
	}
	for role, want := range cases {
		if got := HomeRoute(role); got != want {
			t.Fatalf("HomeRoute(%s) = %s, want %s", role, got, want)
		}
	}
}

func TestAvailableActionsCopies(t *testing.T) {
	first := AvailableActions(RoleReviewer)
	delete(first, CapReviewApplications)
	second := AvailableActions(RoleReviewer)
	if _, ok := second[CapReviewApplications]; !ok {
		t.Fatal("mutating the returned set must not affect the table")
	}
}
