package auth

import (
	"fmt"
	"sort"
	"strings"
)

// Role is the closed set of actor categories. Raw strings enter through
// ParseRole only, so handlers and stores never carry unchecked values.
type Role string

const (
	RoleSuperAdmin  Role = "super_admin"
	RoleOrganizer   Role = "organizer"
	RoleReviewer    Role = "reviewer"
	RoleParticipant Role = "participant"
)

// InvalidRoleError indicates a role string outside the closed set. Receiving
// one means the caller skipped ParseRole; it is a bug signal, not a
// permission decision.
type InvalidRoleError struct {
	Role string
}

func (e *InvalidRoleError) Error() string {
	return fmt.Sprintf("auth: invalid role %q", e.Role)
}

// ParseRole validates a raw role string at the boundary.
func ParseRole(raw string) (Role, error) {
	role := Role(strings.TrimSpace(strings.ToLower(raw)))
	switch role {
	case RoleSuperAdmin, RoleOrganizer, RoleReviewer, RoleParticipant:
		return role, nil
	}
	return "", &InvalidRoleError{Role: raw}
}

// Capability keys granted wholesale to roles.
const (
	CapManageUsers        = "manage_users"
	CapManageConferences  = "manage_conferences"
	CapReviewApplications = "review_applications"
	CapSubmitApplications = "submit_applications"
	CapViewAnalytics      = "view_analytics"
	CapManageSystem       = "manage_system"
	CapExportData         = "export_data"
	CapSendNotifications  = "send_notifications"
)

// Capabilities are data, not code: this table is the single source of truth
// for both HTTP gating and the workflow engine.
var roleCapabilities = map[Role][]string{
	RoleSuperAdmin: {
		CapManageUsers,
		CapManageConferences,
		CapReviewApplications,
		CapSubmitApplications,
		CapViewAnalytics,
		CapManageSystem,
		CapExportData,
		CapSendNotifications,
	},
	RoleOrganizer: {
		CapManageConferences,
		CapReviewApplications,
		CapViewAnalytics,
		CapExportData,
		CapSendNotifications,
	},
	RoleReviewer: {
		CapReviewApplications,
	},
	RoleParticipant: {
		CapSubmitApplications,
	},
}

var roleRoutePrefixes = map[Role][]string{
	RoleSuperAdmin:  {"/admin", "/organizer", "/reviewer", "/participant"},
	RoleOrganizer:   {"/organizer"},
	RoleReviewer:    {"/reviewer"},
	RoleParticipant: {"/participant"},
}

var roleHomeRoutes = map[Role]string{
	RoleSuperAdmin:  "/admin/dashboard",
	RoleOrganizer:   "/organizer/dashboard",
	RoleReviewer:    "/reviewer/dashboard",
	RoleParticipant: "/participant/dashboard",
}

func init() {
	if err := verifyCapabilityTable(); err != nil {
		panic(err)
	}
}

// verifyCapabilityTable enforces the construction-time invariant: super_admin
// carries every capability held by any other role.
func verifyCapabilityTable() error {
	admin := make(map[string]struct{}, len(roleCapabilities[RoleSuperAdmin]))
	for _, c := range roleCapabilities[RoleSuperAdmin] {
		admin[c] = struct{}{}
	}
	for role, caps := range roleCapabilities {
		if role == RoleSuperAdmin {
			continue
		}
		for _, c := range caps {
			if _, ok := admin[c]; !ok {
				return fmt.Errorf("auth: capability table broken: %s grants %q which super_admin lacks", role, c)
			}
		}
	}
	return nil
}

// AvailableActions returns the capability set for a role. Unknown roles get
// an empty set rather than an error so UI gating degrades to "deny".
func AvailableActions(role Role) map[string]struct{} {
	caps := roleCapabilities[role]
	out := make(map[string]struct{}, len(caps))
	for _, c := range caps {
		out[c] = struct{}{}
	}
	return out
}

// HasCapability reports whether a role carries the named capability.
func HasCapability(role Role, capability string) bool {
	for _, c := range roleCapabilities[role] {
		if c == capability {
			return true
		}
	}
	return false
}

// AllowedRoutePrefixes returns the route prefixes a role may access.
func AllowedRoutePrefixes(role Role) []string {
	prefixes := roleRoutePrefixes[role]
	out := make([]string, len(prefixes))
	copy(out, prefixes)
	sort.Strings(out)
	return out
}

// CanAccessRoute reports whether the route falls under one of the role's
// allowed prefixes.
func CanAccessRoute(role Role, route string) bool {
	for _, prefix := range roleRoutePrefixes[role] {
		if strings.HasPrefix(route, prefix) {
			return true
		}
	}
	return false
}

// HomeRoute returns the canonical post-login landing path for a role.
// Unknown roles land on the root path.
func HomeRoute(role Role) string {
	if home, ok := roleHomeRoutes[role]; ok {
		return home
	}
	return "/"
}
