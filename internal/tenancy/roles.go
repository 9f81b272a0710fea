package tenancy

import "strings"

// Role is the closed set of identity-provider group memberships the gateway
// routes on. Group names arrive as free-form strings in the ID token; they
// are normalized here once and compared as enum values everywhere else.
type Role int

const (
	RoleUnknown Role = iota
	RoleStudent
	RoleParent
	RoleTeacher
	RoleBursar
	RoleSchoolAdmin
	RolePlatformAdmin
)

func (r Role) String() string {
	switch r {
	case RoleStudent:
		return "student"
	case RoleParent:
		return "parent"
	case RoleTeacher:
		return "teacher"
	case RoleBursar:
		return "bursar"
	case RoleSchoolAdmin:
		return "school_admin"
	case RolePlatformAdmin:
		return "platform_admin"
	default:
		return "unknown"
	}
}

// RoleFromGroup normalizes one group name. Comparison is case-insensitive
// and tolerant of hyphen/underscore spelling.
func RoleFromGroup(group string) Role {
	g := strings.ToLower(strings.TrimSpace(group))
	g = strings.ReplaceAll(g, "-", "_")
	switch g {
	case "student", "students":
		return RoleStudent
	case "parent", "parents":
		return RoleParent
	case "teacher", "teachers":
		return RoleTeacher
	case "bursar", "bursars":
		return RoleBursar
	case "school_admin", "schooladmin":
		return RoleSchoolAdmin
	case "platform_admin", "platformadmin":
		return RolePlatformAdmin
	default:
		return RoleUnknown
	}
}

// DefaultRoute derives the post-login landing path from group claims.
// First match wins, in this order: parent/student, teacher,
// bursar/school admin, platform admin. Platform admins land on the
// platform area only when already on the HQ host.
func DefaultRoute(groups []string, onHQ bool) string {
	roles := make(map[Role]bool, len(groups))
	for _, g := range groups {
		roles[RoleFromGroup(g)] = true
	}

	switch {
	case roles[RoleParent] || roles[RoleStudent]:
		return "/portal"
	case roles[RoleTeacher]:
		return "/teacher"
	case roles[RoleBursar] || roles[RoleSchoolAdmin]:
		return "/admin"
	case roles[RolePlatformAdmin]:
		if onHQ {
			return "/platform"
		}
		return "/admin"
	default:
		return "/"
	}
}
