// Package authz holds the role enum and the capability table checked at every
// endpoint boundary.
package authz

type Role string

const (
	RoleUser    Role = "user"
	RoleTrainer Role = "trainer"
	RoleAdmin   Role = "admin"
)

type Capability string

const (
	CapReadChecklist   Capability = "checklist:read"
	CapTrackProgress   Capability = "progress:write"
	CapRecordActivity  Capability = "activity:write"
	CapManageChecklist Capability = "checklist:manage"
	CapViewStats       Capability = "stats:read"
	CapViewUsers       Capability = "users:read"
	CapManageRoles     Capability = "users:manage_roles"
)

var grants = map[Role]map[Capability]bool{
	RoleUser: {
		CapReadChecklist:  true,
		CapTrackProgress:  true,
		CapRecordActivity: true,
	},
	RoleTrainer: {
		CapReadChecklist:   true,
		CapTrackProgress:   true,
		CapRecordActivity:  true,
		CapManageChecklist: true,
		CapViewStats:       true,
		CapViewUsers:       true,
	},
	RoleAdmin: {
		CapReadChecklist:   true,
		CapTrackProgress:   true,
		CapRecordActivity:  true,
		CapManageChecklist: true,
		CapViewStats:       true,
		CapViewUsers:       true,
		CapManageRoles:     true,
	},
}

// ParseRole returns the role named by s and false for anything unknown.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	_, ok := grants[r]
	return r, ok
}

// Can reports whether role holds capability. Unknown roles hold nothing.
func Can(role Role, capability Capability) bool {
	return grants[role][capability]
}

// IsPrivileged reports whether role may enter the admin area.
func IsPrivileged(role Role) bool {
	return role == RoleAdmin || role == RoleTrainer
}
