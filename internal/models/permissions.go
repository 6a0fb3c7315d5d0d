package models

// Permissions gate the mutating WBS operations. The rollup core never
// checks them.
type Permissions struct {
	Add    bool `json:"add"`
	Edit   bool `json:"edit"`
	Delete bool `json:"delete"`
	View   bool `json:"view"`
}

// Role constants
const (
	RoleAdmin    = "Admin"
	RoleReporter = "Reporter"
	RoleUser     = "User"
)

// PermissionsForRole returns the default permission set of a role.
// Unknown roles get view-only access.
func PermissionsForRole(role string) Permissions {
	switch role {
	case RoleAdmin:
		return Permissions{Add: true, Edit: true, Delete: true, View: true}
	case RoleReporter:
		return Permissions{Edit: true, View: true}
	default:
		return Permissions{View: true}
	}
}
