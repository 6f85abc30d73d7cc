package domain

// Role is the closed set of marketplace principals.
type Role string

const (
	RoleBuyer  Role = "BUYER"
	RoleSeller Role = "SELLER"
	RoleAdmin  Role = "ADMIN"
)

// Roles lists every recognized role.
var Roles = []Role{RoleBuyer, RoleSeller, RoleAdmin}

// Valid reports whether r is one of the recognized roles.
func (r Role) Valid() bool {
	switch r {
	case RoleBuyer, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

// ParseRole converts a raw value into a Role. Unknown values are rejected
// rather than mapped to a default.
func ParseRole(raw string) (Role, bool) {
	r := Role(raw)
	return r, r.Valid()
}
