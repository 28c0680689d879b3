package auth

// Roles issued by the clinic backend.
const (
	RoleUser         = "User"
	RoleReceptionist = "Receptionist"
	RoleDoctor       = "Doctor"
	RoleAdmin        = "Admin"
)

// DefaultRole is assumed when a token carries no role claim.
const DefaultRole = RoleUser

// Roles lists every role in ascending privilege.
func Roles() []string {
	return []string{RoleUser, RoleReceptionist, RoleDoctor, RoleAdmin}
}

// IsRole reports whether r is one of the known roles.
func IsRole(r string) bool {
	for _, known := range Roles() {
		if r == known {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether role is a member of allowed. An empty allowed
// set means no restriction.
func HasAnyRole(role string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == role {
			return true
		}
	}
	return false
}
