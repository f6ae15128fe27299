package domain

// Role names a permission set with an ordinal level used for coarse-grained
// "minimum role" checks elsewhere in the platform.
type Role struct {
	ID          string
	Name        string
	Level       int
	Permissions []string
}

// RoleSnapshot is the role state embedded into session claims so that
// authorization checks avoid a store round-trip per request. The zero value
// is the default unprivileged state, not an error.
type RoleSnapshot struct {
	Name        string
	Level       int
	Permissions []string
}

// Has reports whether the snapshot carries the named permission.
func (s RoleSnapshot) Has(permission string) bool {
	for _, p := range s.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}
