package roles

import "fmt"

// Role is the permission level of an inventory operator.
type Role string

const (
	User      Role = "user"
	Moderator Role = "moderator"
	Admin     Role = "admin"
)

type HierarchyLevel int

const (
	UnknownLevel   HierarchyLevel = 0
	UserLevel      HierarchyLevel = 1
	ModeratorLevel HierarchyLevel = 2
	AdminLevel     HierarchyLevel = 3
)

func NewRole(value string) (Role, error) {
	role := Role(value)
	if !role.IsValid() {
		return "", fmt.Errorf("invalid role: %s", value)
	}
	return role, nil
}

func (r Role) GetHierarchyLevel() HierarchyLevel {
	switch r {
	case User:
		return UserLevel
	case Moderator:
		return ModeratorLevel
	case Admin:
		return AdminLevel
	default:
		return UnknownLevel
	}
}

// HasPermission reports whether r is at least as privileged as requiredRole.
func (r Role) HasPermission(requiredRole Role) bool {
	if !r.IsValid() || !requiredRole.IsValid() {
		return false
	}
	return r.GetHierarchyLevel() >= requiredRole.GetHierarchyLevel()
}

func (r Role) IsValid() bool {
	switch r {
	case User, Moderator, Admin:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}
