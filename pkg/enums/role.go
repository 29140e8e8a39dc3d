package enums

import (
	"fmt"
	"strings"
)

// Role is the portal-wide account role.
type Role string

const (
	RoleStudent       Role = "STUDENT"
	RoleFaculty       Role = "FACULTY"
	RoleAdmin         Role = "ADMIN"
	RoleIssueIncharge Role = "ISSUE_INCHARGE"
	RoleResolver      Role = "RESOLVER"
)

var validRoles = []Role{
	RoleStudent,
	RoleFaculty,
	RoleAdmin,
	RoleIssueIncharge,
	RoleResolver,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// CanFileComplaints reports whether the role may create complaints.
func (r Role) CanFileComplaints() bool {
	return r == RoleStudent || r == RoleFaculty
}

// CanSelfRegister reports whether signup may create an account with this role.
// Staff accounts are provisioned by admins.
func (r Role) CanSelfRegister() bool {
	return r.CanFileComplaints()
}

// IsStaff covers the roles that handle complaints.
func (r Role) IsStaff() bool {
	return r == RoleIssueIncharge || r == RoleResolver
}

// ParseRole converts raw input into a Role. Matching ignores case.
func ParseRole(value string) (Role, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	for _, candidate := range validRoles {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}
