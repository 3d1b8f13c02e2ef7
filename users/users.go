package users

import (
	"strings"

	"github.com/jrsteele09/ums-portal/internal/utils"
)

// RoleType is the role the UMS API assigns to an account.
type RoleType string

const (
	RoleAdmin       RoleType = "ADMIN"
	RoleFaculty     RoleType = "FACULTY"
	RoleStudent     RoleType = "STUDENT"
	RoleHOD         RoleType = "HOD"
	RoleCoordinator RoleType = "COORDINATOR"
	RoleParent      RoleType = "PARENT"
)

// DefaultRole is sent on registration when no role was chosen.
const DefaultRole = RoleStudent

var knownRoles = map[RoleType]string{
	RoleAdmin:       "Admin",
	RoleFaculty:     "Faculty",
	RoleStudent:     "Student",
	RoleHOD:         "Head of Department",
	RoleCoordinator: "Coordinator",
	RoleParent:      "Parent",
}

// Roles lists every role in the order the registration form offers them.
func Roles() []RoleType {
	return []RoleType{RoleStudent, RoleFaculty, RoleHOD, RoleCoordinator, RoleParent, RoleAdmin}
}

// ParseRole normalises s. Empty or unknown values map to DefaultRole.
func ParseRole(s string) RoleType {
	r := RoleType(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := knownRoles[r]; !ok {
		return DefaultRole
	}
	return r
}

func (r RoleType) Valid() bool {
	_, ok := knownRoles[r]
	return ok
}

// Label is the human readable role name, or the raw value for roles the portal does not know.
func (r RoleType) Label() string {
	if label, ok := knownRoles[r]; ok {
		return label
	}
	return string(r)
}

// DashboardScope names the /api/dashboards/{scope}/ endpoint for the role.
// Parents have no dashboard endpoint and get "".
func (r RoleType) DashboardScope() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleHOD, RoleCoordinator:
		return "department"
	case RoleFaculty:
		return "faculty"
	case RoleStudent:
		return "student"
	default:
		return ""
	}
}

// User is the profile snapshot returned by the UMS API at login. It is kept for
// display only and never reconciled with the server afterwards.
type User struct {
	ID         int      `json:"id,omitempty"`
	Email      string   `json:"email,omitempty"`
	FirstName  string   `json:"first_name,omitempty"`
	LastName   string   `json:"last_name,omitempty"`
	Role       RoleType `json:"role,omitempty"`
	IsActive   *bool    `json:"is_active,omitempty"`
	DateJoined string   `json:"date_joined,omitempty"`
}

// DisplayName is the first name, falling back to "Guest".
func (u User) DisplayName() string {
	if name := strings.TrimSpace(u.FirstName); name != "" {
		return name
	}
	return "Guest"
}

func (u User) FullName() string {
	full := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if full == "" {
		return u.Email
	}
	return full
}

// Active reports the is_active flag. Snapshots without the flag count as active.
func (u User) Active() bool {
	return utils.ValueOr(u.IsActive, true)
}

// Initials is used for the avatar badge in the page header.
func (u User) Initials() string {
	var b strings.Builder
	for _, part := range []string{u.FirstName, u.LastName} {
		part = strings.TrimSpace(part)
		if part != "" {
			b.WriteString(strings.ToUpper(string([]rune(part)[0])))
		}
	}
	if b.Len() == 0 && u.Email != "" {
		return strings.ToUpper(string([]rune(u.Email)[0]))
	}
	return b.String()
}
