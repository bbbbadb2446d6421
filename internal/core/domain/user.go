package domain

import "time"

// Role is the authorization role carried by an Identity.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleStudent Role = "STUDENT"
)

// Valid reports whether r is one of the roles the backend issues.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleStudent
}

// User models the authenticated identity as returned by the backend.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// HasRole reports whether the user holds any of the given roles.
func (u *User) HasRole(roles ...Role) bool {
	if u == nil {
		return false
	}
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// AuthResult is the payload of a successful login or registration.
type AuthResult struct {
	Token string
	User  User
}

// AuthOutcome is what the session actions report to callers. Error is set
// only when Success is false.
type AuthOutcome struct {
	Success bool
	Error   string
}

// UserInput carries the writable fields of a user.
type UserInput struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
	Role     Role   `json:"role,omitempty"`
}
