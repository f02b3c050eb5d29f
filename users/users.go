package users

import (
	"strings"
)

// RoleType is the raw role code returned by the backend.
type RoleType string

const (
	RoleAdmin RoleType = "ADMIN" // Full console access: dashboard, all resources, edit/delete
	RoleUser  RoleType = "USER"  // Default tier: medicines view only
)

// User is the profile representation returned by the backend. The client never
// owns it; every copy is replaced wholesale by the next server response.
type User struct {
	ID          int64    `json:"id"`
	Email       string   `json:"email"`
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	FullName    string   `json:"full_name,omitempty"`
	Role        RoleType `json:"role"`
	RoleDisplay string   `json:"role_display,omitempty"`
	Avatar      string   `json:"avatar,omitempty"`
	Phone       string   `json:"phone,omitempty"`
}

// Clone returns a copy of u that shares no memory with it.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// DisplayName returns the full name, falling back to first/last name and then
// the email address.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.FullName != "" {
		return u.FullName
	}
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	return u.Email
}

// IsAdmin reports whether u belongs to the admin tier. The exact role code is
// checked first, then a case-insensitive match. A nil user is never an admin.
func IsAdmin(u *User) bool {
	if u == nil {
		return false
	}
	if u.Role == RoleAdmin {
		return true
	}
	return strings.EqualFold(string(u.Role), string(RoleAdmin))
}

// CanEdit reports whether u may see edit and delete affordances.
func CanEdit(u *User) bool {
	return IsAdmin(u)
}

// CanViewDashboard reports whether u may open the aggregated dashboard.
func CanViewDashboard(u *User) bool {
	return IsAdmin(u)
}

// RegisterData is the payload of the registration endpoint. It is sent as
// given; the backend owns every rule on it.
type RegisterData struct {
	Email     string   `json:"email"`
	Password  string   `json:"password"`
	Password2 string   `json:"password2"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Phone     string   `json:"phone"`
	Role      RoleType `json:"role,omitempty"`
	Gender    string   `json:"gender,omitempty"`
	BirthDate string   `json:"birth_date,omitempty"`
}

// ProfileUpdate is a partial profile update; nil fields are not sent.
type ProfileUpdate struct {
	Email     *string `json:"email,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
}

// IsEmpty reports whether the update carries no field.
func (p ProfileUpdate) IsEmpty() bool {
	return p.Email == nil && p.FirstName == nil && p.LastName == nil && p.Phone == nil
}

// PasswordChange is the payload of the change-password endpoint.
type PasswordChange struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}
