package domain

import "time"

type UserRole string

const (
	UserRoleAdmin       UserRole = "admin"
	UserRoleOwner       UserRole = "owner"
	UserRoleAgency      UserRole = "agency"
	UserRoleManager     UserRole = "manager"
	UserRoleTenant      UserRole = "tenant"
	UserRoleMaintenance UserRole = "maintenance"
	UserRoleAgent       UserRole = "agent"
)

type User struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	Phone              string    `json:"phone"`
	PasswordHash       string    `json:"-"`
	Role               UserRole  `json:"role"`
	IsActive           bool      `json:"is_active"`
	MustChangePassword bool      `json:"must_change_password"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// IsActiveAgent reports whether the user may earn commissions.
func (u *User) IsActiveAgent() bool {
	return u != nil && u.Role == UserRoleAgent && u.IsActive
}
