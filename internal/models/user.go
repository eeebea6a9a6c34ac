package models

import "time"

// UserRole gates what an authenticated editor may do.
type UserRole string

const (
	RoleOwner  UserRole = "owner"
	RoleEditor UserRole = "editor"
)

// UserModel is a CMS account.
type UserModel struct {
	Base
	Username      string     `json:"username"        gorm:"uniqueIndex;not null"`
	Name          string     `json:"name"`
	Role          UserRole   `json:"role"            gorm:"not null;default:editor"`
	Password      string     `json:"-"               gorm:"not null"`
	LastLoginTime *time.Time `json:"last_login_time"`
	LastLoginIP   string     `json:"last_login_ip"`
}

func (UserModel) TableName() string { return "users" }

// DisplayName falls back to the username when no name is set.
func (u *UserModel) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}
