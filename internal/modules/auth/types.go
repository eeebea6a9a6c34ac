package auth

import (
	"errors"
	"time"

	"github.com/mx-space/landing/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("wrong username or password")
	ErrAlreadyRegistered  = errors.New("owner already registered")
	ErrUserExists         = errors.New("username already taken")
	ErrInvalidToken       = errors.New("session expired or revoked")
)

type LoginDTO struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

type RegisterDTO struct {
	Username string `json:"username" binding:"required,min=3"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name"`
}

// CurrentUser is the signed-in editor as seen by the CMS.
type CurrentUser struct {
	ID          string          `json:"id"`
	Username    string          `json:"username"`
	DisplayName string          `json:"displayName"`
	Role        models.UserRole `json:"role"`
}

type userResponse struct {
	ID            string          `json:"id"`
	Username      string          `json:"username"`
	Name          string          `json:"name"`
	Role          models.UserRole `json:"role"`
	LastLoginTime *time.Time      `json:"last_login_time"`
	LastLoginIP   string          `json:"last_login_ip"`
}

type loginResponse struct {
	Token string        `json:"token"`
	User  *userResponse `json:"user"`
}

type sessionResponse struct {
	IsGuest bool         `json:"isGuest"`
	User    *CurrentUser `json:"user,omitempty"`
}

func toResponse(u *models.UserModel) *userResponse {
	return &userResponse{
		ID: u.ID, Username: u.Username, Name: u.Name, Role: u.Role,
		LastLoginTime: u.LastLoginTime, LastLoginIP: u.LastLoginIP,
	}
}

func toCurrentUser(u *models.UserModel) *CurrentUser {
	return &CurrentUser{ID: u.ID, Username: u.Username, DisplayName: u.DisplayName(), Role: u.Role}
}
