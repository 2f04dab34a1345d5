package auth

import (
	"github.com/angelmondragon/lostfound-backend/internal/users"
)

// LoginRequest captures the credentials sent to either login endpoint.
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=150"`
	Password string `json:"password" validate:"required"`
	Next     string `json:"next,omitempty"`
}

// RequestMeta describes the HTTP request a login arrived on.
type RequestMeta struct {
	RemoteAddr string
	Path       string
	UserAgent  string
	RequestID  string
}

// LoginResponse contains the access token and the authenticated user.
type LoginResponse struct {
	AccessToken string         `json:"access_token"`
	ExpiresIn   int64          `json:"expires_in"`
	AccessID    string         `json:"-"`
	Redirect    string         `json:"redirect"`
	User        *users.UserDTO `json:"user"`
}
