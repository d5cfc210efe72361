package transport

import "time"

// LoginRequest accepts either username or email as the login name.
type LoginRequest struct {
	Username string `json:"username" validate:"required_without=Email,omitempty,max=150"`
	Email    string `json:"email" validate:"required_without=Username,omitempty,max=254"`
	Password string `json:"password" validate:"required,max=128"`
}

func (r LoginRequest) Login() string {
	if r.Username != "" {
		return r.Username
	}
	return r.Email
}

type UserResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Status    string `json:"status"`
	IsAdmin   bool   `json:"isAdmin"`
}

type LoginResponse struct {
	AccessToken string       `json:"accessToken"`
	ExpiresAt   time.Time    `json:"expiresAt"`
	User        UserResponse `json:"user"`
}
