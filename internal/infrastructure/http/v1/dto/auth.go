package dto

import (
	"time"

	"renodevis/internal/domain/auth"
)

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
	Nom      string `json:"nom" binding:"max=200"`
}

func (r RegisterRequest) ToDomain() auth.RegisterRequest {
	return auth.RegisterRequest{Email: r.Email, Password: r.Password, Nom: r.Nom}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (r LoginRequest) ToDomain() auth.Credentials {
	return auth.Credentials{Email: r.Email, Password: r.Password}
}

type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Nom       string    `json:"nom"`
	CreatedAt time.Time `json:"created_at"`
}

func FromUser(u *auth.User) UserResponse {
	return UserResponse{
		ID:        u.ID.String(),
		Email:     u.Email,
		Nom:       u.Nom,
		CreatedAt: u.CreatedAt,
	}
}

type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        UserResponse `json:"user"`
}

func FromToken(t *auth.TokenResponse) TokenResponse {
	resp := TokenResponse{
		AccessToken: t.AccessToken,
		TokenType:   t.TokenType,
		ExpiresAt:   t.ExpiresAt,
	}
	if t.User != nil {
		resp.User = FromUser(t.User)
	}
	return resp
}
