package models

import (
	"time"

	"github.com/google/uuid"
)

// Roles de usuario del panel administrativo
const (
	RoleAdmin    = "admin"
	RoleOperador = "operador"
)

// User representa un usuario del panel administrativo
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// LoginRequest representa la solicitud de login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse representa la respuesta de login con el token de acceso
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Role        string `json:"role"`
	Email       string `json:"email"`
}

// CreateUserRequest representa la solicitud de creación de usuario
type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required,oneof=admin operador"`
}

// UserResponse representa un usuario en las respuestas de la API
type UserResponse struct {
	Email  string `json:"email"`
	Role   string `json:"role"`
	Active bool   `json:"active"`
}
