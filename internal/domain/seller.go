package domain

import (
	"time"

	"github.com/google/uuid"
)

// Seller represents a registered seller account.
type Seller struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Password    string    `json:"-"` // bcrypt hash, never serialized
	DisplayName string    `json:"displayName"`
	Verified    bool      `json:"verified"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// RegisterRequest is the validated input for creating a seller account.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	DisplayName string `json:"displayName" validate:"required,min=1,max=100"`
}

// LoginRequest is the validated input for logging in.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// LoginResponse is the API response after successful login.
type LoginResponse struct {
	Token  string         `json:"token"`
	Seller SellerResponse `json:"seller"`
}

// SellerResponse is the safe API response for a seller (no password).
type SellerResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	Verified    bool      `json:"verified"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"createdAt"`
}

// JWTClaims represents the JWT payload.
type JWTClaims struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// NewSellerID generates a new UUID for a seller.
func NewSellerID() string {
	return uuid.New().String()
}
