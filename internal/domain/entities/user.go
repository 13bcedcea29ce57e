package entities

import (
	"time"

	"github.com/google/uuid"
)

// User is an event organizer account. Organizers mint credentials out of
// band and manage whitelists and compressed transfers through the API.
type User struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	WalletAddress string    `json:"walletAddress"`
	PasswordHash  string    `json:"-"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// RegisterInput creates an organizer account.
type RegisterInput struct {
	Email         string `json:"email" binding:"required,email"`
	Password      string `json:"password" binding:"required,min=8"`
	WalletAddress string `json:"walletAddress" binding:"required"`
}

// LoginInput authenticates an organizer.
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
