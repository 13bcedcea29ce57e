package repositories

import (
	"context"

	"github.com/google/uuid"
	"claimdrop.backend/internal/domain/entities"
)

// UserRepository defines organizer account persistence.
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
}
