package repositories

import (
	"context"

	"github.com/google/uuid"
	"claimdrop.backend/internal/domain/entities"
)

// TokenRepository defines token persistence operations.
type TokenRepository interface {
	Create(ctx context.Context, token *entities.Token) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Token, error)
	GetByMintAddress(ctx context.Context, mint string) (*entities.Token, error)
	List(ctx context.Context, creatorAddress string, limit, offset int) ([]*entities.Token, int64, error)

	// IncrementClaimed atomically bumps the claimed counter, guarded by
	// claimed < supply in the same statement. Returns ErrSupplyExhausted
	// when no row qualified. Never implemented as read-then-write.
	IncrementClaimed(ctx context.Context, id uuid.UUID) error
}
