package repositories

import (
	"context"

	"github.com/google/uuid"
	"claimdrop.backend/internal/domain/entities"
)

// ClaimRepository defines token-claim persistence operations. The storage
// layer enforces uniqueness on (token_id, wallet_address); Create surfaces a
// constraint violation as ErrAlreadyClaimed.
type ClaimRepository interface {
	Create(ctx context.Context, claim *entities.TokenClaim) error
	// Complete upgrades the pair's PENDING claim to COMPLETED, or inserts a
	// COMPLETED row when no pending claim exists. A pair that already
	// completed yields ErrAlreadyClaimed.
	Complete(ctx context.Context, claim *entities.TokenClaim) error
	GetByTokenAndWallet(ctx context.Context, tokenID uuid.UUID, wallet string) (*entities.TokenClaim, error)
	GetBySignature(ctx context.Context, signature string) (*entities.TokenClaim, error)
	HasCompleted(ctx context.Context, tokenID uuid.UUID, wallet string) (bool, error)
	CountCompleted(ctx context.Context, tokenID uuid.UUID) (int64, error)
	ListByToken(ctx context.Context, tokenID uuid.UUID, limit, offset int) ([]*entities.TokenClaim, int64, error)
}
