package repositories

import (
	"context"

	"github.com/google/uuid"
	"claimdrop.backend/internal/domain/entities"
)

// WhitelistRepository defines whitelist persistence. Consumed read-only by
// the claim guard; mutations belong to the organizer surface.
type WhitelistRepository interface {
	Add(ctx context.Context, entry *entities.WhitelistEntry) error
	AddBulk(ctx context.Context, entries []*entities.WhitelistEntry) (int, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Contains(ctx context.Context, tokenID uuid.UUID, wallet string) (bool, error)
	ListByToken(ctx context.Context, tokenID uuid.UUID, limit, offset int) ([]*entities.WhitelistEntry, int64, error)
}
