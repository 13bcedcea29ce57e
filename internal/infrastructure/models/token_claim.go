package models

import (
	"time"

	"github.com/google/uuid"
)

// TokenClaim rows carry the double-claim barrier: the composite unique index
// on (token_id, wallet_address) makes the second concurrent finalization for
// the same pair fail at insert time, whatever the application layer saw.
// No soft delete: the expiry sweep is the only deleter, and a soft-deleted
// row would keep holding the unique slot it exists to free.
type TokenClaim struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	TokenID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_claims_token_wallet"`
	WalletAddress string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_claims_token_wallet"`
	TransactionID *string   `gorm:"type:varchar(128);index"`
	Status        string    `gorm:"type:varchar(20);not null;index"`
	ClaimedAt     time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
