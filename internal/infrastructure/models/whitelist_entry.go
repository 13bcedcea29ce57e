package models

import (
	"time"

	"github.com/google/uuid"
)

type WhitelistEntry struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	TokenID       *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_whitelist_token_wallet"`
	EventID       *uuid.UUID `gorm:"type:uuid;index"`
	WalletAddress string     `gorm:"type:varchar(64);not null;uniqueIndex:idx_whitelist_token_wallet"`
	CreatedAt     time.Time
}
