package entities

import (
	"time"

	"github.com/google/uuid"
)

// WhitelistEntry gates a token (or a whole event) to a wallet. Exactly one of
// TokenID/EventID is set.
type WhitelistEntry struct {
	ID            uuid.UUID  `json:"id"`
	TokenID       *uuid.UUID `json:"tokenId,omitempty"`
	EventID       *uuid.UUID `json:"eventId,omitempty"`
	WalletAddress string     `json:"walletAddress"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// AddWhitelistInput adds a single wallet to a token's or event's whitelist.
type AddWhitelistInput struct {
	TokenID       *uuid.UUID `json:"tokenId"`
	EventID       *uuid.UUID `json:"eventId"`
	WalletAddress string     `json:"walletAddress" binding:"required"`
}

// BulkWhitelistInput adds many wallets at once.
type BulkWhitelistInput struct {
	TokenID         *uuid.UUID `json:"tokenId"`
	EventID         *uuid.UUID `json:"eventId"`
	WalletAddresses []string   `json:"walletAddresses" binding:"required"`
}
