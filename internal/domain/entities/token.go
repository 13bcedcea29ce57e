package entities

import (
	"time"

	"github.com/google/uuid"
)

// Token represents a proof-of-participation credential. Supply is fixed at
// creation; Claimed only moves through the repository's atomic increment and
// never decrements.
type Token struct {
	ID               uuid.UUID  `json:"id"`
	CreatorAddress   string     `json:"creatorAddress"`
	Name             string     `json:"name"`
	Symbol           string     `json:"symbol"`
	Description      string     `json:"description,omitempty"`
	IconURL          string     `json:"iconUrl,omitempty"`
	MintAddress      string     `json:"mintAddress"`
	Decimals         int        `json:"decimals"`
	Supply           int64      `json:"supply"`
	Claimed          int64      `json:"claimed"`
	ExpiryDate       *time.Time `json:"expiryDate,omitempty"`
	WhitelistEnabled bool       `json:"whitelistEnabled"`
	IsCompressed     bool       `json:"isCompressed"`
	EventID          *uuid.UUID `json:"eventId,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// Remaining returns how many units are still claimable.
func (t *Token) Remaining() int64 {
	if t.Claimed >= t.Supply {
		return 0
	}
	return t.Supply - t.Claimed
}

// IsExpired reports whether the claim window has closed at the given time.
func (t *Token) IsExpired(now time.Time) bool {
	return t.ExpiryDate != nil && !now.Before(*t.ExpiryDate)
}

// RegisterTokenInput registers an already-minted credential with the claim
// engine. Mint creation itself is an external collaborator.
type RegisterTokenInput struct {
	Name             string     `json:"name" binding:"required"`
	Symbol           string     `json:"symbol" binding:"required"`
	Description      string     `json:"description"`
	IconURL          string     `json:"iconUrl"`
	MintAddress      string     `json:"mintAddress" binding:"required"`
	Decimals         int        `json:"decimals"`
	Supply           int64      `json:"supply" binding:"required"`
	ExpiryDate       *time.Time `json:"expiryDate"`
	WhitelistEnabled bool       `json:"whitelistEnabled"`
	IsCompressed     bool       `json:"isCompressed"`
	EventID          *uuid.UUID `json:"eventId"`
}
