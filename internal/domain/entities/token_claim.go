package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// ClaimStatus represents the lifecycle of a claim attempt.
type ClaimStatus string

const (
	ClaimStatusPending   ClaimStatus = "PENDING"
	ClaimStatusCompleted ClaimStatus = "COMPLETED"
	ClaimStatusFailed    ClaimStatus = "FAILED"
)

// TokenClaim records one wallet's claim of one token unit. TransactionID is
// the on-chain signature of the transfer transaction itself, not of any
// verification call. For a given (TokenID, WalletAddress) pair at most one
// row ever reaches COMPLETED.
type TokenClaim struct {
	ID            uuid.UUID   `json:"id"`
	TokenID       uuid.UUID   `json:"tokenId"`
	WalletAddress string      `json:"walletAddress"`
	TransactionID null.String `json:"transactionId,omitempty"`
	Status        ClaimStatus `json:"status"`
	ClaimedAt     time.Time   `json:"claimedAt"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// CommittedClaim is the result of a successful finalization.
type CommittedClaim struct {
	Claim       *TokenClaim `json:"claim"`
	Signature   string      `json:"signature"`
	ExplorerURL string      `json:"explorerUrl"`
}
