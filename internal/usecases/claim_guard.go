package usecases

import (
	"context"
	"time"

	"claimdrop.backend/internal/domain/entities"
	"claimdrop.backend/internal/domain/errors"
	domainRepos "claimdrop.backend/internal/domain/repositories"
	"claimdrop.backend/internal/infrastructure/solana"
	"claimdrop.backend/internal/observability"
)

// ClaimGuard decides whether a wallet may claim a token. The same guard runs
// twice per claim: optimistically at Build (fast feedback for the scanner)
// and authoritatively inside the Finalize unit of work (the answer that
// counts).
type ClaimGuard struct {
	claimRepo     domainRepos.ClaimRepository
	whitelistRepo domainRepos.WhitelistRepository
	now           func() time.Time
}

// NewClaimGuard creates a guard.
func NewClaimGuard(claimRepo domainRepos.ClaimRepository, whitelistRepo domainRepos.WhitelistRepository) *ClaimGuard {
	return &ClaimGuard{
		claimRepo:     claimRepo,
		whitelistRepo: whitelistRepo,
		now:           time.Now,
	}
}

// ValidateWallet rejects strings that are not well-formed Solana addresses.
func ValidateWallet(wallet string) error {
	if _, err := solana.ParsePublicKey(wallet); err != nil {
		return errors.ErrInvalidWalletAddress
	}
	return nil
}

// CanClaim runs the ordered checks: token known, claim window open, supply
// left, whitelist, no prior completed claim. The first violated rule wins;
// each maps to its own domain error.
func (g *ClaimGuard) CanClaim(ctx context.Context, token *entities.Token, wallet string) error {
	if token == nil {
		g.deny(errors.ReasonTokenNotFound)
		return errors.ErrTokenNotFound
	}

	if err := ValidateWallet(wallet); err != nil {
		g.deny(errors.ReasonInvalidWallet)
		return err
	}

	if token.IsExpired(g.now()) {
		g.deny(errors.ReasonTokenExpired)
		return errors.ErrTokenExpired
	}

	if token.Remaining() <= 0 {
		g.deny(errors.ReasonSupplyExhausted)
		return errors.ErrSupplyExhausted
	}

	if token.WhitelistEnabled {
		listed, err := g.whitelistRepo.Contains(ctx, token.ID, wallet)
		if err != nil {
			return err
		}
		if !listed {
			g.deny(errors.ReasonNotWhitelisted)
			return errors.ErrNotWhitelisted
		}
	}

	claimed, err := g.claimRepo.HasCompleted(ctx, token.ID, wallet)
	if err != nil {
		return err
	}
	if claimed {
		g.deny(errors.ReasonAlreadyClaimed)
		return errors.ErrAlreadyClaimed
	}

	return nil
}

func (g *ClaimGuard) deny(reason string) {
	observability.RecordGuardDenial(reason)
}
