package usecases

import (
	"context"

	"github.com/google/uuid"
	"claimdrop.backend/internal/domain/entities"
	"claimdrop.backend/internal/domain/errors"
	domainRepos "claimdrop.backend/internal/domain/repositories"
	"claimdrop.backend/pkg/utils"
)

// WhitelistUsecase manages claim whitelists for tokens and events.
type WhitelistUsecase struct {
	whitelistRepo domainRepos.WhitelistRepository
	tokenRepo     domainRepos.TokenRepository
}

// NewWhitelistUsecase creates the whitelist flow.
func NewWhitelistUsecase(whitelistRepo domainRepos.WhitelistRepository, tokenRepo domainRepos.TokenRepository) *WhitelistUsecase {
	return &WhitelistUsecase{whitelistRepo: whitelistRepo, tokenRepo: tokenRepo}
}

// Add puts one wallet on a token's or event's whitelist.
func (uc *WhitelistUsecase) Add(ctx context.Context, input entities.AddWhitelistInput) (*entities.WhitelistEntry, error) {
	if err := uc.validateScope(input.TokenID, input.EventID); err != nil {
		return nil, err
	}
	if err := ValidateWallet(input.WalletAddress); err != nil {
		return nil, err
	}

	entry := &entities.WhitelistEntry{
		TokenID:       input.TokenID,
		EventID:       input.EventID,
		WalletAddress: input.WalletAddress,
	}
	if err := uc.whitelistRepo.Add(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// BulkResult reports how a bulk insert went.
type BulkResult struct {
	Requested int `json:"requested"`
	Added     int `json:"added"`
	Skipped   int `json:"skipped"`
}

// AddBulk whitelists many wallets in one statement; wallets already on the
// list are skipped, malformed addresses reject the whole batch.
func (uc *WhitelistUsecase) AddBulk(ctx context.Context, input entities.BulkWhitelistInput) (*BulkResult, error) {
	if err := uc.validateScope(input.TokenID, input.EventID); err != nil {
		return nil, err
	}
	if len(input.WalletAddresses) == 0 {
		return nil, errors.ErrInvalidInput
	}

	entries := make([]*entities.WhitelistEntry, 0, len(input.WalletAddresses))
	for _, wallet := range input.WalletAddresses {
		if err := ValidateWallet(wallet); err != nil {
			return nil, err
		}
		entries = append(entries, &entities.WhitelistEntry{
			TokenID:       input.TokenID,
			EventID:       input.EventID,
			WalletAddress: wallet,
		})
	}

	added, err := uc.whitelistRepo.AddBulk(ctx, entries)
	if err != nil {
		return nil, err
	}
	return &BulkResult{
		Requested: len(entries),
		Added:     added,
		Skipped:   len(entries) - added,
	}, nil
}

// Remove deletes a whitelist entry.
func (uc *WhitelistUsecase) Remove(ctx context.Context, id uuid.UUID) error {
	return uc.whitelistRepo.Delete(ctx, id)
}

// Check reports whether a wallet is whitelisted for a token.
func (uc *WhitelistUsecase) Check(ctx context.Context, tokenID uuid.UUID, wallet string) (bool, error) {
	if err := ValidateWallet(wallet); err != nil {
		return false, err
	}
	if _, err := uc.tokenRepo.GetByID(ctx, tokenID); err != nil {
		return false, err
	}
	return uc.whitelistRepo.Contains(ctx, tokenID, wallet)
}

// List pages through a token's whitelist.
func (uc *WhitelistUsecase) List(ctx context.Context, tokenID uuid.UUID, page, limit int) ([]*entities.WhitelistEntry, *utils.PaginationMeta, error) {
	params := utils.GetPaginationParams(page, limit)
	entries, total, err := uc.whitelistRepo.ListByToken(ctx, tokenID, params.Limit, params.CalculateOffset())
	if err != nil {
		return nil, nil, err
	}
	meta := utils.CalculateMeta(total, params.Page, params.Limit)
	return entries, &meta, nil
}

func (uc *WhitelistUsecase) validateScope(tokenID, eventID *uuid.UUID) error {
	// Exactly one scope: a row binds to a token or to a whole event.
	if (tokenID == nil) == (eventID == nil) {
		return errors.ErrInvalidInput
	}
	return nil
}
