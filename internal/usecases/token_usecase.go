package usecases

import (
	"context"

	"github.com/google/uuid"
	"claimdrop.backend/internal/domain/entities"
	"claimdrop.backend/internal/domain/errors"
	domainRepos "claimdrop.backend/internal/domain/repositories"
	"claimdrop.backend/internal/infrastructure/solana"
	"claimdrop.backend/pkg/utils"
)

// TokenUsecase registers and serves credential tokens. Minting itself is an
// external collaborator; this service only records already-minted credentials
// and runs their claim lifecycle.
type TokenUsecase struct {
	tokenRepo domainRepos.TokenRepository
	claimRepo domainRepos.ClaimRepository
}

// NewTokenUsecase creates the token flow.
func NewTokenUsecase(tokenRepo domainRepos.TokenRepository, claimRepo domainRepos.ClaimRepository) *TokenUsecase {
	return &TokenUsecase{tokenRepo: tokenRepo, claimRepo: claimRepo}
}

// Register records a minted credential so it becomes claimable.
func (uc *TokenUsecase) Register(ctx context.Context, creatorAddress string, input entities.RegisterTokenInput) (*entities.Token, error) {
	if err := ValidateWallet(creatorAddress); err != nil {
		return nil, err
	}
	if _, err := solana.ParsePublicKey(input.MintAddress); err != nil {
		return nil, errors.BadRequest("invalid mint address")
	}
	if input.Supply <= 0 {
		return nil, errors.BadRequest("supply must be positive")
	}
	if input.Decimals < 0 || input.Decimals > 9 {
		return nil, errors.BadRequest("decimals out of range")
	}

	token := &entities.Token{
		CreatorAddress:   creatorAddress,
		Name:             input.Name,
		Symbol:           input.Symbol,
		Description:      input.Description,
		IconURL:          input.IconURL,
		MintAddress:      input.MintAddress,
		Decimals:         input.Decimals,
		Supply:           input.Supply,
		ExpiryDate:       input.ExpiryDate,
		WhitelistEnabled: input.WhitelistEnabled,
		IsCompressed:     input.IsCompressed,
		EventID:          input.EventID,
	}
	if err := uc.tokenRepo.Create(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

// Get returns one token.
func (uc *TokenUsecase) Get(ctx context.Context, id uuid.UUID) (*entities.Token, error) {
	return uc.tokenRepo.GetByID(ctx, id)
}

// List pages through a creator's tokens; empty creator lists all.
func (uc *TokenUsecase) List(ctx context.Context, creatorAddress string, page, limit int) ([]*entities.Token, *utils.PaginationMeta, error) {
	params := utils.GetPaginationParams(page, limit)
	tokens, total, err := uc.tokenRepo.List(ctx, creatorAddress, params.Limit, params.CalculateOffset())
	if err != nil {
		return nil, nil, err
	}
	meta := utils.CalculateMeta(total, params.Page, params.Limit)
	return tokens, &meta, nil
}

// Claims pages through a token's claims.
func (uc *TokenUsecase) Claims(ctx context.Context, tokenID uuid.UUID, page, limit int) ([]*entities.TokenClaim, *utils.PaginationMeta, error) {
	if _, err := uc.tokenRepo.GetByID(ctx, tokenID); err != nil {
		return nil, nil, err
	}
	params := utils.GetPaginationParams(page, limit)
	claims, total, err := uc.claimRepo.ListByToken(ctx, tokenID, params.Limit, params.CalculateOffset())
	if err != nil {
		return nil, nil, err
	}
	meta := utils.CalculateMeta(total, params.Page, params.Limit)
	return claims, &meta, nil
}
