package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"claimdrop.backend/internal/domain/entities"
	domainerrors "claimdrop.backend/internal/domain/errors"
	"claimdrop.backend/internal/infrastructure/models"
)

// TokenRepository implements token data operations.
type TokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository creates a new token repository.
func NewTokenRepository(db *gorm.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// Create persists a new token.
func (r *TokenRepository) Create(ctx context.Context, token *entities.Token) error {
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	m := toTokenModel(token)

	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	token.ID = m.ID
	return nil
}

// GetByID gets a token by ID.
func (r *TokenRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Token, error) {
	var m models.Token
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrTokenNotFound
		}
		return nil, err
	}
	return toTokenEntity(&m), nil
}

// GetByMintAddress gets a token by its mint address.
func (r *TokenRepository) GetByMintAddress(ctx context.Context, mint string) (*entities.Token, error) {
	var m models.Token
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Where("mint_address = ?", mint).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrTokenNotFound
		}
		return nil, err
	}
	return toTokenEntity(&m), nil
}

// List lists tokens for a creator with pagination.
func (r *TokenRepository) List(ctx context.Context, creatorAddress string, limit, offset int) ([]*entities.Token, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Token{})
	if creatorAddress != "" {
		query = query.Where("creator_address = ?", creatorAddress)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.Token
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	tokens := make([]*entities.Token, 0, len(ms))
	for i := range ms {
		tokens = append(tokens, toTokenEntity(&ms[i]))
	}
	return tokens, total, nil
}

// IncrementClaimed bumps the claimed counter in a single conditional UPDATE.
// The claimed < supply guard lives in the statement itself so concurrent
// finalizations cannot lose updates or overshoot the supply.
func (r *TokenRepository) IncrementClaimed(ctx context.Context, id uuid.UUID) error {
	db := GetDB(ctx, r.db)
	result := db.WithContext(ctx).Model(&models.Token{}).
		Where("id = ? AND claimed < supply", id).
		UpdateColumn("claimed", gorm.Expr("claimed + 1"))

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Either the token is gone or the supply ran out between the guard
		// check and here; distinguish for the caller.
		var count int64
		if err := db.WithContext(ctx).Model(&models.Token{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domainerrors.ErrTokenNotFound
		}
		return domainerrors.ErrSupplyExhausted
	}
	return nil
}

func toTokenModel(t *entities.Token) *models.Token {
	return &models.Token{
		ID:               t.ID,
		CreatorAddress:   t.CreatorAddress,
		Name:             t.Name,
		Symbol:           t.Symbol,
		Description:      t.Description,
		IconURL:          t.IconURL,
		MintAddress:      t.MintAddress,
		Decimals:         t.Decimals,
		Supply:           t.Supply,
		Claimed:          t.Claimed,
		ExpiryDate:       t.ExpiryDate,
		WhitelistEnabled: t.WhitelistEnabled,
		IsCompressed:     t.IsCompressed,
		EventID:          t.EventID,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
}

func toTokenEntity(m *models.Token) *entities.Token {
	return &entities.Token{
		ID:               m.ID,
		CreatorAddress:   m.CreatorAddress,
		Name:             m.Name,
		Symbol:           m.Symbol,
		Description:      m.Description,
		IconURL:          m.IconURL,
		MintAddress:      m.MintAddress,
		Decimals:         m.Decimals,
		Supply:           m.Supply,
		Claimed:          m.Claimed,
		ExpiryDate:       m.ExpiryDate,
		WhitelistEnabled: m.WhitelistEnabled,
		IsCompressed:     m.IsCompressed,
		EventID:          m.EventID,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}
