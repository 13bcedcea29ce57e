package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"claimdrop.backend/internal/domain/entities"
	domainerrors "claimdrop.backend/internal/domain/errors"
	"claimdrop.backend/internal/infrastructure/models"
)

// WhitelistRepository implements whitelist data operations.
type WhitelistRepository struct {
	db *gorm.DB
}

// NewWhitelistRepository creates a new whitelist repository.
func NewWhitelistRepository(db *gorm.DB) *WhitelistRepository {
	return &WhitelistRepository{db: db}
}

// Add inserts a single whitelist entry.
func (r *WhitelistRepository) Add(ctx context.Context, entry *entities.WhitelistEntry) error {
	if entry.TokenID == nil && entry.EventID == nil {
		return domainerrors.ErrInvalidInput
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}

	m := &models.WhitelistEntry{
		ID:            entry.ID,
		TokenID:       entry.TokenID,
		EventID:       entry.EventID,
		WalletAddress: entry.WalletAddress,
		CreatedAt:     entry.CreatedAt,
	}

	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// AddBulk inserts many entries, skipping duplicates. Returns how many rows
// were actually inserted.
func (r *WhitelistRepository) AddBulk(ctx context.Context, entries []*entities.WhitelistEntry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	now := time.Now()
	ms := make([]models.WhitelistEntry, 0, len(entries))
	for _, e := range entries {
		if e.TokenID == nil && e.EventID == nil {
			return 0, domainerrors.ErrInvalidInput
		}
		id := e.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		ms = append(ms, models.WhitelistEntry{
			ID:            id,
			TokenID:       e.TokenID,
			EventID:       e.EventID,
			WalletAddress: e.WalletAddress,
			CreatedAt:     now,
		})
	}

	db := GetDB(ctx, r.db)
	result := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&ms)
	if result.Error != nil {
		return 0, result.Error
	}
	return int(result.RowsAffected), nil
}

// Delete removes a whitelist entry by ID.
func (r *WhitelistRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := GetDB(ctx, r.db)
	result := db.WithContext(ctx).Where("id = ?", id).Delete(&models.WhitelistEntry{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// Contains reports whether the wallet is whitelisted for the token, either
// directly or through the token's event.
func (r *WhitelistRepository) Contains(ctx context.Context, tokenID uuid.UUID, wallet string) (bool, error) {
	db := GetDB(ctx, r.db)

	var count int64
	err := db.WithContext(ctx).Model(&models.WhitelistEntry{}).
		Where("token_id = ? AND wallet_address = ?", tokenID, wallet).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}

	// Event-level entries cover every token of that event.
	var token models.Token
	if err := db.WithContext(ctx).Select("event_id").Where("id = ?", tokenID).First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	if token.EventID == nil {
		return false, nil
	}

	err = db.WithContext(ctx).Model(&models.WhitelistEntry{}).
		Where("event_id = ? AND wallet_address = ?", *token.EventID, wallet).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListByToken lists whitelist entries for a token with pagination.
func (r *WhitelistRepository) ListByToken(ctx context.Context, tokenID uuid.UUID, limit, offset int) ([]*entities.WhitelistEntry, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.WhitelistEntry{}).
		Where("token_id = ?", tokenID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.WhitelistEntry
	if err := r.db.WithContext(ctx).
		Where("token_id = ?", tokenID).
		Order("created_at ASC").
		Limit(limit).Offset(offset).
		Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	entries := make([]*entities.WhitelistEntry, 0, len(ms))
	for i := range ms {
		m := ms[i]
		entries = append(entries, &entities.WhitelistEntry{
			ID:            m.ID,
			TokenID:       m.TokenID,
			EventID:       m.EventID,
			WalletAddress: m.WalletAddress,
			CreatedAt:     m.CreatedAt,
		})
	}
	return entries, total, nil
}
