package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"claimdrop.backend/internal/domain/entities"
	domainerrors "claimdrop.backend/internal/domain/errors"
	"claimdrop.backend/internal/infrastructure/models"
)

// ClaimRepository implements token-claim data operations.
type ClaimRepository struct {
	db *gorm.DB
}

// NewClaimRepository creates a new claim repository.
func NewClaimRepository(db *gorm.DB) *ClaimRepository {
	return &ClaimRepository{db: db}
}

// Create inserts a claim row. A violation of the (token_id, wallet_address)
// unique index maps to ErrAlreadyClaimed; this is what makes concurrent
// finalizations for the same pair collapse to exactly one winner.
func (r *ClaimRepository) Create(ctx context.Context, claim *entities.TokenClaim) error {
	if claim.ID == uuid.Nil {
		claim.ID = uuid.New()
	}

	m := &models.TokenClaim{
		ID:            claim.ID,
		TokenID:       claim.TokenID,
		WalletAddress: claim.WalletAddress,
		Status:        string(claim.Status),
		ClaimedAt:     claim.ClaimedAt,
		CreatedAt:     claim.CreatedAt,
		UpdatedAt:     claim.UpdatedAt,
	}
	if claim.TransactionID.Valid {
		val := claim.TransactionID.String
		m.TransactionID = &val
	}

	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyClaimed
		}
		return err
	}
	claim.ID = m.ID
	return nil
}

// Complete marks the pair's PENDING claim COMPLETED, or inserts a COMPLETED
// row when no pending claim exists. At most one caller can win: the update
// matches only while the row is still PENDING, and the fallback insert hits
// the unique index.
func (r *ClaimRepository) Complete(ctx context.Context, claim *entities.TokenClaim) error {
	db := GetDB(ctx, r.db)

	updates := map[string]interface{}{
		"status":     string(entities.ClaimStatusCompleted),
		"claimed_at": claim.ClaimedAt,
		"updated_at": time.Now(),
	}
	if claim.TransactionID.Valid {
		updates["transaction_id"] = claim.TransactionID.String
	}

	res := db.WithContext(ctx).Model(&models.TokenClaim{}).
		Where("token_id = ? AND wallet_address = ? AND status = ?",
			claim.TokenID, claim.WalletAddress, string(entities.ClaimStatusPending)).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		var m models.TokenClaim
		if err := db.WithContext(ctx).
			Where("token_id = ? AND wallet_address = ?", claim.TokenID, claim.WalletAddress).
			First(&m).Error; err != nil {
			return err
		}
		claim.ID = m.ID
		claim.Status = entities.ClaimStatusCompleted
		return nil
	}

	// No pending row to upgrade; either this pair never built a claim or it
	// already completed. Create settles which via the unique index.
	claim.Status = entities.ClaimStatusCompleted
	return r.Create(ctx, claim)
}

// GetByTokenAndWallet gets the claim for a (token, wallet) pair.
func (r *ClaimRepository) GetByTokenAndWallet(ctx context.Context, tokenID uuid.UUID, wallet string) (*entities.TokenClaim, error) {
	var m models.TokenClaim
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Where("token_id = ? AND wallet_address = ?", tokenID, wallet).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toClaimEntity(&m), nil
}

// GetBySignature gets a claim by its transfer signature.
func (r *ClaimRepository) GetBySignature(ctx context.Context, signature string) (*entities.TokenClaim, error) {
	var m models.TokenClaim
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Where("transaction_id = ?", signature).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toClaimEntity(&m), nil
}

// HasCompleted reports whether a COMPLETED claim exists for the pair.
func (r *ClaimRepository) HasCompleted(ctx context.Context, tokenID uuid.UUID, wallet string) (bool, error) {
	var count int64
	db := GetDB(ctx, r.db)
	err := db.WithContext(ctx).Model(&models.TokenClaim{}).
		Where("token_id = ? AND wallet_address = ? AND status = ?", tokenID, wallet, string(entities.ClaimStatusCompleted)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountCompleted counts COMPLETED claims for a token.
func (r *ClaimRepository) CountCompleted(ctx context.Context, tokenID uuid.UUID) (int64, error) {
	var count int64
	db := GetDB(ctx, r.db)
	err := db.WithContext(ctx).Model(&models.TokenClaim{}).
		Where("token_id = ? AND status = ?", tokenID, string(entities.ClaimStatusCompleted)).
		Count(&count).Error
	return count, err
}

// ListByToken lists claims for a token with pagination.
func (r *ClaimRepository) ListByToken(ctx context.Context, tokenID uuid.UUID, limit, offset int) ([]*entities.TokenClaim, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.TokenClaim{}).
		Where("token_id = ?", tokenID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.TokenClaim
	if err := r.db.WithContext(ctx).
		Where("token_id = ?", tokenID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	claims := make([]*entities.TokenClaim, 0, len(ms))
	for i := range ms {
		claims = append(claims, toClaimEntity(&ms[i]))
	}
	return claims, total, nil
}

// DeleteStalePending removes PENDING rows older than the cutoff. A stale
// pending row would otherwise hold the (token_id, wallet_address) unique slot
// and block the wallet from ever retrying.
func (r *ClaimRepository) DeleteStalePending(ctx context.Context, olderThan time.Time, limit int) (int64, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&models.TokenClaim{}).
		Where("status = ? AND created_at < ?", string(entities.ClaimStatusPending), olderThan).
		Order("created_at ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	res := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.TokenClaim{})
	return res.RowsAffected, res.Error
}

func toClaimEntity(m *models.TokenClaim) *entities.TokenClaim {
	return &entities.TokenClaim{
		ID:            m.ID,
		TokenID:       m.TokenID,
		WalletAddress: m.WalletAddress,
		TransactionID: null.StringFromPtr(m.TransactionID),
		Status:        entities.ClaimStatus(m.Status),
		ClaimedAt:     m.ClaimedAt,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// isUniqueViolation matches duplicate-key errors across postgres (lib/pq
// 23505) and sqlite used in tests.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "SQLSTATE 23505")
}
