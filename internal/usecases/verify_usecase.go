package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"claimdrop.backend/internal/domain/entities"
	"claimdrop.backend/internal/domain/errors"
	domainRepos "claimdrop.backend/internal/domain/repositories"
	"claimdrop.backend/internal/infrastructure/solana"
	"claimdrop.backend/internal/observability"
	"claimdrop.backend/pkg/logger"
	"claimdrop.backend/pkg/redis"
	"claimdrop.backend/pkg/refkey"
)

// claimSessions is the slice of the session store the claim engine uses: the
// watcher reads sessions to tell an open attempt from an expired one, and the
// finalizer retires the session once the claim settles.
type claimSessions interface {
	GetSession(ctx context.Context, reference string) (*redis.ClaimSession, error)
	DeleteSession(ctx context.Context, reference string) error
}

// VerifyUsecase finalizes claims: it checks a transfer signature on chain and
// commits the claim exactly once.
type VerifyUsecase struct {
	tokenRepo  domainRepos.TokenRepository
	claimRepo  domainRepos.ClaimRepository
	guard      *ClaimGuard
	uow        domainRepos.UnitOfWork
	rpc        solana.RPCClient
	sessions   claimSessions
	service    solana.PublicKey
	explorerFn func(signature string) string
}

// NewVerifyUsecase creates the finalizer. cluster selects the explorer URL
// suffix ("" for mainnet, "devnet" etc. otherwise).
func NewVerifyUsecase(
	tokenRepo domainRepos.TokenRepository,
	claimRepo domainRepos.ClaimRepository,
	guard *ClaimGuard,
	uow domainRepos.UnitOfWork,
	rpc solana.RPCClient,
	sessions claimSessions,
	service solana.PublicKey,
	cluster string,
) *VerifyUsecase {
	explorerFn := func(sig string) string {
		if cluster == "" || cluster == "mainnet-beta" {
			return fmt.Sprintf("https://explorer.solana.com/tx/%s", sig)
		}
		return fmt.Sprintf("https://explorer.solana.com/tx/%s?cluster=%s", sig, cluster)
	}
	return &VerifyUsecase{
		tokenRepo:  tokenRepo,
		claimRepo:  claimRepo,
		guard:      guard,
		uow:        uow,
		rpc:        rpc,
		sessions:   sessions,
		service:    service,
		explorerFn: explorerFn,
	}
}

// Finalize verifies the transfer identified by signature and commits the
// claim. The client is trusted for the signature string only; everything
// else (claimant, success, token) is read from the chain. Safe to call any
// number of times: duplicates collapse to ErrAlreadyClaimed.
func (uc *VerifyUsecase) Finalize(ctx context.Context, tokenID uuid.UUID, signature string) (*entities.CommittedClaim, error) {
	token, err := uc.tokenRepo.GetByID(ctx, tokenID)
	if err != nil {
		observability.RecordFinalization("token_not_found")
		return nil, err
	}

	tx, err := uc.rpc.GetTransaction(ctx, signature)
	if err != nil {
		observability.RecordFinalization("rpc_error")
		return nil, fmt.Errorf("fetch transaction: %w", err)
	}
	if tx == nil {
		// Propagation delay is normal at confirmed commitment; retryable.
		observability.RecordFinalization("tx_not_found")
		return nil, errors.ErrTransactionNotFound
	}
	if tx.Failed {
		observability.RecordFinalization("tx_failed")
		return nil, fmt.Errorf("transaction %s failed on chain", signature)
	}

	claimant, err := uc.extractClaimant(tx)
	if err != nil {
		observability.RecordFinalization("no_claimant")
		return nil, err
	}

	// Authoritative guard run against the wallet the chain says signed.
	if err := uc.guard.CanClaim(ctx, token, claimant); err != nil {
		observability.RecordFinalization("denied")
		return nil, err
	}

	claim := &entities.TokenClaim{
		TokenID:       token.ID,
		WalletAddress: claimant,
		TransactionID: null.StringFrom(signature),
		Status:        entities.ClaimStatusCompleted,
		ClaimedAt:     time.Now(),
	}

	// One unit of work: the pending-row upgrade and the conditional counter
	// bump land or roll back together. Under a concurrent duplicate, exactly
	// one completion survives.
	err = uc.uow.Do(ctx, func(txCtx context.Context) error {
		if err := uc.claimRepo.Complete(txCtx, claim); err != nil {
			return err
		}
		return uc.tokenRepo.IncrementClaimed(txCtx, token.ID)
	})
	if err != nil {
		observability.RecordFinalization("commit_failed")
		return nil, err
	}

	// The claim settled; the build session has nothing left to resolve.
	if reference, derr := refkey.DeriveBase58(token.ID.String(), claimant); derr == nil {
		if err := uc.sessions.DeleteSession(ctx, reference); err != nil {
			logger.Warn(ctx, "failed to delete claim session",
				zap.String("reference", reference), zap.Error(err))
		}
	}

	logger.Info(ctx, "claim finalized",
		zap.String("token_id", token.ID.String()),
		zap.String("wallet", claimant),
		zap.String("signature", signature))
	observability.RecordFinalization("ok")

	return &entities.CommittedClaim{
		Claim:       claim,
		Signature:   signature,
		ExplorerURL: uc.explorerFn(signature),
	}, nil
}

// extractClaimant recovers the claimant wallet from a fetched transaction.
// Account keys list signers first; the first signer that is not the service
// identity is the wallet that countersigned the claim. A header without a
// usable signer count is rejected outright rather than guessed at, since the
// keys past the signer section are programs and readonly accounts.
func (uc *VerifyUsecase) extractClaimant(tx *solana.ConfirmedTransaction) (string, error) {
	if tx.NumSigners <= 0 || tx.NumSigners > len(tx.AccountKeys) {
		return "", fmt.Errorf("transaction %s has a malformed signer header", tx.Signature)
	}
	serviceStr := uc.service.String()
	for _, key := range tx.AccountKeys[:tx.NumSigners] {
		if key != serviceStr {
			return key, nil
		}
	}
	return "", fmt.Errorf("no claimant signer in transaction %s", tx.Signature)
}

// CheckClaimed reports whether a wallet holds a completed claim for a token.
func (uc *VerifyUsecase) CheckClaimed(ctx context.Context, tokenID uuid.UUID, wallet string) (bool, error) {
	if err := ValidateWallet(wallet); err != nil {
		return false, err
	}
	if _, err := uc.tokenRepo.GetByID(ctx, tokenID); err != nil {
		return false, err
	}
	return uc.claimRepo.HasCompleted(ctx, tokenID, wallet)
}
