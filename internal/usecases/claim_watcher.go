package usecases

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"claimdrop.backend/internal/domain/entities"
	domainerrors "claimdrop.backend/internal/domain/errors"
	"claimdrop.backend/internal/infrastructure/solana"
	"claimdrop.backend/internal/observability"
	"claimdrop.backend/pkg/logger"
	"claimdrop.backend/pkg/refkey"
)

// DefaultAwaitTimeout bounds one watch session. Past it the claim is reported
// still pending rather than spinning; the client may call again.
const DefaultAwaitTimeout = 90 * time.Second

// ClaimWatcher waits for a claim transaction to land. It subscribes to the
// derived reference account over WebSocket and, on any touch, resolves the
// newest signature mentioning the reference and hands it to finalization.
// Sessions live only as long as their request context; an abandoned scan
// needs no cleanup.
type ClaimWatcher struct {
	rpc      solana.RPCClient
	ws       solana.WSClient
	verify   *VerifyUsecase
	sessions claimSessions
	timeout  time.Duration
}

// NewClaimWatcher creates a watcher. timeout <= 0 selects the default.
func NewClaimWatcher(rpc solana.RPCClient, ws solana.WSClient, verify *VerifyUsecase, sessions claimSessions, timeout time.Duration) *ClaimWatcher {
	if timeout <= 0 {
		timeout = DefaultAwaitTimeout
	}
	return &ClaimWatcher{rpc: rpc, ws: ws, verify: verify, sessions: sessions, timeout: timeout}
}

// AwaitOutput reports how a watch session ended. When nothing landed,
// SessionActive tells the client whether its build session is still open or
// it should rescan for a fresh transaction.
type AwaitOutput struct {
	Landed        bool                     `json:"landed"`
	SessionActive bool                     `json:"sessionActive"`
	Claim         *entities.CommittedClaim `json:"claim,omitempty"`
}

// Await blocks until the claim for (token, account) lands, the timeout
// passes, or ctx is cancelled. Finalization is delegated to VerifyUsecase,
// so Await inherits its idempotency.
func (w *ClaimWatcher) Await(ctx context.Context, tokenID uuid.UUID, account string) (*AwaitOutput, error) {
	if err := ValidateWallet(account); err != nil {
		return nil, err
	}

	reference, err := refkey.DeriveBase58(tokenID.String(), account)
	if err != nil {
		return nil, err
	}

	// The parent stays usable for the session lookup after the watch window
	// itself has expired.
	parent := ctx
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	observability.Default.WatcherSessionsActive.Inc()
	defer observability.Default.WatcherSessionsActive.Dec()

	// The transfer may have landed before the subscription is live; check
	// once up front.
	if committed, err := w.tryResolve(ctx, tokenID, reference); err == nil && committed != nil {
		return &AwaitOutput{Landed: true, Claim: committed}, nil
	} else if isTerminalClaimError(err) {
		return nil, err
	}

	notifications, unsubscribe, err := w.ws.SubscribeAccount(ctx, reference)
	if err != nil {
		// Degrade to polling when the subscription cannot be established.
		logger.Warn(ctx, "reference subscription failed, polling instead",
			zap.String("reference", reference), zap.Error(err))
		return w.poll(ctx, parent, tokenID, reference)
	}
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			observability.Default.WatcherTimeoutsTotal.Inc()
			return &AwaitOutput{Landed: false, SessionActive: w.sessionLive(parent, reference)}, nil
		case _, ok := <-notifications:
			if !ok {
				return w.poll(ctx, parent, tokenID, reference)
			}
			committed, err := w.tryResolve(ctx, tokenID, reference)
			if err != nil {
				if isTerminalClaimError(err) {
					return nil, err
				}
				continue
			}
			if committed != nil {
				return &AwaitOutput{Landed: true, Claim: committed}, nil
			}
		}
	}
}

// CheckNow is the manual fallback: one signature lookup and finalization
// attempt, no waiting.
func (w *ClaimWatcher) CheckNow(ctx context.Context, tokenID uuid.UUID, account string) (*AwaitOutput, error) {
	if err := ValidateWallet(account); err != nil {
		return nil, err
	}
	reference, err := refkey.DeriveBase58(tokenID.String(), account)
	if err != nil {
		return nil, err
	}

	committed, err := w.tryResolve(ctx, tokenID, reference)
	if err != nil {
		if isTerminalClaimError(err) {
			return nil, err
		}
		return &AwaitOutput{Landed: false, SessionActive: w.sessionLive(ctx, reference)}, nil
	}
	if committed == nil {
		return &AwaitOutput{Landed: false, SessionActive: w.sessionLive(ctx, reference)}, nil
	}
	return &AwaitOutput{Landed: true, Claim: committed}, nil
}

// poll falls back to periodic signature lookups for the rest of the session.
func (w *ClaimWatcher) poll(ctx, parent context.Context, tokenID uuid.UUID, reference string) (*AwaitOutput, error) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			observability.Default.WatcherTimeoutsTotal.Inc()
			return &AwaitOutput{Landed: false, SessionActive: w.sessionLive(parent, reference)}, nil
		case <-ticker.C:
			committed, err := w.tryResolve(ctx, tokenID, reference)
			if err != nil {
				if isTerminalClaimError(err) {
					return nil, err
				}
				continue
			}
			if committed != nil {
				return &AwaitOutput{Landed: true, Claim: committed}, nil
			}
		}
	}
}

// tryResolve looks up the newest signature mentioning the reference and runs
// finalization on it. (nil, nil) means nothing landed yet.
func (w *ClaimWatcher) tryResolve(ctx context.Context, tokenID uuid.UUID, reference string) (*entities.CommittedClaim, error) {
	sigs, err := w.rpc.GetSignaturesForAddress(ctx, reference, &solana.SignaturesOpts{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(sigs) == 0 {
		return nil, nil
	}
	if sigs[0].Err != nil {
		// The landed transaction failed; nothing to finalize.
		return nil, nil
	}
	return w.verify.Finalize(ctx, tokenID, sigs[0].Signature)
}

// sessionLive reports whether the build session behind a reference is still
// resolvable. Expired or never-created sessions read as inactive.
func (w *ClaimWatcher) sessionLive(ctx context.Context, reference string) bool {
	session, err := w.sessions.GetSession(ctx, reference)
	return err == nil && session != nil
}

// isTerminalClaimError reports whether a finalize failure cannot heal with
// another observation (guard violations), as opposed to propagation delays.
func isTerminalClaimError(err error) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, domainerrors.ErrTokenExpired),
		errors.Is(err, domainerrors.ErrSupplyExhausted),
		errors.Is(err, domainerrors.ErrNotWhitelisted),
		errors.Is(err, domainerrors.ErrAlreadyClaimed),
		errors.Is(err, domainerrors.ErrInvalidWalletAddress),
		errors.Is(err, domainerrors.ErrTokenNotFound):
		return true
	}
	return false
}
