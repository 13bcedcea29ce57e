package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
	"claimdrop.backend/pkg/logger"
)

const (
	// sweepBatchSize caps how many rows one tick deletes so a large backlog
	// cannot starve the connection pool.
	sweepBatchSize = 100

	// pendingTTL is how long a PENDING claim may sit before it is considered
	// abandoned. Claim sessions live 10 minutes in redis; anything pending
	// well past that will never finalize.
	pendingTTL = 30 * time.Minute
)

type pendingClaimSweeper interface {
	DeleteStalePending(ctx context.Context, olderThan time.Time, limit int) (int64, error)
}

// ClaimExpiryJob periodically deletes abandoned PENDING claims so their
// (token, wallet) unique slot frees up for a retry.
type ClaimExpiryJob struct {
	repo     pendingClaimSweeper
	interval time.Duration
	ttl      time.Duration
	stop     chan struct{}
}

func NewClaimExpiryJob(repo pendingClaimSweeper) *ClaimExpiryJob {
	return &ClaimExpiryJob{
		repo:     repo,
		interval: 30 * time.Second,
		ttl:      pendingTTL,
		stop:     make(chan struct{}),
	}
}

// Start runs the sweep loop until the context is cancelled or Stop is called.
func (j *ClaimExpiryJob) Start(ctx context.Context) {
	logger.Info(ctx, "starting claim expiry job", zap.Duration("interval", j.interval))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "claim expiry job stopped", zap.String("cause", "context cancelled"))
			return
		case <-j.stop:
			logger.Info(ctx, "claim expiry job stopped")
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *ClaimExpiryJob) Stop() {
	close(j.stop)
}

func (j *ClaimExpiryJob) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-j.ttl)
	deleted, err := j.repo.DeleteStalePending(ctx, cutoff, sweepBatchSize)
	if err != nil {
		logger.Error(ctx, "claim expiry sweep failed", zap.Error(err))
		return
	}
	if deleted > 0 {
		logger.Info(ctx, "expired stale pending claims", zap.Int64("deleted", deleted))
	}
}
