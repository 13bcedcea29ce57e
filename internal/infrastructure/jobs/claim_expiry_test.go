package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"claimdrop.backend/pkg/logger"
)

type sweeperStub struct {
	deleted    int64
	err        error
	calls      int
	lastCutoff time.Time
	lastLimit  int
}

func (s *sweeperStub) DeleteStalePending(_ context.Context, olderThan time.Time, limit int) (int64, error) {
	s.calls++
	s.lastCutoff = olderThan
	s.lastLimit = limit
	return s.deleted, s.err
}

func newTestJob(repo *sweeperStub) *ClaimExpiryJob {
	logger.Init("test")
	return &ClaimExpiryJob{repo: repo, interval: time.Millisecond, ttl: pendingTTL, stop: make(chan struct{})}
}

func TestClaimExpiryJob_Sweep(t *testing.T) {
	repo := &sweeperStub{deleted: 3}
	job := newTestJob(repo)

	job.sweep(context.Background())

	require.Equal(t, 1, repo.calls)
	require.Equal(t, sweepBatchSize, repo.lastLimit)
	require.WithinDuration(t, time.Now().Add(-pendingTTL), repo.lastCutoff, time.Second)
}

func TestClaimExpiryJob_SweepErrorDoesNotPanic(t *testing.T) {
	repo := &sweeperStub{err: errors.New("db down")}
	job := newTestJob(repo)

	job.sweep(context.Background())
	require.Equal(t, 1, repo.calls)
}

func TestClaimExpiryJob_StopsByContext(t *testing.T) {
	job := newTestJob(&sweeperStub{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("job did not stop on context cancel")
	}
}

func TestClaimExpiryJob_StopsByStopChannel(t *testing.T) {
	job := newTestJob(&sweeperStub{})

	done := make(chan struct{})
	go func() {
		job.Start(context.Background())
		close(done)
	}()
	job.Stop()

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("job did not stop on Stop()")
	}
}
