package repositories

import "context"

// UnitOfWork scopes repository calls to one database transaction.
type UnitOfWork interface {
	// Do executes fn within a transaction; the transactional handle travels
	// in the returned context and is picked up by the repositories.
	Do(ctx context.Context, fn func(ctx context.Context) error) error

	// WithLock marks the context so reads inside the transaction take a
	// row-level lock (SELECT ... FOR UPDATE on postgres, no-op on sqlite).
	WithLock(ctx context.Context) context.Context
}
