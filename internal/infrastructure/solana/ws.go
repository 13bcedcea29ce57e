package solana

import "context"

// WSClient is the subscription surface the confirmation watcher uses. One
// subscription per claim session, keyed by the derived reference account.
type WSClient interface {
	// SubscribeAccount streams change notifications for a public key. The
	// channel closes when the client shuts down; callers drop the
	// subscription by calling Unsubscribe or cancelling their context.
	SubscribeAccount(ctx context.Context, pubkey string) (<-chan AccountNotification, func(), error)

	// Close closes the connection and all subscriptions.
	Close() error
}

// AccountNotification signals that the watched account was touched. For a
// reference key any touch means the claim transaction landed; the watcher
// resolves the actual signature over HTTP RPC.
type AccountNotification struct {
	Slot     int64
	Lamports uint64
}
