package solana

import "context"

// RPCClient is the chain surface the claim engine depends on.
type RPCClient interface {
	// GetTransaction fetches a confirmed transaction by signature. Returns
	// (nil, nil) when the signature is not found yet.
	GetTransaction(ctx context.Context, signature string) (*ConfirmedTransaction, error)

	// GetSignaturesForAddress lists recent signatures mentioning an address,
	// newest first.
	GetSignaturesForAddress(ctx context.Context, address string, opts *SignaturesOpts) ([]SignatureInfo, error)

	// GetAccountInfo fetches an account. Returns (nil, nil) when the account
	// does not exist.
	GetAccountInfo(ctx context.Context, pubkey string) (*AccountInfo, error)

	// GetLatestBlockhash returns a recent blockhash for transaction assembly.
	GetLatestBlockhash(ctx context.Context) (string, error)

	// SendTransaction submits a fully signed base64 transaction and returns
	// its signature.
	SendTransaction(ctx context.Context, txBase64 string) (string, error)

	// GetTokenAccountBalance returns the base-unit balance of a token account.
	GetTokenAccountBalance(ctx context.Context, pubkey string) (uint64, error)
}

// ConfirmedTransaction is a fetched transaction with the fields finalization needs.
// The claimant is recovered from AccountKeys: signer keys come first, so the
// first key that is not the service identity is the wallet that signed.
type ConfirmedTransaction struct {
	Slot        int64
	Signature   string
	BlockTime   int64
	Failed      bool
	LogMessages []string
	AccountKeys []string
	// NumSigners is the message header's required-signature count.
	NumSigners int
}

// SignatureInfo is one entry of getSignaturesForAddress.
type SignatureInfo struct {
	Signature string
	Slot      int64
	BlockTime *int64
	Err       interface{}
}

// SignaturesOpts narrows a signature listing.
type SignaturesOpts struct {
	Before string
	Until  string
	Limit  int
}

// AccountInfo is a fetched account.
type AccountInfo struct {
	Lamports   uint64
	Owner      string
	Data       string // base64
	Executable bool
}
