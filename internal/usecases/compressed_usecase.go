package usecases

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"claimdrop.backend/internal/domain/errors"
	"claimdrop.backend/internal/infrastructure/solana"
	"claimdrop.backend/internal/observability"
	"claimdrop.backend/pkg/logger"
)

// Compressed engine states. State is never stored; it is re-derived from the
// chain on every invocation, so a transfer interrupted after any transition
// resumes where it left off.
const (
	StateNoPool               = "NO_POOL"
	StatePoolReady            = "POOL_READY"
	StateHasCompressedBalance = "HAS_COMPRESSED_BALANCE"
	StateTransferred          = "TRANSFERRED"
)

// CompressedUsecase drives ZK-compressed token transfers through the
// NoPool -> PoolReady -> HasCompressedBalance -> Transferred state machine.
// Each transition builds, signs and submits its own transaction. Explicitly
// constructed; no hidden initialization.
type CompressedUsecase struct {
	rpc         solana.RPCClient
	compression solana.CompressionClient
	service     *solana.Keypair
}

// NewCompressedUsecase creates the engine.
func NewCompressedUsecase(rpc solana.RPCClient, compression solana.CompressionClient, service *solana.Keypair) *CompressedUsecase {
	return &CompressedUsecase{rpc: rpc, compression: compression, service: service}
}

// CompressedTransferInput asks for amount base units of mint to reach
// recipient as compressed balance.
type CompressedTransferInput struct {
	MintAddress      string `json:"mintAddress" binding:"required"`
	RecipientAddress string `json:"recipientAddress" binding:"required"`
	Amount           uint64 `json:"amount" binding:"required"`
}

// CompressedTransferOutput reports the final transfer signature and every
// transition this invocation had to perform.
type CompressedTransferOutput struct {
	Signature   string   `json:"signature"`
	Transitions []string `json:"transitions"`
}

// Transfer walks the state machine until the transfer lands. Transient
// failures surface as the typed error of the transition that failed; a
// retried call re-derives state and skips transitions that already took.
func (uc *CompressedUsecase) Transfer(ctx context.Context, input CompressedTransferInput) (*CompressedTransferOutput, error) {
	mint, err := solana.ParsePublicKey(input.MintAddress)
	if err != nil {
		return nil, errors.ErrInvalidInput
	}
	recipient, err := solana.ParsePublicKey(input.RecipientAddress)
	if err != nil {
		return nil, errors.ErrInvalidWalletAddress
	}
	if input.Amount == 0 {
		return nil, errors.ErrInvalidInput
	}

	transitions := make([]string, 0, 3)

	// NoPool -> PoolReady
	pool, err := solana.FindTokenPoolAddress(mint)
	if err != nil {
		return nil, err
	}
	poolInfo, err := uc.rpc.GetAccountInfo(ctx, pool.String())
	if err != nil {
		return nil, fmt.Errorf("pool lookup: %w", err)
	}
	if poolInfo == nil {
		if err := uc.createPool(ctx, pool, mint); err != nil {
			observability.RecordCompressedTransition("create_pool", "error")
			return nil, fmt.Errorf("%w: %v", errors.ErrPoolCreationFailed, err)
		}
		observability.RecordCompressedTransition("create_pool", "ok")
		transitions = append(transitions, "create_pool")
	}

	// PoolReady -> HasCompressedBalance
	accounts, err := uc.compression.GetCompressedTokenAccountsByOwner(ctx, uc.service.PublicKey.String(), mint.String())
	if err != nil {
		return nil, fmt.Errorf("compressed balance lookup: %w", err)
	}
	var compressedBalance uint64
	for _, acc := range accounts {
		compressedBalance += acc.Amount
	}

	if compressedBalance < input.Amount {
		shortfall := input.Amount - compressedBalance
		if err := uc.compress(ctx, pool, mint, shortfall); err != nil {
			observability.RecordCompressedTransition("compress", "error")
			return nil, err
		}
		observability.RecordCompressedTransition("compress", "ok")
		transitions = append(transitions, "compress")

		accounts, err = uc.compression.GetCompressedTokenAccountsByOwner(ctx, uc.service.PublicKey.String(), mint.String())
		if err != nil {
			return nil, fmt.Errorf("compressed balance relookup: %w", err)
		}
	}

	// HasCompressedBalance -> Transferred
	inputs, err := selectInputs(accounts, input.Amount)
	if err != nil {
		return nil, err
	}

	hashes := make([]string, len(inputs))
	rawHashes := make([][]byte, len(inputs))
	for i, acc := range inputs {
		hashes[i] = acc.Hash
		rawHashes[i] = []byte(acc.Hash)
	}

	proof, err := uc.compression.GetValidityProof(ctx, hashes)
	if err != nil || proof == nil {
		observability.RecordCompressedTransition("transfer", "proof_unavailable")
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrProofUnavailable, err)
		}
		return nil, errors.ErrProofUnavailable
	}

	ix := solana.NewCompressedTransferInstruction(
		uc.service.PublicKey, uc.service.PublicKey, recipient, mint,
		input.Amount, rawHashes, proof.Proof)

	signature, err := uc.submit(ctx, []solana.Instruction{ix})
	if err != nil {
		observability.RecordCompressedTransition("transfer", "error")
		return nil, fmt.Errorf("compressed transfer: %w", err)
	}
	observability.RecordCompressedTransition("transfer", "ok")
	transitions = append(transitions, "transfer")

	logger.Info(ctx, "compressed transfer submitted",
		zap.String("mint", input.MintAddress),
		zap.String("recipient", input.RecipientAddress),
		zap.Uint64("amount", input.Amount),
		zap.String("signature", signature),
		zap.Strings("transitions", transitions))

	return &CompressedTransferOutput{Signature: signature, Transitions: transitions}, nil
}

// DeriveState reports the engine's current state for a mint without
// performing any transition.
func (uc *CompressedUsecase) DeriveState(ctx context.Context, mintAddress string) (string, error) {
	mint, err := solana.ParsePublicKey(mintAddress)
	if err != nil {
		return "", errors.ErrInvalidInput
	}

	pool, err := solana.FindTokenPoolAddress(mint)
	if err != nil {
		return "", err
	}
	poolInfo, err := uc.rpc.GetAccountInfo(ctx, pool.String())
	if err != nil {
		return "", err
	}
	if poolInfo == nil {
		return StateNoPool, nil
	}

	accounts, err := uc.compression.GetCompressedTokenAccountsByOwner(ctx, uc.service.PublicKey.String(), mint.String())
	if err != nil {
		return "", err
	}
	if len(accounts) == 0 {
		return StatePoolReady, nil
	}
	return StateHasCompressedBalance, nil
}

func (uc *CompressedUsecase) createPool(ctx context.Context, pool, mint solana.PublicKey) error {
	ix := solana.NewCreateTokenPoolInstruction(uc.service.PublicKey, pool, mint)
	_, err := uc.submit(ctx, []solana.Instruction{ix})
	return err
}

// compress moves shortfall base units from the service's regular ATA into
// the pool, failing early when even the ATA cannot cover it.
func (uc *CompressedUsecase) compress(ctx context.Context, pool, mint solana.PublicKey, shortfall uint64) error {
	sourceATA, err := solana.FindAssociatedTokenAddress(uc.service.PublicKey, mint)
	if err != nil {
		return err
	}

	balance, err := uc.rpc.GetTokenAccountBalance(ctx, sourceATA.String())
	if err != nil {
		return fmt.Errorf("source balance lookup: %w", err)
	}
	if balance < shortfall {
		return errors.ErrInsufficientBalance
	}

	ix := solana.NewCompressInstruction(uc.service.PublicKey, uc.service.PublicKey, sourceATA, pool, mint, shortfall)
	if _, err := uc.submit(ctx, []solana.Instruction{ix}); err != nil {
		return fmt.Errorf("compress: %w", err)
	}
	return nil
}

// submit builds a transaction around the instructions, signs it with the
// service identity and sends it.
func (uc *CompressedUsecase) submit(ctx context.Context, instructions []solana.Instruction) (string, error) {
	blockhash, err := uc.rpc.GetLatestBlockhash(ctx)
	if err != nil {
		return "", fmt.Errorf("fetch blockhash: %w", err)
	}
	tx, err := solana.NewTransaction(uc.service.PublicKey, blockhash, instructions)
	if err != nil {
		return "", err
	}
	if err := tx.PartialSign(uc.service); err != nil {
		return "", err
	}
	return uc.rpc.SendTransaction(ctx, tx.ToBase64())
}

// selectInputs picks the fewest compressed accounts covering amount,
// largest first.
func selectInputs(accounts []solana.CompressedTokenAccount, amount uint64) ([]solana.CompressedTokenAccount, error) {
	sorted := make([]solana.CompressedTokenAccount, len(accounts))
	copy(sorted, accounts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Amount > sorted[j].Amount })

	var total uint64
	selected := make([]solana.CompressedTokenAccount, 0, len(sorted))
	for _, acc := range sorted {
		if total >= amount {
			break
		}
		selected = append(selected, acc)
		total += acc.Amount
	}
	if total < amount {
		return nil, errors.ErrInsufficientBalance
	}
	return selected, nil
}
