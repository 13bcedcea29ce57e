package usecases

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"claimdrop.backend/internal/domain/entities"
	"claimdrop.backend/internal/domain/errors"
	domainRepos "claimdrop.backend/internal/domain/repositories"
	"claimdrop.backend/internal/infrastructure/solana"
	"claimdrop.backend/internal/observability"
	"claimdrop.backend/pkg/logger"
	"claimdrop.backend/pkg/qrsign"
	"claimdrop.backend/pkg/redis"
	"claimdrop.backend/pkg/refkey"
)

const (
	// claimSessionTTL bounds how long a rendered claim screen stays
	// resolvable; after this the attendee rescans.
	claimSessionTTL = 10 * time.Minute

	// qrCodeTTL is the validity window of a signed claim code.
	qrCodeTTL = 5 * time.Minute
)

// ClaimUsecase implements the Solana Pay transaction-request flow: the
// wallet GETs a description, then POSTs its account and receives a partially
// signed transfer to countersign.
type ClaimUsecase struct {
	tokenRepo    domainRepos.TokenRepository
	claimRepo    domainRepos.ClaimRepository
	guard        *ClaimGuard
	rpc          solana.RPCClient
	sessionStore *redis.ClaimSessionStore
	qrCodec      *qrsign.Codec
	service      *solana.Keypair
	serviceLabel string
}

// NewClaimUsecase creates the claim flow.
func NewClaimUsecase(
	tokenRepo domainRepos.TokenRepository,
	claimRepo domainRepos.ClaimRepository,
	guard *ClaimGuard,
	rpc solana.RPCClient,
	sessionStore *redis.ClaimSessionStore,
	qrCodec *qrsign.Codec,
	service *solana.Keypair,
	serviceLabel string,
) *ClaimUsecase {
	return &ClaimUsecase{
		tokenRepo:    tokenRepo,
		claimRepo:    claimRepo,
		guard:        guard,
		rpc:          rpc,
		sessionStore: sessionStore,
		qrCodec:      qrCodec,
		service:      service,
		serviceLabel: serviceLabel,
	}
}

// DescribeOutput is the GET half of the transaction-request protocol.
type DescribeOutput struct {
	Label string `json:"label"`
	Icon  string `json:"icon"`
}

// Describe returns the wallet-facing label and icon for a claim link.
// Read-only and cacheable.
func (uc *ClaimUsecase) Describe(ctx context.Context, tokenID uuid.UUID) (*DescribeOutput, error) {
	token, err := uc.tokenRepo.GetByID(ctx, tokenID)
	if err != nil {
		return nil, err
	}

	label := uc.serviceLabel
	if token.Name != "" {
		label = fmt.Sprintf("Claim %s", token.Name)
	}
	return &DescribeOutput{Label: label, Icon: token.IconURL}, nil
}

// BuildOutput carries the partially signed transaction back to the wallet.
type BuildOutput struct {
	Transaction string `json:"transaction"`
	Message     string `json:"message"`
	Reference   string `json:"reference"`
}

// Build assembles the claim transfer for one wallet: guard check, reference
// derivation, optional ATA creation, memo, and a one-unit SPL transfer with
// the reference threaded through the account list. The service signs as fee
// payer and pool authority; the claimant's signature slot stays open.
func (uc *ClaimUsecase) Build(ctx context.Context, tokenID uuid.UUID, account string) (*BuildOutput, error) {
	token, err := uc.tokenRepo.GetByID(ctx, tokenID)
	if err != nil {
		observability.RecordBuild("token_not_found")
		return nil, err
	}

	if err := uc.guard.CanClaim(ctx, token, account); err != nil {
		observability.RecordBuild("denied")
		return nil, err
	}

	claimant, err := solana.ParsePublicKey(account)
	if err != nil {
		observability.RecordBuild("denied")
		return nil, errors.ErrInvalidWalletAddress
	}
	mint, err := solana.ParsePublicKey(token.MintAddress)
	if err != nil {
		return nil, fmt.Errorf("token %s has malformed mint address: %w", token.ID, err)
	}

	referenceB58, err := refkey.DeriveBase58(token.ID.String(), account)
	if err != nil {
		return nil, err
	}
	reference, err := solana.ParsePublicKey(referenceB58)
	if err != nil {
		return nil, err
	}

	sourceATA, err := solana.FindAssociatedTokenAddress(uc.service.PublicKey, mint)
	if err != nil {
		return nil, err
	}
	destATA, err := solana.FindAssociatedTokenAddress(claimant, mint)
	if err != nil {
		return nil, err
	}

	instructions := make([]solana.Instruction, 0, 3)

	destInfo, err := uc.rpc.GetAccountInfo(ctx, destATA.String())
	if err != nil {
		return nil, fmt.Errorf("check recipient token account: %w", err)
	}
	if destInfo == nil {
		instructions = append(instructions,
			solana.NewCreateAssociatedTokenAccountIdempotentInstruction(uc.service.PublicKey, destATA, claimant, mint))
	}

	memo := fmt.Sprintf("Claim %s", token.Symbol)
	instructions = append(instructions, solana.NewMemoInstruction(memo, claimant))

	// Exactly one whole unit, scaled to base units.
	amount := oneUnit(token.Decimals)
	instructions = append(instructions,
		solana.NewTransferCheckedInstruction(sourceATA, mint, destATA, uc.service.PublicKey, amount, uint8(token.Decimals), reference))

	blockhash, err := uc.rpc.GetLatestBlockhash(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(uc.service.PublicKey, blockhash, instructions)
	if err != nil {
		return nil, err
	}
	if err := tx.PartialSign(uc.service); err != nil {
		return nil, err
	}

	// Record the in-flight attempt. The PENDING row takes the pair's unique
	// slot; a rescan finds the row already there and proceeds. Finalize
	// upgrades it to COMPLETED, and the expiry sweep reaps it if the scan is
	// abandoned.
	pending := &entities.TokenClaim{
		TokenID:       token.ID,
		WalletAddress: account,
		Status:        entities.ClaimStatusPending,
	}
	if err := uc.claimRepo.Create(ctx, pending); err != nil && !stderrors.Is(err, errors.ErrAlreadyClaimed) {
		return nil, fmt.Errorf("record pending claim: %w", err)
	}

	session := &redis.ClaimSession{
		TokenID:       token.ID.String(),
		WalletAddress: account,
		Reference:     referenceB58,
		CreatedAt:     time.Now(),
	}
	if err := uc.sessionStore.CreateSession(ctx, session, claimSessionTTL); err != nil {
		// The claim still works without the session; only the watcher's
		// reverse lookup degrades.
		logger.Warn(ctx, "failed to store claim session",
			zap.String("reference", referenceB58), zap.Error(err))
	}

	observability.RecordBuild("ok")
	return &BuildOutput{
		Transaction: tx.ToBase64(),
		Message:     fmt.Sprintf("Claim 1 %s", token.Symbol),
		Reference:   referenceB58,
	}, nil
}

// oneUnit returns 10^decimals base units.
func oneUnit(decimals int) uint64 {
	amount := uint64(1)
	for i := 0; i < decimals; i++ {
		amount *= 10
	}
	return amount
}

// QROutput is a rendered claim code pair: the plain deep link and the signed,
// expiring variant.
type QROutput struct {
	URL    string `json:"url"`
	Signed string `json:"signed"`
}

// IssueQR renders the claim QR payloads for a token.
func (uc *ClaimUsecase) IssueQR(ctx context.Context, tokenID uuid.UUID) (*QROutput, error) {
	token, err := uc.tokenRepo.GetByID(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	return &QROutput{
		URL:    fmt.Sprintf("solana:claim/%s/%s", token.ID, token.Symbol),
		Signed: uc.qrCodec.Sign(token.ID.String(), qrCodeTTL),
	}, nil
}

// VerifyQROutput reports the check of a signed claim code.
type VerifyQROutput struct {
	Valid   bool            `json:"valid"`
	Expired bool            `json:"expired"`
	Token   *entities.Token `json:"token,omitempty"`
}

// VerifyQR checks a signed claim code and resolves its token.
func (uc *ClaimUsecase) VerifyQR(ctx context.Context, code string) (*VerifyQROutput, error) {
	result := uc.qrCodec.Verify(code)
	out := &VerifyQROutput{Valid: result.Valid, Expired: result.Expired}
	if !result.Valid {
		return out, nil
	}

	id, err := uuid.Parse(result.TokenID)
	if err != nil {
		out.Valid = false
		return out, nil
	}
	token, err := uc.tokenRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out.Token = token
	return out, nil
}
