package usecases_test

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"claimdrop.backend/internal/domain/entities"
	"claimdrop.backend/internal/infrastructure/solana"
)

// Mock UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
}

func (m *MockUnitOfWork) Do(ctx context.Context, f func(context.Context) error) error {
	m.Called(ctx, f)
	return f(ctx)
}

func (m *MockUnitOfWork) WithLock(ctx context.Context) context.Context {
	m.Called(ctx)
	return ctx
}

// Mock TokenRepository
type MockTokenRepository struct {
	mock.Mock
}

func (m *MockTokenRepository) Create(ctx context.Context, token *entities.Token) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockTokenRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Token, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Token), args.Error(1)
}

func (m *MockTokenRepository) GetByMintAddress(ctx context.Context, mint string) (*entities.Token, error) {
	args := m.Called(ctx, mint)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Token), args.Error(1)
}

func (m *MockTokenRepository) List(ctx context.Context, creatorAddress string, limit, offset int) ([]*entities.Token, int64, error) {
	args := m.Called(ctx, creatorAddress, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.Token), args.Get(1).(int64), args.Error(2)
}

func (m *MockTokenRepository) IncrementClaimed(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Mock ClaimRepository
type MockClaimRepository struct {
	mock.Mock
}

func (m *MockClaimRepository) Create(ctx context.Context, claim *entities.TokenClaim) error {
	args := m.Called(ctx, claim)
	return args.Error(0)
}

func (m *MockClaimRepository) Complete(ctx context.Context, claim *entities.TokenClaim) error {
	args := m.Called(ctx, claim)
	return args.Error(0)
}

func (m *MockClaimRepository) GetByTokenAndWallet(ctx context.Context, tokenID uuid.UUID, wallet string) (*entities.TokenClaim, error) {
	args := m.Called(ctx, tokenID, wallet)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.TokenClaim), args.Error(1)
}

func (m *MockClaimRepository) GetBySignature(ctx context.Context, signature string) (*entities.TokenClaim, error) {
	args := m.Called(ctx, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.TokenClaim), args.Error(1)
}

func (m *MockClaimRepository) HasCompleted(ctx context.Context, tokenID uuid.UUID, wallet string) (bool, error) {
	args := m.Called(ctx, tokenID, wallet)
	return args.Bool(0), args.Error(1)
}

func (m *MockClaimRepository) CountCompleted(ctx context.Context, tokenID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tokenID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockClaimRepository) ListByToken(ctx context.Context, tokenID uuid.UUID, limit, offset int) ([]*entities.TokenClaim, int64, error) {
	args := m.Called(ctx, tokenID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.TokenClaim), args.Get(1).(int64), args.Error(2)
}

// Mock WhitelistRepository
type MockWhitelistRepository struct {
	mock.Mock
}

func (m *MockWhitelistRepository) Add(ctx context.Context, entry *entities.WhitelistEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockWhitelistRepository) AddBulk(ctx context.Context, entries []*entities.WhitelistEntry) (int, error) {
	args := m.Called(ctx, entries)
	return args.Int(0), args.Error(1)
}

func (m *MockWhitelistRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockWhitelistRepository) Contains(ctx context.Context, tokenID uuid.UUID, wallet string) (bool, error) {
	args := m.Called(ctx, tokenID, wallet)
	return args.Bool(0), args.Error(1)
}

func (m *MockWhitelistRepository) ListByToken(ctx context.Context, tokenID uuid.UUID, limit, offset int) ([]*entities.WhitelistEntry, int64, error) {
	args := m.Called(ctx, tokenID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.WhitelistEntry), args.Get(1).(int64), args.Error(2)
}

// Mock UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *entities.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

// Mock solana RPC client
type MockRPCClient struct {
	mock.Mock
}

func (m *MockRPCClient) GetTransaction(ctx context.Context, signature string) (*solana.ConfirmedTransaction, error) {
	args := m.Called(ctx, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*solana.ConfirmedTransaction), args.Error(1)
}

func (m *MockRPCClient) GetSignaturesForAddress(ctx context.Context, address string, opts *solana.SignaturesOpts) ([]solana.SignatureInfo, error) {
	args := m.Called(ctx, address, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]solana.SignatureInfo), args.Error(1)
}

func (m *MockRPCClient) GetAccountInfo(ctx context.Context, pubkey string) (*solana.AccountInfo, error) {
	args := m.Called(ctx, pubkey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*solana.AccountInfo), args.Error(1)
}

func (m *MockRPCClient) GetLatestBlockhash(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockRPCClient) SendTransaction(ctx context.Context, txBase64 string) (string, error) {
	args := m.Called(ctx, txBase64)
	return args.String(0), args.Error(1)
}

func (m *MockRPCClient) GetTokenAccountBalance(ctx context.Context, pubkey string) (uint64, error) {
	args := m.Called(ctx, pubkey)
	return args.Get(0).(uint64), args.Error(1)
}

// Mock compression client
type MockCompressionClient struct {
	mock.Mock
}

func (m *MockCompressionClient) GetCompressedTokenAccountsByOwner(ctx context.Context, owner string, mint string) ([]solana.CompressedTokenAccount, error) {
	args := m.Called(ctx, owner, mint)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]solana.CompressedTokenAccount), args.Error(1)
}

func (m *MockCompressionClient) GetValidityProof(ctx context.Context, hashes []string) (*solana.ValidityProof, error) {
	args := m.Called(ctx, hashes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*solana.ValidityProof), args.Error(1)
}

// StubWSClient drives watcher tests without a live socket.
type StubWSClient struct {
	Notifications chan solana.AccountNotification
	SubscribeErr  error
	Unsubscribed  bool
}

func NewStubWSClient() *StubWSClient {
	return &StubWSClient{Notifications: make(chan solana.AccountNotification, 4)}
}

func (s *StubWSClient) SubscribeAccount(ctx context.Context, pubkey string) (<-chan solana.AccountNotification, func(), error) {
	if s.SubscribeErr != nil {
		return nil, nil, s.SubscribeErr
	}
	return s.Notifications, func() { s.Unsubscribed = true }, nil
}

func (s *StubWSClient) Close() error {
	return nil
}
