package usecases

import (
	"context"
	stderrors "errors"

	"github.com/google/uuid"
	"claimdrop.backend/internal/domain/entities"
	"claimdrop.backend/internal/domain/errors"
	domainRepos "claimdrop.backend/internal/domain/repositories"
	"claimdrop.backend/pkg/crypto"
	"claimdrop.backend/pkg/jwt"
)

// AuthUsecase handles organizer registration and login.
type AuthUsecase struct {
	userRepo   domainRepos.UserRepository
	jwtService *jwt.JWTService
}

// NewAuthUsecase creates the auth flow.
func NewAuthUsecase(userRepo domainRepos.UserRepository, jwtService *jwt.JWTService) *AuthUsecase {
	return &AuthUsecase{userRepo: userRepo, jwtService: jwtService}
}

// AuthOutput carries the account and its token pair.
type AuthOutput struct {
	User   *entities.User `json:"user"`
	Tokens *jwt.TokenPair `json:"tokens"`
}

// Register creates an organizer account.
func (uc *AuthUsecase) Register(ctx context.Context, input entities.RegisterInput) (*AuthOutput, error) {
	if err := ValidateWallet(input.WalletAddress); err != nil {
		return nil, err
	}

	hash, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &entities.User{
		Email:         input.Email,
		WalletAddress: input.WalletAddress,
		PasswordHash:  hash,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		if stderrors.Is(err, errors.ErrAlreadyExists) {
			return nil, errors.NewAppError(409, "EMAIL_TAKEN", "an account with this email already exists", err)
		}
		return nil, err
	}

	tokens, err := uc.jwtService.GenerateTokenPair(user.ID, user.Email, user.WalletAddress)
	if err != nil {
		return nil, err
	}
	return &AuthOutput{User: user, Tokens: tokens}, nil
}

// Login authenticates an organizer by email and password.
func (uc *AuthUsecase) Login(ctx context.Context, input entities.LoginInput) (*AuthOutput, error) {
	user, err := uc.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		// Same error for unknown email and bad password.
		return nil, errors.ErrInvalidCredentials
	}
	if !crypto.CheckPassword(input.Password, user.PasswordHash) {
		return nil, errors.ErrInvalidCredentials
	}

	tokens, err := uc.jwtService.GenerateTokenPair(user.ID, user.Email, user.WalletAddress)
	if err != nil {
		return nil, err
	}
	return &AuthOutput{User: user, Tokens: tokens}, nil
}

// Me resolves the authenticated account.
func (uc *AuthUsecase) Me(ctx context.Context, userID uuid.UUID) (*entities.User, error) {
	return uc.userRepo.GetByID(ctx, userID)
}
