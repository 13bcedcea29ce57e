package errors

import (
	"errors"
	"net/http"
)

// Claim guard violations. Terminal: retrying without a state change on the
// underlying token cannot succeed.
var (
	ErrTokenNotFound        = errors.New("token not found")
	ErrTokenExpired         = errors.New("token expired")
	ErrSupplyExhausted      = errors.New("supply exhausted")
	ErrNotWhitelisted       = errors.New("wallet not whitelisted")
	ErrAlreadyClaimed       = errors.New("token already claimed by this wallet")
	ErrInvalidWalletAddress = errors.New("invalid wallet address")
)

// Chain lookup failures. Transient: often propagation delay, callers should
// retry with backoff.
var (
	ErrTransactionNotFound = errors.New("transaction not found on chain")
	ErrProofUnavailable    = errors.New("validity proof unavailable")
	ErrPoolCreationFailed  = errors.New("token pool creation failed")
)

// ErrInsufficientBalance means the service pool cannot cover a compressed
// transfer even after compressing its regular balance.
var ErrInsufficientBalance = errors.New("insufficient token balance")

// Generic domain errors.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrAlreadyExists      = errors.New("resource already exists")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Reason codes returned to clients so the UI can render the specific
// outcome. Stable strings, not display text.
const (
	ReasonTokenNotFound        = "TOKEN_NOT_FOUND"
	ReasonTokenExpired         = "TOKEN_EXPIRED"
	ReasonSupplyExhausted      = "SUPPLY_EXHAUSTED"
	ReasonNotWhitelisted       = "NOT_WHITELISTED"
	ReasonAlreadyClaimed       = "ALREADY_CLAIMED"
	ReasonInvalidWallet        = "INVALID_WALLET_ADDRESS"
	ReasonTransactionNotFound  = "TRANSACTION_NOT_FOUND"
	ReasonProofUnavailable     = "PROOF_UNAVAILABLE"
	ReasonPoolCreationFailed   = "POOL_CREATION_FAILED"
	ReasonInsufficientBalance  = "INSUFFICIENT_BALANCE"
	ReasonInternal             = "INTERNAL_ERROR"
)

// AppError represents an application error with an HTTP status and a stable
// reason code.
type AppError struct {
	Status  int    `json:"-"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error.
func NewAppError(status int, reason, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Reason:  reason,
		Message: message,
		Err:     err,
	}
}

// Common error constructors.

func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, ReasonTokenNotFound, message, ErrNotFound)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, ReasonInvalidWallet, message, ErrInvalidInput)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, "UNAUTHORIZED", message, ErrUnauthorized)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, "FORBIDDEN", message, ErrForbidden)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, ReasonInternal, "internal server error", err)
}

// FromClaimError maps a claim-path domain error to its HTTP representation.
// Guard violations are terminal (4xx); chain lookups are retryable and
// surface as 404/503 so the caller knows to back off and try again.
func FromClaimError(err error) *AppError {
	switch {
	case errors.Is(err, ErrTokenNotFound):
		return NewAppError(http.StatusNotFound, ReasonTokenNotFound, "token not found", err)
	case errors.Is(err, ErrTokenExpired):
		return NewAppError(http.StatusGone, ReasonTokenExpired, "this token's claim window has closed", err)
	case errors.Is(err, ErrSupplyExhausted):
		return NewAppError(http.StatusConflict, ReasonSupplyExhausted, "all units of this token have been claimed", err)
	case errors.Is(err, ErrNotWhitelisted):
		return NewAppError(http.StatusForbidden, ReasonNotWhitelisted, "wallet is not on the whitelist for this token", err)
	case errors.Is(err, ErrAlreadyClaimed):
		return NewAppError(http.StatusConflict, ReasonAlreadyClaimed, "this wallet has already claimed the token", err)
	case errors.Is(err, ErrInvalidWalletAddress):
		return NewAppError(http.StatusBadRequest, ReasonInvalidWallet, "invalid wallet address", err)
	case errors.Is(err, ErrTransactionNotFound):
		return NewAppError(http.StatusNotFound, ReasonTransactionNotFound, "transaction not found yet, retry shortly", err)
	case errors.Is(err, ErrProofUnavailable):
		return NewAppError(http.StatusServiceUnavailable, ReasonProofUnavailable, "validity proof unavailable, retry shortly", err)
	case errors.Is(err, ErrPoolCreationFailed):
		return NewAppError(http.StatusServiceUnavailable, ReasonPoolCreationFailed, "token pool creation failed, retry with backoff", err)
	case errors.Is(err, ErrInsufficientBalance):
		return NewAppError(http.StatusConflict, ReasonInsufficientBalance, "service pool balance cannot cover this transfer", err)
	default:
		return InternalError(err)
	}
}
