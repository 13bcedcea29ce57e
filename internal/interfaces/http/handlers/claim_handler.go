package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"claimdrop.backend/internal/domain/entities"
	domainerrors "claimdrop.backend/internal/domain/errors"
	"claimdrop.backend/internal/interfaces/http/response"
	"claimdrop.backend/internal/usecases"
)

type claimService interface {
	Describe(ctx context.Context, tokenID uuid.UUID) (*usecases.DescribeOutput, error)
	Build(ctx context.Context, tokenID uuid.UUID, account string) (*usecases.BuildOutput, error)
	IssueQR(ctx context.Context, tokenID uuid.UUID) (*usecases.QROutput, error)
	VerifyQR(ctx context.Context, code string) (*usecases.VerifyQROutput, error)
}

type verifyService interface {
	Finalize(ctx context.Context, tokenID uuid.UUID, signature string) (*entities.CommittedClaim, error)
	CheckClaimed(ctx context.Context, tokenID uuid.UUID, wallet string) (bool, error)
}

type watchService interface {
	Await(ctx context.Context, tokenID uuid.UUID, account string) (*usecases.AwaitOutput, error)
	CheckNow(ctx context.Context, tokenID uuid.UUID, account string) (*usecases.AwaitOutput, error)
}

// ClaimHandler serves the Solana Pay transaction-request endpoints plus
// confirmation watching and finalization.
type ClaimHandler struct {
	claims  claimService
	verify  verifyService
	watcher watchService
}

func NewClaimHandler(claims claimService, verify verifyService, watcher watchService) *ClaimHandler {
	return &ClaimHandler{claims: claims, verify: verify, watcher: watcher}
}

// Describe is the GET half of the transaction-request protocol: the wallet
// fetches a label and icon before asking for the transaction.
// GET /api/v1/claim/:tokenId
func (h *ClaimHandler) Describe(c *gin.Context) {
	tokenID, err := uuid.Parse(c.Param("tokenId"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid token ID"))
		return
	}

	out, err := h.claims.Describe(c.Request.Context(), tokenID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

type buildClaimRequest struct {
	Account string `json:"account" binding:"required"`
}

// Build is the POST half: the wallet sends its account and receives the
// partially signed claim transaction to countersign.
// POST /api/v1/claim/:tokenId
func (h *ClaimHandler) Build(c *gin.Context) {
	tokenID, err := uuid.Parse(c.Param("tokenId"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid token ID"))
		return
	}

	var req buildClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	out, err := h.claims.Build(c.Request.Context(), tokenID, req.Account)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

type finalizeClaimRequest struct {
	Signature string `json:"signature" binding:"required"`
}

// Finalize verifies a claim transfer on chain and commits the claim.
// POST /api/v1/claim/:tokenId/verify
// POST /api/v1/tokens/:id/verify
func (h *ClaimHandler) Finalize(c *gin.Context) {
	rawToken := c.Param("tokenId")
	if rawToken == "" {
		rawToken = c.Param("id")
	}
	tokenID, err := uuid.Parse(rawToken)
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid token ID"))
		return
	}

	var req finalizeClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	committed, err := h.verify.Finalize(c.Request.Context(), tokenID, req.Signature)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, committed)
}

// Await blocks until the claim lands or the watch window closes.
// GET /api/v1/claim/:tokenId/await?account=...
func (h *ClaimHandler) Await(c *gin.Context) {
	tokenID, err := uuid.Parse(c.Param("tokenId"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid token ID"))
		return
	}
	account := c.Query("account")
	if account == "" {
		response.Error(c, domainerrors.BadRequest("account is required"))
		return
	}

	out, err := h.watcher.Await(c.Request.Context(), tokenID, account)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

// Status is the manual poll: one lookup, no waiting.
// GET /api/v1/claim/:tokenId/status?account=...
func (h *ClaimHandler) Status(c *gin.Context) {
	tokenID, err := uuid.Parse(c.Param("tokenId"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid token ID"))
		return
	}
	account := c.Query("account")
	if account == "" {
		response.Error(c, domainerrors.BadRequest("account is required"))
		return
	}

	out, err := h.watcher.CheckNow(c.Request.Context(), tokenID, account)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

// CheckClaimed reports whether a wallet already holds a completed claim.
// Served both path-style and query-style.
// GET /api/v1/claim/:tokenId/claimed/:wallet
// GET /api/v1/claims/check?tokenId=...&walletAddress=...
func (h *ClaimHandler) CheckClaimed(c *gin.Context) {
	rawToken := c.Param("tokenId")
	if rawToken == "" {
		rawToken = c.Query("tokenId")
	}
	tokenID, err := uuid.Parse(rawToken)
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid token ID"))
		return
	}

	wallet := c.Param("wallet")
	if wallet == "" {
		wallet = c.Query("walletAddress")
	}

	claimed, err := h.verify.CheckClaimed(c.Request.Context(), tokenID, wallet)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"claimed": claimed})
}

// IssueQR renders the claim QR payloads for a token.
// GET /api/v1/tokens/:id/qr
func (h *ClaimHandler) IssueQR(c *gin.Context) {
	tokenID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid token ID"))
		return
	}

	out, err := h.claims.IssueQR(c.Request.Context(), tokenID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

type verifyQRRequest struct {
	Code string `json:"code" binding:"required"`
}

// VerifyQR checks a signed claim code and resolves its token.
// POST /api/v1/claim/verify-code
func (h *ClaimHandler) VerifyQR(c *gin.Context) {
	var req verifyQRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	out, err := h.claims.VerifyQR(c.Request.Context(), req.Code)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}
