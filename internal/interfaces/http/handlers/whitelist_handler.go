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
	"claimdrop.backend/pkg/utils"
)

type whitelistService interface {
	Add(ctx context.Context, input entities.AddWhitelistInput) (*entities.WhitelistEntry, error)
	AddBulk(ctx context.Context, input entities.BulkWhitelistInput) (*usecases.BulkResult, error)
	Remove(ctx context.Context, id uuid.UUID) error
	Check(ctx context.Context, tokenID uuid.UUID, wallet string) (bool, error)
	List(ctx context.Context, tokenID uuid.UUID, page, limit int) ([]*entities.WhitelistEntry, *utils.PaginationMeta, error)
}

type WhitelistHandler struct {
	whitelist whitelistService
}

func NewWhitelistHandler(whitelist whitelistService) *WhitelistHandler {
	return &WhitelistHandler{whitelist: whitelist}
}

// Add puts one wallet on a token's or event's whitelist.
// POST /api/v1/whitelist
func (h *WhitelistHandler) Add(c *gin.Context) {
	var req entities.AddWhitelistInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	entry, err := h.whitelist.Add(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, entry)
}

// AddBulk whitelists many wallets at once.
// POST /api/v1/whitelist/bulk
func (h *WhitelistHandler) AddBulk(c *gin.Context) {
	var req entities.BulkWhitelistInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	result, err := h.whitelist.AddBulk(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, result)
}

// Remove deletes a whitelist entry.
// DELETE /api/v1/whitelist/:id
func (h *WhitelistHandler) Remove(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid entry ID"))
		return
	}

	if err := h.whitelist.Remove(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// Check reports whether a wallet is whitelisted for a token. Served both
// path-style and query-style.
// GET /api/v1/tokens/:id/whitelist/:wallet
// GET /api/v1/whitelist/check?tokenId=...&walletAddress=...
func (h *WhitelistHandler) Check(c *gin.Context) {
	rawToken := c.Param("id")
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

	listed, err := h.whitelist.Check(c.Request.Context(), tokenID, wallet)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"whitelisted": listed})
}

// List pages through a token's whitelist.
// GET /api/v1/tokens/:id/whitelist
func (h *WhitelistHandler) List(c *gin.Context) {
	tokenID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid token ID"))
		return
	}

	page, limit := paginationQuery(c)
	entries, meta, err := h.whitelist.List(c.Request.Context(), tokenID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"entries":    entries,
		"pagination": meta,
	})
}
