package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"claimdrop.backend/internal/domain/entities"
	domainerrors "claimdrop.backend/internal/domain/errors"
	"claimdrop.backend/internal/interfaces/http/middleware"
	"claimdrop.backend/internal/interfaces/http/response"
	"claimdrop.backend/pkg/utils"
)

type tokenService interface {
	Register(ctx context.Context, creatorAddress string, input entities.RegisterTokenInput) (*entities.Token, error)
	Get(ctx context.Context, id uuid.UUID) (*entities.Token, error)
	List(ctx context.Context, creatorAddress string, page, limit int) ([]*entities.Token, *utils.PaginationMeta, error)
	Claims(ctx context.Context, tokenID uuid.UUID, page, limit int) ([]*entities.TokenClaim, *utils.PaginationMeta, error)
}

type TokenHandler struct {
	tokens tokenService
}

func NewTokenHandler(tokens tokenService) *TokenHandler {
	return &TokenHandler{tokens: tokens}
}

// Register records a minted credential so it becomes claimable.
// POST /api/v1/tokens
func (h *TokenHandler) Register(c *gin.Context) {
	wallet, ok := middleware.GetUserWallet(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("unauthorized"))
		return
	}

	var req entities.RegisterTokenInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	token, err := h.tokens.Register(c.Request.Context(), wallet, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, token)
}

// Get returns one token.
// GET /api/v1/tokens/:id
func (h *TokenHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid token ID"))
		return
	}

	token, err := h.tokens.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, token)
}

// List pages through the authenticated organizer's tokens.
// GET /api/v1/tokens
func (h *TokenHandler) List(c *gin.Context) {
	wallet, ok := middleware.GetUserWallet(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("unauthorized"))
		return
	}

	page, limit := paginationQuery(c)
	tokens, meta, err := h.tokens.List(c.Request.Context(), wallet, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"tokens":     tokens,
		"pagination": meta,
	})
}

// Claims pages through a token's claims.
// GET /api/v1/tokens/:id/claims
func (h *TokenHandler) Claims(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid token ID"))
		return
	}

	page, limit := paginationQuery(c)
	claims, meta, err := h.tokens.Claims(c.Request.Context(), id, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"claims":     claims,
		"pagination": meta,
	})
}

func paginationQuery(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return page, limit
}
