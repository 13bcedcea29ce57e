package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	domainerrors "claimdrop.backend/internal/domain/errors"
	"claimdrop.backend/internal/interfaces/http/response"
	"claimdrop.backend/internal/usecases"
)

type transferService interface {
	Transfer(ctx context.Context, input usecases.CompressedTransferInput) (*usecases.CompressedTransferOutput, error)
	DeriveState(ctx context.Context, mintAddress string) (string, error)
}

// TransferHandler serves the compressed transfer engine.
type TransferHandler struct {
	transfers transferService
}

func NewTransferHandler(transfers transferService) *TransferHandler {
	return &TransferHandler{transfers: transfers}
}

// Transfer moves compressed tokens to a recipient, walking whatever state
// transitions are still missing.
// POST /api/v1/transfers/compressed
func (h *TransferHandler) Transfer(c *gin.Context) {
	var req usecases.CompressedTransferInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	out, err := h.transfers.Transfer(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

// State reports the engine's current state for a mint.
// GET /api/v1/transfers/compressed/state?mint=...
func (h *TransferHandler) State(c *gin.Context) {
	mint := c.Query("mint")
	if mint == "" {
		response.Error(c, domainerrors.BadRequest("mint is required"))
		return
	}

	state, err := h.transfers.DeriveState(c.Request.Context(), mint)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"state": state})
}
