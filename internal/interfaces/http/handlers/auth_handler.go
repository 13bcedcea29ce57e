package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"claimdrop.backend/internal/domain/entities"
	domainerrors "claimdrop.backend/internal/domain/errors"
	"claimdrop.backend/internal/interfaces/http/middleware"
	"claimdrop.backend/internal/interfaces/http/response"
	"claimdrop.backend/internal/usecases"
)

type authService interface {
	Register(ctx context.Context, input entities.RegisterInput) (*usecases.AuthOutput, error)
	Login(ctx context.Context, input entities.LoginInput) (*usecases.AuthOutput, error)
	Me(ctx context.Context, userID uuid.UUID) (*entities.User, error)
}

type AuthHandler struct {
	auth authService
}

func NewAuthHandler(auth authService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Register creates an organizer account.
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req entities.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	out, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, out)
}

// Login authenticates an organizer.
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req entities.LoginInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	out, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

// Me returns the authenticated organizer's account.
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("unauthorized"))
		return
	}

	user, err := h.auth.Me(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}
