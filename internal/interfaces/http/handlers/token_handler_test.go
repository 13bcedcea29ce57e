package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"claimdrop.backend/internal/domain/entities"
	"claimdrop.backend/internal/interfaces/http/middleware"
	"claimdrop.backend/pkg/utils"
)

type tokenServiceStub struct {
	registerFn func(ctx context.Context, creatorAddress string, input entities.RegisterTokenInput) (*entities.Token, error)
	getFn      func(ctx context.Context, id uuid.UUID) (*entities.Token, error)
	listFn     func(ctx context.Context, creatorAddress string, page, limit int) ([]*entities.Token, *utils.PaginationMeta, error)
	claimsFn   func(ctx context.Context, tokenID uuid.UUID, page, limit int) ([]*entities.TokenClaim, *utils.PaginationMeta, error)
}

func (s tokenServiceStub) Register(ctx context.Context, creatorAddress string, input entities.RegisterTokenInput) (*entities.Token, error) {
	return s.registerFn(ctx, creatorAddress, input)
}
func (s tokenServiceStub) Get(ctx context.Context, id uuid.UUID) (*entities.Token, error) {
	return s.getFn(ctx, id)
}
func (s tokenServiceStub) List(ctx context.Context, creatorAddress string, page, limit int) ([]*entities.Token, *utils.PaginationMeta, error) {
	return s.listFn(ctx, creatorAddress, page, limit)
}
func (s tokenServiceStub) Claims(ctx context.Context, tokenID uuid.UUID, page, limit int) ([]*entities.TokenClaim, *utils.PaginationMeta, error) {
	return s.claimsFn(ctx, tokenID, page, limit)
}

func tokenRouter(h *TokenHandler, wallet string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	withWallet := func(c *gin.Context) {
		if wallet != "" {
			c.Set(middleware.UserWalletKey, wallet)
		}
		c.Next()
	}
	r.POST("/tokens", withWallet, h.Register)
	r.GET("/tokens", withWallet, h.List)
	r.GET("/tokens/:id", h.Get)
	r.GET("/tokens/:id/claims", h.Claims)
	return r
}

func TestTokenHandler_Register(t *testing.T) {
	creator := "creatorWallet111"
	service := tokenServiceStub{
		registerFn: func(_ context.Context, creatorAddress string, input entities.RegisterTokenInput) (*entities.Token, error) {
			require.Equal(t, creator, creatorAddress)
			return &entities.Token{ID: uuid.New(), CreatorAddress: creatorAddress, Name: input.Name, Supply: input.Supply}, nil
		},
	}
	r := tokenRouter(NewTokenHandler(service), creator)

	body := []byte(`{"name":"Gopher Meetup","symbol":"GOPH","mintAddress":"mint111","supply":100}`)
	req := httptest.NewRequest(http.MethodPost, "/tokens", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var token entities.Token
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &token))
	assert.Equal(t, creator, token.CreatorAddress)
}

func TestTokenHandler_Register_RequiresAuth(t *testing.T) {
	r := tokenRouter(NewTokenHandler(tokenServiceStub{}), "")

	body := []byte(`{"name":"n","symbol":"S","mintAddress":"m","supply":1}`)
	req := httptest.NewRequest(http.MethodPost, "/tokens", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTokenHandler_Get_InvalidID(t *testing.T) {
	r := tokenRouter(NewTokenHandler(tokenServiceStub{}), "")

	req := httptest.NewRequest(http.MethodGet, "/tokens/not-a-uuid", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTokenHandler_List_ClampsPagination(t *testing.T) {
	var gotPage, gotLimit int
	service := tokenServiceStub{
		listFn: func(_ context.Context, _ string, page, limit int) ([]*entities.Token, *utils.PaginationMeta, error) {
			gotPage, gotLimit = page, limit
			meta := utils.CalculateMeta(0, page, limit)
			return []*entities.Token{}, &meta, nil
		},
	}
	r := tokenRouter(NewTokenHandler(service), "wallet111")

	req := httptest.NewRequest(http.MethodGet, "/tokens?page=-3&limit=5000", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, gotPage)
	assert.Equal(t, 10, gotLimit)
}
