package main

import (
	"github.com/gin-gonic/gin"
	"claimdrop.backend/internal/interfaces/http/handlers"
	"claimdrop.backend/internal/interfaces/http/middleware"
)

type routeDeps struct {
	authHandler      *handlers.AuthHandler
	tokenHandler     *handlers.TokenHandler
	claimHandler     *handlers.ClaimHandler
	whitelistHandler *handlers.WhitelistHandler
	transferHandler  *handlers.TransferHandler
	authMiddleware   gin.HandlerFunc
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		// Auth routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", d.authHandler.Register)
			auth.POST("/login", d.authHandler.Login)
			auth.GET("/me", d.authMiddleware, d.authHandler.Me)
		}

		// Claim routes (public; wallets hit these, not organizers)
		claim := v1.Group("/claim")
		{
			claim.GET("/:tokenId", d.claimHandler.Describe)
			claim.POST("/:tokenId", middleware.IdempotencyMiddleware(), d.claimHandler.Build)
			claim.POST("/:tokenId/verify", middleware.IdempotencyMiddleware(), d.claimHandler.Finalize)
			claim.GET("/:tokenId/await", d.claimHandler.Await)
			claim.GET("/:tokenId/status", d.claimHandler.Status)
			claim.GET("/:tokenId/claimed/:wallet", d.claimHandler.CheckClaimed)
			claim.POST("/verify-code", d.claimHandler.VerifyQR)
		}

		// Query-style check endpoints (scanner UI surface)
		v1.GET("/claims/check", d.claimHandler.CheckClaimed)
		v1.GET("/whitelist/check", d.whitelistHandler.Check)

		// Token routes (public read, protected write)
		tokens := v1.Group("/tokens")
		{
			tokens.GET("/:id", d.tokenHandler.Get)
			tokens.GET("/:id/claims", d.tokenHandler.Claims)
			tokens.GET("/:id/whitelist", d.whitelistHandler.List)
			tokens.GET("/:id/whitelist/:wallet", d.whitelistHandler.Check)
			tokens.POST("/:id/verify", middleware.IdempotencyMiddleware(), d.claimHandler.Finalize)
		}

		tokensAuthed := v1.Group("/tokens")
		tokensAuthed.Use(d.authMiddleware)
		{
			tokensAuthed.POST("", d.tokenHandler.Register)
			tokensAuthed.GET("", d.tokenHandler.List)
			tokensAuthed.GET("/:id/qr", d.claimHandler.IssueQR)
			tokensAuthed.POST("/transfer/compressed", middleware.IdempotencyMiddleware(), d.transferHandler.Transfer)
		}

		// Whitelist routes (protected; organizer management surface)
		whitelist := v1.Group("/whitelist")
		whitelist.Use(d.authMiddleware)
		{
			whitelist.POST("", d.whitelistHandler.Add)
			whitelist.POST("/bulk", d.whitelistHandler.AddBulk)
			whitelist.DELETE("/:id", d.whitelistHandler.Remove)
		}

		// Compressed transfer routes (protected)
		transfers := v1.Group("/transfers")
		transfers.Use(d.authMiddleware)
		{
			transfers.POST("/compressed", middleware.IdempotencyMiddleware(), d.transferHandler.Transfer)
			transfers.GET("/compressed/state", d.transferHandler.State)
		}
	}
}
