package main

import (
	"context"
	"crypto/ed25519"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/mr-tron/base58"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"claimdrop.backend/internal/config"
	"claimdrop.backend/internal/infrastructure/jobs"
	"claimdrop.backend/internal/infrastructure/repositories"
	"claimdrop.backend/internal/infrastructure/solana"
	"claimdrop.backend/internal/interfaces/http/handlers"
	"claimdrop.backend/internal/interfaces/http/middleware"
	"claimdrop.backend/internal/usecases"
	"claimdrop.backend/pkg/jwt"
	"claimdrop.backend/pkg/logger"
	"claimdrop.backend/pkg/qrsign"
	"claimdrop.backend/pkg/redis"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(dsn string) (*gorm.DB, error) {
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	}
	newSessionStore = redis.NewClaimSessionStore
	dialWS          = func(ctx context.Context, endpoint string) (solana.WSClient, error) {
		return solana.NewGorillaWSClient(ctx, endpoint, nil)
	}
	runServer = func(r *gin.Engine, port string) error { return r.Run(":" + port) }
	getStdDB  = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
		logger.Error(context.Background(), "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	logger.Info(context.Background(), "Redis initialized")

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg.Database.URL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		log.Printf("Database not available: %v (endpoints will return errors)", err)
	} else {
		log.Println("Connected to PostgreSQL via GORM")
	}

	jwtService := jwt.NewJWTService(
		cfg.JWT.Secret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)

	userRepo := repositories.NewUserRepository(db)
	tokenRepo := repositories.NewTokenRepository(db)
	claimRepo := repositories.NewClaimRepository(db)
	whitelistRepo := repositories.NewWhitelistRepository(db)
	uow := repositories.NewUnitOfWork(db)

	sessionStore, err := newSessionStore(cfg.Security.SessionEncryptionKey)
	if err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}
	qrCodec := qrsign.NewCodec(cfg.Security.QRSecret)

	serviceKeypair, err := loadServiceKeypair(cfg.Solana.ServiceSecret)
	if err != nil {
		return fmt.Errorf("failed to load service keypair: %w", err)
	}
	logger.Info(context.Background(), "Service identity loaded",
		zap.String("public_key", serviceKeypair.PublicKey.String()))

	rpc := solana.NewHTTPClient(cfg.Solana.RPCURL)
	var compression solana.CompressionClient = rpc
	if cfg.Solana.CompressionRPCURL != "" && cfg.Solana.CompressionRPCURL != cfg.Solana.RPCURL {
		compression = solana.NewHTTPClient(cfg.Solana.CompressionRPCURL)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ws, err := dialWS(ctx, cfg.Solana.WSURL)
	if err != nil {
		// The watcher polls over HTTP when subscriptions are unavailable.
		logger.Warn(ctx, "WebSocket endpoint unavailable, watcher will poll", zap.Error(err))
		ws = unavailableWS{err: err}
	}
	defer ws.Close()

	guard := usecases.NewClaimGuard(claimRepo, whitelistRepo)
	claimUsecase := usecases.NewClaimUsecase(tokenRepo, claimRepo, guard, rpc, sessionStore, qrCodec, serviceKeypair, cfg.Solana.ServiceLabel)
	verifyUsecase := usecases.NewVerifyUsecase(tokenRepo, claimRepo, guard, uow, rpc, sessionStore, serviceKeypair.PublicKey, cfg.Solana.Cluster)
	watcher := usecases.NewClaimWatcher(rpc, ws, verifyUsecase, sessionStore, cfg.Solana.AwaitTimeout)
	compressedUsecase := usecases.NewCompressedUsecase(rpc, compression, serviceKeypair)
	tokenUsecase := usecases.NewTokenUsecase(tokenRepo, claimRepo)
	whitelistUsecase := usecases.NewWhitelistUsecase(whitelistRepo, tokenRepo)
	authUsecase := usecases.NewAuthUsecase(userRepo, jwtService)

	authHandler := handlers.NewAuthHandler(authUsecase)
	tokenHandler := handlers.NewTokenHandler(tokenUsecase)
	claimHandler := handlers.NewClaimHandler(claimUsecase, verifyUsecase, watcher)
	whitelistHandler := handlers.NewWhitelistHandler(whitelistUsecase)
	transferHandler := handlers.NewTransferHandler(compressedUsecase)

	authMiddleware := middleware.AuthMiddleware(jwtService)

	expiryJob := jobs.NewClaimExpiryJob(claimRepo)
	go expiryJob.Start(ctx)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())

	applyCORSMiddleware(r)
	registerHealthRoute(r)
	registerMetricsRoute(r)
	registerAPIV1Routes(r, routeDeps{
		authHandler:      authHandler,
		tokenHandler:     tokenHandler,
		claimHandler:     claimHandler,
		whitelistHandler: whitelistHandler,
		transferHandler:  transferHandler,
		authMiddleware:   authMiddleware,
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server...")
		expiryJob.Stop()
		cancel()
	}()

	log.Printf("Claimdrop backend starting on port %s", cfg.Server.Port)
	log.Printf("API: http://localhost:%s/api/v1", cfg.Server.Port)

	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// loadServiceKeypair loads the signing identity, generating an ephemeral one
// for development when no secret is configured. Claims co-signed by an
// ephemeral key do not survive a restart, so production must set the secret.
func loadServiceKeypair(secret string) (*solana.Keypair, error) {
	if secret != "" {
		return solana.KeypairFromBase58(secret)
	}

	log.Println("SOLANA_SERVICE_SECRET not set, generating ephemeral service keypair")
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, err
	}
	return solana.KeypairFromBase58(base58.Encode(priv))
}

// unavailableWS stands in when the subscription endpoint cannot be reached;
// every subscribe attempt fails and the watcher falls back to polling.
type unavailableWS struct {
	err error
}

func (u unavailableWS) SubscribeAccount(context.Context, string) (<-chan solana.AccountNotification, func(), error) {
	return nil, nil, u.err
}

func (u unavailableWS) Close() error { return nil }
