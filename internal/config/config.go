package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration values.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Solana   SolanaConfig
	Security SecurityConfig
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// URL returns the database connection URL.
func (c DatabaseConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	URL      string
	Password string
}

// JWTConfig holds JWT configuration.
type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// SolanaConfig holds the RPC endpoints and the service identity.
type SolanaConfig struct {
	RPCURL string
	WSURL  string
	// CompressionRPCURL is the Photon-compatible endpoint serving the
	// ZK-compression methods; often the same host as RPCURL.
	CompressionRPCURL string
	Cluster           string
	// ServiceSecret is the base58-encoded 64-byte keypair that co-signs
	// claim transfers and owns the distribution pool.
	ServiceSecret string
	ServiceLabel  string
	AwaitTimeout  time.Duration
}

// SecurityConfig holds encryption and signing secrets.
type SecurityConfig struct {
	QRSecret             string
	SessionEncryptionKey string
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("SERVER_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "claimdrop"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		JWT: JWTConfig{
			Secret:        getEnv("JWT_SECRET", "change-this-in-production"),
			AccessExpiry:  getEnvAsDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshExpiry: getEnvAsDuration("JWT_REFRESH_EXPIRY", 7*24*time.Hour),
		},
		Solana: SolanaConfig{
			RPCURL:            getEnv("SOLANA_RPC_URL", "https://api.devnet.solana.com"),
			WSURL:             getEnv("SOLANA_WS_URL", "wss://api.devnet.solana.com"),
			CompressionRPCURL: getEnv("SOLANA_COMPRESSION_RPC_URL", "https://devnet.helius-rpc.com"),
			Cluster:           getEnv("SOLANA_CLUSTER", "devnet"),
			ServiceSecret:     getEnv("SOLANA_SERVICE_SECRET", ""),
			ServiceLabel:      getEnv("SERVICE_LABEL", "Credential Claim"),
			AwaitTimeout:      getEnvAsDuration("CLAIM_AWAIT_TIMEOUT", 2*time.Minute),
		},
		Security: SecurityConfig{
			QRSecret:             getEnv("QR_SECRET", "change-this-in-production"),
			SessionEncryptionKey: getEnv("SESSION_ENCRYPTION_KEY", "0000000000000000000000000000000000000000000000000000000000000000"), // 32-bytes hex string
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
