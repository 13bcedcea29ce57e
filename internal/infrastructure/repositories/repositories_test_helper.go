package repositories

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open sqlite")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createTokenTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE tokens (
		id TEXT PRIMARY KEY,
		creator_address TEXT NOT NULL,
		name TEXT NOT NULL,
		symbol TEXT NOT NULL,
		description TEXT,
		icon_url TEXT,
		mint_address TEXT NOT NULL UNIQUE,
		decimals INTEGER NOT NULL DEFAULT 0,
		supply INTEGER NOT NULL,
		claimed INTEGER NOT NULL DEFAULT 0,
		expiry_date DATETIME,
		whitelist_enabled BOOLEAN NOT NULL DEFAULT 0,
		is_compressed BOOLEAN NOT NULL DEFAULT 0,
		event_id TEXT,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	);`)
}

func createTokenClaimTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE token_claims (
		id TEXT PRIMARY KEY,
		token_id TEXT NOT NULL,
		wallet_address TEXT NOT NULL,
		transaction_id TEXT,
		status TEXT NOT NULL,
		claimed_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	);`)
	mustExec(t, db, `CREATE UNIQUE INDEX idx_claims_token_wallet ON token_claims (token_id, wallet_address);`)
}

func createWhitelistTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE whitelist_entries (
		id TEXT PRIMARY KEY,
		token_id TEXT,
		event_id TEXT,
		wallet_address TEXT NOT NULL,
		created_at DATETIME
	);`)
	mustExec(t, db, `CREATE UNIQUE INDEX idx_whitelist_token_wallet ON whitelist_entries (token_id, wallet_address);`)
}

func createUserTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		wallet_address TEXT,
		password_hash TEXT NOT NULL,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	);`)
}
