package redis

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"time"
)

// ClaimSession holds the state of one open claim screen: which (token, wallet)
// pair a rendered reference key belongs to. Keyed by the reference so the
// watcher and the verify endpoint can resolve a chain observation back to a
// claim attempt.
type ClaimSession struct {
	TokenID       string    `json:"tokenId"`
	WalletAddress string    `json:"walletAddress"`
	Reference     string    `json:"reference"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ClaimSessionStore persists claim sessions in Redis, encrypted at rest.
type ClaimSessionStore struct {
	encryptionKey []byte
}

var (
	setSessionValue = Set
	getSessionValue = Get
	delSessionValue = Del
)

// NewClaimSessionStore creates a new store. The key must be 32 bytes hex.
func NewClaimSessionStore(encryptionKeyHex string) (*ClaimSessionStore, error) {
	key, err := hex.DecodeString(encryptionKeyHex)
	if err != nil {
		return nil, errors.New("invalid encryption key hex")
	}
	if len(key) != 32 {
		return nil, errors.New("encryption key must be 32 bytes (64 hex chars)")
	}
	return &ClaimSessionStore{encryptionKey: key}, nil
}

// CreateSession stores an encrypted claim session keyed by its reference.
func (s *ClaimSessionStore) CreateSession(ctx context.Context, session *ClaimSession, expiration time.Duration) error {
	jsonData, err := json.Marshal(session)
	if err != nil {
		return err
	}

	encrypted, err := s.encrypt(jsonData)
	if err != nil {
		return err
	}

	return setSessionValue(ctx, ClaimSessionKey(session.Reference), encrypted, expiration)
}

// GetSession retrieves and decrypts a claim session by reference.
func (s *ClaimSessionStore) GetSession(ctx context.Context, reference string) (*ClaimSession, error) {
	encrypted, err := getSessionValue(ctx, ClaimSessionKey(reference))
	if err != nil {
		return nil, err
	}

	decrypted, err := s.decrypt(encrypted)
	if err != nil {
		return nil, err
	}

	var session ClaimSession
	if err := json.Unmarshal(decrypted, &session); err != nil {
		return nil, err
	}

	return &session, nil
}

// DeleteSession removes a claim session once the claim settled.
func (s *ClaimSessionStore) DeleteSession(ctx context.Context, reference string) error {
	return delSessionValue(ctx, ClaimSessionKey(reference))
}

func (s *ClaimSessionStore) encrypt(plaintext []byte) (string, error) {
	block, err := aes.NewCipher(s.encryptionKey)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ciphertext := gcm.Seal(nonce, nonce, plaintext, nil)
	return hex.EncodeToString(ciphertext), nil
}

func (s *ClaimSessionStore) decrypt(encryptedHex string) ([]byte, error) {
	data, err := hex.DecodeString(encryptedHex)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(s.encryptionKey)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(data) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce, ciphertext := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ciphertext, nil)
}
