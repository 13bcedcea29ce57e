package solana

import (
	"crypto/ed25519"
	"crypto/sha256"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// Well-known program addresses used by the claim transfer path.
var (
	SystemProgramID          = MustParsePublicKey("11111111111111111111111111111111")
	TokenProgramID           = MustParsePublicKey("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	AssociatedTokenProgramID = MustParsePublicKey("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL")
	MemoProgramID            = MustParsePublicKey("MemoSq4gqABAXKb96qnH8TysNcWxMyWCqXgDLGmfcHr")
	SysvarRentID             = MustParsePublicKey("SysvarRent111111111111111111111111111111111")

	// Light Protocol ZK-compression programs.
	CompressedTokenProgramID = MustParsePublicKey("cTokenmWW8bLPjZEBAUgYy3zKxQZW6VKi7bqNFEVv3m")
	LightSystemProgramID     = MustParsePublicKey("SySTEM1eSU2p4BWrfAAM36gSMw4sCeXtd2pxR7fm6jJ")
)

// PublicKey is a 32-byte ed25519 public key.
type PublicKey [32]byte

// ParsePublicKey decodes a base58 address.
func ParsePublicKey(s string) (PublicKey, error) {
	var pk PublicKey
	raw, err := base58.Decode(s)
	if err != nil {
		return pk, fmt.Errorf("decode public key: %w", err)
	}
	if len(raw) != 32 {
		return pk, fmt.Errorf("public key must be 32 bytes, got %d", len(raw))
	}
	copy(pk[:], raw)
	return pk, nil
}

// MustParsePublicKey is ParsePublicKey for compile-time constants.
func MustParsePublicKey(s string) PublicKey {
	pk, err := ParsePublicKey(s)
	if err != nil {
		panic(err)
	}
	return pk
}

// String returns the base58 form.
func (pk PublicKey) String() string {
	return base58.Encode(pk[:])
}

// IsZero reports whether the key is all zeroes.
func (pk PublicKey) IsZero() bool {
	return pk == PublicKey{}
}

// IsOnCurve reports whether the bytes decode to a valid ed25519 curve point.
// Program-derived addresses must NOT be on the curve.
func (pk PublicKey) IsOnCurve() bool {
	_, err := new(edwards25519.Point).SetBytes(pk[:])
	return err == nil
}

// Keypair is a signing identity (the service fee payer / pool authority).
type Keypair struct {
	PublicKey  PublicKey
	PrivateKey ed25519.PrivateKey
}

// KeypairFromBase58 loads a keypair from the base58-encoded 64-byte secret
// (the format solana-keygen and Phantom export).
func KeypairFromBase58(secret string) (*Keypair, error) {
	raw, err := base58.Decode(secret)
	if err != nil {
		return nil, fmt.Errorf("decode secret key: %w", err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("secret key must be %d bytes, got %d", ed25519.PrivateKeySize, len(raw))
	}
	priv := ed25519.PrivateKey(raw)
	var pk PublicKey
	copy(pk[:], priv.Public().(ed25519.PublicKey))
	return &Keypair{PublicKey: pk, PrivateKey: priv}, nil
}

// Sign signs a serialized message.
func (kp *Keypair) Sign(message []byte) []byte {
	return ed25519.Sign(kp.PrivateKey, message)
}

const pdaMarker = "ProgramDerivedAddress"

// CreateProgramAddress derives the address for the given seeds and program,
// failing if the result lands on the curve.
func CreateProgramAddress(seeds [][]byte, program PublicKey) (PublicKey, error) {
	h := sha256.New()
	for _, seed := range seeds {
		if len(seed) > 32 {
			return PublicKey{}, fmt.Errorf("seed exceeds 32 bytes")
		}
		h.Write(seed)
	}
	h.Write(program[:])
	h.Write([]byte(pdaMarker))

	var pk PublicKey
	copy(pk[:], h.Sum(nil))
	if pk.IsOnCurve() {
		return PublicKey{}, fmt.Errorf("derived address is on the curve")
	}
	return pk, nil
}

// FindProgramAddress searches bump seeds 255..0 for a valid off-curve
// program-derived address.
func FindProgramAddress(seeds [][]byte, program PublicKey) (PublicKey, uint8, error) {
	for bump := 255; bump >= 0; bump-- {
		pk, err := CreateProgramAddress(append(seeds, []byte{byte(bump)}), program)
		if err == nil {
			return pk, uint8(bump), nil
		}
	}
	return PublicKey{}, 0, fmt.Errorf("no viable program address bump")
}

// FindAssociatedTokenAddress derives the associated token account for a
// wallet and mint.
func FindAssociatedTokenAddress(wallet, mint PublicKey) (PublicKey, error) {
	pk, _, err := FindProgramAddress(
		[][]byte{wallet[:], TokenProgramID[:], mint[:]},
		AssociatedTokenProgramID,
	)
	return pk, err
}

// FindTokenPoolAddress derives the compressed-token omnibus pool account for
// a mint.
func FindTokenPoolAddress(mint PublicKey) (PublicKey, error) {
	pk, _, err := FindProgramAddress(
		[][]byte{[]byte("pool"), mint[:]},
		CompressedTokenProgramID,
	)
	return pk, err
}
