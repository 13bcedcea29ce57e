package solana

import (
	"crypto/ed25519"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePublicKey(t *testing.T) {
	pk, err := ParsePublicKey("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	require.NoError(t, err)
	assert.Equal(t, "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA", pk.String())

	_, err = ParsePublicKey("not-base58-0OIl")
	assert.Error(t, err)

	_, err = ParsePublicKey("abc")
	assert.Error(t, err, "short input must be rejected")
}

func TestKeypairFromBase58(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	kp, err := KeypairFromBase58(base58.Encode(priv))
	require.NoError(t, err)
	assert.Equal(t, base58.Encode(pub), kp.PublicKey.String())

	sig := kp.Sign([]byte("message"))
	assert.True(t, ed25519.Verify(pub, []byte("message"), sig))

	_, err = KeypairFromBase58(base58.Encode(priv[:31]))
	assert.Error(t, err)
}

func TestFindProgramAddress_OffCurve(t *testing.T) {
	pk, bump, err := FindProgramAddress([][]byte{[]byte("pool")}, CompressedTokenProgramID)
	require.NoError(t, err)
	assert.False(t, pk.IsOnCurve(), "program-derived address must be off the curve")
	assert.LessOrEqual(t, bump, uint8(255))

	// Determinism.
	again, bump2, err := FindProgramAddress([][]byte{[]byte("pool")}, CompressedTokenProgramID)
	require.NoError(t, err)
	assert.Equal(t, pk, again)
	assert.Equal(t, bump, bump2)
}

func TestFindAssociatedTokenAddress(t *testing.T) {
	wallet := MustParsePublicKey("4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T")
	mint := MustParsePublicKey("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")

	ata, err := FindAssociatedTokenAddress(wallet, mint)
	require.NoError(t, err)
	assert.False(t, ata.IsZero())
	assert.False(t, ata.IsOnCurve())

	// Distinct wallets map to distinct ATAs.
	other := MustParsePublicKey("So11111111111111111111111111111111111111112")
	otherATA, err := FindAssociatedTokenAddress(other, mint)
	require.NoError(t, err)
	assert.NotEqual(t, ata, otherATA)
}

func TestFindTokenPoolAddress_Deterministic(t *testing.T) {
	mint := MustParsePublicKey("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")

	a, err := FindTokenPoolAddress(mint)
	require.NoError(t, err)
	b, err := FindTokenPoolAddress(mint)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestCreateProgramAddress_SeedTooLong(t *testing.T) {
	_, err := CreateProgramAddress([][]byte{make([]byte, 33)}, SystemProgramID)
	assert.Error(t, err)
}
