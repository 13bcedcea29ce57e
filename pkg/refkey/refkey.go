// Package refkey derives the reference key that makes a claim transaction
// discoverable on chain before its signature exists. The key is embedded in
// the transfer instruction as a readonly non-signer account, so any watcher
// that can recompute it can find the landed transaction by address.
package refkey

import (
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// maxAttempts bounds the salted retry loop. Roughly half of all 32-byte
// strings decode to a curve point, so 255 attempts failing has probability
// ~2^-255; hitting the cap means the diffusion is broken, not bad luck.
const maxAttempts = 255

// ErrNoValidPoint is returned when no salt in [0, maxAttempts) produced a
// valid curve point.
var ErrNoValidPoint = errors.New("refkey: no valid curve point after max attempts")

// Derive computes the deterministic 32-byte reference key for a
// (token, wallet) pair. Same inputs always yield the same key; client and
// server can compute it independently and agree on what to watch.
//
// The first candidate that decodes to a valid ed25519 point wins. Off-curve
// candidates retry with a salt counter appended to the input, so the result
// is still a pure function of the inputs.
func Derive(tokenID, wallet string) ([32]byte, error) {
	base := "token:" + tokenID + ":wallet:" + wallet

	for salt := 0; salt < maxAttempts; salt++ {
		input := base
		if salt > 0 {
			input = fmt.Sprintf("%s:salt:%d", base, salt)
		}

		candidate := fold32([]byte(input))
		if onCurve(candidate) {
			return candidate, nil
		}
	}

	return [32]byte{}, ErrNoValidPoint
}

// DeriveBase58 is Derive with the key rendered as a Solana address.
func DeriveBase58(tokenID, wallet string) (string, error) {
	key, err := Derive(tokenID, wallet)
	if err != nil {
		return "", err
	}
	return base58.Encode(key[:]), nil
}

// fold32 expands arbitrary input into 32 bytes by XOR-folding with
// multiplicative diffusion. Non-cryptographic on purpose: the key only needs
// to be collision-resistant enough to be unique per (token, wallet) pair,
// not to hide its inputs.
func fold32(input []byte) [32]byte {
	var state [32]byte

	// Seed with distinct odd constants so an empty input is not all-zero.
	for i := range state {
		state[i] = byte(uint32(0x9E3779B9) >> (uint(i%4) * 8))
	}

	for i, b := range input {
		idx := i % 32
		state[idx] ^= b
		// Diffuse into neighbors; the rotation amount varies with position
		// so repeated bytes do not cancel out.
		state[(idx+7)%32] ^= b<<3 | b>>5
		state[(idx+13)%32] = state[(idx+13)%32]*31 + b
	}

	// Final mixing rounds: each byte absorbs its neighbors.
	for round := 0; round < 4; round++ {
		var carry byte
		for i := 0; i < 32; i++ {
			state[i] = state[i]*167 + state[(i+1)%32] ^ carry
			carry = state[i]<<1 | state[i]>>7
		}
	}

	return state
}

// onCurve reports whether b is a valid ed25519 point encoding.
func onCurve(b [32]byte) bool {
	_, err := new(edwards25519.Point).SetBytes(b[:])
	return err == nil
}
