// Package qrsign implements the signed, time-boxed claim codes used by the
// simple QR path. A code only identifies a token; it carries no wallet
// binding and builds no transaction. The transaction-request flow is the
// canonical claim path, this codec backs the lightweight one.
package qrsign

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// fieldCount is the wire format: tokenID:issuedAtMillis:expiryMillis:signature.
const fieldCount = 4

// Result is the outcome of verifying a claim code.
type Result struct {
	Valid   bool
	Expired bool
	TokenID string
}

// Codec signs and verifies claim codes with an HMAC-SHA256 secret.
type Codec struct {
	secret []byte
	now    func() time.Time
}

// NewCodec creates a codec with the given shared secret.
func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret), now: time.Now}
}

// Sign issues a claim code for tokenID valid for ttl.
func (c *Codec) Sign(tokenID string, ttl time.Duration) string {
	issuedAt := c.now().UnixMilli()
	expiry := c.now().Add(ttl).UnixMilli()

	issued := strconv.FormatInt(issuedAt, 10)
	expires := strconv.FormatInt(expiry, 10)

	sig := c.signature(tokenID, issued, expires)
	return strings.Join([]string{tokenID, issued, expires, sig}, ":")
}

// Verify checks a claim code. Expiry is checked before the signature so an
// expired-but-authentic code reports Expired rather than a generic failure,
// letting the caller show a specific "code expired" message. Malformed input
// returns an invalid Result, never a panic.
func (c *Codec) Verify(code string) Result {
	parts := strings.Split(code, ":")
	if len(parts) != fieldCount {
		return Result{}
	}

	tokenID, issued, expires, sig := parts[0], parts[1], parts[2], parts[3]

	if _, err := strconv.ParseInt(issued, 10, 64); err != nil {
		return Result{}
	}
	expiryMillis, err := strconv.ParseInt(expires, 10, 64)
	if err != nil {
		return Result{}
	}

	if c.now().UnixMilli() > expiryMillis {
		return Result{Expired: true, TokenID: tokenID}
	}

	expected := c.signature(tokenID, issued, expires)
	if !hmac.Equal([]byte(expected), []byte(sig)) {
		return Result{}
	}

	return Result{Valid: true, TokenID: tokenID}
}

func (c *Codec) signature(tokenID, issued, expires string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(tokenID + issued + expires))
	return hex.EncodeToString(mac.Sum(nil))
}
