// Copyright 2026 The Punchlist Authors
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/punchlist-io/punchlist/lib/codec"
)

// signatureSize is the fixed size of an Ed25519 signature.
const signatureSize = ed25519.SignatureSize // 64 bytes

// Token is the CBOR-encoded payload of a bearer token. The identity
// provider mints these; the service only verifies them. The verified
// Subject is the claimed owner for every request — nothing in a
// request body or URL can substitute for it.
// The JSON tags are for display only (punchlist-token verify); the
// wire encoding is always CBOR with integer keys.
type Token struct {
	// Subject identifies the caller. It becomes the owner component
	// of every storage key the request touches, so it must never be
	// empty: an empty subject would alias unauthenticated callers
	// into one shared tenant.
	Subject string `cbor:"1,keyasint" json:"subject"`

	// Audience is the service this token is scoped to (e.g.,
	// "punchlist"). A token minted for another service cannot be
	// replayed here.
	Audience string `cbor:"2,keyasint" json:"audience"`

	// ID is a unique token identifier (hex or UUID string). Carried
	// for log correlation.
	ID string `cbor:"3,keyasint,omitempty" json:"id,omitempty"`

	// IssuedAt is a Unix timestamp (seconds) of when the provider
	// minted this token.
	IssuedAt int64 `cbor:"4,keyasint" json:"issuedAt"`

	// ExpiresAt is a Unix timestamp (seconds) after which this token
	// is no longer valid. Zero means the token does not expire.
	ExpiresAt int64 `cbor:"5,keyasint,omitempty" json:"expiresAt,omitempty"`
}

// Errors returned by Verify and related functions.
var (
	ErrTokenTooShort    = errors.New("identity: token too short for signature")
	ErrInvalidSignature = errors.New("identity: invalid Ed25519 signature")
	ErrTokenExpired     = errors.New("identity: token has expired")
	ErrAudienceMismatch = errors.New("identity: audience does not match")
	ErrEmptySubject     = errors.New("identity: token has no subject")
)

// Mint signs a Token with the provider's private key and returns the
// bearer string: base64url (no padding) over the CBOR-encoded payload
// followed by the 64-byte Ed25519 signature.
func Mint(privateKey ed25519.PrivateKey, token *Token) (string, error) {
	payload, err := codec.Marshal(token)
	if err != nil {
		return "", fmt.Errorf("identity: encoding token payload: %w", err)
	}

	signature := ed25519.Sign(privateKey, payload)

	raw := make([]byte, len(payload)+signatureSize)
	copy(raw, payload)
	copy(raw[len(payload):], signature)

	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// Verify decodes the bearer string, verifies the Ed25519 signature,
// CBOR-decodes the payload, and checks expiry, audience, and subject.
// Returns the decoded Token on success.
func Verify(publicKey ed25519.PublicKey, encoded, audience string) (*Token, error) {
	return VerifyAt(publicKey, encoded, audience, time.Now())
}

// VerifyAt is like Verify but accepts an explicit time for expiry
// checks. This supports deterministic testing.
func VerifyAt(publicKey ed25519.PublicKey, encoded, audience string, now time.Time) (*Token, error) {
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("identity: decoding token: %w", err)
	}
	if len(raw) <= signatureSize {
		return nil, ErrTokenTooShort
	}

	splitPoint := len(raw) - signatureSize
	payload := raw[:splitPoint]
	signature := raw[splitPoint:]

	if !ed25519.Verify(publicKey, payload, signature) {
		return nil, ErrInvalidSignature
	}

	var token Token
	if err := codec.Unmarshal(payload, &token); err != nil {
		return nil, fmt.Errorf("identity: decoding token payload: %w", err)
	}

	if token.ExpiresAt > 0 && now.Unix() >= token.ExpiresAt {
		return nil, ErrTokenExpired
	}
	if token.Audience != audience {
		return nil, fmt.Errorf("%w: got %q, want %q", ErrAudienceMismatch, token.Audience, audience)
	}
	if token.Subject == "" {
		return nil, ErrEmptySubject
	}

	return &token, nil
}
