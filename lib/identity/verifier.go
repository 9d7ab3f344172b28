// Copyright 2026 The Punchlist Authors
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"crypto/ed25519"
	"time"
)

// Verifier bundles the parameters for checking inbound bearer tokens:
// the provider's public key and the audience this service accepts.
// Construct one at startup and share it across requests; it holds no
// mutable state.
type Verifier struct {
	// PublicKey is the Ed25519 public key of the identity provider.
	PublicKey ed25519.PublicKey

	// Audience is the audience value tokens must carry to be accepted
	// by this service.
	Audience string
}

// Verify checks encoded against the verifier's key and audience at the
// current time.
func (v *Verifier) Verify(encoded string) (*Token, error) {
	return VerifyAt(v.PublicKey, encoded, v.Audience, time.Now())
}

// VerifyAt is like Verify but accepts an explicit time for expiry
// checks. This supports deterministic testing.
func (v *Verifier) VerifyAt(encoded string, now time.Time) (*Token, error) {
	return VerifyAt(v.PublicKey, encoded, v.Audience, now)
}
